package specification

import "gorm.io/gorm"

type ByChatSessionID struct {
	ChatSessionID uint
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// MostRecentlyUpdated orders sessions newest activity first with a stable tie-break.
type MostRecentlyUpdated struct{}

func (s MostRecentlyUpdated) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at DESC").Order("id DESC")
}

// Chronological orders messages oldest first with a stable tie-break.
type Chronological struct {
	Desc bool
}

func (s Chronological) Apply(db *gorm.DB) *gorm.DB {
	if s.Desc {
		return db.Order("created_at DESC").Order("id DESC")
	}
	return db.Order("created_at ASC").Order("id ASC")
}
