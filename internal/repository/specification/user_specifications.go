package specification

import "gorm.io/gorm"

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

// ByUsernameOrEmail matches a login identifier against both unique columns.
type ByUsernameOrEmail struct {
	Identifier string
}

func (s ByUsernameOrEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ? OR email = ?", s.Identifier, s.Identifier)
}

// UsernameOrEmailTaken finds any user holding either value.
type UsernameOrEmailTaken struct {
	Username string
	Email    string
}

func (s UsernameOrEmailTaken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ? OR email = ?", s.Username, s.Email)
}

// ExcludeID drops one row, used for "another user owns this" checks.
type ExcludeID struct {
	ID uint
}

func (s ExcludeID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id <> ?", s.ID)
}

type UserOwnedBy struct {
	UserID uint
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// Token Specs

type ByToken struct {
	Token string
}

func (s ByToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token = ?", s.Token)
}
