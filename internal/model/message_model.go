package model

import "time"

type Message struct {
	Id            uint      `gorm:"primaryKey;autoIncrement"`
	ChatSessionId uint      `gorm:"not null;index"`
	Content       string    `gorm:"type:text;not null"`
	IsUser        bool      `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	ChatSession *ChatSession `gorm:"foreignKey:ChatSessionId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Message) TableName() string {
	return "messages"
}
