package entity

import "time"

type Message struct {
	Id            uint
	ChatSessionId uint
	Content       string
	IsUser        bool
	CreatedAt     time.Time
}
