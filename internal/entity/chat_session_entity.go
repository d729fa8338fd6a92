package entity

import "time"

type ChatSession struct {
	Id        uint
	UserId    uint
	Title     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
