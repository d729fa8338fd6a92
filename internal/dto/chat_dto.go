package dto

import "time"

type ChatSessionDTO struct {
	Id        uint      `json:"id"`
	UserId    uint      `json:"userId"`
	Title     *string   `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MessageDTO struct {
	Id            uint      `json:"id"`
	ChatSessionId uint      `json:"chatSessionId"`
	Content       string    `json:"content"`
	IsUser        bool      `json:"isUser"`
	CreatedAt     time.Time `json:"createdAt"`
}

type PersonalityTypeDTO struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type CreateChatSessionRequest struct {
	Title *string `json:"title"`
}

type ListChatSessionsRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

type PaginationDTO struct {
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalSessions int64 `json:"totalSessions"`
	HasMore       bool  `json:"hasMore"`
}

type ChatSessionListResponse struct {
	Sessions   []*ChatSessionDTO `json:"sessions"`
	Pagination PaginationDTO     `json:"pagination"`
}

// CreateMessageRequest keeps IsUser as a pointer so a missing flag can be rejected.
type CreateMessageRequest struct {
	ChatSessionId uint   `json:"chatSessionId"`
	Content       string `json:"content"`
	IsUser        *bool  `json:"isUser"`
}

type ChatTurnResponse struct {
	UserMessage *MessageDTO `json:"userMessage"`
	AiResponse  *MessageDTO `json:"aiResponse"`
}

// PublishChatTurnMessage is the watermill payload emitted after a turn is stored.
type PublishChatTurnMessage struct {
	ChatSessionId uint      `json:"chatSessionId"`
	UserId        uint      `json:"userId"`
	UserMessageId uint      `json:"userMessageId"`
	AiMessageId   uint      `json:"aiMessageId"`
	Fallback      bool      `json:"fallback"`
	UpstreamMs    int64     `json:"upstreamMs"`
	OccurredAt    time.Time `json:"occurredAt"`
}
