package dto

type AskRequest struct {
	Question        string `json:"question"`
	ChatSessionId   uint   `json:"chatSessionId"`
	PersonalityType string `json:"personalityType"`
}

type TimingsDTO struct {
	ContextMs      int64       `json:"contextMs"`
	UpstreamMs     int64       `json:"upstreamMs"`
	PersistMs      int64       `json:"persistMs"`
	TotalMs        int64       `json:"totalMs"`
	ProcessingTime interface{} `json:"processingTime,omitempty"`
}

type AskResponse struct {
	Question        string      `json:"question"`
	Answer          string      `json:"answer"`
	UserMessage     *MessageDTO `json:"userMessage"`
	AiMessage       *MessageDTO `json:"aiMessage"`
	User            string      `json:"user"`
	PersonalityType string      `json:"personalityType,omitempty"`
	Timestamp       interface{} `json:"timestamp"`
	Timings         TimingsDTO  `json:"timings"`
}

type ChatbotStatusResponse struct {
	Status        string `json:"status"`
	PythonWorking bool   `json:"pythonWorking"`
	Message       string `json:"message"`
	ResponseMs    int64  `json:"responseMs"`
}

type ContextStatsResponse struct {
	TotalSessions int    `json:"totalSessions"`
	Sessions      []uint `json:"sessions"`
	TotalMessages int    `json:"totalMessages"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
	JWT       string `json:"jwt"`
}
