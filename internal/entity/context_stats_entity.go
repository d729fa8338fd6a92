package entity

// ContextStats summarises the conversation context cache.
type ContextStats struct {
	TotalSessions int
	Sessions      []uint
	TotalMessages int
}
