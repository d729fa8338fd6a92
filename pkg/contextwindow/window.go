// Package contextwindow holds the rules for the short rolling window of
// recent turns that is prepended to every advisory prompt.
package contextwindow

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxEntries       = 4
	MaxContentLength = 150
	Expiry           = 30 * time.Minute
)

type Entry struct {
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
}

// Truncate shortens content to MaxContentLength runes and marks the cut with "...".
func Truncate(content string) string {
	if utf8.RuneCountInString(content) <= MaxContentLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxContentLength]) + "..."
}

// NewEntry builds a truncated entry stamped with now.
func NewEntry(content string, isUser bool, now time.Time) Entry {
	return Entry{
		Content:   Truncate(content),
		IsUser:    isUser,
		Timestamp: now,
	}
}

// Append adds e and evicts the oldest entries beyond MaxEntries.
func Append(entries []Entry, e Entry) []Entry {
	entries = append(entries, e)
	if len(entries) > MaxEntries {
		entries = append([]Entry(nil), entries[len(entries)-MaxEntries:]...)
	}
	return entries
}

// Prune drops entries older than Expiry relative to now.
func Prune(entries []Entry, now time.Time) []Entry {
	kept := entries[:0:0]
	for _, e := range entries {
		if now.Sub(e.Timestamp) < Expiry {
			kept = append(kept, e)
		}
	}
	return kept
}

// Render formats entries as "User: ..." / "Assistant: ..." lines followed by a
// blank line, or returns "" when there is nothing to render.
func Render(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		role := "Assistant"
		if e.IsUser {
			role = "User"
		}
		lines = append(lines, role+": "+e.Content)
	}
	return strings.Join(lines, "\n") + "\n\n"
}
