package contextwindow

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short"))

	exact := strings.Repeat("a", MaxContentLength)
	assert.Equal(t, exact, Truncate(exact))

	long := strings.Repeat("b", 200)
	got := Truncate(long)
	assert.Equal(t, strings.Repeat("b", MaxContentLength)+"...", got)

	// multi-byte runes are counted as single characters
	accents := strings.Repeat("é", 160)
	assert.Equal(t, strings.Repeat("é", MaxContentLength)+"...", Truncate(accents))
}

func TestAppendEvictsOldest(t *testing.T) {
	now := time.Now()
	var entries []Entry
	for _, c := range []string{"m1", "m2", "m3", "m4", "m5", "m6"} {
		entries = Append(entries, NewEntry(c, true, now))
	}

	require.Len(t, entries, MaxEntries)
	assert.Equal(t, "m3", entries[0].Content)
	assert.Equal(t, "m6", entries[3].Content)
}

func TestPrune(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		{Content: "stale", IsUser: true, Timestamp: now.Add(-31 * time.Minute)},
		{Content: "edge", IsUser: false, Timestamp: now.Add(-Expiry)},
		{Content: "fresh", IsUser: true, Timestamp: now.Add(-time.Minute)},
	}

	kept := Prune(entries, now)

	require.Len(t, kept, 1)
	assert.Equal(t, "fresh", kept[0].Content)
	assert.Len(t, entries, 3, "input slice must not be modified")
	assert.Equal(t, "stale", entries[0].Content)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "", Render(nil))

	now := time.Now()
	got := Render([]Entry{
		NewEntry("What CS majors are offered?", true, now),
		NewEntry("Hunter offers a BA in Computer Science.", false, now),
	})

	assert.Equal(t, "User: What CS majors are offered?\nAssistant: Hunter offers a BA in Computer Science.\n\n", got)
}
