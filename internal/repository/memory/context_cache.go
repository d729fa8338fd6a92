package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/repository/contract"
	"uny-compass-be/pkg/contextwindow"

	"github.com/patrickmn/go-cache"
)

type sessionWindow struct {
	mu      sync.Mutex
	entries []contextwindow.Entry
}

// ContextCache keeps conversation windows in process memory.
type ContextCache struct {
	cache *cache.Cache
	now   func() time.Time
}

var _ contract.ConversationContextCache = (*ContextCache)(nil)

func NewContextCache() *ContextCache {
	// windows idle for longer than the entry expiry carry nothing useful
	c := cache.New(contextwindow.Expiry, 10*time.Minute)
	return &ContextCache{
		cache: c,
		now:   time.Now,
	}
}

func cacheKey(sessionID uint) string {
	return strconv.FormatUint(uint64(sessionID), 10)
}

func (c *ContextCache) window(sessionID uint) *sessionWindow {
	key := cacheKey(sessionID)
	if x, found := c.cache.Get(key); found {
		return x.(*sessionWindow)
	}
	w := &sessionWindow{}
	if err := c.cache.Add(key, w, cache.DefaultExpiration); err != nil {
		// lost the race to another writer
		if x, found := c.cache.Get(key); found {
			return x.(*sessionWindow)
		}
	}
	return w
}

func (c *ContextCache) Add(ctx context.Context, sessionID uint, content string, isUser bool) error {
	w := c.window(sessionID)

	w.mu.Lock()
	w.entries = contextwindow.Append(w.entries, contextwindow.NewEntry(content, isUser, c.now()))
	w.mu.Unlock()

	c.cache.Set(cacheKey(sessionID), w, cache.DefaultExpiration)
	return nil
}

func (c *ContextCache) GetContext(ctx context.Context, sessionID uint) (string, error) {
	x, found := c.cache.Get(cacheKey(sessionID))
	if !found {
		return "", nil
	}
	w := x.(*sessionWindow)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = contextwindow.Prune(w.entries, c.now())
	return contextwindow.Render(w.entries), nil
}

func (c *ContextCache) Seed(ctx context.Context, sessionID uint, entries []contextwindow.Entry) error {
	if len(entries) == 0 {
		c.cache.Delete(cacheKey(sessionID))
		return nil
	}

	w := &sessionWindow{}
	for _, e := range entries {
		w.entries = contextwindow.Append(w.entries, e)
	}
	c.cache.Set(cacheKey(sessionID), w, cache.DefaultExpiration)
	return nil
}

func (c *ContextCache) Clear(ctx context.Context, sessionID uint) error {
	c.cache.Delete(cacheKey(sessionID))
	return nil
}

func (c *ContextCache) Stats(ctx context.Context) (*entity.ContextStats, error) {
	stats := &entity.ContextStats{Sessions: []uint{}}
	for key, item := range c.cache.Items() {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		w := item.Object.(*sessionWindow)
		w.mu.Lock()
		n := len(w.entries)
		w.mu.Unlock()

		stats.Sessions = append(stats.Sessions, uint(id))
		stats.TotalMessages += n
	}
	sort.Slice(stats.Sessions, func(i, j int) bool { return stats.Sessions[i] < stats.Sessions[j] })
	stats.TotalSessions = len(stats.Sessions)
	return stats, nil
}
