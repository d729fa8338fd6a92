package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/repository/contract"
	"uny-compass-be/pkg/contextwindow"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "uny:context:"

// ContextCache stores each session window as a capped Redis list of JSON
// entries so several API instances see the same conversation context.
type ContextCache struct {
	client *redis.Client
	now    func() time.Time
}

var _ contract.ConversationContextCache = (*ContextCache)(nil)

func NewContextCache(client *redis.Client) *ContextCache {
	return &ContextCache{
		client: client,
		now:    time.Now,
	}
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func key(sessionID uint) string {
	return keyPrefix + strconv.FormatUint(uint64(sessionID), 10)
}

func (c *ContextCache) Add(ctx context.Context, sessionID uint, content string, isUser bool) error {
	payload, err := json.Marshal(contextwindow.NewEntry(content, isUser, c.now()))
	if err != nil {
		return err
	}

	k := key(sessionID)
	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, k, payload)
	pipe.LTrim(ctx, k, -contextwindow.MaxEntries, -1)
	pipe.Expire(ctx, k, contextwindow.Expiry)
	_, err = pipe.Exec(ctx)
	return err
}

const pruneRetries = 3

func decodeEntries(raw []string) []contextwindow.Entry {
	entries := make([]contextwindow.Entry, 0, len(raw))
	for _, item := range raw {
		var e contextwindow.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// GetContext renders the live window and trims expired entries off the head
// of the list. The trim runs under WATCH so a concurrent Add is never lost.
func (c *ContextCache) GetContext(ctx context.Context, sessionID uint) (string, error) {
	k := key(sessionID)

	var kept []contextwindow.Entry
	prune := func(tx *redis.Tx) error {
		raw, err := tx.LRange(ctx, k, 0, -1).Result()
		if err != nil {
			return err
		}

		now := c.now()
		expired := 0
		for _, item := range raw {
			var e contextwindow.Entry
			if err := json.Unmarshal([]byte(item), &e); err == nil && now.Sub(e.Timestamp) < contextwindow.Expiry {
				break
			}
			expired++
		}
		kept = contextwindow.Prune(decodeEntries(raw), now)

		if expired == 0 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LTrim(ctx, k, int64(expired), -1)
			return nil
		})
		return err
	}

	for i := 0; i < pruneRetries; i++ {
		err := c.client.Watch(ctx, prune, k)
		if err == nil {
			return contextwindow.Render(kept), nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return "", err
		}
	}
	// the list kept changing underneath us; the next read trims it
	return contextwindow.Render(kept), nil
}

func (c *ContextCache) Seed(ctx context.Context, sessionID uint, entries []contextwindow.Entry) error {
	if len(entries) > contextwindow.MaxEntries {
		entries = entries[len(entries)-contextwindow.MaxEntries:]
	}

	k := key(sessionID)
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, k)
	if len(entries) > 0 {
		values := make([]interface{}, 0, len(entries))
		for _, e := range entries {
			payload, err := json.Marshal(e)
			if err != nil {
				return err
			}
			values = append(values, payload)
		}
		pipe.RPush(ctx, k, values...)
		pipe.Expire(ctx, k, contextwindow.Expiry)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *ContextCache) Clear(ctx context.Context, sessionID uint) error {
	return c.client.Del(ctx, key(sessionID)).Err()
}

func (c *ContextCache) Stats(ctx context.Context) (*entity.ContextStats, error) {
	stats := &entity.ContextStats{Sessions: []uint{}}

	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		id, err := strconv.ParseUint(strings.TrimPrefix(k, keyPrefix), 10, 64)
		if err != nil {
			continue
		}
		n, err := c.client.LLen(ctx, k).Result()
		if err != nil {
			return nil, err
		}
		stats.Sessions = append(stats.Sessions, uint(id))
		stats.TotalMessages += int(n)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(stats.Sessions, func(i, j int) bool { return stats.Sessions[i] < stats.Sessions[j] })
	stats.TotalSessions = len(stats.Sessions)
	return stats, nil
}
