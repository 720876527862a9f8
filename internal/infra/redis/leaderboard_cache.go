package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiztrack/internal/domain"
)

const leaderboardKeyPrefix = "quiz:leaderboard:"

// Source produces the authoritative leaderboard on a cache miss.
type Source interface {
	TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardCache stores serialized top-N views in Redis and drops them on
// every score write. A stale read under a concurrent write is acceptable;
// the next Invalidate call clears it.
type LeaderboardCache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, source Source, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		source: source,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) TopN(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	key := c.key(n)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var entries []domain.LeaderboardEntry
		if jsonErr := json.Unmarshal(raw, &entries); jsonErr == nil {
			return entries, nil
		}
		// Unreadable cache entries are rebuilt below.
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine rebuilt it.
		raw, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var entries []domain.LeaderboardEntry
			if jsonErr := json.Unmarshal(raw, &entries); jsonErr == nil {
				return entries, nil
			}
		}

		entries, err := c.source.TopN(ctx, n)
		if err != nil {
			return nil, err
		}

		if payload, err := json.Marshal(entries); err == nil {
			// best-effort: a failed cache write only costs the next recompute
			_ = c.client.Set(ctx, key, payload, c.ttlWithJitter()).Err()
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

// Invalidate drops every cached window after a score write.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, leaderboardKeyPrefix+"*").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *LeaderboardCache) key(n int) string {
	return leaderboardKeyPrefix + strconv.Itoa(n)
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
