package presence

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"neighborhood/backend/internal/config"
)

const (
	// TTL outlives two heartbeats so a single dropped ping does not flap.
	TTL = 90 * time.Second

	keyPrefix = "presence:" // presence:{uid} -> last heartbeat (unix seconds)
)

// Store tracks who is online. A nil *Store is valid and reports everyone
// offline, which is what happens when REDIS_ADDR is not configured.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: TTL}
}

// Connect dials Redis from config. Returns nil when presence is disabled.
func Connect(ctx context.Context, cfg config.Config) (*Store, error) {
	if cfg.RedisAddr == "" {
		log.Printf("[presence] REDIS_ADDR not set; presence disabled")
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb), nil
}

func key(uid string) string { return keyPrefix + uid }

// Touch marks uid online for another TTL.
func (s *Store) Touch(ctx context.Context, uid string) error {
	if s == nil || uid == "" {
		return nil
	}
	return s.rdb.Set(ctx, key(uid), time.Now().Unix(), s.ttl).Err()
}

// Clear marks uid offline immediately.
func (s *Store) Clear(ctx context.Context, uid string) error {
	if s == nil || uid == "" {
		return nil
	}
	return s.rdb.Del(ctx, key(uid)).Err()
}

// Online reports, for every uid asked about, whether it has a live key.
func (s *Store) Online(ctx context.Context, uids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(uids))
	for _, uid := range uids {
		out[uid] = false
	}
	if s == nil || len(uids) == 0 {
		return out, nil
	}
	keys := make([]string, len(uids))
	for i, uid := range uids {
		keys[i] = key(uid)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return out, fmt.Errorf("presence lookup: %w", err)
	}
	for i, v := range vals {
		if v != nil {
			out[uids[i]] = true
		}
	}
	return out, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
