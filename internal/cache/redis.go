package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BlockonautAlchemist/ResellrAi-sub001/internal/comps"
	"github.com/BlockonautAlchemist/ResellrAi-sub001/pkg/redis"
)

const keyPrefix = "comps:"

// envelope is the stored form of a result. Expiry is kept alongside the
// payload so an entry is never served past it, whatever Redis does.
type envelope struct {
	Result      *comps.CompsResult `json:"result"`
	StoredAtMs  int64              `json:"stored_at_ms"`
	ExpiresAtMs int64              `json:"expires_at_ms"`
}

// RedisStore shares results across processes through Redis. Redis errors
// are logged and read as misses.
type RedisStore struct {
	client redis.RedisClient
	opts   Options
	log    *zap.Logger
}

var _ comps.ResultCache = (*RedisStore)(nil)

// NewRedisStore creates a store over client. MaxEntries is not used;
// Redis expires keys itself.
func NewRedisStore(client redis.RedisClient, opts Options, log *zap.Logger) *RedisStore {
	opts.setDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{client: client, opts: opts, log: log}
}

func (s *RedisStore) Get(ctx context.Context, key string) (*comps.CompsResult, time.Duration, bool) {
	rkey := redisKey(key)
	var env envelope
	found, err := s.client.GetJSON(ctx, rkey, &env)
	if err != nil {
		s.log.Warn("comps cache read failed", zap.String("key", rkey), zap.Error(err))
		return nil, 0, false
	}
	if !found || env.Result == nil {
		return nil, 0, false
	}

	now := s.opts.Now()
	if !now.Before(time.UnixMilli(env.ExpiresAtMs)) {
		if err := s.client.Delete(ctx, rkey); err != nil {
			s.log.Warn("comps cache delete failed", zap.String("key", rkey), zap.Error(err))
		}
		return nil, 0, false
	}
	return env.Result, now.Sub(time.UnixMilli(env.StoredAtMs)), true
}

func (s *RedisStore) Set(ctx context.Context, key string, result *comps.CompsResult) {
	now := s.opts.Now()
	stored := result.Clone()
	stored.Cached = false
	stored.CacheAge = nil

	env := envelope{
		Result:      stored,
		StoredAtMs:  now.UnixMilli(),
		ExpiresAtMs: now.Add(s.opts.TTL).UnixMilli(),
	}
	rkey := redisKey(key)
	if err := s.client.SetJSON(ctx, rkey, env, s.opts.TTL); err != nil {
		s.log.Warn("comps cache write failed", zap.String("key", rkey), zap.Error(err))
	}
}

func redisKey(key string) string {
	return fmt.Sprintf("%s%x", keyPrefix, sha256.Sum256([]byte(key)))
}
