package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skufu/drrisk/internal/patient"
	"github.com/Skufu/drrisk/internal/prediction"
)

const (
	patientKeyFmt = "session:%s:patient"
	reportKeyFmt  = "session:%s:report"
)

// RedisStore keeps each value under its own key with a TTL refreshed on
// every write.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// ConnectRedis parses a redis:// URL and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) SavePatient(ctx context.Context, sessionID string, p patient.Data) error {
	return s.set(ctx, fmt.Sprintf(patientKeyFmt, sessionID), p)
}

func (s *RedisStore) LoadPatient(ctx context.Context, sessionID string) (patient.Data, error) {
	var p patient.Data
	err := s.get(ctx, fmt.Sprintf(patientKeyFmt, sessionID), &p)
	return p, err
}

func (s *RedisStore) SaveReport(ctx context.Context, sessionID string, r prediction.RiskReport) error {
	return s.set(ctx, fmt.Sprintf(reportKeyFmt, sessionID), r)
}

func (s *RedisStore) LoadReport(ctx context.Context, sessionID string) (*prediction.RiskReport, error) {
	var r prediction.RiskReport
	if err := s.get(ctx, fmt.Sprintf(reportKeyFmt, sessionID), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx,
		fmt.Sprintf(patientKeyFmt, sessionID),
		fmt.Sprintf(reportKeyFmt, sessionID),
	).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, key string, dst any) error {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
