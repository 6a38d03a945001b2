package report

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultRedisKey  = "todobench:reports"
	DefaultRedisKeep = 100
)

// RedisSink pushes envelopes onto a capped Redis list, newest first.
type RedisSink struct {
	client *redis.Client
	key    string
	keep   int64
}

func NewRedisSink(ctx context.Context, addr, key string, keep int64) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if key == "" {
		key = DefaultRedisKey
	}
	if keep <= 0 {
		keep = DefaultRedisKeep
	}
	return &RedisSink{client: client, key: key, keep: keep}, nil
}

func (s *RedisSink) Emit(ctx context.Context, env Envelope) error {
	serialized, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, serialized)
	pipe.LTrim(ctx, s.key, 0, s.keep-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push report to %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
