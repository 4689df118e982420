package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// AdDataUpdateChannel carries change notifications between replicas.
const AdDataUpdateChannel = "ad-data-updates"

// ErrNilRedisStore is returned when publishing or subscribing without a client.
var ErrNilRedisStore = errors.New("redis store not available")

// UpdateMessage announces a change to a stored entity.
type UpdateMessage struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id"`
}

// RedisStore wraps a redis client and context for operations.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		Ctx:    context.Background(),
	}

	// Add OpenTelemetry instrumentation to Redis client
	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(rs.Ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

// PublishUpdate broadcasts msg on AdDataUpdateChannel.
func (r *RedisStore) PublishUpdate(ctx context.Context, msg UpdateMessage) error {
	if r == nil || r.Client == nil {
		return ErrNilRedisStore
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal update message: %w", err)
	}
	if err := r.Client.Publish(ctx, AdDataUpdateChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish update message: %w", err)
	}
	return nil
}

// Subscribe calls handle for every message received on AdDataUpdateChannel
// until ctx is cancelled. Malformed payloads are logged and skipped. The
// subscription is confirmed before Subscribe starts delivering, so messages
// published after it returns are not missed.
func (r *RedisStore) Subscribe(ctx context.Context, handle func(UpdateMessage)) (<-chan struct{}, error) {
	if r == nil || r.Client == nil {
		return nil, ErrNilRedisStore
	}
	sub := r.Client.Subscribe(ctx, AdDataUpdateChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", AdDataUpdateChannel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			_ = sub.Close()
		}()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg UpdateMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					zap.L().Warn("discarding malformed update message",
						zap.String("payload", m.Payload), zap.Error(err))
					continue
				}
				handle(msg)
			}
		}
	}()
	return done, nil
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
