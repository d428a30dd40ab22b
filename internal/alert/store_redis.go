package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	alertKeyPrefix = "signup:alerts:"
	// maxUpdateRetries bounds WATCH retries when another request edits the
	// same session's alerts concurrently.
	maxUpdateRetries = 10
)

// RedisStore keeps each session's alerts as a JSON list that expires after
// ttl of inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

type lister interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

func alertKey(sessionID string) string {
	return alertKeyPrefix + sessionID
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, a Alert) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode alert: %w", err)
	}
	key := alertKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, raw)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStore) List(ctx context.Context, sessionID string) ([]Alert, error) {
	return s.read(ctx, s.client, alertKey(sessionID))
}

// Update reads, transforms and rewrites the list under WATCH, retrying when a
// concurrent writer touches the key.
func (s *RedisStore) Update(ctx context.Context, sessionID string, fn func([]Alert) []Alert) ([]Alert, error) {
	key := alertKey(sessionID)
	var result []Alert
	txf := func(tx *redis.Tx) error {
		current, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		next := fn(current)
		encoded := make([]any, 0, len(next))
		for _, a := range next {
			raw, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("encode alert: %w", err)
			}
			encoded = append(encoded, raw)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			if len(encoded) > 0 {
				pipe.RPush(ctx, key, encoded...)
				if s.ttl > 0 {
					pipe.Expire(ctx, key, s.ttl)
				}
			}
			return nil
		})
		if err == nil {
			result = next
		}
		return err
	}

	for range maxUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(result) == 0 {
			return nil, nil
		}
		return result, nil
	}
	return nil, fmt.Errorf("update alerts for session: %w", redis.TxFailedErr)
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, alertKey(sessionID)).Err()
}

func (s *RedisStore) read(ctx context.Context, c lister, key string) ([]Alert, error) {
	raw, err := c.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	alerts := make([]Alert, 0, len(raw))
	for _, item := range raw {
		var a Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			return nil, fmt.Errorf("decode alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
