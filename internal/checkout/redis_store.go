package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps staging in Redis so it survives server restarts and is
// shared across instances.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func stagingKey(userID uint) string {
	return fmt.Sprintf("checkout:%d", userID)
}

func (s *RedisStore) load(ctx context.Context, userID uint) (*Staging, error) {
	data, err := s.client.Get(ctx, stagingKey(userID)).Result()
	if err == redis.Nil {
		return &Staging{}, nil
	}
	if err != nil {
		return nil, err
	}

	var staging Staging
	if err := json.Unmarshal([]byte(data), &staging); err != nil {
		return nil, err
	}
	return &staging, nil
}

func (s *RedisStore) save(ctx context.Context, userID uint, staging *Staging) error {
	data, err := json.Marshal(staging)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, stagingKey(userID), data, s.ttl).Err()
}

func (s *RedisStore) StagePayment(ctx context.Context, userID uint, method string) error {
	staging, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	staging.PaymentMethod = method
	return s.save(ctx, userID, staging)
}

func (s *RedisStore) StageDelivery(ctx context.Context, userID uint, date, timeOfDay string) error {
	staging, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	staging.DeliveryDate = date
	staging.DeliveryTime = timeOfDay
	return s.save(ctx, userID, staging)
}

func (s *RedisStore) Get(ctx context.Context, userID uint) (*Staging, error) {
	data, err := s.client.Get(ctx, stagingKey(userID)).Result()
	if err == redis.Nil {
		return nil, ErrNotStaged
	}
	if err != nil {
		return nil, err
	}

	var staging Staging
	if err := json.Unmarshal([]byte(data), &staging); err != nil {
		return nil, err
	}
	return &staging, nil
}

func (s *RedisStore) Clear(ctx context.Context, userID uint) error {
	return s.client.Del(ctx, stagingKey(userID)).Err()
}
