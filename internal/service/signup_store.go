package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSignupStore keeps pending signups and OTP codes in Redis. Entries
// carry their own TTL, so abandoned signups disappear on their own.
type RedisSignupStore struct {
	redis *redis.Client
}

func NewRedisSignupStore(client *redis.Client) *RedisSignupStore {
	return &RedisSignupStore{redis: client}
}

func pendingKey(token string) string {
	return fmt.Sprintf("signup:pending:%s", token)
}

func otpKey(email string) string {
	return fmt.Sprintf("signup:otp:%s", email)
}

func (s *RedisSignupStore) PutPending(ctx context.Context, token string, pending *PendingSignup, ttl time.Duration) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending signup: %w", err)
	}
	if err := s.redis.Set(ctx, pendingKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending signup: %w", err)
	}
	return nil
}

func (s *RedisSignupStore) GetPending(ctx context.Context, token string) (*PendingSignup, error) {
	data, err := s.redis.Get(ctx, pendingKey(token)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending signup: %w", err)
	}

	var pending PendingSignup
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending signup: %w", err)
	}
	return &pending, nil
}

func (s *RedisSignupStore) DeletePending(ctx context.Context, token string) error {
	return s.redis.Del(ctx, pendingKey(token)).Err()
}

func (s *RedisSignupStore) PutOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}
	return nil
}

func (s *RedisSignupStore) GetOTP(ctx context.Context, email string) (string, error) {
	code, err := s.redis.Get(ctx, otpKey(email)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to get OTP: %w", err)
	}
	return code, nil
}

func (s *RedisSignupStore) DeleteOTP(ctx context.Context, email string) error {
	return s.redis.Del(ctx, otpKey(email)).Err()
}
