package repository

import (
	"context"
	"fmt"
	"time"

	"onboarding-service/utils"

	"github.com/redis/go-redis/v9"
)

const otpTTL = 300 * time.Second

// OtpStore issues and verifies short-lived one-time codes. Expiry belongs to
// the store, not the caller.
type OtpStore interface {
	// Issue generates a 6-digit code and stores it under namespace:key,
	// overwriting any live code for the same pair.
	Issue(ctx context.Context, namespace, key string) (string, error)
	// Verify atomically consumes the stored code and reports whether
	// candidate matches it. Every attempt consumes: two concurrent verifies
	// of the same code can never both succeed, and a mismatch invalidates
	// the code rather than leaving it live. A missing and an expired code
	// are indistinguishable to the caller.
	Verify(ctx context.Context, namespace, key, candidate string) (bool, error)
}

type redisOtpStore struct {
	client *redis.Client
}

func NewOtpStore(client *redis.Client) OtpStore {
	return &redisOtpStore{
		client: client,
	}
}

func (s *redisOtpStore) otpKey(namespace, key string) string {
	return fmt.Sprintf("otp:%s:%s", namespace, key)
}

func (s *redisOtpStore) Issue(ctx context.Context, namespace, key string) (string, error) {
	code := utils.GenerateOTP()
	err := s.client.Set(ctx, s.otpKey(namespace, key), code, otpTTL).Err()
	if err != nil {
		return "", fmt.Errorf("error storing otp: %w", err)
	}
	return code, nil
}

func (s *redisOtpStore) Verify(ctx context.Context, namespace, key, candidate string) (bool, error) {
	// GETDEL makes the read and the consume one atomic command, so only one
	// of any number of concurrent verifies can see the code.
	stored, err := s.client.GetDel(ctx, s.otpKey(namespace, key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error consuming otp: %w", err)
	}

	return stored == candidate, nil
}
