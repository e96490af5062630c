package storage

import (
	"context"
	"errors"
	"time"

	"foodbox/order-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	checkoutKeyPrefix  = "checkout:"
	resetCodeKeyPrefix = "password-reset:"
)

// CheckoutStore keeps Idempotency-Key markers: pending while the order is created,
// then the order id. A pending marker outlives a crashed checkout by PendingTTL only.
type CheckoutStore struct {
	Client     *redis.Client
	TTL        time.Duration
	PendingTTL time.Duration
}

func NewCheckoutStore(client *redis.Client, ttl, pendingTTL time.Duration) *CheckoutStore {
	return &CheckoutStore{Client: client, TTL: ttl, PendingTTL: pendingTTL}
}

func (s *CheckoutStore) MarkerKey(userID, key string) string {
	return checkoutKeyPrefix + userID + ":" + key
}

// Reserve returns "" when the caller owns the key, otherwise the stored value.
func (s *CheckoutStore) Reserve(ctx context.Context, userID, key string) (string, error) {
	markerKey := s.MarkerKey(userID, key)
	ok, err := s.Client.SetNX(ctx, markerKey, domain.CheckoutPending, s.PendingTTL).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return "", nil
	}

	existing, err := s.Client.Get(ctx, markerKey).Result()
	if errors.Is(err, redis.Nil) {
		return domain.CheckoutPending, nil
	}
	if err != nil {
		return "", err
	}
	return existing, nil
}

// Complete replaces the pending marker with the order id for the full TTL.
func (s *CheckoutStore) Complete(ctx context.Context, userID, key, orderID string) error {
	return s.Client.Set(ctx, s.MarkerKey(userID, key), orderID, s.TTL).Err()
}

func (s *CheckoutStore) Release(ctx context.Context, userID, key string) error {
	return s.Client.Del(ctx, s.MarkerKey(userID, key)).Err()
}

// ResetCodeStore maps one-time password reset codes to user ids.
// Each user holds at most one live code.
type ResetCodeStore struct {
	Client *redis.Client
}

func NewResetCodeStore(client *redis.Client) *ResetCodeStore {
	return &ResetCodeStore{Client: client}
}

func resetCodeKey(code string) string {
	return resetCodeKeyPrefix + code
}

func resetUserKey(userID string) string {
	return resetCodeKeyPrefix + "user:" + userID
}

// Save claims code for userID and invalidates the user's previous code.
// It returns false when code already belongs to someone.
func (s *ResetCodeStore) Save(ctx context.Context, code, userID string, ttl time.Duration) (bool, error) {
	ok, err := s.Client.SetNX(ctx, resetCodeKey(code), userID, ttl).Result()
	if err != nil || !ok {
		return false, err
	}

	previous, err := s.Client.SetArgs(ctx, resetUserKey(userID), code, redis.SetArgs{TTL: ttl, Get: true}).Result()
	if errors.Is(err, redis.Nil) || previous == code {
		return true, nil
	}
	if err != nil {
		return true, err
	}
	return true, s.dropCode(ctx, previous, userID)
}

// Consume returns the owner of code and removes it; "" means unknown or expired.
func (s *ResetCodeStore) Consume(ctx context.Context, code string) (string, error) {
	userID, err := s.Client.GetDel(ctx, resetCodeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return userID, s.clearPointer(ctx, userID, code)
}

func (s *ResetCodeStore) Delete(ctx context.Context, code string) error {
	userID, err := s.Client.GetDel(ctx, resetCodeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.clearPointer(ctx, userID, code)
}

// dropCode deletes code only while it still belongs to userID.
func (s *ResetCodeStore) dropCode(ctx context.Context, code, userID string) error {
	owner, err := s.Client.Get(ctx, resetCodeKey(code)).Result()
	if errors.Is(err, redis.Nil) || owner != userID {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Client.Del(ctx, resetCodeKey(code)).Err()
}

func (s *ResetCodeStore) clearPointer(ctx context.Context, userID, code string) error {
	current, err := s.Client.Get(ctx, resetUserKey(userID)).Result()
	if errors.Is(err, redis.Nil) || current != code {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Client.Del(ctx, resetUserKey(userID)).Err()
}
