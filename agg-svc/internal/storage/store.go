package storage

import (
	"context"
	"database/sql"
	"time"

	"foodbox/agg-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	dailyRetention = 7 * 24 * time.Hour
	dedupRetention = 7 * 24 * time.Hour
)

// PopularityStore maintains the per-day and all-time food ranking sorted sets.
type PopularityStore struct {
	Client *redis.Client
}

func NewPopularityStore(client *redis.Client) *PopularityStore {
	return &PopularityStore{Client: client}
}

func (s *PopularityStore) MarkProcessed(ctx context.Context, key string) (bool, error) {
	return s.Client.SetNX(ctx, key, 1, dedupRetention).Result()
}

func (s *PopularityStore) Unmark(ctx context.Context, key string) error {
	return s.Client.Del(ctx, key).Err()
}

func (s *PopularityStore) Record(ctx context.Context, day time.Time, quantities map[string]int) error {
	dailyKey := domain.PopularDailyKey(day)
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for foodID, quantity := range quantities {
			pipe.ZIncrBy(ctx, dailyKey, float64(quantity), foodID)
			pipe.ZIncrBy(ctx, domain.PopularAllTimeKey, float64(quantity), foodID)
		}
		pipe.Expire(ctx, dailyKey, dailyRetention)
		return nil
	})
	return err
}

// Revert takes a cancelled order out of the all-time ranking. Daily sets are left
// alone since the event does not say which day the order was placed.
func (s *PopularityStore) Revert(ctx context.Context, quantities map[string]int) error {
	_, err := s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for foodID, quantity := range quantities {
			pipe.ZIncrBy(ctx, domain.PopularAllTimeKey, -float64(quantity), foodID)
		}
		pipe.ZRemRangeByScore(ctx, domain.PopularAllTimeKey, "-inf", "0")
		return nil
	})
	return err
}

// CartStore removes cart lines that a placed order already covered.
type CartStore struct {
	DB *sql.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{DB: db}
}

// ClearCartBefore leaves lines added or changed after before untouched.
func (s *CartStore) ClearCartBefore(ctx context.Context, userID string, before time.Time) (int64, error) {
	result, err := s.DB.ExecContext(ctx,
		"DELETE FROM cart_items WHERE user_id = $1 AND updated_at <= $2", userID, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
