package storage

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// PopularityReader reads the sorted sets agg-svc increments per ordered food.
type PopularityReader struct {
	Client *redis.Client
}

func NewPopularityReader(client *redis.Client) *PopularityReader {
	return &PopularityReader{Client: client}
}

func (p *PopularityReader) Top(ctx context.Context, key string, limit int) ([]redis.Z, error) {
	return p.Client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
}
