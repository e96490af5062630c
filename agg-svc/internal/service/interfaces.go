package service

import (
	"context"
	"time"

	"foodbox/agg-svc/internal/domain"
	"foodbox/agg-svc/internal/storage"

	"github.com/segmentio/kafka-go"
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type PopularityRecorder interface {
	MarkProcessed(ctx context.Context, key string) (bool, error)
	Unmark(ctx context.Context, key string) error
	Record(ctx context.Context, day time.Time, quantities map[string]int) error
	Revert(ctx context.Context, quantities map[string]int) error
}

type CartCleaner interface {
	ClearCartBefore(ctx context.Context, userID string, before time.Time) (int64, error)
}

type ConsumerInterface interface {
	Start(ctx context.Context) error
	Handle(ctx context.Context, event domain.OrderEvent) error
}

var (
	_ PopularityRecorder = (*storage.PopularityStore)(nil)
	_ CartCleaner        = (*storage.CartStore)(nil)
	_ ConsumerInterface  = (*Consumer)(nil)
)
