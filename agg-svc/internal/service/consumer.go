package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodbox/agg-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	handleAttempts = 3
	retryDelay     = 500 * time.Millisecond
)

type Consumer struct {
	Reader     MessageReader
	Popularity PopularityRecorder
	Carts      CartCleaner
	Logger     *zap.Logger
}

func NewConsumer(reader MessageReader, popularity PopularityRecorder, carts CartCleaner, logger *zap.Logger) *Consumer {
	return &Consumer{
		Reader:     reader,
		Popularity: popularity,
		Carts:      carts,
		Logger:     logger,
	}
}

// Start consumes until ctx is cancelled. Offsets are committed after handling, so
// a crash redelivers and Handle must stay idempotent.
func (c *Consumer) Start(ctx context.Context) error {
	c.Logger.Info("aggregation consumer starting")
	for {
		message, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.Logger.Info("aggregation consumer stopping")
				return nil
			}
			c.Logger.Error("fetch message", zap.Error(err))
			if !sleep(ctx, retryDelay) {
				return nil
			}
			continue
		}

		c.process(ctx, message)

		if err := c.Reader.CommitMessages(ctx, message); err != nil && ctx.Err() == nil {
			c.Logger.Error("commit message", zap.Int64("offset", message.Offset), zap.Error(err))
		}
	}
}

func (c *Consumer) process(ctx context.Context, message kafka.Message) {
	var event domain.OrderEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		c.Logger.Warn("skipping malformed message", zap.Int64("offset", message.Offset), zap.Error(err))
		return
	}

	for attempt := 1; attempt <= handleAttempts; attempt++ {
		err := c.Handle(ctx, event)
		if err == nil {
			return
		}
		c.Logger.Warn("handle order event",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == handleAttempts || !sleep(ctx, retryDelay*time.Duration(attempt)) {
			c.Logger.Error("dropping order event", zap.String("order_id", event.OrderID))
			return
		}
	}
}

func (c *Consumer) Handle(ctx context.Context, event domain.OrderEvent) error {
	switch event.Type {
	case domain.EventOrderPlaced:
		return c.handlePlaced(ctx, event)
	case domain.EventOrderCancelled:
		return c.handleCancelled(ctx, event)
	default:
		return nil
	}
}

// handlePlaced counts the ordered quantities once, then clears cart lines that were
// not touched after checkout. The clear is safe to repeat.
func (c *Consumer) handlePlaced(ctx context.Context, event domain.OrderEvent) error {
	if event.OrderID == "" {
		return errors.New("order event without order id")
	}
	record := func(ctx context.Context, quantities map[string]int) error {
		return c.Popularity.Record(ctx, eventTime(event), quantities)
	}
	if err := c.countOnce(ctx, event, record); err != nil {
		return err
	}

	if event.UserID == "" {
		return nil
	}
	cleared, err := c.Carts.ClearCartBefore(ctx, event.UserID, eventTime(event))
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if cleared > 0 {
		c.Logger.Info("cleared leftover cart lines",
			zap.String("user_id", event.UserID),
			zap.String("order_id", event.OrderID),
			zap.Int64("lines", cleared))
	}
	return nil
}

func (c *Consumer) handleCancelled(ctx context.Context, event domain.OrderEvent) error {
	if event.OrderID == "" {
		return errors.New("order event without order id")
	}
	return c.countOnce(ctx, event, c.Popularity.Revert)
}

func (c *Consumer) countOnce(ctx context.Context, event domain.OrderEvent, apply func(context.Context, map[string]int) error) error {
	quantities := event.Quantities()
	if len(quantities) == 0 {
		return nil
	}

	key := event.DedupKey()
	first, err := c.Popularity.MarkProcessed(ctx, key)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	if !first {
		c.Logger.Debug("order event already counted", zap.String("order_id", event.OrderID), zap.String("type", event.Type))
		return nil
	}

	if err := apply(ctx, quantities); err != nil {
		if unmarkErr := c.Popularity.Unmark(ctx, key); unmarkErr != nil {
			c.Logger.Error("unmark event", zap.String("key", key), zap.Error(unmarkErr))
		}
		return fmt.Errorf("update popularity: %w", err)
	}
	return nil
}

func eventTime(event domain.OrderEvent) time.Time {
	if event.Timestamp.IsZero() {
		return time.Now().UTC()
	}
	return event.Timestamp
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
