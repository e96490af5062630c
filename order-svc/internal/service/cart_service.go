package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodbox/order-svc/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartService struct {
	repo    CartRepository
	catalog CatalogReader
	logger  *zap.Logger
}

func NewCartService(repo CartRepository, catalog CatalogReader, logger *zap.Logger) *CartService {
	return &CartService{repo: repo, catalog: catalog, logger: logger}
}

// AddItem increments the existing line for (user, food) or creates it.
func (s *CartService) AddItem(ctx context.Context, userID, foodID string, quantity int) (*domain.CartLine, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(foodID); err != nil {
		return nil, fmt.Errorf("%w: unknown food %q", ErrInvalidInput, foodID)
	}

	food, err := s.catalog.GetFood(ctx, foodID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: unknown food %q", ErrInvalidInput, foodID)
	}
	if err != nil {
		return nil, fmt.Errorf("load food: %w", err)
	}
	if !food.IsAvailable {
		return nil, fmt.Errorf("%w: %s is not available", ErrInvalidInput, food.Name)
	}

	line, err := s.repo.UpsertCartItem(ctx, userID, foodID, quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: quantity must be at most %d", ErrInvalidInput, domain.MaxQuantity)
	}
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	line.Food = food
	return line, nil
}

// SetQuantity never writes a quantity outside [1, domain.MaxQuantity].
func (s *CartService) SetQuantity(ctx context.Context, userID, lineID string, quantity int) (*domain.CartLine, error) {
	if err := checkQuantity(quantity); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(lineID); err != nil {
		return nil, fmt.Errorf("cart item %w", ErrNotFound)
	}

	line, err := s.repo.SetCartItemQuantity(ctx, userID, lineID, quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cart item %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return line, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, lineID string) error {
	if _, err := uuid.Parse(lineID); err != nil {
		return fmt.Errorf("cart item %w", ErrNotFound)
	}

	removed, err := s.repo.DeleteCartItem(ctx, userID, lineID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("cart item %w", ErrNotFound)
	}
	return nil
}

// ListItems returns lines joined with current food data; prices may differ from add time.
func (s *CartService) ListItems(ctx context.Context, userID string) ([]domain.CartLine, error) {
	lines, err := s.repo.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	removed, err := s.repo.ClearCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.logger.Debug("cart cleared", zap.String("user_id", userID), zap.Int64("lines", removed))
	return nil
}

func checkQuantity(quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if quantity > domain.MaxQuantity {
		return fmt.Errorf("%w: quantity must be at most %d", ErrInvalidInput, domain.MaxQuantity)
	}
	return nil
}
