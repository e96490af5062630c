package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodbox/menu-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	recommendedLimit    = 3
	defaultPopularLimit = 10
	maxPopularLimit     = 50
)

type FoodService struct {
	repo       FoodRepository
	popularity PopularityStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewFoodService(repo FoodRepository, popularity PopularityStore, logger *zap.Logger) *FoodService {
	return &FoodService{repo: repo, popularity: popularity, logger: logger, now: time.Now}
}

func (s *FoodService) ListAvailable(ctx context.Context) ([]domain.Food, error) {
	foods, err := s.repo.ListAvailableFoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return nonNil(foods), nil
}

func (s *FoodService) Get(ctx context.Context, id string) (*domain.Food, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	food, err := s.repo.GetFood(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return food, nil
}

// Recommended returns up to three available foods sharing the category of id.
func (s *FoodService) Recommended(ctx context.Context, id string) ([]domain.Food, error) {
	food, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.ListByCategory(ctx, food.Category, food.ID, recommendedLimit)
}

func (s *FoodService) ListByCategory(ctx context.Context, category, excludeID string, limit int) ([]domain.Food, error) {
	if limit <= 0 {
		limit = recommendedLimit
	}
	foods, err := s.repo.ListByCategory(ctx, category, excludeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s foods: %w", category, err)
	}
	return nonNil(foods), nil
}

func (s *FoodService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// Popular ranks foods by ordered quantity. Counters kept in Redis are preferred;
// order history in Postgres is used when they are empty or unreachable.
func (s *FoodService) Popular(ctx context.Context, period domain.Period, limit int) ([]domain.PopularFood, error) {
	if period != domain.PeriodToday {
		period = domain.PeriodAllTime
	}
	if limit <= 0 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}

	key := period.Key(s.now())
	ranked, err := s.popularity.Top(ctx, key, limit)
	if err != nil {
		s.logger.Warn("popularity counters unavailable", zap.String("key", key), zap.Error(err))
	}
	if err == nil && len(ranked) > 0 {
		popular, err := s.hydrate(ctx, ranked)
		if err != nil {
			return nil, err
		}
		if len(popular) > 0 {
			return popular, nil
		}
	}

	popular, err := s.repo.PopularFromOrders(ctx, period, limit)
	if err != nil {
		return nil, fmt.Errorf("popular foods: %w", err)
	}
	if popular == nil {
		popular = []domain.PopularFood{}
	}
	return popular, nil
}

// hydrate keeps the ranking order and drops foods that are gone or unavailable.
func (s *FoodService) hydrate(ctx context.Context, ranked []redis.Z) ([]domain.PopularFood, error) {
	ids := make([]string, 0, len(ranked))
	for _, member := range ranked {
		if id, ok := member.Member.(string); ok {
			ids = append(ids, id)
		}
	}

	foods, err := s.repo.GetFoodsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load popular foods: %w", err)
	}
	byID := make(map[string]domain.Food, len(foods))
	for _, food := range foods {
		byID[food.ID] = food
	}

	popular := make([]domain.PopularFood, 0, len(ranked))
	for _, member := range ranked {
		id, _ := member.Member.(string)
		food, ok := byID[id]
		if !ok || !food.IsAvailable {
			continue
		}
		popular = append(popular, domain.PopularFood{Food: food, Score: member.Score})
	}
	return popular, nil
}

func (s *FoodService) Create(ctx context.Context, in domain.FoodInput) (*domain.Food, error) {
	if problem := in.Problem(); problem != "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, problem)
	}

	food := &domain.Food{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Round(2),
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    in.ImageURL,
		IsAvailable: true,
	}
	if food.ImageURL == "" {
		food.ImageURL = domain.DefaultImage
	}
	if in.IsAvailable != nil {
		food.IsAvailable = *in.IsAvailable
	}

	if err := s.repo.CreateFood(ctx, food); err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	s.logger.Info("food created", zap.String("food_id", food.ID), zap.String("name", food.Name))
	return food, nil
}

func (s *FoodService) Update(ctx context.Context, id string, in domain.FoodInput) (*domain.Food, error) {
	if problem := in.Problem(); problem != "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, problem)
	}
	food, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	food.Name = strings.TrimSpace(in.Name)
	food.Description = strings.TrimSpace(in.Description)
	food.Price = in.Price.Round(2)
	food.Category = strings.TrimSpace(in.Category)
	if in.ImageURL != "" {
		food.ImageURL = in.ImageURL
	}
	if in.IsAvailable != nil {
		food.IsAvailable = *in.IsAvailable
	}

	err = s.repo.UpdateFood(ctx, food)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update food: %w", err)
	}
	return food, nil
}

func (s *FoodService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	rows, err := s.repo.DeleteFood(ctx, id)
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	s.logger.Info("food deleted", zap.String("food_id", id))
	return nil
}

func (s *FoodService) UpdateImage(ctx context.Context, id, imageURL string) (*domain.Food, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	err := s.repo.UpdateFoodImage(ctx, id, imageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update food image: %w", err)
	}
	return s.Get(ctx, id)
}

func nonNil(foods []domain.Food) []domain.Food {
	if foods == nil {
		return []domain.Food{}
	}
	return foods
}
