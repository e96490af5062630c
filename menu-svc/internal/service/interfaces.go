package service

import (
	"context"

	"foodbox/menu-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

type FoodRepository interface {
	CreateFood(ctx context.Context, food *domain.Food) error
	ListAvailableFoods(ctx context.Context) ([]domain.Food, error)
	GetFood(ctx context.Context, id string) (*domain.Food, error)
	GetFoodsByIDs(ctx context.Context, ids []string) ([]domain.Food, error)
	ListByCategory(ctx context.Context, category, excludeID string, limit int) ([]domain.Food, error)
	ListCategories(ctx context.Context) ([]string, error)
	UpdateFood(ctx context.Context, food *domain.Food) error
	DeleteFood(ctx context.Context, id string) (int64, error)
	UpdateFoodImage(ctx context.Context, id, imageURL string) error
	PopularFromOrders(ctx context.Context, period domain.Period, limit int) ([]domain.PopularFood, error)
}

type PopularityStore interface {
	Top(ctx context.Context, key string, limit int) ([]redis.Z, error)
}

type FoodServiceInterface interface {
	ListAvailable(ctx context.Context) ([]domain.Food, error)
	Get(ctx context.Context, id string) (*domain.Food, error)
	Recommended(ctx context.Context, id string) ([]domain.Food, error)
	ListByCategory(ctx context.Context, category, excludeID string, limit int) ([]domain.Food, error)
	Categories(ctx context.Context) ([]string, error)
	Popular(ctx context.Context, period domain.Period, limit int) ([]domain.PopularFood, error)
	Create(ctx context.Context, in domain.FoodInput) (*domain.Food, error)
	Update(ctx context.Context, id string, in domain.FoodInput) (*domain.Food, error)
	Delete(ctx context.Context, id string) error
	UpdateImage(ctx context.Context, id, imageURL string) (*domain.Food, error)
}

var _ FoodServiceInterface = (*FoodService)(nil)
