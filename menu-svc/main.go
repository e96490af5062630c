package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"foodbox/config"
	httpapi "foodbox/menu-svc/internal/api/http"
	"foodbox/menu-svc/internal/domain"
	"foodbox/menu-svc/internal/service"
	"foodbox/menu-svc/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	serviceName = "menu-svc"
	defaultPort = "8081"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := config.NewLogger(serviceName, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger:", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("menu service stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := config.InitTracer(serviceName, cfg.OtelEnabled)
	if err != nil {
		return err
	}
	defer shutdownTracer(context.Background())

	db := config.MustInitPostgres(cfg, logger)
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if cfg.SeedMenu {
		inserted, err := repo.SeedFoods(ctx, sampleMenu())
		if err != nil {
			return err
		}
		logger.Info("menu seeded", zap.Int("inserted", inserted))
	}

	rdb := config.MustInitRedis(cfg, logger)
	defer rdb.Close()

	foodSvc := service.NewFoodService(repo, storage.NewPopularityReader(rdb), logger)
	handler := httpapi.NewHandler(foodSvc, storage.NewImageStore(cfg.UploadDir), cfg.AdminKey, logger)
	router := config.Instrument(serviceName, httpapi.NewRouter(handler, cfg.UploadDir))

	return httpapi.StartServer(ctx, cfg.Addr(defaultPort), router, logger)
}

func sampleMenu() []domain.Food {
	items := []struct {
		name, description, price, category string
	}{
		{"Margherita Pizza", "Classic pizza with tomato sauce, mozzarella, and fresh basil.", "12.99", "Pizza"},
		{"Pepperoni Pizza", "Traditional pizza topped with pepperoni slices and mozzarella cheese.", "14.99", "Pizza"},
		{"Vegetable Supreme Pizza", "Loaded with bell peppers, onions, mushrooms, olives, and tomatoes.", "13.99", "Pizza"},
		{"Classic Burger", "Juicy beef patty with lettuce, tomato, onion, and special sauce.", "9.99", "Burger"},
		{"Cheese Burger", "Classic burger with melted cheddar cheese and all the fixings.", "10.99", "Burger"},
		{"Chicken Burger", "Grilled chicken breast with avocado, bacon, and honey mustard.", "11.99", "Burger"},
		{"Caesar Salad", "Crisp romaine lettuce with Caesar dressing, croutons, and parmesan.", "8.99", "Salad"},
		{"Greek Salad", "Fresh cucumber, tomato, olives, and feta cheese with olive oil dressing.", "9.99", "Salad"},
		{"Chicken Pasta", "Fettuccine pasta with grilled chicken in creamy alfredo sauce.", "13.99", "Pasta"},
		{"Spaghetti Bolognese", "Classic spaghetti with rich meat sauce and parmesan cheese.", "12.99", "Pasta"},
		{"French Fries", "Crispy golden fries seasoned with salt and herbs.", "4.99", "Sides"},
		{"Onion Rings", "Crispy battered onion rings served with dipping sauce.", "5.99", "Sides"},
	}

	foods := make([]domain.Food, 0, len(items))
	for _, item := range items {
		foods = append(foods, domain.Food{
			ID:          uuid.NewString(),
			Name:        item.name,
			Description: item.description,
			Price:       decimal.RequireFromString(item.price),
			Category:    item.category,
			ImageURL:    domain.DefaultImage,
			IsAvailable: true,
		})
	}
	return foods
}
