package storage

import (
	"context"

	"foodbox/order-svc/internal/domain"
)

// GetFood reads the shared foods table maintained by menu-svc.
func (r *PostgresRepository) GetFood(ctx context.Context, foodID string) (*domain.Food, error) {
	var food domain.Food
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(description, ''), price, COALESCE(category, ''),
		       COALESCE(image_url, ''), is_available, created_at, updated_at
		FROM foods WHERE id = $1`, foodID).
		Scan(&food.ID, &food.Name, &food.Description, &food.Price, &food.Category,
			&food.ImageURL, &food.IsAvailable, &food.CreatedAt, &food.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &food, nil
}
