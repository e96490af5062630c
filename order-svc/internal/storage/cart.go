package storage

import (
	"context"

	"foodbox/order-svc/internal/domain"

	"github.com/google/uuid"
)

const cartLineColumns = "id, user_id, food_id, quantity, created_at, updated_at"

// UpsertCartItem returns sql.ErrNoRows when the increment would exceed domain.MaxQuantity.
func (r *PostgresRepository) UpsertCartItem(ctx context.Context, userID, foodID string, quantity int) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, user_id, food_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, food_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		WHERE cart_items.quantity + EXCLUDED.quantity <= $5
		RETURNING `+cartLineColumns,
		uuid.NewString(), userID, foodID, quantity, domain.MaxQuantity).
		Scan(&line.ID, &line.UserID, &line.FoodID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *PostgresRepository) SetCartItemQuantity(ctx context.Context, userID, lineID string, quantity int) (*domain.CartLine, error) {
	var line domain.CartLine
	err := r.DB.QueryRowContext(ctx, `
		UPDATE cart_items SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING `+cartLineColumns,
		quantity, lineID, userID).
		Scan(&line.ID, &line.UserID, &line.FoodID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *PostgresRepository) DeleteCartItem(ctx context.Context, userID, lineID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE id = $1 AND user_id = $2", lineID, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ListCartItems joins the live catalog row; lines whose food was deleted are skipped.
func (r *PostgresRepository) ListCartItems(ctx context.Context, userID string) ([]domain.CartLine, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.user_id, c.food_id, c.quantity, c.created_at, c.updated_at,
		       f.id, f.name, COALESCE(f.description, ''), f.price, COALESCE(f.category, ''),
		       COALESCE(f.image_url, ''), f.is_available, f.created_at, f.updated_at
		FROM cart_items c
		JOIN foods f ON f.id = c.food_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		var food domain.Food
		if err := rows.Scan(
			&line.ID, &line.UserID, &line.FoodID, &line.Quantity, &line.CreatedAt, &line.UpdatedAt,
			&food.ID, &food.Name, &food.Description, &food.Price, &food.Category,
			&food.ImageURL, &food.IsAvailable, &food.CreatedAt, &food.UpdatedAt,
		); err != nil {
			return nil, err
		}
		line.Food = &food
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *PostgresRepository) ClearCart(ctx context.Context, userID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM cart_items WHERE user_id = $1", userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
