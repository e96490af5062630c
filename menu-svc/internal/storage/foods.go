package storage

import (
	"context"
	"database/sql"

	"foodbox/menu-svc/internal/domain"

	"github.com/lib/pq"
)

const foodColumns = `id, name, description, price, category, image_url, is_available, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFood(row rowScanner) (domain.Food, error) {
	var food domain.Food
	err := row.Scan(&food.ID, &food.Name, &food.Description, &food.Price, &food.Category,
		&food.ImageURL, &food.IsAvailable, &food.CreatedAt, &food.UpdatedAt)
	return food, err
}

func scanFoods(rows *sql.Rows) ([]domain.Food, error) {
	defer rows.Close()
	foods := []domain.Food{}
	for rows.Next() {
		food, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		foods = append(foods, food)
	}
	return foods, rows.Err()
}

func (r *PostgresRepository) CreateFood(ctx context.Context, food *domain.Food) error {
	return r.DB.QueryRowContext(ctx, `
		INSERT INTO foods (id, name, description, price, category, image_url, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		food.ID, food.Name, food.Description, food.Price, food.Category, food.ImageURL, food.IsAvailable).
		Scan(&food.CreatedAt, &food.UpdatedAt)
}

func (r *PostgresRepository) ListAvailableFoods(ctx context.Context) ([]domain.Food, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE is_available ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	return scanFoods(rows)
}

func (r *PostgresRepository) GetFood(ctx context.Context, id string) (*domain.Food, error) {
	food, err := scanFood(r.DB.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (r *PostgresRepository) GetFoodsByIDs(ctx context.Context, ids []string) ([]domain.Food, error) {
	if len(ids) == 0 {
		return []domain.Food{}, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	return scanFoods(rows)
}

// ListByCategory returns available foods in category, skipping excludeID.
func (r *PostgresRepository) ListByCategory(ctx context.Context, category, excludeID string, limit int) ([]domain.Food, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+foodColumns+` FROM foods
		WHERE category = $1 AND is_available AND ($2 = '' OR id::text <> $2)
		ORDER BY created_at DESC
		LIMIT $3`, category, excludeID, limit)
	if err != nil {
		return nil, err
	}
	return scanFoods(rows)
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT category FROM foods WHERE is_available ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) UpdateFood(ctx context.Context, food *domain.Food) error {
	return r.DB.QueryRowContext(ctx, `
		UPDATE foods
		SET name = $1, description = $2, price = $3, category = $4, image_url = $5,
		    is_available = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`,
		food.Name, food.Description, food.Price, food.Category, food.ImageURL, food.IsAvailable, food.ID).
		Scan(&food.UpdatedAt)
}

func (r *PostgresRepository) DeleteFood(ctx context.Context, id string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, "DELETE FROM foods WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *PostgresRepository) UpdateFoodImage(ctx context.Context, id, imageURL string) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE foods SET image_url = $1, updated_at = NOW() WHERE id = $2", imageURL, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PopularFromOrders ranks available foods by quantity ordered, ignoring cancelled orders.
func (r *PostgresRepository) PopularFromOrders(ctx context.Context, period domain.Period, limit int) ([]domain.PopularFood, error) {
	window := ""
	if period == domain.PeriodToday {
		window = "AND o.created_at::date = CURRENT_DATE"
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT f.id, f.name, f.description, f.price, f.category, f.image_url, f.is_available,
		       f.created_at, f.updated_at, SUM(oi.quantity) AS score
		FROM foods f
		JOIN order_items oi ON oi.food_id = f.id
		JOIN orders o ON o.id = oi.order_id
		WHERE f.is_available AND o.status <> 'cancelled' `+window+`
		GROUP BY f.id
		ORDER BY score DESC, f.name
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	popular := []domain.PopularFood{}
	for rows.Next() {
		var p domain.PopularFood
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL,
			&p.IsAvailable, &p.CreatedAt, &p.UpdatedAt, &p.Score); err != nil {
			return nil, err
		}
		popular = append(popular, p)
	}
	return popular, rows.Err()
}

// SeedFoods inserts foods only when the table is empty and reports how many were written.
func (r *PostgresRepository) SeedFoods(ctx context.Context, foods []domain.Food) (int, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM foods").Scan(&count); err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	for i := range foods {
		if err := r.CreateFood(ctx, &foods[i]); err != nil {
			return i, err
		}
	}
	return len(foods), nil
}
