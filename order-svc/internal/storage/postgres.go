package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

// EnsureSchema creates the tables order-svc owns. The foods table belongs to menu-svc,
// so there are no foreign keys into it.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			food_id UUID NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, food_id)
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			delivery_address TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			note TEXT,
			subtotal NUMERIC(10,2) NOT NULL,
			delivery_fee NUMERIC(10,2) NOT NULL,
			total NUMERIC(10,2) NOT NULL,
			status TEXT NOT NULL,
			qr_code BYTEA,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		"CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC)",
		`CREATE TABLE IF NOT EXISTS order_items (
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			food_id UUID NOT NULL,
			name TEXT NOT NULL,
			quantity INTEGER NOT NULL CHECK (quantity >= 1),
			price NUMERIC(10,2) NOT NULL,
			PRIMARY KEY (order_id, position)
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}
	return nil
}
