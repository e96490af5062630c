package storage

import (
	"context"
	"errors"

	"foodbox/order-svc/internal/domain"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const userColumns = "id, name, email, password_hash, COALESCE(address, ''), created_at"

func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Address, user.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Address, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID).
		Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Address, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET name = $1, address = $2 WHERE id = $3",
		user.Name, user.Address, user.ID)
	return err
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID)
	return err
}
