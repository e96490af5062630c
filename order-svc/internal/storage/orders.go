package storage

import (
	"context"
	"database/sql"

	"foodbox/order-svc/internal/domain"

	"github.com/lib/pq"
)

const orderColumns = `id, user_id, delivery_address, payment_method, payment_status, COALESCE(note, ''),
	subtotal, delivery_fee, total, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	if err := row.Scan(
		&order.ID, &order.UserID, &order.DeliveryAddress, &order.PaymentMethod, &order.PaymentStatus, &order.Note,
		&order.Subtotal, &order.DeliveryFee, &order.Total, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder writes the order and its line snapshots in one transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, delivery_address, payment_method, payment_status, note,
			subtotal, delivery_fee, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID, order.UserID, order.DeliveryAddress, string(order.PaymentMethod), string(order.PaymentStatus), order.Note,
		order.Subtotal, order.DeliveryFee, order.Total, string(order.Status), order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return err
	}

	for position, item := range order.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, food_id, name, quantity, price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			order.ID, position, item.FoodID, item.Name, item.Quantity, item.Price,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresRepository) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND user_id = $2", orderID, userID))
	if err != nil {
		return nil, err
	}
	return r.withItems(ctx, order)
}

func (r *PostgresRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", orderID))
	if err != nil {
		return nil, err
	}
	return r.withItems(ctx, order)
}

func (r *PostgresRepository) withItems(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	items, err := r.orderItems(ctx, []string{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	if order.Items == nil {
		order.Items = []domain.OrderLine{}
	}
	return order, nil
}

// ListOrders returns the user's orders newest first with their lines loaded in one query.
func (r *PostgresRepository) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.orderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []domain.OrderLine{}
		}
	}
	return orders, nil
}

func (r *PostgresRepository) orderItems(ctx context.Context, orderIDs []string) (map[string][]domain.OrderLine, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT order_id, food_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]domain.OrderLine, len(orderIDs))
	for rows.Next() {
		var orderID string
		var item domain.OrderLine
		if err := rows.Scan(&orderID, &item.FoodID, &item.Name, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}
	return items, rows.Err()
}

// TransitionStatus is a compare-and-set on the status column.
func (r *PostgresRepository) TransitionStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error) {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		string(to), orderID, string(from))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PostgresRepository) UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	result, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2", string(status), orderID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PostgresRepository) SaveQRCode(ctx context.Context, orderID string, qr []byte) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE orders SET qr_code = $1 WHERE id = $2", qr, orderID)
	return err
}

func (r *PostgresRepository) GetQRCode(ctx context.Context, userID, orderID string) ([]byte, error) {
	var qrCode []byte
	if err := r.DB.QueryRowContext(ctx,
		"SELECT qr_code FROM orders WHERE id = $1 AND user_id = $2", orderID, userID).Scan(&qrCode); err != nil {
		return nil, err
	}
	return qrCode, nil
}
