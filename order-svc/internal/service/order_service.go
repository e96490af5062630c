package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodbox/order-svc/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// pricingConcurrency bounds catalog lookups per checkout.
const pricingConcurrency = 4

type OrderService struct {
	orders    OrderRepository
	carts     CartRepository
	catalog   CatalogReader
	markers   CheckoutMarkers
	publisher EventPublisher
	qrEncoder QRGenerator
	logger    *zap.Logger
}

func NewOrderService(
	orders OrderRepository,
	carts CartRepository,
	catalog CatalogReader,
	markers CheckoutMarkers,
	publisher EventPublisher,
	qr QRGenerator,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		catalog:   catalog,
		markers:   markers,
		publisher: publisher,
		qrEncoder: qr,
		logger:    logger,
	}
}

// CreateOrder reports created=false when an Idempotency-Key replays an earlier order.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, bool, error) {
	address := strings.TrimSpace(req.DeliveryAddress)
	if address == "" {
		return nil, false, fmt.Errorf("%w: delivery address is required", ErrInvalidInput)
	}
	if !req.PaymentMethod.Valid() {
		return nil, false, fmt.Errorf("%w: payment method must be cash or card", ErrInvalidInput)
	}

	if req.IdempotencyKey != "" && s.markers != nil {
		existing, err := s.markers.Reserve(ctx, userID, req.IdempotencyKey)
		if err != nil {
			return nil, false, fmt.Errorf("reserve checkout: %w", err)
		}
		switch existing {
		case "":
		case domain.CheckoutPending:
			return nil, false, fmt.Errorf("%w: checkout already in progress", ErrConflict)
		default:
			order, err := s.GetOrder(ctx, userID, existing)
			return order, false, err
		}
	}

	order, err := s.placeOrder(ctx, userID, address, req)
	if err != nil {
		if req.IdempotencyKey != "" && s.markers != nil {
			if relErr := s.markers.Release(ctx, userID, req.IdempotencyKey); relErr != nil {
				s.logger.Warn("release checkout marker", zap.String("user_id", userID), zap.Error(relErr))
			}
		}
		return nil, false, err
	}

	if req.IdempotencyKey != "" && s.markers != nil {
		if err := s.markers.Complete(ctx, userID, req.IdempotencyKey, order.ID); err != nil {
			s.logger.Warn("complete checkout marker", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	return order, true, nil
}

func (s *OrderService) placeOrder(ctx context.Context, userID, address string, req domain.CheckoutRequest) (*domain.Order, error) {
	items, err := s.checkoutItems(ctx, userID, req.Items)
	if err != nil {
		return nil, err
	}

	lines, err := s.priceLines(ctx, items)
	if err != nil {
		return nil, err
	}

	subtotal, fee, total := domain.Price(lines)
	if req.Total != nil && !req.Total.Equal(total) {
		s.logger.Warn("client total differs from computed total",
			zap.String("user_id", userID),
			zap.String("client_total", req.Total.String()),
			zap.String("total", total.String()))
	}
	if req.DeliveryFee != nil && !req.DeliveryFee.Equal(fee) {
		s.logger.Warn("client delivery fee differs from computed fee",
			zap.String("user_id", userID),
			zap.String("client_fee", req.DeliveryFee.String()),
			zap.String("fee", fee.String()))
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           lines,
		DeliveryAddress: address,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   req.PaymentMethod.InitialPaymentStatus(),
		Note:            strings.TrimSpace(req.Note),
		Subtotal:        subtotal,
		DeliveryFee:     fee,
		Total:           total,
		Status:          domain.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if _, err := s.carts.ClearCart(ctx, userID); err != nil {
		s.logger.Error("clear cart after checkout", zap.String("order_id", order.ID), zap.String("user_id", userID), zap.Error(err))
	}

	if s.qrEncoder != nil {
		if qr, err := s.qrEncoder.Generate(order.ID); err == nil {
			if err := s.orders.SaveQRCode(ctx, order.ID, qr); err != nil {
				s.logger.Warn("save receipt qr", zap.String("order_id", order.ID), zap.Error(err))
			}
		} else {
			s.logger.Warn("generate receipt qr", zap.String("order_id", order.ID), zap.Error(err))
		}
	}
	order.QRCode = s.QRLink(order.ID)

	s.publish(ctx, domain.EventOrderPlaced, order)
	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("total", total.String()))
	return order, nil
}

// checkoutItems prefers the request items and falls back to the stored cart.
// Repeated foods are merged into one line.
func (s *OrderService) checkoutItems(ctx context.Context, userID string, requested []domain.CheckoutItem) ([]domain.CheckoutItem, error) {
	items := requested
	if len(items) == 0 {
		cart, err := s.carts.ListCartItems(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		for _, line := range cart {
			items = append(items, domain.CheckoutItem{FoodID: line.FoodID, Quantity: line.Quantity})
		}
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	merged := make([]domain.CheckoutItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		if err := checkQuantity(item.Quantity); err != nil {
			return nil, err
		}
		if _, err := uuid.Parse(item.FoodID); err != nil {
			return nil, fmt.Errorf("%w: unknown food %q", ErrInvalidInput, item.FoodID)
		}
		if i, ok := index[item.FoodID]; ok {
			merged[i].Quantity += item.Quantity
			if err := checkQuantity(merged[i].Quantity); err != nil {
				return nil, err
			}
			continue
		}
		index[item.FoodID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// priceLines looks every food up again so unit prices come from the catalog only.
func (s *OrderService) priceLines(ctx context.Context, items []domain.CheckoutItem) ([]domain.OrderLine, error) {
	lines := make([]domain.OrderLine, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pricingConcurrency)

	for i, item := range items {
		g.Go(func() error {
			food, err := s.catalog.GetFood(gctx, item.FoodID)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: unknown food %q", ErrInvalidInput, item.FoodID)
			}
			if err != nil {
				return fmt.Errorf("load food %s: %w", item.FoodID, err)
			}
			if !food.IsAvailable {
				return fmt.Errorf("%w: %s is not available", ErrInvalidInput, food.Name)
			}
			lines[i] = domain.OrderLine{
				FoodID:   food.ID,
				Name:     food.Name,
				Quantity: item.Quantity,
				Price:    food.Price,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, fmt.Errorf("order %w", ErrNotFound)
	}
	order, err := s.orders.GetOrder(ctx, userID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	order.QRCode = s.QRLink(order.ID)
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	for i := range orders {
		orders[i].QRCode = s.QRLink(orders[i].ID)
	}
	return orders, nil
}

// CancelOrder only succeeds from a cancellable status; the update is conditional on the
// status read, so a concurrent vendor transition makes it fail instead of overwrite.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.Cancellable() {
		return nil, fmt.Errorf("%w: order is %s", ErrInvalidTransition, order.Status)
	}

	return s.transition(ctx, order, domain.StatusCancelled, domain.EventOrderCancelled)
}

func (s *OrderService) AdvanceStatus(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	order, err := s.loadAny(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, to)
	}

	eventType := domain.EventOrderStatusChanged
	if to == domain.StatusCancelled {
		eventType = domain.EventOrderCancelled
	}
	return s.transition(ctx, order, to, eventType)
}

func (s *OrderService) transition(ctx context.Context, order *domain.Order, to domain.OrderStatus, eventType string) (*domain.Order, error) {
	updated, err := s.orders.TransitionStatus(ctx, order.ID, order.Status, to)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !updated {
		return nil, fmt.Errorf("%w: order status changed concurrently", ErrInvalidTransition)
	}

	s.logger.Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)))
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	s.publish(ctx, eventType, order)
	return order, nil
}

// SettlePayment marks a cash order as paid; already paid orders are returned unchanged.
func (s *OrderService) SettlePayment(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.loadAny(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == domain.PaymentPaid {
		return order, nil
	}
	if order.Status == domain.StatusCancelled {
		return nil, fmt.Errorf("%w: order is cancelled", ErrInvalidTransition)
	}
	if err := s.orders.UpdatePaymentStatus(ctx, orderID, domain.PaymentPaid); err != nil {
		return nil, fmt.Errorf("update payment status: %w", err)
	}
	order.PaymentStatus = domain.PaymentPaid
	return order, nil
}

func (s *OrderService) loadAny(ctx context.Context, orderID string) (*domain.Order, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, fmt.Errorf("order %w", ErrNotFound)
	}
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	order.QRCode = s.QRLink(order.ID)
	return order, nil
}

// ReceiptQRCode returns the stored PNG, regenerating it when the first attempt failed.
func (s *OrderService) ReceiptQRCode(ctx context.Context, userID, orderID string) ([]byte, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, fmt.Errorf("order %w", ErrNotFound)
	}
	qr, err := s.orders.GetQRCode(ctx, userID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	if len(qr) == 0 && s.qrEncoder != nil {
		regenerated, err := s.qrEncoder.Generate(orderID)
		if err != nil {
			return nil, fmt.Errorf("generate qr code: %w", err)
		}
		if err := s.orders.SaveQRCode(ctx, orderID, regenerated); err != nil {
			s.logger.Warn("save regenerated qr", zap.String("order_id", orderID), zap.Error(err))
		}
		return regenerated, nil
	}
	return qr, nil
}

func (s *OrderService) QRLink(orderID string) string {
	return fmt.Sprintf("/api/orders/%s/qrcode", orderID)
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, domain.NewOrderEvent(eventType, order)); err != nil {
		s.logger.Warn("publish order event",
			zap.String("type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}
