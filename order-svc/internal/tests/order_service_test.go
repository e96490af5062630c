package tests

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"foodbox/order-svc/internal/domain"
	"foodbox/order-svc/internal/mocks"
	"foodbox/order-svc/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type orderDeps struct {
	orders    *mocks.OrderRepository
	carts     *mocks.CartRepository
	catalog   *mocks.CatalogReader
	markers   *mocks.CheckoutMarkers
	publisher *mocks.EventPublisher
	qr        *mocks.QRGenerator
}

func newOrderService(t *testing.T) (*service.OrderService, orderDeps) {
	deps := orderDeps{
		orders:    mocks.NewOrderRepository(t),
		carts:     mocks.NewCartRepository(t),
		catalog:   mocks.NewCatalogReader(t),
		markers:   mocks.NewCheckoutMarkers(t),
		publisher: mocks.NewEventPublisher(t),
		qr:        mocks.NewQRGenerator(t),
	}
	svc := service.NewOrderService(deps.orders, deps.carts, deps.catalog, deps.markers, deps.publisher, deps.qr, zap.NewNop())
	return svc, deps
}

// expectPlacement wires the steps that follow a successful insert.
func expectPlacement(deps orderDeps, eventType string) {
	deps.carts.On("ClearCart", mock.Anything, userID).Return(int64(1), nil).Once()
	deps.qr.On("Generate", mock.AnythingOfType("string")).Return([]byte("png"), nil).Once()
	deps.orders.On("SaveQRCode", mock.Anything, mock.AnythingOfType("string"), []byte("png")).Return(nil).Once()
	deps.publisher.On("PublishOrderEvent", mock.Anything, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.Type == eventType
	})).Return(nil).Once()
}

func TestOrderService_CreateOrder_MargheritaFromCart(t *testing.T) {
	ctx := context.Background()
	svc, deps := newOrderService(t)

	deps.carts.On("ListCartItems", ctx, userID).
		Return([]domain.CartLine{{ID: lineID, UserID: userID, FoodID: pizzaID, Quantity: 2}}, nil).Once()
	deps.catalog.On("GetFood", mock.Anything, pizzaID).Return(pizza(), nil).Once()

	var stored *domain.Order
	deps.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Order) }).
		Return(nil).Once()
	expectPlacement(deps, domain.EventOrderPlaced)

	order, _, err := svc.CreateOrder(ctx, userID, domain.CheckoutRequest{
		DeliveryAddress: "1 Main St",
		PaymentMethod:   domain.PaymentCash,
	})
	require.NoError(t, err)
	require.Same(t, stored, order)

	assert.True(t, dec("25.98").Equal(order.Subtotal))
	assert.True(t, dec("5.00").Equal(order.DeliveryFee))
	assert.True(t, dec("30.98").Equal(order.Total))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Margherita Pizza", order.Items[0].Name)
	assert.Equal(t, "/api/orders/"+order.ID+"/qrcode", order.QRCode)
}

func TestOrderService_CreateOrder_IgnoresClientTotals(t *testing.T) {
	ctx := context.Background()
	svc, deps := newOrderService(t)

	steak := &domain.Food{ID: steakID, Name: "Ribeye", Price: dec("40.00"), IsAvailable: true}
	deps.catalog.On("GetFood", mock.Anything, steakID).Return(steak, nil).Once()
	deps.catalog.On("GetFood", mock.Anything, pizzaID).
		Return(&domain.Food{ID: pizzaID, Name: "Garlic Bread", Price: dec("5.00"), IsAvailable: true}, nil).Once()
	deps.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
	expectPlacement(deps, domain.EventOrderPlaced)

	order, _, err := svc.CreateOrder(ctx, userID, domain.CheckoutRequest{
		Items: []domain.CheckoutItem{
			{FoodID: steakID, Quantity: 1},
			{FoodID: pizzaID, Quantity: 1},
			{FoodID: pizzaID, Quantity: 2},
		},
		DeliveryAddress: "1 Main St",
		PaymentMethod:   domain.PaymentCard,
		DeliveryFee:     decPtr("5.00"),
		Total:           decPtr("1.00"),
	})
	require.NoError(t, err)

	assert.True(t, dec("55.00").Equal(order.Subtotal))
	assert.True(t, order.DeliveryFee.IsZero())
	assert.True(t, dec("55.00").Equal(order.Total))
	assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	require.Len(t, order.Items, 2, "repeated foods are merged")
	assert.Equal(t, steakID, order.Items[0].FoodID)
	assert.Equal(t, 3, order.Items[1].Quantity)
}

func TestOrderService_CreateOrder_Rejects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		req           domain.CheckoutRequest
		prepareMocks  func(deps orderDeps)
		expectedError error
	}{
		{
			name:          "missing address",
			req:           domain.CheckoutRequest{PaymentMethod: domain.PaymentCash},
			prepareMocks:  func(deps orderDeps) {},
			expectedError: service.ErrInvalidInput,
		},
		{
			name:          "unknown payment method",
			req:           domain.CheckoutRequest{DeliveryAddress: "1 Main St", PaymentMethod: "crypto"},
			prepareMocks:  func(deps orderDeps) {},
			expectedError: service.ErrInvalidInput,
		},
		{
			name: "empty cart",
			req:  domain.CheckoutRequest{DeliveryAddress: "1 Main St", PaymentMethod: domain.PaymentCash},
			prepareMocks: func(deps orderDeps) {
				deps.carts.On("ListCartItems", ctx, userID).Return(nil, nil).Once()
			},
			expectedError: service.ErrEmptyCart,
		},
		{
			name: "zero quantity line",
			req: domain.CheckoutRequest{
				Items:           []domain.CheckoutItem{{FoodID: pizzaID, Quantity: 0}},
				DeliveryAddress: "1 Main St",
				PaymentMethod:   domain.PaymentCash,
			},
			prepareMocks:  func(deps orderDeps) {},
			expectedError: service.ErrInvalidInput,
		},
		{
			name: "line above the cap",
			req: domain.CheckoutRequest{
				Items:           []domain.CheckoutItem{{FoodID: pizzaID, Quantity: 1 << 40}},
				DeliveryAddress: "1 Main St",
				PaymentMethod:   domain.PaymentCash,
			},
			prepareMocks:  func(deps orderDeps) {},
			expectedError: service.ErrInvalidInput,
		},
		{
			name: "merged lines above the cap",
			req: domain.CheckoutRequest{
				Items: []domain.CheckoutItem{
					{FoodID: pizzaID, Quantity: domain.MaxQuantity},
					{FoodID: pizzaID, Quantity: 1},
				},
				DeliveryAddress: "1 Main St",
				PaymentMethod:   domain.PaymentCash,
			},
			prepareMocks:  func(deps orderDeps) {},
			expectedError: service.ErrInvalidInput,
		},
		{
			name: "unavailable food",
			req: domain.CheckoutRequest{
				Items:           []domain.CheckoutItem{{FoodID: pizzaID, Quantity: 1}},
				DeliveryAddress: "1 Main St",
				PaymentMethod:   domain.PaymentCash,
			},
			prepareMocks: func(deps orderDeps) {
				food := pizza()
				food.IsAvailable = false
				deps.catalog.On("GetFood", mock.Anything, pizzaID).Return(food, nil).Once()
			},
			expectedError: service.ErrInvalidInput,
		},
		{
			name: "food removed from catalog",
			req: domain.CheckoutRequest{
				Items:           []domain.CheckoutItem{{FoodID: steakID, Quantity: 1}},
				DeliveryAddress: "1 Main St",
				PaymentMethod:   domain.PaymentCash,
			},
			prepareMocks: func(deps orderDeps) {
				deps.catalog.On("GetFood", mock.Anything, steakID).Return(nil, sql.ErrNoRows).Once()
			},
			expectedError: service.ErrInvalidInput,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc, deps := newOrderService(t)
			testCase.prepareMocks(deps)

			_, _, err := svc.CreateOrder(ctx, userID, testCase.req)
			assert.ErrorIs(t, err, testCase.expectedError)
		})
	}
}

func TestOrderService_CreateOrder_CartClearFailureKeepsOrder(t *testing.T) {
	ctx := context.Background()
	svc, deps := newOrderService(t)

	deps.catalog.On("GetFood", mock.Anything, pizzaID).Return(pizza(), nil).Once()
	deps.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
	deps.carts.On("ClearCart", ctx, userID).Return(int64(0), errors.New("db down")).Once()
	deps.qr.On("Generate", mock.AnythingOfType("string")).Return(nil, errors.New("encoder failed")).Once()
	deps.publisher.On("PublishOrderEvent", ctx, mock.Anything).Return(errors.New("broker down")).Once()

	order, _, err := svc.CreateOrder(ctx, userID, domain.CheckoutRequest{
		Items:           []domain.CheckoutItem{{FoodID: pizzaID, Quantity: 1}},
		DeliveryAddress: "1 Main St",
		PaymentMethod:   domain.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, order.Status)
}

func TestOrderService_CreateOrder_Idempotency(t *testing.T) {
	ctx := context.Background()
	req := domain.CheckoutRequest{
		Items:           []domain.CheckoutItem{{FoodID: pizzaID, Quantity: 1}},
		DeliveryAddress: "1 Main St",
		PaymentMethod:   domain.PaymentCash,
		IdempotencyKey:  "key-1",
	}

	t.Run("first submission completes the marker", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.markers.On("Reserve", ctx, userID, "key-1").Return("", nil).Once()
		deps.catalog.On("GetFood", mock.Anything, pizzaID).Return(pizza(), nil).Once()
		deps.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
		expectPlacement(deps, domain.EventOrderPlaced)
		deps.markers.On("Complete", ctx, userID, "key-1", mock.AnythingOfType("string")).Return(nil).Once()

		_, created, err := svc.CreateOrder(ctx, userID, req)
		assert.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("replay returns the existing order", func(t *testing.T) {
		svc, deps := newOrderService(t)
		existing := &domain.Order{ID: orderID, UserID: userID, Status: domain.StatusPending}
		deps.markers.On("Reserve", ctx, userID, "key-1").Return(orderID, nil).Once()
		deps.orders.On("GetOrder", ctx, userID, orderID).Return(existing, nil).Once()

		order, created, err := svc.CreateOrder(ctx, userID, req)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, orderID, order.ID)
	})

	t.Run("concurrent submission conflicts", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.markers.On("Reserve", ctx, userID, "key-1").Return(domain.CheckoutPending, nil).Once()

		_, _, err := svc.CreateOrder(ctx, userID, req)
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("failure releases the marker", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.markers.On("Reserve", ctx, userID, "key-1").Return("", nil).Once()
		deps.catalog.On("GetFood", mock.Anything, pizzaID).Return(pizza(), nil).Once()
		deps.orders.On("CreateOrder", ctx, mock.AnythingOfType("*domain.Order")).Return(errors.New("db down")).Once()
		deps.markers.On("Release", ctx, userID, "key-1").Return(nil).Once()

		_, _, err := svc.CreateOrder(ctx, userID, req)
		assert.Error(t, err)
	})
}

func TestOrderService_GetOrder_OtherUser(t *testing.T) {
	ctx := context.Background()
	svc, deps := newOrderService(t)

	deps.orders.On("GetOrder", ctx, otherUserID, orderID).Return(nil, sql.ErrNoRows).Once()

	_, err := svc.GetOrder(ctx, otherUserID, orderID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.GetOrder(ctx, userID, "not-a-uuid")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestOrderService_ListOrders(t *testing.T) {
	ctx := context.Background()
	svc, deps := newOrderService(t)

	now := time.Now()
	deps.orders.On("ListOrders", ctx, userID).Return([]domain.Order{
		{ID: orderID, CreatedAt: now},
		{ID: lineID, CreatedAt: now.Add(-time.Hour)},
	}, nil).Once()

	orders, err := svc.ListOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, orderID, orders[0].ID)
	assert.Equal(t, "/api/orders/"+orderID+"/qrcode", orders[0].QRCode)
}

func TestOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		status        domain.OrderStatus
		casResult     bool
		expectCAS     bool
		expectedError error
	}{
		{name: "pending", status: domain.StatusPending, casResult: true, expectCAS: true},
		{name: "confirmed", status: domain.StatusConfirmed, casResult: true, expectCAS: true},
		{name: "preparing", status: domain.StatusPreparing, expectedError: service.ErrInvalidTransition},
		{name: "out for delivery", status: domain.StatusOutForDelivery, expectedError: service.ErrInvalidTransition},
		{name: "delivered", status: domain.StatusDelivered, expectedError: service.ErrInvalidTransition},
		{name: "already cancelled", status: domain.StatusCancelled, expectedError: service.ErrInvalidTransition},
		{name: "vendor moved it first", status: domain.StatusConfirmed, casResult: false, expectCAS: true, expectedError: service.ErrInvalidTransition},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc, deps := newOrderService(t)
			deps.orders.On("GetOrder", ctx, userID, orderID).
				Return(&domain.Order{ID: orderID, UserID: userID, Status: testCase.status}, nil).Once()
			if testCase.expectCAS {
				deps.orders.On("TransitionStatus", ctx, orderID, testCase.status, domain.StatusCancelled).
					Return(testCase.casResult, nil).Once()
			}
			if testCase.expectedError == nil {
				deps.publisher.On("PublishOrderEvent", ctx, mock.MatchedBy(func(e domain.OrderEvent) bool {
					return e.Type == domain.EventOrderCancelled && e.Status == domain.StatusCancelled
				})).Return(nil).Once()
			}

			order, err := svc.CancelOrder(ctx, userID, orderID)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, order.Status)
		})
	}
}

func TestOrderService_CancelOrder_NotOwned(t *testing.T) {
	ctx := context.Background()
	svc, deps := newOrderService(t)
	deps.orders.On("GetOrder", ctx, otherUserID, orderID).Return(nil, sql.ErrNoRows).Once()

	_, err := svc.CancelOrder(ctx, otherUserID, orderID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestOrderService_AdvanceStatus(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		from          domain.OrderStatus
		to            domain.OrderStatus
		expectedError error
	}{
		{name: "confirm", from: domain.StatusPending, to: domain.StatusConfirmed},
		{name: "deliver", from: domain.StatusOutForDelivery, to: domain.StatusDelivered},
		{name: "skip ahead", from: domain.StatusPending, to: domain.StatusDelivered, expectedError: service.ErrInvalidTransition},
		{name: "leave terminal", from: domain.StatusDelivered, to: domain.StatusPending, expectedError: service.ErrInvalidTransition},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			svc, deps := newOrderService(t)
			deps.orders.On("GetOrderByID", ctx, orderID).
				Return(&domain.Order{ID: orderID, UserID: userID, Status: testCase.from}, nil).Once()
			if testCase.expectedError == nil {
				deps.orders.On("TransitionStatus", ctx, orderID, testCase.from, testCase.to).Return(true, nil).Once()
				deps.publisher.On("PublishOrderEvent", ctx, mock.MatchedBy(func(e domain.OrderEvent) bool {
					return e.Type == domain.EventOrderStatusChanged && e.Status == testCase.to
				})).Return(nil).Once()
			}

			order, err := svc.AdvanceStatus(ctx, orderID, testCase.to)
			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.to, order.Status)
		})
	}

	t.Run("unknown status", func(t *testing.T) {
		svc, _ := newOrderService(t)
		_, err := svc.AdvanceStatus(ctx, orderID, "shipped")
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestOrderService_SettlePayment(t *testing.T) {
	ctx := context.Background()

	t.Run("cash order becomes paid", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.orders.On("GetOrderByID", ctx, orderID).
			Return(&domain.Order{ID: orderID, Status: domain.StatusDelivered, PaymentStatus: domain.PaymentPending}, nil).Once()
		deps.orders.On("UpdatePaymentStatus", ctx, orderID, domain.PaymentPaid).Return(nil).Once()

		order, err := svc.SettlePayment(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentPaid, order.PaymentStatus)
	})

	t.Run("already paid is a no-op", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.orders.On("GetOrderByID", ctx, orderID).
			Return(&domain.Order{ID: orderID, Status: domain.StatusPending, PaymentStatus: domain.PaymentPaid}, nil).Once()

		_, err := svc.SettlePayment(ctx, orderID)
		assert.NoError(t, err)
	})

	t.Run("cancelled order", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.orders.On("GetOrderByID", ctx, orderID).
			Return(&domain.Order{ID: orderID, Status: domain.StatusCancelled, PaymentStatus: domain.PaymentPending}, nil).Once()

		_, err := svc.SettlePayment(ctx, orderID)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}

func TestOrderService_ReceiptQRCode(t *testing.T) {
	ctx := context.Background()

	t.Run("stored code", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.orders.On("GetQRCode", ctx, userID, orderID).Return([]byte("stored"), nil).Once()

		qr, err := svc.ReceiptQRCode(ctx, userID, orderID)
		require.NoError(t, err)
		assert.Equal(t, []byte("stored"), qr)
	})

	t.Run("regenerated when missing", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.orders.On("GetQRCode", ctx, userID, orderID).Return(nil, nil).Once()
		deps.qr.On("Generate", orderID).Return([]byte("fresh"), nil).Once()
		deps.orders.On("SaveQRCode", ctx, orderID, []byte("fresh")).Return(nil).Once()

		qr, err := svc.ReceiptQRCode(ctx, userID, orderID)
		require.NoError(t, err)
		assert.Equal(t, []byte("fresh"), qr)
	})

	t.Run("other user", func(t *testing.T) {
		svc, deps := newOrderService(t)
		deps.orders.On("GetQRCode", ctx, otherUserID, orderID).Return(nil, sql.ErrNoRows).Once()

		_, err := svc.ReceiptQRCode(ctx, otherUserID, orderID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestReceiptQRGenerator(t *testing.T) {
	png, err := service.ReceiptQRGenerator{BaseURL: "http://localhost/"}.Generate(orderID)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}
