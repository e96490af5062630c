package service

import (
	"context"
	"time"

	"foodbox/order-svc/internal/domain"
)

type CartRepository interface {
	UpsertCartItem(ctx context.Context, userID, foodID string, quantity int) (*domain.CartLine, error)
	SetCartItemQuantity(ctx context.Context, userID, lineID string, quantity int) (*domain.CartLine, error)
	DeleteCartItem(ctx context.Context, userID, lineID string) (int64, error)
	ListCartItems(ctx context.Context, userID string) ([]domain.CartLine, error)
	ClearCart(ctx context.Context, userID string) (int64, error)
}

type CatalogReader interface {
	GetFood(ctx context.Context, foodID string) (*domain.Food, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	TransitionStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error)
	UpdatePaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error
	SaveQRCode(ctx context.Context, orderID string, qr []byte) error
	GetQRCode(ctx context.Context, userID, orderID string) ([]byte, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// CheckoutMarkers de-duplicates checkout submissions that carry an Idempotency-Key.
type CheckoutMarkers interface {
	Reserve(ctx context.Context, userID, key string) (string, error)
	Complete(ctx context.Context, userID, key, orderID string) error
	Release(ctx context.Context, userID, key string) error
}

type ResetCodeStore interface {
	Save(ctx context.Context, code, userID string, ttl time.Duration) (bool, error)
	Consume(ctx context.Context, code string) (string, error)
	Delete(ctx context.Context, code string) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type Notifier interface {
	Send(ctx context.Context, to, subject, body string) bool
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type CartServiceInterface interface {
	AddItem(ctx context.Context, userID, foodID string, quantity int) (*domain.CartLine, error)
	SetQuantity(ctx context.Context, userID, lineID string, quantity int) (*domain.CartLine, error)
	RemoveItem(ctx context.Context, userID, lineID string) error
	ListItems(ctx context.Context, userID string) ([]domain.CartLine, error)
	Clear(ctx context.Context, userID string) error
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, bool, error)
	GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	AdvanceStatus(ctx context.Context, orderID string, to domain.OrderStatus) (*domain.Order, error)
	SettlePayment(ctx context.Context, orderID string) (*domain.Order, error)
	ReceiptQRCode(ctx context.Context, userID, orderID string) ([]byte, error)
	QRLink(orderID string) string
}

type AccountServiceInterface interface {
	Signup(ctx context.Context, name, email, password, address string) (*domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, code, password string) error
}

var (
	_ CartServiceInterface    = (*CartService)(nil)
	_ OrderServiceInterface   = (*OrderService)(nil)
	_ AccountServiceInterface = (*AccountService)(nil)
)
