package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrEmailTaken is returned by user storage when the unique email index rejects an insert.
var ErrEmailTaken = errors.New("email already registered")

// CheckoutPending marks an idempotency key whose order is still being created.
const CheckoutPending = "pending"

// MaxQuantity caps a single cart or order line.
const MaxQuantity = 99

type Food struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image"`
	IsAvailable bool            `json:"isAvailable"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CartLine is one (user, food) pair; Food holds the live catalog row when listed.
type CartLine struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	FoodID    string    `json:"foodId"`
	Quantity  int       `json:"quantity"`
	Food      *Food     `json:"food,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderLine is a priced snapshot taken at checkout. It never follows catalog edits.
type OrderLine struct {
	FoodID   string          `json:"food"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

func (l OrderLine) Amount() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user"`
	Items           []OrderLine     `json:"items"`
	DeliveryAddress string          `json:"deliveryAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	Note            string          `json:"note,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	QRCode          string          `json:"qrCode,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CheckoutItem is what the client asks for; the price is always looked up again.
type CheckoutItem struct {
	FoodID   string `json:"food"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items           []CheckoutItem   `json:"items"`
	DeliveryAddress string           `json:"deliveryAddress"`
	PaymentMethod   PaymentMethod    `json:"paymentMethod"`
	Note            string           `json:"note"`
	DeliveryFee     *decimal.Decimal `json:"deliveryFee,omitempty"`
	Total           *decimal.Decimal `json:"total,omitempty"`
	IdempotencyKey  string           `json:"-"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type ProfileUpdate struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
