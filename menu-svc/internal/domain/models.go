package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultImage is shown until an image is uploaded.
const DefaultImage = "/placeholder.svg?height=300&width=400"

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

// FoodInput is the admin payload for create and update. A nil IsAvailable keeps
// the current value, or true on create.
type FoodInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image"`
	IsAvailable *bool           `json:"isAvailable"`
}

// Problem returns a human readable reason the input is unusable, or "".
func (in FoodInput) Problem() string {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return "name is required"
	case strings.TrimSpace(in.Description) == "":
		return "description is required"
	case strings.TrimSpace(in.Category) == "":
		return "category is required"
	case in.Price.IsNegative():
		return "price must not be negative"
	}
	return ""
}

type PopularFood struct {
	Food
	Score float64 `json:"score"`
}

type Period string

const (
	PeriodToday   Period = "today"
	PeriodAllTime Period = "all"
)
