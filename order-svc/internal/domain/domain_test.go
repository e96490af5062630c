package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDeliveryFee(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		want     string
	}{
		{name: "zero", subtotal: "0", want: "5.00"},
		{name: "below threshold", subtotal: "25.98", want: "5.00"},
		{name: "just below threshold", subtotal: "49.99", want: "5.00"},
		{name: "exactly threshold is free", subtotal: "50.00", want: "0"},
		{name: "above threshold", subtotal: "55.00", want: "0"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			got := DeliveryFee(dec(testCase.subtotal))
			assert.True(t, dec(testCase.want).Equal(got), "got %s", got)
		})
	}
}

func TestPrice(t *testing.T) {
	t.Run("margherita scenario", func(t *testing.T) {
		lines := []OrderLine{{FoodID: "f1", Name: "Margherita Pizza", Quantity: 2, Price: dec("12.99")}}
		subtotal, fee, total := Price(lines)
		assert.True(t, dec("25.98").Equal(subtotal))
		assert.True(t, dec("5.00").Equal(fee))
		assert.True(t, dec("30.98").Equal(total))
	})

	t.Run("free delivery", func(t *testing.T) {
		lines := []OrderLine{
			{FoodID: "f1", Quantity: 1, Price: dec("40.00")},
			{FoodID: "f2", Quantity: 3, Price: dec("5.00")},
		}
		subtotal, fee, total := Price(lines)
		assert.True(t, dec("55.00").Equal(subtotal))
		assert.True(t, fee.IsZero())
		assert.True(t, dec("55.00").Equal(total))
	})

	t.Run("total is always subtotal plus fee", func(t *testing.T) {
		for qty := 1; qty <= 10; qty++ {
			lines := []OrderLine{{Quantity: qty, Price: dec("7.35")}}
			subtotal, fee, total := Price(lines)
			assert.True(t, subtotal.Add(fee).Equal(total))
		}
	})
}

func TestOrderStatusTransitions(t *testing.T) {
	all := []OrderStatus{StatusPending, StatusConfirmed, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled}

	cancellable := map[OrderStatus]bool{StatusPending: true, StatusConfirmed: true}
	for _, status := range all {
		assert.Equal(t, cancellable[status], status.Cancellable(), status)
	}

	assert.True(t, StatusPending.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusPreparing))
	assert.True(t, StatusPreparing.CanTransitionTo(StatusOutForDelivery))
	assert.True(t, StatusOutForDelivery.CanTransitionTo(StatusDelivered))

	assert.False(t, StatusPending.CanTransitionTo(StatusDelivered))
	assert.False(t, StatusPreparing.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusDelivered.CanTransitionTo(StatusPending))

	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, OrderStatus("shipped").Valid())
}

func TestPaymentMethod(t *testing.T) {
	assert.Equal(t, PaymentPaid, PaymentCard.InitialPaymentStatus())
	assert.Equal(t, PaymentPending, PaymentCash.InitialPaymentStatus())
	assert.False(t, PaymentMethod("bitcoin").Valid())
}

func TestOrderJSONKeepsAmountsNumeric(t *testing.T) {
	order := Order{ID: "o1", Total: dec("30.98"), Status: StatusPending}
	body, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"total":30.98`)
	assert.Contains(t, string(body), `"status":"pending"`)
}

func TestCheckoutRequestAcceptsClientAmounts(t *testing.T) {
	var req CheckoutRequest
	err := json.Unmarshal([]byte(`{"items":[{"food":"f1","quantity":2}],"paymentMethod":"card","deliveryFee":0,"total":1.5}`), &req)
	require.NoError(t, err)
	require.NotNil(t, req.Total)
	assert.True(t, dec("1.5").Equal(*req.Total))
	assert.Equal(t, PaymentCard, req.PaymentMethod)
}
