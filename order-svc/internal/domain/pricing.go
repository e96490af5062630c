package domain

import "github.com/shopspring/decimal"

var (
	FreeDeliveryThreshold = decimal.RequireFromString("50.00")
	StandardDeliveryFee   = decimal.RequireFromString("5.00")
)

// DeliveryFee is free from the threshold upwards, inclusive.
func DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return StandardDeliveryFee
}

func Subtotal(lines []OrderLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Amount())
	}
	return sum
}

// Price returns subtotal, fee and total for the given lines.
func Price(lines []OrderLine) (subtotal, fee, total decimal.Decimal) {
	subtotal = Subtotal(lines)
	fee = DeliveryFee(subtotal)
	return subtotal, fee, subtotal.Add(fee)
}
