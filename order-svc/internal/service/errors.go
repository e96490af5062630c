package service

import "errors"

var (
	ErrUnauthenticated    = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTransition  = errors.New("order cannot be moved to the requested status")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrDelivery           = errors.New("failed to send OTP email")
)
