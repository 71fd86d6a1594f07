package domain

import "errors"

var (
	// ErrValidation is returned for malformed or out-of-range input
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced album, track or token does not exist
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when an administrator-only call comes from another identity
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSystemPaused is returned by sale-affecting calls while the ledger is paused
	ErrSystemPaused = errors.New("system paused")

	// ErrCapacityExceeded is returned when an issuance would exceed a track or album cap
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInsufficientPayment is returned when a payment is below the track minimum price
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrNotForSale is returned when purchasing a copy whose track is not listed
	ErrNotForSale = errors.New("not for sale")

	// ErrSelfPurchase is returned when the buyer already owns the copy
	ErrSelfPurchase = errors.New("self purchase")

	// ErrPaymentDispatch is returned when routing a payment share fails
	ErrPaymentDispatch = errors.New("payment dispatch failed")

	// ErrReentrancy is returned when a mutating call starts while another is in progress
	ErrReentrancy = errors.New("reentrant call")
)

// IsRetryable reports whether the same request may succeed later without being changed
func IsRetryable(err error) bool {
	return errors.Is(err, ErrSystemPaused) || errors.Is(err, ErrPaymentDispatch)
}
