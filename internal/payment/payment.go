package payment

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

//go:generate mockgen -source=payment.go -destination=../mocks/payment.go -package=mocks -mock_names=Dispatcher=MockDispatcher

// Leg identifies which share of a purchase a payout carries
type Leg string

const (
	LegSeller  Leg = "seller"
	LegCreator Leg = "creator"
)

var (
	// ErrInvalidAmount is returned for a payout with a non-positive amount
	ErrInvalidAmount = errors.New("invalid payout amount")
	// ErrUnknownPayout is returned when reversing a payout that was never dispatched
	ErrUnknownPayout = errors.New("unknown payout")
)

// Payout is one share of a purchase routed to a recipient
type Payout struct {
	TokenID   uint64         `json:"token_id"`
	Leg       Leg            `json:"leg"`
	Payer     common.Address `json:"payer"`
	Recipient common.Address `json:"recipient"`
	Amount    int64          `json:"amount"`
}

// Dispatcher routes payment shares to their recipients
type Dispatcher interface {
	// Dispatch routes a payout and returns its id. A non-empty id returned
	// alongside an error means the payout may have been accepted and must
	// still be reversed.
	Dispatch(ctx context.Context, payout Payout) (string, error)
	// Reverse undoes a dispatched payout
	Reverse(ctx context.Context, payoutID string) error
}

// Settler is implemented by dispatchers that keep payouts reversible until
// the sale that dispatched them commits
type Settler interface {
	// Settle releases committed payouts; they can no longer be reversed
	Settle(ctx context.Context, payoutIDs []string)
}
