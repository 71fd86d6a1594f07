package payment

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Book is a Dispatcher that credits payouts to pending balances which
// recipients later withdraw. Payouts stay reversible until settled.
type Book struct {
	mu       sync.Mutex
	balances map[common.Address]int64
	payouts  map[string]Payout
}

// NewBook creates an empty payment book
func NewBook() *Book {
	return &Book{
		balances: make(map[common.Address]int64),
		payouts:  make(map[string]Payout),
	}
}

// Dispatch credits the payout amount to the recipient balance
func (b *Book) Dispatch(_ context.Context, payout Payout) (string, error) {
	if payout.Amount <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidAmount, payout.Amount)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balance := b.balances[payout.Recipient]
	if balance > math.MaxInt64-payout.Amount {
		return "", fmt.Errorf("balance of %s would overflow", payout.Recipient.Hex())
	}

	id := uuid.NewString()
	b.balances[payout.Recipient] = balance + payout.Amount
	b.payouts[id] = payout
	return id, nil
}

// Reverse debits a previously credited payout
func (b *Book) Reverse(_ context.Context, payoutID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	payout, ok := b.payouts[payoutID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPayout, payoutID)
	}

	// a withdrawal may have drained the balance; the debt stays recorded as negative
	b.balances[payout.Recipient] -= payout.Amount
	delete(b.payouts, payoutID)
	return nil
}

// Settle forgets committed payouts. Their credit stays in the balances.
func (b *Book) Settle(_ context.Context, payoutIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, id := range payoutIDs {
		delete(b.payouts, id)
	}
}

// Pending returns the number of payouts that can still be reversed
func (b *Book) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.payouts)
}

// BalanceOf returns the pending balance of an identity
func (b *Book) BalanceOf(account common.Address) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

// Withdraw zeroes a positive pending balance and returns the withdrawn amount
func (b *Book) Withdraw(_ context.Context, account common.Address) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	amount := b.balances[account]
	if amount <= 0 {
		return 0, nil
	}

	delete(b.balances, account)
	return amount, nil
}
