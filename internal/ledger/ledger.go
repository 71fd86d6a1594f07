package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/journal"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
	"github.com/KXX-Hub/kxx-digital-album/internal/payment"
	"github.com/KXX-Hub/kxx-digital-album/internal/store"
)

// Config holds the ledger settings
type Config struct {
	// Controller is the only identity allowed to call administrative operations
	Controller common.Address
	// Royalty is the split applied when the ledger is bootstrapped. A ledger
	// that already has persisted state keeps its own split.
	Royalty domain.Royalty
}

// Option configures optional ledger collaborators
type Option func(*Ledger)

// WithClock overrides the clock used to timestamp records and events
func WithClock(clock adapter.Clock) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// WithChain overrides the journal chain used to build events
func WithChain(chain *journal.Chain) Option {
	return func(l *Ledger) {
		l.chain = chain
	}
}

// Ledger is the album issuance ledger. Mutating calls are serialized by a
// non-blocking guard; a call that finds the guard held fails with ErrReentrancy.
// Reads take no guard and observe committed state.
type Ledger struct {
	store      store.Store
	dispatcher payment.Dispatcher
	chain      *journal.Chain
	clock      adapter.Clock
	controller common.Address

	guard sync.Mutex
}

// New creates a ledger over the given store, bootstrapping its state on first use
func New(ctx context.Context, st store.Store, dispatcher payment.Dispatcher, cfg Config, opts ...Option) (*Ledger, error) {
	if cfg.Controller == domain.ZeroAddress {
		return nil, fmt.Errorf("%w: controller identity is required", domain.ErrValidation)
	}
	if !cfg.Royalty.Valid() {
		return nil, fmt.Errorf("%w: royalty %d/%d does not add up to %d",
			domain.ErrValidation, cfg.Royalty.CreatorPct, cfg.Royalty.SellerPct, domain.ROYALTY_DENOMINATOR)
	}
	if st == nil || dispatcher == nil {
		return nil, errors.New("store and dispatcher are required")
	}

	l := &Ledger{
		store:      st,
		dispatcher: dispatcher,
		chain:      journal.Default(),
		clock:      adapter.NewClock(),
		controller: cfg.Controller,
	}
	for _, opt := range opts {
		opt(l)
	}

	err := st.Transaction(ctx, func(tx store.Tx) error {
		state, err := tx.GetLedgerState(ctx)
		if err != nil {
			return err
		}
		if state != nil {
			return nil
		}

		logger.InfoCtx(ctx, "bootstrapping ledger state",
			zap.Uint8("creator_royalty_pct", cfg.Royalty.CreatorPct),
			zap.Uint8("seller_royalty_pct", cfg.Royalty.SellerPct))
		return tx.SaveLedgerState(ctx, domain.NewLedgerState(cfg.Royalty.CreatorPct, cfg.Royalty.SellerPct))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap ledger state: %w", err)
	}

	return l, nil
}

// Controller returns the administrator identity
func (l *Ledger) Controller() common.Address {
	return l.controller
}

// enter acquires the guard without blocking and returns its release function
func (l *Ledger) enter() (func(), error) {
	if !l.guard.TryLock() {
		return nil, domain.ErrReentrancy
	}
	return l.guard.Unlock, nil
}

func (l *Ledger) requireController(caller common.Address) error {
	if caller != l.controller {
		return fmt.Errorf("%w: %s is not the controller", domain.ErrUnauthorized, caller.Hex())
	}
	return nil
}

func (l *Ledger) now() time.Time {
	return journal.Timestamp(l.clock.Now())
}

// mutation carries the staged state of one mutating call
type mutation struct {
	ctx    context.Context
	tx     store.Tx
	chain  *journal.Chain
	state  *domain.LedgerState
	caller common.Address
	now    time.Time
	event  *domain.Event
}

func (m *mutation) requireActive() error {
	if m.state.Paused {
		return domain.ErrSystemPaused
	}
	return nil
}

// emit appends the event of this mutation and advances the journal anchor
func (m *mutation) emit(eventType domain.EventType, payload any) error {
	event, err := m.chain.Next(journal.AnchorOf(m.state), eventType, m.caller, payload, m.now)
	if err != nil {
		return err
	}
	if err := m.tx.AppendEvent(m.ctx, event); err != nil {
		return err
	}

	m.state.LastEventSeq = event.Seq
	m.state.LastEventHash = event.Hash
	m.event = event
	return nil
}

// mutate runs fn in a store transaction and persists the ledger state when fn
// emitted an event. Returns the emitted event (nil for a no-op).
func (l *Ledger) mutate(ctx context.Context, caller common.Address, fn func(m *mutation) error) (*domain.Event, error) {
	var event *domain.Event
	err := l.store.Transaction(ctx, func(tx store.Tx) error {
		state, err := tx.GetLedgerState(ctx)
		if err != nil {
			return err
		}
		if state == nil {
			return errors.New("ledger state is not initialized")
		}

		m := &mutation{
			ctx:    ctx,
			tx:     tx,
			chain:  l.chain,
			state:  state,
			caller: caller,
			now:    l.now(),
		}
		if err := fn(m); err != nil {
			return err
		}
		if m.event == nil {
			return nil
		}

		if err := tx.SaveLedgerState(ctx, m.state); err != nil {
			return err
		}
		event = m.event
		return nil
	})
	if err != nil {
		return nil, err
	}

	return event, nil
}

var ledgerErrors = []error{
	domain.ErrValidation,
	domain.ErrNotFound,
	domain.ErrUnauthorized,
	domain.ErrSystemPaused,
	domain.ErrCapacityExceeded,
	domain.ErrInsufficientPayment,
	domain.ErrNotForSale,
	domain.ErrSelfPurchase,
	domain.ErrPaymentDispatch,
	domain.ErrReentrancy,
}

func isLedgerError(err error) bool {
	for _, target := range ledgerErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// finish logs the outcome of a mutating call and returns err unchanged
func (l *Ledger) finish(ctx context.Context, op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("op", op))
	switch {
	case err == nil:
		logger.InfoCtx(ctx, "ledger mutation committed", fields...)
	case errors.Is(err, domain.ErrPaymentDispatch):
		logger.WarnCtx(ctx, "ledger mutation rolled back", append(fields, zap.Error(err))...)
	case isLedgerError(err):
		logger.DebugCtx(ctx, "ledger mutation rejected", append(fields, zap.Error(err))...)
	default:
		logger.ErrorCtx(ctx, fmt.Errorf("ledger mutation failed: %w", err), fields...)
	}
	return err
}

func validateText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s must not be empty", domain.ErrValidation, field)
	}
	return nil
}
