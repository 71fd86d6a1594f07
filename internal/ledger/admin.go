package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

// SetRoyalty changes the split applied to subsequent purchases
func (l *Ledger) SetRoyalty(ctx context.Context, caller common.Address, creatorPct, sellerPct uint8) error {
	unlock, err := l.enter()
	if err != nil {
		return l.finish(ctx, "set_royalty", err)
	}
	defer unlock()

	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}

		royalty := domain.Royalty{CreatorPct: creatorPct, SellerPct: sellerPct}
		if !royalty.Valid() {
			return fmt.Errorf("%w: royalty %d/%d does not add up to %d",
				domain.ErrValidation, creatorPct, sellerPct, domain.ROYALTY_DENOMINATOR)
		}

		m.state.CreatorRoyaltyPct = creatorPct
		m.state.SellerRoyaltyPct = sellerPct

		return m.emit(domain.EventTypeRoyaltyUpdated, domain.RoyaltyUpdatedPayload{
			CreatorPct: creatorPct,
			SellerPct:  sellerPct,
		})
	})

	return l.finish(ctx, "set_royalty", err, zap.Uint8("creator_pct", creatorPct), zap.Uint8("seller_pct", sellerPct))
}

// Pause stops minting, purchases and transfers. Pausing a paused ledger
// succeeds without recording an event.
func (l *Ledger) Pause(ctx context.Context, caller common.Address) error {
	return l.setPaused(ctx, caller, true)
}

// Unpause resumes a paused ledger. Unpausing an active ledger succeeds without
// recording an event.
func (l *Ledger) Unpause(ctx context.Context, caller common.Address) error {
	return l.setPaused(ctx, caller, false)
}

func (l *Ledger) setPaused(ctx context.Context, caller common.Address, paused bool) error {
	op := "unpause"
	eventType := domain.EventTypeUnpaused
	if paused {
		op = "pause"
		eventType = domain.EventTypePaused
	}

	unlock, err := l.enter()
	if err != nil {
		return l.finish(ctx, op, err)
	}
	defer unlock()

	event, err := l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}
		if m.state.Paused == paused {
			return nil
		}

		m.state.Paused = paused
		return m.emit(eventType, domain.PauseChangedPayload{Paused: paused})
	})

	return l.finish(ctx, op, err, zap.Bool("changed", event != nil))
}
