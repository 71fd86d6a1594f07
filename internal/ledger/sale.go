package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
	"github.com/KXX-Hub/kxx-digital-album/internal/payment"
)

// Purchase transfers a listed copy to the buyer and routes the payment: the
// creator royalty to the track creator and the remainder to the previous owner.
// Payouts run inside the store transaction; if any later step fails, including
// the commit, every dispatched payout is reversed.
func (l *Ledger) Purchase(ctx context.Context, buyer common.Address, tokenID uint64, amount int64) (*domain.Receipt, error) {
	unlock, err := l.enter()
	if err != nil {
		return nil, l.finish(ctx, "purchase", err, zap.Uint64("token_id", tokenID))
	}
	defer unlock()

	fields := []zap.Field{
		zap.Uint64("token_id", tokenID),
		zap.String("buyer", buyer.Hex()),
		zap.Int64("payment", amount),
	}

	var (
		receipt   *domain.Receipt
		payoutIDs []string
	)
	event, err := l.mutate(ctx, buyer, func(m *mutation) error {
		if err := m.requireActive(); err != nil {
			return err
		}

		token, err := getToken(ctx, m.tx, tokenID)
		if err != nil {
			return err
		}
		if buyer == domain.ZeroAddress {
			return fmt.Errorf("%w: buyer identity is required", domain.ErrValidation)
		}
		track, err := getTrack(ctx, m.tx, token.AlbumID, token.TrackNumber)
		if err != nil {
			return err
		}
		if !track.IsForSale {
			return fmt.Errorf("%w: token %d", domain.ErrNotForSale, tokenID)
		}
		if amount < track.MinPrice {
			return fmt.Errorf("%w: payment %d is below min price %d", domain.ErrInsufficientPayment, amount, track.MinPrice)
		}
		if buyer == token.Owner {
			return fmt.Errorf("%w: %s already owns token %d", domain.ErrSelfPurchase, buyer.Hex(), tokenID)
		}

		seller := token.Owner
		creatorShare, sellerShare := domain.SplitPayment(amount, m.state.CreatorRoyaltyPct)

		token.Owner = buyer
		token.UpdatedAt = m.now
		if err := m.tx.UpdateToken(ctx, token); err != nil {
			return err
		}
		track.IsForSale = false
		track.UpdatedAt = m.now
		if err := m.tx.UpdateTrack(ctx, track); err != nil {
			return err
		}

		legs := []payment.Payout{
			{TokenID: tokenID, Leg: payment.LegSeller, Payer: buyer, Recipient: seller, Amount: sellerShare},
			{TokenID: tokenID, Leg: payment.LegCreator, Payer: buyer, Recipient: track.Creator, Amount: creatorShare},
		}
		for _, leg := range legs {
			if leg.Amount == 0 {
				continue
			}
			id, err := l.dispatcher.Dispatch(ctx, leg)
			if id != "" {
				payoutIDs = append(payoutIDs, id)
			}
			if err != nil {
				return fmt.Errorf("%w: %s share to %s: %w", domain.ErrPaymentDispatch, leg.Leg, leg.Recipient.Hex(), err)
			}
		}

		receipt = &domain.Receipt{
			TokenID:      tokenID,
			AlbumID:      token.AlbumID,
			TrackNumber:  token.TrackNumber,
			Seller:       seller,
			Buyer:        buyer,
			Creator:      track.Creator,
			Payment:      amount,
			CreatorShare: creatorShare,
			SellerShare:  sellerShare,
		}

		return m.emit(domain.EventTypeTrackPurchased, domain.TrackPurchasedPayload{
			TokenID:      tokenID,
			AlbumID:      token.AlbumID,
			TrackNumber:  token.TrackNumber,
			Seller:       seller,
			Buyer:        buyer,
			Creator:      track.Creator,
			Payment:      amount,
			CreatorShare: creatorShare,
			SellerShare:  sellerShare,
			IsForSale:    track.IsForSale,
		})
	})
	if err != nil {
		l.reversePayouts(ctx, payoutIDs)
		return nil, l.finish(ctx, "purchase", err, fields...)
	}

	if settler, ok := l.dispatcher.(payment.Settler); ok {
		settler.Settle(ctx, payoutIDs)
	}

	receipt.PayoutIDs = payoutIDs
	receipt.EventSeq = event.Seq
	_ = l.finish(ctx, "purchase", nil, append(fields,
		zap.Int64("creator_share", receipt.CreatorShare),
		zap.Int64("seller_share", receipt.SellerShare))...)
	return receipt, nil
}

// reversePayouts undoes dispatched payouts in reverse order. A failed reversal
// is logged; the remaining payouts are still reversed.
func (l *Ledger) reversePayouts(ctx context.Context, payoutIDs []string) {
	ctx = context.WithoutCancel(ctx)
	for i := len(payoutIDs) - 1; i >= 0; i-- {
		if err := l.dispatcher.Reverse(ctx, payoutIDs[i]); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to reverse payout: %w", err), zap.String("payout_id", payoutIDs[i]))
		}
	}
}

// TransferToken moves a copy to another identity without payment
func (l *Ledger) TransferToken(ctx context.Context, caller common.Address, tokenID uint64, to common.Address) error {
	unlock, err := l.enter()
	if err != nil {
		return l.finish(ctx, "transfer_token", err)
	}
	defer unlock()

	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}
		if err := m.requireActive(); err != nil {
			return err
		}
		if to == domain.ZeroAddress {
			return fmt.Errorf("%w: recipient identity is required", domain.ErrValidation)
		}

		token, err := getToken(ctx, m.tx, tokenID)
		if err != nil {
			return err
		}
		if token.Owner == to {
			return fmt.Errorf("%w: %s already owns token %d", domain.ErrValidation, to.Hex(), tokenID)
		}

		from := token.Owner
		token.Owner = to
		token.UpdatedAt = m.now
		if err := m.tx.UpdateToken(ctx, token); err != nil {
			return err
		}

		return m.emit(domain.EventTypeTokenTransferred, domain.TokenTransferredPayload{
			TokenID: tokenID,
			From:    from,
			To:      to,
		})
	})

	return l.finish(ctx, "transfer_token", err, zap.Uint64("token_id", tokenID), zap.String("to", to.Hex()))
}
