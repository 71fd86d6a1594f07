package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
	"github.com/KXX-Hub/kxx-digital-album/internal/webhook"
)

// PayoutRequest is the webhook data of a payout.dispatch event
type PayoutRequest struct {
	PayoutID string `json:"payout_id"`
	Payout
}

// ReversalRequest is the webhook data of a payout.reverse event
type ReversalRequest struct {
	PayoutID string `json:"payout_id"`
}

// WebhookDispatcher routes payouts to an external payment service through
// signed webhooks. A payout is accepted once the service answers 2xx.
type WebhookDispatcher struct {
	client *webhook.Client
	clock  adapter.Clock
	json   adapter.JSON
}

// NewWebhookDispatcher creates a dispatcher posting to the given webhook client
func NewWebhookDispatcher(client *webhook.Client, clock adapter.Clock, json adapter.JSON) *WebhookDispatcher {
	return &WebhookDispatcher{client: client, clock: clock, json: json}
}

// Dispatch posts a payout.dispatch event. The payout id doubles as the event id,
// so the receiver can deduplicate retried deliveries.
//
// A failed delivery still returns the id: the service may have accepted the
// payout before the failure surfaced, so the caller must reverse it.
func (d *WebhookDispatcher) Dispatch(ctx context.Context, payout Payout) (string, error) {
	if payout.Amount <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidAmount, payout.Amount)
	}

	id := uuid.NewString()
	raw, err := d.json.Marshal(PayoutRequest{PayoutID: id, Payout: payout})
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s data: %w", webhook.EventTypePayoutDispatch, err)
	}
	if err := d.send(ctx, id, webhook.EventTypePayoutDispatch, raw); err != nil {
		return id, err
	}

	return id, nil
}

// Reverse posts a payout.reverse event for a dispatched payout
func (d *WebhookDispatcher) Reverse(ctx context.Context, payoutID string) error {
	raw, err := d.json.Marshal(ReversalRequest{PayoutID: payoutID})
	if err != nil {
		return fmt.Errorf("failed to marshal %s data: %w", webhook.EventTypePayoutReverse, err)
	}
	return d.send(ctx, uuid.NewString(), webhook.EventTypePayoutReverse, raw)
}

func (d *WebhookDispatcher) send(ctx context.Context, eventID, eventType string, raw []byte) error {
	_, err := d.client.Send(ctx, webhook.WebhookEvent{
		EventID:   eventID,
		EventType: eventType,
		Timestamp: d.clock.Now().UTC(),
		Data:      raw,
	})
	return err
}
