package webhook

import (
	"encoding/json"
	"time"
)

// Header names carried by every webhook request
const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderTimestamp = "X-Webhook-Timestamp"
	HeaderEventID   = "X-Webhook-Event-Id"
)

// Event type constants
const (
	// EventTypeLedgerPrefix prefixes relayed journal events (e.g. "ledger.track_purchased")
	EventTypeLedgerPrefix = "ledger."

	// EventTypePayoutDispatch asks the receiver to route a payment share
	EventTypePayoutDispatch = "payout.dispatch"

	// EventTypePayoutReverse asks the receiver to undo a previously accepted payout
	EventTypePayoutReverse = "payout.reverse"
)

// WebhookEvent represents a webhook event to be delivered to clients
type WebhookEvent struct {
	// EventID is a unique identifier for this event, used by receivers for deduplication
	EventID string `json:"event_id"`
	// EventType is the type of event (e.g., "ledger.album_created")
	EventType string `json:"event_type"`
	// Timestamp is when the event was generated
	Timestamp time.Time `json:"timestamp"`
	// Data contains the event-specific payload
	Data json.RawMessage `json:"data"`
}
