package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oklog/ulid/v2"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

// ErrChainBroken is returned by Verify when an event does not link to its predecessor
var ErrChainBroken = errors.New("event chain broken")

// Anchor is the position the next event is chained to
type Anchor struct {
	Seq  uint64
	Hash string
}

// AnchorOf returns the journal anchor recorded in the ledger state
func AnchorOf(state *domain.LedgerState) Anchor {
	return Anchor{Seq: state.LastEventSeq, Hash: state.LastEventHash}
}

// envelope is the hashed form of an event. Hash and PrevHash are excluded;
// PrevHash is prepended to the hash input instead.
type envelope struct {
	Seq       uint64           `json:"seq"`
	ID        string           `json:"id"`
	Type      domain.EventType `json:"type"`
	Caller    string           `json:"caller"`
	Payload   json.RawMessage  `json:"payload"`
	Timestamp string           `json:"timestamp"`
}

// Chain builds and verifies hash-chained journal events
type Chain struct {
	jcs  adapter.JCS
	json adapter.JSON
}

// NewChain creates a chain using the given canonicalizer and JSON encoder
func NewChain(jcs adapter.JCS, encoder adapter.JSON) *Chain {
	return &Chain{jcs: jcs, json: encoder}
}

// Default returns a chain backed by the real JCS and JSON implementations
func Default() *Chain {
	return NewChain(adapter.NewJCS(), adapter.NewJSON())
}

// Timestamp normalizes a ledger time to the precision stored by the journal
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Next builds the event that follows anchor
func (c *Chain) Next(anchor Anchor, eventType domain.EventType, caller common.Address, payload any, at time.Time) (*domain.Event, error) {
	raw, err := c.json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	canonical, err := c.jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize %s payload: %w", eventType, err)
	}

	at = Timestamp(at)
	event := &domain.Event{
		Seq:       anchor.Seq + 1,
		ID:        ulid.MustNewDefault(at).String(),
		Type:      eventType,
		Caller:    caller,
		Payload:   canonical,
		PrevHash:  anchor.Hash,
		Timestamp: at,
	}

	event.Hash, err = c.Hash(event)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Hash computes the chain hash of an event from its fields and PrevHash.
// The payload is canonicalized again so a re-encoded copy hashes the same.
func (c *Chain) Hash(event *domain.Event) (string, error) {
	data, err := c.json.Marshal(envelope{
		Seq:       event.Seq,
		ID:        event.ID,
		Type:      event.Type,
		Caller:    event.Caller.Hex(),
		Payload:   event.Payload,
		Timestamp: Timestamp(event.Timestamp).Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	canonical, err := c.jcs.Transform(data)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize event envelope: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(event.PrevHash))
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks that events are contiguous, each links to its predecessor,
// and each hash matches its content. prevHash is the hash preceding events[0].
func (c *Chain) Verify(events []domain.Event, prevHash string) error {
	for i := range events {
		event := &events[i]

		if i > 0 && event.Seq != events[i-1].Seq+1 {
			return fmt.Errorf("%w: seq %d follows seq %d", ErrChainBroken, event.Seq, events[i-1].Seq)
		}
		if event.PrevHash != prevHash {
			return fmt.Errorf("%w: seq %d does not link to its predecessor", ErrChainBroken, event.Seq)
		}

		hash, err := c.Hash(event)
		if err != nil {
			return err
		}
		if hash != event.Hash {
			return fmt.Errorf("%w: seq %d hash mismatch", ErrChainBroken, event.Seq)
		}

		prevHash = event.Hash
	}

	return nil
}

// Verify checks a sequence of events with the default chain
func Verify(events []domain.Event, prevHash string) error {
	return Default().Verify(events, prevHash)
}
