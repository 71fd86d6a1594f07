package messaging

import (
	"context"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

// Publisher defines the interface for publishing ledger events to a message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a ledger audit event. Publishing the same event
	// twice must not produce a second message.
	PublishEvent(ctx context.Context, event *domain.Event) error
	// Close closes the connection
	Close()
	// CloseChan returns a channel that is closed when the publisher is closed
	CloseChan() <-chan struct{}
}
