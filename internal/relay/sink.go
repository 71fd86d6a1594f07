package relay

import (
	"context"
	"fmt"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/messaging"
	"github.com/KXX-Hub/kxx-digital-album/internal/webhook"
)

// Sink receives journal events in sequence order. An event may be delivered
// more than once; sinks deduplicate on the event id.
//
//go:generate mockgen -source=sink.go -destination=../mocks/sink.go -package=mocks -mock_names=Sink=MockSink
type Sink interface {
	// Name identifies the sink in logs
	Name() string
	// Deliver forwards one event
	Deliver(ctx context.Context, event *domain.Event) error
}

type publisherSink struct {
	publisher messaging.Publisher
}

// NewPublisherSink forwards events to a message broker
func NewPublisherSink(publisher messaging.Publisher) Sink {
	return &publisherSink{publisher: publisher}
}

func (s *publisherSink) Name() string {
	return "nats"
}

func (s *publisherSink) Deliver(ctx context.Context, event *domain.Event) error {
	return s.publisher.PublishEvent(ctx, event)
}

type webhookSink struct {
	name   string
	client *webhook.Client
	json   adapter.JSON
}

// NewWebhookSink forwards events as signed webhooks
func NewWebhookSink(name string, client *webhook.Client, jsonAdapter adapter.JSON) Sink {
	return &webhookSink{
		name:   name,
		client: client,
		json:   jsonAdapter,
	}
}

func (s *webhookSink) Name() string {
	return "webhook:" + s.name
}

func (s *webhookSink) Deliver(ctx context.Context, event *domain.Event) error {
	data, err := s.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = s.client.Send(ctx, webhook.WebhookEvent{
		EventID:   event.ID,
		EventType: webhook.EventTypeLedgerPrefix + string(event.Type),
		Timestamp: event.Timestamp,
		Data:      data,
	})
	return err
}
