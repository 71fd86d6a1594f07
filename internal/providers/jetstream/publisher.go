package jetstream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
	"github.com/KXX-Hub/kxx-digital-album/internal/messaging"
)

// DuplicateWindow is how long the stream remembers message ids for deduplication
const DuplicateWindow = 24 * time.Hour

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	SubjectPrefix  string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc            adapter.NatsConn
	js            adapter.JetStream
	subjectPrefix string
	json          adapter.JSON

	closeOnce sync.Once
	closed    chan struct{}
}

// NewPublisher connects to NATS, makes sure the event stream exists and returns a publisher
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	if cfg.StreamName == "" || cfg.SubjectPrefix == "" {
		return nil, errors.New("stream name and subject prefix are required")
	}

	p := &publisher{
		subjectPrefix: cfg.SubjectPrefix,
		json:          jsonAdapter,
		closed:        make(chan struct{}),
	}

	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
			p.markClosed()
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}
	p.nc = nc
	p.js = js

	err = js.CreateOrUpdateStream(ctx, natsjs.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{cfg.SubjectPrefix + ".>"},
		Storage:    natsjs.FileStorage,
		Duplicates: DuplicateWindow,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}

	return p, nil
}

// PublishEvent publishes a ledger event to NATS JetStream. The event id is used
// as the message id so a replayed event is dropped by the stream.
func (p *publisher) PublishEvent(ctx context.Context, event *domain.Event) error {
	logger.DebugCtx(ctx, "Publishing Nats event", zap.Uint64("seq", event.Seq), zap.String("type", string(event.Type)))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := p.js.Publish(ctx, p.buildSubject(event), data, natsjs.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if ack != nil && ack.Duplicate {
		logger.DebugCtx(ctx, "Nats event already published", zap.Uint64("seq", event.Seq))
	}

	return nil
}

// buildSubject constructs the NATS subject based on the event
func (p *publisher) buildSubject(event *domain.Event) string {
	// Format: {prefix}.{event_type}
	// e.g., ledger.events.track_purchased
	return fmt.Sprintf("%s.%s", p.subjectPrefix, event.Type)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
	p.markClosed()
}

// CloseChan returns a channel that is closed when the publisher is closed
func (p *publisher) CloseChan() <-chan struct{} {
	return p.closed
}

func (p *publisher) markClosed() {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
}
