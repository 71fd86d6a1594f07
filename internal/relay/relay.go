package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/KXX-Hub/kxx-digital-album/internal/adapter"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/journal"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
	"github.com/KXX-Hub/kxx-digital-album/internal/store"
)

const (
	// DEFAULT_POLL_INTERVAL is the wait between polls once the journal is drained
	DEFAULT_POLL_INTERVAL = 2 * time.Second
	// DEFAULT_BATCH_SIZE is the number of events read per poll
	DEFAULT_BATCH_SIZE = 100
)

// ErrRelayStopped is returned when Start is called on a relay that already ran
var ErrRelayStopped = errors.New("relay already stopped")

// Config holds the relay settings
type Config struct {
	// ConsumerName keys the persisted cursor, so two relays with different
	// names deliver the journal independently
	ConsumerName    string
	PollInterval    time.Duration
	BatchSize       int
	WorkerPoolSize  int
	WorkerQueueSize int
}

// EventSource reads committed journal events
type EventSource interface {
	GetEvents(ctx context.Context, filter store.EventQueryFilter) ([]domain.Event, error)
}

// Relay forwards journal events to its sinks in sequence order and persists a
// cursor after each event every sink accepted. Delivery is at-least-once: an
// event is redelivered to every sink when any sink fails it.
type Relay struct {
	cfg     Config
	source  EventSource
	cursors store.CursorStore
	sinks   []Sink
	chain   *journal.Chain
	clock   adapter.Clock
	pool    pond.Pool

	// last relayed event, used to check the link of the next batch
	lastSeq  uint64
	lastHash string

	running   atomic.Bool
	stopped   atomic.Bool
	stopOnce  sync.Once
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// New creates a relay
func New(cfg Config, source EventSource, cursors store.CursorStore, sinks []Sink, clock adapter.Clock) (*Relay, error) {
	if cfg.ConsumerName == "" {
		return nil, errors.New("consumer name is required")
	}
	if len(sinks) == 0 {
		return nil, errors.New("at least one sink is required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DEFAULT_POLL_INTERVAL
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DEFAULT_BATCH_SIZE
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = len(sinks)
	}

	opts := []pond.Option{}
	if cfg.WorkerQueueSize > 0 {
		opts = append(opts, pond.WithQueueSize(cfg.WorkerQueueSize))
	}

	return &Relay{
		cfg:       cfg,
		source:    source,
		cursors:   cursors,
		sinks:     sinks,
		chain:     journal.Default(),
		clock:     clock,
		pool:      pond.NewPool(cfg.WorkerPoolSize, opts...),
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}, nil
}

// Name returns the relay's name
func (r *Relay) Name() string {
	return "event-relay:" + r.cfg.ConsumerName
}

// Start runs the relay loop until the context is canceled or Stop is called.
// A full batch is followed by another poll right away. A relay runs once; a
// stopped relay returns ErrRelayStopped.
func (r *Relay) Start(ctx context.Context) error {
	if r.stopped.Load() {
		return ErrRelayStopped
	}
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("relay already running")
	}
	defer func() {
		r.stopped.Store(true)
		r.running.Store(false)
		r.pool.StopAndWait()
		close(r.stoppedCh) // Signal that we've stopped
	}()

	sinkNames := make([]string, 0, len(r.sinks))
	for _, sink := range r.sinks {
		sinkNames = append(sinkNames, sink.Name())
	}
	logger.InfoCtx(ctx, "Starting event relay",
		zap.String("consumer", r.cfg.ConsumerName),
		zap.Strings("sinks", sinkNames),
		zap.Int("batch_size", r.cfg.BatchSize),
		zap.Duration("poll_interval", r.cfg.PollInterval),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Event relay stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-r.stopChan:
			logger.InfoCtx(ctx, "Event relay stop requested")
			return nil
		default:
		}

		relayed, err := r.RelayOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err, zap.String("consumer", r.cfg.ConsumerName))
		}
		if err == nil && relayed == r.cfg.BatchSize {
			continue
		}

		if !r.sleep(ctx, r.cfg.PollInterval) {
			continue // the select above reports why
		}
	}
}

// Stop gracefully stops the relay with timeout support
func (r *Relay) Stop(ctx context.Context) error {
	if !r.running.Load() {
		return nil // Not running
	}

	logger.InfoCtx(ctx, "Stopping event relay")
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})

	select {
	case <-r.stoppedCh:
		logger.InfoCtx(ctx, "Event relay stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Event relay stop interrupted by context timeout")
		return ctx.Err()
	}
}

// RelayOnce delivers the next batch of events after the cursor and returns how
// many were delivered. It stops at the first event a sink fails; the cursor
// then points at the last fully delivered event.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	cursor, err := r.cursors.GetEventCursor(ctx, r.cfg.ConsumerName)
	if err != nil {
		return 0, fmt.Errorf("failed to get event cursor: %w", err)
	}

	events, err := r.source.GetEvents(ctx, store.EventQueryFilter{After: cursor, Limit: r.cfg.BatchSize})
	if err != nil {
		return 0, fmt.Errorf("failed to get events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	if events[0].Seq != cursor+1 {
		return 0, fmt.Errorf("%w: cursor is at seq %d, next event is seq %d", journal.ErrChainBroken, cursor, events[0].Seq)
	}
	// the link to the previous batch can only be checked once this relay has delivered it
	prevHash := events[0].PrevHash
	if r.lastSeq == cursor && r.lastHash != "" {
		prevHash = r.lastHash
	}
	if err := r.chain.Verify(events, prevHash); err != nil {
		return 0, fmt.Errorf("refusing to relay events after seq %d: %w", cursor, err)
	}

	for i := range events {
		event := &events[i]
		if err := r.deliver(ctx, event); err != nil {
			return i, fmt.Errorf("failed to relay event seq %d: %w", event.Seq, err)
		}
		if err := r.cursors.SetEventCursor(ctx, r.cfg.ConsumerName, event.Seq); err != nil {
			return i, fmt.Errorf("failed to set event cursor: %w", err)
		}
		r.lastSeq = event.Seq
		r.lastHash = event.Hash
	}

	logger.DebugCtx(ctx, "Relayed events",
		zap.String("consumer", r.cfg.ConsumerName),
		zap.Uint64("from_seq", events[0].Seq),
		zap.Uint64("to_seq", events[len(events)-1].Seq),
	)
	return len(events), nil
}

// deliver fans one event out to every sink and waits for all of them
func (r *Relay) deliver(ctx context.Context, event *domain.Event) error {
	tasks := make([]pond.Task, 0, len(r.sinks))
	for _, sink := range r.sinks {
		tasks = append(tasks, r.pool.SubmitErr(func() error {
			if err := sink.Deliver(ctx, event); err != nil {
				return fmt.Errorf("sink %s: %w", sink.Name(), err)
			}
			return nil
		}))
	}

	var errs []error
	for _, task := range tasks {
		if err := task.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted
func (r *Relay) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-r.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-r.stopChan:
		return false
	}
}
