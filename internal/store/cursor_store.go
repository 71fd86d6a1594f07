package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"gorm.io/gorm"

	"github.com/KXX-Hub/kxx-digital-album/internal/store/schema"
)

//go:generate mockgen -source=cursor_store.go -destination=../mocks/cursor_store.go -package=mocks -mock_names=CursorStore=MockCursorStore

// CursorStore defines the interface for storing and retrieving journal cursors
type CursorStore interface {
	// GetEventCursor retrieves the last relayed event sequence for a consumer
	GetEventCursor(ctx context.Context, consumer string) (uint64, error)
	// SetEventCursor stores the last relayed event sequence for a consumer
	SetEventCursor(ctx context.Context, consumer string, seq uint64) error
}

func eventCursorKey(consumer string) string {
	return fmt.Sprintf("event_cursor:%s", consumer)
}

type cursorStore struct {
	db *gorm.DB
}

// NewCursorStore creates a new cursor store backed by the key_value_store table
func NewCursorStore(db *gorm.DB) CursorStore {
	return &cursorStore{db: db}
}

// GetEventCursor retrieves the last relayed event sequence for a consumer
func (s *cursorStore) GetEventCursor(ctx context.Context, consumer string) (uint64, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", eventCursorKey(consumer)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil // Return 0 if no cursor exists
		}
		return 0, fmt.Errorf("failed to get event cursor: %w", err)
	}

	seq, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse event cursor: %w", err)
	}

	return seq, nil
}

// SetEventCursor stores the last relayed event sequence for a consumer
func (s *cursorStore) SetEventCursor(ctx context.Context, consumer string, seq uint64) error {
	kv := schema.KeyValueStore{
		Key:   eventCursorKey(consumer),
		Value: strconv.FormatUint(seq, 10),
	}

	err := s.db.WithContext(ctx).Save(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set event cursor: %w", err)
	}

	return nil
}

type memoryCursorStore struct {
	mu      sync.Mutex
	cursors map[string]uint64
}

// NewMemoryCursorStore creates a cursor store that keeps cursors in process memory
func NewMemoryCursorStore() CursorStore {
	return &memoryCursorStore{cursors: make(map[string]uint64)}
}

func (s *memoryCursorStore) GetEventCursor(_ context.Context, consumer string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors[consumer], nil
}

func (s *memoryCursorStore) SetEventCursor(_ context.Context, consumer string, seq uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[consumer] = seq
	return nil
}
