package store

import (
	"context"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

// EventQueryFilter selects a page of journal events
type EventQueryFilter struct {
	// After returns events with a sequence strictly greater than this value
	After uint64
	// Limit caps the number of returned events (0 means DefaultEventLimit)
	Limit int
}

const (
	// DefaultEventLimit is the page size used when EventQueryFilter.Limit is 0
	DefaultEventLimit = 100
	// MaxEventLimit is the largest page size honoured by GetEvents
	MaxEventLimit = 1000
)

// Normalize clamps the filter limit into 1..MaxEventLimit
func (f EventQueryFilter) Normalize() EventQueryFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultEventLimit
	}
	if f.Limit > MaxEventLimit {
		f.Limit = MaxEventLimit
	}
	return f
}

// Reader defines the read operations of the ledger store.
// Lookups of missing rows return a nil result and a nil error.
type Reader interface {
	// GetLedgerState retrieves the counters and settings row (nil if the ledger was never bootstrapped)
	GetLedgerState(ctx context.Context) (*domain.LedgerState, error)
	// GetAlbum retrieves an album with its filled track slots
	GetAlbum(ctx context.Context, albumID uint64) (*domain.Album, error)
	// GetTrack retrieves a track by album and track number
	GetTrack(ctx context.Context, albumID uint64, trackNumber int) (*domain.Track, error)
	// GetAlbumTracks retrieves the minted tracks of an album ordered by track number
	GetAlbumTracks(ctx context.Context, albumID uint64) ([]domain.Track, error)
	// GetToken retrieves an issued copy by its token id
	GetToken(ctx context.Context, tokenID uint64) (*domain.Token, error)
	// GetTokensByTrack retrieves the issued copies of a track ordered by token id
	GetTokensByTrack(ctx context.Context, albumID uint64, trackNumber int) ([]domain.Token, error)
	// GetEvents retrieves journal events ordered by sequence
	GetEvents(ctx context.Context, filter EventQueryFilter) ([]domain.Event, error)
}

// Tx defines the operations available inside a store transaction.
// Writes become visible to other readers only when the transaction commits.
type Tx interface {
	Reader

	// SaveLedgerState creates or replaces the counters and settings row
	SaveLedgerState(ctx context.Context, state *domain.LedgerState) error
	// CreateAlbum inserts a new album; the id is assigned by the caller
	CreateAlbum(ctx context.Context, album *domain.Album) error
	// UpdateAlbum persists the mutable album fields (max and current supply)
	UpdateAlbum(ctx context.Context, album *domain.Album) error
	// CreateTrack inserts a track, filling its album slot
	CreateTrack(ctx context.Context, track *domain.Track) error
	// UpdateTrack persists the mutable track fields
	UpdateTrack(ctx context.Context, track *domain.Track) error
	// CreateToken inserts a new issued copy
	CreateToken(ctx context.Context, token *domain.Token) error
	// UpdateToken persists the owner of an issued copy
	UpdateToken(ctx context.Context, token *domain.Token) error
	// AppendEvent appends an event to the journal
	AppendEvent(ctx context.Context, event *domain.Event) error
}

// Store defines the interface for ledger persistence
type Store interface {
	Reader

	// Transaction runs fn inside a transaction. When fn returns an error every
	// write made through tx is discarded and the error is returned unchanged.
	Transaction(ctx context.Context, fn func(tx Tx) error) error
	// Close releases resources held by the store
	Close() error
}
