package dto

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

// CreateAlbumResponse represents the response of a created album
type CreateAlbumResponse struct {
	AlbumID uint64 `json:"album_id"`
}

// MintResponse represents the response of an issued copy
type MintResponse struct {
	TokenID uint64 `json:"token_id"`
}

// AlbumResponse represents an album with its supply
type AlbumResponse struct {
	domain.Album
	Supply domain.Supply `json:"supply"`
}

// NewAlbumResponse maps an album to its response
func NewAlbumResponse(album *domain.Album) *AlbumResponse {
	return &AlbumResponse{
		Album:  *album,
		Supply: domain.Supply{Current: album.CurrentSupply, Max: album.MaxSupply},
	}
}

// TrackListResponse represents the minted tracks of an album
type TrackListResponse struct {
	Tracks []domain.Track `json:"tracks"`
}

// TokenListResponse represents the issued copies of a track
type TokenListResponse struct {
	Tokens []domain.Token `json:"tokens"`
}

// TokenURIResponse represents the content URI of a token
type TokenURIResponse struct {
	TokenID uint64 `json:"token_id"`
	URI     string `json:"uri"`
}

// TokenOwnerResponse represents the current holder of a token
type TokenOwnerResponse struct {
	TokenID uint64         `json:"token_id"`
	Owner   common.Address `json:"owner"`
}

// TokenExistsResponse reports whether a token has been issued
type TokenExistsResponse struct {
	TokenID uint64 `json:"token_id"`
	Exists  bool   `json:"exists"`
}

// StatsResponse represents the ledger counters and settings
type StatsResponse struct {
	TotalAlbums  uint64         `json:"total_albums"`
	TotalSupply  uint64         `json:"total_supply"`
	Paused       bool           `json:"paused"`
	Royalty      domain.Royalty `json:"royalty"`
	LastEventSeq uint64         `json:"last_event_seq"`
}

// EventListResponse represents a page of the audit journal.
// NextAfter is set when a further page may exist.
type EventListResponse struct {
	Events    []domain.Event `json:"events"`
	NextAfter *uint64        `json:"next_after,omitempty"`
}

// JournalVerificationResponse represents the result of walking the hash chain
type JournalVerificationResponse struct {
	Valid         bool   `json:"valid"`
	EventsChecked uint64 `json:"events_checked"`
	Error         string `json:"error,omitempty"`
}

// BalanceResponse represents the pending payout balance of an identity
type BalanceResponse struct {
	Address common.Address `json:"address"`
	Balance int64          `json:"balance"`
}

// WithdrawResponse represents a withdrawn payout balance
type WithdrawResponse struct {
	Address common.Address `json:"address"`
	Amount  int64          `json:"amount"`
}
