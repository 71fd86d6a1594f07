package domain

import (
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType identifies the kind of ledger mutation an audit event records
type EventType string

const (
	EventTypeAlbumCreated           EventType = "album_created"
	EventTypeTrackMinted            EventType = "track_minted"
	EventTypeTrackMinPriceUpdated   EventType = "track_min_price_updated"
	EventTypeTrackSaleStatusUpdated EventType = "track_sale_status_updated"
	EventTypeTrackPurchased         EventType = "track_purchased"
	EventTypeRoyaltyUpdated         EventType = "royalty_updated"
	EventTypeMaxSupplyUpdated       EventType = "max_supply_updated"
	EventTypePaused                 EventType = "paused"
	EventTypeUnpaused               EventType = "unpaused"
	EventTypeTokenTransferred       EventType = "token_transferred"
)

// Event is one append-only audit record. Events form a hash chain: Hash covers
// PrevHash and the canonical form of every other field.
type Event struct {
	Seq       uint64          `json:"seq"`
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Caller    common.Address  `json:"caller"`
	Payload   json.RawMessage `json:"payload"`
	PrevHash  string          `json:"prev_hash"`
	Hash      string          `json:"hash"`
	Timestamp time.Time       `json:"timestamp"`
}

// AlbumCreatedPayload is the payload of EventTypeAlbumCreated
type AlbumCreatedPayload struct {
	AlbumID     uint64 `json:"album_id"`
	Name        string `json:"name"`
	CoverURI    string `json:"cover_uri"`
	TotalTracks int    `json:"total_tracks"`
	MaxSupply   int64  `json:"max_supply"`
}

// TrackMintedPayload is the payload of EventTypeTrackMinted. It is emitted for
// the first copy of a track and for every additional copy.
type TrackMintedPayload struct {
	AlbumID        uint64         `json:"album_id"`
	TrackNumber    int            `json:"track_number"`
	TokenID        uint64         `json:"token_id"`
	FirstCopy      bool           `json:"first_copy"`
	Name           string         `json:"name"`
	URI            string         `json:"uri"`
	MinPrice       int64          `json:"min_price"`
	MaxSupply      int64          `json:"max_supply"`
	TrackSupply    int64          `json:"track_supply"`
	AlbumSupply    int64          `json:"album_supply"`
	AlbumMaxSupply int64          `json:"album_max_supply"`
	TrackForSale   bool           `json:"track_for_sale"`
	Creator        common.Address `json:"creator"`
	Owner          common.Address `json:"owner"`
}

// TrackMinPriceUpdatedPayload is the payload of EventTypeTrackMinPriceUpdated
type TrackMinPriceUpdatedPayload struct {
	AlbumID     uint64 `json:"album_id"`
	TrackNumber int    `json:"track_number"`
	MinPrice    int64  `json:"min_price"`
}

// TrackSaleStatusUpdatedPayload is the payload of EventTypeTrackSaleStatusUpdated
type TrackSaleStatusUpdatedPayload struct {
	AlbumID     uint64 `json:"album_id"`
	TrackNumber int    `json:"track_number"`
	IsForSale   bool   `json:"is_for_sale"`
}

// TrackPurchasedPayload is the payload of EventTypeTrackPurchased
type TrackPurchasedPayload struct {
	TokenID      uint64         `json:"token_id"`
	AlbumID      uint64         `json:"album_id"`
	TrackNumber  int            `json:"track_number"`
	Seller       common.Address `json:"seller"`
	Buyer        common.Address `json:"buyer"`
	Creator      common.Address `json:"creator"`
	Payment      int64          `json:"payment"`
	CreatorShare int64          `json:"creator_share"`
	SellerShare  int64          `json:"seller_share"`
	IsForSale    bool           `json:"is_for_sale"`
}

// RoyaltyUpdatedPayload is the payload of EventTypeRoyaltyUpdated
type RoyaltyUpdatedPayload struct {
	CreatorPct uint8 `json:"creator_pct"`
	SellerPct  uint8 `json:"seller_pct"`
}

// MaxSupplyUpdatedPayload is the payload of EventTypeMaxSupplyUpdated.
// TrackNumber is nil when the album cap changed.
type MaxSupplyUpdatedPayload struct {
	AlbumID     uint64 `json:"album_id"`
	TrackNumber *int   `json:"track_number,omitempty"`
	MaxSupply   int64  `json:"max_supply"`
}

// PauseChangedPayload is the payload of EventTypePaused and EventTypeUnpaused
type PauseChangedPayload struct {
	Paused bool `json:"paused"`
}

// TokenTransferredPayload is the payload of EventTypeTokenTransferred
type TokenTransferredPayload struct {
	TokenID uint64         `json:"token_id"`
	From    common.Address `json:"from"`
	To      common.Address `json:"to"`
}
