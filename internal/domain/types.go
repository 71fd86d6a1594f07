package domain

import (
	"fmt"
	"math/bits"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Album is a named collection of numbered track slots with an aggregate supply cap
type Album struct {
	ID            uint64    `json:"id"`
	Name          string    `json:"name"`
	CoverURI      string    `json:"cover_uri"`
	TotalTracks   int       `json:"total_tracks"`
	MaxSupply     int64     `json:"max_supply"`
	CurrentSupply int64     `json:"current_supply"`
	CreatedAt     time.Time `json:"created_at"`

	// TrackSlotsFilled lists the minted track numbers in ascending order.
	// It is derived from the album's track records.
	TrackSlotsFilled []int `json:"track_slots_filled"`
}

// SlotFilled reports whether the track number has already been minted
func (a *Album) SlotFilled(trackNumber int) bool {
	_, found := slices.BinarySearch(a.TrackSlotsFilled, trackNumber)
	return found
}

// ValidTrackNumber reports whether the track number is within 1..TotalTracks
func (a *Album) ValidTrackNumber(trackNumber int) bool {
	return trackNumber >= 1 && trackNumber <= a.TotalTracks
}

// Track is one numbered work within an album. Sale status and minimum price are
// held here and shared by every issued copy of the track.
type Track struct {
	AlbumID       uint64         `json:"album_id"`
	TrackNumber   int            `json:"track_number"`
	Name          string         `json:"name"`
	URI           string         `json:"uri"`
	MinPrice      int64          `json:"min_price"`
	MaxSupply     int64          `json:"max_supply"`
	CurrentSupply int64          `json:"current_supply"`
	IsForSale     bool           `json:"is_for_sale"`
	Creator       common.Address `json:"creator"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Token is one uniquely owned issued copy of a track
type Token struct {
	ID          uint64         `json:"id"`
	AlbumID     uint64         `json:"album_id"`
	TrackNumber int            `json:"track_number"`
	Owner       common.Address `json:"owner"`
	MintedAt    time.Time      `json:"minted_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TokenView is a token joined with the view fields of its track
type TokenView struct {
	Token
	Name      string         `json:"name"`
	URI       string         `json:"uri"`
	MinPrice  int64          `json:"min_price"`
	IsForSale bool           `json:"is_for_sale"`
	Creator   common.Address `json:"creator"`
}

// NewTokenView builds the view of a token from its track record
func NewTokenView(token Token, track Track) TokenView {
	return TokenView{
		Token:     token,
		Name:      track.Name,
		URI:       track.URI,
		MinPrice:  track.MinPrice,
		IsForSale: track.IsForSale,
		Creator:   track.Creator,
	}
}

// Supply reports issued copies against a cap
type Supply struct {
	Current int64 `json:"current"`
	Max     int64 `json:"max"`
}

// LedgerState holds the process-wide counters and settings of the ledger.
// It is persisted alongside the catalog so it commits and rolls back with it.
type LedgerState struct {
	// NextAlbumID is the id the next created album receives (first album is 1)
	NextAlbumID uint64 `json:"next_album_id"`
	// NextTokenID is the id the next issued copy receives (first token is 1)
	NextTokenID       uint64 `json:"next_token_id"`
	Paused            bool   `json:"paused"`
	CreatorRoyaltyPct uint8  `json:"creator_royalty_pct"`
	SellerRoyaltyPct  uint8  `json:"seller_royalty_pct"`
	// LastEventSeq and LastEventHash anchor the audit journal hash chain
	LastEventSeq  uint64 `json:"last_event_seq"`
	LastEventHash string `json:"last_event_hash"`
}

// NewLedgerState returns the state of a ledger that has never been mutated
func NewLedgerState(creatorPct, sellerPct uint8) *LedgerState {
	return &LedgerState{
		NextAlbumID:       1,
		NextTokenID:       1,
		CreatorRoyaltyPct: creatorPct,
		SellerRoyaltyPct:  sellerPct,
	}
}

// TotalAlbums returns the number of albums ever created
func (s *LedgerState) TotalAlbums() uint64 {
	return s.NextAlbumID - 1
}

// TotalSupply returns the number of copies ever issued
func (s *LedgerState) TotalSupply() uint64 {
	return s.NextTokenID - 1
}

// Royalty is the creator/seller split applied to every purchase
type Royalty struct {
	CreatorPct uint8 `json:"creator_pct"`
	SellerPct  uint8 `json:"seller_pct"`
}

// Valid reports whether both shares add up to the royalty denominator
func (r Royalty) Valid() bool {
	return int(r.CreatorPct)+int(r.SellerPct) == ROYALTY_DENOMINATOR
}

// SplitPayment divides a payment into the creator and seller shares.
// The creator share is floored and the seller absorbs the remainder, so
// creatorShare + sellerShare == payment for any non-negative payment.
func SplitPayment(payment int64, creatorPct uint8) (creatorShare int64, sellerShare int64) {
	if payment <= 0 || creatorPct == 0 {
		return 0, max(payment, 0)
	}
	if creatorPct >= ROYALTY_DENOMINATOR {
		return payment, 0
	}

	// 128-bit intermediate product keeps payment*pct exact for any int64 payment
	hi, lo := bits.Mul64(uint64(payment), uint64(creatorPct))
	quo, _ := bits.Div64(hi, lo, ROYALTY_DENOMINATOR)

	creatorShare = int64(quo)
	return creatorShare, payment - creatorShare
}

// Receipt describes a completed purchase
type Receipt struct {
	TokenID      uint64         `json:"token_id"`
	AlbumID      uint64         `json:"album_id"`
	TrackNumber  int            `json:"track_number"`
	Seller       common.Address `json:"seller"`
	Buyer        common.Address `json:"buyer"`
	Creator      common.Address `json:"creator"`
	Payment      int64          `json:"payment"`
	CreatorShare int64          `json:"creator_share"`
	SellerShare  int64          `json:"seller_share"`
	PayoutIDs    []string       `json:"payout_ids"`
	EventSeq     uint64         `json:"event_seq"`
}

// ParseAddress parses a hex identity into its canonical form
func ParseAddress(address string) (common.Address, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("%w: invalid address %q", ErrValidation, address)
	}

	addr := common.HexToAddress(address)
	if addr == ZeroAddress {
		return common.Address{}, fmt.Errorf("%w: zero address is not an identity", ErrValidation)
	}

	return addr, nil
}
