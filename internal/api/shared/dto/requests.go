package dto

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// CreateAlbumRequest represents the request body for creating an album
type CreateAlbumRequest struct {
	Name        string `json:"name"`
	CoverURI    string `json:"cover_uri"`
	TotalTracks int    `json:"total_tracks"`
	MaxSupply   int64  `json:"max_supply"`
}

// MintTrackRequest represents the request body for minting the first copy of a track
type MintTrackRequest struct {
	Name      string `json:"name"`
	URI       string `json:"uri"`
	MinPrice  int64  `json:"min_price"`
	MaxSupply int64  `json:"max_supply"`
}

// SetMaxSupplyRequest represents the request body for changing a supply cap
type SetMaxSupplyRequest struct {
	MaxSupply int64 `json:"max_supply"`
}

// UpdatePriceRequest represents the request body for changing a track's minimum price
type UpdatePriceRequest struct {
	MinPrice int64 `json:"min_price"`
}

// UpdateSaleStatusRequest represents the request body for listing or delisting a track
type UpdateSaleStatusRequest struct {
	IsForSale *bool `json:"is_for_sale"`
}

// Validate checks the body carries the listing flag
func (r *UpdateSaleStatusRequest) Validate() error {
	if r.IsForSale == nil {
		return errors.New("is_for_sale is required")
	}
	return nil
}

// SetRoyaltyRequest represents the request body for changing the royalty split
type SetRoyaltyRequest struct {
	CreatorPct uint8 `json:"creator_pct"`
	SellerPct  uint8 `json:"seller_pct"`
}

// PurchaseRequest represents the request body for buying a token
type PurchaseRequest struct {
	Payment int64 `json:"payment"`
}

// TransferRequest represents the request body for an administrative transfer
type TransferRequest struct {
	To string `json:"to"`
}

// Validate checks the recipient is a hex address. Whether it may hold the
// token is decided by the ledger.
func (r *TransferRequest) Validate() error {
	if !common.IsHexAddress(strings.TrimSpace(r.To)) {
		return errors.New("to must be a hex address")
	}
	return nil
}

// Recipient returns the decoded recipient address
func (r *TransferRequest) Recipient() common.Address {
	return common.HexToAddress(strings.TrimSpace(r.To))
}
