package domain

import "github.com/ethereum/go-ethereum/common"

const (
	// ROYALTY_DENOMINATOR is the sum every royalty configuration must reach
	ROYALTY_DENOMINATOR = 100

	// DEFAULT_CREATOR_ROYALTY_PCT is the creator share used by a fresh ledger
	DEFAULT_CREATOR_ROYALTY_PCT = 10
	// DEFAULT_SELLER_ROYALTY_PCT is the seller share used by a fresh ledger
	DEFAULT_SELLER_ROYALTY_PCT = 90
)

// ZeroAddress is never a valid caller, owner or payee
var ZeroAddress = common.Address{}
