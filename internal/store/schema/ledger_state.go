package schema

import (
	"time"
)

// LedgerStateID is the primary key of the single ledger_state row
const LedgerStateID = 1

// LedgerState represents the ledger_state table - a single row holding the
// counters and settings that must commit together with catalog changes
type LedgerState struct {
	ID                uint8     `gorm:"column:id;primaryKey;autoIncrement:false"`
	NextAlbumID       uint64    `gorm:"column:next_album_id;not null"`
	NextTokenID       uint64    `gorm:"column:next_token_id;not null"`
	Paused            bool      `gorm:"column:paused;not null;default:false"`
	CreatorRoyaltyPct uint8     `gorm:"column:creator_royalty_pct;not null"`
	SellerRoyaltyPct  uint8     `gorm:"column:seller_royalty_pct;not null"`
	LastEventSeq      uint64    `gorm:"column:last_event_seq;not null;default:0"`
	LastEventHash     string    `gorm:"column:last_event_hash;not null;type:text;default:''"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for the LedgerState model
func (LedgerState) TableName() string {
	return "ledger_state"
}
