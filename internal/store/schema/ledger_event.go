package schema

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEvent represents the ledger_events table - the append-only audit journal.
// Rows are written in the same transaction as the mutation they describe.
type LedgerEvent struct {
	// Seq is the gapless position of the event in the journal
	Seq uint64 `gorm:"column:seq;primaryKey;autoIncrement:false"`
	// EventID is a ULID, unique and time-sortable
	EventID string `gorm:"column:event_id;not null;uniqueIndex;type:text"`
	// EventType identifies the mutation (album_created, track_purchased, ...)
	EventType string `gorm:"column:event_type;not null;type:text;index"`
	// Caller is the identity that performed the mutation
	Caller string `gorm:"column:caller;not null;type:text"`
	// Payload is the canonical JSON payload of the event
	Payload datatypes.JSON `gorm:"column:payload;not null;type:jsonb"`
	// PrevHash is the hash of the previous event (empty for the first event)
	PrevHash string `gorm:"column:prev_hash;not null;type:text"`
	// Hash chains this event to PrevHash
	Hash string `gorm:"column:hash;not null;type:text"`
	// Timestamp is the ledger time of the mutation
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz"`
}

// TableName specifies the table name for the LedgerEvent model
func (LedgerEvent) TableName() string {
	return "ledger_events"
}
