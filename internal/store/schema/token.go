package schema

import (
	"time"
)

// Token represents the tokens table - one row per issued copy
type Token struct {
	// ID is the token id assigned by the ledger counter; ids are never reused
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement:false"`
	// AlbumID and TrackNumber identify the track this copy was issued from
	AlbumID     uint64 `gorm:"column:album_id;not null;index:idx_tokens_album_track,priority:1"`
	TrackNumber int    `gorm:"column:track_number;not null;index:idx_tokens_album_track,priority:2"`
	// Owner is the current holder identity
	Owner string `gorm:"column:owner;not null;type:text;index"`
	// MintedAt is the ledger time the copy was issued
	MintedAt time.Time `gorm:"column:minted_at;not null;type:timestamptz"`
	// UpdatedAt is the ledger time of the last ownership change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;type:timestamptz"`

	// Associations
	Track Track `gorm:"foreignKey:AlbumID,TrackNumber;references:AlbumID,TrackNumber;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "tokens"
}
