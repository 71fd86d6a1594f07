package schema

import (
	"time"
)

// Track represents the tracks table. A row exists only for filled track slots.
type Track struct {
	// AlbumID references the album the track belongs to
	AlbumID uint64 `gorm:"column:album_id;primaryKey;autoIncrement:false"`
	// TrackNumber is the slot number within the album (1..total_tracks)
	TrackNumber int `gorm:"column:track_number;primaryKey;autoIncrement:false"`
	// Name is the display name of the track
	Name string `gorm:"column:name;not null;type:text"`
	// URI is the content identifier of the track media
	URI string `gorm:"column:uri;not null;type:text"`
	// MinPrice is the minimum accepted payment, shared by all copies
	MinPrice int64 `gorm:"column:min_price;not null"`
	// MaxSupply caps the copies of this track
	MaxSupply int64 `gorm:"column:max_supply;not null"`
	// CurrentSupply counts the copies of this track
	CurrentSupply int64 `gorm:"column:current_supply;not null"`
	// IsForSale is the listing flag, shared by all copies
	IsForSale bool `gorm:"column:is_for_sale;not null"`
	// Creator is the identity that minted the first copy
	Creator string `gorm:"column:creator;not null;type:text"`
	// CreatedAt is the ledger time of the first mint
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`
	// UpdatedAt is the ledger time of the last change
	UpdatedAt time.Time `gorm:"column:updated_at;not null;type:timestamptz"`

	// Associations
	Album Album `gorm:"foreignKey:AlbumID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for the Track model
func (Track) TableName() string {
	return "tracks"
}
