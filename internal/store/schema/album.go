package schema

import (
	"time"
)

// Album represents the albums table
type Album struct {
	// ID is assigned by the ledger from its album counter, never by the database
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement:false"`
	// Name is the display name of the album
	Name string `gorm:"column:name;not null;type:text"`
	// CoverURI is the content identifier of the album cover
	CoverURI string `gorm:"column:cover_uri;not null;type:text"`
	// TotalTracks is the declared number of track slots
	TotalTracks int `gorm:"column:total_tracks;not null"`
	// MaxSupply caps the copies issued across all tracks of the album
	MaxSupply int64 `gorm:"column:max_supply;not null"`
	// CurrentSupply counts the copies issued across all tracks of the album
	CurrentSupply int64 `gorm:"column:current_supply;not null;default:0"`
	// CreatedAt is the ledger time the album was created
	CreatedAt time.Time `gorm:"column:created_at;not null;type:timestamptz"`

	// Associations
	Tracks []Track `gorm:"foreignKey:AlbumID;constraint:OnDelete:RESTRICT"`
}

// TableName specifies the table name for the Album model
func (Album) TableName() string {
	return "albums"
}
