package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/store/schema"
)

// pgStore implements Store and, when bound to a transaction handle, Tx
type pgStore struct {
	db   *gorm.DB
	inTx bool
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero values fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// The ledger serializes its writes, so the pool mostly serves concurrent reads.
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	if maxIdleConns <= 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime <= 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	maxIdleConns = min(maxIdleConns, maxOpenConns)

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Transaction runs fn inside a gorm transaction. When the store is already bound
// to a transaction, gorm nests it with a savepoint.
func (s *pgStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&pgStore{db: tx, inTx: true})
	})
}

// Close closes the underlying connection pool
func (s *pgStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// =============================================================================
// Reads
// =============================================================================

// GetLedgerState retrieves the single ledger state row. Inside a transaction
// the row is locked until commit, so writers on other connections queue on it.
func (s *pgStore) GetLedgerState(ctx context.Context) (*domain.LedgerState, error) {
	query := s.db.WithContext(ctx)
	if s.inTx {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var row schema.LedgerState
	err := query.Where("id = ?", schema.LedgerStateID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ledger state: %w", err)
	}

	return &domain.LedgerState{
		NextAlbumID:       row.NextAlbumID,
		NextTokenID:       row.NextTokenID,
		Paused:            row.Paused,
		CreatorRoyaltyPct: row.CreatorRoyaltyPct,
		SellerRoyaltyPct:  row.SellerRoyaltyPct,
		LastEventSeq:      row.LastEventSeq,
		LastEventHash:     row.LastEventHash,
	}, nil
}

// GetAlbum retrieves an album and derives its filled slots from the tracks table
func (s *pgStore) GetAlbum(ctx context.Context, albumID uint64) (*domain.Album, error) {
	var row schema.Album
	err := s.db.WithContext(ctx).Where("id = ?", albumID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get album: %w", err)
	}

	slots := []int{}
	err = s.db.WithContext(ctx).
		Model(&schema.Track{}).
		Where("album_id = ?", albumID).
		Order("track_number ASC").
		Pluck("track_number", &slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get album track slots: %w", err)
	}

	album := albumFromRow(row)
	album.TrackSlotsFilled = slots
	return &album, nil
}

// GetTrack retrieves a track by album and track number
func (s *pgStore) GetTrack(ctx context.Context, albumID uint64, trackNumber int) (*domain.Track, error) {
	var row schema.Track
	err := s.db.WithContext(ctx).
		Where("album_id = ? AND track_number = ?", albumID, trackNumber).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	track := trackFromRow(row)
	return &track, nil
}

// GetAlbumTracks retrieves the tracks of an album ordered by track number
func (s *pgStore) GetAlbumTracks(ctx context.Context, albumID uint64) ([]domain.Track, error) {
	var rows []schema.Track
	err := s.db.WithContext(ctx).
		Where("album_id = ?", albumID).
		Order("track_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get album tracks: %w", err)
	}

	tracks := make([]domain.Track, 0, len(rows))
	for _, row := range rows {
		tracks = append(tracks, trackFromRow(row))
	}
	return tracks, nil
}

// GetToken retrieves an issued copy by its token id
func (s *pgStore) GetToken(ctx context.Context, tokenID uint64) (*domain.Token, error) {
	var row schema.Token
	err := s.db.WithContext(ctx).Where("id = ?", tokenID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	token := tokenFromRow(row)
	return &token, nil
}

// GetTokensByTrack retrieves the issued copies of a track ordered by token id
func (s *pgStore) GetTokensByTrack(ctx context.Context, albumID uint64, trackNumber int) ([]domain.Token, error) {
	var rows []schema.Token
	err := s.db.WithContext(ctx).
		Where("album_id = ? AND track_number = ?", albumID, trackNumber).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tokens by track: %w", err)
	}

	tokens := make([]domain.Token, 0, len(rows))
	for _, row := range rows {
		tokens = append(tokens, tokenFromRow(row))
	}
	return tokens, nil
}

// GetEvents retrieves journal events after the filter sequence
func (s *pgStore) GetEvents(ctx context.Context, filter EventQueryFilter) ([]domain.Event, error) {
	filter = filter.Normalize()

	var rows []schema.LedgerEvent
	err := s.db.WithContext(ctx).
		Where("seq > ?", filter.After).
		Order("seq ASC").
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	events := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, eventFromRow(row))
	}
	return events, nil
}

// =============================================================================
// Writes
// =============================================================================

// SaveLedgerState upserts the single ledger state row
func (s *pgStore) SaveLedgerState(ctx context.Context, state *domain.LedgerState) error {
	row := schema.LedgerState{
		ID:                schema.LedgerStateID,
		NextAlbumID:       state.NextAlbumID,
		NextTokenID:       state.NextTokenID,
		Paused:            state.Paused,
		CreatorRoyaltyPct: state.CreatorRoyaltyPct,
		SellerRoyaltyPct:  state.SellerRoyaltyPct,
		LastEventSeq:      state.LastEventSeq,
		LastEventHash:     state.LastEventHash,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save ledger state: %w", err)
	}

	return nil
}

// CreateAlbum inserts a new album
func (s *pgStore) CreateAlbum(ctx context.Context, album *domain.Album) error {
	row := schema.Album{
		ID:            album.ID,
		Name:          album.Name,
		CoverURI:      album.CoverURI,
		TotalTracks:   album.TotalTracks,
		MaxSupply:     album.MaxSupply,
		CurrentSupply: album.CurrentSupply,
		CreatedAt:     album.CreatedAt,
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create album: %w", err)
	}

	return nil
}

// UpdateAlbum persists the supply fields of an album
func (s *pgStore) UpdateAlbum(ctx context.Context, album *domain.Album) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Album{}).
		Where("id = ?", album.ID).
		Updates(map[string]any{
			"max_supply":     album.MaxSupply,
			"current_supply": album.CurrentSupply,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update album: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update album: album %d does not exist", album.ID)
	}

	return nil
}

// CreateTrack inserts a track, which fills its album slot
func (s *pgStore) CreateTrack(ctx context.Context, track *domain.Track) error {
	row := schema.Track{
		AlbumID:       track.AlbumID,
		TrackNumber:   track.TrackNumber,
		Name:          track.Name,
		URI:           track.URI,
		MinPrice:      track.MinPrice,
		MaxSupply:     track.MaxSupply,
		CurrentSupply: track.CurrentSupply,
		IsForSale:     track.IsForSale,
		Creator:       track.Creator.Hex(),
		CreatedAt:     track.CreatedAt,
		UpdatedAt:     track.UpdatedAt,
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create track: %w", err)
	}

	return nil
}

// UpdateTrack persists the mutable fields of a track
func (s *pgStore) UpdateTrack(ctx context.Context, track *domain.Track) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Track{}).
		Where("album_id = ? AND track_number = ?", track.AlbumID, track.TrackNumber).
		Updates(map[string]any{
			"min_price":      track.MinPrice,
			"max_supply":     track.MaxSupply,
			"current_supply": track.CurrentSupply,
			"is_for_sale":    track.IsForSale,
			"updated_at":     track.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update track: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update track: track %d/%d does not exist", track.AlbumID, track.TrackNumber)
	}

	return nil
}

// CreateToken inserts a new issued copy
func (s *pgStore) CreateToken(ctx context.Context, token *domain.Token) error {
	row := schema.Token{
		ID:          token.ID,
		AlbumID:     token.AlbumID,
		TrackNumber: token.TrackNumber,
		Owner:       token.Owner.Hex(),
		MintedAt:    token.MintedAt,
		UpdatedAt:   token.UpdatedAt,
	}

	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return nil
}

// UpdateToken persists the owner of an issued copy
func (s *pgStore) UpdateToken(ctx context.Context, token *domain.Token) error {
	result := s.db.WithContext(ctx).
		Model(&schema.Token{}).
		Where("id = ?", token.ID).
		Updates(map[string]any{
			"owner":      token.Owner.Hex(),
			"updated_at": token.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update token: token %d does not exist", token.ID)
	}

	return nil
}

// AppendEvent appends an event to the journal
func (s *pgStore) AppendEvent(ctx context.Context, event *domain.Event) error {
	row := schema.LedgerEvent{
		Seq:       event.Seq,
		EventID:   event.ID,
		EventType: string(event.Type),
		Caller:    event.Caller.Hex(),
		Payload:   datatypes.JSON(event.Payload),
		PrevHash:  event.PrevHash,
		Hash:      event.Hash,
		Timestamp: event.Timestamp,
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	return nil
}

// =============================================================================
// Row conversions
// =============================================================================

func albumFromRow(row schema.Album) domain.Album {
	return domain.Album{
		ID:            row.ID,
		Name:          row.Name,
		CoverURI:      row.CoverURI,
		TotalTracks:   row.TotalTracks,
		MaxSupply:     row.MaxSupply,
		CurrentSupply: row.CurrentSupply,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

func trackFromRow(row schema.Track) domain.Track {
	return domain.Track{
		AlbumID:       row.AlbumID,
		TrackNumber:   row.TrackNumber,
		Name:          row.Name,
		URI:           row.URI,
		MinPrice:      row.MinPrice,
		MaxSupply:     row.MaxSupply,
		CurrentSupply: row.CurrentSupply,
		IsForSale:     row.IsForSale,
		Creator:       common.HexToAddress(row.Creator),
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func tokenFromRow(row schema.Token) domain.Token {
	return domain.Token{
		ID:          row.ID,
		AlbumID:     row.AlbumID,
		TrackNumber: row.TrackNumber,
		Owner:       common.HexToAddress(row.Owner),
		MintedAt:    row.MintedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func eventFromRow(row schema.LedgerEvent) domain.Event {
	return domain.Event{
		Seq:       row.Seq,
		ID:        row.EventID,
		Type:      domain.EventType(row.EventType),
		Caller:    common.HexToAddress(row.Caller),
		Payload:   []byte(row.Payload),
		PrevHash:  row.PrevHash,
		Hash:      row.Hash,
		Timestamp: row.Timestamp.UTC(),
	}
}
