package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/store"
)

// CreateAlbum creates an album with totalTracks empty slots and returns its id
func (l *Ledger) CreateAlbum(ctx context.Context, caller common.Address, name, coverURI string, totalTracks int, maxSupply int64) (uint64, error) {
	unlock, err := l.enter()
	if err != nil {
		return 0, l.finish(ctx, "create_album", err)
	}
	defer unlock()

	var albumID uint64
	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}
		if err := validateText("name", name); err != nil {
			return err
		}
		if err := validateText("cover uri", coverURI); err != nil {
			return err
		}
		if totalTracks <= 0 {
			return fmt.Errorf("%w: total tracks must be positive, got %d", domain.ErrValidation, totalTracks)
		}
		if maxSupply <= 0 {
			return fmt.Errorf("%w: max supply must be positive, got %d", domain.ErrValidation, maxSupply)
		}

		albumID = m.state.NextAlbumID
		album := &domain.Album{
			ID:          albumID,
			Name:        name,
			CoverURI:    coverURI,
			TotalTracks: totalTracks,
			MaxSupply:   maxSupply,
			CreatedAt:   m.now,
		}
		if err := m.tx.CreateAlbum(ctx, album); err != nil {
			return err
		}
		m.state.NextAlbumID++

		return m.emit(domain.EventTypeAlbumCreated, domain.AlbumCreatedPayload{
			AlbumID:     albumID,
			Name:        name,
			CoverURI:    coverURI,
			TotalTracks: totalTracks,
			MaxSupply:   maxSupply,
		})
	})
	if err != nil {
		return 0, l.finish(ctx, "create_album", err, zap.String("caller", caller.Hex()))
	}

	_ = l.finish(ctx, "create_album", nil, zap.Uint64("album_id", albumID))
	return albumID, nil
}

// MintTrack fills a track slot and issues its first copy to the caller.
// The album cap is checked after the track, copy and counters are staged, so a
// violation discards all of them.
func (l *Ledger) MintTrack(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, name, uri string, minPrice, maxSupply int64) (uint64, error) {
	unlock, err := l.enter()
	if err != nil {
		return 0, l.finish(ctx, "mint_track", err)
	}
	defer unlock()

	fields := []zap.Field{zap.Uint64("album_id", albumID), zap.Int("track_number", trackNumber)}

	var tokenID uint64
	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}
		if err := m.requireActive(); err != nil {
			return err
		}

		album, err := getAlbum(ctx, m.tx, albumID)
		if err != nil {
			return err
		}
		if !album.ValidTrackNumber(trackNumber) {
			return fmt.Errorf("%w: track number %d is outside 1..%d", domain.ErrValidation, trackNumber, album.TotalTracks)
		}
		if album.SlotFilled(trackNumber) {
			return fmt.Errorf("%w: track %d of album %d is already minted", domain.ErrValidation, trackNumber, albumID)
		}
		if err := validateText("name", name); err != nil {
			return err
		}
		if err := validateText("uri", uri); err != nil {
			return err
		}
		if minPrice < 0 {
			return fmt.Errorf("%w: min price must not be negative, got %d", domain.ErrValidation, minPrice)
		}
		if maxSupply <= 0 {
			return fmt.Errorf("%w: max supply must be positive, got %d", domain.ErrValidation, maxSupply)
		}

		tokenID = m.state.NextTokenID
		track := &domain.Track{
			AlbumID:       albumID,
			TrackNumber:   trackNumber,
			Name:          name,
			URI:           uri,
			MinPrice:      minPrice,
			MaxSupply:     maxSupply,
			CurrentSupply: 1,
			IsForSale:     true,
			Creator:       caller,
			CreatedAt:     m.now,
			UpdatedAt:     m.now,
		}
		if err := m.tx.CreateTrack(ctx, track); err != nil {
			return err
		}
		if err := m.tx.CreateToken(ctx, &domain.Token{
			ID:          tokenID,
			AlbumID:     albumID,
			TrackNumber: trackNumber,
			Owner:       caller,
			MintedAt:    m.now,
			UpdatedAt:   m.now,
		}); err != nil {
			return err
		}
		m.state.NextTokenID++
		album.CurrentSupply++

		if album.CurrentSupply > album.MaxSupply {
			return fmt.Errorf("%w: album %d supply cap %d reached", domain.ErrCapacityExceeded, albumID, album.MaxSupply)
		}
		if err := m.tx.UpdateAlbum(ctx, album); err != nil {
			return err
		}

		return m.emit(domain.EventTypeTrackMinted, domain.TrackMintedPayload{
			AlbumID:        albumID,
			TrackNumber:    trackNumber,
			TokenID:        tokenID,
			FirstCopy:      true,
			Name:           name,
			URI:            uri,
			MinPrice:       minPrice,
			MaxSupply:      maxSupply,
			TrackSupply:    track.CurrentSupply,
			AlbumSupply:    album.CurrentSupply,
			AlbumMaxSupply: album.MaxSupply,
			TrackForSale:   track.IsForSale,
			Creator:        caller,
			Owner:          caller,
		})
	})
	if err != nil {
		return 0, l.finish(ctx, "mint_track", err, fields...)
	}

	_ = l.finish(ctx, "mint_track", nil, append(fields, zap.Uint64("token_id", tokenID))...)
	return tokenID, nil
}

// MintAdditionalCopy issues another copy of a minted track to the caller
func (l *Ledger) MintAdditionalCopy(ctx context.Context, caller common.Address, albumID uint64, trackNumber int) (uint64, error) {
	unlock, err := l.enter()
	if err != nil {
		return 0, l.finish(ctx, "mint_additional_copy", err)
	}
	defer unlock()

	fields := []zap.Field{zap.Uint64("album_id", albumID), zap.Int("track_number", trackNumber)}

	var tokenID uint64
	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}
		if err := m.requireActive(); err != nil {
			return err
		}

		album, err := getAlbum(ctx, m.tx, albumID)
		if err != nil {
			return err
		}
		track, err := getTrack(ctx, m.tx, albumID, trackNumber)
		if err != nil {
			return err
		}
		if track.CurrentSupply >= track.MaxSupply {
			return fmt.Errorf("%w: track %d/%d supply cap %d reached", domain.ErrCapacityExceeded, albumID, trackNumber, track.MaxSupply)
		}
		if album.CurrentSupply >= album.MaxSupply {
			return fmt.Errorf("%w: album %d supply cap %d reached", domain.ErrCapacityExceeded, albumID, album.MaxSupply)
		}

		tokenID = m.state.NextTokenID
		if err := m.tx.CreateToken(ctx, &domain.Token{
			ID:          tokenID,
			AlbumID:     albumID,
			TrackNumber: trackNumber,
			Owner:       caller,
			MintedAt:    m.now,
			UpdatedAt:   m.now,
		}); err != nil {
			return err
		}
		m.state.NextTokenID++

		track.CurrentSupply++
		track.UpdatedAt = m.now
		if err := m.tx.UpdateTrack(ctx, track); err != nil {
			return err
		}
		album.CurrentSupply++
		if err := m.tx.UpdateAlbum(ctx, album); err != nil {
			return err
		}

		return m.emit(domain.EventTypeTrackMinted, domain.TrackMintedPayload{
			AlbumID:        albumID,
			TrackNumber:    trackNumber,
			TokenID:        tokenID,
			FirstCopy:      false,
			Name:           track.Name,
			URI:            track.URI,
			MinPrice:       track.MinPrice,
			MaxSupply:      track.MaxSupply,
			TrackSupply:    track.CurrentSupply,
			AlbumSupply:    album.CurrentSupply,
			AlbumMaxSupply: album.MaxSupply,
			TrackForSale:   track.IsForSale,
			Creator:        track.Creator,
			Owner:          caller,
		})
	})
	if err != nil {
		return 0, l.finish(ctx, "mint_additional_copy", err, fields...)
	}

	_ = l.finish(ctx, "mint_additional_copy", nil, append(fields, zap.Uint64("token_id", tokenID))...)
	return tokenID, nil
}

// SetTrackMaxSupply changes a track cap; it may not drop below issued copies
func (l *Ledger) SetTrackMaxSupply(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, newMax int64) error {
	unlock, err := l.enter()
	if err != nil {
		return l.finish(ctx, "set_track_max_supply", err)
	}
	defer unlock()

	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}

		track, err := getTrack(ctx, m.tx, albumID, trackNumber)
		if err != nil {
			return err
		}
		if newMax < track.CurrentSupply || newMax <= 0 {
			return fmt.Errorf("%w: max supply %d is below issued copies %d", domain.ErrValidation, newMax, track.CurrentSupply)
		}

		track.MaxSupply = newMax
		track.UpdatedAt = m.now
		if err := m.tx.UpdateTrack(ctx, track); err != nil {
			return err
		}

		return m.emit(domain.EventTypeMaxSupplyUpdated, domain.MaxSupplyUpdatedPayload{
			AlbumID:     albumID,
			TrackNumber: &trackNumber,
			MaxSupply:   newMax,
		})
	})

	return l.finish(ctx, "set_track_max_supply", err,
		zap.Uint64("album_id", albumID), zap.Int("track_number", trackNumber), zap.Int64("max_supply", newMax))
}

// SetAlbumMaxSupply changes an album cap; it may not drop below issued copies
func (l *Ledger) SetAlbumMaxSupply(ctx context.Context, caller common.Address, albumID uint64, newMax int64) error {
	unlock, err := l.enter()
	if err != nil {
		return l.finish(ctx, "set_album_max_supply", err)
	}
	defer unlock()

	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}

		album, err := getAlbum(ctx, m.tx, albumID)
		if err != nil {
			return err
		}
		if newMax < album.CurrentSupply || newMax <= 0 {
			return fmt.Errorf("%w: max supply %d is below issued copies %d", domain.ErrValidation, newMax, album.CurrentSupply)
		}

		album.MaxSupply = newMax
		if err := m.tx.UpdateAlbum(ctx, album); err != nil {
			return err
		}

		return m.emit(domain.EventTypeMaxSupplyUpdated, domain.MaxSupplyUpdatedPayload{
			AlbumID:   albumID,
			MaxSupply: newMax,
		})
	})

	return l.finish(ctx, "set_album_max_supply", err, zap.Uint64("album_id", albumID), zap.Int64("max_supply", newMax))
}

// UpdateTrackPrice changes the minimum price shared by every copy of a track
func (l *Ledger) UpdateTrackPrice(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, minPrice int64) error {
	unlock, err := l.enter()
	if err != nil {
		return l.finish(ctx, "update_track_price", err)
	}
	defer unlock()

	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}

		track, err := getTrack(ctx, m.tx, albumID, trackNumber)
		if err != nil {
			return err
		}
		if minPrice < 0 {
			return fmt.Errorf("%w: min price must not be negative, got %d", domain.ErrValidation, minPrice)
		}

		track.MinPrice = minPrice
		track.UpdatedAt = m.now
		if err := m.tx.UpdateTrack(ctx, track); err != nil {
			return err
		}

		return m.emit(domain.EventTypeTrackMinPriceUpdated, domain.TrackMinPriceUpdatedPayload{
			AlbumID:     albumID,
			TrackNumber: trackNumber,
			MinPrice:    minPrice,
		})
	})

	return l.finish(ctx, "update_track_price", err,
		zap.Uint64("album_id", albumID), zap.Int("track_number", trackNumber), zap.Int64("min_price", minPrice))
}

// UpdateTrackSaleStatus lists or delists every copy of a track
func (l *Ledger) UpdateTrackSaleStatus(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, isForSale bool) error {
	unlock, err := l.enter()
	if err != nil {
		return l.finish(ctx, "update_track_sale_status", err)
	}
	defer unlock()

	_, err = l.mutate(ctx, caller, func(m *mutation) error {
		if err := l.requireController(caller); err != nil {
			return err
		}

		track, err := getTrack(ctx, m.tx, albumID, trackNumber)
		if err != nil {
			return err
		}

		track.IsForSale = isForSale
		track.UpdatedAt = m.now
		if err := m.tx.UpdateTrack(ctx, track); err != nil {
			return err
		}

		return m.emit(domain.EventTypeTrackSaleStatusUpdated, domain.TrackSaleStatusUpdatedPayload{
			AlbumID:     albumID,
			TrackNumber: trackNumber,
			IsForSale:   isForSale,
		})
	})

	return l.finish(ctx, "update_track_sale_status", err,
		zap.Uint64("album_id", albumID), zap.Int("track_number", trackNumber), zap.Bool("is_for_sale", isForSale))
}

func getAlbum(ctx context.Context, r store.Reader, albumID uint64) (*domain.Album, error) {
	album, err := r.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if album == nil {
		return nil, fmt.Errorf("%w: album %d", domain.ErrNotFound, albumID)
	}
	return album, nil
}

func getTrack(ctx context.Context, r store.Reader, albumID uint64, trackNumber int) (*domain.Track, error) {
	if _, err := getAlbum(ctx, r, albumID); err != nil {
		return nil, err
	}

	track, err := r.GetTrack(ctx, albumID, trackNumber)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, fmt.Errorf("%w: track %d of album %d", domain.ErrNotFound, trackNumber, albumID)
	}
	return track, nil
}

func getToken(ctx context.Context, r store.Reader, tokenID uint64) (*domain.Token, error) {
	token, err := r.GetToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("%w: token %d", domain.ErrNotFound, tokenID)
	}
	return token, nil
}
