package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/journal"
	"github.com/KXX-Hub/kxx-digital-album/internal/store"
)

// Stats summarizes the ledger counters and settings
type Stats struct {
	TotalAlbums  uint64         `json:"total_albums"`
	TotalSupply  uint64         `json:"total_supply"`
	Paused       bool           `json:"paused"`
	Royalty      domain.Royalty `json:"royalty"`
	LastEventSeq uint64         `json:"last_event_seq"`
}

func (l *Ledger) state(ctx context.Context) (*domain.LedgerState, error) {
	state, err := l.store.GetLedgerState(ctx)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errors.New("ledger state is not initialized")
	}
	return state, nil
}

// GetAlbum returns an album with its filled track slots
func (l *Ledger) GetAlbum(ctx context.Context, albumID uint64) (*domain.Album, error) {
	return getAlbum(ctx, l.store, albumID)
}

// GetAlbumTracks returns the minted tracks of an album ordered by track number
func (l *Ledger) GetAlbumTracks(ctx context.Context, albumID uint64) ([]domain.Track, error) {
	if _, err := getAlbum(ctx, l.store, albumID); err != nil {
		return nil, err
	}
	return l.store.GetAlbumTracks(ctx, albumID)
}

// GetTrack returns a minted track
func (l *Ledger) GetTrack(ctx context.Context, albumID uint64, trackNumber int) (*domain.Track, error) {
	return getTrack(ctx, l.store, albumID, trackNumber)
}

// GetTrackSupply returns the issued copies of a track against its cap
func (l *Ledger) GetTrackSupply(ctx context.Context, albumID uint64, trackNumber int) (domain.Supply, error) {
	track, err := getTrack(ctx, l.store, albumID, trackNumber)
	if err != nil {
		return domain.Supply{}, err
	}
	return domain.Supply{Current: track.CurrentSupply, Max: track.MaxSupply}, nil
}

// GetAlbumSupply returns the issued copies of an album against its cap
func (l *Ledger) GetAlbumSupply(ctx context.Context, albumID uint64) (domain.Supply, error) {
	album, err := getAlbum(ctx, l.store, albumID)
	if err != nil {
		return domain.Supply{}, err
	}
	return domain.Supply{Current: album.CurrentSupply, Max: album.MaxSupply}, nil
}

// GetToken returns a copy with the view fields of its track
func (l *Ledger) GetToken(ctx context.Context, tokenID uint64) (*domain.TokenView, error) {
	token, err := getToken(ctx, l.store, tokenID)
	if err != nil {
		return nil, err
	}
	track, err := getTrack(ctx, l.store, token.AlbumID, token.TrackNumber)
	if err != nil {
		return nil, err
	}

	view := domain.NewTokenView(*token, *track)
	return &view, nil
}

// GetTrackTokens returns the issued copies of a track ordered by token id
func (l *Ledger) GetTrackTokens(ctx context.Context, albumID uint64, trackNumber int) ([]domain.Token, error) {
	if _, err := getTrack(ctx, l.store, albumID, trackNumber); err != nil {
		return nil, err
	}
	return l.store.GetTokensByTrack(ctx, albumID, trackNumber)
}

// OwnerOf returns the holder of a copy
func (l *Ledger) OwnerOf(ctx context.Context, tokenID uint64) (common.Address, error) {
	token, err := getToken(ctx, l.store, tokenID)
	if err != nil {
		return common.Address{}, err
	}
	return token.Owner, nil
}

// Exists reports whether a copy was issued
func (l *Ledger) Exists(ctx context.Context, tokenID uint64) (bool, error) {
	token, err := l.store.GetToken(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return token != nil, nil
}

// TokenURI returns the content identifier of the track a copy was issued from
func (l *Ledger) TokenURI(ctx context.Context, tokenID uint64) (string, error) {
	view, err := l.GetToken(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return view.URI, nil
}

// TotalAlbums returns the number of albums created
func (l *Ledger) TotalAlbums(ctx context.Context) (uint64, error) {
	state, err := l.state(ctx)
	if err != nil {
		return 0, err
	}
	return state.TotalAlbums(), nil
}

// TotalSupply returns the number of copies issued
func (l *Ledger) TotalSupply(ctx context.Context) (uint64, error) {
	state, err := l.state(ctx)
	if err != nil {
		return 0, err
	}
	return state.TotalSupply(), nil
}

// Royalty returns the split applied to purchases
func (l *Ledger) Royalty(ctx context.Context) (domain.Royalty, error) {
	state, err := l.state(ctx)
	if err != nil {
		return domain.Royalty{}, err
	}
	return domain.Royalty{CreatorPct: state.CreatorRoyaltyPct, SellerPct: state.SellerRoyaltyPct}, nil
}

// Paused reports whether the ledger is paused
func (l *Ledger) Paused(ctx context.Context) (bool, error) {
	state, err := l.state(ctx)
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

// Stats returns the ledger counters and settings
func (l *Ledger) Stats(ctx context.Context) (*Stats, error) {
	state, err := l.state(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalAlbums:  state.TotalAlbums(),
		TotalSupply:  state.TotalSupply(),
		Paused:       state.Paused,
		Royalty:      domain.Royalty{CreatorPct: state.CreatorRoyaltyPct, SellerPct: state.SellerRoyaltyPct},
		LastEventSeq: state.LastEventSeq,
	}, nil
}

// Events returns a page of the audit journal
func (l *Ledger) Events(ctx context.Context, filter store.EventQueryFilter) ([]domain.Event, error) {
	return l.store.GetEvents(ctx, filter)
}

// VerifyJournal walks the whole audit journal and checks its hash chain ends
// at the anchor recorded in the ledger state. Returns the number of events checked.
func (l *Ledger) VerifyJournal(ctx context.Context) (uint64, error) {
	state, err := l.state(ctx)
	if err != nil {
		return 0, err
	}

	var (
		after    uint64
		prevHash string
	)
	for after < state.LastEventSeq {
		events, err := l.store.GetEvents(ctx, store.EventQueryFilter{After: after, Limit: store.MaxEventLimit})
		if err != nil {
			return after, err
		}
		// events committed after the state was read are outside this check
		for len(events) > 0 && events[len(events)-1].Seq > state.LastEventSeq {
			events = events[:len(events)-1]
		}
		if len(events) == 0 {
			break
		}
		if events[0].Seq != after+1 {
			return after, fmt.Errorf("%w: expected seq %d, found %d", journal.ErrChainBroken, after+1, events[0].Seq)
		}
		if err := l.chain.Verify(events, prevHash); err != nil {
			return after, err
		}

		last := events[len(events)-1]
		after = last.Seq
		prevHash = last.Hash
	}

	if after != state.LastEventSeq || prevHash != state.LastEventHash {
		return after, fmt.Errorf("%w: journal ends at seq %d, ledger anchor is seq %d", journal.ErrChainBroken, after, state.LastEventSeq)
	}

	return after, nil
}
