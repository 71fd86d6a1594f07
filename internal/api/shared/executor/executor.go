package executor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/KXX-Hub/kxx-digital-album/internal/api/shared/dto"
	apierrors "github.com/KXX-Hub/kxx-digital-album/internal/api/shared/errors"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/journal"
	"github.com/KXX-Hub/kxx-digital-album/internal/ledger"
	"github.com/KXX-Hub/kxx-digital-album/internal/store"
)

// Executor is the interface for the API executor
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// Catalog administration (controller only)
	CreateAlbum(ctx context.Context, caller common.Address, req dto.CreateAlbumRequest) (*dto.CreateAlbumResponse, error)
	MintTrack(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, req dto.MintTrackRequest) (*dto.MintResponse, error)
	MintAdditionalCopy(ctx context.Context, caller common.Address, albumID uint64, trackNumber int) (*dto.MintResponse, error)
	SetAlbumMaxSupply(ctx context.Context, caller common.Address, albumID uint64, maxSupply int64) error
	SetTrackMaxSupply(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, maxSupply int64) error
	UpdateTrackPrice(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, minPrice int64) error
	UpdateTrackSaleStatus(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, isForSale bool) error
	SetRoyalty(ctx context.Context, caller common.Address, req dto.SetRoyaltyRequest) error
	Pause(ctx context.Context, caller common.Address) error
	Unpause(ctx context.Context, caller common.Address) error
	TransferToken(ctx context.Context, caller common.Address, tokenID uint64, to common.Address) error

	// Purchase buys a token on behalf of the caller
	Purchase(ctx context.Context, buyer common.Address, tokenID uint64, payment int64) (*domain.Receipt, error)

	// Reads
	GetAlbum(ctx context.Context, albumID uint64) (*dto.AlbumResponse, error)
	GetAlbumSupply(ctx context.Context, albumID uint64) (*domain.Supply, error)
	GetAlbumTracks(ctx context.Context, albumID uint64) (*dto.TrackListResponse, error)
	GetTrack(ctx context.Context, albumID uint64, trackNumber int) (*domain.Track, error)
	GetTrackSupply(ctx context.Context, albumID uint64, trackNumber int) (*domain.Supply, error)
	GetTrackTokens(ctx context.Context, albumID uint64, trackNumber int) (*dto.TokenListResponse, error)
	GetToken(ctx context.Context, tokenID uint64) (*domain.TokenView, error)
	GetTokenOwner(ctx context.Context, tokenID uint64) (*dto.TokenOwnerResponse, error)
	GetTokenURI(ctx context.Context, tokenID uint64) (*dto.TokenURIResponse, error)
	TokenExists(ctx context.Context, tokenID uint64) (*dto.TokenExistsResponse, error)
	GetStats(ctx context.Context) (*dto.StatsResponse, error)

	// GetEvents returns a page of the audit journal after the given sequence number
	GetEvents(ctx context.Context, after uint64, limit int) (*dto.EventListResponse, error)

	// VerifyJournal walks the audit journal hash chain
	VerifyJournal(ctx context.Context) (*dto.JournalVerificationResponse, error)

	// Payout balances, only available when payouts are held in the in-process book
	GetBalance(ctx context.Context, address common.Address) (*dto.BalanceResponse, error)
	Withdraw(ctx context.Context, caller common.Address) (*dto.WithdrawResponse, error)
}

// BalanceBook holds pending payouts per identity
type BalanceBook interface {
	BalanceOf(account common.Address) int64
	Withdraw(ctx context.Context, account common.Address) (int64, error)
}

type executor struct {
	ledger *ledger.Ledger
	book   BalanceBook

	// mu queues concurrent requests in front of the ledger so they are
	// serialized instead of rejected as reentrant calls
	mu sync.Mutex
}

// NewExecutor creates an executor over the ledger. book may be nil when
// payouts are dispatched outside the process.
func NewExecutor(l *ledger.Ledger, book BalanceBook) Executor {
	return &executor{ledger: l, book: book}
}

func (e *executor) serialize(fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn()
}

func (e *executor) CreateAlbum(ctx context.Context, caller common.Address, req dto.CreateAlbumRequest) (*dto.CreateAlbumResponse, error) {
	var albumID uint64
	err := e.serialize(func() (err error) {
		albumID, err = e.ledger.CreateAlbum(ctx, caller, req.Name, req.CoverURI, req.TotalTracks, req.MaxSupply)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.CreateAlbumResponse{AlbumID: albumID}, nil
}

func (e *executor) MintTrack(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, req dto.MintTrackRequest) (*dto.MintResponse, error) {
	var tokenID uint64
	err := e.serialize(func() (err error) {
		tokenID, err = e.ledger.MintTrack(ctx, caller, albumID, trackNumber, req.Name, req.URI, req.MinPrice, req.MaxSupply)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.MintResponse{TokenID: tokenID}, nil
}

func (e *executor) MintAdditionalCopy(ctx context.Context, caller common.Address, albumID uint64, trackNumber int) (*dto.MintResponse, error) {
	var tokenID uint64
	err := e.serialize(func() (err error) {
		tokenID, err = e.ledger.MintAdditionalCopy(ctx, caller, albumID, trackNumber)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.MintResponse{TokenID: tokenID}, nil
}

func (e *executor) SetAlbumMaxSupply(ctx context.Context, caller common.Address, albumID uint64, maxSupply int64) error {
	return e.serialize(func() error {
		return e.ledger.SetAlbumMaxSupply(ctx, caller, albumID, maxSupply)
	})
}

func (e *executor) SetTrackMaxSupply(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, maxSupply int64) error {
	return e.serialize(func() error {
		return e.ledger.SetTrackMaxSupply(ctx, caller, albumID, trackNumber, maxSupply)
	})
}

func (e *executor) UpdateTrackPrice(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, minPrice int64) error {
	return e.serialize(func() error {
		return e.ledger.UpdateTrackPrice(ctx, caller, albumID, trackNumber, minPrice)
	})
}

func (e *executor) UpdateTrackSaleStatus(ctx context.Context, caller common.Address, albumID uint64, trackNumber int, isForSale bool) error {
	return e.serialize(func() error {
		return e.ledger.UpdateTrackSaleStatus(ctx, caller, albumID, trackNumber, isForSale)
	})
}

func (e *executor) SetRoyalty(ctx context.Context, caller common.Address, req dto.SetRoyaltyRequest) error {
	return e.serialize(func() error {
		return e.ledger.SetRoyalty(ctx, caller, req.CreatorPct, req.SellerPct)
	})
}

func (e *executor) Pause(ctx context.Context, caller common.Address) error {
	return e.serialize(func() error {
		return e.ledger.Pause(ctx, caller)
	})
}

func (e *executor) Unpause(ctx context.Context, caller common.Address) error {
	return e.serialize(func() error {
		return e.ledger.Unpause(ctx, caller)
	})
}

func (e *executor) TransferToken(ctx context.Context, caller common.Address, tokenID uint64, to common.Address) error {
	return e.serialize(func() error {
		return e.ledger.TransferToken(ctx, caller, tokenID, to)
	})
}

func (e *executor) Purchase(ctx context.Context, buyer common.Address, tokenID uint64, payment int64) (*domain.Receipt, error) {
	var receipt *domain.Receipt
	err := e.serialize(func() (err error) {
		receipt, err = e.ledger.Purchase(ctx, buyer, tokenID, payment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (e *executor) GetAlbum(ctx context.Context, albumID uint64) (*dto.AlbumResponse, error) {
	album, err := e.ledger.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return dto.NewAlbumResponse(album), nil
}

func (e *executor) GetAlbumSupply(ctx context.Context, albumID uint64) (*domain.Supply, error) {
	supply, err := e.ledger.GetAlbumSupply(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return &supply, nil
}

func (e *executor) GetAlbumTracks(ctx context.Context, albumID uint64) (*dto.TrackListResponse, error) {
	tracks, err := e.ledger.GetAlbumTracks(ctx, albumID)
	if err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []domain.Track{}
	}
	return &dto.TrackListResponse{Tracks: tracks}, nil
}

func (e *executor) GetTrack(ctx context.Context, albumID uint64, trackNumber int) (*domain.Track, error) {
	return e.ledger.GetTrack(ctx, albumID, trackNumber)
}

func (e *executor) GetTrackSupply(ctx context.Context, albumID uint64, trackNumber int) (*domain.Supply, error) {
	supply, err := e.ledger.GetTrackSupply(ctx, albumID, trackNumber)
	if err != nil {
		return nil, err
	}
	return &supply, nil
}

func (e *executor) GetTrackTokens(ctx context.Context, albumID uint64, trackNumber int) (*dto.TokenListResponse, error) {
	tokens, err := e.ledger.GetTrackTokens(ctx, albumID, trackNumber)
	if err != nil {
		return nil, err
	}
	if tokens == nil {
		tokens = []domain.Token{}
	}
	return &dto.TokenListResponse{Tokens: tokens}, nil
}

func (e *executor) GetToken(ctx context.Context, tokenID uint64) (*domain.TokenView, error) {
	return e.ledger.GetToken(ctx, tokenID)
}

func (e *executor) GetTokenOwner(ctx context.Context, tokenID uint64) (*dto.TokenOwnerResponse, error) {
	owner, err := e.ledger.OwnerOf(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenOwnerResponse{TokenID: tokenID, Owner: owner}, nil
}

func (e *executor) GetTokenURI(ctx context.Context, tokenID uint64) (*dto.TokenURIResponse, error) {
	uri, err := e.ledger.TokenURI(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenURIResponse{TokenID: tokenID, URI: uri}, nil
}

func (e *executor) TokenExists(ctx context.Context, tokenID uint64) (*dto.TokenExistsResponse, error) {
	exists, err := e.ledger.Exists(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return &dto.TokenExistsResponse{TokenID: tokenID, Exists: exists}, nil
}

func (e *executor) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	stats, err := e.ledger.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StatsResponse{
		TotalAlbums:  stats.TotalAlbums,
		TotalSupply:  stats.TotalSupply,
		Paused:       stats.Paused,
		Royalty:      stats.Royalty,
		LastEventSeq: stats.LastEventSeq,
	}, nil
}

func (e *executor) GetEvents(ctx context.Context, after uint64, limit int) (*dto.EventListResponse, error) {
	filter := store.EventQueryFilter{After: after, Limit: limit}.Normalize()
	events, err := e.ledger.Events(ctx, filter)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}

	resp := &dto.EventListResponse{Events: events}
	if len(events) == filter.Limit {
		next := events[len(events)-1].Seq
		resp.NextAfter = &next
	}
	return resp, nil
}

func (e *executor) VerifyJournal(ctx context.Context) (*dto.JournalVerificationResponse, error) {
	checked, err := e.ledger.VerifyJournal(ctx)
	if err != nil {
		if errors.Is(err, journal.ErrChainBroken) {
			return &dto.JournalVerificationResponse{Valid: false, EventsChecked: checked, Error: err.Error()}, nil
		}
		return nil, err
	}
	return &dto.JournalVerificationResponse{Valid: true, EventsChecked: checked}, nil
}

func (e *executor) GetBalance(_ context.Context, address common.Address) (*dto.BalanceResponse, error) {
	if e.book == nil {
		return nil, apierrors.NewNotFoundError("Payout balances are not held by this service")
	}
	return &dto.BalanceResponse{Address: address, Balance: e.book.BalanceOf(address)}, nil
}

func (e *executor) Withdraw(ctx context.Context, caller common.Address) (*dto.WithdrawResponse, error) {
	if e.book == nil {
		return nil, apierrors.NewNotFoundError("Payout balances are not held by this service")
	}

	var amount int64
	err := e.serialize(func() (err error) {
		amount, err = e.book.Withdraw(ctx, caller)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to withdraw balance: %w", err)
	}
	return &dto.WithdrawResponse{Address: caller, Amount: amount}, nil
}
