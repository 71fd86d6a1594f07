package executor

import (
	"context"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KXX-Hub/kxx-digital-album/internal/api/shared/dto"
	apierrors "github.com/KXX-Hub/kxx-digital-album/internal/api/shared/errors"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/ledger"
	"github.com/KXX-Hub/kxx-digital-album/internal/payment"
	"github.com/KXX-Hub/kxx-digital-album/internal/store"
)

var (
	controller = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	buyer      = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

func setupTestExecutor(t *testing.T, withBook bool) (Executor, *payment.Book) {
	book := payment.NewBook()
	l, err := ledger.New(context.Background(), store.NewMemoryStore(), book, ledger.Config{
		Controller: controller,
		Royalty:    domain.Royalty{CreatorPct: 10, SellerPct: 90},
	})
	require.NoError(t, err)

	if !withBook {
		return NewExecutor(l, nil), book
	}
	return NewExecutor(l, book), book
}

func seedAlbum(t *testing.T, exec Executor) {
	ctx := context.Background()
	album, err := exec.CreateAlbum(ctx, controller, dto.CreateAlbumRequest{Name: "Demo", CoverURI: "uri://a", TotalTracks: 2, MaxSupply: 3})
	require.NoError(t, err)
	require.Equal(t, uint64(1), album.AlbumID)

	minted, err := exec.MintTrack(ctx, controller, 1, 1, dto.MintTrackRequest{Name: "T1", URI: "uri://t1", MinPrice: 100, MaxSupply: 2})
	require.NoError(t, err)
	require.Equal(t, uint64(1), minted.TokenID)
}

func TestExecutor_ConcurrentMutationsAreQueued(t *testing.T) {
	exec, _ := setupTestExecutor(t, true)

	const callers = 32
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := exec.CreateAlbum(context.Background(), controller, dto.CreateAlbumRequest{Name: "A", CoverURI: "uri://a", TotalTracks: 1, MaxSupply: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	stats, err := exec.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(callers), stats.TotalAlbums)
	assert.Equal(t, uint64(callers), stats.LastEventSeq)
}

func TestExecutor_CatalogReads(t *testing.T) {
	exec, _ := setupTestExecutor(t, true)
	ctx := context.Background()
	seedAlbum(t, exec)

	album, err := exec.GetAlbum(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Demo", album.Name)
	assert.Equal(t, []int{1}, album.TrackSlotsFilled)
	assert.Equal(t, domain.Supply{Current: 1, Max: 3}, album.Supply)

	tracks, err := exec.GetAlbumTracks(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tracks.Tracks, 1)

	supply, err := exec.GetTrackSupply(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Supply{Current: 1, Max: 2}, *supply)

	uri, err := exec.GetTokenURI(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "uri://t1", uri.URI)

	owner, err := exec.GetTokenOwner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, controller, owner.Owner)

	exists, err := exec.TokenExists(ctx, 2)
	require.NoError(t, err)
	assert.False(t, exists.Exists)

	_, err = exec.GetAlbum(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExecutor_EmptyListsAreNotNull(t *testing.T) {
	exec, _ := setupTestExecutor(t, true)
	ctx := context.Background()
	_, err := exec.CreateAlbum(ctx, controller, dto.CreateAlbumRequest{Name: "Empty", CoverURI: "uri://e", TotalTracks: 1, MaxSupply: 1})
	require.NoError(t, err)

	tracks, err := exec.GetAlbumTracks(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, tracks.Tracks)
	assert.Empty(t, tracks.Tracks)

	events, err := exec.GetEvents(ctx, 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, events.Events)
	assert.Nil(t, events.NextAfter)
}

func TestExecutor_PurchaseCreditsBook(t *testing.T) {
	exec, _ := setupTestExecutor(t, true)
	ctx := context.Background()
	seedAlbum(t, exec)

	receipt, err := exec.Purchase(ctx, buyer, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(10), receipt.CreatorShare)
	assert.Equal(t, int64(90), receipt.SellerShare)

	balance, err := exec.GetBalance(ctx, controller)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Balance)

	withdrawn, err := exec.Withdraw(ctx, controller)
	require.NoError(t, err)
	assert.Equal(t, int64(100), withdrawn.Amount)

	balance, err = exec.GetBalance(ctx, controller)
	require.NoError(t, err)
	assert.Zero(t, balance.Balance)
}

func TestExecutor_BalancesWithoutBook(t *testing.T) {
	exec, _ := setupTestExecutor(t, false)

	_, err := exec.GetBalance(context.Background(), controller)
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.ErrCodeNotFound, apiErr.Code)

	_, err = exec.Withdraw(context.Background(), controller)
	assert.ErrorAs(t, err, &apiErr)
}

func TestExecutor_GetEventsPaging(t *testing.T) {
	exec, _ := setupTestExecutor(t, true)
	ctx := context.Background()
	seedAlbum(t, exec)
	require.NoError(t, exec.Pause(ctx, controller))

	page, err := exec.GetEvents(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	require.NotNil(t, page.NextAfter)
	assert.Equal(t, uint64(2), *page.NextAfter)

	page, err = exec.GetEvents(ctx, *page.NextAfter, 2)
	require.NoError(t, err)
	require.Len(t, page.Events, 1)
	assert.Equal(t, domain.EventTypePaused, page.Events[0].Type)
	assert.Nil(t, page.NextAfter)
}

func TestExecutor_VerifyJournal(t *testing.T) {
	exec, _ := setupTestExecutor(t, true)
	seedAlbum(t, exec)

	result, err := exec.VerifyJournal(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, uint64(2), result.EventsChecked)
	assert.Empty(t, result.Error)
}

func TestExecutor_LedgerErrorsPassThrough(t *testing.T) {
	exec, _ := setupTestExecutor(t, true)
	ctx := context.Background()
	seedAlbum(t, exec)

	err := exec.SetRoyalty(ctx, buyer, dto.SetRoyaltyRequest{CreatorPct: 20, SellerPct: 80})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = exec.Purchase(ctx, controller, 1, 100)
	assert.ErrorIs(t, err, domain.ErrSelfPurchase)

	require.NoError(t, exec.Pause(ctx, controller))
	_, err = exec.Purchase(ctx, buyer, 1, 100)
	assert.ErrorIs(t, err, domain.ErrSystemPaused)
}
