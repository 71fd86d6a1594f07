package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

type trackKey struct {
	albumID     uint64
	trackNumber int
}

type memoryState struct {
	ledger      *domain.LedgerState
	albums      map[uint64]domain.Album
	tracks      map[trackKey]domain.Track
	slots       map[uint64][]int
	tokens      map[uint64]domain.Token
	trackTokens map[trackKey][]uint64
	events      []domain.Event
}

func newMemoryState() memoryState {
	return memoryState{
		albums:      make(map[uint64]domain.Album),
		tracks:      make(map[trackKey]domain.Track),
		slots:       make(map[uint64][]int),
		tokens:      make(map[uint64]domain.Token),
		trackTokens: make(map[trackKey][]uint64),
	}
}

// memOverlay holds the writes of one transaction. Only touched rows are
// staged, so committing costs as much as the transaction wrote.
type memOverlay struct {
	ledger *domain.LedgerState
	albums map[uint64]domain.Album
	tracks map[trackKey]domain.Track
	// slots holds the full slot list of every album whose slots changed
	slots  map[uint64][]int
	tokens map[uint64]domain.Token
	// trackTokens holds only the token ids issued in this transaction
	trackTokens map[trackKey][]uint64
	events      []domain.Event
}

func newMemOverlay() *memOverlay {
	return &memOverlay{
		albums:      make(map[uint64]domain.Album),
		tracks:      make(map[trackKey]domain.Track),
		slots:       make(map[uint64][]int),
		tokens:      make(map[uint64]domain.Token),
		trackTokens: make(map[trackKey][]uint64),
	}
}

// apply merges staged writes into the committed state
func (s *memoryState) apply(o *memOverlay) {
	if o.ledger != nil {
		s.ledger = o.ledger
	}
	for k, v := range o.albums {
		s.albums[k] = v
	}
	for k, v := range o.tracks {
		s.tracks[k] = v
	}
	for k, v := range o.slots {
		s.slots[k] = v
	}
	for k, v := range o.tokens {
		s.tokens[k] = v
	}
	for k, v := range o.trackTokens {
		s.trackTokens[k] = append(s.trackTokens[k], v...)
	}
	s.events = append(s.events, o.events...)
}

type memStore struct {
	// txMu serializes transactions; mu guards the committed state
	txMu  sync.Mutex
	mu    sync.RWMutex
	state memoryState
}

// NewMemoryStore creates a store that keeps the ledger in process memory.
// Transactions stage their writes in an overlay that is merged into the
// committed state only when the transaction function succeeds.
func NewMemoryStore() Store {
	return &memStore{state: newMemoryState()}
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	// committed state only changes below, while txMu is held, so the
	// transaction reads it without taking mu
	tx := &memTx{memView{base: &s.state, staged: newMemOverlay()}}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.state.apply(tx.staged)
	s.mu.Unlock()
	return nil
}

func (s *memStore) Close() error {
	return nil
}

func (s *memStore) GetLedgerState(ctx context.Context) (*domain.LedgerState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memView{base: &s.state}.GetLedgerState(ctx)
}

func (s *memStore) GetAlbum(ctx context.Context, albumID uint64) (*domain.Album, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memView{base: &s.state}.GetAlbum(ctx, albumID)
}

func (s *memStore) GetTrack(ctx context.Context, albumID uint64, trackNumber int) (*domain.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memView{base: &s.state}.GetTrack(ctx, albumID, trackNumber)
}

func (s *memStore) GetAlbumTracks(ctx context.Context, albumID uint64) ([]domain.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memView{base: &s.state}.GetAlbumTracks(ctx, albumID)
}

func (s *memStore) GetToken(ctx context.Context, tokenID uint64) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memView{base: &s.state}.GetToken(ctx, tokenID)
}

func (s *memStore) GetTokensByTrack(ctx context.Context, albumID uint64, trackNumber int) ([]domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memView{base: &s.state}.GetTokensByTrack(ctx, albumID, trackNumber)
}

func (s *memStore) GetEvents(ctx context.Context, filter EventQueryFilter) ([]domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memView{base: &s.state}.GetEvents(ctx, filter)
}

// memView reads committed state through an optional overlay of staged writes
type memView struct {
	base   *memoryState
	staged *memOverlay
}

func (v memView) ledger() *domain.LedgerState {
	if v.staged != nil && v.staged.ledger != nil {
		return v.staged.ledger
	}
	return v.base.ledger
}

func (v memView) album(albumID uint64) (domain.Album, bool) {
	if v.staged != nil {
		if album, ok := v.staged.albums[albumID]; ok {
			return album, true
		}
	}
	album, ok := v.base.albums[albumID]
	return album, ok
}

func (v memView) track(key trackKey) (domain.Track, bool) {
	if v.staged != nil {
		if track, ok := v.staged.tracks[key]; ok {
			return track, true
		}
	}
	track, ok := v.base.tracks[key]
	return track, ok
}

func (v memView) slots(albumID uint64) []int {
	if v.staged != nil {
		if slots, ok := v.staged.slots[albumID]; ok {
			return slots
		}
	}
	return v.base.slots[albumID]
}

func (v memView) token(tokenID uint64) (domain.Token, bool) {
	if v.staged != nil {
		if token, ok := v.staged.tokens[tokenID]; ok {
			return token, true
		}
	}
	token, ok := v.base.tokens[tokenID]
	return token, ok
}

func (v memView) tokenIDs(key trackKey) []uint64 {
	ids := v.base.trackTokens[key]
	if v.staged != nil && len(v.staged.trackTokens[key]) > 0 {
		return slices.Concat(ids, v.staged.trackTokens[key])
	}
	return ids
}

func (v memView) eventCount() int {
	n := len(v.base.events)
	if v.staged != nil {
		n += len(v.staged.events)
	}
	return n
}

func (v memView) GetLedgerState(_ context.Context) (*domain.LedgerState, error) {
	ledger := v.ledger()
	if ledger == nil {
		return nil, nil
	}
	state := *ledger
	return &state, nil
}

func (v memView) GetAlbum(_ context.Context, albumID uint64) (*domain.Album, error) {
	album, ok := v.album(albumID)
	if !ok {
		return nil, nil
	}
	album.TrackSlotsFilled = slices.Clone(v.slots(albumID))
	if album.TrackSlotsFilled == nil {
		album.TrackSlotsFilled = []int{}
	}
	return &album, nil
}

func (v memView) GetTrack(_ context.Context, albumID uint64, trackNumber int) (*domain.Track, error) {
	track, ok := v.track(trackKey{albumID, trackNumber})
	if !ok {
		return nil, nil
	}
	return &track, nil
}

func (v memView) GetAlbumTracks(_ context.Context, albumID uint64) ([]domain.Track, error) {
	slots := v.slots(albumID)
	tracks := make([]domain.Track, 0, len(slots))
	for _, n := range slots {
		track, _ := v.track(trackKey{albumID, n})
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func (v memView) GetToken(_ context.Context, tokenID uint64) (*domain.Token, error) {
	token, ok := v.token(tokenID)
	if !ok {
		return nil, nil
	}
	return &token, nil
}

func (v memView) GetTokensByTrack(_ context.Context, albumID uint64, trackNumber int) ([]domain.Token, error) {
	ids := v.tokenIDs(trackKey{albumID, trackNumber})
	tokens := make([]domain.Token, 0, len(ids))
	for _, id := range ids {
		token, _ := v.token(id)
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (v memView) GetEvents(_ context.Context, filter EventQueryFilter) ([]domain.Event, error) {
	filter = filter.Normalize()

	// sequences start at 1 and are gapless, so event seq n sits at index n-1
	total := uint64(v.eventCount())
	start := min(filter.After, total)
	end := min(start+uint64(filter.Limit), total)

	events := make([]domain.Event, 0, end-start)
	committed := uint64(len(v.base.events))
	for i := start; i < end; i++ {
		if i < committed {
			events = append(events, v.base.events[i])
		} else {
			events = append(events, v.staged.events[i-committed])
		}
	}
	return events, nil
}

type memTx struct {
	memView
}

func (tx *memTx) SaveLedgerState(_ context.Context, state *domain.LedgerState) error {
	cp := *state
	tx.staged.ledger = &cp
	return nil
}

func (tx *memTx) CreateAlbum(_ context.Context, album *domain.Album) error {
	if _, ok := tx.album(album.ID); ok {
		return fmt.Errorf("failed to create album: album %d already exists", album.ID)
	}
	cp := *album
	cp.TrackSlotsFilled = nil
	tx.staged.albums[album.ID] = cp
	return nil
}

func (tx *memTx) UpdateAlbum(_ context.Context, album *domain.Album) error {
	existing, ok := tx.album(album.ID)
	if !ok {
		return fmt.Errorf("failed to update album: album %d does not exist", album.ID)
	}
	existing.MaxSupply = album.MaxSupply
	existing.CurrentSupply = album.CurrentSupply
	tx.staged.albums[album.ID] = existing
	return nil
}

func (tx *memTx) CreateTrack(_ context.Context, track *domain.Track) error {
	if _, ok := tx.album(track.AlbumID); !ok {
		return fmt.Errorf("failed to create track: album %d does not exist", track.AlbumID)
	}
	key := trackKey{track.AlbumID, track.TrackNumber}
	if _, ok := tx.track(key); ok {
		return fmt.Errorf("failed to create track: track %d/%d already exists", track.AlbumID, track.TrackNumber)
	}

	tx.staged.tracks[key] = *track
	// committed slot lists are never written in place; the copy is bounded by the album's track count
	slots := slices.Clone(tx.slots(track.AlbumID))
	i, _ := slices.BinarySearch(slots, track.TrackNumber)
	tx.staged.slots[track.AlbumID] = slices.Insert(slots, i, track.TrackNumber)
	return nil
}

func (tx *memTx) UpdateTrack(_ context.Context, track *domain.Track) error {
	key := trackKey{track.AlbumID, track.TrackNumber}
	existing, ok := tx.track(key)
	if !ok {
		return fmt.Errorf("failed to update track: track %d/%d does not exist", track.AlbumID, track.TrackNumber)
	}
	existing.MinPrice = track.MinPrice
	existing.MaxSupply = track.MaxSupply
	existing.CurrentSupply = track.CurrentSupply
	existing.IsForSale = track.IsForSale
	existing.UpdatedAt = track.UpdatedAt
	tx.staged.tracks[key] = existing
	return nil
}

func (tx *memTx) CreateToken(_ context.Context, token *domain.Token) error {
	if _, ok := tx.token(token.ID); ok {
		return fmt.Errorf("failed to create token: token %d already exists", token.ID)
	}
	key := trackKey{token.AlbumID, token.TrackNumber}
	if _, ok := tx.track(key); !ok {
		return fmt.Errorf("failed to create token: track %d/%d does not exist", token.AlbumID, token.TrackNumber)
	}

	tx.staged.tokens[token.ID] = *token
	tx.staged.trackTokens[key] = append(tx.staged.trackTokens[key], token.ID)
	return nil
}

func (tx *memTx) UpdateToken(_ context.Context, token *domain.Token) error {
	existing, ok := tx.token(token.ID)
	if !ok {
		return fmt.Errorf("failed to update token: token %d does not exist", token.ID)
	}
	existing.Owner = token.Owner
	existing.UpdatedAt = token.UpdatedAt
	tx.staged.tokens[token.ID] = existing
	return nil
}

func (tx *memTx) AppendEvent(_ context.Context, event *domain.Event) error {
	expected := uint64(tx.eventCount()) + 1
	if event.Seq != expected {
		return fmt.Errorf("failed to append event: sequence %d, expected %d", event.Seq, expected)
	}
	tx.staged.events = append(tx.staged.events, *event)
	return nil
}
