package rest

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/KXX-Hub/kxx-digital-album/internal/api/middleware"
	"github.com/KXX-Hub/kxx-digital-album/internal/api/shared/dto"
	"github.com/KXX-Hub/kxx-digital-album/internal/api/shared/executor"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// CreateAlbum creates an album (controller only)
	// POST /api/v1/albums
	CreateAlbum(c *gin.Context)

	// GetAlbum retrieves an album with its filled track slots
	// GET /api/v1/albums/:album_id
	GetAlbum(c *gin.Context)

	// GetAlbumSupply retrieves the issued copies of an album against its cap
	// GET /api/v1/albums/:album_id/supply
	GetAlbumSupply(c *gin.Context)

	// SetAlbumMaxSupply changes the album cap (controller only)
	// PUT /api/v1/albums/:album_id/max-supply
	SetAlbumMaxSupply(c *gin.Context)

	// GetAlbumTracks retrieves the minted tracks of an album
	// GET /api/v1/albums/:album_id/tracks
	GetAlbumTracks(c *gin.Context)

	// MintTrack mints the first copy of a track (controller only)
	// POST /api/v1/albums/:album_id/tracks/:track_number
	MintTrack(c *gin.Context)

	// GetTrack retrieves a minted track
	// GET /api/v1/albums/:album_id/tracks/:track_number
	GetTrack(c *gin.Context)

	// MintAdditionalCopy issues another copy of a track (controller only)
	// POST /api/v1/albums/:album_id/tracks/:track_number/copies
	MintAdditionalCopy(c *gin.Context)

	// GetTrackSupply retrieves the issued copies of a track against its cap
	// GET /api/v1/albums/:album_id/tracks/:track_number/supply
	GetTrackSupply(c *gin.Context)

	// GetTrackTokens retrieves the issued copies of a track
	// GET /api/v1/albums/:album_id/tracks/:track_number/tokens
	GetTrackTokens(c *gin.Context)

	// SetTrackMaxSupply changes the track cap (controller only)
	// PUT /api/v1/albums/:album_id/tracks/:track_number/max-supply
	SetTrackMaxSupply(c *gin.Context)

	// UpdateTrackPrice changes the minimum price of a track (controller only)
	// PUT /api/v1/albums/:album_id/tracks/:track_number/price
	UpdateTrackPrice(c *gin.Context)

	// UpdateTrackSaleStatus lists or delists a track (controller only)
	// PUT /api/v1/albums/:album_id/tracks/:track_number/sale-status
	UpdateTrackSaleStatus(c *gin.Context)

	// GetToken retrieves a token with its track view fields
	// GET /api/v1/tokens/:token_id
	GetToken(c *gin.Context)

	// GetTokenOwner retrieves the holder of a token
	// GET /api/v1/tokens/:token_id/owner
	GetTokenOwner(c *gin.Context)

	// GetTokenURI retrieves the content URI of a token
	// GET /api/v1/tokens/:token_id/uri
	GetTokenURI(c *gin.Context)

	// TokenExists reports whether a token has been issued
	// GET /api/v1/tokens/:token_id/exists
	TokenExists(c *gin.Context)

	// PurchaseToken buys a token for the authenticated caller
	// POST /api/v1/tokens/:token_id/purchase
	PurchaseToken(c *gin.Context)

	// TransferToken moves a token to a new holder (controller only)
	// POST /api/v1/tokens/:token_id/transfer
	TransferToken(c *gin.Context)

	// SetRoyalty changes the royalty split (controller only)
	// PUT /api/v1/royalty
	SetRoyalty(c *gin.Context)

	// Pause halts catalog creation and sales (controller only)
	// POST /api/v1/pause
	Pause(c *gin.Context)

	// Unpause resumes catalog creation and sales (controller only)
	// POST /api/v1/unpause
	Unpause(c *gin.Context)

	// GetStats retrieves the ledger counters and settings
	// GET /api/v1/stats
	GetStats(c *gin.Context)

	// GetEvents retrieves the audit journal in sequence order
	// GET /api/v1/events?after=<seq>&limit=<limit>
	GetEvents(c *gin.Context)

	// VerifyJournal checks the audit journal hash chain
	// GET /api/v1/events/verify
	VerifyJournal(c *gin.Context)

	// GetBalance retrieves the pending payout balance of an identity
	// GET /api/v1/balances/:address
	GetBalance(c *gin.Context)

	// Withdraw withdraws the pending payout balance of the authenticated caller
	// POST /api/v1/balances/withdraw
	Withdraw(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	debug    bool
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(debug bool, exec executor.Executor) Handler {
	return &handler{
		debug:    debug,
		executor: exec,
	}
}

// caller returns the authenticated caller or responds with 401
func (h *handler) caller(c *gin.Context) (common.Address, bool) {
	caller, ok := middleware.Caller(c)
	if !ok {
		respondUnauthorized(c, "Authentication required")
		return common.Address{}, false
	}
	return caller, true
}

// bindJSON decodes and validates a request body, responding on failure
func bindJSON[T any](c *gin.Context, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return false
	}
	if v, ok := any(req).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			respondBadRequest(c, "Invalid request body", err.Error())
			return false
		}
	}
	return true
}

func (h *handler) albumParam(c *gin.Context) (uint64, bool) {
	albumID, err := parseIDParam(c, "album_id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return 0, false
	}
	return albumID, true
}

func (h *handler) trackParams(c *gin.Context) (uint64, int, bool) {
	albumID, ok := h.albumParam(c)
	if !ok {
		return 0, 0, false
	}
	trackNumber, err := parseTrackNumberParam(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return 0, 0, false
	}
	return albumID, trackNumber, true
}

func (h *handler) tokenParam(c *gin.Context) (uint64, bool) {
	tokenID, err := parseIDParam(c, "token_id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return 0, false
	}
	return tokenID, true
}

// CreateAlbum creates an album
func (h *handler) CreateAlbum(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.CreateAlbumRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.executor.CreateAlbum(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err, "Failed to create album")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetAlbum retrieves an album
func (h *handler) GetAlbum(c *gin.Context) {
	albumID, ok := h.albumParam(c)
	if !ok {
		return
	}

	album, err := h.executor.GetAlbum(c.Request.Context(), albumID)
	if err != nil {
		respondError(c, err, "Failed to get album")
		return
	}

	c.JSON(http.StatusOK, album)
}

// GetAlbumSupply retrieves the supply of an album
func (h *handler) GetAlbumSupply(c *gin.Context) {
	albumID, ok := h.albumParam(c)
	if !ok {
		return
	}

	supply, err := h.executor.GetAlbumSupply(c.Request.Context(), albumID)
	if err != nil {
		respondError(c, err, "Failed to get album supply")
		return
	}

	c.JSON(http.StatusOK, supply)
}

// SetAlbumMaxSupply changes the album cap
func (h *handler) SetAlbumMaxSupply(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	albumID, ok := h.albumParam(c)
	if !ok {
		return
	}
	var req dto.SetMaxSupplyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.executor.SetAlbumMaxSupply(c.Request.Context(), caller, albumID, req.MaxSupply); err != nil {
		respondError(c, err, "Failed to set album max supply")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetAlbumTracks retrieves the minted tracks of an album
func (h *handler) GetAlbumTracks(c *gin.Context) {
	albumID, ok := h.albumParam(c)
	if !ok {
		return
	}

	tracks, err := h.executor.GetAlbumTracks(c.Request.Context(), albumID)
	if err != nil {
		respondError(c, err, "Failed to get album tracks")
		return
	}

	c.JSON(http.StatusOK, tracks)
}

// MintTrack mints the first copy of a track
func (h *handler) MintTrack(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	albumID, trackNumber, ok := h.trackParams(c)
	if !ok {
		return
	}
	var req dto.MintTrackRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.executor.MintTrack(c.Request.Context(), caller, albumID, trackNumber, req)
	if err != nil {
		respondError(c, err, "Failed to mint track")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTrack retrieves a minted track
func (h *handler) GetTrack(c *gin.Context) {
	albumID, trackNumber, ok := h.trackParams(c)
	if !ok {
		return
	}

	track, err := h.executor.GetTrack(c.Request.Context(), albumID, trackNumber)
	if err != nil {
		respondError(c, err, "Failed to get track")
		return
	}

	c.JSON(http.StatusOK, track)
}

// MintAdditionalCopy issues another copy of a track
func (h *handler) MintAdditionalCopy(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	albumID, trackNumber, ok := h.trackParams(c)
	if !ok {
		return
	}

	resp, err := h.executor.MintAdditionalCopy(c.Request.Context(), caller, albumID, trackNumber)
	if err != nil {
		respondError(c, err, "Failed to mint additional copy")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTrackSupply retrieves the supply of a track
func (h *handler) GetTrackSupply(c *gin.Context) {
	albumID, trackNumber, ok := h.trackParams(c)
	if !ok {
		return
	}

	supply, err := h.executor.GetTrackSupply(c.Request.Context(), albumID, trackNumber)
	if err != nil {
		respondError(c, err, "Failed to get track supply")
		return
	}

	c.JSON(http.StatusOK, supply)
}

// GetTrackTokens retrieves the issued copies of a track
func (h *handler) GetTrackTokens(c *gin.Context) {
	albumID, trackNumber, ok := h.trackParams(c)
	if !ok {
		return
	}

	tokens, err := h.executor.GetTrackTokens(c.Request.Context(), albumID, trackNumber)
	if err != nil {
		respondError(c, err, "Failed to get track tokens")
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// SetTrackMaxSupply changes the track cap
func (h *handler) SetTrackMaxSupply(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	albumID, trackNumber, ok := h.trackParams(c)
	if !ok {
		return
	}
	var req dto.SetMaxSupplyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.executor.SetTrackMaxSupply(c.Request.Context(), caller, albumID, trackNumber, req.MaxSupply); err != nil {
		respondError(c, err, "Failed to set track max supply")
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateTrackPrice changes the minimum price of a track
func (h *handler) UpdateTrackPrice(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	albumID, trackNumber, ok := h.trackParams(c)
	if !ok {
		return
	}
	var req dto.UpdatePriceRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.executor.UpdateTrackPrice(c.Request.Context(), caller, albumID, trackNumber, req.MinPrice); err != nil {
		respondError(c, err, "Failed to update track price")
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateTrackSaleStatus lists or delists a track
func (h *handler) UpdateTrackSaleStatus(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	albumID, trackNumber, ok := h.trackParams(c)
	if !ok {
		return
	}
	var req dto.UpdateSaleStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.executor.UpdateTrackSaleStatus(c.Request.Context(), caller, albumID, trackNumber, *req.IsForSale); err != nil {
		respondError(c, err, "Failed to update track sale status")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetToken retrieves a token
func (h *handler) GetToken(c *gin.Context) {
	tokenID, ok := h.tokenParam(c)
	if !ok {
		return
	}

	token, err := h.executor.GetToken(c.Request.Context(), tokenID)
	if err != nil {
		respondError(c, err, "Failed to get token")
		return
	}

	c.JSON(http.StatusOK, token)
}

// GetTokenOwner retrieves the holder of a token
func (h *handler) GetTokenOwner(c *gin.Context) {
	tokenID, ok := h.tokenParam(c)
	if !ok {
		return
	}

	owner, err := h.executor.GetTokenOwner(c.Request.Context(), tokenID)
	if err != nil {
		respondError(c, err, "Failed to get token owner")
		return
	}

	c.JSON(http.StatusOK, owner)
}

// GetTokenURI retrieves the content URI of a token
func (h *handler) GetTokenURI(c *gin.Context) {
	tokenID, ok := h.tokenParam(c)
	if !ok {
		return
	}

	uri, err := h.executor.GetTokenURI(c.Request.Context(), tokenID)
	if err != nil {
		respondError(c, err, "Failed to get token uri")
		return
	}

	c.JSON(http.StatusOK, uri)
}

// TokenExists reports whether a token has been issued
func (h *handler) TokenExists(c *gin.Context) {
	tokenID, ok := h.tokenParam(c)
	if !ok {
		return
	}

	exists, err := h.executor.TokenExists(c.Request.Context(), tokenID)
	if err != nil {
		respondError(c, err, "Failed to check token")
		return
	}

	c.JSON(http.StatusOK, exists)
}

// PurchaseToken buys a token for the caller
func (h *handler) PurchaseToken(c *gin.Context) {
	buyer, ok := h.caller(c)
	if !ok {
		return
	}
	tokenID, ok := h.tokenParam(c)
	if !ok {
		return
	}
	var req dto.PurchaseRequest
	if !bindJSON(c, &req) {
		return
	}

	receipt, err := h.executor.Purchase(c.Request.Context(), buyer, tokenID, req.Payment)
	if err != nil {
		respondError(c, err, "Failed to purchase token")
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// TransferToken moves a token to a new holder
func (h *handler) TransferToken(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	tokenID, ok := h.tokenParam(c)
	if !ok {
		return
	}
	var req dto.TransferRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.executor.TransferToken(c.Request.Context(), caller, tokenID, req.Recipient()); err != nil {
		respondError(c, err, "Failed to transfer token")
		return
	}

	c.Status(http.StatusNoContent)
}

// SetRoyalty changes the royalty split
func (h *handler) SetRoyalty(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req dto.SetRoyaltyRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.executor.SetRoyalty(c.Request.Context(), caller, req); err != nil {
		respondError(c, err, "Failed to set royalty")
		return
	}

	c.Status(http.StatusNoContent)
}

// Pause halts catalog creation and sales
func (h *handler) Pause(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.executor.Pause(c.Request.Context(), caller); err != nil {
		respondError(c, err, "Failed to pause")
		return
	}

	c.Status(http.StatusNoContent)
}

// Unpause resumes catalog creation and sales
func (h *handler) Unpause(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	if err := h.executor.Unpause(c.Request.Context(), caller); err != nil {
		respondError(c, err, "Failed to unpause")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetStats retrieves the ledger counters and settings
func (h *handler) GetStats(c *gin.Context) {
	stats, err := h.executor.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetEvents retrieves a page of the audit journal
func (h *handler) GetEvents(c *gin.Context) {
	queryParams, err := ParseGetEventsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	events, err := h.executor.GetEvents(c.Request.Context(), queryParams.After, queryParams.Limit)
	if err != nil {
		respondError(c, err, "Failed to get events")
		return
	}

	c.JSON(http.StatusOK, events)
}

// VerifyJournal checks the audit journal hash chain
func (h *handler) VerifyJournal(c *gin.Context) {
	result, err := h.executor.VerifyJournal(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to verify journal")
		return
	}

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

// GetBalance retrieves the pending payout balance of an identity
func (h *handler) GetBalance(c *gin.Context) {
	address, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		respondBadRequest(c, "Invalid address", err.Error())
		return
	}

	balance, err := h.executor.GetBalance(c.Request.Context(), address)
	if err != nil {
		respondError(c, err, "Failed to get balance")
		return
	}

	c.JSON(http.StatusOK, balance)
}

// Withdraw withdraws the pending payout balance of the caller
func (h *handler) Withdraw(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	resp, err := h.executor.Withdraw(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err, "Failed to withdraw balance")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "album-ledger-api",
	})
}
