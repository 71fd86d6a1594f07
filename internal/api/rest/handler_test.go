package rest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KXX-Hub/kxx-digital-album/internal/api/middleware"
	"github.com/KXX-Hub/kxx-digital-album/internal/api/shared/dto"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/journal"
	"github.com/KXX-Hub/kxx-digital-album/internal/mocks"
)

var (
	controller = common.HexToAddress("0x00000000000000000000000000000000000000c0")
	buyer      = common.HexToAddress("0x00000000000000000000000000000000000000b0")
)

var (
	signingKeyOnce sync.Once
	signingKey     *rsa.PrivateKey
	publicKeyPEM   string
)

func testSigningKey(t *testing.T) (*rsa.PrivateKey, string) {
	signingKeyOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		require.NoError(t, err)
		signingKey = key
		publicKeyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	})
	return signingKey, publicKeyPEM
}

// testHandlerMocks contains the router and the executor mock behind it
type testHandlerMocks struct {
	ctrl     *gomock.Controller
	executor *mocks.MockAPIExecutor
	router   *gin.Engine
	key      *rsa.PrivateKey
}

func setupTestHandler(t *testing.T) *testHandlerMocks {
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockAPIExecutor(ctrl)
	key, publicPEM := testSigningKey(t)

	router := gin.New()
	SetupRoutes(router, NewHandler(false, exec), middleware.AuthConfig{JWTPublicKey: publicPEM}, nil)

	return &testHandlerMocks{ctrl: ctrl, executor: exec, router: router, key: key}
}

func tearDownTestHandler(m *testHandlerMocks) {
	m.ctrl.Finish()
}

// do sends a request as the given caller; a zero caller sends no credentials
func (m *testHandlerMocks) do(t *testing.T, method, path string, caller common.Address, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if caller != domain.ZeroAddress {
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{Subject: caller.Hex()}).SignedString(m.key)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	m.router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestHealthCheck(t *testing.T) {
	m := setupTestHandler(t)
	defer tearDownTestHandler(m)

	w := m.do(t, http.MethodGet, "/health", domain.ZeroAddress, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"album-ledger-api"}`, w.Body.String())
}

func TestCreateAlbum(t *testing.T) {
	validBody := dto.CreateAlbumRequest{Name: "Demo", CoverURI: "uri://a", TotalTracks: 2, MaxSupply: 3}

	tests := []struct {
		name           string
		caller         common.Address
		body           any
		setupMocks     func(m *testHandlerMocks)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "created",
			caller: controller,
			body:   validBody,
			setupMocks: func(m *testHandlerMocks) {
				m.executor.EXPECT().
					CreateAlbum(gomock.Any(), controller, validBody).
					Return(&dto.CreateAlbumResponse{AlbumID: 1}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "anonymous caller",
			caller:         domain.ZeroAddress,
			body:           validBody,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "unauthorized",
		},
		{
			name:           "malformed body",
			caller:         controller,
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "bad_request",
		},
		{
			name:   "missing name",
			caller: controller,
			body:   dto.CreateAlbumRequest{TotalTracks: 2, MaxSupply: 3},
			setupMocks: func(m *testHandlerMocks) {
				m.executor.EXPECT().
					CreateAlbum(gomock.Any(), controller, dto.CreateAlbumRequest{TotalTracks: 2, MaxSupply: 3}).
					Return(nil, fmt.Errorf("%w: name must not be empty", domain.ErrValidation))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "validation_failed",
		},
		{
			name:   "stranger with an invalid body is refused by the ledger",
			caller: buyer,
			body:   dto.CreateAlbumRequest{},
			setupMocks: func(m *testHandlerMocks) {
				m.executor.EXPECT().
					CreateAlbum(gomock.Any(), buyer, dto.CreateAlbumRequest{}).
					Return(nil, fmt.Errorf("%w: caller %s is not the controller", domain.ErrUnauthorized, buyer.Hex()))
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "forbidden",
		},
		{
			name:   "caller is not the controller",
			caller: buyer,
			body:   validBody,
			setupMocks: func(m *testHandlerMocks) {
				m.executor.EXPECT().
					CreateAlbum(gomock.Any(), buyer, validBody).
					Return(nil, fmt.Errorf("%w: caller %s is not the controller", domain.ErrUnauthorized, buyer.Hex()))
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "forbidden",
		},
		{
			name:   "ledger paused",
			caller: controller,
			body:   validBody,
			setupMocks: func(m *testHandlerMocks) {
				m.executor.EXPECT().CreateAlbum(gomock.Any(), controller, validBody).Return(nil, domain.ErrSystemPaused)
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "system_paused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestHandler(t)
			defer tearDownTestHandler(m)
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			w := m.do(t, http.MethodPost, "/api/v1/albums", tt.caller, tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			} else {
				assert.JSONEq(t, `{"album_id":1}`, w.Body.String())
			}
		})
	}
}

func TestMintTrack(t *testing.T) {
	t.Run("minted", func(t *testing.T) {
		m := setupTestHandler(t)
		defer tearDownTestHandler(m)
		req := dto.MintTrackRequest{Name: "T1", URI: "uri://t1", MinPrice: 100, MaxSupply: 2}
		m.executor.EXPECT().MintTrack(gomock.Any(), controller, uint64(1), 1, req).Return(&dto.MintResponse{TokenID: 1}, nil)

		w := m.do(t, http.MethodPost, "/api/v1/albums/1/tracks/1", controller, req)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"token_id":1}`, w.Body.String())
	})

	t.Run("invalid path parameters", func(t *testing.T) {
		m := setupTestHandler(t)
		defer tearDownTestHandler(m)
		body := dto.MintTrackRequest{Name: "T1", MaxSupply: 1}

		for _, path := range []string{"/api/v1/albums/0/tracks/1", "/api/v1/albums/x/tracks/1", "/api/v1/albums/1/tracks/-1"} {
			w := m.do(t, http.MethodPost, path, controller, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
		}
	})

	t.Run("slot already minted", func(t *testing.T) {
		m := setupTestHandler(t)
		defer tearDownTestHandler(m)
		m.executor.EXPECT().
			MintTrack(gomock.Any(), controller, uint64(1), 1, gomock.Any()).
			Return(nil, fmt.Errorf("%w: track 1 of album 1 is already minted", domain.ErrValidation))

		w := m.do(t, http.MethodPost, "/api/v1/albums/1/tracks/1", controller, dto.MintTrackRequest{Name: "T1", MaxSupply: 1})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "already minted")
	})

	t.Run("album cap reached", func(t *testing.T) {
		m := setupTestHandler(t)
		defer tearDownTestHandler(m)
		m.executor.EXPECT().MintAdditionalCopy(gomock.Any(), controller, uint64(1), 2).Return(nil, domain.ErrCapacityExceeded)

		w := m.do(t, http.MethodPost, "/api/v1/albums/1/tracks/2/copies", controller, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "capacity_exceeded", errorCode(t, w))
	})
}

func TestSupplyAndPriceSettings(t *testing.T) {
	m := setupTestHandler(t)
	defer tearDownTestHandler(m)

	m.executor.EXPECT().SetAlbumMaxSupply(gomock.Any(), controller, uint64(1), int64(5)).Return(nil)
	m.executor.EXPECT().SetTrackMaxSupply(gomock.Any(), controller, uint64(1), 1, int64(4)).Return(nil)
	m.executor.EXPECT().UpdateTrackPrice(gomock.Any(), controller, uint64(1), 1, int64(250)).Return(nil)
	m.executor.EXPECT().UpdateTrackSaleStatus(gomock.Any(), controller, uint64(1), 1, false).Return(nil)

	assert.Equal(t, http.StatusNoContent, m.do(t, http.MethodPut, "/api/v1/albums/1/max-supply", controller, dto.SetMaxSupplyRequest{MaxSupply: 5}).Code)
	assert.Equal(t, http.StatusNoContent, m.do(t, http.MethodPut, "/api/v1/albums/1/tracks/1/max-supply", controller, dto.SetMaxSupplyRequest{MaxSupply: 4}).Code)
	assert.Equal(t, http.StatusNoContent, m.do(t, http.MethodPut, "/api/v1/albums/1/tracks/1/price", controller, dto.UpdatePriceRequest{MinPrice: 250}).Code)
	assert.Equal(t, http.StatusNoContent, m.do(t, http.MethodPut, "/api/v1/albums/1/tracks/1/sale-status", controller, `{"is_for_sale":false}`).Code)

	w := m.do(t, http.MethodPut, "/api/v1/albums/1/tracks/1/sale-status", controller, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchaseToken(t *testing.T) {
	receipt := &domain.Receipt{
		TokenID:      1,
		AlbumID:      1,
		TrackNumber:  1,
		Seller:       controller,
		Buyer:        buyer,
		Creator:      controller,
		Payment:      100,
		CreatorShare: 10,
		SellerShare:  90,
		PayoutIDs:    []string{"p1", "p2"},
		EventSeq:     3,
	}

	tests := []struct {
		name           string
		executorErr    error
		expectedStatus int
		expectedCode   string
	}{
		{name: "purchased", expectedStatus: http.StatusOK},
		{name: "below minimum price", executorErr: domain.ErrInsufficientPayment, expectedStatus: http.StatusPaymentRequired, expectedCode: "insufficient_payment"},
		{name: "not for sale", executorErr: domain.ErrNotForSale, expectedStatus: http.StatusConflict, expectedCode: "not_for_sale"},
		{name: "buyer already owns it", executorErr: domain.ErrSelfPurchase, expectedStatus: http.StatusConflict, expectedCode: "self_purchase"},
		{name: "unknown token", executorErr: domain.ErrNotFound, expectedStatus: http.StatusNotFound, expectedCode: "not_found"},
		{
			name:           "payout failed",
			executorErr:    fmt.Errorf("%w: creator share to %s: %w", domain.ErrPaymentDispatch, controller.Hex(), errors.New("timeout")),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   "payment_dispatch_failed",
		},
		{name: "concurrent mutation", executorErr: domain.ErrReentrancy, expectedStatus: http.StatusConflict, expectedCode: "conflict"},
		{name: "store failure", executorErr: errors.New("connection refused"), expectedStatus: http.StatusInternalServerError, expectedCode: "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := setupTestHandler(t)
			defer tearDownTestHandler(m)

			if tt.executorErr != nil {
				m.executor.EXPECT().Purchase(gomock.Any(), buyer, uint64(1), int64(100)).Return(nil, tt.executorErr)
			} else {
				m.executor.EXPECT().Purchase(gomock.Any(), buyer, uint64(1), int64(100)).Return(receipt, nil)
			}

			w := m.do(t, http.MethodPost, "/api/v1/tokens/1/purchase", buyer, dto.PurchaseRequest{Payment: 100})
			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
				return
			}

			var got domain.Receipt
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, *receipt, got)
		})
	}

	t.Run("negative payment", func(t *testing.T) {
		m := setupTestHandler(t)
		defer tearDownTestHandler(m)

		m.executor.EXPECT().Purchase(gomock.Any(), buyer, uint64(1), int64(-1)).Return(nil, domain.ErrInsufficientPayment)

		w := m.do(t, http.MethodPost, "/api/v1/tokens/1/purchase", buyer, dto.PurchaseRequest{Payment: -1})
		assert.Equal(t, http.StatusPaymentRequired, w.Code)
	})
}

func TestTransferToken(t *testing.T) {
	m := setupTestHandler(t)
	defer tearDownTestHandler(m)

	m.executor.EXPECT().TransferToken(gomock.Any(), controller, uint64(1), buyer).Return(nil)
	w := m.do(t, http.MethodPost, "/api/v1/tokens/1/transfer", controller, dto.TransferRequest{To: buyer.Hex()})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = m.do(t, http.MethodPost, "/api/v1/tokens/1/transfer", controller, dto.TransferRequest{To: "not-an-address"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	m.executor.EXPECT().
		TransferToken(gomock.Any(), controller, uint64(1), domain.ZeroAddress).
		Return(fmt.Errorf("%w: recipient identity is required", domain.ErrValidation))
	w = m.do(t, http.MethodPost, "/api/v1/tokens/1/transfer", controller, dto.TransferRequest{To: domain.ZeroAddress.Hex()})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdministration(t *testing.T) {
	m := setupTestHandler(t)
	defer tearDownTestHandler(m)

	m.executor.EXPECT().SetRoyalty(gomock.Any(), controller, dto.SetRoyaltyRequest{CreatorPct: 20, SellerPct: 80}).Return(nil)
	m.executor.EXPECT().
		SetRoyalty(gomock.Any(), controller, dto.SetRoyaltyRequest{CreatorPct: 20, SellerPct: 70}).
		Return(fmt.Errorf("%w: royalty shares must add up to 100", domain.ErrValidation))
	m.executor.EXPECT().Pause(gomock.Any(), controller).Return(nil)
	m.executor.EXPECT().Unpause(gomock.Any(), buyer).Return(domain.ErrUnauthorized)

	assert.Equal(t, http.StatusNoContent, m.do(t, http.MethodPut, "/api/v1/royalty", controller, dto.SetRoyaltyRequest{CreatorPct: 20, SellerPct: 80}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, m.do(t, http.MethodPut, "/api/v1/royalty", controller, dto.SetRoyaltyRequest{CreatorPct: 20, SellerPct: 70}).Code)
	assert.Equal(t, http.StatusNoContent, m.do(t, http.MethodPost, "/api/v1/pause", controller, nil).Code)
	assert.Equal(t, http.StatusForbidden, m.do(t, http.MethodPost, "/api/v1/unpause", buyer, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, m.do(t, http.MethodPost, "/api/v1/pause", domain.ZeroAddress, nil).Code)
}

func TestReads(t *testing.T) {
	m := setupTestHandler(t)
	defer tearDownTestHandler(m)

	m.executor.EXPECT().GetToken(gomock.Any(), uint64(1)).Return(&domain.TokenView{
		Token: domain.Token{ID: 1, AlbumID: 1, TrackNumber: 1, Owner: buyer},
		Name:  "T1",
		URI:   "uri://t1",
	}, nil)
	m.executor.EXPECT().GetToken(gomock.Any(), uint64(2)).Return(nil, fmt.Errorf("%w: token 2", domain.ErrNotFound))
	m.executor.EXPECT().TokenExists(gomock.Any(), uint64(2)).Return(&dto.TokenExistsResponse{TokenID: 2}, nil)
	m.executor.EXPECT().GetAlbumSupply(gomock.Any(), uint64(1)).Return(&domain.Supply{Current: 1, Max: 3}, nil)
	m.executor.EXPECT().GetStats(gomock.Any()).Return(&dto.StatsResponse{TotalAlbums: 1, TotalSupply: 1, Royalty: domain.Royalty{CreatorPct: 10, SellerPct: 90}}, nil)

	w := m.do(t, http.MethodGet, "/api/v1/tokens/1", domain.ZeroAddress, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"owner":"0x00000000000000000000000000000000000000b0"`)

	w = m.do(t, http.MethodGet, "/api/v1/tokens/2", domain.ZeroAddress, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = m.do(t, http.MethodGet, "/api/v1/tokens/2/exists", domain.ZeroAddress, nil)
	assert.JSONEq(t, `{"token_id":2,"exists":false}`, w.Body.String())

	w = m.do(t, http.MethodGet, "/api/v1/albums/1/supply", domain.ZeroAddress, nil)
	assert.JSONEq(t, `{"current":1,"max":3}`, w.Body.String())

	w = m.do(t, http.MethodGet, "/api/v1/stats", domain.ZeroAddress, nil)
	assert.JSONEq(t, `{"total_albums":1,"total_supply":1,"paused":false,"royalty":{"creator_pct":10,"seller_pct":90},"last_event_seq":0}`, w.Body.String())
}

func TestGetEvents(t *testing.T) {
	t.Run("default page", func(t *testing.T) {
		m := setupTestHandler(t)
		defer tearDownTestHandler(m)
		m.executor.EXPECT().GetEvents(gomock.Any(), uint64(0), 100).Return(&dto.EventListResponse{Events: []domain.Event{}}, nil)

		w := m.do(t, http.MethodGet, "/api/v1/events", domain.ZeroAddress, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"events":[]}`, w.Body.String())
	})

	t.Run("after cursor", func(t *testing.T) {
		m := setupTestHandler(t)
		defer tearDownTestHandler(m)
		next := uint64(12)
		m.executor.EXPECT().GetEvents(gomock.Any(), uint64(10), 2).Return(&dto.EventListResponse{Events: []domain.Event{{Seq: 11}, {Seq: 12}}, NextAfter: &next}, nil)

		w := m.do(t, http.MethodGet, "/api/v1/events?after=10&limit=2", domain.ZeroAddress, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"next_after":12`)
	})

	t.Run("invalid limit", func(t *testing.T) {
		m := setupTestHandler(t)
		defer tearDownTestHandler(m)

		for _, query := range []string{"limit=0", "limit=5000", "after=-1", "limit=abc"} {
			w := m.do(t, http.MethodGet, "/api/v1/events?"+query, domain.ZeroAddress, nil)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, query)
		}
	})
}

func TestVerifyJournal(t *testing.T) {
	m := setupTestHandler(t)
	defer tearDownTestHandler(m)

	gomock.InOrder(
		m.executor.EXPECT().VerifyJournal(gomock.Any()).Return(&dto.JournalVerificationResponse{Valid: true, EventsChecked: 4}, nil),
		m.executor.EXPECT().VerifyJournal(gomock.Any()).Return(&dto.JournalVerificationResponse{
			EventsChecked: 2,
			Error:         journal.ErrChainBroken.Error(),
		}, nil),
	)

	w := m.do(t, http.MethodGet, "/api/v1/events/verify", domain.ZeroAddress, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true,"events_checked":4}`, w.Body.String())

	w = m.do(t, http.MethodGet, "/api/v1/events/verify", domain.ZeroAddress, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBalances(t *testing.T) {
	m := setupTestHandler(t)
	defer tearDownTestHandler(m)

	m.executor.EXPECT().GetBalance(gomock.Any(), controller).Return(&dto.BalanceResponse{Address: controller, Balance: 100}, nil)
	m.executor.EXPECT().Withdraw(gomock.Any(), controller).Return(&dto.WithdrawResponse{Address: controller, Amount: 100}, nil)

	w := m.do(t, http.MethodGet, "/api/v1/balances/"+controller.Hex(), domain.ZeroAddress, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":100`)

	w = m.do(t, http.MethodGet, "/api/v1/balances/nobody", domain.ZeroAddress, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = m.do(t, http.MethodPost, "/api/v1/balances/withdraw", controller, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":100`)
}
