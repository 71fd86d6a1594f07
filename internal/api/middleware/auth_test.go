package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var caller = common.HexToAddress("0x00000000000000000000000000000000000000c0")

func generateKey(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return key, string(publicPEM)
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.RegisteredClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestAuthenticate(t *testing.T) {
	key, publicPEM := generateKey(t)
	otherKey, _ := generateKey(t)
	cfg := AuthConfig{JWTPublicKey: publicPEM}
	valid := jwt.RegisteredClaims{
		Subject:   caller.Hex(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	tests := []struct {
		name      string
		header    string
		cfg       AuthConfig
		expectOK  bool
		expectErr string
	}{
		{name: "valid bearer token", header: "Bearer " + signToken(t, key, valid), cfg: cfg, expectOK: true},
		{name: "lowercase scheme", header: "bearer " + signToken(t, key, valid), cfg: cfg, expectOK: true},
		{name: "missing header", header: "", cfg: cfg, expectErr: "missing Authorization header"},
		{name: "no credentials", header: "Bearer", cfg: cfg, expectErr: "invalid Authorization header format"},
		{name: "api key scheme", header: "ApiKey secret", cfg: cfg, expectErr: "unsupported authorization type"},
		{name: "wrong signing key", header: "Bearer " + signToken(t, otherKey, valid), cfg: cfg, expectErr: "failed to parse token"},
		{
			name: "expired token",
			header: "Bearer " + signToken(t, key, jwt.RegisteredClaims{
				Subject:   caller.Hex(),
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			}),
			cfg:       cfg,
			expectErr: "failed to parse token",
		},
		{
			name:      "subject is not an address",
			header:    "Bearer " + signToken(t, key, jwt.RegisteredClaims{Subject: "alice"}),
			cfg:       cfg,
			expectErr: "token subject is not a caller address",
		},
		{name: "key not configured", header: "Bearer " + signToken(t, key, valid), cfg: AuthConfig{}, expectErr: "JWT public key not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Authenticate(tt.header, tt.cfg)
			if !tt.expectOK {
				assert.False(t, result.Success)
				assert.ErrorContains(t, result.Error, tt.expectErr)
				return
			}
			require.True(t, result.Success, "unexpected error: %v", result.Error)
			assert.Equal(t, caller, result.Caller)
			assert.Equal(t, caller.Hex(), result.AuthSubject)
		})
	}
}

func TestAuth_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	key, publicPEM := generateKey(t)

	router := gin.New()
	router.GET("/me", Auth(AuthConfig{JWTPublicKey: publicPEM}), func(c *gin.Context) {
		who, ok := Caller(c)
		require.True(t, ok)
		c.String(http.StatusOK, who.Hex())
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
	})

	t.Run("stores the caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, jwt.RegisteredClaims{Subject: caller.Hex()}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, caller.Hex(), w.Body.String())
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"internal_error"`)
}
