package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "github.com/KXX-Hub/kxx-digital-album/internal/api/shared/errors"
	"github.com/KXX-Hub/kxx-digital-album/internal/domain"
	"github.com/KXX-Hub/kxx-digital-album/internal/logger"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	AUTH_SUBJECT_KEY contextKey = "auth_subject"
	JWT_CLAIMS_KEY   contextKey = "jwt_claims"
	CALLER_KEY       contextKey = "caller"
)

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string // RSA public key in PEM format
}

// AuthResult holds the result of authentication
type AuthResult struct {
	Success     bool
	Claims      *jwt.RegisteredClaims
	AuthSubject string
	// Caller is the identity named by the token subject
	Caller common.Address
	Error  error
}

// Authenticate validates the Authorization header and returns the authentication result.
// The token subject must be the hex address of the caller.
func Authenticate(authHeader string, cfg AuthConfig) AuthResult {
	result := AuthResult{
		Success: false,
	}

	if authHeader == "" {
		result.Error = errors.New("missing Authorization header")
		return result
	}

	// Parse the authorization header
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		result.Error = errors.New("invalid Authorization header format")
		return result
	}

	authType := strings.ToLower(parts[0])
	credentials := parts[1]

	if authType != "bearer" {
		result.Error = fmt.Errorf("unsupported authorization type: %s", authType)
		return result
	}

	claims, err := validateJWT(credentials, cfg.JWTPublicKey)
	if err != nil {
		result.Error = err
		return result
	}

	caller, err := domain.ParseAddress(claims.Subject)
	if err != nil {
		result.Error = fmt.Errorf("token subject is not a caller address: %w", err)
		return result
	}

	result.Success = true
	result.Claims = claims
	result.AuthSubject = claims.Subject
	result.Caller = caller
	return result
}

// Auth returns a gin middleware for JWT (Bearer token) authentication
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		result := Authenticate(authHeader, cfg)

		if !result.Success {
			logger.WarnCtx(c.Request.Context(), "Authentication failed",
				zap.Error(result.Error),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			apiErr := apierrors.NewUnauthorizedError("Authentication failed", result.Error.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiErr)
			return
		}

		// Store authentication info in context
		c.Set(JWT_CLAIMS_KEY, result.Claims)
		c.Set(AUTH_SUBJECT_KEY, result.AuthSubject)
		c.Set(CALLER_KEY, result.Caller)
		logger.DebugCtx(c.Request.Context(), "JWT authentication successful",
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.String("subject", result.AuthSubject),
		)

		c.Next()
	}
}

// Caller returns the authenticated caller stored by Auth
func Caller(c *gin.Context) (common.Address, bool) {
	v, ok := c.Get(CALLER_KEY)
	if !ok {
		return common.Address{}, false
	}
	caller, ok := v.(common.Address)
	return caller, ok
}

// validateJWT validates a JWT token with RSA signature and returns claims
func validateJWT(tokenString string, publicKeyPEM string) (*jwt.RegisteredClaims, error) {
	if publicKeyPEM == "" {
		return nil, errors.New("JWT public key not configured")
	}

	// Parse the RSA public key
	publicKey, err := parseRSAPublicKey(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	// Parse and validate the token with claims
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is RSA
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	// Validate standard claims
	now := time.Now()

	// Check expiration
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(now) {
		return nil, errors.New("token has expired")
	}

	// Check not before
	if claims.NotBefore != nil && claims.NotBefore.After(now) {
		return nil, errors.New("token not yet valid")
	}

	return claims, nil
}

// parseRSAPublicKey parses an RSA public key from PEM format
func parseRSAPublicKey(publicKeyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKeyPEM))
	if block == nil {
		return nil, errors.New("failed to parse PEM block containing public key")
	}

	// Try parsing as PKIX (most common format)
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		// Try parsing as PKCS1 format
		return x509.ParsePKCS1PublicKey(block.Bytes)
	}

	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not an RSA key")
	}

	return rsaKey, nil
}
