package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/KXX-Hub/kxx-digital-album/internal/api/middleware"
	"github.com/KXX-Hub/kxx-digital-album/internal/ratelimit"
)

// SetupRoutes configures all REST API routes. limiter may be nil.
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig, limiter ratelimit.Limiter) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	auth := middleware.Auth(authCfg)
	limit := middleware.RateLimit(limiter)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Ledger counters and audit journal (public read access)
		v1.GET("/stats", limit, handler.GetStats)
		v1.GET("/events", limit, handler.GetEvents)
		v1.GET("/events/verify", limit, handler.VerifyJournal)

		// Catalog endpoints (public read access)
		v1.GET("/albums/:album_id", limit, handler.GetAlbum)
		v1.GET("/albums/:album_id/supply", limit, handler.GetAlbumSupply)
		v1.GET("/albums/:album_id/tracks", limit, handler.GetAlbumTracks)
		v1.GET("/albums/:album_id/tracks/:track_number", limit, handler.GetTrack)
		v1.GET("/albums/:album_id/tracks/:track_number/supply", limit, handler.GetTrackSupply)
		v1.GET("/albums/:album_id/tracks/:track_number/tokens", limit, handler.GetTrackTokens)

		// Catalog administration (requires authentication, controller only)
		v1.POST("/albums", auth, limit, handler.CreateAlbum)
		v1.PUT("/albums/:album_id/max-supply", auth, limit, handler.SetAlbumMaxSupply)
		v1.POST("/albums/:album_id/tracks/:track_number", auth, limit, handler.MintTrack)
		v1.POST("/albums/:album_id/tracks/:track_number/copies", auth, limit, handler.MintAdditionalCopy)
		v1.PUT("/albums/:album_id/tracks/:track_number/max-supply", auth, limit, handler.SetTrackMaxSupply)
		v1.PUT("/albums/:album_id/tracks/:track_number/price", auth, limit, handler.UpdateTrackPrice)
		v1.PUT("/albums/:album_id/tracks/:track_number/sale-status", auth, limit, handler.UpdateTrackSaleStatus)

		// Token endpoints (public read access)
		v1.GET("/tokens/:token_id", limit, handler.GetToken)
		v1.GET("/tokens/:token_id/owner", limit, handler.GetTokenOwner)
		v1.GET("/tokens/:token_id/uri", limit, handler.GetTokenURI)
		v1.GET("/tokens/:token_id/exists", limit, handler.TokenExists)

		// Sales and transfers (requires authentication)
		v1.POST("/tokens/:token_id/purchase", auth, limit, handler.PurchaseToken)
		v1.POST("/tokens/:token_id/transfer", auth, limit, handler.TransferToken)

		// Ledger settings (requires authentication, controller only)
		v1.PUT("/royalty", auth, limit, handler.SetRoyalty)
		v1.POST("/pause", auth, limit, handler.Pause)
		v1.POST("/unpause", auth, limit, handler.Unpause)

		// Payout balances
		v1.GET("/balances/:address", limit, handler.GetBalance)
		v1.POST("/balances/withdraw", auth, limit, handler.Withdraw)
	}
}
