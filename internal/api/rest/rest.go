package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-storefront/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Feed endpoints (public, a feed id is the capability)
		v1.POST("/feeds", handler.CreateFeed)
		v1.GET("/feeds/:id", handler.GetFeed)
		v1.PUT("/feeds/:id/filter", handler.UpdateFeedFilter)
		v1.POST("/feeds/:id/refresh", handler.RefreshFeed)
		v1.DELETE("/feeds/:id", handler.DeleteFeed)

		// Catalog endpoints (public read access)
		v1.GET("/assets/:chain/:contract/:token", handler.GetAsset)
		v1.GET("/search", handler.Search)
		v1.GET("/images/resolve", handler.ResolveImage)

		// Auction endpoints
		v1.POST("/auctions", middleware.APIKeyAuth(authCfg), handler.CreateAuction)
		v1.GET("/auctions/:id", handler.GetAuction)
		v1.POST("/auctions/:id/bids", middleware.OptionalBidder(authCfg), handler.PlaceBid)
	}
}
