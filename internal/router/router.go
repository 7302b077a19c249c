package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/ignite-backend/internal/config"
	"github.com/stemsi/ignite-backend/internal/handler"
	"github.com/stemsi/ignite-backend/internal/middleware"
	"github.com/stemsi/ignite-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Class   *handler.ClassHandler
	Booking *handler.BookingHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds the lifetime of background helpers such as the rate limiter sweep.
func SetupRouter(ctx context.Context, handlers *Handlers, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.NoRoute(handlers.System.NotFound)
	router.GET("/", handlers.System.Root)

	// ─── 1. API Group ──────────────────────────────────────────────────
	api := router.Group("/api")
	api.Use(middleware.CacheControl("no-store"))
	{
		api.GET("/health", handlers.System.Health)
	}

	// ─── 2. Classes ────────────────────────────────────────────────────
	classes := api.Group("/classes")
	{
		classes.POST("", handlers.Class.Create)
		classes.GET("", handlers.Class.GetAll)
		classes.GET("/:id", handlers.Class.GetByID)
	}

	// ─── 3. Bookings (creation rate limited per IP) ────────────────────
	bookingLimiter := middleware.NewRateLimiter(ctx, cfg.BookingRateLimit, time.Minute)

	bookings := api.Group("/bookings")
	{
		bookings.POST("", bookingLimiter.Middleware(), handlers.Booking.Create)
		bookings.GET("", handlers.Booking.Search)
		bookings.GET("/all", handlers.Booking.GetAll)
		bookings.GET("/:id", handlers.Booking.GetByID)
	}

	// ─── 4. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/classes/:id/availability", handlers.WS.AvailabilityStream)
	}

	return router
}
