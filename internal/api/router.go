package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/tradeflow/internal/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig carries the HTTP-level knobs read from config.
type RouterConfig struct {
	AdminUserIDs   []string
	RateLimitRPS   float64
	RateLimitBurst int
	RequestTimeout time.Duration
}

// NewRouter creates a Gin engine with routes configured.
// It receives handlers with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Caller, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Adds a per-request timeout (10 seconds unless configured).
//   - Mounts Swagger docs (/swagger/*any).
//   - Configures API v1 routes (/api/v1). The websocket route is skipped when stream is nil.
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, stream *StreamHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 20
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 40
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.Caller(cfg.AdminUserIDs),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	if stream != nil {
		v1.GET("/ws", stream.Stream)
	}

	timed := v1.Group("", timeout(cfg.RequestTimeout))
	{
		timed.POST("/trades", handler.CreateTrade)
		timed.GET("/trades", handler.ListTrades)
		timed.GET("/trades/:id", handler.GetTrade)
		timed.POST("/trades/:id/deposit", handler.RecordDeposit)
		timed.POST("/trades/:id/confirm", handler.ConfirmTrade)
		timed.POST("/trades/:id/documents", handler.UploadDocuments)
		timed.POST("/trades/:id/verify", handler.VerifyDocuments)
		timed.POST("/trades/:id/final-payment", handler.RecordFinalPayment)
		timed.POST("/trades/:id/claim", handler.Claim)
		timed.POST("/trades/:id/cancel", handler.CancelTrade)

		timed.GET("/admin/settings", handler.GetSettings)
		timed.PUT("/admin/settings", handler.UpdateSettings)
	}

	return router
}

// timeout bounds the request context. Long-lived routes (the websocket)
// are registered outside of it.
func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
