package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/southeastwestnorth/tanzimapp/internal/config"
	"github.com/southeastwestnorth/tanzimapp/internal/handler"
	"github.com/southeastwestnorth/tanzimapp/internal/middleware"
	"github.com/southeastwestnorth/tanzimapp/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Bank    *handler.BankHandler
	Session *handler.SessionHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the expensive endpoints (30 requests per minute per IP).
	createLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Question Banks ─────────────────────────────────────────────
	banks := router.Group("/api/v1/banks")
	{
		banks.GET("", handlers.Bank.ListBanks)
		banks.POST("", createLimiter.Middleware(), handlers.Bank.UploadBank)
	}

	// ─── 2. Quiz Sessions ──────────────────────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	{
		sessions.POST("", createLimiter.Middleware(), handlers.Session.CreateSession)
		sessions.GET("/:id", handlers.Session.GetSession)
		sessions.PUT("/:id/answers/:index", handlers.Session.RecordAnswer)
		sessions.POST("/:id/submit", handlers.Session.Submit)
		sessions.POST("/:id/expire", handlers.Session.Expire)
		sessions.POST("/:id/restart", createLimiter.Middleware(), handlers.Session.Restart)
		sessions.GET("/:id/result", handlers.Session.Result)
		sessions.GET("/:id/result/report.pdf", handlers.Session.Report)
	}

	// ─── 3. WebSocket Timer Stream ─────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/sessions/:id/timer", handlers.WS.TimerStream)
	}

	return router
}
