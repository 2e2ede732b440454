package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"go.uber.org/zap"

	"github.com/xoroz/yt-transcript/internal/observability"
	"github.com/xoroz/yt-transcript/internal/server/handlers"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	// Transcript endpoints
	s.router.Post("/transcript", handlers.TranscriptHandler)
	s.router.Post("/transcript/text", handlers.TranscriptTextHandler)
	s.router.Post("/transcript/html", handlers.TranscriptHTMLHandler)

	// Standard health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	// Admin endpoints (optional, require YTT_ADMIN_TOKEN)
	s.registerAdminEndpoints()
}

// registerAdminEndpoints optionally registers the admin surface: cache purge,
// cache stats, and the gofulmen signal endpoint.
func (s *Server) registerAdminEndpoints() {
	adminToken := os.Getenv("YTT_ADMIN_TOKEN")
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin endpoints disabled (no YTT_ADMIN_TOKEN set)")
		}
		return
	}

	// Cache administration
	s.router.Delete("/admin/transcripts/{videoID}", handlers.PurgeTranscriptHandler)
	s.router.Get("/admin/cache/stats", handlers.CacheStatsHandler)

	// Create HTTP signal handler with bearer token auth and rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin endpoints enabled",
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoints enabled - ensure this server is not exposed to public internet")
	}
}
