package cmd

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xoroz/yt-transcript/internal/artifact"
	"github.com/xoroz/yt-transcript/internal/config"
	"github.com/xoroz/yt-transcript/internal/core/gate"
	"github.com/xoroz/yt-transcript/internal/core/gateway"
	"github.com/xoroz/yt-transcript/internal/core/hotcache"
	"github.com/xoroz/yt-transcript/internal/core/store"
	"github.com/xoroz/yt-transcript/internal/core/youtube"
	errwrap "github.com/xoroz/yt-transcript/internal/errors"
	"github.com/xoroz/yt-transcript/internal/observability"
	"github.com/xoroz/yt-transcript/internal/server"
	"github.com/xoroz/yt-transcript/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

// storeHealthChecker verifies the transcript store answers a ping
type storeHealthChecker struct {
	store *store.Store
}

func (s storeHealthChecker) CheckHealth(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// signalHealthChecker implements HealthChecker for signal system
type signalHealthChecker struct{}

func (signalHealthChecker) CheckHealth(ctx context.Context) error {
	return nil // Signal handlers are registered and ready
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the transcript HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (placeholder - restart recommended)

The server will cleanly shut down the HTTP server, close the transcript
store, and flush logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "configuration invalid")
		}

		// Initialize server logger
		observability.InitServerLogger(appName, cfg.Logging.Level)

		metricsPort := cfg.Metrics.Port
		if metricsPort == 0 {
			metricsPort = 9090
		}

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(appName, metricsPort); err != nil {
				observability.ServerLogger.Error("Failed to initialize metrics",
					zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}

		observability.ServerLogger.Info("Initializing server",
			zap.String("service", appName),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Int("metrics_port", metricsPort),
			zap.Duration("throttle_interval", cfg.Throttle.MinInterval))

		// Core components log through plain zap, independent of the
		// gofulmen server logger profile.
		coreLogger, err := zap.NewProduction()
		if err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "core logger initialization failed")
		}

		// Open the durable transcript store and apply migrations
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return errwrap.WrapStorageError(cmd.Context(), err, "could not open transcript store")
		}
		if err := st.Migrate(cmd.Context()); err != nil {
			_ = st.Close()
			return errwrap.WrapStorageError(cmd.Context(), err, "could not migrate transcript store")
		}

		// Upstream client, optionally behind a proxy
		client, err := youtube.NewClient(youtube.Options{
			ProxyURL:  cfg.Fetch.ProxyURL,
			BaseURL:   cfg.Fetch.BaseURL,
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   cfg.Fetch.Timeout,
		})
		if err != nil {
			_ = st.Close()
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "could not build upstream client")
		}

		// Optional Redis hot tier; a connection failure downgrades to the
		// durable store only.
		var hot hotcache.Cache = hotcache.Disabled{}
		if cfg.Cache.Redis.Addr != "" {
			redisCache, err := hotcache.NewRedisCache(cmd.Context(), hotcache.RedisOptions{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
				TTL:      cfg.Cache.Redis.TTL,
			})
			if err != nil {
				observability.ServerLogger.Warn("Redis hot cache unavailable, continuing without it",
					zap.String("addr", cfg.Cache.Redis.Addr),
					zap.Error(err))
			} else {
				hot = redisCache
			}
		}

		// Operations audit log
		opsLogger, err := observability.NewOpsLogger(observability.OpsLogOptions{
			Path:       cfg.Logging.OpsLog.Path,
			MaxSizeMB:  cfg.Logging.OpsLog.MaxSizeMB,
			MaxBackups: cfg.Logging.OpsLog.MaxBackups,
			MaxAgeDays: cfg.Logging.OpsLog.MaxAgeDays,
			Compress:   cfg.Logging.OpsLog.Compress,
		})
		if err != nil {
			_ = st.Close()
			return errwrap.WrapConfigInvalid(cmd.Context(), err, "could not open operations log")
		}

		// Assemble the gateway
		throttle := gate.New(cfg.Throttle.MinInterval)
		gw := gateway.New(st, client, throttle, coreLogger)
		gw.Hot = hot
		gw.Artifacts = artifact.NewSink(cfg.Artifacts.Dir, coreLogger)

		handlers.SetTranscriptDeps(gw, opsLogger)
		handlers.SetAdminDeps(st, os.Getenv("YTT_ADMIN_TOKEN"))

		// Initialize health manager
		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("store", storeHealthChecker{store: st})
		hm.RegisterChecker("signal_handlers", signalHealthChecker{})
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}

		// Create server
		srv := server.New(cfg.Server.Host, cfg.Server.Port)

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 30 * time.Second
		}

		// Register graceful shutdown handlers (LIFO order - last registered, first executed)
		// Handler 1: Flush loggers (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing loggers...")
			_ = opsLogger.Sync()
			_ = coreLogger.Sync()
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			return nil
		})

		// Handler 2: Close store and hot cache
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Closing transcript store...")
			if err := hot.Close(); err != nil {
				observability.ServerLogger.Warn("Hot cache close failed", zap.Error(err))
			}
			if err := st.Close(); err != nil {
				return errwrap.WrapStorageError(ctx, err, "store close failed")
			}
			return nil
		})

		// Handler 3: Shutdown HTTP server (executed first)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		// Register config reload handler (SIGHUP)
		signals.OnReload(func(ctx context.Context) error {
			observability.ServerLogger.Info("Received SIGHUP: attempting config reload")

			if err := viper.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); ok {
					observability.ServerLogger.Info("No config file found - using defaults and environment variables")
					return nil
				}
				observability.ServerLogger.Error("Failed to reload config file",
					zap.String("file", viper.ConfigFileUsed()),
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			if _, err := config.Load(viper.GetViper()); err != nil {
				observability.ServerLogger.Error("Reloaded config is invalid, keeping previous",
					zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}

			observability.ServerLogger.Info("Configuration reloaded successfully",
				zap.String("file", viper.ConfigFileUsed()))

			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		// Start server in background goroutine
		errChan := make(chan error, 1)
		go func() {
			observability.ServerLogger.Info("Starting HTTP server...",
				zap.String("host", cfg.Server.Host),
				zap.Int("port", cfg.Server.Port))
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		// Start signal listener in background
		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		// Wait for error or shutdown completion
		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8000, "server port")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
