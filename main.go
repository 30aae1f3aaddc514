package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/samaj-vote/cliparse"
	"github.com/danielhkuo/samaj-vote/db"
	"github.com/danielhkuo/samaj-vote/logging"
	"github.com/danielhkuo/samaj-vote/metrics"
	"github.com/danielhkuo/samaj-vote/middleware"
	"github.com/danielhkuo/samaj-vote/router"
	"github.com/danielhkuo/samaj-vote/storage"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.LogFormat, cfg.LogLevel); err != nil {
		slog.Error("invalid logging config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database (retries until it answers)
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}

	zones, err := db.DefaultRegistry()
	if err != nil {
		slog.Error("zone registry invalid", "error", err)
		os.Exit(1)
	}
	if err := db.SeedZones(ctx, dbConn, zones); err != nil {
		slog.Error("zone seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "zones", len(zones))

	deps := router.Deps{Metrics: metrics.New()}
	if cfg.DocumentBucket != "" {
		presigner, err := storage.NewS3Presigner(ctx, cfg.DocumentBucket, cfg.AWSRegion,
			storage.WithExpiry(cfg.PresignTTL))
		if err != nil {
			slog.Error("document storage setup failed", "error", err)
			os.Exit(1)
		}
		deps.Presigner = presigner
		slog.Info("Document storage ready", "bucket", cfg.DocumentBucket)
	} else {
		slog.Warn("DOCUMENT_BUCKET not set; nomination uploads disabled")
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, deps)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(middleware.WithMetrics(deps.Metrics, mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
