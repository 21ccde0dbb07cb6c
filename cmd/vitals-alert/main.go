package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/medwatch/go-vitals-alerts/internal/api"
	"github.com/medwatch/go-vitals-alerts/internal/broadcast"
	"github.com/medwatch/go-vitals-alerts/internal/config"
	"github.com/medwatch/go-vitals-alerts/internal/directory"
	"github.com/medwatch/go-vitals-alerts/internal/health"
	"github.com/medwatch/go-vitals-alerts/internal/logging"
	"github.com/medwatch/go-vitals-alerts/internal/pipeline"
	"github.com/medwatch/go-vitals-alerts/internal/repository"
	"github.com/medwatch/go-vitals-alerts/internal/telemetry"
	"github.com/medwatch/go-vitals-alerts/internal/worker"
	"github.com/medwatch/go-vitals-alerts/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := directory.New()
	broadcaster := broadcast.New(dir)
	pipe := pipeline.New(db, broadcaster)

	// Breach events from the generator fan into the pipeline via the pool.
	pool := worker.NewPool(cfg.Worker.Count, cfg.Worker.BufferSize, func(ctx context.Context, b worker.Breach) error {
		_, err := pipe.IngestSyntheticAlert(ctx, b.Message)
		return err
	})
	pool.Start(ctx)

	generator := telemetry.NewGenerator(cfg.Simulator.Interval)
	generator.OnVitals = pipe.IngestSyntheticVitals
	generator.OnBreach = func(message string) {
		pool.Submit(worker.Breach{Message: message, DetectedAt: time.Now()})
	}
	if cfg.Simulator.Enabled {
		generator.Start()
	}

	heartbeat := health.NewHeartbeat(cfg.Simulator.HeartbeatInterval, db, broadcaster)
	heartbeat.Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Actor-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	api.NewHandler(db, pipe).RegisterRoutes(router, api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	wsHandler := ws.NewHandler(dir, broadcaster)
	wsHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	// The generator stops first so no new breaches arrive, then the pool
	// drains its queue before the worker context is cancelled.
	generator.Stop()
	pool.Stop()
	cancel()
	heartbeat.Stop()
	wsHandler.CloseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
