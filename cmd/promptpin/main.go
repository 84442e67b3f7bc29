package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/MikeSquared-Agency/promptpin/internal/api"
	"github.com/MikeSquared-Agency/promptpin/internal/app"
	"github.com/MikeSquared-Agency/promptpin/internal/cache"
	"github.com/MikeSquared-Agency/promptpin/internal/config"
	"github.com/MikeSquared-Agency/promptpin/internal/hermes"
	"github.com/MikeSquared-Agency/promptpin/internal/processor"
	"github.com/MikeSquared-Agency/promptpin/internal/scheduler"
	"github.com/MikeSquared-Agency/promptpin/internal/store"
)

func main() {
	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	cfg := config.Load()
	setupLogging(cfg.LogLevel, cfg.LogFormat)

	slog.Info("promptpin starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	configErr := cfg.Validate()
	if configErr != nil {
		slog.Warn("configuration incomplete, harvests will fail", "error", configErr)
	}

	pipeline := app.Build(cfg, slog.Default())

	// Database (optional, archives harvests)
	var (
		archive processor.Archive
		recent  api.RecentSource
	)
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
		archive, recent = db, db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, harvests are not archived")
	}

	// Redis (optional, caches the latest prompts per feed)
	var resultCache processor.ResultCache
	if cfg.RedisAddr != "" {
		pc, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer pc.Close()
		resultCache = pc
		slog.Info("redis connected", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL.String())
	}

	// NATS/Hermes (optional, harvest events and requests)
	var (
		hermesClient *hermes.Client
		publisher    processor.Publisher
	)
	if cfg.NatsURL != "" {
		hc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hc.Close()
		hermesClient, publisher = hc, hc
		slog.Info("NATS connected", "url", cfg.NatsURL)
	}

	runner := processor.NewRunner(pipeline.Processor, archive, resultCache, publisher, slog.Default())

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectHarvestRequested, runner.HandleHarvestRequested); err != nil {
			slog.Error("failed to subscribe to harvest requests", "error", err)
			os.Exit(1)
		}
	}

	// Scheduled harvests
	var sched *scheduler.Scheduler
	if cfg.HarvestSchedule != "" {
		sched = scheduler.New(slog.Default())
		err := sched.Add(cfg.HarvestSchedule, "harvest-trending", func(ctx context.Context) error {
			_, err := runner.Run(ctx, processor.FeedTrending, "schedule")
			return err
		})
		if err != nil {
			slog.Error("invalid HARVEST_SCHEDULE", "error", err)
			os.Exit(1)
		}
		sched.Start()
	}

	// HTTP API
	var author api.Author
	if pipeline.Generator != nil {
		author = pipeline.Generator
	}
	srv := api.NewServer(cfg.Port, cfg.APIToken, runner, author, recent, configErr, slog.Default())
	httpServer := srv.HTTPServer()
	go func() {
		slog.Info("API server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("promptpin ready", "port", cfg.Port, "schedule", cfg.HarvestSchedule)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if sched != nil {
		select {
		case <-sched.Stop().Done():
		case <-shutdownCtx.Done():
			slog.Warn("scheduled harvest still running at shutdown")
		}
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}
	cancel()
	slog.Info("promptpin stopped")
}

func setupLogging(level, format string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "text" {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: lvl, TimeFormat: time.Kitchen})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
}
