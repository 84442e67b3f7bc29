// Command promptpin-harvest runs a single harvest and prints the result as
// JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/MikeSquared-Agency/promptpin/internal/app"
	"github.com/MikeSquared-Agency/promptpin/internal/config"
	"github.com/MikeSquared-Agency/promptpin/internal/processor"
)

func main() {
	feed := flag.String("feed", processor.FeedTrending, "feed to harvest")
	count := flag.Int("count", 0, "videos to request (defaults to EXPLORE_COUNT)")
	skipped := flag.Bool("skipped", false, "include skipped videos in the output")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if err := config.LoadDotEnv(".env.local", ".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	cfg := config.Load()
	if *count > 0 {
		cfg.ExploreCount = *count
	}

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: lvl, TimeFormat: time.Kitchen}))

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline := app.Build(cfg, logger)
	res, err := processor.NewRunner(pipeline.Processor, nil, nil, nil, logger).Run(ctx, *feed, "cli")
	if err != nil {
		logger.Error("harvest failed", "error", err)
		os.Exit(1)
	}

	out := map[string]any{"prompts": res.Prompts}
	if *skipped {
		out["skipped"] = res.Skipped
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("write output", "error", err)
		os.Exit(1)
	}
}
