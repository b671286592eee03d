// Package main is the voiceinsight service entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm/logger"

	"github.com/voiceinsight/voiceinsight/internal/bot"
	"github.com/voiceinsight/voiceinsight/internal/config"
	"github.com/voiceinsight/voiceinsight/internal/gateway"
	"github.com/voiceinsight/voiceinsight/internal/platform"
	"github.com/voiceinsight/voiceinsight/internal/queue"
	"github.com/voiceinsight/voiceinsight/internal/stager"
	"github.com/voiceinsight/voiceinsight/internal/store"
	"github.com/voiceinsight/voiceinsight/internal/summarizer"
	"github.com/voiceinsight/voiceinsight/internal/transcoder"
	"github.com/voiceinsight/voiceinsight/internal/transcriber"
	"github.com/voiceinsight/voiceinsight/internal/watcher"
	"github.com/voiceinsight/voiceinsight/internal/worker"
	"github.com/voiceinsight/voiceinsight/pkg/executor"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	importLegacy := flag.String("import-legacy", "", "Import transcripts from a legacy per-job file tree, then exit")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.Logging.Level).Msg("Invalid log level")
	}
	zerolog.SetGlobalLevel(level)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("Shutting down")
		cancel()
	}()

	st, err := store.NewStore(store.Config{
		Path:     cfg.Database.Path,
		MaxConns: cfg.Database.MaxConns,
		LogLevel: logger.Silent,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer st.Close()

	if *importLegacy != "" {
		if err := st.ImportLegacyFiles(ctx, *importLegacy); err != nil {
			log.Fatal().Err(err).Str("root", *importLegacy).Msg("Legacy import failed")
		}
		log.Info().Str("root", *importLegacy).Msg("Legacy import complete")
		return
	}

	if err := os.MkdirAll(cfg.Staging.Root, 0o755); err != nil {
		log.Fatal().Err(err).Str("root", cfg.Staging.Root).Msg("Failed to create staging root")
	}

	messenger := platform.NewClient(cfg.Platform.APIURL, cfg.Platform.FilesURL, cfg.Platform.Timeout)
	asr := transcriber.NewClient(cfg.ASR.URL, cfg.ASR.Timeout)
	llm := summarizer.NewClient(cfg.LLM.URL, cfg.LLM.Timeout)
	tc := transcoder.New(cfg.FFmpeg.Binary, executor.New())

	jobs := queue.New()
	stg := stager.New(cfg.Staging.Root, messenger, tc)
	wrk := worker.New(jobs, stg, asr, st, messenger)
	handler := bot.NewHandler(st, jobs, messenger, llm, os.TempDir())
	gw := gateway.New(cfg.Gateway.Addr, handler, st)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return wrk.Run(gctx) })
	g.Go(func() error { return gw.Run(gctx) })
	if cfg.Inbox.Enabled {
		inbox, err := watcher.New(cfg.Inbox.Dir, cfg.Inbox.ChatID, jobs, messenger)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Inbox.Dir).Msg("Failed to create inbox watcher")
		}
		g.Go(func() error { return inbox.Run(gctx) })
	}

	log.Info().Str("version", Version).Str("addr", cfg.Gateway.Addr).Msg("voiceinsight started")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Service error")
	}
	log.Info().Msg("Stopped")
}
