package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/videoprep/videoprep-server/internal/api"
	"github.com/videoprep/videoprep-server/internal/catalog"
	"github.com/videoprep/videoprep-server/internal/config"
	"github.com/videoprep/videoprep-server/internal/db"
	"github.com/videoprep/videoprep-server/internal/export"
	"github.com/videoprep/videoprep-server/internal/ingest"
	"github.com/videoprep/videoprep-server/internal/logging"
	"github.com/videoprep/videoprep-server/internal/media"
	"github.com/videoprep/videoprep-server/internal/playback"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, dir := range []string{cfg.DataDir(), cfg.UploadDir(), cfg.ThumbnailDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.New(logging.Options{
		Level:      cfg.LogLevel(),
		Format:     cfg.LogFormat(),
		File:       cfg.LogFile(),
		MaxSizeMB:  config.DefaultLogMaxSizeMB,
		MaxBackups: config.DefaultLogMaxBackups,
		MaxAgeDays: config.DefaultLogMaxAgeDays,
	}, os.Stdout)
	logger.Info("starting videoprep server",
		"version", config.Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := catalog.NewRepository(database.Conn())

	mediaLogger := logging.WithComponent(logger, "media")
	caps := media.Detect(ctx, cfg.FFmpegPath(), cfg.FFprobePath(), mediaLogger)

	assigner := ingest.NewAssigner(cfg.UploadDir(), cfg.MaxUploadBytes(), logging.WithComponent(logger, "ingest"))
	ingestSvc := ingest.NewService(
		assigner,
		media.NewProber(caps, mediaLogger),
		media.NewThumbnailer(caps, mediaLogger),
		repo,
		cfg.ThumbnailDir(),
		logging.WithComponent(logger, "ingest"),
	)

	transcoder := media.NewTranscoder(caps, cfg.TranscodeTimeout(), mediaLogger)
	orchestrator := export.NewOrchestrator(transcoder, caps, cfg.LockDir(), logging.WithComponent(logger, "export"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reaper := catalog.NewReaper(repo,
		[]string{cfg.UploadDir(), cfg.ThumbnailDir()},
		cfg.RetentionTTL(), cfg.RetentionInterval(),
		logging.WithComponent(logger, "reaper"),
	)
	go reaper.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Addr:           cfg.Addr(),
		Ingester:       ingestSvc,
		Exporter:       orchestrator,
		Thumbnails:     playback.NewServer(cfg.ThumbnailDir(), logger),
		Uploads:        playback.NewServer(cfg.UploadDir(), logger),
		Repository:     repo,
		Capabilities:   caps,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logging.WithComponent(logger, "api"),
		StartTime:      startTime,
		Version:        config.Version,
	})

	printBanner(cfg, caps)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("videoprep server stopped")
	return nil
}

func printBanner(cfg config.Config, caps media.Capabilities) {
	fmt.Println()
	fmt.Printf("  videoprep %s\n", config.Version)
	fmt.Printf("  API:        http://%s\n", cfg.Addr())
	fmt.Printf("  Data dir:   %s\n", logging.SanitizePath(cfg.DataDir()))
	fmt.Printf("  Upload max: %s\n", humanize.IBytes(uint64(cfg.MaxUploadBytes())))
	fmt.Printf("  Encoder:    %s\n", availability(caps.EncoderAvailable()))
	fmt.Printf("  Prober:     %s\n", availability(caps.ProberAvailable()))
	fmt.Println()
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
