package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rmax-ai/streamsim/pkg/client"
	"github.com/rmax-ai/streamsim/pkg/clipboard"
	"github.com/rmax-ai/streamsim/pkg/config"
	"github.com/rmax-ai/streamsim/pkg/console"
	"github.com/rmax-ai/streamsim/pkg/logging"
	"github.com/rmax-ai/streamsim/pkg/logstream"
	"github.com/rmax-ai/streamsim/pkg/metrics"
	"github.com/rmax-ai/streamsim/pkg/transcript"
)

var (
	Version   = "v1.0.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	config.LoadEnv(nil, config.EnvFiles...)

	cfg, err := config.Load("streamsim", os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "streamsim: %v\n", err)
		os.Exit(2)
	}

	// The console owns the terminal, so diagnostics go to a file.
	logger, logFile, err := logging.NewFile(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamsim: failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger.WithFields(logrus.Fields{
		"version":     Version,
		"commit":      Commit,
		"build_time":  BuildTime,
		"backend_url": cfg.BackendURL,
		"ws_url":      cfg.WSURL,
		"transcripts": cfg.Transcripts,
	}).Info("system_started")

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("console_failed")
		fmt.Fprintf(os.Stderr, "streamsim: %v\n", err)
		os.Exit(1)
	}
	logger.Info("shutdown_complete")
}

func run(cfg config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := startMetrics(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	store, err := transcript.Open(ctx, cfg.TranscriptOptions())
	if err != nil {
		return fmt.Errorf("failed to open transcript store: %w", err)
	}
	if store != nil {
		defer store.Close()
		logger.WithField("backend", cfg.Transcripts).Info("transcript_store_initialized")
	}

	if clipboard.Unsupported() {
		logger.Warn("clipboard_unsupported")
	}

	return console.Run(ctx, console.Deps{
		Submitter: client.NewClient(cfg.BackendURL, client.WithTimeout(cfg.SubmitTimeout), client.WithLogger(logger)),
		Dialer:    logstream.WebSocketDialer{HandshakeTimeout: cfg.DialTimeout},
		LogURL:    cfg.WSURL,
		Clipboard: clipboard.NewHelper(clipboard.WithLogger(logger)),
		Archive:   store,
		Logger:    logger,
	})
}

func startMetrics(addr string, logger logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.WithField("addr", addr).Info("metrics_listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics_server_failed")
		}
	}()
	return srv
}
