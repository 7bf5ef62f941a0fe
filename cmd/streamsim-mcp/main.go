package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rmax-ai/streamsim/pkg/client"
	"github.com/rmax-ai/streamsim/pkg/config"
	"github.com/rmax-ai/streamsim/pkg/logging"
	"github.com/rmax-ai/streamsim/pkg/mcp"
)

func main() {
	config.LoadEnv(nil, config.EnvFiles...)

	cfg, err := config.Load("streamsim-mcp", os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "streamsim-mcp: %v\n", err)
		os.Exit(2)
	}

	// stdout carries the protocol.
	logger, logFile, err := logging.NewFile(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "streamsim-mcp: failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger.WithField("backend_url", cfg.BackendURL).Info("mcp_server_started")

	submitter := client.NewClient(cfg.BackendURL, client.WithTimeout(cfg.SubmitTimeout), client.WithLogger(logger))
	if err := mcp.NewServer(submitter, logger).Serve(); err != nil {
		logger.WithError(err).Error("mcp_server_failed")
		fmt.Fprintf(os.Stderr, "streamsim-mcp: %v\n", err)
		os.Exit(1)
	}
}
