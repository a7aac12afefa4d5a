// Superpower store: a local, in-process data store that stands in for a
// remote backend. It persists conversations, folders, prompts, and user
// state, answers paginated queries, and merges externally scraped data.
//
// Usage:
//
//	superpower serve     # Expose the store over MCP (stdio transport)
//	superpower bridge    # Expose the store over a local WebSocket endpoint
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/anuj1535-hue/superpower-gpt/internal/bridge"
	"github.com/anuj1535-hue/superpower-gpt/internal/config"
	"github.com/anuj1535-hue/superpower-gpt/internal/logging"
	sserver "github.com/anuj1535-hue/superpower-gpt/internal/server"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "bridge":
		if err := runBridge(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
	case "--version", "-v", "version":
		fmt.Printf("superpower v%s\n", sserver.Version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

// runServe starts the MCP stdio server. Logs go to stderr so they don't
// interfere with the stdio transport on stdout.
func runServe() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	s, cleanup, err := sserver.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	return server.ServeStdio(s)
}

// runBridge starts the WebSocket bridge and blocks until interrupted.
func runBridge() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	gw, cleanup, err := sserver.NewEngine(cfg, log)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:    cfg.BridgeAddr,
		Handler: bridge.New(gw, log).Handler(),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("bridge shutdown", zap.Error(err))
		}
	}()

	log.Info("bridge listening", zap.String("addr", cfg.BridgeAddr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("bridge listen: %w", err)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Superpower store v%s — local conversation store and dispatch engine

Usage:
  superpower serve     Start the MCP server (stdio transport)
  superpower bridge    Start the local WebSocket bridge
  superpower version   Print the version

Environment:
  SUPERPOWER_DATA_DIR      Snapshot database directory (default ~/.superpower)
  SUPERPOWER_BRIDGE_ADDR   Bridge listen address (default 127.0.0.1:8787)
  SUPERPOWER_DEBOUNCE_MS   Save debounce quiet period in milliseconds
  SUPERPOWER_READY_BUDGET  Readiness poll attempts before requests fail
  SUPERPOWER_LOG_LEVEL     zap level: debug, info, warn, error
`, sserver.Version)
}
