package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/a3tai/mcp-idp-review/internal/config"
	"github.com/a3tai/mcp-idp-review/internal/mcp"
	"github.com/a3tai/mcp-idp-review/internal/review"
)

const shutdownTimeout = 5 * time.Second

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// newService creates the review service described by cfg
func newService(cfg *config.Config, logger *zap.Logger) (*review.Service, error) {
	return review.NewService(review.Options{
		Directory:      cfg.Directory,
		MaxFileSize:    cfg.MaxFileSize,
		HistoryMode:    cfg.History(),
		HistoryLimit:   cfg.HistoryLimit,
		TypeaheadLimit: cfg.TypeaheadLimit,
		Logger:         logger,
	})
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger *zap.Logger) int {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()

		select {
		case err := <-serverErrCh:
			if err != nil {
				logger.Error("server shutdown with error", zap.Error(err))
				return 1
			}
		case <-time.After(shutdownTimeout):
			// the stdio transport only returns once stdin closes
			logger.Warn("server did not stop in time", zap.Duration("timeout", shutdownTimeout))
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// runStdioMode handles stdio mode execution. The parent process controls the lifecycle:
// the server returns when stdin is closed.
func runStdioMode(ctx context.Context, server *mcp.Server, logger *zap.Logger) int {
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}

func run() int {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion()
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	if version != "dev" {
		cfg.Version = version
	}

	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.Stringer("config", cfg))

	service, err := newService(cfg, logger)
	if err != nil {
		logger.Error("failed to create review service", zap.Error(err))
		return 1
	}

	server, err := mcp.NewServer(cfg, service, logger)
	if err != nil {
		logger.Error("failed to create MCP server", zap.Error(err))
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, cancel, server, logger)
	}
	return runStdioMode(ctx, server, logger)
}

func main() {
	os.Exit(run())
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("MCP IDP Review\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
