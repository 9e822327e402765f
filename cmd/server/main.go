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

	"github.com/whizzzkid/instagram-proxy-api/internal/access"
	"github.com/whizzzkid/instagram-proxy-api/internal/blacklist"
	"github.com/whizzzkid/instagram-proxy-api/internal/config"
	"github.com/whizzzkid/instagram-proxy-api/internal/httpserver"
	"github.com/whizzzkid/instagram-proxy-api/internal/instagram"
	"github.com/whizzzkid/instagram-proxy-api/internal/proxy"
	"github.com/whizzzkid/instagram-proxy-api/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	if err := telemetry.Init(cfg.SentryDSN, os.Getenv("RELEASE")); err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer telemetry.Flush(2 * time.Second)

	domains := blacklist.Default
	if cfg.BlacklistDB != "" {
		store, err := blacklist.Open(cfg.BlacklistDB)
		if err != nil {
			return fmt.Errorf("open blacklist store: %w", err)
		}
		domains, err = store.Domains(context.Background())
		store.Close()
		if err != nil {
			return fmt.Errorf("load blacklist: %w", err)
		}
	}

	filter := access.NewFilter(domains, cfg.FalsePositiveRate)
	logger.Info("blacklist filter ready",
		"domains", len(domains),
		"false_positive_rate", cfg.FalsePositiveRate,
	)

	guard := access.NewGuard(filter, cfg.AllowUndefinedReferer)
	client := instagram.NewClient(cfg.UpstreamURL)
	service := proxy.NewService(guard, client, proxy.Limits{
		Max:     cfg.MaxCount,
		Default: cfg.DefaultCount,
	}, logger)

	// Set up graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	server := httpserver.NewServer(cfg, service, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port, "upstream", cfg.UpstreamURL)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
