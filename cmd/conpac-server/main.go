// Command conpac-server serves the game over WebSocket at /ws.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brensch/conpac/config"
	"github.com/brensch/conpac/logging"
	"github.com/brensch/conpac/server"
	"github.com/brensch/conpac/store"
	"github.com/brensch/conpac/submit"
)

func main() {
	addr := flag.String("addr", getEnvOrDefault("CONPAC_ADDR", ":8080"), "Listen address")
	configPath := flag.String("config", getEnvOrDefault("CONPAC_CONFIG", ""), "YAML file overriding or adding variants")
	variant := flag.String("variant", getEnvOrDefault("CONPAC_VARIANT", ""), "Game variant (default from config)")
	seed := flag.Int64("seed", getEnvInt64OrDefault("CONPAC_SEED", 0), "Fixed random seed for every game (0 = clock)")
	statsPath := flag.String("stats", getEnvOrDefault("CONPAC_STATS", "data/stats.csv"), "Stats history CSV (empty disables)")
	archiveDir := flag.String("archive-dir", getEnvOrDefault("CONPAC_ARCHIVE_DIR", "data/archive"), "Parquet archive directory (empty disables)")
	submitURL := flag.String("submit-url", getEnvOrDefault("CONPAC_SUBMIT_URL", ""), "Score submission endpoint (empty disables)")
	submitTimeout := flag.Duration("submit-timeout", getEnvDurationOrDefault("CONPAC_SUBMIT_TIMEOUT", 10*time.Second), "Score submission timeout")
	logLevel := flag.String("log-level", getEnvOrDefault("CONPAC_LOG_LEVEL", "info"), "debug, info, warn or error")
	logFormat := flag.String("log-format", getEnvOrDefault("CONPAC_LOG_FORMAT", logging.FormatPretty), "pretty, json or text")
	flag.Parse()

	lvl, err := logging.ParseLevel(*logLevel)
	if err != nil {
		slog.Error("invalid log level", "error", err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stderr, logging.Options{Format: *logFormat, Level: lvl, Color: *logFormat == logging.FormatPretty})
	if err != nil {
		slog.Error("invalid log format", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath, *variant)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	opts := server.Options{
		Config:     cfg,
		Logger:     logger,
		ArchiveDir: *archiveDir,
		Seed:       *seed,
	}
	if *statsPath != "" {
		opts.Stats = store.NewStatsStore(*statsPath, logger)
	}
	if *submitURL != "" {
		opts.Submitter = submit.New(submit.Config{URL: *submitURL, Timeout: *submitTimeout}, logger)
	}

	logger.Info("starting conpac-server",
		"addr", *addr,
		"variant", cfg.Name,
		"grid", cfg.GridSize,
		"tick", cfg.TickInterval,
		"stats", *statsPath,
		"archive_dir", *archiveDir,
		"submit_url", *submitURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(opts)
	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown incomplete", "error", err)
	}
	srv.Wait()
	if opts.Submitter != nil {
		opts.Submitter.Wait()
	}
	logger.Info("conpac-server stopped")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt64OrDefault(key string, defaultVal int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
