// Command conpac plays the Life arcade game in a terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brensch/conpac/config"
	"github.com/brensch/conpac/engine"
	"github.com/brensch/conpac/game"
	"github.com/brensch/conpac/logging"
	"github.com/brensch/conpac/store"
	"github.com/brensch/conpac/submit"
)

func main() {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".conpac")

	configPath := flag.String("config", getEnvOrDefault("CONPAC_CONFIG", ""), "YAML file overriding or adding variants")
	variant := flag.String("variant", getEnvOrDefault("CONPAC_VARIANT", ""), "Game variant (default from config)")
	seed := flag.Int64("seed", getEnvInt64OrDefault("CONPAC_SEED", 0), "Random seed (0 = clock)")
	statsPath := flag.String("stats", getEnvOrDefault("CONPAC_STATS", filepath.Join(dataDir, "stats.csv")), "Stats history CSV (empty disables)")
	archiveDir := flag.String("archive-dir", getEnvOrDefault("CONPAC_ARCHIVE_DIR", ""), "Write each finished game as parquet into this directory")
	submitURL := flag.String("submit-url", getEnvOrDefault("CONPAC_SUBMIT_URL", ""), "Score submission endpoint (empty disables)")
	username := flag.String("username", getEnvOrDefault("CONPAC_USERNAME", ""), "Name sent with score submissions")
	submitTimeout := flag.Duration("submit-timeout", getEnvDurationOrDefault("CONPAC_SUBMIT_TIMEOUT", 10*time.Second), "Score submission timeout")
	logPath := flag.String("log-file", getEnvOrDefault("CONPAC_LOG_FILE", filepath.Join(dataDir, "conpac.log")), "Log file (the terminal belongs to the game)")
	logLevel := flag.String("log-level", getEnvOrDefault("CONPAC_LOG_LEVEL", "info"), "debug, info, warn or error")
	logFormat := flag.String("log-format", getEnvOrDefault("CONPAC_LOG_FORMAT", logging.FormatJSON), "pretty, json or text")
	noColor := flag.Bool("no-color", os.Getenv("NO_COLOR") != "", "Disable colors")
	listVariants := flag.Bool("list-variants", false, "Print the known variants and exit")
	flag.Parse()

	set, err := config.LoadSet(*configPath)
	if err != nil {
		fatal(err)
	}
	if *listVariants {
		for _, name := range set.Names() {
			marker := " "
			if name == set.Default {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return
	}
	cfg, err := set.Variant(*variant)
	if err != nil {
		fatal(err)
	}

	logger, closeLog, err := openLogger(*logPath, *logLevel, *logFormat)
	if err != nil {
		fatal(err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting conpac",
		"variant", cfg.Name,
		"seed", *seed,
		"stats", *statsPath,
		"archive_dir", *archiveDir,
		"submit_url", *submitURL,
	)

	var (
		extra    engine.Observers
		stats    *store.StatsStore
		archiver *store.Archiver
		sub      *submit.Submitter
	)
	if *statsPath != "" {
		stats = store.NewStatsStore(*statsPath, logger)
		extra = append(extra, stats)
	}
	if *archiveDir != "" {
		archiver = store.NewArchiver(*archiveDir, logger)
		extra = append(extra, archiver)
	}
	if *submitURL != "" {
		sub = submit.New(submit.Config{URL: *submitURL, Username: *username, Timeout: *submitTimeout}, logger)
		extra = append(extra, sub)
	}

	m := newModel(engine.Options{
		Config: cfg,
		Rand:   game.NewRand(*seed),
		Logger: logger,
	}, extra, stats, !*noColor)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, runErr := p.Run()

	if archiver != nil {
		archiver.Close()
	}
	if sub != nil {
		sub.Wait()
	}
	if runErr != nil {
		logger.Error("terminal ui failed", "error", runErr)
		fatal(runErr)
	}
	logger.Info("conpac exiting")
}

func openLogger(path, level, format string) (*slog.Logger, func(), error) {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	logger, err := logging.New(w, logging.Options{Format: format, Level: lvl})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "conpac:", err)
	os.Exit(1)
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
