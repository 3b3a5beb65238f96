package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"pngme/config"
	"pngme/storage"

	"github.com/lmittmann/tint"
)

var (
	cfg      *config.Config
	logger   = slog.New(slog.NewTextHandler(io.Discard, nil))
	logLevel = new(slog.LevelVar)
	logFile  *os.File
	store    storage.History = storage.NopHistory{}
)

// setup loads the config and opens the logger and the history store.
func setup(configPath, level string, stderr io.Writer) error {
	var err error
	cfg, err = config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", configPath, err)
	}
	if level == "" {
		level = cfg.LogLevel
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("bad log level %q: %w", level, err)
	}
	logLevel.Set(lvl)
	if cfg.LogFile != "" {
		logFile, err = os.OpenFile(cfg.LogFile,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
		}
		logger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: logLevel}))
	} else {
		logger = slog.New(tint.NewHandler(stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
		}))
	}
	store = storage.NopHistory{}
	if cfg.HistoryEnabled {
		store, err = storage.NewProviderSQL(cfg.DBPATH, logger)
		if err != nil {
			return fmt.Errorf("failed to open history db %s: %w", cfg.DBPATH, err)
		}
	}
	return nil
}

func teardown() {
	if err := store.Close(); err != nil {
		logger.Warn("failed to close history db", "error", err)
	}
	store = storage.NopHistory{}
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// run executes the command line and releases everything setup opened.
func run(args []string, stdout, stderr io.Writer) error {
	defer teardown()
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.Execute()
	if err != nil {
		logger.Error("command failed", "error", err)
	}
	return err
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
