package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rebeliceyang/lazyaudience/internal/app"
	"github.com/rebeliceyang/lazyaudience/internal/config"
	"github.com/rebeliceyang/lazyaudience/internal/history"
	"github.com/rebeliceyang/lazyaudience/internal/library"
	"github.com/rebeliceyang/lazyaudience/internal/logger"
)

func main() {
	var cfg *config.Config
	var err error
	if path := os.Getenv("LAZYAUDIENCE_CONFIG"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	l, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		log.Printf("Warning: Could not create logger: %v (logging disabled)\n", err)
		l = logger.Nop()
	}
	defer func() { _ = l.Sync() }()

	// Both stores are optional; the app reports the missing feature when used
	lib, err := library.NewManager(cfg.Storage.LibraryPath)
	if err != nil {
		l.Errorw("failed to open audience library", "path", cfg.Storage.LibraryPath, "error", err)
	}

	var hist *history.Store
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.HistoryPath), 0755); err != nil {
		l.Errorw("failed to create history directory", "path", cfg.Storage.HistoryPath, "error", err)
	} else if hist, err = history.NewStore(cfg.Storage.HistoryPath); err != nil {
		l.Errorw("failed to open compile history", "path", cfg.Storage.HistoryPath, "error", err)
	} else {
		defer hist.Close()
	}

	l.Infow("starting", "library", cfg.Storage.LibraryPath, "history", cfg.Storage.HistoryPath)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(app.New(cfg, lib, hist, l), opts...)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
