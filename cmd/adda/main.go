package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"adda/internal/adapters/tui"
	"adda/internal/bootstrap"
	"adda/internal/config"
	"adda/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "path to the config file (default $ADDA_CONFIG or ~/.config/adda/config.yaml)")
	flag.Parse()

	if err := run(*configFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// The terminal belongs to the TUI; logs only go to the configured file
	logger, err := logging.New(io.Discard, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	app, err := bootstrap.New(context.Background(), cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer app.Close()

	p := tea.NewProgram(tui.NewApp(app.Table, app), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
