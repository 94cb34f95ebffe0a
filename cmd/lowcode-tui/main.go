// lowcode-tui: the interactive terminal page editor.
//
// Usage:
//
//	lowcode-tui [flags]
//
// Flags:
//
//	--db       Path to SQLite database file (default: ~/.lowcode/lowcode.db)
//	--project  Open this project id directly
//	--config   Config file (default: ~/.lowcode/config.yaml)
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mr-Dark-debug/lowcode/internal/config"
	"github.com/Mr-Dark-debug/lowcode/internal/database"
	"github.com/Mr-Dark-debug/lowcode/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "Config file")
	dbPath := flag.String("db", "", "Path to SQLite database file")
	projectID := flag.Int64("project", 0, "Project id to open")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating database directory: %v\n", err)
		os.Exit(1)
	}

	// The screen belongs to the TUI; logs go to a file next to the database.
	logFile, err := os.OpenFile(filepath.Join(filepath.Dir(cfg.DBPath), "tui.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log, err := config.NewLogger(cfg.LogLevel, logFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	store, err := database.NewDBService(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database at %s: %v\n", cfg.DBPath, err)
		os.Exit(1)
	}
	defer store.Close()

	model := tui.NewModel(store, log)
	if *projectID > 0 {
		model = model.Open(*projectID)
	}
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
