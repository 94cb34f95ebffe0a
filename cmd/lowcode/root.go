package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/lowcode/internal/config"
	"github.com/Mr-Dark-debug/lowcode/internal/database"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg config.Config
	log *logrus.Logger
}

// NewRootCmd builds the lowcode command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "lowcode",
		Short:         "Manage pages built with the lowcode editor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.lowcode/config.yaml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to SQLite database (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides config)")

	root.AddCommand(
		newProjectsCmd(a),
		newTemplatesCmd(a),
		newInspectCmd(a),
		newCatalogCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) init(logOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	logger, err := config.NewLogger(cfg.LogLevel, logOut)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger
	return nil
}

// openStore opens the configured database, creating its directory.
func (a *app) openStore() (*database.DBService, error) {
	if dir := filepath.Dir(a.cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	store, err := database.NewDBService(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.log.WithField("path", a.cfg.DBPath).Debug("database opened")
	return store, nil
}

func outputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
