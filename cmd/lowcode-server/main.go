// lowcode-server: the REST persistence service for saved pages.
//
// Usage:
//
//	lowcode-server [flags]
//
// Flags:
//
//	--config     Config file (default: ~/.lowcode/config.yaml)
//	--listen     HTTP address to listen on (default: 127.0.0.1:3001)
//	--db         Path to SQLite database file (default: ~/.lowcode/lowcode.db)
//	--log-level  logrus level (default: info)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Mr-Dark-debug/lowcode/internal/config"
	"github.com/Mr-Dark-debug/lowcode/internal/database"
	"github.com/Mr-Dark-debug/lowcode/internal/server"
)

func main() {
	if err := newServerCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newServerCmd() *cobra.Command {
	var configPath, listen, dbPath, logLevel string

	cmd := &cobra.Command{
		Use:           "lowcode-server",
		Short:         "Serve saved projects and templates over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			log, err := config.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			// Ensure the database directory exists
			dbDir := filepath.Dir(cfg.DBPath)
			if err := os.MkdirAll(dbDir, 0o755); err != nil {
				return fmt.Errorf("creating database directory %s: %w", dbDir, err)
			}

			store, err := database.NewDBService(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			defer store.Close()

			srvCfg := server.DefaultConfig()
			srvCfg.ListenAddr = cfg.ListenAddr
			srvCfg.ShutdownTimeout = cfg.ShutdownTimeout
			srv := server.New(srvCfg, store, log)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := srv.Start(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  LOWCODE SERVER")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  Listen:  http://%s\n", srv.Addr())
			fmt.Fprintf(out, "  DB:      %s\n", cfg.DBPath)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  Press Ctrl+C to stop.")
			fmt.Fprintln(out)

			<-ctx.Done()

			log.Info("shutting down")
			if err := srv.Stop(); err != nil {
				return fmt.Errorf("during shutdown: %w", err)
			}
			m := srv.Metrics()
			log.WithFields(logrus.Fields{
				"requests": m.Requests,
				"uptime_s": m.Uptime,
			}).Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default ~/.lowcode/config.yaml)")
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	return cmd
}
