// Package config loads lowcode settings from ~/.lowcode/config.yaml and
// LOWCODE_* environment variables, and builds the process logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds settings shared by every lowcode binary.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string `mapstructure:"db_path"`

	// ListenAddr is the HTTP address of lowcode-server.
	ListenAddr string `mapstructure:"listen_addr"`

	// LogLevel is a logrus level name.
	LogLevel string `mapstructure:"log_level"`

	// ShutdownTimeout bounds graceful shutdown of the server.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Dir returns the lowcode state directory, ~/.lowcode.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".lowcode")
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		DBPath:          filepath.Join(Dir(), "lowcode.db"),
		ListenAddr:      "127.0.0.1:3001",
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load reads configuration. An explicit path must exist; without one the
// default file is optional. Environment variables override file values.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("db_path", def.DBPath)
	v.SetDefault("listen_addr", def.ListenAddr)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("shutdown_timeout", def.ShutdownTimeout)

	v.SetEnvPrefix("LOWCODE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// NewLogger returns a text logger writing to out at the given level.
func NewLogger(level string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger, nil
}
