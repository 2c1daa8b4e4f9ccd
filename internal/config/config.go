// Package config loads the caldora-share TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/cyp0633/caldora-share/internal/logging"
	"github.com/cyp0633/caldora-share/sharing"
)

// FileName is the config file looked up in the working directory and in
// $HOME/.config/caldora-share/.
const FileName = "caldora-share.toml"

// DefaultBusyTimeout is how long the database waits on a lock by default.
const DefaultBusyTimeout = 5 * time.Second

type Config struct {
	Database string `toml:"database"`
	// BusyTimeout is a duration string such as "5s".
	BusyTimeout     time.Duration `toml:"busy_timeout"`
	CalendarRoot    string        `toml:"calendar_root"`
	PrincipalPrefix string        `toml:"principal_prefix"`
	Log             LogConfig     `toml:"log"`
	Metrics         MetricsConfig `toml:"metrics"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type MetricsConfig struct {
	// Textfile receives the Prometheus text exposition after each command.
	Textfile string `toml:"textfile"`
}

// Defaults returns the configuration used when no file is found.
func Defaults() *Config {
	return &Config{
		Database:        "caldora-share.db",
		BusyTimeout:     DefaultBusyTimeout,
		CalendarRoot:    sharing.DefaultCalendarRoot,
		PrincipalPrefix: sharing.DefaultPrincipalPrefix,
		Log:             LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads explicit when given. Otherwise it tries ./caldora-share.toml and
// then $HOME/.config/caldora-share/caldora-share.toml, falling back to
// Defaults when neither exists. Keys missing from the file keep their
// default values.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		return readConfig(explicit)
	}
	for _, candidate := range searchPath() {
		cfg, err := readConfig(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return Defaults(), nil
}

func searchPath() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "caldora-share", FileName))
	}
	return paths
}

func readConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	cfg.Path = filename
	return cfg, cfg.Validate()
}

// Validate rejects unusable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("database path is empty")
	}
	if c.BusyTimeout <= 0 {
		return fmt.Errorf("busy_timeout must be positive, got %s", c.BusyTimeout)
	}
	if strings.Trim(c.PrincipalPrefix, "/") == "" {
		return errors.New("principal_prefix is empty")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
