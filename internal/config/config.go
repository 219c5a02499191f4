package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/ncruces/go-strftime"
)

const (
	DefaultTimestampFormat = "%Y-%m-%d %H:%M:%S"
	DefaultDayFormat       = "%Y-%m-%d"
)

type Config struct {
	DBPath          string `toml:"db_path"`
	ArchiveDir      string `toml:"archive_dir"`
	TimestampFormat string `toml:"timestamp_format"`
	DayFormat       string `toml:"day_format"`
	Timezone        string `toml:"timezone"`
	Attachments     bool   `toml:"attachments"`
	Git             bool   `toml:"git"`
	Push            bool   `toml:"push"`
	LogLevel        string `toml:"log_level"`
}

// Default returns the built-in configuration for the given home directory.
// The archive directory is relative to the working directory.
func Default(home string) *Config {
	return &Config{
		DBPath:          filepath.Join(home, "Library", "Messages", "chat.db"),
		ArchiveDir:      "messages",
		TimestampFormat: DefaultTimestampFormat,
		DayFormat:       DefaultDayFormat,
		Timezone:        "Local",
		Attachments:     true,
		Git:             true,
		Push:            true,
		LogLevel:        "info",
	}
}

// Path returns the location of the optional config file.
func Path(home string) string {
	return filepath.Join(home, ".config", "msga", "config.toml")
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(home, Path(home))
}

// LoadFrom layers the config file at cfgPath (if present) and the MSGA_*
// environment over the defaults.
func LoadFrom(home, cfgPath string) (*Config, error) {
	cfg := Default(home)

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// a missing .env is the normal case
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// expand ~ in paths
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.ArchiveDir = expandHome(cfg.ArchiveDir, home)

	return cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"MSGA_DB_PATH":          &c.DBPath,
		"MSGA_ARCHIVE_DIR":      &c.ArchiveDir,
		"MSGA_TIMESTAMP_FORMAT": &c.TimestampFormat,
		"MSGA_DAY_FORMAT":       &c.DayFormat,
		"MSGA_TIMEZONE":         &c.Timezone,
		"MSGA_LOG_LEVEL":        &c.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"MSGA_ATTACHMENTS": &c.Attachments,
		"MSGA_GIT":         &c.Git,
		"MSGA_PUSH":        &c.Push,
	}
	for name, dst := range bools {
		v, ok := os.LookupEnv(name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("env %s: %w", name, err)
		}
		*dst = b
	}
	return nil
}

// Location resolves Timezone. "Local" and "" map to time.Local.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db path must not be empty")
	}
	if c.ArchiveDir == "" {
		return errors.New("archive directory must not be empty")
	}
	if c.TimestampFormat == "" {
		return errors.New("timestamp format must not be empty")
	}
	if c.DayFormat == "" {
		return errors.New("day format must not be empty")
	}
	if err := checkDayFormat(c.DayFormat); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	_, err := c.Location()
	return err
}

// checkDayFormat rejects day formats that would place a day file outside its
// chat directory or give two days of a two-year span the same file name.
func checkDayFormat(format string) error {
	if strings.ContainsAny(format, `/\`) {
		return fmt.Errorf("day format %q contains a path separator", format)
	}
	seen := make(map[string]time.Time)
	day := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day.Year() < 2025 {
		name := strftime.Format(format, day)
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return fmt.Errorf("day format %q renders %q, which is not a file name", format, name)
		}
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("day format %q renders %s and %s as the same name %q",
				format, prev.Format(time.DateOnly), day.Format(time.DateOnly), name)
		}
		seen[name] = day
		day = day.AddDate(0, 0, 1)
	}
	return nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
