package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadFrom(home, filepath.Join(home, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "Library", "Messages", "chat.db"), cfg.DBPath)
	assert.Equal(t, "messages", cfg.ArchiveDir)
	assert.Equal(t, DefaultTimestampFormat, cfg.TimestampFormat)
	assert.Equal(t, DefaultDayFormat, cfg.DayFormat)
	assert.True(t, cfg.Attachments)
	assert.True(t, cfg.Git)
	assert.True(t, cfg.Push)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.toml")
	content := `
db_path = "~/backup/chat.db"
archive_dir = "~/archive"
day_format = "%d.%m.%Y"
timezone = "UTC"
attachments = false
git = false
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := LoadFrom(home, cfgPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "backup", "chat.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, "archive"), cfg.ArchiveDir)
	assert.Equal(t, "%d.%m.%Y", cfg.DayFormat)
	assert.Equal(t, DefaultTimestampFormat, cfg.TimestampFormat)
	assert.False(t, cfg.Attachments)
	assert.False(t, cfg.Git)
	assert.True(t, cfg.Push)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadFromInvalidFile(t *testing.T) {
	home := t.TempDir()
	cfgPath := filepath.Join(home, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("db_path = [unterminated"), 0o644))

	_, err := LoadFrom(home, cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoadFromEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MSGA_DB_PATH", "~/env.db")
	t.Setenv("MSGA_GIT", "false")
	t.Setenv("MSGA_TIMEZONE", "Europe/Berlin")

	cfg, err := LoadFrom(home, filepath.Join(home, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "env.db"), cfg.DBPath)
	assert.False(t, cfg.Git)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
}

func TestLoadFromEnvBadBool(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MSGA_PUSH", "sometimes")

	_, err := LoadFrom(home, filepath.Join(home, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MSGA_PUSH")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"empty db", func(c *Config) { c.DBPath = "" }, "db path"},
		{"empty dir", func(c *Config) { c.ArchiveDir = "" }, "archive directory"},
		{"empty fmt", func(c *Config) { c.TimestampFormat = "" }, "timestamp format"},
		{"empty day fmt", func(c *Config) { c.DayFormat = "" }, "day format"},
		{"day fmt with slash", func(c *Config) { c.DayFormat = "%m/%d/%Y" }, "path separator"},
		{"day fmt rendering slash", func(c *Config) { c.DayFormat = "%D" }, "not a file name"},
		{"day fmt per month", func(c *Config) { c.DayFormat = "%Y-%m" }, "same name"},
		{"day fmt without year", func(c *Config) { c.DayFormat = "%m-%d" }, "same name"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/home/test")
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateDayFormats(t *testing.T) {
	for _, format := range []string{DefaultDayFormat, "%d.%m.%Y", "%Y%m%d", "%Y-%j", "%A %d %B %Y"} {
		cfg := Default("/home/test")
		cfg.DayFormat = format
		assert.NoError(t, cfg.Validate(), format)
	}
}

func TestLoadFromMalformedDotEnv(t *testing.T) {
	home := t.TempDir()
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("MSGA_TIMEZONE=\"UTC\nMSGA_GIT=false\n"), 0o644))

	_, err := LoadFrom(home, filepath.Join(home, "missing.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load .env")
}

func TestLoadFromDotEnv(t *testing.T) {
	home := t.TempDir()
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("MSGA_DAY_FORMAT=%d.%m.%Y\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MSGA_DAY_FORMAT") })

	cfg, err := LoadFrom(home, filepath.Join(home, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "%d.%m.%Y", cfg.DayFormat)
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/home/u/x", expandHome("~/x", "/home/u"))
	assert.Equal(t, "/abs/x", expandHome("/abs/x", "/home/u"))
	assert.Equal(t, "~", expandHome("~", "/home/u"))
	assert.Equal(t, "rel", expandHome("rel", "/home/u"))
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
