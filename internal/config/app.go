package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kartikeyap/superblock/internal/applog"
	"github.com/kartikeyap/superblock/internal/disk"
	"github.com/kartikeyap/superblock/internal/util"
)

const Name = "superblock"
const Version = "0.1.0"

const (
	ZoneLocal = "local"
	ZoneUTC   = "UTC"
)

// Config holds the settings that may be given in a configuration file. Flags
// on the command line take precedence.
type Config struct {
	TimeZone  string `json:"timezone"`
	LogLevel  string `json:"logLevel"`
	DumpLines int    `json:"dumpLines"`
}

func Default() *Config {
	c := &Config{}
	c.SetDefaults()

	return c
}

func (c *Config) SetDefaults() {
	if c.TimeZone == "" {
		c.TimeZone = ZoneLocal
	}

	if c.LogLevel == "" {
		c.LogLevel = applog.LogLevelWarn.String()
	}

	if c.DumpLines == 0 {
		c.DumpLines = disk.DumpLines
	}
}

func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	if c.DumpLines < 1 || c.DumpLines > disk.DumpLinesAll {
		return fmt.Errorf("dumpLines must be between 1 and %d, got %d", disk.DumpLinesAll, c.DumpLines)
	}

	return nil
}

// Location resolves TimeZone. "local" is the process time zone.
func (c *Config) Location() (*time.Location, error) {
	switch {
	case c.TimeZone == "" || strings.EqualFold(c.TimeZone, ZoneLocal):
		return time.Local, nil
	case strings.EqualFold(c.TimeZone, ZoneUTC):
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.TimeZone, err)
	}

	return loc, nil
}

func (c *Config) Level() (applog.LogLevel, error) {
	return applog.ParseLevel(c.LogLevel)
}

// Load reads a JSONC configuration file and applies defaults.
func Load(path string) (*Config, error) {
	var c Config

	if err := util.ReadJsonConfig(path, &c, newFieldValidator(c).Validate); err != nil {
		return nil, err
	}

	c.SetDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	return &c, nil
}
