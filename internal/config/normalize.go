package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAseprite()
	c.normalizePack()
	if c.Watch.DebounceMillis == 0 {
		c.Watch.DebounceMillis = defaultDebounceMillis
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAseprite() {
	if value, ok := os.LookupEnv("SHEETPACK_ASEPRITE"); ok && strings.TrimSpace(value) != "" {
		c.Aseprite.Binary = value
	}
	c.Aseprite.Binary = strings.TrimSpace(c.Aseprite.Binary)
	if c.Aseprite.Binary == "" {
		if value, ok := os.LookupEnv("ASEPRITE_PATH"); ok {
			c.Aseprite.Binary = strings.TrimSpace(value)
		}
	}
	if c.Aseprite.Binary == "" {
		c.Aseprite.Binary = defaultAsepriteBinary
	}
	if strings.HasPrefix(c.Aseprite.Binary, "~") {
		if expanded, err := expandPath(c.Aseprite.Binary); err == nil {
			c.Aseprite.Binary = expanded
		}
	}
}

func (c *Config) normalizePack() {
	c.Pack.Extension = strings.TrimSpace(c.Pack.Extension)
	if c.Pack.Extension == "" {
		c.Pack.Extension = defaultExtension
	}
	if !strings.HasPrefix(c.Pack.Extension, ".") {
		c.Pack.Extension = "." + c.Pack.Extension
	}
	c.Pack.FilenameFormat = strings.TrimSpace(c.Pack.FilenameFormat)
	if c.Pack.FilenameFormat == "" {
		c.Pack.FilenameFormat = defaultFilenameFormat
	}
	if c.Pack.BorderPadding == 0 {
		c.Pack.BorderPadding = defaultPaddingPixels
	}
	if c.Pack.ShapePadding == 0 {
		c.Pack.ShapePadding = defaultPaddingPixels
	}
	patterns := make([]string, 0, len(c.Pack.Ignore))
	seen := make(map[string]struct{}, len(c.Pack.Ignore))
	for _, pattern := range c.Pack.Ignore {
		normalized := strings.TrimSpace(pattern)
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		patterns = append(patterns, normalized)
	}
	c.Pack.Ignore = patterns
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
