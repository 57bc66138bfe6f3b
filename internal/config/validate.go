package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAseprite(); err != nil {
		return err
	}
	if err := c.validatePack(); err != nil {
		return err
	}
	if c.Watch.DebounceMillis < 0 {
		return errors.New("watch.debounce_ms must be >= 0")
	}
	return c.validateLogging()
}

func (c *Config) validateAseprite() error {
	if strings.TrimSpace(c.Aseprite.Binary) == "" {
		return errors.New("aseprite.binary must be set")
	}
	if c.Aseprite.TimeoutSeconds < 0 {
		return errors.New("aseprite.timeout_seconds must be >= 0 (0 disables the timeout)")
	}
	return nil
}

func (c *Config) validatePack() error {
	if c.Pack.Extension == "." {
		return errors.New("pack.extension must name a file suffix")
	}
	if strings.ContainsAny(c.Pack.Extension, `/\*?[`) {
		return fmt.Errorf("pack.extension %q must not contain path separators or glob characters", c.Pack.Extension)
	}
	if err := ensurePositiveMap(map[string]int{
		"pack.border_padding": c.Pack.BorderPadding,
		"pack.shape_padding":  c.Pack.ShapePadding,
	}); err != nil {
		return err
	}
	for _, pattern := range c.Pack.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("pack.ignore: invalid pattern %q", pattern)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
