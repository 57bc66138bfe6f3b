package main

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sheetpack/internal/config"
	"sheetpack/internal/logging"
	"sheetpack/internal/pack"
	"sheetpack/internal/services/aseprite"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(c.flagValue(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, c.flagValue(c.logLevelFlag))
	})
	return c.logger, c.loggerErr
}

// newPacker wires config, logger, and an aseprite client whose output lines
// are copied to the command's stderr.
func (c *commandContext) newPacker(cmd *cobra.Command, progress io.Writer) (*pack.Packer, *config.Config, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	stderr := cmd.ErrOrStderr()
	client, err := aseprite.New(cfg.AsepriteBinary(), cfg.Aseprite.TimeoutSeconds,
		aseprite.WithOutput(func(line string) {
			io.WriteString(stderr, "aseprite: "+line+"\n")
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	packer, err := pack.New(cfg, client, pack.WithLogger(logger), pack.WithProgress(progress))
	if err != nil {
		return nil, nil, err
	}
	return packer, cfg, nil
}

func (c *commandContext) flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
