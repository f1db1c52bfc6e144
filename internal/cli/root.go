package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polaroid/pkg/config"
	"github.com/matzehuels/polaroid/pkg/observability"
)

// setup runs before every subcommand. It loads a .env file from the working
// directory if present, applies the --verbose level, and merges the config
// file and environment into c.Config.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, plus pipeline and cache events
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	level := LogInfo
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg

	if c.verbose {
		h := newLogHooks(c.Logger)
		observability.SetPipelineHooks(h)
		observability.SetCacheHooks(h)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
