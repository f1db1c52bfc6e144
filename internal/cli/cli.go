package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polaroid/pkg/buildinfo"
	"github.com/matzehuels/polaroid/pkg/cache"
	"github.com/matzehuels/polaroid/pkg/config"
	"github.com/matzehuels/polaroid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "polaroid"

	// cacheKeyVersion scopes cache keys. Bump it when card rendering
	// changes so stale cards are not reused.
	cacheKeyVersion = "v1:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Polaroid lays out instant-photo cards for printing",
		Long: `Polaroid turns a folder of photos into print-ready sheets of instant-photo
cards. Albums are plain TOML or YAML manifests: add photos, caption them,
adjust their framing and filters, then export A4 pages as PDF or PNG.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/polaroid/config.yaml)")

	// Album editing
	root.AddCommand(c.newCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.captionCommand())
	root.AddCommand(c.adjustCommand())
	root.AddCommand(c.filterCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.editCommand())

	// Layout and export
	root.AddCommand(c.presetsCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cacheKeyVersion)
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache selects the cache backend: Redis when configured, otherwise the
// file cache. A file cache that cannot be created disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.Config.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, c.Config.RedisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("using redis cache", "url", c.Config.RedisURL)
		return rc, nil
	}
	if c.Config.CacheDir == "" {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(c.Config.CacheDir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", c.Config.CacheDir, "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}
