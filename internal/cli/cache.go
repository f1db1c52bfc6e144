package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/polaroid/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the card and document cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached cards and documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer store.Close()

			count := -1
			if fc, ok := store.(*cache.FileCache); ok {
				if n, _, err := fc.Usage(); err == nil {
					count = n
				}
			}

			clearer, ok := store.(cache.Clearer)
			if _, null := store.(cache.NullCache); null || !ok {
				printInfo("Cache is disabled")
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			if count >= 0 {
				printSuccess("Cleared %d cached entries", count)
			} else {
				printSuccess("Cleared cache")
			}
			printDetail("%s", c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cacheLocation())
			return nil
		},
	}
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache backend and usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer store.Close()

			switch s := store.(type) {
			case *cache.FileCache:
				entries, size, err := s.Usage()
				if err != nil {
					return fmt.Errorf("read cache: %w", err)
				}
				printKeyValue("Backend", "file")
				printKeyValue("Directory", s.Dir())
				printKeyValue("Entries", fmt.Sprint(entries))
				printKeyValue("Size", formatBytes(size))
			case *cache.RedisCache:
				printKeyValue("Backend", "redis")
				printKeyValue("URL", c.Config.RedisURL)
			default:
				printKeyValue("Backend", "none")
			}
			return nil
		},
	}
}

// cacheLocation describes where the configured cache lives.
func (c *CLI) cacheLocation() string {
	if c.Config.RedisURL != "" {
		return c.Config.RedisURL
	}
	return c.Config.CacheDir
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
