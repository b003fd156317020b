package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/teamtree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached trees, layouts and renders",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := cache.Open(ctx, c.cfg.Cache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo("Cache backend %q keeps nothing to clear", cacheBackend(c.cfg.Cache))
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared cache")
			printDetail("Location: %s", cacheLocation(c.cfg.Cache))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(c.cfg.Cache))
			return nil
		},
	}
}

func cacheBackend(cfg cache.Config) string {
	if cfg.Backend == "" {
		return cache.BackendFile
	}
	return cfg.Backend
}

// cacheLocation describes the cache for display: a directory for the file
// backend, a URL for the others.
func cacheLocation(cfg cache.Config) string {
	switch cacheBackend(cfg) {
	case cache.BackendRedis:
		return fmt.Sprintf("redis://%s/%d", cfg.RedisAddr, cfg.RedisDB)
	case cache.BackendMongo:
		return cfg.MongoURI
	case cache.BackendNone:
		return "(disabled)"
	}
	if cfg.Dir != "" {
		return cfg.Dir
	}
	dir, err := cache.DefaultDir()
	if err != nil {
		return "(unknown)"
	}
	return dir
}
