package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached snapshots, renders and portraits",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case config.CacheNone:
				printInfo("Caching is disabled")
				return nil
			case config.CacheRedis:
				return c.clearRedis(cmd.Context())
			}
			return clearDir(c.Config.Cache.Dir)
		},
	}
}

func (c *CLI) clearRedis(ctx context.Context) error {
	ch, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer ch.Close()

	rc, ok := ch.(*cache.RedisCache)
	if !ok {
		return fmt.Errorf("cache backend is not redis")
	}
	n, err := rc.Clear(ctx)
	if err != nil {
		return fmt.Errorf("clear redis: %w", err)
	}
	printSuccess("Cleared %d cached entries", n)
	printDetail("Redis: %s (prefix %s)", c.Config.Cache.RedisAddr, redisPrefix)
	return nil
}

func clearDir(dir string) error {
	if dir == "" {
		printWarning("No cache directory configured")
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}
	ch, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	n, err := ch.(*cache.FileCache).Clear()
	if err != nil {
		return fmt.Errorf("clear %s: %w", dir, err)
	}
	printSuccess("Cleared %d cached entries", n)
	printDetail("Directory: %s", dir)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Cache
			switch cfg.Backend {
			case config.CacheRedis:
				fmt.Fprintln(cmd.OutOrStdout(), "redis://"+cfg.RedisAddr+"/"+redisPrefix)
			case config.CacheNone:
				printInfo("Caching is disabled")
			default:
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Dir)
			}
			return nil
		},
	}
}
