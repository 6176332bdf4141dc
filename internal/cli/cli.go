// Package cli implements the kintree command-line interface.
//
// This package provides commands for rendering family tree snapshots to PNG,
// SVG, DOT and scene JSON, exploring them in an interactive terminal viewer,
// serving them over HTTP and managing the local cache. The CLI is built using
// cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - render: Generate PNG, SVG, DOT or scene JSON output
//   - layout: Export the laid-out scene as JSON
//   - dot: Generate a graphviz node-link diagram
//   - view: Explore a tree interactively in the terminal
//   - serve: Run the HTTP render service
//   - cache: Manage the local cache
//
// Every command that reads a tree accepts either a snapshot file argument or
// --tree/--focal flags resolved through the configured source.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/imagery"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/source"
	"github.com/matzehuels/kintree/pkg/source/httpapi"
	mongosrc "github.com/matzehuels/kintree/pkg/source/mongo"
	neo4jsrc "github.com/matzehuels/kintree/pkg/source/neo4j"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// redisPrefix scopes kintree's keys in a shared Redis.
	redisPrefix = "kintree:"

	// connectTimeout bounds connecting to caches and sources.
	connectTimeout = 10 * time.Second
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
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
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
		Use:          appName,
		Short:        "Kintree lays out, renders and explores family trees",
		Long:         `Kintree turns a snapshot of a family tree around one person into a non-overlapping node-link diagram, renders it to PNG, SVG or JSON, and lets you explore it interactively.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/kintree/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Target - which tree a command reads
// =============================================================================

// target names the snapshot a command works on: a file argument or a tree
// in the configured source.
type target struct {
	tree    string
	focal   string
	refresh bool
}

func (t *target) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.tree, "tree", "", "tree id in the configured source")
	cmd.Flags().StringVar(&t.focal, "focal", "", "person to center on (default: the source's choice)")
	cmd.Flags().BoolVar(&t.refresh, "refresh", false, "bypass cached snapshots")
}

// resolve fills the load options from args and flags.
func (t *target) resolve(args []string, opts *pipeline.Options) error {
	switch {
	case len(args) == 1 && t.tree != "":
		return fmt.Errorf("pass either a snapshot file or --tree, not both")
	case len(args) == 1:
		// File snapshots are always re-read; artifacts stay cached by
		// content hash.
		opts.Source = config.SourceFile
		opts.TreeID = args[0]
		t.refresh = true
	case t.tree != "":
		opts.TreeID = t.tree
	default:
		return fmt.Errorf("a snapshot file or --tree is required")
	}
	opts.FocalID = t.focal
	opts.Refresh = t.refresh
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. File arguments are read
// directly; everything else goes through the configured source.
func (c *CLI) newRunner(ctx context.Context, opts *pipeline.Options, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	var src source.Source
	if opts.Source == config.SourceFile {
		src = source.NewFile("")
	} else {
		src, err = c.openSource(ctx, ch)
		if err != nil {
			ch.Close()
			return nil, err
		}
		if opts.Source == "" {
			opts.Source = c.sourceName()
		}
	}

	keyer := c.keyer()
	runner := pipeline.NewRunner(src, ch, keyer, c.Logger)
	runner.Images = imagery.NewLoader(ch, keyer, imagery.WithLogger(c.Logger))
	return runner, nil
}

// keyer scopes cache keys to the configured namespace.
func (c *CLI) keyer() cache.Keyer {
	if ns := c.Config.Cache.Namespace; ns != "" {
		return cache.NewScopedKeyer(nil, ns+":")
	}
	return cache.NewDefaultKeyer()
}

// sourceName identifies the configured source in cache keys.
func (c *CLI) sourceName() string {
	s := c.Config.Source
	switch s.Kind {
	case config.SourceHTTP:
		return s.Kind + ":" + s.BaseURL
	case config.SourceNeo4j:
		return s.Kind + ":" + s.Neo4jURI + "/" + s.Neo4jDatabase
	case config.SourceMongo:
		return s.Kind + ":" + s.MongoURI + "/" + s.MongoDatabase + "/" + s.MongoCollection
	}
	return s.Kind + ":" + s.Path
}

// openSource connects the configured snapshot source.
func (c *CLI) openSource(ctx context.Context, ch cache.Cache) (source.Source, error) {
	s := c.Config.Source
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch s.Kind {
	case config.SourceFile:
		return source.NewFile(s.Path), nil
	case config.SourceHTTP:
		ttl := c.Config.Cache.TTL
		if ttl == 0 {
			ttl = httpapi.DefaultTTL
		}
		return httpapi.NewClient(ch, s.BaseURL, s.Token, ttl), nil
	case config.SourceNeo4j:
		exec, err := neo4jsrc.NewExecutor(ctx, s.Neo4jURI, s.Neo4jUser, s.Neo4jPassword, s.Neo4jDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect neo4j: %w", err)
		}
		return neo4jsrc.New(exec), nil
	case config.SourceMongo:
		store, err := mongosrc.Connect(ctx, s.MongoURI, s.MongoDatabase, s.MongoCollection)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown source kind: %s", s.Kind)
}

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.CacheRedis {
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, redisPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return rc, nil
	}
	if cfg.Dir == "" {
		c.Logger.Warn("no cache directory, caching disabled")
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.Dir)
}

// =============================================================================
// Options Helpers
// =============================================================================

// renderDefaults returns pipeline options seeded from the [render] section.
func (c *CLI) renderDefaults() pipeline.Options {
	r := c.Config.Render
	return pipeline.Options{
		Width:  r.Width,
		Height: r.Height,
		DPR:    r.DPR,
		Theme:  r.Theme,
	}
}

// renderFlags holds render flags; zero values defer to the configuration.
type renderFlags struct {
	width, height, dpr float64
	theme              string
	detailed           bool
	portraits          bool
}

func (f *renderFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "viewport width (default: fit the tree)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "viewport height (default: fit the tree)")
	cmd.Flags().Float64Var(&f.dpr, "dpr", 0, "device pixel ratio (default 1)")
	cmd.Flags().StringVar(&f.theme, "theme", "", "color theme: light (default), dark")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "show kinship and years in node-link labels")
	cmd.Flags().BoolVar(&f.portraits, "portraits", false, "download and draw portraits")
}

// apply overlays the flags that were set onto opts.
func (f *renderFlags) apply(opts *pipeline.Options) {
	if f.width != 0 || f.height != 0 {
		opts.Width, opts.Height = f.width, f.height
	}
	if f.dpr != 0 {
		opts.DPR = f.dpr
	}
	if f.theme != "" {
		opts.Theme = f.theme
	}
	opts.Detailed = f.detailed
	opts.Portraits = f.portraits
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatPNG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
