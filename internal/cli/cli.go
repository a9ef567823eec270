package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/octavate/labelgraph/internal/config"
	"github.com/octavate/labelgraph/pkg/buildinfo"
	"github.com/octavate/labelgraph/pkg/cache"
	"github.com/octavate/labelgraph/pkg/httputil"
	"github.com/octavate/labelgraph/pkg/observability"
	"github.com/octavate/labelgraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "labelgraph"

	// DefaultGraphName is the graph file written next to the input.
	DefaultGraphName = "Simplified_OctavateGraph.json"

	// DefaultLogName is the malformed-entry log written next to the input.
	DefaultLogName = "malformed_entries.log"
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

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level, pipeline, cache
// and publish events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := &logHooks{logger: c.Logger}
		observability.SetPipelineHooks(h)
		observability.SetCacheHooks(h)
		observability.SetPublishHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Labelgraph converts record-label catalogs into node-link graphs",
		Long:         `Labelgraph flattens a nested label/sublabel/artist/track JSON catalog into a node-link graph for 3D viewers, logging every entry it has to skip.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./labelgraph.toml or $XDG_CONFIG_HOME/labelgraph/config.toml)")

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.Config.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return cache.NewRedisCache(connectCtx, c.Config.Cache.RedisURL)
	}

	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// convertOptions returns pipeline options from config and flags.
func (c *CLI) convertOptions(refresh bool) pipeline.Options {
	return pipeline.Options{Refresh: refresh, TTL: c.Config.Cache.TTL}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/labelgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// inputPath returns the input file from args, falling back to the config.
func (c *CLI) inputPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if c.Config.Input != "" {
		return c.Config.Input, nil
	}
	return "", errNoInput
}

// outputPaths resolves graph and log destinations. Flags win over config;
// otherwise both files go next to the input, or in the working directory for
// URL inputs.
func (c *CLI) outputPaths(input, graphFlag, logFlag string) (graphPath, logPath string) {
	dir := filepath.Dir(input)
	if httputil.IsURL(input) {
		dir = "."
	}
	graphPath = firstNonEmpty(graphFlag, c.Config.Output, filepath.Join(dir, DefaultGraphName))
	logPath = firstNonEmpty(logFlag, c.Config.Log, filepath.Join(dir, DefaultLogName))
	return graphPath, logPath
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
