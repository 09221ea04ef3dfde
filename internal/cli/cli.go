package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kle/pkg/buildinfo"
	"github.com/matzehuels/kle/pkg/cache"
	kleio "github.com/matzehuels/kle/pkg/io"
	"github.com/matzehuels/kle/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kle"

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

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level. At debug level codec, cache and
// HTTP events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		installLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "kle converts keyboard-layout-editor layouts",
		Long: `kle reads and writes keyboard layouts in the compact row notation used by
keyboard-layout-editor.com. It normalizes layouts to their canonical form,
converts between JSON, YAML and CBOR, fetches layouts from GitHub gists and
serves the codec over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kle/config.toml)")

	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the configured cache: Redis when a URL is set, otherwise a
// file cache under cacheDir. Failing to open the file cache degrades to no
// caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if url := c.config.Cache.RedisURL; url != "" {
		return cache.NewRedisCache(ctx, url)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, defaulting to the XDG
// standard (~/.cache/kle/).
func (c *CLI) cacheDir() (string, error) {
	if c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return defaultCacheDir()
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output Options
// =============================================================================

// outputFlags are the flags shared by commands that write layouts.
type outputFlags struct {
	output  string
	format  string
	indent  int
	compact bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: json, yaml, cbor (default from file name or config)")
	cmd.Flags().IntVar(&f.indent, "indent", -1, "JSON indent width (default from config)")
	cmd.Flags().BoolVar(&f.compact, "compact", false, "write JSON with one row per line")
}

// options resolves the write options. For files the format comes from the
// flag or the file name; for stdout from the flag or the config.
func (f *outputFlags) options(cfg Config) (kleio.Options, error) {
	opts := kleio.Options{Compact: f.compact}

	name := f.format
	if name == "" && f.output == "" {
		name = cfg.Format
	}
	if name != "" {
		format, err := kleio.ParseFormat(name)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}

	indent := cfg.Indent
	if f.indent >= 0 {
		indent = f.indent
	}
	opts.Indent = strings.Repeat(" ", indent)
	return opts, nil
}

// installLogHooks routes observability events to the logger at debug level.
func installLogHooks(l *log.Logger) {
	h := &logHooks{logger: l}
	observability.SetCodecHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}
