package cli

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kle/internal/server"
	"github.com/matzehuels/kle/pkg/errors"
	kleio "github.com/matzehuels/kle/pkg/io"
)

// Environment variables that override the config file.
const (
	envGitHubToken = "KLE_GITHUB_TOKEN"
	envRedisURL    = "KLE_REDIS_URL"
	envCacheDir    = "KLE_CACHE_DIR"
)

const defaultCacheTTL = 24 * time.Hour

// Config is the CLI configuration, read from config.toml:
//
//	format = "json"
//	indent = 2
//
//	[cache]
//	ttl = "24h"
//	dir = "/var/cache/kle"
//	redis_url = "redis://localhost:6379/0"
//
//	[github]
//	token = "ghp_..."
//	api_url = "https://github.example.com/api/v3"
//
//	[server]
//	addr = ":8080"
//	cache_prefix = "kle:staging:"
type Config struct {
	Format string       `toml:"format"`
	Indent int          `toml:"indent"`
	Cache  CacheConfig  `toml:"cache"`
	GitHub GitHubConfig `toml:"github"`
	Server ServerConfig `toml:"server"`
}

type CacheConfig struct {
	TTL      time.Duration `toml:"ttl"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
}

type GitHubConfig struct {
	Token  string `toml:"token"`
	APIURL string `toml:"api_url"` // GitHub Enterprise API root
}

type ServerConfig struct {
	Addr        string `toml:"addr"`
	CachePrefix string `toml:"cache_prefix"` // shared Redis namespace
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Format: string(kleio.FormatJSON),
		Indent: 2,
		Cache:  CacheConfig{TTL: defaultCacheTTL},
		Server: ServerConfig{Addr: server.DefaultAddr},
	}
}

// loadConfig layers defaults, the config file and the environment. An empty
// path reads the default location, which may be missing; an explicit path
// must exist.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		// Without a home directory there is no default file, but the
		// environment still applies.
		if p, err := configPath(); err == nil {
			path = p
		}
	}

	if path != "" {
		if err := decodeConfigFile(path, explicit, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv(envGitHubToken); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv(envRedisURL); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv(envCacheDir); v != "" {
		cfg.Cache.Dir = v
	}

	if _, err := kleio.ParseFormat(cfg.Format); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	if cfg.Indent < 0 || cfg.Indent > 8 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: indent must be between 0 and 8", path)
	}
	return cfg, nil
}

// decodeConfigFile layers the file at path over cfg. A missing file is an
// error only when it was named explicitly.
func decodeConfigFile(path string, explicit bool, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return errors.New(errors.ErrCodeInvalidInput, "%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	case os.IsNotExist(err) && !explicit:
	case os.IsNotExist(err):
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	default:
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return nil
}

// configPath returns the config file location using XDG standard
// (~/.config/kle/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
