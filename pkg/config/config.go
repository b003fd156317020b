// Package config loads teamtree settings from a TOML file and the environment.
//
// Precedence, lowest first: built-in defaults, the config file
// ($XDG_CONFIG_HOME/teamtree/config.toml unless --config is given),
// TEAMTREE_* environment variables, then command-line flags (applied by the
// CLI). A missing default file is not an error; a missing explicit file is.
//
// Example file:
//
//	[backend]
//	base_url = "https://mlm.example.com/api"
//
//	[tree]
//	kind  = "user"
//	depth = 3
//	style = "handdrawn"
//
//	[poll]
//	interval = "10s"
//
//	[cache]
//	backend    = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/teamtree/pkg/cache"
	"github.com/matzehuels/teamtree/pkg/client"
	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/layout"
	"github.com/matzehuels/teamtree/pkg/session"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// Environment variables read by [Config.ApplyEnv].
const (
	EnvBaseURL   = "TEAMTREE_BASE_URL"
	EnvToken     = "TEAMTREE_TOKEN"
	EnvRedisAddr = "TEAMTREE_REDIS_ADDR"
	EnvMongoURI  = "TEAMTREE_MONGO_URI"
)

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the complete configuration.
type Config struct {
	Backend Backend      `toml:"backend"`
	Tree    Tree         `toml:"tree"`
	Poll    Poll         `toml:"poll"`
	Cache   cache.Config `toml:"cache"`
	Session Session      `toml:"session"`
	Server  Server       `toml:"server"`

	// Token comes from TEAMTREE_TOKEN only and is never written out.
	Token string `toml:"-"`
}

// Backend configures the remote API.
type Backend struct {
	BaseURL string       `toml:"base_url"`
	Paths   client.Paths `toml:"paths"`
	Timeout Duration     `toml:"timeout"`
}

// Tree configures what is fetched and how it is drawn.
type Tree struct {
	Kind       string  `toml:"kind"`
	Depth      int     `toml:"depth"`
	CardWidth  float64 `toml:"card_width"`
	CardHeight float64 `toml:"card_height"`
	Style      string  `toml:"style"`
}

// Poll configures background refreshes.
type Poll struct {
	Interval Duration `toml:"interval"`
}

// Session selects where credentials are stored.
type Session struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	TTL       Duration `toml:"ttl"`
}

// Server configures the preview server.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: Backend{
			Paths:   client.DefaultPaths,
			Timeout: Duration(15 * time.Second),
		},
		Tree: Tree{
			Kind:       string(tree.KindUser),
			Depth:      layout.DefaultDepth,
			CardWidth:  layout.DefaultCardWidth,
			CardHeight: layout.DefaultCardHeight,
			Style:      "simple",
		},
		Poll:    Poll{Interval: Duration(10 * time.Second)},
		Cache:   cache.Config{Backend: cache.BackendFile},
		Session: Session{Backend: "file", TTL: Duration(session.DefaultTTL)},
		Server:  Server{Addr: "127.0.0.1:8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/teamtree/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "teamtree", "config.toml"), nil
}

// Load reads the config file at path on top of the defaults and applies the
// environment. An empty path loads [DefaultPath] if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
	case os.IsNotExist(err):
		return cfg, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from TEAMTREE_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvBaseURL); v != "" {
		c.Backend.BaseURL = v
	}
	if v := getenv(EnvToken); v != "" {
		c.Token = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
		c.Session.RedisAddr = v
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Cache.MongoURI = v
	}
}

// Validate checks the configuration. The base URL is only checked when set:
// commands that need it call [Config.RequireBackend].
func (c Config) Validate() error {
	if c.Backend.BaseURL != "" {
		if err := errors.ValidateBaseURL(c.Backend.BaseURL); err != nil {
			return err
		}
	}
	if err := c.Backend.Paths.Validate(); err != nil {
		return err
	}
	if _, err := tree.ParseKind(c.Tree.Kind); err != nil {
		return err
	}
	if err := c.LayoutOptions().WithDefaults().Validate(); err != nil {
		return err
	}
	if c.Poll.Interval < Duration(time.Second) {
		return errors.New(errors.ErrCodeInvalidConfig, "poll interval must be at least 1s, got %s", time.Duration(c.Poll.Interval))
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	switch c.Session.Backend {
	case "", "file":
	case "redis":
		if c.Session.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "session backend redis needs redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown session backend %q (want file or redis)", c.Session.Backend)
	}
	return nil
}

// RequireBackend reports a structured error when no base URL is configured.
func (c Config) RequireBackend() error {
	if c.Backend.BaseURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "no backend configured: set backend.base_url or %s", EnvBaseURL)
	}
	return errors.ValidateBaseURL(c.Backend.BaseURL)
}

// Kind returns the parsed tree kind.
func (c Config) Kind() tree.Kind {
	k, err := tree.ParseKind(c.Tree.Kind)
	if err != nil {
		return tree.KindUser
	}
	return k
}

// LayoutOptions returns the layout options described by the tree section.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		Depth:      c.Tree.Depth,
		CardWidth:  c.Tree.CardWidth,
		CardHeight: c.Tree.CardHeight,
	}
}

// Write encodes the configuration as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
