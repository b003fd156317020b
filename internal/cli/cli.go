// Package cli implements the teamtree command-line interface.
package cli

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/teamtree/pkg/buildinfo"
	"github.com/matzehuels/teamtree/pkg/cache"
	"github.com/matzehuels/teamtree/pkg/client"
	"github.com/matzehuels/teamtree/pkg/config"
	"github.com/matzehuels/teamtree/pkg/pipeline"
	"github.com/matzehuels/teamtree/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "teamtree"

	// sessionPrefix namespaces credentials and captchas in a shared Redis.
	sessionPrefix = "teamtree:"
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

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
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
		Short:        "Teamtree shows a member's downline as a binary tree of cards",
		Long:         `Teamtree fetches a member's team tree from the back office and renders it as a fixed-depth grid of cards joined by connectors.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/teamtree/config.toml)")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment, then validates the result.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "backend", cfg.Backend.BaseURL, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. Cache entries are scoped to
// member so two logins on one machine never share a tree.
func (c *CLI) newRunner(ctx context.Context, noCache bool, member string) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if member != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), member)
	}
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := cache.Open(ctx, c.cfg.Cache)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", c.cfg.Cache.Backend, "error", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

// =============================================================================
// Backend Client
// =============================================================================

// credentialStore opens the store holding the CLI credential. The returned
// closer releases any connection the store holds.
func (c *CLI) credentialStore(ctx context.Context) (*session.CLIStore, func() error, error) {
	if c.cfg.Session.Backend == "redis" {
		rs, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:   c.cfg.Session.RedisAddr,
			Prefix: sessionPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return session.NewCLIStoreOn(rs, "redis://"+c.cfg.Session.RedisAddr), rs.Close, nil
	}
	store, err := session.NewCLIStoreAt(c.cfg.Session.Dir)
	if err != nil {
		return nil, nil, err
	}
	return store, func() error { return nil }, nil
}

// credential returns the token to use: TEAMTREE_TOKEN first, then the stored
// login. A missing login is not an error here; the client reports it on the
// first authenticated request.
func (c *CLI) credential(ctx context.Context) (*session.Credential, error) {
	if c.cfg.Token != "" {
		return session.FromToken(c.cfg.Token, c.cfg.Backend.BaseURL), nil
	}
	store, closeStore, err := c.credentialStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	cred, err := store.Credential(ctx)
	if err == session.ErrNotFound {
		return nil, nil
	}
	return cred, err
}

// newClient builds a backend client for the configured base URL, falling back
// to the URL the stored credential was issued for.
func (c *CLI) newClient(ctx context.Context) (*client.Client, *session.Credential, error) {
	cred, err := c.credential(ctx)
	if err != nil {
		return nil, nil, err
	}

	cfg := c.cfg
	if cfg.Backend.BaseURL == "" && cred != nil {
		cfg.Backend.BaseURL = cred.BaseURL
	}
	if err := cfg.RequireBackend(); err != nil {
		return nil, nil, err
	}

	cl, err := c.clientFor(cfg.Backend.BaseURL, cred)
	if err != nil {
		return nil, nil, err
	}
	return cl, cred, nil
}

func (c *CLI) clientFor(baseURL string, cred *session.Credential) (*client.Client, error) {
	opts := []client.Option{
		client.WithPaths(c.cfg.Backend.Paths),
		client.WithLogger(c.Logger),
		client.WithHTTPClient(&http.Client{Timeout: time.Duration(c.cfg.Backend.Timeout)}),
	}
	if cred != nil {
		opts = append(opts, client.WithCredential(cred))
	}
	return client.New(baseURL, opts...)
}

// member names the cache scope for cred.
func member(cred *session.Credential) string {
	if cred == nil {
		return ""
	}
	return cred.Username
}

// =============================================================================
// Options Helpers
// =============================================================================

// treeFlags are the flags shared by every command that fetches a tree.
type treeFlags struct {
	kind    string
	depth   int
	refresh bool
	noCache bool
}

func (f *treeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kind, "kind", "k", "", "tree kind: user or franchise (default from config)")
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, "levels to show, 1-6 (default from config)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass the cached tree")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching entirely")
}

// pipelineOptions merges flags over the config file.
func (c *CLI) pipelineOptions(f treeFlags) pipeline.Options {
	opts := pipeline.Options{
		Kind:       c.cfg.Tree.Kind,
		Depth:      c.cfg.Tree.Depth,
		CardWidth:  c.cfg.Tree.CardWidth,
		CardHeight: c.cfg.Tree.CardHeight,
		Style:      c.cfg.Tree.Style,
		Refresh:    f.refresh,
		Logger:     c.Logger,
	}
	if f.kind != "" {
		opts.Kind = f.kind
	}
	if f.depth != 0 {
		opts.Depth = f.depth
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
