package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/teamtree/internal/server"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// serveOpts holds the flags for the serve command.
type serveOpts struct {
	treeFlags
	addr     string
	interval time.Duration
}

// serveCommand creates the HTTP preview server command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the team tree over HTTP",
		Long: `Serve polls the back office on a fixed interval and serves the latest tree
as SVG, JSON, text and Graphviz. Tree routes accept ?style= and ?depth=.
Prometheus metrics are exposed on /metrics.`,
		Example: `  teamtree serve --addr :8080
  curl 'localhost:8080/tree.svg?depth=4&style=handdrawn'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	opts.treeFlags.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "refresh interval (default from config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cl, cred, err := c.newClient(ctx)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache, member(cred))
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(opts.treeFlags)
	popts.Refresh = true
	popts.Logger = c.Logger
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	addr := c.cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	interval := time.Duration(c.cfg.Poll.Interval)
	if opts.interval > 0 {
		interval = opts.interval
	}

	srv, err := server.New(server.Config{
		Addr:   addr,
		Runner: runner,
		Fetch: func(ctx context.Context) (*tree.Node, tree.Stats, error) {
			fetched, err := runner.Fetch(ctx, cl, popts)
			return fetched.Root, fetched.Stats, err
		},
		Options:  popts,
		Interval: interval,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}
	srv.Metrics().Install()

	printInfo("Serving %s tree on http://%s", popts.Kind, addr)
	printDetail("Refreshing every %s", interval)
	return srv.Run(ctx)
}
