package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/teamtree/pkg/pipeline"
)

// fetchOpts holds the flags for the fetch command.
type fetchOpts struct {
	treeFlags
	output string
}

// fetchCommand creates the fetch command, which saves the mapped tree as JSON
// for offline rendering with "render --input".
func (c *CLI) fetchCommand() *cobra.Command {
	var opts fetchOpts

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the team tree and save it as JSON",
		Long: `Fetch downloads the logged-in member's team tree, maps it to the binary
card model and writes it as JSON. The file can be rendered later with
"teamtree render --input".`,
		Example: `  teamtree fetch -o tree.json
  teamtree fetch --kind franchise --refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFetch(cmd.Context(), opts)
		},
	}

	opts.treeFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, opts fetchOpts) error {
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
	if err := popts.ValidateForFetch(); err != nil {
		return err
	}

	toStdout := opts.output == "" || opts.output == "-"
	if toStdout {
		uiOut = os.Stderr
	}

	spinner := newSpinnerWithContext(ctx, "Fetching "+popts.Kind+" tree...")
	spinner.Start()
	prog := newProgress(c.Logger)
	fetched, hit, err := runner.FetchWithCacheInfo(ctx, cl, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Fetched tree")

	if toStdout {
		return writeFetched(os.Stdout, fetched)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return err
	}
	if err := writeFetched(f, fetched); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	printSuccess("Saved %s tree", popts.Kind)
	printStats(fetched.Root.Count(), 0, hit)
	printFile(opts.output)
	printNextStep("Render it", "teamtree render --input "+opts.output)
	return nil
}

func writeFetched(w io.Writer, fetched pipeline.Fetched) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fetched)
}
