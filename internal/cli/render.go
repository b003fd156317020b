package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/pipeline"
	"github.com/matzehuels/teamtree/pkg/tree"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	treeFlags
	input       string   // saved tree or backend response; empty fetches live
	output      string   // output file (single format) or base path
	formats     []string // svg, json, txt, dot, dot.svg, png, pdf
	style       string   // card style: simple, handdrawn
	detailed    bool     // metrics in node-link labels
	interactive bool     // hover highlighting in SVG
	color       bool     // ANSI colors in text output
	scale       float64  // PNG scale factor
}

// renderCommand creates the render command for generating tree views.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the team tree as SVG, text, DOT, PNG or PDF",
		Long: `Render lays out the team tree as a fixed-depth grid of cards and writes
it in one or more formats. Without --input the tree is fetched from the
backend; with --input it is read from a file saved by "teamtree fetch" or a
raw backend response.`,
		Example: `  teamtree render -o tree.svg
  teamtree render -f svg,png --style handdrawn --depth 4
  teamtree render --input tree.json -f txt -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			if err := pipeline.ValidateStyle(opts.style); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), opts)
		},
	}

	opts.treeFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "render a saved tree instead of fetching")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, txt, dot, dot.svg, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.style, "style", "", "card style: simple, handdrawn (default from config)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show metrics in node-link labels")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "highlight a card's lineage on hover (SVG)")
	cmd.Flags().BoolVar(&opts.color, "color", false, "colorize text output")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts renderOpts) error {
	popts := c.pipelineOptions(opts.treeFlags)
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed
	popts.Interactive = opts.interactive
	popts.Color = opts.color
	popts.Scale = opts.scale
	if opts.style != "" {
		popts.Style = opts.style
	}

	toStdout := opts.output == "-"
	if toStdout {
		if len(opts.formats) != 1 {
			return errors.New(errors.ErrCodeInvalidInput, "writing to stdout needs exactly one format, got %d", len(opts.formats))
		}
		uiOut = os.Stderr
	}

	var (
		result *pipeline.Result
		err    error
	)
	if opts.input != "" {
		result, err = c.renderFile(ctx, opts, popts)
	} else {
		result, err = c.renderLive(ctx, opts, popts)
	}
	if err != nil {
		return err
	}

	if toStdout {
		_, err := os.Stdout.Write(result.Artifacts[opts.formats[0]])
		return err
	}

	paths := outputPaths(opts.output, opts.formats)
	for _, format := range sortedFormats(result.Artifacts) {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return err
		}
	}

	cached := result.CacheInfo.TreeHit && result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	printSuccess("Rendered %s tree", popts.Kind)
	printStats(result.Stats.NodeCount, result.Stats.CardCount, cached)
	for _, format := range sortedFormats(result.Artifacts) {
		printFile(paths[format])
	}
	return nil
}

func (c *CLI) renderLive(ctx context.Context, opts renderOpts, popts pipeline.Options) (*pipeline.Result, error) {
	cl, cred, err := c.newClient(ctx)
	if err != nil {
		return nil, err
	}
	runner, err := c.newRunner(ctx, opts.noCache, member(cred))
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Fetching tree...")
	spinner.Start()
	defer spinner.Stop()

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, cl, popts)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Rendered %d cards", result.Stats.CardCount))
	return result, nil
}

func (c *CLI) renderFile(ctx context.Context, opts renderOpts, popts pipeline.Options) (*pipeline.Result, error) {
	if err := popts.ValidateForFetch(); err != nil {
		return nil, err
	}
	fetched, err := loadTree(opts.input, popts.TreeKind())
	if err != nil {
		return nil, err
	}
	c.Logger.Info("loaded tree", "file", opts.input, "nodes", fetched.Root.Count())

	runner, err := c.newRunner(ctx, opts.noCache, "")
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	return runner.FromTree(ctx, fetched, popts)
}

// loadTree reads a tree saved by the fetch command, a backend response
// envelope, or a bare payload. Raw payloads are mapped with kind's profile.
func loadTree(path string, kind tree.Kind) (pipeline.Fetched, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return pipeline.Fetched{}, errors.New(errors.ErrCodeFileNotFound, "input file %s not found", path)
	}
	if err != nil {
		return pipeline.Fetched{}, err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return pipeline.Fetched{}, errors.Wrap(errors.ErrCodeMalformed, err, "parse %s", path)
	}

	switch {
	case keys["root"] != nil:
		var fetched pipeline.Fetched
		if err := json.Unmarshal(data, &fetched); err != nil {
			return pipeline.Fetched{}, errors.Wrap(errors.ErrCodeMalformed, err, "parse %s", path)
		}
		return fetched, nil
	case keys["tree"] != nil || keys["success"] != nil:
		resp, err := tree.Decode(bytes.NewReader(data))
		if err != nil {
			return pipeline.Fetched{}, errors.Wrap(errors.ErrCodeMalformed, err, "parse %s", path)
		}
		return pipeline.Fetched{Root: tree.Map(resp.Tree, kind.Profile()), Stats: resp.Stats}, nil
	default:
		p, err := tree.DecodePayload(bytes.NewReader(data))
		if err != nil {
			return pipeline.Fetched{}, errors.Wrap(errors.ErrCodeMalformed, err, "parse %s", path)
		}
		return pipeline.Fetched{Root: tree.Map(p, kind.Profile())}, nil
	}
}

// outputPaths maps each format to its file. A single format writes to output
// as given; several formats share output as a base name. Known format
// extensions are stripped from the base.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips a known format extension from output. An empty output
// means "tree" in the working directory.
func basePath(output string) string {
	if output == "" {
		return "tree"
	}
	// Longest first so "x.dot.svg" loses ".dot.svg", not ".svg".
	known := make([]string, 0, len(pipeline.ValidFormats))
	for f := range pipeline.ValidFormats {
		known = append(known, f)
	}
	sort.Slice(known, func(i, j int) bool { return len(known[i]) > len(known[j]) })
	for _, f := range known {
		if trimmed, ok := strings.CutSuffix(output, "."+f); ok {
			return trimmed
		}
	}
	return output
}

func sortedFormats(artifacts map[string][]byte) []string {
	out := make([]string, 0, len(artifacts))
	for f := range artifacts {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
