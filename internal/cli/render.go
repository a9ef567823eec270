package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/pipeline"
)

// renderOpts holds options for the render command.
type renderOpts struct {
	format   string
	types    string
	detailed bool
	output   string
	noCache  bool
}

// renderCommand creates the render command for drawing the graph.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [input]",
		Short: "Render the graph as DOT or SVG",
		Long: `Render the converted graph as a Graphviz diagram.

Nodes are colored by the label that owns them. Use --types to keep only some
node types. The default is labels, sublabels and artists, the 3D viewer set.
Use --detailed to print node types and link labels.`,
		Example: `  # SVG of the labels, sublabels and artists
  labelgraph render artists.json -o graph.svg

  # Label hierarchy only, as DOT on stdout
  labelgraph render artists.json -f dot --types label,sublabel`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = c.Config.Render.Detailed
			}
			return c.runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSVG, "output format: dot, svg")
	cmd.Flags().StringVar(&opts.types, "types", "", "comma-separated node types to keep (label,sublabel,artist,song,collaborator)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node types and link labels")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts renderOpts) error {
	ctx := cmd.Context()

	types, err := c.renderTypes(opts.types)
	if err != nil {
		return err
	}
	ropts := pipeline.RenderOptions{Format: strings.ToLower(opts.format), Types: types, Detailed: opts.detailed}
	if err := ropts.Validate(); err != nil {
		return err
	}

	input, err := c.inputPath(args)
	if err != nil {
		return err
	}

	data, err := c.render(ctx, input, opts.noCache, ropts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := errors.ValidatePath(opts.output); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess("Rendered %s", ropts.Format)
	printFile(opts.output)
	return nil
}

func (c *CLI) render(ctx context.Context, input string, noCache bool, ropts pipeline.RenderOptions) ([]byte, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	res, err := runner.ConvertSource(ctx, input, c.convertOptions(false))
	if err != nil {
		return nil, err
	}
	logMalformed(c.Logger, res.Malformed)

	prog := newProgress(c.Logger)
	data, cached, err := runner.Render(ctx, res, ropts)
	if err != nil {
		return nil, err
	}
	if cached {
		c.Logger.Debug("render cache hit", "format", ropts.Format)
	}
	prog.done("Rendered " + ropts.Format)
	return data, nil
}

// renderTypes parses --types, falling back to the configured default.
func (c *CLI) renderTypes(flag string) ([]labelgraph.NodeType, error) {
	if flag == "" {
		return c.Config.RenderTypes(), nil
	}
	types, unknown := labelgraph.ParseNodeTypes(flag)
	if len(unknown) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown node type(s): %s", strings.Join(unknown, ", "))
	}
	return types, nil
}
