package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/octavate/labelgraph/pkg/errors"
	pkgio "github.com/octavate/labelgraph/pkg/io"
	"github.com/octavate/labelgraph/pkg/pipeline"
)

var errNoInput = errors.New(errors.ErrCodeInvalidInput, "no input file: pass one as an argument or set input in %s", "labelgraph.toml")

// convertOpts holds options for the convert command.
type convertOpts struct {
	output  string
	logFile string
	noCache bool
	refresh bool
}

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	opts := convertOpts{}

	cmd := &cobra.Command{
		Use:   "convert [input]",
		Short: "Convert a label document into a node-link graph",
		Long: `Convert a nested label/sublabel/artist/track document into a node-link graph.

Two files are written, by default next to the input:
  ` + DefaultGraphName + `   the graph ({"nodes": [...], "links": [...]})
  ` + DefaultLogName + `           every entry that had to be skipped`,
		Example: `  # Convert with default output names
  labelgraph convert data/Complete_OctavateArtistsList.json

  # Choose where the outputs go
  labelgraph convert artists.json -o graph.json --log skipped.log

  # Ignore cached results
  labelgraph convert artists.json --refresh`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runConvert(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "graph output file")
	cmd.Flags().StringVar(&opts.logFile, "log", "", "malformed-entry log file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the conversion cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "reconvert even if a cached result exists")

	return cmd
}

// runConvert converts the input and writes both artifacts.
func (c *CLI) runConvert(ctx context.Context, args []string, opts convertOpts) error {
	input, err := c.inputPath(args)
	if err != nil {
		return err
	}
	graphPath, logPath := c.outputPaths(input, opts.output, opts.logFile)
	for _, p := range []string{graphPath, logPath} {
		if err := errors.ValidatePath(p); err != nil {
			return err
		}
	}

	res, err := c.convert(ctx, input, opts.noCache, opts.refresh)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	if err := pkgio.ExportGraph(res.Graph, graphPath); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	if err := pkgio.ExportMalformed(res.Malformed, logPath); err != nil {
		return fmt.Errorf("write malformed log: %w", err)
	}
	prog.done("Wrote outputs")

	printSuccess("Converted %s", filepath.Base(input))
	printStats(res.Stats.Nodes, res.Stats.Links, res.Stats.Malformed, res.Cached)
	printFile(graphPath)
	printFile(logPath)
	if res.Stats.Malformed > 0 {
		printNewline()
		printNextStep("Review skipped entries", "labelgraph inspect "+input)
	}
	return nil
}

// convert runs the pipeline on input and logs the malformed entries.
func (c *CLI) convert(ctx context.Context, input string, noCache, refresh bool) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	res, err := runner.ConvertSource(ctx, input, c.convertOptions(refresh))
	if err != nil {
		return nil, err
	}
	logMalformed(c.Logger, res.Malformed)
	return res, nil
}
