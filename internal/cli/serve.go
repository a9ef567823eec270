package cli

import (
	"github.com/spf13/cobra"

	"github.com/octavate/labelgraph/internal/config"
	"github.com/octavate/labelgraph/internal/server"
	"github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/pipeline"
)

// serveOpts holds options for the serve command.
type serveOpts struct {
	addr    string
	noCache bool
	run     string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve [input]",
		Short: "Serve the graph over HTTP",
		Long: `Convert the input and serve it to the 3D viewer.

Routes:
  GET  /healthz           liveness
  GET  /graph             graph JSON (?types=label,artist to filter)
  GET  /graph/malformed   skipped entries
  GET  /graph/stats       counts
  GET  /graph.dot         DOT diagram (?types, ?detailed)
  GET  /graph.svg         SVG diagram (?types, ?detailed)
  POST /convert           convert the request body (?replace=true to serve it)

With --run, a run saved by "publish --mongo" is served instead of
converting an input ("latest" or a run id).

Without an input the graph routes return 404 until a document is posted
with replace=true.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			addr := firstNonEmpty(opts.addr, c.Config.Server.Addr, config.DefaultAddr)

			runner, err := c.newRunner(ctx, opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var initial *pipeline.Result
			input, err := c.inputPath(args)
			switch {
			case opts.run != "":
				initial, err = c.resultFor(ctx, args, opts.run, opts.noCache)
				if err != nil {
					return err
				}
				printStats(initial.Stats.Nodes, initial.Stats.Links, initial.Stats.Malformed, false)
			case err == nil:
				spinner := newSpinner("Converting " + input + "...")
				spinner.Start()
				initial, err = runner.ConvertSource(ctx, input, c.convertOptions(false))
				if err != nil {
					spinner.StopWithError("Conversion failed")
					return err
				}
				spinner.StopWithSuccess("Converted " + input)
				printStats(initial.Stats.Nodes, initial.Stats.Links, initial.Stats.Malformed, initial.Cached)
				logMalformed(c.Logger, initial.Malformed)
			case errors.Is(err, errors.ErrCodeInvalidInput):
				c.Logger.Warn("no input, waiting for POST /convert?replace=true")
			default:
				return err
			}

			srv := server.New(runner, c.Logger, initial, server.Options{
				RenderTypes: c.Config.RenderTypes(),
				Detailed:    c.Config.Render.Detailed,
			})
			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default "+config.DefaultAddr+")")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the conversion cache")
	cmd.Flags().StringVar(&opts.run, "run", "", "serve a stored run (id or \"latest\")")

	return cmd
}
