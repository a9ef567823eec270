package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/pipeline"
	"github.com/octavate/labelgraph/pkg/storage/mongostore"
	"github.com/octavate/labelgraph/pkg/storage/neo4jstore"
)

// publishTimeout bounds each sink, connection included.
const publishTimeout = 2 * time.Minute

// publishOpts holds options for the publish command.
type publishOpts struct {
	mongo   bool
	neo4j   bool
	noCache bool
}

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	opts := publishOpts{}

	cmd := &cobra.Command{
		Use:   "publish [input]",
		Short: "Store a conversion in MongoDB and/or Neo4j",
		Long: `Convert the input and publish the result.

  --mongo   save the run (graph, malformed entries, counts) to MongoDB
  --neo4j   merge nodes and links into Neo4j

With neither flag, every sink with a configured URI is used. Connection
settings come from the [mongo] and [neo4j] config sections and the
LABELGRAPH_MONGO_URI and LABELGRAPH_NEO4J_PASSWORD environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPublish(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.mongo, "mongo", false, "publish the run to MongoDB")
	cmd.Flags().BoolVar(&opts.neo4j, "neo4j", false, "publish the graph to Neo4j")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the conversion cache")

	return cmd
}

func (c *CLI) runPublish(ctx context.Context, args []string, opts publishOpts) error {
	if !opts.mongo && !opts.neo4j {
		opts.mongo = c.Config.Mongo.URI != ""
		opts.neo4j = c.Config.Neo4j.URI != ""
	}
	if !opts.mongo && !opts.neo4j {
		return errors.New(errors.ErrCodeInvalidConfig, "no sink configured: set [mongo] uri or [neo4j] uri")
	}
	if opts.mongo && c.Config.Mongo.URI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo uri is not set")
	}
	if opts.neo4j && c.Config.Neo4j.URI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "neo4j uri is not set")
	}

	input, err := c.inputPath(args)
	if err != nil {
		return err
	}
	res, err := c.convert(ctx, input, opts.noCache, false)
	if err != nil {
		return err
	}
	printStats(res.Stats.Nodes, res.Stats.Links, res.Stats.Malformed, res.Cached)

	if opts.mongo {
		if err := c.publishMongo(ctx, input, res); err != nil {
			return err
		}
	}
	if opts.neo4j {
		if err := c.publishNeo4j(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) publishMongo(ctx context.Context, input string, res *pipeline.Result) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, spinnerOut, "Connecting to MongoDB...")
	spinner.Start()

	run, err := mongostore.NewRun(input, res.InputHash, res.Graph, res.Malformed)
	if err != nil {
		spinner.StopWithError("Could not encode run")
		return err
	}

	store, err := mongostore.Connect(ctx, mongostore.Config{
		URI:        c.Config.Mongo.URI,
		Database:   c.Config.Mongo.Database,
		Collection: c.Config.Mongo.Collection,
	})
	if err != nil {
		spinner.StopWithError("Could not connect to MongoDB")
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	spinner.SetMessage("Saving run to MongoDB...")
	if err := store.Save(ctx, run); err != nil {
		spinner.StopWithError("Could not save run")
		return err
	}
	spinner.StopWithSuccess("Saved run to MongoDB")
	printKeyValue("Run", run.ID)
	c.Logger.Debug("saved run", "id", run.ID, "source", run.Source)
	return nil
}

func (c *CLI) publishNeo4j(ctx context.Context, res *pipeline.Result) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, spinnerOut, "Connecting to Neo4j...")
	spinner.Start()

	store, err := neo4jstore.Connect(ctx, neo4jstore.Config{
		URI:      c.Config.Neo4j.URI,
		Username: c.Config.Neo4j.Username,
		Password: c.Config.Neo4j.Password,
		Database: c.Config.Neo4j.Database,
	})
	if err != nil {
		spinner.StopWithError("Could not connect to Neo4j")
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	if err := store.EnsureSchema(ctx); err != nil {
		spinner.StopWithError("Could not create constraints")
		return err
	}
	spinner.SetMessage("Pushing graph to Neo4j...")
	stats, err := store.Push(ctx, res.Graph)
	if err != nil {
		spinner.StopWithError("Could not push graph")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Pushed %d nodes and %d links to Neo4j", stats.Nodes, stats.Links))
	return nil
}
