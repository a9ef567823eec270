package cli

import (
	"context"
	"time"

	"github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/pipeline"
	"github.com/octavate/labelgraph/pkg/storage/mongostore"
)

// latestRun is the run reference that selects the newest stored run.
const latestRun = "latest"

// runFinder looks up stored runs. *mongostore.Store implements it.
type runFinder interface {
	Latest(ctx context.Context) (*mongostore.Run, error)
	Get(ctx context.Context, id string) (*mongostore.Run, error)
}

// findRun resolves ref, either "latest" or a run id.
func findRun(ctx context.Context, f runFinder, ref string) (*mongostore.Run, error) {
	switch ref {
	case "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty run reference")
	case latestRun:
		return f.Latest(ctx)
	default:
		return f.Get(ctx, ref)
	}
}

// runResult decodes a stored run into the shape a fresh conversion has.
func runResult(run *mongostore.Run) (*pipeline.Result, error) {
	g, malformed, err := run.Decode()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode run %s", run.ID)
	}
	return pipeline.NewResult(g, malformed, run.InputHash, 0), nil
}

// loadRun fetches ref from the configured MongoDB collection.
func (c *CLI) loadRun(ctx context.Context, ref string) (*pipeline.Result, error) {
	if c.Config.Mongo.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is not set")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, spinnerOut, "Connecting to MongoDB...")
	spinner.Start()

	store, err := mongostore.Connect(ctx, mongostore.Config{
		URI:        c.Config.Mongo.URI,
		Database:   c.Config.Mongo.Database,
		Collection: c.Config.Mongo.Collection,
	})
	if err != nil {
		spinner.StopWithError("Could not connect to MongoDB")
		return nil, err
	}
	defer store.Close(context.WithoutCancel(ctx))

	spinner.SetMessage("Loading run " + ref + "...")
	run, err := findRun(ctx, store, ref)
	if err != nil {
		spinner.StopWithError("Could not load run " + ref)
		return nil, err
	}
	res, err := runResult(run)
	if err != nil {
		spinner.StopWithError("Could not decode run " + run.ID)
		return nil, err
	}
	spinner.StopWithSuccess("Loaded run " + run.ID)
	c.Logger.Debug("loaded run", "id", run.ID, "source", run.Source, "created", run.CreatedAt.Format(time.RFC3339))
	return res, nil
}

// resultFor loads a stored run when ref is set and converts the input otherwise.
func (c *CLI) resultFor(ctx context.Context, args []string, ref string, noCache bool) (*pipeline.Result, error) {
	if ref == "" {
		input, err := c.inputPath(args)
		if err != nil {
			return nil, err
		}
		return c.convert(ctx, input, noCache, false)
	}
	if len(args) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pass either an input or --run, not both")
	}
	return c.loadRun(ctx, ref)
}
