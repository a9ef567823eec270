// Package mongostore persists conversion runs in MongoDB.
//
// Each run is one document holding the graph, the malformed-entry log and
// summary counts, so earlier conversions can be compared or served again
// without the source file.
package mongostore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/octavate/labelgraph/pkg/cache"
	lgerrors "github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/observability"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultDatabase   = "labelgraph"
	DefaultCollection = "runs"
)

// Config locates the run collection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// Run is one stored conversion.
type Run struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"created_at"`
	Source    string    `bson:"source"`
	InputHash string    `bson:"input_hash"`
	Stats     RunStats  `bson:"stats"`

	// Payload holds the encoded {"nodes", "links", "malformed"} JSON as
	// binary. Entry keys are user input and may start with "$".
	Payload []byte `bson:"payload"`
}

// RunStats are the summary counts stored next to the payload.
type RunStats struct {
	Nodes     int            `bson:"nodes"`
	Links     int            `bson:"links"`
	Malformed int            `bson:"malformed"`
	ByType    map[string]int `bson:"by_type"`
}

type payload struct {
	Nodes     []labelgraph.Node           `json:"nodes"`
	Links     []labelgraph.Link           `json:"links"`
	Malformed []labelgraph.MalformedEntry `json:"malformed"`
}

// NewRun builds a run document with a fresh id.
func NewRun(source, inputHash string, g labelgraph.Graph, malformed []labelgraph.MalformedEntry) (*Run, error) {
	if malformed == nil {
		malformed = []labelgraph.MalformedEntry{}
	}
	data, err := json.Marshal(payload{Nodes: g.Nodes, Links: g.Links, Malformed: malformed})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	byType := make(map[string]int)
	for t, n := range labelgraph.Counts(g) {
		byType[string(t)] = n
	}

	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		InputHash: inputHash,
		Stats: RunStats{
			Nodes:     len(g.Nodes),
			Links:     len(g.Links),
			Malformed: len(malformed),
			ByType:    byType,
		},
		Payload: data,
	}, nil
}

// Decode returns the graph and malformed log stored in the run.
func (r *Run) Decode() (labelgraph.Graph, []labelgraph.MalformedEntry, error) {
	var p payload
	if err := json.Unmarshal(r.Payload, &p); err != nil {
		return labelgraph.Graph{}, nil, fmt.Errorf("decode payload: %w", err)
	}
	if p.Malformed == nil {
		p.Malformed = []labelgraph.MalformedEntry{}
	}
	return labelgraph.Graph{Nodes: p.Nodes, Links: p.Links}, p.Malformed, nil
}

// Store writes runs to one collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect opens a client and pings the server, retrying transient failures.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeInvalidConfig, err, "mongo client")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, lgerrors.Wrap(lgerrors.ErrCodeNetwork, err, "connect to mongodb")
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Save inserts run.
func (s *Store) Save(ctx context.Context, run *Run) (err error) {
	start := time.Now()
	observability.Publish().OnPublishStart(ctx, "mongo")
	defer func() {
		observability.Publish().OnPublishComplete(ctx, "mongo", run.Stats.Nodes, time.Since(start), err)
	}()

	if _, err = s.coll.InsertOne(ctx, run); err != nil {
		return lgerrors.Wrap(lgerrors.ErrCodeStorage, err, "insert run %s", run.ID)
	}
	return nil
}

// Latest returns the most recently created run, or a NOT_FOUND error when the
// collection is empty.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var run Run
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, lgerrors.New(lgerrors.ErrCodeNotFound, "no stored runs")
	}
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeStorage, err, "find latest run")
	}
	return &run, nil
}

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, lgerrors.New(lgerrors.ErrCodeNotFound, "run %s not found", id)
	}
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeStorage, err, "find run %s", id)
	}
	return &run, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
