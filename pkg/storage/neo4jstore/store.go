// Package neo4jstore merges label graphs into a Neo4j database.
//
// Every node becomes a (:Node) with an id property plus a second label for
// its type (Label, Sublabel, Artist, Song, Collaborator). Links become
// [:LINKS] relationships carrying the owning label. Writes use MERGE, so
// pushing the same graph twice leaves the database unchanged.
package neo4jstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/octavate/labelgraph/pkg/cache"
	lgerrors "github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/observability"
)

// BatchSize is the number of rows sent per UNWIND statement.
const BatchSize = 500

// Config locates the database.
type Config struct {
	URI      string
	Username string
	Password string
	Database string
}

// Store pushes graphs through one driver.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
}

// PushStats reports what a push wrote. Links counts only relationships
// whose endpoints both exist; dangling links are skipped by the MATCH.
type PushStats struct {
	Nodes int
	Links int
}

// typeLabels maps node types to Neo4j labels. Labels cannot be query
// parameters, so only these fixed names are ever interpolated.
var typeLabels = map[labelgraph.NodeType]string{
	labelgraph.TypeLabel:        "Label",
	labelgraph.TypeSublabel:     "Sublabel",
	labelgraph.TypeArtist:       "Artist",
	labelgraph.TypeSong:         "Song",
	labelgraph.TypeCollaborator: "Collaborator",
}

const (
	constraintQuery = `CREATE CONSTRAINT labelgraph_node_id IF NOT EXISTS FOR (n:Node) REQUIRE n.id IS UNIQUE`

	nodeQuery = `
		UNWIND $rows AS row
		MERGE (n:Node {id: row.id})
		SET n:%s
		SET n += row.props`

	linkQuery = `
		UNWIND $rows AS row
		MATCH (a:Node {id: row.source})
		MATCH (b:Node {id: row.target})
		MERGE (a)-[:LINKS {label: row.label}]->(b)
		RETURN count(*) AS merged`
)

// Connect creates a driver and verifies connectivity, retrying transient
// failures.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeInvalidConfig, err, "neo4j driver")
	}

	err = cache.RetryWithBackoff(ctx, func() error {
		return cache.Retryable(driver.VerifyConnectivity(ctx))
	})
	if err != nil {
		_ = driver.Close(context.Background())
		return nil, lgerrors.Wrap(lgerrors.ErrCodeNetwork, err, "connect to neo4j")
	}
	return &Store{driver: driver, database: cfg.Database}, nil
}

// EnsureSchema creates the uniqueness constraint on node ids.
func (s *Store) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	if _, err := session.Run(ctx, constraintQuery, nil); err != nil {
		return lgerrors.Wrap(lgerrors.ErrCodeStorage, err, "create constraint")
	}
	return nil
}

// Push merges g in a single write transaction.
func (s *Store) Push(ctx context.Context, g labelgraph.Graph) (stats PushStats, err error) {
	start := time.Now()
	observability.Publish().OnPublishStart(ctx, "neo4j")
	defer func() {
		observability.Publish().OnPublishComplete(ctx, "neo4j", stats.Nodes+stats.Links, time.Since(start), err)
	}()

	groups, err := nodeRows(g)
	if err != nil {
		return stats, err
	}
	links := linkRows(g)

	session := s.session(ctx)
	defer session.Close(ctx)

	merged, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, t := range labelgraph.NodeTypes {
			query := fmt.Sprintf(nodeQuery, typeLabels[t])
			for _, batch := range batches(groups[t]) {
				if _, err := tx.Run(ctx, query, map[string]any{"rows": batch}); err != nil {
					return nil, fmt.Errorf("merge %s nodes: %w", t, err)
				}
			}
		}
		var merged int64
		for _, batch := range batches(links) {
			res, err := tx.Run(ctx, linkQuery, map[string]any{"rows": batch})
			if err != nil {
				return nil, fmt.Errorf("merge links: %w", err)
			}
			n, err := mergedCount(ctx, res)
			if err != nil {
				return nil, fmt.Errorf("merge links: %w", err)
			}
			merged += n
		}
		return merged, nil
	})
	if err != nil {
		return stats, lgerrors.Wrap(lgerrors.ErrCodeStorage, err, "push graph")
	}

	for _, rows := range groups {
		stats.Nodes += len(rows)
	}
	stats.Links = int(merged.(int64))
	return stats, nil
}

func mergedCount(ctx context.Context, res neo4j.ResultWithContext) (int64, error) {
	rec, err := res.Single(ctx)
	if err != nil {
		return 0, err
	}
	v, _ := rec.Get("merged")
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected count %T", v)
	}
	return n, nil
}

// Close closes the driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
}

// nodeRows groups nodes by type as {id, props} rows.
func nodeRows(g labelgraph.Graph) (map[labelgraph.NodeType][]any, error) {
	groups := make(map[labelgraph.NodeType][]any)
	for _, n := range g.Nodes {
		if _, ok := typeLabels[n.NodeType()]; !ok {
			return nil, lgerrors.New(lgerrors.ErrCodeInvalidInput, "node %q has unknown type %q", n.NodeID(), n.NodeType())
		}
		props, err := properties(n)
		if err != nil {
			return nil, err
		}
		groups[n.NodeType()] = append(groups[n.NodeType()], map[string]any{
			"id":    n.NodeID(),
			"props": props,
		})
	}
	return groups, nil
}

func linkRows(g labelgraph.Graph) []any {
	rows := make([]any, 0, len(g.Links))
	for _, l := range g.Links {
		rows = append(rows, map[string]any{
			"source": l.Source,
			"target": l.Target,
			"label":  l.Label,
		})
	}
	return rows
}

// properties flattens a node into Neo4j property values. Nulls are dropped,
// lists of one scalar type are kept and anything else is stored as a JSON
// string, since Neo4j arrays must be homogeneous.
func properties(n labelgraph.Node) (map[string]any, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("encode node %q: %w", n.NodeID(), err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode node %q: %w", n.NodeID(), err)
	}

	props := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" || v == nil {
			continue
		}
		props[k] = propertyValue(v)
	}
	return props, nil
}

func propertyValue(v any) any {
	switch v := v.(type) {
	case string, float64, bool:
		return v
	case []any:
		if homogeneous(v) {
			return v
		}
		return jsonString(v)
	default:
		return jsonString(v)
	}
}

// homogeneous reports whether items are all strings, all numbers or all
// booleans. Empty lists qualify.
func homogeneous(items []any) bool {
	kind := func(v any) int {
		switch v.(type) {
		case string:
			return 1
		case float64:
			return 2
		case bool:
			return 3
		}
		return 0
	}
	for _, item := range items {
		if k := kind(item); k == 0 || k != kind(items[0]) {
			return false
		}
	}
	return true
}

func jsonString(v any) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func batches(rows []any) [][]any {
	var out [][]any
	for len(rows) > BatchSize {
		out = append(out, rows[:BatchSize])
		rows = rows[BatchSize:]
	}
	if len(rows) > 0 {
		out = append(out, rows)
	}
	return out
}
