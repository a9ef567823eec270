// Package pipeline runs label-document conversion with caching.
//
// This package is the single entry point used by the CLI and the HTTP server
// to turn a raw document into a graph and a malformed-entry log, and to
// render that graph. Centralizing it keeps cache keys, logging and hooks
// consistent between the two.
//
// # Stages
//
//  1. Convert: decode the document and build the graph ([labelgraph.Build])
//  2. Render: draw the graph as DOT or SVG ([nodelink])
//
// Both stages consult the cache first. Conversion results are keyed by the
// SHA-256 of the input bytes, renders by the hash of the graph plus the
// render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Convert(ctx, data, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg, err := runner.Render(ctx, res, pipeline.RenderOptions{Format: pipeline.FormatSVG})
//
// [nodelink]: github.com/octavate/labelgraph/pkg/render/nodelink
package pipeline

import (
	"fmt"
	"time"

	"github.com/octavate/labelgraph/pkg/cache"
	"github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
)

// =============================================================================
// Default Values
// =============================================================================

// FormatVersion is part of every conversion cache key. Bump it whenever the
// shape of the converted output changes so stale entries are ignored.
const FormatVersion = 1

// Format constants for rendered output.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// =============================================================================
// Options
// =============================================================================

// Options controls a conversion.
type Options struct {
	// Refresh skips the cache lookup and overwrites any cached entry.
	Refresh bool

	// TTL is the cache lifetime of the result. Zero means [cache.TTLConversion].
	TTL time.Duration
}

func (o Options) ttl() time.Duration {
	if o.TTL > 0 {
		return o.TTL
	}
	return cache.TTLConversion
}

// RenderOptions controls a render.
type RenderOptions struct {
	Format   string
	Types    []labelgraph.NodeType
	Detailed bool
}

// Validate checks the format and fills in defaults.
func (o *RenderOptions) Validate() error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	return ValidateFormat(o.Format)
}

func (o RenderOptions) keyOpts() cache.ArtifactKeyOpts {
	types := make([]string, len(o.Types))
	for i, t := range o.Types {
		types[i] = string(t)
	}
	return cache.ArtifactKeyOpts{Format: o.Format, Types: types, Detailed: o.Detailed}
}

// ValidateFormat checks that a render format is supported.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, FormatDOT, FormatSVG)
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a conversion.
type Result struct {
	// Graph is the converted node-link graph.
	Graph labelgraph.Graph

	// Malformed lists the skipped entries in discovery order.
	Malformed []labelgraph.MalformedEntry

	// InputHash is the SHA-256 of the raw document.
	InputHash string

	// GraphHash is the SHA-256 of the encoded graph; render cache keys use it.
	GraphHash string

	// Cached reports whether the result came from the cache.
	Cached bool

	// Stats contains counts and timing.
	Stats Stats
}

// Stats summarizes a conversion.
type Stats struct {
	Counts    map[labelgraph.NodeType]int
	Nodes     int
	Links     int
	Malformed int
	Duration  time.Duration
}

func newStats(g labelgraph.Graph, malformed int, d time.Duration) Stats {
	return Stats{
		Counts:    labelgraph.Counts(g),
		Nodes:     len(g.Nodes),
		Links:     len(g.Links),
		Malformed: malformed,
		Duration:  d,
	}
}

// String returns a one-line summary.
func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d links, %d malformed", s.Nodes, s.Links, s.Malformed)
}
