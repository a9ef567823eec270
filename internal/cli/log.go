// Package cli implements the labelgraph command-line interface.
//
// This package provides commands for converting label catalogs into graphs,
// rendering and inspecting them, publishing them to MongoDB or Neo4j, serving
// them over HTTP, and managing the conversion cache. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - convert: Write the graph JSON and the malformed-entry log
//   - render: Generate DOT or SVG diagrams
//   - stats: Summarize node, link and malformed counts
//   - inspect: Browse malformed entries interactively
//   - publish: Store a conversion in MongoDB and/or Neo4j
//   - serve: Serve the graph over HTTP
//   - cache: Manage the conversion cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline and cache events.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Wrote graph (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logMalformed warns once with the total and lists each entry at debug level.
func logMalformed(l *log.Logger, entries []labelgraph.MalformedEntry) {
	if len(entries) == 0 {
		return
	}
	l.Warn("skipped malformed entries", "count", len(entries))
	for i, e := range entries {
		if e.Artist != "" {
			l.Debug("malformed", "n", i+1, "reason", e.Reason, "artist", e.Artist)
		} else {
			l.Debug("malformed", "n", i+1, "reason", e.Reason)
		}
	}
}

// logHooks reports observability events through the CLI logger.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnConvertStart(_ context.Context, inputBytes int) {
	h.logger.Debug("convert start", "bytes", inputBytes)
}

func (h *logHooks) OnConvertComplete(_ context.Context, s observability.ConvertStats, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("convert failed", "err", err, "duration", d)
		return
	}
	h.logger.Debug("convert done", "nodes", s.Nodes, "links", s.Links, "malformed", s.Malformed, "cached", s.Cached, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, format string) {
	h.logger.Debug("render start", "format", format)
}

func (h *logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.logger.Debug("render done", "format", format, "duration", d, "err", err)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}

func (h *logHooks) OnPublishStart(_ context.Context, sink string) {
	h.logger.Debug("publish start", "sink", sink)
}

func (h *logHooks) OnPublishComplete(_ context.Context, sink string, records int, d time.Duration, err error) {
	h.logger.Debug("publish done", "sink", sink, "records", records, "duration", d, "err", err)
}
