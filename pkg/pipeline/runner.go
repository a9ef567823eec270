package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/octavate/labelgraph/pkg/cache"
	"github.com/octavate/labelgraph/pkg/httputil"
	pkgio "github.com/octavate/labelgraph/pkg/io"
	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/observability"
	"github.com/octavate/labelgraph/pkg/render/nodelink"
)

// Runner encapsulates conversion and rendering with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Fetcher downloads URL inputs for [Runner.ConvertSource].
	Fetcher *httputil.Fetcher
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Fetcher: httputil.NewFetcher(),
	}
}

// cachedConversion is the cache payload for a conversion.
type cachedConversion struct {
	Graph     labelgraph.Graph            `json:"graph"`
	Malformed []labelgraph.MalformedEntry `json:"malformed"`
}

// Convert turns a raw document into a graph and malformed log.
//
// A document that is not a JSON object fails with INVALID_DOCUMENT. Cache
// failures are logged and never fail the conversion.
func (r *Runner) Convert(ctx context.Context, data []byte, opts Options) (res *Result, err error) {
	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnConvertStart(ctx, len(data))
	defer func() {
		var stats observability.ConvertStats
		if res != nil {
			stats = observability.ConvertStats{
				Nodes:     res.Stats.Nodes,
				Links:     res.Stats.Links,
				Malformed: res.Stats.Malformed,
				Cached:    res.Cached,
			}
		}
		hooks.OnConvertComplete(ctx, stats, time.Since(start), err)
	}()

	inputHash := cache.Hash(data)
	key := r.Keyer.ConversionKey(inputHash, cache.ConversionKeyOpts{Version: FormatVersion})

	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, key); ok {
			res = r.result(cached.Graph, cached.Malformed, inputHash, start)
			res.Cached = true
			r.Logger.Debug("conversion cache hit", "hash", short(inputHash))
			return res, nil
		}
	}

	doc, err := pkgio.DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("decoded document", "labels", doc.Labels())
	built := labelgraph.Build(doc)
	res = r.result(built.Graph, built.Malformed, inputHash, start)

	r.Logger.Info("converted document",
		"labels", doc.Len(),
		"nodes", res.Stats.Nodes,
		"links", res.Stats.Links,
		"malformed", res.Stats.Malformed,
		"duration", res.Stats.Duration)

	r.store(ctx, key, cachedConversion{Graph: res.Graph, Malformed: res.Malformed}, opts.ttl())
	return res, nil
}

// ConvertFile reads path and converts it.
func (r *Runner) ConvertFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := pkgio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.Convert(ctx, data, opts)
}

// ConvertSource converts a local path or an http(s) URL.
func (r *Runner) ConvertSource(ctx context.Context, src string, opts Options) (*Result, error) {
	if !httputil.IsURL(src) {
		return r.ConvertFile(ctx, src, opts)
	}
	r.Logger.Debug("fetching document", "url", src)
	data, err := r.Fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return r.Convert(ctx, data, opts)
}

// Render draws a conversion result. The second return value reports a cache hit.
func (r *Runner) Render(ctx context.Context, res *Result, opts RenderOptions) ([]byte, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Format)

	key := r.Keyer.ArtifactKey(res.GraphHash, opts.keyOpts())
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), nil)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	dot := nodelink.ToDOT(res.Graph, nodelink.Options{Types: opts.Types, Detailed: opts.Detailed})
	out := []byte(dot)
	if opts.Format == FormatSVG {
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
			return nil, false, fmt.Errorf("render svg: %w", err)
		}
		out = svg
	}
	hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), nil)

	if err := r.Cache.Set(ctx, key, out, cache.TTLArtifact); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "artifact", len(out))
	}

	r.Logger.Debug("rendered graph", "format", opts.Format, "bytes", len(out), "duration", time.Since(start))
	return out, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) result(g labelgraph.Graph, malformed []labelgraph.MalformedEntry, inputHash string, start time.Time) *Result {
	return NewResult(g, malformed, inputHash, time.Since(start))
}

// NewResult assembles a result for a graph produced elsewhere, such as a
// stored run. elapsed is reported as Stats.Duration.
func NewResult(g labelgraph.Graph, malformed []labelgraph.MalformedEntry, inputHash string, elapsed time.Duration) *Result {
	if malformed == nil {
		malformed = []labelgraph.MalformedEntry{}
	}
	res := &Result{
		Graph:     g,
		Malformed: malformed,
		InputHash: inputHash,
	}
	if data, err := json.Marshal(g); err == nil {
		res.GraphHash = cache.Hash(data)
	}
	res.Stats = newStats(g, len(malformed), elapsed)
	return res
}

func (r *Runner) lookup(ctx context.Context, key string) (cachedConversion, bool) {
	var cached cachedConversion
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
		return cached, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, "convert")
		return cached, false
	}
	if err := json.Unmarshal(data, &cached); err != nil {
		// Undecodable entries are recomputed and overwritten.
		r.Logger.Debug("discarding cache entry", "err", err)
		return cached, false
	}
	observability.Cache().OnCacheHit(ctx, "convert")
	return cached, true
}

func (r *Runner) store(ctx context.Context, key string, v cachedConversion, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("encode cache entry", "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "convert", len(data))
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
