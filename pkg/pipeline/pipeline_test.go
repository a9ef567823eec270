package pipeline

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/octavate/labelgraph/pkg/cache"
	"github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/observability"
)

const doc = `{
	"Warner Music Group": {"Atlantic": [
		{"artistName": "Ana", "genres": ["pop"], "topTracks": [{"song": {"songName": "Hit", "songCollaborators": ["Bo"]}}]},
		{"genres": []}
	]},
	"Indie": [{"name": "Cy", "topTracks": [{"song": {}}]}]
}`

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q", tt.format, errors.GetCode(err))
		}
	}
}

func TestRenderOptionsDefaults(t *testing.T) {
	var o RenderOptions
	if err := o.Validate(); err != nil {
		t.Fatal(err)
	}
	if o.Format != FormatSVG {
		t.Errorf("default format = %q, want svg", o.Format)
	}
}

func TestConvert(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	defer r.Close()

	res, err := r.Convert(ctx, []byte(doc), Options{})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if res.Cached {
		t.Error("first conversion should not be cached")
	}
	if res.Stats.Nodes != 7 || res.Stats.Links != 5 || res.Stats.Malformed != 2 {
		t.Errorf("stats = %s", res.Stats)
	}
	if res.Stats.Counts[labelgraph.TypeArtist] != 2 {
		t.Errorf("artist count = %d, want 2", res.Stats.Counts[labelgraph.TypeArtist])
	}
	if res.InputHash != cache.Hash([]byte(doc)) {
		t.Error("InputHash should be the SHA-256 of the input")
	}
	if res.GraphHash == "" {
		t.Error("GraphHash should be set")
	}

	again, err := r.Convert(ctx, []byte(doc), Options{})
	if err != nil {
		t.Fatalf("second Convert: %v", err)
	}
	if !again.Cached {
		t.Error("second conversion should hit the cache")
	}
	if again.GraphHash != res.GraphHash {
		t.Error("cached graph differs from fresh graph")
	}
	if len(again.Malformed) != 2 || again.Malformed[1].Artist != "Cy" {
		t.Errorf("cached malformed = %+v", again.Malformed)
	}

	refreshed, err := r.Convert(ctx, []byte(doc), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.Cached {
		t.Error("Refresh should bypass the cache")
	}
}

func TestConvertNullCache(t *testing.T) {
	r := NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	for i := 0; i < 2; i++ {
		res, err := r.Convert(context.Background(), []byte(`{}`), Options{})
		if err != nil {
			t.Fatal(err)
		}
		if res.Cached {
			t.Error("NullCache should never hit")
		}
		if res.Graph.Nodes != nil && len(res.Graph.Nodes) != 0 {
			t.Errorf("nodes = %v", res.Graph.Nodes)
		}
		if res.Malformed == nil {
			t.Error("Malformed should be non-nil")
		}
	}
}

func TestConvertInvalidDocument(t *testing.T) {
	r := newTestRunner(t)
	for _, input := range []string{`[]`, `{"A":`, ``} {
		_, err := r.Convert(context.Background(), []byte(input), Options{})
		if !errors.Is(err, errors.ErrCodeInvalidDocument) {
			t.Errorf("Convert(%q) error = %v, want INVALID_DOCUMENT", input, err)
		}
	}
}

func TestConvertFileMissing(t *testing.T) {
	r := newTestRunner(t)
	_, err := r.ConvertFile(context.Background(), filepath.Join(t.TempDir(), "none.json"), Options{})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestConvertSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/artists.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(doc))
	}))
	defer srv.Close()

	r := newTestRunner(t)
	res, err := r.ConvertSource(context.Background(), srv.URL+"/artists.json", Options{})
	if err != nil {
		t.Fatalf("ConvertSource(url): %v", err)
	}
	if res.Stats.Nodes != 7 || res.Stats.Malformed != 2 {
		t.Errorf("stats = %s", res.Stats)
	}

	_, err = r.ConvertSource(context.Background(), srv.URL+"/missing.json", Options{})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing url error = %v, want NOT_FOUND", err)
	}

	path := filepath.Join(t.TempDir(), "artists.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	local, err := r.ConvertSource(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("ConvertSource(path): %v", err)
	}
	if !local.Cached || local.InputHash != res.InputHash {
		t.Error("same bytes from a file should hit the cache entry stored by the URL conversion")
	}
}

func TestConvertLogs(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(nil, nil, log.NewWithOptions(&buf, log.Options{}))
	if _, err := r.Convert(context.Background(), []byte(doc), Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "converted document") {
		t.Errorf("log output = %q", buf.String())
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	starts, completes int
	last              observability.ConvertStats
}

func (h *countingHooks) OnConvertStart(context.Context, int) { h.starts++ }
func (h *countingHooks) OnConvertComplete(_ context.Context, s observability.ConvertStats, _ time.Duration, _ error) {
	h.completes++
	h.last = s
}

func TestConvertHooks(t *testing.T) {
	h := &countingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	r := newTestRunner(t)
	if _, err := r.Convert(context.Background(), []byte(doc), Options{}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Convert(context.Background(), []byte(`[]`), Options{}); err == nil {
		t.Fatal("expected error")
	}
	if h.starts != 2 || h.completes != 2 {
		t.Errorf("starts=%d completes=%d, want 2/2", h.starts, h.completes)
	}
	if h.last.Nodes != 0 {
		t.Errorf("failed conversion reported %d nodes", h.last.Nodes)
	}
}

func TestRender(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	res, err := r.Convert(ctx, []byte(doc), Options{})
	if err != nil {
		t.Fatal(err)
	}

	opts := RenderOptions{Format: FormatDOT, Types: labelgraph.DefaultViewTypes}
	dot, hit, err := r.Render(ctx, res, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if hit {
		t.Error("first render should miss")
	}
	if !strings.HasPrefix(string(dot), "digraph G {") || strings.Contains(string(dot), "Ana::Hit") {
		t.Errorf("unexpected DOT:\n%s", dot)
	}

	again, hit, err := r.Render(ctx, res, opts)
	if err != nil || !hit || !bytes.Equal(again, dot) {
		t.Errorf("second render hit=%v err=%v", hit, err)
	}

	if _, _, err := r.Render(ctx, res, RenderOptions{Format: "gif"}); err == nil {
		t.Error("unsupported format should fail")
	}
}

func TestRenderSVG(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	res, err := r.Convert(ctx, []byte(doc), Options{})
	if err != nil {
		t.Fatal(err)
	}
	svg, _, err := r.Render(ctx, res, RenderOptions{Format: FormatSVG})
	if err != nil {
		t.Fatalf("Render svg: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("output is not SVG: %.200s", svg)
	}
}
