package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
)

const testDocument = `{
  "Warner": {
    "Atlantic": [
      {"artistName": "Ana", "topTracks": [{"song": {"songName": "Hit", "songCollaborators": ["Ana", "Bo"]}}]},
      {}
    ]
  }
}`

// testEnv is a temp directory holding a document and a config file.
type testEnv struct {
	dir    string
	input  string
	config string
}

func newTestEnv(t *testing.T, configText string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:    dir,
		input:  filepath.Join(dir, "artists.json"),
		config: filepath.Join(dir, "labelgraph.toml"),
	}
	if err := os.WriteFile(env.input, []byte(testDocument), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(env.config, []byte(configText), 0o644); err != nil {
		t.Fatal(err)
	}
	return env
}

// execute runs the root command and returns what it wrote to its output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), logs.String(), err
}

func TestConvertCommand(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")

	_, logs, err := execute(t, "convert", env.input, "--config", env.config)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(env.dir, DefaultGraphName))
	if err != nil {
		t.Fatalf("graph not written: %v", err)
	}
	var g labelgraph.Graph
	if err := g.UnmarshalJSON(data); err != nil {
		t.Fatalf("graph JSON: %v", err)
	}
	if len(g.Nodes) != 5 || len(g.Links) != 4 {
		t.Errorf("graph has %d nodes, %d links, want 5, 4", len(g.Nodes), len(g.Links))
	}

	logData, err := os.ReadFile(filepath.Join(env.dir, DefaultLogName))
	if err != nil {
		t.Fatalf("log not written: %v", err)
	}
	want := "{\n  \"reason\": \"Missing artistName and name\",\n  \"entry\": {}\n}\n"
	if string(logData) != want {
		t.Errorf("log = %q, want %q", logData, want)
	}

	if !strings.Contains(logs, "skipped malformed entries") {
		t.Errorf("expected malformed warning in logs, got %q", logs)
	}
}

func TestConvertCommandOutputFlags(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")
	graphPath := filepath.Join(env.dir, "out", "graph.json")
	logPath := filepath.Join(env.dir, "out", "skipped.log")

	if _, _, err := execute(t, "convert", env.input, "--config", env.config, "-o", graphPath, "--log", logPath); err != nil {
		t.Fatalf("convert: %v", err)
	}
	for _, p := range []string{graphPath, logPath} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("%s not written: %v", p, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.dir, DefaultGraphName)); !os.IsNotExist(err) {
		t.Error("default graph file should not be written when -o is set")
	}
}

func TestConvertCommandConfigPaths(t *testing.T) {
	env := newTestEnv(t, `input = "artists.json"
output = "graph.json"
log = "skipped.log"

[cache]
backend = "none"
`)

	if _, _, err := execute(t, "convert", "--config", env.config); err != nil {
		t.Fatalf("convert: %v", err)
	}
	for _, name := range []string{"graph.json", "skipped.log"} {
		if _, err := os.Stat(filepath.Join(env.dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestConvertCommandURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testDocument))
	}))
	defer srv.Close()

	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")
	graphPath := filepath.Join(env.dir, "remote.json")
	logPath := filepath.Join(env.dir, "remote.log")

	if _, _, err := execute(t, "convert", srv.URL+"/artists.json", "--config", env.config, "-o", graphPath, "--log", logPath); err != nil {
		t.Fatalf("convert url: %v", err)
	}
	local, err := os.ReadFile(graphPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(local), `"id": "Ana::Hit"`) {
		t.Errorf("graph from url missing song node:\n%s", local)
	}
}

func TestConvertCommandErrors(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no input", []string{"convert"}, errors.ErrCodeInvalidInput},
		{"missing file", []string{"convert", filepath.Join(env.dir, "nope.json")}, errors.ErrCodeFileNotFound},
		{"missing config", []string{"convert", env.input, "--config", filepath.Join(env.dir, "nope.toml")}, errors.ErrCodeFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.name != "missing config" {
				args = append(args, "--config", env.config)
			}
			_, _, err := execute(t, args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestConvertCommandNotObject(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")
	if err := os.WriteFile(env.input, []byte(`[1, 2]`), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := execute(t, "convert", env.input, "--config", env.config)
	if !errors.Is(err, errors.ErrCodeInvalidDocument) {
		t.Errorf("error = %v, want INVALID_DOCUMENT", err)
	}
	if _, err := os.Stat(filepath.Join(env.dir, DefaultGraphName)); !os.IsNotExist(err) {
		t.Error("no graph should be written for an invalid document")
	}
}

func TestRenderCommand(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")

	out, _, err := execute(t, "render", env.input, "--config", env.config, "-f", "dot", "--types", "label,sublabel")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("output is not DOT: %q", out)
	}
	if !strings.Contains(out, `"Warner"`) || !strings.Contains(out, `"Atlantic"`) {
		t.Errorf("label nodes missing:\n%s", out)
	}
	if strings.Contains(out, `"Ana"`) {
		t.Errorf("artist should be filtered out:\n%s", out)
	}
}

func TestRenderCommandConfigDefaults(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n\n[render]\ntypes = [\"artist\"]\ndetailed = true\n")
	outPath := filepath.Join(env.dir, "graph.dot")

	if _, _, err := execute(t, "render", env.input, "--config", env.config, "-f", "dot", "-o", outPath); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"Ana" [label="Ana\nartist"`) {
		t.Errorf("detailed artist node missing:\n%s", data)
	}
	if strings.Contains(string(data), `"Warner" [`) {
		t.Errorf("label node should be filtered out:\n%s", data)
	}
}

func TestRenderCommandErrors(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"bad format", []string{"-f", "gif"}, errors.ErrCodeInvalidFormat},
		{"bad types", []string{"--types", "planet"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"render", env.input, "--config", env.config}, tt.args...)
			_, _, err := execute(t, args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestStatsCommand(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")

	out, _, err := execute(t, "stats", env.input, "--config", env.config)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"label", "sublabel", "artist", "song", "collaborator", "links", "malformed"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCommandPlain(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")

	out, _, err := execute(t, "inspect", env.input, "--config", env.config, "--plain")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	want := "{\n  \"reason\": \"Missing artistName and name\",\n  \"entry\": {}\n}\n"
	if out != want {
		t.Errorf("inspect output = %q, want %q", out, want)
	}
}

func TestPublishCommandNoSink(t *testing.T) {
	t.Setenv("LABELGRAPH_MONGO_URI", "")
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")

	_, _, err := execute(t, "publish", env.input, "--config", env.config)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}

	_, _, err = execute(t, "publish", env.input, "--config", env.config, "--neo4j")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("--neo4j without uri: error = %v, want INVALID_CONFIG", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	env := newTestEnv(t, "[cache]\nbackend = \"file\"\ndir = \"cache\"\n")

	if _, _, err := execute(t, "convert", env.input, "--config", env.config); err != nil {
		t.Fatalf("first convert: %v", err)
	}
	if _, _, err := execute(t, "convert", env.input, "--config", env.config); err != nil {
		t.Fatalf("second convert: %v", err)
	}

	shards, err := os.ReadDir(filepath.Join(env.dir, "cache"))
	if err != nil {
		t.Fatalf("cache dir: %v", err)
	}
	if len(shards) == 0 {
		t.Error("expected cached entries after convert")
	}
}
