package cli

import (
	"context"
	"testing"

	"github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
	"github.com/octavate/labelgraph/pkg/storage/mongostore"
)

// memRuns is an in-memory runFinder; the last run is the latest.
type memRuns []*mongostore.Run

func (m memRuns) Latest(context.Context) (*mongostore.Run, error) {
	if len(m) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no stored runs")
	}
	return m[len(m)-1], nil
}

func (m memRuns) Get(_ context.Context, id string) (*mongostore.Run, error) {
	for _, r := range m {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "run %s not found", id)
}

func storedRun(t *testing.T, source, doc string) *mongostore.Run {
	t.Helper()
	d, err := labelgraph.Decode([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	res := labelgraph.Build(d)
	run, err := mongostore.NewRun(source, "hash-"+source, res.Graph, res.Malformed)
	if err != nil {
		t.Fatal(err)
	}
	return run
}

func TestFindRun(t *testing.T) {
	older := storedRun(t, "old.json", `{"L": [{"artistName": "A"}]}`)
	newer := storedRun(t, "new.json", testDocument)
	runs := memRuns{older, newer}

	tests := []struct {
		name     string
		finder   runFinder
		ref      string
		wantID   string
		wantCode errors.Code
	}{
		{name: "latest", finder: runs, ref: "latest", wantID: newer.ID},
		{name: "by id", finder: runs, ref: older.ID, wantID: older.ID},
		{name: "unknown id", finder: runs, ref: "nope", wantCode: errors.ErrCodeNotFound},
		{name: "latest of none", finder: memRuns{}, ref: "latest", wantCode: errors.ErrCodeNotFound},
		{name: "empty ref", finder: runs, ref: "", wantCode: errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, err := findRun(context.Background(), tt.finder, tt.ref)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("findRun: %v", err)
			}
			if run.ID != tt.wantID {
				t.Errorf("ID = %s, want %s", run.ID, tt.wantID)
			}
		})
	}
}

func TestRunResult(t *testing.T) {
	run := storedRun(t, "in.json", testDocument)

	res, err := runResult(run)
	if err != nil {
		t.Fatalf("runResult: %v", err)
	}
	if res.Stats.Nodes != 5 || res.Stats.Links != 4 || res.Stats.Malformed != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.InputHash != "hash-in.json" {
		t.Errorf("InputHash = %q", res.InputHash)
	}
	if res.GraphHash == "" {
		t.Error("GraphHash should be set for render cache keys")
	}
	if res.Stats.Counts[labelgraph.TypeArtist] != 1 {
		t.Errorf("counts = %v", res.Stats.Counts)
	}

	run.Payload = []byte("not json")
	if _, err := runResult(run); !errors.Is(err, errors.ErrCodeStorage) {
		t.Errorf("corrupt payload error = %v, want STORAGE", err)
	}
}

func TestStoredRunFlags(t *testing.T) {
	t.Setenv("LABELGRAPH_MONGO_URI", "")
	env := newTestEnv(t, "[cache]\nbackend = \"none\"\n")

	tests := []struct {
		name     string
		args     []string
		wantCode errors.Code
	}{
		{"inspect without mongo", []string{"inspect", "--run", "latest", "--plain"}, errors.ErrCodeInvalidConfig},
		{"serve without mongo", []string{"serve", "--run", "latest"}, errors.ErrCodeInvalidConfig},
		{"inspect with input and run", []string{"inspect", env.input, "--run", "latest", "--plain"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--config", env.config)
			if _, _, err := execute(t, args...); !errors.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}
