package nodelink

import (
	"strings"
	"testing"

	"github.com/octavate/labelgraph/pkg/labelgraph"
)

func buildGraph(t *testing.T, src string) labelgraph.Graph {
	t.Helper()
	doc, err := labelgraph.Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return labelgraph.Build(doc).Graph
}

const sample = `{
	"Warner Music Group": {"Atlantic": [{"artistName": "Ana", "topTracks": [{"song": {"songName": "Hit", "songCollaborators": ["Bo"]}}]}]},
	"Indie": [{"artistName": "Cy"}]
}`

func TestToDOT(t *testing.T) {
	g := buildGraph(t, sample)
	dot := ToDOT(g, Options{})

	for _, want := range []string{
		"digraph G {",
		`"Warner Music Group" [label="Warner Music Group", fillcolor="#e74c3c", shape=box, fontsize=60];`,
		`"Atlantic" [label="Atlantic", fillcolor="#e74c3c", shape=box, fontsize=30];`,
		`"Ana" [label="Ana", fillcolor="#e74c3c", shape=ellipse];`,
		`"Ana::Hit" [label="Hit", fillcolor="#95a5a6", shape=note];`,
		`"Bo" [label="Bo", fillcolor="#95a5a6", shape=plaintext];`,
		`"Cy" [label="Cy", fillcolor="#95a5a6", shape=ellipse];`,
		`"Warner Music Group" -> "Atlantic" [color="#e74c3c"];`,
		`"Ana::Hit" -> "Bo" [color="#95a5a6"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("DOT should end with closing brace")
	}
}

func TestToDOTTypesAndDetailed(t *testing.T) {
	g := buildGraph(t, sample)
	dot := ToDOT(g, Options{Types: labelgraph.DefaultViewTypes, Detailed: true})

	if strings.Contains(dot, "Ana::Hit") || strings.Contains(dot, `"Bo"`) {
		t.Errorf("song and collaborator nodes should be filtered out:\n%s", dot)
	}
	if !strings.Contains(dot, `label="Ana\nartist"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `"Atlantic" -> "Ana" [color="#e74c3c", label="Warner Music Group"];`) {
		t.Errorf("detailed link label missing:\n%s", dot)
	}
}

func TestToDOTSkipsDanglingLinks(t *testing.T) {
	g := labelgraph.Graph{
		Nodes: []labelgraph.Node{labelgraph.LabelNode{ID: "L", Type: labelgraph.TypeLabel, Label: "L"}},
		Links: []labelgraph.Link{{Source: "L", Target: "ghost"}},
	}
	if dot := ToDOT(g, Options{}); strings.Contains(dot, "ghost") {
		t.Errorf("dangling link rendered:\n%s", dot)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		node labelgraph.Node
		want string
	}{
		{labelgraph.LabelNode{ID: "L"}, "L"},
		{labelgraph.ArtistNode{ID: "id-1", Name: "Ana"}, "Ana"},
		{labelgraph.SongNode{ID: "Ana::Hit", SongName: "Hit"}, "Hit"},
		{labelgraph.CollaboratorNode{ID: "Bo", Name: "Bo"}, "Bo"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.node); got != tt.want {
			t.Errorf("DisplayName(%v) = %q, want %q", tt.node, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should be unchanged")
	}
}
