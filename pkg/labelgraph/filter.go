package labelgraph

import (
	"slices"
	"strings"
)

// UnknownLabel is the normalized name for nodes without a usable label context.
const UnknownLabel = "unknown"

// DefaultViewTypes are the node types shown by the 3D viewer.
var DefaultViewTypes = []NodeType{TypeLabel, TypeSublabel, TypeArtist}

// NormalizeLabel maps the empty name and any casing of the "unkown"
// misspelling to [UnknownLabel] and returns every other name unchanged.
// The comparison against [UnknownLabel] afterwards is exact, so "Unknown"
// remains a regular label.
func NormalizeLabel(label string) string {
	if label == "" || strings.ToLower(strings.TrimSpace(label)) == "unkown" {
		return UnknownLabel
	}
	return label
}

// Filter returns the subgraph a viewer would display: nodes whose type is in
// types (or [DefaultViewTypes] when none are given), plus the links between
// surviving nodes. Labels, sublabels and artists are also dropped when their
// label context is unknown; songs and collaborators carry no label and are
// kept whenever their type is selected. g is not modified.
func Filter(g Graph, types ...NodeType) Graph {
	if len(types) == 0 {
		types = DefaultViewTypes
	}

	keep := make(map[string]bool)
	out := Graph{Nodes: []Node{}, Links: []Link{}}
	for _, n := range g.Nodes {
		if !slices.Contains(types, n.NodeType()) {
			continue
		}
		if labelled(n.NodeType()) && NormalizeLabel(n.LabelContext()) == UnknownLabel {
			continue
		}
		keep[n.NodeID()] = true
		out.Nodes = append(out.Nodes, n)
	}
	for _, l := range g.Links {
		if keep[l.Source] && keep[l.Target] {
			out.Links = append(out.Links, l)
		}
	}
	return out
}

// ParseNodeTypes parses a comma-separated list of node types.
// Unknown names are reported via the second return value.
func ParseNodeTypes(s string) ([]NodeType, []string) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var types []NodeType
	var unknown []string
	for _, part := range strings.Split(s, ",") {
		t := NodeType(strings.ToLower(strings.TrimSpace(part)))
		if !slices.Contains(NodeTypes, t) {
			unknown = append(unknown, part)
			continue
		}
		types = append(types, t)
	}
	return types, unknown
}

// Counts tallies nodes per type.
func Counts(g Graph) map[NodeType]int {
	counts := make(map[NodeType]int, len(NodeTypes))
	for _, n := range g.Nodes {
		counts[n.NodeType()]++
	}
	return counts
}

func labelled(t NodeType) bool {
	return t == TypeLabel || t == TypeSublabel || t == TypeArtist
}
