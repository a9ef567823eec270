package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/octavate/labelgraph/pkg/labelgraph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Types restricts the diagram to these node types via [labelgraph.Filter].
	// When empty the graph is drawn as given.
	Types []labelgraph.NodeType

	// Detailed adds the node type to labels and the owning label to links.
	// When false, only the display name is shown.
	Detailed bool
}

// FallbackColor is used for labels without an assigned color.
const FallbackColor = "#95a5a6"

// LabelColors maps well-known record labels to their fill color.
var LabelColors = map[string]string{
	"Warner Music Group":       "#e74c3c",
	"Sony Music Entertainment": "#3498db",
	"Universal Music Group":    "#f1c40f",
	"Other Labels":             "#bdc3c7",
}

var fontSizes = map[labelgraph.NodeType]int{
	labelgraph.TypeLabel:    60,
	labelgraph.TypeSublabel: 30,
}

var shapes = map[labelgraph.NodeType]string{
	labelgraph.TypeLabel:        "box",
	labelgraph.TypeSublabel:     "box",
	labelgraph.TypeArtist:       "ellipse",
	labelgraph.TypeSong:         "note",
	labelgraph.TypeCollaborator: "plaintext",
}

// ToDOT converts a label graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Nodes are colored by the label that owns them. Links take the color of their
// source node. Links whose endpoints are not in the graph are skipped, since
// Graphviz would otherwise invent bare nodes for them.
func ToDOT(g labelgraph.Graph, opts Options) string {
	if len(opts.Types) > 0 {
		g = labelgraph.Filter(g, opts.Types...)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fontcolor=black, fontsize=10, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.5];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	colors := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		color := nodeColor(n)
		colors[n.NodeID()] = color
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), color)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.NodeID(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range g.Links {
		src, ok := colors[l.Source]
		if _, tok := colors[l.Target]; !ok || !tok {
			continue
		}
		attrs := []string{fmt.Sprintf("color=%q", src)}
		if opts.Detailed && l.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", l.Label))
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", l.Source, l.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// DisplayName returns the human-readable name of a node.
func DisplayName(n labelgraph.Node) string {
	switch n := n.(type) {
	case labelgraph.ArtistNode:
		return n.Name
	case labelgraph.SongNode:
		return n.SongName
	case labelgraph.CollaboratorNode:
		return n.Name
	}
	return n.NodeID()
}

func nodeColor(n labelgraph.Node) string {
	if c, ok := LabelColors[n.LabelContext()]; ok {
		return c
	}
	return FallbackColor
}

func fmtLabel(n labelgraph.Node, detailed bool) string {
	name := DisplayName(n)
	if !detailed {
		return name
	}
	return fmt.Sprintf("%s\n%s", name, n.NodeType())
}

func fmtAttrs(n labelgraph.Node, label, color string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", color),
	}
	if shape, ok := shapes[n.NodeType()]; ok {
		attrs = append(attrs, "shape="+shape)
	}
	if size, ok := fontSizes[n.NodeType()]; ok {
		attrs = append(attrs, "fontsize="+strconv.Itoa(size))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root <svg> tag so the drawing scales with its
// container: origin at 0,0 and width/height equal to the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
