// Package nodelink renders label graphs as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(res.Graph, nodelink.Options{Types: labelgraph.DefaultViewTypes})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Types: node types to keep. Nodes whose label is empty or unknown are
//     dropped as well, see [labelgraph.Filter].
//   - Detailed: node labels include the node type, links carry the owning label.
//
// # Styling
//
// Each node is filled with the color of the label it belongs to
// ([LabelColors], falling back to [FallbackColor]). Labels and sublabels are
// drawn as large boxes, artists as ellipses, songs as notes and collaborators
// as plain text. Links take the color of their source.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
package nodelink
