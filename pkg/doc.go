// Package pkg provides the libraries behind labelgraph.
//
// # Overview
//
// Labelgraph flattens a record-label catalog (labels that hold sublabels or
// artists, artists that hold top tracks, tracks that name collaborators)
// into the node-link graph a 3D force-graph viewer loads, plus a log of
// every entry it had to skip. The pkg directory is organized into:
//
//  1. [labelgraph] - Domain logic (decoding, graph building, filtering)
//  2. [io] - Reading documents, writing the graph and the malformed log
//  3. [pipeline] - Orchestration (convert → render) with caching
//  4. [render/nodelink] - DOT and SVG diagrams
//  5. Infrastructure - [cache], [storage], [httputil], [observability], [errors]
//
// # Architecture
//
// The typical data flow:
//
//	Catalog JSON (file or URL)
//	         ↓
//	    [labelgraph.Decode] (ordered top-level labels)
//	         ↓
//	    [labelgraph.Build] (nodes, links, malformed entries)
//	         ↓
//	    graph JSON / malformed log / DOT / SVG / MongoDB / Neo4j
//
// # Quick Start
//
//	doc, err := labelgraph.Decode(data)
//	if err != nil {
//	    return err
//	}
//	res := labelgraph.Build(doc)
//	if err := io.ExportGraph(res.Graph, "Simplified_OctavateGraph.json"); err != nil {
//	    return err
//	}
//	if err := io.ExportMalformed(res.Malformed, "malformed_entries.log"); err != nil {
//	    return err
//	}
//
// Most callers go through [pipeline.Runner] instead, which adds caching,
// logging and rendering on top of the same calls.
//
// [labelgraph]: github.com/octavate/labelgraph/pkg/labelgraph
// [labelgraph.Decode]: github.com/octavate/labelgraph/pkg/labelgraph#Decode
// [labelgraph.Build]: github.com/octavate/labelgraph/pkg/labelgraph#Build
// [io]: github.com/octavate/labelgraph/pkg/io
// [pipeline]: github.com/octavate/labelgraph/pkg/pipeline
// [pipeline.Runner]: github.com/octavate/labelgraph/pkg/pipeline#Runner
// [render/nodelink]: github.com/octavate/labelgraph/pkg/render/nodelink
// [cache]: github.com/octavate/labelgraph/pkg/cache
// [storage]: github.com/octavate/labelgraph/pkg/storage
// [httputil]: github.com/octavate/labelgraph/pkg/httputil
// [observability]: github.com/octavate/labelgraph/pkg/observability
// [errors]: github.com/octavate/labelgraph/pkg/errors
package pkg
