// Package io reads label documents and writes node-link graphs and
// malformed-entry logs.
//
// # Input
//
// Use [ImportDocument] to read a label document from a file path, or
// [ReadDocument] to read from any io.Reader:
//
//	doc, err := io.ImportDocument("Complete_OctavateArtistsList.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A document that is not valid JSON, or whose top level is not an object, is
// rejected with an INVALID_DOCUMENT error. Nothing below the top level is
// validated here; see [labelgraph.Build].
//
// # Graph Output
//
// [WriteGraph] and [ExportGraph] write the graph as a JSON object with two
// arrays, "nodes" and "links", indented with two spaces:
//
//	{
//	  "nodes": [
//	    {"id": "LabelA", "type": "label", "label": "LabelA"},
//	    ...
//	  ],
//	  "links": [
//	    {"source": "LabelA", "target": "X", "label": "LabelA"},
//	    ...
//	  ]
//	}
//
// Output is UTF-8. Non-ASCII characters and the HTML-sensitive characters
// <, > and & are written literally rather than escaped.
//
// # Malformed-Entry Log
//
// [WriteMalformed] and [ExportMalformed] write each diagnostic as its own
// indented JSON block followed by a newline, in discovery order. The file is
// meant for people reading it, not for re-import.
//
// [labelgraph.Build]: github.com/octavate/labelgraph/pkg/labelgraph.Build
package io
