package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/octavate/labelgraph/pkg/labelgraph"
)

// newEncoder returns an encoder that indents with two spaces and leaves
// non-ASCII and HTML characters unescaped.
func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc
}

// WriteGraph encodes g as an indented {"nodes": [...], "links": [...]} object.
func WriteGraph(w io.Writer, g labelgraph.Graph) error {
	if g.Nodes == nil {
		g.Nodes = []labelgraph.Node{}
	}
	if g.Links == nil {
		g.Links = []labelgraph.Link{}
	}
	if err := newEncoder(w).Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportGraph writes g to a JSON file at path.
// This is a convenience wrapper around [WriteGraph] for file-based output.
func ExportGraph(g labelgraph.Graph, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteGraph(w, g) })
}

// WriteMalformed writes one indented JSON block per entry, each followed by a
// newline. Nothing is written for an empty slice.
func WriteMalformed(w io.Writer, entries []labelgraph.MalformedEntry) error {
	enc := newEncoder(w)
	for i, e := range entries {
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode entry %d: %w", i, err)
		}
	}
	return nil
}

// ExportMalformed writes entries to the log file at path, truncating it.
// The file is created even when there are no entries.
func ExportMalformed(entries []labelgraph.MalformedEntry, path string) error {
	return writeFile(path, func(w io.Writer) error { return WriteMalformed(w, entries) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
