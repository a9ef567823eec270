package io

import (
	"errors"
	"io"
	"io/fs"
	"os"

	lgerrors "github.com/octavate/labelgraph/pkg/errors"
	"github.com/octavate/labelgraph/pkg/labelgraph"
)

// ReadDocument decodes a label document from r.
//
// ReadDocument returns an INVALID_DOCUMENT error if r does not contain valid
// JSON or the top-level value is not an object. It does not close r.
func ReadDocument(r io.Reader) (*labelgraph.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeInvalidInput, err, "read document")
	}
	return DecodeDocument(data)
}

// DecodeDocument is [ReadDocument] for data already in memory.
func DecodeDocument(data []byte) (*labelgraph.Document, error) {
	doc, err := labelgraph.Decode(data)
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeInvalidDocument, err, "decode document")
	}
	return doc, nil
}

// ImportDocument reads a label document from the file at path.
//
// A missing file yields a FILE_NOT_FOUND error; decoding failures are
// reported as by [ReadDocument].
func ImportDocument(path string) (*labelgraph.Document, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(data)
}

// ReadFile reads a whole input file, mapping a missing file to FILE_NOT_FOUND.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, lgerrors.Wrap(lgerrors.ErrCodeInvalidInput, err, "open %s", path)
	}
	return data, nil
}
