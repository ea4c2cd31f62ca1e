package graphstore

import "errors"

var (
	// ErrNodeMissing is returned by operations that require an existing
	// node when the referenced id is not present in the graph.
	ErrNodeMissing = errors.New("graphstore: node missing")
	// ErrInvalidID is returned by GetOrAddNode when given an empty or
	// whitespace-only id.
	ErrInvalidID = errors.New("graphstore: invalid id")
)
