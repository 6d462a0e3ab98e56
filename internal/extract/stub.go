//go:build !cgo

// Package extract derives structural fact sets from source code using
// tree-sitter. This stub is used when CGO is not available.
package extract

import (
	"context"

	"patcheck/internal/errors"
	"patcheck/internal/factset"
)

// Extractor derives fact sets from source files using tree-sitter.
// This is a stub implementation when CGO is not available.
type Extractor struct{}

// NewExtractor creates a new fact extractor.
// Returns nil when CGO is not available.
func NewExtractor() *Extractor {
	return nil
}

// ExtractFile extracts a fact set from a single source file.
// Stub implementation returns an error.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*factset.FactSet, error) {
	return nil, errors.Newf(errors.ExtractionFailed, "fact extraction requires CGO (tree-sitter)")
}

// ExtractSource extracts a fact set from source bytes.
// Stub implementation returns an error.
func (e *Extractor) ExtractSource(ctx context.Context, source []byte, lang Language, name string) (*factset.FactSet, error) {
	return nil, errors.Newf(errors.ExtractionFailed, "fact extraction requires CGO (tree-sitter)")
}

// IsAvailable returns whether fact extraction is available.
func IsAvailable() bool {
	return false
}
