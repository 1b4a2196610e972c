// Package cache stores per-document analysis results keyed by a hash of
// the document's bytes, so a re-submitted file skips parsing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// Entry is what survives parsing: the outline and the linearized text the
// chunker needs.
type Entry struct {
	Outline  doctree.Outline `json:"outline"`
	Strategy string          `json:"strategy,omitempty"`
	Text     string          `json:"text"`
}

// Cache is a key/value store of analysis entries.
type Cache interface {
	// Get returns the entry for key; ok is false on a miss.
	Get(ctx context.Context, key string) (entry *Entry, ok bool, err error)
	Put(ctx context.Context, key string, e Entry) error
	Close() error
}

// Key derives the cache key for a document's content.
func Key(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
