// Package cache provides structural interning for hlsltype.Type values.
//
// The teacher's internal/cache package hashed file contents on disk to
// decide whether a generated artifact needed rebuilding. A compilation
// context never touches disk (spec section 5: "No operation may suspend
// or block on external I/O within the core"), so the disk-backed
// Load/Save/NeedsRegeneration API has no home here. What survives is the
// shape: a hash-keyed map guarding repeat construction of an equivalent
// value. Here the "file contents" are a type's structural signature (its
// canonical string form) and the "artifact" is the *hlsltype.Type pointer,
// so that Registry.NewScalar/NewVector/NewMatrix/NewObject return a shared
// pointer instead of a fresh allocation when an identical type has already
// been built - mirroring hlsltype.Equal without an O(n) scan of every owned
// type. Clone, NewArray and NewStruct always allocate a new Type.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache interns values of type T keyed by a caller-supplied structural
// signature string.
type Cache[T any] struct {
	entries map[string]T
}

// New creates an empty interning cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[string]T)}
}

// Key derives a stable, fixed-length cache key from an arbitrary
// structural signature, so callers can build keys out of long or
// variable-width descriptions (e.g. a struct's full field list) without
// the map itself paying for it.
func Key(signature string) string {
	sum := sha256.Sum256([]byte(signature))
	return hex.EncodeToString(sum[:])
}

// Get returns the interned value for key, if present.
func (c *Cache[T]) Get(key string) (T, bool) {
	v, ok := c.entries[key]
	return v, ok
}

// Put interns value under key, returning it unchanged for call-chaining.
func (c *Cache[T]) Put(key string, value T) T {
	c.entries[key] = value
	return value
}

// Len reports how many distinct structural signatures have been interned.
func (c *Cache[T]) Len() int {
	return len(c.entries)
}

// Clear discards every interned entry. Used when a Registry is torn down
// so the cache does not outlive the arena of Types it points into (spec
// section 5's whole-context teardown).
func (c *Cache[T]) Clear() {
	c.entries = make(map[string]T)
}
