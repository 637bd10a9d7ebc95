// Package expiry implements the secondary expiration index: an
// ordered mapping from absolute expiration time to the keys expiring
// then, used for the background sweep.
package expiry

import (
	"bytes"
	"time"

	"github.com/tidwall/btree"
)

// Entry pairs an expiration time with the key that expires then. The
// index is ordered primarily by At so the sweeper can scan from the
// head and stop at the first entry that isn't due yet.
type Entry struct {
	At  time.Time
	Key []byte
}

func less(a, b Entry) bool {
	if a.At.Before(b.At) {
		return true
	}
	if a.At.After(b.At) {
		return false
	}
	return bytes.Compare(a.Key, b.Key) < 0
}

// Index is the ordered expiration-time-to-key mapping. Like Store, it
// is not concurrency-safe by itself; the top-level db serializes all
// access under its single RWMutex alongside the key store and AOF, so
// that (E, K) additions/removals never race with a concurrent sweep.
type Index struct {
	tree *btree.BTreeG[Entry]
}

// New returns an empty expiration index.
func New() *Index {
	return &Index{tree: btree.NewBTreeG(less)}
}

// Add records that key expires at t. Callers must have already removed
// any prior expiration entry for key (see Remove) so that at most one
// (time, key) entry exists per live key with an expiration.
func (idx *Index) Add(t time.Time, key []byte) {
	idx.tree.Set(Entry{At: t, Key: key})
}

// Remove deletes the (t, key) entry, if present. A no-op if the key
// had no expiration or a different one.
func (idx *Index) Remove(t time.Time, key []byte) {
	idx.tree.Delete(Entry{At: t, Key: key})
}

// Len returns the number of tracked (time, key) pairs.
func (idx *Index) Len() int {
	return idx.tree.Len()
}

// Due returns up to limit entries whose expiration is at or before
// now, in ascending time order, without removing them. A limit <= 0
// means unbounded. Callers are expected to verify each key still
// holds that exact expiration before deleting it from the live store
// (guarding the replaced-then-swept race), then call Remove.
func (idx *Index) Due(now time.Time, limit int) []Entry {
	var due []Entry
	idx.tree.Scan(func(e Entry) bool {
		if e.At.After(now) {
			return false
		}
		due = append(due, e)
		return limit <= 0 || len(due) < limit
	})
	return due
}
