// Package store implements the ordered key-value map at the heart of
// the database: a sorted mapping from byte keys to items with range
// and prefix scan support.
package store

import (
	"bytes"
	"time"

	"github.com/tidwall/btree"
)

// Entry is a stored key/value/expiration triple as held in the ordered map.
type Entry struct {
	Key       []byte
	Value     []byte
	ExpiresAt *time.Time
}

func less(a, b Entry) bool {
	return bytes.Compare(a.Key, b.Key) < 0
}

// Expired reports whether e's expiration, if any, is at or before now.
func (e Entry) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}

// Store is the ordered key store. It is not safe for concurrent use on
// its own; callers (the top-level db) serialize access with their own
// RWMutex alongside the expiration index and AOF writer.
type Store struct {
	tree *btree.BTreeG[Entry]
}

// New returns an empty ordered store.
func New() *Store {
	return &Store{tree: btree.NewBTreeG(less)}
}

// Put inserts or replaces the entry for key, returning the previous
// entry if one existed.
func (s *Store) Put(key, value []byte, expiresAt *time.Time) (Entry, bool) {
	old, had := s.tree.Set(Entry{Key: key, Value: value, ExpiresAt: expiresAt})
	return old, had
}

// Get returns the raw stored entry for key, with no expiration
// filtering -- callers apply lazy-expiration semantics themselves so
// that the store stays a pure ordered map.
func (s *Store) Get(key []byte) (Entry, bool) {
	return s.tree.Get(Entry{Key: key})
}

// Delete removes key, returning the previous entry if one existed.
func (s *Store) Delete(key []byte) (Entry, bool) {
	return s.tree.Delete(Entry{Key: key})
}

// Contains reports whether key is present, ignoring expiration.
func (s *Store) Contains(key []byte) bool {
	_, ok := s.tree.Get(Entry{Key: key})
	return ok
}

// Len returns the number of live entries, ignoring expiration.
func (s *Store) Len() int {
	return s.tree.Len()
}

// RangeScan iterates entries with key >= start (or from the beginning
// if start is nil) up to but excluding end (or to the end of the store
// if end is nil), calling fn for each. Iteration stops early if fn
// returns false.
func (s *Store) RangeScan(start, end []byte, fn func(Entry) bool) {
	pivot := Entry{}
	if start != nil {
		pivot.Key = start
	}
	s.tree.Ascend(pivot, func(e Entry) bool {
		if end != nil && bytes.Compare(e.Key, end) >= 0 {
			return false
		}
		return fn(e)
	})
}

// PrefixScan iterates every entry whose key starts with prefix, in
// lexicographic order, calling fn for each. It is O(log n + k): the
// exclusive upper bound is derived by incrementing the last non-0xFF
// byte of prefix, which lets Ascend stop as soon as the prefix run
// ends instead of scanning the whole tree.
func (s *Store) PrefixScan(prefix []byte, fn func(Entry) bool) {
	upper, unbounded := upperBound(prefix)
	s.tree.Ascend(Entry{Key: prefix}, func(e Entry) bool {
		if !unbounded && bytes.Compare(e.Key, upper) >= 0 {
			return false
		}
		// Defensive check guarding against a miscalculated bound: an
		// entry past the prefix run must never be yielded even if the
		// upper-bound arithmetic above is somehow wrong.
		if !bytes.HasPrefix(e.Key, prefix) {
			return false
		}
		return fn(e)
	})
}

// upperBound computes the exclusive upper bound for a prefix scan by
// incrementing the last byte that isn't already 0xFF and truncating
// after it. If every byte is 0xFF (or prefix is empty), there is no
// finite upper bound and the second return is true.
func upperBound(prefix []byte) ([]byte, bool) {
	if len(prefix) == 0 {
		return nil, true
	}
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] != 0xFF {
			upper[i]++
			return upper[:i+1], false
		}
	}
	return nil, true
}

// Snapshot calls fn for every live entry in key order. Used by the AOF
// rewrite path to materialize the compacted log.
func (s *Store) Snapshot(fn func(Entry) bool) {
	s.tree.Scan(fn)
}
