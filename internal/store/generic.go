package store

import "golang.org/x/exp/constraints"

// clampNonNegative floors n at zero, used to normalize caller-supplied
// scan limits (a negative limit means "unbounded" everywhere else in
// this package, but arithmetic on it -- e.g. pre-sizing a slice --
// must never see a negative value).
func clampNonNegative[T constraints.Integer](n T) T {
	if n < 0 {
		return 0
	}
	return n
}

// CollectPrefix runs PrefixScan and returns up to limit matching
// entries as a slice (limit <= 0 means unbounded), the generic
// counterpart to the callback-based PrefixScan for callers that want a
// materialized result instead of iterating inline.
func (s *Store) CollectPrefix(prefix []byte, limit int) []Entry {
	bound := clampNonNegative(limit)
	out := make([]Entry, 0, minInt(bound, 64))
	s.PrefixScan(prefix, func(e Entry) bool {
		out = append(out, e)
		return limit <= 0 || len(out) < limit
	})
	return out
}

func minInt[T constraints.Integer](a, b T) T {
	if a < b {
		return a
	}
	return b
}
