package spatiolite

import "time"

// Item is an immutable stored value: an owned byte payload plus an
// optional absolute expiration. A nil ExpiresAt means "never expires".
// Items carry no creation timestamp; replacing a key's value replaces
// the whole Item.
type Item struct {
	Value     []byte
	ExpiresAt *time.Time
}

// Expired reports whether the item's expiration, if any, is at or
// before now. A nil ExpiresAt is never expired.
func (it Item) Expired(now time.Time) bool {
	return it.ExpiresAt != nil && !it.ExpiresAt.After(now)
}

// SetOptions customizes a Put. At most one of TTL/ExpiresAt should be
// set; TTL takes precedence and is converted to an absolute time at
// write time via now()+TTL.
type SetOptions struct {
	TTL       time.Duration
	ExpiresAt *time.Time
}

func (o *SetOptions) resolveExpiry(now time.Time, defaultTTL time.Duration) *time.Time {
	if o != nil {
		if o.TTL > 0 {
			t := now.Add(o.TTL)
			return &t
		}
		if o.ExpiresAt != nil {
			t := *o.ExpiresAt
			return &t
		}
		return nil
	}
	if defaultTTL > 0 {
		t := now.Add(defaultTTL)
		return &t
	}
	return nil
}

// Stats reports point-in-time counters about an open store.
type Stats struct {
	KeyCount           int
	AOFSizeBytes       int64
	ExpiredCountSwept  uint64
	RewriteCount       uint64
	Checksum           uint64
}
