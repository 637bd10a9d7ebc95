package store

import (
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
)

func TestPutGetDelete(t *testing.T) {
	s := New()
	if _, had := s.Put([]byte("a"), []byte("1"), nil); had {
		t.Fatal("expected no previous entry")
	}
	e, ok := s.Get([]byte("a"))
	if !ok {
		t.Fatal("expected key present")
	}
	if string(e.Value) != "1" {
		t.Fatalf("unexpected value: %s", spew.Sdump(e))
	}

	old, had := s.Put([]byte("a"), []byte("2"), nil)
	if !had || string(old.Value) != "1" {
		t.Fatalf("expected previous value 1, got %s", spew.Sdump(old))
	}

	deleted, had := s.Delete([]byte("a"))
	if !had || string(deleted.Value) != "2" {
		t.Fatalf("unexpected delete result: %s", spew.Sdump(deleted))
	}
	if s.Contains([]byte("a")) {
		t.Fatal("expected key gone")
	}
}

func TestRangeScanBounds(t *testing.T) {
	s := New()
	for _, k := range []string{"a", "b", "c", "d"} {
		s.Put([]byte(k), []byte(k), nil)
	}
	var got []string
	s.RangeScan([]byte("b"), []byte("d"), func(e Entry) bool {
		got = append(got, string(e.Key))
		return true
	})
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("unexpected range: %v", got)
	}
}

func TestPrefixScan(t *testing.T) {
	s := New()
	for _, k := range []string{"cities:ny", "cities:sf", "weather:ny"} {
		s.Put([]byte(k), []byte("v"), nil)
	}
	var got []string
	s.PrefixScan([]byte("cities:"), func(e Entry) bool {
		got = append(got, string(e.Key))
		return true
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %s", spew.Sdump(got))
	}
}

func TestPrefixScanAllFFBytes(t *testing.T) {
	s := New()
	s.Put([]byte{0xFF, 0xFF}, []byte("a"), nil)
	s.Put([]byte{0xFF, 0xFF, 0x00}, []byte("b"), nil)
	var got int
	s.PrefixScan([]byte{0xFF, 0xFF}, func(Entry) bool {
		got++
		return true
	})
	if got != 2 {
		t.Fatalf("expected 2 entries under an unbounded prefix, got %d", got)
	}
}

func TestExpiredEntryVisibleUntilSwept(t *testing.T) {
	s := New()
	past := time.Now().Add(-time.Hour)
	s.Put([]byte("k"), []byte("v"), &past)
	e, ok := s.Get([]byte("k"))
	if !ok {
		t.Fatal("store.Get ignores expiration; entry should still be present")
	}
	if !e.Expired(time.Now()) {
		t.Fatal("expected entry to report expired")
	}
}

func TestCollectPrefixLimit(t *testing.T) {
	s := New()
	for _, k := range []string{"p:1", "p:2", "p:3"} {
		s.Put([]byte(k), []byte("v"), nil)
	}
	got := s.CollectPrefix([]byte("p:"), 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %s", spew.Sdump(got))
	}
}
