package trajectory

import (
	"sort"
	"strings"
	"testing"
)

func TestBuildKeyZeroPadsTimestamp(t *testing.T) {
	k1, err := BuildKey("bus-1", 9, 48.8566, 2.3522)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := BuildKey("bus-1", 10, 48.8566, 2.3522)
	if err != nil {
		t.Fatal(err)
	}
	// Without zero-padding "9" would sort after "10" lexicographically;
	// the padded keys must sort in numeric timestamp order instead.
	keys := []string{k2, k1}
	sort.Strings(keys)
	if keys[0] != k1 {
		t.Fatalf("expected %q to sort before %q, got order %v", k1, k2, keys)
	}
}

func TestBuildKeyEmbedsObjectIDAndGeohash(t *testing.T) {
	k, err := BuildKey("bus-1", 42, 48.8566, 2.3522)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(k, "bus-1:") {
		t.Fatalf("expected key to start with object id, got %s", k)
	}
	parts := strings.Split(k, ":")
	if len(parts) != 3 {
		t.Fatalf("expected 3 colon-separated fields, got %v", parts)
	}
	if len(parts[1]) != 20 {
		t.Fatalf("expected zero-padded timestamp of width 20, got %q", parts[1])
	}
	if len(parts[2]) != FineGeohashPrecision {
		t.Fatalf("expected geohash of length %d, got %q", FineGeohashPrecision, parts[2])
	}
}

func TestEncodeDecodeValueRoundTrip(t *testing.T) {
	v := EncodeValue(48.8566, 2.3522, 1700000000)
	s, err := DecodeValue(v)
	if err != nil {
		t.Fatal(err)
	}
	if s.Lat != 48.8566 || s.Lon != 2.3522 || s.Ts != 1700000000 {
		t.Fatalf("unexpected decoded sample: %+v", s)
	}
}

func TestInRange(t *testing.T) {
	if !InRange(5, 1, 10) {
		t.Fatal("expected 5 to be within [1,10]")
	}
	if InRange(11, 1, 10) {
		t.Fatal("expected 11 to be outside [1,10]")
	}
}

func TestSortByTimestamp(t *testing.T) {
	samples := []Sample{{Ts: 3}, {Ts: 1}, {Ts: 2}}
	SortByTimestamp(samples)
	for i := 0; i < len(samples)-1; i++ {
		if samples[i].Ts > samples[i+1].Ts {
			t.Fatalf("samples not sorted: %+v", samples)
		}
	}
}

func TestPrefix(t *testing.T) {
	if Prefix("bus-1") != "bus-1:" {
		t.Fatalf("unexpected prefix: %s", Prefix("bus-1"))
	}
}
