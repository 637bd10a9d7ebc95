package geocodec

import "testing"

func TestCompoundKeyRoundTrip(t *testing.T) {
	key := GeohashKey("cities", "u09tv")
	prefix, scheme, token, ok := ParseCompoundKey(key)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if prefix != "cities" || scheme != SchemeGeohash || token != "u09tv" {
		t.Fatalf("unexpected parse result: prefix=%s scheme=%s token=%s", prefix, scheme, token)
	}
}

func TestS2KeyRoundTrip(t *testing.T) {
	key := S2CellKey("assets", 123456789)
	prefix, scheme, token, ok := ParseCompoundKey(key)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if prefix != "assets" || scheme != SchemeS2 {
		t.Fatalf("unexpected parse result: prefix=%s scheme=%s", prefix, scheme)
	}
	id, err := ParseS2Token(token)
	if err != nil {
		t.Fatal(err)
	}
	if id != 123456789 {
		t.Fatalf("unexpected s2 id: %d", id)
	}
}

func TestGridKey(t *testing.T) {
	key := GridKey("grid", 5, 10, -3)
	if key != "grid:grid:5:10:-3" {
		t.Fatalf("unexpected grid key: %s", key)
	}
}

func TestParseCompoundKeyWithColonsInPrefix(t *testing.T) {
	key := "tenant:42:cities:gh:u09tv"
	prefix, scheme, token, ok := ParseCompoundKey(key)
	if !ok {
		t.Fatal("expected successful parse")
	}
	if prefix != "tenant:42:cities" || scheme != SchemeGeohash || token != "u09tv" {
		t.Fatalf("unexpected parse: prefix=%s scheme=%s token=%s", prefix, scheme, token)
	}
}

func TestParseCompoundKeyNoScheme(t *testing.T) {
	if _, _, _, ok := ParseCompoundKey("plain-key-no-scheme"); ok {
		t.Fatal("expected no match for a key with no scheme marker")
	}
}
