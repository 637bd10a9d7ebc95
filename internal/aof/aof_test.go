package aof

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
)

func TestEncodeDecodeSetRoundTrip(t *testing.T) {
	exp := time.Unix(1700000000, 0).UTC()
	rec := EncodeSet([]byte("k"), []byte("v"), &exp)

	dir := t.TempDir()
	path := filepath.Join(dir, "log.aof")
	if err := os.WriteFile(path, rec, 0o644); err != nil {
		t.Fatal(err)
	}

	var got []Record
	_, err := Replay(path, func(r Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %s", spew.Sdump(got))
	}
	if string(got[0].Key) != "k" || string(got[0].Value) != "v" {
		t.Fatalf("unexpected decoded record: %s", spew.Sdump(got[0]))
	}
	if got[0].ExpiresAt == nil || !got[0].ExpiresAt.Equal(exp) {
		t.Fatalf("expiration did not round-trip: %s", spew.Sdump(got[0].ExpiresAt))
	}
}

func TestReplayMissingFileIsNotAnError(t *testing.T) {
	tailTruncated, err := Replay(filepath.Join(t.TempDir(), "absent.aof"), func(Record) error { return nil })
	if err != nil || tailTruncated {
		t.Fatalf("expected a clean no-op for a missing file, got (%v, %v)", tailTruncated, err)
	}
}

func TestReplayTailTruncationIsTolerated(t *testing.T) {
	exp := time.Unix(1700000000, 0).UTC()
	full := EncodeSet([]byte("k"), []byte("v"), &exp)
	partial := EncodeSet([]byte("partial"), []byte("v2"), nil)
	// Cut the second (partial) record short, mid-value.
	truncated := append(append([]byte{}, full...), partial[:len(partial)-2]...)

	dir := t.TempDir()
	path := filepath.Join(dir, "log.aof")
	if err := os.WriteFile(path, truncated, 0o644); err != nil {
		t.Fatal(err)
	}

	var got []Record
	tailTruncated, err := Replay(path, func(r Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatalf("expected tail truncation to be tolerated, got error: %v", err)
	}
	if !tailTruncated {
		t.Fatal("expected tailTruncated=true")
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly the one intact record, got %s", spew.Sdump(got))
	}
}

func TestReplayBadOpByteIsFatal(t *testing.T) {
	bad := []byte{0x09, 0, 0, 0, 1, 'k'}
	dir := t.TempDir()
	path := filepath.Join(dir, "log.aof")
	if err := os.WriteFile(path, bad, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Replay(path, func(Record) error { return nil })
	if err != ErrInvalidFormat {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestLogAppendAndReplayAfterClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.aof")

	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Append(EncodeSet([]byte("a"), []byte("1"), nil)); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(EncodeDelete([]byte("a"))); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	var ops []byte
	_, err = Replay(path, func(r Record) error {
		ops = append(ops, r.Op)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 2 || ops[0] != opSet || ops[1] != opDelete {
		t.Fatalf("unexpected replayed ops: %v", ops)
	}
}

func TestRewriteCompactsAndPreservesLiveEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.aof")

	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := l.Append(EncodeSet([]byte("k"), []byte("v1"), nil)); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Flush(); err != nil {
		t.Fatal(err)
	}
	sizeBeforeRewrite := l.Size()

	err = l.Rewrite(func(yield func(key, value []byte, expiresAt *time.Time) bool) {
		yield([]byte("k"), []byte("v1"), nil)
	})
	if err != nil {
		t.Fatal(err)
	}
	if l.Size() >= sizeBeforeRewrite {
		t.Fatalf("expected rewrite to shrink the log: before=%d after=%d", sizeBeforeRewrite, l.Size())
	}

	var got []Record
	_, err = Replay(path, func(r Record) error {
		got = append(got, r)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got[0].Key) != "k" || string(got[0].Value) != "v1" {
		t.Fatalf("unexpected post-rewrite content: %s", spew.Sdump(got))
	}
}

func TestShouldRewriteThresholds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.aof")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if l.ShouldRewrite(1024, 100) {
		t.Fatal("empty log should never need a rewrite")
	}
	for i := 0; i < 100; i++ {
		l.Append(EncodeSet([]byte("k"), []byte("some longer value to grow the log"), nil))
	}
	if !l.ShouldRewrite(10, 1) {
		t.Fatal("expected a grown log past a low threshold to need a rewrite")
	}
}
