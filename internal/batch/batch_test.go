package batch

import "testing"

func TestBatchRecordsOpsInOrder(t *testing.T) {
	b := New()
	b.Put([]byte("x"), []byte("1"), nil)
	b.Delete([]byte("y"))
	b.Put([]byte("z"), []byte("3"), nil)

	ops := b.Ops()
	if len(ops) != 3 {
		t.Fatalf("expected 3 ops, got %d", len(ops))
	}
	if ops[0].Kind != Put || string(ops[0].Key) != "x" {
		t.Fatalf("unexpected first op: %+v", ops[0])
	}
	if ops[1].Kind != Delete || string(ops[1].Key) != "y" {
		t.Fatalf("unexpected second op: %+v", ops[1])
	}
	if ops[2].Kind != Put || string(ops[2].Key) != "z" {
		t.Fatalf("unexpected third op: %+v", ops[2])
	}
	if b.Len() != 3 {
		t.Fatalf("expected Len()=3, got %d", b.Len())
	}
}

func TestNewBatchHasUniqueID(t *testing.T) {
	a := New()
	b := New()
	if a.ID == b.ID {
		t.Fatal("expected distinct batch IDs")
	}
}
