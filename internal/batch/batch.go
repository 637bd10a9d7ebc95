// Package batch implements the staging buffer for the atomic batch
// engine. A Batch only accumulates operations; applying them
// atomically to the store and AOF is the top-level db's job, since
// that's where the exclusive lock lives.
package batch

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two operation types a batch can stage.
type Kind int

const (
	Put Kind = iota
	Delete
)

// Op is one staged operation.
type Op struct {
	Kind      Kind
	Key       []byte
	Value     []byte
	ExpiresAt *time.Time
}

// Batch is the caller-built staging buffer passed into DB.Atomic's
// closure. Operations are recorded in call order, which must be
// preserved all the way into the AOF. ID is purely observational, for
// diagnostic logging around a commit -- the storage engine never
// inspects it.
type Batch struct {
	ID  uuid.UUID
	ops []Op
}

// New returns an empty batch, stamped with a fresh random ID.
func New() *Batch {
	return &Batch{ID: uuid.New()}
}

// Put stages a SET of key to value with an already-resolved absolute
// expiration (or nil for no expiration).
func (b *Batch) Put(key, value []byte, expiresAt *time.Time) {
	b.ops = append(b.ops, Op{Kind: Put, Key: key, Value: value, ExpiresAt: expiresAt})
}

// Delete stages a DELETE of key.
func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, Op{Kind: Delete, Key: key})
}

// Ops returns the staged operations in call order.
func (b *Batch) Ops() []Op {
	return b.ops
}

// Len reports how many operations are staged.
func (b *Batch) Len() int {
	return len(b.ops)
}
