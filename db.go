// Package spatiolite implements an embedded spatio-temporal key-value
// store: durable ordered key-value storage augmented with geographic
// point indexing, trajectory storage, per-key TTL, and atomic
// multi-operation batches, all behind a single concurrency-controlled
// facade (DB).
package spatiolite

import (
	"bytes"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/sitan2008/spatiolite/internal/aof"
	"github.com/sitan2008/spatiolite/internal/batch"
	"github.com/sitan2008/spatiolite/internal/expiry"
	"github.com/sitan2008/spatiolite/internal/geo"
	"github.com/sitan2008/spatiolite/internal/geocodec"
	"github.com/sitan2008/spatiolite/internal/spatialquery"
	"github.com/sitan2008/spatiolite/internal/store"
	"github.com/sitan2008/spatiolite/internal/trajectory"
)

const memoryPath = ":memory:"

// LogFunc is a printf-style logging hook: plain functions, no logging
// package dependency forced on the caller.
type LogFunc func(format string, args ...interface{})

func defaultLogFunc(prefix string) LogFunc {
	return func(format string, args ...interface{}) {
		log.Printf("spatiolite: "+prefix+": "+format, args...)
	}
}

func noopLogFunc(string, ...interface{}) {}

func firstNonNilLogFunc(f LogFunc, fallback LogFunc) LogFunc {
	if f != nil {
		return f
	}
	return fallback
}

// DB is the single concurrency-controlled facade over the ordered key
// store, expiration index, and AOF. A single RWMutex guards all three:
// concurrent reads, exclusive writes, and the AOF handle is never
// touched without the lock held.
type DB struct {
	mu sync.RWMutex

	store  *store.Store
	expIdx *expiry.Index
	log    *aof.Log

	path       string
	memoryOnly bool
	closed     bool
	degraded   error

	config Config

	dirty bool // set by writers under SyncEverySecond, cleared by the fsync driver

	expiredSwept uint64
	rewriteCount uint64

	stopCh chan struct{}
	wg     sync.WaitGroup

	logInfo    LogFunc
	logWarning LogFunc
	logError   LogFunc
}

// Open opens (or creates) a store at path. Use ":memory:" or call
// Memory for a non-persistent store. On open, any existing AOF is
// replayed into the in-memory store first, restoring the keys and
// values it held before the previous close, with expirations at the
// whole-second resolution the AOF stores them in; then the background
// sweeper (and, for SyncEverySecond, the fsync driver) are started.
func Open(path string, opts ...Option) (*DB, error) {
	cfg := NewConfig(opts...)
	db := &DB{
		store:      store.New(),
		expIdx:     expiry.New(),
		path:       path,
		memoryOnly: path == memoryPath,
		config:     cfg,
		stopCh:     make(chan struct{}),
		logInfo:    firstNonNilLogFunc(cfg.LogInfo, defaultLogFunc("info")),
		logWarning: firstNonNilLogFunc(cfg.LogWarning, defaultLogFunc("warning")),
		logError:   firstNonNilLogFunc(cfg.LogError, defaultLogFunc("error")),
	}

	if !db.memoryOnly {
		tailTruncated, err := aof.Replay(path, func(rec aof.Record) error {
			return db.applyRecord(rec)
		})
		if err != nil {
			return nil, wrapErr(KindIO, "replay failed", err)
		}
		if tailTruncated {
			db.logWarning("dropped a partial record at the tail of %s during replay", path)
		}

		l, err := aof.Open(path)
		if err != nil {
			return nil, wrapErr(KindIO, "open AOF", err)
		}
		db.log = l
	}

	db.startBackgroundTasks()
	return db, nil
}

// Memory opens a non-persistent, in-memory-only store.
func Memory(opts ...Option) (*DB, error) {
	return Open(memoryPath, opts...)
}

// applyRecord applies one decoded AOF record directly to the in-memory
// store and expiration index during replay, with no AOF write-back.
func (db *DB) applyRecord(rec aof.Record) error {
	switch rec.Op {
	case 0: // SET
		db.applySet(rec.Key, rec.Value, rec.ExpiresAt)
	case 1: // DELETE
		db.applyDelete(rec.Key)
	default:
		return fmt.Errorf("spatiolite: unknown AOF op %d", rec.Op)
	}
	return nil
}

// applySet mutates the in-memory store and expiration index for a SET,
// keeping exactly one expiration-index entry per live key that has an
// expiration.
func (db *DB) applySet(key, value []byte, expiresAt *time.Time) {
	old, had := db.store.Put(key, value, expiresAt)
	if had && old.ExpiresAt != nil {
		db.expIdx.Remove(*old.ExpiresAt, old.Key)
	}
	if expiresAt != nil {
		db.expIdx.Add(*expiresAt, key)
	}
}

// applyDelete mutates the in-memory store and expiration index for a
// DELETE.
func (db *DB) applyDelete(key []byte) {
	old, had := db.store.Delete(key)
	if had && old.ExpiresAt != nil {
		db.expIdx.Remove(*old.ExpiresAt, old.Key)
	}
}

func (db *DB) startBackgroundTasks() {
	db.wg.Add(1)
	go db.sweepLoop()

	if !db.memoryOnly && db.config.SyncPolicy == SyncEverySecond {
		db.wg.Add(1)
		go db.fsyncLoop()
	}
}

// sweepLoop wakes at config.SweepInterval and removes due expirations,
// yielding the lock between batches of up to 4096 keys so it doesn't
// starve readers on a large expiring set.
func (db *DB) sweepLoop() {
	defer db.wg.Done()
	interval := db.config.SweepInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-db.stopCh:
			return
		case <-ticker.C:
			db.sweepOnce()
			db.mu.RLock()
			next := db.config.SweepInterval
			db.mu.RUnlock()
			if next <= 0 {
				next = time.Second
			}
			if next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

const sweepBatchSize = 4096

func (db *DB) sweepOnce() {
	for {
		db.mu.Lock()
		if db.closed {
			db.mu.Unlock()
			return
		}
		now := time.Now()
		due := db.expIdx.Due(now, sweepBatchSize)
		if len(due) == 0 {
			db.mu.Unlock()
			return
		}
		for _, e := range due {
			entry, ok := db.store.Get(e.Key)
			// Guard the replaced-then-swept race: only remove the live
			// item if it still holds exactly this expiration.
			if ok && entry.ExpiresAt != nil && entry.ExpiresAt.Equal(e.At) {
				db.store.Delete(e.Key)
				if db.log != nil {
					if err := db.log.Append(aof.EncodeDelete(e.Key)); err != nil {
						db.degraded = wrapErr(KindIO, "sweep delete append", err)
						db.logError("sweep failed to append delete for a key: %v", err)
					}
				}
				atomic.AddUint64(&db.expiredSwept, 1)
			}
			db.expIdx.Remove(e.At, e.Key)
		}
		if db.log != nil {
			db.markDirtyOrSyncLocked()
		}
		full := len(due) == sweepBatchSize
		db.mu.Unlock()
		if !full {
			return
		}
	}
}

func (db *DB) fsyncLoop() {
	defer db.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-db.stopCh:
			return
		case <-ticker.C:
			db.mu.Lock()
			if db.closed || db.log == nil || !db.dirty {
				db.mu.Unlock()
				continue
			}
			err := db.log.Sync()
			db.dirty = false
			db.mu.Unlock()
			if err != nil {
				db.logError("background fsync failed: %v", err)
			}
		}
	}
}

// markDirtyOrSyncLocked honors the sync policy after a write that has
// already been appended to the AOF buffer: Always flushes+fsyncs now;
// EverySecond just buffer-flushes and marks dirty for the background
// driver; Never does neither. Must be called with db.mu held.
func (db *DB) markDirtyOrSyncLocked() error {
	switch db.config.SyncPolicy {
	case SyncAlways:
		return db.log.Sync()
	case SyncEverySecond:
		if err := db.log.Flush(); err != nil {
			return err
		}
		db.dirty = true
		return nil
	default:
		return nil
	}
}

// Close flushes, fsyncs, and marks the store closed. Subsequent
// operations fail with ErrDatabaseClosed.
func (db *DB) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	var err error
	if db.log != nil {
		err = db.log.Close()
	}
	db.mu.Unlock()

	close(db.stopCh)
	db.wg.Wait()

	if err != nil {
		return wrapErr(KindIO, "close", err)
	}
	return nil
}

// Sync forces a flush+fsync of the AOF now, regardless of policy.
// After Sync returns nil, every mutation completed before the call is
// durable on disk.
func (db *DB) Sync() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrDatabaseClosed
	}
	if db.log == nil {
		return nil
	}
	if err := db.log.Sync(); err != nil {
		return wrapErr(KindIO, "sync", err)
	}
	db.dirty = false
	return nil
}

// Stats reports point-in-time counters about the store.
func (db *DB) Stats() (Stats, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return Stats{}, ErrDatabaseClosed
	}
	var aofSize int64
	if db.log != nil {
		aofSize = db.log.Size()
	}
	var h xxhash.Digest
	db.store.Snapshot(func(e store.Entry) bool {
		h.Write(e.Key)
		h.Write(e.Value)
		return true
	})
	return Stats{
		KeyCount:          db.store.Len(),
		AOFSizeBytes:      aofSize,
		ExpiredCountSwept: atomic.LoadUint64(&db.expiredSwept),
		RewriteCount:      atomic.LoadUint64(&db.rewriteCount),
		Checksum:          h.Sum64(),
	}, nil
}

// Config returns a copy of the store's current configuration.
func (db *DB) Config() Config {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.config
}

// SetConfig replaces the store's configuration. Background tasks pick
// up a new SweepInterval on their next wake; switching SyncPolicy
// to/from EverySecond takes effect on the next Close/Open cycle for
// the dedicated fsync driver goroutine (starting one mid-life would
// race the shutdown handshake, so spatiolite keeps that decision
// static for the life of an Open call).
func (db *DB) SetConfig(c Config) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.config = c
}

// Put inserts or replaces key's value, returning the previous value if
// any. If opts is nil and Config.DefaultTTL is set, that default TTL
// applies.
func (db *DB) Put(key, value []byte, opts *SetOptions) ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}

	now := time.Now()
	expiresAt := opts.resolveExpiry(now, db.config.DefaultTTL)

	if db.log != nil {
		if err := db.log.Append(aof.EncodeSet(key, value, expiresAt)); err != nil {
			db.degraded = wrapErr(KindIO, "put append", err)
			return nil, db.degraded
		}
		if err := db.markDirtyOrSyncLocked(); err != nil {
			db.degraded = wrapErr(KindIO, "put sync", err)
			return nil, db.degraded
		}
	}

	old, had := db.store.Put(key, value, expiresAt)
	if had && old.ExpiresAt != nil {
		db.expIdx.Remove(*old.ExpiresAt, old.Key)
	}
	if expiresAt != nil {
		db.expIdx.Add(*expiresAt, key)
	}

	if db.log != nil {
		// Rewrite snapshots the live store, so it must run after the
		// mutation above is applied -- otherwise a rewrite triggered by
		// this very write would omit the key it just appended to the AOF.
		db.maybeRewriteLocked()
	}

	if had && !old.Expired(now) {
		return old.Value, nil
	}
	return nil, nil
}

// Get returns key's value, or nil if absent -- including lazily, if
// the stored item's expiration is at or before now.
func (db *DB) Get(key []byte) ([]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	e, ok := db.store.Get(key)
	if !ok {
		return nil, nil
	}
	if e.ExpiresAt != nil && !e.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return e.Value, nil
}

// Delete removes key, returning its previous value if it was live.
func (db *DB) Delete(key []byte) ([]byte, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}

	if db.log != nil {
		if err := db.log.Append(aof.EncodeDelete(key)); err != nil {
			db.degraded = wrapErr(KindIO, "delete append", err)
			return nil, db.degraded
		}
		if err := db.markDirtyOrSyncLocked(); err != nil {
			db.degraded = wrapErr(KindIO, "delete sync", err)
			return nil, db.degraded
		}
	}

	old, had := db.store.Delete(key)
	if had && old.ExpiresAt != nil {
		db.expIdx.Remove(*old.ExpiresAt, old.Key)
	}

	if db.log != nil {
		db.maybeRewriteLocked()
	}

	if !had {
		return nil, nil
	}
	if old.ExpiresAt != nil && !old.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return old.Value, nil
}

// maybeRewriteLocked triggers AOF compaction when the log has grown
// past both the size threshold and the configured growth percentage
// since the last rewrite. Must be called with db.mu held.
func (db *DB) maybeRewriteLocked() {
	if db.config.AutoRewriteDisabled || db.log == nil {
		return
	}
	if !db.log.ShouldRewrite(db.config.AutoRewriteSizeBytes, db.config.AutoRewriteMinGrowthPct) {
		return
	}
	now := time.Now()
	err := db.log.Rewrite(func(yield func(key, value []byte, expiresAt *time.Time) bool) {
		db.store.Snapshot(func(e store.Entry) bool {
			if e.ExpiresAt != nil && !e.ExpiresAt.After(now) {
				return true // skip items observed expired at rewrite time
			}
			return yield(e.Key, e.Value, e.ExpiresAt)
		})
	})
	if err != nil {
		db.logError("AOF rewrite failed, original log left intact: %v", err)
		return
	}
	atomic.AddUint64(&db.rewriteCount, 1)
	db.logInfo("AOF rewritten, %d bytes", db.log.Size())
}

// Contains reports whether key is live (present and unexpired).
func (db *DB) Contains(key []byte) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return false, ErrDatabaseClosed
	}
	e, ok := db.store.Get(key)
	if !ok {
		return false, nil
	}
	return !e.Expired(time.Now()), nil
}

// RangeScan calls fn for every live key in [start, end) (nil bounds
// mean unbounded), in lexicographic order. fn receives the raw stored
// value; expired items are skipped.
func (db *DB) RangeScan(start, end []byte, fn func(key, value []byte) bool) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrDatabaseClosed
	}
	now := time.Now()
	db.store.RangeScan(start, end, func(e store.Entry) bool {
		if e.Expired(now) {
			return true
		}
		return fn(e.Key, e.Value)
	})
	return nil
}

// PrefixScan calls fn for every live key starting with prefix, in
// lexicographic order. An empty prefix scans the whole store.
func (db *DB) PrefixScan(prefix []byte, fn func(key, value []byte) bool) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return ErrDatabaseClosed
	}
	now := time.Now()
	db.store.PrefixScan(prefix, func(e store.Entry) bool {
		if e.Expired(now) {
			return true
		}
		return fn(e.Key, e.Value)
	})
	return nil
}

// Keys returns up to limit live keys starting with prefix, in
// lexicographic order (limit <= 0 means unbounded). A thin convenience
// wrapper over the store's generic prefix collector for callers that
// want a materialized list instead of driving PrefixScan themselves.
func (db *DB) Keys(prefix []byte, limit int) ([][]byte, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	now := time.Now()
	entries := db.store.CollectPrefix(prefix, 0)
	out := make([][]byte, 0, len(entries))
	for _, e := range entries {
		if e.Expired(now) {
			continue
		}
		out = append(out, e.Key)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of live keys (expired-but-not-yet-swept keys
// are excluded by an extra pass, unlike the raw store count in Stats).
func (db *DB) Len() (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return 0, ErrDatabaseClosed
	}
	now := time.Now()
	n := 0
	db.store.Snapshot(func(e store.Entry) bool {
		if !e.Expired(now) {
			n++
		}
		return true
	})
	return n, nil
}

// Batch is the staging buffer exposed inside an Atomic closure.
type Batch struct {
	inner      *batch.Batch
	now        time.Time
	defaultTTL time.Duration
}

// Put stages a SET of key to value.
func (b *Batch) Put(key, value []byte, opts *SetOptions) {
	expiresAt := opts.resolveExpiry(b.now, b.defaultTTL)
	b.inner.Put(key, value, expiresAt)
}

// Delete stages a DELETE of key.
func (b *Batch) Delete(key []byte) {
	b.inner.Delete(key)
}

// ID returns the batch's diagnostic identifier, stable for the
// lifetime of one Atomic call -- useful for correlating a commit with
// the log line it produced.
func (b *Batch) ID() string {
	return b.inner.ID.String()
}

// Atomic stages a batch of operations via fn, then commits it
// all-or-nothing: the operations are encoded into a single byte
// buffer and written to the AOF with one call before anything is
// applied to the in-memory store. If that write fails, no in-memory
// mutation has happened and the error is returned; the store is never
// left partially updated by a failed batch.
func (db *DB) Atomic(fn func(*Batch) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrDatabaseClosed
	}

	now := time.Now()
	b := &Batch{inner: batch.New(), now: now, defaultTTL: db.config.DefaultTTL}
	if err := fn(b); err != nil {
		return err
	}
	ops := b.inner.Ops()
	if len(ops) == 0 {
		return nil
	}
	db.logInfo("committing batch %s (%d ops)", b.inner.ID, len(ops))

	if db.log != nil {
		var buf bytes.Buffer
		for _, op := range ops {
			switch op.Kind {
			case batch.Put:
				buf.Write(aof.EncodeSet(op.Key, op.Value, op.ExpiresAt))
			case batch.Delete:
				buf.Write(aof.EncodeDelete(op.Key))
			}
		}
		if err := db.log.Append(buf.Bytes()); err != nil {
			db.degraded = wrapErr(KindIO, "batch append", err)
			return db.degraded
		}
		if err := db.markDirtyOrSyncLocked(); err != nil {
			db.degraded = wrapErr(KindIO, "batch sync", err)
			return db.degraded
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case batch.Put:
			db.applySet(op.Key, op.Value, op.ExpiresAt)
		case batch.Delete:
			db.applyDelete(op.Key)
		}
	}

	if db.log != nil {
		db.maybeRewriteLocked()
	}
	return nil
}

// InsertPoint writes key with value "{lat},{lon}" (UTF-8), the literal
// address the caller chooses -- e.g. "cities:NYC". No compound spatial
// key is derived; use InsertPointWithGeohash/InsertPointWithS2 for that.
func (db *DB) InsertPoint(key []byte, point Point, opts *SetOptions) ([]byte, error) {
	return db.Put(key, []byte(spatialquery.EncodePointValue(point.Lat, point.Lon)), opts)
}

// InsertPointWithGeohash writes value at the compound key
// "{prefix}:gh:{geohash}" derived from point at the given precision.
func (db *DB) InsertPointWithGeohash(prefix string, point Point, precision int, value []byte, opts *SetOptions) error {
	hash, err := geocodec.EncodeGeohash(point.Lat, point.Lon, precision)
	if err != nil {
		return wrapErr(KindInvalidGeohash, "encode geohash", err)
	}
	key := geocodec.GeohashKey(prefix, hash)
	_, err = db.Put([]byte(key), value, opts)
	return err
}

// InsertPointWithS2 writes value at the compound key
// "{prefix}:s2:{cell_id}" derived from point at the given S2-like level.
func (db *DB) InsertPointWithS2(prefix string, point Point, level uint8, value []byte, opts *SetOptions) error {
	cell, err := geocodec.EncodeS2Cell(point.Lat, point.Lon, level)
	if err != nil {
		return wrapErr(KindInvalidArgument, "encode s2 cell", err)
	}
	key := geocodec.S2CellKey(prefix, cell)
	_, err = db.Put([]byte(key), value, opts)
	return err
}

// InsertTrajectory writes every sample atomically as
// key="{object_id}:{ts}:{geohash12}", value="{lat},{lon},{ts}". Because
// the batch engine backs this, the whole trajectory appears atomically
// in both memory and the AOF, or not at all.
func (db *DB) InsertTrajectory(objectID string, samples []TrajectorySample, opts *SetOptions) error {
	return db.Atomic(func(b *Batch) error {
		for _, s := range samples {
			key, err := trajectory.BuildKey(objectID, s.Ts, s.Point.Lat, s.Point.Lon)
			if err != nil {
				return wrapErr(KindInvalidGeohash, "build trajectory key", err)
			}
			value := trajectory.EncodeValue(s.Point.Lat, s.Point.Lon, s.Ts)
			b.Put([]byte(key), []byte(value), opts)
		}
		return nil
	})
}

// QueryTrajectory prefix-scans "{object_id}:", filters to
// [tsStart, tsEnd], and returns the samples sorted ascending by
// timestamp.
func (db *DB) QueryTrajectory(objectID string, tsStart, tsEnd uint64) ([]TrajectorySample, error) {
	var samples []trajectory.Sample
	err := db.PrefixScan([]byte(trajectory.Prefix(objectID)), func(key, value []byte) bool {
		s, err := trajectory.DecodeValue(string(value))
		if err != nil {
			return true
		}
		if trajectory.InRange(s.Ts, tsStart, tsEnd) {
			samples = append(samples, s)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	trajectory.SortByTimestamp(samples)
	out := make([]TrajectorySample, len(samples))
	for i, s := range samples {
		out[i] = TrajectorySample{Point: Point{Lat: s.Lat, Lon: s.Lon}, Ts: s.Ts}
	}
	return out, nil
}

// FindNearby prefix-scans prefix, parses each value as "{lat},{lon}",
// keeps points within radiusM meters of center, and returns them
// sorted ascending by distance, truncated to limit (limit <= 0 means
// unbounded).
func (db *DB) FindNearby(prefix []byte, center Point, radiusM float64, limit int) ([]NearbyResult, error) {
	var results []spatialquery.NearbyResult
	err := db.PrefixScan(prefix, func(key, value []byte) bool {
		lat, lon, perr := spatialquery.ParsePointValue(string(value))
		if perr != nil {
			return true
		}
		d, within := spatialquery.WithinRadius(center.Lat, center.Lon, lat, lon, radiusM)
		if !within {
			return true
		}
		keyCopy := append([]byte(nil), key...)
		valueCopy := append([]byte(nil), value...)
		results = append(results, spatialquery.NearbyResult{
			Key:        keyCopy,
			Lat:        lat,
			Lon:        lon,
			Value:      valueCopy,
			DistanceM:  d,
			BearingDeg: bearing(center.Lat, center.Lon, lat, lon),
		})
		return true
	})
	if err != nil {
		return nil, err
	}
	spatialquery.SortByDistance(results)
	results = spatialquery.Limit(results, limit)

	out := make([]NearbyResult, len(results))
	for i, r := range results {
		out[i] = NearbyResult{
			Key:        r.Key,
			Point:      Point{Lat: r.Lat, Lon: r.Lon},
			Value:      r.Value,
			DistanceM:  r.DistanceM,
			BearingDeg: r.BearingDeg,
		}
	}
	return out, nil
}

// FindWithinBounds prefix-scans prefix, parses each value as
// "{lat},{lon}", and keeps points inside the closed rectangle
// [minLat,maxLat] x [minLon,maxLon], truncated to limit.
func (db *DB) FindWithinBounds(prefix []byte, minLat, minLon, maxLat, maxLon float64, limit int) ([]BoundsResult, error) {
	var results []BoundsResult
	err := db.PrefixScan(prefix, func(key, value []byte) bool {
		lat, lon, perr := spatialquery.ParsePointValue(string(value))
		if perr != nil {
			return true
		}
		if !withinBounds(lat, lon, minLat, minLon, maxLat, maxLon) {
			return true
		}
		results = append(results, BoundsResult{
			Key:   append([]byte(nil), key...),
			Point: Point{Lat: lat, Lon: lon},
			Value: append([]byte(nil), value...),
		})
		if limit > 0 && len(results) >= limit {
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ContainsPoint reports whether any point within prefix lies within
// radiusM meters of center.
func (db *DB) ContainsPoint(prefix []byte, center Point, radiusM float64) (bool, error) {
	found := false
	err := db.PrefixScan(prefix, func(key, value []byte) bool {
		lat, lon, perr := spatialquery.ParsePointValue(string(value))
		if perr != nil {
			return true
		}
		if _, within := spatialquery.WithinRadius(center.Lat, center.Lon, lat, lon, radiusM); within {
			found = true
			return false
		}
		return true
	})
	return found, err
}

// CountWithinDistance counts points within prefix that lie within
// radiusM meters of center.
func (db *DB) CountWithinDistance(prefix []byte, center Point, radiusM float64) (int, error) {
	count := 0
	err := db.PrefixScan(prefix, func(key, value []byte) bool {
		lat, lon, perr := spatialquery.ParsePointValue(string(value))
		if perr != nil {
			return true
		}
		if _, within := spatialquery.WithinRadius(center.Lat, center.Lon, lat, lon, radiusM); within {
			count++
		}
		return true
	})
	return count, err
}

// Intersects reports whether any point within prefix lies inside the
// given bounding box. A thin wrapper over FindWithinBounds, as section
// 4.G describes it.
func (db *DB) Intersects(prefix []byte, minLat, minLon, maxLat, maxLon float64) (bool, error) {
	results, err := db.FindWithinBounds(prefix, minLat, minLon, maxLat, maxLon, 1)
	if err != nil {
		return false, err
	}
	return len(results) > 0, nil
}

func withinBounds(lat, lon, minLat, minLon, maxLat, maxLon float64) bool {
	return lat >= minLat && lat <= maxLat && lon >= minLon && lon <= maxLon
}

func bearing(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.BearingDegrees(lat1, lon1, lat2, lon2)
}
