// Package aof implements the append-only log: binary record framing,
// crash-recovery replay, and size-triggered rewrite/compaction. The
// package knows nothing about sync policy timing (that's a top-level
// concern); it only exposes Flush (buffer flush) and Sync (fsync) as
// separate primitives for the caller to drive.
package aof

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	opSet    byte = 0
	opDelete byte = 1
)

// ErrInvalidFormat is returned by Replay when a record header mid-log
// cannot be parsed -- a genuine corruption, not a truncated tail.
var ErrInvalidFormat = errors.New("aof: invalid record format")

// Record is a single decoded log entry, handed to the Replay callback.
type Record struct {
	Op        byte
	Key       []byte
	Value     []byte
	ExpiresAt *time.Time
}

// EncodeSet serializes a SET record.
func EncodeSet(key, value []byte, expiresAt *time.Time) []byte {
	buf := make([]byte, 0, 1+4+len(key)+4+len(value)+1+8)
	buf = append(buf, opSet)
	buf = appendU32(buf, uint32(len(key)))
	buf = append(buf, key...)
	buf = appendU32(buf, uint32(len(value)))
	buf = append(buf, value...)
	if expiresAt != nil {
		buf = append(buf, 1)
		buf = appendU64(buf, uint64(expiresAt.Unix()))
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// EncodeDelete serializes a DELETE record.
func EncodeDelete(key []byte) []byte {
	buf := make([]byte, 0, 1+4+len(key))
	buf = append(buf, opDelete)
	buf = appendU32(buf, uint32(len(key)))
	buf = append(buf, key...)
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// readRecord decodes one record from r. A clean EOF with zero bytes
// consumed returns io.EOF. Any EOF encountered after at least one byte
// has been consumed for this record is reported as io.ErrUnexpectedEOF
// -- the caller treats that as a tolerated, tail-truncated partial
// record. An op byte outside {0,1} is a genuine format error.
func readRecord(r io.Reader) (Record, error) {
	var opBuf [1]byte
	if _, err := io.ReadFull(r, opBuf[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, io.ErrUnexpectedEOF
	}
	op := opBuf[0]
	if op != opSet && op != opDelete {
		return Record{}, ErrInvalidFormat
	}

	key, err := readBytes32(r)
	if err != nil {
		return Record{}, io.ErrUnexpectedEOF
	}

	if op == opDelete {
		return Record{Op: op, Key: key}, nil
	}

	value, err := readBytes32(r)
	if err != nil {
		return Record{}, io.ErrUnexpectedEOF
	}

	var hasExpBuf [1]byte
	if _, err := io.ReadFull(r, hasExpBuf[:]); err != nil {
		return Record{}, io.ErrUnexpectedEOF
	}
	var expiresAt *time.Time
	switch hasExpBuf[0] {
	case 0:
	case 1:
		var tsBuf [8]byte
		if _, err := io.ReadFull(r, tsBuf[:]); err != nil {
			return Record{}, io.ErrUnexpectedEOF
		}
		t := time.Unix(int64(binary.BigEndian.Uint64(tsBuf[:])), 0).UTC()
		expiresAt = &t
	default:
		return Record{}, ErrInvalidFormat
	}

	return Record{Op: op, Key: key, Value: value, ExpiresAt: expiresAt}, nil
}

func readBytes32(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Replay streams path from offset 0 and calls apply for every intact
// record, in order. It stops cleanly at EOF or at the first partial
// record found at the tail (dropping it and reporting tailTruncated).
// A malformed record header (bad op byte / bad has-expiration flag)
// found with enough trailing bytes to detect it is a fatal,
// non-tail error.
func Replay(path string, apply func(Record) error) (tailTruncated bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("aof: open for replay: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		rec, rerr := readRecord(r)
		if rerr == io.EOF {
			return false, nil
		}
		if rerr == io.ErrUnexpectedEOF {
			return true, nil
		}
		if rerr != nil {
			return false, rerr
		}
		if err := apply(rec); err != nil {
			return false, err
		}
	}
}

// Log is an open, append-capable AOF file.
type Log struct {
	path string
	file *os.File
	w    *bufio.Writer
	size int64

	lastRewriteSize int64
}

// Open opens (creating if necessary) the AOF file at path for
// append+read. It does not replay; callers should Replay before or
// after Open as needed (Open just establishes the write handle).
func Open(path string) (*Log, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("aof: open: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("aof: stat: %w", err)
	}
	return &Log{
		path:            path,
		file:            f,
		w:               bufio.NewWriter(f),
		size:            info.Size(),
		lastRewriteSize: info.Size(),
	}, nil
}

// Size returns the current logical file size, including buffered
// but not-yet-flushed bytes.
func (l *Log) Size() int64 { return l.size }

// Append buffers record for writing. It does not flush or fsync.
func (l *Log) Append(record []byte) error {
	if _, err := l.w.Write(record); err != nil {
		return fmt.Errorf("aof: append: %w", err)
	}
	l.size += int64(len(record))
	return nil
}

// Flush pushes buffered writes to the OS, without fsyncing.
func (l *Log) Flush() error {
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("aof: flush: %w", err)
	}
	return nil
}

// Sync flushes and then fsyncs the file to stable storage.
func (l *Log) Sync() error {
	if err := l.Flush(); err != nil {
		return err
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("aof: fsync: %w", err)
	}
	return nil
}

// Close flushes, fsyncs, and closes the underlying file.
func (l *Log) Close() error {
	if err := l.Sync(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

// ShouldRewrite reports whether the log has grown past both the
// absolute size threshold and the configured growth percentage since
// the last rewrite.
func (l *Log) ShouldRewrite(sizeThreshold int64, minGrowthPct int) bool {
	if l.size < sizeThreshold {
		return false
	}
	if l.lastRewriteSize == 0 {
		return true
	}
	growth := float64(l.size-l.lastRewriteSize) / float64(l.lastRewriteSize) * 100
	return growth >= float64(minGrowthPct)
}

// Rewrite performs compaction: it writes one SET record per entry
// yielded by snapshot (preserving expiration) into a sibling
// "<path>.rewrite" file, fsyncs it, atomically renames it over the
// original, and reopens file handles. On a failure before the rename
// the original file is left untouched and the temp file is removed;
// once the rename has succeeded the compacted file is in place, even
// if closing the old handle or reopening the new one then fails.
func (l *Log) Rewrite(snapshot func(yield func(key, value []byte, expiresAt *time.Time) bool)) (err error) {
	rewritePath := l.path + ".rewrite"
	tmp, err := os.OpenFile(rewritePath, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("aof: create rewrite file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(rewritePath)
		}
	}()

	w := bufio.NewWriter(tmp)
	var writeErr error
	var newSize int64
	snapshot(func(key, value []byte, expiresAt *time.Time) bool {
		rec := EncodeSet(key, value, expiresAt)
		if _, writeErr = w.Write(rec); writeErr != nil {
			return false
		}
		newSize += int64(len(rec))
		return true
	})
	if writeErr != nil {
		return fmt.Errorf("aof: write rewrite file: %w", writeErr)
	}
	if err = w.Flush(); err != nil {
		return fmt.Errorf("aof: flush rewrite file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("aof: fsync rewrite file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("aof: close rewrite file: %w", err)
	}

	if err = os.Rename(rewritePath, l.path); err != nil {
		return fmt.Errorf("aof: rename rewrite file: %w", err)
	}

	if cerr := l.file.Close(); cerr != nil {
		err = fmt.Errorf("aof: close old handle: %w", cerr)
		return err
	}
	newFile, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("aof: reopen after rewrite: %w", err)
	}
	l.file = newFile
	l.w = bufio.NewWriter(newFile)
	l.size = newSize
	l.lastRewriteSize = newSize
	return nil
}
