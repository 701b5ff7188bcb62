// Package walfile implements the on-disk write-ahead log used by the wallet
// engine: an append-only, checksummed transaction ledger plus a balance
// snapshot file written atomically by temp-file-plus-rename. The record framing (length prefix + CRC32,
// scan-to-rebuild-state recovery) follows the same discipline as a
// stand-alone from-scratch WAL retrieved alongside this repo's other
// reference material, generalized from an arbitrary key/value log to a log
// of domain.Transaction snapshots.
package walfile

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sync"

	"bank-api/internal/domain"
)

// Ledger is an append-only log of domain.Transaction records. Every status
// change (Pending -> Committed/RolledBack) is appended as a new record; nothing
// is ever rewritten in place. The latest record for a given transaction_id,
// found by scanning in file order, is authoritative.
type Ledger struct {
	mu   sync.Mutex
	path string
	file *os.File
	w    *bufio.Writer
}

// OpenLedger opens (creating if necessary) the ledger file at path and
// truncates any torn trailing record left by a crash mid-append.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("walfile: create ledger dir: %w", err)
	}

	if err := truncateTornTail(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("walfile: open ledger: %w", err)
	}

	return &Ledger{
		path: path,
		file: f,
		w:    bufio.NewWriter(f),
	}, nil
}

// Append writes txn as a new ledger record and fsyncs before returning, so
// the record is durable by the time the caller observes a nil error. A
// failure here must never leave a partially written record visible on the
// next open: truncateTornTail handles that on the next OpenLedger.
func (l *Ledger) Append(txn domain.Transaction) error {
	payload, err := json.Marshal(txn)
	if err != nil {
		return fmt.Errorf("walfile: marshal record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := writeRecord(l.w, payload); err != nil {
		return fmt.Errorf("walfile: append record: %w", err)
	}
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("walfile: flush record: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("walfile: fsync record: %w", err)
	}
	return nil
}

// ReadAll scans the ledger from the start and returns one record per
// transaction_id: the most recent record written for that id. Used at
// startup recovery and is not on any hot path.
func (l *Ledger) ReadAll() ([]domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.w.Flush(); err != nil {
		return nil, fmt.Errorf("walfile: flush before read: %w", err)
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("walfile: open for scan: %w", err)
	}
	defer f.Close()

	latest := make(map[string]domain.Transaction)
	order := make([]string, 0)

	r := bufio.NewReader(f)
	for {
		payload, err := readRecord(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("walfile: ledger corrupted: %w", err)
		}

		var txn domain.Transaction
		if err := json.Unmarshal(payload, &txn); err != nil {
			return nil, fmt.Errorf("walfile: ledger corrupted (bad json): %w", err)
		}

		if _, seen := latest[txn.TransactionID]; !seen {
			order = append(order, txn.TransactionID)
		}
		latest[txn.TransactionID] = txn
	}

	out := make([]domain.Transaction, 0, len(order))
	for _, id := range order {
		out = append(out, latest[id])
	}
	return out, nil
}

// Close flushes and closes the underlying file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.w.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}

// writeRecord frames payload as [4-byte length][4-byte crc32][payload].
func writeRecord(w io.Writer, payload []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[0:4], uint32(len(payload)))
	binary.BigEndian.PutUint32(header[4:8], crc32.ChecksumIEEE(payload))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// readRecord reads one length-prefixed, checksummed record. io.EOF is
// returned only when the stream ends exactly on a record boundary.
func readRecord(r io.Reader) ([]byte, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("truncated record header")
		}
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[0:4])
	wantCRC := binary.BigEndian.Uint32(header[4:8])

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("truncated record payload")
		}
		return nil, err
	}

	if gotCRC := crc32.ChecksumIEEE(payload); gotCRC != wantCRC {
		return nil, fmt.Errorf("checksum mismatch (want %x, got %x)", wantCRC, gotCRC)
	}

	return payload, nil
}

// truncateTornTail drops an incomplete record left by a crash mid-append,
// which is the one form of on-disk damage recovery tolerates silently; any
// other read error (bad checksum in the middle of the file) is treated as
// corruption and refused (see Ledger.ReadAll / cmd/{primary,backup}).
func truncateTornTail(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("walfile: open for tail check: %w", err)
	}
	defer f.Close()

	// Read directly off the unbuffered file descriptor (not through
	// bufio.Reader) so the running offset exactly matches what a Truncate
	// needs; bufio would read ahead past the position we want to cut at.
	var offset int64
	for {
		start := offset
		payload, err := readRecord(f)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if isTornTail(err) {
				return f.Truncate(start)
			}
			return fmt.Errorf("walfile: corrupted ledger at offset %d: %w", start, err)
		}
		offset = start + 8 + int64(len(payload))
	}
}

func isTornTail(err error) bool {
	msg := err.Error()
	return msg == "truncated record header" || msg == "truncated record payload"
}
