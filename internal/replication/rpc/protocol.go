// Package rpc implements the primary<->backup replication protocol: a
// length-prefixed JSON request/reply transport over TCP. SPEC_FULL.md §6
// permits "any length-prefixed request/reply transport"; this repo uses a
// hand-rolled framing (4-byte big-endian length + JSON payload) rather than
// gRPC so the wire code can be read and trusted without a protoc toolchain
// to generate and verify stub code against (see DESIGN.md). The framing
// discipline mirrors this repo's own WAL record format in internal/walfile.
package rpc

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
)

// Method names carried in every request envelope.
const (
	MethodApplyTransaction = "ApplyTransaction"
	MethodPing             = "Ping"
)

const maxFrameSize = 1 << 20 // 1 MiB; guards against a corrupt length prefix

// Request is the envelope sent from the primary to the backup.
type Request struct {
	Method        string  `json:"method"`
	Kind          string  `json:"kind,omitempty"`
	AccountID     string  `json:"account_id,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	TransactionID string  `json:"transaction_id,omitempty"`
}

// Reply is the envelope sent back from the backup to the primary.
type Reply struct {
	OK         bool    `json:"ok"`
	Success    bool    `json:"success,omitempty"`
	NewBalance float64 `json:"new_balance,omitempty"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// writeFrame writes a length-prefixed JSON payload to conn.
func writeFrame(conn net.Conn, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("rpc: marshal frame: %w", err)
	}
	if len(payload) > maxFrameSize {
		return fmt.Errorf("rpc: frame too large (%d bytes)", len(payload))
	}

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))

	if _, err := conn.Write(header[:]); err != nil {
		return fmt.Errorf("rpc: write frame header: %w", err)
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("rpc: write frame payload: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed JSON payload from conn into v.
func readFrame(conn net.Conn, v interface{}) error {
	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		return fmt.Errorf("rpc: read frame header: %w", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > maxFrameSize {
		return fmt.Errorf("rpc: frame too large (%d bytes)", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return fmt.Errorf("rpc: read frame payload: %w", err)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("rpc: unmarshal frame: %w", err)
	}
	return nil
}
