package rpc

import (
	"net"

	"bank-api/internal/pkg/logging"
	"bank-api/internal/wallet"
)

// Server is the backup's replication endpoint. It drives the backup's local
// wallet engine exclusively: the backup never receives HTTP traffic
// (SPEC_FULL.md §4.3).
type Server struct {
	engine   *wallet.Engine
	listener net.Listener
}

func NewServer(engine *wallet.Engine) *Server {
	return &Server{engine: engine}
}

// Serve listens on addr and blocks, handling one connection per request the
// way the client dials a fresh connection per call.
func (s *Server) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln

	logging.Info("replication server listening", map[string]interface{}{"addr": addr})

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.listener == nil {
				return nil // closed deliberately
			}
			logging.Warn("replication server accept failed", map[string]interface{}{"error": err.Error()})
			continue
		}
		go s.handle(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	ln := s.listener
	s.listener = nil
	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	var req Request
	if err := readFrame(conn, &req); err != nil {
		logging.Warn("replication server bad request", map[string]interface{}{"error": err.Error()})
		return
	}

	reply := s.dispatch(req)
	if err := writeFrame(conn, reply); err != nil {
		logging.Warn("replication server write reply failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) dispatch(req Request) Reply {
	switch req.Method {
	case MethodPing:
		return Reply{OK: true}

	case MethodApplyTransaction:
		return s.applyTransaction(req)

	default:
		return Reply{OK: false, Error: "unknown method: " + req.Method}
	}
}

func (s *Server) applyTransaction(req Request) Reply {
	switch req.Kind {
	case "DEPOSIT":
		record, err := s.engine.Deposit(req.AccountID, req.Amount, req.TransactionID)
		if err != nil {
			return Reply{OK: false, Error: err.Error()}
		}
		return Reply{OK: true, Success: record.Success, NewBalance: record.NewBalance, Message: record.Message}

	case "WITHDRAW":
		record, err := s.engine.Withdraw(req.AccountID, req.Amount, req.TransactionID)
		if err != nil {
			return Reply{OK: false, Error: err.Error()}
		}
		return Reply{OK: true, Success: record.Success, NewBalance: record.NewBalance, Message: record.Message}

	default:
		return Reply{OK: false, Error: "unknown transaction kind: " + req.Kind}
	}
}
