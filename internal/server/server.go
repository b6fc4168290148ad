// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package server implements the per-connection request loop (the
// Connection Handler) and the listener that accepts new sessions and
// hands each one its own goroutine.
package server

import (
	"bytes"
	"context"
	"net"
	"sync"

	"github.com/arthurdw/firefly/internal/metrics"
	"github.com/arthurdw/firefly/internal/store"
	"github.com/arthurdw/firefly/internal/wire"
)

// Server owns the shared record map and change counter and accepts
// connections against them. It holds no protocol state itself — all
// dialect state lives on the per-connection goroutine's stack.
type Server struct {
	Map          *store.Map
	Changed      *store.Changed
	MaxQuerySize int

	wg sync.WaitGroup
}

// New returns a Server ready to Serve connections against the given map
// and change counter.
func New(m *store.Map, changed *store.Changed, maxQuerySize int) *Server {
	return &Server{Map: m, Changed: changed, MaxQuerySize: maxQuerySize}
}

// Serve runs the accept loop against ln until ctx is canceled or Accept
// fails. After cancellation it blocks until every spawned connection
// goroutine has returned, then returns nil; any other Accept error is
// returned at once.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
				return err
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// dialectParser holds the two wire parsers indexed by store.Dialect.
var dialectParser = map[store.Dialect]wire.Parser{
	store.DialectString:  wire.String,
	store.DialectBitwise: wire.Bitwise,
}

// handleConn implements the Connection Handler state machine from §4.5:
// AwaitingFrame -> Parsing -> Executing -> Writing -> Terminated (or back
// to AwaitingFrame on a normal round trip). One socket read is exactly
// one frame; the handler never re-assembles bytes across reads.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	dialect := store.DialectString
	buf := make([]byte, s.MaxQuerySize)

	for {
		n, err := conn.Read(buf)
		if n > 0 {
			frame := buf[:n]
			resp := s.handleFrame(frame, &dialect)

			if _, werr := conn.Write([]byte(resp)); werr != nil {
				return
			}
		}
		if n == 0 || err != nil {
			return
		}
	}
}

// handleFrame validates and dispatches a single frame, mutates *dialect
// in place when the query requests a dialect switch, and returns the
// exact response bytes to write back.
func (s *Server) handleFrame(frame []byte, dialect *store.Dialect) string {
	if !isValidFrame(frame) {
		return "Invalid or empty query (must be valid ascii)."
	}

	prefix := ""
	containsNUL := bytes.IndexByte(frame, 0) >= 0
	if *dialect == store.DialectString && containsNUL {
		prefix = "Non bitwise queries cannot contain null bytes"
	}

	parser := dialectParser[*dialect]
	q, err := parser.Parse(frame)
	if err != nil {
		return prefix + "Could not properly parse query!"
	}

	result := store.Execute(q, s.Map)
	metrics.ObserveOp(q.Op.String())

	if result.Mutated {
		s.Changed.Add(1)
	}
	if result.DialectChange != nil {
		*dialect = *result.DialectChange
	}

	return prefix + result.Response
}

// isValidFrame enforces §4.5's pre-parse validation: non-empty, not the
// single byte/line "\n", and pure ASCII.
func isValidFrame(frame []byte) bool {
	if len(frame) == 0 {
		return false
	}
	if len(frame) == 1 && frame[0] == '\n' {
		return false
	}
	for _, b := range frame {
		if b > 127 {
			return false
		}
	}
	return true
}
