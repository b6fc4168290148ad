// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

const (
	keyNotFound = "Error: Key not found!"
	respOk      = "Ok"
)

// Dialect is the session's current wire dialect. SetDialectString and
// SetDialectBitwise queries request a transition to one of these; the
// caller (the connection handler) is the only thing allowed to act on
// the transition, the executor merely reports it.
type Dialect int

const (
	DialectString Dialect = iota
	DialectBitwise
)

// Result is what the executor hands back to the connection handler: the
// exact bytes to write to the wire, whether the map was mutated, and
// which dialect the session should use from here on (unchanged unless
// the query was one of the two dialect-switch ops).
type Result struct {
	Response      string
	Mutated       bool
	DialectChange *Dialect
}

// Execute applies q against m and returns the response text the wire
// expects. It never returns a Go error: every outcome, including "key not
// found", is a response payload, not a transport failure.
func Execute(q Query, m *Map) Result {
	switch q.Op {
	case OpNew:
		key, value, ttl := q.Args[0], q.Args[1], q.Args[2]
		m.Set(key, value, ttl)
		return Result{Response: respOk, Mutated: true}

	case OpGet:
		r, ok := m.Get(q.Args[0])
		if !ok {
			return Result{Response: keyNotFound}
		}
		return Result{Response: r.Value + "\x00" + r.TTL}

	case OpGetValue:
		r, ok := m.Get(q.Args[0])
		if !ok {
			return Result{Response: keyNotFound}
		}
		return Result{Response: r.Value}

	case OpGetTTL:
		r, ok := m.Get(q.Args[0])
		if !ok {
			return Result{Response: keyNotFound}
		}
		return Result{Response: r.TTL}

	case OpDrop:
		m.Drop(q.Args[0])
		return Result{Response: respOk, Mutated: true}

	case OpDropAll:
		m.DropAll(q.Args[0])
		return Result{Response: respOk, Mutated: true}

	case OpSetDialectString:
		d := DialectString
		return Result{Response: respOk, DialectChange: &d}

	case OpSetDialectBitwise:
		d := DialectBitwise
		return Result{Response: respOk, DialectChange: &d}

	default:
		return Result{Response: "Could not properly parse query!"}
	}
}
