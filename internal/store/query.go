// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package store holds the record map, the closed query model, and the
// executor that applies a parsed query against the map.
package store

import "fmt"

// Op is one of the eight closed operation kinds a query can express.
type Op int

const (
	OpNew Op = iota
	OpGet
	OpGetValue
	OpGetTTL
	OpDrop
	OpDropAll
	OpSetDialectString
	OpSetDialectBitwise
)

// ArgCount is the exact number of arguments each op expects, before the
// New-with-2-args auto TTL completion is applied by the parsers.
var ArgCount = map[Op]int{
	OpNew:               3,
	OpGet:               1,
	OpGetValue:          1,
	OpGetTTL:            1,
	OpDrop:              1,
	OpDropAll:           1,
	OpSetDialectString:  0,
	OpSetDialectBitwise: 0,
}

// Mutates reports whether a successful application of op changes the
// record map, and therefore the process-wide change counter.
func (op Op) Mutates() bool {
	switch op {
	case OpNew, OpDrop, OpDropAll:
		return true
	default:
		return false
	}
}

func (op Op) String() string {
	switch op {
	case OpNew:
		return "NEW"
	case OpGet:
		return "GET"
	case OpGetValue:
		return "GETVALUE"
	case OpGetTTL:
		return "GETTTL"
	case OpDrop:
		return "DROP"
	case OpDropAll:
		return "DROPALL"
	case OpSetDialectString:
		return "QUERYTYPESTRING"
	case OpSetDialectBitwise:
		return "QUERYTYPEBITWISE"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Query is a fully parsed request, independent of which dialect produced it.
type Query struct {
	Op   Op
	Args []string
}

// ErrArgCount is returned by CompleteArgs when a query carries an argument
// count that cannot be reconciled with its op's contract.
type ErrArgCount struct {
	Op       Op
	Got      int
	Expected int
}

func (e *ErrArgCount) Error() string {
	return fmt.Sprintf("%s expects %d argument(s), got %d", e.Op, e.Expected, e.Got)
}

// CompleteArgs enforces the shared arg-count contract from the query
// model: New with exactly two arguments is auto-completed with ttl "0";
// every other op must match ArgCount exactly, or CompleteArgs reports
// ErrArgCount. Both wire dialects route through this so the contract is
// defined once.
func CompleteArgs(op Op, args []string) ([]string, error) {
	want := ArgCount[op]
	if op == OpNew && len(args) == 2 {
		return append(args, "0"), nil
	}
	if len(args) != want {
		return nil, &ErrArgCount{Op: op, Got: len(args), Expected: want}
	}
	return args, nil
}
