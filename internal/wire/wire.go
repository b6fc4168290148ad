// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wire implements the two Firefly query dialects behind a single
// Parser interface: a human-readable string dialect terminated by ';',
// and a compact bitwise dialect using NUL-separated arguments.
package wire

import (
	"errors"

	"github.com/arthurdw/firefly/internal/store"
)

// ErrParse is returned by a Parser when the input cannot be turned into a
// query at all (unknown verb, unterminated statement, malformed op byte).
// A wrong argument count surfaces as *store.ErrArgCount instead, so
// callers that want to report it specifically can type-assert for it.
var ErrParse = errors.New("could not properly parse query")

// Parser turns a raw request frame into a Query. Each dialect has its own
// implementation; the connection handler picks one based on the session's
// current dialect.
type Parser interface {
	Parse(data []byte) (store.Query, error)
}

// String and Bitwise are the two dialect parsers, stateless and safe for
// concurrent use across sessions.
var (
	String  Parser = stringParser{}
	Bitwise Parser = bitwiseParser{}
)

func isSkippable(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}
