// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"strings"

	"github.com/arthurdw/firefly/internal/store"
)

// verbs is the closed set of string-dialect verbs, longest candidates
// first is not required since matching is driven by exact-match tracking
// rather than sorted length.
var verbs = []struct {
	name string
	op   store.Op
}{
	{"NEW", store.OpNew},
	{"GET", store.OpGet},
	{"GETVALUE", store.OpGetValue},
	{"GETTTL", store.OpGetTTL},
	{"DROP", store.OpDrop},
	{"DROPALL", store.OpDropAll},
	{"QUERYTYPESTRING", store.OpSetDialectString},
	{"QUERYTYPEBITWISE", store.OpSetDialectBitwise},
}

type stringParser struct{}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// matchVerb implements the prefix-streaming verb match from §4.2: it
// grows an upper-cased accumulator one letter at a time and remembers the
// most recent point at which the accumulator exactly matched a verb. It
// stops as soon as no remaining verb has the accumulator as a prefix, or
// input runs out of letters, and returns the last exact match if any.
func matchVerb(data []byte) (op store.Op, consumed int, ok bool) {
	acc := make([]byte, 0, 16)
	lastExactLen := -1
	var lastOp store.Op

	i := 0
	for i < len(data) && isLetter(data[i]) {
		acc = append(acc, data[i])
		i++

		upper := strings.ToUpper(string(acc))
		anyPrefix := false
		for _, v := range verbs {
			if v.name == upper {
				lastExactLen = i
				lastOp = v.op
			}
			if strings.HasPrefix(v.name, upper) {
				anyPrefix = true
			}
		}
		if !anyPrefix {
			break
		}
	}

	if lastExactLen == -1 {
		return 0, 0, false
	}
	return lastOp, lastExactLen, true
}

// Parse implements Parser for the string dialect: skip leading
// whitespace, match a verb, then extract quoted arguments up to the
// statement terminator ';'.
func (stringParser) Parse(data []byte) (store.Query, error) {
	i := 0
	for i < len(data) && isSkippable(data[i]) {
		i++
	}

	var op store.Op
	if end, ok := matchHandshakeAlias(data, i); ok {
		op = store.OpSetDialectBitwise
		i = end
	} else {
		matched, consumed, ok := matchVerb(data[i:])
		if !ok {
			return store.Query{}, ErrParse
		}
		op = matched
		i += consumed
	}

	args, err := extractArgs(data[i:])
	if err != nil {
		return store.Query{}, err
	}

	completed, err := store.CompleteArgs(op, args)
	if err != nil {
		return store.Query{}, err
	}

	return store.Query{Op: op, Args: completed}, nil
}

// matchHandshakeAlias recognizes the historical client handshake
// "QUERY TYPE BITWISE" (three space-separated words, case-insensitive)
// as an alias for the QUERYTYPEBITWISE verb. Only interior whitespace
// between these three specific words is tolerated; this never loosens
// matching for any other verb.
func matchHandshakeAlias(data []byte, i int) (int, bool) {
	words := []string{"QUERY", "TYPE", "BITWISE"}
	pos := i
	for wi, w := range words {
		if wi > 0 {
			start := pos
			for pos < len(data) && isSkippable(data[pos]) {
				pos++
			}
			if pos == start {
				return i, false
			}
		}
		if pos+len(w) > len(data) {
			return i, false
		}
		if !strings.EqualFold(string(data[pos:pos+len(w)]), w) {
			return i, false
		}
		pos += len(w)
	}
	return pos, true
}

// extractArgs implements §4.2's argument grammar: the opening quote
// character of the first argument fixes the closing quote for every
// later argument in the same statement; everything outside quotes and
// before the terminator ';' is ignored filler. Once the fixed quote
// character is set, a quote byte of the *other* kind is just more filler
// (it can appear freely inside an unquoted stretch or inside a fixed-
// quote argument's contents).
func extractArgs(data []byte) ([]string, error) {
	var args []string
	var fixedQuote byte

	i := 0
	for i < len(data) {
		c := data[i]

		if c == ';' {
			return args, nil
		}

		opensArg := (fixedQuote == 0 && (c == '\'' || c == '"')) || (fixedQuote != 0 && c == fixedQuote)
		if opensArg {
			if fixedQuote == 0 {
				fixedQuote = c
			}
			i++
			start := i
			for i < len(data) && data[i] != fixedQuote {
				i++
			}
			if i >= len(data) {
				return nil, ErrParse
			}
			args = append(args, string(data[start:i]))
			i++ // skip closing quote
			continue
		}

		i++
	}

	return nil, ErrParse // ran out of input before ';'
}
