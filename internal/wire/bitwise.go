// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"

	"github.com/arthurdw/firefly/internal/store"
)

// opByDigit maps the leading ASCII digit of a bitwise query to its op,
// per §4.3.
var opByDigit = map[byte]store.Op{
	'0': store.OpNew,
	'1': store.OpGet,
	'2': store.OpGetValue,
	'3': store.OpGetTTL,
	'4': store.OpDrop,
	'5': store.OpDropAll,
	'6': store.OpSetDialectString,
	'7': store.OpSetDialectBitwise,
}

type bitwiseParser struct{}

// Parse implements Parser for the bitwise dialect: skip leading
// whitespace, read one ASCII digit selecting the op, then split the
// remaining bytes on NUL to get the argument list.
func (bitwiseParser) Parse(data []byte) (store.Query, error) {
	i := 0
	for i < len(data) && isSkippable(data[i]) {
		i++
	}
	if i >= len(data) {
		return store.Query{}, ErrParse
	}

	op, ok := opByDigit[data[i]]
	if !ok {
		return store.Query{}, ErrParse
	}

	rest := data[i+1:]
	var args []string
	if len(rest) > 0 {
		for _, part := range bytes.Split(rest, []byte{0}) {
			args = append(args, string(part))
		}
	}

	completed, err := store.CompleteArgs(op, args)
	if err != nil {
		return store.Query{}, err
	}

	return store.Query{Op: op, Args: completed}, nil
}
