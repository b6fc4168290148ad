// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package snapshot implements the whole-map binary codec (C9) and the
// periodic, change-counter-gated snapshot loop (C7).
package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/linkedin/goavro/v2"

	"github.com/arthurdw/firefly/internal/store"
)

// recordSchema is the Avro schema for one (key, value, ttl) triple. Every
// field is a string, mirroring the wire representation: ttl round-trips
// through the snapshot as the same decimal text the protocol exchanges,
// with no integer parsing happening here.
const recordSchema = `
{
  "type": "record",
  "name": "FireflyRecord",
  "fields": [
    {"name": "key", "type": "string"},
    {"name": "value", "type": "string"},
    {"name": "ttl", "type": "string"}
  ]
}`

var codec = mustCodec()

func mustCodec() *goavro.Codec {
	c, err := goavro.NewCodec(recordSchema)
	if err != nil {
		panic("snapshot: invalid embedded avro schema: " + err.Error())
	}
	return c
}

// Encode writes records as an Avro Object Container File to w.
func Encode(w io.Writer, records map[string]store.Record) error {
	writer, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: goavro.CompressionDeflateLabel,
	})
	if err != nil {
		return fmt.Errorf("creating OCF writer: %w", err)
	}

	rows := make([]map[string]any, 0, len(records))
	for k, r := range records {
		rows = append(rows, map[string]any{
			"key":   k,
			"value": r.Value,
			"ttl":   r.TTL,
		})
	}

	if err := writer.Append(rows); err != nil {
		return fmt.Errorf("appending records: %w", err)
	}
	return nil
}

// Decode reads an Avro Object Container File produced by Encode and
// reconstructs the record map.
func Decode(r io.Reader) (map[string]store.Record, error) {
	br := bufio.NewReader(r)
	reader, err := goavro.NewOCFReader(br)
	if err != nil {
		return nil, fmt.Errorf("creating OCF reader: %w", err)
	}

	out := make(map[string]store.Record)
	for reader.Scan() {
		row, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		fields, ok := row.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected record shape %T", row)
		}
		key, _ := fields["key"].(string)
		value, _ := fields["value"].(string)
		ttl, _ := fields["ttl"].(string)
		out[key] = store.Record{Value: value, TTL: ttl}
	}
	return out, nil
}

// WriteFile serializes records to path using write-to-temp-then-rename,
// closing the crash window the original implementation left open by
// truncating the destination file in place.
func WriteFile(path string, records map[string]store.Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".firefly-snapshot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp snapshot file into place: %w", err)
	}
	return nil
}

// ReadFile loads records from path. A missing file is not an error: it
// means there is nothing to restore yet, and the caller should start
// from an empty map.
func ReadFile(path string) (map[string]store.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]store.Record), nil
		}
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
