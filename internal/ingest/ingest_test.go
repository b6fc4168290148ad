// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ingest

import (
	"testing"

	"github.com/arthurdw/firefly/internal/store"
)

func TestDecodeAndApplySetsRecordWithTTL(t *testing.T) {
	m := store.NewMap()
	changed := store.NewChanged()

	line := []byte(`mykey,ttl=1999999999 value="hello" 1000000000`)
	if err := decodeAndApply(line, m, changed); err != nil {
		t.Fatalf("decodeAndApply error = %v", err)
	}

	r, ok := m.Get("mykey")
	if !ok {
		t.Fatal("expected key to be set")
	}
	if r.Value != "hello" || r.TTL != "1999999999" {
		t.Errorf("record = %+v", r)
	}
	if changed.Value() != 1 {
		t.Errorf("changed = %d, want 1", changed.Value())
	}
}

func TestDecodeAndApplyDefaultsTTLToZero(t *testing.T) {
	m := store.NewMap()
	changed := store.NewChanged()

	line := []byte(`mykey value="hello" 1000000000`)
	if err := decodeAndApply(line, m, changed); err != nil {
		t.Fatalf("decodeAndApply error = %v", err)
	}

	r, _ := m.Get("mykey")
	if r.TTL != "0" {
		t.Errorf("TTL = %q, want 0", r.TTL)
	}
}

func TestDecodeAndApplySkipsMissingValue(t *testing.T) {
	m := store.NewMap()
	changed := store.NewChanged()

	line := []byte(`mykey other=1 1000000000`)
	if err := decodeAndApply(line, m, changed); err != nil {
		t.Fatalf("decodeAndApply error = %v", err)
	}

	if _, ok := m.Get("mykey"); ok {
		t.Error("expected no record to be set without a value field")
	}
	if changed.Value() != 0 {
		t.Errorf("changed = %d, want 0", changed.Value())
	}
}
