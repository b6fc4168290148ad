// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import "testing"

func TestRoundTrip(t *testing.T) {
	m := NewMap()
	Execute(Query{Op: OpNew, Args: []string{"hello", "world", "0"}}, m)

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"get", Query{Op: OpGet, Args: []string{"hello"}}, "world\x000"},
		{"getvalue", Query{Op: OpGetValue, Args: []string{"hello"}}, "world"},
		{"getttl", Query{Op: OpGetTTL, Args: []string{"hello"}}, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Execute(tt.q, m)
			if r.Response != tt.want {
				t.Errorf("Execute(%v) = %q, want %q", tt.q, r.Response, tt.want)
			}
			if r.Mutated {
				t.Errorf("Execute(%v) mutated, want read-only", tt.q)
			}
		})
	}
}

func TestNewIsLastWriterWins(t *testing.T) {
	m := NewMap()
	Execute(Query{Op: OpNew, Args: []string{"k", "v1", "1"}}, m)
	Execute(Query{Op: OpNew, Args: []string{"k", "v2", "2"}}, m)

	r := Execute(Query{Op: OpGet, Args: []string{"k"}}, m)
	if r.Response != "v2\x002" {
		t.Errorf("Get after two News = %q, want %q", r.Response, "v2\x002")
	}
}

func TestDropIdempotent(t *testing.T) {
	m := NewMap()
	Execute(Query{Op: OpNew, Args: []string{"k", "v", "0"}}, m)

	for i := 0; i < 2; i++ {
		r := Execute(Query{Op: OpDrop, Args: []string{"k"}}, m)
		if r.Response != respOk {
			t.Errorf("Drop #%d = %q, want %q", i, r.Response, respOk)
		}
	}

	r := Execute(Query{Op: OpGetValue, Args: []string{"k"}}, m)
	if r.Response != keyNotFound {
		t.Errorf("GetValue after drop = %q, want %q", r.Response, keyNotFound)
	}
}

func TestDropAllRemovesExactlyMatchingValues(t *testing.T) {
	m := NewMap()
	Execute(Query{Op: OpNew, Args: []string{"a", "V", "0"}}, m)
	Execute(Query{Op: OpNew, Args: []string{"b", "V", "0"}}, m)
	Execute(Query{Op: OpNew, Args: []string{"c", "W", "0"}}, m)

	r := Execute(Query{Op: OpDropAll, Args: []string{"V"}}, m)
	if !r.Mutated || r.Response != respOk {
		t.Fatalf("DropAll = %+v", r)
	}

	if resp := Execute(Query{Op: OpGet, Args: []string{"a"}}, m); resp.Response != keyNotFound {
		t.Errorf("Get(a) = %q, want miss", resp.Response)
	}
	if resp := Execute(Query{Op: OpGet, Args: []string{"b"}}, m); resp.Response != keyNotFound {
		t.Errorf("Get(b) = %q, want miss", resp.Response)
	}
	if resp := Execute(Query{Op: OpGet, Args: []string{"c"}}, m); resp.Response != "W\x000" {
		t.Errorf("Get(c) = %q, want hit", resp.Response)
	}
}

func TestGetNotFound(t *testing.T) {
	m := NewMap()
	r := Execute(Query{Op: OpGetValue, Args: []string{"missing"}}, m)
	if r.Response != keyNotFound {
		t.Errorf("GetValue(missing) = %q, want %q", r.Response, keyNotFound)
	}
}

func TestSetDialectOps(t *testing.T) {
	m := NewMap()

	r := Execute(Query{Op: OpSetDialectBitwise}, m)
	if r.DialectChange == nil || *r.DialectChange != DialectBitwise {
		t.Fatalf("SetDialectBitwise result = %+v", r)
	}
	if r.Mutated {
		t.Error("SetDialectBitwise should not count as a mutation")
	}

	r = Execute(Query{Op: OpSetDialectString}, m)
	if r.DialectChange == nil || *r.DialectChange != DialectString {
		t.Fatalf("SetDialectString result = %+v", r)
	}
}

func TestMapExpireBeforeIsNumeric(t *testing.T) {
	m := NewMap()
	// "9" < "10" lexicographically reversed from numeric order; this is
	// exactly the decade boundary the string-comparison bug mishandles.
	m.Set("a", "va", "9")
	m.Set("b", "vb", "10")
	m.Set("c", "vc", "0")

	removed := m.ExpireBefore(10)
	if removed != 1 {
		t.Fatalf("ExpireBefore(10) removed %d records, want 1", removed)
	}
	if _, ok := m.Get("a"); ok {
		t.Error("record with ttl 9 should have expired by now=10")
	}
	if _, ok := m.Get("b"); !ok {
		t.Error("record with ttl 10 should still be live at now=10 (strict >)")
	}
	if _, ok := m.Get("c"); !ok {
		t.Error("record with ttl 0 should never expire")
	}
}

func TestChangedCounterProgression(t *testing.T) {
	c := NewChanged()
	m := NewMap()

	r := Execute(Query{Op: OpNew, Args: []string{"k", "v", "0"}}, m)
	if r.Mutated {
		c.Add(1)
	}
	r = Execute(Query{Op: OpGetValue, Args: []string{"k"}}, m)
	if r.Mutated {
		c.Add(1)
	}

	if got := c.Value(); got != 1 {
		t.Errorf("counter = %d, want 1 (New counts, Get does not)", got)
	}

	taken := c.TakeAndReset()
	if taken != 1 {
		t.Errorf("TakeAndReset = %d, want 1", taken)
	}
	if c.Value() != 0 {
		t.Errorf("counter after reset = %d, want 0", c.Value())
	}
}
