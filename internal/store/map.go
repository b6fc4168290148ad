// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"strconv"
	"sync"
	"time"
)

// Record is one (value, ttl) pair stored under a key in the Map.
type Record struct {
	Value string
	TTL   string
}

// Map is the authoritative shared record store. A single exclusive lock
// guards all mutation and iteration; reads materially outnumber writes in
// the original workload but the reference implementation never split this
// into a RWMutex, so neither do we — DropAll and the expiration sweep both
// need an exclusive iteration pass anyway.
type Map struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMap returns an empty, ready-to-use Map.
func NewMap() *Map {
	return &Map{records: make(map[string]Record)}
}

// Set inserts or replaces the record under key. Last writer wins.
func (m *Map) Set(key, value, ttl string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = Record{Value: value, TTL: ttl}
}

// Get returns the record stored under key, and whether it was present.
func (m *Map) Get(key string) (Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[key]
	return r, ok
}

// Drop removes key if present. Reports whether anything was removed.
func (m *Map) Drop(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; !ok {
		return false
	}
	delete(m.records, key)
	return true
}

// DropAll removes every record whose value equals want, and reports how
// many were removed. O(n) linear scan, as the spec does not ask for a
// value index.
func (m *Map) DropAll(want string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, r := range m.records {
		if r.Value == want {
			delete(m.records, k)
			removed++
		}
	}
	return removed
}

// Snapshot returns a deep copy of the current contents, suitable for
// handing to the snapshot codec without holding the map lock while it
// serializes.
func (m *Map) Snapshot() map[string]Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Record, len(m.records))
	for k, r := range m.records {
		out[k] = r
	}
	return out
}

// Replace discards the current contents and installs records wholesale.
// Used once at startup after a successful snapshot load.
func (m *Map) Replace(records map[string]Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// Len reports the current record count.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// ExpireBefore removes every record whose ttl is not "0" and whose
// deadline is strictly less than now (unix epoch seconds), comparing
// numerically rather than lexicographically. It returns the number of
// records removed.
//
// A ttl that fails to parse as an integer is treated as already expired
// and removed. New and the other write paths store the ttl text as
// given, so such a record lives until the next sweep.
func (m *Map) ExpireBefore(now int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for k, r := range m.records {
		if r.TTL == "0" {
			continue
		}
		deadline, err := strconv.ParseInt(r.TTL, 10, 64)
		if err != nil || deadline < now {
			delete(m.records, k)
			removed++
		}
	}
	return removed
}

// Changed is the process-wide change counter: a hint incremented by
// every mutating operation and zeroed by the snapshot loop just before
// it copies the map to persist.
type Changed struct {
	mu    sync.Mutex
	count int64
}

// NewChanged returns a zeroed change counter.
func NewChanged() *Changed {
	return &Changed{}
}

// Add increments the counter by delta, which must be non-negative.
func (c *Changed) Add(delta int64) {
	if delta <= 0 {
		return
	}
	c.mu.Lock()
	c.count += delta
	c.mu.Unlock()
}

// TakeAndReset returns the current counter value and resets it to zero
// in the same critical section, so no increment between the read and the
// reset is ever lost.
func (c *Changed) TakeAndReset() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.count
	c.count = 0
	return v
}

// Value returns the current counter without resetting it. Used for
// instrumentation only.
func (c *Changed) Value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// NowTTL formats the instant d from now as an absolute-deadline ttl
// string, the same representation New expects for a non-"0" ttl.
func NowTTL(d time.Duration) string {
	return strconv.FormatInt(time.Now().Add(d).Unix(), 10)
}
