// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package expiry

import (
	"strconv"
	"testing"
	"time"

	"github.com/arthurdw/firefly/internal/store"
)

func TestTickRemovesExpiredAndIncrementsCounter(t *testing.T) {
	m := store.NewMap()
	changed := store.NewChanged()

	past := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	future := strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10)

	m.Set("expired", "v1", past)
	m.Set("alive", "v2", future)
	m.Set("forever", "v3", "0")

	tick(m, changed)

	if _, ok := m.Get("expired"); ok {
		t.Error("expired record should have been removed")
	}
	if _, ok := m.Get("alive"); !ok {
		t.Error("non-expired record should remain")
	}
	if _, ok := m.Get("forever"); !ok {
		t.Error("ttl=0 record should never expire")
	}
	if got := changed.Value(); got != 1 {
		t.Errorf("change counter = %d, want 1", got)
	}
}

func TestTickNoExpirationsDoesNotTouchCounter(t *testing.T) {
	m := store.NewMap()
	changed := store.NewChanged()
	m.Set("k", "v", "0")

	tick(m, changed)

	if got := changed.Value(); got != 0 {
		t.Errorf("change counter = %d, want 0", got)
	}
}
