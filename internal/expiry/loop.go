// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package expiry implements the periodic TTL sweep (C8).
package expiry

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/arthurdw/firefly/internal/metrics"
	"github.com/arthurdw/firefly/internal/store"
	cclog "github.com/arthurdw/firefly/pkg/log"
)

// Loop registers the C8 expiration job on s: every interval, every
// record whose ttl is not "0" and whose deadline has numerically passed
// is removed, and the change counter is incremented once per removal.
// Passing interval <= 0 is the caller's signal that the loop should not
// run at all (spec: --clear-every 0 disables expiration entirely) —
// Loop itself does not check interval, so callers must skip calling it
// in that case.
func Loop(s gocron.Scheduler, m *store.Map, changed *store.Changed, interval time.Duration) error {
	_, err := s.NewJob(gocron.DurationJob(interval),
		gocron.NewTask(func() {
			tick(m, changed)
		}))
	return err
}

func tick(m *store.Map, changed *store.Changed) {
	now := time.Now().Unix()
	removed := m.ExpireBefore(now)
	if removed > 0 {
		changed.Add(int64(removed))
		metrics.ObserveExpired(removed)
		cclog.Debugf("expiry: removed %d expired record(s)", removed)
	}
}
