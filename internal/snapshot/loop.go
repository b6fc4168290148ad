// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package snapshot

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/arthurdw/firefly/internal/metrics"
	"github.com/arthurdw/firefly/internal/store"
	cclog "github.com/arthurdw/firefly/pkg/log"
)

// Mirror is an optional secondary destination a successful local
// snapshot write is also copied to (see internal/s3mirror). A nil
// Mirror means the snapshot loop only ever writes the local file.
type Mirror interface {
	Mirror(records map[string]store.Record) error
}

// Loop registers the C7 snapshot job on s: every interval, if the change
// counter is nonzero, it is reset and the current map contents are
// written to path. The reset-before-write ordering matches §4.6 exactly
// so that mutations racing with an in-flight write re-raise the counter
// instead of being silently absorbed by it.
func Loop(s gocron.Scheduler, m *store.Map, changed *store.Changed, path string, interval time.Duration, mirror Mirror) error {
	_, err := s.NewJob(gocron.DurationJob(interval),
		gocron.NewTask(func() {
			tick(m, changed, path, mirror)
		}))
	return err
}

func tick(m *store.Map, changed *store.Changed, path string, mirror Mirror) {
	if changed.TakeAndReset() == 0 {
		return
	}

	records := m.Snapshot()

	start := time.Now()
	if err := WriteFile(path, records); err != nil {
		cclog.Errorf("snapshot: write to %s failed: %v", path, err)
		return
	}
	metrics.ObserveSnapshotWrite(time.Since(start))
	cclog.Debugf("snapshot: wrote %d records to %s", len(records), path)

	if mirror != nil {
		if err := mirror.Mirror(records); err != nil {
			cclog.Warnf("snapshot: mirror failed: %v", err)
		}
	}
}
