// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package metrics is Firefly's self-instrumentation: counters per
// operation kind, a live record-count gauge, a live change-counter gauge,
// and a counter/histogram pair for snapshot writes. The teacher only
// consumes Prometheus (internal/metricdata/prometheus.go is a read-side
// client); here the service instruments itself with the same dependency.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/arthurdw/firefly/internal/store"
)

var (
	OpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "firefly",
		Name:      "ops_total",
		Help:      "Total number of store operations executed, by op kind.",
	}, []string{"op"})

	SnapshotWritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "firefly",
		Name:      "snapshot_writes_total",
		Help:      "Total number of successful snapshot writes.",
	})

	SnapshotWriteSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "firefly",
		Name:      "snapshot_write_seconds",
		Help:      "Duration of snapshot encode+write operations.",
		Buckets:   prometheus.DefBuckets,
	})

	ExpiredRecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "firefly",
		Name:      "expired_records_total",
		Help:      "Total number of records removed by the expiration loop.",
	})
)

func init() {
	prometheus.MustRegister(OpsTotal, SnapshotWritesTotal, SnapshotWriteSeconds, ExpiredRecordsTotal)
}

var registerGaugesOnce sync.Once

// RegisterGauges wires live gauges directly to m and changed via
// GaugeFunc, so /metrics always reflects the current state with no
// separate polling loop of its own. Safe to call more than once (e.g.
// from tests constructing multiple servers); only the first call's map
// and counter are ever actually wired.
func RegisterGauges(m *store.Map, changed *store.Changed) {
	registerGaugesOnce.Do(func() {
		prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "firefly",
			Name:      "records",
			Help:      "Current number of records held in the map.",
		}, func() float64 { return float64(m.Len()) }))

		prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "firefly",
			Name:      "change_counter",
			Help:      "Current value of the change counter awaiting the next snapshot.",
		}, func() float64 { return float64(changed.Value()) }))
	})
}

// ObserveOp records one execution of op.
func ObserveOp(op string) {
	OpsTotal.WithLabelValues(op).Inc()
}

// ObserveSnapshotWrite records one successful snapshot write and its
// duration.
func ObserveSnapshotWrite(d time.Duration) {
	SnapshotWritesTotal.Inc()
	SnapshotWriteSeconds.Observe(d.Seconds())
}

// ObserveExpired records n records removed by one expiration sweep.
func ObserveExpired(n int) {
	ExpiredRecordsTotal.Add(float64(n))
}
