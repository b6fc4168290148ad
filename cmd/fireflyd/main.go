// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command fireflyd is the Firefly server: it wires the record map, the
// wire-protocol connection handler, and the two background loops
// (snapshot-on-change, TTL expiry) together, plus the optional
// domain-stack extras a --config file can enable (NATS bulk ingestion,
// an S3 snapshot mirror, the REST facade).
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/gops/agent"

	"github.com/arthurdw/firefly/internal/expiry"
	"github.com/arthurdw/firefly/internal/ingest"
	"github.com/arthurdw/firefly/internal/metrics"
	"github.com/arthurdw/firefly/internal/restapi"
	"github.com/arthurdw/firefly/internal/s3mirror"
	"github.com/arthurdw/firefly/internal/server"
	"github.com/arthurdw/firefly/internal/snapshot"
	"github.com/arthurdw/firefly/internal/store"
	cclog "github.com/arthurdw/firefly/pkg/log"
)

func main() {
	loadDotEnv()
	cliInit()

	cfg := loadConfig()
	cclog.SetLogLevel(cfg.LogLevel)
	cclog.SetLogDateTime(cfg.LogDate)

	if cfg.Gops {
		if err := agent.Listen(agent.Options{}); err != nil {
			cclog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	records, err := snapshot.ReadFile(cfg.Out)
	if err != nil {
		cclog.Fatalf("loading snapshot %s failed: %s", cfg.Out, err.Error())
	}

	m := store.NewMap()
	m.Replace(records)
	changed := store.NewChanged()
	metrics.RegisterGauges(m, changed)
	cclog.Infof("loaded %d record(s) from %s", len(records), cfg.Out)

	var mirror snapshot.Mirror
	if cfg.S3 != nil {
		target, err := s3mirror.New(cfg.S3, "firefly.snapshot.avro")
		if err != nil {
			cclog.Fatalf("configuring S3 mirror failed: %s", err.Error())
		}
		mirror = target
		cclog.Infof("mirroring snapshots to s3://%s", cfg.S3.Bucket)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		cclog.Fatalf("creating scheduler failed: %s", err.Error())
	}

	if err := snapshot.Loop(scheduler, m, changed, cfg.Out, cfg.SaveEvery, mirror); err != nil {
		cclog.Fatalf("registering snapshot loop failed: %s", err.Error())
	}
	if cfg.ClearEvery > 0 {
		if err := expiry.Loop(scheduler, m, changed, cfg.ClearEvery); err != nil {
			cclog.Fatalf("registering expiry loop failed: %s", err.Error())
		}
	} else {
		cclog.Infof("expiration sweep disabled (--clear-every 0)")
	}
	scheduler.Start()

	var subscriber *ingest.Subscriber
	if cfg.NATS != nil {
		subscriber, err = ingest.Connect(cfg.NATS)
		if err != nil {
			cclog.Fatalf("connecting to NATS failed: %s", err.Error())
		}
		if err := subscriber.Start(m, changed); err != nil {
			cclog.Fatalf("starting NATS subscription failed: %s", err.Error())
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		cclog.Fatalf("listening on %s failed: %s", addr, err.Error())
	}

	srv := server.New(m, changed, cfg.MaxQuerySize)
	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cclog.Infof("server listening at %s...", addr)
		if err := srv.Serve(ctx, ln); err != nil {
			cclog.Errorf("server stopped: %s", err.Error())
		}
	}()

	var restServer *http.Server
	if cfg.RestAddr != "" {
		api := restapi.New(m, changed)
		restServer = &http.Server{
			Addr:         cfg.RestAddr,
			Handler:      api.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			cclog.Infof("REST facade listening at %s...", cfg.RestAddr)
			if err := restServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				cclog.Errorf("REST facade stopped: %s", err.Error())
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(25)
	}
	systemdNotify(true, "running")
	<-sigs

	systemdNotify(false, "shutting down")
	cancel()
	if restServer != nil {
		restServer.Shutdown(context.Background())
	}
	if subscriber != nil {
		subscriber.Close()
	}
	if err := scheduler.Shutdown(); err != nil {
		cclog.Warnf("scheduler shutdown: %s", err.Error())
	}
	wg.Wait()

	cclog.Print("Graceful shutdown completed!")
}
