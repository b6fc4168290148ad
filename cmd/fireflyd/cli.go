// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"flag"
	"time"

	"github.com/arthurdw/firefly/internal/config"
)

var (
	flagHost         string
	flagPort         int
	flagOut          string
	flagSaveEvery    int
	flagClearEvery   int
	flagMaxQuerySize int
	flagLogLevel     string
	flagLogDateTime  bool
	flagGops         bool
	flagConfigFile   string
)

func cliInit() {
	flag.StringVar(&flagHost, "host", "127.0.0.1", "address to listen on")
	flag.IntVar(&flagPort, "port", 46600, "port to listen on")
	flag.StringVar(&flagOut, "out", "data.snapshot", "path to the snapshot file")
	flag.IntVar(&flagSaveEvery, "save-every", 1, "snapshot cadence in seconds; writes are skipped when nothing changed")
	flag.IntVar(&flagClearEvery, "clear-every", 10, "expiration sweep cadence in seconds; 0 disables the sweep")
	flag.IntVar(&flagMaxQuerySize, "max-query-size", 512, "maximum bytes read per query frame")
	flag.StringVar(&flagLogLevel, "log-level", "info", "sets the logging level: [trace, debug, info (default), warn, error]")
	flag.BoolVar(&flagLogDateTime, "logdate", false, "set this flag to add date and time to log messages")
	flag.BoolVar(&flagGops, "gops", false, "listen via github.com/google/gops/agent (for debugging)")
	flag.StringVar(&flagConfigFile, "config", "", "path to an optional JSON config file for NATS/S3/REST facade settings")
	flag.Parse()
}

// explicitFlags returns the set of flag names the caller passed on the
// command line, so config.ApplyFile knows which core fields must not
// be overwritten by the config file.
func explicitFlags() map[string]bool {
	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})
	return explicit
}

func baseConfig() *config.Config {
	return &config.Config{
		Host:         flagHost,
		Port:         flagPort,
		Out:          flagOut,
		SaveEvery:    time.Duration(flagSaveEvery) * time.Second,
		ClearEvery:   time.Duration(flagClearEvery) * time.Second,
		MaxQuerySize: flagMaxQuerySize,
		LogLevel:     flagLogLevel,
		LogDate:      flagLogDateTime,
		Gops:         flagGops,
	}
}
