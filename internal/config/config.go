// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads Firefly's configuration: flags for the core server
// knobs (§6 CLI surface), plus an optional JSON file for the domain-stack
// extras (NATS ingestion, S3 snapshot mirror, REST facade bind address)
// that have no flag of their own.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// S3 holds the optional snapshot-mirror destination. A nil *S3 on Config
// means snapshots are never mirrored.
type S3 struct {
	Bucket       string `json:"bucket"`
	Endpoint     string `json:"endpoint"`
	Region       string `json:"region"`
	AccessKey    string `json:"access-key"`
	SecretKey    string `json:"secret-key"`
	UsePathStyle bool   `json:"use-path-style"`
}

// NATS holds the optional bulk-ingestion subscription. A nil *NATS on
// Config means the ingest subscriber is never started.
type NATS struct {
	Address       string `json:"address"`
	Subject       string `json:"subject"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	CredsFilePath string `json:"creds-file-path"`
}

// Config is the fully resolved set of knobs the server runs with: the core
// fields come from flags (see cmd/fireflyd/cli.go), the three extras below
// only from an optional --config JSON file.
type Config struct {
	Host         string
	Port         int
	Out          string
	SaveEvery    time.Duration
	ClearEvery   time.Duration
	MaxQuerySize int
	LogLevel     string
	LogDate      bool
	Gops         bool

	RestAddr string `json:"rest-addr"`
	S3       *S3    `json:"s3"`
	NATS     *NATS  `json:"nats"`
}

// fileFields is the subset of JSON-file-settable data: the domain-stack
// extras, plus optional overrides for the core flag fields so a config
// file alone (no flags) is still a complete configuration. ApplyFile only
// ever overwrites a core field the caller tells it was not explicitly
// set on the command line.
type fileFields struct {
	Host         *string `json:"host"`
	Port         *int    `json:"port"`
	Out          *string `json:"out"`
	SaveEvery    *int    `json:"save-every"`
	ClearEvery   *int    `json:"clear-every"`
	MaxQuerySize *int    `json:"max-query-size"`
	LogLevel     *string `json:"log-level"`
	LogDate      *bool   `json:"logdate"`
	Gops         *bool   `json:"gops"`
	RestAddr     string  `json:"rest-addr"`
	S3           *S3     `json:"s3"`
	NATS         *NATS   `json:"nats"`
}

// LoadFile reads and jsonschema-validates the config file at path, or
// returns a zero fileFields if path is empty (no --config given). A
// malformed or schema-invalid file is always fatal to the caller.
func LoadFile(path string) (*fileFields, error) {
	if path == "" {
		return &fileFields{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := Validate(raw); err != nil {
		return nil, fmt.Errorf("validating config file %s: %w", path, err)
	}

	var ff fileFields
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ff); err != nil {
		return nil, fmt.Errorf("decoding config file %s: %w", path, err)
	}
	return &ff, nil
}

// ApplyFile merges file-provided values into cfg. explicit names the core
// flags the caller set on the command line (via flag.Visit); a file value
// for any other core field overwrites the flag default. The domain-stack
// extras (RestAddr, S3, NATS) are always taken from the file since they
// have no flag counterpart.
func ApplyFile(cfg *Config, ff *fileFields, explicit map[string]bool) {
	if ff.Host != nil && !explicit["host"] {
		cfg.Host = *ff.Host
	}
	if ff.Port != nil && !explicit["port"] {
		cfg.Port = *ff.Port
	}
	if ff.Out != nil && !explicit["out"] {
		cfg.Out = *ff.Out
	}
	if ff.SaveEvery != nil && !explicit["save-every"] {
		cfg.SaveEvery = time.Duration(*ff.SaveEvery) * time.Second
	}
	if ff.ClearEvery != nil && !explicit["clear-every"] {
		cfg.ClearEvery = time.Duration(*ff.ClearEvery) * time.Second
	}
	if ff.MaxQuerySize != nil && !explicit["max-query-size"] {
		cfg.MaxQuerySize = *ff.MaxQuerySize
	}
	if ff.LogLevel != nil && !explicit["log-level"] {
		cfg.LogLevel = *ff.LogLevel
	}
	if ff.LogDate != nil && !explicit["logdate"] {
		cfg.LogDate = *ff.LogDate
	}
	if ff.Gops != nil && !explicit["gops"] {
		cfg.Gops = *ff.Gops
	}

	cfg.RestAddr = ff.RestAddr
	cfg.S3 = ff.S3
	cfg.NATS = ff.NATS
}
