// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/joho/godotenv"

	"github.com/arthurdw/firefly/internal/config"
	cclog "github.com/arthurdw/firefly/pkg/log"
)

// loadDotEnv loads a ./.env file into the process environment before
// flags are parsed, exactly where the teacher loads its own .env in
// cmd/cc-backend. A missing file is not fatal; a malformed one is.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		cclog.Fatalf("parsing './.env' file failed: %s", err.Error())
	}
}

// loadConfig merges the --config file (if any) over the flag defaults,
// flags winning whenever both set a field explicitly. The LOG_LEVEL
// environment variable in turn overrides both.
func loadConfig() *config.Config {
	cfg := baseConfig()

	ff, err := config.LoadFile(flagConfigFile)
	if err != nil {
		cclog.Fatal(err)
	}
	config.ApplyFile(cfg, ff, explicitFlags())

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}

	return cfg
}

// systemdNotify informs systemd of a readiness/status change, folded in
// from the teacher's pkg/runtimeEnv.SystemdNotifiy rather than kept as
// its own package (see DESIGN.md).
func systemdNotify(ready bool, status string) {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		return
	}

	args := []string{fmt.Sprintf("--pid=%d", os.Getpid())}
	if ready {
		args = append(args, "--ready")
	}
	if status != "" {
		args = append(args, fmt.Sprintf("--status=%s", status))
	}

	exec.Command("systemd-notify", args...).Run()
}
