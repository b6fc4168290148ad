// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fileSchema describes the shape of the optional --config JSON file: the
// domain-stack extras (nats, s3, rest-addr) plus optional overrides for
// the core flag-settable fields.
const fileSchema = `
{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "host": {"type": "string"},
    "port": {"type": "integer", "minimum": 1, "maximum": 65535},
    "out": {"type": "string"},
    "save-every": {"type": "integer", "minimum": 1},
    "clear-every": {"type": "integer", "minimum": 0},
    "max-query-size": {"type": "integer", "minimum": 1},
    "log-level": {"type": "string", "enum": ["trace", "debug", "info", "warn", "error"]},
    "logdate": {"type": "boolean"},
    "gops": {"type": "boolean"},
    "rest-addr": {"type": "string"},
    "s3": {
      "type": "object",
      "additionalProperties": false,
      "required": ["bucket"],
      "properties": {
        "bucket": {"type": "string"},
        "endpoint": {"type": "string"},
        "region": {"type": "string"},
        "access-key": {"type": "string"},
        "secret-key": {"type": "string"},
        "use-path-style": {"type": "boolean"}
      }
    },
    "nats": {
      "type": "object",
      "additionalProperties": false,
      "required": ["address", "subject"],
      "properties": {
        "address": {"type": "string"},
        "subject": {"type": "string"},
        "username": {"type": "string"},
        "password": {"type": "string"},
        "creds-file-path": {"type": "string"}
      }
    }
  }
}`

var compiledSchema = mustCompile()

func mustCompile() *jsonschema.Schema {
	sch, err := jsonschema.CompileString("firefly-config.json", fileSchema)
	if err != nil {
		panic("config: invalid embedded json schema: " + err.Error())
	}
	return sch
}

// Validate checks raw against the config file schema.
func Validate(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("not valid json: %w", err)
	}
	if err := compiledSchema.Validate(v); err != nil {
		return err
	}
	return nil
}
