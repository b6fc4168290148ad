// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package restapi

// swaggerDoc is a hand-written OpenAPI 2.0 document describing the
// facade's routes. The teacher generates this file with swaggo/swag
// (`go generate`); that tool is dropped here (DESIGN.md) since nothing
// in this module runs go generate, so the document is authored by hand
// and served directly instead of checked in alongside generated Go.
const swaggerDoc = `{
  "swagger": "2.0",
  "info": {
    "title": "Firefly REST API",
    "description": "HTTP facade over the Firefly key/value store.",
    "version": "1.0.0",
    "license": {"name": "MIT License"}
  },
  "host": "localhost:8081",
  "basePath": "/",
  "paths": {
    "/{key}": {
      "get": {
        "summary": "Read a record",
        "parameters": [
          {"name": "key", "in": "path", "required": true, "type": "string"}
        ],
        "responses": {
          "200": {
            "description": "record found",
            "schema": {
              "type": "object",
              "properties": {
                "value": {"type": "string"},
                "ttl": {"type": "string"}
              }
            }
          },
          "404": {"description": "key not found"}
        }
      },
      "post": {
        "summary": "Create or replace a record",
        "parameters": [
          {"name": "key", "in": "path", "required": true, "type": "string"},
          {
            "name": "body",
            "in": "body",
            "required": true,
            "schema": {
              "type": "object",
              "required": ["value"],
              "properties": {
                "value": {"type": "string"},
                "ttl": {"type": "string", "description": "absolute unix-epoch second deadline, \"0\" for never"}
              }
            }
          }
        ],
        "responses": {
          "200": {"description": "ok"},
          "400": {"description": "malformed body"}
        }
      }
    },
    "/healthz": {
      "get": {
        "summary": "Liveness probe",
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/metrics": {
      "get": {
        "summary": "Prometheus metrics",
        "responses": {"200": {"description": "text exposition format"}}
      }
    }
  }
}`
