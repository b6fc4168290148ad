// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ingest is a supplemental bulk-ingestion front door onto the
// same record map and change counter the TCP wire protocol uses. It decodes
// influx line-protocol messages received over NATS
// (measurement=key, field value=<value>, tag ttl=<ttl>) into New calls,
// additive to and never a replacement for the two wire dialects in spec
// §6.
package ingest

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"
	"github.com/nats-io/nats.go"

	"github.com/arthurdw/firefly/internal/config"
	"github.com/arthurdw/firefly/internal/store"
	cclog "github.com/arthurdw/firefly/pkg/log"
)

// Subscriber owns a single NATS connection and subscription that feeds
// decoded points into the shared map, incrementing the same change
// counter the TCP connection handler uses.
type Subscriber struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string

	mu sync.Mutex
}

// Connect opens a NATS connection per cfg, but does not yet subscribe.
func Connect(cfg *config.NATS) (*Subscriber, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("ingest: NATS address is required")
	}
	if cfg.Subject == "" {
		return nil, fmt.Errorf("ingest: NATS subject is required")
	}

	var opts []nats.Option
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.CredsFilePath != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFilePath))
	}
	opts = append(opts,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				cclog.Warnf("ingest: NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			cclog.Infof("ingest: NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)

	conn, err := nats.Connect(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("ingest: NATS connect failed: %w", err)
	}

	return &Subscriber{conn: conn, subject: cfg.Subject}, nil
}

// Start subscribes to the configured subject; every message is decoded as
// one or more influx line-protocol points and applied to m/changed as a
// New op, exactly as the Connection Handler applies a parsed NEW query.
func (s *Subscriber) Start(m *store.Map, changed *store.Changed) error {
	sub, err := s.conn.Subscribe(s.subject, func(msg *nats.Msg) {
		if err := decodeAndApply(msg.Data, m, changed); err != nil {
			cclog.Warnf("ingest: decoding message on %s failed: %v", s.subject, err)
		}
	})
	if err != nil {
		return fmt.Errorf("ingest: subscribe to %s failed: %w", s.subject, err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	cclog.Infof("ingest: subscribed to %s", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.conn != nil {
		s.conn.Close()
	}
}

// decodeAndApply decodes every point in data and applies it to m as a New,
// incrementing changed once per point. A point missing its "value" field
// is skipped; a missing "ttl" tag defaults to "0" (no expiry), matching
// New's own 2-arg auto-completion in the wire protocol.
func decodeAndApply(data []byte, m *store.Map, changed *store.Changed) error {
	dec := lineprotocol.NewDecoderWithBytes(data)

	for dec.Next() {
		key, err := dec.Measurement()
		if err != nil {
			return fmt.Errorf("measurement: %w", err)
		}
		keyStr := string(key)

		ttl := "0"
		for {
			tagKey, tagVal, err := dec.NextTag()
			if err != nil {
				return fmt.Errorf("tag: %w", err)
			}
			if tagKey == nil {
				break
			}
			if string(tagKey) == "ttl" {
				ttl = string(tagVal)
			}
		}

		value, hasValue := "", false
		for {
			fieldKey, fieldVal, err := dec.NextField()
			if err != nil {
				return fmt.Errorf("field: %w", err)
			}
			if fieldKey == nil {
				break
			}
			if string(fieldKey) == "value" {
				value = valueToString(fieldVal)
				hasValue = true
			}
		}

		if _, err := dec.Time(lineprotocol.Nanosecond, time.Now()); err != nil {
			return fmt.Errorf("time: %w", err)
		}

		if !hasValue {
			cclog.Warnf("ingest: point for key %q has no value field, skipping", keyStr)
			continue
		}

		m.Set(keyStr, value, ttl)
		changed.Add(1)
	}

	return nil
}

// valueToString renders a line-protocol field value as the plain string
// Firefly stores, trying each typed accessor in turn since the field's
// wire kind (string, float, int, uint, bool) isn't known up front.
func valueToString(v lineprotocol.Value) string {
	switch v.Kind() {
	case lineprotocol.String:
		return v.StringV()
	case lineprotocol.Float:
		return strconv.FormatFloat(v.FloatV(), 'f', -1, 64)
	case lineprotocol.Int:
		return strconv.FormatInt(v.IntV(), 10)
	case lineprotocol.Uint:
		return strconv.FormatUint(v.UintV(), 10)
	case lineprotocol.Bool:
		return strconv.FormatBool(v.BoolV())
	default:
		return ""
	}
}
