// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package client is a Go port of ffly-rs/src/lib.rs: a small TCP client
// that speaks the bitwise wire dialect. It is used by cmd/fireflyctl and
// by tests that want a real client instead of raw socket plumbing.
package client

import (
	"errors"
	"net"
	"strings"
	"sync"
)

// ErrUnexpectedResponse is returned when the server's response does not
// match the shape a given query expects (the original's
// FireflyError::UnexpectedResponseError).
var ErrUnexpectedResponse = errors.New("client: unexpected response from server")

// DefaultMaxBufferSize is the read buffer size Connect uses, matching
// the original's default.
const DefaultMaxBufferSize = 512

// Client is a single TCP session speaking the bitwise dialect. One
// query is in flight on the connection at a time; concurrent callers
// are serialized by mu, mirroring the original's Arc<Mutex<TcpStream>>.
type Client struct {
	mu            sync.Mutex
	conn          net.Conn
	maxBufferSize int
}

// Connect dials address and negotiates the bitwise dialect, using
// DefaultMaxBufferSize as the read buffer size.
func Connect(address string) (*Client, error) {
	return ConnectWithMaxBuffer(address, DefaultMaxBufferSize)
}

// ConnectWithMaxBuffer dials address with a caller-chosen read buffer
// size and negotiates the bitwise dialect. Queries are sent in the
// bitwise wire form from then on; the handshake itself is sent as the
// legacy "QUERY TYPE BITWISE;" string the server accepts as an alias
// for "QUERYTYPEBITWISE;" (see internal/wire's handshake alias).
func ConnectWithMaxBuffer(address string, maxBufferSize int) (*Client, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, err
	}

	c := &Client{conn: conn, maxBufferSize: maxBufferSize}
	if _, err := c.sendOK([]byte("QUERY TYPE BITWISE;")); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) sendNoCheck(data []byte) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.Write(data); err != nil {
		return "", err
	}

	buf := make([]byte, c.maxBufferSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

func (c *Client) send(data []byte, expected func(string) bool) (string, error) {
	resp, err := c.sendNoCheck(data)
	if err != nil {
		return "", err
	}
	if !expected(resp) {
		return "", ErrUnexpectedResponse
	}
	return resp, nil
}

func (c *Client) sendOK(data []byte) (string, error) {
	return c.send(data, func(resp string) bool {
		return resp == "Ok" || !strings.Contains(resp, "Error")
	})
}

// New creates or replaces key with value and no expiry (ttl "0").
func (c *Client) New(key, value string) error {
	return c.NewWithTTL(key, value, "0")
}

// NewWithTTL creates or replaces key with value and the given absolute
// unix-epoch ttl string ("0" for never).
func (c *Client) NewWithTTL(key, value, ttl string) error {
	query := "0" + key + "\x00" + value + "\x00" + ttl
	_, err := c.sendOK([]byte(query))
	return err
}

// Get returns key's value and ttl. Unlike the original, which splits
// the response on a comma, this splits on the NUL byte the current
// wire format actually embeds between value and ttl (spec §4.4); the
// original's comma-split is stale relative to the current protocol.
func (c *Client) Get(key string) (value, ttl string, err error) {
	resp, err := c.send([]byte("1"+key), func(s string) bool {
		return strings.Contains(s, "\x00")
	})
	if err != nil {
		return "", "", err
	}

	parts := strings.SplitN(resp, "\x00", 2)
	if len(parts) != 2 {
		return "", "", ErrUnexpectedResponse
	}
	return parts[0], parts[1], nil
}

// GetValue returns key's value alone.
func (c *Client) GetValue(key string) (string, error) {
	return c.sendOK([]byte("2" + key))
}

// GetTTL returns key's ttl alone, as the raw decimal string.
func (c *Client) GetTTL(key string) (string, error) {
	return c.sendOK([]byte("3" + key))
}

// Drop removes key.
func (c *Client) Drop(key string) error {
	_, err := c.sendOK([]byte("4" + key))
	return err
}

// DropAll removes every record whose value equals want.
func (c *Client) DropAll(want string) error {
	_, err := c.sendOK([]byte("5" + want))
	return err
}
