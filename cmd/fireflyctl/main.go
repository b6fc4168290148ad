// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command fireflyctl is a minimal CLI wrapping pkg/client, the
// client-side counterpart the spec calls out of scope but the original
// repo ships as ffly-rs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arthurdw/firefly/pkg/client"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fireflyctl [-addr host:port] <command> [args...]

commands:
  get <key>              print value and ttl
  set <key> <value>      create or replace, ttl "0"
  ttl <key> <value> <ttl> create or replace with an explicit ttl
  drop <key>             remove a key
  dropall <value>        remove every record with this value`)
	os.Exit(2)
}

func main() {
	addr := flag.String("addr", "127.0.0.1:46600", "firefly server address")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
	}

	c, err := client.Connect(*addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fireflyctl: connect: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := run(c, args); err != nil {
		fmt.Fprintf(os.Stderr, "fireflyctl: %v\n", err)
		os.Exit(1)
	}
}

func run(c *client.Client, args []string) error {
	switch cmd := args[0]; cmd {
	case "get":
		if len(args) != 2 {
			usage()
		}
		value, ttl, err := c.Get(args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", value, ttl)
		return nil

	case "set":
		if len(args) != 3 {
			usage()
		}
		return c.New(args[1], args[2])

	case "ttl":
		if len(args) != 4 {
			usage()
		}
		return c.NewWithTTL(args[1], args[2], args[3])

	case "drop":
		if len(args) != 2 {
			usage()
		}
		return c.Drop(args[1])

	case "dropall":
		if len(args) != 2 {
			usage()
		}
		return c.DropAll(args[1])

	default:
		usage()
		return nil
	}
}
