// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package restapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arthurdw/firefly/internal/store"
)

func newTestAPI() *API {
	return New(store.NewMap(), store.NewChanged())
}

func TestGetMissingKeyIs404(t *testing.T) {
	a := newTestAPI()
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	a := newTestAPI()
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	body, _ := json.Marshal(createRequest{Value: "hello"})
	resp, err := http.Post(srv.URL+"/greeting", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post status = %d, want 200", resp.StatusCode)
	}

	if a.Changed.Value() != 1 {
		t.Errorf("changed = %d, want 1", a.Changed.Value())
	}

	resp, err = http.Get(srv.URL + "/greeting")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var got valueResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Value != "hello" || got.TTL != "0" {
		t.Errorf("got = %+v, want value=hello ttl=0", got)
	}
}

func TestCreateWithExplicitTTL(t *testing.T) {
	a := newTestAPI()
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	ttl := "1999999999"
	body, _ := json.Marshal(createRequest{Value: "v", TTL: &ttl})
	resp, err := http.Post(srv.URL+"/k", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	record, ok := a.Map.Get("k")
	if !ok {
		t.Fatal("expected key to be set")
	}
	if record.TTL != ttl {
		t.Errorf("ttl = %q, want %q", record.TTL, ttl)
	}
}

func TestHealthzAndMetricsRespond(t *testing.T) {
	a := newTestAPI()
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
