// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package restapi is the optional HTTP facade: a Go port of the
// original rest/src/main.rs's two routes (GET/POST on a key), plus the
// ambient /metrics, /healthz and /swagger/ endpoints the teacher mounts
// for its own API. It talks to the store directly in-process — there is
// no second TCP hop through the wire protocol.
package restapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/arthurdw/firefly/internal/store"
	cclog "github.com/arthurdw/firefly/pkg/log"
)

// @title                      Firefly REST API
// @version                    1.0.0
// @description                HTTP facade over the Firefly key/value store.

// @contact.name               Firefly
// @license.name               MIT License

// @host                       localhost:8081
// @basePath                   /

// API holds the shared record map and change counter the REST handlers
// operate on. It mounts no auth — the teacher's auth stack was dropped
// entirely (see DESIGN.md), and the facade is meant for trusted callers.
type API struct {
	Map     *store.Map
	Changed *store.Changed
}

// New returns an API bound to m and changed.
func New(m *store.Map, changed *store.Changed) *API {
	return &API{Map: m, Changed: changed}
}

// ErrorResponse is the JSON body written on any non-2xx response.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// valueResponse mirrors the original's FullValueResponse: the value and
// its ttl, returned by GET /{key}.
type valueResponse struct {
	Value string `json:"value"`
	TTL   string `json:"ttl"`
}

// statusResponse mirrors the original's Status: a bare ok acknowledgement.
type statusResponse struct {
	Status string `json:"status"`
}

// createRequest mirrors the original's FullValue: the JSON body POST
// /{key} expects. TTL is optional and, when omitted, defaults to "0"
// (never expire) — same default the original's new_with_ttl(..., 0)
// uses. Like the original, the ttl given here is used verbatim as the
// record's absolute-epoch TTL string; callers that want a record to
// expire must compute and send that epoch second themselves.
type createRequest struct {
	Value string  `json:"value"`
	TTL   *string `json:"ttl"`
}

// Router builds the mux.Router serving every endpoint, wrapped in the
// same gorilla/handlers CORS and compression middleware the teacher's
// server.go applies to its own router; Handler adds request logging.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", a.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/swagger/doc.json", a.handleSwaggerDoc).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"))).Methods(http.MethodGet)

	r.HandleFunc("/{key}", a.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/{key}", a.handleCreate).Methods(http.MethodPost)

	r.Use(handlers.CompressHandler)
	r.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedOrigins([]string{"*"})))

	return r
}

// Handler returns the fully wrapped http.Handler (router plus logging
// middleware), ready to hand to an http.Server.
func (a *API) Handler() http.Handler {
	r := a.Router()
	return handlers.CustomLoggingHandler(cclog.InfoWriter, r, func(w io.Writer, params handlers.LogFormatterParams) {
		cclog.Finfof(w, "%s %s (Response: %d, Size: %d)", params.Request.Method, params.URL.RequestURI(), params.StatusCode, params.Size)
	})
}

func (a *API) handleHealthz(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(statusResponse{Status: "ok"})
}

// handleGet serves GET /{key}, the original's get_all: look the key up
// and return its value and ttl, or 404 if absent.
func (a *API) handleGet(rw http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	record, ok := a.Map.Get(key)
	if !ok {
		writeError(rw, http.StatusNotFound, "key not found")
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(valueResponse{Value: record.Value, TTL: record.TTL})
}

// handleCreate serves POST /{key}, the original's create: decode the
// body, default a missing ttl to "0", and store it.
func (a *API) handleCreate(rw http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var body createRequest
	if err := decode(r.Body, &body); err != nil {
		writeError(rw, http.StatusBadRequest, err.Error())
		return
	}

	ttl := "0"
	if body.TTL != nil {
		ttl = *body.TTL
	}

	a.Map.Set(key, body.Value, ttl)
	a.Changed.Add(1)

	rw.Header().Set("Content-Type", "application/json")
	json.NewEncoder(rw).Encode(statusResponse{Status: "ok"})
}

func (a *API) handleSwaggerDoc(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	rw.Write([]byte(swaggerDoc))
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	cclog.Warnf("restapi: %s", msg)
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	json.NewEncoder(rw).Encode(ErrorResponse{Status: http.StatusText(status), Error: msg})
}

func decode(r io.Reader, val interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(val)
}
