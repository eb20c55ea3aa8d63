// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api implements the operator-facing HTTP server for the points
// ledger: balance inspection and backlog reload, for use by humans and
// scripts rather than chat users.
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"points/internal/pointsbot/core"
)

// Server handles the operator HTTP requests.
type Server struct {
	engine *core.Engine
	loader *core.Loader
}

// NewServer creates the operator API server.
func NewServer(engine *core.Engine, loader *core.Loader) *Server {
	return &Server{engine: engine, loader: loader}
}

// RegisterRoutes sets up the HTTP routes for the server on the given ServeMux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/balance", s.handleBalance)
	mux.HandleFunc("/reload", s.handleReload)
	mux.HandleFunc("/healthz", s.handleHealthz)
}

// handleBalance reports a user's current in-memory balance. The in-memory
// ledger is authoritative, so this may briefly run ahead of the durable log.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user")
	if raw == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}
	user, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "user id must be numeric", http.StatusBadRequest)
		return
	}
	fmt.Fprintf(w, "%d\n", s.engine.BalanceOf(user))
}

// handleReload re-runs the backlog replay with overwrite semantics.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	if err := s.loader.Reload(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("reload failed, stores unchanged: %v", err), http.StatusInternalServerError)
		return
	}
	fmt.Fprintln(w, "reloaded")
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

// ListenAndServe starts the HTTP server on the specified address.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	fmt.Printf("Operator API server listening on %s\n", addr)
	return httpServer.ListenAndServe()
}
