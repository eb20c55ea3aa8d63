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

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"points"
	"points/internal/pointsbot/core"
	"points/internal/pointsbot/gateway"
	"points/internal/pointsbot/record"
)

func newTestServer(t *testing.T, usersBacklog ...string) (*httptest.Server, *points.Ledger) {
	t.Helper()
	gw := gateway.NewFake()
	tasks := points.NewCatalog()
	rewards := points.NewCatalog()
	ledger := points.NewLedger()

	usersLog := record.NewMemoryLog(usersBacklog...)
	loader := core.NewLoader(record.NewMemoryLog(), record.NewMemoryLog(), usersLog, tasks, rewards, ledger)
	rec := core.NewReconciler(ledger, usersLog, nil, gw)
	engine := core.NewEngine(tasks, rewards, ledger, gw, rec, core.Policy{})

	mux := http.NewServeMux()
	NewServer(engine, loader).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, ledger
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(b)
}

// TestBalanceEndpoint reads the in-memory balance, zero for strangers.
func TestBalanceEndpoint(t *testing.T) {
	srv, ledger := newTestServer(t)
	ledger.Replace(map[uint64]points.Account{42: {Balance: 15}})

	resp, err := http.Get(srv.URL + "/balance?user=42")
	if err != nil {
		t.Fatalf("GET /balance: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := strings.TrimSpace(body(t, resp)); got != "15" {
		t.Fatalf("body = %q, want %q", got, "15")
	}

	resp, err = http.Get(srv.URL + "/balance?user=777")
	if err != nil {
		t.Fatalf("GET /balance: %v", err)
	}
	if got := strings.TrimSpace(body(t, resp)); got != "0" {
		t.Fatalf("unknown user body = %q, want %q", got, "0")
	}
}

// TestBalanceEndpoint_BadRequest rejects missing and non-numeric user ids.
func TestBalanceEndpoint_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/balance", "/balance?user=esteban"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("GET %s status = %d, want 400", path, resp.StatusCode)
		}
	}
}

// TestReloadEndpoint re-runs the backlog replay; GET is refused.
func TestReloadEndpoint(t *testing.T) {
	srv, ledger := newTestServer(t, "42 - 10")

	resp, err := http.Get(srv.URL + "/reload")
	if err != nil {
		t.Fatalf("GET /reload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/reload", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /reload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST status = %d, want 200", resp.StatusCode)
	}
	if got := ledger.Balance(42); got != 10 {
		t.Fatalf("balance after reload = %d, want 10", got)
	}
}

// TestReloadEndpoint_Failure reports a replay error without touching stores.
func TestReloadEndpoint_Failure(t *testing.T) {
	srv, ledger := newTestServer(t, "not a record")
	ledger.Replace(map[uint64]points.Account{7: {Balance: 3}})

	resp, err := http.Post(srv.URL+"/reload", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /reload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	if got := ledger.Balance(7); got != 3 {
		t.Fatalf("existing balance mutated to %d", got)
	}
}

// TestHealthz answers ok.
func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
