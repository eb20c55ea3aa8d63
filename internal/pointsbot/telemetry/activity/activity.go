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

// Package activity exposes Prometheus metrics for the points ledger: how many
// earns and spends were applied, what was rejected, and how often durable
// writes or notifications degraded. Metrics are global only; user ids never
// appear as label values.
package activity

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	earnsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_earns_total",
		Help: "Total earn operations committed to the ledger",
	})
	pointsEarnedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_earned_total",
		Help: "Total points credited across all earn operations",
	})
	spendsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_spends_total",
		Help: "Total spend operations committed to the ledger",
	})
	pointsSpentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_spent_total",
		Help: "Total points debited across all spend operations",
	})
	spendRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_spend_rejections_total",
		Help: "Spend operations rejected for insufficient funds",
	})
	invalidTriggersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_invalid_triggers_total",
		Help: "Spend reactions referencing a trigger absent from the rewards catalog",
	})
	persistErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_persist_errors_total",
		Help: "Durable record writes that failed after an in-memory commit",
	})
	dmFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "points_dm_failures_total",
		Help: "Outcome notifications that could not be delivered",
	})
	accountsTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "points_accounts_tracked",
		Help: "Number of accounts currently held in the in-memory ledger",
	})
	reloadRecords = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "points_reload_records",
		Help:    "Distribution of backlog records replayed per bootstrap or reload",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024},
	})
)

func init() {
	// Register metrics eagerly. If no Prometheus endpoint is exposed, the
	// registration is harmless.
	prometheus.MustRegister(earnsTotal, pointsEarnedTotal, spendsTotal, pointsSpentTotal,
		spendRejectionsTotal, invalidTriggersTotal, persistErrorsTotal, dmFailuresTotal,
		accountsTracked, reloadRecords)
}

// Observation hooks, called by the core on the paths they name.

func EarnApplied(value uint64) {
	earnsTotal.Inc()
	pointsEarnedTotal.Add(float64(value))
}

func SpendApplied(cost uint64) {
	spendsTotal.Inc()
	pointsSpentTotal.Add(float64(cost))
}

func SpendRejected()  { spendRejectionsTotal.Inc() }
func InvalidTrigger() { invalidTriggersTotal.Inc() }
func PersistError()   { persistErrorsTotal.Inc() }
func DMFailure()      { dmFailuresTotal.Inc() }

func SetAccountsTracked(n int)   { accountsTracked.Set(float64(n)) }
func ReloadReplayed(records int) { reloadRecords.Observe(float64(records)) }

// Config controls the optional standalone metrics endpoint.
type Config struct {
	// MetricsAddr, when non-empty, starts a dedicated HTTP server that serves
	// /metrics. If you already expose Prometheus elsewhere, leave it empty
	// and register promhttp yourself.
	MetricsAddr string
}

// Enable starts the metrics endpoint when configured. Safe to call once at
// startup; the server runs for the process lifetime.
func Enable(cfg Config) {
	if cfg.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		fmt.Printf("Metrics endpoint listening on %s\n", cfg.MetricsAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("ERROR: metrics endpoint: %v", err)
		}
	}()
}
