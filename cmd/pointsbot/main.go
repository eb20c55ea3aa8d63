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

// Package main is the entry point for the points-ledger bot.
//
// The service keeps every balance in memory as the authority and writes
// through to a durable record log — by default a chat channel whose messages
// act as rows, one "<user_id> - <balance>" line per user. At startup it
// replays the task, reward, and user backlogs into the in-memory stores;
// only then does it start routing live reaction events into earn/spend
// transactions.
//
// This file is responsible for orchestrating the service:
//  1. Loading deployment identity from the environment and tunables from flags.
//  2. Building the record logs, stores, engine, reconciler, and dispatcher.
//  3. Running the bootstrap barrier, then the operator HTTP server.
//  4. Managing graceful shutdown and the final metrics summary.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"points"
	"points/internal/pointsbot/api"
	"points/internal/pointsbot/config"
	"points/internal/pointsbot/core"
	"points/internal/pointsbot/dispatch"
	"points/internal/pointsbot/gateway"
	"points/internal/pointsbot/record"
	"points/internal/pointsbot/telemetry/activity"
)

func main() {
	// Tunables live on flags; deployment identity (token, channel ids, actor
	// ids, policy) comes from the environment — see internal/pointsbot/config.
	httpAddr := flag.String("http_addr", ":8080", "Operator HTTP listen address (e.g., :8080)")
	metricsAddr := flag.String("metrics_addr", "", "If non-empty, expose Prometheus /metrics on this address (e.g., :9090)")
	logBackend := flag.String("log_backend", "channel", "Durable log backend for balance records: channel | memory | sqlite")
	sqliteDSN := flag.String("sqlite_dsn", "pointsbot.db", "SQLite database path when -log_backend=sqlite")
	seedPath := flag.String("catalog_seed", "", "Optional YAML file of catalog registrations applied before the dispatcher arms")
	mirrorMode := flag.String("mirror", "redis", "Balance mirror: redis | off. Without REDIS_ADDR the redis mirror logs instead of connecting.")
	mirrorTTL := flag.Duration("mirror_marker_ttl", 24*time.Hour, "TTL for mirror write markers")
	demo := flag.Bool("demo", false, "Seed the in-memory gateway with sample backlogs and run a short earn/spend scenario")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}
	if *demo {
		// The demo supplies its own channels and actors.
		cfg = demoConfig(cfg)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration: %v", err)
	}

	// Capture settings for the final summary.
	core.SetSetting("http_addr", *httpAddr)
	core.SetSetting("log_backend", *logBackend)
	core.SetSetting("mirror", *mirrorMode)
	core.SetSettingUint64("tasks_channel", cfg.TasksChannel)
	core.SetSettingUint64("rewards_channel", cfg.RewardsChannel)
	core.SetSettingUint64("users_channel", cfg.UsersChannel)
	core.SetSettingBool("retain_spend_reaction", cfg.RetainSpendReaction)
	core.SetSettingBool("public_balance_reply", cfg.PublicBalanceReply)

	activity.Enable(activity.Config{MetricsAddr: *metricsAddr})

	// The chat gateway is an external collaborator; this binary wires the
	// in-memory fake so the whole pipeline runs with no infrastructure.
	// Production deployments supply a real gateway.Client here.
	gw := gateway.NewFake()
	if *demo {
		seedDemoBacklogs(gw, cfg)
	}

	// Task and reward catalogs always replay from their channels; the user
	// ledger log backend is selectable.
	tasksLog := record.NewChannelLog(gw, cfg.TasksChannel)
	rewardsLog := record.NewChannelLog(gw, cfg.RewardsChannel)
	usersLog, closeDB, err := buildUsersLog(*logBackend, *sqliteDSN, gw, cfg.UsersChannel)
	if err != nil {
		log.Fatalf("users log: %v", err)
	}
	defer closeDB()

	mirror, err := record.BuildMirror(*mirrorMode, cfg.RedisAddr, *mirrorTTL)
	if err != nil {
		log.Fatalf("balance mirror: %v", err)
	}

	tasks := points.NewCatalog()
	rewards := points.NewCatalog()
	ledger := points.NewLedger()

	loader := core.NewLoader(tasksLog, rewardsLog, usersLog, tasks, rewards, ledger)
	reconciler := core.NewReconciler(ledger, usersLog, mirror, gw)
	engine := core.NewEngine(tasks, rewards, ledger, gw, reconciler, core.Policy{
		RetainSpendReaction: cfg.RetainSpendReaction,
		PublicBalanceReply:  cfg.PublicBalanceReply,
	})
	dispatcher := dispatch.New(engine, loader, gw, dispatch.Options{
		TasksChannel:   cfg.TasksChannel,
		RewardsChannel: cfg.RewardsChannel,
		BotID:          cfg.BotID,
		OperatorID:     cfg.OperatorID,
		ContactID:      cfg.ContactID,
		ContactMessage: cfg.ContactMessage,
	})

	// Bootstrap barrier: the backlog replay must complete before any live
	// event is processed. A malformed record aborts startup here.
	ctx := context.Background()
	if err := dispatcher.HandleReady(ctx); err != nil {
		log.Fatalf("startup: %v", err)
	}

	// Seed-file registrations happen after the barrier so a replay failure
	// never leaves a half-initialized catalog behind them.
	if *seedPath != "" {
		seed, err := config.LoadSeed(*seedPath)
		if err != nil {
			log.Fatalf("catalog seed: %v", err)
		}
		for _, e := range seed.Tasks {
			engine.RegisterTask(e.Trigger, e.Value)
		}
		for _, e := range seed.Rewards {
			engine.RegisterReward(e.Trigger, e.Value)
		}
		log.Printf("seeded %d tasks and %d rewards from %s", len(seed.Tasks), len(seed.Rewards), *seedPath)
	}

	if *demo {
		runDemoScenario(ctx, dispatcher, gw, cfg)
	}

	apiServer := api.NewServer(engine, loader)
	mux := http.NewServeMux()
	apiServer.RegisterRoutes(mux)
	httpServer := &http.Server{
		Addr:    *httpAddr,
		Handler: mux,
	}

	go func() {
		fmt.Printf("Operator API server listening on %s\n", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", *httpAddr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	fmt.Println("\nShutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	core.PrintFinalSummary()
	fmt.Println("Stopped.")
}

// buildUsersLog selects the durable backend for balance records. The second
// return value closes the database handle for the sqlite backend and is a
// no-op otherwise.
func buildUsersLog(backend, dsn string, gw gateway.Client, channel uint64) (record.Log, func(), error) {
	if backend != "sqlite" {
		l, err := record.BuildLog(backend, record.Options{Gateway: gw, Channel: channel})
		return l, func() {}, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	sqlLog := record.NewSQLLog(db)
	if err := sqlLog.Init(context.Background()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return sqlLog, func() { db.Close() }, nil
}

// demoConfig fills in the identifiers the demo scenario expects.
func demoConfig(cfg config.Config) config.Config {
	cfg.TasksChannel = 10
	cfg.RewardsChannel = 20
	cfg.UsersChannel = 30
	cfg.BotID = 1
	if cfg.OperatorID == 0 {
		cfg.OperatorID = 2
	}
	return cfg
}

// seedDemoBacklogs populates the fake gateway with a small persisted state:
// two tasks, one reward, and one returning user with an existing balance
// record.
func seedDemoBacklogs(gw *gateway.Fake, cfg config.Config) {
	gw.Seed(cfg.TasksChannel,
		record.FormatEntry(501, 5),
		record.FormatEntry(502, 3),
	)
	gw.Seed(cfg.RewardsChannel,
		record.FormatEntry(601, 7),
	)
	gw.Seed(cfg.UsersChannel,
		record.FormatEntry(42, 10),
	)
}

// runDemoScenario pushes a few reaction events through the dispatcher:
// an earn for a returning user, an earn for a new user, a successful spend,
// and a rejected spend.
func runDemoScenario(ctx context.Context, d *dispatch.Dispatcher, gw *gateway.Fake, cfg config.Config) {
	fmt.Println("Running demo scenario...")
	events := []gateway.ReactionAdded{
		{Channel: cfg.TasksChannel, MessageID: 501, UserID: 42},   // 10 -> 15
		{Channel: cfg.TasksChannel, MessageID: 502, UserID: 77},   // new user -> 3
		{Channel: cfg.RewardsChannel, MessageID: 601, UserID: 42}, // 15 -> 8
		{Channel: cfg.RewardsChannel, MessageID: 601, UserID: 77}, // rejected: 3 < 7
	}
	for _, evt := range events {
		d.HandleReaction(ctx, evt)
	}
	for _, user := range []uint64{42, 77} {
		for _, dm := range gw.DirectMessages(user) {
			fmt.Printf("  DM to %d: %s\n", user, dm)
		}
	}
	fmt.Println("Demo scenario complete. Balances: curl 'http://localhost:8080/balance?user=42'")
}
