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

// Package core: backlog bootstrap. The loader replays the persisted catalog
// and ledger backlogs into the in-memory stores before any live event is
// processed. A malformed record aborts the whole load; a partial ledger
// would corrupt balance invariants.
package core

import (
	"context"
	"fmt"
	"log"

	"points"
	"points/internal/pointsbot/record"
	"points/internal/pointsbot/telemetry/activity"
)

// Loader reconstructs the catalog and ledger stores from their backlogs.
// Load runs once at startup as a barrier before the dispatcher is armed;
// Reload re-runs the same algorithm for operators, with overwrite semantics.
type Loader struct {
	tasksLog   record.Log
	rewardsLog record.Log
	usersLog   record.Log
	tasks      *points.Catalog
	rewards    *points.Catalog
	ledger     *points.Ledger
}

// NewLoader wires a loader over the three backlogs and their target stores.
func NewLoader(tasksLog, rewardsLog, usersLog record.Log, tasks, rewards *points.Catalog, ledger *points.Ledger) *Loader {
	return &Loader{
		tasksLog:   tasksLog,
		rewardsLog: rewardsLog,
		usersLog:   usersLog,
		tasks:      tasks,
		rewards:    rewards,
		ledger:     ledger,
	}
}

// Load replays all three backlogs and swaps the stores. Each backlog is
// parsed into a fresh map first, so a replay failure leaves the current
// stores untouched. Any parse error is fatal to the load.
func (b *Loader) Load(ctx context.Context) error {
	tasks, err := loadCatalogBacklog(ctx, b.tasksLog)
	if err != nil {
		return fmt.Errorf("tasks backlog: %w", err)
	}
	rewards, err := loadCatalogBacklog(ctx, b.rewardsLog)
	if err != nil {
		return fmt.Errorf("rewards backlog: %w", err)
	}
	accounts, err := loadLedgerBacklog(ctx, b.usersLog)
	if err != nil {
		return fmt.Errorf("ledger backlog: %w", err)
	}

	b.tasks.Replace(tasks)
	b.rewards.Replace(rewards)
	b.ledger.Replace(accounts)

	replayed := len(tasks) + len(rewards) + len(accounts)
	activity.ReloadReplayed(replayed)
	activity.SetAccountsTracked(len(accounts))
	log.Printf("backlog replay complete: %d tasks, %d rewards, %d accounts", len(tasks), len(rewards), len(accounts))
	return nil
}

// Reload is the operator-facing re-run of Load. Overwrite, not merge.
func (b *Loader) Reload(ctx context.Context) error {
	return b.Load(ctx)
}

// loadCatalogBacklog parses each record's content into a (trigger, value)
// pair. Re-registration of a trigger overwrites, mirroring live catalog
// semantics.
func loadCatalogBacklog(ctx context.Context, backlog record.Log) (map[uint64]uint64, error) {
	entries := make(map[uint64]uint64)
	err := backlog.Replay(ctx, func(rec record.Record) error {
		trigger, value, err := record.ParseEntry(rec.Content)
		if err != nil {
			return fmt.Errorf("record %d: %w", rec.ID, err)
		}
		entries[trigger] = value
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// loadLedgerBacklog parses each record's content into a (user, balance) pair
// and captures the record's own identifier as that user's durable record id,
// so future updates target the correct slot.
func loadLedgerBacklog(ctx context.Context, backlog record.Log) (map[uint64]points.Account, error) {
	accounts := make(map[uint64]points.Account)
	err := backlog.Replay(ctx, func(rec record.Record) error {
		user, balance, err := record.ParseEntry(rec.Content)
		if err != nil {
			return fmt.Errorf("record %d: %w", rec.ID, err)
		}
		accounts[user] = points.Account{Balance: balance, RecordID: rec.ID, HasRecord: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}
