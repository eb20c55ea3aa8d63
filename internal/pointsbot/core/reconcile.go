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

// Package core provides the ledger engine: transactions, reconciliation with
// durable storage, and backlog bootstrap. This file implements the
// reconciler, which pushes committed balances back to the record log and
// delivers outcome notifications.
package core

import (
	"context"
	"fmt"
	"log"
	"sync"

	"points"
	"points/internal/pointsbot/gateway"
	"points/internal/pointsbot/record"
)

// Reconciler synchronizes durable storage with the in-memory ledger after a
// transaction commits, and notifies the acting user of the outcome. The
// ledger lock is never held here; durable-record I/O and delivery may
// suspend, and a transiently stale durable balance is acceptable because the
// in-memory ledger is authoritative.
type Reconciler struct {
	ledger *points.Ledger
	log    record.Log
	mirror record.BalanceMirror // optional, nil disables mirroring
	gw     gateway.Client

	// mu serializes durable writes so two concurrent first transactions for
	// the same user cannot both create a balance record.
	mu sync.Mutex
}

// NewReconciler wires a reconciler. mirror may be nil.
func NewReconciler(ledger *points.Ledger, recLog record.Log, mirror record.BalanceMirror, gw gateway.Client) *Reconciler {
	return &Reconciler{ledger: ledger, log: recLog, mirror: mirror, gw: gw}
}

// Sync persists the user's committed balance: create the durable record on
// first contact (capturing its identifier), update it in place afterwards.
//
// Creation failure is escalated to the caller — an account without a durable
// record after a successful transaction is an inconsistency that must not be
// silently accepted. Update failure is logged and absorbed: the in-memory
// balance stays authoritative, and the next Sync for this user retries the
// write with the then-current balance.
func (r *Reconciler) Sync(ctx context.Context, user, balance uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := record.FormatEntry(user, balance)

	// Re-read the account here rather than trusting the caller's view:
	// between its commit and this write, a concurrent transaction may already
	// have created the record.
	acct, _ := r.ledger.Account(user)
	if !acct.HasRecord {
		id, err := r.log.Append(ctx, entry)
		if err != nil {
			recordPersistError()
			return fmt.Errorf("create balance record for user %d: %w", user, err)
		}
		r.ledger.SetRecord(user, id)
	} else if err := r.log.Edit(ctx, acct.RecordID, entry); err != nil {
		recordPersistError()
		log.Printf("ERROR: update balance record %d for user %d: %v (in-memory ledger remains authoritative)", acct.RecordID, user, err)
		return nil
	}

	if r.mirror != nil {
		if err := r.mirror.SetBalance(ctx, user, balance); err != nil {
			log.Printf("balance mirror for user %d: %v", user, err)
		}
	}
	return nil
}

// Notify delivers a human-readable outcome message to the user's private
// channel. Delivery failure is logged, never fatal, never retried.
func (r *Reconciler) Notify(ctx context.Context, user uint64, text string) {
	dm, err := r.gw.OpenDirectChannel(ctx, user)
	if err != nil {
		recordDMFailure()
		log.Printf("open private channel with user %d: %v", user, err)
		return
	}
	if _, err := r.gw.PostMessage(ctx, dm, text); err != nil {
		recordDMFailure()
		log.Printf("send private message to user %d: %v", user, err)
	}
}
