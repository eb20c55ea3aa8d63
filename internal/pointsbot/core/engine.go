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

// Package core: the transaction engine. Earn and Spend apply a reaction
// event against the ledger; the ledger lock is held only for the in-memory
// balance computation, then released before durable-record I/O and
// notification delivery.
package core

import (
	"context"
	"errors"
	"fmt"
	"log"

	"points"
	"points/internal/pointsbot/gateway"
	"points/internal/pointsbot/telemetry/activity"
)

// Status classifies the outcome of a transaction.
type Status int

const (
	// StatusOK: the balance mutation committed.
	StatusOK Status = iota
	// StatusInvalidTrigger: the reward trigger is not in the catalog; no
	// ledger action was taken.
	StatusInvalidTrigger
	// StatusInsufficientFunds: the spend was rejected; no mutation occurred.
	StatusInsufficientFunds
)

// Outcome is what a transaction reports back. NewBalance is the committed
// balance on StatusOK and the unchanged current balance on rejection.
// HadRecord tells whether the account already had a durable record before
// the operation (false means the reconciler created one).
type Outcome struct {
	Status     Status
	NewBalance uint64
	HadRecord  bool
}

// Policy holds the behaviors that differ between deployments.
type Policy struct {
	// RetainSpendReaction keeps the triggering reaction in place after a
	// successful spend; the user's own later removal of it marks the reward
	// as used. When false, the reaction is withdrawn on success as well.
	RetainSpendReaction bool
	// PublicBalanceReply answers balance queries in the channel they were
	// asked in rather than by private message.
	PublicBalanceReply bool
}

// Engine applies earn and spend operations atomically against the ledger.
// Operations against the same user serialize on the ledger lock; operations
// against different users do not interfere beyond that lock.
type Engine struct {
	tasks   *points.Catalog
	rewards *points.Catalog
	ledger  *points.Ledger
	gw      gateway.Client
	rec     *Reconciler
	policy  Policy
}

// NewEngine wires the transaction engine.
func NewEngine(tasks, rewards *points.Catalog, ledger *points.Ledger, gw gateway.Client, rec *Reconciler, policy Policy) *Engine {
	return &Engine{tasks: tasks, rewards: rewards, ledger: ledger, gw: gw, rec: rec, policy: policy}
}

// Earn credits the user with the value of the task trigger they reacted to.
// An unregistered trigger confers zero value (the earn still counts as a
// transaction and is persisted). The triggering reaction is withdrawn after
// processing regardless of outcome, so a replayed backlog or duplicate
// delivery cannot award the same physical reaction twice; withdrawal failure
// is logged, not fatal.
func (e *Engine) Earn(ctx context.Context, evt gateway.ReactionAdded) (Outcome, error) {
	defer e.withdrawReaction(ctx, evt)

	value, _ := e.tasks.Lookup(evt.MessageID)

	newBalance, hadRecord, err := e.ledger.Credit(evt.UserID, value)
	if err != nil {
		// Overflow: fatal invariant violation. Nothing was committed; halt
		// this operation rather than proceed with corrupted state.
		return Outcome{}, fmt.Errorf("earn trigger %d: %w", evt.MessageID, err)
	}
	recordEarn(value)
	activity.SetAccountsTracked(e.ledger.Len())

	if err := e.rec.Sync(ctx, evt.UserID, newBalance); err != nil {
		// Record creation failed: the balance is committed in memory but has
		// no durable slot. Escalate; the next transaction retries creation.
		return Outcome{Status: StatusOK, NewBalance: newBalance, HadRecord: hadRecord}, err
	}

	e.rec.Notify(ctx, evt.UserID, fmt.Sprintf("Task complete! You now have a total of %d AP", newBalance))
	return Outcome{Status: StatusOK, NewBalance: newBalance, HadRecord: hadRecord}, nil
}

// Spend debits the user by the cost of the reward trigger they reacted to.
// Unknown triggers and insufficient balances reject without mutation. On
// success the reaction is retained per policy (removing it later is the
// user's manual signal that the reward was consumed); on rejection it is
// withdrawn.
func (e *Engine) Spend(ctx context.Context, evt gateway.ReactionAdded) (Outcome, error) {
	cost, ok := e.rewards.Lookup(evt.MessageID)
	if !ok {
		recordInvalidTrigger()
		e.rec.Notify(ctx, evt.UserID, "This reward is not available")
		return Outcome{Status: StatusInvalidTrigger, NewBalance: e.ledger.Balance(evt.UserID)}, nil
	}

	newBalance, hadRecord, err := e.ledger.Debit(evt.UserID, cost)
	var insuf *points.InsufficientFundsError
	if errors.As(err, &insuf) {
		recordSpendRejection()
		e.withdrawReaction(ctx, evt)
		e.rec.Notify(ctx, evt.UserID, "Insufficient points to purchase this reward")
		return Outcome{Status: StatusInsufficientFunds, NewBalance: insuf.Balance, HadRecord: hadRecord}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("spend trigger %d: %w", evt.MessageID, err)
	}
	recordSpend(cost)
	activity.SetAccountsTracked(e.ledger.Len())

	if !e.policy.RetainSpendReaction {
		e.withdrawReaction(ctx, evt)
	}

	if err := e.rec.Sync(ctx, evt.UserID, newBalance); err != nil {
		return Outcome{Status: StatusOK, NewBalance: newBalance, HadRecord: hadRecord}, err
	}

	e.rec.Notify(ctx, evt.UserID,
		fmt.Sprintf("Reward purchased! Remove your reaction once you have used this reward. Your balance is now %d AP", newBalance))
	return Outcome{Status: StatusOK, NewBalance: newBalance, HadRecord: hadRecord}, nil
}

// RegisterTask is the insertion primitive for the tasks catalog.
func (e *Engine) RegisterTask(trigger, value uint64) {
	e.tasks.Register(trigger, value)
}

// RegisterReward is the insertion primitive for the rewards catalog.
func (e *Engine) RegisterReward(trigger, value uint64) {
	e.rewards.Register(trigger, value)
}

// BalanceOf reports the user's current in-memory balance (absent ⇒ 0).
func (e *Engine) BalanceOf(user uint64) uint64 {
	return e.ledger.Balance(user)
}

// Notify exposes outcome delivery for the command surface.
func (e *Engine) Notify(ctx context.Context, user uint64, text string) {
	e.rec.Notify(ctx, user, text)
}

// Policy returns the engine's configured policy flags.
func (e *Engine) Policy() Policy {
	return e.policy
}

func (e *Engine) withdrawReaction(ctx context.Context, evt gateway.ReactionAdded) {
	if err := e.gw.DeleteReaction(ctx, evt.Channel, evt.MessageID, evt.UserID); err != nil {
		log.Printf("delete reaction on message %d by user %d: %v", evt.MessageID, evt.UserID, err)
	}
}
