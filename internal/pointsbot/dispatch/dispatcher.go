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

// Package dispatch routes gateway events to the ledger core: reactions in
// the task and reward channels become earn and spend transactions, messages
// carry the operator and user command surface, and Ready triggers the
// bootstrap barrier. No live event reaches the engine before the backlog
// replay has completed.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync/atomic"

	"points/internal/pointsbot/core"
	"points/internal/pointsbot/gateway"
)

const (
	cmdHelp    = "!help"
	cmdBalance = "!balance"
	cmdReload  = "!reload"
	cmdTask    = "!task"
	cmdReward  = "!reward"

	helpMessage = "!balance to check your current AP balance"
)

// Options identifies the channels and actors the dispatcher routes between.
type Options struct {
	TasksChannel   uint64
	RewardsChannel uint64
	BotID          uint64
	// OperatorID may issue !reload and catalog registrations. Zero disables
	// the operator commands.
	OperatorID uint64
	// ContactID, when non-zero, receives ContactMessage once after Ready.
	ContactID      uint64
	ContactMessage string
}

// Dispatcher consumes gateway events. Each handler is safe for concurrent
// use; per-user ordering comes from the ledger lock, not from the dispatcher.
type Dispatcher struct {
	engine *core.Engine
	loader *core.Loader
	gw     gateway.Client
	opts   Options
	armed  atomic.Bool
}

// New wires a dispatcher. It starts disarmed; HandleReady arms it after the
// backlog replay succeeds.
func New(engine *core.Engine, loader *core.Loader, gw gateway.Client, opts Options) *Dispatcher {
	return &Dispatcher{engine: engine, loader: loader, gw: gw, opts: opts}
}

// Armed reports whether live events are being processed.
func (d *Dispatcher) Armed() bool {
	return d.armed.Load()
}

// HandleReady runs the bootstrap barrier: replay the backlogs, then arm the
// dispatcher. A replay failure leaves the dispatcher disarmed and is fatal
// to startup.
func (d *Dispatcher) HandleReady(ctx context.Context) error {
	if err := d.loader.Load(ctx); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	d.armed.Store(true)
	if d.opts.ContactID != 0 && d.opts.ContactMessage != "" {
		d.engine.Notify(ctx, d.opts.ContactID, d.opts.ContactMessage)
	}
	log.Printf("dispatcher armed")
	return nil
}

// HandleReaction routes a reaction-add event by channel: tasks channel
// reactions earn, rewards channel reactions spend, anything else is ignored.
func (d *Dispatcher) HandleReaction(ctx context.Context, evt gateway.ReactionAdded) {
	if !d.armed.Load() {
		log.Printf("dropping reaction on message %d: dispatcher not armed", evt.MessageID)
		return
	}
	if evt.UserID == d.opts.BotID {
		return
	}
	switch evt.Channel {
	case d.opts.TasksChannel:
		if _, err := d.engine.Earn(ctx, evt); err != nil {
			log.Printf("ERROR: earn for user %d on message %d: %v", evt.UserID, evt.MessageID, err)
		}
	case d.opts.RewardsChannel:
		if _, err := d.engine.Spend(ctx, evt); err != nil {
			log.Printf("ERROR: spend for user %d on message %d: %v", evt.UserID, evt.MessageID, err)
		}
	}
}

// HandleMessage implements the typed command surface.
func (d *Dispatcher) HandleMessage(ctx context.Context, evt gateway.MessagePosted) {
	if evt.Author == d.opts.BotID {
		return
	}
	fields := strings.Fields(evt.Content)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "!") {
		return
	}

	switch fields[0] {
	case cmdHelp:
		if _, err := d.gw.PostMessage(ctx, evt.Channel, helpMessage); err != nil {
			log.Printf("send help message: %v", err)
		}
	case cmdBalance:
		text := fmt.Sprintf("You have %d AP", d.engine.BalanceOf(evt.Author))
		if d.engine.Policy().PublicBalanceReply {
			if _, err := d.gw.PostMessage(ctx, evt.Channel, text); err != nil {
				log.Printf("send balance reply: %v", err)
			}
			return
		}
		d.engine.Notify(ctx, evt.Author, text)
	case cmdReload:
		if !d.operator(evt.Author) {
			return
		}
		if err := d.loader.Reload(ctx); err != nil {
			log.Printf("ERROR: reload: %v", err)
			d.engine.Notify(ctx, evt.Author, "Reload failed, stores unchanged")
			return
		}
		d.engine.Notify(ctx, evt.Author, "Catalogs and ledger reloaded")
	case cmdTask, cmdReward:
		if !d.operator(evt.Author) {
			return
		}
		trigger, value, err := parseRegistration(fields)
		if err != nil {
			d.engine.Notify(ctx, evt.Author, fmt.Sprintf("Usage: %s <trigger_id> <value>", fields[0]))
			return
		}
		if fields[0] == cmdTask {
			d.engine.RegisterTask(trigger, value)
		} else {
			d.engine.RegisterReward(trigger, value)
		}
		d.engine.Notify(ctx, evt.Author, fmt.Sprintf("Registered %s trigger %d at %d AP", fields[0][1:], trigger, value))
	default:
		log.Printf("invalid command %q from user %d", fields[0], evt.Author)
	}
}

func (d *Dispatcher) operator(user uint64) bool {
	return d.opts.OperatorID != 0 && user == d.opts.OperatorID
}

func parseRegistration(fields []string) (trigger, value uint64, err error) {
	if len(fields) != 3 {
		return 0, 0, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	trigger, err = strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("trigger id: %w", err)
	}
	value, err = strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("value: %w", err)
	}
	return trigger, value, nil
}
