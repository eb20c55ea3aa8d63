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

package gateway

import (
	"context"
	"fmt"
	"sync"
)

// RemovedReaction records one DeleteReaction call for later assertions.
type RemovedReaction struct {
	Channel   uint64
	MessageID uint64
	UserID    uint64
}

// Fake is an in-memory gateway Client for tests and the dependency-free demo.
// Channels are ordered message slices with gateway-assigned ids; direct
// channels are lazily created per user. Individual operations can be forced
// to fail to exercise degraded paths.
type Fake struct {
	mu       sync.Mutex
	nextID   uint64
	channels map[uint64][]Message
	dmByUser map[uint64]uint64
	userByDM map[uint64]uint64
	removed  []RemovedReaction

	// Forced errors, nil for normal operation.
	FailPost   error
	FailEdit   error
	FailDelete error
	FailOpenDM error
	FailList   error
}

// NewFake creates an empty fake gateway.
func NewFake() *Fake {
	return &Fake{
		nextID:   1000, // gateway-style ids, distinct from small test user ids
		channels: make(map[uint64][]Message),
		dmByUser: make(map[uint64]uint64),
		userByDM: make(map[uint64]uint64),
	}
}

// Seed appends messages to a channel backlog, returning the assigned ids.
// Used by tests to model human-authored catalog and ledger records.
func (f *Fake) Seed(channel uint64, contents ...string) []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]uint64, 0, len(contents))
	for _, c := range contents {
		f.nextID++
		f.channels[channel] = append(f.channels[channel], Message{ID: f.nextID, Content: c})
		ids = append(ids, f.nextID)
	}
	return ids
}

// PostMessage implements Client.
func (f *Fake) PostMessage(ctx context.Context, channel uint64, text string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPost != nil {
		return 0, f.FailPost
	}
	f.nextID++
	f.channels[channel] = append(f.channels[channel], Message{ID: f.nextID, Content: text})
	return f.nextID, nil
}

// EditMessage implements Client.
func (f *Fake) EditMessage(ctx context.Context, channel, messageID uint64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailEdit != nil {
		return f.FailEdit
	}
	msgs := f.channels[channel]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Content = text
			return nil
		}
	}
	return fmt.Errorf("gateway: message %d not found in channel %d", messageID, channel)
}

// DeleteReaction implements Client.
func (f *Fake) DeleteReaction(ctx context.Context, channel, messageID, userID uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailDelete != nil {
		return f.FailDelete
	}
	f.removed = append(f.removed, RemovedReaction{Channel: channel, MessageID: messageID, UserID: userID})
	return nil
}

// OpenDirectChannel implements Client.
func (f *Fake) OpenDirectChannel(ctx context.Context, userID uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailOpenDM != nil {
		return 0, f.FailOpenDM
	}
	if ch, ok := f.dmByUser[userID]; ok {
		return ch, nil
	}
	f.nextID++
	f.dmByUser[userID] = f.nextID
	f.userByDM[f.nextID] = userID
	return f.nextID, nil
}

// ListMessages implements Client. Messages are replayed in chronological
// order; a fresh call restarts from the beginning.
func (f *Fake) ListMessages(ctx context.Context, channel uint64, fn func(Message) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	if f.FailList != nil {
		err := f.FailList
		f.mu.Unlock()
		return err
	}
	msgs := make([]Message, len(f.channels[channel]))
	copy(msgs, f.channels[channel])
	f.mu.Unlock()

	for _, m := range msgs {
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// Messages returns a copy of a channel's messages for assertions.
func (f *Fake) Messages(channel uint64) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.channels[channel]))
	copy(out, f.channels[channel])
	return out
}

// DirectMessages returns the texts sent to a user's private channel.
func (f *Fake) DirectMessages(userID uint64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.dmByUser[userID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(f.channels[ch]))
	for _, m := range f.channels[ch] {
		out = append(out, m.Content)
	}
	return out
}

// Removed returns all withdrawn reactions in call order.
func (f *Fake) Removed() []RemovedReaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RemovedReaction, len(f.removed))
	copy(out, f.removed)
	return out
}
