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

// Package gateway defines the contract with the external chat gateway that
// delivers events and exposes message primitives. The core never talks to a
// concrete chat service; production wiring supplies a real client, tests and
// the demo binary use the in-memory Fake.
package gateway

import "context"

// Message is a single post in a channel, as seen during backlog listing.
type Message struct {
	ID      uint64
	Content string
}

// Ready signals that the gateway connection is established and backlog
// channels can be listed.
type Ready struct{}

// MessagePosted is delivered for each new message in a visible channel.
type MessagePosted struct {
	Author  uint64
	Channel uint64
	Content string
}

// ReactionAdded is delivered when a user reacts to a message.
type ReactionAdded struct {
	Channel   uint64
	MessageID uint64
	UserID    uint64
}

// Client is the minimal operation surface the ledger needs from a gateway.
// Implementations may suspend on network I/O; all methods take a context.
type Client interface {
	// PostMessage publishes text to a channel and returns the new message id.
	PostMessage(ctx context.Context, channel uint64, text string) (uint64, error)

	// EditMessage replaces the content of an existing message in place.
	EditMessage(ctx context.Context, channel, messageID uint64, text string) error

	// DeleteReaction withdraws a user's reaction from a message.
	DeleteReaction(ctx context.Context, channel, messageID, userID uint64) error

	// OpenDirectChannel returns a private channel with the given user,
	// creating it if necessary.
	OpenDirectChannel(ctx context.Context, userID uint64) (uint64, error)

	// ListMessages iterates the finite backlog of a channel, invoking fn for
	// each message. The listing is restartable per call. Iteration stops at
	// the first error returned by fn.
	ListMessages(ctx context.Context, channel uint64, fn func(Message) error) error
}
