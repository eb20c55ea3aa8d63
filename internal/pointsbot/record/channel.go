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

package record

import (
	"context"
	"fmt"

	"points/internal/pointsbot/gateway"
)

// ChannelLog treats the messages of a single chat channel as the rows of a
// durable log: Append posts a message, Edit rewrites it in place, Replay
// lists the channel backlog. This is the primary persistence backend; the
// channel is a write-through log, not a transactional database.
type ChannelLog struct {
	gw      gateway.Client
	channel uint64
}

// NewChannelLog creates a log over the given channel.
func NewChannelLog(gw gateway.Client, channel uint64) *ChannelLog {
	return &ChannelLog{gw: gw, channel: channel}
}

// Append implements Log.
func (c *ChannelLog) Append(ctx context.Context, content string) (uint64, error) {
	id, err := c.gw.PostMessage(ctx, c.channel, content)
	if err != nil {
		return 0, fmt.Errorf("append to channel %d: %w", c.channel, err)
	}
	return id, nil
}

// Edit implements Log.
func (c *ChannelLog) Edit(ctx context.Context, id uint64, content string) error {
	if err := c.gw.EditMessage(ctx, c.channel, id, content); err != nil {
		return fmt.Errorf("edit record %d in channel %d: %w", id, c.channel, err)
	}
	return nil
}

// Replay implements Log. Order follows the gateway's listing semantics; the
// loader does not depend on a particular direction.
func (c *ChannelLog) Replay(ctx context.Context, fn func(Record) error) error {
	return c.gw.ListMessages(ctx, c.channel, func(m gateway.Message) error {
		return fn(Record{ID: m.ID, Content: m.Content})
	})
}
