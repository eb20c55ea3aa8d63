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
	"errors"
	"testing"

	"points/internal/pointsbot/gateway"
)

// TestChannelLog_AppendEditReplay verifies that the channel backend maps the
// Log contract onto gateway message primitives: Append posts, Edit rewrites
// in place, Replay lists the backlog.
func TestChannelLog_AppendEditReplay(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	gw.Seed(7, "42 - 10")
	c := NewChannelLog(gw, 7)

	id, err := c.Append(ctx, "43 - 5")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := c.Edit(ctx, id, "43 - 8"); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	var got []Record
	if err := c.Replay(ctx, func(r Record) error {
		got = append(got, r)
		return nil
	}); err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("replayed %d records, want 2", len(got))
	}
	if got[1].ID != id || got[1].Content != "43 - 8" {
		t.Fatalf("edited record = %+v, want id=%d content=%q", got[1], id, "43 - 8")
	}

	// The edit must land on the channel message itself.
	msgs := gw.Messages(7)
	if msgs[1].Content != "43 - 8" {
		t.Fatalf("channel message = %q, want %q", msgs[1].Content, "43 - 8")
	}
}

// TestChannelLog_GatewayErrors verifies that gateway failures surface as
// wrapped errors rather than being swallowed.
func TestChannelLog_GatewayErrors(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewFake()
	c := NewChannelLog(gw, 7)

	gw.FailPost = errors.New("gateway down")
	if _, err := c.Append(ctx, "1 - 1"); err == nil {
		t.Fatal("expected append failure")
	}
	gw.FailPost = nil

	if err := c.Edit(ctx, 9999, "1 - 2"); err == nil {
		t.Fatal("expected edit failure for unknown message")
	}
}
