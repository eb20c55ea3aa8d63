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

// Package record implements the durable record log the ledger writes through:
// an append/edit-style sequence of single-line entries, each of the form
// "<id> - <value>". The primary backend treats chat messages in a designated
// channel as rows; a memory backend serves tests and demos, and a SQL backend
// is available for deployments that prefer a database over a chat log.
package record

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Record is one entry of a backlog, carrying the log's own identifier for the
// entry alongside its content. The identifier is what update-in-place writes
// target later.
type Record struct {
	ID      uint64
	Content string
}

// Log is the minimal repository surface the ledger core needs from durable
// storage. Implementations must assign a stable identifier on Append and
// support rewriting an entry's content by that identifier. Replay iterates
// the full backlog; it is finite and restartable per call.
type Log interface {
	Append(ctx context.Context, content string) (uint64, error)
	Edit(ctx context.Context, id uint64, content string) error
	Replay(ctx context.Context, fn func(Record) error) error
}

// entrySeparator is the literal separator of the persisted record format.
const entrySeparator = " - "

// FormatEntry renders a record line: "<id> - <value>".
func FormatEntry(id, value uint64) string {
	return fmt.Sprintf("%d%s%d", id, entrySeparator, value)
}

// ParseEntry parses a record line into its identifier and value. Any
// deviation from the "<numeric_id> - <numeric_value>" shape is an error;
// bootstrap treats that as fatal, since silently skipping a record would
// leave an incomplete ledger.
func ParseEntry(content string) (id, value uint64, err error) {
	lhs, rhs, ok := strings.Cut(content, entrySeparator)
	if !ok {
		return 0, 0, fmt.Errorf("record: malformed entry %q: missing separator", content)
	}
	id, err = strconv.ParseUint(strings.TrimSpace(lhs), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("record: malformed entry %q: bad identifier: %w", content, err)
	}
	value, err = strconv.ParseUint(strings.TrimSpace(rhs), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("record: malformed entry %q: bad value: %w", content, err)
	}
	return id, value, nil
}
