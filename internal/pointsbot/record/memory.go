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
	"sync"
)

// MemoryLog is an in-process Log for tests and the dependency-free demo.
// It keeps entries in insertion order and counts writes so tests can assert
// on persistence activity.
type MemoryLog struct {
	mu      sync.Mutex
	nextID  uint64
	records []Record
	appends int
	edits   int

	// FailAppend and FailEdit force the next matching call to fail.
	FailAppend error
	FailEdit   error
}

// NewMemoryLog creates a log pre-seeded with the given contents, assigning
// ids in order. Useful for modelling an existing backlog.
func NewMemoryLog(contents ...string) *MemoryLog {
	m := &MemoryLog{nextID: 1}
	for _, c := range contents {
		m.nextID++
		m.records = append(m.records, Record{ID: m.nextID, Content: c})
	}
	return m
}

// Append implements Log.
func (m *MemoryLog) Append(ctx context.Context, content string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAppend != nil {
		return 0, m.FailAppend
	}
	m.nextID++
	m.records = append(m.records, Record{ID: m.nextID, Content: content})
	m.appends++
	return m.nextID, nil
}

// Edit implements Log.
func (m *MemoryLog) Edit(ctx context.Context, id uint64, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailEdit != nil {
		return m.FailEdit
	}
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Content = content
			m.edits++
			return nil
		}
	}
	return fmt.Errorf("memory log: record %d not found", id)
}

// Replay implements Log.
func (m *MemoryLog) Replay(ctx context.Context, fn func(Record) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	records := make([]Record, len(m.records))
	copy(records, m.records)
	m.mu.Unlock()

	for _, r := range records {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns a copy of the log contents for assertions.
func (m *MemoryLog) Entries() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Writes reports the number of appends and edits performed.
func (m *MemoryLog) Writes() (appends, edits int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appends, m.edits
}
