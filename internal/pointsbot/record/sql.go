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
	"database/sql"
	"fmt"
	"time"
)

// SQLLog is a Log backed by a relational table. The driver is supplied by the
// caller (the binary registers sqlite); this package only speaks database/sql.
//
// Schema (created by Init):
//
//	CREATE TABLE IF NOT EXISTS records (
//	  id      INTEGER PRIMARY KEY AUTOINCREMENT,
//	  content TEXT NOT NULL
//	);
type SQLLog struct {
	db *sql.DB
	// Per-call timeout fallback if ctx has no deadline.
	defaultTimeout time.Duration
}

// NewSQLLog creates a log over an open database handle.
func NewSQLLog(db *sql.DB) *SQLLog {
	return &SQLLog{db: db, defaultTimeout: 10 * time.Second}
}

// Init creates the records table if it does not exist.
func (s *SQLLog) Init(ctx context.Context) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS records (
		   id      INTEGER PRIMARY KEY AUTOINCREMENT,
		   content TEXT NOT NULL
		 )`)
	if err != nil {
		return fmt.Errorf("init records table: %w", err)
	}
	return nil
}

// Append implements Log.
func (s *SQLLog) Append(ctx context.Context, content string) (uint64, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `INSERT INTO records(content) VALUES (?)`, content)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record id: %w", err)
	}
	return uint64(id), nil
}

// Edit implements Log. Editing an unknown id is an error: an update that
// lands on no row would silently drop a committed balance.
func (s *SQLLog) Edit(ctx context.Context, id uint64, content string) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `UPDATE records SET content = ? WHERE id = ?`, content, int64(id))
	if err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update record %d: no such record", id)
	}
	return nil
}

// Replay implements Log, iterating records in insertion order.
func (s *SQLLog) Replay(ctx context.Context, fn func(Record) error) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT id, content FROM records ORDER BY id`)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var content string
		if err := rows.Scan(&id, &content); err != nil {
			return fmt.Errorf("scan record: %w", err)
		}
		if err := fn(Record{ID: uint64(id), Content: content}); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLLog) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok && s.defaultTimeout > 0 {
		return context.WithTimeout(ctx, s.defaultTimeout)
	}
	return ctx, func() {}
}
