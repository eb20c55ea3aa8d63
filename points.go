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

// Package points provides thread-safe, in-memory primitives for a community
// points ledger: a Catalog mapping trigger posts to point values, and a Ledger
// mapping users to their current balance and the identifier of their durable
// balance record.
//
// Both structures guard a single map with one lock and expose only
// lookup-and-mutate methods, so a "check balance, then debit" sequence is
// atomic with respect to every other transaction on the same store. The raw
// maps are never exposed outside this package.
package points

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrBalanceOverflow is returned by Credit when adding the amount would wrap
// the balance around. Values in practice are small positive integers, so an
// overflow always indicates corrupted input and must halt the operation.
var ErrBalanceOverflow = errors.New("points: balance overflow")

// InsufficientFundsError is returned by Debit when the account balance cannot
// cover the requested cost. No mutation has occurred when it is returned.
type InsufficientFundsError struct {
	Balance uint64
	Cost    uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("points: insufficient funds: balance %d, cost %d", e.Balance, e.Cost)
}

// Account is a user's current point balance plus a pointer to its durable
// record. RecordID is meaningful only when HasRecord is true; it is set on the
// user's first successful transaction (or by backlog replay) and retained for
// subsequent update-in-place writes.
type Account struct {
	Balance   uint64
	RecordID  uint64
	HasRecord bool
}

// Catalog maps trigger identifiers (the posts users react to) to point values.
// Two disjoint catalogs exist at runtime, one for tasks (earn) and one for
// rewards (spend); both use this type. Read-mostly after bootstrap.
type Catalog struct {
	mu      sync.RWMutex
	entries map[uint64]uint64
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[uint64]uint64)}
}

// Lookup returns the point value registered for trigger, if any. Callers
// treat a miss as "trigger confers zero value", not as an error.
func (c *Catalog) Lookup(trigger uint64) (uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.entries[trigger]
	return value, ok
}

// Register inserts or overwrites the entry for trigger. Registering the same
// pair twice leaves the catalog equivalent to registering it once.
func (c *Catalog) Register(trigger, value uint64) {
	c.mu.Lock()
	c.entries[trigger] = value
	c.mu.Unlock()
}

// Replace swaps the whole catalog for the given entries. Used by backlog
// reload, which has overwrite semantics rather than merge.
func (c *Catalog) Replace(entries map[uint64]uint64) {
	next := make(map[uint64]uint64, len(entries))
	for k, v := range entries {
		next[k] = v
	}
	c.mu.Lock()
	c.entries = next
	c.mu.Unlock()
}

// Len reports the number of registered entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Snapshot returns a copy of the catalog for inspection.
func (c *Catalog) Snapshot() map[uint64]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[uint64]uint64, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Ledger is the authoritative in-memory balance store. All mutation happens
// through Credit and Debit, which hold the ledger lock for the whole
// read-compute-commit sequence; balances can never be observed below zero.
type Ledger struct {
	mu       sync.Mutex
	accounts map[uint64]Account
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[uint64]Account)}
}

// Credit adds amount to the user's balance, lazily creating the account on
// first sight. It returns the committed balance and whether the account
// already had a durable record before this call. On overflow nothing is
// committed and ErrBalanceOverflow is returned.
func (l *Ledger) Credit(user, amount uint64) (newBalance uint64, hadRecord bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct := l.accounts[user]
	if amount > math.MaxUint64-acct.Balance {
		return 0, acct.HasRecord, fmt.Errorf("credit user %d amount %d: %w", user, amount, ErrBalanceOverflow)
	}
	acct.Balance += amount
	l.accounts[user] = acct
	return acct.Balance, acct.HasRecord, nil
}

// Debit subtracts cost from the user's balance. The balance check and the
// subtraction happen under the same lock acquisition, so concurrent debits
// cannot underflow. An absent account is treated as balance zero. On success
// the account is created if needed and the committed balance returned; on
// insufficient funds nothing is mutated and an *InsufficientFundsError
// carrying the current balance is returned.
func (l *Ledger) Debit(user, cost uint64) (newBalance uint64, hadRecord bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct := l.accounts[user]
	if acct.Balance < cost {
		return acct.Balance, acct.HasRecord, &InsufficientFundsError{Balance: acct.Balance, Cost: cost}
	}
	acct.Balance -= cost
	l.accounts[user] = acct
	return acct.Balance, acct.HasRecord, nil
}

// Balance returns the user's current balance, zero if the account is absent.
func (l *Ledger) Balance(user uint64) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accounts[user].Balance
}

// Account returns a copy of the user's account.
func (l *Ledger) Account(user uint64) (Account, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[user]
	return acct, ok
}

// SetRecord captures the identifier of the user's durable balance record.
// It is a no-op for accounts that do not exist: a record id without a
// transaction would break the record-iff-transacted invariant.
func (l *Ledger) SetRecord(user, recordID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[user]
	if !ok {
		return
	}
	acct.RecordID = recordID
	acct.HasRecord = true
	l.accounts[user] = acct
}

// Replace swaps the whole ledger for the given accounts. Used by backlog
// reload, which overwrites rather than merges.
func (l *Ledger) Replace(accounts map[uint64]Account) {
	next := make(map[uint64]Account, len(accounts))
	for k, v := range accounts {
		next[k] = v
	}
	l.mu.Lock()
	l.accounts = next
	l.mu.Unlock()
}

// Snapshot returns a copy of all accounts for inspection.
func (l *Ledger) Snapshot() map[uint64]Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[uint64]Account, len(l.accounts))
	for k, v := range l.accounts {
		out[k] = v
	}
	return out
}

// Len reports the number of tracked accounts.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.accounts)
}
