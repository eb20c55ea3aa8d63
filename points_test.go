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

package points

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// TestCatalog_RegisterIsIdempotent verifies that registering the same
// (trigger, value) pair twice leaves the catalog equivalent to registering it
// once, and that re-registration with a new value overwrites rather than
// duplicates.
func TestCatalog_RegisterIsIdempotent(t *testing.T) {
	c := NewCatalog()
	c.Register(100, 5)
	c.Register(100, 5)
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after duplicate registration, got %d", c.Len())
	}
	if v, ok := c.Lookup(100); !ok || v != 5 {
		t.Fatalf("Lookup(100) = (%d, %t), want (5, true)", v, ok)
	}

	c.Register(100, 9)
	if c.Len() != 1 {
		t.Fatalf("overwrite should not duplicate; got %d entries", c.Len())
	}
	if v, _ := c.Lookup(100); v != 9 {
		t.Fatalf("expected overwritten value 9, got %d", v)
	}
}

// TestCatalog_LookupMiss verifies the permissive miss contract: an
// unregistered trigger reports (0, false) and is never an error.
func TestCatalog_LookupMiss(t *testing.T) {
	c := NewCatalog()
	if v, ok := c.Lookup(42); ok || v != 0 {
		t.Fatalf("Lookup on empty catalog = (%d, %t), want (0, false)", v, ok)
	}
}

// TestCatalog_ReplaceOverwrites verifies reload semantics: Replace swaps the
// whole catalog, dropping entries absent from the new set.
func TestCatalog_ReplaceOverwrites(t *testing.T) {
	c := NewCatalog()
	c.Register(1, 10)
	c.Register(2, 20)
	c.Replace(map[uint64]uint64{3: 30})
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after Replace, got %d", c.Len())
	}
	if _, ok := c.Lookup(1); ok {
		t.Fatal("entry 1 should have been dropped by Replace")
	}
	if v, ok := c.Lookup(3); !ok || v != 30 {
		t.Fatalf("Lookup(3) = (%d, %t), want (30, true)", v, ok)
	}
}

// TestLedger_CreditCreatesAccount verifies lazy account creation: the first
// credit reports hadRecord=false and commits the full amount.
func TestLedger_CreditCreatesAccount(t *testing.T) {
	l := NewLedger()
	bal, hadRecord, err := l.Credit(7, 5)
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if bal != 5 || hadRecord {
		t.Fatalf("Credit = (%d, %t), want (5, false)", bal, hadRecord)
	}
	if got := l.Balance(7); got != 5 {
		t.Fatalf("Balance = %d, want 5", got)
	}
}

// TestLedger_CreditOverflowCommitsNothing verifies that wraparound is
// rejected as a fatal error with no mutation.
func TestLedger_CreditOverflowCommitsNothing(t *testing.T) {
	l := NewLedger()
	if _, _, err := l.Credit(1, math.MaxUint64); err != nil {
		t.Fatalf("seeding credit: %v", err)
	}
	_, _, err := l.Credit(1, 1)
	if !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
	if got := l.Balance(1); got != math.MaxUint64 {
		t.Fatalf("balance mutated on overflow: %d", got)
	}
}

// TestLedger_DebitInsufficientFunds verifies the rejection path: the error
// carries the current balance and nothing is mutated.
func TestLedger_DebitInsufficientFunds(t *testing.T) {
	l := NewLedger()
	if _, _, err := l.Credit(2, 3); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	_, _, err := l.Debit(2, 7)
	var insuf *InsufficientFundsError
	if !errors.As(err, &insuf) {
		t.Fatalf("expected *InsufficientFundsError, got %v", err)
	}
	if insuf.Balance != 3 || insuf.Cost != 7 {
		t.Fatalf("error = %+v, want Balance=3 Cost=7", insuf)
	}
	if got := l.Balance(2); got != 3 {
		t.Fatalf("balance mutated on rejection: %d", got)
	}
}

// TestLedger_DebitAbsentAccount verifies that an absent account behaves as
// balance zero: any non-zero cost rejects, a zero cost succeeds.
func TestLedger_DebitAbsentAccount(t *testing.T) {
	l := NewLedger()
	var insuf *InsufficientFundsError
	if _, _, err := l.Debit(9, 1); !errors.As(err, &insuf) {
		t.Fatalf("expected insufficient funds for absent account, got %v", err)
	}
	if bal, _, err := l.Debit(9, 0); err != nil || bal != 0 {
		t.Fatalf("zero-cost debit = (%d, %v), want (0, nil)", bal, err)
	}
}

// TestLedger_DebitSuccess verifies the committed balance after a covered
// debit.
func TestLedger_DebitSuccess(t *testing.T) {
	l := NewLedger()
	if _, _, err := l.Credit(3, 10); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	bal, _, err := l.Debit(3, 7)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if bal != 3 {
		t.Fatalf("Debit balance = %d, want 3", bal)
	}
}

// TestLedger_SetRecord verifies record capture semantics: set on existing
// accounts only, then reported back by Credit as hadRecord.
func TestLedger_SetRecord(t *testing.T) {
	l := NewLedger()

	// No account yet: SetRecord must not conjure one.
	l.SetRecord(4, 900)
	if _, ok := l.Account(4); ok {
		t.Fatal("SetRecord should not create accounts")
	}

	if _, hadRecord, _ := l.Credit(4, 1); hadRecord {
		t.Fatal("fresh account should have no record")
	}
	l.SetRecord(4, 900)
	acct, ok := l.Account(4)
	if !ok || !acct.HasRecord || acct.RecordID != 900 {
		t.Fatalf("account = %+v, want HasRecord=true RecordID=900", acct)
	}
	if _, hadRecord, _ := l.Credit(4, 1); !hadRecord {
		t.Fatal("credit after SetRecord should report hadRecord=true")
	}
}

// TestLedger_ReplaceAndSnapshot verifies reload overwrite semantics and that
// Snapshot returns an independent copy.
func TestLedger_ReplaceAndSnapshot(t *testing.T) {
	l := NewLedger()
	if _, _, err := l.Credit(1, 5); err != nil {
		t.Fatalf("Credit: %v", err)
	}

	want := map[uint64]Account{
		8: {Balance: 40, RecordID: 123, HasRecord: true},
	}
	l.Replace(want)
	got := l.Snapshot()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Snapshot = %+v, want %+v", got, want)
	}

	// Mutating the snapshot must not reach the ledger.
	got[8] = Account{Balance: 0}
	if l.Balance(8) != 40 {
		t.Fatal("snapshot aliasing mutated the ledger")
	}
}
