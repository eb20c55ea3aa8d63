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

// Package core contains shared, process-level counters used for the final
// end-of-process summary. These are kept lightweight and use atomic counters
// to avoid allocation and locks on the hot path; the Prometheus layer is fed
// from the same call sites.
package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"points/internal/pointsbot/telemetry/activity"
)

var (
	earns           atomic.Int64
	spends          atomic.Int64
	spendRejections atomic.Int64
	invalidTriggers atomic.Int64
	persistErrors   atomic.Int64
	dmFailures      atomic.Int64

	// settings holds human-readable configuration captured at runtime.
	settingsMu sync.RWMutex
	settings   = make(map[string]string)
)

func recordEarn(value uint64) {
	earns.Add(1)
	activity.EarnApplied(value)
}

func recordSpend(cost uint64) {
	spends.Add(1)
	activity.SpendApplied(cost)
}

func recordSpendRejection() {
	spendRejections.Add(1)
	activity.SpendRejected()
}

func recordInvalidTrigger() {
	invalidTriggers.Add(1)
	activity.InvalidTrigger()
}

func recordPersistError() {
	persistErrors.Add(1)
	activity.PersistError()
}

func recordDMFailure() {
	dmFailures.Add(1)
	activity.DMFailure()
}

// Setting setters capture important runtime configuration for final printing.
func SetSetting(name, value string) {
	settingsMu.Lock()
	settings[name] = value
	settingsMu.Unlock()
}

func SetSettingUint64(name string, v uint64)          { SetSetting(name, fmt.Sprintf("%d", v)) }
func SetSettingBool(name string, b bool)              { SetSetting(name, fmt.Sprintf("%t", b)) }
func SetSettingDuration(name string, d time.Duration) { SetSetting(name, d.String()) }

func getSettingsSnapshot() map[string]string {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	out := make(map[string]string, len(settings))
	for k, v := range settings {
		out[k] = v
	}
	return out
}

// PrintFinalSummary prints a single end-of-process summary of ledger activity
// and captured settings. Call after the dispatcher has stopped.
func PrintFinalSummary() {
	yellow := "\x1b[33m"
	reset := "\x1b[0m"
	now := time.Now().Format(time.RFC3339)

	sep := strings.Repeat("-", 60)
	fmt.Printf("%s[%s] Final ledger metrics\n", yellow, now)
	fmt.Println(sep)
	fmt.Printf("%-22s %12s\n", "Metric", "Value")
	fmt.Println(sep)
	fmt.Printf("%-22s %12d\n", "Earns", earns.Load())
	fmt.Printf("%-22s %12d\n", "Spends", spends.Load())
	fmt.Printf("%-22s %12d\n", "Spend rejections", spendRejections.Load())
	fmt.Printf("%-22s %12d\n", "Invalid triggers", invalidTriggers.Load())
	fmt.Printf("%-22s %12d\n", "Persist errors", persistErrors.Load())
	fmt.Printf("%-22s %12d\n", "DM failures", dmFailures.Load())
	fmt.Println(sep)

	th := getSettingsSnapshot()
	if len(th) > 0 {
		keys := make([]string, 0, len(th))
		for k := range th {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Printf("Configured settings\n")
		fmt.Println(sep)
		for _, k := range keys {
			fmt.Printf("%-30s %24s\n", k, th[k])
		}
		fmt.Println(sep)
	}
	fmt.Println("The in-memory ledger is authoritative while running; persist errors above indicate durable records that lagged behind it.")
	fmt.Print(reset)
}

// resetEventTotals resets counters to zero. Intended for tests only.
func resetEventTotals() {
	earns.Store(0)
	spends.Store(0)
	spendRejections.Store(0)
	invalidTriggers.Store(0)
	persistErrors.Store(0)
	dmFailures.Store(0)
}

// eventTotals provides a snapshot of current counters. Intended for tests.
func eventTotals() (earnsN, spendsN, rejectionsN, invalidN, persistN, dmN int64) {
	return earns.Load(), spends.Load(), spendRejections.Load(),
		invalidTriggers.Load(), persistErrors.Load(), dmFailures.Load()
}
