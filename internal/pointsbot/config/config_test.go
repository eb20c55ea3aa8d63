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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoad_Defaults: policy flags take their defaults when unset.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.RetainSpendReaction {
		t.Fatal("RetainSpendReaction should default to true")
	}
	if cfg.PublicBalanceReply {
		t.Fatal("PublicBalanceReply should default to false")
	}
}

// TestLoad_FromEnvironment parses identity and policy values.
func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("TASKS_CHANNEL", "10")
	t.Setenv("REWARDS_CHANNEL", "11")
	t.Setenv("USERS_CHANNEL", "12")
	t.Setenv("BOT_ID", "99")
	t.Setenv("RETAIN_SPEND_REACTION", "false")
	t.Setenv("PUBLIC_BALANCE_REPLY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TasksChannel != 10 || cfg.RewardsChannel != 11 || cfg.UsersChannel != 12 || cfg.BotID != 99 {
		t.Fatalf("ids = %+v", cfg)
	}
	if cfg.RetainSpendReaction || !cfg.PublicBalanceReply {
		t.Fatalf("policy flags = retain %t, public %t", cfg.RetainSpendReaction, cfg.PublicBalanceReply)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

// TestValidate_MissingValues names the first missing registration value.
func TestValidate_MissingValues(t *testing.T) {
	full := Config{TasksChannel: 1, RewardsChannel: 2, UsersChannel: 3, BotID: 4}

	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"tasks channel", func(c *Config) { c.TasksChannel = 0 }, "TASKS_CHANNEL"},
		{"rewards channel", func(c *Config) { c.RewardsChannel = 0 }, "REWARDS_CHANNEL"},
		{"users channel", func(c *Config) { c.UsersChannel = 0 }, "USERS_CHANNEL"},
		{"bot id", func(c *Config) { c.BotID = 0 }, "BOT_ID"},
	}
	for _, tc := range cases {
		cfg := full
		tc.mut(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want mention of %s", tc.name, err, tc.want)
		}
	}
	if err := full.Validate(); err != nil {
		t.Errorf("complete config rejected: %v", err)
	}
}

// TestLoadSeed parses a well-formed seed file.
func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `tasks:
  - trigger: 111222333
    value: 5
  - trigger: 111222334
    value: 0
rewards:
  - trigger: 444555666
    value: 7
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(seed.Tasks) != 2 || len(seed.Rewards) != 1 {
		t.Fatalf("seed = %+v", seed)
	}
	if seed.Tasks[0].Trigger != 111222333 || seed.Tasks[0].Value != 5 {
		t.Fatalf("tasks[0] = %+v", seed.Tasks[0])
	}
	// Zero value is legal; it just confers nothing.
	if seed.Tasks[1].Value != 0 {
		t.Fatalf("tasks[1] = %+v", seed.Tasks[1])
	}
}

// TestLoadSeed_Invalid rejects missing files, bad YAML, and zero triggers.
func TestLoadSeed_Invalid(t *testing.T) {
	if _, err := LoadSeed(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should fail")
	}

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("tasks: {not a list}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSeed(bad); err == nil {
		t.Error("malformed YAML should fail")
	}

	zero := filepath.Join(dir, "zero.yaml")
	if err := os.WriteFile(zero, []byte("rewards:\n  - value: 7\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadSeed(zero); err == nil || !strings.Contains(err.Error(), "trigger is required") {
		t.Errorf("zero trigger: err = %v", err)
	}
}
