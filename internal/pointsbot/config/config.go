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

// Package config loads deployment identity and policy from the environment.
// Tunables (addresses, backends, intervals) stay on flags in the binary;
// everything that identifies a deployment — token, channel ids, actor ids —
// comes from the environment so it never lands in shell history.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the deployment identity of one bot instance.
type Config struct {
	// BotToken authenticates against the chat gateway. Unused by the fake
	// gateway, required by real clients.
	BotToken string `env:"BOT_TOKEN"`

	// The three backlog channels: task posts, reward posts, balance records.
	TasksChannel   uint64 `env:"TASKS_CHANNEL"`
	RewardsChannel uint64 `env:"REWARDS_CHANNEL"`
	UsersChannel   uint64 `env:"USERS_CHANNEL"`

	// BotID is the bot's own user id; its messages and reactions are ignored.
	BotID uint64 `env:"BOT_ID"`

	// OperatorID may issue reload and catalog registration commands.
	OperatorID uint64 `env:"OPERATOR_ID"`

	// ContactID, when set, receives ContactMessage once after startup.
	ContactID      uint64 `env:"CONTACT_ID"`
	ContactMessage string `env:"CONTACT_MESSAGE"`

	// RedisAddr enables the real balance mirror when non-empty.
	RedisAddr string `env:"REDIS_ADDR"`

	// Policy flags. See core.Policy.
	RetainSpendReaction bool `env:"RETAIN_SPEND_REACTION" envDefault:"true"`
	PublicBalanceReply  bool `env:"PUBLIC_BALANCE_REPLY" envDefault:"false"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks that the registration values required for a channel-backed
// deployment are present. A missing value here aborts startup.
func (c Config) Validate() error {
	if c.TasksChannel == 0 {
		return errors.New("TASKS_CHANNEL is required")
	}
	if c.RewardsChannel == 0 {
		return errors.New("REWARDS_CHANNEL is required")
	}
	if c.UsersChannel == 0 {
		return errors.New("USERS_CHANNEL is required")
	}
	if c.BotID == 0 {
		return errors.New("BOT_ID is required")
	}
	return nil
}
