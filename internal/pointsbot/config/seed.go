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
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedEntry is one catalog registration from a seed file.
type SeedEntry struct {
	Trigger uint64 `yaml:"trigger"`
	Value   uint64 `yaml:"value"`
}

// Seed is an optional file of catalog registrations applied at startup,
// before the dispatcher arms. It supplements the channel backlogs; it does
// not replace them, and a later reload drops seeded entries that are not in
// a backlog.
//
//	tasks:
//	  - trigger: 111222333
//	    value: 5
//	rewards:
//	  - trigger: 444555666
//	    value: 7
type Seed struct {
	Tasks   []SeedEntry `yaml:"tasks"`
	Rewards []SeedEntry `yaml:"rewards"`
}

// LoadSeed reads and parses a seed file. Entries without a trigger id are
// rejected; a value of zero is allowed (economically inert triggers are
// legal, same as unregistered ones).
func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, e := range seed.Tasks {
		if e.Trigger == 0 {
			return Seed{}, fmt.Errorf("seed file %s: tasks[%d]: trigger is required", path, i)
		}
	}
	for i, e := range seed.Rewards {
		if e.Trigger == 0 {
			return Seed{}, fmt.Errorf("seed file %s: rewards[%d]: trigger is required", path, i)
		}
	}
	return seed, nil
}
