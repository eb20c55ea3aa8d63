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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"points/internal/pointsbot/gateway"
)

// Options carries the collaborators a backend may need.
type Options struct {
	Gateway gateway.Client
	Channel uint64
	DB      *sql.DB
}

// BuildLog constructs a Log based on a string selector.
// Supported backends:
//   - "channel": chat messages as rows (default; requires Gateway and Channel)
//   - "memory": in-process log, nothing durable (tests, demos)
//   - "sqlite": relational table via database/sql (requires an open DB with a
//     registered driver; the caller runs Init)
func BuildLog(backend string, opts Options) (Log, error) {
	switch backend {
	case "", "channel":
		if opts.Gateway == nil || opts.Channel == 0 {
			return nil, errors.New("channel log requires a gateway client and a channel id")
		}
		return NewChannelLog(opts.Gateway, opts.Channel), nil
	case "memory":
		return NewMemoryLog(), nil
	case "sqlite":
		if opts.DB == nil {
			return nil, errors.New("sqlite log requires an open *sql.DB")
		}
		return NewSQLLog(opts.DB), nil
	default:
		return nil, fmt.Errorf("unknown log backend: %s", backend)
	}
}

// BuildMirror constructs the balance mirror for the demo wiring. With an
// address it talks to a real Redis; without one it falls back to the logging
// client so the mirror path stays exercisable with no infrastructure.
// An explicit "off" disables mirroring entirely.
func BuildMirror(mode, addr string, markerTTL time.Duration) (BalanceMirror, error) {
	switch mode {
	case "off":
		return nil, nil
	case "", "redis":
		var evaler RedisEvaler
		if addr != "" {
			evaler = NewGoRedisEvaler(addr)
		} else {
			evaler = LoggingRedisEvaler{}
		}
		return NewRedisMirror(evaler, markerTTL), nil
	default:
		return nil, fmt.Errorf("unknown mirror mode: %s", mode)
	}
}
