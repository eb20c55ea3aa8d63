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
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// BalanceMirror receives the committed balance of a user after each
// successful durable write. It is a read-side convenience for dashboards and
// external consumers; mirror failures are logged by the caller, never fatal,
// and the record log remains the durable store.
type BalanceMirror interface {
	SetBalance(ctx context.Context, user, balance uint64) error
}

// RedisEvaler abstracts the minimal surface we need from a Redis client.
// Implementations may wrap github.com/redis/go-redis/v9 (Cmdable.Eval) or any
// equivalent.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
}

// RedisMirror writes balances into a Redis hash using a Lua script:
// 1) SETNX write:<user>:<write_id> 1
// 2) If set -> HSET balance:<user> balance <value>
// 3) EXPIRE the marker (TTL) for leak protection
// The marker makes a retried write a no-op.
type RedisMirror struct {
	client    RedisEvaler
	markerTTL time.Duration
}

// NewRedisMirror returns a mirror with the given client and marker TTL.
// markerTTL guards against unbounded growth of write markers; choose a
// duration comfortably larger than your maximum retry window.
func NewRedisMirror(client RedisEvaler, markerTTL time.Duration) *RedisMirror {
	if markerTTL <= 0 {
		markerTTL = 24 * time.Hour
	}
	return &RedisMirror{client: client, markerTTL: markerTTL}
}

// mirrorLuaScript performs the guarded write. Returns 1 if applied, 0 if the
// marker already existed.
const mirrorLuaScript = `
local balanceKey = KEYS[1]
local markerKey = KEYS[2]
local balance = tonumber(ARGV[1])
local ttlSeconds = tonumber(ARGV[2])
local set = redis.call('SETNX', markerKey, 1)
if set == 1 then
  redis.call('HSET', balanceKey, 'balance', balance)
  if ttlSeconds and ttlSeconds > 0 then
    redis.call('EXPIRE', markerKey, ttlSeconds)
  end
  return 1
else
  return 0
end
`

// Keys layout helpers (public for interoperability with external readers)
func RedisBalanceKey(user uint64) string { return fmt.Sprintf("balance:%d", user) }
func RedisWriteMarkerKey(user uint64, writeID string) string {
	return fmt.Sprintf("write:%d:%s", user, writeID)
}

// SetBalance implements BalanceMirror. Each call carries a fresh uuid as its
// write id; callers retrying a failed mirror write externally should reuse
// their own id instead for exact-once semantics.
func (m *RedisMirror) SetBalance(ctx context.Context, user, balance uint64) error {
	writeID := uuid.NewString()
	keys := []string{RedisBalanceKey(user), RedisWriteMarkerKey(user, writeID)}
	args := []interface{}{int64(balance), int(m.markerTTL.Seconds())}
	if _, err := m.client.Eval(ctx, mirrorLuaScript, keys, args...); err != nil {
		return fmt.Errorf("redis mirror user=%d write=%s: %w", user, writeID, err)
	}
	return nil
}

// GoRedisEvaler is a production-ready Redis client wrapper implementing
// RedisEvaler on github.com/redis/go-redis/v9. Construct with an address like
// "127.0.0.1:6379".
type GoRedisEvaler struct{ c *redis.Client }

func NewGoRedisEvaler(addr string) *GoRedisEvaler {
	opt := &redis.Options{Addr: addr}
	return &GoRedisEvaler{c: redis.NewClient(opt)}
}

func (g *GoRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.c.Eval(ctx, script, keys, args...).Result()
}

// LoggingRedisEvaler is a tiny demo client that just logs the Lua evaluation.
// It lets the demo select the Redis mirror without needing a real Redis.
// Not for production use.
type LoggingRedisEvaler struct{}

func (LoggingRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	fmt.Printf("[redis-demo] EVAL script(len=%d) KEYS=%v ARGS=%v\n", len(script), keys, args)
	return int64(1), nil // pretend we applied it
}
