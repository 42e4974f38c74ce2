// Copyright 2025 Itinera
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

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itinera/platform/travel"
)

func testStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStoreWithClient(client), mr
}

func TestRedisStore_PutAndGet(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	in := travel.FlightSearchResult{
		SearchID: "abc123",
		Currency: "USD",
		Itineraries: []travel.Itinerary{
			{ID: "it-1", Price: travel.Price{Amount: 450, Currency: "USD"}},
		},
	}
	require.NoError(t, store.Put(ctx, "flights:abc123", in, 0))

	var out travel.FlightSearchResult
	require.NoError(t, store.Get(ctx, "flights:abc123", &out))
	assert.Equal(t, "abc123", out.SearchID)
	require.Len(t, out.Itineraries, 1)
	assert.Equal(t, 450.0, out.Itineraries[0].Price.Amount)
}

func TestRedisStore_GetMissingReturnsErrNotFound(t *testing.T) {
	store, _ := testStore(t)

	var out map[string]any
	err := store.Get(context.Background(), "nope", &out)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_EntryExpires(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "short", map[string]string{"k": "v"}, time.Minute))

	// miniredis time is virtual; advance it past the TTL.
	mr.FastForward(2 * time.Minute)

	var out map[string]string
	err := store.Get(ctx, "short", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_DefaultTTLApplied(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "entry", "value", 0))

	ttl := mr.TTL("session:entry")
	assert.Equal(t, DefaultTTL, ttl)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "gone", "value", 0))
	require.NoError(t, store.Delete(ctx, "gone"))

	var out string
	assert.ErrorIs(t, store.Get(ctx, "gone", &out), ErrNotFound)

	// Deleting a missing key is a no-op.
	assert.NoError(t, store.Delete(ctx, "never-existed"))
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	store, err := NewRedisStore("not-a-url")

	assert.Error(t, err)
	assert.Nil(t, store)
	assert.Contains(t, err.Error(), "failed to parse")
}
