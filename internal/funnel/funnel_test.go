package funnel

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/diet-funnel-go-api/internal/nutrition"
)

// storeFactories returns every backend available in this environment. The
// Postgres store only runs when TEST_DB_URL points at a migrated database.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	factories := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore(0) },
		"redis": func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { client.Close() })
			return NewRedisStore(client, time.Hour)
		},
	}
	if url := os.Getenv("TEST_DB_URL"); url != "" {
		factories["postgres"] = func(t *testing.T) Store {
			pool, err := NewPool(context.Background(), url)
			require.NoError(t, err)
			t.Cleanup(pool.Close)
			_, err = pool.Exec(context.Background(), "DELETE FROM funnel_state")
			require.NoError(t, err)
			return NewPostgresStore(pool)
		}
	}
	return factories
}

func TestStores_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)

			_, err := s.Load(ctx, "sess-1", KeyCalculator)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Save(ctx, "sess-1", KeyCalculator, []byte(`{"a":1}`)))
			require.NoError(t, s.Save(ctx, "sess-1", KeyCalculator, []byte(`{"a":2}`)))

			got, err := s.Load(ctx, "sess-1", KeyCalculator)
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":2}`, string(got))

			// Other steps and sessions are independent.
			_, err = s.Load(ctx, "sess-1", KeyUserData)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Load(ctx, "sess-2", KeyCalculator)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Delete(ctx, "sess-1", KeyCalculator))
			_, err = s.Load(ctx, "sess-1", KeyCalculator)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStores_List(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			require.NoError(t, s.Save(ctx, "a", KeyUserData, []byte(`{"n":"a"}`)))
			require.NoError(t, s.Save(ctx, "b", KeyUserData, []byte(`{"n":"b"}`)))
			require.NoError(t, s.Save(ctx, "c", KeyCalculator, []byte(`{}`)))

			entries, err := s.List(ctx, KeyUserData)
			require.NoError(t, err)
			require.Len(t, entries, 2)

			sessions := map[string]bool{}
			for _, e := range entries {
				assert.Equal(t, KeyUserData, e.Step)
				sessions[e.SessionID] = true
			}
			assert.Equal(t, map[string]bool{"a": true, "b": true}, sessions)
		})
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	require.NoError(t, s.Save(ctx, "old", KeyUserData, []byte(`{}`)))
	require.NoError(t, s.Save(ctx, "new", KeyUserData, []byte(`{}`)))

	entries, err := s.List(ctx, KeyUserData)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].SessionID)
	assert.Equal(t, "old", entries[1].SessionID)
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(30 * time.Minute)
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	require.NoError(t, s.Save(ctx, "abandoned", KeyCalculator, []byte(`{}`)))
	clock = clock.Add(20 * time.Minute)
	require.NoError(t, s.Save(ctx, "recent", KeyCalculator, []byte(`{}`)))

	clock = clock.Add(15 * time.Minute)
	_, err := s.Load(ctx, "abandoned", KeyCalculator)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Load(ctx, "recent", KeyCalculator)
	assert.NoError(t, err)

	entries, err := s.List(ctx, KeyCalculator)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "recent", entries[0].SessionID)

	// A later save sweeps expired entries out of memory.
	clock = clock.Add(time.Hour)
	require.NoError(t, s.Save(ctx, "new", KeyUserData, []byte(`{}`)))
	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Len(t, s.entries, 1)
}

func TestRedisStore_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	s := NewRedisStore(client, 30*time.Minute)

	require.NoError(t, s.Save(context.Background(), "sess", KeyCalculator, []byte(`{}`)))
	assert.Equal(t, 30*time.Minute, mr.TTL(redisKey("sess", KeyCalculator)))

	mr.FastForward(31 * time.Minute)
	_, err := s.Load(context.Background(), "sess", KeyCalculator)
	assert.ErrorIs(t, err, ErrNotFound)
}

/* ─── Carrier ────────────────────────────────────────────────────────── */

func TestCarrier_RoundTripMetrics(t *testing.T) {
	ctx := context.Background()
	c := NewCarrier(NewMemoryStore(0))
	want := nutrition.UserMetrics{
		Sex: nutrition.Female, Biotype: nutrition.Endomorph, Age: 33, WeightKg: 61.3, HeightCm: 164.5,
		ActivityFactor: 1.375, Goal: nutrition.LeanGain, CurrentState: nutrition.StateSkinnyFat,
	}

	require.NoError(t, c.Save(ctx, "sess", KeyCalculator, want))
	got, err := Load[nutrition.UserMetrics](ctx, c, "sess", KeyCalculator)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCarrier_Missing(t *testing.T) {
	c := NewCarrier(NewMemoryStore(0))
	_, err := Load[nutrition.UserMetrics](context.Background(), c, "nobody", KeyCalculator)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCarrier_Malformed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	require.NoError(t, store.Save(ctx, "sess", KeyCalculator, []byte(`{"age": "not a number"`)))

	_, err := Load[nutrition.UserMetrics](ctx, NewCarrier(store), "sess", KeyCalculator)
	assert.True(t, errors.Is(err, ErrMalformedState))
	assert.False(t, errors.Is(err, ErrNotFound))
}
