package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"praytogether-backend/kvstore"
	"praytogether-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan(reason string) models.PrayerPlanResult {
	return models.PrayerPlanResult{
		ReasonContext:   reason,
		LanguageContext: "en",
		Entries: []models.DailyEntry{{
			Day:         "Day 1",
			VerseRef:    "John 3:16",
			VerseText:   "For God so loved the world...",
			Reflection:  "Love first.",
			PrayerText:  "Thank you, Lord.",
			ActionSteps: models.ActionSteps{"Call a friend"},
		}},
		RecommendedDays:    "Daily",
		DurationSuggestion: "7 days",
	}
}

func TestPlanStore(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("SaveListDelete", func(t *testing.T) {
		clock := newFixedClock(start)
		store := NewPlanStore(kvstore.NewMemoryStore(), PlanStoreWithClock(clock.Now))
		uid := uuid.New()

		plans, err := store.List(ctx, uid)
		require.NoError(t, err)
		assert.Empty(t, plans)
		assert.NotNil(t, plans)

		first, err := store.Save(ctx, uid, samplePlan("first reason"))
		require.NoError(t, err)
		assert.Equal(t, strconv.FormatInt(start.UnixMilli(), 10), first.ID)
		assert.Equal(t, "2024-03-01T12:00:00Z", first.SavedAt)

		clock.Advance(time.Second)
		second, err := store.Save(ctx, uid, samplePlan("second reason"))
		require.NoError(t, err)

		plans, err = store.List(ctx, uid)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, second.ID, plans[0].ID)
		assert.Equal(t, first.ID, plans[1].ID)
		assert.Equal(t, "first reason", plans[1].ReasonContext)

		require.NoError(t, store.Delete(ctx, uid, first.ID))
		plans, err = store.List(ctx, uid)
		require.NoError(t, err)
		require.Len(t, plans, 1)
		assert.Equal(t, second.ID, plans[0].ID)
	})

	t.Run("DeletingLastPlanRemovesKey", func(t *testing.T) {
		kv := kvstore.NewMemoryStore()
		store := NewPlanStore(kv)
		uid := uuid.New()

		saved, err := store.Save(ctx, uid, samplePlan("only plan here"))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, uid, saved.ID))

		_, ok, err := kv.GetItem(ctx, savedPlansKey(uid))
		require.NoError(t, err)
		assert.False(t, ok)

		plans, err := store.List(ctx, uid)
		require.NoError(t, err)
		assert.Empty(t, plans)
	})

	t.Run("IDsStrictlyIncreaseWithinSameMillisecond", func(t *testing.T) {
		store := NewPlanStore(kvstore.NewMemoryStore(), PlanStoreWithClock(newFixedClock(start).Now))
		uid := uuid.New()

		seen := map[string]bool{}
		var last int64
		for i := 0; i < 5; i++ {
			saved, err := store.Save(ctx, uid, samplePlan("same instant"))
			require.NoError(t, err)
			assert.False(t, seen[saved.ID])
			seen[saved.ID] = true

			id, err := strconv.ParseInt(saved.ID, 10, 64)
			require.NoError(t, err)
			assert.Greater(t, id, last)
			last = id
		}
	})

	t.Run("ClockGoingBackwards", func(t *testing.T) {
		clock := newFixedClock(start)
		store := NewPlanStore(kvstore.NewMemoryStore(), PlanStoreWithClock(clock.Now))
		uid := uuid.New()

		first, err := store.Save(ctx, uid, samplePlan("first reason"))
		require.NoError(t, err)
		clock.Advance(-time.Hour)
		second, err := store.Save(ctx, uid, samplePlan("second reason"))
		require.NoError(t, err)

		a, _ := strconv.ParseInt(first.ID, 10, 64)
		b, _ := strconv.ParseInt(second.ID, 10, 64)
		assert.Greater(t, b, a)
	})

	t.Run("DeleteUnknownIsNoop", func(t *testing.T) {
		store := NewPlanStore(kvstore.NewMemoryStore())
		uid := uuid.New()

		saved, err := store.Save(ctx, uid, samplePlan("keep me please"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, uid, "12345"))
		require.NoError(t, store.Delete(ctx, uuid.New(), saved.ID))

		plans, err := store.List(ctx, uid)
		require.NoError(t, err)
		assert.Len(t, plans, 1)
	})

	t.Run("UsersAreIsolated", func(t *testing.T) {
		kv := kvstore.NewMemoryStore()
		store := NewPlanStore(kv)
		alice, bob := uuid.New(), uuid.New()

		_, err := store.Save(ctx, alice, samplePlan("alice reason"))
		require.NoError(t, err)

		plans, err := store.List(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, plans)

		_, ok, err := kv.GetItem(ctx, "prayTogether_savedPlans:"+alice.String())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("CorruptDocumentReadsEmpty", func(t *testing.T) {
		kv := kvstore.NewMemoryStore()
		uid := uuid.New()
		require.NoError(t, kv.SetItem(ctx, savedPlansKey(uid), []byte("{not json")))
		store := NewPlanStore(kv)

		plans, err := store.List(ctx, uid)
		require.NoError(t, err)
		assert.Empty(t, plans)

		// the next save replaces the corrupt document
		_, err = store.Save(ctx, uid, samplePlan("after corruption"))
		require.NoError(t, err)
		plans, err = store.List(ctx, uid)
		require.NoError(t, err)
		assert.Len(t, plans, 1)
	})

	t.Run("StorageFailure", func(t *testing.T) {
		uid := uuid.New()

		saved, err := NewPlanStore(writeFailKV{}).Save(ctx, uid, samplePlan("cannot persist"))
		assert.Nil(t, saved)
		assert.True(t, errors.Is(err, ErrStorageUnavailable))

		_, err = NewPlanStore(brokenKV{}).List(ctx, uid)
		assert.True(t, errors.Is(err, ErrStorageUnavailable))
	})

	t.Run("RemoveFailure", func(t *testing.T) {
		kv := &removeFailKV{Store: kvstore.NewMemoryStore()}
		store := NewPlanStore(kv)
		uid := uuid.New()

		saved, err := store.Save(ctx, uid, samplePlan("cannot remove"))
		require.NoError(t, err)

		err = store.Delete(ctx, uid, saved.ID)
		assert.True(t, errors.Is(err, ErrStorageUnavailable))
	})

	t.Run("CanceledContextIsNotStorageFailure", func(t *testing.T) {
		kv, err := kvstore.NewSQLiteStore(ctx, ":memory:")
		require.NoError(t, err)
		defer kv.Close()
		store := NewPlanStore(kv)

		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err = store.List(canceled, uuid.New())
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, errors.Is(err, ErrStorageUnavailable))
	})

	t.Run("ConcurrentSavesKeepEveryPlan", func(t *testing.T) {
		store := NewPlanStore(kvstore.NewMemoryStore(), PlanStoreWithClock(newFixedClock(start).Now))
		uid := uuid.New()

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Save(ctx, uid, samplePlan("concurrent save"))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		plans, err := store.List(ctx, uid)
		require.NoError(t, err)
		require.Len(t, plans, 20)

		ids := map[string]bool{}
		for _, p := range plans {
			ids[p.ID] = true
		}
		assert.Len(t, ids, 20)
	})
}

func TestPlanStoreLockStriping(t *testing.T) {
	store := NewPlanStore(kvstore.NewMemoryStore())

	uid := uuid.New()
	assert.Same(t, store.lockFor(uid), store.lockFor(uid))

	seen := map[*sync.Mutex]bool{}
	for i := 0; i < 1000; i++ {
		seen[store.lockFor(uuid.New())] = true
	}
	assert.LessOrEqual(t, len(seen), planLockStripes)
	assert.Greater(t, len(seen), 1)
}

func TestPlanStoreRejectsInvalidPlan(t *testing.T) {
	store := NewPlanStore(kvstore.NewMemoryStore())

	plan := samplePlan("no entries")
	plan.Entries = nil
	_, err := store.Save(context.Background(), uuid.New(), plan)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "entries", verr.Violations[0].Field)
}
