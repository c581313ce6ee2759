package progression

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sproutlog/sproutlog/models"
)

// memStore is an optimistic-concurrency RecordStore: the mutate body runs
// outside the lock against a snapshot and commits only if the record version
// is unchanged, retrying otherwise. Concurrent Award calls therefore really
// do conflict and re-run, which is exactly the contract the engine must
// survive.
type memStore struct {
	mu       sync.Mutex
	recs     map[uint]models.ProgressionRecord
	versions map[uint]int
}

func newMemStore() *memStore {
	return &memStore{
		recs:     map[uint]models.ProgressionRecord{},
		versions: map[uint]int{},
	}
}

func (s *memStore) Update(ctx context.Context, userID uint, mutate func(rec *models.ProgressionRecord) error) error {
	for {
		s.mu.Lock()
		rec, ok := s.recs[userID]
		if !ok {
			rec = models.ProgressionRecord{UserID: userID, Level: 1}
		}
		version := s.versions[userID]
		s.mu.Unlock()

		if err := mutate(&rec); err != nil {
			return err
		}

		s.mu.Lock()
		if s.versions[userID] != version {
			s.mu.Unlock()
			continue // lost the race, re-run the whole body
		}
		s.recs[userID] = rec
		s.versions[userID] = version + 1
		s.mu.Unlock()
		return nil
	}
}

func (s *memStore) get(userID uint) models.ProgressionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs[userID]
}

type failingStore struct{}

func (failingStore) Update(ctx context.Context, userID uint, mutate func(rec *models.ProgressionRecord) error) error {
	return errors.New("deadlock retry budget exhausted")
}

func TestAwardFreshUser(t *testing.T) {
	store := newMemStore()
	eng := NewEngine(store, Curve{Base: 100, Growth: 25})

	res, err := eng.Award(context.Background(), 1, 120, "journal_entry")
	require.NoError(t, err)

	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 20, res.NewXP)
	assert.Equal(t, 120, res.TotalXP)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, res.LevelsGained)
	assert.Equal(t, 120, res.XPAllocated)
}

func TestAwardSpansLevels(t *testing.T) {
	store := newMemStore()
	eng := NewEngine(store, Curve{Base: 100, Growth: 25})

	_, err := eng.Award(context.Background(), 1, 120, "journal_entry")
	require.NoError(t, err)

	// 20 XP into level 2; 200 more consumes the 105 left of level 2
	// (step 125) and leaves 95 inside level 3 (step 150).
	res, err := eng.Award(context.Background(), 1, 200, "task")
	require.NoError(t, err)

	assert.Equal(t, 3, res.NewLevel)
	assert.Equal(t, 95, res.NewXP)
	assert.Equal(t, 320, res.TotalXP)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 1, res.LevelsGained)
	assert.Equal(t, 200, res.XPAllocated)
}

func TestAwardRejectsNonPositiveDelta(t *testing.T) {
	store := newMemStore()
	eng := NewEngine(store, DefaultCurve)

	for _, delta := range []int{0, -5, -1000} {
		_, err := eng.Award(context.Background(), 1, delta, "bug")
		assert.ErrorIs(t, err, ErrInvalidAward, "delta %d", delta)
	}

	// Nothing was written.
	assert.Zero(t, store.get(1).TotalXP)
	assert.Zero(t, store.versions[1])
}

func TestAwardSurfacesStoreFailure(t *testing.T) {
	eng := NewEngine(failingStore{}, DefaultCurve)

	_, err := eng.Award(context.Background(), 1, 30, "journal_entry")
	assert.ErrorIs(t, err, ErrAwardFailed)
}

func TestAwardLevelConsistency(t *testing.T) {
	store := newMemStore()
	curve := Curve{Base: 100, Growth: 25}
	eng := NewEngine(store, curve)

	deltas := []int{30, 120, 7, 999, 1, 250, 64, 3000}
	total := 0
	for _, d := range deltas {
		res, err := eng.Award(context.Background(), 7, d, "test")
		require.NoError(t, err)

		total += res.XPAllocated
		rec := store.get(7)
		assert.Less(t, rec.XP, curve.StepFor(rec.Level), "xp overflowed level %d", rec.Level)
		assert.Equal(t, total, rec.TotalXP, "totalXP must equal sum of allocated XP")
		assert.Equal(t, curve.ThresholdFor(rec.Level)+rec.XP, rec.TotalXP, "level/xp inconsistent with curve")
	}
}

func TestAwardMonotonicity(t *testing.T) {
	store := newMemStore()
	eng := NewEngine(store, DefaultCurve)

	prev := 0
	for i := 0; i < 50; i++ {
		res, err := eng.Award(context.Background(), 3, 17, "test")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.TotalXP, prev)
		prev = res.TotalXP
	}
}

func TestAwardLevelCap(t *testing.T) {
	store := newMemStore()
	curve := Curve{Base: 1, Growth: 0} // degenerate flat curve, 1 XP per level
	eng := NewEngine(store, curve)

	res, err := eng.Award(context.Background(), 1, 1_000_000, "corrupt")
	require.NoError(t, err)

	assert.Equal(t, MaxLevelsPerAward, res.LevelsGained)
	assert.Equal(t, MaxLevelsPerAward, res.XPAllocated)
	assert.Less(t, res.XPAllocated, 1_000_000)
}

func TestAwardConcurrentNoLostUpdates(t *testing.T) {
	for _, n := range []int{2, 10, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			store := newMemStore()
			eng := NewEngine(store, DefaultCurve)

			const delta = 30
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := eng.Award(context.Background(), 42, delta, "concurrent")
					assert.NoError(t, err)
				}()
			}
			wg.Wait()

			assert.Equal(t, n*delta, store.get(42).TotalXP, "lost update with %d concurrent awards", n)
		})
	}
}
