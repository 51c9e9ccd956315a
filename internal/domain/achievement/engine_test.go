package achievement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type memStore struct {
	catalog []Achievement
	earned  map[uuid.UUID]map[uuid.UUID]time.Time
	awards  int
}

func newMemStore(names ...string) *memStore {
	s := &memStore{earned: make(map[uuid.UUID]map[uuid.UUID]time.Time)}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range names {
		s.catalog = append(s.catalog, Achievement{
			ID:        uuid.New(),
			Name:      name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return s
}

func (s *memStore) ListCatalog(_ context.Context) ([]Achievement, error) {
	return s.catalog, nil
}

func (s *memStore) EarnedNames(_ context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	for id := range s.earned[userID] {
		for _, a := range s.catalog {
			if a.ID == id {
				names[a.Name] = struct{}{}
			}
		}
	}
	return names, nil
}

func (s *memStore) Award(_ context.Context, userID, achievementID uuid.UUID, earnedAt time.Time) (bool, error) {
	if s.earned[userID] == nil {
		s.earned[userID] = make(map[uuid.UUID]time.Time)
	}
	if _, exists := s.earned[userID][achievementID]; exists {
		return false, nil
	}
	s.earned[userID][achievementID] = earnedAt
	s.awards++
	return true, nil
}

func (s *memStore) ListEarned(_ context.Context, userID uuid.UUID) ([]Earned, error) {
	var out []Earned
	for id, at := range s.earned[userID] {
		for _, a := range s.catalog {
			if a.ID == id {
				out = append(out, Earned{Achievement: a, EarnedAt: at})
			}
		}
	}
	return out, nil
}

func seededNames() []string {
	entries := SeedCatalog()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestEngine_FirstCompletionAwardsOnce(t *testing.T) {
	store := newMemStore(seededNames()...)
	engine := NewEngine(DefaultCatalog())
	userID := uuid.New()
	now := time.Now()

	snapshot := Context{
		TotalXP:          10,
		LessonsCompleted: 1,
		CurrentLevel:     1,
		FirstCompletion:  true,
	}

	earned, err := engine.EvaluateAndAward(context.Background(), store, userID, snapshot, now)
	assert.NoError(t, err)
	assert.Len(t, earned, 1)
	assert.Equal(t, "First Steps", earned[0].Name)

	// The same snapshot evaluated again yields nothing new.
	earned, err = engine.EvaluateAndAward(context.Background(), store, userID, snapshot, now)
	assert.NoError(t, err)
	assert.Empty(t, earned)
	assert.Equal(t, 1, store.awards)
}

func TestEngine_OneEventCrossesSeveralThresholds(t *testing.T) {
	store := newMemStore(seededNames()...)
	engine := NewEngine(DefaultCatalog())

	snapshot := Context{
		TotalXP:          550,
		LessonsCompleted: 5,
		CurrentLevel:     4,
		CurrentStreak:    3,
		LongestStreak:    3,
		FirstCompletion:  false,
		IsPerfectScore:   true,
	}

	earned, err := engine.EvaluateAndAward(context.Background(), store, uuid.New(), snapshot, time.Now())

	assert.NoError(t, err)
	names := make([]string, len(earned))
	for i, a := range earned {
		names[i] = a.Name
	}
	assert.ElementsMatch(t, []string{
		"Getting Started",
		"XP Collector",
		"XP Hunter",
		"On Fire",
		"Perfect Score",
	}, names)
}

func TestEngine_UnseededEntriesSkipped(t *testing.T) {
	// Only one row seeded; every other satisfied predicate has no row to award.
	store := newMemStore("First Steps")
	engine := NewEngine(DefaultCatalog())

	snapshot := Context{
		TotalXP:          5000,
		LessonsCompleted: 100,
		CurrentLevel:     20,
		FirstCompletion:  true,
	}

	earned, err := engine.EvaluateAndAward(context.Background(), store, uuid.New(), snapshot, time.Now())

	assert.NoError(t, err)
	assert.Len(t, earned, 1)
	assert.Equal(t, "First Steps", earned[0].Name)
}

func TestEngine_LostRaceDroppedFromResult(t *testing.T) {
	store := newMemStore(seededNames()...)
	engine := NewEngine(DefaultCatalog())
	userID := uuid.New()

	// Another writer already holds the row; Award reports created=false.
	var firstSteps uuid.UUID
	for _, a := range store.catalog {
		if a.Name == "First Steps" {
			firstSteps = a.ID
		}
	}
	store.earned[userID] = map[uuid.UUID]time.Time{firstSteps: time.Now()}

	// EarnedNames already reflects the row, so the predicate is skipped.
	earned, err := engine.EvaluateAndAward(context.Background(), store, userID, Context{
		LessonsCompleted: 1,
		FirstCompletion:  true,
	}, time.Now())

	assert.NoError(t, err)
	assert.Empty(t, earned)
}

func TestCatalog_MatchesSeedRows(t *testing.T) {
	catalog := DefaultCatalog()
	seeds := SeedCatalog()

	assert.Equal(t, len(seeds), len(catalog))

	seeded := make(map[string]struct{}, len(seeds))
	for _, e := range seeds {
		seeded[e.Name] = struct{}{}
		assert.NotEmpty(t, e.Description, "seed %q has no description", e.Name)
		assert.NotEmpty(t, e.Icon, "seed %q has no icon", e.Name)
	}
	for _, def := range catalog {
		assert.Contains(t, seeded, def.Key, "definition %q has no seed row", def.Key)
		assert.NotNil(t, def.Check, "definition %q has no predicate", def.Key)
	}
}
