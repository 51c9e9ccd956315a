package command

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/studyloop/studyloop/internal/domain/achievement"
	"github.com/studyloop/studyloop/internal/domain/lesson"
	"github.com/studyloop/studyloop/internal/domain/progression"
	"github.com/studyloop/studyloop/internal/domain/shared"
	"github.com/studyloop/studyloop/pkg/logger"
	"github.com/studyloop/studyloop/pkg/timeutil"
)

// fakeWorld is an in-memory backend implementing Atomic plus the lesson,
// progression and achievement persistence contracts. InTx serializes
// callers on one mutex, which stands in for the database's transaction
// isolation and uniqueness arbitration.
type fakeWorld struct {
	mu sync.Mutex

	lessons     map[uuid.UUID]*lesson.WithTrack
	enrollments map[uuid.UUID]map[uuid.UUID]bool

	attempts    []*progression.Attempt
	completions map[string]*progression.Completion
	ledgers     map[string]*progression.Ledger

	catalog []achievement.Achievement
	earned  map[uuid.UUID]map[uuid.UUID]time.Time
}

func newFakeWorld() *fakeWorld {
	w := &fakeWorld{
		lessons:     make(map[uuid.UUID]*lesson.WithTrack),
		enrollments: make(map[uuid.UUID]map[uuid.UUID]bool),
		completions: make(map[string]*progression.Completion),
		ledgers:     make(map[string]*progression.Ledger),
		earned:      make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, entry := range achievement.SeedCatalog() {
		w.catalog = append(w.catalog, achievement.Achievement{
			ID:        uuid.New(),
			Name:      entry.Name,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return w
}

func pairKey(a, b uuid.UUID) string { return a.String() + "|" + b.String() }

func (w *fakeWorld) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(ctx)
}

// ── lesson.Repository ──

func (w *fakeWorld) GetForAttempt(_ context.Context, lessonID uuid.UUID) (*lesson.WithTrack, error) {
	lt, ok := w.lessons[lessonID]
	if !ok || !lt.Track.IsPublished {
		return nil, shared.ErrLessonNotFound
	}
	return lt, nil
}

func (w *fakeWorld) PriorLessonIDs(_ context.Context, trackID uuid.UUID, position int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, lt := range w.lessons {
		if lt.Lesson.TrackID == trackID && lt.Lesson.Position < position {
			ids = append(ids, lt.Lesson.ID)
		}
	}
	return ids, nil
}

func (w *fakeWorld) CountByTrack(_ context.Context, trackID uuid.UUID) (int, error) {
	n := 0
	for _, lt := range w.lessons {
		if lt.Lesson.TrackID == trackID {
			n++
		}
	}
	return n, nil
}

func (w *fakeWorld) IsEnrolled(_ context.Context, classID, userID uuid.UUID) (bool, error) {
	return w.enrollments[classID][userID], nil
}

// ── progression.Repository ──

func (w *fakeWorld) InsertAttempt(_ context.Context, attempt *progression.Attempt) error {
	w.attempts = append(w.attempts, attempt)
	return nil
}

func (w *fakeWorld) CountLessonAttempts(_ context.Context, lessonID, userID uuid.UUID) (int, error) {
	n := 0
	for _, a := range w.attempts {
		if a.LessonID == lessonID && a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (w *fakeWorld) CountUserAttempts(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, a := range w.attempts {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (w *fakeWorld) CreateCompletion(_ context.Context, c *progression.Completion) (bool, error) {
	key := pairKey(c.LessonID, c.UserID)
	if _, exists := w.completions[key]; exists {
		return false, nil
	}
	w.completions[key] = c
	return true, nil
}

func (w *fakeWorld) CountCompleted(_ context.Context, userID uuid.UUID, lessonIDs []uuid.UUID) (int, error) {
	n := 0
	for _, id := range lessonIDs {
		if _, ok := w.completions[pairKey(id, userID)]; ok {
			n++
		}
	}
	return n, nil
}

func (w *fakeWorld) CreditCompletion(_ context.Context, userID, classID uuid.UUID, xp int, now time.Time) (*progression.CreditResult, error) {
	key := pairKey(userID, classID)
	ledger, ok := w.ledgers[key]
	if !ok {
		ledger = &progression.Ledger{
			UserID:           userID,
			ClassID:          classID,
			TotalXP:          xp,
			CurrentLevel:     1,
			LessonsCompleted: 1,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		w.ledgers[key] = ledger
		return &progression.CreditResult{Ledger: *ledger}, nil
	}

	var prior *time.Time
	if ledger.LastActivityDate != nil {
		t := *ledger.LastActivityDate
		prior = &t
	}
	ledger.TotalXP += xp
	ledger.LessonsCompleted++
	ledger.UpdatedAt = now
	return &progression.CreditResult{Ledger: *ledger, PriorActivityDate: prior}, nil
}

func (w *fakeWorld) FinalizeLedger(_ context.Context, userID, classID uuid.UUID, level, streak, longest int, now time.Time) error {
	ledger, ok := w.ledgers[pairKey(userID, classID)]
	if !ok {
		return shared.ErrLedgerNotFound
	}
	ledger.CurrentLevel = level
	ledger.CurrentStreak = streak
	ledger.LongestStreak = longest
	ledger.LastActivityDate = &now
	ledger.UpdatedAt = now
	return nil
}

func (w *fakeWorld) GetLedger(_ context.Context, userID, classID uuid.UUID) (*progression.Ledger, error) {
	ledger, ok := w.ledgers[pairKey(userID, classID)]
	if !ok {
		return nil, shared.ErrLedgerNotFound
	}
	return ledger, nil
}

func (w *fakeWorld) ListLedgers(_ context.Context, userID uuid.UUID) ([]*progression.Ledger, error) {
	var out []*progression.Ledger
	for _, l := range w.ledgers {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (w *fakeWorld) TracksWithCompletions(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{})
	for _, c := range w.completions {
		if c.UserID != userID {
			continue
		}
		if lt, ok := w.lessons[c.LessonID]; ok {
			seen[lt.Lesson.TrackID] = struct{}{}
		}
	}
	var out []uuid.UUID
	for id := range seen {
		out = append(out, id)
	}
	return out, nil
}

func (w *fakeWorld) CountTrackCompletions(_ context.Context, trackID, userID uuid.UUID) (int, error) {
	n := 0
	for _, c := range w.completions {
		if c.UserID != userID {
			continue
		}
		if lt, ok := w.lessons[c.LessonID]; ok && lt.Lesson.TrackID == trackID {
			n++
		}
	}
	return n, nil
}

// ── achievement.Store ──

func (w *fakeWorld) ListCatalog(_ context.Context) ([]achievement.Achievement, error) {
	return w.catalog, nil
}

func (w *fakeWorld) EarnedNames(_ context.Context, userID uuid.UUID) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	for id := range w.earned[userID] {
		for _, a := range w.catalog {
			if a.ID == id {
				names[a.Name] = struct{}{}
			}
		}
	}
	return names, nil
}

func (w *fakeWorld) Award(_ context.Context, userID, achievementID uuid.UUID, earnedAt time.Time) (bool, error) {
	if w.earned[userID] == nil {
		w.earned[userID] = make(map[uuid.UUID]time.Time)
	}
	if _, exists := w.earned[userID][achievementID]; exists {
		return false, nil
	}
	w.earned[userID][achievementID] = earnedAt
	return true, nil
}

func (w *fakeWorld) ListEarned(_ context.Context, userID uuid.UUID) ([]achievement.Earned, error) {
	var out []achievement.Earned
	for id, at := range w.earned[userID] {
		for _, a := range w.catalog {
			if a.ID == id {
				out = append(out, achievement.Earned{Achievement: a, EarnedAt: at})
			}
		}
	}
	return out, nil
}

// ── fixture ──

type fixture struct {
	world   *fakeWorld
	handler *SubmitAttemptHandler
	userID  uuid.UUID
	classID uuid.UUID
	trackID uuid.UUID
	lessons []uuid.UUID
	now     time.Time
}

// newFixture builds a world with one published three-lesson track and one
// enrolled student. Every lesson is a quiz whose correct option index is 1.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	world := newFakeWorld()
	f := &fixture{
		world:   world,
		userID:  uuid.New(),
		classID: uuid.New(),
		trackID: uuid.New(),
		now:     time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC),
	}

	track := &lesson.Track{
		ID:          f.trackID,
		SubjectID:   uuid.New(),
		ClassID:     f.classID,
		Title:       "Algebra Basics",
		IsPublished: true,
	}
	for pos := 1; pos <= 3; pos++ {
		l := &lesson.Lesson{
			ID:       uuid.New(),
			TrackID:  f.trackID,
			Position: pos,
			Title:    "Lesson",
			XPReward: 50,
			Content: lesson.QuizContent{
				Question:     "Pick the right option",
				Options:      []string{"wrong", "right", "wrong"},
				CorrectIndex: 1,
			},
			TargetAttributes: []string{"algebra"},
		}
		world.lessons[l.ID] = &lesson.WithTrack{Lesson: l, Track: track}
		f.lessons = append(f.lessons, l.ID)
	}
	world.enrollments[f.classID] = map[uuid.UUID]bool{f.userID: true}

	log := logger.New(logger.Options{Output: io.Discard, Level: logger.LevelError})
	f.handler = NewSubmitAttemptHandler(
		world, world, world, world,
		achievement.NewEngine(achievement.DefaultCatalog()),
		nil,
		timeutil.UTC(),
		func() time.Time { return f.now },
		log,
	)
	return f
}

func (f *fixture) submit(lessonID uuid.UUID, answer any) (*SubmitAttemptResult, error) {
	return f.handler.Handle(context.Background(), SubmitAttemptCommand{
		LessonID: lessonID,
		UserID:   f.userID,
		Answer:   answer,
	})
}

// ── tests ──

func TestSubmitAttempt_FirstCorrectSubmission(t *testing.T) {
	f := newFixture(t)

	result, err := f.submit(f.lessons[0], 1)

	assert.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 100, result.Score)
	assert.True(t, result.CompletionCreated)
	assert.Equal(t, 50, result.XPAwarded)

	delta := result.Gamification
	if assert.NotNil(t, delta) {
		assert.Equal(t, 50, delta.XPAwarded)
		assert.Equal(t, 1, delta.PreviousLevel)
		assert.Equal(t, 1, delta.NewLevel)
		assert.False(t, delta.LeveledUp)
		assert.Equal(t, 1, delta.CurrentStreak)
		assert.Equal(t, 1, delta.LongestStreak)

		names := make([]string, len(delta.NewAchievements))
		for i, a := range delta.NewAchievements {
			names[i] = a.Name
		}
		assert.ElementsMatch(t, []string{"First Steps", "Perfect Score"}, names)
	}

	ledger, err := f.world.GetLedger(context.Background(), f.userID, f.classID)
	assert.NoError(t, err)
	assert.Equal(t, 50, ledger.TotalXP)
	assert.Equal(t, 1, ledger.LessonsCompleted)
	assert.Equal(t, 1, ledger.CurrentStreak)
	if assert.NotNil(t, ledger.LastActivityDate) {
		assert.Equal(t, f.now, *ledger.LastActivityDate)
	}
}

func TestSubmitAttempt_IncorrectRecordsAttemptOnly(t *testing.T) {
	f := newFixture(t)

	result, err := f.submit(f.lessons[0], 2)

	assert.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 0, result.Score)
	assert.False(t, result.CompletionCreated)
	assert.Nil(t, result.Gamification)
	assert.Equal(t, []string{"algebra"}, result.IdentifiedWeaknesses)

	assert.Len(t, f.world.attempts, 1)
	assert.Empty(t, f.world.completions)
	assert.Empty(t, f.world.ledgers)
}

func TestSubmitAttempt_ResubmissionIsBenignNoOp(t *testing.T) {
	f := newFixture(t)

	first, err := f.submit(f.lessons[0], 1)
	assert.NoError(t, err)
	assert.True(t, first.CompletionCreated)

	second, err := f.submit(f.lessons[0], 1)
	assert.NoError(t, err)
	assert.True(t, second.IsCorrect)
	assert.False(t, second.CompletionCreated)
	assert.Equal(t, 0, second.XPAwarded)
	assert.Nil(t, second.Gamification)

	// The attempt history still grows; the credit does not.
	assert.Len(t, f.world.attempts, 2)
	ledger, err := f.world.GetLedger(context.Background(), f.userID, f.classID)
	assert.NoError(t, err)
	assert.Equal(t, 50, ledger.TotalXP)
	assert.Equal(t, 1, ledger.LessonsCompleted)
}

func TestSubmitAttempt_LockedLessonPersistsNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.submit(f.lessons[2], 1)

	assert.ErrorIs(t, err, shared.ErrLessonLocked)
	assert.Empty(t, f.world.attempts)
	assert.Empty(t, f.world.completions)
}

func TestSubmitAttempt_SequentialUnlock(t *testing.T) {
	f := newFixture(t)

	_, err := f.submit(f.lessons[0], 1)
	assert.NoError(t, err)
	_, err = f.submit(f.lessons[1], 1)
	assert.NoError(t, err)

	result, err := f.submit(f.lessons[2], 1)
	assert.NoError(t, err)
	assert.True(t, result.CompletionCreated)

	// Finishing the last lesson masters the track.
	names := make([]string, 0)
	for _, a := range result.Gamification.NewAchievements {
		names = append(names, a.Name)
	}
	assert.Contains(t, names, "Track Complete")
}

func TestSubmitAttempt_NotEnrolled(t *testing.T) {
	f := newFixture(t)
	f.world.enrollments[f.classID] = nil

	_, err := f.submit(f.lessons[0], 1)

	assert.ErrorIs(t, err, shared.ErrNotEnrolled)
	assert.Empty(t, f.world.attempts)
}

func TestSubmitAttempt_UnknownLesson(t *testing.T) {
	f := newFixture(t)

	_, err := f.submit(uuid.New(), 1)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubmitAttempt_UnpublishedTrackHidden(t *testing.T) {
	f := newFixture(t)
	f.world.lessons[f.lessons[0]].Track.IsPublished = false

	_, err := f.submit(f.lessons[0], 1)

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSubmitAttempt_MalformedAnswerAbortsBeforeRecording(t *testing.T) {
	f := newFixture(t)

	_, err := f.submit(f.lessons[0], "right")

	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Empty(t, f.world.attempts)
}

func TestSubmitAttempt_MissingIDs(t *testing.T) {
	f := newFixture(t)

	_, err := f.handler.Handle(context.Background(), SubmitAttemptCommand{
		LessonID: f.lessons[0],
		UserID:   uuid.Nil,
		Answer:   1,
	})

	assert.ErrorIs(t, err, shared.ErrInvalidID)
}

func TestSubmitAttempt_ConcurrentSubmissionsCreditOnce(t *testing.T) {
	f := newFixture(t)

	const workers = 16
	results := make([]*SubmitAttemptResult, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.submit(f.lessons[0], 1)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < workers; i++ {
		assert.NoError(t, errs[i])
		assert.True(t, results[i].IsCorrect)
		if results[i].CompletionCreated {
			created++
			assert.NotNil(t, results[i].Gamification)
		} else {
			assert.Nil(t, results[i].Gamification)
		}
	}
	assert.Equal(t, 1, created, "exactly one submission wins the completion")

	// Every attempt is recorded; XP is credited exactly once.
	assert.Len(t, f.world.attempts, workers)
	assert.Len(t, f.world.completions, 1)
	ledger, err := f.world.GetLedger(context.Background(), f.userID, f.classID)
	assert.NoError(t, err)
	assert.Equal(t, 50, ledger.TotalXP)
	assert.Equal(t, 1, ledger.LessonsCompleted)
}
