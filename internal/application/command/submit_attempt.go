// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/studyloop/studyloop/internal/domain/achievement"
	"github.com/studyloop/studyloop/internal/domain/lesson"
	"github.com/studyloop/studyloop/internal/domain/progression"
	"github.com/studyloop/studyloop/internal/domain/shared"
	"github.com/studyloop/studyloop/pkg/logger"
	"github.com/studyloop/studyloop/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT ATTEMPT COMMAND
// The progression engine's single write path: grades a submission, records
// the attempt, credits the completion at most once, and derives XP, level,
// streak and achievements from that credit event.
// ══════════════════════════════════════════════════════════════════════════════

// Atomic runs a function inside one storage transaction. Everything the
// function writes becomes visible together or not at all.
type Atomic interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SubmitAttemptCommand contains one answer submission.
type SubmitAttemptCommand struct {
	// LessonID - the attempted lesson.
	LessonID uuid.UUID

	// UserID - the submitting student, resolved by the auth layer.
	UserID uuid.UUID

	// Answer - the decoded submitted answer (index, bool or string).
	Answer any

	// TimeSpentSeconds - optional client-reported time on task.
	TimeSpentSeconds *int
}

// GamificationDelta describes what one winning completion changed.
type GamificationDelta struct {
	XPAwarded       int                       `json:"xpAwarded"`
	PreviousLevel   int                       `json:"previousLevel"`
	NewLevel        int                       `json:"newLevel"`
	LeveledUp       bool                      `json:"leveledUp"`
	CurrentStreak   int                       `json:"currentStreak"`
	LongestStreak   int                       `json:"longestStreak"`
	NewAchievements []achievement.Achievement `json:"newAchievements"`
}

// SubmitAttemptResult is the full response for one submission.
type SubmitAttemptResult struct {
	AttemptID            uuid.UUID          `json:"attemptId"`
	IsCorrect            bool               `json:"isCorrect"`
	Score                int                `json:"score"`
	IdentifiedWeaknesses []string           `json:"identifiedWeaknesses"`
	CompletionCreated    bool               `json:"completionCreated"`
	XPAwarded            int                `json:"xpAwarded"`
	Gamification         *GamificationDelta `json:"gamification,omitempty"`
	Explanation          string             `json:"explanation,omitempty"`
}

// SubmitAttemptHandler orchestrates one submission as a single atomic unit
// of work.
type SubmitAttemptHandler struct {
	atomic       Atomic
	lessons      lesson.Repository
	progressions progression.Repository
	achievements achievement.Store
	engine       *achievement.Engine
	gate         *progression.UnlockGate
	events       shared.EventPublisher
	calendar     timeutil.Calendar
	clock        timeutil.Clock
	log          *logger.Logger
}

// NewSubmitAttemptHandler wires the handler. The unlock gate is built over
// the same repositories so it sees transactional state.
func NewSubmitAttemptHandler(
	atomic Atomic,
	lessons lesson.Repository,
	progressions progression.Repository,
	achievements achievement.Store,
	engine *achievement.Engine,
	events shared.EventPublisher,
	calendar timeutil.Calendar,
	clock timeutil.Clock,
	log *logger.Logger,
) *SubmitAttemptHandler {
	if clock == nil {
		clock = timeutil.SystemClock
	}
	return &SubmitAttemptHandler{
		atomic:       atomic,
		lessons:      lessons,
		progressions: progressions,
		achievements: achievements,
		engine:       engine,
		gate:         progression.NewUnlockGate(lessons, progressions),
		events:       events,
		calendar:     calendar,
		clock:        clock,
		log:          log.With(logger.Component("submit_attempt")),
	}
}

// Handle processes one submission.
//
// Failure modes: shared.ErrValidation (malformed answer),
// shared.ErrNotFound (lesson/track absent or unpublished),
// shared.ErrForbidden (not enrolled, or sequential lock). A lost race on
// the completion insert is not an error: the attempt still commits and the
// response reports completionCreated=false with no gamification delta.
func (h *SubmitAttemptHandler) Handle(ctx context.Context, cmd SubmitAttemptCommand) (*SubmitAttemptResult, error) {
	if cmd.LessonID == uuid.Nil || cmd.UserID == uuid.Nil {
		return nil, shared.NewDomainError("progression", "Submit", shared.ErrInvalidID, "lesson ID and user ID are required")
	}

	now := h.clock()
	var result *SubmitAttemptResult
	var completedEvent *completionFacts

	err := h.atomic.InTx(ctx, func(ctx context.Context) error {
		lt, err := h.lessons.GetForAttempt(ctx, cmd.LessonID)
		if err != nil {
			return err
		}

		enrolled, err := h.lessons.IsEnrolled(ctx, lt.Track.ClassID, cmd.UserID)
		if err != nil {
			return err
		}
		if !enrolled {
			return shared.ErrNotEnrolled
		}

		// Gate before grading: a locked lesson persists nothing.
		if err := h.gate.Check(ctx, lt.Lesson, cmd.UserID); err != nil {
			return err
		}

		eval, err := lesson.Evaluate(lt.Lesson, cmd.Answer)
		if err != nil {
			return err
		}

		rawAnswer, err := json.Marshal(cmd.Answer)
		if err != nil {
			return shared.WrapError("progression", "Submit", shared.ErrValidation, "answer is not serializable", err)
		}

		attempt := &progression.Attempt{
			ID:                   uuid.New(),
			LessonID:             lt.Lesson.ID,
			UserID:               cmd.UserID,
			SubmittedAnswer:      rawAnswer,
			IsCorrect:            eval.IsCorrect,
			Score:                eval.Score,
			TimeSpentSeconds:     cmd.TimeSpentSeconds,
			IdentifiedWeaknesses: eval.IdentifiedWeaknesses,
			AttemptedAt:          now,
		}
		if err := h.progressions.InsertAttempt(ctx, attempt); err != nil {
			return err
		}

		result = &SubmitAttemptResult{
			AttemptID:            attempt.ID,
			IsCorrect:            eval.IsCorrect,
			Score:                eval.Score.Int(),
			IdentifiedWeaknesses: eval.IdentifiedWeaknesses,
			Explanation:          lt.Lesson.Explanation(),
		}

		if !eval.IsCorrect {
			return nil
		}

		delta, facts, err := h.creditCompletion(ctx, lt, attempt, now)
		if err != nil {
			return err
		}
		if delta == nil {
			// Lost the race or re-submitted an already completed lesson:
			// benign no-op, no XP, no streak, no achievements.
			return nil
		}

		result.CompletionCreated = true
		result.XPAwarded = delta.XPAwarded
		result.Gamification = delta
		completedEvent = facts
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completedEvent != nil {
		h.publish(completedEvent, result, now)
	}
	return result, nil
}

// completionFacts carries post-commit event data.
type completionFacts struct {
	userID   uuid.UUID
	classID  uuid.UUID
	lessonID uuid.UUID
	totalXP  int
}

// creditCompletion performs steps 4-6: the optimistic completion insert,
// the ledger credit, and the achievement pass. Returns a nil delta when the
// completion already existed.
func (h *SubmitAttemptHandler) creditCompletion(
	ctx context.Context,
	lt *lesson.WithTrack,
	attempt *progression.Attempt,
	now time.Time,
) (*GamificationDelta, *completionFacts, error) {
	attemptsCount, err := h.progressions.CountLessonAttempts(ctx, attempt.LessonID, attempt.UserID)
	if err != nil {
		return nil, nil, err
	}

	completion := &progression.Completion{
		ID:            uuid.New(),
		LessonID:      attempt.LessonID,
		UserID:        attempt.UserID,
		FinalScore:    attempt.Score,
		AttemptsCount: attemptsCount,
		CompletedAt:   now,
	}
	created, err := h.progressions.CreateCompletion(ctx, completion)
	if err != nil {
		return nil, nil, err
	}
	if !created {
		return nil, nil, nil
	}

	credit, err := h.progressions.CreditCompletion(ctx, attempt.UserID, lt.Track.ClassID, lt.Lesson.XPReward, now)
	if err != nil {
		return nil, nil, err
	}

	previousLevel := credit.Ledger.CurrentLevel
	newLevel := progression.Level(credit.Ledger.TotalXP)
	streak := progression.NextStreak(
		credit.Ledger.CurrentStreak,
		credit.Ledger.LongestStreak,
		credit.PriorActivityDate,
		now,
		h.calendar,
	)
	if err := h.progressions.FinalizeLedger(ctx, attempt.UserID, lt.Track.ClassID, newLevel, streak.Current, streak.Longest, now); err != nil {
		return nil, nil, err
	}

	snapshot, err := h.buildSnapshot(ctx, attempt.UserID, credit, newLevel, streak, attempt.Score)
	if err != nil {
		return nil, nil, err
	}

	newAchievements, err := h.engine.EvaluateAndAward(ctx, h.achievements, attempt.UserID, snapshot, now)
	if err != nil {
		return nil, nil, err
	}
	if newAchievements == nil {
		newAchievements = []achievement.Achievement{}
	}

	delta := &GamificationDelta{
		XPAwarded:       lt.Lesson.XPReward,
		PreviousLevel:   previousLevel,
		NewLevel:        newLevel,
		LeveledUp:       newLevel > previousLevel,
		CurrentStreak:   streak.Current,
		LongestStreak:   streak.Longest,
		NewAchievements: newAchievements,
	}
	facts := &completionFacts{
		userID:   attempt.UserID,
		classID:  lt.Track.ClassID,
		lessonID: attempt.LessonID,
		totalXP:  credit.Ledger.TotalXP,
	}
	return delta, facts, nil
}

// buildSnapshot gathers the achievement context for this credit event.
// Track mastery is recounted from scratch per submission.
func (h *SubmitAttemptHandler) buildSnapshot(
	ctx context.Context,
	userID uuid.UUID,
	credit *progression.CreditResult,
	newLevel int,
	streak progression.StreakState,
	score shared.Score,
) (achievement.Context, error) {
	totalAttempts, err := h.progressions.CountUserAttempts(ctx, userID)
	if err != nil {
		return achievement.Context{}, err
	}

	trackIDs, err := h.progressions.TracksWithCompletions(ctx, userID)
	if err != nil {
		return achievement.Context{}, err
	}
	masteredTracks := 0
	for _, trackID := range trackIDs {
		total, err := h.lessons.CountByTrack(ctx, trackID)
		if err != nil {
			return achievement.Context{}, err
		}
		completed, err := h.progressions.CountTrackCompletions(ctx, trackID, userID)
		if err != nil {
			return achievement.Context{}, err
		}
		if total > 0 && completed >= total {
			masteredTracks++
		}
	}

	return achievement.Context{
		TotalXP:               credit.Ledger.TotalXP,
		LessonsCompleted:      credit.Ledger.LessonsCompleted,
		CurrentStreak:         streak.Current,
		LongestStreak:         streak.Longest,
		CurrentLevel:          newLevel,
		IsPerfectScore:        score.IsPerfect(),
		FirstCompletion:       credit.Ledger.LessonsCompleted == 1,
		TotalAttempts:         totalAttempts,
		UniqueTracksCompleted: masteredTracks,
	}, nil
}

// publish emits post-commit domain events for cache maintenance and logging.
func (h *SubmitAttemptHandler) publish(facts *completionFacts, result *SubmitAttemptResult, now time.Time) {
	if h.events == nil {
		return
	}
	h.events.Publish(shared.NewEvent(shared.EventLessonCompleted, facts.userID.String(), now, map[string]interface{}{
		"user_id":   facts.userID.String(),
		"class_id":  facts.classID.String(),
		"lesson_id": facts.lessonID.String(),
		"total_xp":  facts.totalXP,
		"xp":        result.XPAwarded,
	}))
	if result.Gamification != nil && result.Gamification.LeveledUp {
		h.events.Publish(shared.NewEvent(shared.EventLevelUp, facts.userID.String(), now, map[string]interface{}{
			"user_id":   facts.userID.String(),
			"class_id":  facts.classID.String(),
			"new_level": result.Gamification.NewLevel,
		}))
	}
	if result.Gamification != nil {
		for _, earned := range result.Gamification.NewAchievements {
			h.events.Publish(shared.NewEvent(shared.EventAchievementEarned, facts.userID.String(), now, map[string]interface{}{
				"user_id":     facts.userID.String(),
				"achievement": earned.Name,
			}))
		}
	}

	h.log.Info("lesson completed",
		logger.UserID(facts.userID.String()),
		logger.LessonID(facts.lessonID.String()),
		logger.ClassID(facts.classID.String()),
		logger.XPAmount(result.XPAwarded),
		logger.Score(result.Score),
	)
}
