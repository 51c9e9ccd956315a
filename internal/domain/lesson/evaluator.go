package lesson

import (
	"math"
	"strings"

	"github.com/studyloop/studyloop/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ANSWER EVALUATION
// ═══════════════════════════════════════════════════════════════════════════

// Evaluation is the graded result of one submitted answer.
type Evaluation struct {
	// IsCorrect - whether the submission counts as correct.
	IsCorrect bool

	// Score - 0-100 grade.
	Score shared.Score

	// IdentifiedWeaknesses - the lesson's target attributes, attributed
	// in full on any incorrect answer. Empty on correct answers.
	IdentifiedWeaknesses []string
}

// Evaluate grades a submitted answer against the lesson content.
//
// Quiz and yes/no lessons are all-or-nothing: exact match scores 100,
// anything else 0. Short answers score by case-insensitive keyword
// presence; 50% or more matched keywords counts as correct.
//
// The answer arrives as decoded JSON (any), so numeric values are float64.
// A missing or wrongly shaped answer is a validation error, not a zero score.
func Evaluate(l *Lesson, answer any) (Evaluation, error) {
	if answer == nil {
		return Evaluation{}, shared.ErrAnswerMissing
	}

	var correct bool
	var score shared.Score

	switch content := l.Content.(type) {
	case QuizContent:
		idx, ok := answerAsIndex(answer)
		if !ok {
			return Evaluation{}, shared.ErrAnswerShape
		}
		correct = idx == content.CorrectIndex
		score = boolScore(correct)

	case YesNoContent:
		value, ok := answer.(bool)
		if !ok {
			return Evaluation{}, shared.ErrAnswerShape
		}
		correct = value == content.CorrectAnswer
		score = boolScore(correct)

	case ShortAnswerContent:
		text, ok := answer.(string)
		if !ok {
			return Evaluation{}, shared.ErrAnswerShape
		}
		score = scoreKeywords(content.Keywords, text)
		correct = score.IsPassing()

	default:
		return Evaluation{}, shared.ErrUnknownLessonKind
	}

	eval := Evaluation{IsCorrect: correct, Score: score}
	if !correct && len(l.TargetAttributes) > 0 {
		// Coarse attribution: every target attribute of the lesson is
		// flagged, with no per-attribute scoring.
		eval.IdentifiedWeaknesses = append(eval.IdentifiedWeaknesses, l.TargetAttributes...)
	}
	return eval, nil
}

// scoreKeywords grades a free-text answer by keyword presence.
func scoreKeywords(keywords []string, answer string) shared.Score {
	if len(keywords) == 0 {
		return shared.MinScore
	}
	lower := strings.ToLower(answer)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched++
		}
	}
	return shared.ClampScore(int(math.Round(float64(matched) / float64(len(keywords)) * 100)))
}

// answerAsIndex coerces a decoded JSON value to an integral option index.
func answerAsIndex(answer any) (int, bool) {
	switch v := answer.(type) {
	case int:
		return v, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func boolScore(correct bool) shared.Score {
	if correct {
		return shared.MaxScore
	}
	return shared.MinScore
}
