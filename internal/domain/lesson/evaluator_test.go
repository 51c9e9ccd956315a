package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studyloop/studyloop/internal/domain/shared"
)

func quizLesson(correctIndex int, attrs ...string) *Lesson {
	return &Lesson{
		Content: QuizContent{
			Question:     "What is the capital of France?",
			Options:      []string{"Berlin", "Paris", "Madrid", "Rome"},
			CorrectIndex: correctIndex,
		},
		TargetAttributes: attrs,
	}
}

func TestEvaluate_QuizCorrect(t *testing.T) {
	eval, err := Evaluate(quizLesson(1), 1)

	assert.NoError(t, err)
	assert.True(t, eval.IsCorrect)
	assert.Equal(t, shared.MaxScore, eval.Score)
	assert.Empty(t, eval.IdentifiedWeaknesses)
}

func TestEvaluate_QuizWrongFlagsWeaknesses(t *testing.T) {
	eval, err := Evaluate(quizLesson(1, "geography", "capitals"), 2)

	assert.NoError(t, err)
	assert.False(t, eval.IsCorrect)
	assert.Equal(t, shared.MinScore, eval.Score)
	assert.Equal(t, []string{"geography", "capitals"}, eval.IdentifiedWeaknesses)
}

func TestEvaluate_QuizAcceptsJSONNumber(t *testing.T) {
	// Decoded JSON delivers numbers as float64.
	eval, err := Evaluate(quizLesson(1), float64(1))

	assert.NoError(t, err)
	assert.True(t, eval.IsCorrect)
}

func TestEvaluate_QuizRejectsFractionalIndex(t *testing.T) {
	_, err := Evaluate(quizLesson(1), 1.5)

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestEvaluate_QuizRejectsStringAnswer(t *testing.T) {
	_, err := Evaluate(quizLesson(1), "Paris")

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestEvaluate_YesNo(t *testing.T) {
	l := &Lesson{Content: YesNoContent{Question: "Is water wet?", CorrectAnswer: true}}

	eval, err := Evaluate(l, true)
	assert.NoError(t, err)
	assert.True(t, eval.IsCorrect)
	assert.Equal(t, shared.MaxScore, eval.Score)

	eval, err = Evaluate(l, false)
	assert.NoError(t, err)
	assert.False(t, eval.IsCorrect)
	assert.Equal(t, shared.MinScore, eval.Score)
}

func TestEvaluate_YesNoRejectsNonBool(t *testing.T) {
	l := &Lesson{Content: YesNoContent{CorrectAnswer: true}}

	_, err := Evaluate(l, "true")

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestEvaluate_ShortAnswerScoring(t *testing.T) {
	l := &Lesson{Content: ShortAnswerContent{
		Question: "Describe photosynthesis.",
		Keywords: []string{"sunlight", "chlorophyll", "glucose", "oxygen"},
	}}

	tests := []struct {
		name        string
		answer      string
		wantScore   shared.Score
		wantCorrect bool
	}{
		{"all keywords", "Sunlight hits chlorophyll, producing glucose and oxygen.", 100, true},
		{"exactly half passes", "It needs sunlight and makes oxygen.", 50, true},
		{"below half fails", "Plants use sunlight.", 25, false},
		{"no keywords", "I do not know.", 0, false},
		{"case insensitive", "SUNLIGHT and CHLOROPHYLL and GLUCOSE and OXYGEN", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := Evaluate(l, tt.answer)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantScore, eval.Score)
			assert.Equal(t, tt.wantCorrect, eval.IsCorrect)
		})
	}
}

func TestEvaluate_ShortAnswerThirdsRounding(t *testing.T) {
	l := &Lesson{Content: ShortAnswerContent{
		Keywords: []string{"alpha", "beta", "gamma"},
	}}

	// 2 of 3 keywords is 66.67%, rounded to 67.
	eval, err := Evaluate(l, "alpha and beta")

	assert.NoError(t, err)
	assert.Equal(t, shared.Score(67), eval.Score)
	assert.True(t, eval.IsCorrect)
}

func TestEvaluate_ShortAnswerNoKeywordsNeverPasses(t *testing.T) {
	l := &Lesson{Content: ShortAnswerContent{Keywords: nil}}

	eval, err := Evaluate(l, "anything at all")

	assert.NoError(t, err)
	assert.False(t, eval.IsCorrect)
	assert.Equal(t, shared.MinScore, eval.Score)
}

func TestEvaluate_NilAnswer(t *testing.T) {
	_, err := Evaluate(quizLesson(0), nil)

	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestEvaluate_UnknownContent(t *testing.T) {
	_, err := Evaluate(&Lesson{}, 1)

	assert.ErrorIs(t, err, shared.ErrValidation)
}
