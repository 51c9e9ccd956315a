package lesson

import (
	"encoding/json"
	"fmt"

	"github.com/studyloop/studyloop/internal/domain/shared"
)

// Kind identifies how a lesson is answered and graded.
type Kind string

const (
	KindQuiz        Kind = "QUIZ"
	KindYesNo       Kind = "YES_NO"
	KindShortAnswer Kind = "SHORT_ANSWER"
)

// IsValid checks if the kind is one of the known lesson kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindQuiz, KindYesNo, KindShortAnswer:
		return true
	}
	return false
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// Content is the kind-specific body of a lesson. It is a closed set:
// QuizContent, YesNoContent and ShortAnswerContent are the only
// implementations, so evaluation can match exhaustively and illegal
// kind/content combinations are unrepresentable.
type Content interface {
	// Kind returns the lesson kind this content belongs to.
	Kind() Kind

	// Explanation returns the feedback text shown after an attempt.
	Explanation() string

	// Validate checks structural invariants of the content.
	Validate() error

	sealed()
}

// QuizContent is a multiple-choice question with one correct option.
type QuizContent struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctAnswer"`
	Feedback     string   `json:"explanation,omitempty"`
}

func (QuizContent) sealed() {}

// Kind returns KindQuiz.
func (c QuizContent) Kind() Kind { return KindQuiz }

// Explanation returns the feedback text shown after an attempt.
func (c QuizContent) Explanation() string { return c.Feedback }

// Validate checks structural invariants of the content.
func (c QuizContent) Validate() error {
	if c.Question == "" {
		return shared.NewDomainError("lesson", "ValidateContent", shared.ErrEmptyValue, "quiz question is required")
	}
	if len(c.Options) < 2 {
		return shared.NewDomainError("lesson", "ValidateContent", shared.ErrInvalidInput, "quiz needs at least two options")
	}
	if c.CorrectIndex < 0 || c.CorrectIndex >= len(c.Options) {
		return shared.NewDomainError("lesson", "ValidateContent", shared.ErrValueOutOfRange, "correct answer index is out of range")
	}
	return nil
}

// YesNoContent is a true/false style question.
type YesNoContent struct {
	Question      string `json:"question"`
	CorrectAnswer bool   `json:"correctAnswer"`
	Feedback      string `json:"explanation,omitempty"`
}

func (YesNoContent) sealed() {}

// Kind returns KindYesNo.
func (c YesNoContent) Kind() Kind { return KindYesNo }

// Explanation returns the feedback text shown after an attempt.
func (c YesNoContent) Explanation() string { return c.Feedback }

// Validate checks structural invariants of the content.
func (c YesNoContent) Validate() error {
	if c.Question == "" {
		return shared.NewDomainError("lesson", "ValidateContent", shared.ErrEmptyValue, "yes/no question is required")
	}
	return nil
}

// ShortAnswerContent is a free-text question graded by keyword matching.
type ShortAnswerContent struct {
	Question string   `json:"question"`
	Keywords []string `json:"keywords"`
	Feedback string   `json:"explanation,omitempty"`
}

func (ShortAnswerContent) sealed() {}

// Kind returns KindShortAnswer.
func (c ShortAnswerContent) Kind() Kind { return KindShortAnswer }

// Explanation returns the feedback text shown after an attempt.
func (c ShortAnswerContent) Explanation() string { return c.Feedback }

// Validate checks structural invariants of the content.
func (c ShortAnswerContent) Validate() error {
	if c.Question == "" {
		return shared.NewDomainError("lesson", "ValidateContent", shared.ErrEmptyValue, "short answer question is required")
	}
	return nil
}

// MarshalContent serializes content for JSONB storage.
func MarshalContent(c Content) ([]byte, error) {
	if c == nil {
		return nil, shared.NewDomainError("lesson", "MarshalContent", shared.ErrEmptyValue, "lesson content is nil")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal lesson content: %w", err)
	}
	return data, nil
}

// UnmarshalContent deserializes stored JSONB content for the given kind.
func UnmarshalContent(kind Kind, data []byte) (Content, error) {
	switch kind {
	case KindQuiz:
		var c QuizContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, shared.WrapError("lesson", "UnmarshalContent", shared.ErrInvalidFormat, "malformed quiz content", err)
		}
		return c, nil
	case KindYesNo:
		var c YesNoContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, shared.WrapError("lesson", "UnmarshalContent", shared.ErrInvalidFormat, "malformed yes/no content", err)
		}
		return c, nil
	case KindShortAnswer:
		var c ShortAnswerContent
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, shared.WrapError("lesson", "UnmarshalContent", shared.ErrInvalidFormat, "malformed short answer content", err)
		}
		return c, nil
	default:
		return nil, shared.ErrUnknownLessonKind
	}
}
