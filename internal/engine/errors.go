package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/glowprofile/internal/question"
)

// ErrRunClosed is returned when an operation is submitted after Close.
var ErrRunClosed = errors.New("run closed")

// UnknownQuestionError is returned when an operation names a question id
// that is not part of the run.
type UnknownQuestionError struct {
	ID string
}

// Error implements the error interface.
func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("unknown question %q", e.ID)
}

// IsUnknownQuestion reports whether err is (or wraps) an UnknownQuestionError.
func IsUnknownQuestion(err error) bool {
	var uq *UnknownQuestionError
	return errors.As(err, &uq)
}

// QuestionTypeError is returned when an operation does not apply to the
// question's presentation type (toggling a free-text question, say).
type QuestionTypeError struct {
	ID   string
	Type question.PresentationType
	Op   string
}

// Error implements the error interface.
func (e *QuestionTypeError) Error() string {
	return fmt.Sprintf("%s not supported for %s question %q", e.Op, e.Type, e.ID)
}

// IsQuestionType reports whether err is (or wraps) a QuestionTypeError.
func IsQuestionType(err error) bool {
	var qt *QuestionTypeError
	return errors.As(err, &qt)
}
