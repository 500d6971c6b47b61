package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies analysis failures.
type ErrorKind string

// All error kinds returned by the engine.
const (
	KindInvalidParameter         ErrorKind = "InvalidParameter"
	KindInsufficientItems        ErrorKind = "InsufficientItems"
	KindInsufficientBaseline     ErrorKind = "InsufficientBaseline"
	KindDimensionMismatch        ErrorKind = "DimensionMismatch"
	KindLengthMismatch           ErrorKind = "LengthMismatch"
	KindUpstreamEmbeddingFailure ErrorKind = "UpstreamEmbeddingFailure"
	KindEmptyInput               ErrorKind = "EmptyInput"
)

// AnalysisError is the structured failure of an analysis operation.
type AnalysisError struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Field     string    `json:"field,omitempty"`
	Required  int       `json:"required,omitempty"`
	Available int       `json:"available,omitempty"`
	Err       error     `json:"-"`
}

// Sentinels for errors.Is matching by kind.
var (
	ErrInvalidParameter         = &AnalysisError{Kind: KindInvalidParameter}
	ErrInsufficientItems        = &AnalysisError{Kind: KindInsufficientItems}
	ErrInsufficientBaseline     = &AnalysisError{Kind: KindInsufficientBaseline}
	ErrDimensionMismatch        = &AnalysisError{Kind: KindDimensionMismatch}
	ErrLengthMismatch           = &AnalysisError{Kind: KindLengthMismatch}
	ErrUpstreamEmbeddingFailure = &AnalysisError{Kind: KindUpstreamEmbeddingFailure}
	ErrEmptyInput               = &AnalysisError{Kind: KindEmptyInput}
)

func (e *AnalysisError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		fmt.Fprintf(&b, " (%s)", e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Required > 0 {
		fmt.Fprintf(&b, " [required %d, got %d]", e.Required, e.Available)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AnalysisError of the same kind.
func (e *AnalysisError) Is(target error) bool {
	var t *AnalysisError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// InvalidParameter builds an InvalidParameter error for field.
func InvalidParameter(field, format string, args ...any) *AnalysisError {
	return &AnalysisError{Kind: KindInvalidParameter, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientItems builds an InsufficientItems error with the minimum required count.
func InsufficientItems(field string, required, available int) *AnalysisError {
	return &AnalysisError{
		Kind:      KindInsufficientItems,
		Field:     field,
		Message:   "not enough items for a meaningful result",
		Required:  required,
		Available: available,
	}
}

// InsufficientBaseline builds an InsufficientBaseline error with the minimum required count.
func InsufficientBaseline(required, available int) *AnalysisError {
	return &AnalysisError{
		Kind:      KindInsufficientBaseline,
		Field:     "baseline",
		Message:   "not enough leading segments inside the baseline window",
		Required:  required,
		Available: available,
	}
}

// DimensionMismatch builds a DimensionMismatch error for two vector lengths.
func DimensionMismatch(a, b int) *AnalysisError {
	return &AnalysisError{Kind: KindDimensionMismatch, Message: fmt.Sprintf("vector lengths %d and %d differ", a, b)}
}

// LengthMismatch builds a LengthMismatch error for two parallel series.
func LengthMismatch(field string, a, b int) *AnalysisError {
	return &AnalysisError{Kind: KindLengthMismatch, Field: field, Message: fmt.Sprintf("series lengths %d and %d differ", a, b)}
}

// UpstreamEmbeddingFailure wraps an embedder error.
func UpstreamEmbeddingFailure(model string, err error) *AnalysisError {
	return &AnalysisError{Kind: KindUpstreamEmbeddingFailure, Field: model, Message: "embedding call failed", Err: err}
}

// EmptyInput builds an EmptyInput error for field.
func EmptyInput(field string) *AnalysisError {
	return &AnalysisError{Kind: KindEmptyInput, Field: field, Message: "input set is empty"}
}

// KindOf returns the kind of err, or an empty kind when err is not an AnalysisError.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}
