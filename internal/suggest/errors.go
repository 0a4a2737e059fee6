package suggest

import (
	"fmt"
)

// NoCandidatesError is returned when a selection pool is empty after filtering.
type NoCandidatesError struct {
	Pool   string // "prompts" or "models"
	Filter string
}

func (e *NoCandidatesError) Error() string {
	return fmt.Sprintf("no %s match %s", e.Pool, e.Filter)
}

// ModelInvocationError wraps a failed model call after transport retries.
type ModelInvocationError struct {
	Model string
	State State
	Err   error
}

func (e *ModelInvocationError) Error() string {
	return fmt.Sprintf("invoke model %s during %s: %v", e.Model, e.State, e.Err)
}

func (e *ModelInvocationError) Unwrap() error {
	return e.Err
}

// EmptyGenerationError is returned when no usable text survives sanitization
// and both fallbacks. The raw response is recorded as OutputID.
type EmptyGenerationError struct {
	PromptID int64
	ModelID  int64
	OutputID int64
	State    State
}

func (e *EmptyGenerationError) Error() string {
	return fmt.Sprintf("model %d returned no usable text for prompt %d (output %d)", e.ModelID, e.PromptID, e.OutputID)
}

// ShorteningExhaustedError is returned when the text still exceeds the
// length limit after the maximum number of shorten requests.
type ShorteningExhaustedError struct {
	Attempts int
	Length   int
	Limit    int
	OutputID int64
	State    State
}

func (e *ShorteningExhaustedError) Error() string {
	return fmt.Sprintf("text still %d characters (limit %d) after %d shorten attempts", e.Length, e.Limit, e.Attempts)
}

// RewriteValidationError is returned when a rewritten prompt does not carry
// exactly one context placeholder. Nothing is persisted.
type RewriteValidationError struct {
	PromptID     int64
	Placeholders int
	Text         string
}

func (e *RewriteValidationError) Error() string {
	return fmt.Sprintf("rewrite of prompt %d has %d %s placeholders, want 1", e.PromptID, e.Placeholders, Placeholder)
}

// PlaceholderError is returned when a new prompt template carries more than
// one context placeholder.
type PlaceholderError struct {
	Placeholders int
	Text         string
}

func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("prompt has %d %s placeholders, want 1", e.Placeholders, Placeholder)
}
