package service

import (
	"errors"
	"fmt"

	"github.com/pageza/whatscooking/backend/internal/model"
)

var (
	// ErrIngredientsRequired is returned when a generation request carries
	// no usable ingredient.
	ErrIngredientsRequired = errors.New("at least one ingredient is required")

	// ErrNoJSONFound is returned when the model response contains no JSON
	// object at all.
	ErrNoJSONFound = errors.New("no JSON object found in model response")

	// ErrEmptyRecipeList is returned when the response parsed but its
	// recipes array was missing or empty.
	ErrEmptyRecipeList = errors.New("model response contained no recipes")

	// ErrModelTimeout is returned when the model call exceeded its deadline.
	ErrModelTimeout = errors.New("model call timed out")
)

// MalformedJSONError reports a strict-parse failure after all repair stages
// ran. Snippet holds a bounded prefix of the raw response for diagnostics.
type MalformedJSONError struct {
	Snippet string
	Err     error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("malformed JSON in model response: %v", e.Err)
}

func (e *MalformedJSONError) Unwrap() error {
	return e.Err
}

// ModelError reports a failed model call. Callers may retry at their own
// discretion; the service itself never retries.
type ModelError struct {
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// StoreError reports a persistence failure. Inserts are per-row and not
// wrapped in a transaction, so Persisted carries any rows that made it in
// before the failure.
type StoreError struct {
	Persisted []model.Recipe
	Err       error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to persist recipes (%d persisted before failure): %v", len(e.Persisted), e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
