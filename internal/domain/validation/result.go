// Package validation provides the guard/result combinator framework every
// business validation in the service is built on.
//
// Result is the structured, field-level outcome of one or more checks.
// Results compose: Combine merges many results into one, flattening nested
// failures so that deeply composed validations surface as a single flat
// error list at the API boundary. Outcome[T] is the operation-level
// success/failure channel that carries either a value or a combined Result;
// the two types are deliberately distinct so field-level detail is not lost
// when an operation fails.
//
// Typical orchestration:
//
//	results := validation.GuardBulk(args)
//	if combined := validation.Combine(results...); !combined.Succeeded {
//	    return validation.Failed[*submission.Submission](combined)
//	}
package validation

import (
	"strings"

	"github.com/civiplan/submission-service/internal/domain"
)

// Code classifies a validation failure. Codes travel to the API boundary
// unchanged and determine the HTTP status of the response.
type Code string

const (
	CodeMissingValue        Code = "missingValue"
	CodeInvalidInput        Code = "invalidInput"
	CodeTaxonomy            Code = "taxonomy"
	CodeNotFound            Code = "notFound"
	CodeDuplicate           Code = "duplicate"
	CodeForbidden           Code = "forbidden"
	CodeUnprocessableEntity Code = "unprocessableEntity"
	CodeConflict            Code = "conflict"
)

// Result is the outcome of evaluating one or more validation rules.
// A succeeded Result carries no code or message. Failures is populated only
// on results produced by Combine or HasAtLeastOneSucceeded; leaf failures
// carry Target/Code/Message directly.
type Result struct {
	Succeeded bool
	Target    string
	Code      Code
	Message   string
	Failures  []Result
}

// Success returns a succeeded Result.
func Success() Result {
	return Result{Succeeded: true}
}

// Failure returns a leaf failure for the named target.
func Failure(target string, code Code, message string) Result {
	return Result{Target: target, Code: code, Message: message}
}

// Leaves returns the leaf failures of r: the flattened Failures list for a
// combined result, r itself for a leaf failure, nil for a success.
func (r Result) Leaves() []Result {
	if r.Succeeded {
		return nil
	}
	if len(r.Failures) > 0 {
		return r.Failures
	}
	return []Result{r}
}

// Combine merges many results into one. It succeeds iff every input
// succeeded. On failure the returned Result carries the flattened set of
// leaf failures: inputs that are themselves combined results contribute
// their leaves rather than nesting again, and duplicate leaves (same
// target, code, and message) appear once. Flattening is idempotent:
// Combine(Combine(a, b), c) has the same leaves as Combine(a, b, c).
func Combine(results ...Result) Result {
	var leaves []Result
	seen := make(map[leafKey]bool)
	for _, r := range results {
		for _, leaf := range r.Leaves() {
			k := leafKey{leaf.Target, leaf.Code, leaf.Message}
			if seen[k] {
				continue
			}
			seen[k] = true
			leaves = append(leaves, leaf)
		}
	}
	if len(leaves) == 0 {
		return Success()
	}
	return Result{Failures: leaves}
}

// HasAtLeastOneSucceeded is the OR-combinator: it succeeds if any input
// succeeded. On total failure it aggregates the leaf failures of every
// input under a generic "one of the following is mandatory" message.
func HasAtLeastOneSucceeded(results ...Result) Result {
	for _, r := range results {
		if r.Succeeded {
			return Success()
		}
	}
	combined := Combine(results...)
	combined.Message = "at least one of the following validations must succeed"
	return combined
}

type leafKey struct {
	target  string
	code    Code
	message string
}

// Err converts a failed Result into a *Error; it returns nil for a success.
func (r Result) Err() error {
	if r.Succeeded {
		return nil
	}
	return &Error{Result: r}
}

// Error adapts a failed Result to the error interface at the service
// boundary. It unwraps to the domain sentinel matching its dominant code so
// callers can use errors.Is, and the DTO layer uses errors.As to recover the
// structured Result for the response body.
type Error struct {
	Result Result
}

func (e *Error) Error() string {
	leaves := e.Result.Leaves()
	parts := make([]string, 0, len(leaves))
	for _, leaf := range leaves {
		if leaf.Target != "" {
			parts = append(parts, leaf.Target+": "+leaf.Message)
		} else {
			parts = append(parts, leaf.Message)
		}
	}
	if len(parts) == 0 && e.Result.Message != "" {
		parts = append(parts, e.Result.Message)
	}
	return strings.Join(parts, "; ")
}

// Unwrap maps the dominant failure code to a domain sentinel error.
// Business-rule codes dominate format codes so a mixed failure reports the
// most specific condition.
func (e *Error) Unwrap() error {
	return codePrecedence(e.Result)
}

// codePrecedence picks the sentinel for the most severe leaf code.
func codePrecedence(r Result) error {
	order := []struct {
		code Code
		err  error
	}{
		{CodeForbidden, domain.ErrForbidden},
		{CodeConflict, domain.ErrConflict},
		{CodeUnprocessableEntity, domain.ErrUnprocessable},
		{CodeDuplicate, domain.ErrDuplicate},
		{CodeNotFound, domain.ErrNotFound},
	}
	for _, entry := range order {
		for _, leaf := range r.Leaves() {
			if leaf.Code == entry.code {
				return entry.err
			}
		}
	}
	return domain.ErrValidation
}
