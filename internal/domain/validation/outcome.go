package validation

// Void is the value type of outcomes that carry no payload.
type Void = struct{}

// Outcome is the operation-level success/failure channel. A success holds a
// value; a failure holds a combined Result. Callers must check IsFailure
// before unwrapping the value; nothing in the workflow layer panics or
// throws for expected business conditions.
type Outcome[T any] struct {
	value   T
	failure Result
	ok      bool
}

// OK returns a successful outcome carrying the value.
func OK[T any](v T) Outcome[T] {
	return Outcome[T]{value: v, ok: true, failure: Success()}
}

// Failed returns a failed outcome carrying the (possibly combined) Result.
// Passing a succeeded Result is a programmer error.
func Failed[T any](r Result) Outcome[T] {
	if r.Succeeded {
		panic("validation: Failed called with a succeeded result")
	}
	return Outcome[T]{failure: r}
}

// FailedError returns a failed outcome with a single leaf failure.
func FailedError[T any](target string, code Code, message string) Outcome[T] {
	return Failed[T](Failure(target, code, message))
}

// IsSuccess reports whether the outcome carries a value.
func (o Outcome[T]) IsSuccess() bool { return o.ok }

// IsFailure reports whether the outcome carries a failure.
func (o Outcome[T]) IsFailure() bool { return !o.ok }

// Value returns the carried value. It is the zero value on failure.
func (o Outcome[T]) Value() T { return o.value }

// Failure returns the carried Result; a succeeded Result on success.
func (o Outcome[T]) Failure() Result { return o.failure }

// Err bridges the outcome to the (value, error) convention at the service
// boundary: nil on success, a *Error carrying the combined Result on failure.
func (o Outcome[T]) Err() error {
	if o.ok {
		return nil
	}
	return &Error{Result: o.failure}
}

// Fallible is the failure view shared by every Outcome instantiation,
// allowing outcomes of different value types to be combined.
type Fallible interface {
	IsFailure() bool
	Failure() Result
}

// CombineAll merges the failures of heterogeneous outcomes. It returns a
// failed Outcome carrying the Combine-merged Result if any input failed,
// else a successful void outcome.
func CombineAll(items ...Fallible) Outcome[Void] {
	var failures []Result
	for _, item := range items {
		if item.IsFailure() {
			failures = append(failures, item.Failure())
		}
	}
	if len(failures) == 0 {
		return OK(Void{})
	}
	return Failed[Void](Combine(failures...))
}
