// Package result provides success-or-failure and present-or-absent wrappers
// used on expected failure paths of the installer.
package result

import "errors"

// ErrUnspecified stands in when a Failure is built from a nil error.
var ErrUnspecified = errors.New("unspecified failure")

// Result holds either a success value or a failure error, never both.
type Result[T any] struct {
	value T
	err   error
}

// Success wraps v as a successful result.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure wraps err as a failed result. A nil err becomes ErrUnspecified so
// the variant stays a failure.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = ErrUnspecified
	}
	return Result[T]{err: err}
}

// Of adapts a conventional (value, error) pair.
func Of[T any](v T, err error) Result[T] {
	if err != nil {
		return Failure[T](err)
	}
	return Success(v)
}

// IsSuccess reports whether r carries a value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsFailure reports whether r carries an error.
func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

// Get returns the success value and true, or the zero value and false.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.err == nil
}

// GetOrZero returns the success value, or the zero value on failure.
func (r Result[T]) GetOrZero() T {
	return r.value
}

// GetOrElse returns the success value, or fallback on failure.
func (r Result[T]) GetOrElse(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Err returns the failure error, or nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap converts r back into the (value, error) idiom.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// OnSuccess calls fn with the value when r is a success and returns r.
func (r Result[T]) OnSuccess(fn func(T)) Result[T] {
	if r.err == nil {
		fn(r.value)
	}
	return r
}

// OnFailure calls fn with the error when r is a failure and returns r.
func (r Result[T]) OnFailure(fn func(error)) Result[T] {
	if r.err != nil {
		fn(r.err)
	}
	return r
}

// Map transforms a success value. fn is not called for failures.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if r.err != nil {
		return Failure[U](r.err)
	}
	return Success(fn(r.value))
}

// FlatMap chains another fallible step. fn is not called for failures.
func FlatMap[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.err != nil {
		return Failure[U](r.err)
	}
	return fn(r.value)
}

// MapErr transforms a failure error. fn is not called for successes.
func MapErr[T any](r Result[T], fn func(error) error) Result[T] {
	if r.err == nil {
		return r
	}
	return Failure[T](fn(r.err))
}
