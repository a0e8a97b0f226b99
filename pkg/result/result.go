// pkg/result/result.go
package result

import "fmt"

// Kind classifies an expected backend failure. Every kind maps to exactly one
// HTTP outcome at the router boundary.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidPayload     Kind = "invalid_payload"
	KindUnsupported        Kind = "unsupported"
	KindConflict           Kind = "conflict"
	KindBackendUnavailable Kind = "backend_unavailable"
	KindInternalDefect     Kind = "internal_defect"
)

// Failure is a declared, expected failure. Backends return these instead of
// raw errors so the router can translate them deterministically.
type Failure struct {
	Kind   Kind
	Detail string
}

func (f Failure) Error() string { return string(f.Kind) + ": " + f.Detail }

func NotFound(format string, args ...any) Failure {
	return Failure{Kind: KindNotFound, Detail: fmt.Sprintf(format, args...)}
}

func InvalidPayload(format string, args ...any) Failure {
	return Failure{Kind: KindInvalidPayload, Detail: fmt.Sprintf(format, args...)}
}

func Unsupported(format string, args ...any) Failure {
	return Failure{Kind: KindUnsupported, Detail: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) Failure {
	return Failure{Kind: KindConflict, Detail: fmt.Sprintf(format, args...)}
}

func BackendUnavailable(format string, args ...any) Failure {
	return Failure{Kind: KindBackendUnavailable, Detail: fmt.Sprintf(format, args...)}
}

// Result is a two-variant outcome: a value or a Failure. The zero value is an
// Ok carrying the zero value of T.
type Result[T any] struct {
	value   T
	failure Failure
	failed  bool
}

func Ok[T any](v T) Result[T] { return Result[T]{value: v} }

func Err[T any](f Failure) Result[T] { return Result[T]{failure: f, failed: true} }

// Wrap converts a plain error into a backend_unavailable failure, passing
// Failure values through unchanged. Nil errors produce Ok(v).
func Wrap[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	if f, ok := err.(Failure); ok {
		return Err[T](f)
	}
	return Err[T](Failure{Kind: KindBackendUnavailable, Detail: err.Error()})
}

func (r Result[T]) IsOk() bool { return !r.failed }

// Value returns the success value; valid only when IsOk.
func (r Result[T]) Value() T { return r.value }

// Failure returns the failure variant; valid only when !IsOk.
func (r Result[T]) Failure() Failure { return r.failure }

// Unpack yields the idiomatic (value, error) view of the result.
func (r Result[T]) Unpack() (T, error) {
	if r.failed {
		return r.value, r.failure
	}
	return r.value, nil
}
