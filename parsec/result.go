package parsec

import "fmt"

// Status is the outcome of applying a rule.
type Status int

const (
	// StatusSuccess means the rule matched.
	StatusSuccess Status = iota
	// StatusFailure means the rule did not match; alternatives may be tried.
	StatusFailure
	// StatusError means the rule committed and then failed.
	StatusError
	// StatusCut is produced by a Cut step.
	StatusCut
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusError:
		return "error"
	case StatusCut:
		return "cut"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Error describes why a rule did not match. Location is nil when the input
// was exhausted.
type Error struct {
	Expected string
	Actual   string
	Location *Range
}

// Describe returns the error with its location.
func (e Error) Describe() string {
	loc := ""
	if e.Location != nil {
		loc = e.Location.Describe() + ":\n"
	}
	return loc + "Expected " + e.Expected + "\nbut got " + e.Actual
}

// LineNumber returns the line of the error, or 0 without a location.
func (e Error) LineNumber() int {
	if e.Location == nil {
		return 0
	}
	return e.Location.LineNumber()
}

// CharacterNumber returns the column of the error, or 0 without a location.
func (e Error) CharacterNumber() int {
	if e.Location == nil {
		return 0
	}
	return e.Location.CharacterNumber()
}

// Result is the outcome of a rule.
type Result[T any] struct {
	status    Status
	value     T
	remaining Input
	source    Range
	errors    []Error
}

// Success returns a successful result.
func Success[T any](value T, remaining Input, source Range) Result[T] {
	return Result[T]{status: StatusSuccess, value: value, remaining: remaining, source: source}
}

// Failure returns a result that allows backtracking. errors must not be empty.
func Failure[T any](errors []Error, remaining Input) Result[T] {
	mustHaveErrors(errors)
	return Result[T]{status: StatusFailure, remaining: remaining, errors: errors}
}

// Fatal returns a committed failure. errors must not be empty.
func Fatal[T any](errors []Error, remaining Input) Result[T] {
	mustHaveErrors(errors)
	return Result[T]{status: StatusError, remaining: remaining, errors: errors}
}

// CutResult returns the result of a Cut step.
func CutResult[T any](remaining Input) Result[T] {
	return Result[T]{status: StatusCut, remaining: remaining}
}

func mustHaveErrors(errors []Error) {
	if len(errors) == 0 {
		panic("parsec: failure must have errors")
	}
}

// Status returns the status of the result.
func (r Result[T]) Status() Status { return r.status }

// IsSuccess reports whether the result is a success or a cut.
func (r Result[T]) IsSuccess() bool { return r.status == StatusSuccess || r.status == StatusCut }

// IsFailure reports whether the rule did not match.
func (r Result[T]) IsFailure() bool { return r.status == StatusFailure }

// IsError reports whether the rule committed and failed.
func (r Result[T]) IsError() bool { return r.status == StatusError }

// IsCut reports whether the result came from a Cut step.
func (r Result[T]) IsCut() bool { return r.status == StatusCut }

// Value returns the matched value. It is the zero value unless the status
// is StatusSuccess.
func (r Result[T]) Value() T { return r.value }

// Remaining returns the input after the match.
func (r Result[T]) Remaining() Input { return r.remaining }

// Source returns the range of the match.
func (r Result[T]) Source() Range { return r.source }

// Errors returns the errors of an unsuccessful result.
func (r Result[T]) Errors() []Error { return r.errors }

// WithRemaining returns r with its remaining input replaced.
func (r Result[T]) WithRemaining(remaining Input) Result[T] {
	r.remaining = remaining
	return r
}

// MapResult applies f to the value of a successful result. Other statuses
// carry their errors and remaining input over unchanged.
func MapResult[T, U any](r Result[T], f func(T, Range) U) Result[U] {
	out := Result[U]{status: r.status, remaining: r.remaining, source: r.source, errors: r.errors}
	if r.status == StatusSuccess {
		out.value = f(r.value, r.source)
	}
	return out
}

// Option is an optional value produced by Optional.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns a present option.
func Some[T any](value T) Option[T] { return Option[T]{value: value, ok: true} }

// None returns an absent option.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.value, o.ok }

// IsSome reports whether the value is present.
func (o Option[T]) IsSome() bool { return o.ok }

// ValueOrElse returns the value, or def when absent.
func (o Option[T]) ValueOrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}
