package parsec

import "sync"

// Rule parses a prefix of its input.
type Rule[T any] func(Input) Result[T]

// Parse applies rule to tokens.
func Parse[T any](rule Rule[T], tokens []Token) Result[T] {
	return rule(NewInput(tokens))
}

// TokenWithValue matches a token with the given name and value.
func TokenWithValue(name, value string) Rule[string] {
	return tokenRule(name, value, true)
}

// TokenOfType matches any token with the given name and yields its value.
func TokenOfType(name string) Rule[string] {
	return tokenRule(name, "", false)
}

func tokenRule(name, value string, matchValue bool) Rule[string] {
	expected := describeToken(name, value)
	return func(input Input) Result[string] {
		tok, ok := input.Head()
		if ok && tok.Name == name && (!matchValue || tok.Value == value) {
			return Success(tok.Value, input.Tail(), tok.Source)
		}
		return mismatch[string](input, expected)
	}
}

// mismatch is a failure at the head of input.
func mismatch[T any](input Input, expected string) Result[T] {
	tok, ok := input.Head()
	if !ok {
		return Failure[T]([]Error{{Expected: expected, Actual: "end of tokens"}}, input)
	}
	loc := tok.Source
	return Failure[T]([]Error{{Expected: expected, Actual: tok.describe(), Location: &loc}}, input)
}

// Then maps the value of a successful match.
func Then[T, U any](rule Rule[T], f func(T) U) Rule[U] {
	return func(input Input) Result[U] {
		return MapResult(rule(input), func(v T, _ Range) U { return f(v) })
	}
}

// ThenWithSource maps the value of a successful match with its source range.
func ThenWithSource[T, U any](rule Rule[T], f func(T, Range) U) Rule[U] {
	return func(input Input) Result[U] {
		return MapResult(rule(input), f)
	}
}

// Constant matches rule and yields value.
func Constant[T, U any](rule Rule[T], value U) Rule[U] {
	return Then(rule, func(T) U { return value })
}

// FirstOf returns the first alternative that succeeds or errors. When all
// fail, the failure expects name.
func FirstOf[T any](name string, rules ...Rule[T]) Rule[T] {
	return func(input Input) Result[T] {
		for _, rule := range rules {
			res := rule(input)
			if res.IsSuccess() || res.IsError() {
				return res
			}
		}
		return mismatch[T](input, name)
	}
}

// Optional matches rule or nothing. Errors are propagated.
func Optional[T any](rule Rule[T]) Rule[Option[T]] {
	return func(input Input) Result[Option[T]] {
		res := rule(input)
		switch {
		case res.IsSuccess():
			return MapResult(res, func(v T, _ Range) Option[T] { return Some(v) })
		case res.IsFailure():
			return Success(None[T](), input, Range{})
		default:
			return MapResult(res, func(T, Range) Option[T] { return None[T]() })
		}
	}
}

// ZeroOrMore matches rule repeatedly. An error stops the repetition and is
// returned. A match that consumes nothing ends the repetition.
func ZeroOrMore[T any](rule Rule[T]) Rule[[]T] {
	return func(input Input) Result[[]T] {
		var values []T
		for {
			res := rule(input)
			if res.IsError() {
				return Fatal[[]T](res.Errors(), res.Remaining())
			}
			if !res.IsSuccess() {
				return Success(values, input, Range{})
			}
			values = append(values, res.Value())
			if res.Remaining().index == input.index {
				return Success(values, input, Range{})
			}
			input = res.Remaining()
		}
	}
}

// OneOrMore matches rule at least once.
func OneOrMore[T any](rule Rule[T]) Rule[[]T] {
	return repeatedWithSeparator(rule, noOp, true)
}

// ZeroOrMoreWithSeparator matches rule repeatedly with separator between
// consecutive matches.
func ZeroOrMoreWithSeparator[T, S any](rule Rule[T], separator Rule[S]) Rule[[]T] {
	return repeatedWithSeparator(rule, separator, false)
}

// OneOrMoreWithSeparator is ZeroOrMoreWithSeparator requiring a first match.
func OneOrMoreWithSeparator[T, S any](rule Rule[T], separator Rule[S]) Rule[[]T] {
	return repeatedWithSeparator(rule, separator, true)
}

var noOp Rule[struct{}] = func(input Input) Result[struct{}] {
	return Success(struct{}{}, input, Range{})
}

func repeatedWithSeparator[T, S any](rule Rule[T], separator Rule[S], oneOrMore bool) Rule[[]T] {
	return func(input Input) Result[[]T] {
		first := rule(input)
		if !first.IsSuccess() {
			if oneOrMore || first.IsError() {
				return MapResult(first, func(T, Range) []T { return nil })
			}
			return Success([]T(nil), input, Range{})
		}

		values := []T{first.Value()}
		remaining := first.Remaining()
		for {
			sep := separator(remaining)
			if sep.IsError() {
				return Fatal[[]T](sep.Errors(), sep.Remaining())
			}
			if !sep.IsSuccess() {
				break
			}
			next := rule(sep.Remaining())
			if next.IsError() {
				return Fatal[[]T](next.Errors(), next.Remaining())
			}
			if !next.IsSuccess() {
				break
			}
			values = append(values, next.Value())
			remaining = next.Remaining()
		}
		return Success(values, remaining, input.To(remaining))
	}
}

// Infix is the right-hand side of a left-associative operator: it yields a
// function combining the value so far with what it matched.
type Infix[T any] = Rule[func(left T, source Range) T]

// NewInfix builds an Infix from a rule and a combining function.
func NewInfix[T, R any](rule Rule[R], combine func(left T, right R, source Range) T) Infix[T] {
	return Then(rule, func(right R) func(T, Range) T {
		return func(left T, source Range) T { return combine(left, right, source) }
	})
}

// LeftAssociative matches left followed by any number of infixes, folding
// from the left.
func LeftAssociative[T any](left Rule[T], infixes ...Infix[T]) Rule[T] {
	repeated := FirstOf("rules", infixes...)
	return func(input Input) Result[T] {
		leftResult := left(input)
		if !leftResult.IsSuccess() {
			return leftResult
		}
		for {
			next := repeated(leftResult.Remaining())
			if next.IsError() {
				return Fatal[T](next.Errors(), next.Remaining())
			}
			if !next.IsSuccess() {
				return leftResult
			}
			source := input.To(next.Remaining())
			leftResult = Success(next.Value()(leftResult.Value(), source), next.Remaining(), source)
		}
	}
}

// NonConsuming matches rule without advancing the input.
func NonConsuming[T any](rule Rule[T]) Rule[T] {
	return func(input Input) Result[T] {
		return rule(input).WithRemaining(input)
	}
}

// Lazy defers building a rule until its first use, allowing recursive
// grammars. It is safe for concurrent use.
func Lazy[T any](build func() Rule[T]) Rule[T] {
	var once sync.Once
	var rule Rule[T]
	return func(input Input) Result[T] {
		once.Do(func() { rule = build() })
		return rule(input)
	}
}
