package parsec

import "fmt"

// Step is one element of a Sequence.
type Step struct {
	name     string
	captured bool
	run      func(Input) Result[any]
}

// Capture is a step whose value is stored under name.
func Capture[T any](name string, rule Rule[T]) Step {
	return Step{name: name, captured: true, run: eraseRule(rule)}
}

// Skip is a step that must match but whose value is discarded.
func Skip[T any](rule Rule[T]) Step {
	return Step{run: eraseRule(rule)}
}

// Cut commits the sequence: once passed, later failures become errors. It
// consumes nothing and yields a StatusCut result.
func Cut() Step {
	return Step{run: func(input Input) Result[any] { return CutResult[any](input) }}
}

func eraseRule[T any](rule Rule[T]) func(Input) Result[any] {
	return func(input Input) Result[any] {
		return MapResult(rule(input), func(v T, _ Range) any { return v })
	}
}

// Values holds the captured values of a sequence.
type Values struct {
	byName map[string]any
	order  []any
}

func (v *Values) add(name string, value any) {
	if v.byName == nil {
		v.byName = make(map[string]any)
	}
	if _, exists := v.byName[name]; exists {
		panic(fmt.Sprintf("parsec: cannot add second value for capture %q", name))
	}
	v.byName[name] = value
	v.order = append(v.order, value)
}

// Len returns the number of captured values.
func (v *Values) Len() int { return len(v.order) }

// Get returns the value captured under name. It panics when the capture is
// missing or has a different type, both of which are grammar bugs.
func Get[T any](v *Values, name string) T {
	raw, ok := v.byName[name]
	if !ok {
		panic(fmt.Sprintf("parsec: no value for capture %q", name))
	}
	if raw == nil {
		var zero T
		return zero
	}
	return raw.(T)
}

// Sequence matches its steps in order and yields the captured values.
func Sequence(steps ...Step) Rule[*Values] {
	return func(input Input) Result[*Values] {
		values := &Values{}
		remaining := input
		hasCut := false
		for _, step := range steps {
			sub := step.run(remaining)
			if sub.IsCut() {
				hasCut = true
			}
			switch {
			case sub.IsSuccess():
				if step.captured {
					values.add(step.name, sub.Value())
				}
				remaining = sub.Remaining()
			case hasCut:
				return Fatal[*Values](sub.Errors(), sub.Remaining())
			default:
				return MapResult(sub, func(any, Range) *Values { return nil })
			}
		}
		return Success(values, remaining, input.To(remaining))
	}
}

// Extract is a sequence that yields the value captured under name.
func Extract[T any](name string, steps ...Step) Rule[T] {
	return Then(Sequence(steps...), func(v *Values) T { return Get[T](v, name) })
}
