// Package result carries a value together with the warnings and recoverable
// errors produced while computing it.
//
// Conversion never stops at the first problem: a missing style, an unknown
// element or a broken image degrades the output and is reported as a Message
// alongside the value.
package result

import "fmt"

// MessageType classifies a Message.
type MessageType string

const (
	// TypeWarning marks degraded but usable output.
	TypeWarning MessageType = "warning"
	// TypeError marks a sub-tree that could not be produced.
	TypeError MessageType = "error"
)

// Message is a single warning or error attached to a Result.
type Message struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
	// Err is the underlying error for TypeError messages.
	Err error `json:"-"`
}

// String returns the message formatted as "type: message".
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Type, m.Message)
}

// Warning creates a warning message.
func Warning(message string) Message {
	return Message{Type: TypeWarning, Message: message}
}

// Warningf creates a warning message from a format string.
func Warningf(format string, args ...any) Message {
	return Warning(fmt.Sprintf(format, args...))
}

// Error creates an error message from err.
func Error(err error) Message {
	return Message{Type: TypeError, Message: err.Error(), Err: err}
}

// Result pairs a value with the messages produced while computing it.
type Result[T any] struct {
	Value    T
	Messages []Message
}

// New returns a Result holding value and messages.
func New[T any](value T, messages ...Message) Result[T] {
	return Result[T]{Value: value, Messages: CombineMessages(messages)}
}

// Success returns a Result with no messages.
func Success[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Warnings returns only the warning messages of the result.
func (r Result[T]) Warnings() []Message {
	return Warnings(r.Messages)
}

// Errors returns only the error messages of the result.
func (r Result[T]) Errors() []Message {
	return Errors(r.Messages)
}

// Map transforms the value of r and keeps its messages.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	return Result[U]{Value: f(r.Value), Messages: r.Messages}
}

// FlatMap sequences r with f. The messages of both results are merged.
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	next := f(r.Value)
	return Result[U]{Value: next.Value, Messages: CombineMessages(r.Messages, next.Messages)}
}

// Combine concatenates the values of results and merges their messages.
func Combine[T any](results []Result[[]T]) Result[[]T] {
	var values []T
	lists := make([][]Message, 0, len(results))
	for _, r := range results {
		values = append(values, r.Value...)
		lists = append(lists, r.Messages)
	}
	return Result[[]T]{Value: values, Messages: CombineMessages(lists...)}
}

type messageKey struct {
	typ     MessageType
	message string
}

// CombineMessages merges message lists, keeping the first occurrence of each
// (type, message) pair in order.
func CombineMessages(lists ...[]Message) []Message {
	var out []Message
	seen := make(map[messageKey]bool)
	for _, list := range lists {
		for _, m := range list {
			key := messageKey{m.Type, m.Message}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
	}
	return out
}

// Warnings filters msgs down to warnings.
func Warnings(msgs []Message) []Message {
	return filter(msgs, TypeWarning)
}

// Errors filters msgs down to errors.
func Errors(msgs []Message) []Message {
	return filter(msgs, TypeError)
}

func filter(msgs []Message, t MessageType) []Message {
	var out []Message
	for _, m := range msgs {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}
