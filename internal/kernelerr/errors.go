// Package kernelerr provides the kernel's closed error taxonomy.
//
// Every failure the kernel can produce is one of a small fixed set of
// kinds (UnknownVariable, VariableExists, TypeExpected, ProductExpected,
// TypeMismatch, Recursion, Parsing). Each is reported through a
// structured Report wrapped in an error-implementing Error, so a caller
// can either print err.Error() for a one-line diagnostic or use
// AsReport to recover the structured fields for a richer UI.
package kernelerr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies which of the closed set of kernel failures occurred.
type Kind string

const (
	UnknownVariableKind Kind = "UnknownVariable"
	VariableExistsKind  Kind = "VariableExists"
	TypeExpectedKind    Kind = "TypeExpected"
	ProductExpectedKind Kind = "ProductExpected"
	TypeMismatchKind    Kind = "TypeMismatch"
	RecursionKind       Kind = "Recursion"
	ParsingKind         Kind = "Parsing"
)

// Report is the structured description of a kernel failure: enough
// context to render a single-line diagnostic (the offending term, the
// discovered type, the expected shape) without re-deriving it.
type Report struct {
	Kind    Kind           `json:"kind"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Error wraps a Report as a standard Go error so it survives errors.As
// unwrapping through arbitrary call chains.
type Error struct {
	Rep *Report
}

func (e *Error) Error() string {
	if e.Rep == nil {
		return "unknown kernel error"
	}
	return string(e.Rep.Kind) + ": " + e.Rep.Message
}

// AsReport recovers the structured Report from an error chain, if any.
func AsReport(err error) (*Report, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Rep, true
	}
	return nil, false
}

// ToJSON renders a Report deterministically for tooling that wants the
// structured form rather than the one-line message.
func (r *Report) ToJSON() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func wrap(kind Kind, phase, msg string, data map[string]any) *Error {
	return &Error{Rep: &Report{Kind: kind, Phase: phase, Message: msg, Data: data}}
}

// UnknownVariable reports a GRef pointing at no declaration.
func UnknownVariable(name string) *Error {
	return wrap(UnknownVariableKind, "kernel", "unknown variable: "+name, map[string]any{"name": name})
}

// VariableExists reports an attempted redeclaration of an environment name.
func VariableExists(name string) *Error {
	return wrap(VariableExistsKind, "kernel", "variable exists: "+name, map[string]any{"name": name})
}

// TypeExpected reports a term required to be a universe that was not.
func TypeExpected(term fmt.Stringer) *Error {
	return wrap(TypeExpectedKind, "kernel", "type expected: "+term.String(), map[string]any{"term": term.String()})
}

// ProductExpected reports a term required to be a Pi that was not.
func ProductExpected(term fmt.Stringer) *Error {
	return wrap(ProductExpectedKind, "kernel", "product expected: "+term.String(), map[string]any{"term": term.String()})
}

// TypeMismatch reports a failed substitution-time consistency check.
func TypeMismatch(term, actual, expected fmt.Stringer) *Error {
	msg := fmt.Sprintf("type mismatch: %s : %s, expected %s", term.String(), actual.String(), expected.String())
	return wrap(TypeMismatchKind, "kernel", msg, map[string]any{
		"term":     term.String(),
		"actual":   actual.String(),
		"expected": expected.String(),
	})
}

// Recursion reports that reduction did not terminate within the
// configured bound.
func Recursion(term fmt.Stringer) *Error {
	return wrap(RecursionKind, "kernel", "recursion limit exceeded at: "+term.String(), map[string]any{"term": term.String()})
}

// Parsing reports a syntax error raised by the lexer/parser, never by
// the kernel itself.
func Parsing(token string) *Error {
	return wrap(ParsingKind, "parser", "parse error at token: "+token, map[string]any{"token": token})
}
