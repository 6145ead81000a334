package parser

import (
	"fmt"
	"strings"

	"github.com/alexshamov/TypeTheory/internal/kernel"
)

// Result is what a Statement's execution produces for the driver (REPL
// or batch runner) to display. Which fields are set depends on the
// statement: Quit for quit, Names (alongside a comma-joined Message)
// for context, and Message alone for the rest.
type Result struct {
	Message string
	Names   []string
	Quit    bool
}

// Statement is one parsed top-level form: a declaration, a query, or a
// REPL control command.
type Statement interface {
	Execute(k *kernel.Kernel) (Result, error)
}

// SParameter records id : T as an opaque Parameter.
type SParameter struct {
	Name string
	Typ  kernel.Term
}

func (s *SParameter) Execute(k *kernel.Kernel) (Result, error) {
	if _, err := k.Declare(s.Name, s.Typ); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("%s : %s", s.Name, s.Typ)}, nil
}

// SDefinition records id := body, with Type inferred.
type SDefinition struct {
	Name string
	Body kernel.Term
}

func (s *SDefinition) Execute(k *kernel.Kernel) (Result, error) {
	decl, err := k.Define(s.Name, s.Body)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("%s : %s", s.Name, decl.Type)}, nil
}

// STypedDefinition records id : T := body, with the ascribed type kept
// as-is (not verified against the body, per kernel.DefineTyped).
type STypedDefinition struct {
	Name string
	Typ  kernel.Term
	Body kernel.Term
}

func (s *STypedDefinition) Execute(k *kernel.Kernel) (Result, error) {
	decl, err := k.DefineTyped(s.Name, s.Typ, s.Body)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("%s : %s", s.Name, decl.Type)}, nil
}

// SCheck reports normalize(typeof(term)).
type SCheck struct {
	Term kernel.Term
}

func (s *SCheck) Execute(k *kernel.Kernel) (Result, error) {
	typ, err := k.Check(s.Term)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: typ.String()}, nil
}

// SEvaluate reports normalize(term).
type SEvaluate struct {
	Term kernel.Term
}

func (s *SEvaluate) Execute(k *kernel.Kernel) (Result, error) {
	val, err := k.Evaluate(s.Term)
	if err != nil {
		return Result{}, err
	}
	return Result{Message: val.String()}, nil
}

// SExpression is a bare expression typed at the prompt: it echoes the
// translated term without normalizing it, matching a REPL that lets you
// inspect what you just wrote before asking for its type or value.
type SExpression struct {
	Term kernel.Term
}

func (s *SExpression) Execute(*kernel.Kernel) (Result, error) {
	return Result{Message: s.Term.String()}, nil
}

// SContext lists the names bound in the global environment so far.
type SContext struct{}

func (s *SContext) Execute(k *kernel.Kernel) (Result, error) {
	names := k.Env.Names()
	return Result{Message: strings.Join(names, ", "), Names: names}, nil
}

// SQuit signals the driver to stop reading statements.
type SQuit struct{}

func (s *SQuit) Execute(*kernel.Kernel) (Result, error) {
	return Result{Quit: true}, nil
}

// SSilently runs another statement and suppresses its output.
type SSilently struct {
	Stat Statement
}

func (s *SSilently) Execute(k *kernel.Kernel) (Result, error) {
	if _, err := s.Stat.Execute(k); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}
