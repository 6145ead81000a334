package kernel

import (
	"sync"

	"github.com/alexshamov/TypeTheory/internal/kernelerr"
)

// Decl is a global environment entry: a Parameter carries only a type
// (Body is nil, an opaque constant); a Definition additionally carries
// a body with the invariant body : Type.
type Decl struct {
	Name string
	Type Term
	Body Term // nil for a Parameter
}

// IsParameter reports whether this declaration has no body.
func (d *Decl) IsParameter() bool { return d.Body == nil }

// Env is the append-only global environment: a named mapping from
// identifiers to declarations. Re-declaring an existing name fails;
// nothing else can remove or replace an entry.
type Env struct {
	mu    sync.Mutex
	decls map[string]*Decl
	order []string
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{decls: make(map[string]*Decl)}
}

// Lookup returns the declaration bound to name, or UnknownVariable.
func (e *Env) Lookup(name string) (*Decl, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, ok := e.decls[name]
	if !ok {
		return nil, kernelerr.UnknownVariable(name)
	}
	return d, nil
}

// Has reports whether name is already bound.
func (e *Env) Has(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.decls[name]
	return ok
}

// Names returns the bound identifiers in declaration order.
func (e *Env) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Env) insert(d *Decl) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.decls[d.Name]; exists {
		return kernelerr.VariableExists(d.Name)
	}
	e.decls[d.Name] = d
	e.order = append(e.order, d.Name)
	return nil
}
