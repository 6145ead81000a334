package kernel

import "github.com/alexshamov/TypeTheory/internal/kernelerr"

// Config holds the kernel's tunable knobs. RecursionLimit bounds
// reduction depth; UnsafeMode disables the substitution-time
// domain-type consistency check, the kernel's principal performance
// knob. When UnsafeMode is set the kernel trusts its callers and skips
// the check entirely.
type Config struct {
	UnsafeMode     bool
	RecursionLimit int
}

const defaultRecursionLimit = 10000

func (c Config) recursionLimit() int {
	if c.RecursionLimit <= 0 {
		return defaultRecursionLimit
	}
	return c.RecursionLimit
}

// DefaultConfig is a safe, checked configuration.
func DefaultConfig() Config {
	return Config{UnsafeMode: false, RecursionLimit: defaultRecursionLimit}
}

// Kernel is the external interface the surrounding driver (parser,
// REPL, CLI) calls against: declare, define, define_typed, check,
// evaluate, identity, equal. It owns one global environment and is not
// safe for concurrent mutation; the scheduling model is
// single-threaded cooperative.
type Kernel struct {
	Env    *Env
	Config Config

	depth int
}

// New creates a kernel with an empty environment.
func New(cfg Config) *Kernel {
	return &Kernel{Env: NewEnv(), Config: cfg}
}

// Declare records a Parameter: id : T, an opaque constant of type T.
// Fails with VariableExists if id is already bound, or TypeExpected if
// T does not itself have a universe type.
func (k *Kernel) Declare(name string, t Term) (*Decl, error) {
	if k.Env.Has(name) {
		return nil, kernelerr.VariableExists(name)
	}
	typ, err := k.TypeOf(t)
	if err != nil {
		return nil, err
	}
	w, err := k.WHNF(typ)
	if err != nil {
		return nil, err
	}
	if _, ok := w.(*Univ); !ok {
		return nil, kernelerr.TypeExpected(t)
	}
	d := &Decl{Name: name, Type: t}
	if err := k.Env.insert(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Define records a Definition: id := body, with Type inferred as
// typeof(body).
func (k *Kernel) Define(name string, body Term) (*Decl, error) {
	if k.Env.Has(name) {
		return nil, kernelerr.VariableExists(name)
	}
	typ, err := k.TypeOf(body)
	if err != nil {
		return nil, err
	}
	d := &Decl{Name: name, Type: typ, Body: body}
	if err := k.Env.insert(d); err != nil {
		return nil, err
	}
	return d, nil
}

// DefineTyped records a Definition with an explicit ascribed type: id :
// T := body. It does NOT verify equal(typeof(body), T); the ascription
// is trusted as given. See DESIGN.md for why this stays unchecked.
func (k *Kernel) DefineTyped(name string, t, body Term) (*Decl, error) {
	if k.Env.Has(name) {
		return nil, kernelerr.VariableExists(name)
	}
	d := &Decl{Name: name, Type: t, Body: body}
	if err := k.Env.insert(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Check returns normalize(typeof(t)).
func (k *Kernel) Check(t Term) (Term, error) {
	typ, err := k.TypeOf(t)
	if err != nil {
		return nil, err
	}
	return k.Normalize(typ)
}

// Evaluate returns normalize(t).
func (k *Kernel) Evaluate(t Term) (Term, error) {
	return k.Normalize(t)
}

// Identity returns the identity substitution epsilon = {subs=[], shift=0}.
func (k *Kernel) Identity() Subst {
	return Identity
}
