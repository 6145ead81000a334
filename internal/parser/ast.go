package parser

import "github.com/alexshamov/TypeTheory/internal/kernel"

// boundVar is one entry of the name-resolution scope: a binder's name
// and its domain type as a kernel term built in the binder's own
// (enclosing) context, before the binder itself was pushed.
type boundVar struct {
	name string
	typ  kernel.Term
}

// scope is the stack of binders enclosing the expression currently
// being translated, innermost last. A variable found idx slots from
// the top (1-based) becomes a BVar at de Bruijn index idx; its stored
// domain type was built just outside its own binder, so it needs
// shifting by idx (the binder itself plus the idx-1 binders opened
// since) to read correctly at this occurrence.
type scope []boundVar

func (s scope) resolve(name string) (boundVar, int, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].name == name {
			return s[i], len(s) - i, true
		}
	}
	return boundVar{}, 0, false
}

// expr is the surface syntax tree, with named variables rather than de
// Bruijn indices. translate walks it against a scope to produce a
// kernel.Term.
type expr interface {
	translate(k *kernel.Kernel, sc scope) (kernel.Term, error)
}

type eVar struct {
	name string
}

func (e *eVar) translate(k *kernel.Kernel, sc scope) (kernel.Term, error) {
	if bv, idx, ok := sc.resolve(e.name); ok {
		shifted, err := kernel.Apply(k, kernel.ShiftBy(idx), bv.typ)
		if err != nil {
			return nil, err
		}
		return kernel.NewBVar(e.name, shifted, idx), nil
	}
	return kernel.NewGRef(e.name), nil
}

type eUniv struct {
	n int
}

func (e *eUniv) translate(*kernel.Kernel, scope) (kernel.Term, error) {
	return kernel.NewUniv(e.n), nil
}

type eApp struct {
	fn, arg expr
}

func (e *eApp) translate(k *kernel.Kernel, sc scope) (kernel.Term, error) {
	fn, err := e.fn.translate(k, sc)
	if err != nil {
		return nil, err
	}
	arg, err := e.arg.translate(k, sc)
	if err != nil {
		return nil, err
	}
	return kernel.NewApp(fn, arg), nil
}

// eAbs is shared by the product and lambda surface forms: a binder
// (name, domain type) over a body, built either as Pi or Lam.
type eAbs struct {
	name string
	typ  expr
	body expr
	pi   bool // Pi if true, Lam otherwise
}

func (e *eAbs) translate(k *kernel.Kernel, sc scope) (kernel.Term, error) {
	t, err := e.typ.translate(k, sc)
	if err != nil {
		return nil, err
	}
	inner := make(scope, len(sc)+1)
	copy(inner, sc)
	inner[len(sc)] = boundVar{name: e.name, typ: t}

	b, err := e.body.translate(k, inner)
	if err != nil {
		return nil, err
	}
	if e.pi {
		return kernel.NewPi(e.name, t, b), nil
	}
	return kernel.NewLam(e.name, t, b), nil
}

// translate turns a surface expression into a kernel term against an
// empty (toplevel) scope.
func translate(k *kernel.Kernel, e expr) (kernel.Term, error) {
	return e.translate(k, nil)
}
