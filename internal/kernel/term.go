// Package kernel is the dependently-typed lambda calculus core: term
// representation, the substitution algebra, the normalization engine,
// structural type inference, judgmental equality, and the append-only
// global environment.
package kernel

import (
	"fmt"
	"strconv"
	"sync"
)

// node carries the per-term state that is invisible to semantics: the
// monotone "current progress" pointers used to memoize normalization
// (one chain for eager normal form, one for weak head normal form) and
// the cached inferred type. A term forwards through these chains before
// doing any new work, so a repeated query resumes from the most advanced
// term reached so far rather than from the original.
type node struct {
	mu      sync.Mutex
	curNF   Term
	curWHNF Term
	typ     Term
}

func (n *node) cache() *node { return n }

// Term is the sealed set of term shapes: Univ, GRef, BVar, Pi, Lam, App,
// Susp. All concrete types embed *node for shared progress-cache fields
// and implement String() for diagnostics and display.
type Term interface {
	cache() *node
	fmt.Stringer
	isTerm()
}

// Univ is a universe at a fixed non-negative level.
type Univ struct {
	*node
	N int
}

// NewUniv builds Univ(n).
func NewUniv(n int) *Univ { return &Univ{node: &node{}, N: n} }

func (*Univ) isTerm() {}
func (u *Univ) String() string { return "type[" + strconv.Itoa(u.N) + "]" }

// GRef is a reference to a named global declaration, resolved against
// the environment at typeof/normalize time (not at construction), so
// that an unknown name surfaces UnknownVariable from the operation that
// actually needed it.
type GRef struct {
	*node
	Name string
}

// NewGRef builds GRef(id).
func NewGRef(name string) *GRef { return &GRef{node: &node{}, Name: name} }

func (*GRef) isTerm() {}
func (g *GRef) String() string { return g.Name }

// BVar is a bound variable at de Bruijn index K >= 1. TypeT is the
// variable's type as seen in the term's own context (already shifted by
// whatever substitutions produced this node). NameHint is display-only
// and irrelevant to equality.
type BVar struct {
	*node
	NameHint string
	TypeT    Term
	K        int
}

// NewBVar builds BVar(name_hint, T, k).
func NewBVar(nameHint string, typeT Term, k int) *BVar {
	return &BVar{node: &node{}, NameHint: nameHint, TypeT: typeT, K: k}
}

func (*BVar) isTerm() {}
func (v *BVar) String() string { return v.NameHint + "[" + strconv.Itoa(v.K) + "]" }

// Pi is the dependent product (x : T) -> B, B given in the context
// extended by one binding of type T.
type Pi struct {
	*node
	NameHint string
	T        Term
	B        Term
}

// NewPi builds Pi(name_hint, T, B).
func NewPi(nameHint string, t, b Term) *Pi { return &Pi{node: &node{}, NameHint: nameHint, T: t, B: b} }

func (*Pi) isTerm() {}
func (p *Pi) String() string { return render(p, nil, true) }

// Lam is the lambda (x : T) => B, same binding discipline as Pi.
type Lam struct {
	*node
	NameHint string
	T        Term
	B        Term
}

// NewLam builds Lam(name_hint, T, B).
func NewLam(nameHint string, t, b Term) *Lam { return &Lam{node: &node{}, NameHint: nameHint, T: t, B: b} }

func (*Lam) isTerm() {}
func (l *Lam) String() string { return render(l, nil, true) }

// App is function application.
type App struct {
	*node
	Fn  Term
	Arg Term
}

// NewApp builds App(f, a).
func NewApp(fn, arg Term) *App { return &App{node: &node{}, Fn: fn, Arg: arg} }

func (*App) isTerm() {}
func (a *App) String() string { return render(a, nil, true) }

// Susp is a term paired with a delayed substitution: Susp(t, sigma)
// semantically equals apply(sigma, t), computed only when forced.
type Susp struct {
	*node
	T     Term
	Sigma Subst
}

// NewSusp builds Susp(t, sigma).
func NewSusp(t Term, sigma Subst) *Susp { return &Susp{node: &node{}, T: t, Sigma: sigma} }

func (*Susp) isTerm() {}
func (s *Susp) String() string { return render(s, nil, true) }

// render renders t in the context of its enclosing binder names, ctx,
// innermost last. selfBracket controls how a BVar that resolves against
// ctx is displayed: true is the "value position" convention (App/Lam/Pi
// bodies), where a reference to the nearest enclosing binder prints with
// its de Bruijn index (name[k]) to mark it as the bound occurrence a
// substitution would replace, while a reference reaching past it to an
// outer binder prints by that binder's name alone, the same as any other
// already-named type. false is the "domain position" convention (a
// Pi/Lam's own T), where a resolvable reference always prints by name:
// a domain is read as a type expression built from already-known names,
// never as the bound occurrence itself.
func render(t Term, ctx []string, selfBracket bool) string {
	switch n := t.(type) {
	case *Univ:
		return n.String()
	case *GRef:
		return n.String()
	case *BVar:
		return renderBVar(n, ctx, selfBracket)
	case *Pi:
		return renderAbs("->", n.NameHint, n.T, n.B, ctx)
	case *Lam:
		return renderAbs("=>", n.NameHint, n.T, n.B, ctx)
	case *App:
		return "(" + render(n.Fn, ctx, true) + " " + render(n.Arg, ctx, true) + ")"
	case *Susp:
		return "(" + render(n.T, ctx, true) + " | " + substString(n.Sigma) + ")"
	default:
		return t.String()
	}
}

// renderBVar resolves v against ctx (innermost last). A resolvable
// reference to the nearest binder (K == 1) brackets only under
// selfBracket; any deeper, resolvable reference always prints bare by
// the resolved name. A reference past the end of ctx is free relative to
// whatever is being printed and falls back to the bracketed form, the
// same as a top-level BVar.String() call with no surrounding context.
func renderBVar(v *BVar, ctx []string, selfBracket bool) string {
	if v.K >= 1 && v.K <= len(ctx) {
		name := ctx[len(ctx)-v.K]
		if selfBracket && v.K == 1 {
			return name + "[" + strconv.Itoa(v.K) + "]"
		}
		return name
	}
	return v.NameHint + "[" + strconv.Itoa(v.K) + "]"
}

// renderAbs renders a binder. When the bound variable does not occur
// free in the body, the binder name is dropped and the term prints as a
// plain arrow/lambda over its domain, matching how a non-dependent
// product or constant function is conventionally displayed.
func renderAbs(arrow, name string, t, b Term, ctx []string) string {
	domainStr := render(t, ctx, false)
	bodyCtx := append(append([]string{}, ctx...), name)
	bodyStr := render(b, bodyCtx, true)
	if name != "" && occursBound(1, b) {
		return "((" + name + " : " + domainStr + ") " + arrow + " " + bodyStr + ")"
	}
	return "(" + domainStr + " " + arrow + " " + bodyStr + ")"
}

// occursBound reports whether a BVar with index depth occurs anywhere
// in t, accounting for intervening binders. It is a display-only
// approximation: a Susp (which should never survive into a fully
// normalized term) is conservatively treated as using its binder.
func occursBound(depth int, t Term) bool {
	switch n := t.(type) {
	case *Univ, *GRef:
		return false
	case *BVar:
		return n.K == depth
	case *Pi:
		return occursBound(depth, n.T) || occursBound(depth+1, n.B)
	case *Lam:
		return occursBound(depth, n.T) || occursBound(depth+1, n.B)
	case *App:
		return occursBound(depth, n.Fn) || occursBound(depth, n.Arg)
	default:
		return true
	}
}
