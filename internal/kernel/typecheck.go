package kernel

import "github.com/alexshamov/TypeTheory/internal/kernelerr"

// TypeOf is the structural inference pass: it returns a term (the type)
// for any well-formed term. The result is cached on the term's own
// node once computed; the cache is only ever set, matching the
// monotone per-term progress contract.
func (k *Kernel) TypeOf(t Term) (Term, error) {
	if err := k.enter(t); err != nil {
		k.leave()
		return nil, err
	}
	defer k.leave()

	nd := t.cache()
	nd.mu.Lock()
	if nd.typ != nil {
		cached := nd.typ
		nd.mu.Unlock()
		return cached, nil
	}
	nd.mu.Unlock()

	result, err := k.typeOfStep(t)
	if err != nil {
		return nil, err
	}

	nd.mu.Lock()
	nd.typ = result
	nd.mu.Unlock()
	return result, nil
}

func (k *Kernel) typeOfStep(t Term) (Term, error) {
	switch n := t.(type) {
	case *Univ:
		return NewUniv(n.N + 1), nil

	case *GRef:
		decl, err := k.Env.Lookup(n.Name)
		if err != nil {
			return nil, err
		}
		return decl.Type, nil

	case *BVar:
		return n.TypeT, nil

	case *Pi:
		ta, err := k.TypeOf(n.T)
		if err != nil {
			return nil, err
		}
		wa, err := k.WHNF(ta)
		if err != nil {
			return nil, err
		}
		ua, ok := wa.(*Univ)
		if !ok {
			return nil, kernelerr.TypeExpected(n.T)
		}
		tb, err := k.TypeOf(n.B)
		if err != nil {
			return nil, err
		}
		wb, err := k.WHNF(tb)
		if err != nil {
			return nil, err
		}
		ub, ok := wb.(*Univ)
		if !ok {
			return nil, kernelerr.TypeExpected(n.B)
		}
		return NewUniv(max(ua.N, ub.N)), nil

	case *Lam:
		tb, err := k.TypeOf(n.B)
		if err != nil {
			return nil, err
		}
		return NewPi(n.NameHint, n.T, tb), nil

	case *App:
		tf, err := k.TypeOf(n.Fn)
		if err != nil {
			return nil, err
		}
		wf, err := k.WHNF(tf)
		if err != nil {
			return nil, err
		}
		pi, ok := wf.(*Pi)
		if !ok {
			return nil, kernelerr.ProductExpected(n.Fn)
		}
		return NewSusp(pi.B, Extend(Identity, n.Arg)), nil

	case *Susp:
		inner, err := k.TypeOf(n.T)
		if err != nil {
			return nil, err
		}
		return NewSusp(inner, n.Sigma), nil
	}
	panic("kernel: unreachable term variant in typeOfStep")
}
