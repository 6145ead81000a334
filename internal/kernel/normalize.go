package kernel

import "github.com/alexshamov/TypeTheory/internal/kernelerr"

// enter/leave track recursion depth across the whole call tree rooted
// at a public Kernel operation (TypeOf, Normalize, ...), including
// calls that cross between typeof and normalize internally, so a
// genuinely non-terminating term is bounded once rather than reset at
// every internal hop. The kernel is single-threaded cooperative, so a
// bare counter on Kernel is sufficient.
// enter always increments, even when it fails; every caller pairs it
// with exactly one leave on both paths, so the counter unwinds to zero
// no matter where a Recursion error surfaces.
func (k *Kernel) enter(t Term) error {
	k.depth++
	if k.depth > k.Config.recursionLimit() {
		return kernelerr.Recursion(t)
	}
	return nil
}

func (k *Kernel) leave() { k.depth-- }

// latestNF/latestWHNF chase a term's progress chain with path
// compression, without performing any new reduction work. A pointer
// back to the node itself (an already-normal term) terminates the
// chase; chasing it would recurse forever.
func latestNF(t Term) Term {
	nd := t.cache()
	nd.mu.Lock()
	cur := nd.curNF
	nd.mu.Unlock()
	if cur == nil || cur == t {
		return t
	}
	l := latestNF(cur)
	nd.mu.Lock()
	nd.curNF = l
	nd.mu.Unlock()
	return l
}

func latestWHNF(t Term) Term {
	nd := t.cache()
	nd.mu.Lock()
	cur := nd.curWHNF
	nd.mu.Unlock()
	if cur == nil || cur == t {
		return t
	}
	l := latestWHNF(cur)
	nd.mu.Lock()
	nd.curWHNF = l
	nd.mu.Unlock()
	return l
}

// Normalize computes the eager normal form of t, memoizing progress on
// t's own node so repeated queries over shared subterms are cheap.
func (k *Kernel) Normalize(t Term) (Term, error) {
	if err := k.enter(t); err != nil {
		k.leave()
		return nil, err
	}
	defer k.leave()

	reach := latestNF(t)
	if reach != t {
		return k.Normalize(reach)
	}

	result, err := k.nfStep(t)
	if err != nil {
		return nil, err
	}
	if result != t {
		nd := t.cache()
		nd.mu.Lock()
		nd.curNF = result
		nd.mu.Unlock()
	}
	return result, nil
}

func (k *Kernel) nfStep(t Term) (Term, error) {
	switch n := t.(type) {
	case *Univ:
		return n, nil

	case *GRef:
		decl, err := k.Env.Lookup(n.Name)
		if err != nil {
			return nil, err
		}
		if decl.Body == nil {
			return n, nil
		}
		return k.Normalize(decl.Body)

	case *BVar:
		return n, nil

	case *Pi:
		nt, err := k.Normalize(n.T)
		if err != nil {
			return nil, err
		}
		nb, err := k.Normalize(n.B)
		if err != nil {
			return nil, err
		}
		return NewPi(n.NameHint, nt, nb), nil

	case *Lam:
		nt, err := k.Normalize(n.T)
		if err != nil {
			return nil, err
		}
		nb, err := k.Normalize(n.B)
		if err != nil {
			return nil, err
		}
		return NewLam(n.NameHint, nt, nb), nil

	case *App:
		fw, err := k.WHNF(n.Fn)
		if err != nil {
			return nil, err
		}
		if lam, ok := fw.(*Lam); ok {
			sub := NormalizeSubst(k, Extend(Identity, n.Arg))
			applied, err := Apply(k, sub, lam.B)
			if err != nil {
				return nil, err
			}
			return k.Normalize(applied)
		}
		nf1, err := k.Normalize(fw)
		if err != nil {
			return nil, err
		}
		nf2, err := k.Normalize(n.Arg)
		if err != nil {
			return nil, err
		}
		return NewApp(nf1, nf2), nil

	case *Susp:
		applied, err := Apply(k, n.Sigma, n.T)
		if err != nil {
			return nil, err
		}
		return k.Normalize(applied)
	}
	panic("kernel: unreachable term variant in nfStep")
}

// WHNF computes the weak head normal form of t: the topmost constructor
// is irreducible (not Susp, not App(Lam,_), not GRef to a definition).
func (k *Kernel) WHNF(t Term) (Term, error) {
	if err := k.enter(t); err != nil {
		k.leave()
		return nil, err
	}
	defer k.leave()

	reach := latestWHNF(t)
	if reach != t {
		return k.WHNF(reach)
	}

	result, err := k.whnfStep(t)
	if err != nil {
		return nil, err
	}
	if result != t {
		nd := t.cache()
		nd.mu.Lock()
		nd.curWHNF = result
		nd.mu.Unlock()
	}
	return result, nil
}

func (k *Kernel) whnfStep(t Term) (Term, error) {
	switch n := t.(type) {
	case *Univ, *BVar, *Pi, *Lam:
		return n, nil

	case *GRef:
		decl, err := k.Env.Lookup(n.Name)
		if err != nil {
			return nil, err
		}
		if decl.Body == nil {
			return n, nil
		}
		return k.WHNF(decl.Body)

	case *App:
		fw, err := k.WHNF(n.Fn)
		if err != nil {
			return nil, err
		}
		if lam, ok := fw.(*Lam); ok {
			applied, err := Apply(k, Extend(Identity, n.Arg), lam.B)
			if err != nil {
				return nil, err
			}
			return k.WHNF(applied)
		}
		return NewApp(fw, n.Arg), nil

	case *Susp:
		applied, err := Apply(k, n.Sigma, n.T)
		if err != nil {
			return nil, err
		}
		return k.WHNF(applied)
	}
	panic("kernel: unreachable term variant in whnfStep")
}
