package kernel

import "github.com/alexshamov/TypeTheory/internal/kernelerr"

// Apply rewrites t under the substitution sigma, per the rules of the
// substitution algebra. The only case that can fail is a bound-variable
// substitution whose domain-type consistency check does not hold; that
// check is skipped entirely when k.Config.UnsafeMode is set, trusting
// the caller to have guaranteed it by construction.
func Apply(k *Kernel, sigma Subst, t Term) (Term, error) {
	switch n := t.(type) {
	case *Univ:
		return n, nil

	case *GRef:
		return n, nil

	case *BVar:
		if n.K <= sigma.Len() {
			repl, err := sigma.At(n.K)
			if err != nil {
				return nil, err
			}
			if !k.Config.UnsafeMode {
				if err := checkSubstConsistency(k, sigma, n, repl); err != nil {
					return nil, err
				}
			}
			return repl, nil
		}
		newT, err := Apply(k, sigma, n.TypeT)
		if err != nil {
			return nil, err
		}
		return NewBVar(n.NameHint, newT, n.K-sigma.Len()+sigma.Shift()), nil

	case *App:
		f2, err := Apply(k, sigma, n.Fn)
		if err != nil {
			return nil, err
		}
		a2, err := Apply(k, sigma, n.Arg)
		if err != nil {
			return nil, err
		}
		return NewApp(f2, a2), nil

	case *Pi:
		return applyBinder(k, sigma, n.NameHint, n.T, n.B, func(name string, t, b Term) Term { return NewPi(name, t, b) })

	case *Lam:
		return applyBinder(k, sigma, n.NameHint, n.T, n.B, func(name string, t, b Term) Term { return NewLam(name, t, b) })

	case *Susp:
		return NewSusp(n.T, Compose(sigma, n.Sigma)), nil
	}
	panic("kernel: unreachable term variant in Apply")
}

// checkSubstConsistency is the substitution-time domain check:
// normalize(apply(sigma, T)) must equal normalize(typeof(repl)), else
// TypeMismatch.
func checkSubstConsistency(k *Kernel, sigma Subst, v *BVar, repl Term) error {
	appliedT, err := Apply(k, sigma, v.TypeT)
	if err != nil {
		return err
	}
	normAppliedT, err := k.Normalize(appliedT)
	if err != nil {
		return err
	}
	replType, err := k.TypeOf(repl)
	if err != nil {
		return err
	}
	normReplType, err := k.Normalize(replType)
	if err != nil {
		return err
	}
	if !Identical(normAppliedT, normReplType) {
		return kernelerr.TypeMismatch(repl, normReplType, normAppliedT)
	}
	return nil
}

// applyBinder implements apply(sigma, Pi/Lam(name, T, B)): the domain
// type is rewritten directly by sigma, while the body is rewritten by
// sigma' = lift(sigma) . BVar(name, apply(lift(sigma), T), 1).
func applyBinder(k *Kernel, sigma Subst, name string, t, b Term, ctor func(string, Term, Term) Term) (Term, error) {
	liftedSigma := lift(sigma)
	freshType, err := Apply(k, liftedSigma, t)
	if err != nil {
		return nil, err
	}
	sigmaPrime := Extend(liftedSigma, NewBVar(name, freshType, 1))

	newT, err := Apply(k, sigma, t)
	if err != nil {
		return nil, err
	}
	newB, err := Apply(k, sigmaPrime, b)
	if err != nil {
		return nil, err
	}
	return ctor(name, newT, newB), nil
}
