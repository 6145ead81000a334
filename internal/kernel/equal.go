package kernel

// Identical decides structural syntactic equality on the term variant,
// with alpha-equivalence handled for free by de Bruijn indices and
// binders compared by (T, B) ignoring NameHint.
func Identical(a, b Term) bool {
	switch x := a.(type) {
	case *Univ:
		y, ok := b.(*Univ)
		return ok && x.N == y.N
	case *GRef:
		y, ok := b.(*GRef)
		return ok && x.Name == y.Name
	case *BVar:
		y, ok := b.(*BVar)
		return ok && x.K == y.K
	case *Pi:
		y, ok := b.(*Pi)
		return ok && Identical(x.T, y.T) && Identical(x.B, y.B)
	case *Lam:
		y, ok := b.(*Lam)
		return ok && Identical(x.T, y.T) && Identical(x.B, y.B)
	case *App:
		y, ok := b.(*App)
		return ok && Identical(x.Fn, y.Fn) && Identical(x.Arg, y.Arg)
	case *Susp:
		y, ok := b.(*Susp)
		return ok && Identical(x.T, y.T) && identicalSubst(x.Sigma, y.Sigma)
	}
	return false
}

// identicalSubst compares two substitutions entry by entry. It is
// syntactic, like Identical itself: two representations of the same
// mapping (say, a composition and its materialized raw form) may
// compare unequal even though they rewrite every term identically.
// An entry that cannot be materialized counts as unequal.
func identicalSubst(a, b Subst) bool {
	if a.Shift() != b.Shift() || a.Len() != b.Len() {
		return false
	}
	for i := 1; i <= a.Len(); i++ {
		ta, err := a.At(i)
		if err != nil {
			return false
		}
		tb, err := b.At(i)
		if err != nil {
			return false
		}
		if !Identical(ta, tb) {
			return false
		}
	}
	return true
}

// Equal decides judgmental equality: equal(a, b) := identical(normalize(a), normalize(b)).
func (k *Kernel) Equal(a, b Term) (bool, error) {
	na, err := k.Normalize(a)
	if err != nil {
		return false, err
	}
	nb, err := k.Normalize(b)
	if err != nil {
		return false, err
	}
	return Identical(na, nb), nil
}
