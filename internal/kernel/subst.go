package kernel

import (
	"strconv"
	"sync"
)

// Subst is a first-class substitution: a finite ordered vector of
// replacement terms for de Bruijn indices 1..Len(), plus a shift
// applied to indices beyond that range. All variants (raw, composed,
// extended, normalized) satisfy this same contract; At(i) is only ever
// called for i in [1, Len()].
type Subst struct {
	impl substImpl
}

type substImpl interface {
	shift() int
	length() int
	at(i int) (Term, error)
}

func (s Subst) Shift() int { return s.impl.shift() }
func (s Subst) Len() int   { return s.impl.length() }
func (s Subst) At(i int) (Term, error) {
	if i < 1 || i > s.Len() {
		panic("kernel: substitution index out of range")
	}
	return s.impl.at(i)
}

func substString(s Subst) string {
	if s.impl == nil {
		return "<empty>"
	}
	out := ""
	for i := 1; i <= s.Len(); i++ {
		if i > 1 {
			out += ", "
		}
		t, err := s.At(i)
		if err != nil {
			out += "<error>"
			continue
		}
		out += t.String()
	}
	if out != "" {
		out += ", "
	}
	return out + "shift " + strconv.Itoa(s.Shift())
}

// --- Raw ---

type rawSubst struct {
	shft int
	subs []Term
}

func (r *rawSubst) shift() int  { return r.shft }
func (r *rawSubst) length() int { return len(r.subs) }
func (r *rawSubst) at(i int) (Term, error) {
	return r.subs[i-1], nil
}

// Identity is the empty substitution {subs=[], shift=0}.
var Identity = Subst{impl: &rawSubst{shft: 0, subs: nil}}

// ShiftBy builds the raw substitution that only shifts remaining
// indices by s and replaces nothing.
func ShiftBy(s int) Subst { return Subst{impl: &rawSubst{shft: s, subs: nil}} }

// shiftOne is shift1 from apply(σ, Pi/Lam)'s lift(σ) = shift1 ∘ σ.
var shiftOne = ShiftBy(1)

// --- Extension ---

type extSubst struct {
	head Term
	tail Subst
}

func (e *extSubst) shift() int  { return e.tail.Shift() }
func (e *extSubst) length() int { return e.tail.Len() + 1 }
func (e *extSubst) at(i int) (Term, error) {
	if i == 1 {
		return e.head, nil
	}
	return e.tail.At(i - 1)
}

// Extend builds sigma . t, prepending a new replacement for index 1.
func Extend(sigma Subst, t Term) Subst {
	return Subst{impl: &extSubst{head: t, tail: sigma}}
}

// --- Composition ---

// compSubst represents sigma1 . sigma2 and materializes entries lazily
// as Susp nodes, matching the source's intent of collapsing
// Susp(Susp(t, s2), s1) into Susp(t, s1 . s2) without traversing t.
type compSubst struct {
	s1, s2 Subst

	mu    sync.Mutex
	cache map[int]Term
}

// Compose builds sigma1 . sigma2.
func Compose(s1, s2 Subst) Subst {
	return Subst{impl: &compSubst{s1: s1, s2: s2, cache: map[int]Term{}}}
}

func (c *compSubst) shift() int {
	d := c.s2.Shift() - c.s1.Len()
	if d < 0 {
		d = 0
	}
	return c.s1.Shift() + d
}

func (c *compSubst) length() int {
	if c.s2.Shift() < c.s1.Len() {
		return c.s1.Len() - c.s2.Shift() + c.s2.Len()
	}
	return c.s2.Len()
}

func (c *compSubst) at(i int) (Term, error) {
	c.mu.Lock()
	if v, ok := c.cache[i]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	var result Term
	if i <= c.s2.Len() {
		t2i, err := c.s2.At(i)
		if err != nil {
			return nil, err
		}
		result = NewSusp(t2i, c.s1)
	} else {
		j := i - c.s2.Len() + c.s2.Shift()
		r, err := c.s1.At(j)
		if err != nil {
			return nil, err
		}
		result = r
	}

	c.mu.Lock()
	c.cache[i] = result
	c.mu.Unlock()
	return result, nil
}

// lift(sigma) = shift1 . sigma
func lift(sigma Subst) Subst { return Compose(shiftOne, sigma) }

// --- Normalized ---

// normSubst wraps a substitution and forces each entry to normal form
// on demand, memoizing the forced result separately from the
// underlying entry's own progress cache.
type normSubst struct {
	k     *Kernel
	inner Subst

	mu    sync.Mutex
	cache map[int]Term
}

// NormalizeSubst returns norm(sigma): a substitution whose entries are
// forced to normal form on demand. Idempotent: normalizing an
// already-normalized substitution returns it unchanged.
func NormalizeSubst(k *Kernel, sigma Subst) Subst {
	if _, ok := sigma.impl.(*normSubst); ok {
		return sigma
	}
	return Subst{impl: &normSubst{k: k, inner: sigma, cache: map[int]Term{}}}
}

func (n *normSubst) shift() int  { return n.inner.Shift() }
func (n *normSubst) length() int { return n.inner.Len() }
func (n *normSubst) at(i int) (Term, error) {
	n.mu.Lock()
	if v, ok := n.cache[i]; ok {
		n.mu.Unlock()
		return v, nil
	}
	n.mu.Unlock()

	t, err := n.inner.At(i)
	if err != nil {
		return nil, err
	}
	nt, err := n.k.Normalize(t)
	if err != nil {
		return nil, err
	}

	n.mu.Lock()
	n.cache[i] = nt
	n.mu.Unlock()
	return nt, nil
}
