package kernel

import (
	"testing"

	"github.com/alexshamov/TypeTheory/internal/kernelerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityFn builds (x : A) => x[1], the identity function over A, given
// a kernel with A already declared as a type-valued parameter.
func identityFn(a Term) *Lam {
	return NewLam("x", a, NewBVar("x", a, 1))
}

// newKernelWithA returns a kernel with a type parameter A : type[0] and
// an element e0 : A already declared, so tests can apply functions over
// A to an actual element rather than to A itself.
func newKernelWithA(t *testing.T) (*Kernel, *GRef, *GRef) {
	t.Helper()
	k := New(DefaultConfig())
	_, err := k.Declare("A", NewUniv(0))
	require.NoError(t, err)
	a := NewGRef("A")
	_, err = k.Declare("e0", a)
	require.NoError(t, err)
	return k, a, NewGRef("e0")
}

// --- Property 1: normalize is idempotent. ---

func TestNormalizeIdempotent(t *testing.T) {
	k, a, e0 := newKernelWithA(t)
	term := NewApp(identityFn(a), e0)

	nf1, err := k.Normalize(term)
	require.NoError(t, err)
	nf2, err := k.Normalize(nf1)
	require.NoError(t, err)
	assert.True(t, Identical(nf1, nf2))
}

// Normalizing a term that is already in normal form must be stable
// across repeated queries on the same node: the progress pointer never
// chases itself.
func TestRepeatedNormalizeOfNormalFormTerminates(t *testing.T) {
	k, a, _ := newKernelWithA(t)
	for i := 0; i < 3; i++ {
		nf, err := k.Normalize(a)
		require.NoError(t, err)
		assert.True(t, Identical(nf, a))
		w, err := k.WHNF(a)
		require.NoError(t, err)
		assert.True(t, Identical(w, a))
	}
}

func TestIdenticalDistinguishesSuspSubstitutions(t *testing.T) {
	a := NewGRef("A")
	e0 := NewGRef("e0")
	body := NewBVar("x", a, 1)
	assert.False(t, Identical(NewSusp(body, Extend(Identity, e0)), NewSusp(body, Extend(Identity, a))))
	assert.True(t, Identical(NewSusp(body, Extend(Identity, e0)), NewSusp(body, Extend(Identity, e0))))
}

// --- Property 2: equal is an equivalence relation (reflexive, symmetric,
// transitive) over a handful of related terms. ---

func TestEqualEquivalenceRelation(t *testing.T) {
	k, a, e0 := newKernelWithA(t)
	x := NewApp(identityFn(a), e0)
	y := Term(e0)
	z, err := k.Normalize(e0)
	require.NoError(t, err)

	xy, err := k.Equal(x, y)
	require.NoError(t, err)
	assert.True(t, xy)

	yx, err := k.Equal(y, x)
	require.NoError(t, err)
	assert.Equal(t, xy, yx)

	yz, err := k.Equal(y, z)
	require.NoError(t, err)
	xz, err := k.Equal(x, z)
	require.NoError(t, err)
	assert.True(t, xy && yz && xz)

	xx, err := k.Equal(x, x)
	require.NoError(t, err)
	assert.True(t, xx)
}

// --- Property 3: substitution is a homomorphism over application:
// apply(sigma, App(f, a)) == App(apply(sigma, f), apply(sigma, a)). ---

func TestApplyDistributesOverApp(t *testing.T) {
	k, a, _ := newKernelWithA(t)
	app := NewApp(identityFn(a), a)
	sigma := Extend(Identity, a)

	got, err := Apply(k, sigma, app)
	require.NoError(t, err)
	gotApp, ok := got.(*App)
	require.True(t, ok)

	wantFn, err := Apply(k, sigma, app.Fn)
	require.NoError(t, err)
	wantArg, err := Apply(k, sigma, app.Arg)
	require.NoError(t, err)

	assert.True(t, Identical(gotApp.Fn, wantFn))
	assert.True(t, Identical(gotApp.Arg, wantArg))
}

// --- Property 3 proper: a delayed substitution and its eager
// application normalize to the same term. ---

func TestSuspMatchesEagerApply(t *testing.T) {
	k, a, e0 := newKernelWithA(t)
	body := NewApp(identityFn(a), NewBVar("x", a, 1))
	sigma := Extend(Identity, e0)

	eager, err := Apply(k, sigma, body)
	require.NoError(t, err)
	nfEager, err := k.Normalize(eager)
	require.NoError(t, err)

	nfSusp, err := k.Normalize(NewSusp(body, sigma))
	require.NoError(t, err)
	assert.True(t, Identical(nfEager, nfSusp))
}

// --- Property 4: substitution composition is associative, observed
// through the normal forms it produces on a shared body. ---

func TestComposeAssociative(t *testing.T) {
	k, a, e0 := newKernelWithA(t)

	// body's declared type is A, so any replacement chased through the
	// composed substitutions below must itself have type A: use e0 (an
	// element of A), not A itself, to keep the substitution-time
	// consistency check satisfied.
	body := NewBVar("x", a, 1)

	s1 := Extend(Identity, e0)
	s2 := ShiftBy(1)
	s3 := Extend(Identity, e0)

	left := Compose(Compose(s1, s2), s3)
	right := Compose(s1, Compose(s2, s3))

	gotLeft, err := Apply(k, left, body)
	require.NoError(t, err)
	gotRight, err := Apply(k, right, body)
	require.NoError(t, err)

	nfLeft, err := k.Normalize(gotLeft)
	require.NoError(t, err)
	nfRight, err := k.Normalize(gotRight)
	require.NoError(t, err)
	assert.True(t, Identical(nfLeft, nfRight))
}

// --- Property 5: the beta rule. (\x:A.x) e0 normalizes to e0. ---

func TestBetaRule(t *testing.T) {
	k, a, e0 := newKernelWithA(t)
	term := NewApp(identityFn(a), e0)

	nf, err := k.Normalize(term)
	require.NoError(t, err)
	assert.True(t, Identical(nf, e0))
}

// --- Property 6: applying the identity substitution is a no-op up to
// judgmental equality. ---

func TestIdentitySubstitutionIsNoOp(t *testing.T) {
	k, a, _ := newKernelWithA(t)
	term := identityFn(a)

	got, err := Apply(k, Identity, term)
	require.NoError(t, err)
	eq, err := k.Equal(got, term)
	require.NoError(t, err)
	assert.True(t, eq)
}

// --- Property 7: the universe hierarchy is cumulative: typeof(type[n]) ==
// type[n+1], for several n. ---

func TestUniverseHierarchy(t *testing.T) {
	k := New(DefaultConfig())
	for n := 0; n < 5; n++ {
		typ, err := k.TypeOf(NewUniv(n))
		require.NoError(t, err)
		u, ok := typ.(*Univ)
		require.True(t, ok)
		assert.Equal(t, n+1, u.N)
	}
}

// --- Property 8: binder alpha-equivalence -- two Pi terms differing
// only in their NameHint are Identical and mutually Equal. ---

func TestBinderAlphaEquivalence(t *testing.T) {
	k, a, _ := newKernelWithA(t)
	p1 := NewPi("x", a, NewBVar("x", a, 1))
	p2 := NewPi("y", a, NewBVar("y", a, 1))

	assert.True(t, Identical(p1, p2))
	eq, err := k.Equal(p1, p2)
	require.NoError(t, err)
	assert.True(t, eq)
}

// --- Property 9: the environment is append-only -- a failing
// declaration (duplicate name, or ill-typed parameter) leaves the
// environment exactly as it was. ---

func TestEnvironmentAppendOnlyOnFailingDeclare(t *testing.T) {
	k, _, _ := newKernelWithA(t)
	before := k.Env.Names()

	_, err := k.Declare("A", NewUniv(0))
	require.Error(t, err)
	var kerr *kernelerr.Error
	assert.ErrorAs(t, err, &kerr)
	assert.Equal(t, before, k.Env.Names())

	// A parameter whose proposed type is itself not type-valued (e0 has
	// type A, not a universe) must also fail without mutating the
	// environment.
	_, err = k.Declare("bad", NewGRef("e0"))
	require.Error(t, err)
	assert.Equal(t, before, k.Env.Names())
}

// --- Scenario-flavored checks, built directly against the kernel API
// rather than through surface syntax (the textual end-to-end pipeline is
// covered by the REPL's integration tests). ---

func TestScenarioIdentityFunctionChecksAndEvaluates(t *testing.T) {
	k, a, e0 := newKernelWithA(t)
	id := identityFn(a)

	typ, err := k.Check(id)
	require.NoError(t, err)
	assert.Equal(t, "(A -> A)", typ.String())

	applied := NewApp(id, e0)
	val, err := k.Evaluate(applied)
	require.NoError(t, err)
	assert.Equal(t, "e0", val.String())
}

func TestScenarioUnknownVariableError(t *testing.T) {
	k := New(DefaultConfig())
	_, err := k.TypeOf(NewGRef("nope"))
	require.Error(t, err)
	rep, ok := kernelerr.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, kernelerr.UnknownVariableKind, rep.Kind)
}

func TestScenarioApplicationToNonFunctionIsProductExpected(t *testing.T) {
	k, a, _ := newKernelWithA(t)
	_, err := k.TypeOf(NewApp(a, a))
	require.Error(t, err)
	rep, ok := kernelerr.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, kernelerr.ProductExpectedKind, rep.Kind)
}

func TestScenarioParameterMustBeTypeValued(t *testing.T) {
	k, _, _ := newKernelWithA(t)

	// e0 has type A, not a universe, so it cannot itself serve as a
	// parameter's type.
	_, err := k.Declare("bad", NewGRef("e0"))
	require.Error(t, err)
	rep, ok := kernelerr.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, kernelerr.TypeExpectedKind, rep.Kind)
}

func TestScenarioRedeclarationIsVariableExists(t *testing.T) {
	k, _, _ := newKernelWithA(t)
	_, err := k.Declare("A", NewUniv(0))
	require.Error(t, err)
	rep, ok := kernelerr.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, kernelerr.VariableExistsKind, rep.Kind)
}

func TestScenarioDependentProductOverUniverse(t *testing.T) {
	// (A : type[0]) -> (A -> A): a polymorphic identity-function type.
	k := New(DefaultConfig())
	pi := NewPi("A", NewUniv(0), NewPi("x", NewBVar("A", NewUniv(0), 1), NewBVar("A", NewUniv(0), 2)))

	typ, err := k.Check(pi)
	require.NoError(t, err)
	assert.Equal(t, "type[1]", typ.String())
	assert.Equal(t, "((A : type[0]) -> (A -> A))", pi.String())
}

func TestScenarioDefineAndUseGlobalDefinition(t *testing.T) {
	k, a, e0 := newKernelWithA(t)
	id := identityFn(a)
	_, err := k.Define("idA", id)
	require.NoError(t, err)

	applied := NewApp(NewGRef("idA"), e0)
	val, err := k.Evaluate(applied)
	require.NoError(t, err)
	assert.Equal(t, "e0", val.String())
}

func TestScenarioDefineTypedDoesNotVerifyBody(t *testing.T) {
	// DefineTyped intentionally does not check typeof(body) == T; a
	// mismatched ascription is accepted at declaration time.
	k, a, _ := newKernelWithA(t)
	_, err := k.DefineTyped("oops", NewPi("x", a, a), a)
	require.NoError(t, err)

	decl, err := k.Env.Lookup("oops")
	require.NoError(t, err)
	assert.True(t, Identical(decl.Type, NewPi("x", a, a)))
	assert.True(t, Identical(decl.Body, a))
}

func TestSubstitutionTypeMismatchDetected(t *testing.T) {
	// identityFn(a) expects an element of A; A itself lives in type[0],
	// so beta-reducing the application trips the substitution-time
	// domain check.
	k, a, _ := newKernelWithA(t)
	_, err := k.Normalize(NewApp(identityFn(a), a))
	require.Error(t, err)
	rep, ok := kernelerr.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, kernelerr.TypeMismatchKind, rep.Kind)
}

func TestUnsafeModeSkipsSubstitutionCheck(t *testing.T) {
	k := New(Config{UnsafeMode: true})
	_, err := k.Declare("A", NewUniv(0))
	require.NoError(t, err)
	a := NewGRef("A")

	// The same ill-typed redex as above reduces without complaint when
	// the kernel trusts its caller.
	nf, err := k.Normalize(NewApp(identityFn(a), a))
	require.NoError(t, err)
	assert.True(t, Identical(nf, a))
}

func TestRecursionLimitProducesRecursionError(t *testing.T) {
	k := New(Config{RecursionLimit: 8})
	_, err := k.Declare("A", NewUniv(0))
	require.NoError(t, err)
	a := NewGRef("A")

	// Build a deeply right-nested Pi chain so that TypeOf's recursion
	// through Pi.B blows the small configured limit.
	term := Term(a)
	for i := 0; i < 50; i++ {
		term = NewPi("x", a, term)
	}

	_, err = k.TypeOf(term)
	require.Error(t, err)
	rep, ok := kernelerr.AsReport(err)
	require.True(t, ok)
	assert.Equal(t, kernelerr.RecursionKind, rep.Kind)
}
