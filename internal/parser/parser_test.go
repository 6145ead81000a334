package parser

import (
	"testing"

	"github.com/alexshamov/TypeTheory/internal/kernel"
	"github.com/alexshamov/TypeTheory/internal/lexer"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, src string) (*Parser, *kernel.Kernel) {
	t.Helper()
	k := kernel.New(kernel.DefaultConfig())
	l := lexer.New(lexer.Normalize([]byte(src)), "test.tt")
	return New(l, k), k
}

func runAll(t *testing.T, p *Parser, k *kernel.Kernel) []Result {
	t.Helper()
	var results []Result
	for {
		stat, err := p.ParseStatement()
		require.NoError(t, err)
		if stat == nil {
			break
		}
		res, err := stat.Execute(k)
		require.NoError(t, err)
		results = append(results, res)
	}
	return results
}

func TestParseParameter(t *testing.T) {
	p, k := newParser(t, "parameter A : type[0]")
	results := runAll(t, p, k)
	require.Len(t, results, 1)
	require.Equal(t, "A : type[0]", results[0].Message)
	require.True(t, k.Env.Has("A"))
}

func TestParseDefinitionInferred(t *testing.T) {
	p, k := newParser(t, "parameter A : type[0]\ndefinition idA := (x : A) => x")
	results := runAll(t, p, k)
	require.Len(t, results, 2)
	require.Equal(t, "idA : (A -> A)", results[1].Message)
}

func TestParseTypedDefinition(t *testing.T) {
	p, k := newParser(t, "parameter A : type[0]\ndefinition idA : A -> A := (x : A) => x")
	results := runAll(t, p, k)
	require.Len(t, results, 2)
	require.Equal(t, "idA : (A -> A)", results[1].Message)
}

func TestParseCheckAndEvaluate(t *testing.T) {
	p, k := newParser(t, `
parameter A : type[0]
parameter e0 : A
definition idA := (x : A) => x
check (idA e0)
evaluate (idA e0)
`)
	results := runAll(t, p, k)
	require.Len(t, results, 5)
	require.Equal(t, "A", results[3].Message)
	require.Equal(t, "e0", results[4].Message)
}

func TestParseDependentProductOverUniverse(t *testing.T) {
	p, k := newParser(t, "check (A : type[0]) -> (A -> A)")
	results := runAll(t, p, k)
	require.Len(t, results, 1)
	require.Equal(t, "type[1]", results[0].Message)
}

func TestParseContextAndQuit(t *testing.T) {
	p, k := newParser(t, "parameter A : type[0]\nparameter B : type[0]\ncontext\nquit")
	results := runAll(t, p, k)
	require.Len(t, results, 4)
	require.ElementsMatch(t, []string{"A", "B"}, results[2].Names)
	require.True(t, results[3].Quit)
}

func TestParseSilentlySuppressesMessage(t *testing.T) {
	p, k := newParser(t, "silently parameter A : type[0]")
	results := runAll(t, p, k)
	require.Len(t, results, 1)
	require.Equal(t, "", results[0].Message)
	require.True(t, k.Env.Has("A"))
}

func TestParseBareExpressionEchoesWithoutEvaluating(t *testing.T) {
	p, k := newParser(t, "parameter A : type[0]\nparameter e0 : A\n(A -> A)")
	results := runAll(t, p, k)
	require.Len(t, results, 3)
	require.Equal(t, "(A -> A)", results[2].Message)
}

func TestParseCommentsAreSkipped(t *testing.T) {
	p, k := newParser(t, "# a leading comment\nparameter A : type[0] # trailing\n")
	results := runAll(t, p, k)
	require.Len(t, results, 1)
	require.Equal(t, "A : type[0]", results[0].Message)
}

func TestParseLeftAssociativeApplication(t *testing.T) {
	p, k := newParser(t, `
parameter A : type[0]
parameter B : type[0]
parameter f : A -> A -> B
parameter a : A
check (f a a)
`)
	results := runAll(t, p, k)
	require.Len(t, results, 5)
	require.Equal(t, "B", results[4].Message)
}

func TestParseUnknownVariableError(t *testing.T) {
	p, k := newParser(t, "check x")
	stat, err := p.ParseStatement()
	require.NoError(t, err)
	require.NotNil(t, stat)
	_, err = stat.Execute(k)
	require.Error(t, err)
}

func TestParseMalformedBinderIsParseError(t *testing.T) {
	p, _ := newParser(t, "parameter A type[0]")
	_, err := p.ParseStatement()
	require.Error(t, err)
}
