// Package parser turns kernel source text into Statements: a
// recursive-descent parser over named-variable surface syntax, followed
// by a translation pass into de Bruijn-indexed kernel terms.
package parser

import (
	"strconv"

	"github.com/alexshamov/TypeTheory/internal/kernel"
	"github.com/alexshamov/TypeTheory/internal/kernelerr"
	"github.com/alexshamov/TypeTheory/internal/lexer"
)

// Parser consumes a token stream and builds Statements. It holds a
// kernel reference only to satisfy translate's signature for the
// domain-type shift it performs on bound-variable occurrences; it never
// consults the kernel's environment during parsing.
type Parser struct {
	l *lexer.Lexer
	k *kernel.Kernel

	cur  lexer.Token
	peek lexer.Token
}

// New creates a Parser reading from l, translating against k.
func New(l *lexer.Lexer, k *kernel.Kernel) *Parser {
	p := &Parser{l: l, k: k}
	p.advance()
	p.advance()
	return p
}

// advance moves cur/peek forward by one non-comment token.
func (p *Parser) advance() {
	p.cur = p.peek
	tok := p.l.NextToken()
	for tok.Type == lexer.COMMENT {
		tok = p.l.NextToken()
	}
	p.peek = tok
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if !p.curIs(t) {
		return lexer.Token{}, kernelerr.Parsing(p.cur.String())
	}
	tok := p.cur
	p.advance()
	return tok, nil
}

// ParseStatement parses and translates one top-level statement. At end
// of input it returns (nil, nil): an empty statement is a no-op.
func (p *Parser) ParseStatement() (Statement, error) {
	if p.curIs(lexer.EOF) {
		return nil, nil
	}

	switch p.cur.Type {
	case lexer.PARAMETER:
		p.advance()
		name, typExpr, err := p.parseBinder()
		if err != nil {
			return nil, err
		}
		typ, err := translate(p.k, typExpr)
		if err != nil {
			return nil, err
		}
		return &SParameter{Name: name, Typ: typ}, nil

	case lexer.DEFINITION:
		p.advance()
		return p.parseDefinition()

	case lexer.CHECK:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		term, err := translate(p.k, e)
		if err != nil {
			return nil, err
		}
		return &SCheck{Term: term}, nil

	case lexer.EVALUATE:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		term, err := translate(p.k, e)
		if err != nil {
			return nil, err
		}
		return &SEvaluate{Term: term}, nil

	case lexer.CONTEXT:
		p.advance()
		return &SContext{}, nil

	case lexer.QUIT:
		p.advance()
		return &SQuit{}, nil

	case lexer.SILENTLY:
		p.advance()
		inner, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, nil
		}
		return &SSilently{Stat: inner}, nil

	default:
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		term, err := translate(p.k, e)
		if err != nil {
			return nil, err
		}
		return &SExpression{Term: term}, nil
	}
}

// parseDefinition handles both "definition name := expr" and
// "definition name : T := expr".
func (p *Parser) parseDefinition() (Statement, error) {
	if p.curIs(lexer.IDENT) && p.peekIs(lexer.COLONEQUAL) {
		name := p.cur.Literal
		p.advance()
		p.advance() // consume :=
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		body, err := translate(p.k, e)
		if err != nil {
			return nil, err
		}
		return &SDefinition{Name: name, Body: body}, nil
	}

	name, typExpr, err := p.parseBinder()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLONEQUAL); err != nil {
		return nil, err
	}
	bodyExpr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	typ, err := translate(p.k, typExpr)
	if err != nil {
		return nil, err
	}
	body, err := translate(p.k, bodyExpr)
	if err != nil {
		return nil, err
	}
	return &STypedDefinition{Name: name, Typ: typ, Body: body}, nil
}

// parseBinder parses "name : expression", optionally wrapped in one or
// more redundant layers of parens.
func (p *Parser) parseBinder() (string, expr, error) {
	for p.curIs(lexer.LPAREN) {
		p.advance()
		name, typExpr, err := p.parseBinder()
		if err != nil {
			return "", nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return "", nil, err
		}
		return name, typExpr, nil
	}
	nameTok, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return "", nil, err
	}
	typExpr, err := p.parseExpression()
	if err != nil {
		return "", nil, err
	}
	return nameTok.Literal, typExpr, nil
}

// parseExpression parses a right-associative chain of arrows/darrows
// over application-level expressions: A -> B -> C is Pi(_,A,Pi(_,B,C)).
func (p *Parser) parseExpression() (expr, error) {
	left, err := p.parseApplication()
	if err != nil {
		return nil, err
	}
	switch p.cur.Type {
	case lexer.ARROW:
		p.advance()
		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &eAbs{name: "", typ: left, body: right, pi: true}, nil
	case lexer.DARROW:
		p.advance()
		right, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &eAbs{name: "", typ: left, body: right, pi: false}, nil
	}
	return left, nil
}

// parseApplication parses a left-associative chain of simple
// expressions: f a b is App(App(f, a), b). An argument must start on
// the same line as the head of the chain, so a line break ends the
// application.
func (p *Parser) parseApplication() (expr, error) {
	line := p.cur.Line
	left, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	for p.startsSimple() && p.cur.Line == line {
		right, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		left = &eApp{fn: left, arg: right}
	}
	return left, nil
}

func (p *Parser) startsSimple() bool {
	switch p.cur.Type {
	case lexer.IDENT, lexer.TYPE, lexer.LPAREN:
		return true
	}
	return false
}

// parseSimple parses a universe, a name, a parenthesized binder
// immediately followed by -> or => (a named product or lambda), or a
// parenthesized expression.
func (p *Parser) parseSimple() (expr, error) {
	switch p.cur.Type {
	case lexer.TYPE:
		p.advance()
		if _, err := p.expect(lexer.LBRACKET); err != nil {
			return nil, err
		}
		numTok, err := p.expect(lexer.NUMERAL)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACKET); err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(numTok.Literal)
		if err != nil {
			return nil, kernelerr.Parsing(numTok.Literal)
		}
		return &eUniv{n: n}, nil

	case lexer.IDENT:
		name := p.cur.Literal
		p.advance()
		return &eVar{name: name}, nil

	case lexer.LPAREN:
		return p.parseParenGroup()

	default:
		return nil, kernelerr.Parsing(p.cur.String())
	}
}

// parseParenGroup disambiguates "(name : T) -> body" / "(name : T) => body"
// named binders from a plain parenthesized expression: both start with
// LPAREN IDENT, but a binder's name is immediately followed by COLON.
func (p *Parser) parseParenGroup() (expr, error) {
	p.advance() // consume (
	if p.curIs(lexer.IDENT) && p.peekIs(lexer.COLON) {
		name := p.cur.Literal
		p.advance() // consume name
		p.advance() // consume :
		typExpr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return nil, err
		}
		switch p.cur.Type {
		case lexer.ARROW:
			p.advance()
			body, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &eAbs{name: name, typ: typExpr, body: body, pi: true}, nil
		case lexer.DARROW:
			p.advance()
			body, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			return &eAbs{name: name, typ: typExpr, body: body, pi: false}, nil
		default:
			return nil, kernelerr.Parsing(p.cur.String())
		}
	}

	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return inner, nil
}
