// Package parser is the ambient front end that turns source text into the
// AST the core evaluator walks, assigning lexical register indices as it
// goes. It is a hand-rolled Pratt parser over internal/lexer: a
// precedence table keyed by token type, a `parseExpr(minPrec)`
// core, and per-statement recursive-descent functions. Outside these two
// packages, only internal/template, pkg/jexl and cmd/jexl import the
// parser; the core (interp,
// arith, introspect, scope, jexlctx) accepts any *ast.Script built this
// way, or by another producer entirely.
package parser

import (
	"fmt"

	"github.com/cwbudde/go-jexl/internal/ast"
	"github.com/cwbudde/go-jexl/internal/jexlerr"
	"github.com/cwbudde/go-jexl/internal/lexer"
	"github.com/cwbudde/go-jexl/internal/scope"
)

// Parser consumes a token stream and builds an AST, assigning register
// indices for parameters and declared locals via an internal Scope.
type Parser struct {
	lex    *lexer.Lexer
	tok    lexer.Token
	peek   lexer.Token
	scope  *scope.Scope
	source string
}

// Parse parses src as a script (a statement list, possibly using control
// flow), returning the root node and the Scope its registers were
// assigned against.
func Parse(src string, params ...string) (*ast.Script, *scope.Scope, error) {
	p := newParser(src, params)
	script, err := p.parseScript()
	if err != nil {
		return nil, nil, err
	}
	return script, p.scope, nil
}

// ParseExpression parses src as a single expression — no control-flow
// statements, just one expression optionally followed by a trailing
// semicolon.
func ParseExpression(src string, params ...string) (ast.Expression, *scope.Scope, error) {
	p := newParser(src, params)
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, nil, err
	}
	if p.tok.Type == lexer.SEMI {
		p.next()
	}
	if p.tok.Type != lexer.EOF {
		return nil, nil, p.errorf("unexpected trailing input %q", p.tok.Literal)
	}
	return expr, p.scope, nil
}

func newParser(src string, params []string) *Parser {
	p := &Parser{lex: lexer.New(src), scope: scope.New(params), source: src}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.tok = p.peek
	p.peek = p.lex.Next()
}

func (p *Parser) errorf(format string, args ...any) error {
	return jexlerr.New(jexlerr.Parsing, tokenNode{p.tok, p.source}, format, args...)
}

// tokenNode adapts a lexer.Token to jexlerr.Node for parse-time diagnostics.
type tokenNode struct {
	tok    lexer.Token
	source string
}

func (t tokenNode) Pos() lexer.Position { return t.tok.Pos }
func (t tokenNode) String() string      { return t.tok.Literal }

func (p *Parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	if p.tok.Type != tt {
		return lexer.Token{}, p.errorf("expected %s, got %q", what, p.tok.Literal)
	}
	tok := p.tok
	p.next()
	return tok, nil
}

func base(tok lexer.Token) ast.Base {
	return ast.Base{Position: tok.Pos, Image: tok.Literal}
}

// ---- Script / statements ----

func (p *Parser) parseScript() (*ast.Script, error) {
	start := p.tok
	var stmts []ast.Statement
	for p.tok.Type != lexer.EOF {
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
		for p.tok.Type == lexer.SEMI {
			p.next()
		}
	}
	return &ast.Script{Base: base(start), Statements: stmts}, nil
}

func (p *Parser) parseBlock() (ast.Statement, error) {
	start := p.tok
	if _, err := p.expect(lexer.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for p.tok.Type != lexer.RBRACE && p.tok.Type != lexer.EOF {
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
		for p.tok.Type == lexer.SEMI {
			p.next()
		}
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.Block{Base: base(start), Statements: stmts}, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.tok.Type {
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseForeach()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.VAR:
		return p.parseVarDecl()
	default:
		start := p.tok
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStatement{Base: base(start), Expr: expr}, nil
	}
}

func (p *Parser) parseIf() (ast.Statement, error) {
	start := p.tok
	p.next()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	then, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	var elseSt ast.Statement
	if p.tok.Type == lexer.ELSE {
		p.next()
		elseSt, err = p.parseStatement()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Base: base(start), Cond: cond, Then: then, Else: elseSt}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	start := p.tok
	p.next()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.While{Base: base(start), Cond: cond, Body: body}, nil
}

func (p *Parser) parseForeach() (ast.Statement, error) {
	start := p.tok
	p.next()
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	if p.tok.Type == lexer.VAR {
		p.next()
	}
	nameTok, err := p.expect(lexer.IDENT, "loop variable")
	if err != nil {
		return nil, err
	}
	reg := p.scope.DeclareVariable(nameTok.Literal)
	varNode := &ast.Var{Base: base(nameTok), Name: nameTok.Literal, Register: reg}
	if _, err := p.expect(lexer.IN, "'in'"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &ast.Foreach{Base: base(start), Var: varNode, Iterable: iterable, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	start := p.tok
	p.next()
	if p.tok.Type == lexer.SEMI || p.tok.Type == lexer.EOF || p.tok.Type == lexer.RBRACE {
		return &ast.Return{Base: base(start)}, nil
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return &ast.Return{Base: base(start), Expr: expr}, nil
}

// parseVarDecl handles `var name;` and `var name = expr;`, declaring name
// as a new local register in the enclosing Scope.
func (p *Parser) parseVarDecl() (ast.Statement, error) {
	start := p.tok
	p.next()
	nameTok, err := p.expect(lexer.IDENT, "variable name")
	if err != nil {
		return nil, err
	}
	reg := p.scope.DeclareVariable(nameTok.Literal)
	target := &ast.Identifier{Base: base(nameTok), Name: nameTok.Literal, Register: reg}
	if p.tok.Type != lexer.ASSIGN {
		return &ast.ExprStatement{Base: base(start), Expr: target}, nil
	}
	p.next()
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	return &ast.ExprStatement{Base: base(start), Expr: &ast.Assign{Base: base(start), Target: target, Value: value}}, nil
}

// ---- Expressions: precedence-climbing core ----

// precedence maps a binary operator token to its binding power. Higher
// binds tighter. Assignment and the ternary/elvis forms are handled
// outside this table since they are right-associative / mixed-arity.
var precedence = map[lexer.TokenType]int{
	lexer.OR:        1,
	lexer.PIPE:      2,
	lexer.CARET:     2,
	lexer.AMP:       3,
	lexer.AND:       4,
	lexer.EQ:        5,
	lexer.NE:        5,
	lexer.MATCH:     5,
	lexer.NOT_MATCH: 5,
	lexer.LT:        6,
	lexer.LE:        6,
	lexer.GT:        6,
	lexer.GE:        6,
	lexer.PLUS:      7,
	lexer.MINUS:     7,
	lexer.STAR:      8,
	lexer.SLASH:     8,
	lexer.PERCENT:   8,
}

var opImage = map[lexer.TokenType]string{
	lexer.OR: "||", lexer.AMP: "&", lexer.PIPE: "|", lexer.CARET: "^", lexer.AND: "&&",
	lexer.EQ: "==", lexer.NE: "!=", lexer.MATCH: "=~", lexer.NOT_MATCH: "!~",
	lexer.LT: "<", lexer.LE: "<=", lexer.GT: ">", lexer.GE: ">=",
	lexer.PLUS: "+", lexer.MINUS: "-", lexer.STAR: "*", lexer.SLASH: "/", lexer.PERCENT: "%",
}

// parseExpr parses the full expression grammar: assignment (lowest),
// then ternary/elvis, then the precedence-climbing binary core.
func (p *Parser) parseExpr(minPrec int) (ast.Expression, error) {
	if minPrec > 0 {
		return p.parseBinary(minPrec)
	}
	return p.parseAssign()
}

func (p *Parser) parseAssign() (ast.Expression, error) {
	left, err := p.parseTernary()
	if err != nil {
		return nil, err
	}
	if p.tok.Type == lexer.ASSIGN {
		tok := p.tok
		p.next()
		right, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Base: base(tok), Target: left, Value: right}, nil
	}
	return left, nil
}

func (p *Parser) parseTernary() (ast.Expression, error) {
	cond, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	switch p.tok.Type {
	case lexer.QUESTION:
		tok := p.tok
		p.next()
		when, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		els, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return &ast.Ternary{Base: base(tok), Cond: cond, When: when, Else: els}, nil
	case lexer.QUESTION_COLON:
		tok := p.tok
		p.next()
		els, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		return &ast.Ternary{Base: base(tok), Cond: cond, Else: els}, nil
	}
	return cond, nil
}

func (p *Parser) parseBinary(minPrec int) (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := precedence[p.tok.Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		opTok := p.tok
		p.next()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: base(opTok), Op: opImage[opTok.Type], Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.tok.Type {
	case lexer.MINUS:
		tok := p.tok
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: base(tok), Op: "-", Operand: operand}, nil
	case lexer.NOT:
		tok := p.tok
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: base(tok), Op: "!", Operand: operand}, nil
	case lexer.TILDE:
		tok := p.tok
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: base(tok), Op: "~", Operand: operand}, nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles reference chains: `.name`, `.name(args)`,
// `[index]`, repeated in any order after a primary expression.
func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	var parts []ast.Expression
	for {
		switch p.tok.Type {
		case lexer.DOT:
			p.next()
			part, err := p.parseReferenceStep()
			if err != nil {
				return nil, err
			}
			if len(parts) == 0 {
				parts = append(parts, expr)
			}
			parts = append(parts, part)
		case lexer.LBRACK:
			start := p.tok
			indices, err := p.parseIndices()
			if err != nil {
				return nil, err
			}
			target := expr
			if len(parts) > 0 {
				target = &ast.Reference{Base: base(start), Parts: parts}
				parts = nil
			}
			expr = &ast.ArrayAccess{Base: base(start), Target: target, Indices: indices}
		default:
			if len(parts) > 0 {
				return &ast.Reference{Base: ast.Base{Position: expr.Pos(), Image: expr.String()}, Parts: parts}, nil
			}
			return expr, nil
		}
	}
}

func (p *Parser) parseIndices() ([]ast.Expression, error) {
	var out []ast.Expression
	for p.tok.Type == lexer.LBRACK {
		p.next()
		idx, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBRACK, "']'"); err != nil {
			return nil, err
		}
		out = append(out, idx)
	}
	return out, nil
}

// parseReferenceStep parses one `.name` or `.name(args)` step following a
// dot, resolving bare identifiers against the lexical Scope the same way
// a primary identifier would.
func (p *Parser) parseReferenceStep() (ast.Expression, error) {
	nameTok, err := p.expect(lexer.IDENT, "property or method name")
	if err != nil {
		// dotted numeric index, e.g. `foo.array.1`
		if p.tok.Type == lexer.INT {
			intTok := p.tok
			p.next()
			return &ast.Identifier{Base: base(intTok), Name: intTok.Literal, Register: -1}, nil
		}
		return nil, err
	}
	if p.tok.Type == lexer.LPAREN {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.MethodCall{Base: base(nameTok), Name: nameTok.Literal, Args: args}, nil
	}
	return &ast.Identifier{Base: base(nameTok), Name: nameTok.Literal, Register: -1}, nil
}

func (p *Parser) parseArgs() ([]ast.Expression, error) {
	if _, err := p.expect(lexer.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var args []ast.Expression
	for p.tok.Type != lexer.RPAREN {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.tok.Type {
	case lexer.INT:
		tok := p.tok
		p.next()
		var n int64
		if _, err := fmt.Sscanf(tok.Literal, "%d", &n); err != nil {
			return nil, p.errorf("invalid integer literal %q", tok.Literal)
		}
		return &ast.IntLit{Base: base(tok), Value: n}, nil
	case lexer.FLOAT:
		tok := p.tok
		p.next()
		var f float64
		if _, err := fmt.Sscanf(tok.Literal, "%g", &f); err != nil {
			return nil, p.errorf("invalid float literal %q", tok.Literal)
		}
		return &ast.FloatLit{Base: base(tok), Value: f}, nil
	case lexer.STRING:
		tok := p.tok
		p.next()
		return &ast.StringLit{Base: base(tok), Value: tok.Literal}, nil
	case lexer.TRUE:
		tok := p.tok
		p.next()
		return &ast.BoolLit{Base: base(tok), Value: true}, nil
	case lexer.FALSE:
		tok := p.tok
		p.next()
		return &ast.BoolLit{Base: base(tok), Value: false}, nil
	case lexer.NULL:
		tok := p.tok
		p.next()
		return &ast.NullLit{Base: base(tok)}, nil
	case lexer.SIZE:
		tok := p.tok
		p.next()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if len(args) != 1 {
			return nil, p.errorf("size() takes exactly one argument")
		}
		return &ast.SizeFunction{Base: base(tok), Arg: args[0]}, nil
	case lexer.EMPTY:
		tok := p.tok
		p.next()
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		if len(args) != 1 {
			return nil, p.errorf("empty() takes exactly one argument")
		}
		return &ast.EmptyFunction{Base: base(tok), Arg: args[0]}, nil
	case lexer.NEW:
		tok := p.tok
		p.next()
		classTok, err := p.expect(lexer.IDENT, "class name")
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		class := &ast.Identifier{Base: base(classTok), Name: classTok.Literal, Register: -1}
		return &ast.ConstructorCall{Base: base(tok), Class: class, Args: args}, nil
	case lexer.LBRACK:
		return p.parseArrayLit()
	case lexer.LBRACE:
		return p.parseMapLit()
	case lexer.LPAREN:
		tok := p.tok
		p.next()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return &ast.ReferenceExpression{Base: base(tok), Inner: inner}, nil
	case lexer.IDENT:
		return p.parseIdentOrCall()
	default:
		return nil, p.errorf("unexpected token %q", p.tok.Literal)
	}
}

func (p *Parser) parseIdentOrCall() (ast.Expression, error) {
	nameTok := p.tok
	p.next()

	if p.tok.Type == lexer.COLON {
		// namespace:name(args...)
		p.next()
		fnTok, err := p.expect(lexer.IDENT, "function name")
		if err != nil {
			return nil, err
		}
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Base: base(nameTok), Namespace: nameTok.Literal, Name: fnTok.Literal, Args: args}, nil
	}

	if p.tok.Type == lexer.LPAREN {
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionCall{Base: base(nameTok), Name: nameTok.Literal, Args: args}, nil
	}

	reg := p.scope.Resolve(nameTok.Literal)
	return &ast.Identifier{Base: base(nameTok), Name: nameTok.Literal, Register: reg}, nil
}

func (p *Parser) parseArrayLit() (ast.Expression, error) {
	start := p.tok
	p.next()
	var elems []ast.Expression
	for p.tok.Type != lexer.RBRACK {
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.tok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBRACK, "']'"); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Base: base(start), Elements: elems}, nil
}

func (p *Parser) parseMapLit() (ast.Expression, error) {
	start := p.tok
	p.next()
	var entries []*ast.MapEntry
	for p.tok.Type != lexer.RBRACE {
		keyTok := p.tok
		key, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON, "':'"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &ast.MapEntry{Base: base(keyTok), Key: key, Value: value})
		if p.tok.Type == lexer.COMMA {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	return &ast.MapLit{Base: base(start), Entries: entries}, nil
}
