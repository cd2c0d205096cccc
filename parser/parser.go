// Package parser is a hand-written recursive-descent parser building an
// ast.Program from a token stream, in the teacher parser's
// currentTokenPos/expectToken idiom.
package parser

import (
	"fmt"

	"github.com/aslcompiler/aslc/ast"
	"github.com/aslcompiler/aslc/token"
)

// Parser walks a flat token slice and builds the tree.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New returns a Parser over tokens, as produced by lexer.Tokenize.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse consumes the whole token stream and returns the program, or the
// first syntax error encountered.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{Base: ast.NewBase(p.line())}
	for !p.atEOF() {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	return prog, nil
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) line() int { return p.cur().Line }

func (p *Parser) atEOF() bool { return p.cur().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

// expectToken consumes the current token if it matches kind, otherwise
// returns a syntax error describing what was expected.
func (p *Parser) expectToken(kind token.Kind) (token.Token, error) {
	if p.cur().Kind != kind {
		return token.Token{}, p.errorf("expected %s, found %q", kind, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("parser: line %d: %s", p.line(), fmt.Sprintf(format, args...))
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	line := p.line()
	if _, err := p.expectToken(token.FUNC); err != nil {
		return nil, err
	}
	nameTok, err := p.expectToken(token.IDENT)
	if err != nil {
		return nil, err
	}
	fn := &ast.Function{Base: ast.NewBase(line), Name: nameTok.Text}

	if _, err := p.expectToken(token.LPAREN); err != nil {
		return nil, err
	}
	if p.cur().Kind != token.RPAREN {
		for {
			param, err := p.parseParamDecl()
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, param)
			if p.cur().Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expectToken(token.RPAREN); err != nil {
		return nil, err
	}

	if p.cur().Kind == token.COLON {
		p.advance()
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.RetType = t
	}

	decls, err := p.parseDeclarations()
	if err != nil {
		return nil, err
	}
	fn.Decls = decls

	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	fn.Body = body

	if _, err := p.expectToken(token.ENDFUNC); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) parseParamDecl() (*ast.ParamDecl, error) {
	line := p.line()
	nameTok, err := p.expectToken(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectToken(token.COLON); err != nil {
		return nil, err
	}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &ast.ParamDecl{Base: ast.NewBase(line), Name: nameTok.Text, Type: t}, nil
}

func (p *Parser) parseType() (ast.TypeExpr, error) {
	line := p.line()
	if p.cur().Kind == token.ARRAY {
		p.advance()
		if _, err := p.expectToken(token.LBRACK); err != nil {
			return nil, err
		}
		sizeTok, err := p.expectToken(token.INTVAL)
		if err != nil {
			return nil, err
		}
		if _, err := p.expectToken(token.RBRACK); err != nil {
			return nil, err
		}
		if _, err := p.expectToken(token.OF); err != nil {
			return nil, err
		}
		elem, err := p.parseBasicType()
		if err != nil {
			return nil, err
		}
		size := 0
		fmt.Sscanf(sizeTok.Text, "%d", &size)
		return &ast.ArrayTypeExpr{Base: ast.NewBase(line), Size: size, Elem: elem}, nil
	}
	return p.parseBasicType()
}

func (p *Parser) parseBasicType() (*ast.BasicTypeExpr, error) {
	line := p.line()
	var kind ast.BasicTypeKind
	switch p.cur().Kind {
	case token.INT:
		kind = ast.TypeInt
	case token.FLOAT:
		kind = ast.TypeFloat
	case token.BOOL:
		kind = ast.TypeBool
	case token.CHAR:
		kind = ast.TypeChar
	default:
		return nil, p.errorf("expected a type, found %q", p.cur().Text)
	}
	p.advance()
	return &ast.BasicTypeExpr{Base: ast.NewBase(line), Kind: kind}, nil
}

func (p *Parser) parseDeclarations() ([]*ast.VarDecl, error) {
	var decls []*ast.VarDecl
	for p.cur().Kind == token.VAR {
		line := p.line()
		p.advance()
		// One var may hold several "names : type" groups separated by
		// commas (var a:int, b:float); each group becomes its own VarDecl.
		for {
			var names []string
			for {
				nameTok, err := p.expectToken(token.IDENT)
				if err != nil {
					return nil, err
				}
				names = append(names, nameTok.Text)
				if p.cur().Kind != token.COMMA {
					break
				}
				p.advance()
			}
			if _, err := p.expectToken(token.COLON); err != nil {
				return nil, err
			}
			t, err := p.parseType()
			if err != nil {
				return nil, err
			}
			decls = append(decls, &ast.VarDecl{Base: ast.NewBase(line), Names: names, Type: t})
			if p.cur().Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	return decls, nil
}

func (p *Parser) parseStatements() (*ast.Statements, error) {
	line := p.line()
	stmts := &ast.Statements{Base: ast.NewBase(line)}
	for isStatementStart(p.cur().Kind) {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts.List = append(stmts.List, s)
	}
	return stmts, nil
}

func isStatementStart(k token.Kind) bool {
	switch k {
	case token.IDENT, token.IF, token.WHILE, token.READ, token.WRITE, token.RETURN, token.SWITCH:
		return true
	default:
		return false
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur().Kind {
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.READ:
		return p.parseReadStmt()
	case token.WRITE:
		return p.parseWriteStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.SWITCH:
		return p.parseSwitchStmt()
	case token.IDENT:
		return p.parseIdentLedStmt()
	default:
		return nil, p.errorf("unexpected token %q at start of statement", p.cur().Text)
	}
}

func (p *Parser) parseIfStmt() (*ast.IfStmt, error) {
	line := p.line()
	p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectToken(token.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{Base: ast.NewBase(line), Cond: cond, Then: then}
	if p.cur().Kind == token.ELSE {
		p.advance()
		elseStmts, err := p.parseStatements()
		if err != nil {
			return nil, err
		}
		stmt.Else = elseStmts
	}
	if _, err := p.expectToken(token.ENDIF); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseWhileStmt() (*ast.WhileStmt, error) {
	line := p.line()
	p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectToken(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseStatements()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectToken(token.ENDWHILE); err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Base: ast.NewBase(line), Cond: cond, Body: body}, nil
}

func (p *Parser) parseReadStmt() (*ast.ReadStmt, error) {
	line := p.line()
	p.advance()
	if _, err := p.expectToken(token.LPAREN); err != nil {
		return nil, err
	}
	target, err := p.parseLeftExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectToken(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.ReadStmt{Base: ast.NewBase(line), Target: target}, nil
}

func (p *Parser) parseWriteStmt() (ast.Statement, error) {
	line := p.line()
	p.advance()
	if p.cur().Kind == token.STRING {
		lit := p.advance()
		return &ast.WriteStringStmt{Base: ast.NewBase(line), Literal: lit.Text}, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.WriteExprStmt{Base: ast.NewBase(line), Value: val}, nil
}

func (p *Parser) parseReturnStmt() (*ast.ReturnStmt, error) {
	line := p.line()
	p.advance()
	stmt := &ast.ReturnStmt{Base: ast.NewBase(line)}
	if isExprStart(p.cur().Kind) {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Value = v
	}
	return stmt, nil
}

func (p *Parser) parseSwitchStmt() (*ast.SwitchStmt, error) {
	line := p.line()
	p.advance()
	subject, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	stmt := &ast.SwitchStmt{Base: ast.NewBase(line), Subject: subject}
	for p.cur().Kind == token.CASE {
		caseLine := p.line()
		p.advance()
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseStatements()
		if err != nil {
			return nil, err
		}
		stmt.Cases = append(stmt.Cases, &ast.SwitchCase{Base: ast.NewBase(caseLine), Value: v, Body: body})
	}
	if p.cur().Kind == token.DEFAULT {
		p.advance()
		body, err := p.parseStatements()
		if err != nil {
			return nil, err
		}
		stmt.Default = body
	}
	if _, err := p.expectToken(token.ENDSWITCH); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseIdentLedStmt disambiguates assignment, swap, and procedure-call
// statements, all of which start with an identifier.
func (p *Parser) parseIdentLedStmt() (ast.Statement, error) {
	line := p.line()
	nameTok := p.cur()

	if p.peekKindAt(1) == token.LPAREN {
		call, err := p.parseCallExpr()
		if err != nil {
			return nil, err
		}
		return &ast.ProcCallStmt{Base: ast.NewBase(line), Call: call}, nil
	}

	left, err := p.parseLeftExpr()
	if err != nil {
		return nil, err
	}
	switch p.cur().Kind {
	case token.ASSIGN:
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{Base: ast.NewBase(line), Left: left, Value: val}, nil
	case token.SWAPOP:
		p.advance()
		right, err := p.parseLeftExpr()
		if err != nil {
			return nil, err
		}
		return &ast.SwapStmt{Base: ast.NewBase(line), Left: left, Right: right}, nil
	default:
		return nil, p.errorf("expected ':=' or ':=:' after %q, found %q", nameTok.Text, p.cur().Text)
	}
}

func (p *Parser) peekKindAt(offset int) token.Kind {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return token.EOF
	}
	return p.tokens[idx].Kind
}

func (p *Parser) parseLeftExpr() (*ast.LeftExpr, error) {
	line := p.line()
	nameTok, err := p.expectToken(token.IDENT)
	if err != nil {
		return nil, err
	}
	left := &ast.LeftExpr{Base: ast.NewBase(line), Name: nameTok.Text}
	if p.cur().Kind == token.LBRACK {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectToken(token.RBRACK); err != nil {
			return nil, err
		}
		left.Index = idx
	}
	return left, nil
}

func (p *Parser) parseCallExpr() (*ast.CallExpr, error) {
	line := p.line()
	nameTok, err := p.expectToken(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectToken(token.LPAREN); err != nil {
		return nil, err
	}
	call := &ast.CallExpr{Base: ast.NewBase(line), Name: nameTok.Text}
	if p.cur().Kind != token.RPAREN {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.cur().Kind != token.COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expectToken(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

func isExprStart(k token.Kind) bool {
	switch k {
	case token.IDENT, token.INTVAL, token.FLOATVAL, token.CHARVAL, token.BOOLVAL, token.LPAREN, token.PLUS, token.MINUS, token.NOT:
		return true
	default:
		return false
	}
}

// Expression grammar, lowest to highest precedence: or, and, relational,
// additive, multiplicative, unary, primary.

func (p *Parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.OR {
		line := p.line()
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(line), Op: ast.OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.AND {
		line := p.line()
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(line), Op: ast.OpAnd, Left: left, Right: right}
	}
	return left, nil
}

var relOps = map[token.Kind]ast.BinOp{
	token.EQUAL: ast.OpEq,
	token.DIFF:  ast.OpNe,
	token.LS:    ast.OpLt,
	token.LE:    ast.OpLe,
	token.BS:    ast.OpGt,
	token.BE:    ast.OpGe,
}

func (p *Parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op, ok := relOps[p.cur().Kind]; ok {
		line := p.line()
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Base: ast.NewBase(line), Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.PLUS || p.cur().Kind == token.MINUS {
		line := p.line()
		op := ast.OpAdd
		if p.cur().Kind == token.MINUS {
			op = ast.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(line), Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op ast.BinOp
		switch p.cur().Kind {
		case token.MUL:
			op = ast.OpMul
		case token.DIV:
			op = ast.OpDiv
		case token.MOD:
			op = ast.OpMod
		default:
			return left, nil
		}
		line := p.line()
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Base: ast.NewBase(line), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	line := p.line()
	switch p.cur().Kind {
	case token.PLUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(line), Op: ast.UnaryPlus, Operand: operand}, nil
	case token.MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(line), Op: ast.UnaryMinus, Operand: operand}, nil
	case token.NOT:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Base: ast.NewBase(line), Op: ast.UnaryNot, Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	line := p.line()
	switch p.cur().Kind {
	case token.INTVAL:
		t := p.advance()
		return &ast.Literal{Base: ast.NewBase(line), Kind: ast.IntLit, Text: t.Text}, nil
	case token.FLOATVAL:
		t := p.advance()
		return &ast.Literal{Base: ast.NewBase(line), Kind: ast.FloatLit, Text: t.Text}, nil
	case token.CHARVAL:
		t := p.advance()
		return &ast.Literal{Base: ast.NewBase(line), Kind: ast.CharLit, Text: t.Text}, nil
	case token.BOOLVAL:
		t := p.advance()
		return &ast.Literal{Base: ast.NewBase(line), Kind: ast.BoolLit, Text: t.Text}, nil
	case token.LPAREN:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectToken(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Base: ast.NewBase(line), Inner: inner}, nil
	case token.IDENT:
		if p.peekKindAt(1) == token.LPAREN {
			return p.parseCallExpr()
		}
		nameTok := p.advance()
		if p.cur().Kind == token.LBRACK {
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectToken(token.RBRACK); err != nil {
				return nil, err
			}
			return &ast.ArrayIndexExpr{Base: ast.NewBase(line), Array: &ast.Ident{Base: ast.NewBase(line), Name: nameTok.Text}, Index: idx}, nil
		}
		return &ast.Ident{Base: ast.NewBase(line), Name: nameTok.Text}, nil
	default:
		return nil, p.errorf("unexpected token %q in expression", p.cur().Text)
	}
}
