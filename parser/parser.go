// Package parser builds an ast.Unit from IPL source text. It is a
// hand-written recursive-descent parser with precedence climbing for
// expressions; there is no code-generation step.
package parser

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/iplang/iplanalyze/ast"
	"github.com/iplang/iplanalyze/lexer"
)

// Parse tokenizes and parses src, returning the resulting Unit or the first
// error encountered. Parse failures are reported to the caller as plain
// errors (spec §7's "external parser collaborator" population); they never
// flow through the analyzer's diagnostics Log.
func Parse(src string) (*ast.Unit, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, errors.Wrap(err, "lexing failed")
	}
	p := &parser{toks: toks}
	unit, err := p.parseUnit()
	if err != nil {
		return nil, err
	}
	if !p.at(lexer.EOF) {
		return nil, errors.Errorf("unexpected trailing token %q", p.peek().Text)
	}
	return unit, nil
}

type parser struct {
	toks []lexer.Token
	pos  int
}

func (p *parser) peek() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) at(k lexer.Kind) bool {
	return p.peek().Kind == k
}

func (p *parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if !p.at(k) {
		return lexer.Token{}, errors.Errorf("expected %s, got %q", what, p.peek().Text)
	}
	return p.advance(), nil
}

func (p *parser) parseUnit() (*ast.Unit, error) {
	u := &ast.Unit{}
	for !p.at(lexer.EOF) {
		c, err := p.parseConstruct()
		if err != nil {
			return nil, err
		}
		u.Constructs = append(u.Constructs, c)
	}
	return u, nil
}

func (p *parser) parseConstruct() (ast.Construct, error) {
	switch {
	case p.at(lexer.KwFn):
		return p.parseFuncDefn()
	case p.at(lexer.KwLet):
		return p.parseVarDefn()
	default:
		return nil, errors.Errorf("expected 'fn' or 'let', got %q", p.peek().Text)
	}
}

func (p *parser) parseFuncDefn() (*ast.FuncDefn, error) {
	p.advance() // 'fn'
	name, err := p.expect(lexer.Ident, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	fd := &ast.FuncDefn{Name: name.Text}
	for !p.at(lexer.RParen) {
		pname, err := p.expect(lexer.Ident, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Colon, "':'"); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		fd.Params = append(fd.Params, ast.ParamBinding{Name: pname.Text, Type: typ})
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	if p.at(lexer.Arrow) {
		p.advance()
		typ, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		fd.RetType = typ
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fd.Body = body
	return fd, nil
}

func (p *parser) parseVarDefn() (*ast.VarDefn, error) {
	p.advance() // 'let'
	name, err := p.expect(lexer.Ident, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon, "':'"); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Assign, "'='"); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "';'"); err != nil {
		return nil, err
	}
	return &ast.VarDefn{Name: name.Text, Type: typ, Init: init}, nil
}

func (p *parser) parseTypeExpr() (*ast.TypeExpr, error) {
	switch {
	case p.at(lexer.KwInt):
		p.advance()
		return &ast.TypeExpr{Base: "int"}, nil
	case p.at(lexer.KwBool):
		p.advance()
		return &ast.TypeExpr{Base: "bool"}, nil
	case p.at(lexer.KwFloat):
		p.advance()
		return &ast.TypeExpr{Base: "float"}, nil
	case p.at(lexer.KwString):
		p.advance()
		return &ast.TypeExpr{Base: "string"}, nil
	case p.at(lexer.KwList):
		p.advance()
		if _, err := p.expect(lexer.Lt, "'<'"); err != nil {
			return nil, err
		}
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Gt, "'>'"); err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Base: "list", Elems: []*ast.TypeExpr{elem}}, nil
	case p.at(lexer.KwArray):
		p.advance()
		if _, err := p.expect(lexer.Lt, "'<'"); err != nil {
			return nil, err
		}
		elem, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Comma, "','"); err != nil {
			return nil, err
		}
		sizeTok, err := p.expect(lexer.IntLit, "array size")
		if err != nil {
			return nil, err
		}
		size, convErr := strconv.Atoi(sizeTok.Text)
		if convErr != nil {
			return nil, errors.Wrapf(convErr, "invalid array size %q", sizeTok.Text)
		}
		if _, err := p.expect(lexer.Gt, "'>'"); err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Base: "array", Elems: []*ast.TypeExpr{elem}, Size: size}, nil
	case p.at(lexer.KwTuple):
		p.advance()
		if _, err := p.expect(lexer.Lt, "'<'"); err != nil {
			return nil, err
		}
		first, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		elems := []*ast.TypeExpr{first}
		for p.at(lexer.Comma) {
			p.advance()
			next, err := p.parseTypeExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, next)
		}
		if len(elems) < 2 {
			return nil, errors.New("tuple type requires at least 2 element types")
		}
		if _, err := p.expect(lexer.Gt, "'>'"); err != nil {
			return nil, err
		}
		return &ast.TypeExpr{Base: "tuple", Elems: elems}, nil
	default:
		return nil, errors.Errorf("expected a type, got %q", p.peek().Text)
	}
}

func (p *parser) parseBlock() ([]ast.Instruction, error) {
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	var instrs []ast.Instruction
	for !p.at(lexer.RBrace) {
		instr, err := p.parseInstruction()
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
	}
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return instrs, nil
}

func (p *parser) parseInstruction() (ast.Instruction, error) {
	switch {
	case p.at(lexer.KwLet):
		return p.parseVarDefn()
	case p.at(lexer.KwReturn):
		return p.parseReturn()
	case p.at(lexer.KwWrite):
		return p.parseWrite()
	case p.at(lexer.KwIf):
		return p.parseIf()
	case p.at(lexer.KwUnless):
		return p.parseUnless()
	case p.at(lexer.KwCase):
		return p.parseCase()
	case p.at(lexer.KwWhile):
		return p.parseWhile()
	case p.at(lexer.KwDo):
		return p.parseDoWhile()
	case p.at(lexer.KwFor):
		return p.parseFor()
	case p.at(lexer.Ident):
		return p.parseIdentLedInstruction()
	default:
		return nil, errors.Errorf("unexpected token %q at start of instruction", p.peek().Text)
	}
}

// parseIdentLedInstruction disambiguates a call-statement ("f(args);") from
// a plain or indexed assignment ("x = e;" / "x[i] = e;") by looking one
// token past the identifier.
func (p *parser) parseIdentLedInstruction() (ast.Instruction, error) {
	name := p.advance()
	if p.at(lexer.LParen) {
		call, err := p.parseCallArgs(name.Text)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.Semicolon, "';'"); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Call: call}, nil
	}
	assign := &ast.Assign{Name: name.Text}
	if p.at(lexer.LBracket) {
		p.advance()
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
			return nil, err
		}
		assign.Index = idx
	}
	if _, err := p.expect(lexer.Assign, "'='"); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	assign.Value = val
	if _, err := p.expect(lexer.Semicolon, "';'"); err != nil {
		return nil, err
	}
	return assign, nil
}

func (p *parser) parseReturn() (*ast.Return, error) {
	p.advance() // 'return'
	if p.at(lexer.Semicolon) {
		p.advance()
		return &ast.Return{}, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "';'"); err != nil {
		return nil, err
	}
	return &ast.Return{Value: val}, nil
}

func (p *parser) parseWrite() (*ast.Write, error) {
	p.advance() // 'write'
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	args, err := p.parseExprListUntil(lexer.RParen)
	if err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, errors.New("write() requires at least one argument")
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "';'"); err != nil {
		return nil, err
	}
	return &ast.Write{Args: args}, nil
}

func (p *parser) parseIf() (*ast.If, error) {
	p.advance() // 'if'
	cond, body, err := p.parseCondAndBlock()
	if err != nil {
		return nil, err
	}
	n := &ast.If{Cond: cond, Body: body}
	for p.at(lexer.KwElif) {
		p.advance()
		c, b, err := p.parseCondAndBlock()
		if err != nil {
			return nil, err
		}
		n.Elifs = append(n.Elifs, ast.ElifArm{Cond: c, Body: b})
	}
	if p.at(lexer.KwElse) {
		p.advance()
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		n.Else = b
		n.HasElse = true
	}
	return n, nil
}

func (p *parser) parseUnless() (*ast.Unless, error) {
	p.advance() // 'unless'
	cond, body, err := p.parseCondAndBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Unless{Cond: cond, Body: body}, nil
}

func (p *parser) parseCondAndBlock() (ast.Expr, []ast.Instruction, error) {
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, nil, err
	}
	return cond, body, nil
}

func (p *parser) parseCase() (*ast.Case, error) {
	p.advance() // 'case'
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	scrutinee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LBrace, "'{'"); err != nil {
		return nil, err
	}
	c := &ast.Case{Scrutinee: scrutinee}
	for p.at(lexer.KwOf) {
		p.advance()
		if _, err := p.expect(lexer.LParen, "'('"); err != nil {
			return nil, err
		}
		lit, err := p.parseCaseLiteral()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		c.Ofs = append(c.Ofs, ast.OfArm{Value: lit, Body: body})
	}
	if _, err := p.expect(lexer.KwDefault, "'default'"); err != nil {
		return nil, err
	}
	defBody, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	c.Default = defBody
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *parser) parseCaseLiteral() (ast.Expr, error) {
	switch {
	case p.at(lexer.IntLit):
		return &ast.IntLit{Text: p.advance().Text}, nil
	case p.at(lexer.StringLit):
		return &ast.StringLit{Raw: p.advance().Text}, nil
	default:
		return nil, errors.Errorf("expected an int or string literal in 'of', got %q", p.peek().Text)
	}
}

func (p *parser) parseWhile() (*ast.While, error) {
	p.advance() // 'while'
	cond, body, err := p.parseCondAndBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

func (p *parser) parseDoWhile() (*ast.DoWhile, error) {
	p.advance() // 'do'
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwWhile, "'while'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "';'"); err != nil {
		return nil, err
	}
	return &ast.DoWhile{Body: body, Cond: cond}, nil
}

func (p *parser) parseFor() (*ast.For, error) {
	p.advance() // 'for'
	if _, err := p.expect(lexer.LParen, "'('"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.Ident, "loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.KwIn, "'in'"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Var: name.Text, Iterable: iterable, Body: body}, nil
}

// --- Expressions: precedence climbing, lowest to highest. ---

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Expr, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.OrOr) {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: "||", Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	lhs, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.AndAnd) {
		p.advance()
		rhs, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: "&&", Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseEquality() (ast.Expr, error) {
	lhs, err := p.parseCons()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.EqEq) || p.at(lexer.NotEq) {
		op := "=="
		if p.at(lexer.NotEq) {
			op = "!="
		}
		p.advance()
		rhs, err := p.parseCons()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

// parseCons handles the right-associative list operators ^: (prepend) and
// $: (append).
func (p *parser) parseCons() (ast.Expr, error) {
	lhs, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.Prepend) || p.at(lexer.Append) {
		op := "^:"
		if p.at(lexer.Append) {
			op = "$:"
		}
		p.advance()
		rhs, err := p.parseCons()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs}, nil
	}
	return lhs, nil
}

func (p *parser) parseAdd() (ast.Expr, error) {
	lhs, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		op := "+"
		if p.at(lexer.Minus) {
			op = "-"
		}
		p.advance()
		rhs, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

func (p *parser) parseMul() (ast.Expr, error) {
	lhs, err := p.parsePow()
	if err != nil {
		return nil, err
	}
	for p.at(lexer.Star) || p.at(lexer.Slash) || p.at(lexer.Percent) {
		var op string
		switch {
		case p.at(lexer.Star):
			op = "*"
		case p.at(lexer.Slash):
			op = "/"
		default:
			op = "%"
		}
		p.advance()
		rhs, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Op: op, Lhs: lhs, Rhs: rhs}
	}
	return lhs, nil
}

// parsePow handles the right-associative exponent operator.
func (p *parser) parsePow() (ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.at(lexer.Caret) {
		p.advance()
		rhs, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Op: "^", Lhs: lhs, Rhs: rhs}, nil
	}
	return lhs, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.at(lexer.Bang) {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryNot{Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	switch {
	case p.at(lexer.IntLit):
		return &ast.IntLit{Text: p.advance().Text}, nil
	case p.at(lexer.FloatLit):
		return &ast.FloatLit{Text: p.advance().Text}, nil
	case p.at(lexer.StringLit):
		return &ast.StringLit{Raw: p.advance().Text}, nil
	case p.at(lexer.KwTrue):
		p.advance()
		return &ast.BoolLit{Value: true}, nil
	case p.at(lexer.KwFalse):
		p.advance()
		return &ast.BoolLit{Value: false}, nil
	case p.at(lexer.LParen):
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.ParenExpr{Inner: inner}, nil
	case p.at(lexer.LBracket):
		return p.parseListLit()
	case p.at(lexer.LBrace):
		return p.parseArrayLit()
	case p.at(lexer.Pipe):
		return p.parseTupleLit()
	case p.at(lexer.KwRead):
		p.advance()
		if _, err := p.expect(lexer.LParen, "'('"); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.ReadExpr{}, nil
	case p.at(lexer.KwHead):
		p.advance()
		if _, err := p.expect(lexer.LParen, "'('"); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.HeadExpr{List: inner}, nil
	case p.at(lexer.KwTail):
		p.advance()
		if _, err := p.expect(lexer.LParen, "'('"); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.TailExpr{List: inner}, nil
	case p.at(lexer.Ident):
		name := p.advance()
		if p.at(lexer.LParen) {
			return p.parseCallArgs(name.Text)
		}
		if p.at(lexer.LBracket) {
			p.advance()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
				return nil, err
			}
			return &ast.VarDeref{Name: name.Text, Index: idx}, nil
		}
		return &ast.VarDeref{Name: name.Text}, nil
	default:
		return nil, errors.Errorf("unexpected token %q in expression", p.peek().Text)
	}
}

func (p *parser) parseCallArgs(name string) (*ast.CallExpr, error) {
	p.advance() // '('
	args, err := p.parseExprListUntil(lexer.RParen)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.CallExpr{Name: name, Args: args}, nil
}

func (p *parser) parseExprListUntil(end lexer.Kind) ([]ast.Expr, error) {
	var exprs []ast.Expr
	if p.at(end) {
		return exprs, nil
	}
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.at(lexer.Comma) {
			p.advance()
			continue
		}
		break
	}
	return exprs, nil
}

func (p *parser) parseListLit() (ast.Expr, error) {
	p.advance() // '['
	elems, err := p.parseExprListUntil(lexer.RBracket)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.ListLit{Elems: elems}, nil
}

func (p *parser) parseArrayLit() (ast.Expr, error) {
	p.advance() // '{'
	elems, err := p.parseExprListUntil(lexer.RBrace)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, errors.New("array literal {} must have at least one element")
	}
	if _, err := p.expect(lexer.RBrace, "'}'"); err != nil {
		return nil, err
	}
	return &ast.ArrayLit{Elems: elems}, nil
}

func (p *parser) parseTupleLit() (ast.Expr, error) {
	p.advance() // '|'
	elems, err := p.parseExprListUntil(lexer.Pipe)
	if err != nil {
		return nil, err
	}
	if len(elems) < 2 {
		return nil, errors.New("tuple literal requires at least 2 elements")
	}
	if _, err := p.expect(lexer.Pipe, "'|'"); err != nil {
		return nil, err
	}
	return &ast.TupleLit{Elems: elems}, nil
}
