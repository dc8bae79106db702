package frontend

import (
	"fmt"
	"strconv"

	"ctildec/ir"
)

// parseBlock consumes a brace-delimited statement list.
func (p *Parser) parseBlock() (*ir.Node, error) {
	tok, err := p.expectText("{")
	if err != nil {
		return nil, err
	}
	var stmts []*ir.Node
	for !p.atText("}") {
		if p.at("eof") {
			return nil, fmt.Errorf("unterminated block starting at line %d", tok.Line)
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	p.advance() // }
	return ir.NewBlock(tok, stmts...), nil
}

func (p *Parser) parseStatement() (*ir.Node, error) {
	switch {
	case p.atText("{"):
		return p.parseBlock()
	case p.atText("if"):
		return p.parseIf()
	case p.atText("while"):
		return p.parseWhile()
	case p.atText("return"):
		return p.parseReturn()
	case p.atText("delete"):
		return p.parseDelete()
	case p.atText(";"):
		tok := p.advance()
		return &ir.Node{Typ: ir.NNullStatement, Tok: tok}, nil
	case p.looksLikeDeclaration():
		return p.parseDeclaration()
	default:
		tok := p.cur()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(";"); err != nil {
			return nil, err
		}
		return &ir.Node{Typ: ir.NExpressionStmt, Tok: tok, Children: []*ir.Node{e}}, nil
	}
}

func (p *Parser) parseDeclaration() (*ir.Node, error) {
	isConst := false
	if p.atText("const") {
		p.advance()
		isConst = true
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind("identifier")
	if err != nil {
		return nil, err
	}
	n := &ir.Node{Typ: ir.NDeclaration, Tok: nameTok, Data: nameTok.Text, Type: typ, IsConst: isConst}

	switch {
	case p.atText("("):
		p.advance()
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		n.IsCtorCall = true
		n.Children = args
	case p.atText("="):
		p.advance()
		if p.atText("{") {
			list, err := p.parseInitializerList()
			if err != nil {
				return nil, err
			}
			n.Children = []*ir.Node{list}
		} else {
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			n.Children = []*ir.Node{e}
		}
	}

	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) parseInitializerList() (*ir.Node, error) {
	tok, err := p.expectText("{")
	if err != nil {
		return nil, err
	}
	var values []*ir.Node
	for !p.atText("}") {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		values = append(values, e)
		if p.atText(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectText("}"); err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.NInitializerList, Tok: tok, Children: values}, nil
}

func (p *Parser) parseIf() (*ir.Node, error) {
	tok, err := p.expectText("if")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	children := []*ir.Node{cond, thenBlock}
	if p.atText("else") {
		elseTok := p.advance()
		if p.atText("if") {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			children = append(children, ir.NewBlock(elseTok, elseIf))
		} else {
			elseBlock, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			children = append(children, elseBlock)
		}
	}
	return &ir.Node{Typ: ir.NIf, Tok: tok, Children: children}, nil
}

func (p *Parser) parseWhile() (*ir.Node, error) {
	tok, err := p.expectText("while")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.NWhile, Tok: tok, Children: []*ir.Node{cond, body}}, nil
}

func (p *Parser) parseReturn() (*ir.Node, error) {
	tok, err := p.expectText("return")
	if err != nil {
		return nil, err
	}
	n := &ir.Node{Typ: ir.NReturn, Tok: tok}
	if !p.atText(";") {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		n.Children = []*ir.Node{e}
	}
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) parseDelete() (*ir.Node, error) {
	tok, err := p.expectText("delete")
	if err != nil {
		return nil, err
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.NDelete, Tok: tok, Children: []*ir.Node{e}}, nil
}

// ---- Expressions, by ascending precedence ----

func (p *Parser) parseExpression() (*ir.Node, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (*ir.Node, error) {
	lhs, err := p.parseLogicalOr()
	if err != nil {
		return nil, err
	}
	if p.atText("=") {
		tok := p.advance()
		rhs, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		return &ir.Node{Typ: ir.NAssignment, Tok: tok, Children: []*ir.Node{lhs, rhs}}, nil
	}
	return lhs, nil
}

func (p *Parser) parseLogicalOr() (*ir.Node, error) {
	return p.parseBinaryLevel([]string{"||"}, p.parseLogicalAnd)
}

func (p *Parser) parseLogicalAnd() (*ir.Node, error) {
	return p.parseBinaryLevel([]string{"&&"}, p.parseEquality)
}

func (p *Parser) parseEquality() (*ir.Node, error) {
	return p.parseBinaryLevel([]string{"==", "!="}, p.parseRelational)
}

func (p *Parser) parseRelational() (*ir.Node, error) {
	return p.parseBinaryLevel([]string{"<", ">", "<=", ">="}, p.parseAdditive)
}

func (p *Parser) parseAdditive() (*ir.Node, error) {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *Parser) parseMultiplicative() (*ir.Node, error) {
	return p.parseBinaryLevel([]string{"*", "/", "%"}, p.parseUnary)
}

// parseBinaryLevel implements one left-associative precedence level: parse
// a sub-expression with next, then fold in as many matching operators as
// appear.
func (p *Parser) parseBinaryLevel(ops []string, next func() (*ir.Node, error)) (*ir.Node, error) {
	lhs, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := ""
		for _, op := range ops {
			if p.atText(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return lhs, nil
		}
		tok := p.advance()
		rhs, err := next()
		if err != nil {
			return nil, err
		}
		lhs = ir.NewBinary(tok, matched, lhs, rhs)
	}
}

func (p *Parser) parseUnary() (*ir.Node, error) {
	for _, op := range []string{"&", "*", "-", "!"} {
		if p.atText(op) {
			tok := p.advance()
			operand, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			return ir.NewUnary(tok, op, operand), nil
		}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (*ir.Node, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.atText("."):
			tok := p.advance()
			nameTok, err := p.expectKind("identifier")
			if err != nil {
				return nil, err
			}
			expr = &ir.Node{Typ: ir.NMemberAccess, Tok: tok, Data: nameTok.Text, Op: ir.OpDot, Children: []*ir.Node{expr}}
		case p.atText("->"):
			tok := p.advance()
			nameTok, err := p.expectKind("identifier")
			if err != nil {
				return nil, err
			}
			expr = &ir.Node{Typ: ir.NMemberAccess, Tok: tok, Data: nameTok.Text, Op: ir.OpArrow, Children: []*ir.Node{expr}}
		case p.atText("("):
			tok := p.advance()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			children := append([]*ir.Node{expr}, args...)
			expr = &ir.Node{Typ: ir.NCall, Tok: tok, Children: children}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (*ir.Node, error) {
	tok := p.cur()
	switch {
	case p.at("integer"):
		p.advance()
		v, _ := strconv.Atoi(tok.Text)
		return ir.NewIntLiteral(tok, v), nil
	case p.at("hex"):
		p.advance()
		v, _ := strconv.ParseInt(tok.Text[2:], 16, 64)
		return ir.NewIntLiteral(tok, int(v)), nil
	case p.at("char"):
		p.advance()
		v := 0
		if len(tok.Text) > 0 {
			v = int(tok.Text[0])
		}
		return ir.NewIntLiteral(tok, v), nil
	case p.at("float"):
		p.advance()
		v, _ := strconv.ParseFloat(tok.Text, 64)
		return &ir.Node{Typ: ir.NFloatLiteral, Tok: tok, Data: v}, nil
	case p.at("string"):
		p.advance()
		label := fmt.Sprintf("str%d", p.pos)
		return &ir.Node{Typ: ir.NStringLiteral, Tok: tok, Data: ir.StringLit{Label: label, Value: tok.Text}}, nil
	case p.atText("true"):
		p.advance()
		return ir.NewIntLiteral(tok, 1), nil
	case p.atText("false"):
		p.advance()
		return ir.NewIntLiteral(tok, 0), nil
	case p.atText("("):
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(")"); err != nil {
			return nil, err
		}
		return e, nil
	case p.atText("new"):
		return p.parseNew()
	case p.atText("sizeof"):
		return p.parseSizeof()
	case p.at("identifier"):
		return p.parseIdentifierExpr()
	default:
		return nil, fmt.Errorf("unexpected token %q at line %d", tok.Text, tok.Line)
	}
}

func (p *Parser) parseNew() (*ir.Node, error) {
	tok, err := p.expectText("new")
	if err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.NNew, Tok: tok, Type: typ, Children: args}, nil
}

func (p *Parser) parseSizeof() (*ir.Node, error) {
	tok, err := p.expectText("sizeof")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	return &ir.Node{Typ: ir.NSizeof, Tok: tok, Type: typ}, nil
}

// parseIdentifierExpr disambiguates a bare variable reference from a
// "Qualifier::name" reference (an enum member or a namespaced free
// function); a generic instantiation never appears here since "new" and
// "sizeof" are the only expression contexts that parse a type.
func (p *Parser) parseIdentifierExpr() (*ir.Node, error) {
	tok, err := p.expectKind("identifier")
	if err != nil {
		return nil, err
	}
	if p.atText("::") {
		p.advance()
		nameTok, err := p.expectKind("identifier")
		if err != nil {
			return nil, err
		}
		return &ir.Node{Typ: ir.NQualifiedAccess, Tok: tok, Data: ir.QualifiedName{Qualifier: tok.Text, Name: nameTok.Text}}, nil
	}
	return &ir.Node{Typ: ir.NVariable, Tok: tok, Data: tok.Text}, nil
}
