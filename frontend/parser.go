// Package frontend turns preprocessed source text into the ir.Program
// tree: a single-threaded Rob-Pike-style lexer followed by a hand-rolled
// recursive-descent parser. No external grammar tool is used — there is
// no goyacc grammar for this token set in the retrieval pack, and parsing
// shape itself is not the interesting part of this compiler.
package frontend

import (
	"fmt"
	"strconv"
	"strings"

	"ctildec/ir"
)

// Parser consumes a flat token stream produced by Lex and builds one
// CompilationUnit, tracking the current namespace and #import library
// context as it goes.
type Parser struct {
	toks    []ir.Token
	pos     int
	imports []string
	curLib  string
}

// NewParser wraps a token stream for parsing.
func NewParser(toks []ir.Token) *Parser {
	return &Parser{toks: toks}
}

// ParseFile tokenizes and parses one preprocessed source file into a
// CompilationUnit, returning the set of libraries its "#import" directives
// named.
func ParseFile(filePath, src string) (*ir.CompilationUnit, []string, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, nil, err
	}
	p := NewParser(toks)
	unit, err := p.Parse(filePath)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range unit.Funcs {
		ir.LinkParents(f.Body, nil)
		ir.FoldConstants(f.Body)
	}
	for _, s := range unit.Structs {
		for _, m := range s.Methods {
			ir.LinkParents(m.Body, nil)
			ir.FoldConstants(m.Body)
		}
		for _, c := range s.Constructors {
			ir.LinkParents(c.Body, nil)
			ir.FoldConstants(c.Body)
		}
		for _, d := range s.Destructors {
			ir.LinkParents(d.Body, nil)
			ir.FoldConstants(d.Body)
		}
	}
	return unit, p.imports, nil
}

func (p *Parser) cur() ir.Token {
	if p.pos >= len(p.toks) {
		return ir.Token{Kind: "eof"}
	}
	return p.toks[p.pos]
}

func (p *Parser) at(kind string) bool { return p.cur().Kind == kind }

func (p *Parser) atText(text string) bool {
	t := p.cur()
	return (t.Kind == "keyword" || t.Kind == "punctuator" || t.Kind == "operator") && t.Text == text
}

func (p *Parser) advance() ir.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) expectText(text string) (ir.Token, error) {
	if !p.atText(text) {
		return ir.Token{}, fmt.Errorf("expected %q, got %s at line %d", text, p.cur().Text, p.cur().Line)
	}
	return p.advance(), nil
}

func (p *Parser) expectKind(kind string) (ir.Token, error) {
	if !p.at(kind) {
		return ir.Token{}, fmt.Errorf("expected %s, got %q at line %d", kind, p.cur().Text, p.cur().Line)
	}
	return p.advance(), nil
}

// Parse consumes the whole token stream, returning the resulting
// CompilationUnit.
func (p *Parser) Parse(filePath string) (*ir.CompilationUnit, error) {
	unit := &ir.CompilationUnit{FilePath: filePath}
	ns := ""
	for !p.at("eof") {
		if err := p.parseTopLevel(unit, &ns); err != nil {
			return nil, err
		}
	}
	return unit, nil
}

func (p *Parser) parseTopLevel(unit *ir.CompilationUnit, ns *string) error {
	switch {
	case p.at("directive"):
		p.parseDirective()
		return nil
	case p.atText("using"):
		return p.parseUsing(unit)
	case p.atText("namespace"):
		return p.parseNamespace(unit, ns)
	case p.atText("struct"):
		s, err := p.parseStruct(unit, *ns)
		if err != nil {
			return err
		}
		unit.Structs = append(unit.Structs, s)
		return nil
	case p.atText("enum"):
		e, err := p.parseEnum(unit, *ns)
		if err != nil {
			return err
		}
		unit.Enums = append(unit.Enums, e)
		return nil
	default:
		f, err := p.parseFreeFunction(unit, *ns)
		if err != nil {
			return err
		}
		unit.Funcs = append(unit.Funcs, f)
		return nil
	}
}

// parseDirective handles a "#import \"lib.dll\";" line, recorded both as a
// program-level import and as the library new extern declarations pick up
// until the next "#import".
func (p *Parser) parseDirective() {
	tok := p.advance() // directive
	text := strings.TrimSpace(strings.TrimPrefix(tok.Text, "#"))
	if strings.HasPrefix(text, "import") {
		lib := strings.Trim(strings.TrimSpace(strings.TrimPrefix(text, "import")), `";`)
		p.imports = append(p.imports, lib)
		p.curLib = lib
	}
}

func (p *Parser) parseUsing(unit *ir.CompilationUnit) error {
	p.advance() // using
	name, err := p.parseQualifiedIdentText()
	if err != nil {
		return err
	}
	alias := ""
	if p.atText("as") {
		p.advance()
		tok, err := p.expectKind("identifier")
		if err != nil {
			return err
		}
		alias = tok.Text
	}
	if _, err := p.expectText(";"); err != nil {
		return err
	}
	unit.Usings = append(unit.Usings, &ir.UsingDirective{Namespace: name, Alias: alias})
	return nil
}

func (p *Parser) parseNamespace(unit *ir.CompilationUnit, ns *string) error {
	p.advance() // namespace
	name, err := p.parseQualifiedIdentText()
	if err != nil {
		return err
	}
	if _, err := p.expectText("{"); err != nil {
		return err
	}
	prev := *ns
	*ns = name
	for !p.atText("}") {
		if p.at("eof") {
			return fmt.Errorf("unterminated namespace %q", name)
		}
		if err := p.parseTopLevel(unit, ns); err != nil {
			return err
		}
	}
	p.advance() // }
	*ns = prev
	return nil
}

// parseQualifiedIdentText consumes Identifier ("::" Identifier)* and
// returns the joined "a::b::c" text.
func (p *Parser) parseQualifiedIdentText() (string, error) {
	tok, err := p.expectKind("identifier")
	if err != nil {
		return "", err
	}
	parts := []string{tok.Text}
	for p.atText("::") {
		p.advance()
		t, err := p.expectKind("identifier")
		if err != nil {
			return "", err
		}
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, "::"), nil
}

// ---- Structs ----

func (p *Parser) parseStruct(unit *ir.CompilationUnit, ns string) (*ir.StructDefinition, error) {
	tok, err := p.expectText("struct")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind("identifier")
	if err != nil {
		return nil, err
	}
	s := &ir.StructDefinition{Name: nameTok.Text, Namespace: ns, Unit: unit, Tok: tok}

	if p.atText("<") {
		p.advance()
		for {
			t, err := p.expectKind("identifier")
			if err != nil {
				return nil, err
			}
			s.GenericParameters = append(s.GenericParameters, t.Text)
			if p.atText(",") {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectText(">"); err != nil {
			return nil, err
		}
	}

	if p.atText(":") {
		p.advance()
		baseName, err := p.parseQualifiedIdentText()
		if err != nil {
			return nil, err
		}
		s.BaseName = ir.Simple(ir.Token{Kind: "identifier", Text: baseName, Line: tok.Line, Col: tok.Col})
	}

	if _, err := p.expectText("{"); err != nil {
		return nil, err
	}

	access := ir.Public
	for !p.atText("}") {
		if p.at("eof") {
			return nil, fmt.Errorf("unterminated struct %q", s.Name)
		}
		switch {
		case p.atText("public"):
			p.advance()
			if _, err := p.expectText(":"); err != nil {
				return nil, err
			}
			access = ir.Public
		case p.atText("private"):
			p.advance()
			if _, err := p.expectText(":"); err != nil {
				return nil, err
			}
			access = ir.Private
		case p.cur().Text == s.Name && p.at("identifier"):
			if err := p.parseCtorOrDtor(s, ns, unit, access); err != nil {
				return nil, err
			}
		case p.atText("~"):
			if err := p.parseCtorOrDtor(s, ns, unit, access); err != nil {
				return nil, err
			}
		default:
			if err := p.parseMemberOrMethod(s, ns, unit, access); err != nil {
				return nil, err
			}
		}
	}
	p.advance() // }
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Parser) parseCtorOrDtor(s *ir.StructDefinition, ns string, unit *ir.CompilationUnit, access ir.Access) error {
	if p.atText("~") {
		tok := p.advance()
		if _, err := p.expectKind("identifier"); err != nil {
			return err
		}
		if _, err := p.expectText("("); err != nil {
			return err
		}
		if _, err := p.expectText(")"); err != nil {
			return err
		}
		isVirtual := false
		if p.atText("virtual") {
			p.advance()
			isVirtual = true
		}
		body, err := p.parseBlock()
		if err != nil {
			return err
		}
		s.Destructors = append(s.Destructors, &ir.DestructorDeclaration{
			Owner: s.Name, Namespace: ns, Access: access, IsVirtual: isVirtual, Body: body, Unit: unit, Tok: tok,
		})
		return nil
	}

	tok := p.advance() // struct-name identifier
	params, err := p.parseParamList()
	if err != nil {
		return err
	}
	var base *ir.CallArgs
	if p.atText(":") {
		p.advance()
		if _, err := p.expectKind("identifier"); err != nil { // base(...)
			return err
		}
		if _, err := p.expectText("("); err != nil {
			return err
		}
		args, err := p.parseArgList()
		if err != nil {
			return err
		}
		base = &ir.CallArgs{Args: args}
	}
	body, err := p.parseBlock()
	if err != nil {
		return err
	}
	s.Constructors = append(s.Constructors, &ir.ConstructorDeclaration{
		Owner: s.Name, Namespace: ns, Access: access, Parameters: params, BaseInitializer: base, Body: body, Unit: unit, Tok: tok,
	})
	return nil
}

func (p *Parser) parseMemberOrMethod(s *ir.StructDefinition, ns string, unit *ir.CompilationUnit, access ir.Access) error {
	isVirtual, isOverride := false, false
	for {
		switch {
		case p.atText("virtual"):
			p.advance()
			isVirtual = true
			continue
		case p.atText("override"):
			p.advance()
			isOverride = true
			continue
		}
		break
	}
	isConst := false
	if p.atText("const") {
		p.advance()
		isConst = true
	}
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	nameTok, err := p.expectKind("identifier")
	if err != nil {
		return err
	}
	if p.atText("(") {
		params, err := p.parseParamList()
		if err != nil {
			return err
		}
		body, err := p.parseMethodBody()
		if err != nil {
			return err
		}
		s.Methods = append(s.Methods, &ir.FunctionDeclaration{
			ReturnType: typ, Name: nameTok.Text, Parameters: params, Body: body,
			OwnerStruct: s.Name, Access: access, IsVirtual: isVirtual, IsOverride: isOverride,
			Namespace: ns, Unit: unit, Tok: nameTok,
		})
		return nil
	}
	if _, err := p.expectText(";"); err != nil {
		return err
	}
	s.Members = append(s.Members, &ir.MemberVariable{IsConst: isConst, Type: typ, Name: nameTok.Text, Access: access, Tok: nameTok})
	return nil
}

// parseMethodBody parses a method's brace-delimited body. Every method
// must have one; a ";" in its place is a parse error.
func (p *Parser) parseMethodBody() (*ir.Node, error) {
	return p.parseBlock()
}

// ---- Enums ----

func (p *Parser) parseEnum(unit *ir.CompilationUnit, ns string) (*ir.EnumDefinition, error) {
	p.advance() // enum
	nameTok, err := p.expectKind("identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("{"); err != nil {
		return nil, err
	}
	e := &ir.EnumDefinition{Name: nameTok.Text, Namespace: ns, Unit: unit}
	next := 0
	for !p.atText("}") {
		mt, err := p.expectKind("identifier")
		if err != nil {
			return nil, err
		}
		val := next
		if p.atText("=") {
			p.advance()
			vt, err := p.expectKind("integer")
			if err != nil {
				return nil, err
			}
			val, _ = strconv.Atoi(vt.Text)
		}
		e.Members = append(e.Members, ir.EnumMember{Name: mt.Text, Value: val})
		next = val + 1
		if p.atText(",") {
			p.advance()
		}
	}
	p.advance() // }
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return e, nil
}

// ---- Free functions ----

func (p *Parser) parseFreeFunction(unit *ir.CompilationUnit, ns string) (*ir.FunctionDeclaration, error) {
	isExtern := false
	if p.atText("extern") {
		p.advance()
		isExtern = true
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expectKind("identifier")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}

	f := &ir.FunctionDeclaration{ReturnType: typ, Name: nameTok.Text, Parameters: params, Namespace: ns, Unit: unit, Tok: nameTok}
	if isExtern {
		if _, err := p.expectText(";"); err != nil {
			return nil, err
		}
		f.Library = p.curLib
		return f, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	f.Body = body
	return f, nil
}

func (p *Parser) parseParamList() ([]*ir.Parameter, error) {
	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	var params []*ir.Parameter
	for !p.atText(")") {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expectKind("identifier")
		if err != nil {
			return nil, err
		}
		params = append(params, &ir.Parameter{Name: nameTok.Text, Type: typ, Tok: nameTok})
		if p.atText(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseArgList() ([]*ir.Node, error) {
	var args []*ir.Node
	for !p.atText(")") {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.atText(",") {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	return args, nil
}

// ---- Types ----

func (p *Parser) parseType() (*ir.TypeNode, error) {
	if p.atText("const") {
		p.advance()
	}
	nameTok, err := p.expectKind("identifier")
	if err == nil {
	} else if kw := p.cur(); kw.Kind == "keyword" {
		nameTok = p.advance()
	} else {
		return nil, fmt.Errorf("expected type name, got %q at line %d", p.cur().Text, p.cur().Line)
	}
	parts := []string{nameTok.Text}
	for p.atText("::") {
		p.advance()
		t, err := p.expectKind("identifier")
		if err != nil {
			return nil, err
		}
		parts = append(parts, t.Text)
	}
	nameTok.Text = strings.Join(parts, "::")

	var typ *ir.TypeNode
	if p.atText("<") {
		p.advance()
		var args []*ir.TypeNode
		for {
			a, err := p.parseType()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if p.atText(",") {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expectText(">"); err != nil {
			return nil, err
		}
		typ = ir.Generic(nameTok, args)
	} else {
		typ = ir.Simple(nameTok)
	}
	for p.atText("*") {
		p.advance()
		typ = ir.Pointer(typ)
	}
	return typ, nil
}

// looksLikeDeclaration speculatively parses a type plus a following
// identifier, rewinding regardless of outcome; a local declaration and a
// plain expression statement both start with an identifier, so the parser
// tries a type first and only commits if the declaration shape holds all
// the way to the variable name.
func (p *Parser) looksLikeDeclaration() bool {
	save := p.pos
	defer func() { p.pos = save }()

	if p.atText("const") {
		p.advance()
	}
	if !p.at("identifier") && p.cur().Kind != "keyword" {
		return false
	}
	if _, err := p.parseType(); err != nil {
		return false
	}
	return p.at("identifier")
}
