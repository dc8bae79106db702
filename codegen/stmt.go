package codegen

import (
	"fmt"

	"ctildec/ir"
)

// genBlock lowers every statement of a block in order. No dead-code
// elimination is performed: the analyzer already flagged unreachable
// statements as a diagnostic, and the generator trusts a clean pass.
func (g *Gen) genBlock(fg *FuncGen, n *ir.Node) {
	for _, stmt := range n.Children {
		g.genStmt(fg, stmt)
	}
}

func (g *Gen) genStmt(fg *FuncGen, n *ir.Node) {
	switch n.Typ {
	case ir.NBlock:
		g.genBlock(fg, n)
	case ir.NIf:
		g.genIf(fg, n)
	case ir.NWhile:
		g.genWhile(fg, n)
	case ir.NDeclaration:
		g.genDeclaration(fg, n)
	case ir.NExpressionStmt:
		g.genExpressionStmt(fg, n)
	case ir.NReturn:
		g.genReturn(fg, n)
	case ir.NDelete:
		g.genDelete(fg, n)
	case ir.NNullStatement:
		// Nothing to emit.
	default:
		panic(fmt.Sprintf("compiler error: %s is not a statement", n.Typ))
	}
}

// genCondition lowers a boolean expression into eax and compares against
// zero, leaving the flags ready for a jcc.
func (g *Gen) genCondition(fg *FuncGen, cond *ir.Node) {
	g.genRValue(fg, cond)
	g.W.Ins2("cmp", "eax", "0")
}

func (g *Gen) genIf(fg *FuncGen, n *ir.Node) {
	elseLabel, endLabel := g.Labels.IfPair()
	cond, thenBlock := n.Children[0], n.Children[1]
	var elseBlock *ir.Node
	if len(n.Children) > 2 {
		elseBlock = n.Children[2]
	}

	g.genCondition(fg, cond)
	g.W.Ins1("je", elseLabel)
	g.genBlock(fg, thenBlock)
	g.W.Ins1("jmp", endLabel)
	g.W.Label(elseLabel)
	if elseBlock != nil {
		g.genBlock(fg, elseBlock)
	}
	g.W.Label(endLabel)
}

func (g *Gen) genWhile(fg *FuncGen, n *ir.Node) {
	startLabel, endLabel := g.Labels.WhilePair()
	cond, body := n.Children[0], n.Children[1]

	g.W.Label(startLabel)
	g.genCondition(fg, cond)
	g.W.Ins1("je", endLabel)
	g.genBlock(fg, body)
	g.W.Ins1("jmp", startLabel)
	g.W.Label(endLabel)
}

// genReturn lowers the return value (if any) before running the function's
// destructor cleanup and frame teardown; the actual "ret" is emitted as
// part of that shared teardown, so every return site inlines its own copy
// rather than jumping to one common epilogue label.
func (g *Gen) genReturn(fg *FuncGen, n *ir.Node) {
	if len(n.Children) == 0 {
		g.emitEpilogue(fg)
		return
	}

	expr := n.Children[0]
	if fg.Symbols.HasRetPtr {
		g.genRValue(fg, expr) // Address of the struct value, per convention.
		g.W.Ins2("mov", "esi", "eax")
		retPtr, _ := fg.Symbols.TryGet("__ret_ptr")
		g.W.Ins2("mov", "edi", fmt.Sprintf("[ebp%+d]", retPtr.Offset))
		sz, err := g.Ctx.Layout.SizeOf(fg.ReturnFQN)
		if err != nil {
			panic(fmt.Sprintf("compiler error: %v", err))
		}
		g.W.Ins2("mov", "ecx", fmt.Sprintf("%d", sz))
		g.W.Ins0("rep movsb")
		g.W.Ins2("mov", "eax", fmt.Sprintf("[ebp%+d]", retPtr.Offset))
	} else {
		g.genRValue(fg, expr)
	}
	g.emitEpilogue(fg)
}

func (g *Gen) genDelete(fg *FuncGen, n *ir.Node) {
	ptr := n.Children[0]
	g.genRValue(fg, ptr)
	g.W.Ins1("push", "eax")

	fqn := ir.FQN(ptr.ResolvedFQN.Base())
	if _, ok := g.Ctx.Repo.Struct(fqn); ok {
		_, hasDtor := g.Ctx.Funcs.Destructor(fqn)
		hasVT, _ := g.Ctx.VTables.HasVTable(fqn)
		if hasDtor || hasVT {
			g.callDestructor(fqn)
		}
	}
	g.W.Ins1("call", "[free]")
	g.W.Ins2("add", "esp", "4")
}

// genExpressionStmt evaluates n's expression for its side effects alone,
// destroying and discarding a freshly constructed struct temporary rather
// than leaking it.
func (g *Gen) genExpressionStmt(fg *FuncGen, n *ir.Node) {
	expr := n.Children[0]
	g.genRValue(fg, expr)
	if expr.Typ == ir.NCall && isStructValue(g.Ctx, expr.ResolvedFQN) {
		fqn := ir.FQN(expr.ResolvedFQN.Base())
		if _, hasDtor := g.Ctx.Funcs.Destructor(fqn); hasDtor {
			g.W.Ins1("push", "eax")
			g.callDestructor(fqn)
			g.W.Ins2("add", "esp", "4")
		}
	}
}

// genDeclaration lowers a local's initializer form: an explicit
// constructor call, a brace initializer, a plain value assigned straight
// into a scalar local, a converting-constructor value initializer for a
// struct local, or (absent any initializer) a struct's default
// construction/vtable write, falling through to nothing for an
// uninitialized scalar.
func (g *Gen) genDeclaration(fg *FuncGen, n *ir.Node) {
	name := n.Data.(string)
	s, ok := fg.Symbols.TryGet(name)
	if !ok {
		panic(fmt.Sprintf("compiler error: local %q missing from symbol table", name))
	}

	switch {
	case len(n.Children) == 0:
		g.genDefaultInit(fg, s)
	case n.IsCtorCall:
		g.genExplicitCtorInit(fg, s, n.Children)
	case n.Children[0].Typ == ir.NInitializerList:
		g.genBraceInit(fg, s, n.Children[0])
	default:
		init := n.Children[0]
		if isStructValue(g.Ctx, s.Type) {
			g.genConvertingCtorInit(fg, s, init)
		} else {
			g.genRValue(fg, init)
			g.storeScalarLocal(s)
		}
	}
}

func (g *Gen) storeScalarLocal(s *ir.Symbol) {
	if byteSized(s.Type) {
		g.W.Ins2("mov", fmt.Sprintf("byte [ebp%+d]", s.Offset), "al")
	} else {
		g.W.Ins2("mov", fmt.Sprintf("[ebp%+d]", s.Offset), "eax")
	}
}

func (g *Gen) localAddr(s *ir.Symbol) {
	g.W.Ins2("lea", "eax", fmt.Sprintf("[ebp%+d]", s.Offset))
}

// genDefaultInit handles a struct local with no initializer at all: writes
// its vtable pointer if polymorphic, then calls its zero-argument
// constructor if one exists. A scalar local with no initializer is left
// with whatever garbage the stack already held, matching the language's
// uninitialized-by-default semantics.
func (g *Gen) genDefaultInit(fg *FuncGen, s *ir.Symbol) {
	if !isStructValue(g.Ctx, s.Type) {
		return
	}
	owner := mustStruct(g.Ctx, ir.FQN(s.Type.Base()))
	if has, _ := g.Ctx.VTables.HasVTable(s.Type); has {
		g.localAddr(s)
		g.W.Ins2("mov", "dword [eax]", VTableLabel(s.Type))
	}
	_, err := g.Ctx.Funcs.Constructor(s.Type, nil)
	if err != nil {
		return // No zero-argument constructor; nothing further to run.
	}
	g.localAddr(s)
	g.W.Ins1("push", "eax")
	g.W.Ins1("call", ConstructorLabel(owner, nil))
	g.W.Ins2("add", "esp", "4")
}

func (g *Gen) genExplicitCtorInit(fg *FuncGen, s *ir.Symbol, args []*ir.Node) {
	owner := mustStruct(g.Ctx, ir.FQN(s.Type.Base()))
	argFQNs := make([]ir.FQN, len(args))
	for i, a := range args {
		argFQNs[i] = a.ResolvedFQN
	}
	ctor, err := g.Ctx.Funcs.Constructor(s.Type, argFQNs)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}

	if has, _ := g.Ctx.VTables.HasVTable(s.Type); has {
		g.localAddr(s)
		g.W.Ins2("mov", "dword [eax]", VTableLabel(s.Type))
	}
	for i := len(args) - 1; i >= 0; i-- {
		g.genRValue(fg, args[i])
		g.W.Ins1("push", "eax")
	}
	g.localAddr(s)
	g.W.Ins1("push", "eax")
	paramFQNs := make([]ir.FQN, len(ctor.Parameters))
	for i, p := range ctor.Parameters {
		paramFQNs[i], _ = g.Ctx.Resolver.Resolve(p.Type, owner.Namespace, owner.Unit)
	}
	g.W.Ins1("call", ConstructorLabel(owner, paramFQNs))
	g.W.Ins2("add", "esp", fmt.Sprintf("%d", 4*(len(args)+1)))
}

// genConvertingCtorInit handles "T x = value;" by calling the one-parameter
// constructor of T that accepts value's own type S under
// FunctionResolver.Constructor's matching; a constructor T(S*) is not
// tried for a value of type S.
func (g *Gen) genConvertingCtorInit(fg *FuncGen, s *ir.Symbol, init *ir.Node) {
	g.genExplicitCtorInit(fg, s, []*ir.Node{init})
}

// genBraceInit writes each initializer value into the local's flattened
// member slots positionally, copying nested struct values with rep movsb
// and storing scalars directly.
func (g *Gen) genBraceInit(fg *FuncGen, s *ir.Symbol, list *ir.Node) {
	members, err := g.Ctx.Layout.MembersOf(s.Type)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	for i, v := range list.Children {
		if i >= len(members) {
			break
		}
		m := members[i]
		if isStructValue(g.Ctx, m.Type) {
			g.genRValue(fg, v)
			g.W.Ins2("mov", "esi", "eax")
			g.localAddr(s)
			if m.Offset != 0 {
				g.W.Ins2("add", "eax", fmt.Sprintf("%d", m.Offset))
			}
			g.W.Ins2("mov", "edi", "eax")
			sz, _ := g.Ctx.Layout.SizeOf(m.Type)
			g.W.Ins2("mov", "ecx", fmt.Sprintf("%d", sz))
			g.W.Ins0("rep movsb")
			continue
		}
		g.genRValue(fg, v)
		g.W.Ins2("mov", "ebx", "eax")
		g.localAddr(s)
		if m.Offset != 0 {
			g.W.Ins2("add", "eax", fmt.Sprintf("%d", m.Offset))
		}
		if byteSized(m.Type) {
			g.W.Ins2("mov", "byte [eax]", "bl")
		} else {
			g.W.Ins2("mov", "[eax]", "ebx")
		}
	}
}
