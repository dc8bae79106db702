package codegen

import (
	"fmt"

	"ctildec/ir"
)

func (g *Gen) buildSymbols(ownerFQN ir.FQN, params []*ir.Parameter, returnFQN ir.FQN, body *ir.Node, unit *ir.CompilationUnit, namespace string) *ir.SymbolTable {
	st, err := ir.BuildSymbolTable(g.Ctx, ownerFQN, params, returnFQN, body, unit, namespace)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	return st
}

func (g *Gen) emitFreeFunction(f *ir.FunctionDeclaration) {
	returnFQN, err := g.Ctx.Resolver.Resolve(f.ReturnType, f.Namespace, f.Unit)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	st := g.buildSymbols("", f.Parameters, returnFQN, f.Body, f.Unit, f.Namespace)
	fg := &FuncGen{Symbols: st, Namespace: f.Namespace, Unit: f.Unit, ReturnFQN: returnFQN}
	g.emitBody(FunctionLabel(f), fg, f.Body)
}

func (g *Gen) emitMethod(owner *ir.StructDefinition, m *ir.FunctionDeclaration) {
	if m.Body == nil {
		return
	}
	returnFQN, err := g.Ctx.Resolver.Resolve(m.ReturnType, owner.Namespace, owner.Unit)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	st := g.buildSymbols(owner.FQN(), m.Parameters, returnFQN, m.Body, owner.Unit, owner.Namespace)
	fg := &FuncGen{Symbols: st, Owner: owner, Namespace: owner.Namespace, Unit: owner.Unit, ReturnFQN: returnFQN}
	g.emitBody(FunctionLabel(m), fg, m.Body)
}

func (g *Gen) emitConstructor(owner *ir.StructDefinition, c *ir.ConstructorDeclaration) {
	st := g.buildSymbols(owner.FQN(), c.Parameters, "", c.Body, owner.Unit, owner.Namespace)
	fg := &FuncGen{Symbols: st, Owner: owner, Namespace: owner.Namespace, Unit: owner.Unit, ReturnFQN: ir.Void}

	paramFQNs := make([]ir.FQN, len(c.Parameters))
	for i, p := range c.Parameters {
		paramFQNs[i], _ = g.Ctx.Resolver.Resolve(p.Type, owner.Namespace, owner.Unit)
	}
	label := ConstructorLabel(owner, paramFQNs)

	g.W.WriteString("\n")
	g.W.Label(label)
	g.emitPrologue(fg)

	if c.BaseInitializer != nil && owner.BaseName != nil {
		g.emitBaseInit(fg, owner, c.BaseInitializer)
	}
	if c.Body != nil {
		g.genBlock(fg, c.Body)
	}

	g.emitEpilogue(fg)
}

func (g *Gen) emitBaseInit(fg *FuncGen, owner *ir.StructDefinition, args *ir.CallArgs) {
	baseFQN, err := g.Ctx.Resolver.Resolve(owner.BaseName, owner.Namespace, owner.Unit)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	argFQNs := make([]ir.FQN, len(args.Args))
	for i, a := range args.Args {
		argFQNs[i] = a.ResolvedFQN
	}
	ctor, err := g.Ctx.Funcs.Constructor(baseFQN, argFQNs)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	base := mustStruct(g.Ctx, baseFQN)
	for i := len(args.Args) - 1; i >= 0; i-- {
		g.genRValue(fg, args.Args[i])
		g.W.Ins1("push", "eax")
	}
	g.W.Ins2("mov", "eax", "[ebp+8]") // this.
	g.W.Ins1("push", "eax")
	paramFQNs := make([]ir.FQN, len(ctor.Parameters))
	for i, p := range ctor.Parameters {
		paramFQNs[i], _ = g.Ctx.Resolver.Resolve(p.Type, base.Namespace, base.Unit)
	}
	g.W.Ins1("call", ConstructorLabel(base, paramFQNs))
	g.W.Ins2("add", "esp", fmt.Sprintf("%d", 4*(len(args.Args)+1)))
}

func (g *Gen) emitDestructor(owner *ir.StructDefinition, d *ir.DestructorDeclaration) {
	st := g.buildSymbols(owner.FQN(), nil, "", d.Body, owner.Unit, owner.Namespace)
	fg := &FuncGen{Symbols: st, Owner: owner, Namespace: owner.Namespace, Unit: owner.Unit, ReturnFQN: ir.Void}
	g.emitBody(DestructorLabel(owner), fg, d.Body)
}

func (g *Gen) emitBody(label string, fg *FuncGen, body *ir.Node) {
	g.W.WriteString("\n")
	g.W.Label(label)
	g.emitPrologue(fg)
	if body != nil {
		g.genBlock(fg, body)
	}
	g.emitEpilogue(fg)
}

// emitPrologue writes the standard cdecl frame setup plus local storage.
func (g *Gen) emitPrologue(fg *FuncGen) {
	g.W.Ins1("push", "ebp")
	g.W.Ins2("mov", "ebp", "esp")
	g.W.Ins1("push", "ebx")
	g.W.Ins1("push", "esi")
	g.W.Ins1("push", "edi")
	if fg.Symbols.TotalLocalSize > 0 {
		g.W.Ins2("sub", "esp", fmt.Sprintf("%d", fg.Symbols.TotalLocalSize))
	}
}

// emitEpilogue runs destructible locals in reverse declaration order, then
// tears down the frame and returns.
func (g *Gen) emitEpilogue(fg *FuncGen) {
	locals := fg.Symbols.DestructibleLocals()
	for i := len(locals) - 1; i >= 0; i-- {
		s := locals[i]
		g.W.Ins2("lea", "eax", fmt.Sprintf("[ebp%+d]", s.Offset))
		g.W.Ins1("push", "eax")
		g.callDestructor(ir.FQN(s.Type.Base()))
		g.W.Ins2("add", "esp", "4")
	}
	g.W.Ins1("pop", "edi")
	g.W.Ins1("pop", "esi")
	g.W.Ins1("pop", "ebx")
	g.W.Ins2("mov", "esp", "ebp")
	g.W.Ins1("pop", "ebp")
	g.W.Ins0("ret")
}

// callDestructor emits a call to fqn's destructor, assuming the object
// pointer is already on top of the stack: indirect through vtable slot 0
// if the type is polymorphic, direct otherwise. The non-polymorphic path
// does not check that a destructor exists; callers pass only types that
// have one (DestructibleLocals never lists a type without one).
func (g *Gen) callDestructor(fqn ir.FQN) {
	hasVT, _ := g.Ctx.VTables.HasVTable(fqn)
	if hasVT {
		g.W.Ins2("mov", "eax", "[esp]")
		g.W.Ins2("mov", "eax", "[eax]")
		g.W.Ins1("call", "[eax]")
		return
	}
	owner := mustStruct(g.Ctx, fqn)
	g.W.Ins1("call", DestructorLabel(owner))
}
