package codegen

import (
	"fmt"

	"ctildec/ir"
)

// byteSized reports whether fqn occupies a single byte in memory and so
// needs a movzx rather than a plain 4-byte mov when loaded into eax.
func byteSized(fqn ir.FQN) bool {
	return !fqn.IsPointer() && (fqn.Base() == string(ir.Char) || fqn.Base() == string(ir.Bool))
}

// genLValue emits code that leaves the address of n in eax. Valid only for
// Variable, MemberAccess and unary "*" nodes; anything else is a compiler
// bug since the analyzer never lets a non-addressable expression reach
// here (e.g. as an assignment target).
func (g *Gen) genLValue(fg *FuncGen, n *ir.Node) {
	switch n.Typ {
	case ir.NVariable:
		g.lvalueVariable(fg, n)
	case ir.NMemberAccess:
		g.lvalueMember(fg, n)
	case ir.NUnary:
		if n.Data.(string) != "*" {
			panic(fmt.Sprintf("compiler error: unary %q is not addressable", n.Data))
		}
		g.genRValue(fg, n.Children[0])
	default:
		panic(fmt.Sprintf("compiler error: %s is not addressable", n.Typ))
	}
}

func (g *Gen) lvalueVariable(fg *FuncGen, n *ir.Node) {
	name := n.Data.(string)
	if s, ok := fg.Symbols.TryGet(name); ok {
		g.W.Ins2("lea", "eax", fmt.Sprintf("[ebp%+d]", s.Offset))
		return
	}
	// Unqualified reference to an implicit this->member.
	mv, ownerFQN, err := g.Ctx.Funcs.Member(fg.Owner.FQN(), name)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	member, ok, err := g.Ctx.Layout.MemberInfo(ownerFQN, mv.Name)
	if err != nil || !ok {
		panic(fmt.Sprintf("compiler error: member %q missing from layout of %s", name, ownerFQN))
	}
	g.W.Ins2("mov", "eax", "[ebp+8]") // this.
	if member.Offset != 0 {
		g.W.Ins2("add", "eax", fmt.Sprintf("%d", member.Offset))
	}
}

func (g *Gen) lvalueMember(fg *FuncGen, n *ir.Node) {
	name := n.Data.(string)
	if n.Op == ir.OpArrow {
		g.genRValue(fg, n.Children[0])
	} else {
		g.genLValue(fg, n.Children[0])
	}
	objFQN := n.Children[0].ResolvedFQN
	member, ok, err := g.Ctx.Layout.MemberInfo(ir.FQN(objFQN.Base()), name)
	if err != nil || !ok {
		panic(fmt.Sprintf("compiler error: member %q missing from layout of %s", name, objFQN))
	}
	if member.Offset != 0 {
		g.W.Ins2("add", "eax", fmt.Sprintf("%d", member.Offset))
	}
}

// genRValue emits code that leaves the value of n in eax: a scalar value
// for primitives, pointers and enum constants, or the object's address for
// a struct-typed expression (the caller copies it where a value is
// actually needed).
func (g *Gen) genRValue(fg *FuncGen, n *ir.Node) {
	switch n.Typ {
	case ir.NIntLiteral:
		g.W.Ins2("mov", "eax", fmt.Sprintf("%d", n.Data.(int)))
	case ir.NFloatLiteral:
		g.W.Comment("float constant %v truncated to integer representation", n.Data)
		g.W.Ins2("mov", "eax", fmt.Sprintf("%d", int(n.Data.(float64))))
	case ir.NStringLiteral:
		lit := n.Data.(ir.StringLit)
		g.W.Ins2("mov", "eax", lit.Label)
	case ir.NSizeof:
		fqn, err := g.Ctx.Resolver.Resolve(n.Type, fg.Namespace, fg.Unit)
		if err != nil {
			panic(fmt.Sprintf("compiler error: %v", err))
		}
		sz, err := g.Ctx.Layout.SizeOf(fqn)
		if err != nil {
			panic(fmt.Sprintf("compiler error: %v", err))
		}
		g.W.Ins2("mov", "eax", fmt.Sprintf("%d", sz))
	case ir.NVariable:
		g.genVariableRead(fg, n)
	case ir.NMemberAccess:
		g.genMemberRead(fg, n)
	case ir.NUnary:
		g.genUnary(fg, n)
	case ir.NBinary:
		g.genBinary(fg, n)
	case ir.NAssignment:
		g.genAssignment(fg, n)
	case ir.NCall:
		g.genCall(fg, n)
	case ir.NQualifiedAccess:
		g.genQualifiedAccess(fg, n)
	case ir.NNew:
		g.genNew(fg, n)
	default:
		panic(fmt.Sprintf("compiler error: %s is not an expression", n.Typ))
	}
}

func (g *Gen) genVariableRead(fg *FuncGen, n *ir.Node) {
	name := n.Data.(string)
	if _, ok := fg.Symbols.TryGet(name); !ok {
		isMember := false
		if fg.Owner != nil {
			if _, _, err := g.Ctx.Funcs.Member(fg.Owner.FQN(), name); err == nil {
				isMember = true
			}
		}
		if !isMember {
			if v, _, ok := g.Ctx.Funcs.EnumValue("", name, fg.Namespace, fg.Unit); ok {
				g.W.Ins2("mov", "eax", fmt.Sprintf("%d", v))
				return
			}
		}
	}
	fqn := n.ResolvedFQN
	g.genLValue(fg, n)
	if !isStructValue(g.Ctx, fqn) {
		g.loadFromEax(fqn)
	}
}

func (g *Gen) genMemberRead(fg *FuncGen, n *ir.Node) {
	fqn := n.ResolvedFQN
	if isStructValue(g.Ctx, fqn) {
		g.genLValue(fg, n)
		return
	}
	g.genLValue(fg, n)
	g.loadFromEax(fqn)
}

// loadFromEax replaces the address currently in eax with the value it
// points to, sized according to fqn.
func (g *Gen) loadFromEax(fqn ir.FQN) {
	if byteSized(fqn) {
		g.W.Ins2("movzx", "eax", "byte [eax]")
		return
	}
	g.W.Ins2("mov", "eax", "[eax]")
}

// isStructValue reports whether fqn names a (non-pointer) struct type,
// whose "value" in this generator's convention is always its address.
func isStructValue(ctx *ir.Context, fqn ir.FQN) bool {
	if fqn.IsPointer() {
		return false
	}
	_, ok := ctx.Repo.Struct(ir.FQN(fqn.Base()))
	return ok
}

func (g *Gen) genUnary(fg *FuncGen, n *ir.Node) {
	op := n.Data.(string)
	switch op {
	case "&":
		g.genLValue(fg, n.Children[0])
	case "*":
		g.genRValue(fg, n.Children[0])
		g.loadFromEax(n.ResolvedFQN)
	case "-":
		g.genRValue(fg, n.Children[0])
		g.W.Ins1("neg", "eax")
	case "!":
		g.genRValue(fg, n.Children[0])
		g.W.Ins2("cmp", "eax", "0")
		g.W.Ins1("sete", "al")
		g.W.Ins2("movzx", "eax", "al")
	default:
		g.genRValue(fg, n.Children[0])
	}
}

func (g *Gen) genBinary(fg *FuncGen, n *ir.Node) {
	op := n.Data.(string)
	lhs, rhs := n.Children[0], n.Children[1]
	lhsFQN, rhsFQN := lhs.ResolvedFQN, rhsFQN(rhs)

	if !lhsFQN.IsPointer() && !rhsFQN.IsPointer() && isStructValue(g.Ctx, lhsFQN) {
		g.genStructOperatorPlus(fg, n, lhs, rhs)
		return
	}

	g.genRValue(fg, lhs)
	g.W.Ins1("push", "eax")
	g.genRValue(fg, rhs)
	g.W.Ins2("mov", "ebx", "eax")
	g.W.Ins1("pop", "eax")

	switch {
	case lhsFQN.IsPointer() && !rhsFQN.IsPointer() && (op == "+" || op == "-"):
		elemSize, _ := g.Ctx.Layout.SizeOf(lhsFQN.Deref())
		g.W.Ins2("imul", "ebx", fmt.Sprintf("%d", elemSize))
		g.W.Ins2(arithOp(op), "eax", "ebx")
		return
	case !lhsFQN.IsPointer() && rhsFQN.IsPointer() && op == "+":
		elemSize, _ := g.Ctx.Layout.SizeOf(rhsFQN.Deref())
		g.W.Ins2("imul", "eax", fmt.Sprintf("%d", elemSize))
		g.W.Ins2("add", "eax", "ebx")
		return
	case lhsFQN.IsPointer() && rhsFQN.IsPointer() && op == "-":
		g.W.Ins2("sub", "eax", "ebx")
		elemSize, _ := g.Ctx.Layout.SizeOf(lhsFQN.Deref())
		if elemSize > 1 {
			g.W.Ins0("cdq")
			g.W.Ins2("mov", "ecx", fmt.Sprintf("%d", elemSize))
			g.W.Ins1("idiv", "ecx")
		}
		return
	}

	if isComparisonOp(op) {
		g.W.Ins2("cmp", "eax", "ebx")
		g.W.Ins1(setccFor(op), "al")
		g.W.Ins2("movzx", "eax", "al")
		return
	}

	switch op {
	case "+", "-":
		g.W.Ins2(arithOp(op), "eax", "ebx")
	case "*":
		g.W.Ins1("imul", "ebx")
	case "/":
		g.W.Ins0("cdq")
		g.W.Ins1("idiv", "ebx")
	case "%":
		g.W.Ins0("cdq")
		g.W.Ins1("idiv", "ebx")
		g.W.Ins2("mov", "eax", "edx")
	case "&&":
		g.W.Ins2("and", "eax", "ebx")
	case "||":
		g.W.Ins2("or", "eax", "ebx")
	default:
		panic(fmt.Sprintf("compiler error: unhandled binary operator %q", op))
	}
}

// rhsFQN is a tiny accessor kept separate so genBinary reads cleanly;
// ResolvedFQN is always populated by the time code generation runs.
func rhsFQN(n *ir.Node) ir.FQN { return n.ResolvedFQN }

func arithOp(op string) string {
	if op == "-" {
		return "sub"
	}
	return "add"
}

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

func setccFor(op string) string {
	switch op {
	case "==":
		return "sete"
	case "!=":
		return "setne"
	case "<":
		return "setl"
	case ">":
		return "setg"
	case "<=":
		return "setle"
	case ">=":
		return "setge"
	}
	panic("compiler error: unreachable comparison operator " + op)
}

// genStructOperatorPlus dispatches "a + b" on a struct-typed a to its
// operator_+ overload, the only user-overloadable operator.
func (g *Gen) genStructOperatorPlus(fg *FuncGen, n, lhs, rhs *ir.Node) {
	lhsFQN := lhs.ResolvedFQN
	method, _, err := g.Ctx.Funcs.Method(lhsFQN, "operator_+")
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	g.genRValue(fg, rhs)
	g.W.Ins1("push", "eax")
	g.genLValue(fg, lhs)
	g.W.Ins1("push", "eax")
	g.W.Ins1("call", FunctionLabel(method))
	g.W.Ins2("add", "esp", "8")
}

func (g *Gen) genAssignment(fg *FuncGen, n *ir.Node) {
	lhs, rhs := n.Children[0], n.Children[1]
	g.genRValue(fg, rhs)
	if isStructValue(g.Ctx, lhs.ResolvedFQN) {
		g.W.Ins2("mov", "esi", "eax")
		g.genLValue(fg, lhs)
		g.W.Ins2("mov", "edi", "eax")
		sz, _ := g.Ctx.Layout.SizeOf(lhs.ResolvedFQN)
		g.W.Ins2("mov", "ecx", fmt.Sprintf("%d", sz))
		g.W.Ins0("rep movsb")
		g.W.Ins2("mov", "eax", "edi")
		return
	}
	g.W.Ins1("push", "eax")
	g.genLValue(fg, lhs)
	g.W.Ins2("mov", "ebx", "eax")
	g.W.Ins1("pop", "eax")
	if byteSized(lhs.ResolvedFQN) {
		g.W.Ins2("mov", "byte [ebx]", "al")
	} else {
		g.W.Ins2("mov", "[ebx]", "eax")
	}
}

// genCall evaluates arguments right-to-left, pushes them, and dispatches a
// free-function, method (this pushed last) or qualified-free-function
// call.
func (g *Gen) genCall(fg *FuncGen, n *ir.Node) {
	callee := n.Children[0]
	args := n.Children[1:]

	switch callee.Typ {
	case ir.NMemberAccess:
		objFQN := callee.Children[0].ResolvedFQN
		method, ownerFQN, err := g.Ctx.Funcs.Method(objFQN, callee.Data.(string))
		if err != nil {
			panic(fmt.Sprintf("compiler error: %v", err))
		}
		for i := len(args) - 1; i >= 0; i-- {
			g.genRValue(fg, args[i])
			g.W.Ins1("push", "eax")
		}
		if callee.Op == ir.OpArrow {
			g.genRValue(fg, callee.Children[0])
		} else {
			g.genLValue(fg, callee.Children[0])
		}
		g.W.Ins1("push", "eax")
		g.emitMethodCall(ownerFQN, method)
		g.W.Ins2("add", "esp", fmt.Sprintf("%d", 4*(len(args)+1)))
	case ir.NVariable:
		f, err := g.Ctx.Funcs.FreeFunction(callee.Data.(string), fg.Namespace, fg.Unit)
		if err != nil {
			panic(fmt.Sprintf("compiler error: %v", err))
		}
		g.emitFreeCall(fg, f, args)
	case ir.NQualifiedAccess:
		q := callee.Data.(ir.QualifiedName)
		f, err := g.Ctx.Funcs.FreeFunctionQualified(q.Qualifier, q.Name, fg.Unit)
		if err != nil {
			panic(fmt.Sprintf("compiler error: %v", err))
		}
		g.emitFreeCall(fg, f, args)
	default:
		panic(fmt.Sprintf("compiler error: unsupported call target %s", callee.Typ))
	}
}

func (g *Gen) emitFreeCall(fg *FuncGen, f *ir.FunctionDeclaration, args []*ir.Node) {
	for i := len(args) - 1; i >= 0; i-- {
		g.genRValue(fg, args[i])
		g.W.Ins1("push", "eax")
	}
	if f.IsExternal() {
		g.W.Ins1("call", fmt.Sprintf("[%s]", f.Name))
	} else {
		g.W.Ins1("call", FunctionLabel(f))
	}
	if len(args) > 0 {
		g.W.Ins2("add", "esp", fmt.Sprintf("%d", 4*len(args)))
	}
}

// emitMethodCall calls the resolved method virtually through the vtable
// when it is virtual or an override, directly otherwise; the object
// pointer must already be on top of the stack.
func (g *Gen) emitMethodCall(ownerFQN ir.FQN, method *ir.FunctionDeclaration) {
	if method.IsVirtual || method.IsOverride {
		idx, err := g.Ctx.VTables.IndexOf(ownerFQN, method.Name)
		if err != nil || idx < 0 {
			panic(fmt.Sprintf("compiler error: %q has no vtable slot on %s", method.Name, ownerFQN))
		}
		g.W.Ins2("mov", "eax", "[esp]")
		g.W.Ins2("mov", "eax", "[eax]")
		g.W.Ins1("call", fmt.Sprintf("[eax+%d]", idx*4))
		return
	}
	g.W.Ins1("call", FunctionLabel(method))
}

func (g *Gen) genQualifiedAccess(fg *FuncGen, n *ir.Node) {
	q := n.Data.(ir.QualifiedName)
	if v, _, ok := g.Ctx.Funcs.EnumValue(q.Qualifier, q.Name, fg.Namespace, fg.Unit); ok {
		g.W.Ins2("mov", "eax", fmt.Sprintf("%d", v))
		return
	}
	f, err := g.Ctx.Funcs.FreeFunctionQualified(q.Qualifier, q.Name, fg.Unit)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	g.W.Ins2("mov", "eax", FunctionLabel(f))
}

// genNew allocates storage via malloc, writes the vtable pointer if the
// type is polymorphic, invokes the matching constructor, and leaves the
// new object's address in eax.
func (g *Gen) genNew(fg *FuncGen, n *ir.Node) {
	fqn, err := g.Ctx.Resolver.Resolve(n.Type, fg.Namespace, fg.Unit)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	owner := mustStruct(g.Ctx, ir.FQN(fqn.Base()))
	sz, err := g.Ctx.Layout.SizeOf(fqn)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}

	g.W.Ins1("push", fmt.Sprintf("%d", sz))
	g.W.Ins1("call", "[malloc]")
	g.W.Ins2("add", "esp", "4")
	g.W.Ins1("push", "eax") // Keep the freshly allocated address alive across the ctor call setup.

	if has, _ := g.Ctx.VTables.HasVTable(fqn); has {
		g.W.Ins2("mov", "ebx", "[esp]")
		g.W.Ins2("mov", "dword [ebx]", VTableLabel(fqn))
	}

	argFQNs := make([]ir.FQN, len(n.Children))
	for i, a := range n.Children {
		argFQNs[i] = a.ResolvedFQN
	}
	ctor, err := g.Ctx.Funcs.Constructor(fqn, argFQNs)
	if err != nil {
		panic(fmt.Sprintf("compiler error: %v", err))
	}
	for i := len(n.Children) - 1; i >= 0; i-- {
		g.genRValue(fg, n.Children[i])
		g.W.Ins1("push", "eax")
	}
	g.W.Ins2("mov", "eax", fmt.Sprintf("[esp+%d]", 4*len(n.Children)))
	g.W.Ins1("push", "eax")
	paramFQNs := make([]ir.FQN, len(ctor.Parameters))
	for i, p := range ctor.Parameters {
		paramFQNs[i], _ = g.Ctx.Resolver.Resolve(p.Type, owner.Namespace, owner.Unit)
	}
	g.W.Ins1("call", ConstructorLabel(owner, paramFQNs))
	g.W.Ins2("add", "esp", fmt.Sprintf("%d", 4*(len(n.Children)+1)))
	g.W.Ins1("pop", "eax")
}
