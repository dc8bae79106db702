package sema

import "ctildec/ir"

// analyzeExpr dispatches on n's NodeType, resolves its FQN, records it in
// n.ResolvedFQN for the code generator, and returns it. A sub-expression
// that could not be typed reports ir.Unknown, which this function treats
// as already-diagnosed and never double-reports.
func (a *Analyzer) analyzeExpr(actx *AnalysisContext, n *ir.Node) ir.FQN {
	fqn := a.analyzeExprUncached(actx, n)
	n.ResolvedFQN = fqn
	return fqn
}

func (a *Analyzer) analyzeExprUncached(actx *AnalysisContext, n *ir.Node) ir.FQN {
	switch n.Typ {
	case ir.NIntLiteral:
		return ir.Int
	case ir.NFloatLiteral:
		return ir.Float
	case ir.NStringLiteral:
		return ir.Char.Pointer()
	case ir.NSizeof:
		return ir.Int
	case ir.NVariable:
		return a.analyzeVariable(actx, n)
	case ir.NMemberAccess:
		return a.analyzeMemberAccess(actx, n)
	case ir.NUnary:
		return a.analyzeUnary(actx, n)
	case ir.NBinary:
		return a.analyzeBinary(actx, n)
	case ir.NAssignment:
		return a.analyzeAssignment(actx, n)
	case ir.NCall:
		return a.analyzeCall(actx, n)
	case ir.NQualifiedAccess:
		return a.analyzeQualifiedAccess(actx, n)
	case ir.NNew:
		return a.analyzeNew(actx, n)
	case ir.NInitializerList:
		return ir.Unknown
	default:
		return a.errorf(n, "compiler error: %s is not an expression", n.Typ)
	}
}

func (a *Analyzer) analyzeVariable(actx *AnalysisContext, n *ir.Node) ir.FQN {
	name := n.Data.(string)
	if s, ok := actx.Symbols.TryGet(name); ok {
		actx.Symbols.MarkRead(name)
		return s.Type
	}
	if _, _, ok := a.Ctx.Funcs.EnumValue("", name, actx.Namespace, actx.Unit); ok {
		return ir.Int
	}
	if actx.OwnerStruct != "" {
		if mv, ownerFQN, err := a.Ctx.Funcs.Member(actx.OwnerStruct, name); err == nil {
			if !a.checkAccess(n, actx, mv.Access, ownerFQN) {
				return ir.Unknown
			}
			fqn, err := a.Ctx.Resolver.Resolve(mv.Type, actx.Namespace, actx.Unit)
			if err != nil {
				return a.errorf(n, "%s", err)
			}
			return fqn
		}
	}
	return a.errorf(n, "undefined variable %q", name)
}

func (a *Analyzer) analyzeMemberAccess(actx *AnalysisContext, n *ir.Node) ir.FQN {
	objFQN := a.analyzeExpr(actx, n.Children[0])
	if objFQN == ir.Unknown {
		return ir.Unknown
	}
	base := ir.FQN(objFQN.Base())
	name := n.Data.(string)
	mv, ownerFQN, err := a.Ctx.Funcs.Member(base, name)
	if err != nil {
		return a.errorf(n, "no member %q on %s", name, base)
	}
	if !a.checkAccess(n, actx, mv.Access, ownerFQN) {
		return ir.Unknown
	}
	fqn, err := a.Ctx.Resolver.Resolve(mv.Type, actx.Namespace, actx.Unit)
	if err != nil {
		return a.errorf(n, "%s", err)
	}
	return fqn
}

func (a *Analyzer) checkAccess(n *ir.Node, actx *AnalysisContext, access ir.Access, ownerFQN ir.FQN) bool {
	if access == ir.Public {
		return true
	}
	if actx.OwnerStruct == ownerFQN {
		return true
	}
	a.errorf(n, "private member access not permitted here")
	return false
}

func (a *Analyzer) analyzeUnary(actx *AnalysisContext, n *ir.Node) ir.FQN {
	op := n.Data.(string)
	operand := n.Children[0]
	opFQN := a.analyzeExpr(actx, operand)
	if opFQN == ir.Unknown {
		return ir.Unknown
	}
	switch op {
	case "&":
		return opFQN.Pointer()
	case "*":
		if !opFQN.IsPointer() {
			return a.errorf(n, "cannot dereference non-pointer type %s", opFQN)
		}
		return opFQN.Deref()
	default:
		return opFQN
	}
}

func (a *Analyzer) analyzeBinary(actx *AnalysisContext, n *ir.Node) ir.FQN {
	op := n.Data.(string)
	lhs := a.analyzeExpr(actx, n.Children[0])
	rhs := a.analyzeExpr(actx, n.Children[1])
	if lhs == ir.Unknown || rhs == ir.Unknown {
		return ir.Unknown
	}

	switch {
	case lhs.IsPointer() && !rhs.IsPointer() && (op == "+" || op == "-"):
		return lhs
	case !lhs.IsPointer() && rhs.IsPointer() && op == "+":
		return rhs
	case lhs.IsPointer() && rhs.IsPointer():
		if op == "-" {
			return ir.Int
		}
		if isComparison(op) {
			return ir.Int
		}
	}

	if !lhs.IsPointer() && !rhs.IsPointer() {
		if _, ok := a.Ctx.Repo.Struct(ir.FQN(lhs.Base())); ok {
			if op != "+" {
				return a.errorf(n, "operator %q is not defined for struct type %s", op, lhs)
			}
			method, _, err := a.Ctx.Funcs.Method(lhs, "operator_+")
			if err != nil {
				return a.errorf(n, "struct %s has no operator_+ overload", lhs)
			}
			fqn, err := a.Ctx.Resolver.Resolve(method.ReturnType, actx.Namespace, actx.Unit)
			if err != nil {
				return a.errorf(n, "%s", err)
			}
			return fqn
		}
	}

	return ir.Int
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

func (a *Analyzer) analyzeAssignment(actx *AnalysisContext, n *ir.Node) ir.FQN {
	lhs := a.analyzeExpr(actx, n.Children[0])
	rhs := a.analyzeExpr(actx, n.Children[1])
	if lhs == ir.Unknown {
		return ir.Unknown
	}
	if rhs != ir.Unknown && !a.assignable(lhs, rhs, n.Children[1]) {
		a.errorf(n, "cannot assign value of type %s to variable of type %s", rhs, lhs)
	}
	return lhs
}

func (a *Analyzer) analyzeCall(actx *AnalysisContext, n *ir.Node) ir.FQN {
	callee := n.Children[0]
	args := n.Children[1:]

	switch callee.Typ {
	case ir.NMemberAccess:
		objFQN := a.analyzeExpr(actx, callee.Children[0])
		if objFQN == ir.Unknown {
			return ir.Unknown
		}
		method, ownerFQN, err := a.Ctx.Funcs.Method(objFQN, callee.Data.(string))
		if err != nil {
			return a.errorf(n, "undefined method %q on %s", callee.Data.(string), objFQN)
		}
		if !a.checkAccess(n, actx, method.Access, ownerFQN) {
			return ir.Unknown
		}
		return a.checkCallArgs(actx, n, method.Parameters, args, method.ReturnType, method.Namespace, method.Unit)
	case ir.NVariable:
		f, err := a.Ctx.Funcs.FreeFunction(callee.Data.(string), actx.Namespace, actx.Unit)
		if err != nil {
			return a.errorf(n, "%s", err)
		}
		return a.checkCallArgs(actx, n, f.Parameters, args, f.ReturnType, f.Namespace, f.Unit)
	case ir.NQualifiedAccess:
		q := callee.Data.(ir.QualifiedName)
		f, err := a.Ctx.Funcs.FreeFunctionQualified(q.Qualifier, q.Name, actx.Unit)
		if err != nil {
			return a.errorf(n, "%s", err)
		}
		return a.checkCallArgs(actx, n, f.Parameters, args, f.ReturnType, f.Namespace, f.Unit)
	default:
		return a.errorf(n, "compiler error: unsupported call target %s", callee.Typ)
	}
}

func (a *Analyzer) checkCallArgs(actx *AnalysisContext, n *ir.Node, params []*ir.Parameter, args []*ir.Node, returnType *ir.TypeNode, ns string, unit *ir.CompilationUnit) ir.FQN {
	if len(params) != len(args) {
		a.errorf(n, "expected %d argument(s), got %d", len(params), len(args))
	}
	for i, arg := range args {
		argFQN := a.analyzeExpr(actx, arg)
		if i >= len(params) || argFQN == ir.Unknown {
			continue
		}
		paramFQN, err := a.Ctx.Resolver.Resolve(params[i].Type, ns, unit)
		if err != nil {
			continue
		}
		if !a.assignable(paramFQN, argFQN, arg) {
			a.errorf(arg, "cannot pass value of type %s as parameter of type %s", argFQN, paramFQN)
		}
	}
	fqn, err := a.Ctx.Resolver.Resolve(returnType, ns, unit)
	if err != nil {
		return a.errorf(n, "%s", err)
	}
	return fqn
}

func (a *Analyzer) analyzeQualifiedAccess(actx *AnalysisContext, n *ir.Node) ir.FQN {
	q := n.Data.(ir.QualifiedName)
	if _, _, ok := a.Ctx.Funcs.EnumValue(q.Qualifier, q.Name, actx.Namespace, actx.Unit); ok {
		return ir.Int
	}
	if _, err := a.Ctx.Funcs.FreeFunctionQualified(q.Qualifier, q.Name, actx.Unit); err == nil {
		return ir.Void.Pointer()
	}
	return a.errorf(n, "undefined qualified reference %s::%s", q.Qualifier, q.Name)
}

func (a *Analyzer) analyzeNew(actx *AnalysisContext, n *ir.Node) ir.FQN {
	fqn, err := a.Ctx.Resolver.Resolve(n.Type, actx.Namespace, actx.Unit)
	if err != nil {
		return a.errorf(n, "%s", err)
	}
	if _, ok := a.Ctx.Repo.Struct(ir.FQN(fqn.Base())); !ok {
		return a.errorf(n, "new requires a struct type, got %s", fqn)
	}
	argFQNs := make([]ir.FQN, len(n.Children))
	for i, arg := range n.Children {
		argFQNs[i] = a.analyzeExpr(actx, arg)
	}
	if _, err := a.Ctx.Funcs.Constructor(fqn, argFQNs); err != nil {
		a.errorf(n, "%s", err)
	}
	return fqn.Pointer()
}
