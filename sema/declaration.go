package sema

import "ctildec/ir"

// analyzeDeclaration resolves a local's declared type, type-checks its
// initializer form, and enforces that a const local is always
// initialized.
func (a *Analyzer) analyzeDeclaration(actx *AnalysisContext, n *ir.Node) {
	name := n.Data.(string)
	declFQN, err := a.Ctx.Resolver.Resolve(n.Type, actx.Namespace, actx.Unit)
	if err != nil {
		a.errorf(n, "%s", err)
		return
	}

	if len(n.Children) == 0 {
		if n.IsConst {
			a.errorf(n, "const local %q requires an initializer", name)
		}
		return
	}

	if n.IsCtorCall {
		argFQNs := make([]ir.FQN, len(n.Children))
		for i, arg := range n.Children {
			argFQNs[i] = a.analyzeExpr(actx, arg)
		}
		if _, err := a.Ctx.Funcs.Constructor(declFQN, argFQNs); err != nil {
			a.errorf(n, "%s", err)
		}
		return
	}

	init := n.Children[0]
	if init.Typ == ir.NInitializerList {
		a.analyzeInitializerList(actx, declFQN, init)
		return
	}

	initFQN := a.analyzeExpr(actx, init)
	if initFQN == ir.Unknown {
		return
	}
	if !a.assignable(declFQN, initFQN, init) {
		a.errorf(n, "cannot initialize %q of type %s with value of type %s", name, declFQN, initFQN)
	}
}

// analyzeInitializerList type-checks a brace initializer against the
// flattened member list of declFQN, binding each value positionally.
func (a *Analyzer) analyzeInitializerList(actx *AnalysisContext, declFQN ir.FQN, list *ir.Node) {
	members, err := a.Ctx.Layout.MembersOf(declFQN)
	if err != nil {
		a.errorf(list, "%s", err)
		return
	}
	if len(members) != len(list.Children) {
		a.errorf(list, "initializer has %d value(s), struct %s has %d member(s)", len(list.Children), declFQN, len(members))
	}
	for i, v := range list.Children {
		valFQN := a.analyzeExpr(actx, v)
		if i >= len(members) || valFQN == ir.Unknown {
			continue
		}
		if !a.assignable(members[i].Type, valFQN, v) {
			a.errorf(v, "cannot initialize member %q of type %s with value of type %s", members[i].Name, members[i].Type, valFQN)
		}
	}
}
