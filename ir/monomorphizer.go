package ir

import (
	"fmt"
	"strings"
)

// Monomorphizer materializes concrete struct definitions from generic
// struct templates by cloning the template subtree and substituting type
// parameters, caching instances by a mangled name so that two requests for
// the same instantiation return the identical struct.
type Monomorphizer struct {
	ctx   *Context
	cache map[string]*StructDefinition // mangled name -> monomorphized struct.
}

func newMonomorphizer(ctx *Context) *Monomorphizer {
	return &Monomorphizer{ctx: ctx, cache: make(map[string]*StructDefinition)}
}

// Instantiate resolves a generic instantiation TypeNode (e.g. "List<int>")
// to the FQN of its monomorphized struct, cloning and registering a new
// struct the first time a given (template, arguments) pair is requested.
func (m *Monomorphizer) Instantiate(t *TypeNode, currentNamespace string, unit *CompilationUnit) (FQN, error) {
	if t.Kind != TypeGeneric {
		return "", fmt.Errorf("compiler error: Instantiate called on non-generic type node")
	}

	templateFQN, err := m.ctx.Resolver.resolveSimple(t.Name.Text, currentNamespace, unit, t.Name)
	if err != nil {
		return "", err
	}
	template, ok := m.ctx.Repo.Struct(templateFQN)
	if !ok {
		return "", fmt.Errorf("unknown generic struct %q at line %d:%d", t.Name.Text, t.Name.Line, t.Name.Col)
	}
	if !template.IsTemplate() {
		return "", fmt.Errorf("%q is not a generic struct", templateFQN)
	}
	if len(t.Args) != len(template.GenericParameters) {
		return "", fmt.Errorf("generic struct %q expects %d type argument(s), got %d at line %d:%d",
			templateFQN, len(template.GenericParameters), len(t.Args), t.Name.Line, t.Name.Col)
	}

	argFQNs := make([]FQN, len(t.Args))
	for i, a := range t.Args {
		fqn, err := m.ctx.Resolver.Resolve(a, currentNamespace, unit)
		if err != nil {
			return "", err
		}
		argFQNs[i] = fqn
	}

	mangled := Mangle(templateFQN, argFQNs)
	if existing, ok := m.cache[mangled]; ok {
		return existing.FQN(), nil
	}

	subst := make(map[string]*TypeNode, len(template.GenericParameters))
	for i, p := range template.GenericParameters {
		subst[p] = t.Args[i]
	}

	clone := cloneStructForMono(template, mangled, subst)
	if err := m.ctx.Repo.RegisterMonomorphized(clone); err != nil {
		return "", err
	}
	m.cache[mangled] = clone
	return clone.FQN(), nil
}

// Mangle computes the instance name for a generic instantiation from the
// template's FQN and its resolved argument FQNs: the template FQN with
// "::" replaced by "__", then "__" and the similarly sanitized argument
// FQNs joined by "__" (pointer arguments get the trailing suffix letter
// 'p' per level).
func Mangle(templateFQN FQN, args []FQN) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Sanitize()
	}
	return templateFQN.Sanitize() + "__" + strings.Join(parts, "__")
}

// cloneStructForMono deep-clones template, renaming it to mangledName,
// clearing its generic-parameter list and namespace, and substituting
// every TypeNode whose simple identifier names a type parameter with the
// corresponding argument TypeNode throughout members, methods (including
// bodies), constructors and destructors.
func cloneStructForMono(template *StructDefinition, mangledName string, subst map[string]*TypeNode) *StructDefinition {
	clone := &StructDefinition{
		Name:      mangledName,
		Namespace: "",
		BaseName:  substituteType(template.BaseName.Clone(), subst),
		Unit:      template.Unit,
		Tok:       template.Tok,
	}

	for _, mv := range template.Members {
		clone.Members = append(clone.Members, &MemberVariable{
			IsConst: mv.IsConst,
			Type:    substituteType(mv.Type.Clone(), subst),
			Name:    mv.Name,
			Access:  mv.Access,
			Tok:     mv.Tok,
		})
	}

	for _, fn := range template.Methods {
		nf := &FunctionDeclaration{
			ReturnType:  substituteType(fn.ReturnType.Clone(), subst),
			Name:        fn.Name,
			OwnerStruct: mangledName,
			Access:      fn.Access,
			IsVirtual:   fn.IsVirtual,
			IsOverride:  fn.IsOverride,
			Namespace:   "",
			Unit:        fn.Unit,
			Tok:         fn.Tok,
		}
		nf.Parameters = substituteParams(fn.Parameters, subst)
		if fn.Body != nil {
			nf.Body = fn.Body.Clone()
			substituteNodeTypes(nf.Body, subst)
			LinkParents(nf.Body, nil)
		}
		clone.Methods = append(clone.Methods, nf)
	}

	for _, ct := range template.Constructors {
		nc := &ConstructorDeclaration{
			Owner:     mangledName,
			Namespace: "",
			Access:    ct.Access,
			Unit:      ct.Unit,
			Tok:       ct.Tok,
		}
		nc.Parameters = substituteParams(ct.Parameters, subst)
		if ct.BaseInitializer != nil {
			nc.BaseInitializer = &CallArgs{}
			for _, a := range ct.BaseInitializer.Args {
				ca := a.Clone()
				substituteNodeTypes(ca, subst)
				LinkParents(ca, nil)
				nc.BaseInitializer.Args = append(nc.BaseInitializer.Args, ca)
			}
		}
		if ct.Body != nil {
			nc.Body = ct.Body.Clone()
			substituteNodeTypes(nc.Body, subst)
			LinkParents(nc.Body, nil)
		}
		clone.Constructors = append(clone.Constructors, nc)
	}

	for _, dt := range template.Destructors {
		nd := &DestructorDeclaration{
			Owner:     mangledName,
			Namespace: "",
			Access:    dt.Access,
			IsVirtual: dt.IsVirtual,
			Unit:      dt.Unit,
			Tok:       dt.Tok,
		}
		if dt.Body != nil {
			nd.Body = dt.Body.Clone()
			substituteNodeTypes(nd.Body, subst)
			LinkParents(nd.Body, nil)
		}
		clone.Destructors = append(clone.Destructors, nd)
	}

	return clone
}

func substituteParams(params []*Parameter, subst map[string]*TypeNode) []*Parameter {
	out := make([]*Parameter, len(params))
	for i, p := range params {
		out[i] = &Parameter{Name: p.Name, Tok: p.Tok, Type: substituteType(p.Type.Clone(), subst)}
	}
	return out
}

// substituteType replaces every TypeSimple node in t whose name matches a
// key of subst with a clone of the mapped TypeNode. t is mutated in place
// and is assumed to already be a private clone.
func substituteType(t *TypeNode, subst map[string]*TypeNode) *TypeNode {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case TypeSimple:
		if repl, ok := subst[t.Name.Text]; ok {
			return repl.Clone()
		}
		return t
	case TypePointer:
		t.Inner = substituteType(t.Inner, subst)
		return t
	case TypeGeneric:
		for i, a := range t.Args {
			t.Args[i] = substituteType(a, subst)
		}
		return t
	}
	return t
}

// substituteNodeTypes walks a statement/expression tree substituting type
// parameters inside every embedded TypeNode (NDeclaration, NNew, NSizeof).
func substituteNodeTypes(n *Node, subst map[string]*TypeNode) {
	Walk(n, func(c *Node) {
		if c.Type != nil {
			c.Type = substituteType(c.Type, subst)
		}
	})
}
