package ir

import (
	"fmt"
	"strings"
)

// TypeResolver translates a TypeNode, under a given current namespace and
// compilation unit, to a fully qualified name.
type TypeResolver struct {
	ctx *Context
}

func newTypeResolver(ctx *Context) *TypeResolver {
	return &TypeResolver{ctx: ctx}
}

// Resolve translates t to an FQN under (currentNamespace, unit). Pointer
// and generic forms wrap or delegate; a generic instantiation is handed to
// the Monomorphizer and the resulting concrete FQN is returned.
func (r *TypeResolver) Resolve(t *TypeNode, currentNamespace string, unit *CompilationUnit) (FQN, error) {
	if t == nil {
		return "", fmt.Errorf("compiler error: nil type node")
	}
	switch t.Kind {
	case TypePointer:
		inner, err := r.Resolve(t.Inner, currentNamespace, unit)
		if err != nil {
			return "", err
		}
		return inner.Pointer(), nil
	case TypeGeneric:
		return r.ctx.Mono.Instantiate(t, currentNamespace, unit)
	default:
		return r.resolveSimple(t.Name.Text, currentNamespace, unit, t.Name)
	}
}

// resolveSimple resolves a bare or qualified identifier to a type's fully
// qualified name: primitives and generic parameters short-circuit, a
// qualified name resolves its namespace through alias usings, and an
// unqualified name is searched across the current namespace, each
// non-alias using, and the global namespace, erroring on zero or multiple
// candidates.
func (r *TypeResolver) resolveSimple(name, currentNamespace string, unit *CompilationUnit, tok Token) (FQN, error) {
	if isPrimitiveName(name) || IsGenericParam(FQN(name)) {
		return FQN(name), nil
	}

	if strings.Contains(name, sep) {
		i := strings.LastIndex(name, sep)
		qualifier, tail := name[:i], name[i+len(sep):]
		if ns, ok := r.lookupAlias(qualifier, unit); ok {
			qualifier = ns
		}
		fqn := Join(qualifier, tail)
		if _, ok := r.ctx.Repo.Struct(fqn); ok {
			return fqn, nil
		}
		if _, ok := r.ctx.Repo.Enum(fqn); ok {
			return fqn, nil
		}
		return "", fmt.Errorf("unknown type %q at line %d:%d", name, tok.Line, tok.Col)
	}

	var candidates []FQN
	seen := make(map[FQN]bool)
	tryAdd := func(ns string) {
		fqn := Join(ns, name)
		if seen[fqn] {
			return
		}
		if _, ok := r.ctx.Repo.Struct(fqn); ok {
			seen[fqn] = true
			candidates = append(candidates, fqn)
			return
		}
		if _, ok := r.ctx.Repo.Enum(fqn); ok {
			seen[fqn] = true
			candidates = append(candidates, fqn)
		}
	}

	tryAdd(currentNamespace)
	for _, u := range unit.Usings {
		if !u.IsAlias() {
			tryAdd(u.Namespace)
		}
	}
	tryAdd("")

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("unknown type %q at line %d:%d", name, tok.Line, tok.Col)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("ambiguous type %q at line %d:%d", name, tok.Line, tok.Col)
	}
}

// lookupAlias returns the namespace a using-alias points at, if qualifier
// names one declared in unit.
func (r *TypeResolver) lookupAlias(qualifier string, unit *CompilationUnit) (string, bool) {
	for _, u := range unit.Usings {
		if u.IsAlias() && u.Alias == qualifier {
			return u.Namespace, true
		}
	}
	return "", false
}

// ResolveEnum is the enum-only analogue of Resolve: enums may legitimately
// be absent, so it returns ok=false rather than an error in that case.
func (r *TypeResolver) ResolveEnum(name, currentNamespace string, unit *CompilationUnit) (FQN, bool) {
	if strings.Contains(name, sep) {
		i := strings.LastIndex(name, sep)
		qualifier, tail := name[:i], name[i+len(sep):]
		if ns, ok := r.lookupAlias(qualifier, unit); ok {
			qualifier = ns
		}
		fqn := Join(qualifier, tail)
		if _, ok := r.ctx.Repo.Enum(fqn); ok {
			return fqn, true
		}
		return "", false
	}
	if currentNamespace != "" {
		if _, ok := r.ctx.Repo.Enum(Join(currentNamespace, name)); ok {
			return Join(currentNamespace, name), true
		}
	}
	for _, u := range unit.Usings {
		if !u.IsAlias() {
			if _, ok := r.ctx.Repo.Enum(Join(u.Namespace, name)); ok {
				return Join(u.Namespace, name), true
			}
		}
	}
	if _, ok := r.ctx.Repo.Enum(FQN(name)); ok {
		return FQN(name), true
	}
	return "", false
}

// isPrimitiveName reports whether name is a built-in scalar keyword.
func isPrimitiveName(name string) bool {
	switch name {
	case "int", "char", "void", "bool", "float":
		return true
	}
	return false
}
