package ir

import "fmt"

// FunctionResolver resolves free-function calls, method calls (walking
// inheritance), constructor overloads, destructor lookup and enum-member
// lookup.
type FunctionResolver struct {
	ctx      *Context
	freeFns  []*FunctionDeclaration // Every top-level function across the program, owner == "".
}

func newFunctionResolver(ctx *Context) *FunctionResolver {
	r := &FunctionResolver{ctx: ctx}
	for _, u := range ctx.Repo.Program().CompilationUnits {
		for _, f := range u.Funcs {
			if !f.IsMethod() {
				r.freeFns = append(r.freeFns, f)
			}
		}
	}
	return r
}

// FreeFunction resolves an unqualified free-function call by name. Exactly
// one of {currentNamespace, each non-alias using's namespace, global} must
// have a matching function; more than one match is ambiguous.
func (r *FunctionResolver) FreeFunction(name, currentNamespace string, unit *CompilationUnit) (*FunctionDeclaration, error) {
	var candidates []*FunctionDeclaration
	seenNS := make(map[string]bool)
	tryNS := func(ns string) {
		if seenNS[ns] {
			return
		}
		seenNS[ns] = true
		if f := r.findInNamespace(name, ns); f != nil {
			candidates = append(candidates, f)
		}
	}
	tryNS(currentNamespace)
	for _, u := range unit.Usings {
		if !u.IsAlias() {
			tryNS(u.Namespace)
		}
	}
	tryNS("")

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("undefined function %q", name)
	case 1:
		return candidates[0], nil
	default:
		return nil, fmt.Errorf("ambiguous call to function %q", name)
	}
}

// FreeFunctionQualified resolves a namespace- or alias-qualified free
// function call, e.g. "ns::fn" or "alias::fn".
func (r *FunctionResolver) FreeFunctionQualified(qualifier, name string, unit *CompilationUnit) (*FunctionDeclaration, error) {
	ns := qualifier
	for _, u := range unit.Usings {
		if u.IsAlias() && u.Alias == qualifier {
			ns = u.Namespace
			break
		}
	}
	if f := r.findInNamespace(name, ns); f != nil {
		return f, nil
	}
	return nil, fmt.Errorf("undefined function %q::%q", qualifier, name)
}

func (r *FunctionResolver) findInNamespace(name, ns string) *FunctionDeclaration {
	for _, f := range r.freeFns {
		if f.Name == name && f.Namespace == ns {
			return f
		}
	}
	return nil
}

// Method walks the inheritance chain of ownerFQN upward, returning the
// first method named name found and the FQN of the struct that declares
// it.
func (r *FunctionResolver) Method(ownerFQN FQN, name string) (*FunctionDeclaration, FQN, error) {
	for fqn := ownerFQN.Base(); fqn != ""; {
		s, ok := r.ctx.Repo.Struct(FQN(fqn))
		if !ok {
			return nil, "", fmt.Errorf("compiler error: unknown struct %s", fqn)
		}
		for _, m := range s.Methods {
			if m.Name == name {
				return m, FQN(fqn), nil
			}
		}
		if s.BaseName == nil {
			break
		}
		baseFQN, err := r.ctx.Resolver.Resolve(s.BaseName, s.Namespace, s.Unit)
		if err != nil {
			return nil, "", err
		}
		fqn = string(baseFQN)
	}
	return nil, "", fmt.Errorf("undefined method %q on %s", name, ownerFQN)
}

// Member walks the inheritance chain of ownerFQN upward, returning the
// first declared member variable named name and the FQN of the struct
// that declares it. Unlike MemoryLayoutManager's flattened offset list,
// this retains the member's declared access level for enforcement.
func (r *FunctionResolver) Member(ownerFQN FQN, name string) (*MemberVariable, FQN, error) {
	for fqn := ownerFQN.Base(); fqn != ""; {
		s, ok := r.ctx.Repo.Struct(FQN(fqn))
		if !ok {
			return nil, "", fmt.Errorf("compiler error: unknown struct %s", fqn)
		}
		for _, mv := range s.Members {
			if mv.Name == name {
				return mv, FQN(fqn), nil
			}
		}
		if s.BaseName == nil {
			break
		}
		baseFQN, err := r.ctx.Resolver.Resolve(s.BaseName, s.Namespace, s.Unit)
		if err != nil {
			return nil, "", err
		}
		fqn = string(baseFQN)
	}
	return nil, "", fmt.Errorf("undefined member %q on %s", name, ownerFQN)
}

// Constructor selects the first constructor of structFQN whose parameter
// count matches len(argFQNs) and whose declared parameter types are each
// compatible with the supplied argument FQN under the same implicit
// conversions permitted for assignment. This permits int->T* for any
// pointer parameter, matching allocator-return idioms.
func (r *FunctionResolver) Constructor(structFQN FQN, argFQNs []FQN) (*ConstructorDeclaration, error) {
	s, ok := r.ctx.Repo.Struct(FQN(structFQN.Base()))
	if !ok {
		return nil, fmt.Errorf("compiler error: unknown struct %s", structFQN)
	}
	for _, c := range s.Constructors {
		if len(c.Parameters) != len(argFQNs) {
			continue
		}
		matched := true
		for i, p := range c.Parameters {
			paramFQN, err := r.ctx.Resolver.Resolve(p.Type, s.Namespace, s.Unit)
			if err != nil {
				return nil, err
			}
			if !ConversionAllowed(paramFQN, argFQNs[i]) {
				matched = false
				break
			}
		}
		if matched {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no matching constructor for %s(%v)", structFQN, argFQNs)
}

// Destructor returns the sole destructor declared on structFQN, if any.
// Inheritance is never walked: a derived class with no destructor of its
// own does not implicitly use its base's.
func (r *FunctionResolver) Destructor(structFQN FQN) (*DestructorDeclaration, bool) {
	s, ok := r.ctx.Repo.Struct(FQN(structFQN.Base()))
	if !ok || len(s.Destructors) == 0 {
		return nil, false
	}
	return s.Destructors[0], true
}

// EnumValue resolves an unqualified or "Enum::Member"-qualified reference
// to an enum member: qualified uses enum-type resolution; unqualified scans
// current namespace, then non-alias usings, then global namespace enums for
// a member of that name, first match wins.
func (r *FunctionResolver) EnumValue(enumQualifier, member, currentNamespace string, unit *CompilationUnit) (int, FQN, bool) {
	if enumQualifier != "" {
		fqn, ok := r.ctx.Resolver.ResolveEnum(enumQualifier, currentNamespace, unit)
		if !ok {
			return 0, "", false
		}
		e, _ := r.ctx.Repo.Enum(fqn)
		for _, m := range e.Members {
			if m.Name == member {
				return m.Value, fqn, true
			}
		}
		return 0, "", false
	}

	scan := func(ns string) (int, FQN, bool) {
		for _, u := range r.ctx.Repo.Program().CompilationUnits {
			for _, e := range u.Enums {
				if e.Namespace != ns {
					continue
				}
				for _, m := range e.Members {
					if m.Name == member {
						return m.Value, e.FQN(), true
					}
				}
			}
		}
		return 0, "", false
	}

	if currentNamespace != "" {
		if v, fqn, ok := scan(currentNamespace); ok {
			return v, fqn, true
		}
	}
	for _, u := range unit.Usings {
		if !u.IsAlias() {
			if v, fqn, ok := scan(u.Namespace); ok {
				return v, fqn, true
			}
		}
	}
	return scan("")
}

// ConversionAllowed reports whether an argument of type arg may be passed
// (or assigned) where param is declared: identical FQNs are always
// allowed, plus three permissive implicit conversions preserved rather than
// silently tightened: int -> char, int -> any pointer type, and
// int -> float.
func ConversionAllowed(param, arg FQN) bool {
	if param == arg {
		return true
	}
	if param == Char && arg == Int {
		return true
	}
	if param.IsPointer() && arg == Int {
		return true
	}
	if param == Float && arg == Int {
		return true
	}
	return false
}
