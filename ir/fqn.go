package ir

import "strings"

// FQN is a fully qualified name of the form "ns1::ns2::Name" with pointer
// levels encoded as trailing '*' characters, e.g. "game::Entity*".
type FQN string

// sep is the namespace separator used throughout fully qualified names.
const sep = "::"

// Join qualifies name under namespace ns. An empty namespace yields the
// bare name unqualified.
func Join(ns, name string) FQN {
	if ns == "" {
		return FQN(name)
	}
	return FQN(ns + sep + name)
}

// Namespace returns the namespace portion of the FQN, or "" if the FQN is
// unqualified (global scope).
func (f FQN) Namespace() string {
	s := f.Base()
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return ""
	}
	return s[:i]
}

// Name returns the unqualified tail segment of the FQN, with pointer
// markers stripped.
func (f FQN) Name() string {
	s := f.Base()
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s
	}
	return s[i+len(sep):]
}

// Pointer returns a new FQN with one additional level of pointer
// indirection appended.
func (f FQN) Pointer() FQN {
	return f + "*"
}

// Deref strips one level of pointer indirection. It is a no-op on a
// non-pointer FQN.
func (f FQN) Deref() FQN {
	if f.PointerDepth() == 0 {
		return f
	}
	return f[:len(f)-1]
}

// PointerDepth counts trailing '*' characters.
func (f FQN) PointerDepth() int {
	s := string(f)
	n := 0
	for n < len(s) && s[len(s)-1-n] == '*' {
		n++
	}
	return n
}

// Base strips all trailing pointer markers, returning the underlying
// struct/enum/primitive name.
func (f FQN) Base() string {
	s := string(f)
	return strings.TrimRight(s, "*")
}

// IsPointer reports whether f has at least one level of pointer indirection.
func (f FQN) IsPointer() bool {
	return f.PointerDepth() > 0
}

// Sanitize returns f with "::" replaced by "__", suitable for use inside an
// assembler label. Pointer markers become the letter 'p' repeated once per
// level, matching the Monomorphizer's mangling rule for pointer arguments.
func (f FQN) Sanitize() string {
	depth := f.PointerDepth()
	base := f.Base()
	base = strings.ReplaceAll(base, sep, "__")
	return base + strings.Repeat("p", depth)
}

// Primitive FQNs recognised by the type system without struct/enum lookup.
const (
	Int   FQN = "int"
	Char  FQN = "char"
	Void  FQN = "void"
	Bool  FQN = "bool"
	Float FQN = "float"
)

// Unknown is the sentinel FQN the analyzer returns for an expression whose
// type could not be determined after a diagnostic was already recorded,
// so that the error does not cascade into spurious follow-on diagnostics.
const Unknown FQN = "unknown"

// IsPrimitive reports whether base (a non-pointer FQN) names a built-in
// scalar type or an unresolved generic parameter (see IsGenericParam)
// rather than a struct or enum.
func IsPrimitive(base FQN) bool {
	switch base {
	case Int, Char, Void, Bool, Float:
		return true
	}
	return len(base) == 1 && base[0] >= 'A' && base[0] <= 'Z'
}

// IsGenericParam reports whether base is a single uppercase letter, the
// convention generic structs use for unresolved type parameters.
func IsGenericParam(base FQN) bool {
	return len(base) == 1 && base[0] >= 'A' && base[0] <= 'Z'
}
