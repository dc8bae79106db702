package ir

import "strings"

// TypeNodeKind differentiates the three shapes a TypeNode can take.
type TypeNodeKind int

const (
	// TypeSimple is a bare or namespace-qualified identifier, e.g. "int" or "ns::Foo".
	TypeSimple TypeNodeKind = iota
	// TypePointer wraps an inner TypeNode with one level of pointer indirection.
	TypePointer
	// TypeGeneric is a generic instantiation, e.g. "List<int>".
	TypeGeneric
)

// TypeNode is a value-like description of a type expression as written in
// source. Two TypeNodes built from equal structure are semantically equal;
// TypeNode is never mutated in place after construction, so it can be shared
// by reference or duplicated freely.
type TypeNode struct {
	Kind  TypeNodeKind
	Name  Token       // Valid for TypeSimple and TypeGeneric (base name token).
	Inner *TypeNode   // Valid for TypePointer.
	Args  []*TypeNode // Valid for TypeGeneric: the type arguments.
}

// Simple constructs a TypeSimple node from an identifier token.
func Simple(name Token) *TypeNode {
	return &TypeNode{Kind: TypeSimple, Name: name}
}

// Pointer constructs a TypePointer node wrapping inner.
func Pointer(inner *TypeNode) *TypeNode {
	return &TypeNode{Kind: TypePointer, Inner: inner}
}

// Generic constructs a TypeGeneric node for a base name and its type arguments.
func Generic(name Token, args []*TypeNode) *TypeNode {
	return &TypeNode{Kind: TypeGeneric, Name: name, Args: args}
}

// BaseName returns the bare identifier text this type node resolves around,
// stripping pointer wrapping.
func (t *TypeNode) BaseName() string {
	switch t.Kind {
	case TypePointer:
		return t.Inner.BaseName()
	default:
		return t.Name.Text
	}
}

// PointerDepth counts the number of TypePointer levels wrapping the node.
func (t *TypeNode) PointerDepth() int {
	n := 0
	for c := t; c.Kind == TypePointer; c = c.Inner {
		n++
	}
	return n
}

// Equal reports whether two TypeNodes describe the same type expression
// structurally (by name/shape, not by token position).
func (t *TypeNode) Equal(o *TypeNode) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TypeSimple:
		return t.Name.Text == o.Name.Text
	case TypePointer:
		return t.Inner.Equal(o.Inner)
	case TypeGeneric:
		if t.Name.Text != o.Name.Text || len(t.Args) != len(o.Args) {
			return false
		}
		for i, a := range t.Args {
			if !a.Equal(o.Args[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders a TypeNode back to source-like syntax, used for diagnostics.
func (t *TypeNode) String() string {
	if t == nil {
		return "<nil type>"
	}
	switch t.Kind {
	case TypePointer:
		return t.Inner.String() + "*"
	case TypeGeneric:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.String()
		}
		return t.Name.Text + "<" + strings.Join(args, ", ") + ">"
	default:
		return t.Name.Text
	}
}

// Clone deep-copies a TypeNode. Used by the Monomorphizer when substituting
// type parameters into a cloned struct subtree.
func (t *TypeNode) Clone() *TypeNode {
	if t == nil {
		return nil
	}
	c := &TypeNode{Kind: t.Kind, Name: t.Name}
	if t.Inner != nil {
		c.Inner = t.Inner.Clone()
	}
	if t.Args != nil {
		c.Args = make([]*TypeNode, len(t.Args))
		for i, a := range t.Args {
			c.Args[i] = a.Clone()
		}
	}
	return c
}
