package codegen

import (
	"strings"

	"ctildec/ir"
)

// labelParts joins non-empty parts with '_', replacing any "::" namespace
// separator inside a part with "__" first, and collapsing empty segments
// so that e.g. a free function in the global namespace never produces a
// label with a doubled separator.
func labelParts(parts ...string) string {
	var out []string
	for _, p := range parts {
		p = strings.ReplaceAll(p, "::", "__")
		if p != "" {
			out = append(out, p)
		}
	}
	return "_" + strings.Join(out, "_")
}

// FunctionLabel computes the emission label for a free function or
// method: "_<ns>_<owner>_<name>", with "main" always emitted as "_main"
// regardless of namespace, per the entry-point contract the start stub
// depends on.
func FunctionLabel(f *ir.FunctionDeclaration) string {
	if f.Name == "main" && f.OwnerStruct == "" {
		return "_main"
	}
	return labelParts(f.Namespace, f.OwnerStruct, f.Name)
}

// ConstructorLabel computes a constructor's emission label: the owning
// struct's namespaced "Type_ctor" stem, suffixed by the sanitized FQN of
// every parameter so overloads never collide.
func ConstructorLabel(owner *ir.StructDefinition, paramFQNs []ir.FQN) string {
	label := labelParts(owner.Namespace, owner.Name, owner.Name+"_ctor")
	for _, p := range paramFQNs {
		label += "_" + p.Sanitize()
	}
	return label
}

// DestructorLabel computes a destructor's emission label.
func DestructorLabel(owner *ir.StructDefinition) string {
	return labelParts(owner.Namespace, owner.Name, owner.Name+"_dtor")
}

// VTableLabel computes the emission label of a struct's virtual table.
func VTableLabel(fqn ir.FQN) string {
	return "_vtable_" + fqn.Sanitize()
}
