package ir

import "fmt"

// TypeRepository is the registry of every struct and enum definition known
// to the program, keyed by fully qualified name. It is built once from a
// Program and then grows only as the Monomorphizer registers new
// monomorphized structs.
type TypeRepository struct {
	structs map[FQN]*StructDefinition
	enums   map[FQN]*EnumDefinition
	units   map[FQN]*CompilationUnit // Defining unit, keyed the same way as structs/enums.
	prog    *Program
}

// NewTypeRepository builds a TypeRepository by indexing every struct and
// enum declared across prog's compilation units.
func NewTypeRepository(prog *Program) (*TypeRepository, error) {
	r := &TypeRepository{
		structs: make(map[FQN]*StructDefinition),
		enums:   make(map[FQN]*EnumDefinition),
		units:   make(map[FQN]*CompilationUnit),
		prog:    prog,
	}
	for _, u := range prog.CompilationUnits {
		for _, s := range u.Structs {
			s.Unit = u
			if err := r.registerStruct(s); err != nil {
				return nil, err
			}
		}
		for _, e := range u.Enums {
			e.Unit = u
			fqn := e.FQN()
			if _, ok := r.enums[fqn]; ok {
				return nil, fmt.Errorf("duplicate enum definition: %s", fqn)
			}
			r.enums[fqn] = e
			r.units[fqn] = u
		}
	}
	return r, nil
}

// registerStruct indexes one struct definition, failing on a duplicate FQN
// (the FQN uniqueness invariant).
func (r *TypeRepository) registerStruct(s *StructDefinition) error {
	fqn := s.FQN()
	if existing, ok := r.structs[fqn]; ok && existing != s {
		return fmt.Errorf("duplicate struct definition: %s", fqn)
	}
	r.structs[fqn] = s
	r.units[fqn] = s.Unit
	return nil
}

// RegisterMonomorphized adds a freshly cloned, concrete struct (produced by
// the Monomorphizer) to the repository and to its owning compilation unit.
func (r *TypeRepository) RegisterMonomorphized(s *StructDefinition) error {
	if s.IsTemplate() {
		return fmt.Errorf("cannot register template struct %s as monomorphized instance", s.Name)
	}
	if err := r.registerStruct(s); err != nil {
		return err
	}
	s.Unit.Structs = append(s.Unit.Structs, s)
	return nil
}

// Struct looks up a struct definition by its fully qualified name.
func (r *TypeRepository) Struct(fqn FQN) (*StructDefinition, bool) {
	s, ok := r.structs[FQN(fqn.Base())]
	return s, ok
}

// Enum looks up an enum definition by its fully qualified name.
func (r *TypeRepository) Enum(fqn FQN) (*EnumDefinition, bool) {
	e, ok := r.enums[FQN(fqn.Base())]
	return e, ok
}

// Unit returns the compilation unit that defines fqn, if known.
func (r *TypeRepository) Unit(fqn FQN) (*CompilationUnit, bool) {
	u, ok := r.units[FQN(fqn.Base())]
	return u, ok
}

// FindByName looks up a struct by unqualified name, trying
// "currentNamespace::name" before falling back to the bare global name.
func (r *TypeRepository) FindByName(name, currentNamespace string) (*StructDefinition, FQN, bool) {
	if currentNamespace != "" {
		if s, ok := r.structs[Join(currentNamespace, name)]; ok {
			return s, s.FQN(), true
		}
	}
	if s, ok := r.structs[FQN(name)]; ok {
		return s, s.FQN(), true
	}
	return nil, "", false
}

// FindEnumByName is the enum analogue of FindByName.
func (r *TypeRepository) FindEnumByName(name, currentNamespace string) (*EnumDefinition, FQN, bool) {
	if currentNamespace != "" {
		if e, ok := r.enums[Join(currentNamespace, name)]; ok {
			return e, e.FQN(), true
		}
	}
	if e, ok := r.enums[FQN(name)]; ok {
		return e, e.FQN(), true
	}
	return nil, "", false
}

// Structs returns every registered struct definition. The slice is
// recomputed on each call so that callers (in particular the
// SemanticRunner's fixed-point loop) always observe newly monomorphized
// structs appended by the Monomorphizer.
func (r *TypeRepository) Structs() []*StructDefinition {
	out := make([]*StructDefinition, 0, len(r.structs))
	for _, s := range r.structs {
		out = append(out, s)
	}
	return out
}

// Program returns the Program this repository was built from.
func (r *TypeRepository) Program() *Program {
	return r.prog
}
