package ir

import "fmt"

// VTableSlot is one entry of a struct's virtual table: either the virtual
// destructor (IsDtor, only ever at index 0) or a virtual/overriding method.
type VTableSlot struct {
	Name   string
	Owner  FQN // Struct that currently supplies this slot's implementation.
	Method *FunctionDeclaration
	Dtor   *DestructorDeclaration
	IsDtor bool
}

// VTableManager recursively computes per-struct virtual-table layout
// across inheritance, memoized by FQN.
type VTableManager struct {
	ctx   *Context
	cache map[FQN][]VTableSlot
	// building tracks FQNs currently under construction to turn an
	// inheritance cycle into a diagnostic instead of infinite recursion.
	building map[FQN]bool
}

func newVTableManager(ctx *Context) *VTableManager {
	return &VTableManager{ctx: ctx, cache: make(map[FQN][]VTableSlot), building: make(map[FQN]bool)}
}

// VTable returns the (memoized) virtual table for struct fqn.
func (v *VTableManager) VTable(fqn FQN) ([]VTableSlot, error) {
	if vt, ok := v.cache[fqn]; ok {
		return vt, nil
	}
	if v.building[fqn] {
		return nil, fmt.Errorf("compiler error: cyclic inheritance detected at %s", fqn)
	}
	v.building[fqn] = true
	defer delete(v.building, fqn)

	s, ok := v.ctx.Repo.Struct(fqn)
	if !ok {
		return nil, fmt.Errorf("compiler error: unknown struct %s", fqn)
	}

	var base []VTableSlot
	if s.BaseName != nil {
		baseFQN, err := v.ctx.Resolver.Resolve(s.BaseName, s.Namespace, s.Unit)
		if err != nil {
			return nil, err
		}
		base, err = v.VTable(baseFQN)
		if err != nil {
			return nil, err
		}
	}

	vt := make([]VTableSlot, len(base))
	copy(vt, base)

	if len(s.Destructors) > 0 {
		dtor := s.Destructors[0]
		baseHasDtorSlot0 := len(vt) > 0 && vt[0].IsDtor
		if baseHasDtorSlot0 || dtor.IsVirtual {
			slot := VTableSlot{Name: s.Name + "::~" + s.Name, Owner: fqn, Dtor: dtor, IsDtor: true}
			if baseHasDtorSlot0 {
				vt[0] = slot
			} else {
				vt = append([]VTableSlot{slot}, vt...)
			}
		}
	}

	for _, m := range s.Methods {
		switch {
		case m.IsOverride:
			idx := indexOfName(vt, m.Name)
			if idx < 0 {
				return nil, fmt.Errorf("method %q marked override but no base virtual method of that name exists, at line %d:%d",
					m.Name, m.Tok.Line, m.Tok.Col)
			}
			vt[idx].Method = m
			vt[idx].Owner = fqn
		case m.IsVirtual:
			if idx := indexOfName(vt, m.Name); idx >= 0 {
				return nil, fmt.Errorf("virtual method %q collides with an existing base vtable slot, at line %d:%d",
					m.Name, m.Tok.Line, m.Tok.Col)
			}
			vt = append(vt, VTableSlot{Name: m.Name, Owner: fqn, Method: m})
		default:
			// Non-virtual, non-override methods are never part of a vtable.
		}
	}

	v.cache[fqn] = vt
	return vt, nil
}

// HasVTable reports whether fqn declares or inherits any virtual slot.
func (v *VTableManager) HasVTable(fqn FQN) (bool, error) {
	vt, err := v.VTable(fqn)
	if err != nil {
		return false, err
	}
	return len(vt) > 0, nil
}

// IndexOf returns the vtable slot index of method name on struct fqn, or
// -1 if fqn has no such slot.
func (v *VTableManager) IndexOf(fqn FQN, name string) (int, error) {
	vt, err := v.VTable(fqn)
	if err != nil {
		return -1, err
	}
	return indexOfName(vt, name), nil
}

func indexOfName(vt []VTableSlot, name string) int {
	for i, s := range vt {
		if !s.IsDtor && s.Name == name {
			return i
		}
	}
	return -1
}
