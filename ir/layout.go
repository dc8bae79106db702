package ir

import "fmt"

// Member is one entry of a struct's flattened, offset-annotated member
// list: inherited members first (base through most-derived), with the
// vptr slot prepended when the struct has a vtable and no base class.
type Member struct {
	Name    string
	Type    FQN
	Offset  int
	IsConst bool
}

// VPtrMember is the synthetic name MemoryLayoutManager gives the virtual
// table pointer slot it prepends to a polymorphic root struct's layout.
const VPtrMember = "__vptr"

// MemoryLayoutManager computes size-of, member offset, and the flattened
// member list for every struct, memoized by FQN.
type MemoryLayoutManager struct {
	ctx        *Context
	sizeCache  map[FQN]int
	memberCache map[FQN][]Member
	building   map[FQN]bool
}

func newMemoryLayoutManager(ctx *Context) *MemoryLayoutManager {
	return &MemoryLayoutManager{
		ctx:         ctx,
		sizeCache:   make(map[FQN]int),
		memberCache: make(map[FQN][]Member),
		building:    make(map[FQN]bool),
	}
}

// SizeOf returns the size in bytes of type fqn: 4 for any pointer, the
// fixed scalar sizes for primitives, 4 for an unresolved single-letter
// generic parameter (treated as opaque pointer-sized), 4 for an enum, and
// for a struct the base-class prefix plus the sum of declared member
// sizes.
func (m *MemoryLayoutManager) SizeOf(fqn FQN) (int, error) {
	if fqn.IsPointer() {
		return 4, nil
	}
	base := FQN(fqn.Base())
	switch base {
	case Int, Float:
		return 4, nil
	case Char, Bool:
		return 1, nil
	case Void:
		return 0, nil
	}
	if IsGenericParam(base) {
		return 4, nil
	}
	if sz, ok := m.sizeCache[base]; ok {
		return sz, nil
	}
	if _, ok := m.ctx.Repo.Enum(base); ok {
		m.sizeCache[base] = 4
		return 4, nil
	}

	members, err := m.MembersOf(base)
	if err != nil {
		return 0, err
	}
	size := 0
	if len(members) > 0 {
		last := members[len(members)-1]
		lastSize, err := m.SizeOf(last.Type)
		if err != nil {
			return 0, err
		}
		size = last.Offset + lastSize
	}
	m.sizeCache[base] = size
	return size, nil
}

// MembersOf returns the flattened, offset-annotated member list of struct
// fqn: base-class members first, then own members in declaration order,
// prefixed by a synthetic vptr slot when fqn is the root of a polymorphic
// chain (has a vtable and no base class).
func (m *MemoryLayoutManager) MembersOf(fqn FQN) ([]Member, error) {
	base := FQN(fqn.Base())
	if members, ok := m.memberCache[base]; ok {
		return members, nil
	}
	if m.building[base] {
		return nil, fmt.Errorf("compiler error: cyclic struct layout detected at %s", base)
	}
	m.building[base] = true
	defer delete(m.building, base)

	s, ok := m.ctx.Repo.Struct(base)
	if !ok {
		return nil, fmt.Errorf("compiler error: unknown struct %s", base)
	}
	if s.IsTemplate() {
		return nil, fmt.Errorf("compiler error: generic struct template %s has no computable layout", base)
	}

	var members []Member
	offset := 0

	if s.BaseName != nil {
		baseFQN, err := m.ctx.Resolver.Resolve(s.BaseName, s.Namespace, s.Unit)
		if err != nil {
			return nil, err
		}
		baseMembers, err := m.MembersOf(baseFQN)
		if err != nil {
			return nil, err
		}
		members = append(members, baseMembers...)
		if len(baseMembers) > 0 {
			last := baseMembers[len(baseMembers)-1]
			lastSize, err := m.SizeOf(last.Type)
			if err != nil {
				return nil, err
			}
			offset = last.Offset + lastSize
		}
	} else {
		hasVT, err := m.ctx.VTables.HasVTable(base)
		if err != nil {
			return nil, err
		}
		if hasVT {
			members = append(members, Member{Name: VPtrMember, Type: Void.Pointer(), Offset: 0})
			offset = 4
		}
	}

	for _, mv := range s.Members {
		typeFQN, err := m.ctx.Resolver.Resolve(mv.Type, s.Namespace, s.Unit)
		if err != nil {
			return nil, err
		}
		sz, err := m.SizeOf(typeFQN)
		if err != nil {
			return nil, err
		}
		members = append(members, Member{Name: mv.Name, Type: typeFQN, Offset: offset, IsConst: mv.IsConst})
		offset += sz
	}

	m.memberCache[base] = members
	return members, nil
}

// MemberInfo looks up one member of struct fqn by name, returning false if
// the flattened member list has no entry of that name.
func (m *MemoryLayoutManager) MemberInfo(fqn FQN, name string) (Member, bool, error) {
	members, err := m.MembersOf(fqn)
	if err != nil {
		return Member{}, false, err
	}
	for _, mm := range members {
		if mm.Name == name {
			return mm, true, nil
		}
	}
	return Member{}, false, nil
}
