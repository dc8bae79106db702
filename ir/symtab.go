package ir

import "fmt"

// Symbol is one entry of a function's stack-frame SymbolTable: a
// parameter or local variable's stack offset, type and mutability.
type Symbol struct {
	Name    string
	Offset  int // Positive: [ebp+Offset] parameter. Negative: [ebp+Offset] local (Offset already negative).
	Type    FQN
	IsConst bool
	IsRead  bool
	HasDtor bool // True for a local struct variable whose type declares a destructor.
}

// SymbolTable is the per-function/constructor/destructor stack-frame
// layout: parameters at positive offsets from the frame pointer, locals
// at negative offsets, with read-tracking for the unused-variable
// diagnostic.
type SymbolTable struct {
	order   []string
	entries map[string]*Symbol

	HasRetPtr      bool // True iff the function returns a struct by value and needs a hidden pointer parameter.
	HasThis        bool
	TotalLocalSize int
}

// BuildSymbolTable constructs the stack frame for one function/method/
// constructor/destructor body.
//
// Layout:
//   - An implicit "this" parameter of type ownerFQN* is prepended for
//     methods/constructors/destructors.
//   - Declared parameters follow, each consuming at least 4 bytes; a
//     struct-by-value parameter consumes its full size.
//   - A hidden "__ret_ptr" parameter of type void* is appended last when
//     the function returns a struct by value.
//   - Locals, discovered by recursively walking the body through blocks,
//     if and while statements, receive negative offsets, each consuming
//     its full size.
func BuildSymbolTable(ctx *Context, ownerFQN FQN, params []*Parameter, returnFQN FQN, body *Node, unit *CompilationUnit, namespace string) (*SymbolTable, error) {
	st := &SymbolTable{entries: make(map[string]*Symbol)}

	offset := 8 // Skip saved return address (+4) and saved frame pointer (+4).
	if ownerFQN != "" {
		st.HasThis = true
		if err := st.addParam(ctx, "this", ownerFQN.Pointer(), offset); err != nil {
			return nil, err
		}
		offset += 4
	}

	for _, p := range params {
		pFQN, err := ctx.Resolver.Resolve(p.Type, namespace, unit)
		if err != nil {
			return nil, err
		}
		if err := st.addParam(ctx, p.Name, pFQN, offset); err != nil {
			return nil, err
		}
		sz, err := paramSize(ctx, pFQN)
		if err != nil {
			return nil, err
		}
		offset += sz
	}

	if returnFQN != "" && !returnFQN.IsPointer() && !IsPrimitive(FQN(returnFQN.Base())) {
		if _, ok := ctx.Repo.Struct(FQN(returnFQN.Base())); ok {
			st.HasRetPtr = true
			if err := st.addParam(ctx, "__ret_ptr", Void.Pointer(), offset); err != nil {
				return nil, err
			}
		}
	}

	localOffset := 0
	if body != nil {
		if err := st.collectLocals(ctx, body, unit, namespace, &localOffset); err != nil {
			return nil, err
		}
	}
	st.TotalLocalSize = -localOffset
	return st, nil
}

func paramSize(ctx *Context, fqn FQN) (int, error) {
	sz, err := ctx.Layout.SizeOf(fqn)
	if err != nil {
		return 0, err
	}
	if sz < 4 {
		sz = 4
	}
	return sz, nil
}

func (st *SymbolTable) addParam(ctx *Context, name string, fqn FQN, offset int) error {
	if _, exists := st.entries[name]; exists {
		return fmt.Errorf("duplicate parameter name %q", name)
	}
	hasDtor := false
	if !fqn.IsPointer() {
		if _, ok := ctx.Funcs.Destructor(fqn); ok {
			hasDtor = true
		}
	}
	st.order = append(st.order, name)
	st.entries[name] = &Symbol{Name: name, Offset: offset, Type: fqn, HasDtor: hasDtor}
	return nil
}

// collectLocals recursively walks body (descending through Block, If and
// While statements only) assigning each Declaration a negative stack
// offset.
func (st *SymbolTable) collectLocals(ctx *Context, n *Node, unit *CompilationUnit, namespace string, offset *int) error {
	switch n.Typ {
	case NDeclaration:
		name := n.Data.(string)
		if _, exists := st.entries[name]; exists {
			return fmt.Errorf("redeclaration of local %q at line %d", name, n.Line())
		}
		fqn, err := ctx.Resolver.Resolve(n.Type, namespace, unit)
		if err != nil {
			return err
		}
		sz, err := ctx.Layout.SizeOf(fqn)
		if err != nil {
			return err
		}
		*offset -= sz
		hasDtor := false
		if !fqn.IsPointer() {
			if _, ok := ctx.Funcs.Destructor(fqn); ok {
				hasDtor = true
			}
		}
		st.order = append(st.order, name)
		st.entries[name] = &Symbol{Name: name, Offset: *offset, Type: fqn, IsConst: n.IsConst, HasDtor: hasDtor}
		return nil
	case NBlock, NIf, NWhile:
		for _, c := range n.Children {
			if err := st.collectLocals(ctx, c, unit, namespace, offset); err != nil {
				return err
			}
		}
	}
	return nil
}

// TryGet looks up a symbol by name, returning ok=false if not bound in
// this frame (the caller falls back to an implicit this->member lookup).
func (st *SymbolTable) TryGet(name string) (*Symbol, bool) {
	s, ok := st.entries[name]
	return s, ok
}

// MarkRead flags a symbol as having been read at least once, driving the
// unused-variable diagnostic.
func (st *SymbolTable) MarkRead(name string) {
	if s, ok := st.entries[name]; ok {
		s.IsRead = true
	}
}

// DestructibleLocals returns every local (not parameter) symbol whose type
// has a destructor, in declaration order, for epilogue cleanup.
func (st *SymbolTable) DestructibleLocals() []*Symbol {
	var out []*Symbol
	for _, name := range st.order {
		s := st.entries[name]
		if s.Offset < 0 && s.HasDtor {
			out = append(out, s)
		}
	}
	return out
}

// Unread returns every local symbol that was never marked read, in
// declaration order, for the unused-variable warning.
func (st *SymbolTable) Unread() []*Symbol {
	var out []*Symbol
	for _, name := range st.order {
		s := st.entries[name]
		if s.Offset < 0 && !s.IsRead {
			out = append(out, s)
		}
	}
	return out
}
