package ir

// Context wires together the mutually-dependent services that operate on
// the program tree: the TypeResolver needs the Monomorphizer to resolve
// generic instantiations, the Monomorphizer needs the TypeResolver to
// resolve template and argument names, the VTableManager and
// MemoryLayoutManager both need the TypeResolver to walk inheritance
// chains, and the FunctionResolver needs all of the above.
//
// Rather than wiring these with late setters and two-phase construction,
// every service is constructed up front holding only its own caches, and
// consults its peers exclusively through this shared, otherwise-immutable
// Context.
type Context struct {
	Repo     *TypeRepository
	Resolver *TypeResolver
	Mono     *Monomorphizer
	VTables  *VTableManager
	Layout   *MemoryLayoutManager
	Funcs    *FunctionResolver
}

// NewContext builds a fully wired Context over prog: a TypeRepository
// indexing every struct/enum, and the five dependent services, each
// holding a back-reference to ctx for consulting its peers.
func NewContext(prog *Program) (*Context, error) {
	repo, err := NewTypeRepository(prog)
	if err != nil {
		return nil, err
	}
	ctx := &Context{Repo: repo}
	ctx.Resolver = newTypeResolver(ctx)
	ctx.Mono = newMonomorphizer(ctx)
	ctx.VTables = newVTableManager(ctx)
	ctx.Layout = newMemoryLayoutManager(ctx)
	ctx.Funcs = newFunctionResolver(ctx)
	return ctx, nil
}
