package ir_test

import (
	"testing"

	"ctildec/frontend"
	"ctildec/ir"
)

func buildCtx(t *testing.T, src string) *ir.Context {
	t.Helper()
	unit, imports, err := frontend.ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	ctx, err := ir.NewContext(&ir.Program{Imports: imports, CompilationUnits: []*ir.CompilationUnit{unit}})
	if err != nil {
		t.Fatalf("NewContext: %s", err)
	}
	return ctx
}

func TestMemoryLayoutManagerFlattensBaseMembersBeforeOwn(t *testing.T) {
	ctx := buildCtx(t, `
struct Base {
public:
	int id;
};
struct Derived : Base {
public:
	int extra;
};
`)
	members, err := ctx.Layout.MembersOf(ir.FQN("Derived"))
	if err != nil {
		t.Fatalf("MembersOf: %s", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2 (id, extra), got %+v", len(members), members)
	}
	if members[0].Name != "id" || members[0].Offset != 0 {
		t.Errorf("first member = %+v, want id at offset 0", members[0])
	}
	if members[1].Name != "extra" || members[1].Offset != 4 {
		t.Errorf("second member = %+v, want extra at offset 4", members[1])
	}
	size, err := ctx.Layout.SizeOf(ir.FQN("Derived"))
	if err != nil {
		t.Fatalf("SizeOf: %s", err)
	}
	if size != 8 {
		t.Errorf("SizeOf(Derived) = %d, want 8", size)
	}
}

func TestMemoryLayoutManagerPrependsVPtrForPolymorphicRoot(t *testing.T) {
	ctx := buildCtx(t, `
struct Shape {
public:
	int sides;
	~Shape() virtual {
	}
};
`)
	members, err := ctx.Layout.MembersOf(ir.FQN("Shape"))
	if err != nil {
		t.Fatalf("MembersOf: %s", err)
	}
	if len(members) != 2 || members[0].Name != ir.VPtrMember {
		t.Fatalf("expected [__vptr, sides], got %+v", members)
	}
	if members[0].Offset != 0 || members[1].Offset != 4 {
		t.Fatalf("expected __vptr at 0 and sides at 4, got %+v", members)
	}
}

func TestVTableManagerInheritsDestructorSlotZero(t *testing.T) {
	ctx := buildCtx(t, `
struct Base {
	~Base() virtual {
	}
};
struct Derived : Base {
	~Derived() virtual {
	}
};
`)
	vt, err := ctx.VTables.VTable(ir.FQN("Derived"))
	if err != nil {
		t.Fatalf("VTable: %s", err)
	}
	if len(vt) != 1 || !vt[0].IsDtor {
		t.Fatalf("expected one dtor slot, got %+v", vt)
	}
	if vt[0].Owner != ir.FQN("Derived") {
		t.Errorf("expected Derived's own destructor to occupy slot 0, got owner %s", vt[0].Owner)
	}
}

func TestVTableManagerOverrideReplacesBaseSlot(t *testing.T) {
	ctx := buildCtx(t, `
struct Base {
public:
	virtual int area() {
		return 0;
	}
};
struct Derived : Base {
public:
	override int area() {
		return 1;
	}
};
`)
	vt, err := ctx.VTables.VTable(ir.FQN("Derived"))
	if err != nil {
		t.Fatalf("VTable: %s", err)
	}
	idx, err := ctx.VTables.IndexOf(ir.FQN("Derived"), "area")
	if err != nil {
		t.Fatalf("IndexOf: %s", err)
	}
	if idx != 0 {
		t.Fatalf("expected area at slot 0, got %d", idx)
	}
	if vt[idx].Owner != ir.FQN("Derived") {
		t.Errorf("expected override to rebind owner to Derived, got %s", vt[idx].Owner)
	}
}

func TestFunctionResolverWalksInheritanceForMethodsAndMembers(t *testing.T) {
	ctx := buildCtx(t, `
struct Base {
public:
	int id;
	int get() {
		return this.id;
	}
};
struct Derived : Base {
public:
	int extra;
};
`)
	m, owner, err := ctx.Funcs.Method(ir.FQN("Derived"), "get")
	if err != nil {
		t.Fatalf("Method: %s", err)
	}
	if m.Name != "get" || owner != ir.FQN("Base") {
		t.Errorf("Method resolved to %+v on %s, want get on Base", m, owner)
	}
	mv, owner, err := ctx.Funcs.Member(ir.FQN("Derived"), "id")
	if err != nil {
		t.Fatalf("Member: %s", err)
	}
	if mv.Name != "id" || owner != ir.FQN("Base") {
		t.Errorf("Member resolved to %+v on %s, want id on Base", mv, owner)
	}
}

func TestFunctionResolverSelectsConstructorOverloadByArity(t *testing.T) {
	ctx := buildCtx(t, `
struct Point {
public:
	int x;
	Point() {
	}
	Point(int x) {
		this.x = x;
	}
};
`)
	c, err := ctx.Funcs.Constructor(ir.FQN("Point"), nil)
	if err != nil {
		t.Fatalf("Constructor() with no args: %s", err)
	}
	if len(c.Parameters) != 0 {
		t.Errorf("expected the zero-arg constructor, got %d params", len(c.Parameters))
	}
	c, err = ctx.Funcs.Constructor(ir.FQN("Point"), []ir.FQN{ir.Int})
	if err != nil {
		t.Fatalf("Constructor(int): %s", err)
	}
	if len(c.Parameters) != 1 {
		t.Errorf("expected the one-arg constructor, got %d params", len(c.Parameters))
	}
}

func TestMonomorphizerCachesIdenticalInstantiations(t *testing.T) {
	ctx := buildCtx(t, `
struct Box<T> {
public:
	T value;
};
void use() {
	Box<int> a;
	Box<int> b;
}
`)
	body := findFunc(ctx, "use").Body
	declA := body.Children[0]
	declB := body.Children[1]

	fqnA, err := ctx.Mono.Instantiate(declA.Type, "", findFunc(ctx, "use").Unit)
	if err != nil {
		t.Fatalf("Instantiate a: %s", err)
	}
	fqnB, err := ctx.Mono.Instantiate(declB.Type, "", findFunc(ctx, "use").Unit)
	if err != nil {
		t.Fatalf("Instantiate b: %s", err)
	}
	if fqnA != fqnB {
		t.Errorf("expected two Box<int> instantiations to share one monomorphized struct, got %s vs %s", fqnA, fqnB)
	}
	if _, ok := ctx.Repo.Struct(fqnA); !ok {
		t.Errorf("expected the monomorphized struct %s to be registered in the repository", fqnA)
	}
}

func findFunc(ctx *ir.Context, name string) *ir.FunctionDeclaration {
	for _, u := range ctx.Repo.Program().CompilationUnits {
		for _, f := range u.Funcs {
			if f.Name == name {
				return f
			}
		}
	}
	return nil
}
