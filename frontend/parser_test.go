package frontend

import (
	"testing"

	"ctildec/ir"
)

func TestParseFreeFunctionWithDeclarationAndReturn(t *testing.T) {
	src := `
int add(int a, int b) {
	int sum = a + b;
	return sum;
}
`
	unit, _, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	if len(unit.Funcs) != 1 {
		t.Fatalf("got %d functions, want 1", len(unit.Funcs))
	}
	f := unit.Funcs[0]
	if f.Name != "add" || len(f.Parameters) != 2 {
		t.Fatalf("unexpected function shape: %+v", f)
	}
	if len(f.Body.Children) != 2 {
		t.Fatalf("got %d statements, want 2 (declaration, return)", len(f.Body.Children))
	}
	decl := f.Body.Children[0]
	if decl.Typ != ir.NDeclaration || decl.Data.(string) != "sum" {
		t.Errorf("first statement = %+v, want Declaration of 'sum'", decl)
	}
	if len(decl.Children) != 1 || decl.Children[0].Typ != ir.NBinary {
		t.Fatalf("declaration initializer not parsed as a binary expression: %+v", decl.Children)
	}
	ret := f.Body.Children[1]
	if ret.Typ != ir.NReturn || len(ret.Children) != 1 {
		t.Errorf("second statement = %+v, want Return with one child", ret)
	}
}

func TestParseImportSetsExternLibrary(t *testing.T) {
	src := `
#import "msvcrt.dll";
extern int printf(int fmt);
`
	unit, imports, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	if len(imports) != 1 || imports[0] != "msvcrt.dll" {
		t.Fatalf("imports = %v, want [msvcrt.dll]", imports)
	}
	if len(unit.Funcs) != 1 || !unit.Funcs[0].IsExternal() {
		t.Fatalf("expected one external function")
	}
	if unit.Funcs[0].Library != "msvcrt.dll" {
		t.Errorf("Library = %q, want %q", unit.Funcs[0].Library, "msvcrt.dll")
	}
}

func TestParseStructWithCtorAndMethod(t *testing.T) {
	src := `
struct Vec2 {
public:
	int x;
	int y;
	Vec2(int x, int y) {
		this.x = x;
	}
	int sum() {
		return this.x;
	}
};
`
	unit, _, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	if len(unit.Structs) != 1 {
		t.Fatalf("got %d structs, want 1", len(unit.Structs))
	}
	s := unit.Structs[0]
	if len(s.Members) != 2 || len(s.Constructors) != 1 || len(s.Methods) != 1 {
		t.Fatalf("unexpected struct shape: %d members, %d ctors, %d methods",
			len(s.Members), len(s.Constructors), len(s.Methods))
	}
}

func TestParseStructWithBaseClassAndVirtualDestructor(t *testing.T) {
	src := `
struct Base {
	~Base() virtual {
	}
};
struct Derived : Base {
	~Derived() virtual {
	}
};
`
	unit, _, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	if len(unit.Structs) != 2 {
		t.Fatalf("got %d structs, want 2", len(unit.Structs))
	}
	derived := unit.Structs[1]
	if derived.BaseName == nil || derived.BaseName.BaseName() != "Base" {
		t.Fatalf("Derived's base class not recorded, got %+v", derived.BaseName)
	}
	if len(derived.Destructors) != 1 || !derived.Destructors[0].IsVirtual {
		t.Fatalf("expected one virtual destructor on Derived")
	}
}

func TestParseIfElseAndWhile(t *testing.T) {
	src := `
int classify(int n) {
	if (n < 0) {
		return 0;
	} else if (n == 0) {
		return 1;
	} else {
		while (n > 0) {
			n = n - 1;
		}
		return n;
	}
}
`
	unit, _, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	body := unit.Funcs[0].Body
	if len(body.Children) != 1 || body.Children[0].Typ != ir.NIf {
		t.Fatalf("expected a single top-level if, got %+v", body.Children)
	}
	ifNode := body.Children[0]
	if len(ifNode.Children) != 3 {
		t.Fatalf("expected [cond, then, else], got %d children", len(ifNode.Children))
	}
}

func TestParseNewAndDelete(t *testing.T) {
	src := `
struct Entity {
	Entity() {
	}
};
void spawn() {
	Entity e = new Entity();
	delete e;
}
`
	unit, _, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	body := unit.Funcs[0].Body
	decl := body.Children[0]
	if decl.Typ != ir.NDeclaration || decl.Children[0].Typ != ir.NNew {
		t.Fatalf("expected a declaration initialized from 'new', got %+v", decl)
	}
	del := body.Children[1]
	if del.Typ != ir.NDelete {
		t.Fatalf("expected a delete statement, got %s", del.Typ)
	}
}

func TestParseEnumAutoIncrementAndExplicitValue(t *testing.T) {
	src := `
enum Color {
	Red,
	Green = 5,
	Blue
};
`
	unit, _, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	if len(unit.Enums) != 1 {
		t.Fatalf("got %d enums, want 1", len(unit.Enums))
	}
	members := unit.Enums[0].Members
	want := []ir.EnumMember{{Name: "Red", Value: 0}, {Name: "Green", Value: 5}, {Name: "Blue", Value: 6}}
	if len(members) != len(want) {
		t.Fatalf("got %d members, want %d", len(members), len(want))
	}
	for i, w := range want {
		if members[i] != w {
			t.Errorf("member %d = %+v, want %+v", i, members[i], w)
		}
	}
}

func TestParseGenericStructDeclaration(t *testing.T) {
	src := `
struct List<T> {
	T value;
};
void use() {
	List<int> nums;
}
`
	unit, _, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	if len(unit.Structs) != 1 || len(unit.Structs[0].GenericParameters) != 1 {
		t.Fatalf("expected one generic struct with one type parameter, got %+v", unit.Structs)
	}
	decl := unit.Funcs[0].Body.Children[0]
	if decl.Type.Kind != ir.TypeGeneric || len(decl.Type.Args) != 1 {
		t.Fatalf("expected a generic instantiation type, got %+v", decl.Type)
	}
}

func TestParseConstFoldsConstantExpression(t *testing.T) {
	src := `
int compute() {
	int x = 2 + 3 * 4;
	return x;
}
`
	unit, _, err := ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	decl := unit.Funcs[0].Body.Children[0]
	init := decl.Children[0]
	if init.Typ != ir.NIntLiteral || init.Data.(int) != 14 {
		t.Fatalf("expected constant folding to 14, got %+v", init)
	}
}
