package codegen

import (
	"strings"
	"testing"

	"ctildec/frontend"
	"ctildec/ir"
	"ctildec/sema"
)

func buildContext(t *testing.T, src string) *ir.Context {
	t.Helper()
	unit, imports, err := frontend.ParseFile("t.ct", src)
	if err != nil {
		t.Fatalf("ParseFile: %s", err)
	}
	prog := &ir.Program{Imports: imports, CompilationUnits: []*ir.CompilationUnit{unit}}
	ctx, err := ir.NewContext(prog)
	if err != nil {
		t.Fatalf("NewContext: %s", err)
	}
	diags, internal := sema.NewRunner(ctx).Run()
	if internal != nil {
		t.Fatalf("internal error: %s", internal)
	}
	if diags.HasErrors() {
		t.Fatalf("analysis errors: %v", diags.All())
	}
	return ctx
}

func TestEmitFreeFunctionProducesLabelAndReturn(t *testing.T) {
	ctx := buildContext(t, `
int add(int a, int b) {
	return a + b;
}
int main() {
	return add(1, 2);
}
`)
	asm, err := Emit(ctx)
	if err != nil {
		t.Fatalf("Emit: %s", err)
	}
	for _, want := range []string{"format PE GUI 4.0", "entry start", "_main:", "ret"} {
		if !strings.Contains(asm, want) {
			t.Errorf("emitted assembly missing %q\n%s", want, asm)
		}
	}
}

func TestEmitStructWithVirtualDestructorWritesVTable(t *testing.T) {
	ctx := buildContext(t, `
struct Shape {
	~Shape() virtual {
	}
};
int main() {
	return 0;
}
`)
	asm, err := Emit(ctx)
	if err != nil {
		t.Fatalf("Emit: %s", err)
	}
	if !strings.Contains(asm, "section '.rdata'") {
		t.Errorf("expected an '.rdata' section for the vtable, got:\n%s", asm)
	}
	if !strings.Contains(asm, VTableLabel(ir.FQN("Shape"))) {
		t.Errorf("expected the vtable label %q in output", VTableLabel(ir.FQN("Shape")))
	}
}

func TestEmitExternFunctionGoesThroughImportTable(t *testing.T) {
	ctx := buildContext(t, `
#import "user32.dll";
extern int MessageBoxA(int handle);
int main() {
	return 0;
}
`)
	asm, err := Emit(ctx)
	if err != nil {
		t.Fatalf("Emit: %s", err)
	}
	if !strings.Contains(asm, "section '.idata'") {
		t.Errorf("expected an '.idata' import section, got:\n%s", asm)
	}
	if !strings.Contains(asm, "MessageBoxA") {
		t.Errorf("expected the imported symbol 'MessageBoxA' in the import table")
	}
	if !strings.Contains(asm, "user32.dll") {
		t.Errorf("expected 'user32.dll' named in the import table")
	}
}
