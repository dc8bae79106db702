package sema

import (
	"testing"

	"ctildec/frontend"
	"ctildec/ir"
)

func analyze(t *testing.T, src string) (*ir.Diagnostics, error) {
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
	return NewRunner(ctx).Run()
}

func TestRunnerAcceptsWellTypedProgram(t *testing.T) {
	diags, internal := analyze(t, `
int add(int a, int b) {
	int sum = a + b;
	return sum;
}
`)
	if internal != nil {
		t.Fatalf("unexpected internal error: %s", internal)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.All())
	}
}

func TestRunnerRejectsUndefinedVariable(t *testing.T) {
	diags, internal := analyze(t, `
int broken() {
	return missing;
}
`)
	if internal != nil {
		t.Fatalf("unexpected internal error: %s", internal)
	}
	if !diags.HasErrors() {
		t.Fatalf("expected an error diagnostic for an undefined variable, got none")
	}
}

func TestRunnerRejectsMismatchedReturnType(t *testing.T) {
	diags, internal := analyze(t, `
void doesNotReturn() {
	return 1;
}
`)
	if internal != nil {
		t.Fatalf("unexpected internal error: %s", internal)
	}
	if !diags.HasErrors() {
		t.Fatalf("expected an error diagnostic for returning a value from a void function")
	}
}

func TestRunnerFlagsUnreachableCode(t *testing.T) {
	diags, internal := analyze(t, `
int f() {
	return 1;
	int x = 2;
}
`)
	if internal != nil {
		t.Fatalf("unexpected internal error: %s", internal)
	}
	found := false
	for _, d := range diags.All() {
		if d.Sev == ir.Warning {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected at least one warning (unreachable code), got %v", diags.All())
	}
}

func TestRunnerAnalyzesStructMethodAndConstructor(t *testing.T) {
	diags, internal := analyze(t, `
struct Counter {
public:
	int value;
	Counter(int start) {
		this.value = start;
	}
	int get() {
		return this.value;
	}
};
int use() {
	Counter c(5);
	return c.get();
}
`)
	if internal != nil {
		t.Fatalf("unexpected internal error: %s", internal)
	}
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", diags.All())
	}
}
