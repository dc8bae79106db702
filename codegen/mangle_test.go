package codegen

import (
	"testing"

	"ctildec/ir"
)

func TestFunctionLabelMain(t *testing.T) {
	f := &ir.FunctionDeclaration{Name: "main", Namespace: "game"}
	if got := FunctionLabel(f); got != "_main" {
		t.Errorf("FunctionLabel(main) = %q, want %q", got, "_main")
	}
}

func TestFunctionLabelFreeFunction(t *testing.T) {
	f := &ir.FunctionDeclaration{Name: "clamp", Namespace: "game::math"}
	if got := FunctionLabel(f); got != "_game__math_clamp" {
		t.Errorf("FunctionLabel = %q, want %q", got, "_game__math_clamp")
	}
}

func TestFunctionLabelMethod(t *testing.T) {
	f := &ir.FunctionDeclaration{Name: "update", OwnerStruct: "Entity", Namespace: "game"}
	if got := FunctionLabel(f); got != "_game_Entity_update" {
		t.Errorf("FunctionLabel = %q, want %q", got, "_game_Entity_update")
	}
}

func TestConstructorLabelOverloadsDoNotCollide(t *testing.T) {
	owner := &ir.StructDefinition{Name: "Vec2", Namespace: "math"}
	noArgs := ConstructorLabel(owner, nil)
	oneArg := ConstructorLabel(owner, []ir.FQN{ir.Int})
	twoArgs := ConstructorLabel(owner, []ir.FQN{ir.Int, ir.Int})
	if noArgs == oneArg || oneArg == twoArgs || noArgs == twoArgs {
		t.Errorf("constructor overload labels collided: %q, %q, %q", noArgs, oneArg, twoArgs)
	}
}

func TestDestructorLabel(t *testing.T) {
	owner := &ir.StructDefinition{Name: "Entity", Namespace: "game"}
	if got := DestructorLabel(owner); got != "_game_Entity_Entity_dtor" {
		t.Errorf("DestructorLabel = %q, want %q", got, "_game_Entity_Entity_dtor")
	}
}

func TestVTableLabel(t *testing.T) {
	if got := VTableLabel(ir.FQN("game::Entity")); got != "_vtable_game__Entity" {
		t.Errorf("VTableLabel = %q, want %q", got, "_vtable_game__Entity")
	}
}
