package ir

import "testing"

func TestFQNJoin(t *testing.T) {
	cases := []struct {
		ns, name string
		want     FQN
	}{
		{"", "int", "int"},
		{"game", "Entity", "game::Entity"},
		{"a::b", "C", "a::b::C"},
	}
	for _, c := range cases {
		if got := Join(c.ns, c.name); got != c.want {
			t.Errorf("Join(%q, %q) = %q, want %q", c.ns, c.name, got, c.want)
		}
	}
}

func TestFQNNamespaceAndName(t *testing.T) {
	f := FQN("game::physics::Body*")
	if got := f.Namespace(); got != "game::physics" {
		t.Errorf("Namespace() = %q, want %q", got, "game::physics")
	}
	if got := f.Name(); got != "Body" {
		t.Errorf("Name() = %q, want %q", got, "Body")
	}
	if got := f.Base(); got != "game::physics::Body" {
		t.Errorf("Base() = %q, want %q", got, "game::physics::Body")
	}
}

func TestFQNPointerAndDeref(t *testing.T) {
	f := FQN("Entity")
	p := f.Pointer().Pointer()
	if p != "Entity**" {
		t.Errorf("Pointer().Pointer() = %q, want %q", p, "Entity**")
	}
	if got := p.PointerDepth(); got != 2 {
		t.Errorf("PointerDepth() = %d, want 2", got)
	}
	if got := p.Deref(); got != "Entity*" {
		t.Errorf("Deref() = %q, want %q", got, "Entity*")
	}
	if got := f.Deref(); got != f {
		t.Errorf("Deref() on non-pointer changed value: got %q", got)
	}
}

func TestFQNSanitize(t *testing.T) {
	f := FQN("game::Entity**")
	if got := f.Sanitize(); got != "game__Entitypp" {
		t.Errorf("Sanitize() = %q, want %q", got, "game__Entitypp")
	}
}

func TestIsPrimitiveAndGenericParam(t *testing.T) {
	for _, p := range []FQN{Int, Char, Void, Bool, Float} {
		if !IsPrimitive(p) {
			t.Errorf("IsPrimitive(%q) = false, want true", p)
		}
	}
	if !IsPrimitive("T") {
		t.Errorf("IsPrimitive(%q) = false, want true (generic parameter)", "T")
	}
	if IsPrimitive("Entity") {
		t.Errorf("IsPrimitive(%q) = true, want false", "Entity")
	}
	if !IsGenericParam("T") || IsGenericParam("Entity") {
		t.Errorf("IsGenericParam misclassified")
	}
}
