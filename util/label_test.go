package util

import "testing"

func TestLabelGenSequential(t *testing.T) {
	g := &LabelGen{}
	if got := g.New(LabelIfElse); got != "_if_else_0" {
		t.Errorf("first label = %q, want %q", got, "_if_else_0")
	}
	if got := g.New(LabelIfElse); got != "_if_else_1" {
		t.Errorf("second label = %q, want %q", got, "_if_else_1")
	}
}

func TestLabelGenPairsDoNotCollide(t *testing.T) {
	g := &LabelGen{}
	elseLabel, endLabel := g.IfPair()
	if elseLabel == endLabel {
		t.Errorf("IfPair returned identical labels: %q", elseLabel)
	}
	startLabel, whileEnd := g.WhilePair()
	seen := map[string]bool{}
	for _, l := range []string{elseLabel, endLabel, startLabel, whileEnd} {
		if seen[l] {
			t.Errorf("label %q reused across kinds", l)
		}
		seen[l] = true
	}
}

func TestLabelGenIndependentPerKind(t *testing.T) {
	g := &LabelGen{}
	g.New(LabelIfElse)
	g.New(LabelIfElse)
	if got := g.New(LabelWhileStart); got != "_while_start_0" {
		t.Errorf("LabelWhileStart counter was affected by LabelIfElse calls, got %q", got)
	}
}
