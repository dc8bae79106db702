package ir

import "testing"

func intLit(v int) *Node { return &Node{Typ: NIntLiteral, Data: v} }

func TestFoldConstantsArithmetic(t *testing.T) {
	cases := []struct {
		op   string
		a, b int
		want int
	}{
		{"+", 2, 3, 5},
		{"-", 5, 3, 2},
		{"*", 4, 3, 12},
		{"/", 9, 3, 3},
		{"%", 9, 4, 1},
	}
	for _, c := range cases {
		n := NewBinary(Token{}, c.op, intLit(c.a), intLit(c.b))
		FoldConstants(n)
		if n.Typ != NIntLiteral {
			t.Fatalf("%d %s %d: node not folded, still %s", c.a, c.op, c.b, n.Typ)
		}
		if got := n.Data.(int); got != c.want {
			t.Errorf("%d %s %d = %d, want %d", c.a, c.op, c.b, got, c.want)
		}
	}
}

func TestFoldConstantsDivideByZeroLeftAlone(t *testing.T) {
	n := NewBinary(Token{}, "/", intLit(1), intLit(0))
	FoldConstants(n)
	if n.Typ != NBinary {
		t.Errorf("division by zero was folded away, should be left unfolded")
	}
}

func TestFoldConstantsNested(t *testing.T) {
	// (2 + 3) * 4
	inner := NewBinary(Token{}, "+", intLit(2), intLit(3))
	outer := NewBinary(Token{}, "*", inner, intLit(4))
	FoldConstants(outer)
	if outer.Typ != NIntLiteral || outer.Data.(int) != 20 {
		t.Errorf("nested fold = %v (%s), want IntLiteral 20", outer.Data, outer.Typ)
	}
}

func TestFoldConstantsLeavesNonLiteralOperands(t *testing.T) {
	v := &Node{Typ: NVariable, Data: "x"}
	n := NewBinary(Token{}, "+", v, intLit(1))
	FoldConstants(n)
	if n.Typ != NBinary {
		t.Errorf("fold collapsed a binary with a variable operand")
	}
}
