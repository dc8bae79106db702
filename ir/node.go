package ir

import "fmt"

// NodeType differentiates the statement and expression kinds that make up
// a function/method/constructor/destructor body. Unlike the declaration
// types in tree.go, statements and expressions share one recursive node
// shape because their structure is uniformly "operator + children" and a
// single exhaustive switch over NodeType (never reflection) is clearer
// than a menagerie of one-off Go types for every operator.
type NodeType int

const (
	NBlock NodeType = iota
	NReturn
	NIf
	NWhile
	NDeclaration
	NExpressionStmt
	NDelete
	NNullStatement

	NIntLiteral
	NFloatLiteral
	NStringLiteral
	NVariable
	NUnary
	NBinary
	NAssignment
	NCall
	NMemberAccess
	NQualifiedAccess
	NNew
	NSizeof
	NInitializerList
)

var nodeNames = [...]string{
	NBlock:           "Block",
	NReturn:          "Return",
	NIf:              "If",
	NWhile:           "While",
	NDeclaration:     "Declaration",
	NExpressionStmt:  "ExpressionStmt",
	NDelete:          "Delete",
	NNullStatement:   "NullStatement",
	NIntLiteral:      "IntLiteral",
	NFloatLiteral:    "FloatLiteral",
	NStringLiteral:   "StringLiteral",
	NVariable:        "Variable",
	NUnary:           "Unary",
	NBinary:          "Binary",
	NAssignment:      "Assignment",
	NCall:            "Call",
	NMemberAccess:    "MemberAccess",
	NQualifiedAccess: "QualifiedAccess",
	NNew:             "New",
	NSizeof:          "Sizeof",
	NInitializerList: "InitializerList",
}

// String returns a print-friendly name for the node kind.
func (t NodeType) String() string {
	if int(t) < 0 || int(t) >= len(nodeNames) {
		return fmt.Sprintf("NodeType(%d)", t)
	}
	return nodeNames[t]
}

// MemberOp distinguishes '.' from '->' in a MemberAccess node.
type MemberOp int

const (
	OpDot MemberOp = iota
	OpArrow
)

// Node is one statement or expression in a function body. It carries a
// mutable Parent back-edge, set once by LinkParents after the tree is
// built (and again over any subtree the Monomorphizer clones) rather than
// by ad-hoc mutation scattered through construction.
//
// Data and Children conventions, by NodeType:
//
//	NBlock            Children: statements.
//	NReturn           Children: [expr] or none (void return).
//	NIf               Children: [cond, thenBlock] or [cond, thenBlock, elseBlock].
//	NWhile            Children: [cond, body].
//	NDeclaration      Data: name (string). Type: declared type. Children: none
//	                  (no initializer), [NInitializerList] (brace-init), one
//	                  plain expression (initializer), or, when IsCtorCall,
//	                  the explicit constructor call's argument expressions.
//	NExpressionStmt   Children: [expr].
//	NDelete           Children: [pointer expr].
//	NIntLiteral       Data: int value.
//	NFloatLiteral     Data: float64 value.
//	NStringLiteral    Data: StringLit{Label, Value}.
//	NVariable         Data: name (string).
//	NUnary            Data: operator (string). Children: [operand].
//	NBinary           Data: operator (string). Children: [lhs, rhs].
//	NAssignment       Children: [lhs, rhs].
//	NCall             Children: [callee, arg0, arg1, ...] where callee is an
//	                  NVariable (free function), NMemberAccess (method call)
//	                  or NQualifiedAccess (namespace-qualified function).
//	NMemberAccess     Data: member name (string). Op: '.' or '->'. Children: [object].
//	NQualifiedAccess  Data: QualifiedName{Qualifier, Name}.
//	NNew              Type: struct type. Children: constructor arguments.
//	NSizeof           Type: operand type.
//	NInitializerList  Children: values, positionally bound to flattened members.
type Node struct {
	Typ        NodeType
	Tok        Token
	Data       interface{} // Operator string, literal value, identifier name, etc; meaning depends on Typ.
	Op         MemberOp    // Valid only for NMemberAccess.
	Type       *TypeNode   // Valid for NDeclaration, NNew, NSizeof.
	IsConst    bool        // Valid only for NDeclaration: true for "const T name = ...".
	IsCtorCall bool        // Valid only for NDeclaration: true for explicit "T x(a, b);" form.
	Children   []*Node
	Parent     *Node

	// ResolvedFQN caches the analyzer's typing result for this node so the
	// code generator never re-derives it. Set by sema.Analyzer, read by
	// the code generator.
	ResolvedFQN FQN
}

// StringLit is the Data payload of an NStringLiteral node: its pre-assigned
// emission label (e.g. "str3") and its raw (unescaped) text.
type StringLit struct {
	Label string
	Value string
}

// QualifiedName is the Data payload of an NQualifiedAccess node: a
// "Qualifier::Name" reference to an enum member or a namespaced function.
type QualifiedName struct {
	Qualifier string
	Name      string
}

// Line returns the source line this node originates from, for diagnostics.
func (n *Node) Line() int { return n.Tok.Line }

// Col returns the source column this node originates from, for diagnostics.
func (n *Node) Col() int { return n.Tok.Col }

// LinkParents walks n and all descendants, setting each child's Parent
// field to its immediate parent. Call once after building a tree (or a
// cloned subtree); nothing else mutates Node structure afterwards except
// the Monomorphizer appending whole new StructDefinitions.
func LinkParents(n *Node, parent *Node) {
	if n == nil {
		return
	}
	n.Parent = parent
	for _, c := range n.Children {
		LinkParents(c, n)
	}
}

// Walk calls visit on n and every descendant, pre-order.
func Walk(n *Node, visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// String renders a short human-readable description of the node, used by
// diagnostics and debug tree dumps.
func (n *Node) String() string {
	if n == nil {
		return "<nil node>"
	}
	if n.Data == nil {
		return n.Typ.String()
	}
	return fmt.Sprintf("%s [%v]", n.Typ, n.Data)
}

// Print recursively prints n and its children, indenting one level per
// depth of recursion. Used by the CLI's -tree debug tree dump.
func (n *Node) Print(depth int) {
	if n == nil {
		fmt.Printf("%*c---> NIL\n", depth<<1, ' ')
		return
	}
	fmt.Printf("%*c%s\n", depth<<1, ' ', n.String())
	for _, c := range n.Children {
		c.Print(depth + 1)
	}
}

// Clone deep-copies n and all descendants, without fixing up Parent
// back-edges (the caller must call LinkParents on the result). Used by
// the Monomorphizer to instantiate a generic struct's method bodies.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Typ:        n.Typ,
		Tok:        n.Tok,
		Data:       n.Data,
		Op:         n.Op,
		Type:       n.Type.Clone(),
		IsConst:    n.IsConst,
		IsCtorCall: n.IsCtorCall,
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Convenience constructors used by the parser and by ir.FoldConstants.

func NewBlock(tok Token, stmts ...*Node) *Node {
	return &Node{Typ: NBlock, Tok: tok, Children: stmts}
}

func NewBinary(tok Token, op string, lhs, rhs *Node) *Node {
	return &Node{Typ: NBinary, Tok: tok, Data: op, Children: []*Node{lhs, rhs}}
}

func NewUnary(tok Token, op string, rhs *Node) *Node {
	return &Node{Typ: NUnary, Tok: tok, Data: op, Children: []*Node{rhs}}
}

func NewIntLiteral(tok Token, v int) *Node {
	return &Node{Typ: NIntLiteral, Tok: tok, Data: v}
}
