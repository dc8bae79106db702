// Package sema implements the type-checking and diagnostic pass over a
// program tree already indexed by an ir.Context, plus the fixed-point
// driver that re-runs analysis as monomorphization appends new structs.
package sema

import (
	"ctildec/ir"
)

// AnalysisContext carries the per-call state a single expression or
// statement analysis needs beyond the shared ir.Context: the enclosing
// function's symbol table, its compilation unit (for namespace/using
// lookup), and the owner struct FQN when analyzing a method/ctor/dtor
// body (used for access enforcement and implicit this-> lookup).
type AnalysisContext struct {
	Symbols     *ir.SymbolTable
	Unit        *ir.CompilationUnit
	Namespace   string
	OwnerStruct ir.FQN // "" for a free function.
	ReturnFQN   ir.FQN
}

// Analyzer walks statement and expression trees, resolving every
// expression's FQN and appending diagnostics. It never returns an error
// across a statement boundary: a failed sub-expression is recorded as a
// diagnostic and reported upward as ir.Unknown so a single mistake never
// cascades into a wall of follow-on complaints.
type Analyzer struct {
	Ctx   *ir.Context
	Diags *ir.Diagnostics

	// currentFile is set by AnalyzeFunction for the duration of one body's
	// analysis so errorf/warnf can stamp diagnostics without threading a
	// file path through every recursive call.
	currentFile string
}

// NewAnalyzer constructs an Analyzer sharing ctx and accumulating into diags.
func NewAnalyzer(ctx *ir.Context, diags *ir.Diagnostics) *Analyzer {
	return &Analyzer{Ctx: ctx, Diags: diags}
}

func (a *Analyzer) errorf(n *ir.Node, format string, args ...interface{}) ir.FQN {
	a.Diags.Errorf(a.currentFile, n.Line(), n.Col(), format, args...)
	return ir.Unknown
}

func (a *Analyzer) warnf(n *ir.Node, format string, args ...interface{}) {
	a.Diags.Warnf(a.currentFile, n.Line(), n.Col(), format, args...)
}

// AnalyzeFunction analyzes one function/method/constructor/destructor
// body, given its already-built SymbolTable. It never returns an error;
// all problems are recorded as diagnostics.
func (a *Analyzer) AnalyzeFunction(actx *AnalysisContext, body *ir.Node) {
	if body == nil {
		return
	}
	a.currentFile = actx.Unit.FilePath
	a.analyzeBlock(actx, body)
	a.checkUnusedLocals(actx)
}

func (a *Analyzer) checkUnusedLocals(actx *AnalysisContext) {
	for _, s := range actx.Symbols.Unread() {
		a.Diags.Warnf(actx.Unit.FilePath, 0, 0, "unused local variable %q", s.Name)
	}
}

// analyzeBlock analyzes each statement of a block in order, flagging any
// statement that follows a Return within the same block as unreachable.
func (a *Analyzer) analyzeBlock(actx *AnalysisContext, block *ir.Node) {
	seenReturn := false
	for _, stmt := range block.Children {
		if seenReturn {
			a.warnf(stmt, "unreachable code")
		}
		a.analyzeStmt(actx, stmt)
		if stmt.Typ == ir.NReturn {
			seenReturn = true
		}
	}
}

func (a *Analyzer) analyzeStmt(actx *AnalysisContext, n *ir.Node) {
	switch n.Typ {
	case ir.NBlock:
		a.analyzeBlock(actx, n)
	case ir.NIf:
		a.analyzeCondition(actx, n.Children[0])
		a.analyzeStmt(actx, n.Children[1])
		if len(n.Children) > 2 {
			a.analyzeStmt(actx, n.Children[2])
		}
	case ir.NWhile:
		a.analyzeCondition(actx, n.Children[0])
		a.analyzeStmt(actx, n.Children[1])
	case ir.NDeclaration:
		a.analyzeDeclaration(actx, n)
	case ir.NExpressionStmt:
		a.analyzeExpr(actx, n.Children[0])
	case ir.NReturn:
		a.analyzeReturn(actx, n)
	case ir.NDelete:
		a.analyzeDelete(actx, n)
	case ir.NNullStatement:
		// No-op.
	default:
		a.errorf(n, "compiler error: %s is not a statement", n.Typ)
	}
}

func (a *Analyzer) analyzeCondition(actx *AnalysisContext, cond *ir.Node) {
	a.analyzeExpr(actx, cond)
}

func (a *Analyzer) analyzeReturn(actx *AnalysisContext, n *ir.Node) {
	if len(n.Children) == 0 {
		if actx.ReturnFQN != ir.Void && actx.ReturnFQN != "" {
			a.errorf(n, "non-void function must return a value")
		}
		return
	}
	if actx.ReturnFQN == ir.Void {
		a.errorf(n, "void function must not return a value")
		return
	}
	got := a.analyzeExpr(actx, n.Children[0])
	if got == ir.Unknown {
		return
	}
	if !a.assignable(actx.ReturnFQN, got, n.Children[0]) {
		a.errorf(n, "cannot return value of type %s from function returning %s", got, actx.ReturnFQN)
	}
}

func (a *Analyzer) analyzeDelete(actx *AnalysisContext, n *ir.Node) {
	fqn := a.analyzeExpr(actx, n.Children[0])
	if fqn == ir.Unknown {
		return
	}
	if !fqn.IsPointer() {
		a.errorf(n, "delete requires a pointer operand, got %s", fqn)
	}
}

// assignable reports whether a value of type src may be stored into (or
// returned as, or passed as) a location/parameter of type dst, using the
// same permissive conversions the FunctionResolver uses for constructor
// and call-argument matching.
func (a *Analyzer) assignable(dst, src ir.FQN, srcNode *ir.Node) bool {
	if src == ir.Unknown {
		return true
	}
	if dst == ir.Char && srcNode != nil && srcNode.Typ == ir.NIntLiteral {
		return true
	}
	return ir.ConversionAllowed(dst, src)
}
