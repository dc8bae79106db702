package sema

import (
	"fmt"

	"go.uber.org/multierr"

	"ctildec/ir"
)

// Runner drives the Analyzer to a fixed point over an entire program:
// analyzing a call can trigger monomorphization, which appends new
// structs (and thus new methods) to the repository, so a single pass is
// not enough to guarantee every reachable instantiation was type-checked.
type Runner struct {
	Ctx *ir.Context
}

// NewRunner constructs a Runner over ctx.
func NewRunner(ctx *ir.Context) *Runner {
	return &Runner{Ctx: ctx}
}

// Run analyzes every function, method, constructor and destructor across
// every compilation unit, re-running whenever a pass grows the struct
// repository, until a pass leaves it unchanged. It returns the
// diagnostics of the final, stable pass. The second return value
// aggregates any internal invariant violations caught during the run
// (each also surfaces as a single fatal diagnostic in the first return
// value); callers that only care about user-facing exit status need not
// inspect it.
func (rn *Runner) Run() (*ir.Diagnostics, error) {
	var internal error
	var diags *ir.Diagnostics
	prevCount := -1

	for {
		diags = &ir.Diagnostics{}
		rn.runOnePass(diags, &internal)

		count := len(rn.Ctx.Repo.Structs())
		if count == prevCount {
			break
		}
		prevCount = count
	}

	return diags, internal
}

func (rn *Runner) runOnePass(diags *ir.Diagnostics, internal *error) {
	for _, s := range rn.Ctx.Repo.Structs() {
		if s.IsTemplate() {
			continue
		}
		for _, m := range s.Methods {
			rn.analyzeGuarded(diags, internal, s.Unit, func(a *Analyzer) {
				rn.analyzeMethod(a, s, m)
			})
		}
		for _, c := range s.Constructors {
			rn.analyzeGuarded(diags, internal, s.Unit, func(a *Analyzer) {
				rn.analyzeConstructor(a, s, c)
			})
		}
		for _, d := range s.Destructors {
			rn.analyzeGuarded(diags, internal, s.Unit, func(a *Analyzer) {
				rn.analyzeDestructor(a, s, d)
			})
		}
	}

	for _, u := range rn.Ctx.Repo.Program().CompilationUnits {
		for _, f := range u.Funcs {
			if f.IsMethod() || f.IsExternal() {
				continue
			}
			rn.analyzeGuarded(diags, internal, u, func(a *Analyzer) {
				rn.analyzeFreeFunction(a, f)
			})
		}
	}
}

// analyzeGuarded runs fn under recover(), converting any panic (an
// internal invariant violation, never expected in a well-formed program)
// into a single fatal diagnostic instead of crashing the whole run.
func (rn *Runner) analyzeGuarded(diags *ir.Diagnostics, internal *error, unit *ir.CompilationUnit, fn func(a *Analyzer)) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("internal invariant violation: %v", r)
			*internal = multierr.Append(*internal, err)
			diags.Errorf(unit.FilePath, 0, 0, "internal compiler error: %v", r)
		}
	}()
	a := NewAnalyzer(rn.Ctx, diags)
	fn(a)
}

func (rn *Runner) analyzeFreeFunction(a *Analyzer, f *ir.FunctionDeclaration) {
	if f.Body == nil {
		return
	}
	returnFQN, err := a.Ctx.Resolver.Resolve(f.ReturnType, f.Namespace, f.Unit)
	if err != nil {
		a.Diags.Errorf(f.Unit.FilePath, f.Tok.Line, f.Tok.Col, "%s", err)
		return
	}
	st, err := ir.BuildSymbolTable(a.Ctx, "", f.Parameters, returnFQN, f.Body, f.Unit, f.Namespace)
	if err != nil {
		a.Diags.Errorf(f.Unit.FilePath, f.Tok.Line, f.Tok.Col, "%s", err)
		return
	}
	actx := &AnalysisContext{Symbols: st, Unit: f.Unit, Namespace: f.Namespace, ReturnFQN: returnFQN}
	a.AnalyzeFunction(actx, f.Body)
}

func (rn *Runner) analyzeMethod(a *Analyzer, owner *ir.StructDefinition, m *ir.FunctionDeclaration) {
	if m.Body == nil {
		return
	}
	returnFQN, err := a.Ctx.Resolver.Resolve(m.ReturnType, owner.Namespace, owner.Unit)
	if err != nil {
		a.Diags.Errorf(owner.Unit.FilePath, m.Tok.Line, m.Tok.Col, "%s", err)
		return
	}
	st, err := ir.BuildSymbolTable(a.Ctx, owner.FQN(), m.Parameters, returnFQN, m.Body, owner.Unit, owner.Namespace)
	if err != nil {
		a.Diags.Errorf(owner.Unit.FilePath, m.Tok.Line, m.Tok.Col, "%s", err)
		return
	}
	actx := &AnalysisContext{Symbols: st, Unit: owner.Unit, Namespace: owner.Namespace, OwnerStruct: owner.FQN(), ReturnFQN: returnFQN}
	a.AnalyzeFunction(actx, m.Body)
}

func (rn *Runner) analyzeConstructor(a *Analyzer, owner *ir.StructDefinition, c *ir.ConstructorDeclaration) {
	st, err := ir.BuildSymbolTable(a.Ctx, owner.FQN(), c.Parameters, "", c.Body, owner.Unit, owner.Namespace)
	if err != nil {
		a.Diags.Errorf(owner.Unit.FilePath, c.Tok.Line, c.Tok.Col, "%s", err)
		return
	}
	actx := &AnalysisContext{Symbols: st, Unit: owner.Unit, Namespace: owner.Namespace, OwnerStruct: owner.FQN(), ReturnFQN: ir.Void}

	if c.BaseInitializer != nil && owner.BaseName != nil {
		baseFQN, err := a.Ctx.Resolver.Resolve(owner.BaseName, owner.Namespace, owner.Unit)
		if err != nil {
			a.Diags.Errorf(owner.Unit.FilePath, c.Tok.Line, c.Tok.Col, "%s", err)
		} else {
			argFQNs := make([]ir.FQN, len(c.BaseInitializer.Args))
			for i, arg := range c.BaseInitializer.Args {
				argFQNs[i] = a.analyzeExpr(actx, arg)
			}
			if _, err := a.Ctx.Funcs.Constructor(baseFQN, argFQNs); err != nil {
				a.Diags.Errorf(owner.Unit.FilePath, c.Tok.Line, c.Tok.Col, "%s", err)
			}
		}
	}

	if c.Body != nil {
		a.AnalyzeFunction(actx, c.Body)
	}
}

func (rn *Runner) analyzeDestructor(a *Analyzer, owner *ir.StructDefinition, d *ir.DestructorDeclaration) {
	if d.Body == nil {
		return
	}
	st, err := ir.BuildSymbolTable(a.Ctx, owner.FQN(), nil, "", d.Body, owner.Unit, owner.Namespace)
	if err != nil {
		a.Diags.Errorf(owner.Unit.FilePath, d.Tok.Line, d.Tok.Col, "%s", err)
		return
	}
	actx := &AnalysisContext{Symbols: st, Unit: owner.Unit, Namespace: owner.Namespace, OwnerStruct: owner.FQN(), ReturnFQN: ir.Void}
	a.AnalyzeFunction(actx, d.Body)
}
