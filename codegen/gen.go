// Package codegen lowers an analyzed program tree to FASM source text
// targeting a 32-bit x86 PE executable: one label and prologue/epilogue
// pair per function/method/constructor/destructor, a stack/EAX evaluation
// convention with no register allocation, and a vtable + import table
// assembled from the same ir.Context the analyzer consulted.
package codegen

import (
	"fmt"

	"ctildec/ir"
	"ctildec/util"
)

// Gen holds everything shared across the whole emission: the wired
// service context, the output buffer, label and string-literal state,
// and the import table.
type Gen struct {
	Ctx     *ir.Context
	W       *util.Writer
	Labels  *util.LabelGen
	Strings *StringTable
	Imports *ImportTable
}

// FuncGen is the per-function/method/ctor/dtor state the statement and
// expression generators consult: its stack frame, owner struct (nil for a
// free function), and return-type/hidden-pointer bookkeeping.
type FuncGen struct {
	Symbols   *ir.SymbolTable
	Owner     *ir.StructDefinition
	Namespace string
	Unit      *ir.CompilationUnit
	ReturnFQN ir.FQN
}

// Emit lowers every function, method, constructor and destructor known to
// ctx into one FASM source text. ctx's program tree must already have
// been analyzed without errors; Emit trusts that pass completely and
// panics (never returns a diagnostic) on any inconsistency it finds,
// since that indicates a compiler bug rather than a user error.
func Emit(ctx *ir.Context) (string, error) {
	g := &Gen{
		Ctx:     ctx,
		W:       &util.Writer{},
		Labels:  &util.LabelGen{},
		Strings: NewStringTable(),
		Imports: BuildImportTable(ctx.Repo.Program()),
	}

	g.collectStrings()

	g.W.WriteString("format PE GUI 4.0\n")
	g.W.WriteString("entry start\n\n")

	g.W.WriteString("section '.data' data readable writable\n")
	g.Strings.Emit(g.W)
	g.W.WriteString("\n")

	if g.hasAnyVTable() {
		g.W.WriteString("section '.rdata' data readable\n")
		g.emitVTables()
		g.W.WriteString("\n")
	}

	g.W.WriteString("section '.text' code readable executable\n")
	g.emitStartStub()
	g.emitFunctions()
	g.W.WriteString("\n")

	g.W.WriteString("section '.idata' import data readable writable\n")
	g.emitImports()

	return g.W.String(), nil
}

func (g *Gen) collectStrings() {
	for _, u := range g.Ctx.Repo.Program().CompilationUnits {
		for _, f := range u.Funcs {
			g.Strings.Collect(f.Body)
		}
	}
	for _, s := range g.Ctx.Repo.Structs() {
		if s.IsTemplate() {
			continue
		}
		for _, m := range s.Methods {
			g.Strings.Collect(m.Body)
		}
		for _, c := range s.Constructors {
			g.Strings.Collect(c.Body)
		}
		for _, d := range s.Destructors {
			g.Strings.Collect(d.Body)
		}
	}
}

func (g *Gen) hasAnyVTable() bool {
	for _, s := range g.Ctx.Repo.Structs() {
		if s.IsTemplate() {
			continue
		}
		if has, _ := g.Ctx.VTables.HasVTable(s.FQN()); has {
			return true
		}
	}
	return false
}

func (g *Gen) emitVTables() {
	for _, s := range g.Ctx.Repo.Structs() {
		if s.IsTemplate() {
			continue
		}
		vt, err := g.Ctx.VTables.VTable(s.FQN())
		if err != nil {
			panic(fmt.Sprintf("vtable: %v", err))
		}
		if len(vt) == 0 {
			continue
		}
		g.W.Label(VTableLabel(s.FQN()))
		for _, slot := range vt {
			if slot.IsDtor {
				g.W.Write("\tdd %s\n", DestructorLabel(mustStruct(g.Ctx, slot.Owner)))
			} else {
				g.W.Write("\tdd %s\n", FunctionLabel(slot.Method))
			}
		}
	}
}

func mustStruct(ctx *ir.Context, fqn ir.FQN) *ir.StructDefinition {
	s, ok := ctx.Repo.Struct(fqn)
	if !ok {
		panic(fmt.Sprintf("compiler error: unknown struct %s", fqn))
	}
	return s
}

func (g *Gen) emitStartStub() {
	g.W.WriteString("\n")
	g.W.Label("start")
	g.W.Ins1("call", "_main")
	g.W.Ins1("push", "eax")
	g.W.Ins1("call", "[ExitProcess]")
}

func (g *Gen) emitFunctions() {
	for _, u := range g.Ctx.Repo.Program().CompilationUnits {
		for _, f := range u.Funcs {
			if f.IsMethod() || f.IsExternal() {
				continue
			}
			g.emitFreeFunction(f)
		}
	}
	for _, s := range g.Ctx.Repo.Structs() {
		if s.IsTemplate() {
			continue
		}
		for _, m := range s.Methods {
			g.emitMethod(s, m)
		}
		for _, c := range s.Constructors {
			g.emitConstructor(s, c)
		}
		for _, d := range s.Destructors {
			g.emitDestructor(s, d)
		}
	}
}

func (g *Gen) emitImports() {
	g.W.WriteString("\n")
	for _, lib := range g.Imports.Order {
		g.W.Write("dd 0,0,0,RVA %s_name,RVA %s_table\n", libSymbol(lib), libSymbol(lib))
	}
	g.W.WriteString("dd 0,0,0,0,0\n\n")
	for _, lib := range g.Imports.Order {
		g.W.Write("%s_table:\n", libSymbol(lib))
		for _, fn := range g.Imports.Libraries[lib] {
			g.W.Write("\t%s dd RVA %s_fn\n", fn, fn)
		}
		g.W.Write("\tdd 0\n")
	}
	g.W.WriteString("\n")
	for _, lib := range g.Imports.Order {
		g.W.Write("%s_name db '%s',0\n", libSymbol(lib), lib)
		for _, fn := range g.Imports.Libraries[lib] {
			g.W.Write("%s_fn dw 0\n\tdb '%s',0\n", fn, fn)
		}
	}
}

func libSymbol(lib string) string {
	out := make([]byte, 0, len(lib))
	for i := 0; i < len(lib); i++ {
		c := lib[i]
		if c == '.' {
			out = append(out, '_')
		} else {
			out = append(out, c)
		}
	}
	return string(out)
}
