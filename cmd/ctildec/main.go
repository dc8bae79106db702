package main

import (
	"fmt"
	"os"

	"ctildec/codegen"
	"ctildec/frontend"
	"ctildec/ir"
	"ctildec/sema"
	"ctildec/util"
)

// run drives every compiler stage in order, from source text to FASM
// output, returning the first stage's error.
func run(opt util.Options) error {
	src, err := os.ReadFile(opt.Src)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	unit, imports, err := frontend.ParseFile(opt.Src, string(src))
	if err != nil {
		return fmt.Errorf("parse error: %s", err)
	}

	if opt.Tree {
		for _, s := range unit.Structs {
			fmt.Printf("struct %s\n", s.Name)
		}
		for _, f := range unit.Funcs {
			fmt.Printf("func %s\n", f.Name)
			if f.Body != nil {
				f.Body.Print(1)
			}
		}
		return nil
	}

	prog := &ir.Program{Imports: imports, CompilationUnits: []*ir.CompilationUnit{unit}}
	ctx, err := ir.NewContext(prog)
	if err != nil {
		return fmt.Errorf("type repository error: %s", err)
	}

	diags, internal := sema.NewRunner(ctx).Run()
	for _, d := range diags.All() {
		fmt.Println(d.String())
	}
	if internal != nil {
		return fmt.Errorf("internal compiler error: %s", internal)
	}
	if diags.HasErrors() {
		return fmt.Errorf("compilation failed with errors")
	}

	asm, err := codegen.Emit(ctx)
	if err != nil {
		return fmt.Errorf("code generation error: %s", err)
	}

	w := &util.Writer{}
	w.WriteString(asm)
	if err := w.WriteFile(opt.Out); err != nil {
		return fmt.Errorf("could not write output file: %s", err)
	}

	if opt.Verbose {
		fmt.Printf("wrote %s\n", opt.Out)
	}
	return nil
}

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("command line argument error: %s\n", err)
		os.Exit(1)
	}

	if err := run(opt); err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
}
