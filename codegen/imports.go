package codegen

import "ctildec/ir"

// kernel32Funcs and msvcrtFuncs are the fixed runtime surface every
// emitted executable depends on regardless of user "#import" directives.
var kernel32Funcs = []string{"ExitProcess"}
var msvcrtFuncs = []string{"printf", "malloc", "free", "strlen", "strcpy", "memcpy"}

// ImportTable partitions every external (bodyless) function declaration
// across kernel32.dll, msvcrt.dll, and the user's own "#import"ed
// libraries, falling back to the program's primary library for any
// external function that names no library of its own.
type ImportTable struct {
	Libraries map[string][]string // dll name -> ordered, deduplicated function names.
	Order     []string            // Library emission order: kernel32, msvcrt, then user libraries in first-seen order.
}

// BuildImportTable scans every compilation unit's external function
// declarations and assembles the partitioned import table.
func BuildImportTable(prog *ir.Program) *ImportTable {
	t := &ImportTable{Libraries: make(map[string][]string)}
	t.addLib("kernel32.dll")
	t.Libraries["kernel32.dll"] = append([]string{}, kernel32Funcs...)
	t.addLib("msvcrt.dll")
	t.Libraries["msvcrt.dll"] = append([]string{}, msvcrtFuncs...)

	primary := ""
	if len(prog.Imports) > 0 {
		primary = prog.Imports[0]
	}
	for _, lib := range prog.Imports {
		t.addLib(lib)
	}

	seen := make(map[string]bool)
	for _, fn := range kernel32Funcs {
		seen[fn] = true
	}
	for _, fn := range msvcrtFuncs {
		seen[fn] = true
	}

	for _, u := range prog.CompilationUnits {
		for _, f := range u.Funcs {
			if !f.IsExternal() || f.IsMethod() {
				continue
			}
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			lib := f.Library
			if lib == "" {
				lib = primary
			}
			if lib == "" {
				continue
			}
			t.addLib(lib)
			t.Libraries[lib] = append(t.Libraries[lib], f.Name)
		}
	}
	return t
}

func (t *ImportTable) addLib(name string) {
	if _, ok := t.Libraries[name]; ok {
		return
	}
	t.Libraries[name] = nil
	t.Order = append(t.Order, name)
}
