package codegen

import (
	"strings"

	"ctildec/ir"
	"ctildec/util"
)

// StringTable collects the string literals a program tree references,
// keyed by their pre-assigned emission label (e.g. "str3"), in first-seen
// order so the .data section is emitted deterministically.
type StringTable struct {
	order []string
	value map[string]string
}

// NewStringTable returns an empty StringTable.
func NewStringTable() *StringTable {
	return &StringTable{value: make(map[string]string)}
}

// Collect walks body and records every NStringLiteral it finds.
func (t *StringTable) Collect(body *ir.Node) {
	ir.Walk(body, func(n *ir.Node) {
		if n.Typ != ir.NStringLiteral {
			return
		}
		lit := n.Data.(ir.StringLit)
		if _, seen := t.value[lit.Label]; seen {
			return
		}
		t.order = append(t.order, lit.Label)
		t.value[lit.Label] = lit.Value
	})
}

// Emit writes one "label db ...,0" line per collected string to w.
func (t *StringTable) Emit(w *util.Writer) {
	for _, label := range t.order {
		w.Write("%s db %s\n", label, fasmEscape(t.value[label]))
	}
}

// fasmEscape renders s as a FASM byte-list literal: printable runs become
// single-quoted 'text' segments, and NUL, newline, tab, carriage return,
// single quote and double quote are split out as bare byte-valued
// operands, with a trailing 0 terminator.
func fasmEscape(s string) string {
	var parts []string
	var run strings.Builder

	flush := func() {
		if run.Len() > 0 {
			parts = append(parts, "'"+run.String()+"'")
			run.Reset()
		}
	}

	for _, r := range s {
		switch r {
		case 0:
			flush()
			parts = append(parts, "0")
		case '\n':
			flush()
			parts = append(parts, "10")
		case '\t':
			flush()
			parts = append(parts, "9")
		case '\r':
			flush()
			parts = append(parts, "13")
		case '\'':
			flush()
			parts = append(parts, "39")
		case '"':
			flush()
			parts = append(parts, "34")
		default:
			run.WriteRune(r)
		}
	}
	flush()
	parts = append(parts, "0")
	return strings.Join(parts, ",")
}
