// Package util holds the small ambient pieces every stage of the compiler
// shares: buffered assembly-text output, label generation, and CLI option
// parsing.
package util

import (
	"fmt"
	"io/ioutil"
	"strings"
)

// Writer buffers emitted FASM source text in a strings.Builder. Emission
// is single-threaded and cooperative, so unlike a multi-worker assembler
// backend this Writer needs no channel hand-off to a collector goroutine:
// the compiler's one thread calls Write/WriteString directly and fetches
// the final text with String.
type Writer struct {
	sb strings.Builder
}

// Write formats and appends a line (or fragment) of output.
func (w *Writer) Write(format string, args ...interface{}) {
	fmt.Fprintf(&w.sb, format, args...)
}

// WriteString appends s verbatim.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Ins0 writes a zero-operand instruction line, e.g. "ret".
func (w *Writer) Ins0(op string) {
	w.Write("\t%s\n", op)
}

// Ins1 writes a one-operand instruction line.
func (w *Writer) Ins1(op, a string) {
	w.Write("\t%s %s\n", op, a)
}

// Ins2 writes a two-operand instruction line.
func (w *Writer) Ins2(op, a, b string) {
	w.Write("\t%s %s, %s\n", op, a, b)
}

// Label writes a one-line label declaration.
func (w *Writer) Label(name string) {
	w.Write("%s:\n", name)
}

// Comment writes a FASM ';'-prefixed comment line.
func (w *Writer) Comment(format string, args ...interface{}) {
	w.Write("; "+format+"\n", args...)
}

// String returns the accumulated output.
func (w *Writer) String() string {
	return w.sb.String()
}

// WriteFile writes the accumulated output to path.
func (w *Writer) WriteFile(path string) error {
	return ioutil.WriteFile(path, []byte(w.sb.String()), 0644)
}
