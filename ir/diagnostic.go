package ir

import "fmt"

// Severity classifies a Diagnostic as blocking emission or merely advisory.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Diagnostic is one analyzer- or generator-reported finding.
type Diagnostic struct {
	FilePath string
	Message  string
	Line     int
	Col      int
	Sev      Severity
}

// String renders a Diagnostic as "path:line:col: severity: message", the
// compiler-convention format this repository standardizes on.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.FilePath, d.Line, d.Col, d.Sev, d.Message)
}

// Error lets a Diagnostic satisfy the error interface, so a single fatal
// diagnostic can be returned and wrapped like any other Go error.
func (d Diagnostic) Error() string {
	return d.String()
}

// Diagnostics is an ordered collector of Diagnostic records. Analysis runs
// single-threaded and cooperatively, so this collector is deliberately not
// safe for concurrent use — there is no mutex to pay for.
type Diagnostics struct {
	items []Diagnostic
}

// Add appends one diagnostic in encounter order.
func (d *Diagnostics) Add(diag Diagnostic) {
	d.items = append(d.items, diag)
}

// Errorf appends an error-severity diagnostic built from a format string.
func (d *Diagnostics) Errorf(file string, line, col int, format string, args ...interface{}) {
	d.Add(Diagnostic{FilePath: file, Line: line, Col: col, Sev: Error, Message: fmt.Sprintf(format, args...)})
}

// Warnf appends a warning-severity diagnostic built from a format string.
func (d *Diagnostics) Warnf(file string, line, col int, format string, args ...interface{}) {
	d.Add(Diagnostic{FilePath: file, Line: line, Col: col, Sev: Warning, Message: fmt.Sprintf(format, args...)})
}

// All returns every collected diagnostic, in encounter order.
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// HasErrors reports whether any collected diagnostic has error severity,
// the condition that makes the compiler's exit status nonzero.
func (d *Diagnostics) HasErrors() bool {
	for _, e := range d.items {
		if e.Sev == Error {
			return true
		}
	}
	return false
}

// Merge appends every diagnostic from other onto d, preserving order.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}
	d.items = append(d.items, other.items...)
}
