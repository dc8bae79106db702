package util

import "fmt"

// Label kinds for the canonical control-flow label pairs the statement
// generator emits.
const (
	LabelIfElse = iota
	LabelIfEnd
	LabelWhileStart
	LabelWhileEnd
)

var labelPrefixes = [...]string{
	LabelIfElse:     "_if_else",
	LabelIfEnd:      "_if_end",
	LabelWhileStart: "_while_start",
	LabelWhileEnd:   "_while_end",
}

// LabelGen hands out sequentially numbered assembly labels. Emission is
// single-threaded, so this is a plain counter with no request/response
// round trip.
type LabelGen struct {
	next [len(labelPrefixes)]int
}

// New returns the next label of kind typ, e.g. "_if_else_3".
func (g *LabelGen) New(typ int) string {
	n := g.next[typ]
	g.next[typ]++
	return fmt.Sprintf("%s_%d", labelPrefixes[typ], n)
}

// IfPair returns a fresh (else, end) label pair for one if-statement.
func (g *LabelGen) IfPair() (elseLabel, endLabel string) {
	return g.New(LabelIfElse), g.New(LabelIfEnd)
}

// WhilePair returns a fresh (start, end) label pair for one while-loop.
func (g *LabelGen) WhilePair() (startLabel, endLabel string) {
	return g.New(LabelWhileStart), g.New(LabelWhileEnd)
}
