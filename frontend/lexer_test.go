package frontend

import (
	"testing"

	"ctildec/ir"
)

// tok builds the expected-token shape this test compares against, leaving
// Line/Col out of the comparison; line numbers are exercised by
// TestLexerLineTracking instead.
type tok struct {
	kind, text string
}

func lexOrFatal(t *testing.T, src string) []ir.Token {
	t.Helper()
	toks, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex(%q): %s", src, err)
	}
	return toks
}

func TestLexerBasicDeclaration(t *testing.T) {
	toks := lexOrFatal(t, "int x = 4 + y;")
	want := []tok{
		{"keyword", "int"}, {"identifier", "x"}, {"operator", "="},
		{"integer", "4"}, {"operator", "+"}, {"identifier", "y"},
		{"punctuator", ";"}, {"eof", ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || (w.kind != "eof" && toks[i].Text != w.text) {
			t.Errorf("token %d = {%s %q}, want {%s %q}", i, toks[i].Kind, toks[i].Text, w.kind, w.text)
		}
	}
}

func TestLexerTwoCharOperators(t *testing.T) {
	toks := lexOrFatal(t, "a::b->c == d != e && f || g <= h >= i")
	var texts []string
	for _, tk := range toks {
		if tk.Kind != "eof" {
			texts = append(texts, tk.Text)
		}
	}
	want := []string{"a", "::", "b", "->", "c", "==", "d", "!=", "e", "&&", "f", "||", "g", "<=", "h", ">=", "i"}
	if len(texts) != len(want) {
		t.Fatalf("got %v, want %v", texts, want)
	}
	for i, w := range want {
		if texts[i] != w {
			t.Errorf("token %d = %q, want %q", i, texts[i], w)
		}
	}
}

func TestLexerStringAndCharLiterals(t *testing.T) {
	toks := lexOrFatal(t, `"hello" 'a' '\n'`)
	if toks[0].Kind != "string" || toks[0].Text != "hello" {
		t.Errorf("string token = %+v", toks[0])
	}
	if toks[1].Kind != "char" || toks[1].Text != "a" {
		t.Errorf("char token = %+v", toks[1])
	}
	if toks[2].Kind != "char" {
		t.Errorf("escaped char token kind = %s, want char", toks[2].Kind)
	}
}

func TestLexerNumberForms(t *testing.T) {
	toks := lexOrFatal(t, "42 0x1F 3.14")
	if toks[0].Kind != "integer" || toks[0].Text != "42" {
		t.Errorf("integer token = %+v", toks[0])
	}
	if toks[1].Kind != "hex" || toks[1].Text != "0x1F" {
		t.Errorf("hex token = %+v", toks[1])
	}
	if toks[2].Kind != "float" || toks[2].Text != "3.14" {
		t.Errorf("float token = %+v", toks[2])
	}
}

func TestLexerSkipsCommentsAndEmitsDirective(t *testing.T) {
	toks := lexOrFatal(t, "// a comment\n#import \"msvcrt.dll\";\nint x;")
	if toks[0].Kind != "directive" {
		t.Fatalf("expected directive token first, got %+v", toks[0])
	}
	if toks[1].Kind != "keyword" || toks[1].Text != "int" {
		t.Errorf("expected 'int' keyword after directive, got %+v", toks[1])
	}
}

func TestLexerLineTracking(t *testing.T) {
	toks := lexOrFatal(t, "int x;\nint y;")
	var secondLine int
	for _, tk := range toks {
		if tk.Kind == "identifier" && tk.Text == "y" {
			secondLine = tk.Line
		}
	}
	if secondLine != 2 {
		t.Errorf("identifier 'y' reported on line %d, want 2", secondLine)
	}
}

func TestLexerUnrecognizedCharacterErrors(t *testing.T) {
	if _, err := Lex("int x = @;"); err == nil {
		t.Errorf("expected a lexical error for '@', got none")
	}
}

func TestLexerKeywordVsIdentifier(t *testing.T) {
	toks := lexOrFatal(t, "struct structure")
	if toks[0].Kind != "keyword" {
		t.Errorf("'struct' lexed as %s, want keyword", toks[0].Kind)
	}
	if toks[1].Kind != "identifier" {
		t.Errorf("'structure' lexed as %s, want identifier (keyword prefix must not shadow a longer identifier)", toks[1].Kind)
	}
}
