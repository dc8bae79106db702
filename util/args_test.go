package util

import (
	"os"
	"testing"
)

func withArgs(t *testing.T, args []string, fn func()) {
	t.Helper()
	saved := os.Args
	os.Args = append([]string{"ctildec"}, args...)
	defer func() { os.Args = saved }()
	fn()
}

func TestParseArgsRequiresSource(t *testing.T) {
	withArgs(t, nil, func() {
		if _, err := ParseArgs(); err == nil {
			t.Errorf("expected error for missing source file, got none")
		}
	})
}

func TestParseArgsDefaultsOut(t *testing.T) {
	withArgs(t, []string{"prog.ct"}, func() {
		opt, err := ParseArgs()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if opt.Out != defaultOut {
			t.Errorf("Out = %q, want default %q", opt.Out, defaultOut)
		}
		if opt.Src != "prog.ct" {
			t.Errorf("Src = %q, want %q", opt.Src, "prog.ct")
		}
	})
}

func TestParseArgsFlags(t *testing.T) {
	withArgs(t, []string{"-o", "out.asm", "-vb", "-tree", "prog.ct"}, func() {
		opt, err := ParseArgs()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if opt.Out != "out.asm" || !opt.Verbose || !opt.Tree || opt.Src != "prog.ct" {
			t.Errorf("unexpected options: %+v", opt)
		}
	})
}

func TestParseArgsMissingOutputPath(t *testing.T) {
	withArgs(t, []string{"-o"}, func() {
		if _, err := ParseArgs(); err == nil {
			t.Errorf("expected error for -o with no argument")
		}
	})
}

func TestParseArgsUnknownFlag(t *testing.T) {
	withArgs(t, []string{"--bogus", "prog.ct"}, func() {
		if _, err := ParseArgs(); err == nil {
			t.Errorf("expected error for unknown flag")
		}
	})
}
