package main

import (
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc"
)

func TestNeedsMore(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`door x = 1`, false},
		{`hawl f() {`, true},
		{"hawl f() {\n  celi 1\n}", false},
		{`door l = [1, 2,`, true},
		{`qor("{")`, false},
		{`qor('(')`, false},
		{`door s = "open`, true},
		{`door x = 1 // {`, false},
		{`/* {`, true},
		{`/* { */ door x = 1`, false},
		{`}`, false},
	}
	for _, tt := range tests {
		if got := needsMore(tt.src); got != tt.want {
			t.Errorf("needsMore(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestReplSession(t *testing.T) {
	script := heredoc.Doc(`
		tiro x = 5
		x = "shan"
		hawl laban(n) {
		    celi n * 2
		}
		laban(x)
		:vars
		:reset
		:vars
		:bogus
		:exit
		qor("never")
	`)
	code, out, errOut := runCmd(t, script, "repl", "--no-color")
	if code != exitOK {
		t.Fatalf("exit %d", code)
	}

	want := []string{"=> x = 5", "=> 10", "x = 5 (tiro)", "Session reset", "No variables"}
	pos := 0
	for _, w := range want {
		i := strings.Index(out[pos:], w)
		if i < 0 {
			t.Fatalf("stdout missing %q after offset %d:\n%s", w, pos, out)
		}
		pos += i + len(w)
	}
	if strings.Contains(out, "never") {
		t.Error("input after :exit should not run")
	}
	if !strings.Contains(errOut, "Type mismatch") {
		t.Errorf("stderr should report the type mismatch: %q", errOut)
	}
	if !strings.Contains(errOut, "Unknown command): :bogus") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestReplLoadAndInput(t *testing.T) {
	dir := t.TempDir()
	lib := writeProgram(t, dir, "lib.so", "door magac = \"Cali\"\n")

	script := ":load " + lib + "\ndoor jawaab = akhri()\nhaa\nqor(magac + \" \" + jawaab)\n"
	code, out, errOut := runCmd(t, script, "repl", "--no-color")
	if code != exitOK {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(out, "=> magac = Cali") {
		t.Errorf("load should echo the declaration: %q", out)
	}
	if !strings.Contains(out, "=> jawaab = haa") || !strings.Contains(out, "Cali haa\n") {
		t.Errorf("stdout = %q, stderr = %q", out, errOut)
	}
}
