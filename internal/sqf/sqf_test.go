package sqf

import (
	"encoding/binary"
	"testing"
)

func TestLexNumbersAndStrings(t *testing.T) {
	toks, err := Lex(`1 1.5 0x1F "a""b" 'c'`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	want := []struct {
		kind TokenKind
		text string
	}{
		{TNumber, "1"}, {TNumber, "1.5"}, {TNumber, "0x1F"},
		{TString, `a"b`}, {TString, "c"}, {TEOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Errorf("token %d = %v, want {%v %q}", i, toks[i], w.kind, w.text)
		}
	}
}

func TestParseAssignmentAndBinary(t *testing.T) {
	root, errs := Parse("test.sqf", `_x = 1 + 2 * 3;`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if len(root.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(root.Statements))
	}
	assign := root.Statements[0]
	if assign.Kind != Assignment || assign.Name != "_x" || !assign.Local {
		t.Fatalf("unexpected assignment node: %+v", assign)
	}
	add := assign.Value
	if add.Kind != BinaryCommand || add.Name != "+" {
		t.Fatalf("expected top-level '+', got %+v", add)
	}
	mul := add.Rhs
	if mul.Kind != BinaryCommand || mul.Name != "*" {
		t.Fatalf("expected '*' to bind tighter than '+', got %+v", mul)
	}
}

func TestParseUnaryAndNular(t *testing.T) {
	root, errs := Parse("test.sqf", `hint str player;`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	hint := root.Statements[0]
	if hint.Kind != UnaryCommand || hint.Name != "hint" {
		t.Fatalf("expected unary 'hint', got %+v", hint)
	}
	str := hint.Arg
	if str.Kind != UnaryCommand || str.Name != "str" {
		t.Fatalf("expected unary 'str', got %+v", str)
	}
	if str.Arg.Kind != NularCommand || str.Arg.Name != "player" {
		t.Fatalf("expected nular 'player', got %+v", str.Arg)
	}
}

func TestParseInvalidTokenReportsSPE1(t *testing.T) {
	_, errs := Parse("test.sqf", `_x = @;`)
	if len(errs) == 0 {
		t.Fatal("expected a parse diagnostic for '@'")
	}
	if errs[0].Ident() != "SPE1" {
		t.Fatalf("got ident %s, want SPE1", errs[0].Ident())
	}
}

func TestAnalyzeRequiredVersion(t *testing.T) {
	root, _ := Parse("test.sqf", `createHashMapFromArray [];`)
	codes := Analyze("test.sqf", root, 1.50)
	found := false
	for _, c := range codes {
		if c.Ident() == "SAE1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected SAE1 for a command newer than the declared requiredVersion, got %v", codes)
	}
}

func TestAnalyzeFindAdvice(t *testing.T) {
	root, _ := Parse("test.sqf", `_x = (["a","b"] find "b") != -1;`)
	codes := Analyze("test.sqf", root, 0)
	found := false
	for _, c := range codes {
		if c.Ident() == "SAA2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected SAA2 advice for find/-1 pattern, got %v", codes)
	}
}

func TestCompileProducesMagicAndDedupesConstants(t *testing.T) {
	root, errs := Parse("test.sqf", `_x = 1 + 1;`)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	out, err := Compile(root)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if string(out[:4]) != "SQFC" {
		t.Fatalf("missing SQFC magic, got %q", out[:4])
	}
	// The literal 1 is pooled once, next to "+" and "_x".
	if n := binary.LittleEndian.Uint32(out[4:8]); n != 3 {
		t.Fatalf("constant pool has %d entries, want 3", n)
	}
}
