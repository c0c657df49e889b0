package config

import (
	"testing"

	"github.com/BrettMayson/hemtt/internal/preprocessor"
)

// tok builds a token list with the preprocessor's lexer alone, without
// running directives or macro expansion, so config tests exercise only
// the parser/lints.
func tok(path, src string) []preprocessor.Token {
	return preprocessor.Tokenize(path, src)
}

func parse(t *testing.T, src string) *Config {
	t.Helper()
	cfg, diags := Parse(tok("test.hpp", src))
	if len(diags) != 0 {
		t.Logf("parse diagnostics: %v", diags)
	}
	return cfg
}

func TestParseSimpleEntry(t *testing.T) {
	cfg := parse(t, `value = 1;`)
	if len(cfg.Properties) != 1 {
		t.Fatalf("got %d properties, want 1", len(cfg.Properties))
	}
	p := cfg.Properties[0]
	if p.Kind != PropEntry || p.Name != "value" {
		t.Fatalf("got %+v", p)
	}
	if p.Value.Kind != ValNumber || p.Value.Int != 1 {
		t.Fatalf("got value %+v", p.Value)
	}
}

func TestParseClassWithParent(t *testing.T) {
	cfg := parse(t, `class Foo: Bar { value = 1; };`)
	p := cfg.Properties[0]
	if p.Kind != PropClass {
		t.Fatalf("got %+v", p)
	}
	if p.Class.Name != "Foo" || p.Class.Parent != "Bar" {
		t.Fatalf("got class %+v", p.Class)
	}
	if len(p.Class.Properties) != 1 {
		t.Fatalf("got %d nested properties", len(p.Class.Properties))
	}
}

func TestParseExternalClass(t *testing.T) {
	cfg := parse(t, `class Foo;`)
	p := cfg.Properties[0]
	if p.Class.Kind != ClassExternal {
		t.Fatalf("got %+v", p.Class)
	}
}

func TestParseDelete(t *testing.T) {
	cfg := parse(t, `delete Foo;`)
	p := cfg.Properties[0]
	if p.Kind != PropDelete || p.Name != "Foo" {
		t.Fatalf("got %+v", p)
	}
}

func TestParseArrayEntry(t *testing.T) {
	cfg := parse(t, `items[] = {"a","b",1};`)
	p := cfg.Properties[0]
	if p.Value.Kind != ValArray {
		t.Fatalf("got %+v", p.Value)
	}
	if len(p.Value.Items) != 3 {
		t.Fatalf("got %d items", len(p.Value.Items))
	}
	if p.Value.Items[0].Str != "a" {
		t.Fatalf("got %+v", p.Value.Items[0])
	}
}

func TestParseExpandAssign(t *testing.T) {
	cfg := parse(t, `items[] += {"a"};`)
	p := cfg.Properties[0]
	if !p.Value.ExpandAssign {
		t.Fatalf("expected expand assign, got %+v", p.Value)
	}
}

func TestParseString(t *testing.T) {
	cfg := parse(t, `name = "it""s";`)
	p := cfg.Properties[0]
	if p.Value.Str != `it"s` {
		t.Fatalf("got %q", p.Value.Str)
	}
}

func TestParseNegativeFloat(t *testing.T) {
	cfg := parse(t, `value = -1.5;`)
	p := cfg.Properties[0]
	if p.Value.Kind != ValNumber || p.Value.NumKind != NumFloat32 {
		t.Fatalf("got %+v", p.Value)
	}
	if p.Value.Float != -1.5 {
		t.Fatalf("got %v", p.Value.Float)
	}
}

func TestMissingSemicolonLint(t *testing.T) {
	_, diags := Parse(tok("test.hpp", "value = 1"))
	if len(diags) != 1 || diags[0].Ident() != "CE4" {
		t.Fatalf("got %v", diags)
	}
}

func TestLintUnexpectedArray(t *testing.T) {
	cfg := parse(t, `name = {1,2};`)
	diags := Lint(cfg, "")
	found := false
	for _, d := range diags {
		if d.Ident() == "CE5" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CE5, got %v", diags)
	}
}

func TestLintDuplicateProperty(t *testing.T) {
	cfg := parse(t, `value = 1; value = 2;`)
	diags := Lint(cfg, "")
	found := false
	for _, d := range diags {
		if d.Ident() == "CE3" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CE3, got %v", diags)
	}
}

func TestLintUndeclaredParent(t *testing.T) {
	cfg := parse(t, `class Foo: Bar { value = 1; };`)
	diags := Lint(cfg, "")
	found := false
	for _, d := range diags {
		if d.Ident() == "CE7" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CE7, got %v", diags)
	}
}

func TestLintParentDeclaredEarlierIsFine(t *testing.T) {
	cfg := parse(t, `class Bar { }; class Foo: Bar { value = 1; };`)
	diags := Lint(cfg, "")
	for _, d := range diags {
		if d.Ident() == "CE7" {
			t.Fatalf("unexpected CE7: %v", diags)
		}
	}
}

func TestLintParentCaseWarning(t *testing.T) {
	cfg := parse(t, `class Bar { }; class Foo: BAR { };`)
	diags := Lint(cfg, "")
	found := false
	for _, d := range diags {
		if d.Ident() == "CW1" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CW1, got %v", diags)
	}
}

func TestLintDuplicateClass(t *testing.T) {
	cfg := parse(t, `class Foo { }; class Foo { };`)
	diags := Lint(cfg, "")
	found := false
	for _, d := range diags {
		if d.Ident() == "CE8" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CE8, got %v", diags)
	}
}

func TestLintMagazineWells(t *testing.T) {
	src := `
class CfgMagazines {
	class ace_mag_30rnd {};
};
class CfgMagazineWells {
	class ace_well {
		ACE_Magazines[] = {"ace_mag_30rnd", "ace_mag_missing"};
	};
};`
	cfg := parse(t, src)
	diags := Lint(cfg, "")
	found := false
	for _, d := range diags {
		if d.Ident() == "CW2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected CW2, got %v", diags)
	}
}
