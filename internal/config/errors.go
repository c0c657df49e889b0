package config

import (
	"fmt"

	"github.com/BrettMayson/hemtt/internal/diag"
)

// Each constructor below produces a diag.Code for one CE##/CW## ident.

func label(path string, sp diag.Span, msg string) diag.Label {
	return diag.Label{Path: path, Span: sp, Message: msg, Primary: true}
}

func errInvalidValue(path string, sp diag.Span) *diag.Simple {
	return diag.New("CE1", diag.Error, "invalid value").
		WithLabel(label(path, sp, "not a valid string, number, array, or expression"))
}

func errInvalidMacroValue(path string, sp diag.Span) *diag.Simple {
	return diag.New("CE2", diag.Error, "invalid value produced by macro expansion").
		WithLabel(label(path, sp, "macro expansion produced this"))
}

func errDuplicateProperty(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("CE3", diag.Error, fmt.Sprintf("property %q is declared more than once in this scope", name)).
		WithLabel(label(path, sp, "duplicate declaration"))
}

func errMissingSemicolon(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("CE4", diag.Error, fmt.Sprintf("missing ';' after %q", name)).
		WithLabel(label(path, sp, "expected ';' here"))
}

func errUnexpectedArray(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("CE5", diag.Error, fmt.Sprintf("%s has an array value but is missing '[]'", name)).
		WithLabel(label(path, sp, "array value without '[]'")).
		WithSuggestion(diag.Suggestion{Message: fmt.Sprintf("add '[]' to %s", name), Replacement: name + "[]", Path: path, Span: sp})
}

func errUndeclaredParent(path string, sp diag.Span, parent string) *diag.Simple {
	return diag.New("CE7", diag.Error, fmt.Sprintf("parent class %q is not declared in any reachable scope", parent)).
		WithLabel(label(path, sp, "undeclared parent"))
}

func errDuplicateClass(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("CE8", diag.Error, fmt.Sprintf("class %q is declared more than once in this scope", name)).
		WithLabel(label(path, sp, "duplicate class"))
}

func warnParentCase(path string, sp diag.Span, parent, declared string) *diag.Simple {
	return diag.New("CW1", diag.Warning,
		fmt.Sprintf("parent reference %q differs only in case from its declaration %q", parent, declared)).
		WithLabel(label(path, sp, "case mismatch"))
}

func warnMissingMagazine(path string, sp diag.Span, magazine string) *diag.Simple {
	return diag.New("CW2", diag.Warning,
		fmt.Sprintf("magazine %q is listed in CfgMagazineWells but absent from CfgMagazines", magazine)).
		WithLabel(label(path, sp, "unknown magazine"))
}
