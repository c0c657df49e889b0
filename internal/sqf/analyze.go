package sqf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/BrettMayson/hemtt/internal/diag"
)

// Analyze walks root looking for required-version violations and the
// advice-level style lints, grounded on libs/sqf/src/analyze. path
// identifies the source file for diagnostic labels; requiredVersion is
// the addon's declared CfgPatches::requiredVersion (0 disables SAE1).
func Analyze(path string, root *Expression, requiredVersion float64) []diag.Code {
	a := &analyzer{path: path, required: requiredVersion}
	a.walk(root)
	return a.codes
}

type analyzer struct {
	path     string
	required float64
	codes    []diag.Code
}

func (a *analyzer) label(e *Expression, msg string) diag.Label {
	return diag.Label{Path: a.path, Span: diag.Span{Start: e.Start, End: e.End}, Message: msg, Primary: true}
}

func (a *analyzer) walk(e *Expression) {
	if e == nil {
		return
	}
	switch e.Kind {
	case Code:
		for _, s := range e.Statements {
			a.walk(s)
		}
	case Array:
		for _, it := range e.Items {
			a.walk(it)
		}
	case UnaryCommand:
		a.checkCommand(e, e.Name)
		a.checkFormat(e)
		a.walk(e.Arg)
	case BinaryCommand:
		a.checkCommand(e, e.Name)
		a.checkFind(e)
		a.checkTypeName(e)
		a.walk(e.Lhs)
		a.walk(e.Rhs)
	case NularCommand:
		a.checkCommand(e, e.Name)
	case Assignment:
		a.walk(e.Value)
	}
}

// checkCommand fires SAE1 (version gate) and SAA6 (case mismatch)
// for any node naming a known command.
func (a *analyzer) checkCommand(e *Expression, name string) {
	cmd, ok := Lookup(name)
	if !ok {
		return
	}
	if a.required > 0 && cmd.Since > a.required {
		a.codes = append(a.codes, diag.New("SAE1", diag.Error,
			fmt.Sprintf("command %q requires version %g", name, cmd.Since)).
			WithLabel(a.label(e, fmt.Sprintf("requires version %g", cmd.Since))))
	}
	if name != cmd.Name {
		a.codes = append(a.codes, diag.New("SAA6", diag.Help,
			fmt.Sprintf("%q does not match the wiki's case", name)).
			WithLabel(a.label(e, "non-standard command case")).
			WithSuggestion(diag.Suggestion{Message: "use canonical case", Replacement: cmd.Name,
				Path: a.path, Span: diag.Span{Start: e.Start, End: e.End}}))
	}
}

// checkFind fires SAA2: `(haystack find needle) != -1` reads better as
// `needle in haystack`.
func (a *analyzer) checkFind(e *Expression) {
	if strings.ToLower(e.Name) != "==" && strings.ToLower(e.Name) != "!=" {
		return
	}
	find, lit := e.Lhs, e.Rhs
	if find == nil || find.Kind != BinaryCommand || !strings.EqualFold(find.Name, "find") {
		find, lit = e.Rhs, e.Lhs
	}
	if find == nil || find.Kind != BinaryCommand || !strings.EqualFold(find.Name, "find") {
		return
	}
	n, ok := numericLiteral(lit)
	if !ok || n != -1 {
		return
	}
	a.codes = append(a.codes, diag.New("SAA2", diag.Help,
		"string search using `in` is faster than `find`").
		WithLabel(a.label(find, "using `find` with -1")).
		WithSuggestion(diag.Suggestion{Message: "use `in`", Path: a.path, Span: diag.Span{Start: find.Start, End: find.End}}))
}

// checkTypeName fires SAA3: comparing `typeName x` against a string
// literal is slower than comparing the value's actual type directly.
func (a *analyzer) checkTypeName(e *Expression) {
	if strings.ToLower(e.Name) != "==" && strings.ToLower(e.Name) != "!=" {
		return
	}
	tn, lit := e.Lhs, e.Rhs
	if tn == nil || tn.Kind != UnaryCommand || !strings.EqualFold(tn.Name, "typeName") {
		tn, lit = e.Rhs, e.Lhs
	}
	if tn == nil || tn.Kind != UnaryCommand || !strings.EqualFold(tn.Name, "typeName") {
		return
	}
	if lit == nil || lit.Kind != String {
		return
	}
	a.codes = append(a.codes, diag.New("SAA3", diag.Help,
		"using `typeName` on a constant is slower than using the type directly").
		WithLabel(a.label(tn, "`typeName` comparison")).
		WithSuggestion(diag.Suggestion{Message: "compare types directly", Path: a.path, Span: diag.Span{Start: tn.Start, End: tn.End}}))
}

// numericLiteral unwraps a Number, optionally negated by a leading
// unary "-" (how the parser represents a negative literal).
func numericLiteral(e *Expression) (float64, bool) {
	if e == nil {
		return 0, false
	}
	if e.Kind == Number {
		return e.Num, true
	}
	if e.Kind == UnaryCommand && e.Name == "-" && e.Arg != nil && e.Arg.Kind == Number {
		return -e.Arg.Num, true
	}
	return 0, false
}

var formatPlaceholderRE = regexp.MustCompile(`%(\d+)`)

// checkFormat fires SAA4 (single-placeholder format is slower than
// `str`) and SAA7 (placeholder count doesn't match argument count).
func (a *analyzer) checkFormat(e *Expression) {
	if !strings.EqualFold(e.Name, "format") || e.Arg == nil || e.Arg.Kind != Array || len(e.Arg.Items) == 0 {
		return
	}
	tmpl := e.Arg.Items[0]
	if tmpl.Kind != String {
		return
	}
	matches := formatPlaceholderRE.FindAllStringSubmatch(tmpl.Str, -1)
	maxIdx := 0
	for _, m := range matches {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		if n > maxIdx {
			maxIdx = n
		}
	}
	nargs := len(e.Arg.Items) - 1
	if len(matches) == 1 && maxIdx == 1 && nargs == 1 {
		a.codes = append(a.codes, diag.New("SAA4", diag.Help,
			`using format ["%1", ...] is slower than using str ...`).
			WithLabel(a.label(e, "single-placeholder format")).
			WithSuggestion(diag.Suggestion{Message: "use `str`", Path: a.path, Span: diag.Span{Start: e.Start, End: e.End}}))
	}
	if maxIdx != nargs {
		a.codes = append(a.codes, diag.New("SAA7", diag.Help,
			fmt.Sprintf("format string references %%%d but %d argument(s) were given", maxIdx, nargs)).
			WithLabel(a.label(e, "argument count mismatch")))
	}
}
