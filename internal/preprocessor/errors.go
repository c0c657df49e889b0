package preprocessor

import (
	"fmt"

	"github.com/BrettMayson/hemtt/internal/diag"
)

// Each constructor below produces a diag.Code for one PE##/PW## ident.

func label(path string, sp diag.Span, msg string) diag.Label {
	return diag.Label{Path: path, Span: sp, Message: msg, Primary: true}
}

func errUnexpectedToken(path string, sp diag.Span, got string) *diag.Simple {
	return diag.New("PE1", diag.Error, fmt.Sprintf("unexpected token %q", got)).
		WithLabel(label(path, sp, "unexpected here"))
}

func errUnexpectedEOF(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE2", diag.Error, "unexpected end of file").
		WithLabel(label(path, sp, "expected more input"))
}

func errExpectedIdent(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE3", diag.Error, "expected an identifier").
		WithLabel(label(path, sp, "expected identifier here"))
}

func errUnknownDirective(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("PE4", diag.Error, fmt.Sprintf("unknown directive #%s", name)).
		WithLabel(label(path, sp, "unknown directive"))
}

func errDefineMultitokenArgument(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE5", diag.Error, "#define parameter must be a single identifier").
		WithLabel(label(path, sp, "not a single identifier"))
}

func errChangeBuiltin(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("PE6", diag.Error, fmt.Sprintf("%s is built-in and cannot be #define'd or #undef'd", name)).
		WithLabel(label(path, sp, "built-in identifier"))
}

func errIfUndefined(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("PE8", diag.Error, fmt.Sprintf("%s is not defined", name)).
		WithLabel(label(path, sp, "undefined"))
}

func errFunctionArity(path string, sp diag.Span, name string, want, got int) *diag.Simple {
	return diag.New("PE9", diag.Error,
		fmt.Sprintf("%s expects %d argument(s), got %d", name, want, got)).
		WithLabel(label(path, sp, "wrong number of arguments"))
}

func errFunctionAsValue(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("PE10", diag.Error, fmt.Sprintf("%s is a function-like macro and must be called", name)).
		WithLabel(label(path, sp, "missing call parentheses"))
}

func errExpectedFunctionOrValue(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("PE11", diag.Error, fmt.Sprintf("%s is unit-like and cannot be called", name)).
		WithLabel(label(path, sp, "unit-like macro called as function"))
}

func errIncludeNotFound(path string, sp diag.Span, target string) *diag.Simple {
	return diag.New("PE12", diag.Error, fmt.Sprintf("include not found: %s", target)).
		WithLabel(label(path, sp, "not found"))
}

func errIncludeMalformed(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE13", diag.Error, "malformed #include, expected \"path\" or <path>").
		WithLabel(label(path, sp, "malformed include"))
}

func errIncludeTrailing(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE14", diag.Error, "unexpected tokens after #include").
		WithLabel(label(path, sp, "unexpected trailing tokens"))
}

func errIfInvalidOperator(path string, sp diag.Span, op string) *diag.Simple {
	return diag.New("PE15", diag.Error, fmt.Sprintf("unknown comparison operator %q", op)).
		WithLabel(label(path, sp, "unknown operator"))
}

func errIfTypeMismatch(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE16", diag.Error, "cannot compare operands of different types").
		WithLabel(label(path, sp, "type mismatch"))
}

func errDoubleElse(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE17", diag.Error, "#else after #else").
		WithLabel(label(path, sp, "duplicate #else"))
}

func errUnterminatedIf(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE18", diag.Error, "unterminated #if at end of file").
		WithLabel(label(path, sp, "opened here"))
}

func errPragmaUnknown(path string, sp diag.Span, cmd string) *diag.Simple {
	return diag.New("PE19", diag.Error, fmt.Sprintf("unknown #pragma hemtt command %q", cmd)).
		WithLabel(label(path, sp, "unknown pragma command"))
}

func errPragmaInvalidScope(path string, sp diag.Span, scope string) *diag.Simple {
	return diag.New("PE20", diag.Error, fmt.Sprintf("invalid suppress scope %q", scope)).
		WithLabel(label(path, sp, "invalid scope"))
}

func errPragmaInvalidSuppress(path string, sp diag.Span, code string) *diag.Simple {
	return diag.New("PE21", diag.Error, fmt.Sprintf("unknown diagnostic code %q", code)).
		WithLabel(label(path, sp, "unknown code"))
}

func errPragmaInvalidFlag(path string, sp diag.Span, flag string) *diag.Simple {
	return diag.New("PE22", diag.Error, fmt.Sprintf("unknown #pragma hemtt flag %q", flag)).
		WithLabel(label(path, sp, "unknown flag"))
}

func errHasInclude(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE23", diag.Error, "__has_include is not supported").
		WithLabel(label(path, sp, "unsupported")).
		WithHelp("set `#pragma hemtt flag pe23_ignore_has_include` to silence this and treat the branch as false")
}

func errParsingFailed(path string, sp diag.Span, detail string) *diag.Simple {
	return diag.New("PE24", diag.Error, fmt.Sprintf("parsing failed: %s", detail)).
		WithLabel(label(path, sp, "here"))
}

func errExec(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE25", diag.Error, "__EXEC is not supported").
		WithLabel(label(path, sp, "unsupported"))
}

func errUnsupportedBuiltin(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("PE26", diag.Error, fmt.Sprintf("%s is not supported", name)).
		WithLabel(label(path, sp, "unsupported builtin"))
}

func errUnexpectedEndif(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE27", diag.Error, "#endif without matching #if").
		WithLabel(label(path, sp, "unexpected #endif"))
}

func errUnexpectedElse(path string, sp diag.Span) *diag.Simple {
	return diag.New("PE28", diag.Error, "#else without matching #if").
		WithLabel(label(path, sp, "unexpected #else"))
}

func errCircularInclude(path string, sp diag.Span, chain []string) *diag.Simple {
	c := diag.New("PE29", diag.Error, "circular #include").
		WithLabel(label(path, sp, "include started here"))
	for _, p := range chain {
		c = c.WithNote("included from " + p)
	}
	return c
}

func warnUpperSnake(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("PW1", diag.Warning, fmt.Sprintf("macro name %q is not UPPER_SNAKE_CASE", name)).
		WithLabel(label(path, sp, "non-conventional name"))
}

func warnConfigCase(path string, sp diag.Span) *diag.Simple {
	return diag.New("PW2", diag.Warning, "include path case does not match the conventional config file case").
		WithLabel(label(path, sp, "case mismatch"))
}

func warnPaddedArg(path string, sp diag.Span) *diag.Simple {
	return diag.New("PW3", diag.Warning, "macro argument has leading or trailing whitespace").
		WithLabel(label(path, sp, "padded argument"))
}

func warnIncludeCase(path string, sp diag.Span, onDisk string) *diag.Simple {
	return diag.New("PW4", diag.Warning, fmt.Sprintf("include reference differs in case from %q on disk", onDisk)).
		WithLabel(label(path, sp, "case mismatch"))
}

func warnUndefNotDefined(path string, sp diag.Span, name string) *diag.Simple {
	return diag.New("PW5", diag.Warning, fmt.Sprintf("#undef of %q which was never defined", name)).
		WithLabel(label(path, sp, "never defined"))
}
