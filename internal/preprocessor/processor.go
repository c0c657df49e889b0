package preprocessor

import (
	"strconv"
	"strings"
	"sync"

	"github.com/BrettMayson/hemtt/internal/diag"
)

// Resolver locates and reads #include targets. Production
// code adapts internal/workspace.Path to this interface (see
// internal/executor's pathResolver); tests can supply a map-backed
// fake without pulling in the VFS.
type Resolver interface {
	// Locate resolves target (as written after #include) relative to
	// from, returning a canonical path usable as a map key.
	// caseWarning reports a case-only mismatch
	// (PW4).
	Locate(from, target string) (resolved string, caseWarning bool, ok bool)
	Read(resolved string) (string, error)
}

// processor carries the mutable state of one top-level Process call: the
// defines table starts fresh per Process call, but __COUNTER__ and
// diagnostics accumulate for the whole call, including across #include.
type processor struct {
	resolver Resolver
	defines  *definesTable

	counterMu sync.Mutex
	counter   int

	diagnostics []diag.Code
	usage       map[string][]UsageSite
	sourceText  map[string]string

	includeStack []string // resolved paths, for PE29 cycle detection
	suppress     *suppressionState
}

// Process preprocesses the file at path, recursively following
// #include, and returns the full Processed bundle.
func Process(resolver Resolver, path string, projectDefines map[string]*Definition) (*Processed, error) {
	pr := &processor{
		resolver:   resolver,
		defines:    newDefinesTable(projectDefines),
		usage:      make(map[string][]UsageSite),
		sourceText: make(map[string]string),
		suppress:   newSuppressionState(),
	}

	toks, err := pr.processFile(path)
	if err != nil {
		return nil, err
	}

	p := &Processed{
		Tokens:      toks,
		Diagnostics: pr.diagnostics,
		Usage:       pr.usage,
		sourceText:  pr.sourceText,
	}
	p.render()
	return p, nil
}

func (pr *processor) report(c diag.Code) {
	pr.diagnostics = append(pr.diagnostics, c)
}

func (pr *processor) recordUsage(name string, pos Position) {
	pr.usage[name] = append(pr.usage[name], UsageSite{Path: pos.Path, Offset: pos.Offset})
}

func (pr *processor) nextCounter() int {
	pr.counterMu.Lock()
	defer pr.counterMu.Unlock()
	v := pr.counter
	pr.counter++
	return v
}

func spanOf(t Token) diag.Span {
	return diag.Span{Start: t.Position.Offset, End: t.Position.End}
}

// processFile tokenizes path, walks it handling directives and
// conditional state, and returns the fully expanded, emitted token
// stream (with #include content spliced in at its point of inclusion).
func (pr *processor) processFile(path string) ([]Token, error) {
	for _, seen := range pr.includeStack {
		if seen == path {
			// The caller (handleInclude) attaches the PE29 diagnostic with
			// the full chain; here we just refuse to recurse.
			return nil, nil
		}
	}

	src, err := pr.resolver.Read(path)
	if err != nil {
		return nil, err
	}
	pr.sourceText[path] = src
	pr.includeStack = append(pr.includeStack, path)
	defer func() { pr.includeStack = pr.includeStack[:len(pr.includeStack)-1] }()

	toks := Tokenize(path, src)
	cond := &condStack{}
	var out []Token

	i := 0
	for i < len(toks) {
		t := toks[i]

		if t.Symbol.Kind == Directive {
			lineEnd := i + 1
			for lineEnd < len(toks) && toks[lineEnd].Symbol.Kind != Newline && toks[lineEnd].Symbol.Kind != EOI {
				lineEnd++
			}
			rest := toks[i+1 : lineEnd]
			produced := pr.handleDirective(path, t, rest, cond)
			out = append(out, produced...)
			i = lineEnd
			continue
		}

		if t.Symbol.Kind == EOI {
			if !cond.empty() {
				pr.report(errUnterminatedIf(path, spanOf(t)))
			}
			break
		}

		// Gather a content run up to the next directive/EOI, expand
		// macros in it as a unit, and emit if the conditional stack is
		// currently reading.
		runEnd := i
		for runEnd < len(toks) && toks[runEnd].Symbol.Kind != Directive && toks[runEnd].Symbol.Kind != EOI {
			runEnd++
		}
		run := toks[i:runEnd]
		if cond.emitting() {
			expanded := pr.expandRun(run, map[string]bool{})
			out = append(out, expanded...)
		}
		i = runEnd
	}

	return out, nil
}

func (pr *processor) handleDirective(path string, dir Token, rest []Token, cond *condStack) []Token {
	name := dir.Symbol.Text
	content := trimTrivia(rest)

	switch name {
	case "define":
		if cond.emitting() {
			pr.handleDefine(path, dir, content)
		}
	case "undef":
		if cond.emitting() {
			pr.handleUndef(path, dir, content)
		}
	case "include":
		if cond.emitting() {
			return pr.handleInclude(path, dir, content)
		}
	case "if":
		pr.handleIf(path, dir, content, cond, pr.evalExpr)
	case "ifdef":
		pr.handleIf(path, dir, content, cond, func(p string, toks []Token) (bool, bool) {
			return pr.evalDefinedCheck(toks, true)
		})
	case "ifndef":
		pr.handleIf(path, dir, content, cond, func(p string, toks []Token) (bool, bool) {
			return pr.evalDefinedCheck(toks, false)
		})
	case "else":
		pr.handleElse(path, dir, cond)
	case "endif":
		pr.handleEndif(path, dir, cond)
	case "pragma":
		if cond.emitting() {
			pr.handlePragma(path, dir, content)
		}
	default:
		if cond.emitting() {
			pr.report(errUnknownDirective(path, spanOf(dir), name))
		}
	}
	return nil
}

func (pr *processor) handleDefine(path string, dir Token, content []Token) {
	if len(content) == 0 {
		pr.report(errExpectedIdent(path, spanOf(dir)))
		return
	}
	if content[0].Symbol.Kind != Word {
		pr.report(errExpectedIdent(path, spanOf(content[0])))
		return
	}
	name := content[0].Symbol.Text
	if pr.defines.isBuiltin(name) {
		pr.report(errChangeBuiltin(path, spanOf(content[0]), name))
		return
	}
	if !isUpperSnake(name) {
		pr.report(warnUpperSnake(path, spanOf(content[0]), name))
	}

	rest := content[1:]
	if len(rest) > 0 && isPunct(rest[0], '(') {
		params, body, ok := parseParamList(rest)
		if !ok {
			pr.report(errDefineMultitokenArgument(path, spanOf(dir)))
			return
		}
		pr.defines.set(name, &Definition{Kind: DefFunction, Params: params, Body: trimTrivia(body)})
		return
	}
	value := trimTrivia(rest)
	if len(value) == 0 {
		pr.defines.set(name, &Definition{Kind: DefUnit})
		return
	}
	pr.defines.set(name, &Definition{Kind: DefValue, Tokens: value})
}

func isUpperSnake(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' {
			return false
		}
	}
	return true
}

// parseParamList parses `(a, b, c)body...` returning the parameter names
// and the remaining body tokens. Each parameter must be a single
// identifier (PE5 otherwise).
func parseParamList(tokens []Token) (params []string, body []Token, ok bool) {
	i := 1 // skip '('
	var cur []Token
	for i < len(tokens) {
		t := tokens[i]
		if isPunct(t, ')') {
			if len(trimTrivia(cur)) > 0 {
				p := trimTrivia(cur)
				if len(p) != 1 || p[0].Symbol.Kind != Word {
					return nil, nil, false
				}
				params = append(params, p[0].Symbol.Text)
			}
			return params, tokens[i+1:], true
		}
		if isPunct(t, ',') {
			p := trimTrivia(cur)
			if len(p) != 1 || p[0].Symbol.Kind != Word {
				return nil, nil, false
			}
			params = append(params, p[0].Symbol.Text)
			cur = nil
			i++
			continue
		}
		cur = append(cur, t)
		i++
	}
	return nil, nil, false
}

func (pr *processor) handleUndef(path string, dir Token, content []Token) {
	if len(content) == 0 || content[0].Symbol.Kind != Word {
		pr.report(errExpectedIdent(path, spanOf(dir)))
		return
	}
	name := content[0].Symbol.Text
	if pr.defines.isBuiltin(name) {
		pr.report(errChangeBuiltin(path, spanOf(content[0]), name))
		return
	}
	if _, ok := pr.defines.get(name); !ok {
		pr.report(warnUndefNotDefined(path, spanOf(content[0]), name))
	}
	pr.defines.undef(name)
}

func (pr *processor) handleInclude(path string, dir Token, content []Token) []Token {
	target, ok := parseIncludeTarget(content)
	if !ok {
		pr.report(errIncludeMalformed(path, spanOf(dir)))
		return nil
	}
	resolved, caseWarn, found := pr.resolver.Locate(path, target)
	if !found {
		pr.report(errIncludeNotFound(path, spanOf(dir), target))
		return nil
	}
	if caseWarn {
		pr.report(warnIncludeCase(path, spanOf(dir), resolved))
	}
	for _, seen := range pr.includeStack {
		if seen == resolved {
			chain := append([]string(nil), pr.includeStack...)
			pr.report(errCircularInclude(path, spanOf(dir), chain))
			return nil
		}
	}
	toks, err := pr.processFile(resolved)
	if err != nil {
		pr.report(errIncludeNotFound(path, spanOf(dir), target))
		return nil
	}
	return toks
}

func parseIncludeTarget(content []Token) (string, bool) {
	content = trimTrivia(content)
	if len(content) == 0 {
		return "", false
	}
	if isPunct(content[0], '"') {
		var sb strings.Builder
		i := 1
		for i < len(content) && !isPunct(content[i], '"') {
			sb.WriteString(content[i].String())
			i++
		}
		if i >= len(content) {
			return "", false
		}
		return sb.String(), true
	}
	if isPunct(content[0], '<') {
		var sb strings.Builder
		i := 1
		for i < len(content) && !isPunct(content[i], '>') {
			sb.WriteString(content[i].String())
			i++
		}
		if i >= len(content) {
			return "", false
		}
		return sb.String(), true
	}
	return "", false
}

func (pr *processor) handleIf(path string, dir Token, content []Token, cond *condStack, eval func(string, []Token) (bool, bool)) {
	if !cond.emitting() {
		// Nested inside a passing branch: push but never evaluate.
		cond.push(condFrame{state: PassingIf})
		return
	}
	ok, valid := eval(path, content)
	if !valid {
		cond.push(condFrame{state: PassingIf})
		return
	}
	if ok {
		cond.push(condFrame{state: ReadingIf, tookBranch: true})
	} else {
		cond.push(condFrame{state: PassingIf})
	}
}

func (pr *processor) handleElse(path string, dir Token, cond *condStack) {
	f, ok := cond.pop()
	if !ok {
		pr.report(errUnexpectedElse(path, spanOf(dir)))
		return
	}
	if f.state == ReadingElse || f.state == PassingElse {
		pr.report(errDoubleElse(path, spanOf(dir)))
		cond.push(f)
		return
	}
	if f.sawElse {
		pr.report(errDoubleElse(path, spanOf(dir)))
	}
	f.sawElse = true
	outerEmitting := cond.emitting()
	if !outerEmitting {
		f.state = PassingElse
	} else if f.tookBranch {
		f.state = PassingElse
	} else {
		f.state = ReadingElse
		f.tookBranch = true
	}
	cond.push(f)
}

func (pr *processor) handleEndif(path string, dir Token, cond *condStack) {
	if _, ok := cond.pop(); !ok {
		pr.report(errUnexpectedEndif(path, spanOf(dir)))
	}
}

func (pr *processor) handlePragma(path string, dir Token, content []Token) {
	content = trimTrivia(content)
	if len(content) == 0 || content[0].Symbol.Kind != Word || content[0].Symbol.Text != "hemtt" {
		pr.report(errPragmaUnknown(path, spanOf(dir), renderTokens(content)))
		return
	}
	rest := trimTrivia(content[1:])
	if len(rest) == 0 || rest[0].Symbol.Kind != Word {
		pr.report(errPragmaUnknown(path, spanOf(dir), ""))
		return
	}
	switch rest[0].Symbol.Text {
	case "suppress":
		args := fieldsOf(trimTrivia(rest[1:]))
		if len(args) == 0 {
			pr.report(errPragmaInvalidSuppress(path, spanOf(dir), ""))
			return
		}
		code := args[0]
		scopeStr := ""
		if len(args) > 1 {
			scopeStr = args[1]
		}
		scope, ok := parseSuppressScope(scopeStr)
		if !ok {
			pr.report(errPragmaInvalidScope(path, spanOf(dir), scopeStr))
			return
		}
		if !knownCode(code) {
			pr.report(errPragmaInvalidSuppress(path, spanOf(dir), code))
			return
		}
		pr.suppress.suppress(code, scope)
	case "flag":
		args := fieldsOf(trimTrivia(rest[1:]))
		if len(args) == 0 || !knownFlag(args[0]) {
			flag := ""
			if len(args) > 0 {
				flag = args[0]
			}
			pr.report(errPragmaInvalidFlag(path, spanOf(dir), flag))
			return
		}
		pr.suppress.setFlag(args[0])
	default:
		pr.report(errPragmaUnknown(path, spanOf(dir), rest[0].Symbol.Text))
	}
}

func fieldsOf(tokens []Token) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, t := range tokens {
		if t.IsTrivia() {
			flush()
			continue
		}
		cur.WriteString(t.String())
	}
	flush()
	return out
}

func knownCode(code string) bool {
	if len(code) < 2 {
		return false
	}
	switch code[:2] {
	case "PE", "PW", "CE", "CW", "SA", "SP", "BB":
		return true
	default:
		return false
	}
}

func knownFlag(flag string) bool {
	return flag == "pe23_ignore_has_include"
}

// evalDefinedCheck implements #ifdef/#ifndef.
func (pr *processor) evalDefinedCheck(content []Token, wantDefined bool) (bool, bool) {
	content = trimTrivia(content)
	if len(content) == 0 || content[0].Symbol.Kind != Word {
		return false, false
	}
	_, ok := pr.defines.get(content[0].Symbol.Text)
	return ok == wantDefined, true
}

// evalExpr implements #if EXPR: a comparison of macro-expanded integer or
// string operands.
func (pr *processor) evalExpr(path string, content []Token) (bool, bool) {
	// __has_include is always rejected and the branch is unconditionally
	// false, unless the ignore flag was set.
	if containsWord(content, "__has_include") {
		if !pr.suppress.hasFlag("pe23_ignore_has_include") {
			pr.report(errHasInclude(path, diag.Span{}))
		}
		return false, true
	}

	expanded := pr.expandRun(content, map[string]bool{})
	toks := trimTrivia(expanded)
	if len(toks) == 0 {
		return false, false
	}

	opIdx, opText := findComparisonOp(toks)
	if opIdx == -1 {
		// A bare value: truthy if non-zero / non-empty.
		return truthy(toks), true
	}
	lhs := trimTrivia(toks[:opIdx])
	var rhs []Token
	if opText == "==" || opText == "!=" || opText == "<=" || opText == ">=" {
		rhs = trimTrivia(toks[opIdx+2:])
	} else {
		rhs = trimTrivia(toks[opIdx+1:])
	}

	lv, lIsNum := asOperand(lhs)
	rv, rIsNum := asOperand(rhs)
	if lIsNum != rIsNum {
		pr.report(errIfTypeMismatch(path, diag.Span{}))
		return false, false
	}
	switch opText {
	case "==":
		return lv == rv, true
	case "!=":
		return lv != rv, true
	case "<", ">", "<=", ">=":
		if !lIsNum {
			pr.report(errIfTypeMismatch(path, diag.Span{}))
			return false, false
		}
		lf, _ := strconv.ParseFloat(lv, 64)
		rf, _ := strconv.ParseFloat(rv, 64)
		switch opText {
		case "<":
			return lf < rf, true
		case ">":
			return lf > rf, true
		case "<=":
			return lf <= rf, true
		case ">=":
			return lf >= rf, true
		}
	}
	pr.report(errIfInvalidOperator(path, diag.Span{}, opText))
	return false, false
}

func containsWord(tokens []Token, name string) bool {
	for _, t := range tokens {
		if t.Symbol.Kind == Word && t.Symbol.Text == name {
			return true
		}
	}
	return false
}

func truthy(toks []Token) bool {
	v, isNum := asOperand(toks)
	if isNum {
		f, _ := strconv.ParseFloat(v, 64)
		return f != 0
	}
	return v != ""
}

func asOperand(toks []Token) (value string, isNumber bool) {
	toks = trimTrivia(toks)
	if len(toks) == 1 && toks[0].Symbol.Kind == Digit {
		return toks[0].Symbol.Text, true
	}
	s := renderTokens(toks)
	if strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"") && len(s) >= 2 {
		return s[1 : len(s)-1], false
	}
	return s, false
}

// findComparisonOp scans for one of == != <= >= < > at the top level of
// toks, returning its index and text.
func findComparisonOp(toks []Token) (int, string) {
	for i, t := range toks {
		if t.Symbol.Kind != Punctuation {
			continue
		}
		switch t.Symbol.Ch {
		case '=', '!', '<', '>':
			if i+1 < len(toks) && isPunct(toks[i+1], '=') && (t.Symbol.Ch == '=' || t.Symbol.Ch == '!' || t.Symbol.Ch == '<' || t.Symbol.Ch == '>') {
				return i, string(t.Symbol.Ch) + "="
			}
			if t.Symbol.Ch == '<' || t.Symbol.Ch == '>' {
				return i, string(t.Symbol.Ch)
			}
		}
	}
	return -1, ""
}
