package config

import (
	"strconv"
	"strings"

	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/BrettMayson/hemtt/internal/preprocessor"
)

// parser is a recursive-descent, single-token-lookahead parser over a
// trivia-filtered preprocessor.Token stream.
type parser struct {
	tokens []preprocessor.Token
	pos    int
	diags  []diag.Code
}

// Parse builds a Config AST from a preprocessor.Processed token stream.
// Parsing never fails outright: unrecognized input at a value position
// becomes Value::Invalid and is reported as CE1/CE2 by Lint, not here.
func Parse(tokens []preprocessor.Token) (*Config, []diag.Code) {
	p := &parser{tokens: filterTrivia(tokens)}
	start := p.spanHere()
	path := p.path()
	props := p.parseProperties(false)
	end := start
	if len(p.tokens) > 0 {
		end = spanOf(p.tokens[len(p.tokens)-1])
	}
	return &Config{Properties: props, Span: diag.Span{Start: start.Start, End: end.End}, Path: path}, p.diags
}

func filterTrivia(tokens []preprocessor.Token) []preprocessor.Token {
	out := make([]preprocessor.Token, 0, len(tokens))
	for _, t := range tokens {
		switch t.Symbol.Kind {
		case preprocessor.Whitespace, preprocessor.Newline, preprocessor.Comment, preprocessor.Escape, preprocessor.Directive:
			continue
		default:
			out = append(out, t)
		}
	}
	return out
}

func spanOf(t preprocessor.Token) diag.Span {
	return diag.Span{Start: t.Position.Offset, End: t.Position.End}
}

func (p *parser) path() string {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos].Position.Path
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Position.Path
	}
	return ""
}

func (p *parser) spanHere() diag.Span {
	if p.pos < len(p.tokens) {
		return spanOf(p.tokens[p.pos])
	}
	if len(p.tokens) > 0 {
		last := spanOf(p.tokens[len(p.tokens)-1])
		return diag.Span{Start: last.End, End: last.End}
	}
	return diag.Span{}
}

func (p *parser) eof() bool { return p.pos >= len(p.tokens) || p.tokens[p.pos].Symbol.Kind == preprocessor.EOI }

func (p *parser) peek() preprocessor.Token {
	if p.eof() {
		return preprocessor.Token{Symbol: preprocessor.Symbol{Kind: preprocessor.EOI}}
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() preprocessor.Token {
	t := p.peek()
	if !p.eof() {
		p.pos++
	}
	return t
}

func isWord(t preprocessor.Token, text string) bool {
	return t.Symbol.Kind == preprocessor.Word && t.Symbol.Text == text
}

func isPunct(t preprocessor.Token, ch rune) bool {
	return t.Symbol.Kind == preprocessor.Punctuation && t.Symbol.Ch == ch
}

// parseProperties consumes properties until '}' (inClass) or EOF.
func (p *parser) parseProperties(inClass bool) []Property {
	var props []Property
	for {
		if p.eof() {
			return props
		}
		if inClass && isPunct(p.peek(), '}') {
			return props
		}
		props = append(props, p.parseProperty())
	}
}

func (p *parser) parseProperty() Property {
	start := p.spanHere()
	path := p.path()

	if isWord(p.peek(), "delete") {
		p.advance()
		nameTok := p.peek()
		name := p.parseIdent()
		prop := Property{Kind: PropDelete, Name: name, Span: diag.Span{Start: start.Start, End: p.lastEnd(nameTok, start)}, Path: path}
		return p.expectSemicolon(prop, path)
	}

	if isWord(p.peek(), "class") {
		p.advance()
		class := p.parseClassBody(start, path)
		return Property{Kind: PropClass, Name: class.Name, Class: class, Span: class.Span, Path: path}
	}

	// entry := ident ('[' ']')? ('=' | '+=') value ';'
	name := p.parseIdent()
	expectArray := false
	if isPunct(p.peek(), '[') {
		p.advance()
		if isPunct(p.peek(), ']') {
			p.advance()
			expectArray = true
		}
	}

	expandAssign := false
	if isPunct(p.peek(), '+') {
		save := p.pos
		p.advance()
		if isPunct(p.peek(), '=') {
			p.advance()
			expandAssign = true
		} else {
			p.pos = save
		}
	}
	if !expandAssign {
		if isPunct(p.peek(), '=') {
			p.advance()
		}
	}

	val := p.parseValue()
	val.Path = path
	if expandAssign && val.Kind == ValArray {
		val.ExpandAssign = true
	}
	if val.Kind == ValArray && !expectArray {
		val.Kind = ValUnexpectedArray
	}

	prop := Property{
		Kind:          PropEntry,
		Name:          name,
		Value:         val,
		ExpectedArray: expectArray,
		Span:          diag.Span{Start: start.Start, End: val.Span.End},
		Path:          path,
	}
	return p.expectSemicolon(prop, path)
}

// lastEnd returns the end offset of the most recently consumed token,
// falling back to start's end when nothing was consumed (e.g. a missing
// identifier).
func (p *parser) lastEnd(last preprocessor.Token, start diag.Span) int {
	if last.Symbol.Kind == preprocessor.EOI {
		return start.End
	}
	return spanOf(last).End
}

func (p *parser) parseIdent() string {
	t := p.peek()
	if t.Symbol.Kind == preprocessor.Word {
		p.advance()
		return t.Symbol.Text
	}
	return ""
}

func (p *parser) expectSemicolon(prop Property, path string) Property {
	if isPunct(p.peek(), ';') {
		end := spanOf(p.peek())
		p.advance()
		prop.Span.End = end.End
		return prop
	}
	p.diags = append(p.diags, errMissingSemicolon(path, prop.Span, prop.Name))
	prop.Kind = PropMissingSemicolon
	prop.Value = Value{}
	prop.Class = nil
	return prop
}

// parseClassBody parses the remainder of a class declaration after the
// `class` keyword has been consumed: name (':' parent)? ('{' props '}')? ';'.
func (p *parser) parseClassBody(start diag.Span, path string) *Class {
	nameTok := p.peek()
	name := p.parseIdent()

	class := &Class{
		Name:     name,
		NameSpan: spanOf(nameTok),
		Path:     path,
	}

	if isPunct(p.peek(), ':') {
		p.advance()
		parentTok := p.peek()
		class.Parent = p.parseIdent()
		class.ParentSpan = spanOf(parentTok)
	}

	if isPunct(p.peek(), '{') {
		open := p.peek()
		p.advance()
		class.Kind = ClassLocal
		class.Properties = p.parseProperties(true)
		closeEnd := spanOf(open).End
		if isPunct(p.peek(), '}') {
			closeEnd = spanOf(p.peek()).End
			p.advance()
		}
		class.Span = diag.Span{Start: start.Start, End: closeEnd}
		if isPunct(p.peek(), ';') {
			class.Span.End = spanOf(p.peek()).End
			p.advance()
		}
		return class
	}

	// No body: either a bare forward declaration (External) or a
	// parent-only redeclaration continuing an existing Local class.
	class.Kind = ClassExternal
	end := class.NameSpan.End
	if class.ParentSpan != (diag.Span{}) {
		end = class.ParentSpan.End
	}
	class.Span = diag.Span{Start: start.Start, End: end}
	if isPunct(p.peek(), ';') {
		class.Span.End = spanOf(p.peek()).End
		p.advance()
	}
	return class
}

// parseValue parses a single property value: string, number, array, or
// an __EVAL(...) expression.
func (p *parser) parseValue() Value {
	t := p.peek()
	path := p.path()

	switch {
	case isPunct(t, '"'):
		return p.parseString()

	case isPunct(t, '{'):
		return p.parseArray()

	case isWord(t, "__EVAL"):
		return p.parseExpression()

	case t.Symbol.Kind == preprocessor.Digit:
		p.advance()
		return numberValue(t, spanOf(t), false)

	case isPunct(t, '-'):
		p.advance()
		if p.peek().Symbol.Kind == preprocessor.Digit {
			num := p.advance()
			return numberValue(num, diag.Span{Start: spanOf(t).Start, End: spanOf(num).End}, true)
		}
		sp := diag.Span{Start: spanOf(t).Start, End: spanOf(t).End}
		p.diags = append(p.diags, errInvalidValue(path, sp))
		return Value{Kind: ValInvalid, Span: sp, FromMacro: t.Position.Macro}

	default:
		if t.Symbol.Kind == preprocessor.EOI {
			sp := p.spanHere()
			return Value{Kind: ValInvalid, Span: sp}
		}
		p.advance()
		sp := spanOf(t)
		return Value{Kind: ValInvalid, Span: sp, FromMacro: t.Position.Macro}
	}
}

func numberValue(t preprocessor.Token, span diag.Span, negative bool) Value {
	text := t.Symbol.Text
	sign := int64(1)
	fsign := float32(1)
	if negative {
		sign = -1
		fsign = -1
	}

	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		n, err := strconv.ParseInt(lower[2:], 16, 64)
		if err != nil {
			return Value{Kind: ValInvalid, Span: span, FromMacro: t.Position.Macro}
		}
		n *= sign
		if n >= -(1<<31) && n < (1<<31) {
			return Value{Kind: ValNumber, NumKind: NumInt32, Int: n, Span: span}
		}
		return Value{Kind: ValNumber, NumKind: NumInt64, Int: n, Span: span}
	}

	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{Kind: ValInvalid, Span: span, FromMacro: t.Position.Macro}
		}
		return Value{Kind: ValNumber, NumKind: NumFloat32, Float: float32(f) * fsign, Span: span}
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 32)
		if ferr != nil {
			return Value{Kind: ValInvalid, Span: span, FromMacro: t.Position.Macro}
		}
		return Value{Kind: ValNumber, NumKind: NumFloat32, Float: float32(f) * fsign, Span: span}
	}
	n *= sign
	if n >= -(1<<31) && n < (1<<31) {
		return Value{Kind: ValNumber, NumKind: NumInt32, Int: n, Span: span}
	}
	return Value{Kind: ValNumber, NumKind: NumInt64, Int: n, Span: span}
}

// parseString reconstructs a double-quoted string, where a doubled quote
// escapes a single literal quote.
func (p *parser) parseString() Value {
	open := p.advance() // opening '"'
	var sb strings.Builder
	for {
		if p.eof() {
			break
		}
		t := p.peek()
		if isPunct(t, '"') {
			p.advance()
			if isPunct(p.peek(), '"') {
				sb.WriteByte('"')
				p.advance()
				continue
			}
			return Value{Kind: ValStr, Str: sb.String(), Span: diag.Span{Start: spanOf(open).Start, End: spanOf(t).End}}
		}
		sb.WriteString(t.String())
		p.advance()
	}
	return Value{Kind: ValStr, Str: sb.String(), Span: spanOf(open)}
}

// parseExpression consumes `__EVAL` '(' … ')' with balanced-paren
// scanning, storing the full source text.
func (p *parser) parseExpression() Value {
	nameTok := p.advance() // __EVAL
	if !isPunct(p.peek(), '(') {
		sp := spanOf(nameTok)
		return Value{Kind: ValInvalid, Span: sp}
	}
	openTok := p.advance()
	depth := 1
	var sb strings.Builder
	sb.WriteString("__EVAL(")
	for depth > 0 && !p.eof() {
		t := p.peek()
		if isPunct(t, '(') {
			depth++
		}
		if isPunct(t, ')') {
			depth--
			if depth == 0 {
				p.advance()
				break
			}
		}
		sb.WriteString(t.String())
		p.advance()
	}
	sb.WriteByte(')')
	end := spanOf(openTok)
	if p.pos > 0 {
		end = spanOf(p.tokens[p.pos-1])
	}
	return Value{
		Kind:       ValExpression,
		Expression: sb.String(),
		Span:       diag.Span{Start: spanOf(nameTok).Start, End: end.End},
	}
}

// parseArray implements `array := '{' (item (',' item)* ','?)? '}'`.
func (p *parser) parseArray() Value {
	open := p.advance() // '{'
	var items []Item
	for {
		if p.eof() {
			break
		}
		if isPunct(p.peek(), '}') {
			break
		}
		items = append(items, p.parseItem())
		if isPunct(p.peek(), ',') {
			p.advance()
			continue
		}
		break
	}
	end := spanOf(open)
	if isPunct(p.peek(), '}') {
		end = spanOf(p.peek())
		p.advance()
	}
	return Value{Kind: ValArray, Items: items, Span: diag.Span{Start: spanOf(open).Start, End: end.End}}
}

func (p *parser) parseItem() Item {
	t := p.peek()
	switch {
	case isPunct(t, '"'):
		v := p.parseString()
		return Item{Kind: ItemStr, Str: v.Str, Span: v.Span}
	case isPunct(t, '{'):
		v := p.parseArray()
		return Item{Kind: ItemArray, Array: v.Items, Span: v.Span}
	case t.Symbol.Kind == preprocessor.Digit:
		v := p.parseValue()
		return itemFromNumber(v)
	case isPunct(t, '-'):
		v := p.parseValue()
		return itemFromNumber(v)
	default:
		if t.Symbol.Kind == preprocessor.EOI {
			return Item{Kind: ItemInvalid, Span: p.spanHere()}
		}
		p.advance()
		return Item{Kind: ItemInvalid, Span: spanOf(t)}
	}
}

func itemFromNumber(v Value) Item {
	if v.Kind != ValNumber {
		return Item{Kind: ItemInvalid, Span: v.Span}
	}
	if v.NumKind == NumFloat32 {
		return Item{Kind: ItemNumber, Float: v.Float, Span: v.Span}
	}
	return Item{Kind: ItemNumber, Int: v.Int, IsInt: true, Span: v.Span}
}
