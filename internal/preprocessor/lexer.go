package preprocessor

import (
	"strings"
	"unicode"
)

// lexer is a PEG-style scanner producing Tokens from raw UTF-8, preserving
// whitespace, newlines, and comments as distinct symbols.
type lexer struct {
	path    string
	src     []rune
	offsets []int // byte offset of each rune in src, plus one trailing total-length entry
	pos     int
	line    int
	col     int
}

func newLexer(path, src string) *lexer {
	runes := make([]rune, 0, len(src))
	offsets := make([]int, 0, len(src)+1)
	byteOff := 0
	for _, r := range src {
		runes = append(runes, r)
		offsets = append(offsets, byteOff)
		byteOff += len(string(r))
	}
	offsets = append(offsets, byteOff)
	return &lexer{path: path, src: runes, offsets: offsets, line: 1, col: 1}
}

func (l *lexer) byteOffset(pos int) int {
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.offsets)-1 {
		pos = len(l.offsets) - 1
	}
	return l.offsets[pos]
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() rune {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(off int) rune {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Next produces the next Token, or an EOI token at end of input.
func (l *lexer) Next() Token {
	startLine, startCol, startPos := l.line, l.col, l.pos

	mk := func(sym Symbol) Token {
		return Token{
			Symbol: sym,
			Position: Position{
				Path:      l.path,
				StartLine: startLine,
				StartCol:  startCol,
				EndLine:   l.line,
				EndCol:    l.col,
				Offset:    l.byteOffset(startPos),
				End:       l.byteOffset(l.pos),
			},
		}
	}

	if l.eof() {
		return mk(Symbol{Kind: EOI})
	}

	r := l.peek()

	switch {
	case r == '\n':
		l.advance()
		return mk(Symbol{Kind: Newline})

	case r == ' ' || r == '\t' || r == '\r':
		for !l.eof() && (l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\r') {
			l.advance()
		}
		return mk(Symbol{Kind: Whitespace})

	case r == '\\' && l.peekAt(1) == '\n':
		l.advance()
		l.advance()
		return mk(Symbol{Kind: Escape})

	case r == '/' && l.peekAt(1) == '/':
		var sb strings.Builder
		for !l.eof() && l.peek() != '\n' {
			sb.WriteRune(l.advance())
		}
		return mk(Symbol{Kind: Comment, Text: sb.String()})

	case r == '/' && l.peekAt(1) == '*':
		var sb strings.Builder
		sb.WriteRune(l.advance())
		sb.WriteRune(l.advance())
		for !l.eof() {
			if l.peek() == '*' && l.peekAt(1) == '/' {
				sb.WriteRune(l.advance())
				sb.WriteRune(l.advance())
				break
			}
			sb.WriteRune(l.advance())
		}
		return mk(Symbol{Kind: Comment, Text: sb.String()})

	case r == '#' && l.peekAt(1) == '#':
		l.advance()
		l.advance()
		return mk(Symbol{Kind: Join})

	case r == '#' && (startCol == 1 || l.atLineStartModuloWhitespace()):
		l.advance()
		var sb strings.Builder
		for !l.eof() && isIdentCont(l.peek()) {
			sb.WriteRune(l.advance())
		}
		return mk(Symbol{Kind: Directive, Text: sb.String()})

	case unicode.IsDigit(r):
		var sb strings.Builder
		for !l.eof() && (unicode.IsDigit(l.peek()) || l.peek() == '.' || l.peek() == 'x' || l.peek() == 'X' ||
			(sb.Len() > 0 && strings.ContainsRune("abcdefABCDEF", l.peek()))) {
			sb.WriteRune(l.advance())
		}
		return mk(digit(sb.String()))

	case isIdentStart(r):
		var sb strings.Builder
		for !l.eof() && isIdentCont(l.peek()) {
			sb.WriteRune(l.advance())
		}
		return mk(word(sb.String()))

	default:
		l.advance()
		return mk(punct(r))
	}
}

// atLineStartModuloWhitespace reports whether only whitespace precedes
// the current position on the current line, so that `  #define` is still
// recognized as a directive.
func (l *lexer) atLineStartModuloWhitespace() bool {
	for i := l.pos - 1; i >= 0; i-- {
		switch l.src[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// Tokenize runs the lexer to completion.
func Tokenize(path, src string) []Token {
	l := newLexer(path, src)
	var toks []Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Symbol.Kind == EOI {
			break
		}
	}
	return toks
}
