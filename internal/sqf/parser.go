package sqf

import (
	"strings"

	"github.com/BrettMayson/hemtt/internal/diag"
)

// Parse lexes and parses src (SQF source from path, typically a .sqf
// file's contents) into a Code expression whose Statements are the
// file's top-level statements, grounded on libs/sqf/src/parser.
// Parsing does not stop at a token that cannot begin an expression: it
// reports SPE1, skips that token and carries on, so one malformed
// statement does not hide diagnostics in the rest of the file. A
// character the lexer has no rule for, or an unterminated string, does
// end the parse: Parse then returns a nil root and that single SPE1 or
// SPE2 diagnostic.
func Parse(path, src string) (*Expression, []diag.Code) {
	toks, err := Lex(src)
	if err != nil {
		switch e := err.(type) {
		case *InvalidTokenError:
			return nil, []diag.Code{errInvalidToken(path, e.Offset, e.Offset+1, Token{Text: string(e.Char)})}
		case *UnterminatedStringError:
			return nil, []diag.Code{errUnparseable(path, e.Offset, e.Offset+1, "unterminated string")}
		default:
			return nil, []diag.Code{errUnparseable(path, 0, 0, err.Error())}
		}
	}
	p := &parser{path: path, toks: toks}
	stmts := p.parseStatements(TEOF)
	return &Expression{Kind: Code, Statements: stmts, Start: 0, End: len(src)}, p.errs
}

type parser struct {
	path string
	toks []Token
	pos  int
	errs []diag.Code
}

func (p *parser) peek() Token  { return p.toks[p.pos] }
func (p *parser) peekAt(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}
func (p *parser) at(k TokenKind) bool { return p.peek().Kind == k }

func (p *parser) parseStatements(end TokenKind) []*Expression {
	var stmts []*Expression
	for !p.at(end) && !p.at(TEOF) {
		start := p.pos
		stmt := p.parseStatement()
		stmts = append(stmts, stmt)
		if p.at(TSemicolon) {
			p.advance()
		}
		if p.pos == start {
			// Guard against an unconsumed bad token stalling the loop.
			p.advance()
		}
	}
	return stmts
}

func (p *parser) parseStatement() *Expression {
	if p.at(TIdent) && p.peekAt(1).Kind == TAssign {
		name := p.advance()
		p.advance() // '='
		val := p.parseBinary(0)
		return &Expression{
			Kind: Assignment, Name: name.Text, Local: strings.HasPrefix(name.Text, "_"),
			Value: val, Start: name.Start, End: val.End,
		}
	}
	return p.parseBinary(0)
}

// binaryPrec classifies tok as a binary operator/command, returning its
// precedence tier (higher binds tighter) and canonical name.
func binaryPrec(tok Token) (prec int, name string, ok bool) {
	if tok.Kind == TOp {
		switch tok.Text {
		case "^":
			return 7, tok.Text, true
		case "*", "/", "%":
			return 6, tok.Text, true
		case "+", "-":
			return 5, tok.Text, true
		case "==", "!=", "<", ">", "<=", ">=":
			return 4, tok.Text, true
		case "&&":
			return 3, tok.Text, true
		case "||":
			return 2, tok.Text, true
		}
		return 0, "", false
	}
	if tok.Kind != TIdent {
		return 0, "", false
	}
	lower := strings.ToLower(tok.Text)
	if lower == "mod" {
		return 6, tok.Text, true
	}
	if lower == "and" {
		return 3, tok.Text, true
	}
	if lower == "or" {
		return 2, tok.Text, true
	}
	if lower == "else" {
		return 1, tok.Text, true
	}
	if cmd, known := Lookup(tok.Text); known && cmd.Arity == Binary {
		return 0, tok.Text, true
	}
	return 0, "", false
}

func (p *parser) parseBinary(minPrec int) *Expression {
	lhs := p.parseUnary()
	for {
		prec, name, ok := binaryPrec(p.peek())
		if !ok || prec < minPrec {
			return lhs
		}
		p.advance()
		rhs := p.parseBinary(prec + 1)
		lhs = &Expression{Kind: BinaryCommand, Name: name, Lhs: lhs, Rhs: rhs, Start: lhs.Start, End: rhs.End}
	}
}

func (p *parser) parseUnary() *Expression {
	tok := p.peek()
	if tok.Kind == TOp && (tok.Text == "-" || tok.Text == "+" || tok.Text == "!" || tok.Text == "#") {
		p.advance()
		arg := p.parseUnary()
		return &Expression{Kind: UnaryCommand, Name: tok.Text, Arg: arg, Start: tok.Start, End: arg.End}
	}
	if tok.Kind == TIdent && !strings.HasPrefix(tok.Text, "_") {
		if cmd, ok := Lookup(tok.Text); ok && cmd.Arity == Unary {
			p.advance()
			arg := p.parseUnary()
			return &Expression{Kind: UnaryCommand, Name: tok.Text, Arg: arg, Start: tok.Start, End: arg.End}
		}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() *Expression {
	tok := p.peek()
	switch tok.Kind {
	case TNumber:
		p.advance()
		return &Expression{Kind: Number, Num: tok.Number, Start: tok.Start, End: tok.End}
	case TString:
		p.advance()
		return &Expression{Kind: String, Str: tok.Text, Start: tok.Start, End: tok.End}
	case TIdent:
		p.advance()
		if strings.HasPrefix(tok.Text, "_") {
			return &Expression{Kind: Variable, Name: tok.Text, Start: tok.Start, End: tok.End}
		}
		if cmd, ok := Lookup(tok.Text); ok && cmd.Arity == Nular {
			return &Expression{Kind: NularCommand, Name: tok.Text, Start: tok.Start, End: tok.End}
		}
		// Unknown bareword, or a binary-only command used out of
		// position: treat leniently as a global variable reference.
		return &Expression{Kind: Variable, Name: tok.Text, Start: tok.Start, End: tok.End}
	case TLParen:
		p.advance()
		inner := p.parseBinary(0)
		if p.at(TRParen) {
			p.advance()
		} else {
			p.errs = append(p.errs, errUnparseable(p.path, tok.Start, p.peek().End, "expected ')'"))
		}
		return inner
	case TLBrace:
		open := p.advance()
		stmts := p.parseStatements(TRBrace)
		end := p.peek().End
		if p.at(TRBrace) {
			p.advance()
		}
		return &Expression{Kind: Code, Statements: stmts, Start: open.Start, End: end}
	case TLBracket:
		open := p.advance()
		var items []*Expression
		for !p.at(TRBracket) && !p.at(TEOF) {
			items = append(items, p.parseBinary(0))
			if p.at(TComma) {
				p.advance()
			} else {
				break
			}
		}
		end := p.peek().End
		if p.at(TRBracket) {
			p.advance()
		}
		return &Expression{Kind: Array, Items: items, Start: open.Start, End: end}
	default:
		p.errs = append(p.errs, errInvalidToken(p.path, tok.Start, tok.End, tok))
		p.advance()
		return &Expression{Kind: Variable, Name: "", Start: tok.Start, End: tok.End}
	}
}
