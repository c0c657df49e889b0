package sqf

import (
	"fmt"

	"github.com/BrettMayson/hemtt/internal/diag"
)

// InvalidTokenError is a lexical failure: a byte the lexer has no rule
// for.
type InvalidTokenError struct {
	Offset int
	Char   byte
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("sqf: invalid character %q at offset %d", e.Char, e.Offset)
}

// UnterminatedStringError is raised when a string literal runs off the
// end of the source without a closing quote.
type UnterminatedStringError struct {
	Offset int
}

func (e *UnterminatedStringError) Error() string {
	return fmt.Sprintf("sqf: unterminated string starting at offset %d", e.Offset)
}

// errInvalidToken is SPE1: the parser encountered a token it cannot
// begin an expression with, grounded on
// libs/sqf/src/parser/codes/spe1_invalid_token.rs.
func errInvalidToken(path string, start, end int, tok Token) *diag.Simple {
	return diag.New("SPE1", diag.Error, fmt.Sprintf("unexpected token %q", tok.Text)).
		WithLabel(diag.Label{Path: path, Span: diag.Span{Start: start, End: end}, Message: "cannot start an expression here", Primary: true})
}

// errUnparseable is SPE2: the parser recognized the token but could not
// fit it into any grammar rule at this position, grounded on
// libs/sqf/src/parser/codes/spe2_unparseable.rs.
func errUnparseable(path string, start, end int, reason string) *diag.Simple {
	return diag.New("SPE2", diag.Error, "unparseable: "+reason).
		WithLabel(diag.Label{Path: path, Span: diag.Span{Start: start, End: end}, Message: reason, Primary: true})
}
