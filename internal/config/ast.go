// Package config implements the class/property config parser and its
// lints: a recursive-descent parser with single-token lookahead consuming
// a preprocessor.Processed token stream, producing an AST spanned back
// into the original source via the same source map the preprocessor
// already built.
package config

import (
	"github.com/BrettMayson/hemtt/internal/diag"
)

// ClassKind distinguishes the three shapes a Class declaration can take.
type ClassKind int

const (
	ClassLocal ClassKind = iota
	ClassExternal
	ClassRoot
)

// Class is a `class Name : Parent { ... };`, `class Name;` (external), or
// the implicit root class wrapping a file's top-level properties.
type Class struct {
	Kind       ClassKind
	Name       string
	Parent     string
	ParentSpan diag.Span // span of the parent reference, for CE7/CW1
	NameSpan   diag.Span
	Properties []Property
	Span       diag.Span
	Path       string
}

// PropertyKind distinguishes the four shapes a Property can take.
type PropertyKind int

const (
	PropEntry PropertyKind = iota
	PropClass
	PropDelete
	PropMissingSemicolon
)

// Property is one statement inside a class body (or the file root).
type Property struct {
	Kind PropertyKind
	Name string
	Span diag.Span
	Path string

	// PropEntry
	Value         Value
	ExpectedArray bool

	// PropClass
	Class *Class

	// PropDelete / PropMissingSemicolon carry only Name and Span.
}

// ValueKind distinguishes the shapes a property or array-item value can take.
type ValueKind int

const (
	ValStr ValueKind = iota
	ValNumber
	ValExpression
	ValArray
	ValUnexpectedArray
	ValInvalid
)

// NumberKind narrows ValNumber: parsed as a 32-bit integer when the
// literal fits, else a 64-bit integer, else a float.
type NumberKind int

const (
	NumInt32 NumberKind = iota
	NumInt64
	NumFloat32
)

// Value is a single property value or array item value.
type Value struct {
	Kind ValueKind
	Span diag.Span
	Path string

	Str string // ValStr

	NumKind NumberKind // ValNumber
	Int     int64
	Float   float32

	Expression string // ValExpression, the raw text inside __EVAL(...)

	Items        []Item // ValArray, ValUnexpectedArray
	ExpandAssign bool   // ValArray: true when introduced by `+=`

	FromMacro bool // ValInvalid: whether the invalid span came from macro expansion (CE1 vs CE2)
}

// ItemKind distinguishes the shapes an array item can take (items may mix
// types even though arrays are homogeneous at the container level).
type ItemKind int

const (
	ItemStr ItemKind = iota
	ItemNumber
	ItemArray
	ItemInvalid
)

// Item is one element of an Array value.
type Item struct {
	Kind  ItemKind
	Span  diag.Span
	Str   string
	Int   int64
	Float float32
	IsInt bool
	Array []Item
}

// Config is the root AST node: a Root-kind Class wrapping the file's
// top-level properties.
type Config struct {
	Properties []Property
	Span       diag.Span
	Path       string
}
