package sqf

// ExprKind discriminates the Expression sum type.
type ExprKind int

const (
	Number ExprKind = iota
	String
	Variable
	Code
	Array
	UnaryCommand
	BinaryCommand
	NularCommand
	Assignment
)

// Expression is the single AST node type for the scripting dialect:
// {Number|String|Variable|Code(Statements)|Array|
// UnaryCommand(name, arg)|BinaryCommand(name, lhs, rhs)|
// NularCommand(name)|Assignment(local?, name, expr)}. Start/End are the
// byte span in source, used by analyze.go's diagnostics.
type Expression struct {
	Kind  ExprKind
	Start int
	End   int

	Num  float64 // Number
	Str  string  // String
	Name string  // Variable, UnaryCommand/BinaryCommand/NularCommand name, Assignment target

	Statements []*Expression // Code
	Items      []*Expression // Array

	Arg *Expression // UnaryCommand

	Lhs *Expression // BinaryCommand
	Rhs *Expression // BinaryCommand

	Local bool        // Assignment: true when the target name starts with "_"
	Value *Expression // Assignment
}

func (e *Expression) span() (int, int) {
	if e == nil {
		return 0, 0
	}
	return e.Start, e.End
}
