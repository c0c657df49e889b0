package diag

// SourceMapper resolves an offset produced by a preprocessed output back to
// the original file and offset it came from, and reports whether that
// offset was produced by macro expansion. internal/preprocessor.Processed
// implements this; internal/diag only depends on the interface to avoid an
// import cycle (preprocessor already depends on diag for PE##/PW## codes).
type SourceMapper interface {
	Resolve(offset int) (path string, originalOffset int, wasMacro bool, ok bool)
	// Fragment returns the rendered text for the given span, used to show an
	// auxiliary "expanded to" note when a label lands inside a macro
	// expansion.
	Fragment(span Span) string
}
