// Package diag implements the diagnostic model shared by every HEMTT
// component: preprocessor, config parser, lints, and the SQF analyzer all
// produce diag.Code values rather than plain errors, so that they can be
// collected, sorted, and rendered uniformly by the executor (see
// internal/executor).
package diag

// Severity ranks a diagnostic for rendering and for exit-code purposes.
type Severity int

const (
	Bug Severity = iota
	Error
	Warning
	Note
	Help
)

func (s Severity) String() string {
	switch s {
	case Bug:
		return "bug"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Note:
		return "note"
	case Help:
		return "help"
	default:
		return "unknown"
	}
}

// Span is a half-open byte range [Start, End) inside a single file, using
// the raw offsets produced by whatever stage emitted the diagnostic. For
// diagnostics raised against preprocessor output, Start/End are offsets into
// the rendered Processed string; the renderer resolves them back to
// original source via SourceMapper.
type Span struct {
	Start int
	End   int
}

// Label binds a message to a span of a particular file.
type Label struct {
	Path    string
	Span    Span
	Message string
	// Primary labels are rendered with the diagnostic's main underline;
	// secondary labels (false) provide supporting context.
	Primary bool
}

// Code is the capability interface every diagnostic implements. Tagged
// structs (below) satisfy it directly; the set of idents is closed.
type Code interface {
	Ident() string
	Severity() Severity
	Message() string
	Labels() []Label
	Notes() []string
	Help() []string
	Suggestion() *Suggestion
}

// Suggestion is an optional machine-applicable fix attached to a Code.
type Suggestion struct {
	Message     string
	Replacement string
	Span        Span
	Path        string
}

// Simple is the concrete Code implementation used by every PE##/CE##/CW##
// etc. constructor in the preprocessor, config, and sqf packages. Callers
// build one with New and chain the With* methods.
type Simple struct {
	ident      string
	severity   Severity
	message    string
	labels     []Label
	notes      []string
	help       []string
	suggestion *Suggestion
}

func New(ident string, severity Severity, message string) *Simple {
	return &Simple{ident: ident, severity: severity, message: message}
}

func (s *Simple) WithLabel(l Label) *Simple {
	s.labels = append(s.labels, l)
	return s
}

func (s *Simple) WithNote(note string) *Simple {
	s.notes = append(s.notes, note)
	return s
}

func (s *Simple) WithHelp(help string) *Simple {
	s.help = append(s.help, help)
	return s
}

func (s *Simple) WithSuggestion(sg Suggestion) *Simple {
	s.suggestion = &sg
	return s
}

func (s *Simple) Ident() string        { return s.ident }
func (s *Simple) Severity() Severity   { return s.severity }
func (s *Simple) Message() string      { return s.message }
func (s *Simple) Labels() []Label      { return s.labels }
func (s *Simple) Notes() []string      { return s.notes }
func (s *Simple) Help() []string       { return s.help }
func (s *Simple) Suggestion() *Suggestion {
	return s.suggestion
}
