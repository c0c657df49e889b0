package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/exp/slices"
)

// FilesCache resolves a workspace path to its full text, so the renderer can
// print the source line(s) a label points into. internal/workspace provides
// an implementation; kept as a narrow interface here to avoid the cycle.
type FilesCache interface {
	SourceText(path string) (string, bool)
}

// Annotation is the machine-readable record emitted when a CI environment is
// detected. The field names mirror the GitHub Actions
// workflow-command vocabulary, the most common consumer of this shape.
type Annotation struct {
	Path      string
	StartLine int
	EndLine   int
	StartCol  int
	EndCol    int
	Level     string
	Title     string
	Message   string
}

// Renderer turns Codes into either ANSI terminal text or plain text,
// colored by default and plain when stdout isn't a TTY, and
// additionally into Annotation records when running under CI.
type Renderer struct {
	Files     FilesCache
	SourceMap SourceMapper
	Color     bool
	CI        bool
}

// NewRenderer inspects out for TTY-ness with mattn/go-isatty and the process
// environment for known CI markers (see detectCI).
func NewRenderer(out *os.File, files FilesCache, sm SourceMapper) *Renderer {
	color := isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd())
	return &Renderer{
		Files:     files,
		SourceMap: sm,
		Color:     color,
		CI:        detectCI(),
	}
}

func detectCI() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "CIRCLECI", "GITLAB_CI", "TF_BUILD"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiGreen  = "\x1b[32m"
)

func severityColor(s Severity) string {
	switch s {
	case Error, Bug:
		return ansiRed
	case Warning:
		return ansiYellow
	case Note:
		return ansiCyan
	case Help:
		return ansiGreen
	default:
		return ""
	}
}

// Render writes a human-oriented rendering of code to w.
func (r *Renderer) Render(w io.Writer, code Code) {
	sev := code.Severity().String()
	if r.Color {
		fmt.Fprintf(w, "%s%s%s%s: %s\n", ansiBold, severityColor(code.Severity()), sev, ansiReset, code.Message())
	} else {
		fmt.Fprintf(w, "%s[%s]: %s\n", sev, code.Ident(), code.Message())
	}
	for _, l := range code.Labels() {
		var (
			path     string
			offset   int
			wasMacro bool
			resolved bool
		)
		if r.SourceMap != nil {
			if p, o, macro, ok := r.SourceMap.Resolve(l.Span.Start); ok {
				path, offset, wasMacro, resolved = p, o, macro, true
			}
		}
		if !resolved {
			path, offset = l.Path, l.Span.Start
		}
		fmt.Fprintf(w, "  --> %s:%d\n", path, offset)
		if l.Message != "" {
			fmt.Fprintf(w, "      %s\n", l.Message)
		}
		if wasMacro && r.SourceMap != nil {
			fmt.Fprintf(w, "      note: expanded from macro, rendered as: %q\n", r.SourceMap.Fragment(l.Span))
		}
	}
	for _, n := range code.Notes() {
		fmt.Fprintf(w, "  note: %s\n", n)
	}
	for _, h := range code.Help() {
		fmt.Fprintf(w, "  help: %s\n", h)
	}
	if s := code.Suggestion(); s != nil {
		fmt.Fprintf(w, "  suggestion: %s -> %q\n", s.Message, s.Replacement)
	}
}

// Annotate converts code into zero or more Annotation records, one per
// label (falling back to a single annotation with no span when the code
// carries no labels).
func (r *Renderer) Annotate(code Code) []Annotation {
	level := annotationLevel(code.Severity())
	if len(code.Labels()) == 0 {
		return []Annotation{{Level: level, Title: code.Ident(), Message: code.Message()}}
	}
	out := make([]Annotation, 0, len(code.Labels()))
	for _, l := range code.Labels() {
		path := l.Path
		startLine, endLine := 1, 1
		if r.SourceMap != nil {
			if p, o, _, ok := r.SourceMap.Resolve(l.Span.Start); ok {
				path = p
				startLine = lineOf(r.Files, p, o)
			}
		}
		out = append(out, Annotation{
			Path:      path,
			StartLine: startLine,
			EndLine:   endLine,
			Level:     level,
			Title:     code.Ident(),
			Message:   code.Message(),
		})
	}
	return out
}

func lineOf(files FilesCache, path string, offset int) int {
	if files == nil {
		return 1
	}
	text, ok := files.SourceText(path)
	if !ok || offset < 0 || offset > len(text) {
		return 1
	}
	return strings.Count(text[:offset], "\n") + 1
}

func annotationLevel(s Severity) string {
	switch s {
	case Error, Bug:
		return "error"
	case Warning:
		return "warning"
	default:
		return "notice"
	}
}

// Sort orders diagnostics by (path, start_offset, code ident): diagnostics
// emitted across workers are collected into an unordered pool and sorted
// into this order before rendering.
func Sort(codes []Code) {
	slices.SortStableFunc(codes, func(a, b Code) int {
		pa, oa := primaryLabel(a)
		pb, ob := primaryLabel(b)
		if pa != pb {
			return strings.Compare(pa, pb)
		}
		if oa != ob {
			return oa - ob
		}
		return strings.Compare(a.Ident(), b.Ident())
	})
}

func primaryLabel(c Code) (path string, offset int) {
	for _, l := range c.Labels() {
		if l.Primary {
			return l.Path, l.Span.Start
		}
	}
	if len(c.Labels()) > 0 {
		return c.Labels()[0].Path, c.Labels()[0].Span.Start
	}
	return "", 0
}
