package preprocessor

import (
	"strings"

	"github.com/BrettMayson/hemtt/internal/diag"
)

// mapEntry records, for one rendered byte, the original file/offset it
// came from and whether it was produced by macro expansion.
type mapEntry struct {
	renderedOffset int
	path           string
	originalOffset int
	wasMacro       bool
}

// UsageSite records a place a define was consumed, for the usage index.
type UsageSite struct {
	Path   string
	Offset int
}

// Processed is the preprocessor's output bundle.
type Processed struct {
	Tokens      []Token
	Rendered    string
	entries     []mapEntry // sorted by renderedOffset
	Diagnostics []diag.Code
	Usage       map[string][]UsageSite

	// RequiredVersion is not filled in by Process, and nothing in this
	// module sets it: the preprocessor has no config grammar, and the
	// addon's required version is kept on its build data by
	// internal/executor instead.
	RequiredVersion float64

	sourceText map[string]string // path -> raw source, for Fragment/SourceText
}

// Resolve implements diag.SourceMapper: converts a rendered-output offset
// back into (original_file, original_offset, was_macro_expanded).
func (p *Processed) Resolve(offset int) (path string, originalOffset int, wasMacro bool, ok bool) {
	if len(p.entries) == 0 {
		return "", 0, false, false
	}
	// entries is sorted ascending by renderedOffset; find the last entry
	// with renderedOffset <= offset.
	lo, hi := 0, len(p.entries)-1
	best := -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if p.entries[mid].renderedOffset <= offset {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best == -1 {
		return "", 0, false, false
	}
	e := p.entries[best]
	delta := offset - e.renderedOffset
	return e.path, e.originalOffset + delta, e.wasMacro, true
}

// Fragment returns the rendered text for span, used by the renderer to
// show an "expanded to" note.
func (p *Processed) Fragment(span diag.Span) string {
	if span.Start < 0 || span.End > len(p.Rendered) || span.Start > span.End {
		return ""
	}
	return p.Rendered[span.Start:span.End]
}

// SourceText implements diag.FilesCache for the original (pre-processed)
// file contents, used by the renderer to compute line numbers.
func (p *Processed) SourceText(path string) (string, bool) {
	s, ok := p.sourceText[path]
	return s, ok
}

func (p *Processed) addUsage(name string, pos Position) {
	if p.Usage == nil {
		p.Usage = make(map[string][]UsageSite)
	}
	p.Usage[name] = append(p.Usage[name], UsageSite{Path: pos.Path, Offset: pos.Offset})
}

// render builds p.Rendered and p.entries from p.Tokens, each token
// contributing one mapEntry at its first rendered byte (subsequent bytes
// of a multi-byte token resolve via the delta math in Resolve).
func (p *Processed) render() {
	var sb strings.Builder
	for _, t := range p.Tokens {
		text := t.String()
		p.entries = append(p.entries, mapEntry{
			renderedOffset: sb.Len(),
			path:           t.Position.Path,
			originalOffset: t.Position.Offset,
			wasMacro:       t.Position.Macro,
		})
		sb.WriteString(text)
	}
	p.Rendered = sb.String()
}
