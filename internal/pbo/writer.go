package pbo

import (
	"bytes"
	"crypto/sha1"
	"io"
)

// Write serializes p to w: the Vers property header (if any properties
// are set), one header per file in lowercase-sorted order, a zeroed
// terminator header, the file bodies in that same order, and a trailing
// SHA-1 over everything written so far.
func Write(w io.Writer, p *PBO) error {
	var buf bytes.Buffer
	h := sha1.New()
	mw := io.MultiWriter(&buf, h)

	if len(p.PropertyKeys) > 0 {
		if err := writeHeader(mw, Header{Filename: "", Mime: Vers}); err != nil {
			return err
		}
		for _, key := range p.PropertyKeys {
			if err := writeCString(mw, key); err != nil {
				return err
			}
			if err := writeCString(mw, p.Properties[key]); err != nil {
				return err
			}
		}
		if err := writeCString(mw, ""); err != nil {
			return err
		}
	}

	files := p.SortedFiles()
	for _, f := range files {
		if err := writeHeader(mw, f.Header); err != nil {
			return err
		}
	}
	if err := writeHeader(mw, Header{}); err != nil {
		return err
	}

	for _, f := range files {
		if _, err := mw.Write(f.Data); err != nil {
			return err
		}
	}

	sum := h.Sum(nil)
	if _, err := buf.Write([]byte{0x00}); err != nil {
		return err
	}
	if _, err := buf.Write(sum); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func writeHeader(w io.Writer, h Header) error {
	_, err := w.Write(h.Bytes())
	return err
}

func writeCString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	_, err := w.Write([]byte{0})
	return err
}
