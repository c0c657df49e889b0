package rapify

import "fmt"

// FormatError reports a structural problem with a rapified byte stream:
// bad magic, an unrecognized subcode, or trailing garbage. These are not
// diag.Code diagnostics since they describe a malformed binary container
// rather than a source-level mistake a user can fix by editing a config.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("rapify: malformed input at offset %d: %s", e.Offset, e.Reason)
}

func formatErrorf(offset int64, format string, args ...interface{}) error {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}
