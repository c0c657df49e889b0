package executor

import "github.com/BrettMayson/hemtt/internal/diag"

// wrapErr turns a plumbing failure (I/O, a subprocess, an unexpected
// panic recovery) into a diag.Code so every module can report through
// the same Report{Warnings,Errors} shape regardless of whether the
// underlying failure was a source diagnostic or a plain error. It
// deliberately collapses source/structural/format/I/O distinctions into
// one error kind, EXEC0.
func wrapErr(addonName, op string, err error) diag.Code {
	return diag.New("EXEC0", diag.Error, addonName+": "+op+": "+err.Error())
}
