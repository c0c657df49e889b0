// Package version compares the float-shaped version numbers used
// throughout HEMTT (a CfgPatches requiredVersion like 2.18, or a command
// database's `since` field) using golang.org/x/mod/semver, adapted from
// distr1/distri's hand-rolled version.go into a library built on the
// pack's real semver library instead.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Normalize turns a HEMTT-style float version (2.18, 1.0, 100) into the
// "vMAJOR.MINOR.0" form golang.org/x/mod/semver expects. The digits after
// the decimal point of v's shortest decimal form are always treated as
// the minor version, even when that reads oddly as a decimal (2.9 has
// minor 9 and sorts before 2.18), matching how requiredVersion is written
// in addon configs. The input is a float64, so 2.1 and 2.10 are the same
// value and both have minor 1.
func Normalize(v float64) string {
	major := int64(v)

	minor := "0"
	// Read the digits from v's shortest decimal form rather than from
	// v - major, whose binary remainder prints as 0.18000000000000016
	// for 2.18.
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		minor = s[i+1:]
	}
	return fmt.Sprintf("v%d.%s.0", major, minor)
}

// Compare returns -1, 0, or +1 as a is less than, equal to, or greater
// than b, per semver.Compare over their normalized forms.
func Compare(a, b float64) int {
	return semver.Compare(Normalize(a), Normalize(b))
}

// LessThan reports whether a < b.
func LessThan(a, b float64) bool {
	return Compare(a, b) < 0
}

// Satisfies reports whether declared (an addon's requiredVersion) is
// high enough to cover required (a command's since version or a
// dependency's minimum), i.e. declared >= required.
func Satisfies(declared, required float64) bool {
	return Compare(declared, required) >= 0
}
