// Command hemtt builds, checks, signs, and releases Arma 3 mod
// projects, grounded on cmd/distri/distri.go's flag-parse-then-verb-
// dispatch shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/BrettMayson/hemtt"
)

var debug = flag.Bool("debug", false, "print errors with additional detail")

type verbFunc func(ctx context.Context, args []string) error

func funcmain() error {
	flag.Parse()

	verbs := map[string]verbFunc{
		"build":   cmdbuild,
		"check":   cmdcheck,
		"release": cmdrelease,
		"clean":   cmdclean,
		"keygen":  cmdkeygen,
	}

	args := flag.Args()
	verb := "build"
	if len(args) > 0 {
		verb, args = args[0], args[1:]
	}

	if verb == "help" {
		fmt.Fprintf(os.Stderr, "hemtt [-flags] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "\tbuild    - build every addon into .hemttout/build\n")
		fmt.Fprintf(os.Stderr, "\tcheck    - run check-phase lints without building\n")
		fmt.Fprintf(os.Stderr, "\trelease  - build, sign, stage, and archive a release\n")
		fmt.Fprintf(os.Stderr, "\tclean    - remove .hemttout\n")
		fmt.Fprintf(os.Stderr, "\tkeygen   - generate a new signing key pair\n")
		return nil
	}

	v, ok := verbs[verb]
	if !ok {
		return fmt.Errorf("unknown command %q; see hemtt help", verb)
	}

	ctx, canc := hemtt.InterruptibleContext()
	defer canc()
	if err := v(ctx, args); err != nil {
		if *debug {
			return fmt.Errorf("%s: %+v", verb, err)
		}
		return fmt.Errorf("%s: %v", verb, err)
	}
	return hemtt.RunAtExit()
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
