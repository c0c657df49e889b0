// Package executor runs HEMTT's fixed build pipeline: a sequence of
// phases, each of which hands every registered module the full addon
// list and folds the resulting reports together, grounded on
// internal/build/build.go's fan-out idiom (golang.org/x/sync's
// errgroup/semaphore pair, see parallel.go) generalized from "build one
// distri package" to "run one module over every addon".
package executor

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/BrettMayson/hemtt/internal/addon"
	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/BrettMayson/hemtt/internal/project"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

// Phase is one step of the fixed build sequence.
type Phase int

const (
	Init Phase = iota
	Check
	PreBuild
	Build
	PostBuild
	PreRelease
	PostRelease
)

func (p Phase) String() string {
	switch p {
	case Init:
		return "init"
	case Check:
		return "check"
	case PreBuild:
		return "pre_build"
	case Build:
		return "build"
	case PostBuild:
		return "post_build"
	case PreRelease:
		return "pre_release"
	case PostRelease:
		return "post_release"
	default:
		return "unknown"
	}
}

// Phases is the fixed sequence every Executor run walks, in order.
var Phases = []Phase{Init, Check, PreBuild, Build, PostBuild, PreRelease, PostRelease}

// Context is the mutable state every module hook receives: the
// workspace, project config, the addon list (in scan order; a module
// that cares about dependency order calls addon.BuildOrder itself), and
// the build/release folder paths.
type Context struct {
	Workspace   *workspace.Workspace
	Project     *project.Config
	Addons      []*addon.Addon
	BuildFolder *workspace.Path
	ReleaseRoot *workspace.Path
	Pedantic    bool
}

// Report is what a module hook returns: diagnostics folded up, plus a
// Fatal flag that aborts the executor once the current phase finishes.
type Report struct {
	Warnings []diag.Code
	Errors   []diag.Code
	Fatal    bool
}

// Merge folds other into r.
func (r *Report) Merge(other Report) {
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Errors = append(r.Errors, other.Errors...)
	r.Fatal = r.Fatal || other.Fatal
}

// AddError appends an error-severity diagnostic and marks the report
// fatal.
func (r *Report) AddError(c diag.Code) {
	r.Errors = append(r.Errors, c)
	r.Fatal = true
}

// AddWarning appends a warning-severity diagnostic. Warnings never fail
// a build on their own; the executor promotes them to fatal when
// Context.Pedantic is set.
func (r *Report) AddWarning(c diag.Code) {
	r.Warnings = append(r.Warnings, c)
}

// Module is the contract every build-pipeline module satisfies: a name,
// plus whichever phase hooks it opts into via the Initer/Checker/...
// interfaces below. A module with no hook for a given phase is simply
// skipped during that phase.
type Module interface {
	Name() string
}

type Initer interface{ Init(ctx *Context) Report }
type Checker interface{ Check(ctx *Context) Report }
type PreBuilder interface{ PreBuild(ctx *Context) Report }
type Builder interface{ DoBuild(ctx *Context) Report }
type PostBuilder interface{ PostBuild(ctx *Context) Report }
type PreReleaser interface{ PreRelease(ctx *Context) Report }
type PostReleaser interface{ PostRelease(ctx *Context) Report }

// Executor runs Modules through the fixed phase sequence.
type Executor struct {
	Modules []Module
}

// Run walks Phases in order. Within a phase, modules run sequentially in
// registration order; a module opts into data-parallel dispatch over
// Context.Addons itself via ParallelAddons. If any module in a
// phase reports Fatal (or a pedantic-promoted warning), the executor
// finishes the rest of that phase's modules — to surface as many
// diagnostics as possible from one run — then stops before the next
// phase. ctx.Done() is also checked between phases, for SIGINT/SIGTERM
// (see the root package's InterruptibleContext).
func (e *Executor) Run(ctx context.Context, ectx *Context) (Report, error) {
	var total Report
	for _, phase := range Phases {
		select {
		case <-ctx.Done():
			return total, xerrors.Errorf("executor: interrupted before phase %s: %w", phase, ctx.Err())
		default:
		}

		var phaseFatal bool
		for _, m := range e.Modules {
			r := dispatch(phase, m, ectx)
			if ectx.Pedantic && len(r.Warnings) > 0 {
				r.Fatal = true
			}
			total.Merge(r)
			if r.Fatal {
				phaseFatal = true
			}
		}
		if phaseFatal {
			return total, nil
		}
	}
	return total, nil
}

func dispatch(phase Phase, m Module, ctx *Context) Report {
	switch phase {
	case Init:
		if h, ok := m.(Initer); ok {
			return h.Init(ctx)
		}
	case Check:
		if h, ok := m.(Checker); ok {
			return h.Check(ctx)
		}
	case PreBuild:
		if h, ok := m.(PreBuilder); ok {
			return h.PreBuild(ctx)
		}
	case Build:
		if h, ok := m.(Builder); ok {
			return h.DoBuild(ctx)
		}
	case PostBuild:
		if h, ok := m.(PostBuilder); ok {
			return h.PostBuild(ctx)
		}
	case PreRelease:
		if h, ok := m.(PreReleaser); ok {
			return h.PreRelease(ctx)
		}
	case PostRelease:
		if h, ok := m.(PostReleaser); ok {
			return h.PostRelease(ctx)
		}
	}
	return Report{}
}
