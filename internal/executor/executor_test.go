package executor

import (
	"context"
	"testing"

	"github.com/BrettMayson/hemtt/internal/diag"
	"github.com/BrettMayson/hemtt/internal/workspace"
)

type recordingModule struct {
	name string
	log  *[]string
}

func (m recordingModule) Name() string { return m.name }

func (m recordingModule) Init(ctx *Context) Report {
	*m.log = append(*m.log, m.name+":init")
	return Report{}
}

func (m recordingModule) Check(ctx *Context) Report {
	*m.log = append(*m.log, m.name+":check")
	return Report{}
}

func newMemContext(t *testing.T) *Context {
	t.Helper()
	ws, err := workspace.NewBuilder().Memory().Finish()
	if err != nil {
		t.Fatalf("building workspace: %v", err)
	}
	return &Context{
		Workspace:   ws,
		Addons:      nil,
		BuildFolder: ws.Root().Join(".hemttout").Join("build"),
		ReleaseRoot: ws.Root().Join(".hemttout").Join("release"),
	}
}

func TestRunWalksPhasesInRegistrationOrder(t *testing.T) {
	var log []string
	ex := &Executor{Modules: []Module{
		recordingModule{name: "a", log: &log},
		recordingModule{name: "b", log: &log},
	}}
	ectx := newMemContext(t)
	if _, err := ex.Run(context.Background(), ectx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"a:init", "b:init", "a:check", "b:check"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
}

type fatalModule struct{ phase Phase }

func (fatalModule) Name() string { return "fatal" }

func (m fatalModule) Check(ctx *Context) Report {
	var r Report
	r.AddError(diag.New("TEST1", diag.Error, "boom"))
	return r
}

type laterModule struct{ ran *bool }

func (laterModule) Name() string { return "later" }

func (m laterModule) PreBuild(ctx *Context) Report {
	*m.ran = true
	return Report{}
}

func TestFatalReportStopsBeforeNextPhase(t *testing.T) {
	var ran bool
	ex := &Executor{Modules: []Module{fatalModule{}, laterModule{ran: &ran}}}
	ectx := newMemContext(t)
	report, err := ex.Run(context.Background(), ectx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Fatal {
		t.Fatal("expected a fatal report")
	}
	if ran {
		t.Fatal("PreBuild hook ran after a fatal Check phase")
	}
}

type warningModule struct{}

func (warningModule) Name() string { return "warn" }

func (warningModule) Check(ctx *Context) Report {
	var r Report
	r.AddWarning(diag.New("TEST2", diag.Warning, "careful"))
	return r
}

func TestPedanticPromotesWarningsToFatal(t *testing.T) {
	ex := &Executor{Modules: []Module{warningModule{}}}
	ectx := newMemContext(t)
	ectx.Pedantic = true
	report, err := ex.Run(context.Background(), ectx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !report.Fatal {
		t.Fatal("expected Pedantic to promote the warning to fatal")
	}
}

func TestInterruptedContextStopsBeforeFirstPhase(t *testing.T) {
	var ran bool
	ex := &Executor{Modules: []Module{laterModule{ran: &ran}}}
	ectx := newMemContext(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ex.Run(ctx, ectx)
	if err == nil {
		t.Fatal("expected an error from a pre-cancelled context")
	}
}
