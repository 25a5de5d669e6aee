package boxcompiler

import (
	"bytes"
	"testing"

	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxops"
	"boxc/internal/boxtype"
	"boxc/internal/boxvm"
)

// testHarness bundles the collaborators a scenario test drives, the
// way CompileFile bundles them for a real caller — but exposed so
// tests can poke at c.Proc(), c.NS, and c.Log directly afterward.
type testHarness struct {
	t   *testing.T
	Sys *boxtype.DefaultSystem
	VM  boxvm.VM
	Log boxdiag.Logger
	Ops *boxops.Table
	C   *Compiler

	diagBuf bytes.Buffer
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{t: t}
	h.Sys = boxtype.NewDefaultSystem()
	h.VM = boxvm.NewDefaultVM()
	h.Log = boxdiag.NewSink(&h.diagBuf)
	h.Ops = boxops.NewTable()
	InstallBuiltinOperators(h.Sys, h.Ops)
	h.C = New(h.Sys, h.VM, h.Log, h.Ops)
	return h
}

// compile drives ast through the compiler and asserts the invariants
// that must hold for every successful compile (spec §8 invariants
// 1-4): stack balance is enforced by Compile itself (a violation
// recovers into is_sane=false), so this only needs to check the
// namespace floor count, the register ledger, and the leak tracker.
func (h *testHarness) compile(ast boxast.Expr) bool {
	h.t.Helper()
	mark := h.C.Tracker.Mark()
	sane := h.C.Compile(ast)
	if sane {
		if depth := h.C.NS.Depth(); depth != 1 {
			h.t.Errorf("namespace balance violated: want depth 1 after compile, got %d", depth)
		}
		if n := h.C.Proc().OutstandingTemps(); n != 0 {
			h.t.Errorf("register balance violated: %d temporaries still allocated", n)
		}
		if leaks := h.C.Tracker.LeaksSince(mark); len(leaks) > 0 {
			h.t.Errorf("leak freedom violated: %v", leaks)
		}
	}
	return sane
}

func (h *testHarness) diagnostics() string { return h.diagBuf.String() }

func pos() boxdiag.Pos { return boxdiag.Pos{File: "<test>", Line: 1, Col: 1} }

func ilit(v int64) *boxast.IntLit   { return &boxast.IntLit{Value: v} }
func rlit(v float64) *boxast.RealLit { return &boxast.RealLit{Value: v} }
func ident(name string) *boxast.Identifier { return &boxast.Identifier{Name: name} }

func bin(op boxops.BinaryOp, l, r boxast.Expr) *boxast.Binary {
	return &boxast.Binary{Op: op, Left: l, Right: r}
}

func box(stmts ...boxast.BoxStmt) *boxast.Box {
	return boxast.NewBox(pos(), nil, stmts...)
}

func plain(e boxast.Expr) boxast.BoxStmt { return boxast.BoxStmt{Expr: e, Sep: boxast.SepPlain} }
func pause(e boxast.Expr) boxast.BoxStmt { return boxast.BoxStmt{Expr: e, Sep: boxast.SepPause} }
