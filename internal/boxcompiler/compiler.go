// Package boxcompiler is the compiler driver of spec §4 and the entry
// points of spec §6.1: one visit method per AST node class, driving
// the expression stack, the namespace, the operator tables, and the
// LIR emitter. It is grounded in the teacher's per-node-class
// compiler (internal/compiler/compiler.go, stmt_compiler.go,
// hoisting_compiler.go), generalized from Sentra's stack-machine
// bytecode to Box's typed three-address LIR and from Sentra's untyped
// dynamic values to Box's statically-typed Value/Container model.
package boxcompiler

import (
	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxlir"
	"boxc/internal/boxns"
	"boxc/internal/boxops"
	"boxc/internal/boxtype"
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

var _ boxast.ExprVisitor = (*Compiler)(nil)

// Compiler is the core (spec §2 "Compiler driver"). It is
// single-threaded and not reentrant (spec §5): one instance must be
// driven from at most one goroutine at a time.
type Compiler struct {
	Sys boxtype.System
	VM  boxvm.VM
	Log boxdiag.Logger
	Ops *boxops.Table

	NS      *boxns.Namespace
	Tracker *boxvalue.Tracker

	stack []*boxvalue.Value

	proc      *boxlir.VMCode
	procStack []*frame

	isSane bool

	vBegin, vEnd, vPause, vVoid *boxvalue.Value
}

// frame is what gets saved/restored around compiling a combination's
// body into its own freshly allocated sub-procedure (spec §4.7): the
// outer procedure and LIR are restored once the inner one is
// installed.
type frame struct {
	proc *boxlir.VMCode
}

// New constructs a Compiler ready to compile into a fresh `main`
// procedure (spec §3.6, §6.1).
func New(sys boxtype.System, vm boxvm.VM, log boxdiag.Logger, ops *boxops.Table) *Compiler {
	c := &Compiler{
		Sys: sys, VM: vm, Log: log, Ops: ops,
		NS:      boxns.New(),
		Tracker: boxvalue.NewTracker(),
		isSane:  true,
	}
	c.proc = boxlir.NewVMCode("main", boxvm.StyleMain)
	c.initSingletons()
	return c
}

// initSingletons builds the compile-time constant Values spec §9's
// design notes call out: "retain as compile-time constants on the
// compiler instance, constructed once at compile-open, destroyed at
// compile-close, and handed out as weak copies."
func (c *Compiler) initSingletons() {
	marker := func(name string) *boxvalue.Value {
		t, _ := c.Sys.Lookup(name)
		return &boxvalue.Value{Kind: boxvalue.KindType, Type: t, Name: name, ReadOnly: true}
	}
	c.vBegin = marker("Begin")
	c.vEnd = marker("End")
	c.vPause = marker("Pause")
	c.vVoid = &boxvalue.Value{Kind: boxvalue.KindType, Type: c.Sys.Void(), Name: "Void", ReadOnly: true}
}

// weakCopySingleton hands out a non-owning alias of one of the
// compiler's cached singleton Values.
func (c *Compiler) weakCopySingleton(src *boxvalue.Value) *boxvalue.Value {
	dst := &boxvalue.Value{}
	boxvalue.WeakCopyInto(dst, src)
	return dst
}

// IsSane reports whether no error-severity diagnostic has been
// reported so far (spec §5 "is_sane").
func (c *Compiler) IsSane() bool { return c.isSane }

func (c *Compiler) errorf(pos boxdiag.Pos, kind boxdiag.Kind, format string, args ...interface{}) {
	c.Log.Errorf(pos, kind, format, args...)
	c.isSane = false
}

func (c *Compiler) warnf(pos boxdiag.Pos, format string, args ...interface{}) {
	c.Log.Warnf(pos, boxdiag.KindWarning, format, args...)
}

// Compile traverses ast into the main procedure and returns is_sane
// (spec §6.1 compile(ast) -> bool). A recovered internal fatal
// (boxdiag.Logger.Fatalf panics) is turned into is_sane=false rather
// than crashing the host process, matching spec §5: "Compilation
// continues so multiple errors can be reported in one pass."
func (c *Compiler) Compile(ast boxast.Expr) (sane bool) {
	defer func() {
		if r := recover(); r != nil {
			c.isSane = false
			sane = false
		}
	}()
	mark := len(c.stack)
	ast.Accept(c)
	if len(c.stack) != mark+1 {
		c.Log.Fatalf(ast.Position(), "stack imbalance after compiling root: want %d have %d", mark+1, len(c.stack))
	}
	v := c.popValue()
	v.Destroy()
	c.proc.Emit(boxvm.OpNone) // no-op terminator kept out of Instructions by VM lowering in real hosts; harmless here
	return c.isSane
}

// Install registers the main procedure with the VM (spec §6.1
// install). Sub-procedures compiled from combination bodies install
// themselves as soon as their definition statement finishes (spec
// §4.7).
func (c *Compiler) Install() (int, error) {
	return c.proc.Install(c.VM)
}

// Proc exposes the procedure currently being appended to, for tests
// that want to inspect the emitted LIR without installing it.
func (c *Compiler) Proc() *boxlir.VMCode { return c.proc }

// pushFrame switches c.proc to sub for the duration of compiling a
// combination body (spec §4.7), saving the outer procedure.
func (c *Compiler) pushFrame(sub *boxlir.VMCode) {
	c.procStack = append(c.procStack, &frame{proc: c.proc})
	c.proc = sub
}

// popFrame restores the procedure saved by the matching pushFrame.
func (c *Compiler) popFrame() {
	n := len(c.procStack)
	if n == 0 {
		return
	}
	top := c.procStack[n-1]
	c.procStack = c.procStack[:n-1]
	c.proc = top.proc
}
