// entry.go implements spec §6.1's external entry points. compile and
// install are thin wrappers over methods the Compiler already has;
// CompileFile is the one orchestration helper the core exposes,
// composing a type system, a VM, the operator table, and a Compiler
// into a single call, grounded in the teacher's
// cmd/sentra/commands/build.go Builder.Build flow (resolve options,
// run the pass, report and propagate failure).
package boxcompiler

import (
	"fmt"
	"io"
	"os"
	"strings"

	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxops"
	"boxc/internal/boxtype"
	"boxc/internal/boxvm"
)

// compile traverses ast into c's current procedure and returns
// is_sane (spec §6.1 "compile(ast) -> bool"). It is a package-level
// wrapper so callers that only need the entry-point surface don't have
// to know Compile is a method.
func compile(c *Compiler, ast boxast.Expr) bool {
	return c.Compile(ast)
}

// install registers a compiled sub-procedure with the VM and returns
// its call number (spec §6.1 "install(sub_procedure) -> call_number").
// Combination bodies install themselves eagerly at definition time
// (driver_decl.go); this wrapper exists for a caller holding a
// finalized procedure it compiled through some other path.
func install(vm boxvm.VM, proc boxvm.Procedure) (int, error) {
	return vm.InstallProcedure(proc)
}

// CompileOptions groups compile_file's settings into one object
// instead of a growing positional argument list (spec §A.3), the way
// the teacher's build.Builder and StmtCompiler group their
// construction-time options.
//
// IncludePaths is accepted for parity with spec §6.1's
// `compile_file(file, name, include_name, paths, logger)` signature,
// but this core has no text-level include directive to resolve
// against it yet (boxast's own doc comment: "the lexer/parser is out
// of this core's scope"); it is threaded through unused until a real
// front end needs it, rather than silently dropped.
type CompileOptions struct {
	Name         string
	IncludePaths []string
	Logger       boxdiag.Logger
	// VM and Sys let a caller (cmd/boxc's disassemble output, a test
	// that wants to inspect the installed procedure afterward) supply
	// its own collaborator instances instead of a throwaway pair
	// CompileFile allocates and discards internally.
	VM  boxvm.VM
	Sys boxtype.System
	// DisassembleTo, if non-nil, receives the main procedure's
	// disassembly (via VM.Disassemble) right before it is installed.
	DisassembleTo io.Writer
	// TrackLeaks runs a whole-compile Mark/LeaksSince check (spec §4.1,
	// §8 invariant 4) after compiling and reports any surviving
	// allocation as a warning; meant for debug builds and tests, not
	// production compiles of large programs where the Tracker's map
	// would otherwise just grow for nothing.
	TrackLeaks bool
}

// CompileFile implements spec §6.1's compile_file: the only
// orchestration helper the core exposes. It is handed an already
// parsed AST root rather than a raw source path — spec §6.2 lists AST,
// Type system, VM, and Logger as the consumed collaborator interfaces
// and never defines a Parser one, and boxast's own package doc states
// the lexer/parser is out of this core's scope — so "composing a
// parser" is the caller's job (see cmd/boxc) before CompileFile ever
// runs (documented Open Question decision, DESIGN.md).
//
// It wires a fresh DefaultSystem, a fresh DefaultVM, and the built-in
// operator table, drives the compile, and installs the main procedure
// only if is_sane holds — matching spec §5's "the outer driver
// inspects is_sane and refuses installation if false."
func CompileFile(ast boxast.Expr, opts CompileOptions) (callNumber int, success bool) {
	sys := opts.Sys
	if sys == nil {
		sys = boxtype.NewDefaultSystem()
	}
	vm := opts.VM
	if vm == nil {
		vm = boxvm.NewDefaultVM()
	}
	ops := boxops.NewTable()
	InstallBuiltinOperators(sys, ops)

	log := opts.Logger
	if log == nil {
		log = boxdiag.NewSink(os.Stderr)
	}

	c := New(sys, vm, log, ops)
	mark := c.Tracker.Mark()

	if !compile(c, ast) || !c.IsSane() || log.HasErrors() {
		return 0, false
	}

	if opts.TrackLeaks {
		if leaks := c.Tracker.LeaksSince(mark); len(leaks) > 0 {
			log.Warnf(ast.Position(), boxdiag.KindWarning, "compile %q leaked %d value(s): %s", opts.Name, len(leaks), strings.Join(leaks, ", "))
		}
	}

	proc, err := c.Proc().Finalize()
	if err != nil {
		log.Errorf(ast.Position(), boxdiag.KindInternal, "finalize main procedure %q: %v", opts.Name, err)
		return 0, false
	}
	if opts.DisassembleTo != nil {
		fmt.Fprint(opts.DisassembleTo, vm.Disassemble(proc))
	}
	cn, err := vm.InstallProcedure(proc)
	if err != nil {
		log.Errorf(ast.Position(), boxdiag.KindInternal, "install main procedure %q: %v", opts.Name, err)
		return 0, false
	}
	return cn, true
}
