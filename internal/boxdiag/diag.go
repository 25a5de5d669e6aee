// Package boxdiag is the logging/diagnostic collaborator the core
// compiler reports through (spec §6.2, §7). It never aborts a compile
// on its own; the driver decides what to do with is_sane.
package boxdiag

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
)

// Kind classifies a diagnostic the way spec §7's error taxonomy does.
type Kind string

const (
	KindSyntax   Kind = "syntax"   // forwarded parse-level failure
	KindName     Kind = "name"     // undefined variable/type, double Else, ...
	KindType     Kind = "type"     // overload/conversion/structure mismatches
	KindArity    Kind = "arity"    // prototype/subtype/operand arity problems
	KindInternal Kind = "internal" // unreachable-opcode / unknown-scheme
	KindWarning  Kind = "warning"  // non-fatal advisories (ignorable expr, etc.)
)

// Severity orders diagnostics for display and for is_sane computation.
type Severity int

const (
	SevWarning Severity = iota
	SevError
	SevFatal
)

// Pos is the source range the AST node carried in from the parser.
// The core never recomputes it, only forwards it (§ design notes).
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" && p.Line == 0 {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Pos      Pos
	Message  string
	// Cause, when present, is the wrapped collaborator error that
	// produced this diagnostic (pkg/errors-annotated).
	Cause error
}

func (d Diagnostic) Error() string {
	if d.Cause != nil {
		return fmt.Sprintf("%s: %s: %s: %v", d.Pos, d.Kind, d.Message, d.Cause)
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Kind, d.Message)
}

// Logger is the diagnostic sink collaborator (§6.2). Implementations
// must be safe to call repeatedly within one synchronous compile; the
// core is single-threaded (§5) so no internal locking is required.
type Logger interface {
	Report(d Diagnostic)
	Warnf(pos Pos, kind Kind, format string, args ...interface{})
	Errorf(pos Pos, kind Kind, format string, args ...interface{})
	// Fatalf reports an Internal diagnostic and panics, wrapped with a
	// stack trace, for conditions spec §7 calls "should never fire in
	// well-formed input" (unreachable opcode, unknown emission scheme).
	Fatalf(pos Pos, format string, args ...interface{})
	Diagnostics() []Diagnostic
	HasErrors() bool
}

type sink struct {
	w     io.Writer
	color bool
	diags []Diagnostic
}

// NewSink builds the reference Logger, colorizing output only when w
// is an interactive terminal (so piping compile_file's output to a
// file or a CI log never carries escape codes).
func NewSink(w io.Writer) Logger {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &sink{w: w, color: color}
}

func (s *sink) Report(d Diagnostic) {
	s.diags = append(s.diags, d)
	prefix := string(d.Kind)
	if s.color {
		code := "33"
		if d.Severity >= SevError {
			code = "31"
		}
		prefix = fmt.Sprintf("\x1b[%sm%s\x1b[0m", code, d.Kind)
	}
	fmt.Fprintf(s.w, "%s: %s: %s\n", d.Pos, prefix, d.Message)
	if d.Cause != nil {
		fmt.Fprintf(s.w, "  caused by: %v\n", d.Cause)
	}
}

func (s *sink) Warnf(pos Pos, kind Kind, format string, args ...interface{}) {
	s.Report(Diagnostic{Kind: kind, Severity: SevWarning, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (s *sink) Errorf(pos Pos, kind Kind, format string, args ...interface{}) {
	s.Report(Diagnostic{Kind: kind, Severity: SevError, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (s *sink) Fatalf(pos Pos, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.Report(Diagnostic{Kind: KindInternal, Severity: SevFatal, Pos: pos, Message: msg})
	panic(errors.Errorf("internal compiler error at %s: %s", pos, msg))
}

func (s *sink) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity > out[j].Severity })
	return out
}

func (s *sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity >= SevError {
			return true
		}
	}
	return false
}

// Wrap annotates err with a collaborator-boundary message, preserving
// the original cause for %+v stack-trace printing.
func Wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
