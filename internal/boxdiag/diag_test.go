package boxdiag

import (
	"bytes"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestErrorfSetsHasErrors(t *testing.T) {
	var buf bytes.Buffer
	log := NewSink(&buf)
	if log.HasErrors() {
		t.Fatal("a fresh sink must report no errors")
	}
	log.Warnf(Pos{}, KindWarning, "heads up")
	if log.HasErrors() {
		t.Fatal("a warning alone must not count as an error")
	}
	log.Errorf(Pos{}, KindType, "bad type")
	if !log.HasErrors() {
		t.Fatal("Errorf must flip HasErrors")
	}
}

func TestDiagnosticsOrderedBySeverity(t *testing.T) {
	log := NewSink(&bytes.Buffer{})
	log.Warnf(Pos{}, KindWarning, "w")
	log.Errorf(Pos{}, KindType, "e")

	diags := log.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("want 2 recorded diagnostics, got %d", len(diags))
	}
	if diags[0].Severity != SevError || diags[1].Severity != SevWarning {
		t.Fatalf("want errors before warnings, got %+v", diags)
	}
}

func TestFatalfPanicsAndStillRecords(t *testing.T) {
	log := NewSink(&bytes.Buffer{})
	defer func() {
		if recover() == nil {
			t.Fatal("Fatalf must panic")
		}
		if !log.HasErrors() {
			t.Fatal("Fatalf must still record a diagnostic before panicking")
		}
	}()
	log.Fatalf(Pos{File: "f", Line: 1, Col: 1}, "unreachable: %s", "opcode")
}

func TestWrapPreservesNilAndCause(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Fatal("Wrap(nil, ...) must return nil")
	}
	cause := pkgerrors.New("boom")
	wrapped := Wrap(cause, "install combination %s", "Print")
	if wrapped == nil || !strings.Contains(wrapped.Error(), "boom") {
		t.Fatalf("wrapped error must retain the cause, got %v", wrapped)
	}
	if !strings.Contains(wrapped.Error(), "install combination Print") {
		t.Fatalf("wrapped error must carry the annotation, got %v", wrapped)
	}
}

func TestPosStringFormatsUnknown(t *testing.T) {
	if got := (Pos{}).String(); got != "<unknown>" {
		t.Fatalf("a zero Pos must print as <unknown>, got %q", got)
	}
	got := (Pos{File: "a.box", Line: 3, Col: 4}).String()
	if got != "a.box:3:4" {
		t.Fatalf("want a.box:3:4, got %q", got)
	}
}
