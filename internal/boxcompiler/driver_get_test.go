package boxcompiler

import (
	"testing"

	"boxc/internal/boxast"
	"boxc/internal/boxtype"
)

// TestVisitGetStructureMember covers spec §4.9's member access against
// an anonymous structure value: `p.y` on a named Real member must
// compile sanely and leave the harness invariants intact.
func TestVisitGetStructureMember(t *testing.T) {
	h := newHarness(t)
	intT, _ := h.Sys.Lookup("Int")
	realT, _ := h.Sys.Lookup("Real")
	structT, err := h.Sys.NewStructure("", []boxtype.Member{
		{Name: "x", Type: intT},
		{Name: "y", Type: realT},
	})
	if err != nil {
		t.Fatalf("NewStructure: %v", err)
	}

	base := h.C.fabricateVar(structT)
	base.LinkToNamespace(h.C.NS, "p")

	ast := &boxast.Get{Parent: ident("p"), Name: "y"}
	if !h.compile(ast) {
		t.Fatalf("compile reported unsane: %s", h.diagnostics())
	}
}

// TestVisitGetUnknownMemberErrors covers the failing path: an undefined
// member name on a structure must be a diagnosed error, not a panic.
func TestVisitGetUnknownMemberErrors(t *testing.T) {
	h := newHarness(t)
	intT, _ := h.Sys.Lookup("Int")
	structT, err := h.Sys.NewStructure("", []boxtype.Member{{Name: "x", Type: intT}})
	if err != nil {
		t.Fatalf("NewStructure: %v", err)
	}

	base := h.C.fabricateVar(structT)
	base.LinkToNamespace(h.C.NS, "p")

	ast := &boxast.Get{Parent: ident("p"), Name: "z"}
	if h.C.Compile(ast) {
		t.Fatal("want compile to report unsane for an undefined member")
	}
	if !h.Log.HasErrors() {
		t.Fatal("want a diagnosed error for the undefined member")
	}
}

// TestVisitGetPointComponents covers the Point intrinsic's x/y member
// access, which lowers to PPTRX/PPTRY rather than a structure-offset
// load (spec §4.9's special-cased intrinsic member access).
func TestVisitGetPointComponents(t *testing.T) {
	h := newHarness(t)
	pointT, _ := h.Sys.Lookup("Point")

	base := h.C.fabricateVar(pointT)
	base.LinkToNamespace(h.C.NS, "p")

	ast := box(
		plain(&boxast.Get{Parent: ident("p"), Name: "x"}),
		plain(&boxast.Get{Parent: ident("p"), Name: "y"}),
	)
	if !h.compile(ast) {
		t.Fatalf("compile reported unsane: %s", h.diagnostics())
	}
}

// TestVisitSubtypeBuildAndExtract covers spec §4.9's subtype build
// (`parent.name[child]`) followed by extracting both the `.child` and
// `.parent` members back out of the constructed subtype value.
func TestVisitSubtypeBuildAndExtract(t *testing.T) {
	h := newHarness(t)
	intT, _ := h.Sys.Lookup("Int")
	realT, _ := h.Sys.Lookup("Real")

	parentVar := h.C.fabricateVar(intT)
	parentVar.LinkToNamespace(h.C.NS, "p")
	childVar := h.C.fabricateVar(realT)
	childVar.LinkToNamespace(h.C.NS, "c")

	build := &boxast.SubtypeExpr{Parent: ident("p"), Name: "sub", Child: ident("Real")}

	ast := box(
		plain(&boxast.Assign{Left: ident("s"), Right: build}),
		plain(&boxast.Get{Parent: ident("s"), Name: "child"}),
		plain(&boxast.Get{Parent: ident("s"), Name: "parent"}),
	)
	if !h.compile(ast) {
		t.Fatalf("compile reported unsane: %s", h.diagnostics())
	}
}
