package boxcompiler

import (
	"testing"

	"boxc/internal/boxops"
	"boxc/internal/boxtype"
)

func TestInstallBuiltinOperatorsSeedsScalarArithmetic(t *testing.T) {
	sys := boxtype.NewDefaultSystem()
	ops := boxops.NewTable()
	InstallBuiltinOperators(sys, ops)

	intT, _ := sys.Lookup("Int")
	realT, _ := sys.Lookup("Real")

	if found, _, _, _ := boxops.ResolveBinary(sys, ops, boxops.BinAdd, intT, intT); found == nil {
		t.Fatal("want an Int+Int Add overload")
	}
	if found, _, _, _ := boxops.ResolveBinary(sys, ops, boxops.BinRem, realT, realT); found != nil {
		t.Fatal("Real has no remainder operator; installArith's opRem=OpNone must suppress it")
	}
}

func TestInstallBuiltinOperatorsSeedsPointScaling(t *testing.T) {
	sys := boxtype.NewDefaultSystem()
	ops := boxops.NewTable()
	InstallBuiltinOperators(sys, ops)

	pointT, _ := sys.Lookup("Point")
	realT, _ := sys.Lookup("Real")

	found, _, _, _ := boxops.ResolveBinary(sys, ops, boxops.BinMul, pointT, realT)
	if found == nil {
		t.Fatal("want a Point*Real scaling overload")
	}
	if found.Scheme != boxops.SchemeRLRBin {
		t.Fatalf("Point scaling must use r_lr_bin (fresh-result), got %v", found.Scheme)
	}
}

func TestInstallBuiltinOperatorsSeedsCompoundAssign(t *testing.T) {
	sys := boxtype.NewDefaultSystem()
	ops := boxops.NewTable()
	InstallBuiltinOperators(sys, ops)

	intT, _ := sys.Lookup("Int")
	found, _, _, _ := boxops.ResolveBinary(sys, ops, boxops.BinAddAssign, intT, intT)
	if found == nil || !found.Assignment {
		t.Fatal("want an Int += Int overload with Assignment set")
	}
}

func TestInstallBuiltinOperatorsSeedsPostfixIncDec(t *testing.T) {
	sys := boxtype.NewDefaultSystem()
	ops := boxops.NewTable()
	InstallBuiltinOperators(sys, ops)

	intT, _ := sys.Lookup("Int")
	pre, _, _ := boxops.ResolveUnary(sys, ops, boxops.UnPreInc, intT)
	post, _, _ := boxops.ResolveUnary(sys, ops, boxops.UnPostInc, intT)
	if pre == nil || post == nil {
		t.Fatal("want both prefix and postfix increment overloads")
	}
	if pre.Scheme != boxops.SchemeStdUn || !pre.Assignment {
		t.Fatalf("prefix ++ must be std_un/Assignment, got %+v", pre)
	}
	if post.Scheme != boxops.SchemeRightUn {
		t.Fatalf("postfix ++ must be right_un, got %+v", post)
	}
}

func TestInstallBuiltinOperatorsHasNoAssignmentEntry(t *testing.T) {
	sys := boxtype.NewDefaultSystem()
	ops := boxops.NewTable()
	InstallBuiltinOperators(sys, ops)

	intT, _ := sys.Lookup("Int")
	if found, _, _, _ := boxops.ResolveBinary(sys, ops, boxops.BinAssign, intT, intT); found != nil {
		t.Fatal("plain assignment is handled by VisitAssign directly, not the overload table")
	}
}
