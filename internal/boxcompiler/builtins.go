// builtins.go seeds the default operator/operation table (spec §4.4,
// §6.3): every native overload the std_bin/rl_r_bin/std_un/right_un
// schemes expect to find for the scalar intrinsics. Grounded on the
// teacher's fixed opcode switch in internal/compiler/compiler.go's
// VisitBinaryExpr/VisitUnaryExpr, generalized into overload-chain
// entries instead of a string switch.
package boxcompiler

import (
	"boxc/internal/boxops"
	"boxc/internal/boxtype"
	"boxc/internal/boxvm"
)

// InstallBuiltinOperators seeds t with the arithmetic, comparison,
// logical, bitwise, and compound-assignment overloads Int/Real/Char
// carry by default, plus the Point intrinsic's scaling operators. Call
// once per Compiler against a fresh Table before compiling anything;
// every spec §8 scenario that touches an operator depends on this
// having run first.
func InstallBuiltinOperators(sys boxtype.System, t *boxops.Table) {
	intT, _ := sys.Lookup("Int")
	realT, _ := sys.Lookup("Real")
	charT, _ := sys.Lookup("Char")
	pointT, _ := sys.Lookup("Point")
	voidT := sys.Void()

	installArith(t, intT, boxvm.OpADD, boxvm.OpSUB, boxvm.OpMUL, boxvm.OpDIV, boxvm.OpREM)
	installArith(t, realT, boxvm.OpADD, boxvm.OpSUB, boxvm.OpMUL, boxvm.OpDIV, boxvm.OpNone)
	installBitwise(t, intT)
	installCompare(t, intT, intT)
	installCompare(t, realT, intT)
	installCompare(t, charT, intT)
	installLogical(t, intT)
	installCompoundAssign(t, intT)
	installCompoundAssign(t, realT)
	installUnaryArith(t, intT)
	installUnaryArith(t, realT)
	installIncDec(t, intT)

	// Point scales by a Real factor and back (spec glossary: Point is a
	// two-field x/y intrinsic); PMULR/PDIVR are its dedicated opcodes
	// rather than reusing the scalar ADD/SUB/MUL family.
	t.AddBinary(boxops.BinMul, &boxops.Operation{
		Left: pointT, Right: realT, Result: pointT,
		Native: true, Binary: true, Opcode: int(boxvm.OpPMULR), Scheme: boxops.SchemeRLRBin,
	})
	t.AddBinary(boxops.BinDiv, &boxops.Operation{
		Left: pointT, Right: realT, Result: pointT,
		Native: true, Binary: true, Opcode: int(boxvm.OpPDIVR), Scheme: boxops.SchemeRLRBin,
	})

	// Logical not and bitwise not are unary; pow is a binary RLR op
	// (result is a fresh temp, not an in-place accumulate).
	t.AddUnary(boxops.UnNot, &boxops.Operation{
		Left: intT, Result: intT, Native: true, Opcode: int(boxvm.OpLNOT), Scheme: boxops.SchemeStdUn,
	})
	t.AddUnary(boxops.UnBNot, &boxops.Operation{
		Left: intT, Result: intT, Native: true, Opcode: int(boxvm.OpBNOT), Scheme: boxops.SchemeStdUn,
	})
	t.AddBinary(boxops.BinPow, &boxops.Operation{
		Left: intT, Right: intT, Result: intT, Commutative: false,
		Native: true, Binary: true, Opcode: int(boxvm.OpPOW), Scheme: boxops.SchemeRLRBin,
	})
	t.AddBinary(boxops.BinPow, &boxops.Operation{
		Left: realT, Right: realT, Result: realT, Commutative: false,
		Native: true, Binary: true, Opcode: int(boxvm.OpPOW), Scheme: boxops.SchemeRLRBin,
	})

	// Assignment proper (BinAssign) is handled by the driver's own
	// VisitAssign path, not through the overload table (spec §4.4's
	// assignment special case) — no entry is seeded for it here.
	_ = voidT
}

// installArith seeds the four-or-five standard commutative/
// non-commutative arithmetic overloads for a scalar type T op T -> T.
// A rem of boxvm.OpNone means "no remainder operator for this type",
// used for Real which has no separate REM.
func installArith(t *boxops.Table, T boxtype.Type, add, sub, mul, div, rem boxvm.Op) {
	t.AddBinary(boxops.BinAdd, &boxops.Operation{
		Left: T, Right: T, Result: T, Commutative: true,
		Native: true, Binary: true, Opcode: int(add), Scheme: boxops.SchemeStdBin,
	})
	t.AddBinary(boxops.BinSub, &boxops.Operation{
		Left: T, Right: T, Result: T,
		Native: true, Binary: true, Opcode: int(sub), Scheme: boxops.SchemeStdBin,
	})
	t.AddBinary(boxops.BinMul, &boxops.Operation{
		Left: T, Right: T, Result: T, Commutative: true,
		Native: true, Binary: true, Opcode: int(mul), Scheme: boxops.SchemeStdBin,
	})
	t.AddBinary(boxops.BinDiv, &boxops.Operation{
		Left: T, Right: T, Result: T,
		Native: true, Binary: true, Opcode: int(div), Scheme: boxops.SchemeStdBin,
	})
	if rem != boxvm.OpNone {
		t.AddBinary(boxops.BinRem, &boxops.Operation{
			Left: T, Right: T, Result: T,
			Native: true, Binary: true, Opcode: int(rem), Scheme: boxops.SchemeStdBin,
		})
	}
}

func installBitwise(t *boxops.Table, T boxtype.Type) {
	t.AddBinary(boxops.BinBAnd, &boxops.Operation{
		Left: T, Right: T, Result: T, Commutative: true,
		Native: true, Binary: true, Opcode: int(boxvm.OpBAND), Scheme: boxops.SchemeStdBin,
	})
	t.AddBinary(boxops.BinBXor, &boxops.Operation{
		Left: T, Right: T, Result: T, Commutative: true,
		Native: true, Binary: true, Opcode: int(boxvm.OpBXOR), Scheme: boxops.SchemeStdBin,
	})
	t.AddBinary(boxops.BinBOr, &boxops.Operation{
		Left: T, Right: T, Result: T, Commutative: true,
		Native: true, Binary: true, Opcode: int(boxvm.OpBOR), Scheme: boxops.SchemeStdBin,
	})
	t.AddBinary(boxops.BinShl, &boxops.Operation{
		Left: T, Right: T, Result: T,
		Native: true, Binary: true, Opcode: int(boxvm.OpSHL), Scheme: boxops.SchemeStdBin,
	})
	t.AddBinary(boxops.BinShr, &boxops.Operation{
		Left: T, Right: T, Result: T,
		Native: true, Binary: true, Opcode: int(boxvm.OpSHR), Scheme: boxops.SchemeStdBin,
	})
}

// installCompare seeds the six relational operators over T, each
// producing resultT, which the caller passes as Int (the language's
// boolean representation, per the
// teacher's own truthy-Int convention carried over from its bytecode
// VM). Comparisons use r_lr_bin: they always allocate a fresh result
// rather than mutating either operand in place.
func installCompare(t *boxops.Table, T, resultT boxtype.Type) {
	add := func(op boxops.BinaryOp, vop boxvm.Op, commutative bool) {
		t.AddBinary(op, &boxops.Operation{
			Left: T, Right: T, Result: resultT, Commutative: commutative,
			Native: true, Binary: true, Opcode: int(vop), Scheme: boxops.SchemeRLRBin,
		})
	}
	add(boxops.BinEq, boxvm.OpEQ, true)
	add(boxops.BinNe, boxvm.OpNE, true)
	add(boxops.BinLt, boxvm.OpLT, false)
	add(boxops.BinLe, boxvm.OpLE, false)
	add(boxops.BinGt, boxvm.OpGT, false)
	add(boxops.BinGe, boxvm.OpGE, false)
}

func installLogical(t *boxops.Table, T boxtype.Type) {
	t.AddBinary(boxops.BinLAnd, &boxops.Operation{
		Left: T, Right: T, Result: T, Commutative: true,
		Native: true, Binary: true, Opcode: int(boxvm.OpLAND), Scheme: boxops.SchemeStdBin,
	})
	t.AddBinary(boxops.BinLOr, &boxops.Operation{
		Left: T, Right: T, Result: T, Commutative: true,
		Native: true, Binary: true, Opcode: int(boxvm.OpLOR), Scheme: boxops.SchemeStdBin,
	})
}

// installCompoundAssign seeds the `+=`/`-=`/`*=`/`/=` overloads: same
// opcode as the plain arithmetic form but Assignment=true routes
// std_bin's emission through the in-place mutate-left path instead of
// allocating a fresh temp (spec §4.4 step 4's std_bin assignment
// branch).
func installCompoundAssign(t *boxops.Table, T boxtype.Type) {
	add := func(op boxops.BinaryOp, vop boxvm.Op) {
		t.AddBinary(op, &boxops.Operation{
			Left: T, Right: T, Result: T, Assignment: true,
			Native: true, Binary: true, Opcode: int(vop), Scheme: boxops.SchemeStdBin,
		})
	}
	add(boxops.BinAddAssign, boxvm.OpADD)
	add(boxops.BinSubAssign, boxvm.OpSUB)
	add(boxops.BinMulAssign, boxvm.OpMUL)
	add(boxops.BinDivAssign, boxvm.OpDIV)
}

// installUnaryArith seeds unary negation: std_un, a fresh temp.
func installUnaryArith(t *boxops.Table, T boxtype.Type) {
	t.AddUnary(boxops.UnNeg, &boxops.Operation{
		Left: T, Result: T, Native: true, Opcode: int(boxvm.OpNEG), Scheme: boxops.SchemeStdUn,
	})
}

// installIncDec seeds prefix (std_un, Assignment=true, mutate in
// place) and postfix (right_un, snapshot-then-mutate) increment and
// decrement.
func installIncDec(t *boxops.Table, T boxtype.Type) {
	t.AddUnary(boxops.UnPreInc, &boxops.Operation{
		Left: T, Result: T, Assignment: true,
		Native: true, Opcode: int(boxvm.OpINC), Scheme: boxops.SchemeStdUn,
	})
	t.AddUnary(boxops.UnPreDec, &boxops.Operation{
		Left: T, Result: T, Assignment: true,
		Native: true, Opcode: int(boxvm.OpDEC), Scheme: boxops.SchemeStdUn,
	})
	t.AddUnary(boxops.UnPostInc, &boxops.Operation{
		Left: T, Result: T,
		Native: true, Opcode: int(boxvm.OpINC), Scheme: boxops.SchemeRightUn,
	})
	t.AddUnary(boxops.UnPostDec, &boxops.Operation{
		Left: T, Result: T,
		Native: true, Opcode: int(boxvm.OpDEC), Scheme: boxops.SchemeRightUn,
	})
}
