package boxlir

import (
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

// ReducePointer implements the one non-trivial peephole this core
// performs (spec §4.11, §1 Non-goals: "a few peephole choices").
// When a pointer-deref container needs to be consumed as a plain
// pointer operand — e.g. the address handed to a call, or the source
// of a REF — `[roN + 0]` costs nothing (the base register already is
// the pointer), while `[roN + k]`, k != 0, is materialized with a
// single ADD into a fresh register.
func (vc *VMCode) ReducePointer(c boxvalue.Container) boxvalue.Container {
	if c.Category != boxvalue.CatPointerDeref {
		return c
	}
	if c.Deref.Offset == 0 {
		return boxvalue.Reg(boxvalue.StorePtr, c.Deref.Reg, c.Deref.IsGlobal)
	}
	dst := vc.AllocTemp(boxvalue.StorePtr)
	base := boxvalue.Reg(boxvalue.StorePtr, c.Deref.Reg, c.Deref.IsGlobal)
	off := boxvalue.Imm(boxvalue.StoreInt, c.Deref.Offset)
	vc.Emit(boxvm.OpADD, dst, base, off)
	return dst
}
