package boxlir

import (
	"testing"

	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

func TestAllocTempReusesReleasedRegisters(t *testing.T) {
	vc := NewVMCode("p", boxvm.StyleSub)
	a := vc.AllocTemp(boxvalue.StoreInt)
	vc.Release(a.Storage, a.Category == boxvalue.CatGlobalReg, a.Reg)
	b := vc.AllocTemp(boxvalue.StoreInt)

	if a.Reg != b.Reg {
		t.Fatalf("want a released temp register to be reused, got %d then %d", a.Reg, b.Reg)
	}
	if vc.OutstandingTemps() != 1 {
		t.Fatalf("want 1 outstanding temp after alloc-release-alloc, got %d", vc.OutstandingTemps())
	}
}

func TestAllocVarNeverReleases(t *testing.T) {
	vc := NewVMCode("p", boxvm.StyleMain)
	first := vc.AllocVar(boxvalue.StoreInt)
	second := vc.AllocVar(boxvalue.StoreInt)
	if first.Reg == second.Reg {
		t.Fatal("each AllocVar call must hand out a distinct register")
	}
	// Releasing a negative (variable-class) register must be a no-op;
	// variables live for the whole procedure (spec §4.11).
	vc.Release(boxvalue.StoreInt, true, first.Reg)
	if vc.OutstandingTemps() != 0 {
		t.Fatal("releasing a variable register must not disturb the temp ledger")
	}
}

func TestRegisterBalanceAfterMatchedAllocRelease(t *testing.T) {
	vc := NewVMCode("p", boxvm.StyleMain)
	temps := make([]boxvalue.Container, 4)
	for i := range temps {
		temps[i] = vc.AllocTemp(boxvalue.StoreInt)
	}
	for _, c := range temps {
		vc.Release(c.Storage, c.Category == boxvalue.CatGlobalReg, c.Reg)
	}
	if n := vc.OutstandingTemps(); n != 0 {
		t.Fatalf("want register balance (0 outstanding) once every temp is released, got %d", n)
	}
}

func TestBindLabelTwiceIsAnError(t *testing.T) {
	vc := NewVMCode("p", boxvm.StyleSub)
	l := vc.NewLabel()
	if err := vc.BindLabel(l); err != nil {
		t.Fatalf("first bind should succeed: %v", err)
	}
	if err := vc.BindLabel(l); err == nil {
		t.Fatal("binding the same label twice must be an error")
	}
}

func TestFinalizeResolvesJumpTargets(t *testing.T) {
	vc := NewVMCode("p", boxvm.StyleMain)
	end := vc.NewLabel()
	vc.Emit(boxvm.OpMOV, boxvalue.Imm(boxvalue.StoreInt, 1))
	vc.EmitJump(boxvm.OpJMP_I, nil, end)
	vc.Emit(boxvm.OpMOV, boxvalue.Imm(boxvalue.StoreInt, 2)) // skipped at runtime, still lowered
	if err := vc.BindLabel(end); err != nil {
		t.Fatalf("bind: %v", err)
	}

	proc, err := vc.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	ins := proc.Instructions()
	if len(ins) != 3 {
		t.Fatalf("want 3 lowered instructions, got %d", len(ins))
	}
	jump := ins[1]
	if jump.Op != boxvm.OpJMP_I {
		t.Fatalf("want instruction 1 to be the jump, got %s", jump.Op)
	}
	target := jump.Operands[jump.N-1].Imm.(int)
	if target != proc.Labels()["L1"] {
		t.Fatalf("jump target %d does not match the bound label index %d", target, proc.Labels()["L1"])
	}
	if target != len(ins) {
		t.Fatalf("end label should resolve to the end-of-stream index %d, got %d", len(ins), target)
	}
}

func TestFinalizeRejectsUnboundTarget(t *testing.T) {
	vc := NewVMCode("p", boxvm.StyleMain)
	unbound := vc.NewLabel()
	vc.EmitJump(boxvm.OpJMP_I, nil, unbound)
	if _, err := vc.Finalize(); err == nil {
		t.Fatal("finalizing with a referenced-but-never-bound label must fail")
	}
}

func TestDebugHandlesAreUnique(t *testing.T) {
	a := NewVMCode("a", boxvm.StyleSub)
	b := NewVMCode("b", boxvm.StyleSub)
	if a.DebugHandle() == "" || b.DebugHandle() == "" {
		t.Fatal("DebugHandle must be non-empty once minted")
	}
	if a.DebugHandle() == b.DebugHandle() {
		t.Fatal("two independently allocated procedures must not share a debug handle")
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	vc := NewVMCode("p", boxvm.StyleMain)
	vc.Emit(boxvm.OpMOV, boxvalue.Imm(boxvalue.StoreInt, 1))
	vm := boxvm.NewDefaultVM()

	cn1, err := vc.Install(vm)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	cn2, err := vc.Install(vm)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if cn1 != cn2 {
		t.Fatalf("calling Install twice on an already-installed procedure must return the same call number, got %d then %d", cn1, cn2)
	}
}
