package boxvm

import (
	"strings"
	"testing"

	"boxc/internal/boxvalue"
)

// fakeProc is a hand-built Procedure for tests that don't want to pull
// in boxlir.VMCode.
type fakeProc struct {
	name    string
	ins     []Instruction
	labels  map[string]int
	handle  string
}

func (p *fakeProc) Name() string            { return p.name }
func (p *fakeProc) Style() ProcStyle        { return StyleMain }
func (p *fakeProc) Instructions() []Instruction { return p.ins }
func (p *fakeProc) Labels() map[string]int  { return p.labels }
func (p *fakeProc) RegisterCounts() RegCounts { return RegCounts{} }
func (p *fakeProc) HasParent() bool         { return false }
func (p *fakeProc) HasChild() bool          { return false }
func (p *fakeProc) ParentRegister() int     { return 0 }
func (p *fakeProc) ChildRegister() int      { return 0 }
func (p *fakeProc) DebugHandle() string     { return p.handle }

func TestAllocCallNumberIsSequential(t *testing.T) {
	vm := NewDefaultVM()
	a := vm.AllocCallNumber()
	b := vm.AllocCallNumber()
	if b != a+1 {
		t.Fatalf("want sequential call numbers, got %d then %d", a, b)
	}
}

func TestInstallProcedureRejectsOutOfRangeLabel(t *testing.T) {
	vm := NewDefaultVM()
	proc := &fakeProc{
		name:   "bad",
		ins:    []Instruction{{Op: OpMOV, N: 1, Operands: [3]boxvalue.Container{boxvalue.Imm(boxvalue.StoreInt, 1)}}},
		labels: map[string]int{"L1": 99},
		handle: "h1",
	}
	if _, err := vm.InstallProcedure(proc); err == nil {
		t.Fatal("a label bound outside the instruction stream must be rejected")
	}
}

func TestInstallProcedureAcceptsValidLabel(t *testing.T) {
	vm := NewDefaultVM()
	proc := &fakeProc{
		name:   "ok",
		ins:    []Instruction{{Op: OpMOV}},
		labels: map[string]int{"L1": 1},
		handle: "h2",
	}
	cn, err := vm.InstallProcedure(proc)
	if err != nil {
		t.Fatalf("InstallProcedure: %v", err)
	}
	if cn == 0 {
		t.Fatal("want a non-zero call number from InstallProcedure")
	}
}

func TestAddConstantBytesAppendsAndReportsOffset(t *testing.T) {
	vm := NewDefaultVM()
	off1, _ := vm.AddConstantBytes([]byte("abc"))
	off2, _ := vm.AddConstantBytes([]byte("de"))
	if off1 != 0 {
		t.Fatalf("first block should start at offset 0, got %d", off1)
	}
	if off2 != 3 {
		t.Fatalf("second block should start right after the first, got %d", off2)
	}
}

func TestInstallTypeReturnsSequentialIDs(t *testing.T) {
	vm := NewDefaultVM()
	id1, _ := vm.InstallType(TypeDesc{Name: "Point", Size: 16, Align: 8})
	id2, _ := vm.InstallType(TypeDesc{Name: "String", Size: 8, Align: 8})
	if id1 != 0 || id2 != 1 {
		t.Fatalf("want sequential type ids starting at 0, got %d, %d", id1, id2)
	}
}

func TestDisassembleIncludesNameStyleAndHandle(t *testing.T) {
	vm := NewDefaultVM()
	proc := &fakeProc{
		name:   "main",
		ins:    []Instruction{{Op: OpADD, N: 2, Operands: [3]boxvalue.Container{boxvalue.Imm(boxvalue.StoreInt, 1), boxvalue.Imm(boxvalue.StoreInt, 2)}}},
		labels: map[string]int{"START": 0},
		handle: "deadbeef",
	}
	out := vm.Disassemble(proc)
	for _, want := range []string{"main", "deadbeef", "START:", "ADD"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
}

func TestInstallNativeRequiresAName(t *testing.T) {
	vm := NewDefaultVM()
	if _, err := vm.InstallNative("", "sym"); err == nil {
		t.Fatal("InstallNative with an empty name must fail")
	}
	cn, err := vm.InstallNative("Print", "box_print")
	if err != nil || cn == 0 {
		t.Fatalf("InstallNative with a name should succeed, got cn=%d err=%v", cn, err)
	}
}
