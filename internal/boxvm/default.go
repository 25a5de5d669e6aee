package boxvm

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"boxc/internal/boxvalue"
)

// installedProc is what DefaultVM keeps per installed procedure, the
// way the teacher's bytecode.Chunk keeps Code/Constants/Debug
// together (internal/bytecode/chunk.go) rather than as three loose
// slices passed around by hand.
type installedProc struct {
	callNumber int
	name       string
	style      ProcStyle
	ins        []Instruction
	labels     map[string]int
}

// DefaultVM is a minimal in-process host sufficient to drive
// compile_file end to end: it allocates call numbers, appends
// constant bytes to a single global data area, and keeps installed
// procedures around for Disassemble. It performs no actual execution
// — running compiled code is the real VM runtime's job and is out of
// this core's scope (spec §1).
type DefaultVM struct {
	nextCall  int
	data      []byte
	procs     map[int]*installedProc
	natives   map[int]string
	types     []TypeDesc
}

func NewDefaultVM() *DefaultVM {
	return &DefaultVM{
		procs:   map[int]*installedProc{},
		natives: map[int]string{},
	}
}

func (vm *DefaultVM) AllocCallNumber() int {
	vm.nextCall++
	return vm.nextCall
}

func (vm *DefaultVM) InstallNative(name, symbol string) (int, error) {
	if name == "" {
		return 0, errors.New("native install requires a name")
	}
	cn := vm.AllocCallNumber()
	vm.natives[cn] = name + "@" + symbol
	return cn, nil
}

func (vm *DefaultVM) InstallProcedure(proc Procedure) (int, error) {
	for label, idx := range proc.Labels() {
		if idx < 0 || idx > len(proc.Instructions()) {
			return 0, errors.Errorf("label %q bound outside instruction stream (idx=%d)", label, idx)
		}
	}
	cn := vm.AllocCallNumber()
	vm.procs[cn] = &installedProc{
		callNumber: cn,
		name:       proc.Name(),
		style:      proc.Style(),
		ins:        proc.Instructions(),
		labels:     proc.Labels(),
	}
	return cn, nil
}

func (vm *DefaultVM) AddConstantBytes(data []byte) (int, error) {
	off := len(vm.data)
	vm.data = append(vm.data, data...)
	return off, nil
}

func (vm *DefaultVM) InstallType(desc TypeDesc) (int, error) {
	vm.types = append(vm.types, desc)
	return len(vm.types) - 1, nil
}

func (vm *DefaultVM) Disassemble(proc Procedure) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; proc %s (%s) [%s]\n", proc.Name(), proc.Style(), proc.DebugHandle())
	byIdx := map[int][]string{}
	for label, idx := range proc.Labels() {
		byIdx[idx] = append(byIdx[idx], label)
	}
	for i, ins := range proc.Instructions() {
		for _, label := range byIdx[i] {
			fmt.Fprintf(&sb, "%s:\n", label)
		}
		fmt.Fprintf(&sb, "  %04d  %s", i, ins.Op)
		for o := 0; o < ins.N; o++ {
			fmt.Fprintf(&sb, " %s", describeOperand(ins.Operands[o]))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func describeOperand(c boxvalue.Container) string {
	switch c.Category {
	case boxvalue.CatImmediate:
		return fmt.Sprintf("imm(%v)", c.Imm)
	case boxvalue.CatGlobalReg:
		return fmt.Sprintf("g%s%d", c.Storage, c.Reg)
	case boxvalue.CatPointerDeref:
		base := "r"
		if c.Deref.IsGlobal {
			base = "g"
		}
		return fmt.Sprintf("[%s%d+%d]", base, c.Deref.Reg, c.Deref.Offset)
	default:
		return fmt.Sprintf("r%s%d", c.Storage, c.Reg)
	}
}
