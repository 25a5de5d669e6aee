// Package boxlir is the Linear IR builder and the procedure-under-
// construction it is appended to (spec §3.6 VMCode, §3.7 LIR, §4.2
// operand fabrication, §4.11 register allocation and pointer
// reduction). It is grounded in the teacher's register-based
// instruction shape (internal/vmregister/bytecode.go) and its
// register allocator (internal/compregister/compiler.go), generalized
// from a fixed 32-bit iABC encoding to the spec's open three-operand
// Container form.
package boxlir

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

// Label is a forward-declarable jump target (spec §3.7). It must be
// bound exactly once, via BindLabel, before the procedure is
// finalized.
type Label struct {
	id    int
	name  string
	bound bool
	idx   int
}

func (l *Label) Name() string { return l.name }

type node struct {
	isLabel bool
	label   *Label

	op       boxvm.Op
	operands [3]boxvalue.Container
	n        int
	target   *Label // jump target, for OpJC_I / OpJMP_I
}

// VMCode is the procedure under construction (spec §3.6).
type VMCode struct {
	name  string
	style boxvm.ProcStyle

	nodes     []node
	nextLabel int

	regs registerFile

	hasParent, hasChild   bool
	parentReg, childReg   int

	callNumber  int
	installed   bool
	debugHandle string
}

// NewVMCode starts a fresh procedure. style selects prologue/epilogue
// policy and whether its register pools draw from the VM's global
// register file (main) or a per-call local one (sub/extern) — spec
// §4.11: "The main procedure uses global pools; sub-procedures use
// local ones."
func NewVMCode(name string, style boxvm.ProcStyle) *VMCode {
	return &VMCode{name: name, style: style, debugHandle: uuid.New().String()}
}

// DebugHandle is this procedure's uuid-derived diagnostic identity,
// minted at allocation so two not-yet-installed sub-procedures
// compiled in the same pass are distinguishable before either has a
// real call-number (spec §6.1 install, §3.6).
func (vc *VMCode) DebugHandle() string { return vc.debugHandle }

func (vc *VMCode) Name() string         { return vc.name }
func (vc *VMCode) Style() boxvm.ProcStyle { return vc.style }
func (vc *VMCode) HasParent() bool      { return vc.hasParent }
func (vc *VMCode) HasChild() bool       { return vc.hasChild }
func (vc *VMCode) ParentRegister() int  { return vc.parentReg }
func (vc *VMCode) ChildRegister() int   { return vc.childReg }

// SetParent / SetChild install the well-known `$$`/`$` registers
// (spec §4.2 parent(T)/child(T) fabrication, §6.4 ABI).
func (vc *VMCode) SetParent(reg int) { vc.hasParent = true; vc.parentReg = reg }
func (vc *VMCode) SetChild(reg int)  { vc.hasChild = true; vc.childReg = reg }

func (vc *VMCode) usesGlobalRegs() bool { return vc.style == boxvm.StyleMain }

// AllocVar allocates a fresh variable-class register for storage s
// (spec §4.2 var(T)). Variables are never individually released; they
// live for the whole procedure.
func (vc *VMCode) AllocVar(s boxvalue.StorageType) boxvalue.Container {
	if s == boxvalue.StoreVoid {
		return boxvalue.Container{}
	}
	reg := vc.regs.allocVar(s)
	return boxvalue.Reg(s, reg, vc.usesGlobalRegs())
}

// AllocTemp allocates a fresh temporary-class register for storage s
// (spec §4.2 temp(T)).
func (vc *VMCode) AllocTemp(s boxvalue.StorageType) boxvalue.Container {
	if s == boxvalue.StoreVoid {
		return boxvalue.Container{}
	}
	reg := vc.regs.allocTemp(s)
	return boxvalue.Reg(s, reg, vc.usesGlobalRegs())
}

// Release implements boxvalue.RegisterReleaser: a Value with
// OwnRegister set calls back here exactly once, from Finish.
func (vc *VMCode) Release(storage boxvalue.StorageType, global bool, reg int) {
	if storage == boxvalue.StoreVoid {
		return
	}
	vc.regs.release(storage, reg)
}

// RegisterCounts reports the high-water mark per storage class, for
// the VM to size the procedure's stack frame when backpatching its
// prologue (spec §3.6).
func (vc *VMCode) RegisterCounts() boxvm.RegCounts {
	var rc boxvm.RegCounts
	for i := range vc.regs {
		rc.Variable[i] = vc.regs[i].maxVar
		rc.Temp[i] = vc.regs[i].maxTemp
	}
	return rc
}

// NewLabel creates an unbound label (spec §4.6: "a fresh label is
// created on demand").
func (vc *VMCode) NewLabel() *Label {
	vc.nextLabel++
	return &Label{id: vc.nextLabel, name: labelName(vc.nextLabel)}
}

func labelName(id int) string {
	return "L" + strconv.Itoa(id)
}

// BindLabel patches l to the current emission point (spec §4.6's
// move_label_back). It is an error to bind the same label twice.
func (vc *VMCode) BindLabel(l *Label) error {
	if l.bound {
		return errors.Errorf("label %s bound twice", l.name)
	}
	l.bound = true
	vc.nodes = append(vc.nodes, node{isLabel: true, label: l})
	return nil
}

// Emit appends a plain (non-branch) LIR operation (spec §3.7, §4.2
// "opcode-level appenders that take a generic opcode and 1-3 container
// operands").
func (vc *VMCode) Emit(op boxvm.Op, operands ...boxvalue.Container) {
	var n node
	n.op = op
	n.n = len(operands)
	copy(n.operands[:], operands)
	vc.nodes = append(vc.nodes, n)
}

// EmitJump appends OpJMP_I (cond == nil) or OpJC_I (cond != nil)
// targeting label, which may still be unbound at this point.
func (vc *VMCode) EmitJump(op boxvm.Op, cond *boxvalue.Container, target *Label) {
	var n node
	n.op = op
	n.target = target
	if cond != nil {
		n.operands[0] = *cond
		n.n = 1
	}
	vc.nodes = append(vc.nodes, n)
}

type finalizedProc struct {
	name   string
	style  boxvm.ProcStyle
	ins    []boxvm.Instruction
	labels map[string]int
	hasParent, hasChild bool
	parentReg, childReg int
	regs boxvm.RegCounts
	debugHandle string
}

func (p *finalizedProc) Name() string                    { return p.name }
func (p *finalizedProc) Style() boxvm.ProcStyle           { return p.style }
func (p *finalizedProc) Instructions() []boxvm.Instruction { return p.ins }
func (p *finalizedProc) Labels() map[string]int           { return p.labels }
func (p *finalizedProc) RegisterCounts() boxvm.RegCounts  { return p.regs }
func (p *finalizedProc) HasParent() bool                  { return p.hasParent }
func (p *finalizedProc) HasChild() bool                   { return p.hasChild }
func (p *finalizedProc) ParentRegister() int              { return p.parentReg }
func (p *finalizedProc) ChildRegister() int               { return p.childReg }
func (p *finalizedProc) DebugHandle() string              { return p.debugHandle }

// Finalize lowers the accumulated LIR nodes into a boxvm.Procedure:
// label-bind markers are stripped out and every branch's target is
// resolved to a concrete instruction index, carried as a trailing
// immediate Int operand (spec §3.7: "Labels must each be bound
// exactly once before the procedure is installed").
func (vc *VMCode) Finalize() (boxvm.Procedure, error) {
	idx := 0
	for _, n := range vc.nodes {
		if !n.isLabel {
			idx++
			continue
		}
		n.label.idx = idx
	}

	labels := map[string]int{}
	ins := make([]boxvm.Instruction, 0, idx)
	for _, n := range vc.nodes {
		if n.isLabel {
			labels[n.label.name] = n.label.idx
			continue
		}
		inst := boxvm.Instruction{Op: n.op, N: n.n}
		copy(inst.Operands[:], n.operands[:])
		if n.target != nil {
			if !n.target.bound {
				return nil, errors.Errorf("label %s referenced but never bound", n.target.name)
			}
			inst.Operands[inst.N] = boxvalue.Imm(boxvalue.StoreInt, n.target.idx)
			inst.N++
		}
		ins = append(ins, inst)
	}

	return &finalizedProc{
		name: vc.name, style: vc.style, ins: ins, labels: labels,
		hasParent: vc.hasParent, hasChild: vc.hasChild,
		parentReg: vc.parentReg, childReg: vc.childReg,
		regs: vc.RegisterCounts(),
		debugHandle: vc.debugHandle,
	}, nil
}

// Install finalizes the procedure and registers it with vm, recording
// the call number on vc (spec §6.1 install, §3.6 "install state").
func (vc *VMCode) Install(vm boxvm.VM) (int, error) {
	if vc.installed {
		return vc.callNumber, nil
	}
	proc, err := vc.Finalize()
	if err != nil {
		return 0, err
	}
	cn, err := vm.InstallProcedure(proc)
	if err != nil {
		return 0, err
	}
	vc.callNumber = cn
	vc.installed = true
	return cn, nil
}

func (vc *VMCode) CallNumber() int { return vc.callNumber }
func (vc *VMCode) Installed() bool { return vc.installed }

// OutstandingTemps sums, across every storage class, the temporaries
// this procedure has allocated but not released — the direct check
// for spec §8 invariant 3's register-balance property. A well-behaved
// compile drives this back to 0 by the time the procedure is
// finalized.
func (vc *VMCode) OutstandingTemps() int {
	n := 0
	for i := range vc.regs {
		n += vc.regs[i].outstanding()
	}
	return n
}
