// emit.go ties the pure overload resolution in boxops to actual LIR
// emission: the six schemes of spec §4.4, combination calling (spec
// §4.5), and implicit conversion/boxing (spec §4.10).
package boxcompiler

import (
	"github.com/pkg/errors"

	"boxc/internal/boxdiag"
	"boxc/internal/boxops"
	"boxc/internal/boxtype"
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

// errNoCombination is spec §4.5's BOXTASK_FAILURE: no @-combination
// matched and the parent isn't Any, so the caller must decide what a
// failed call means (ordinary error, or Box control dispatch).
var errNoCombination = errors.New("no matching combination")

// globalABI reports whether the current procedure's well-known
// parent/child pass registers live in the VM's global register file
// (spec §4.11: main uses global pools, sub/extern use local ones).
func (c *Compiler) globalABI() bool { return c.proc.Style() == boxvm.StyleMain }

// emitUnary resolves and emits a unary operator application (spec
// §4.4). On failure it reports a type diagnostic and returns an
// error-kind Value; v is always consumed.
func (c *Compiler) emitUnary(pos boxdiag.Pos, op boxops.UnaryOp, v *boxvalue.Value) *boxvalue.Value {
	if v.IsErrorKind() {
		v.Destroy()
		return boxvalue.NewError()
	}
	found, _, _ := boxops.ResolveUnary(c.Sys, c.Ops, op, v.Type)
	if found == nil {
		c.errorf(pos, boxdiag.KindType, "no unary overload for operator on %s", c.Sys.String(v.Type))
		v.Destroy()
		return boxvalue.NewError()
	}
	result := c.applyUnaryScheme(pos, found, v)
	if found.IgnoreResult {
		result.Ignore = true
	}
	return result
}

func (c *Compiler) applyUnaryScheme(pos boxdiag.Pos, op *boxops.Operation, v *boxvalue.Value) *boxvalue.Value {
	if !op.Native {
		return c.emitUserUnaryCall(op, v)
	}
	switch op.Scheme {
	case boxops.SchemeRightUn:
		if v.Kind != boxvalue.KindTarget {
			c.errorf(pos, boxdiag.KindType, "postfix operator requires an assignable operand")
			v.Destroy()
			return boxvalue.NewError()
		}
		old := c.fabricateTemp(v.Type)
		c.proc.Emit(boxvm.OpMOV, old.Cont, v.Cont)
		c.proc.Emit(boxvm.Op(op.Opcode), v.Cont)
		v.Destroy()
		return old
	case boxops.SchemeStdUn:
		if op.Assignment {
			if v.Kind != boxvalue.KindTarget {
				c.errorf(pos, boxdiag.KindType, "prefix operator requires an assignable operand")
				v.Destroy()
				return boxvalue.NewError()
			}
			c.proc.Emit(boxvm.Op(op.Opcode), v.Cont)
			return v
		}
		dst := c.fabricateTemp(op.Result)
		c.proc.Emit(boxvm.OpMOV, dst.Cont, v.Cont)
		c.proc.Emit(boxvm.Op(op.Opcode), dst.Cont)
		v.Destroy()
		return dst
	default:
		c.Log.Fatalf(pos, "unary operation uses a non-unary emission scheme")
		return boxvalue.NewError()
	}
}

func (c *Compiler) emitUserUnaryCall(op *boxops.Operation, v *boxvalue.Value) *boxvalue.Value {
	dst := c.fabricateTemp(op.Result)
	cStorage := storageOf(v.Type)
	c.proc.Emit(boxvm.OpMOV, boxvalue.Reg(cStorage, c.proc.ChildRegister(), c.globalABI()), c.proc.ReducePointer(v.Cont))
	c.proc.Emit(boxvm.OpCALL_I, boxvalue.Imm(boxvalue.StoreInt, op.CallNumber))
	if dst.Cont.Storage != boxvalue.StoreVoid {
		c.proc.Emit(boxvm.OpMOV, dst.Cont, boxvalue.Reg(dst.Cont.Storage, c.proc.ParentRegister(), c.globalABI()))
	}
	v.Destroy()
	return dst
}

// emitBinary resolves and emits a binary operator application (spec
// §4.4). l and r are always consumed.
func (c *Compiler) emitBinary(pos boxdiag.Pos, op boxops.BinaryOp, l, r *boxvalue.Value) *boxvalue.Value {
	if l.IsErrorKind() || r.IsErrorKind() {
		l.Destroy()
		r.Destroy()
		return boxvalue.NewError()
	}
	found, _, _, _ := boxops.ResolveBinary(c.Sys, c.Ops, op, l.Type, r.Type)
	if found == nil {
		c.errorf(pos, boxdiag.KindType, "no binary overload for operator on (%s, %s)", c.Sys.String(l.Type), c.Sys.String(r.Type))
		l.Destroy()
		r.Destroy()
		return boxvalue.NewError()
	}
	result := c.applyBinaryScheme(pos, found, l, r)
	if found.IgnoreResult {
		result.Ignore = true
	}
	return result
}

func (c *Compiler) applyBinaryScheme(pos boxdiag.Pos, op *boxops.Operation, l, r *boxvalue.Value) *boxvalue.Value {
	if !op.Native {
		return c.emitUserBinaryCall(op, l, r)
	}
	switch op.Scheme {
	case boxops.SchemeStdBin:
		if op.Assignment {
			if l.Kind != boxvalue.KindTarget {
				c.errorf(pos, boxdiag.KindType, "invalid assignment target")
				l.Destroy()
				r.Destroy()
				return boxvalue.NewError()
			}
			c.proc.Emit(boxvm.Op(op.Opcode), l.Cont, r.Cont)
			r.Destroy()
			return l
		}
		dst, other := l, r
		if op.Commutative && r.Kind == boxvalue.KindTemp {
			dst, other = r, l
		} else {
			dst = c.fabricateTemp(op.Result)
			c.proc.Emit(boxvm.OpMOV, dst.Cont, l.Cont)
			l.Destroy()
			other = r
		}
		c.proc.Emit(boxvm.Op(op.Opcode), dst.Cont, other.Cont)
		other.Destroy()
		return dst
	case boxops.SchemeRLRBin:
		dst := c.fabricateTemp(op.Result)
		c.proc.Emit(boxvm.Op(op.Opcode), dst.Cont, l.Cont, r.Cont)
		l.Destroy()
		r.Destroy()
		return dst
	case boxops.SchemeRLRSwap:
		dst, src := l, r
		if op.Result != nil && r.Type != nil && op.Result.Name() == r.Type.Name() {
			dst, src = r, l
		}
		c.proc.Emit(boxvm.Op(op.Opcode), dst.Cont, src.Cont)
		src.Destroy()
		return dst
	default:
		c.Log.Fatalf(pos, "binary operation uses a non-binary emission scheme")
		return boxvalue.NewError()
	}
}

func (c *Compiler) emitUserBinaryCall(op *boxops.Operation, l, r *boxvalue.Value) *boxvalue.Value {
	dst := c.fabricateTemp(op.Result)
	global := c.globalABI()
	c.proc.Emit(boxvm.OpMOV, boxvalue.Reg(storageOf(l.Type), c.proc.ParentRegister(), global), c.proc.ReducePointer(l.Cont))
	c.proc.Emit(boxvm.OpMOV, boxvalue.Reg(storageOf(r.Type), c.proc.ChildRegister(), global), c.proc.ReducePointer(r.Cont))
	c.proc.Emit(boxvm.OpCALL_I, boxvalue.Imm(boxvalue.StoreInt, op.CallNumber))
	if dst.Cont.Storage != boxvalue.StoreVoid {
		c.proc.Emit(boxvm.OpMOV, dst.Cont, boxvalue.Reg(dst.Cont.Storage, c.proc.ParentRegister(), global))
	}
	l.Destroy()
	r.Destroy()
	return dst
}

// parentOpFor / childOpFor choose how a value is moved into a call's
// well-known pass registers (spec §6.4 ABI): objects pass by address
// (parent) or by reference-counted alias (child); everything else is
// a plain move.
func parentOpFor(s boxvalue.StorageType) boxvm.Op {
	if s == boxvalue.StoreObj {
		return boxvm.OpLEA
	}
	return boxvm.OpMOV
}

func childOpFor(s boxvalue.StorageType) boxvm.Op {
	if s == boxvalue.StoreObj {
		return boxvm.OpREF
	}
	return boxvm.OpMOV
}

// emitCall implements spec §4.5 emit_call. Return is by mutation of
// the parent (spec §6.4), so on a successful match the result handed
// back is a weak alias of parent, not a fresh temp. A nil error with
// a nil/void-derived-child short circuit (step 3) is success with
// nothing emitted. A non-nil error means "no match" (BOXTASK_FAILURE)
// and the caller — the Box algorithm, for control dispatch — decides
// what to do next; parent and child are left undestroyed in that case
// so the caller can still inspect child's type.
func (c *Compiler) emitCall(pos boxdiag.Pos, parent, child *boxvalue.Value) (*boxvalue.Value, error) {
	if parent.IsErrorKind() || child.IsErrorKind() {
		parent.Destroy()
		child.Destroy()
		return boxvalue.NewError(), nil
	}

	childType := boxops.ExpandSubtype(c.Sys, child.Type)
	if childType != nil && childType.IsEmpty() {
		parent.Destroy()
		child.Destroy()
		return c.weakCopySingleton(c.vVoid), nil
	}

	parentType := parent.Type
	if parentType == nil {
		parentType = c.Sys.Void()
	}

	combo, _, found := c.Sys.FindCombination(parentType, boxtype.ComboAt, childType)
	if found {
		cn, err := c.installCombination(combo)
		if err != nil {
			return nil, boxdiag.Wrap(err, "install combination body")
		}
		global := c.globalABI()
		pStorage := storageOf(parentType)
		cStorage := storageOf(childType)
		c.proc.Emit(parentOpFor(pStorage), boxvalue.Reg(pStorage, c.proc.ParentRegister(), global), c.proc.ReducePointer(parent.Cont))
		c.proc.Emit(childOpFor(cStorage), boxvalue.Reg(cStorage, c.proc.ChildRegister(), global), c.proc.ReducePointer(child.Cont))
		c.proc.Emit(boxvm.OpCALL_I, boxvalue.Imm(boxvalue.StoreInt, cn))
		result := &boxvalue.Value{}
		boxvalue.WeakCopyInto(result, parent)
		parent.Destroy()
		child.Destroy()
		return result, nil
	}

	if parentType == c.Sys.Any() {
		boxedParent := c.boxToAny(parent)
		boxedChild := c.boxToAny(child)
		c.proc.Emit(boxvm.OpDYCALL, boxedParent.Cont, boxedChild.Cont)
		result := &boxvalue.Value{}
		boxvalue.WeakCopyInto(result, boxedParent)
		boxedParent.Destroy()
		boxedChild.Destroy()
		return result, nil
	}

	return nil, errNoCombination
}

// installCombination lazily installs a combination's compiled body
// the first time it is called (spec §4.7's ProcHandle stash).
func (c *Compiler) installCombination(combo *boxtype.Combination) (int, error) {
	if combo.Installed {
		return combo.CallNumber, nil
	}
	proc, ok := combo.ProcHandle.(procInstaller)
	if !ok {
		return 0, errNoCombination
	}
	cn, err := proc.Install(c.VM)
	if err != nil {
		return 0, err
	}
	combo.CallNumber = cn
	combo.Installed = true
	return cn, nil
}

// procInstaller is the one VMCode method installCombination needs;
// kept as a tiny local interface instead of importing boxlir's
// concrete type, so emit.go only depends on what it actually calls.
type procInstaller interface {
	Install(vm boxvm.VM) (int, error)
}

// boxToAny implements spec §4.10's Any-boxing: a freshly fabricated
// Any temp wraps the value's address plus its runtime type-id. An
// immediate has no address yet, so it is first spilled into its own
// temp.
func (c *Compiler) boxToAny(v *boxvalue.Value) *boxvalue.Value {
	anyT := c.Sys.Any()
	if v.Type != nil && v.Type.Name() == anyT.Name() {
		return v
	}
	dst := c.fabricateTemp(anyT)
	if v.Type == nil || v.Type.IsEmpty() {
		c.proc.Emit(boxvm.OpBOX, dst.Cont)
		v.Destroy()
		return dst
	}
	if v.Cont.Category == boxvalue.CatImmediate {
		spilled := c.fabricateTemp(v.Type)
		c.proc.Emit(boxvm.OpMOV, spilled.Cont, v.Cont)
		v.Destroy()
		v = spilled
	}
	typeID := c.installType(boxdiag.Pos{}, v.Type)
	addr := c.proc.ReducePointer(v.Cont)
	c.proc.Emit(boxvm.OpWBOX, dst.Cont, addr, boxvalue.Imm(boxvalue.StoreInt, typeID))
	v.Destroy()
	return dst
}

// tryEmitConversion implements spec §4.10's implicit-conversion
// lookup: ResolveConvert plus either a native opcode or a call to an
// installed user conversion.
func (c *Compiler) tryEmitConversion(dstType boxtype.Type, v *boxvalue.Value) (*boxvalue.Value, bool) {
	found, _ := boxops.ResolveConvert(c.Sys, c.Ops, dstType, v.Type)
	if found == nil {
		return nil, false
	}
	if found.Native {
		dst := c.fabricateTemp(dstType)
		c.proc.Emit(boxvm.Op(found.Opcode), dst.Cont, v.Cont)
		v.Destroy()
		return dst, true
	}
	dst := c.fabricateTemp(dstType)
	global := c.globalABI()
	c.proc.Emit(boxvm.OpMOV, boxvalue.Reg(storageOf(v.Type), c.proc.ChildRegister(), global), c.proc.ReducePointer(v.Cont))
	c.proc.Emit(boxvm.OpCALL_I, boxvalue.Imm(boxvalue.StoreInt, found.CallNumber))
	c.proc.Emit(boxvm.OpMOV, dst.Cont, boxvalue.Reg(dst.Cont.Storage, c.proc.ParentRegister(), global))
	v.Destroy()
	return dst, true
}
