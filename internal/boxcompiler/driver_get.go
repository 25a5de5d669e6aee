// driver_get.go implements spec §4.9: member access, subtype build,
// and subtype extraction.
package boxcompiler

import (
	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxtype"
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

// baseDerefOf reinterprets an object-carrying Value's container as a
// pointer-deref base at offset 0, so member offsets can be composed
// onto it uniformly whether the Value already was a deref (nested
// access) or a plain object register.
func (c *Compiler) baseDerefOf(v *boxvalue.Value) boxvalue.Container {
	switch v.Cont.Category {
	case boxvalue.CatPointerDeref:
		return v.Cont
	case boxvalue.CatLocalReg, boxvalue.CatGlobalReg:
		return boxvalue.Ptr(v.Cont.Storage, v.Cont.Reg, 0, v.Cont.Category == boxvalue.CatGlobalReg)
	default:
		return v.Cont
	}
}

// derefPointerValue reinterprets a freshly computed pointer Value as
// a pointer-deref Value over the type it points to, preserving the
// base register number. The lifetime of the address register itself
// is left with the caller's VMCode pool rather than re-threaded
// through the Obj-shaped result (spec defers exact member-pointer
// storage layout to the type system, §9 open question); this core
// does not attempt to reclaim it early.
func (c *Compiler) derefPointerValue(ptr *boxvalue.Value, pointee boxtype.Type) *boxvalue.Value {
	global := ptr.Cont.Category == boxvalue.CatGlobalReg
	v := &boxvalue.Value{Kind: boxvalue.KindTarget, Type: pointee, Cont: boxvalue.Ptr(storageOf(pointee), ptr.Cont.Reg, 0, global)}
	c.Tracker.Track(v, "deref")
	return v
}

// VisitGet implements get(parent, name) (spec §4.9).
func (c *Compiler) VisitGet(n *boxast.Get) interface{} {
	var parent *boxvalue.Value
	if n.Parent != nil {
		n.Parent.Accept(c)
		parent = c.popValue()
	} else if v, ok := c.NS.Lookup("#"); ok {
		parent = c.weakCopySingleton(v)
	} else {
		parent = c.weakCopySingleton(c.vVoid)
	}
	if parent.IsErrorKind() {
		parent.Destroy()
		c.pushError(1)
		return nil
	}
	c.pushValue(c.emitGet(n.Position(), parent, n.Name))
	return nil
}

func (c *Compiler) emitGet(pos boxdiag.Pos, parent *boxvalue.Value, name string) *boxvalue.Value {
	if parent.Type != nil && parent.Type.Class() == boxtype.ClassSubtype {
		switch name {
		case "child":
			return c.getSubtypeChild(parent)
		case "parent":
			return c.getSubtypeParent(parent)
		}
	}

	if parent.Type != nil && parent.Type.Name() == "Point" {
		var op boxvm.Op
		switch name {
		case "x":
			op = boxvm.OpPPTRX
		case "y":
			op = boxvm.OpPPTRY
		default:
			c.errorf(pos, boxdiag.KindName, "Point has no member %q", name)
			parent.Destroy()
			return boxvalue.NewError()
		}
		realT, _ := c.Sys.Lookup("Real")
		ptrT := c.Sys.NewPointer(realT)
		dst := c.fabricateTemp(ptrT)
		c.proc.Emit(op, dst.Cont, c.proc.ReducePointer(c.baseDerefOf(parent)))
		result := c.derefPointerValue(dst, realT)
		parent.Destroy()
		return result
	}

	for _, m := range c.Sys.StructureMembers(parent.Type) {
		if m.Name != name {
			continue
		}
		cont := c.baseDerefOf(parent).WithOffset(m.Offset)
		cont.Storage = storageOf(m.Type)
		result := &boxvalue.Value{Kind: boxvalue.KindTarget, Type: m.Type, Cont: cont}
		c.Tracker.Track(result, "member")
		parent.Destroy()
		return result
	}

	c.errorf(pos, boxdiag.KindType, "%s has no member %q", c.Sys.String(parent.Type), name)
	parent.Destroy()
	return boxvalue.NewError()
}

// VisitSubtype implements subtype build, `parent.name[]` (spec §4.9).
func (c *Compiler) VisitSubtype(n *boxast.SubtypeExpr) interface{} {
	var parent *boxvalue.Value
	if n.Parent != nil {
		n.Parent.Accept(c)
		parent = c.popValue()
	} else if v, ok := c.NS.Lookup("#"); ok {
		parent = c.weakCopySingleton(v)
	} else {
		parent = c.weakCopySingleton(c.vVoid)
	}

	var childType boxtype.Type
	if n.Child != nil {
		n.Child.Accept(c)
		cv := c.popValue()
		if cv.IsErrorKind() {
			cv.Destroy()
			parent.Destroy()
			c.pushError(1)
			return nil
		}
		childType = cv.Type
		cv.Destroy()
	}

	if parent.IsErrorKind() {
		parent.Destroy()
		c.pushError(1)
		return nil
	}

	subT := c.Sys.NewSubtype(parent.Type, n.Name, childType)
	v := c.fabricateTemp(subT)
	base := c.baseDerefOf(v)

	if childType != nil && !childType.IsEmpty() {
		childSpace := c.fabricateVar(childType)
		addr := c.proc.ReducePointer(c.baseDerefOf(childSpace))
		c.proc.Emit(boxvm.OpMOV, base.WithOffset(0), addr)
		childSpace.Destroy()
	}
	if parent.Type != nil && !parent.Type.IsEmpty() {
		addr := c.proc.ReducePointer(c.baseDerefOf(parent))
		c.proc.Emit(boxvm.OpMOV, base.WithOffset(8), addr)
	}
	parent.Destroy()
	c.pushValue(v)
	return nil
}

// getSubtypeChild / getSubtypeParent load the corresponding pointer
// field and reinterpret it to the stored type, preserving the
// target/temp distinction of the enclosing subtype Value (spec §4.9).
func (c *Compiler) getSubtypeChild(v *boxvalue.Value) *boxvalue.Value {
	_, childT, ok := c.Sys.SubtypeOf(v.Type)
	if !ok || childT == nil {
		v.Destroy()
		return boxvalue.NewError()
	}
	base := c.baseDerefOf(v)
	ptrT := c.Sys.NewPointer(childT)
	ptrReg := c.fabricateTemp(ptrT)
	c.proc.Emit(boxvm.OpMOV, ptrReg.Cont, base.WithOffset(0))
	result := c.derefPointerValue(ptrReg, childT)
	result.Kind = v.Kind
	v.Destroy()
	return result
}

func (c *Compiler) getSubtypeParent(v *boxvalue.Value) *boxvalue.Value {
	parentT, _, ok := c.Sys.SubtypeOf(v.Type)
	if !ok || parentT == nil {
		v.Destroy()
		return boxvalue.NewError()
	}
	base := c.baseDerefOf(v)
	ptrT := c.Sys.NewPointer(parentT)
	ptrReg := c.fabricateTemp(ptrT)
	c.proc.Emit(boxvm.OpMOV, ptrReg.Cont, base.WithOffset(8))
	result := c.derefPointerValue(ptrReg, parentT)
	result.Kind = v.Kind
	v.Destroy()
	return result
}
