// driver_decl.go implements spec §4.7: combination and type
// definitions, raised/pointer type construction, and
// dereference/address-of.
package boxcompiler

import (
	"github.com/google/uuid"

	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxlir"
	"boxc/internal/boxtype"
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

// resolveTypeExpr evaluates e (which may be nil, meaning "no operand")
// to a Type, destroying the intermediate Value.
func (c *Compiler) resolveTypeExpr(e boxast.Expr) boxtype.Type {
	if e == nil {
		return nil
	}
	e.Accept(c)
	v := c.popValue()
	defer v.Destroy()
	if v.IsErrorKind() || v.Kind != boxvalue.KindType {
		return nil
	}
	return v.Type
}

func comboProcName(n *boxast.CombinationDef) string {
	if n.CSymbol != "" {
		return n.CSymbol
	}
	return "combo"
}

// VisitCombinationDef compiles `child @ parent ? "c_name" [ body ]`.
// A nil Body declares a prototype only, leaving ProcHandle unset for
// a later external binding (spec §4.7).
func (c *Compiler) VisitCombinationDef(n *boxast.CombinationDef) interface{} {
	parentType := c.resolveTypeExpr(n.Parent)
	childType := c.resolveTypeExpr(n.Child)

	combo := &boxtype.Combination{
		Parent:      parentType,
		Kind:        n.Kind,
		Child:       childType,
		CSymbol:     n.CSymbol,
		HasParent:   parentType != nil && !parentType.IsEmpty(),
		HasChild:    childType != nil && !childType.IsEmpty(),
		DebugHandle: uuid.New().String(),
	}

	if n.Body != nil {
		sub := boxlir.NewVMCode(comboProcName(n), boxvm.StyleSub)
		if combo.HasParent {
			cont := sub.AllocVar(storageOf(parentType))
			sub.SetParent(cont.Reg)
		}
		if combo.HasChild {
			cont := sub.AllocVar(storageOf(childType))
			sub.SetChild(cont.Reg)
		}

		c.pushFrame(sub)
		c.NS.FloorUp()
		if combo.HasParent {
			c.fabricateParent(parentType).LinkToNamespace(c.NS, "#")
		}
		if combo.HasChild {
			c.fabricateChild(childType).LinkToNamespace(c.NS, "$")
		}
		n.Body.Accept(c)
		c.popValue().Destroy()
		c.NS.FloorDown()

		proc, err := sub.Finalize()
		c.popFrame()
		if err != nil {
			c.errorf(n.Position(), boxdiag.KindInternal, "finalize combination %s: %v", combo.DebugHandle, err)
			c.pushValue(boxvalue.NewError())
			return nil
		}
		callNum, err := c.VM.InstallProcedure(proc)
		if err != nil {
			c.errorf(n.Position(), boxdiag.KindInternal, "install combination %s: %v", combo.DebugHandle, err)
			c.pushValue(boxvalue.NewError())
			return nil
		}
		combo.CallNumber = callNum
		combo.Installed = true
		combo.ProcHandle = proc
	} else {
		combo.CallNumber = c.Sys.NewCallNumber()
	}

	if err := c.Sys.DefineCombination(combo); err != nil {
		c.errorf(n.Position(), boxdiag.KindName, "%v", err)
		c.pushValue(boxvalue.NewError())
		return nil
	}
	c.NS.AddProcedureTeardown(c.Sys, combo)

	c.pushValue(c.weakCopySingleton(c.vVoid))
	return nil
}

// VisitTypeDef binds `Name = RHS` in the namespace. A redefinition
// with an incompatible type is a diagnostic; a compatible
// redefinition is accepted and returns the existing binding.
//
// Forward references to a type name used before its TypeDef are not
// supported by this core: a name must be defined before use.
func (c *Compiler) VisitTypeDef(n *boxast.TypeDef) interface{} {
	n.RHS.Accept(c)
	rhs := c.popValue()
	if rhs.IsErrorKind() {
		rhs.Destroy()
		c.pushError(1)
		return nil
	}
	if rhs.Kind != boxvalue.KindType {
		c.errorf(n.Position(), boxdiag.KindType, "%s must name a type", n.Name)
		rhs.Destroy()
		c.pushValue(boxvalue.NewError())
		return nil
	}
	id := c.Sys.NewIdentifier(n.Name, rhs.Type)
	rhs.Destroy()

	if existing, ok := c.NS.Lookup(n.Name); ok {
		if existing.Kind != boxvalue.KindType || c.Sys.Compare(nil, existing.Type, id) != boxtype.MatchSame {
			c.errorf(n.Position(), boxdiag.KindName, "%s redefined with an incompatible type", n.Name)
			c.pushValue(boxvalue.NewError())
			return nil
		}
		c.pushValue(c.weakCopySingleton(existing))
		return nil
	}

	tv := &boxvalue.Value{Kind: boxvalue.KindType, Type: id, ReadOnly: true}
	tv.LinkToNamespace(c.NS, n.Name)
	c.pushValue(c.weakCopySingleton(tv))
	return nil
}

// VisitRaisedType wraps Source in a raised type named Name (spec
// §4.7): no instructions are emitted, only a type-system call.
func (c *Compiler) VisitRaisedType(n *boxast.RaisedTypeExpr) interface{} {
	n.Source.Accept(c)
	src := c.popValue()
	if src.IsErrorKind() {
		src.Destroy()
		c.pushError(1)
		return nil
	}
	if src.Kind != boxvalue.KindType {
		c.errorf(n.Position(), boxdiag.KindType, "raised type source must be a type")
		src.Destroy()
		c.pushValue(boxvalue.NewError())
		return nil
	}
	raised := c.Sys.NewRaised(n.Name, src.Type)
	src.Destroy()
	c.pushValue(&boxvalue.Value{Kind: boxvalue.KindType, Type: raised, Name: n.Name})
	return nil
}

// VisitPointerType builds a pointer type over Of.
func (c *Compiler) VisitPointerType(n *boxast.PointerTypeExpr) interface{} {
	n.Of.Accept(c)
	of := c.popValue()
	if of.IsErrorKind() {
		of.Destroy()
		c.pushError(1)
		return nil
	}
	if of.Kind != boxvalue.KindType {
		c.errorf(n.Position(), boxdiag.KindType, "pointer target must be a type")
		of.Destroy()
		c.pushValue(boxvalue.NewError())
		return nil
	}
	ptr := c.Sys.NewPointer(of.Type)
	of.Destroy()
	c.pushValue(&boxvalue.Value{Kind: boxvalue.KindType, Type: ptr})
	return nil
}

// VisitDeref dereferences a pointer value: emits a notnul guard and
// reinterprets the register as a pointer-deref base over the pointee
// type (spec §4.7).
func (c *Compiler) VisitDeref(n *boxast.DerefExpr) interface{} {
	n.Of.Accept(c)
	ptr := c.popValue()
	if ptr.IsErrorKind() {
		ptr.Destroy()
		c.pushError(1)
		return nil
	}
	pointee, ok := c.Sys.PointerOf(ptr.Type)
	if !ok {
		c.errorf(n.Position(), boxdiag.KindType, "%s is not a pointer", c.Sys.String(ptr.Type))
		ptr.Destroy()
		c.pushValue(boxvalue.NewError())
		return nil
	}
	c.proc.Emit(boxvm.OpNOTNUL, ptr.Cont)
	result := c.derefPointerValue(ptr, pointee)
	ptr.Destroy()
	c.pushValue(result)
	return nil
}

// VisitAddrOf takes the address of a target or temp operand.
func (c *Compiler) VisitAddrOf(n *boxast.AddrOfExpr) interface{} {
	n.Of.Accept(c)
	v := c.popValue()
	if v.IsErrorKind() {
		v.Destroy()
		c.pushError(1)
		return nil
	}
	if v.Kind != boxvalue.KindTarget && v.Kind != boxvalue.KindTemp {
		c.errorf(n.Position(), boxdiag.KindType, "cannot take the address of this expression")
		v.Destroy()
		c.pushValue(boxvalue.NewError())
		return nil
	}
	ptrT := c.Sys.NewPointer(v.Type)
	dst := c.fabricateTemp(ptrT)
	addr := c.proc.ReducePointer(c.baseDerefOf(v))
	c.proc.Emit(boxvm.OpLEA, dst.Cont, addr)
	v.Destroy()
	c.pushValue(dst)
	return nil
}
