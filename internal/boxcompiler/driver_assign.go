package boxcompiler

import (
	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

// VisitAssign implements spec §4.4's assignment special case: a
// var-name left operand declares a fresh variable of the right
// operand's type and binds it; a target left operand gets an in-place
// move.
func (c *Compiler) VisitAssign(n *boxast.Assign) interface{} {
	n.Left.Accept(c)
	n.Right.Accept(c)
	if c.popErrors(2, 1) {
		return nil
	}
	rhs := c.popValue()
	lhs := c.popValue()

	switch lhs.Kind {
	case boxvalue.KindVarName:
		if rhs.IsErrorKind() {
			lhs.Destroy()
			rhs.Destroy()
			c.pushError(1)
			return nil
		}
		name := lhs.Name
		lhs.Destroy()
		decl := c.fabricateVar(rhs.Type)
		c.proc.Emit(boxvm.OpMOV, decl.Cont, rhs.Cont)
		rhs.Destroy()
		decl.LinkToNamespace(c.NS, name)
		out := &boxvalue.Value{}
		boxvalue.WeakCopyInto(out, decl)
		c.pushValue(out)
	case boxvalue.KindTarget:
		c.proc.Emit(boxvm.OpMOV, lhs.Cont, rhs.Cont)
		rhs.Destroy()
		c.pushValue(lhs)
	default:
		c.errorf(n.Position(), boxdiag.KindType, "invalid target for assignment")
		lhs.Destroy()
		rhs.Destroy()
		c.pushValue(boxvalue.NewError())
	}
	return nil
}
