package boxcompiler

import (
	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxvalue"
)

// VisitCall implements a bare `parent[child]` combination call (spec
// §4.5) outside of Box's statement-by-statement dispatch (§4.6):
// failure here is a plain diagnostic rather than control-flow
// detection, since there is no enclosing statement list to examine
// the child's type against.
func (c *Compiler) VisitCall(n *boxast.Call) interface{} {
	var parent *boxvalue.Value
	if n.Parent != nil {
		n.Parent.Accept(c)
		parent = c.popValue()
	} else {
		parent = c.weakCopySingleton(c.vVoid)
	}
	n.Child.Accept(c)
	child := c.popValue()

	if parent.IsErrorKind() || child.IsErrorKind() {
		parent.Destroy()
		child.Destroy()
		c.pushError(1)
		return nil
	}

	result, err := c.emitCall(n.Position(), parent, child)
	if err != nil {
		c.errorf(n.Position(), boxdiag.KindType, "no combination matches %s[%s]", c.Sys.String(parent.Type), c.Sys.String(child.Type))
		parent.Destroy()
		child.Destroy()
		c.pushValue(boxvalue.NewError())
		return nil
	}
	c.pushValue(result)
	return nil
}
