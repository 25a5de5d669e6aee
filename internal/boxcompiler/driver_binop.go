package boxcompiler

import "boxc/internal/boxast"

// VisitBinary implements spec §4.3's poison-propagation boundary
// around spec §4.4's emit_binary.
func (c *Compiler) VisitBinary(n *boxast.Binary) interface{} {
	n.Left.Accept(c)
	n.Right.Accept(c)
	if c.popErrors(2, 1) {
		return nil
	}
	r := c.popValue()
	l := c.popValue()
	c.pushValue(c.emitBinary(n.Position(), n.Op, l, r))
	return nil
}

// VisitUnary dispatches through emit_unary, handling postfix
// separately only insofar as the AST already carries Postfix on the
// node — the operator table decides the emission scheme either way.
func (c *Compiler) VisitUnary(n *boxast.Unary) interface{} {
	n.Operand.Accept(c)
	if c.popErrors(1, 1) {
		return nil
	}
	v := c.popValue()
	c.pushValue(c.emitUnary(n.Position(), n.Op, v))
	return nil
}
