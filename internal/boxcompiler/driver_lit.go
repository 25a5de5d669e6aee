package boxcompiler

import "boxc/internal/boxast"
import "boxc/internal/boxvalue"

func (c *Compiler) VisitCharLit(n *boxast.CharLit) interface{} {
	t, _ := c.Sys.Lookup("Char")
	c.pushValue(c.fabricateImmediate(t, boxvalue.StoreChar, n.Value))
	return nil
}

func (c *Compiler) VisitIntLit(n *boxast.IntLit) interface{} {
	t, _ := c.Sys.Lookup("Int")
	c.pushValue(c.fabricateImmediate(t, boxvalue.StoreInt, n.Value))
	return nil
}

func (c *Compiler) VisitRealLit(n *boxast.RealLit) interface{} {
	t, _ := c.Sys.Lookup("Real")
	c.pushValue(c.fabricateImmediate(t, boxvalue.StoreReal, n.Value))
	return nil
}

func (c *Compiler) VisitStringLit(n *boxast.StringLit) interface{} {
	c.pushValue(c.fabricateString(n.Position(), n.Value))
	return nil
}
