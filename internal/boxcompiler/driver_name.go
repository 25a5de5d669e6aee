package boxcompiler

import (
	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxvalue"
)

// VisitIdentifier resolves a bare name (spec §3.3 var-name/type-name
// kinds): a bound value yields a non-owning alias, a type name yields
// a type-kind Value, and anything else is left as an unresolved
// var-name for a following Assign to declare.
func (c *Compiler) VisitIdentifier(n *boxast.Identifier) interface{} {
	if bound, ok := c.NS.Lookup(n.Name); ok {
		v := &boxvalue.Value{}
		boxvalue.WeakCopyInto(v, bound)
		c.Tracker.Track(v, "ident")
		c.pushValue(v)
		return nil
	}
	if t, ok := c.Sys.Lookup(n.Name); ok {
		v := &boxvalue.Value{Kind: boxvalue.KindType, Type: t, Name: n.Name}
		c.Tracker.Track(v, "type-ident")
		c.pushValue(v)
		return nil
	}
	v := &boxvalue.Value{Kind: boxvalue.KindVarName, Name: n.Name}
	c.Tracker.Track(v, "var-name")
	c.pushValue(v)
	return nil
}

func (c *Compiler) VisitTypeRef(n *boxast.TypeRef) interface{} {
	if t, ok := c.Sys.Lookup(n.Name); ok {
		v := &boxvalue.Value{Kind: boxvalue.KindType, Type: t, Name: n.Name}
		c.pushValue(v)
		return nil
	}
	c.errorf(n.Position(), boxdiag.KindName, "undefined type %q", n.Name)
	c.pushValue(boxvalue.NewError())
	return nil
}
