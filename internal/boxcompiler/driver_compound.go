// driver_compound.go implements spec §4.8: compound expressions
// (parenthesised identity, structure/species values and types) and
// the ValueStrucIter helper.
package boxcompiler

import (
	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxtype"
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

func (c *Compiler) VisitCompound(n *boxast.Compound) interface{} {
	switch n.Kind {
	case boxast.CompoundIdentity:
		n.Members[0].Value.Accept(c)
		v := c.popValue()
		v.Ignore = false
		c.pushValue(v)
	case boxast.CompoundSpeciesType:
		c.visitSpeciesType(n)
	case boxast.CompoundStructureValue:
		c.visitStructureValue(n)
	case boxast.CompoundStructureType:
		c.visitStructureType(n)
	default:
		c.Log.Fatalf(n.Position(), "unknown compound kind %d", n.Kind)
	}
	return nil
}

func (c *Compiler) visitSpeciesType(n *boxast.Compound) {
	for _, m := range n.Members {
		m.Type.Accept(c)
	}
	k := len(n.Members)
	if c.popErrors(k, 1) {
		return
	}
	vals := make([]*boxvalue.Value, k)
	for i := k - 1; i >= 0; i-- {
		vals[i] = c.popValue()
	}
	types := make([]boxtype.Type, 0, k)
	bad := false
	for _, v := range vals {
		if v.Kind != boxvalue.KindType {
			c.errorf(n.Position(), boxdiag.KindType, "species member must be a type")
			bad = true
		} else {
			types = append(types, v.Type)
		}
		v.Destroy()
	}
	if bad {
		c.pushValue(boxvalue.NewError())
		return
	}
	sp, err := c.Sys.NewSpecies("", types)
	if err != nil {
		c.errorf(n.Position(), boxdiag.KindType, "%v", err)
		c.pushValue(boxvalue.NewError())
		return
	}
	c.pushValue(&boxvalue.Value{Kind: boxvalue.KindType, Type: sp})
}

func (c *Compiler) visitStructureValue(n *boxast.Compound) {
	for _, m := range n.Members {
		m.Value.Accept(c)
	}
	k := len(n.Members)
	if c.popErrors(k, 1) {
		return
	}
	vals := make([]*boxvalue.Value, k)
	for i := k - 1; i >= 0; i-- {
		vals[i] = c.popValue()
	}
	members := make([]boxtype.Member, k)
	for i, v := range vals {
		members[i] = boxtype.Member{Name: n.Members[i].Name, Type: v.Type}
	}
	st, err := c.Sys.NewStructure("", members)
	if err != nil {
		c.errorf(n.Position(), boxdiag.KindType, "%v", err)
		for _, v := range vals {
			v.Destroy()
		}
		c.pushValue(boxvalue.NewError())
		return
	}
	dst := c.fabricateTemp(st)
	laid := c.Sys.StructureMembers(st)
	base := c.baseDerefOf(dst)
	for i, v := range vals {
		cont := base.WithOffset(laid[i].Offset)
		cont.Storage = storageOf(laid[i].Type)
		c.proc.Emit(boxvm.OpMOV, cont, v.Cont)
		v.Destroy()
	}
	c.pushValue(dst)
}

func (c *Compiler) visitStructureType(n *boxast.Compound) {
	for _, m := range n.Members {
		m.Type.Accept(c)
	}
	k := len(n.Members)
	if c.popErrors(k, 1) {
		return
	}
	vals := make([]*boxvalue.Value, k)
	for i := k - 1; i >= 0; i-- {
		vals[i] = c.popValue()
	}
	members := make([]boxtype.Member, 0, k)
	bad := false
	for i, v := range vals {
		if v.Kind != boxvalue.KindType || v.Type == nil || v.Type.IsEmpty() {
			c.errorf(n.Position(), boxdiag.KindType, "structure member %q must be a non-empty type", n.Members[i].Name)
			bad = true
		} else {
			members = append(members, boxtype.Member{Name: n.Members[i].Name, Type: v.Type})
		}
		v.Destroy()
	}
	if bad {
		c.pushValue(boxvalue.NewError())
		return
	}
	st, err := c.Sys.NewStructure("", members)
	if err != nil {
		c.errorf(n.Position(), boxdiag.KindType, "%v", err)
		c.pushValue(boxvalue.NewError())
		return
	}
	c.pushValue(&boxvalue.Value{Kind: boxvalue.KindType, Type: st})
}

// ValueStrucIter walks a structure Value's members in declaration
// order, producing a weak, borrowed Value for each member located at
// the appropriate offset, recomputing the offset from the previous
// member's size rather than re-querying the type system per step
// (spec §4.8).
type ValueStrucIter struct {
	c      *Compiler
	v      *boxvalue.Value
	types  []boxtype.Type
	names  []string
	offset int
	i      int
}

func NewValueStrucIter(c *Compiler, v *boxvalue.Value) *ValueStrucIter {
	it := &ValueStrucIter{c: c, v: v}
	for _, m := range c.Sys.StructureMembers(v.Type) {
		it.types = append(it.types, m.Type)
		it.names = append(it.names, m.Name)
	}
	return it
}

// Next returns the next member Value, or ok=false once exhausted. The
// returned Value is a non-owning alias; the caller must not Destroy
// it.
func (it *ValueStrucIter) Next() (member *boxvalue.Value, ok bool) {
	if it.i >= len(it.types) {
		return nil, false
	}
	t := it.types[it.i]
	base := it.c.baseDerefOf(it.v)
	cont := base.WithOffset(it.offset)
	cont.Storage = storageOf(t)
	it.offset += t.Size()
	name := it.names[it.i]
	it.i++
	return &boxvalue.Value{Kind: boxvalue.KindTarget, Type: t, Cont: cont, Name: name}, true
}
