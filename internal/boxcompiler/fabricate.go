package boxcompiler

import (
	"boxc/internal/boxdiag"
	"boxc/internal/boxtype"
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

// storageOf maps a Type's declared container class to the LIR
// storage class that holds it (spec §3.2, §4.2).
func storageOf(t boxtype.Type) boxvalue.StorageType {
	if t == nil {
		return boxvalue.StoreVoid
	}
	switch t.Container() {
	case boxtype.StoreChar:
		return boxvalue.StoreChar
	case boxtype.StoreInt:
		return boxvalue.StoreInt
	case boxtype.StoreReal:
		return boxvalue.StoreReal
	case boxtype.StorePoint:
		return boxvalue.StorePoint
	case boxtype.StorePtr:
		return boxvalue.StorePtr
	case boxtype.StoreObj:
		return boxvalue.StoreObj
	default:
		return boxvalue.StoreVoid
	}
}

// installType hands t to the VM and returns its runtime type-id,
// caching nothing: the VM collaborator contract (spec §6.2) owns
// dedup. A failure here is internal (the type system produced a type
// the VM rejects), so it is fatal rather than a user diagnostic.
func (c *Compiler) installType(pos boxdiag.Pos, t boxtype.Type) int {
	id, err := c.VM.InstallType(boxvm.TypeDesc{Name: t.Name(), Size: t.Size(), Align: t.Align(), IsPointer: t.Class() == boxtype.ClassPointer})
	if err != nil {
		c.Log.Fatalf(pos, "install type %s: %v", t.Name(), err)
	}
	return id
}

// fabricateTemp implements spec §4.2 temp(T): a fresh temporary
// register, constructed in place with a CREATE call when its storage
// class is Obj.
func (c *Compiler) fabricateTemp(t boxtype.Type) *boxvalue.Value {
	s := storageOf(t)
	cont := c.proc.AllocTemp(s)
	v := &boxvalue.Value{Kind: boxvalue.KindTemp, Type: t, Cont: cont}
	if s != boxvalue.StoreVoid {
		v.SetOwnedRegister(c.proc)
	}
	if s == boxvalue.StoreObj {
		id := c.installType(boxdiag.Pos{}, t)
		c.proc.Emit(boxvm.OpCREATE, cont, boxvalue.Imm(boxvalue.StoreInt, id))
	}
	c.Tracker.Track(v, "temp")
	return v
}

// fabricateVar implements spec §4.2 var(T): a procedure-lifetime
// register, never individually released (spec §4.11).
func (c *Compiler) fabricateVar(t boxtype.Type) *boxvalue.Value {
	s := storageOf(t)
	cont := c.proc.AllocVar(s)
	v := &boxvalue.Value{Kind: boxvalue.KindTarget, Type: t, Cont: cont}
	if s == boxvalue.StoreObj {
		id := c.installType(boxdiag.Pos{}, t)
		c.proc.Emit(boxvm.OpCREATE, cont, boxvalue.Imm(boxvalue.StoreInt, id))
	}
	c.Tracker.Track(v, "var")
	return v
}

// fabricateImmediate implements spec §4.2 imm_char/imm_int/imm_real:
// a literal that never touches a register until something forces it
// into one.
func (c *Compiler) fabricateImmediate(t boxtype.Type, store boxvalue.StorageType, lit interface{}) *boxvalue.Value {
	v := &boxvalue.Value{Kind: boxvalue.KindImmediate, Type: t, Cont: boxvalue.Imm(store, lit)}
	c.Tracker.Track(v, "imm")
	return v
}

// fabricateString implements spec §4.2 imm_string: the literal's
// bytes (NUL-terminated) are written into the procedure's constant
// data area, and a String is materialized over a pointer to them.
func (c *Compiler) fabricateString(pos boxdiag.Pos, s string) *boxvalue.Value {
	data := append([]byte(s), 0)
	off, err := c.VM.AddConstantBytes(data)
	if err != nil {
		c.Log.Fatalf(pos, "add constant bytes: %v", err)
	}
	strType, _ := c.Sys.Lookup("String")
	v := c.fabricateTemp(strType)
	c.proc.Emit(boxvm.OpLEA, v.Cont, boxvalue.Imm(boxvalue.StorePtr, off))
	return v
}

// fabricateParent / fabricateChild implement spec §4.2 parent(T) /
// child(T): aliases over the procedure's well-known `$$`/`$`
// registers, used inside a combination body.
func (c *Compiler) fabricateParent(t boxtype.Type) *boxvalue.Value {
	cont := boxvalue.Reg(storageOf(t), c.proc.ParentRegister(), c.globalABI())
	return &boxvalue.Value{Kind: boxvalue.KindTarget, Type: t, Cont: cont}
}

func (c *Compiler) fabricateChild(t boxtype.Type) *boxvalue.Value {
	cont := boxvalue.Reg(storageOf(t), c.proc.ChildRegister(), c.globalABI())
	return &boxvalue.Value{Kind: boxvalue.KindTarget, Type: t, Cont: cont}
}
