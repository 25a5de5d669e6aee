// Package boxvalue holds the two leaf data types everything else in
// the core is built from: Container, the operand shape LIR
// instructions carry (spec §3.2), and Value, the uniform description
// of an expression result (spec §3.3).
package boxvalue

// Category is the Container's operand shape.
type Category int

const (
	CatImmediate Category = iota
	CatLocalReg
	CatGlobalReg
	CatPointerDeref
)

func (c Category) String() string {
	switch c {
	case CatImmediate:
		return "imm"
	case CatLocalReg:
		return "local"
	case CatGlobalReg:
		return "global"
	case CatPointerDeref:
		return "deref"
	default:
		return "?"
	}
}

// StorageType is the VM primitive storage class a Container's value
// occupies (spec §3.2).
type StorageType int

const (
	StoreVoid StorageType = iota
	StoreChar
	StoreInt
	StoreReal
	StorePoint
	StorePtr
	StoreObj
)

func (s StorageType) String() string {
	switch s {
	case StoreChar:
		return "char"
	case StoreInt:
		return "int"
	case StoreReal:
		return "real"
	case StorePoint:
		return "point"
	case StorePtr:
		return "ptr"
	case StoreObj:
		return "obj"
	default:
		return "void"
	}
}

// Deref is the (reg, offset, is-global) triple used by pointer-deref
// containers: reg identifies a register holding a base address,
// offset is a signed byte offset.
type Deref struct {
	Reg      int
	Offset   int
	IsGlobal bool
}

// Container is the four-field operand descriptor of spec §3.2. Only
// one of Imm/Reg/Deref is meaningful, selected by Category.
type Container struct {
	Category Category
	Storage  StorageType

	Imm   interface{} // immediate category payload (literal value)
	Reg   int          // local-reg / global-reg category payload
	Deref Deref        // pointer-deref category payload
}

// Imm builds an immediate container. Immediate category forbids
// pointer-deref interpretation by construction: Deref is simply unused.
func Imm(storage StorageType, v interface{}) Container {
	return Container{Category: CatImmediate, Storage: storage, Imm: v}
}

// Reg builds a local or global register container. Storage Void never
// consumes a register (spec §3.2 invariant); callers must not build
// one for a Void value.
func Reg(storage StorageType, reg int, global bool) Container {
	cat := CatLocalReg
	if global {
		cat = CatGlobalReg
	}
	return Container{Category: cat, Storage: storage, Reg: reg}
}

// Ptr builds a pointer-deref container at base register reg, byte
// offset off.
func Ptr(storage StorageType, reg, off int, isGlobal bool) Container {
	return Container{Category: CatPointerDeref, Storage: storage, Deref: Deref{Reg: reg, Offset: off, IsGlobal: isGlobal}}
}

// IsVoid reports whether the container represents no storage at all.
func (c Container) IsVoid() bool { return c.Storage == StoreVoid }

// WithOffset returns a copy of a pointer-deref container shifted by
// delta bytes, used by member-access and subtype extraction (spec
// §4.9) and by the pointer-reduction peephole (spec §4.11).
func (c Container) WithOffset(delta int) Container {
	c.Deref.Offset += delta
	return c
}
