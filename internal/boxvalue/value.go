package boxvalue

import "boxc/internal/boxtype"

// Kind is the Value sum type discriminator (spec §3.3). Go's type
// system gives us the exhaustive match the source's tag+union can
// only approximate; there is deliberately no catch-all "unknown kind"
// fatal anywhere in this package.
type Kind int

const (
	KindError Kind = iota
	KindVarName
	KindTypeName
	KindType
	KindImmediate
	KindTemp
	KindTarget
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindVarName:
		return "var-name"
	case KindTypeName:
		return "type-name"
	case KindType:
		return "type"
	case KindImmediate:
		return "immediate"
	case KindTemp:
		return "temp"
	case KindTarget:
		return "target"
	default:
		return "?"
	}
}

// RegisterReleaser is the register allocator's release half, kept as
// an interface here so boxvalue never imports the procedure/LIR
// package that owns the real allocator (spec §3.6's VMCode). A
// Value with OwnRegister set must release exactly once through this
// on Finish, regardless of how it is destroyed.
type RegisterReleaser interface {
	Release(storage StorageType, global bool, reg int)
}

// Binder is the namespace half of LinkToNamespace (spec §4.1), kept
// as an interface for the same reason: boxvalue stays a leaf package.
type Binder interface {
	BindValue(name string, v *Value)
}

// Value is the tagged record of spec §3.3.
type Value struct {
	Kind Kind
	Type boxtype.Type
	Cont Container
	Name string

	ReadOnly   bool
	OwnRegister bool
	Ignore     bool
	NewOrInit  bool

	releaser RegisterReleaser
	finished bool
}

// NewError returns a fresh error-kind Value with no attached
// resources (spec §4.1 create's contract).
func NewError() *Value {
	return &Value{Kind: KindError}
}

// Finish releases the owned register (if any) through releaser,
// clears the name, and unlinks the type. Idempotent on an
// already-finished Value (spec §8 invariant 6). Read-only singletons
// bypass it entirely: the compiler never owns their lifetime.
func (v *Value) Finish() {
	if v == nil || v.finished || v.ReadOnly {
		return
	}
	if v.OwnRegister && v.releaser != nil {
		global := v.Cont.Category == CatGlobalReg
		v.releaser.Release(v.Cont.Storage, global, v.Cont.Reg)
	}
	v.OwnRegister = false
	v.Name = ""
	v.Type = nil
	v.finished = true
}

// Destroy performs Finish and, if the value was heap-allocated
// (NewOrInit), frees the struct itself. In Go the "free" is simply
// letting go of the last reference; callers should not reuse v after
// calling Destroy.
func (v *Value) Destroy() {
	if v == nil || v.ReadOnly {
		return
	}
	v.Finish()
}

// WeakCopyInto duplicates kind/type/container/name from src into dst,
// but never inherits OwnRegister or Ignore (spec §4.1): dst is a
// non-owning alias, src is left untouched. Go's garbage collector is
// the Type reference count from the source design (§9 design notes);
// there is nothing further to increment.
func WeakCopyInto(dst, src *Value) {
	dst.Kind = src.Kind
	dst.Type = src.Type
	dst.Cont = src.Cont
	dst.Name = src.Name
	dst.ReadOnly = src.ReadOnly
	dst.OwnRegister = false
	dst.Ignore = false
	dst.NewOrInit = false
	dst.releaser = nil
	dst.finished = false
}

// Move transfers all ownership from src to dst; src becomes an error
// Value. Read-only values cannot be moved — callers must use
// WeakCopyInto for those instead (spec §4.1).
func Move(dst, src *Value) {
	if src.ReadOnly {
		WeakCopyInto(dst, src)
		return
	}
	dst.Kind = src.Kind
	dst.Type = src.Type
	dst.Cont = src.Cont
	dst.Name = src.Name
	dst.ReadOnly = src.ReadOnly
	dst.OwnRegister = src.OwnRegister
	dst.Ignore = src.Ignore
	dst.NewOrInit = src.NewOrInit
	dst.releaser = src.releaser
	dst.finished = src.finished

	src.Kind = KindError
	src.Type = nil
	src.Cont = Container{}
	src.Name = ""
	src.OwnRegister = false
	src.NewOrInit = false
	src.releaser = nil
	src.finished = true
}

// SetOwnedRegister records that v is responsible for releasing reg
// through releaser exactly once.
func (v *Value) SetOwnedRegister(releaser RegisterReleaser) {
	v.OwnRegister = true
	v.releaser = releaser
}

// LinkToNamespace binds v under name in b. v's ownership passes to
// the namespace binding the same way push_value passes ownership to
// the evaluation stack.
func (v *Value) LinkToNamespace(b Binder, name string) {
	v.Name = name
	b.BindValue(name, v)
}

// IsErrorKind reports whether v is the poison marker kind used by the
// stack discipline (spec §4.3).
func (v *Value) IsErrorKind() bool { return v == nil || v.Kind == KindError }

// IsIgnorable reports the "ignorable expression" check used by the
// Box algorithm (spec §4.6 step 4): void-typed, type-only, or
// explicitly marked values are dropped rather than passed to
// emit_call.
func (v *Value) IsIgnorable() bool {
	if v == nil {
		return true
	}
	if v.Ignore {
		return true
	}
	if v.Kind == KindType {
		return true
	}
	return v.Type != nil && v.Type.IsEmpty()
}

// AsTarget performs the pure kind change that makes a temp
// assignable, without touching its container or register ownership
// (spec §3.3: "temp ... convertible to target by a pure kind change").
// It mutates v in place and returns it: a kind change is not a copy,
// so ownership of any register v already holds does not move.
func (v *Value) AsTarget() *Value {
	v.Kind = KindTarget
	return v
}
