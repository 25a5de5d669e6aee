package boxvalue

import "testing"

// fakeReleaser records Release calls instead of touching a real
// register file, the way a unit test for a RegisterReleaser consumer
// normally stands in for boxlir.VMCode.
type fakeReleaser struct {
	calls int
	last  struct {
		storage StorageType
		global  bool
		reg     int
	}
}

func (r *fakeReleaser) Release(storage StorageType, global bool, reg int) {
	r.calls++
	r.last.storage = storage
	r.last.global = global
	r.last.reg = reg
}

func TestFinishIsIdempotent(t *testing.T) {
	rel := &fakeReleaser{}
	v := &Value{Kind: KindTemp, Cont: Reg(StoreInt, 3, false)}
	v.SetOwnedRegister(rel)

	v.Finish()
	if rel.calls != 1 {
		t.Fatalf("want 1 release call after first Finish, got %d", rel.calls)
	}
	v.Finish()
	v.Finish()
	if rel.calls != 1 {
		t.Fatalf("want Finish to be a no-op once finished, got %d release calls", rel.calls)
	}
	if v.OwnRegister {
		t.Fatal("Finish should clear OwnRegister")
	}
}

func TestFinishSkipsReadOnly(t *testing.T) {
	rel := &fakeReleaser{}
	v := &Value{Kind: KindType, ReadOnly: true, Type: nil}
	v.SetOwnedRegister(rel)
	v.Finish()
	if rel.calls != 0 {
		t.Fatal("Finish must never release a read-only value's register")
	}
}

func TestDestroySkipsReadOnly(t *testing.T) {
	rel := &fakeReleaser{}
	v := &Value{Kind: KindType, ReadOnly: true}
	v.SetOwnedRegister(rel)
	v.Destroy()
	if rel.calls != 0 {
		t.Fatal("Destroy must never finish a read-only singleton")
	}
}

func TestWeakCopyIntoDoesNotInheritOwnership(t *testing.T) {
	rel := &fakeReleaser{}
	src := &Value{Kind: KindTemp, Name: "x", Cont: Reg(StoreInt, 1, false), Ignore: true}
	src.SetOwnedRegister(rel)

	dst := &Value{}
	WeakCopyInto(dst, src)

	if dst.OwnRegister {
		t.Fatal("a weak copy must not own the register")
	}
	if dst.Ignore {
		t.Fatal("a weak copy must not inherit Ignore")
	}
	if dst.Kind != KindTemp || dst.Name != "x" || dst.Cont != src.Cont {
		t.Fatalf("weak copy dropped fields: %+v", dst)
	}

	dst.Destroy()
	if rel.calls != 0 {
		t.Fatal("destroying a weak alias must not release the source's register")
	}
}

func TestMoveTransfersOwnershipAndPoisonsSource(t *testing.T) {
	rel := &fakeReleaser{}
	src := &Value{Kind: KindTemp, Cont: Reg(StoreInt, 2, false)}
	src.SetOwnedRegister(rel)

	dst := &Value{}
	Move(dst, src)

	if !dst.OwnRegister {
		t.Fatal("Move must transfer register ownership to dst")
	}
	if !src.IsErrorKind() {
		t.Fatalf("Move must poison src into an error kind, got %v", src.Kind)
	}

	dst.Finish()
	if rel.calls != 1 {
		t.Fatalf("want exactly 1 release after moving and finishing dst, got %d", rel.calls)
	}
}

func TestMoveOfReadOnlyFallsBackToWeakCopy(t *testing.T) {
	src := &Value{Kind: KindType, ReadOnly: true, Name: "Begin"}
	dst := &Value{}
	Move(dst, src)

	if src.Kind != KindType || src.Name != "Begin" {
		t.Fatal("moving a read-only singleton must leave it untouched")
	}
	if dst.Kind != KindType || dst.Name != "Begin" {
		t.Fatal("dst should have received a weak copy of the read-only value")
	}
}

func TestIsErrorKind(t *testing.T) {
	if !(*Value)(nil).IsErrorKind() {
		t.Fatal("a nil Value must read as error-kind")
	}
	if !NewError().IsErrorKind() {
		t.Fatal("NewError must produce an error-kind value")
	}
	if (&Value{Kind: KindTemp}).IsErrorKind() {
		t.Fatal("a temp-kind value must not read as error-kind")
	}
}

func TestIsIgnorable(t *testing.T) {
	cases := []struct {
		name string
		v    *Value
		want bool
	}{
		{"nil", nil, true},
		{"explicit ignore", &Value{Kind: KindTemp, Ignore: true}, true},
		{"type value", &Value{Kind: KindType}, true},
		{"ordinary temp", &Value{Kind: KindTemp}, false},
	}
	for _, tc := range cases {
		if got := tc.v.IsIgnorable(); got != tc.want {
			t.Errorf("%s: IsIgnorable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAsTargetIsAPureKindChange(t *testing.T) {
	rel := &fakeReleaser{}
	v := &Value{Kind: KindTemp, Cont: Reg(StoreInt, 1, false)}
	v.SetOwnedRegister(rel)

	out := v.AsTarget()
	if out != v {
		t.Fatal("AsTarget must mutate and return the same Value")
	}
	if v.Kind != KindTarget {
		t.Fatalf("want KindTarget, got %v", v.Kind)
	}
	if !v.OwnRegister {
		t.Fatal("AsTarget must not disturb register ownership")
	}
}
