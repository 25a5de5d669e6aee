package boxops

import (
	"testing"

	"boxc/internal/boxtype"
)

// stubType is a minimal boxtype.Type for operator-table tests that
// have no need for a real DefaultSystem.
type stubType struct {
	name  string
	class boxtype.Class
	empty bool
}

func (t *stubType) Class() boxtype.Class             { return t.class }
func (t *stubType) Name() string                     { return t.name }
func (t *stubType) Size() int                        { return 8 }
func (t *stubType) Align() int                       { return 8 }
func (t *stubType) Container() boxtype.ContainerClass { return boxtype.StoreInt }
func (t *stubType) IsEmpty() bool                    { return t.empty }

// stubSystem implements just enough of boxtype.System for
// ResolveUnary/ResolveBinary/ResolveConvert: name equality is "same",
// and a configurable subtype unwrap.
type stubSystem struct {
	boxtype.System
	subtypeOf map[string]boxtype.Type
}

func (s *stubSystem) Compare(result, a, b boxtype.Type) boxtype.MatchKind {
	if a == nil || b == nil {
		return boxtype.MatchDifferent
	}
	if a.Name() == b.Name() {
		return boxtype.MatchSame
	}
	return boxtype.MatchDifferent
}

func (s *stubSystem) SubtypeOf(t boxtype.Type) (boxtype.Type, boxtype.Type, bool) {
	child, ok := s.subtypeOf[t.Name()]
	return nil, child, ok
}

var (
	intType  = &stubType{name: "Int", class: boxtype.ClassIntrinsic}
	realType = &stubType{name: "Real", class: boxtype.ClassIntrinsic}
)

func TestResolveUnaryFirstMatchWins(t *testing.T) {
	table := NewTable()
	intOp := &Operation{Left: intType, Result: intType, Opcode: 1}
	realOp := &Operation{Left: realType, Result: realType, Opcode: 2}
	table.AddUnary(UnNeg, intOp)
	table.AddUnary(UnNeg, realOp)

	sys := &stubSystem{}
	found, match, _ := ResolveUnary(sys, table, UnNeg, realType)
	if found != realOp {
		t.Fatalf("want the Real overload to match, got %+v", found)
	}
	if !match.Matched() {
		t.Fatal("a same-name match must report Matched()")
	}

	if found, _, _ := ResolveUnary(sys, table, UnNeg, &stubType{name: "Char"}); found != nil {
		t.Fatalf("an operand with no overload must resolve to nil, got %+v", found)
	}
}

func TestResolveBinaryRequiresBothOperandsToMatch(t *testing.T) {
	table := NewTable()
	add := &Operation{Left: intType, Right: intType, Result: intType}
	table.AddBinary(BinAdd, add)

	sys := &stubSystem{}
	if found, _, _, _ := ResolveBinary(sys, table, BinAdd, intType, realType); found != nil {
		t.Fatal("mismatched operand types must not resolve")
	}
	found, _, _, _ := ResolveBinary(sys, table, BinAdd, intType, intType)
	if found != add {
		t.Fatalf("matching operand types must resolve to the seeded overload, got %+v", found)
	}
}

func TestResolveConvertMatchesOnResultToo(t *testing.T) {
	table := NewTable()
	conv := &Operation{Left: intType, Result: realType}
	table.AddConvert(conv)

	sys := &stubSystem{}
	found, _ := ResolveConvert(sys, table, realType, intType)
	if found != conv {
		t.Fatalf("Int->Real conversion should resolve, got %+v", found)
	}
	if found, _ := ResolveConvert(sys, table, intType, intType); found != nil {
		t.Fatal("a conversion whose declared result doesn't match dst must not resolve")
	}
}

func TestExpandSubtypePeelsOneLayer(t *testing.T) {
	subtype := &stubType{name: "Sub", class: boxtype.ClassSubtype}
	sys := &stubSystem{subtypeOf: map[string]boxtype.Type{"Sub": intType}}

	if got := ExpandSubtype(sys, subtype); got != intType {
		t.Fatalf("want the subtype's child type, got %+v", got)
	}
	if got := ExpandSubtype(sys, intType); got != intType {
		t.Fatal("a non-subtype must be returned unchanged")
	}
	if got := ExpandSubtype(sys, nil); got != nil {
		t.Fatal("ExpandSubtype(nil) must return nil")
	}
}
