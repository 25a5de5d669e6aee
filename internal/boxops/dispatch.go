package boxops

import "boxc/internal/boxtype"

// ExpandSubtype implements spec §4.4 step 1: if t is a subtype, an
// operator chain is never overloaded for the bare subtype, so the
// caller should operate on its child component instead.
func ExpandSubtype(sys boxtype.System, t boxtype.Type) boxtype.Type {
	if t == nil {
		return t
	}
	if t.Class() != boxtype.ClassSubtype {
		return t
	}
	if _, child, ok := sys.SubtypeOf(t); ok && child != nil {
		return child
	}
	return t
}

// ResolveUnary implements spec §4.4 steps 1-3 for a unary operator:
// subtype expansion, then first-match overload resolution.
func ResolveUnary(sys boxtype.System, t *Table, op UnaryOp, operand boxtype.Type) (found *Operation, match boxtype.MatchKind, expandedOperand boxtype.Type) {
	operand = ExpandSubtype(sys, operand)
	for _, o := range t.UnaryChain(op) {
		m := sys.Compare(nil, operand, o.Left)
		if m.Matched() {
			return o, m, operand
		}
	}
	return nil, boxtype.MatchDifferent, operand
}

// ResolveBinary implements spec §4.4 steps 1-3 for a binary operator.
// Both operand types are subtype-expanded independently; the weaker
// of the two individual matches (expand beats equal/same) is
// reported back so the driver knows whether a type expansion is
// still required on either side (spec §4.4 step 3).
func ResolveBinary(sys boxtype.System, t *Table, op BinaryOp, left, right boxtype.Type) (found *Operation, match boxtype.MatchKind, expLeft, expRight boxtype.Type) {
	left = ExpandSubtype(sys, left)
	right = ExpandSubtype(sys, right)
	for _, o := range t.BinaryChain(op) {
		lm := sys.Compare(nil, left, o.Left)
		if !lm.Matched() {
			continue
		}
		rm := sys.Compare(nil, right, o.Right)
		if !rm.Matched() {
			continue
		}
		return o, weakerMatch(lm, rm), left, right
	}
	return nil, boxtype.MatchDifferent, left, right
}

// ResolveConvert implements spec §4.4 step 2a: the convert operator's
// result type also participates in the match.
func ResolveConvert(sys boxtype.System, t *Table, dst, src boxtype.Type) (found *Operation, match boxtype.MatchKind) {
	src = ExpandSubtype(sys, src)
	for _, o := range t.ConvertChain() {
		lm := sys.Compare(nil, src, o.Left)
		if !lm.Matched() {
			continue
		}
		rm := sys.Compare(nil, dst, o.Result)
		if !rm.Matched() {
			continue
		}
		return o, weakerMatch(lm, rm)
	}
	return nil, boxtype.MatchDifferent
}

func weakerMatch(a, b boxtype.MatchKind) boxtype.MatchKind {
	if a < b {
		return a
	}
	return b
}
