// Package boxns is the lexically-scoped namespace of spec §3.4: a
// stack of floors, each owning bindings that vanish when the floor
// pops, backed by a single global hash table for O(1) lookup from any
// depth.
package boxns

import (
	"golang.org/x/exp/maps"

	"boxc/internal/boxtype"
	"boxc/internal/boxvalue"
)

type itemKind int

const (
	itemValue itemKind = iota
	itemProcedure
	itemCallback
)

// item is one NmspItem (spec §3.4). Only the fields matching kind are
// meaningful.
type item struct {
	kind itemKind
	name string // empty for procedure/callback items, which are not
	// addressed by name — they exist purely for floor-pop teardown.

	value *boxvalue.Value

	combo *boxtype.Combination
	sys   boxtype.System // set on non-root floors so teardown can undefine

	callback func()

	shadowed *item // the global-table entry this one displaced, if any
}

// Floor is one level of the namespace stack (spec §3.4, glossary).
// Its teardown list runs in reverse insertion order when it pops —
// the "drop guard" shape called for in spec §9's design notes.
type Floor struct {
	items []*item
}

// Namespace is the stack of floors (spec §3.4).
type Namespace struct {
	floors []*Floor
	global map[string]*item
}

// New constructs a Namespace with its root floor already in place
// (spec §3.4 invariant: the active-floor count is always >= 1).
func New() *Namespace {
	ns := &Namespace{global: map[string]*item{}}
	ns.floors = append(ns.floors, &Floor{})
	return ns
}

// Depth reports the number of active floors.
func (ns *Namespace) Depth() int { return len(ns.floors) }

// FloorUp pushes a fresh floor.
func (ns *Namespace) FloorUp() {
	ns.floors = append(ns.floors, &Floor{})
}

// FloorDown pops the top floor, undoing its bindings in reverse
// insertion order, destroying the Values it owns, and restoring
// anything they shadowed (spec §3.4).
// It is a programming error to pop the root floor; callers (the
// driver) must keep FloorUp/FloorDown calls balanced (spec §8
// invariant 2).
func (ns *Namespace) FloorDown() {
	if len(ns.floors) <= 1 {
		return
	}
	top := ns.floors[len(ns.floors)-1]
	ns.floors = ns.floors[:len(ns.floors)-1]

	for i := len(top.items) - 1; i >= 0; i-- {
		it := top.items[i]
		switch it.kind {
		case itemValue:
			it.value.Destroy()
			if ns.global[it.name] == it {
				if it.shadowed != nil {
					ns.global[it.name] = it.shadowed
				} else {
					delete(ns.global, it.name)
				}
			}
		case itemProcedure:
			if it.sys != nil && it.combo != nil {
				_ = it.sys.UndefineCombination(it.combo)
			}
		case itemCallback:
			if it.callback != nil {
				it.callback()
			}
		}
	}
}

// BindValue implements boxvalue.Binder: it binds v under name in the
// current (top) floor, shadowing any existing binding with the same
// name until this floor pops.
func (ns *Namespace) BindValue(name string, v *boxvalue.Value) {
	top := ns.floors[len(ns.floors)-1]
	it := &item{kind: itemValue, name: name, value: v, shadowed: ns.global[name]}
	top.items = append(top.items, it)
	ns.global[name] = it
}

// AddProcedureTeardown records that combo was installed on the type
// system while the current floor was active. If the current floor is
// not the root, combo is undefined automatically when the floor pops
// (spec §3.4: "non-top floors undefine the combination on teardown").
func (ns *Namespace) AddProcedureTeardown(sys boxtype.System, combo *boxtype.Combination) {
	if len(ns.floors) == 1 {
		return // root floor's combinations live for the whole compile
	}
	top := ns.floors[len(ns.floors)-1]
	top.items = append(top.items, &item{kind: itemProcedure, combo: combo, sys: sys})
}

// AddCallback registers an arbitrary teardown action on the current
// floor (spec §3.4's "callback" NmspItem).
func (ns *Namespace) AddCallback(fn func()) {
	top := ns.floors[len(ns.floors)-1]
	top.items = append(top.items, &item{kind: itemCallback, callback: fn})
}

// Lookup resolves name against the global hash table: lexical
// first-match, independent of floor depth (spec §5 "Ordering").
func (ns *Namespace) Lookup(name string) (*boxvalue.Value, bool) {
	it, ok := ns.global[name]
	if !ok || it.kind != itemValue {
		return nil, false
	}
	return it.value, true
}

// Names returns every currently-bound value name, for diagnostics and
// tests; order is unspecified.
func (ns *Namespace) Names() []string {
	return maps.Keys(ns.global)
}
