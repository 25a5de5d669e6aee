package boxtype

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// concreteType is the only Type implementation the default system
// hands out. The core never looks inside it; this file is the one
// place allowed to.
type concreteType struct {
	class   Class
	name    string
	size    int
	align   int
	cc      ContainerClass
	target  Type     // identifier target, raised source, pointer pointee
	members []Member // structure members
	species []Type   // species members
	subPar  Type      // subtype parent component
	subChild Type     // subtype child component
	params  []Type // function params
	result  Type   // function result
}

func (t *concreteType) Class() Class             { return t.class }
func (t *concreteType) Name() string             { return t.name }
func (t *concreteType) Size() int                { return t.size }
func (t *concreteType) Align() int               { return t.align }
func (t *concreteType) Container() ContainerClass { return t.cc }
func (t *concreteType) IsEmpty() bool            { return t.class == ClassVoid }

type comboKey struct {
	parent string
	kind   CombinationKind
	child  string
}

// DefaultSystem is a minimal in-process type system sufficient to
// drive compile_file end to end without a separate real type-checker
// project (spec treats the type system as an external collaborator;
// SPEC_FULL §B still requires a runnable default).
type DefaultSystem struct {
	named      map[string]Type
	combos     map[comboKey]*Combination
	nextCall   int
	voidT      Type
	anyT       Type
}

// NewDefaultSystem seeds the intrinsic and control-marker types the
// Box algorithm and operator table rely on (spec §3.6 GLOSSARY:
// Begin/End/Pause/If/Else/For are well-known types, not opcodes).
func NewDefaultSystem() *DefaultSystem {
	s := &DefaultSystem{named: map[string]Type{}, combos: map[comboKey]*Combination{}}

	intrinsic := func(name string, size, align int, cc ContainerClass) Type {
		t := &concreteType{class: ClassIntrinsic, name: name, size: size, align: align, cc: cc}
		s.named[name] = t
		return t
	}
	s.voidT = &concreteType{class: ClassVoid, name: "Void", size: 0, align: 1, cc: StoreVoid}
	s.named["Void"] = s.voidT
	intrinsic("Char", 1, 1, StoreChar)
	intrinsic("Int", 8, 8, StoreInt)
	intrinsic("Real", 8, 8, StoreReal)
	intrinsic("Point", 16, 8, StorePoint)
	intrinsic("Ptr", 8, 8, StorePtr)
	intrinsic("String", 8, 8, StoreObj)

	s.anyT = &concreteType{class: ClassAny, name: "Any", size: 16, align: 8, cc: StoreObj}
	s.named["Any"] = s.anyT

	for _, control := range []string{"Begin", "End", "Pause", "If", "Else", "For"} {
		s.named[control] = &concreteType{class: ClassIntrinsic, name: control, size: 0, align: 1, cc: StoreVoid}
	}
	return s
}

func (s *DefaultSystem) Void() Type { return s.voidT }
func (s *DefaultSystem) Any() Type  { return s.anyT }

func (s *DefaultSystem) Lookup(name string) (Type, bool) {
	t, ok := s.named[name]
	return t, ok
}

func (s *DefaultSystem) NewIntrinsic(name string, size, align int, cc ContainerClass) Type {
	t := &concreteType{class: ClassIntrinsic, name: name, size: size, align: align, cc: cc}
	s.named[name] = t
	return t
}

func (s *DefaultSystem) NewIdentifier(name string, target Type) Type {
	t := &concreteType{class: ClassIdentifier, name: name, target: target, size: target.Size(), align: target.Align(), cc: target.Container()}
	s.named[name] = t
	return t
}

func (s *DefaultSystem) NewStructure(name string, members []Member) (Type, error) {
	seen := map[string]bool{}
	size := 0
	align := 1
	laid := make([]Member, 0, len(members))
	for _, m := range members {
		if m.Type == nil || m.Type.IsEmpty() {
			return nil, errors.Errorf("structure member %q has empty type", m.Name)
		}
		if m.Name != "" {
			if seen[m.Name] {
				return nil, errors.Errorf("duplicate structure member name %q", m.Name)
			}
			seen[m.Name] = true
		}
		if a := m.Type.Align(); a > align {
			align = a
		}
		// trust the type system's own alignment rule; pad naively to
		// the member's declared alignment (open question in spec §9).
		if rem := size % m.Type.Align(); rem != 0 {
			size += m.Type.Align() - rem
		}
		m.Offset = size
		size += m.Type.Size()
		laid = append(laid, m)
	}
	t := &concreteType{class: ClassStructure, name: name, members: laid, size: size, align: align, cc: StoreObj}
	if name != "" {
		s.named[name] = t
	}
	return t, nil
}

func (s *DefaultSystem) NewSpecies(name string, members []Type) (Type, error) {
	for _, m := range members {
		if m == nil {
			return nil, errors.New("species member is not a type")
		}
	}
	size := 0
	align := 1
	for _, m := range members {
		if m.Size() > size {
			size = m.Size()
		}
		if m.Align() > align {
			align = m.Align()
		}
	}
	t := &concreteType{class: ClassSpecies, name: name, species: members, size: size, align: align, cc: StoreObj}
	if name != "" {
		s.named[name] = t
	}
	return t, nil
}

func (s *DefaultSystem) NewPointer(of Type) Type {
	return &concreteType{class: ClassPointer, name: "Ptr<" + of.Name() + ">", target: of, size: 8, align: 8, cc: StorePtr}
}

func (s *DefaultSystem) NewRaised(name string, source Type) Type {
	t := &concreteType{class: ClassRaised, name: name, target: source, size: source.Size(), align: source.Align(), cc: source.Container()}
	if name != "" {
		s.named[name] = t
	}
	return t
}

func (s *DefaultSystem) NewSubtype(parent Type, name string, child Type) Type {
	size, align := 8, 8
	if parent != nil {
		size += 8
	}
	return &concreteType{class: ClassSubtype, name: name, subPar: parent, subChild: child, size: size, align: align, cc: StoreObj}
}

func (s *DefaultSystem) NewFunction(params []Type, result Type) Type {
	return &concreteType{class: ClassFunction, name: "Function", params: params, result: result, size: 8, align: 8, cc: StorePtr}
}

func (s *DefaultSystem) PointerOf(t Type) (Type, bool) {
	ct, ok := t.(*concreteType)
	if !ok || ct.class != ClassPointer {
		return nil, false
	}
	return ct.target, true
}

func (s *DefaultSystem) ResolveThrough(t Type) Type {
	if t == nil {
		return nil
	}
	switch ct, ok := t.(*concreteType); {
	case !ok:
		return t
	case ct.class == ClassIdentifier:
		return ct.target
	case ct.class == ClassRaised:
		return ct.target
	case ct.class == ClassSpecies && len(ct.species) == 1:
		return ct.species[0]
	case ct.class == ClassSubtype:
		return ct.subChild
	default:
		return t
	}
}

func (s *DefaultSystem) Compare(result, a, b Type) MatchKind {
	if a == nil || b == nil {
		return MatchDifferent
	}
	if a == b {
		return MatchSame
	}
	if a.Name() == b.Name() && a.Class() == b.Class() {
		if result == nil {
			return MatchEqual
		}
		if result.Name() == a.Name() {
			return MatchSame
		}
		return MatchEqual
	}
	// species member implicit promotion (§4.4 step 3)
	if sp, ok := a.(*concreteType); ok && sp.class == ClassSpecies {
		for _, m := range sp.species {
			if m.Name() == b.Name() {
				return MatchExpand
			}
		}
	}
	if sp, ok := b.(*concreteType); ok && sp.class == ClassSpecies {
		for _, m := range sp.species {
			if m.Name() == a.Name() {
				return MatchExpand
			}
		}
	}
	return MatchDifferent
}

func (s *DefaultSystem) StructureMembers(t Type) []Member {
	if ct, ok := t.(*concreteType); ok {
		return ct.members
	}
	return nil
}

func (s *DefaultSystem) SpeciesMembers(t Type) []Type {
	if ct, ok := t.(*concreteType); ok {
		return ct.species
	}
	return nil
}

func (s *DefaultSystem) SubtypeOf(t Type) (Type, Type, bool) {
	ct, ok := t.(*concreteType)
	if !ok || ct.class != ClassSubtype {
		return nil, nil, false
	}
	return ct.subPar, ct.subChild, true
}

func (s *DefaultSystem) FindCombination(parent Type, kind CombinationKind, child Type) (*Combination, MatchKind, bool) {
	if parent == nil {
		parent = s.voidT
	}
	if child == nil {
		child = s.voidT
	}
	if c, ok := s.combos[comboKey{parent.Name(), kind, child.Name()}]; ok {
		return c, MatchSame, true
	}
	// look for a species-expanded child match
	for key, c := range s.combos {
		if key.parent != parent.Name() || key.kind != kind {
			continue
		}
		if m := s.Compare(nil, child, c.Child); m.Matched() {
			return c, m, true
		}
	}
	return nil, MatchDifferent, false
}

func (s *DefaultSystem) DefineCombination(c *Combination) error {
	if c.Parent == nil || c.Child == nil {
		return errors.New("combination requires resolved parent/child types")
	}
	key := comboKey{c.Parent.Name(), c.Kind, c.Child.Name()}
	s.combos[key] = c
	return nil
}

func (s *DefaultSystem) UndefineCombination(c *Combination) error {
	key := comboKey{c.Parent.Name(), c.Kind, c.Child.Name()}
	delete(s.combos, key)
	return nil
}

func (s *DefaultSystem) NewCallNumber() int {
	s.nextCall++
	return s.nextCall
}

func (s *DefaultSystem) String(t Type) string {
	if t == nil {
		return "<nil>"
	}
	switch ct := t.(type) {
	case *concreteType:
		switch ct.class {
		case ClassStructure:
			names := make([]string, 0, len(ct.members))
			for _, m := range ct.members {
				names = append(names, fmt.Sprintf("%s:%s@%d", m.Name, s.String(m.Type), m.Offset))
			}
			sort.Strings(names)
			return fmt.Sprintf("struct{%v}", names)
		case ClassPointer:
			return "*" + s.String(ct.target)
		case ClassSubtype:
			return fmt.Sprintf("%s.%s[]", s.String(ct.subPar), ct.name)
		}
	}
	return t.Name()
}
