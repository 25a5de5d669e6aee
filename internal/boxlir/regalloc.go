package boxlir

import "boxc/internal/boxvalue"

// classPool is the per-storage-class pair of register pools spec
// §3.6/§4.11 describes: a variable pool, numbered negative and never
// individually freed (locals live for the whole procedure), and a
// temporary pool, numbered positive with a free list so short-lived
// temps get reused within one procedure.
type classPool struct {
	nextVar  int // decremented on each allocation; starts at 0
	nextTemp int // incremented on each allocation; starts at 0
	freeTemp []int
	maxTemp  int
	maxVar   int
}

func (p *classPool) allocVar() int {
	p.nextVar--
	v := p.nextVar
	if n := -v; n > p.maxVar {
		p.maxVar = n
	}
	return v
}

func (p *classPool) allocTemp() int {
	if n := len(p.freeTemp); n > 0 {
		r := p.freeTemp[n-1]
		p.freeTemp = p.freeTemp[:n-1]
		return r
	}
	p.nextTemp++
	r := p.nextTemp
	if r > p.maxTemp {
		p.maxTemp = r
	}
	return r
}

func (p *classPool) release(reg int) {
	if reg <= 0 {
		return // only temporaries are individually released (spec §4.11)
	}
	p.freeTemp = append(p.freeTemp, reg)
}

// registerFile holds one classPool per boxvalue.StorageType.
type registerFile [int(boxvalue.StoreObj) + 1]classPool

func (rf *registerFile) allocVar(s boxvalue.StorageType) int  { return rf[s].allocVar() }
func (rf *registerFile) allocTemp(s boxvalue.StorageType) int { return rf[s].allocTemp() }
func (rf *registerFile) release(s boxvalue.StorageType, reg int) { rf[s].release(reg) }

// outstanding reports how many temporaries this pool has issued but
// not yet seen released back onto freeTemp (spec §8 invariant 3:
// "at end of compile, no temporary register is still marked
// allocated").
func (p *classPool) outstanding() int { return p.nextTemp - len(p.freeTemp) }
