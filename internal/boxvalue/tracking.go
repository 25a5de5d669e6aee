package boxvalue

// Tracker is the debug/test-build allocation list mentioned in spec
// §4.1: "the compiler maintains a scoped list of Value allocations so
// leaks at AST-node boundaries are detectable." It is opt-in (nil
// Tracker means untracked, zero overhead) so release builds pay
// nothing for it.
type Tracker struct {
	live map[*Value]tracked
	next int // sequence number handed to the next Track call
}

// tracked is one live entry: its debug label (node kind, name) and the
// order in which it was registered.
type tracked struct {
	label string
	seq   int
}

func NewTracker() *Tracker {
	return &Tracker{live: make(map[*Value]tracked)}
}

// Track registers a freshly created Value under a debug label
// (typically the AST node kind that created it).
func (t *Tracker) Track(v *Value, label string) {
	if t == nil || v == nil {
		return
	}
	t.live[v] = tracked{label: label, seq: t.next}
	t.next++
}

// Untrack removes v from the live set. Finish/Destroy do not call it;
// LeaksSince skips Values that have been finished either way.
func (t *Tracker) Untrack(v *Value) {
	if t == nil {
		return
	}
	delete(t.live, v)
}

// Mark returns the sequence number the next tracked Value will get,
// used as the "scope floor" at node entry, paired with LeaksSince at
// node exit (spec §8 invariant 4: "the number of leaked Values inside
// each node handler is 0").
func (t *Tracker) Mark() int {
	if t == nil {
		return 0
	}
	return t.next
}

// LeaksSince reports the debug labels of every Value tracked at or
// after mark that is still alive: neither untracked nor finished. A
// non-empty result means the node handler that ran between Mark and
// LeaksSince leaked. The order of the labels is unspecified.
func (t *Tracker) LeaksSince(mark int) []string {
	if t == nil {
		return nil
	}
	var out []string
	for v, e := range t.live {
		if e.seq >= mark && !v.finished {
			out = append(out, e.label)
		}
	}
	return out
}

// TrackCreate creates a fresh error-kind Value and registers it with t
// under label, so a single allocation site can do both in one call.
func TrackCreate(t *Tracker, label string) *Value {
	v := NewError()
	t.Track(v, label)
	return v
}
