package boxvalue

import "testing"

func TestTrackerMarkAndLeaksSince(t *testing.T) {
	tr := NewTracker()
	mark := tr.Mark()
	if mark != 0 {
		t.Fatalf("want mark 0 on a fresh tracker, got %d", mark)
	}

	v1 := &Value{Kind: KindTemp}
	tr.Track(v1, "temp-1")
	v2 := &Value{Kind: KindTemp}
	tr.Track(v2, "temp-2")

	leaks := tr.LeaksSince(mark)
	if len(leaks) != 2 {
		t.Fatalf("want 2 leaked allocations, got %d: %v", len(leaks), leaks)
	}

	tr.Untrack(v1)
	tr.Untrack(v2)
	if leaks := tr.LeaksSince(mark); len(leaks) != 0 {
		t.Fatalf("want no leaks after untracking everything, got %v", leaks)
	}
}

func TestTrackerScopedMark(t *testing.T) {
	tr := NewTracker()
	outer := &Value{Kind: KindTemp}
	tr.Track(outer, "outer")

	mark := tr.Mark()
	inner := &Value{Kind: KindTemp}
	tr.Track(inner, "inner")

	leaks := tr.LeaksSince(mark)
	if len(leaks) != 1 || leaks[0] != "inner" {
		t.Fatalf("want only the post-mark allocation reported, got %v", leaks)
	}

	tr.Untrack(inner)
	tr.Untrack(outer)
}

func TestNilTrackerIsInert(t *testing.T) {
	var tr *Tracker
	tr.Track(&Value{}, "x")
	tr.Untrack(&Value{})
	if tr.Mark() != 0 {
		t.Fatal("a nil tracker must report mark 0")
	}
	if leaks := tr.LeaksSince(0); leaks != nil {
		t.Fatalf("a nil tracker must never report leaks, got %v", leaks)
	}
}
