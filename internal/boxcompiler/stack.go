package boxcompiler

import "boxc/internal/boxvalue"

// pushValue implements spec §4.3 push_value: ownership of v passes to
// the stack.
func (c *Compiler) pushValue(v *boxvalue.Value) {
	c.stack = append(c.stack, v)
}

// popValue implements spec §4.3 pop_value: ownership passes to the
// caller, who must eventually Destroy or re-push it. Popping an empty
// stack is a driver bug, not a user error, but still returns a safe
// error-kind Value instead of panicking, so a single handler mistake
// degrades to a bogus diagnostic rather than a crash.
func (c *Compiler) popValue() *boxvalue.Value {
	n := len(c.stack)
	if n == 0 {
		return boxvalue.NewError()
	}
	v := c.stack[n-1]
	c.stack = c.stack[:n-1]
	if v == nil {
		return boxvalue.NewError()
	}
	return v
}

// getValue implements spec §4.3 get_value: a borrowed look at the
// item posFromTop slots below the top (0 is the top itself), without
// removing it.
func (c *Compiler) getValue(posFromTop int) *boxvalue.Value {
	idx := len(c.stack) - 1 - posFromTop
	if idx < 0 || idx >= len(c.stack) {
		return boxvalue.NewError()
	}
	return c.stack[idx]
}

// removeAny implements spec §4.3 remove_any: pop and Destroy the top
// n items, discarding their results.
func (c *Compiler) removeAny(n int) {
	for i := 0; i < n && len(c.stack) > 0; i++ {
		c.popValue().Destroy()
	}
}

// pushError implements spec §4.3 push_error: push n fresh error-kind
// markers.
func (c *Compiler) pushError(n int) {
	for i := 0; i < n; i++ {
		c.pushValue(boxvalue.NewError())
	}
}

// popErrors implements spec §4.3 pop_errors: if any of the top k
// items is an error marker, the whole group is poisoned — remove all
// k and push n fresh markers in their place, reporting true so the
// caller's node handler can return early without emitting anything.
func (c *Compiler) popErrors(k, n int) bool {
	poisoned := false
	for i := 0; i < k; i++ {
		if c.getValue(i).IsErrorKind() {
			poisoned = true
			break
		}
	}
	if poisoned {
		c.removeAny(k)
		c.pushError(n)
	}
	return poisoned
}
