// driver_box.go implements spec §4.6, the Box algorithm: the
// language's one block construct, statement separators, the
// Begin/Pause/End bracketing calls, and the If/For control-flow
// sugar that rides on a statement's combination-call failing to
// match.
package boxcompiler

import (
	"boxc/internal/boxast"
	"boxc/internal/boxdiag"
	"boxc/internal/boxvalue"
	"boxc/internal/boxvm"
)

// VisitBox evaluates the box's parent, binds it as `#` for the
// duration of a fresh namespace floor, brackets the statement list
// with Begin/End hook calls, and threads Pause between comma-separated
// statements. The box's own value is whatever `#` ends up as.
func (c *Compiler) VisitBox(n *boxast.Box) interface{} {
	var parent *boxvalue.Value
	if n.Parent != nil {
		n.Parent.Accept(c)
		parent = c.popValue()
	} else {
		parent = c.weakCopySingleton(c.vVoid)
	}
	if parent.IsErrorKind() {
		parent.Destroy()
		c.pushError(1)
		return nil
	}

	c.NS.FloorUp()
	parent.LinkToNamespace(c.NS, "#")
	boxParent := func() *boxvalue.Value {
		v, _ := c.NS.Lookup("#")
		return c.weakCopySingleton(v)
	}

	c.emitHook(n.Position(), boxParent(), c.vBegin)

	i := 0
	for i < len(n.Stmts) {
		stmt := n.Stmts[i]
		if i > 0 && stmt.Sep == boxast.SepPause {
			c.emitHook(n.Position(), boxParent(), c.vPause)
		}
		if c.tryControlFlow(n, &i) {
			continue
		}

		stmt.Expr.Accept(c)
		v := c.popValue()
		if v.IsErrorKind() {
			v.Destroy()
			i++
			continue
		}
		if v.IsIgnorable() {
			v.Destroy()
			i++
			continue
		}
		pv := boxParent()
		res, err := c.emitCall(stmt.Expr.Position(), pv, v)
		if err != nil {
			c.warnf(stmt.Expr.Position(), "don't know how to use `%s` in `%s` box", c.Sys.String(v.Type), c.Sys.String(pv.Type))
			pv.Destroy()
			v.Destroy()
		} else {
			res.Destroy()
		}
		i++
	}

	c.emitHook(n.Position(), boxParent(), c.vEnd)

	result := boxParent()
	c.NS.FloorDown()
	c.pushValue(result)
	return nil
}

// emitHook calls a bracketing combination (Begin/Pause/End) against
// the box's current parent. A missing combination is not an error:
// these hooks are opt-in instrumentation, not required overloads.
func (c *Compiler) emitHook(pos boxdiag.Pos, parent *boxvalue.Value, marker *boxvalue.Value) {
	child := c.weakCopySingleton(marker)
	res, err := c.emitCall(pos, parent, child)
	if err != nil {
		parent.Destroy()
		child.Destroy()
		return
	}
	res.Destroy()
}

// controlMarkerCall reports whether e is a combination call whose
// child is a bare `If`/`Else`/`For` identifier — the sugar a
// statement list uses to mark a conditional or loop boundary, caught
// here rather than sent through ordinary emit_call (spec §4.6's
// control-flow-via-failed-match design note).
func controlMarkerCall(e boxast.Expr) (condExpr boxast.Expr, name string, ok bool) {
	call, isCall := e.(*boxast.Call)
	if !isCall {
		return nil, "", false
	}
	ident, isIdent := call.Child.(*boxast.Identifier)
	if !isIdent {
		return nil, "", false
	}
	switch ident.Name {
	case "If", "Else", "For":
		return call.Parent, ident.Name, true
	}
	return nil, "", false
}

// tryControlFlow consumes and compiles an If or For construct
// starting at *i, advancing *i past everything it consumed. A bare
// Else with no preceding If is left for the ordinary statement path,
// which will report it as an unmatched combination.
func (c *Compiler) tryControlFlow(n *boxast.Box, i *int) bool {
	condExpr, name, ok := controlMarkerCall(n.Stmts[*i].Expr)
	if !ok {
		return false
	}
	switch name {
	case "If":
		c.compileIf(n, i, condExpr)
		return true
	case "For":
		c.compileFor(n, i, condExpr)
		return true
	default:
		return false
	}
}

// compileIf lowers `cond[If] thenStmt [cond2[Else] elseStmt]` into a
// conditional jump around the then-branch, with the else-branch (if
// present) compiled on the fallthrough path.
func (c *Compiler) compileIf(n *boxast.Box, i *int, condExpr boxast.Expr) {
	*i++
	var thenStmt boxast.Expr
	if *i < len(n.Stmts) {
		thenStmt = n.Stmts[*i].Expr
		*i++
	}
	var elseStmt boxast.Expr
	if *i < len(n.Stmts) {
		if _, name, ok := controlMarkerCall(n.Stmts[*i].Expr); ok && name == "Else" {
			*i++
			if *i < len(n.Stmts) {
				elseStmt = n.Stmts[*i].Expr
				*i++
			}
		}
	}

	condExpr.Accept(c)
	cond := c.popValue()
	if cond.IsErrorKind() {
		cond.Destroy()
		return
	}

	thenLabel := c.proc.NewLabel()
	endLabel := c.proc.NewLabel()
	c.proc.EmitJump(boxvm.OpJC_I, &cond.Cont, thenLabel)
	cond.Destroy()

	if elseStmt != nil {
		elseStmt.Accept(c)
		c.popValue().Destroy()
	}
	c.proc.EmitJump(boxvm.OpJMP_I, nil, endLabel)

	c.proc.BindLabel(thenLabel)
	if thenStmt != nil {
		thenStmt.Accept(c)
		c.popValue().Destroy()
	}
	c.proc.BindLabel(endLabel)
}

// compileFor lowers `cond[For] bodyStmt` into a condition-up-front
// loop: re-evaluating condExpr once per iteration.
func (c *Compiler) compileFor(n *boxast.Box, i *int, condExpr boxast.Expr) {
	*i++
	var bodyStmt boxast.Expr
	if *i < len(n.Stmts) {
		bodyStmt = n.Stmts[*i].Expr
		*i++
	}

	condLabel := c.proc.NewLabel()
	bodyLabel := c.proc.NewLabel()
	endLabel := c.proc.NewLabel()

	c.proc.BindLabel(condLabel)
	condExpr.Accept(c)
	cond := c.popValue()
	if cond.IsErrorKind() {
		cond.Destroy()
		return
	}
	c.proc.EmitJump(boxvm.OpJC_I, &cond.Cont, bodyLabel)
	cond.Destroy()
	c.proc.EmitJump(boxvm.OpJMP_I, nil, endLabel)

	c.proc.BindLabel(bodyLabel)
	if bodyStmt != nil {
		bodyStmt.Accept(c)
		c.popValue().Destroy()
	}
	c.proc.EmitJump(boxvm.OpJMP_I, nil, condLabel)
	c.proc.BindLabel(endLabel)
}
