// Package boxast is the AST collaborator contract (spec §1, §6.2):
// the lexer/parser is out of this core's scope and is assumed to hand
// over a ready-made tree of tagged nodes with source positions. This
// package defines that tree's shape — one type per node class, each
// accepting an ExprVisitor — grounded in the teacher's own
// Expr/Accept(visitor) pattern (internal/parser/ast.go, stmt.go), but
// carrying Box's node set instead of Sentra's.
package boxast

import (
	"boxc/internal/boxdiag"
	"boxc/internal/boxops"
	"boxc/internal/boxtype"
)

// Expr is any Box expression node. Position is forwarded verbatim to
// diagnostics; the core never recomputes it.
type Expr interface {
	Accept(v ExprVisitor) interface{}
	Position() boxdiag.Pos
}

type base struct{ Pos boxdiag.Pos }

func (b base) Position() boxdiag.Pos { return b.Pos }

// CharLit, IntLit, RealLit, StringLit are the four immediate literal
// kinds spec §6.2 calls out by name.
type CharLit struct {
	base
	Value byte
}

func (n *CharLit) Accept(v ExprVisitor) interface{} { return v.VisitCharLit(n) }

type IntLit struct {
	base
	Value int64
}

func (n *IntLit) Accept(v ExprVisitor) interface{} { return v.VisitIntLit(n) }

type RealLit struct {
	base
	Value float64
}

func (n *RealLit) Accept(v ExprVisitor) interface{} { return v.VisitRealLit(n) }

type StringLit struct {
	base
	Value string
}

func (n *StringLit) Accept(v ExprVisitor) interface{} { return v.VisitStringLit(n) }

// Identifier is a bare name: resolved at compile time to a var-name,
// a type-name, or (once bound) a value/type Value (spec §3.3).
type Identifier struct {
	base
	Name string
}

func (n *Identifier) Accept(v ExprVisitor) interface{} { return v.VisitIdentifier(n) }

// Binary is a two-operand operator application.
type Binary struct {
	base
	Op          boxops.BinaryOp
	Left, Right Expr
}

func (n *Binary) Accept(v ExprVisitor) interface{} { return v.VisitBinary(n) }

// Unary is a one-operand operator application. Postfix is true for
// `x++`/`x--` (spec §4.4 right_un scheme).
type Unary struct {
	base
	Op      boxops.UnaryOp
	Operand Expr
	Postfix bool
}

func (n *Unary) Accept(v ExprVisitor) interface{} { return v.VisitUnary(n) }

// Assign is `left = right`. Left may be an Identifier (possibly
// undeclared — spec §4.4's assignment special case) or any expression
// that can resolve to a target.
type Assign struct {
	base
	Left, Right Expr
}

func (n *Assign) Accept(v ExprVisitor) interface{} { return v.VisitAssign(n) }

// Get is member access, `parent.name` (spec §4.9). Parent == nil
// means the default receiver `#`.
type Get struct {
	base
	Parent Expr
	Name   string
}

func (n *Get) Accept(v ExprVisitor) interface{} { return v.VisitGet(n) }

// Call is a combination call `parent[child]` / `parent @ child`
// (spec §4.5). Parent == nil means Void.
type Call struct {
	base
	Parent Expr
	Child  Expr
}

func (n *Call) Accept(v ExprVisitor) interface{} { return v.VisitCall(n) }

// CompoundKind selects which of the four compound shapes spec §4.8
// describes a Compound node represents.
type CompoundKind int

const (
	CompoundIdentity CompoundKind = iota
	CompoundStructureValue
	CompoundStructureType
	CompoundSpeciesType
)

// CompoundMember is one element of a compound node: Name is optional
// (empty means positional), Value is set for structure-value members,
// Type is set for structure-type/species-type members.
type CompoundMember struct {
	Name  string
	Value Expr
	Type  Expr
}

// Compound is a parenthesised expression, a tuple-like structure
// value, a structure type, or a species type (spec §4.8).
type Compound struct {
	base
	Kind    CompoundKind
	Members []CompoundMember
}

func (n *Compound) Accept(v ExprVisitor) interface{} { return v.VisitCompound(n) }

// TypeRef is an explicit bare type-name reference.
type TypeRef struct {
	base
	Name string
}

func (n *TypeRef) Accept(v ExprVisitor) interface{} { return v.VisitTypeRef(n) }

// RaisedTypeExpr builds a raised type wrapping Source (spec §4.7).
type RaisedTypeExpr struct {
	base
	Name   string
	Source Expr
}

func (n *RaisedTypeExpr) Accept(v ExprVisitor) interface{} { return v.VisitRaisedType(n) }

// PointerTypeExpr builds a pointer type over Of (spec §4.7).
type PointerTypeExpr struct {
	base
	Of Expr
}

func (n *PointerTypeExpr) Accept(v ExprVisitor) interface{} { return v.VisitPointerType(n) }

// DerefExpr dereferences a pointer value (spec §4.7: "emits a notnul
// guard and reinterprets the cell").
type DerefExpr struct {
	base
	Of Expr
}

func (n *DerefExpr) Accept(v ExprVisitor) interface{} { return v.VisitDeref(n) }

// AddrOfExpr takes the address of an operand (`&x`).
type AddrOfExpr struct {
	base
	Of Expr
}

func (n *AddrOfExpr) Accept(v ExprVisitor) interface{} { return v.VisitAddrOf(n) }

// SubtypeExpr is `parent.name[]` (spec §4.9 subtype build).
type SubtypeExpr struct {
	base
	Parent Expr
	Name   string
	Child  Expr // optional declared child type expression
}

func (n *SubtypeExpr) Accept(v ExprVisitor) interface{} { return v.VisitSubtype(n) }

// TypeDef is `TypeIdent = TypeExpr` (spec §4.7).
type TypeDef struct {
	base
	Name string
	RHS  Expr
}

func (n *TypeDef) Accept(v ExprVisitor) interface{} { return v.VisitTypeDef(n) }

// CombinationDef is `child @ parent ? "c_name" [ body ]` (spec §4.7).
// Body == nil means a prototype-only declaration.
type CombinationDef struct {
	base
	Child, Parent Expr
	Kind          boxtype.CombinationKind
	CSymbol       string
	Body          *Box
}

func (n *CombinationDef) Accept(v ExprVisitor) interface{} { return v.VisitCombinationDef(n) }
