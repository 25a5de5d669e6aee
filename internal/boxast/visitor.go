package boxast

// ExprVisitor is the one-method-per-node-class dispatch surface (spec
// §9 design notes: "the X-macro list of node types" collapses to a
// single visitor interface — Go's exhaustiveness is enforced at the
// call site: any concrete visitor missing a method fails to compile,
// no runtime "unexpected kind" fatal is reachable).
type ExprVisitor interface {
	VisitCharLit(*CharLit) interface{}
	VisitIntLit(*IntLit) interface{}
	VisitRealLit(*RealLit) interface{}
	VisitStringLit(*StringLit) interface{}
	VisitIdentifier(*Identifier) interface{}
	VisitBinary(*Binary) interface{}
	VisitUnary(*Unary) interface{}
	VisitAssign(*Assign) interface{}
	VisitGet(*Get) interface{}
	VisitCall(*Call) interface{}
	VisitCompound(*Compound) interface{}
	VisitTypeRef(*TypeRef) interface{}
	VisitRaisedType(*RaisedTypeExpr) interface{}
	VisitPointerType(*PointerTypeExpr) interface{}
	VisitDeref(*DerefExpr) interface{}
	VisitAddrOf(*AddrOfExpr) interface{}
	VisitSubtype(*SubtypeExpr) interface{}
	VisitTypeDef(*TypeDef) interface{}
	VisitCombinationDef(*CombinationDef) interface{}
	VisitBox(*Box) interface{}
}
