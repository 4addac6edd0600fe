package lower

import (
	"github.com/hlslfe/compiler/pkg/hlslast"
	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/ir"
	"github.com/hlslfe/compiler/pkg/token"
)

// lowerStmts lowers a statement list into list, in order (spec section
// 4.7). Each statement kind either appends directly to list or, for the
// loop forms, lowers to the IR's single common ir.KindLoop shape.
func (b *Builder) lowerStmts(stmts []*hlslast.Stmt, list *ir.InstrList) {
	for _, s := range stmts {
		b.lowerStmt(s, list)
	}
}

func (b *Builder) lowerStmt(s *hlslast.Stmt, list *ir.InstrList) {
	switch {
	case s.VarDecl != nil:
		b.lowerLocalVarDecl(s.VarDecl, list)
	case s.If != nil:
		b.lowerIf(s.If, list)
	case s.While != nil:
		b.lowerWhile(s.While, list)
	case s.DoWhile != nil:
		b.lowerDoWhile(s.DoWhile, list)
	case s.For != nil:
		b.lowerFor(s.For, list)
	case s.Return != nil:
		b.lowerReturn(s.Return, list)
	case s.Break != nil:
		b.emit(list, ir.Node{
			Kind: ir.KindJump, Pos: b.pos(s.Break.Pos),
			Payload: &ir.JumpData{JumpKind: ir.JumpBreak},
		})
	case s.Continue != nil:
		b.emit(list, ir.Node{
			Kind: ir.KindJump, Pos: b.pos(s.Continue.Pos),
			Payload: &ir.JumpData{JumpKind: ir.JumpContinue},
		})
	case s.Nested != nil:
		b.pushScope()
		b.lowerStmts(s.Nested.Stmts, list)
		b.popScope()
	case s.ExprStmt != nil:
		b.lowerExpr(s.ExprStmt.Expr, list)
	}
}

func (b *Builder) lowerLocalVarDecl(d *hlslast.LocalVarDecl, list *ir.InstrList) {
	base := b.resolveType(d.Type, b.pos(d.Pos))
	mods := b.convertModifiers(d.Mods)
	for _, decl := range d.Names {
		b.declareVarWithInit(base, mods, decl, list)
	}
}

func (b *Builder) lowerLocalVarDeclNoSemi(d *hlslast.LocalVarDeclNoSemi, list *ir.InstrList) {
	base := b.resolveType(d.Type, b.pos(d.Pos))
	mods := b.convertModifiers(d.Mods)
	for _, decl := range d.Names {
		b.declareVarWithInit(base, mods, decl, list)
	}
}

// declareVarWithInit declares decl in the current scope and, if it carries
// an initializer, lowers it and emits the store (spec section 4.3: a
// declaration with an initializer behaves as the declaration immediately
// followed by an assignment).
func (b *Builder) declareVarWithInit(base *hlsltype.Type, mods hlsltype.Modifier, decl *hlslast.Declarator, list *ir.InstrList) {
	v := b.declareVar(base, mods, decl, false)
	if decl.Init == nil {
		return
	}
	pos := b.pos(decl.Pos)
	lhs := b.emit(list, ir.Node{
		Kind: ir.KindVarDeref, Pos: pos, Type: v.Type,
		Payload: &ir.VarDerefData{Var: v},
	})
	b.lowerInitializerInto(lhs, v.Type, decl.Init, pos, list)
}

// lowerInitializerInto lowers init against target's type and emits the
// store(s) needed to assign it into lhs (spec section 4.3
// "Initialization"): a plain expression becomes one Assignment; a compound
// initializer is expanded per lowerCompoundInitInto.
func (b *Builder) lowerInitializerInto(lhs ir.NodeHandle, target *hlsltype.Type, init *hlslast.Initializer, pos token.Pos, list *ir.InstrList) {
	if init.Compound != nil {
		b.lowerCompoundInitInto(lhs, target, init.Compound, pos, list)
		return
	}
	rhs := b.lowerExpr(init.Expr, list)
	rhs = b.convertAssignable(rhs, target, pos, list)
	b.emit(list, ir.Node{
		Kind: ir.KindAssignment, Pos: pos, Type: target,
		Payload: &ir.AssignmentData{LValue: lhs, Op: ir.AssignPlain, RHS: rhs},
	})
}

// lowerCompoundInitInto lowers a brace-delimited `{ ... }` initializer
// against target (spec section 4.3): a struct initializer becomes one
// Assignment per field, matched positionally against target's field list,
// via record-deref targets and matching-size right-hand sides; a mismatch
// in field count is reported as unimplemented rather than an error. A
// numeric scalar/vector/matrix compound initializer is lowered the same
// way a constructor call is (its flattened total component count must
// equal target's). Array targets and nested compound initializers beyond
// these rules are reported as unimplemented, matching this front end's
// error-kind taxonomy for "recognized but not lowered" constructs.
func (b *Builder) lowerCompoundInitInto(lhs ir.NodeHandle, target *hlsltype.Type, c *hlslast.CompoundInit, pos token.Pos, list *ir.InstrList) {
	switch target.Class {
	case hlsltype.ClassStruct:
		if len(c.Elements) != len(target.Fields) {
			b.Diags.Unimplementedf(pos, "struct initializer for %s expects %d fields, got %d", target, len(target.Fields), len(c.Elements))
			return
		}
		for i, f := range target.Fields {
			fieldLHS := b.emit(list, ir.Node{
				Kind: ir.KindRecordDeref, Pos: pos, Type: f.Type,
				Payload: &ir.RecordDerefData{Base: lhs, Field: f},
			})
			b.lowerInitializerInto(fieldLHS, f.Type, c.Elements[i], pos, list)
		}

	case hlsltype.ClassArray:
		b.Diags.Unimplementedf(pos, "array initializer for %s", target)

	case hlsltype.ClassScalar, hlsltype.ClassVector, hlsltype.ClassMatrix:
		args := make([]ir.NodeHandle, 0, len(c.Elements))
		total := 0
		for _, e := range c.Elements {
			if e.Compound != nil {
				b.Diags.Unimplementedf(pos, "nested compound initializer for %s", target)
				continue
			}
			h := b.lowerExpr(e.Expr, list)
			args = append(args, h)
			if t := b.Arena.Get(h).Type; t != nil {
				total += t.ComponentCount()
			}
		}
		if total != target.ComponentCount() {
			b.Diags.Errorf(pos, "initializer for %s expects %d components, got %d", target, target.ComponentCount(), total)
		}
		rhs := b.emit(list, ir.Node{
			Kind: ir.KindConstructor, Pos: pos, Type: target,
			Payload: &ir.ConstructorData{Args: args},
		})
		b.emit(list, ir.Node{
			Kind: ir.KindAssignment, Pos: pos, Type: target,
			Payload: &ir.AssignmentData{LValue: lhs, Op: ir.AssignPlain, RHS: rhs},
		})

	default:
		b.Diags.Unimplementedf(pos, "compound initializer for %s", target)
	}
}

// negate emits the logical-not of h, used to turn a loop continuation
// condition into the break condition the common loop shape tests (spec
// section 4.7: while/do-while/for all lower to "loop body begins/ends with
// if (!cond) break").
func (b *Builder) negate(h ir.NodeHandle, pos token.Pos, list *ir.InstrList) ir.NodeHandle {
	return b.emit(list, ir.Node{
		Kind: ir.KindExpr, Pos: pos, Type: b.Reg.NewScalar(hlsltype.BaseBool),
		Payload: &ir.ExprData{Op: ir.OpNot, Operands: [3]ir.NodeHandle{h, 0, 0}},
	})
}

// breakIf emits `if (!cond) break` into body, the shape every loop variant
// uses to terminate.
func (b *Builder) breakIf(cond *hlslast.Expr, pos token.Pos, body *ir.InstrList) {
	c := b.lowerExpr(cond, body)
	if ct := b.Arena.Get(c).Type; ct != nil && !ct.IsScalar() {
		b.Diags.Errorf(pos, "loop condition must be a scalar")
	}
	neg := b.negate(c, pos, body)

	var then ir.InstrList
	b.emit(&then, ir.Node{Kind: ir.KindJump, Pos: pos, Payload: &ir.JumpData{JumpKind: ir.JumpBreak}})

	b.emit(body, ir.Node{
		Kind: ir.KindIf, Pos: pos,
		Payload: &ir.IfData{Cond: neg, Then: then},
	})
}

func (b *Builder) lowerIf(s *hlslast.IfStmt, list *ir.InstrList) {
	pos := b.pos(s.Pos)
	cond := b.lowerExpr(s.Cond, list)
	if ct := b.Arena.Get(cond).Type; ct != nil && !ct.IsScalar() {
		b.Diags.Errorf(pos, "if condition must be a scalar")
	}

	var then ir.InstrList
	b.pushScope()
	b.lowerStmts(s.Then.Stmts, &then)
	b.popScope()

	var els ir.InstrList
	if s.Else != nil {
		switch {
		case s.Else.If != nil:
			b.lowerIf(s.Else.If, &els)
		case s.Else.Body != nil:
			b.pushScope()
			b.lowerStmts(s.Else.Body.Stmts, &els)
			b.popScope()
		}
	}

	b.emit(list, ir.Node{
		Kind: ir.KindIf, Pos: pos,
		Payload: &ir.IfData{Cond: cond, Then: then, Else: els},
	})
}

func (b *Builder) lowerWhile(s *hlslast.WhileStmt, list *ir.InstrList) {
	pos := b.pos(s.Pos)
	var body ir.InstrList
	b.breakIf(s.Cond, pos, &body)

	b.pushScope()
	b.lowerStmts(s.Body.Stmts, &body)
	b.popScope()

	b.emit(list, ir.Node{Kind: ir.KindLoop, Pos: pos, Payload: &ir.LoopData{Body: body}})
}

func (b *Builder) lowerDoWhile(s *hlslast.DoWhileStmt, list *ir.InstrList) {
	pos := b.pos(s.Pos)
	var body ir.InstrList

	b.pushScope()
	b.lowerStmts(s.Body.Stmts, &body)
	b.popScope()

	b.breakIf(s.Cond, pos, &body)

	b.emit(list, ir.Node{Kind: ir.KindLoop, Pos: pos, Payload: &ir.LoopData{Body: body}})
}

func (b *Builder) lowerFor(s *hlslast.ForStmt, list *ir.InstrList) {
	pos := b.pos(s.Pos)
	b.pushScope()
	defer b.popScope()

	if s.Init != nil {
		switch {
		case s.Init.Decl != nil:
			b.lowerLocalVarDeclNoSemi(s.Init.Decl, list)
		case s.Init.Expr != nil:
			b.lowerExpr(s.Init.Expr, list)
		}
	}

	var body ir.InstrList
	if s.Cond != nil {
		b.breakIf(s.Cond, pos, &body)
	}

	b.pushScope()
	b.lowerStmts(s.Body.Stmts, &body)
	b.popScope()

	if s.Post != nil {
		b.lowerExpr(s.Post, &body)
	}

	b.emit(list, ir.Node{Kind: ir.KindLoop, Pos: pos, Payload: &ir.LoopData{Body: body}})
}

// isVoid reports whether t is the singleton void object type.
func isVoid(t *hlsltype.Type) bool {
	return t != nil && t.Class == hlsltype.ClassObject && t.ObjectKind == hlsltype.ObjectNone
}

// lowerReturn lowers `return [expr];`, coercing a returned value to the
// enclosing function's declared return type (spec section 4.5).
func (b *Builder) lowerReturn(s *hlslast.ReturnStmt, list *ir.InstrList) {
	pos := b.pos(s.Pos)
	var val ir.NodeHandle
	if s.Value != nil {
		val = b.lowerExpr(s.Value, list)
		if b.curFunc != nil {
			val = b.convertAssignable(val, b.curFunc.ReturnType, pos, list)
		}
	} else if b.curFunc != nil && !isVoid(b.curFunc.ReturnType) {
		b.Diags.Errorf(pos, "non-void function %q must return a value", b.curFunc.Name)
	}

	b.emit(list, ir.Node{
		Kind: ir.KindJump, Pos: pos,
		Payload: &ir.JumpData{JumpKind: ir.JumpReturn, ReturnValue: val},
	})
}
