package lower

import (
	"strconv"
	"strings"

	"github.com/hlslfe/compiler/pkg/hlslast"
	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/ir"
	"github.com/hlslfe/compiler/pkg/scope"
	"github.com/hlslfe/compiler/pkg/token"
)

// lowerExpr lowers one hlslast.Expr into the IR, appending every
// instruction it builds (sub-expressions included) to list in evaluation
// order (spec invariant 2: every operand precedes its consumer within the
// list that contains both).
func (b *Builder) lowerExpr(e *hlslast.Expr, list *ir.InstrList) ir.NodeHandle {
	lhs := b.lowerTernary(e.Cond, list)
	if e.Assign == nil {
		return lhs
	}
	return b.lowerAssign(lhs, e.Assign, list)
}

func (b *Builder) lowerAssign(lhs ir.NodeHandle, tail *hlslast.AssignTail, list *ir.InstrList) ir.NodeHandle {
	rhs := b.lowerExpr(tail.Value, list)
	p := b.pos(tail.Pos)

	lnode := b.Arena.Get(lhs)
	if lnode.Type != nil && lnode.Type.Modifiers.Has(hlsltype.ModConst) {
		b.Diags.Errorf(p, "cannot assign to a const value")
	}

	op := ir.AssignPlain
	switch tail.Op {
	case "+=":
		op = ir.AssignAdd
	case "-=":
		op = ir.AssignSub
	case "*=":
		op = ir.AssignMul
	case "/=":
		op = ir.AssignDiv
	case "%=":
		op = ir.AssignMod
	}
	if bop := op.BinaryOp(); bop != ir.OpNone {
		rhs = b.binExpr(bop, lhs, rhs, p, list)
	}

	rhs = b.convertAssignable(rhs, lnode.Type, p, list)

	return b.emit(list, ir.Node{
		Kind: ir.KindAssignment,
		Pos:  p,
		Type: lnode.Type,
		Payload: &ir.AssignmentData{
			LValue: lhs,
			Op:     op,
			RHS:    rhs,
		},
	})
}

func (b *Builder) lowerTernary(t *hlslast.Ternary, list *ir.InstrList) ir.NodeHandle {
	cond := b.lowerLogicOr(t.Cond, list)
	if t.Then == nil {
		return cond
	}
	pos := b.pos(t.Pos)
	if ct := b.Arena.Get(cond).Type; ct != nil && !ct.IsScalar() {
		b.Diags.Errorf(pos, "ternary condition must be a scalar")
	}
	thenH := b.lowerExpr(t.Then, list)
	elseH := b.lowerExpr(t.Else, list)
	resultType := b.Arena.Get(thenH).Type
	elseH = b.convertAssignable(elseH, resultType, pos, list)

	return b.emit(list, ir.Node{
		Kind: ir.KindExpr,
		Pos:  pos,
		Type: resultType,
		Payload: &ir.ExprData{
			Op:       ir.OpTernary,
			Operands: [3]ir.NodeHandle{cond, thenH, elseH},
		},
	})
}

func (b *Builder) lowerLogicOr(n *hlslast.LogicOr, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerLogicAnd(n.Left, list)
	for _, r := range n.Rest {
		right := b.lowerLogicAnd(r.Right, list)
		cur = b.binExpr(ir.OpLogicOr, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerLogicAnd(n *hlslast.LogicAnd, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerBitOr(n.Left, list)
	for _, r := range n.Rest {
		right := b.lowerBitOr(r.Right, list)
		cur = b.binExpr(ir.OpLogicAnd, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerBitOr(n *hlslast.BitOr, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerBitXor(n.Left, list)
	for _, r := range n.Rest {
		right := b.lowerBitXor(r.Right, list)
		cur = b.binExpr(ir.OpBitOr, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerBitXor(n *hlslast.BitXor, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerBitAnd(n.Left, list)
	for _, r := range n.Rest {
		right := b.lowerBitAnd(r.Right, list)
		cur = b.binExpr(ir.OpBitXor, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerBitAnd(n *hlslast.BitAnd, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerEquality(n.Left, list)
	for _, r := range n.Rest {
		right := b.lowerEquality(r.Right, list)
		cur = b.binExpr(ir.OpBitAnd, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerEquality(n *hlslast.Equality, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerRelational(n.Left, list)
	for _, r := range n.Rest {
		right := b.lowerRelational(r.Right, list)
		op := ir.OpEqual
		if r.Op == "!=" {
			op = ir.OpNotEqual
		}
		cur = b.binExpr(op, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerRelational(n *hlslast.Relational, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerShift(n.Left, list)
	for _, r := range n.Rest {
		var op ir.Op
		switch r.Op {
		case "<":
			op = ir.OpLess
		case ">":
			op = ir.OpGreater
		case "<=":
			op = ir.OpLessEq
		case ">=":
			op = ir.OpGreaterEq
		}
		right := b.lowerShift(r.Right, list)
		cur = b.binExpr(op, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerShift(n *hlslast.Shift, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerAdditive(n.Left, list)
	for _, r := range n.Rest {
		op := ir.OpShl
		if r.Op == ">>" {
			op = ir.OpShr
		}
		right := b.lowerAdditive(r.Right, list)
		cur = b.binExpr(op, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerAdditive(n *hlslast.Additive, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerMultiplicative(n.Left, list)
	for _, r := range n.Rest {
		op := ir.OpAdd
		if r.Op == "-" {
			op = ir.OpSub
		}
		right := b.lowerMultiplicative(r.Right, list)
		cur = b.binExpr(op, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

func (b *Builder) lowerMultiplicative(n *hlslast.Multiplicative, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerUnary(n.Left, list)
	for _, r := range n.Rest {
		var op ir.Op
		switch r.Op {
		case "*":
			op = ir.OpMul
		case "/":
			op = ir.OpDiv
		case "%":
			op = ir.OpMod
		}
		right := b.lowerUnary(r.Right, list)
		cur = b.binExpr(op, cur, right, b.pos(r.Pos), list)
	}
	return cur
}

// binExpr builds a binary KindExpr node. The result type is the wider of
// the two numeric operand types (spec section 4.6: the narrower operand
// converts up, never down), except for comparison/logical operators,
// which always produce bool (vector bool, matching the wider operand's
// component count). Bitwise and shift operators report an error unless
// both operands are integral.
func (b *Builder) binExpr(op ir.Op, lhs, rhs ir.NodeHandle, pos token.Pos, list *ir.InstrList) ir.NodeHandle {
	lt := b.Arena.Get(lhs).Type
	rt := b.Arena.Get(rhs).Type
	result := b.widerType(lt, rt)

	switch op {
	case ir.OpShl, ir.OpShr, ir.OpBitAnd, ir.OpBitXor, ir.OpBitOr:
		if lt == nil || rt == nil || !lt.IsIntegral() || !rt.IsIntegral() {
			b.Diags.Errorf(pos, "operator %s requires integral operands", op)
		}
	case ir.OpLess, ir.OpGreater, ir.OpLessEq, ir.OpGreaterEq, ir.OpEqual, ir.OpNotEqual, ir.OpLogicAnd, ir.OpLogicOr:
		n := 1
		if result != nil {
			n = result.Dim.X
		}
		result = b.Reg.NewVector(hlsltype.BaseBool, n)
	}

	return b.emit(list, ir.Node{
		Kind: ir.KindExpr,
		Pos:  pos,
		Type: result,
		Payload: &ir.ExprData{
			Op:       op,
			Operands: [3]ir.NodeHandle{lhs, rhs, 0},
		},
	})
}

// widerType picks the type that should drive a binary expression's result:
// the base with more precision (double > float > half > uint > int > bool)
// and the shape of the operand with more components, defaulting to a when
// both are numerically equal or either is non-numeric.
func (b *Builder) widerType(a, bt *hlsltype.Type) *hlsltype.Type {
	if a == nil {
		return bt
	}
	if bt == nil {
		return a
	}
	if !a.IsNumeric() || !bt.IsNumeric() {
		return a
	}
	wide, narrow := a, bt
	if basePriority(bt.Base) > basePriority(a.Base) {
		wide, narrow = bt, a
	}
	if narrow.ComponentCount() <= wide.ComponentCount() {
		return wide
	}
	if narrow.Base == wide.Base {
		return narrow
	}
	if narrow.Class == hlsltype.ClassMatrix {
		return b.Reg.NewMatrix(wide.Base, narrow.Dim.X, narrow.Dim.Y, narrow.Modifiers)
	}
	return b.Reg.NewVector(wide.Base, narrow.Dim.X)
}

func basePriority(base hlsltype.Base) int {
	switch base {
	case hlsltype.BaseDouble:
		return 5
	case hlsltype.BaseFloat:
		return 4
	case hlsltype.BaseHalf:
		return 3
	case hlsltype.BaseUint:
		return 2
	case hlsltype.BaseInt:
		return 1
	default:
		return 0
	}
}

// convertAssignable coerces rhs to target's type for assignment, return,
// and initializer contexts (spec section 4.3 "Initialization", section 4.6
// "implicit conversion"). For numeric types the initializer's total
// component count must equal target's component count, except a single-
// component source broadcasts by repeating itself (lowered to a
// Constructor node, not a cast - spec section 9's broadcast-initialization
// resolution). A mismatched component count otherwise is a "type" error.
// Non-numeric mismatches (struct/object) fall back to a plain implicit
// cast, unchanged from assignment's prior behavior.
func (b *Builder) convertAssignable(rhs ir.NodeHandle, target *hlsltype.Type, pos token.Pos, list *ir.InstrList) ir.NodeHandle {
	rn := b.Arena.Get(rhs)
	if target == nil || rn.Type == nil || hlsltype.Equal(rn.Type, target) {
		return rhs
	}

	if target.IsNumeric() && rn.Type.IsNumeric() {
		srcCount := rn.Type.ComponentCount()
		dstCount := target.ComponentCount()
		switch {
		case srcCount == 1 && dstCount > 1:
			args := make([]ir.NodeHandle, dstCount)
			for i := range args {
				args[i] = rhs
			}
			return b.emit(list, ir.Node{
				Kind: ir.KindConstructor,
				Pos:  pos,
				Type: target,
				Payload: &ir.ConstructorData{Args: args},
			})
		case srcCount != dstCount:
			b.Diags.Errorf(pos, "cannot initialize %s (%d components) from %s (%d components)", target, dstCount, rn.Type, srcCount)
			return rhs
		}
	}

	return b.emit(list, ir.Node{
		Kind: ir.KindExpr,
		Pos:  pos,
		Type: target,
		Payload: &ir.ExprData{
			Op:       ir.OpCast,
			Operands: [3]ir.NodeHandle{rhs, 0, 0},
		},
	})
}

// compatibleCast reports whether an explicit (T)e cast between src and dst
// is permitted (spec section 4.6: "Casts (T)e require
// compatible_data_types(src,dst)"). Struct and object types are only
// cast-compatible with an identical type; every numeric pairing is
// compatible, since this front end performs no further bit-level
// narrowing analysis.
func compatibleCast(src, dst *hlsltype.Type) bool {
	if src == nil || dst == nil {
		return false
	}
	if src.Class == hlsltype.ClassStruct || dst.Class == hlsltype.ClassStruct {
		return hlsltype.Equal(src, dst)
	}
	if src.Class == hlsltype.ClassObject || dst.Class == hlsltype.ClassObject {
		return hlsltype.Equal(src, dst)
	}
	return true
}

func (b *Builder) lowerUnary(u *hlslast.Unary, list *ir.InstrList) ir.NodeHandle {
	switch {
	case u.Neg != nil:
		operand := b.lowerUnary(u.Neg.Operand, list)
		op := ir.OpNeg
		switch u.Neg.Op {
		case "+":
			return operand
		case "!":
			op = ir.OpNot
		case "~":
			op = ir.OpBitNot
		}
		t := b.Arena.Get(operand).Type
		return b.emit(list, ir.Node{
			Kind: ir.KindExpr, Pos: b.pos(u.Neg.Pos), Type: t,
			Payload: &ir.ExprData{Op: op, Operands: [3]ir.NodeHandle{operand, 0, 0}},
		})

	case u.PreIncDec != nil:
		operand := b.lowerUnary(u.PreIncDec.Operand, list)
		op := ir.OpPreInc
		if u.PreIncDec.Op == "--" {
			op = ir.OpPreDec
		}
		t := b.Arena.Get(operand).Type
		return b.emit(list, ir.Node{
			Kind: ir.KindExpr, Pos: b.pos(u.PreIncDec.Pos), Type: t,
			Payload: &ir.ExprData{Op: op, Operands: [3]ir.NodeHandle{operand, 0, 0}},
		})

	case u.Cast != nil:
		operand := b.lowerUnary(u.Cast.Operand, list)
		pos := b.pos(u.Cast.Pos)
		target := b.resolveType(u.Cast.Type, pos)
		if operandType := b.Arena.Get(operand).Type; !compatibleCast(operandType, target) {
			b.Diags.Errorf(pos, "cannot cast %s to %s", operandType, target)
		}
		return b.emit(list, ir.Node{
			Kind: ir.KindExpr, Pos: pos, Type: target,
			Payload: &ir.ExprData{Op: ir.OpCast, Operands: [3]ir.NodeHandle{operand, 0, 0}},
		})

	default:
		return b.lowerPostfix(u.Post, list)
	}
}

func (b *Builder) lowerPostfix(p *hlslast.Postfix, list *ir.InstrList) ir.NodeHandle {
	cur := b.lowerPrimary(p.Base, list)
	for _, op := range p.Postops {
		switch {
		case op.Member != nil:
			cur = b.lowerMember(cur, op.Member, list)
		case op.Index != nil:
			cur = b.lowerIndex(cur, op.Index, list)
		case op.Call != nil:
			cur = b.lowerCall(cur, op.Call, list)
		case op.IncDec != "":
			t := b.Arena.Get(cur).Type
			ic := ir.OpPostInc
			if op.IncDec == "--" {
				ic = ir.OpPostDec
			}
			cur = b.emit(list, ir.Node{
				Kind: ir.KindExpr, Pos: b.pos(op.Pos), Type: t,
				Payload: &ir.ExprData{Op: ic, Operands: [3]ir.NodeHandle{cur, 0, 0}},
			})
		}
	}
	return cur
}

// lowerMember resolves a.field as either a struct member access or a
// vector swizzle (spec section 4.4 "Swizzle"). Matrix operands are not
// swizzled: a `._m00` or `._11` suffix on a matrix is reported as an error,
// the same as any member access on a type that is neither struct nor
// vector.
func (b *Builder) lowerMember(base ir.NodeHandle, m *hlslast.MemberOp, list *ir.InstrList) ir.NodeHandle {
	pos := b.pos(m.Pos)
	bt := b.Arena.Get(base).Type
	if bt == nil {
		b.Diags.Errorf(pos, "cannot access member %q", m.Field)
		return base
	}

	if bt.Class == hlsltype.ClassStruct {
		for _, f := range bt.Fields {
			if f.Name == m.Field {
				return b.emit(list, ir.Node{
					Kind: ir.KindRecordDeref, Pos: pos, Type: f.Type,
					Payload: &ir.RecordDerefData{Base: base, Field: f},
				})
			}
		}
		b.Diags.Errorf(pos, "struct has no field %q", m.Field)
		return base
	}

	if bt.Class == hlsltype.ClassVector {
		mask, count, err := swizzleMask(m.Field, bt.Dim.X)
		if err != nil {
			b.Diags.Errorf(pos, "%s", err)
			return base
		}
		resultType := b.Reg.NewVector(bt.Base, count)
		return b.emit(list, ir.Node{
			Kind: ir.KindSwizzle, Pos: pos, Type: resultType,
			Payload: &ir.SwizzleData{Base: base, Mask: mask, Count: count},
		})
	}

	b.Diags.Errorf(pos, "type %s has no member %q", bt, m.Field)
	return base
}

// swizzleMask parses an xyzw/rgba swizzle of up to 4 components against a
// vector of width dim, returning a packed component mask.
func swizzleMask(field string, dim int) ([4]uint8, int, error) {
	var mask [4]uint8
	if len(field) == 0 || len(field) > 4 {
		return mask, 0, swizzleErr(field)
	}
	xyzw := "xyzw"
	rgba := "rgba"
	useRGBA := strings.ContainsAny(field, "rgba")
	for i, r := range field {
		var idx int
		if useRGBA {
			idx = strings.IndexRune(rgba, r)
		} else {
			idx = strings.IndexRune(xyzw, r)
		}
		if idx < 0 || idx >= dim {
			return mask, 0, swizzleErr(field)
		}
		mask[i] = uint8(idx)
	}
	return mask, len(field), nil
}

func swizzleErr(field string) error {
	return &swizzleError{field}
}

type swizzleError struct{ field string }

func (e *swizzleError) Error() string { return "invalid swizzle \"" + e.field + "\"" }

func (b *Builder) lowerIndex(base ir.NodeHandle, idx *hlslast.IndexOp, list *ir.InstrList) ir.NodeHandle {
	pos := b.pos(idx.Pos)
	index := b.lowerExpr(idx.Index, list)
	if it := b.Arena.Get(index).Type; it != nil && !it.IsScalar() {
		b.Diags.Errorf(pos, "array index must be a scalar")
	}
	bt := b.Arena.Get(base).Type

	var result *hlsltype.Type
	switch {
	case bt == nil:
		result = b.Reg.Void()
	case bt.Class == hlsltype.ClassArray:
		result = bt.Elem
	case bt.Class == hlsltype.ClassMatrix:
		result = b.Reg.NewVector(bt.Base, bt.Dim.X)
	case bt.Class == hlsltype.ClassVector:
		result = b.Reg.NewScalar(bt.Base)
	default:
		b.Diags.Errorf(pos, "type %s cannot be indexed", bt)
		result = bt
	}

	return b.emit(list, ir.Node{
		Kind: ir.KindArrayDeref, Pos: pos, Type: result,
		Payload: &ir.ArrayDerefData{Array: base, Index: index},
	})
}

// lowerCall lowers a call applied to a preceding Postfix chain. Only the
// simple "bare function name" call form is resolved against the function
// table (spec section 4.5); anything else (an object method call) is
// lowered as a best-effort Constructor-shaped node carrying the argument
// list, since this front end does not model object method intrinsics.
func (b *Builder) lowerCall(callee ir.NodeHandle, call *hlslast.CallOp, list *ir.InstrList) ir.NodeHandle {
	pos := b.pos(call.Pos)
	args := make([]ir.NodeHandle, 0, len(call.Args))
	argTypes := make([]*hlsltype.Type, 0, len(call.Args))
	for _, a := range call.Args {
		h := b.lowerExpr(a, list)
		args = append(args, h)
		t := b.Arena.Get(h).Type
		if t == nil {
			t = b.Reg.Void()
		}
		argTypes = append(argTypes, t)
	}

	calleeNode := b.Arena.Get(callee)
	if calleeNode.Kind == ir.KindVarDeref {
		name := calleeNode.VarDeref().Var.Name
		if fn, ok := b.Funcs.LookupSignature(name, argTypes); ok {
			return b.emit(list, ir.Node{
				Kind: ir.KindConstructor, Pos: pos, Type: fn.ReturnType,
				Payload: &ir.ConstructorData{Args: args},
			})
		}
		b.Diags.Errorf(pos, "no matching overload for call to %q", name)
	}

	return b.emit(list, ir.Node{
		Kind: ir.KindConstructor, Pos: pos, Type: calleeNode.Type,
		Payload: &ir.ConstructorData{Args: args},
	})
}

func (b *Builder) lowerPrimary(p *hlslast.Primary, list *ir.InstrList) ir.NodeHandle {
	pos := b.pos(p.Pos)
	switch {
	case p.Constructor != nil:
		return b.lowerConstructor(p.Constructor, list)

	case p.Paren != nil:
		return b.lowerExpr(p.Paren, list)

	case p.Float != nil:
		return b.emit(list, ir.Node{
			Kind: ir.KindConstant, Pos: pos, Type: b.Reg.NewScalar(hlsltype.BaseFloat),
			Payload: &ir.ConstantData{Base: hlsltype.BaseFloat, Float: *p.Float},
		})

	case p.Int != nil:
		return b.lowerIntLiteral(*p.Int, pos, list)

	case p.True || p.False:
		return b.emit(list, ir.Node{
			Kind: ir.KindConstant, Pos: pos, Type: b.Reg.NewScalar(hlsltype.BaseBool),
			Payload: &ir.ConstantData{Base: hlsltype.BaseBool, Bool: p.True},
		})

	default:
		return b.lowerIdentRef(p.Ident, pos, list)
	}
}

func (b *Builder) lowerIntLiteral(text string, pos token.Pos, list *ir.InstrList) ir.NodeHandle {
	n, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		if u, uerr := strconv.ParseUint(text, 0, 64); uerr == nil {
			return b.emit(list, ir.Node{
				Kind: ir.KindConstant, Pos: pos, Type: b.Reg.NewScalar(hlsltype.BaseUint),
				Payload: &ir.ConstantData{Base: hlsltype.BaseUint, Uint: u},
			})
		}
		b.Diags.Errorf(pos, "invalid integer literal %q", text)
	}
	return b.emit(list, ir.Node{
		Kind: ir.KindConstant, Pos: pos, Type: b.Reg.NewScalar(hlsltype.BaseInt),
		Payload: &ir.ConstantData{Base: hlsltype.BaseInt, Int: n},
	})
}

// lowerIdentRef resolves a bare identifier reference: a variable, or (when
// it names a type, as the callee of a constructor-less call, or an
// intrinsic) a VarDeref carrying a synthetic Variable so call lowering
// has a name to look up in the function table.
func (b *Builder) lowerIdentRef(name string, pos token.Pos, list *ir.InstrList) ir.NodeHandle {
	if v, ok := b.scope.LookupVar(name); ok {
		return b.emit(list, ir.Node{
			Kind: ir.KindVarDeref, Pos: pos, Type: v.Type,
			Payload: &ir.VarDerefData{Var: v},
		})
	}

	// Not a declared variable: treat it as a reference to a function name,
	// letting the enclosing CallOp resolve the overload.
	return b.emit(list, ir.Node{
		Kind: ir.KindVarDeref, Pos: pos, Type: nil,
		Payload: &ir.VarDerefData{Var: &scope.Variable{Name: name}},
	})
}

func (b *Builder) lowerConstructor(c *hlslast.ConstructorExpr, list *ir.InstrList) ir.NodeHandle {
	pos := b.pos(c.Pos)
	target := b.resolveType(c.Type, pos)

	args := make([]ir.NodeHandle, 0, len(c.Args))
	total := 0
	for _, a := range c.Args {
		h := b.lowerExpr(a, list)
		args = append(args, h)
		if t := b.Arena.Get(h).Type; t != nil {
			total += t.ComponentCount()
		}
	}

	if target.IsNumeric() && total != target.ComponentCount() && len(args) > 0 {
		b.Diags.Errorf(pos, "constructor for %s expects %d components, got %d", target, target.ComponentCount(), total)
	}

	return b.emit(list, ir.Node{
		Kind: ir.KindConstructor, Pos: pos, Type: target,
		Payload: &ir.ConstructorData{Args: args},
	})
}
