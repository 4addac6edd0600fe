// Package liveness implements the post-pass instruction indexer and the
// variable liveness analyzer described in spec section 4.8: after an
// entry function's body is fully built, every instruction receives a
// strictly increasing program-order index, and every variable receives
// first_write/last_read indices bounding the range of instructions across
// which its value must be preserved.
package liveness

import (
	"math"

	"github.com/hlslfe/compiler/pkg/funcs"
	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/ir"
	"github.com/hlslfe/compiler/pkg/scope"
)

// firstIndex is the first index the walk assigns: 0 is the "unused"
// sentinel (ir.NodeHandle's zero value doubles as this), 1 is reserved for
// the function-entry event.
const firstIndex uint32 = 2

// Index assigns a strictly increasing Node.Index to every instruction in
// body, in program order, descending into if-branches and loop bodies.
// Each ir.KindLoop node's NextIndex is set to the index of the first
// instruction after the loop.
func Index(arena *ir.Arena, body ir.InstrList) {
	cur := firstIndex
	indexList(arena, body, &cur)
}

func indexList(arena *ir.Arena, list ir.InstrList, cur *uint32) {
	for _, h := range list {
		n := arena.Get(h)
		n.Index = *cur
		*cur++

		switch n.Kind {
		case ir.KindIf:
			d := n.If()
			indexList(arena, d.Then, cur)
			if d.Else != nil {
				indexList(arena, d.Else, cur)
			}
		case ir.KindLoop:
			d := n.Loop()
			indexList(arena, d.Body, cur)
			d.NextIndex = *cur
		}
	}
}

// Analyze computes first_write/last_read for every variable reachable from
// fn: every global in global starts with first_write=1; every "in"
// parameter of fn starts with first_write=1 and every "out" parameter
// starts with last_read=math.MaxUint32 (spec section 4.8). Index must have
// already run over fn.Body.
func Analyze(arena *ir.Arena, global *scope.Scope, fn *funcs.Function) {
	for _, v := range global.Vars() {
		v.FirstWrite = 1
	}
	for _, p := range fn.Params {
		if p.Modifiers.Has(hlsltype.ModIn) {
			p.FirstWrite = 1
		}
		if p.Modifiers.Has(hlsltype.ModOut) {
			p.LastRead = math.MaxUint32
		}
	}

	walkList(arena, fn.Body, 0, 0, false)
}

func walkList(arena *ir.Arena, list ir.InstrList, loopFirst, loopExit uint32, inLoop bool) {
	for _, h := range list {
		n := arena.Get(h)
		idx := n.Index

		switch n.Kind {
		case ir.KindAssignment:
			d := n.Assignment()
			v, reads := lvalueTarget(arena, d.LValue)
			if v != nil {
				if inLoop && v.FirstWrite == 0 {
					v.FirstWrite = minu32(idx, loopFirst)
				} else {
					v.FirstWrite = idx
				}
			}
			for _, r := range reads {
				touch(arena, r, idx, loopFirst, loopExit, inLoop)
			}
			touch(arena, d.RHS, idx, loopFirst, loopExit, inLoop)

		case ir.KindIf:
			d := n.If()
			touch(arena, d.Cond, idx, loopFirst, loopExit, inLoop)
			walkList(arena, d.Then, loopFirst, loopExit, inLoop)
			if d.Else != nil {
				walkList(arena, d.Else, loopFirst, loopExit, inLoop)
			}

		case ir.KindLoop:
			d := n.Loop()
			effFirst, effExit := idx, d.NextIndex
			if inLoop {
				effFirst, effExit = loopFirst, loopExit
			}
			walkList(arena, d.Body, effFirst, effExit, true)

		case ir.KindJump:
			d := n.Jump()
			if d.JumpKind == ir.JumpReturn && d.ReturnValue != 0 {
				touch(arena, d.ReturnValue, idx, loopFirst, loopExit, inLoop)
			}
		}
	}
}

// lvalueTarget descends through record-deref/swizzle/array-deref wrapping
// an assignment's left-hand side to find the underlying Variable being
// written, collecting any embedded sub-expression handles (an array or
// matrix index) that are reads rather than part of the write target.
func lvalueTarget(arena *ir.Arena, h ir.NodeHandle) (*scope.Variable, []ir.NodeHandle) {
	n := arena.Get(h)
	switch n.Kind {
	case ir.KindVarDeref:
		return n.VarDeref().Var, nil
	case ir.KindRecordDeref:
		return lvalueTarget(arena, n.RecordDeref().Base)
	case ir.KindSwizzle:
		return lvalueTarget(arena, n.Swizzle().Base)
	case ir.KindArrayDeref:
		d := n.ArrayDeref()
		v, reads := lvalueTarget(arena, d.Array)
		return v, append(reads, d.Index)
	default:
		return nil, nil
	}
}

// touch records a read of every variable reachable from h's expression
// subtree, per spec section 4.8: "every reference ... updates the
// referent's last_read" to instr.index, or to max(instr.index, loop_exit)
// when inside a loop.
func touch(arena *ir.Arena, h ir.NodeHandle, idx, loopFirst, loopExit uint32, inLoop bool) {
	if h == 0 {
		return
	}
	n := arena.Get(h)
	switch n.Kind {
	case ir.KindVarDeref:
		v := n.VarDeref().Var
		if v == nil {
			return
		}
		newVal := idx
		if inLoop {
			newVal = maxu32(idx, loopExit)
		}
		if newVal > v.LastRead {
			v.LastRead = newVal
		}
	case ir.KindRecordDeref:
		touch(arena, n.RecordDeref().Base, idx, loopFirst, loopExit, inLoop)
	case ir.KindSwizzle:
		touch(arena, n.Swizzle().Base, idx, loopFirst, loopExit, inLoop)
	case ir.KindArrayDeref:
		d := n.ArrayDeref()
		touch(arena, d.Array, idx, loopFirst, loopExit, inLoop)
		touch(arena, d.Index, idx, loopFirst, loopExit, inLoop)
	case ir.KindConstructor:
		for _, a := range n.Constructor().Args {
			touch(arena, a, idx, loopFirst, loopExit, inLoop)
		}
	case ir.KindExpr:
		for _, o := range n.Expr().Operands {
			touch(arena, o, idx, loopFirst, loopExit, inLoop)
		}
	}
}

func minu32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
