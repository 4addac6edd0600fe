package liveness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlslfe/compiler/pkg/funcs"
	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/ir"
	"github.com/hlslfe/compiler/pkg/scope"
)

// buildForLoop constructs, by hand, the IR spec section 8's scenario
// describes: `for (int i = 0; i < 4; ++i) {} return 0;` lowered to an
// init assignment, a loop node containing a negated-condition break then
// an empty body then the post increment, and a final return.
func buildForLoop(t *testing.T) (*ir.Arena, ir.InstrList, *scope.Variable, ir.NodeHandle) {
	t.Helper()
	arena := ir.NewArena()
	reg := hlsltype.NewRegistry(0)
	intT := reg.NewScalar(hlsltype.BaseInt)
	boolT := reg.NewScalar(hlsltype.BaseBool)

	iVar := &scope.Variable{Name: "i", Type: intT}

	var outer ir.InstrList

	zero := arena.New(ir.Node{Kind: ir.KindConstant, Type: intT, Payload: &ir.ConstantData{Base: hlsltype.BaseInt, Int: 0}})
	initLHS := arena.New(ir.Node{Kind: ir.KindVarDeref, Type: intT, Payload: &ir.VarDerefData{Var: iVar}})
	initAssign := arena.New(ir.Node{Kind: ir.KindAssignment, Type: intT, Payload: &ir.AssignmentData{LValue: initLHS, Op: ir.AssignPlain, RHS: zero}})
	outer = append(outer, initAssign)

	var loopBody ir.InstrList
	condI := arena.New(ir.Node{Kind: ir.KindVarDeref, Type: intT, Payload: &ir.VarDerefData{Var: iVar}})
	four := arena.New(ir.Node{Kind: ir.KindConstant, Type: intT, Payload: &ir.ConstantData{Base: hlsltype.BaseInt, Int: 4}})
	less := arena.New(ir.Node{Kind: ir.KindExpr, Type: boolT, Payload: &ir.ExprData{Op: ir.OpLess, Operands: [3]ir.NodeHandle{condI, four, 0}}})
	not := arena.New(ir.Node{Kind: ir.KindExpr, Type: boolT, Payload: &ir.ExprData{Op: ir.OpNot, Operands: [3]ir.NodeHandle{less, 0, 0}}})
	brk := arena.New(ir.Node{Kind: ir.KindJump, Payload: &ir.JumpData{JumpKind: ir.JumpBreak}})
	ifNode := arena.New(ir.Node{Kind: ir.KindIf, Payload: &ir.IfData{Cond: not, Then: ir.InstrList{brk}}})
	loopBody = append(loopBody, ifNode)

	postI := arena.New(ir.Node{Kind: ir.KindVarDeref, Type: intT, Payload: &ir.VarDerefData{Var: iVar}})
	postInc := arena.New(ir.Node{Kind: ir.KindExpr, Type: intT, Payload: &ir.ExprData{Op: ir.OpPreInc, Operands: [3]ir.NodeHandle{postI, 0, 0}}})
	loopBody = append(loopBody, postInc)

	loopNode := arena.New(ir.Node{Kind: ir.KindLoop, Payload: &ir.LoopData{Body: loopBody}})
	outer = append(outer, loopNode)

	retVal := arena.New(ir.Node{Kind: ir.KindConstant, Type: intT, Payload: &ir.ConstantData{Base: hlsltype.BaseInt, Int: 0}})
	ret := arena.New(ir.Node{Kind: ir.KindJump, Payload: &ir.JumpData{JumpKind: ir.JumpReturn, ReturnValue: retVal}})
	outer = append(outer, ret)

	return arena, outer, iVar, loopNode
}

func TestIndexAssignsIncreasingIndicesAndNextIndex(t *testing.T) {
	arena, body, _, loopHandle := buildForLoop(t)
	Index(arena, body)

	seen := map[uint32]bool{}
	var walk func(list ir.InstrList)
	maxInBody := uint32(0)
	walk = func(list ir.InstrList) {
		for _, h := range list {
			n := arena.Get(h)
			require.False(t, seen[n.Index], "index %d reused", n.Index)
			require.GreaterOrEqual(t, n.Index, firstIndex)
			seen[n.Index] = true
			if n.Index > maxInBody {
				maxInBody = n.Index
			}
			if n.Kind == ir.KindLoop {
				walk(n.Loop().Body)
			}
			if n.Kind == ir.KindIf {
				walk(n.If().Then)
				walk(n.If().Else)
			}
		}
	}
	walk(body)

	loop := arena.Get(loopHandle).Loop()
	assert.Greater(t, loop.NextIndex, maxOfLoopBody(arena, loop.Body))
}

func maxOfLoopBody(arena *ir.Arena, body ir.InstrList) uint32 {
	var m uint32
	for _, h := range body {
		if n := arena.Get(h); n.Index > m {
			m = n.Index
		}
	}
	return m
}

func TestAnalyzeExtendsLivenessAcrossLoop(t *testing.T) {
	arena, body, iVar, loopHandle := buildForLoop(t)
	Index(arena, body)

	global := scope.NewRoot()
	fn := &funcs.Function{Name: "main", Body: body}
	Analyze(arena, global, fn)

	loop := arena.Get(loopHandle)
	loopData := loop.Loop()

	assert.LessOrEqual(t, iVar.FirstWrite, loop.Index, "first_write must precede the loop's own index")
	assert.GreaterOrEqual(t, iVar.LastRead, loopData.NextIndex, "last_read must reach past the loop's exit")
}

func TestAnalyzeSeedsGlobalsAndParams(t *testing.T) {
	arena := ir.NewArena()
	global := scope.NewRoot()

	g := &scope.Variable{Name: "g"}
	require.NoError(t, global.DeclareVar(g))

	inParam := &scope.Variable{Name: "p", Modifiers: hlsltype.ModIn}
	outParam := &scope.Variable{Name: "q", Modifiers: hlsltype.ModOut}

	fn := &funcs.Function{
		Name:   "main",
		Params: []*scope.Variable{inParam, outParam},
	}

	Analyze(arena, global, fn)

	assert.Equal(t, uint32(1), g.FirstWrite)
	assert.Equal(t, uint32(1), inParam.FirstWrite)
	assert.Equal(t, uint32(math.MaxUint32), outParam.LastRead)
}
