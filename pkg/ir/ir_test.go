package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArenaSentinelHandle(t *testing.T) {
	a := NewArena()
	assert.Equal(t, 0, a.Len())

	sentinel := a.Get(0)
	assert.Equal(t, Kind(0), sentinel.Kind)
	assert.Nil(t, sentinel.Payload)
}

func TestArenaNewAndGet(t *testing.T) {
	a := NewArena()
	h := a.New(Node{Kind: KindConstant, Payload: &ConstantData{Base: 1, Int: 42}})

	assert.NotEqual(t, NodeHandle(0), h)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, int64(42), a.Get(h).Constant().Int)
}

func TestArenaReset(t *testing.T) {
	a := NewArena()
	a.New(Node{Kind: KindConstant, Payload: &ConstantData{}})
	a.New(Node{Kind: KindConstant, Payload: &ConstantData{}})
	require := assert.New(t)
	require.Equal(2, a.Len())

	a.Reset()
	require.Equal(0, a.Len())
}

func TestAssignOpBinaryOp(t *testing.T) {
	assert.Equal(t, OpAdd, AssignAdd.BinaryOp())
	assert.Equal(t, OpNone, AssignPlain.BinaryOp())
}

func TestNodeAccessorsPanicOnWrongKind(t *testing.T) {
	n := &Node{Kind: KindConstant, Payload: &ConstantData{}}
	assert.Panics(t, func() { n.VarDeref() })
}

func TestDumpRendersNestedControlFlow(t *testing.T) {
	a := NewArena()
	cond := a.New(Node{Index: 2, Kind: KindConstant, Payload: &ConstantData{}})
	brk := a.New(Node{Index: 3, Kind: KindJump, Payload: &JumpData{JumpKind: JumpBreak}})
	ifNode := a.New(Node{Index: 4, Kind: KindIf, Payload: &IfData{Cond: cond, Then: InstrList{brk}}})
	loop := a.New(Node{Index: 5, Kind: KindLoop, Payload: &LoopData{Body: InstrList{ifNode}, NextIndex: 6}})

	out := Dump(a, InstrList{loop})
	assert.Contains(t, out, "Loop -> next 6")
	assert.Contains(t, out, "If")
	assert.Contains(t, out, "break")
}
