package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/token"
)

func TestDeclareAndLookupVar(t *testing.T) {
	root := NewRoot()
	v := &Variable{Name: "x", Type: &hlsltype.Type{Class: hlsltype.ClassScalar}}

	require.NoError(t, root.DeclareVar(v))

	got, ok := root.LookupVar("x")
	require.True(t, ok)
	assert.Same(t, v, got)
}

func TestDeclareVarRedefinition(t *testing.T) {
	root := NewRoot()
	require.NoError(t, root.DeclareVar(&Variable{Name: "x"}))

	err := root.DeclareVar(&Variable{Name: "x"})
	require.Error(t, err)
	assert.IsType(t, &ErrRedefined{}, err)
}

func TestChildScopeShadowsParent(t *testing.T) {
	root := NewRoot()
	outer := &Variable{Name: "x", Type: &hlsltype.Type{Base: hlsltype.BaseFloat}}
	require.NoError(t, root.DeclareVar(outer))

	child := root.Push()
	inner := &Variable{Name: "x", Type: &hlsltype.Type{Base: hlsltype.BaseInt}}
	require.NoError(t, child.DeclareVar(inner))

	got, ok := child.LookupVar("x")
	require.True(t, ok)
	assert.Same(t, inner, got)

	_, ok = child.LookupLocalVar("nonexistent")
	assert.False(t, ok)

	assert.True(t, root.IsGlobal())
	assert.False(t, child.IsGlobal())
	assert.Same(t, root, child.Parent())
}

func TestDeclareTypeRedefinition(t *testing.T) {
	root := NewRoot()
	st := &hlsltype.Type{Class: hlsltype.ClassStruct, Name: "S"}
	firstPos := token.Pos{Line: 1, Col: 1}
	require.NoError(t, root.DeclareType("S", st, firstPos))

	err := root.DeclareType("S", st, token.Pos{Line: 2, Col: 1})
	require.Error(t, err)
	re, ok := err.(*ErrRedefined)
	require.True(t, ok)
	assert.Equal(t, firstPos, re.PriorPos)
}

func TestLookupTypeWalksOutward(t *testing.T) {
	root := NewRoot()
	st := &hlsltype.Type{Class: hlsltype.ClassStruct, Name: "S"}
	require.NoError(t, root.DeclareType("S", st, token.Pos{}))

	child := root.Push()
	got, ok := child.LookupType("S")
	require.True(t, ok)
	assert.Same(t, st, got)
}

func TestSeedPredefinedPopulatesRoot(t *testing.T) {
	root := NewRoot()
	reg := hlsltype.NewRegistry(0)
	SeedPredefined(root, reg)

	_, ok := root.LookupType("float4x4")
	assert.True(t, ok)
}
