package funcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/scope"
)

func floatParam(name string) *scope.Variable {
	return &scope.Variable{Name: name, Type: &hlsltype.Type{Class: hlsltype.ClassScalar, Base: hlsltype.BaseFloat}}
}

func TestDeclareAndLookup(t *testing.T) {
	table := NewTable()
	fn := &Function{Name: "main", ReturnType: &hlsltype.Type{Class: hlsltype.ClassScalar, Base: hlsltype.BaseFloat}, HasBody: true}

	require.NoError(t, table.Declare(fn))
	assert.True(t, table.Exists("main"))

	got, ok := table.LookupSignature("main", nil)
	require.True(t, ok)
	assert.Same(t, fn, got)
}

func TestOverloadsByParameterSignature(t *testing.T) {
	table := NewTable()
	ret := &hlsltype.Type{Class: hlsltype.ClassScalar, Base: hlsltype.BaseFloat}

	one := &Function{Name: "f", ReturnType: ret, HasBody: true, Params: []*scope.Variable{floatParam("a")}}
	two := &Function{Name: "f", ReturnType: ret, HasBody: true, Params: []*scope.Variable{floatParam("a"), floatParam("b")}}

	require.NoError(t, table.Declare(one))
	require.NoError(t, table.Declare(two))

	assert.Len(t, table.Lookup("f"), 2)
}

func TestDeclareReturnTypeMismatch(t *testing.T) {
	table := NewTable()
	floatRet := &hlsltype.Type{Class: hlsltype.ClassScalar, Base: hlsltype.BaseFloat}
	intRet := &hlsltype.Type{Class: hlsltype.ClassScalar, Base: hlsltype.BaseInt}

	require.NoError(t, table.Declare(&Function{Name: "f", ReturnType: floatRet}))

	err := table.Declare(&Function{Name: "f", ReturnType: intRet})
	require.Error(t, err)
	assert.IsType(t, &ErrReturnTypeMismatch{}, err)
}

func TestDeclareRedefinitionWithTwoBodies(t *testing.T) {
	table := NewTable()
	ret := &hlsltype.Type{Class: hlsltype.ClassScalar, Base: hlsltype.BaseFloat}

	require.NoError(t, table.Declare(&Function{Name: "f", ReturnType: ret, HasBody: true}))

	err := table.Declare(&Function{Name: "f", ReturnType: ret, HasBody: true})
	require.Error(t, err)
	assert.IsType(t, &ErrRedefined{}, err)
}

func TestForwardDeclarationThenDefinition(t *testing.T) {
	table := NewTable()
	ret := &hlsltype.Type{Class: hlsltype.ClassScalar, Base: hlsltype.BaseFloat}

	require.NoError(t, table.Declare(&Function{Name: "f", ReturnType: ret, HasBody: false}))
	require.NoError(t, table.Declare(&Function{Name: "f", ReturnType: ret, HasBody: true}))

	fn, ok := table.LookupSignature("f", nil)
	require.True(t, ok)
	assert.True(t, fn.HasBody)
}
