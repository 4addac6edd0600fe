package hlsltype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryInterning(t *testing.T) {
	r := NewRegistry(0)

	a := r.NewVector(BaseFloat, 4)
	b := r.NewVector(BaseFloat, 4)
	assert.Same(t, a, b, "same base/dim vector should be interned to one *Type")

	m := r.NewMatrix(BaseFloat, 4, 4, 0)
	assert.Equal(t, ModColumnMajor, m.Modifiers&ModMajorityMask, "default majority should be column-major")
}

func TestRegistryNewVectorDegeneratesToScalar(t *testing.T) {
	r := NewRegistry(0)
	v := r.NewVector(BaseInt, 1)
	assert.Equal(t, ClassScalar, v.Class)
}

func TestCloneMajorityConflict(t *testing.T) {
	r := NewRegistry(0)
	base := r.NewMatrix(BaseFloat, 3, 3, ModRowMajor)

	_, err := r.Clone(base, ModColumnMajor)
	require.Error(t, err)
	assert.IsType(t, ErrMajorityConflict{}, err)
}

func TestCloneInjectsDefaultMajority(t *testing.T) {
	r := NewRegistry(ModRowMajor)
	base := &Type{Class: ClassMatrix, Base: BaseFloat, Dim: Dim{4, 3}}

	clone, err := r.Clone(base, 0)
	require.NoError(t, err)
	assert.True(t, clone.Modifiers.Has(ModRowMajor))
}

func TestComponentCount(t *testing.T) {
	r := NewRegistry(0)

	vec := r.NewVector(BaseFloat, 3)
	assert.Equal(t, 3, vec.ComponentCount())

	arr := r.NewArray(vec, 4)
	assert.Equal(t, 12, arr.ComponentCount())

	st := r.NewStruct("S", []*Field{
		{Name: "a", Type: r.NewScalar(BaseFloat)},
		{Name: "b", Type: vec},
	})
	assert.Equal(t, 4, st.ComponentCount())
}

func TestRegSize(t *testing.T) {
	r := NewRegistry(0)

	rowMajor := r.NewMatrix(BaseFloat, 4, 3, ModRowMajor)
	assert.Equal(t, 3, rowMajor.RegSize())

	colMajor := r.NewMatrix(BaseFloat, 4, 3, ModColumnMajor)
	assert.Equal(t, 4, colMajor.RegSize())
}

func TestEqualIgnoresStorageModifiers(t *testing.T) {
	r := NewRegistry(0)
	a, err := r.Clone(r.NewScalar(BaseFloat), ModUniform)
	require.NoError(t, err)
	b, err := r.Clone(r.NewScalar(BaseFloat), ModStatic)
	require.NoError(t, err)

	assert.True(t, Equal(a, b), "storage-class modifiers are not part of type identity")
}

func TestEqualRespectsConstAndMajority(t *testing.T) {
	r := NewRegistry(0)
	a, err := r.Clone(r.NewScalar(BaseFloat), ModConst)
	require.NoError(t, err)
	b := r.NewScalar(BaseFloat)

	assert.False(t, Equal(a, b))

	rowMajor := r.NewMatrix(BaseFloat, 4, 4, ModRowMajor)
	colMajor := r.NewMatrix(BaseFloat, 4, 4, ModColumnMajor)
	assert.False(t, Equal(rowMajor, colMajor))
}

func TestIsIntegral(t *testing.T) {
	r := NewRegistry(0)
	assert.True(t, r.NewScalar(BaseBool).IsIntegral())
	assert.True(t, r.NewScalar(BaseInt).IsIntegral())
	assert.False(t, r.NewScalar(BaseFloat).IsIntegral())
}

func TestPredefinedSeedsExpectedNames(t *testing.T) {
	r := NewRegistry(0)
	types := Predefined(r)

	for _, name := range []string{"float", "float4", "float4x4", "int3", "bool2x2", "DWORD", "STRING"} {
		if _, ok := types[name]; !ok {
			t.Errorf("expected predefined type %q", name)
		}
	}
}
