package hlsltype

import (
	"fmt"

	"github.com/hlslfe/compiler/internal/cache"
)

// Registry owns every Type descriptor constructed during one compilation
// (spec section 3 "Type registry"). It also tracks the compilation-wide
// default matrix majority, initially column-major (spec section 4.2),
// and structurally interns constructed composites so that e.g. two
// `float4x4` declarations share one *Type instead of allocating twice.
type Registry struct {
	types           []*Type
	defaultMajority Modifier
	interned        *cache.Cache[*Type]
}

// NewRegistry creates a registry with the given compilation-wide default
// matrix majority (ModRowMajor or ModColumnMajor).
func NewRegistry(defaultMajority Modifier) *Registry {
	if defaultMajority&ModMajorityMask == 0 {
		defaultMajority = ModColumnMajor
	}
	return &Registry{
		defaultMajority: defaultMajority,
		interned:        cache.New[*Type](),
	}
}

// own records t in the registry's global type list, so it can be walked
// and freed on teardown (spec section 5).
func (r *Registry) own(t *Type) *Type {
	r.types = append(r.types, t)
	return t
}

// Types returns every type the registry has ever constructed, in
// construction order.
func (r *Registry) Types() []*Type {
	return r.types
}

// Teardown releases the registry's owned types and interning cache,
// mirroring spec section 5's "walk the global type list and free each
// type".
func (r *Registry) Teardown() {
	r.types = nil
	r.interned.Clear()
}

func (r *Registry) intern(key string, build func() *Type) *Type {
	if t, ok := r.interned.Get(key); ok {
		return t
	}
	return r.interned.Put(key, r.own(build()))
}

// NewScalar returns the (1,1)-dimension scalar type for base.
func (r *Registry) NewScalar(base Base) *Type {
	key := cache.Key(fmt.Sprintf("scalar:%d", base))
	return r.intern(key, func() *Type {
		return &Type{Class: ClassScalar, Base: base, Dim: Dim{1, 1}}
	})
}

// NewVector returns the n-component vector type for base. n must be in
// [1,4]; n==1 degenerates to the scalar type.
func (r *Registry) NewVector(base Base, n int) *Type {
	if n == 1 {
		return r.NewScalar(base)
	}
	key := cache.Key(fmt.Sprintf("vector:%d:%d", base, n))
	return r.intern(key, func() *Type {
		return &Type{Class: ClassVector, Base: base, Dim: Dim{n, 1}}
	})
}

// NewMatrix returns the (cols,rows) matrix type for base, with majority
// overlaid by mods (ModRowMajor/ModColumnMajor); if mods carries neither,
// the registry's compilation-wide default majority is injected (spec
// section 4.2).
func (r *Registry) NewMatrix(base Base, cols, rows int, mods Modifier) *Type {
	majority := mods & ModMajorityMask
	if majority == 0 {
		majority = r.defaultMajority
	}
	key := cache.Key(fmt.Sprintf("matrix:%d:%d:%d:%d", base, cols, rows, majority))
	return r.intern(key, func() *Type {
		return &Type{Class: ClassMatrix, Base: base, Dim: Dim{cols, rows}, Modifiers: majority}
	})
}

// NewArray returns the array-of-elem type with the given length. Per spec
// section 4.3, length must already have been validated (positive, <=
// 65536) by the caller.
func (r *Registry) NewArray(elem *Type, length int) *Type {
	return r.own(&Type{Class: ClassArray, Elem: elem, ArrayLen: length})
}

// NewStruct returns a new named or anonymous struct type with the given
// fields. Struct types are never interned: each struct declaration is a
// distinct nominal type even if structurally identical to another.
func (r *Registry) NewStruct(name string, fields []*Field) *Type {
	return r.own(&Type{Class: ClassStruct, Name: name, Fields: fields})
}

// NewObject returns the singleton type for an opaque object kind (sampler
// variants, texture variants, string, void, the two shader-handle types).
func (r *Registry) NewObject(kind ObjectKind, samplerDim int) *Type {
	key := cache.Key(fmt.Sprintf("object:%d:%d", kind, samplerDim))
	return r.intern(key, func() *Type {
		return &Type{Class: ClassObject, Base: BaseObject, ObjectKind: kind, SamplerDim: samplerDim}
	})
}

// Void returns the singleton void object type.
func (r *Registry) Void() *Type {
	return r.NewObject(ObjectNone, 0)
}

// ErrMajorityConflict is returned by Clone when a declaration's modifiers
// specify both row-major and column-major.
type ErrMajorityConflict struct{}

func (ErrMajorityConflict) Error() string {
	return "conflicting matrix majority: both row_major and column_major specified"
}

// Clone overlays modifier bits onto a copy of base (spec section 4.2:
// "the core clones the base type and overlays the modifier bits"). It
// returns ErrMajorityConflict if overlay specifies both majority bits.
// If base is a matrix and neither base nor overlay specify a majority,
// the registry's default majority is injected.
func (r *Registry) Clone(base *Type, overlay Modifier) (*Type, error) {
	if overlay&ModRowMajor != 0 && overlay&ModColumnMajor != 0 {
		return nil, ErrMajorityConflict{}
	}

	clone := *base
	clone.Modifiers = base.Modifiers | overlay
	if clone.Modifiers&ModRowMajor != 0 && clone.Modifiers&ModColumnMajor != 0 {
		return nil, ErrMajorityConflict{}
	}

	if clone.Class == ClassMatrix && clone.Modifiers&ModMajorityMask == 0 {
		clone.Modifiers |= r.defaultMajority
	}

	if clone.Class == ClassArray {
		elemClone, err := r.Clone(clone.Elem, overlay&^ModMajorityMask)
		if err != nil {
			return nil, err
		}
		clone.Elem = elemClone
	}

	return r.own(&clone), nil
}

// DefaultMajority returns the compilation-wide default matrix majority.
func (r *Registry) DefaultMajority() Modifier {
	return r.defaultMajority
}
