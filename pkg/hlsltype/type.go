// Package hlsltype implements the HLSL type descriptor and the registry
// that owns every constructed Type for a compilation context (spec section
// 3 "Type", section 4.2 "Type construction and modifier algebra").
package hlsltype

import "fmt"

// Class is the broad shape of a type.
type Class int

const (
	ClassScalar Class = iota
	ClassVector
	ClassMatrix
	ClassArray
	ClassStruct
	ClassObject
)

func (c Class) String() string {
	switch c {
	case ClassScalar:
		return "scalar"
	case ClassVector:
		return "vector"
	case ClassMatrix:
		return "matrix"
	case ClassArray:
		return "array"
	case ClassStruct:
		return "struct"
	case ClassObject:
		return "object"
	default:
		return "unknown"
	}
}

// Base is the scalar element kind. Only meaningful for numeric classes
// (scalar/vector/matrix/array-of-numeric); object types carry their own
// ObjectKind instead.
type Base int

const (
	BaseVoid Base = iota
	BaseFloat
	BaseHalf
	BaseDouble
	BaseInt
	BaseUint
	BaseBool
	BaseObject // class=object; see ObjectKind
)

func (b Base) String() string {
	switch b {
	case BaseVoid:
		return "void"
	case BaseFloat:
		return "float"
	case BaseHalf:
		return "half"
	case BaseDouble:
		return "double"
	case BaseInt:
		return "int"
	case BaseUint:
		return "uint"
	case BaseBool:
		return "bool"
	case BaseObject:
		return "object"
	default:
		return "unknown"
	}
}

// ObjectKind distinguishes the opaque object types: sampler variants,
// texture variants, string, and the two shader-handle types.
type ObjectKind int

const (
	ObjectNone ObjectKind = iota
	ObjectSampler
	ObjectSampler1D
	ObjectSampler2D
	ObjectSampler3D
	ObjectSamplerCube
	ObjectTexture
	ObjectTexture1D
	ObjectTexture2D
	ObjectTexture3D
	ObjectTextureCube
	ObjectString
	ObjectPixelShader
	ObjectVertexShader
)

func (k ObjectKind) String() string {
	names := map[ObjectKind]string{
		ObjectNone:          "",
		ObjectSampler:       "sampler",
		ObjectSampler1D:     "sampler1D",
		ObjectSampler2D:     "sampler2D",
		ObjectSampler3D:     "sampler3D",
		ObjectSamplerCube:   "samplerCUBE",
		ObjectTexture:       "texture",
		ObjectTexture1D:     "texture1D",
		ObjectTexture2D:     "texture2D",
		ObjectTexture3D:     "texture3D",
		ObjectTextureCube:   "textureCUBE",
		ObjectString:        "string",
		ObjectPixelShader:   "pixelshader",
		ObjectVertexShader:  "vertexshader",
	}
	return names[k]
}

// Modifier is the bitset of storage classes, qualifiers, and matrix
// majority flags a type or declaration can carry (spec section 3
// "modifiers").
type Modifier uint32

const (
	ModExtern Modifier = 1 << iota
	ModUniform
	ModStatic
	ModShared
	ModGroupShared
	ModVolatile
	ModIn
	ModOut
	ModNoInterpolation
	ModConst
	ModPrecise
	ModRowMajor
	ModColumnMajor
)

// ModInOut is a convenience alias for a parameter taking both directions.
const ModInOut = ModIn | ModOut

// ModStorageMask is every storage-class bit; local variables may carry
// none of ModExtern|ModShared|ModGroupShared|ModUniform (spec section 4.3).
const ModStorageMask = ModExtern | ModUniform | ModStatic | ModShared | ModGroupShared | ModVolatile | ModIn | ModOut | ModNoInterpolation

// ModMajorityMask covers the two mutually exclusive matrix-majority bits.
const ModMajorityMask = ModRowMajor | ModColumnMajor

func (m Modifier) Has(bit Modifier) bool { return m&bit != 0 }

// Dim is a type's (columns, rows) shape: (1,1) for scalar, (n,1) for an
// n-component vector, (cols,rows) for a matrix.
type Dim struct {
	X, Y int
}

// Field is one member of a struct type.
type Field struct {
	Name           string
	Type           *Type
	Modifiers      Modifier
	Semantic       string
	RegisterOffset int
}

// Type is the descriptor for an HLSL type (spec section 3 "Type"). Types
// are owned by a Registry; user code should treat a *Type as immutable
// once constructed, obtaining modified variants via Registry.Clone.
type Type struct {
	Name       string // optional; named types additionally live in a scope's type map
	Class      Class
	Base       Base
	ObjectKind ObjectKind
	Dim        Dim
	Modifiers  Modifier

	Elem     *Type // Class == ClassArray
	ArrayLen int

	Fields []*Field // Class == ClassStruct

	SamplerDim int // meaningful for sampler object kinds
}

// ComponentCount is the number of scalar components the type occupies:
// dimx*dimy for numeric classes, the sum of field component counts for a
// struct, ArrayLen*elem count for an array, 1 for an object.
func (t *Type) ComponentCount() int {
	switch t.Class {
	case ClassScalar, ClassVector, ClassMatrix:
		return t.Dim.X * t.Dim.Y
	case ClassArray:
		return t.ArrayLen * t.Elem.ComponentCount()
	case ClassStruct:
		n := 0
		for _, f := range t.Fields {
			n += f.Type.ComponentCount()
		}
		return n
	default:
		return 1
	}
}

// RegSize is the derived register footprint used downstream: for a matrix
// it is the row count if row-major, the column count otherwise (spec
// section 3, invariant 5).
func (t *Type) RegSize() int {
	if t.Class != ClassMatrix {
		return t.Dim.X * t.Dim.Y
	}
	if t.Modifiers.Has(ModRowMajor) {
		return t.Dim.Y
	}
	return t.Dim.X
}

// IsNumeric reports whether the type is a scalar, vector, or matrix over a
// numeric base.
func (t *Type) IsNumeric() bool {
	switch t.Class {
	case ClassScalar, ClassVector, ClassMatrix:
		return t.Base != BaseObject
	default:
		return false
	}
}

// IsIntegral reports whether the type's base supports bitwise/shift
// operators (int, uint, or bool - spec section "Supplemented Features").
func (t *Type) IsIntegral() bool {
	return t.IsNumeric() && (t.Base == BaseInt || t.Base == BaseUint || t.Base == BaseBool)
}

// IsScalar reports dimx==dimy==1 for a numeric type (used for if/while
// conditions and array indices, spec section 4.7).
func (t *Type) IsScalar() bool {
	return t.Class == ClassScalar && t.Dim.X == 1 && t.Dim.Y == 1
}

// String renders the canonical declared-type spelling, e.g. "float3",
// "float3x4", "MyStruct", "float2[4]".
func (t *Type) String() string {
	switch t.Class {
	case ClassScalar:
		return t.Base.String() + "1"
	case ClassVector:
		return fmt.Sprintf("%s%d", t.Base, t.Dim.X)
	case ClassMatrix:
		return fmt.Sprintf("%s%dx%d", t.Base, t.Dim.X, t.Dim.Y)
	case ClassArray:
		return fmt.Sprintf("%s[%d]", t.Elem, t.ArrayLen)
	case ClassStruct:
		if t.Name != "" {
			return t.Name
		}
		return "struct"
	case ClassObject:
		return t.ObjectKind.String()
	default:
		return "?"
	}
}

// Equal implements spec section 3's identity rule: two types compare equal
// iff class, base, dimensions, and the identity-relevant modifier subset
// (majority + const + precise; storage class is not part of type identity)
// match, and recursively for array element / struct field types.
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Class != b.Class || a.Dim != b.Dim {
		return false
	}
	if a.Class != ClassStruct && a.Class != ClassObject && a.Base != b.Base {
		return false
	}
	if a.Class == ClassObject && a.ObjectKind != b.ObjectKind {
		return false
	}

	const identityMask = ModMajorityMask | ModConst | ModPrecise
	if a.Modifiers&identityMask != b.Modifiers&identityMask {
		return false
	}

	switch a.Class {
	case ClassArray:
		return a.ArrayLen == b.ArrayLen && Equal(a.Elem, b.Elem)
	case ClassStruct:
		if a.Name != b.Name || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
