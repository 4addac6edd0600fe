package hlsltype

import "fmt"

// legacyAliases maps a legacy numeric type name to the base/dim it aliases.
var legacyAliases = map[string]struct {
	Base Base
	Dim  Dim
}{
	"DWORD": {BaseUint, Dim{1, 1}},
	"FLOAT": {BaseFloat, Dim{1, 1}},
}

// Predefined builds the full table of names->Types seeded into the global
// scope before parsing begins (spec section 4.2): every combination of
// {float,half,double,int,uint,bool} x {1..4} x {1..4} following the
// `<base><x>` (vector/scalar) and `<base><x>x<y>` (matrix) naming pattern,
// plus the legacy aliases DWORD/FLOAT/VECTOR/MATRIX/STRING/TEXTURE/
// PIXELSHADER/VERTEXSHADER.
func Predefined(r *Registry) map[string]*Type {
	out := make(map[string]*Type)

	bases := []Base{BaseFloat, BaseHalf, BaseDouble, BaseInt, BaseUint, BaseBool}
	for _, base := range bases {
		for x := 1; x <= 4; x++ {
			for y := 1; y <= 4; y++ {
				var t *Type
				var name string
				switch {
				case x == 1 && y == 1:
					t = r.NewScalar(base)
					name = fmt.Sprintf("%s1", base)
				case y == 1:
					t = r.NewVector(base, x)
					name = fmt.Sprintf("%s%d", base, x)
				default:
					t = r.NewMatrix(base, x, y, 0)
					name = fmt.Sprintf("%s%dx%d", base, x, y)
				}
				named := *t
				named.Name = name
				out[name] = &named
			}
		}
		// bare base name aliases the scalar, e.g. "float" == "float1"
		out[base.String()] = out[fmt.Sprintf("%s1", base)]
	}

	for name, alias := range legacyAliases {
		var t *Type
		if alias.Dim.Y == 1 && alias.Dim.X == 1 {
			t = r.NewScalar(alias.Base)
		} else if alias.Dim.Y == 1 {
			t = r.NewVector(alias.Base, alias.Dim.X)
		} else {
			t = r.NewMatrix(alias.Base, alias.Dim.X, alias.Dim.Y, 0)
		}
		named := *t
		named.Name = name
		out[name] = &named
	}

	out["VECTOR"] = out["float4"]
	out["MATRIX"] = out["float4x4"]
	out["STRING"] = namedObject(r, "STRING", ObjectString)
	out["string"] = out["STRING"]
	out["TEXTURE"] = namedObject(r, "TEXTURE", ObjectTexture)
	out["PIXELSHADER"] = namedObject(r, "PIXELSHADER", ObjectPixelShader)
	out["VERTEXSHADER"] = namedObject(r, "VERTEXSHADER", ObjectVertexShader)

	out["sampler"] = namedObject(r, "sampler", ObjectSampler)
	out["sampler1D"] = namedObject(r, "sampler1D", ObjectSampler1D)
	out["sampler2D"] = namedObject(r, "sampler2D", ObjectSampler2D)
	out["sampler3D"] = namedObject(r, "sampler3D", ObjectSampler3D)
	out["samplerCUBE"] = namedObject(r, "samplerCUBE", ObjectSamplerCube)
	out["texture2D"] = namedObject(r, "texture2D", ObjectTexture2D)
	out["textureCUBE"] = namedObject(r, "textureCUBE", ObjectTextureCube)

	out["void"] = func() *Type {
		v := *r.Void()
		v.Name = "void"
		return &v
	}()

	return out
}

func namedObject(r *Registry, name string, kind ObjectKind) *Type {
	t := *r.NewObject(kind, 0)
	t.Name = name
	return &t
}
