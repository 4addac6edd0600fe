package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlslfe/compiler/pkg/diag"
)

func TestCompileSwizzleChain(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `float4 main(float4 p : TEXCOORD) : COLOR { return p.xyz.xxyy; }`

	res, err := ctx.Compile("swizzle.hlsl", src, "main")
	require.NoError(t, err)
	require.Equal(t, diag.StatusOK, res.Status, ctx.Diags.String())
	require.NotNil(t, res.Entry)
	assert.True(t, res.Entry.HasBody)
}

func TestCompileStructFieldAssignment(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `
struct Light { float3 color; float intensity; };
float4 main() : COLOR {
	Light l;
	l.intensity = 2.0;
	return float4(l.color * l.intensity, 1.0);
}`

	res, err := ctx.Compile("struct.hlsl", src, "main")
	require.NoError(t, err)
	require.Equal(t, diag.StatusOK, res.Status, ctx.Diags.String())
	require.NotNil(t, res.Entry)
}

func TestCompileStructCompoundInitializer(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `
struct S { float a; float2 b; };
float4 main() : COLOR {
	S s = {1.0, float2(2.0, 3.0)};
	return float4(s.b, s.a, 1.0);
}`

	res, err := ctx.Compile("compound.hlsl", src, "main")
	require.NoError(t, err)
	require.Equal(t, diag.StatusOK, res.Status, ctx.Diags.String())
	require.NotNil(t, res.Entry)
}

func TestCompileStructCompoundInitializerFieldMismatchIsUnimplemented(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `
struct S { float a; float2 b; };
float4 main() : COLOR {
	S s = {1.0, 2.0, 3.0};
	return float4(s.b, s.a, 1.0);
}`

	res, err := ctx.Compile("compound_mismatch.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusOK, res.Status, ctx.Diags.String())

	found := false
	for _, d := range ctx.Diags.Diagnostics() {
		if d.Severity == diag.SeverityUnimplemented {
			found = true
		}
	}
	assert.True(t, found, "expected an unimplemented diagnostic for the mismatched struct initializer")
}

func TestCompileVectorCompoundInitializer(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `float4 main() : COLOR { float3 v = {1.0, 2.0, 3.0}; return float4(v, 1.0); }`

	res, err := ctx.Compile("vector_compound.hlsl", src, "main")
	require.NoError(t, err)
	require.Equal(t, diag.StatusOK, res.Status, ctx.Diags.String())
}

func TestCompileIncompatibleCastIsError(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `
struct S { float a; float2 b; };
float main() : COLOR {
	S s;
	return (float)s;
}`

	res, err := ctx.Compile("cast.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusError, res.Status)

	found := false
	for _, d := range ctx.Diags.Diagnostics() {
		if d.Severity == diag.SeverityError && strings.Contains(d.Message, "cannot cast") {
			found = true
		}
	}
	assert.True(t, found, "expected a cannot-cast diagnostic, got: %s", ctx.Diags.String())
}

func TestCompileDuplicateParamModifierIsError(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `float4 main(in in float4 p : TEXCOORD) : COLOR { return p; }`

	res, err := ctx.Compile("dupmod.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusError, res.Status)

	found := false
	for _, d := range ctx.Diags.Diagnostics() {
		if d.Severity == diag.SeverityError && strings.Contains(d.Message, "duplicate modifier") {
			found = true
		}
	}
	assert.True(t, found, "expected a duplicate-modifier diagnostic, got: %s", ctx.Diags.String())
}

func TestCompileUnknownRegisterTagIsWarning(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `
float x : register(x0);
float4 main() : COLOR { return float4(x,x,x,x); }`

	res, err := ctx.Compile("badreg.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusWarning, res.Status, ctx.Diags.String())

	found := false
	for _, d := range ctx.Diags.Diagnostics() {
		if d.Severity == diag.SeverityWarning && strings.Contains(d.Message, "unsupported register tag") {
			found = true
		}
	}
	assert.True(t, found, "expected an unsupported-register-tag warning, got: %s", ctx.Diags.String())
}

func TestCompileRegisterShaderTargetArgumentIsWarning(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `
float x : register(c0, vs_3_0);
float4 main() : COLOR { return float4(x,x,x,x); }`

	res, err := ctx.Compile("regtarget.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusWarning, res.Status, ctx.Diags.String())

	found := false
	for _, d := range ctx.Diags.Diagnostics() {
		if d.Severity == diag.SeverityWarning && strings.Contains(d.Message, "shader-target argument") {
			found = true
		}
	}
	assert.True(t, found, "expected a shader-target-argument warning, got: %s", ctx.Diags.String())
}

func TestCompileFunctionRegisterReservationIsDiscardedWithWarning(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `
float4 helper() : register(c0) { return float4(0,0,0,0); }
float4 main() : COLOR { return helper(); }`

	res, err := ctx.Compile("fnreg.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusWarning, res.Status, ctx.Diags.String())

	found := false
	for _, d := range ctx.Diags.Diagnostics() {
		if d.Severity == diag.SeverityWarning && strings.Contains(d.Message, "unsupported and discarded") {
			found = true
		}
	}
	assert.True(t, found, "expected a function-register-discarded warning, got: %s", ctx.Diags.String())
}

func TestCompileConstWithoutInitializerIsError(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `float main() : COLOR { const int x; return 0.0; }`

	res, err := ctx.Compile("const.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusError, res.Status)
	assert.Nil(t, res.Entry)
}

func TestCompileBroadcastInitialization(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `float4 main() : COLOR { float4 v; v.xy = 1.0; return v; }`

	res, err := ctx.Compile("broadcast.hlsl", src, "main")
	require.NoError(t, err)
	require.Equal(t, diag.StatusOK, res.Status, ctx.Diags.String())
	require.NotNil(t, res.Entry)
}

func TestCompileForLoopAnnotatesLiveness(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `float main() : COLOR { for (int i = 0; i < 4; ++i) { } return 0.0; }`

	res, err := ctx.Compile("loop.hlsl", src, "main")
	require.NoError(t, err)
	require.Equal(t, diag.StatusOK, res.Status, ctx.Diags.String())
	require.NotNil(t, res.Entry)

	var loopNext, iLastRead uint32
	found := false
	for _, h := range res.Entry.Body {
		switch n := ctx.Arena.Get(h); n.Kind.String() {
		case "Loop":
			found = true
			loopNext = n.Loop().NextIndex
		case "Assignment":
			iLastRead = ctx.Arena.Get(n.Assignment().LValue).VarDeref().Var.LastRead
		}
	}
	require.True(t, found, "expected a Loop node in the entry body")
	assert.NotZero(t, loopNext)
	assert.GreaterOrEqual(t, iLastRead, loopNext, "i's last read should reach the loop exit")
}

func TestCompileMissingEntryPoint(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `float4 helper() : COLOR { return float4(0,0,0,0); }`

	res, err := ctx.Compile("missing.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusError, res.Status)
	assert.Nil(t, res.Entry)
}

func TestTeardownResetsContextForReuse(t *testing.T) {
	ctx := NewContext(Options{ShaderType: ShaderPixel})
	src := `float4 main() : COLOR { return float4(0,0,0,0); }`

	res, err := ctx.Compile("a.hlsl", src, "main")
	require.NoError(t, err)
	require.Equal(t, diag.StatusOK, res.Status)

	ctx.Teardown()
	assert.Equal(t, 0, ctx.Arena.Len())

	res, err = ctx.Compile("b.hlsl", src, "main")
	require.NoError(t, err)
	assert.Equal(t, diag.StatusOK, res.Status, ctx.Diags.String())
}
