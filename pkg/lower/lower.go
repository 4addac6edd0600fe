// Package lower builds the IR from a parsed hlslast.File: it is the
// semantic-actions layer that a yacc-style grammar would normally run
// inline on each reduction (spec section 4 "IR builder"). It is written
// as ordinary recursive-descent methods over the concrete hlslast types
// rather than a Visitor, matching the IR's own tagged-variant-over-
// dispatch design choice (pkg/ir).
package lower

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/hlslfe/compiler/pkg/diag"
	"github.com/hlslfe/compiler/pkg/funcs"
	"github.com/hlslfe/compiler/pkg/hlslast"
	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/ir"
	"github.com/hlslfe/compiler/pkg/scope"
	"github.com/hlslfe/compiler/pkg/token"
)

// Builder holds every piece of shared state the lowering pass threads
// through a compilation: the IR arena, the type registry, the function
// table, the current point in the scope stack, and the diagnostic sink
// everything reports into.
type Builder struct {
	Arena   *ir.Arena
	Reg     *hlsltype.Registry
	Funcs   *funcs.Table
	Diags   *diag.Sink
	Pool    *token.Pool
	Global  *scope.Scope
	scope   *scope.Scope
	curFunc *funcs.Function
}

// New creates a Builder over a fresh arena, wired to an already-seeded
// global scope and registry (spec section 5: the global scope and
// predefined types exist before lowering begins).
func New(reg *hlsltype.Registry, table *funcs.Table, diags *diag.Sink, pool *token.Pool, global *scope.Scope) *Builder {
	return &Builder{
		Arena:  ir.NewArena(),
		Reg:    reg,
		Funcs:  table,
		Diags:  diags,
		Pool:   pool,
		Global: global,
		scope:  global,
	}
}

func (b *Builder) pos(p lexer.Position) token.Pos {
	return token.Pos{File: b.Pool.Intern(p.Filename), Line: p.Line, Col: p.Column}
}

func (b *Builder) pushScope() { b.scope = b.scope.Push() }
func (b *Builder) popScope()  { b.scope = b.scope.Parent() }

// emit appends n to the arena and to list, returning its handle.
func (b *Builder) emit(list *ir.InstrList, n ir.Node) ir.NodeHandle {
	h := b.Arena.New(n)
	*list = append(*list, h)
	return h
}

var modifierWords = map[string]hlsltype.Modifier{
	"const":           hlsltype.ModConst,
	"static":          hlsltype.ModStatic,
	"extern":          hlsltype.ModExtern,
	"uniform":         hlsltype.ModUniform,
	"shared":          hlsltype.ModShared,
	"groupshared":     hlsltype.ModGroupShared,
	"volatile":        hlsltype.ModVolatile,
	"precise":         hlsltype.ModPrecise,
	"row_major":       hlsltype.ModRowMajor,
	"column_major":    hlsltype.ModColumnMajor,
	"nointerpolation": hlsltype.ModNoInterpolation,
	"in":              hlsltype.ModIn,
	"out":             hlsltype.ModOut,
	"inout":           hlsltype.ModInOut,
}

// convertModifiers ORs m's modifier words into a bitset, reporting an
// error for any word repeated within the same declaration (spec section
// 4.5: "duplicate input modifiers are an error", generalized here to
// every modifier keyword rather than just in/out).
func (b *Builder) convertModifiers(m *hlslast.Modifiers) hlsltype.Modifier {
	var out hlsltype.Modifier
	if m == nil {
		return out
	}
	seen := make(map[string]bool, len(m.Items))
	for _, w := range m.Items {
		if seen[w] {
			b.Diags.Errorf(b.pos(m.Pos), "duplicate modifier %q", w)
			continue
		}
		seen[w] = true
		out |= modifierWords[w]
	}
	return out
}

// resolveType looks up a classified type name in the current scope,
// reporting a diagnostic and returning the registry's void type if it is
// somehow unresolvable (the grammar should never let this happen, since
// only classified TypeName tokens reach here, but lowering must not panic
// on a malformed program).
func (b *Builder) resolveType(name string, pos token.Pos) *hlsltype.Type {
	if t, ok := b.scope.LookupType(name); ok {
		return t
	}
	b.Diags.Errorf(pos, "unknown type %q", name)
	return b.Reg.Void()
}

// LowerFile lowers every top-level declaration in order (spec section
// 4.2-4.5).
func (b *Builder) LowerFile(f *hlslast.File) {
	for _, decl := range f.Decls {
		switch {
		case decl.Struct != nil:
			b.lowerStruct(decl.Struct)
		case decl.Typedef != nil:
			b.lowerTypedef(decl.Typedef)
		case decl.Func != nil:
			b.lowerFunc(decl.Func)
		case decl.GlobalV != nil:
			b.lowerGlobalVar(decl.GlobalV)
		}
	}
}

func (b *Builder) lowerStruct(s *hlslast.StructDecl) {
	pos := b.pos(s.Pos)
	fields := make([]*hlsltype.Field, 0, len(s.Fields))
	for _, fd := range s.Fields {
		base := b.resolveType(fd.Type, b.pos(fd.Pos))
		mods := b.convertModifiers(fd.Mods)
		for _, decl := range fd.Names {
			ft := b.applyDeclaratorShape(base, mods, decl)
			semantic, _ := b.annotationParts(decl.Annot, b.pos(decl.Pos))
			fields = append(fields, &hlsltype.Field{
				Name:      string(decl.Name),
				Type:      ft,
				Modifiers: mods,
				Semantic:  semantic,
			})
		}
	}
	st := b.Reg.NewStruct(string(s.Name), fields)
	if err := b.scope.DeclareType(string(s.Name), st, pos); err != nil {
		b.Diags.Errorf(pos, "redefinition of type %q", s.Name)
		if re, ok := err.(*scope.ErrRedefined); ok {
			b.Diags.Notef(re.PriorPos, "previous declaration of %q is here", s.Name)
		}
	}
}

func (b *Builder) lowerTypedef(t *hlslast.TypedefDecl) {
	pos := b.pos(t.Pos)
	base := b.resolveType(t.Type, pos)
	if err := b.scope.DeclareType(string(t.Name), base, pos); err != nil {
		b.Diags.Errorf(pos, "redefinition of type %q", t.Name)
		if re, ok := err.(*scope.ErrRedefined); ok {
			b.Diags.Notef(re.PriorPos, "previous declaration of %q is here", t.Name)
		}
	}
}

// applyDeclaratorShape overlays array-ness onto base for one declarator,
// reporting invalid sizes (spec section 4.3: length must be a positive
// constant no greater than 65536).
func (b *Builder) applyDeclaratorShape(base *hlsltype.Type, mods hlsltype.Modifier, d *hlslast.Declarator) *hlsltype.Type {
	clone, err := b.Reg.Clone(base, mods&hlsltype.ModMajorityMask)
	if err != nil {
		b.Diags.Errorf(b.pos(d.Pos), "%s", err)
		clone = base
	}
	if d.ArrayLen == nil {
		return clone
	}

	length := 0
	if d.ArrayLen != nil {
		h := b.lowerExpr(d.ArrayLen, &ir.InstrList{})
		n := b.Arena.Get(h)
		if n.Kind == ir.KindConstant && n.Constant().Base != hlsltype.BaseFloat {
			length = int(n.Constant().Int)
		}
	}
	if length <= 0 || length > 65536 {
		b.Diags.Errorf(b.pos(d.Pos), "array length must be between 1 and 65536")
		length = 1
	}
	return b.Reg.NewArray(clone, length)
}

// annotationParts splits a declarator/parameter/function annotation into
// its semantic string and register reservation, if any (spec section
// 4.9). The optional shader-target argument on a register() reference is
// tolerated but ignored with a diagnostic.
func (b *Builder) annotationParts(a *hlslast.Annotation, pos token.Pos) (semantic string, reg *scope.Register) {
	if a == nil {
		return "", nil
	}
	if a.Register != nil {
		if a.Register.Target != "" {
			b.Diags.Warningf(pos, "shader-target argument %q on register reservation is ignored", a.Register.Target)
		}
		return "", b.parseRegister(a.Register.Tag, pos)
	}
	return a.Semantic, nil
}

// parseRegister parses a `:register(<tag>)` reservation (spec section
// 4.9). An unrecognized tag letter produces a warning and a null (nil)
// reservation instead of a bogus default-kind one.
func (b *Builder) parseRegister(tag string, pos token.Pos) *scope.Register {
	if tag == "" {
		return nil
	}
	var kind scope.RegisterKind
	switch tag[0] {
	case 'c', 'C':
		kind = scope.RegisterConst
	case 'i', 'I':
		kind = scope.RegisterConstInt
	case 'b', 'B':
		kind = scope.RegisterConstBool
	case 's', 'S':
		kind = scope.RegisterSampler
	default:
		b.Diags.Warningf(pos, "unsupported register tag %q", tag)
		return nil
	}
	num := 0
	fmt.Sscanf(tag[1:], "%d", &num)
	return &scope.Register{Kind: kind, Number: num}
}

// lowerGlobalVar declares each name in decl.Names as a global Variable
// (spec section 4.3: a global with no explicit storage-class modifier is
// implicitly uniform).
func (b *Builder) lowerGlobalVar(decl *hlslast.GlobalVarDecl) {
	base := b.resolveType(decl.Type, b.pos(decl.Pos))
	mods := b.convertModifiers(decl.Mods)
	if mods&hlsltype.ModStorageMask == 0 {
		mods |= hlsltype.ModUniform
	}
	for _, d := range decl.Names {
		b.declareVar(base, mods, d, true)
	}
}

// declareVar lowers one Declarator into a scope.Variable in the current
// scope, validating const-without-initializer and storage-class rules
// (spec section 4.3).
func (b *Builder) declareVar(base *hlsltype.Type, mods hlsltype.Modifier, d *hlslast.Declarator, global bool) *scope.Variable {
	pos := b.pos(d.Pos)
	vt := b.applyDeclaratorShape(base, mods, d)

	if !global && mods&(hlsltype.ModExtern|hlsltype.ModShared|hlsltype.ModGroupShared|hlsltype.ModUniform) != 0 {
		b.Diags.Errorf(pos, "local variable %q cannot carry extern/shared/groupshared/uniform", d.Name)
	}
	if mods.Has(hlsltype.ModConst) && d.Init == nil {
		b.Diags.Errorf(pos, "const variable %q must have an initializer", d.Name)
	}

	semantic, reg := b.annotationParts(d.Annot, pos)
	v := &scope.Variable{
		Name:      string(d.Name),
		Type:      vt,
		Pos:       pos,
		Modifiers: mods,
		Semantic:  semantic,
		Register:  reg,
	}
	if b.Funcs.Exists(v.Name) {
		b.Diags.Errorf(pos, "%q already names a function", v.Name)
	} else if err := b.scope.DeclareVar(v); err != nil {
		b.Diags.Errorf(pos, "redefinition of %q", v.Name)
		if re, ok := err.(*scope.ErrRedefined); ok {
			b.Diags.Notef(re.PriorPos, "previous declaration of %q is here", v.Name)
		}
	}
	return v
}

// lowerFunc declares fn's signature and, if it has a body, lowers it
// (spec section 4.5). Forward declarations (no body) and definitions of
// the same overload are reconciled by funcs.Table.Declare.
func (b *Builder) lowerFunc(f *hlslast.FuncDecl) {
	pos := b.pos(f.Pos)
	retType := b.resolveType(f.ReturnType, pos)
	mods := b.convertModifiers(f.Mods)

	b.pushScope()
	params := make([]*scope.Variable, 0, len(f.Params))
	for _, p := range f.Params {
		pt := b.resolveType(p.Type, b.pos(p.Pos))
		pmods := b.convertModifiers(p.Mods)
		if pmods&hlsltype.ModInOut == 0 {
			pmods |= hlsltype.ModIn
		}
		semantic, reg := b.annotationParts(p.Annot, b.pos(p.Pos))
		v := &scope.Variable{
			Name:      string(p.Name),
			Type:      pt,
			Pos:       b.pos(p.Pos),
			Modifiers: pmods,
			Semantic:  semantic,
			Register:  reg,
		}
		if err := b.scope.DeclareVar(v); err != nil {
			b.Diags.Errorf(v.Pos, "redefinition of parameter %q", v.Name)
			if re, ok := err.(*scope.ErrRedefined); ok {
				b.Diags.Notef(re.PriorPos, "previous declaration of %q is here", v.Name)
			}
		}
		params = append(params, v)
	}

	semantic, fnReg := b.annotationParts(f.Annot, pos)
	if fnReg != nil {
		b.Diags.Warningf(pos, "register reservation on function %q is unsupported and discarded", f.Name)
	}
	if isVoid(retType) && semantic != "" {
		b.Diags.Errorf(pos, "void function %q cannot carry a semantic", f.Name)
	}

	fn := &funcs.Function{
		Name:       string(f.Name),
		Params:     params,
		ReturnType: retType,
		Semantic:   semantic,
		Pos:        pos,
		HasBody:    f.Body != nil,
	}
	b.curFunc = fn

	if f.Body != nil {
		body := ir.InstrList{}
		b.lowerStmts(f.Body.Stmts, &body)
		fn.Body = body
	}

	if err := b.Funcs.Declare(fn); err != nil {
		b.Diags.Errorf(pos, "%s", err)
		var priorPos token.Pos
		switch e := err.(type) {
		case *funcs.ErrReturnTypeMismatch:
			priorPos = e.PriorPos
		case *funcs.ErrRedefined:
			priorPos = e.PriorPos
		}
		if priorPos != (token.Pos{}) {
			b.Diags.Notef(priorPos, "previous declaration of %q is here", fn.Name)
		}
	}

	b.curFunc = nil
	b.popScope()
}

// Dump renders fn's lowered body as an indented instruction listing, for
// interactive debugging of the lowering pass (spec section 5 carries no
// logging requirement; this is the teacher's DebugPrinter role, not a
// logging framework - see DESIGN.md).
func Dump(arena *ir.Arena, fn *funcs.Function) string {
	if fn == nil || !fn.HasBody {
		return fmt.Sprintf("%s: no body\n", funcName(fn))
	}
	return fmt.Sprintf("%s:\n%s", funcName(fn), ir.Dump(arena, fn.Body))
}

func funcName(fn *funcs.Function) string {
	if fn == nil {
		return "<nil>"
	}
	return fn.Name
}
