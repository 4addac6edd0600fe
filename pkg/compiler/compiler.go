// Package compiler wires every other package into the single entry point
// spec section 6 describes: compile(entry_point_name, shader_type,
// major_version, minor_version) -> (status, diagnostics). It owns the one
// compilation Context a call operates on (spec section 5: "strictly
// single-threaded ... one compilation context at a time").
package compiler

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/hlslfe/compiler/pkg/diag"
	"github.com/hlslfe/compiler/pkg/funcs"
	"github.com/hlslfe/compiler/pkg/hlslast"
	"github.com/hlslfe/compiler/pkg/hlsllex"
	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/ir"
	"github.com/hlslfe/compiler/pkg/liveness"
	"github.com/hlslfe/compiler/pkg/lower"
	"github.com/hlslfe/compiler/pkg/scope"
	"github.com/hlslfe/compiler/pkg/token"
)

// ShaderType identifies the pipeline stage the entry function targets.
// The front end does not branch its lowering on this value (no stage-
// specific semantics are modeled, spec section 1's "full HLSL conformance"
// non-goal) but carries it through for the downstream bytecode writer
// (out of scope, spec section 1) to consume.
type ShaderType int

const (
	ShaderVertex ShaderType = iota
	ShaderPixel
	ShaderGeometry
	ShaderHull
	ShaderDomain
	ShaderCompute
)

func (t ShaderType) String() string {
	switch t {
	case ShaderVertex:
		return "vertex"
	case ShaderPixel:
		return "pixel"
	case ShaderGeometry:
		return "geometry"
	case ShaderHull:
		return "hull"
	case ShaderDomain:
		return "domain"
	case ShaderCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// Options configures a Context. It is a plain struct supplied by the
// embedding driver (spec section 1 places the driver out of scope); the
// core never reads configuration from disk or flags.
type Options struct {
	ShaderType      ShaderType
	MajorVersion    int
	MinorVersion    int
	DefaultMajority hlsltype.Modifier // ModRowMajor, ModColumnMajor, or 0 for column-major
}

// Context owns every piece of shared, single-compilation state (spec
// section 5): the file-name pool, diagnostic sink, type registry, global
// scope, function table, and IR arena. ID uniquely identifies the context
// so a caller juggling several concurrent Contexts (each single-threaded
// on its own) can correlate diagnostics back to the Compile call that
// produced them.
type Context struct {
	ID      uuid.UUID
	Options Options

	Pool    *token.Pool
	Diags   *diag.Sink
	Reg     *hlsltype.Registry
	Global  *scope.Scope
	Funcs   *funcs.Table
	Arena   *ir.Arena
	table   *hlslast.ClassifierTable
	tracker *token.Tracker
}

// NewContext creates a fresh, fully-seeded compilation context: the global
// scope carries every predefined numeric type and legacy alias (spec
// section 4.2) before any source is parsed.
func NewContext(opts Options) *Context {
	pool := token.NewPool()
	reg := hlsltype.NewRegistry(opts.DefaultMajority)
	global := scope.NewRoot()
	scope.SeedPredefined(global, reg)

	predefinedNames := make(map[string]struct{}, len(hlsltype.Predefined(reg)))
	for name := range hlsltype.Predefined(reg) {
		predefinedNames[name] = struct{}{}
	}

	id := uuid.New()
	sink := diag.NewSink(pool)
	sink.SetContextID(id)

	return &Context{
		ID:      id,
		Options: opts,
		Pool:    pool,
		Diags:   sink,
		Reg:     reg,
		Global:  global,
		Funcs:   funcs.NewTable(),
		Arena:   ir.NewArena(),
		table:   hlslast.NewClassifierTable(predefinedNames),
	}
}

// Result is the outcome of one Compile call (spec section 6's
// "(status, diagnostics)", plus the lowered entry function for callers
// that need the IR).
type Result struct {
	Status      diag.Status
	Diagnostics []diag.Diagnostic
	Entry       *funcs.Function // nil unless Status != StatusError
}

// Compile parses filename/source as one translation unit, lowers every
// top-level declaration, locates entryPointName's definition, and - if no
// error was recorded - indexes and liveness-annotates its body (spec
// section 6 "Entry point"). It returns a non-nil error only for a fatal,
// programmer-facing failure (spec section 7: "Out-of-memory is fatal");
// ordinary HLSL compile errors surface as diagnostics, never as a Go
// error, mirroring the teacher's Validate/SemanticAnalyzer split.
func (c *Context) Compile(filename, source, entryPointName string) (Result, error) {
	if c == nil {
		return Result{}, fmt.Errorf("compiler: nil context")
	}

	c.tracker = token.NewTracker(c.Pool, filename)
	lex := hlsllex.New(c.table, c.tracker)

	parser, err := hlslast.New(lex, c.table)
	if err != nil {
		return Result{}, fmt.Errorf("compiler: building parser: %w", err)
	}

	file, err := parser.ParseString(filename, source)
	if err != nil {
		c.Diags.Errorf(c.tracker.Pos(), "%s", err)
		return c.result(), nil
	}

	b := lower.New(c.Reg, c.Funcs, c.Diags, c.Pool, c.Global)
	b.Arena = c.Arena
	b.LowerFile(file)

	entry := c.resolveEntry(entryPointName)
	if entry == nil {
		c.Diags.Errorf(token.Pos{}, "entry point %q not found", entryPointName)
		return c.result(), nil
	}

	if !c.Diags.HasErrors() {
		liveness.Index(c.Arena, entry.Body)
		liveness.Analyze(c.Arena, c.Global, entry)
	}

	res := c.result()
	if res.Status != diag.StatusError {
		res.Entry = entry
	}
	return res, nil
}

// resolveEntry returns the defining (HasBody) overload named
// entryPointName, or nil if none has a body (spec section 4.5: a forward
// declaration alone cannot serve as an entry point).
func (c *Context) resolveEntry(name string) *funcs.Function {
	for _, fn := range c.Funcs.Lookup(name) {
		if fn.HasBody {
			return fn
		}
	}
	return nil
}

func (c *Context) result() Result {
	return Result{
		Status:      c.Diags.Status(),
		Diagnostics: c.Diags.Diagnostics(),
	}
}

// Teardown releases every resource owned by the context (spec section 5:
// "traversing all scopes, freeing contained variables, destroying type
// maps, then walking the global type list and freeing each type, then
// freeing the function table"). Afterward the Context is back in its
// freshly created state and can Compile again.
func (c *Context) Teardown() {
	c.Arena.Reset()
	c.Reg.Teardown()
	c.Funcs = funcs.NewTable()
	c.Diags = diag.NewSink(c.Pool)
	c.Diags.SetContextID(c.ID)

	c.Global = scope.NewRoot()
	scope.SeedPredefined(c.Global, c.Reg)

	predefinedNames := make(map[string]struct{})
	for name := range hlsltype.Predefined(c.Reg) {
		predefinedNames[name] = struct{}{}
	}
	c.table = hlslast.NewClassifierTable(predefinedNames)
}
