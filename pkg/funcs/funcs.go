// Package funcs implements the function table (spec section 3 "Function",
// section 4.5 "Functions"): entries keyed by name, each holding the set of
// overloads keyed by parameter signature.
package funcs

import (
	"fmt"
	"strings"

	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/ir"
	"github.com/hlslfe/compiler/pkg/scope"
	"github.com/hlslfe/compiler/pkg/token"
)

// Function is one declared function: its signature and, if defined, its
// lowered body.
type Function struct {
	Name       string
	Params     []*scope.Variable
	ReturnType *hlsltype.Type
	Body       ir.InstrList // nil until a defining declaration is lowered
	HasBody    bool
	Semantic   string
	Pos        token.Pos
	Intrinsic  bool
}

// Signature returns the parameter-type signature used to key overloads,
// e.g. "float4,float3x3".
func Signature(paramTypes []*hlsltype.Type) string {
	parts := make([]string, len(paramTypes))
	for i, t := range paramTypes {
		parts[i] = t.String()
	}
	return strings.Join(parts, ",")
}

// entry is one name's set of overloads.
type entry struct {
	overloads map[string]*Function
}

// Table is the function table for one compilation context.
type Table struct {
	entries map[string]*entry
}

// NewTable creates an empty function table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// ErrReturnTypeMismatch is returned by Declare when a second declaration
// of the same overload gives a different return type.
type ErrReturnTypeMismatch struct {
	Name     string
	PriorPos token.Pos
}

func (e *ErrReturnTypeMismatch) Error() string {
	return fmt.Sprintf("function %q redeclared with a different return type", e.Name)
}

// ErrRedefined is returned by Declare when both the existing and the new
// declaration of the same overload have bodies.
type ErrRedefined struct {
	Name     string
	PriorPos token.Pos
}

func (e *ErrRedefined) Error() string {
	return fmt.Sprintf("redefinition of function %q", e.Name)
}

// Declare registers fn under its name/signature. If an overload with the
// same signature already exists: a differing return type is always an
// error (ErrReturnTypeMismatch); if both declarations have bodies it is
// ErrRedefined; otherwise the declaration with a body is kept: a definition
// replaces a prior forward declaration, and a forward declaration after the
// definition leaves the definition in place.
func (t *Table) Declare(fn *Function) error {
	paramTypes := make([]*hlsltype.Type, len(fn.Params))
	for i, p := range fn.Params {
		paramTypes[i] = p.Type
	}
	sig := Signature(paramTypes)

	e, ok := t.entries[fn.Name]
	if !ok {
		e = &entry{overloads: make(map[string]*Function)}
		t.entries[fn.Name] = e
	}

	if prior, ok := e.overloads[sig]; ok {
		if !hlsltype.Equal(prior.ReturnType, fn.ReturnType) {
			return &ErrReturnTypeMismatch{Name: fn.Name, PriorPos: prior.Pos}
		}
		if prior.HasBody && fn.HasBody {
			return &ErrRedefined{Name: fn.Name, PriorPos: prior.Pos}
		}
		if prior.HasBody {
			return nil
		}
	}

	e.overloads[sig] = fn
	return nil
}

// Lookup returns every overload declared under name.
func (t *Table) Lookup(name string) []*Function {
	e, ok := t.entries[name]
	if !ok {
		return nil
	}
	out := make([]*Function, 0, len(e.overloads))
	for _, fn := range e.overloads {
		out = append(out, fn)
	}
	return out
}

// LookupSignature returns the specific overload matching name and
// paramTypes, if declared.
func (t *Table) LookupSignature(name string, paramTypes []*hlsltype.Type) (*Function, bool) {
	e, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	fn, ok := e.overloads[Signature(paramTypes)]
	return fn, ok
}

// Exists reports whether any function is declared under name, used by the
// lowering pass (pkg/lower) to reject a variable declaration that collides
// with a function name (spec section 4.3).
func (t *Table) Exists(name string) bool {
	_, ok := t.entries[name]
	return ok
}
