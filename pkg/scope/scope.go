// Package scope implements the scope stack (spec section 3 "Scope",
// section 4 "Scope stack"): a tree of scopes, each owning a variable table
// (insertion order preserved) and a type table, with outward-walking
// lookup. The root scope ("globals") is created before parsing begins and
// seeded with the predefined numeric types.
package scope

import (
	"fmt"

	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/token"
)

// RegisterKind is the hardware register class a :register() reservation
// names (spec section 4.9).
type RegisterKind int

const (
	RegisterConst RegisterKind = iota // c
	RegisterConstInt
	RegisterConstBool
	RegisterSampler
)

// Register is a parsed `:register(<tag><num>)` reservation.
type Register struct {
	Kind   RegisterKind
	Number int
}

// Variable is a named binding (spec section 3 "Variable"): a declared
// local, parameter, global, or struct-backing storage location. Liveness
// indices are filled in by the liveness pass, not at declaration time.
type Variable struct {
	Name       string
	Type       *hlsltype.Type
	Pos        token.Pos
	Modifiers  hlsltype.Modifier
	Semantic   string
	Register   *Register
	FirstWrite uint32
	LastRead   uint32
}

// ErrRedefined is returned by Declare{Var,Type} when name already exists
// in this exact scope.
type ErrRedefined struct {
	Name     string
	PriorPos token.Pos
}

func (e *ErrRedefined) Error() string {
	return fmt.Sprintf("redefinition of %q", e.Name)
}

// Scope is one node in the scope tree: a parent link, an insertion-ordered
// variable list with name index, and a type-name table.
type Scope struct {
	parent   *Scope
	vars     []*Variable
	varIndex map[string]*Variable
	types    map[string]*hlsltype.Type
	typePos  map[string]token.Pos
}

// NewRoot creates the global scope, with no parent.
func NewRoot() *Scope {
	return &Scope{
		varIndex: make(map[string]*Variable),
		types:    make(map[string]*hlsltype.Type),
		typePos:  make(map[string]token.Pos),
	}
}

// Push creates a child scope of s (entering a function body, a compound
// statement, a loop body, etc).
func (s *Scope) Push() *Scope {
	return &Scope{
		parent:   s,
		varIndex: make(map[string]*Variable),
		types:    make(map[string]*hlsltype.Type),
		typePos:  make(map[string]token.Pos),
	}
}

// Parent returns the enclosing scope, or nil for the root.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// IsGlobal reports whether s is the root scope.
func (s *Scope) IsGlobal() bool {
	return s.parent == nil
}

// DeclareVar adds v to this scope. It is an error (ErrRedefined) if a
// variable of the same name already exists in this exact scope - spec
// section 4.3: "Name collision ... with a prior variable in the same
// scope, is an error".
func (s *Scope) DeclareVar(v *Variable) error {
	if prior, ok := s.varIndex[v.Name]; ok {
		return &ErrRedefined{Name: v.Name, PriorPos: prior.Pos}
	}
	s.varIndex[v.Name] = v
	s.vars = append(s.vars, v)
	return nil
}

// LookupVar walks outward from s looking for name, returning the nearest
// enclosing declaration.
func (s *Scope) LookupVar(name string) (*Variable, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.varIndex[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// LookupLocalVar checks only this exact scope, used for redefinition
// checks that must not see outer-scope shadowing as a conflict.
func (s *Scope) LookupLocalVar(name string) (*Variable, bool) {
	v, ok := s.varIndex[name]
	return v, ok
}

// Vars returns this scope's own variables in declaration order.
func (s *Scope) Vars() []*Variable {
	return s.vars
}

// DeclareType inserts t under name in this scope's type map at pos.
// Redefinition in the same scope is an error (spec section 4.4
// "Typedefs") carrying PriorPos so the caller can point back at the
// earlier declaration.
func (s *Scope) DeclareType(name string, t *hlsltype.Type, pos token.Pos) error {
	if _, ok := s.types[name]; ok {
		return &ErrRedefined{Name: name, PriorPos: s.typePos[name]}
	}
	s.types[name] = t
	s.typePos[name] = pos
	return nil
}

// LookupType walks outward from s looking for a type named name.
func (s *Scope) LookupType(name string) (*hlsltype.Type, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.types[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// SeedPredefined populates the root scope with every predefined numeric
// type name and legacy alias (spec section 4.2), before any parsing
// begins.
func SeedPredefined(root *Scope, reg *hlsltype.Registry) {
	for name, t := range hlsltype.Predefined(reg) {
		root.types[name] = t
	}
}
