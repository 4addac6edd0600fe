package hlslast

import (
	"github.com/hlslfe/compiler/pkg/hlsllex"
)

// Class re-exports hlsllex.Class so callers outside this package never
// need to import hlsllex directly just to read a capture's kind.
type Class = hlsllex.Class

const (
	ClassNewIdent = hlsllex.ClassNewIdent
	ClassVarName  = hlsllex.ClassVarName
	ClassTypeName = hlsllex.ClassTypeName
)

// ClassifierTable is the flat name table the lexer consults to reclassify
// identifiers while parsing (spec section 4.1). HLSL gives types,
// variables, and functions one shared namespace per scope and rejects a
// declaration that collides with any prior one regardless of kind (spec
// section 4.3), so a variable can never legally shadow a type name or vice
// versa - only a variable can shadow an outer variable of the same kind,
// which classifies identically either way. That makes a single flat table
// sound for lexical classification even though the real scope stack
// (pkg/scope) is block-nested; the flat table only decides which grammar
// production to try; pkg/scope and pkg/lower re-validate every
// declaration's legality from scratch during lowering.
type ClassifierTable struct {
	names map[string]Class
}

// NewClassifierTable creates a table seeded with every predefined type
// name, so base types classify correctly before any user declaration has
// been seen.
func NewClassifierTable(predefined map[string]struct{}) *ClassifierTable {
	t := &ClassifierTable{names: make(map[string]Class, len(predefined)+64)}
	for name := range predefined {
		t.names[name] = ClassTypeName
	}
	return t
}

// Declare records name under class, run as a side effect of the parser
// consuming the identifier that introduces it - the same moment a
// hand-written recursive-descent parser would insert it into its symbol
// table.
func (t *ClassifierTable) Declare(name string, class Class) {
	t.names[name] = class
}

// Classify implements hlsllex.Classifier.
func (t *ClassifierTable) Classify(name string) Class {
	if c, ok := t.names[name]; ok {
		return c
	}
	return ClassNewIdent
}

// activeTable is the table the Ident capture types below register into.
// It is set for the duration of a single Parser.Parse* call; Parser is not
// safe for concurrent use, matching the single-pass, stateful nature of
// the rest of this front end (spec section 5, "single-threaded" context).
var activeTable *ClassifierTable

// TypeIdent captures an identifier that introduces a new type name
// (struct tag, typedef name) and immediately registers it as a TypeName so
// that later references in the same file are classified correctly without
// waiting for a semantic pass.
type TypeIdent string

func (id *TypeIdent) Capture(values []string) error {
	*id = TypeIdent(values[0])
	if activeTable != nil {
		activeTable.Declare(values[0], ClassTypeName)
	}
	return nil
}

// VarIdent captures an identifier that introduces a new variable or
// function name (a declarator, a parameter, a function name) and
// registers it as a VarName.
type VarIdent string

func (id *VarIdent) Capture(values []string) error {
	*id = VarIdent(values[0])
	if activeTable != nil {
		activeTable.Declare(values[0], ClassVarName)
	}
	return nil
}
