// Package hlslast defines the grammar for the HLSL subset (spec sections
// 4.3-4.9): declarations, typedefs, structs, functions, statements and
// expressions, built with participle the same way the teacher's guix
// grammar is (struct tags, ordered-choice alternatives, a stateful
// lexer). The one structural departure from guix is that this grammar's
// lexer (pkg/hlsllex) hands declarations and expression-statements
// already-disambiguated token classes, so Stmt's alternatives key off
// that classification instead of relying purely on backtracking.
package hlslast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is a whole compilation unit: top-level struct, typedef, function
// and global-variable declarations in source order.
type File struct {
	Pos   lexer.Position
	Decls []*TopDecl `@@*`
}

// TopDecl is one top-level declaration.
type TopDecl struct {
	Pos     lexer.Position
	Struct  *StructDecl    `  @@`
	Typedef *TypedefDecl   `| @@`
	Func    *FuncDecl      `| @@`
	GlobalV *GlobalVarDecl `| @@`
}

// Modifiers captures the leading storage-class/interpolation/parameter
// keywords a declaration may carry (spec section 4.2 "Modifier").
type Modifiers struct {
	Pos   lexer.Position
	Items []string `@("const"|"static"|"extern"|"uniform"|"shared"|"groupshared"|"volatile"|"precise"|"row_major"|"column_major"|"nointerpolation"|"in"|"out"|"inout")*`
}

// RegisterRef is a `register(<tag>[, <shader-target>])` reservation (spec
// section 4.9). The shader-target argument is tolerated but ignored with
// a diagnostic.
type RegisterRef struct {
	Pos    lexer.Position
	Tag    string `"register" "(" @(TypeName|VarName|NewIdent)`
	Target string `("," @(TypeName|VarName|NewIdent))? ")"`
}

// Annotation is the `: register(...)` or `: SEMANTIC` suffix a declarator,
// parameter, field, or function signature may carry.
type Annotation struct {
	Pos      lexer.Position
	Register *RegisterRef `  @@`
	Semantic string       `| @(TypeName|VarName|NewIdent)`
}

// StructDecl declares a named aggregate type (spec section 4.2 "struct").
type StructDecl struct {
	Pos    lexer.Position
	Name   TypeIdent    `"struct" @NewIdent`
	Fields []*FieldDecl `"{" @@* "}" ";"`
}

// FieldDecl is one member declaration inside a struct body; HLSL allows
// several names sharing one base type, each with its own array size and
// semantic (spec section 4.2).
type FieldDecl struct {
	Pos   lexer.Position
	Mods  *Modifiers    `@@`
	Type  string        `@TypeName`
	Names []*Declarator `@@ ("," @@)* ";"`
}

// TypedefDecl declares Name as an alias of Type (spec section 4.4).
type TypedefDecl struct {
	Pos  lexer.Position
	Type string    `"typedef" @TypeName`
	Name TypeIdent `@NewIdent ";"`
}

// GlobalVarDecl is a top-level variable declaration; with no explicit
// storage-class modifier a global is implicitly uniform (spec section
// 4.3).
type GlobalVarDecl struct {
	Pos   lexer.Position
	Mods  *Modifiers    `@@`
	Type  string        `@TypeName`
	Names []*Declarator `@@ ("," @@)* ";"`
}

// Declarator is one name within a multi-name declaration, with its
// optional array size, annotation, and initializer (spec section 4.3).
type Declarator struct {
	Pos      lexer.Position
	Name     VarIdent     `@NewIdent`
	ArrayLen *Expr        `("[" @@? "]")?`
	Annot    *Annotation  `(":" @@)?`
	Init     *Initializer `("=" @@)?`
}

// Initializer is either a single expression or a brace-delimited compound
// initializer (spec section 4.3: `S s = {1.0, 2.0, 3.0};`).
type Initializer struct {
	Pos      lexer.Position
	Compound *CompoundInit `  @@`
	Expr     *Expr         `| @@`
}

// CompoundInit is a `{ elem, elem, ... }` initializer list. Elements may
// themselves be compound initializers: one that initializes a struct field
// is lowered recursively against that field's type, while one nested inside
// a scalar/vector/matrix initializer is reported as unimplemented.
type CompoundInit struct {
	Pos      lexer.Position
	Elements []*Initializer `"{" (@@ ("," @@)*)? "}"`
}

// FuncDecl declares or defines a function (spec section 4.5). A
// declaration with no body ends in ";" instead (NoBody is then true).
type FuncDecl struct {
	Pos        lexer.Position
	Mods       *Modifiers  `@@`
	ReturnType string      `@TypeName`
	Name       VarIdent    `@NewIdent`
	Params     []*Param    `"(" (@@ ("," @@)*)? ")"`
	Annot      *Annotation `(":" @@)?`
	Body       *Block      `  @@`
	NoBody     bool        `| @";"`
}

// Param is one function parameter (spec section 4.5 "Param"); with no
// explicit in/out/inout modifier a parameter defaults to in.
type Param struct {
	Pos      lexer.Position
	Mods     *Modifiers `@@`
	Type     string     `@TypeName`
	Name     VarIdent   `@NewIdent`
	ArrayLen *Expr      `("[" @@? "]")?`
	Annot    *Annotation `(":" @@)?`
}
