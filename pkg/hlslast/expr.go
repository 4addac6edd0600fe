package hlslast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Expr is the top grammar rule for expressions: an assignment, which
// recurses into Ternary for its left-hand operand and, right-associatively,
// into itself for a second assignment's right-hand side (spec section
// 4.6 "Assignment", section 4.7's expression-statement use).
type Expr struct {
	Pos    lexer.Position
	Cond   *Ternary    `@@`
	Assign *AssignTail `@@?`
}

// AssignTail is the `<op> <expr>` continuation of an assignment.
type AssignTail struct {
	Pos   lexer.Position
	Op    string `@("="|"+="|"-="|"*="|"/="|"%=")`
	Value *Expr  `@@`
}

// Ternary is `cond ? then : else`, or simply a fallthrough to LogicOr when
// no "?" follows.
type Ternary struct {
	Pos  lexer.Position
	Cond *LogicOr `@@`
	Then *Expr    `("?" @@`
	Else *Expr    `":" @@)?`
}

// LogicOr, LogicAnd, BitOr, BitXor, BitAnd, Equality, Relational, Shift,
// Additive, and Multiplicative each implement one precedence level of a
// standard C-family expression grammar: a left operand at the next
// tighter level, followed by zero or more (operator, operand) pairs at
// this level, left-associative.

type LogicOr struct {
	Pos  lexer.Position
	Left *LogicAnd     `@@`
	Rest []*LogicOrOp  `@@*`
}

type LogicOrOp struct {
	Pos   lexer.Position
	Op    string    `@"||"`
	Right *LogicAnd `@@`
}

type LogicAnd struct {
	Pos  lexer.Position
	Left *BitOr        `@@`
	Rest []*LogicAndOp `@@*`
}

type LogicAndOp struct {
	Pos   lexer.Position
	Op    string `@"&&"`
	Right *BitOr `@@`
}

type BitOr struct {
	Pos  lexer.Position
	Left *BitXor    `@@`
	Rest []*BitOrOp `@@*`
}

type BitOrOp struct {
	Pos   lexer.Position
	Op    string  `@"|"`
	Right *BitXor `@@`
}

type BitXor struct {
	Pos  lexer.Position
	Left *BitAnd     `@@`
	Rest []*BitXorOp `@@*`
}

type BitXorOp struct {
	Pos   lexer.Position
	Op    string  `@"^"`
	Right *BitAnd `@@`
}

type BitAnd struct {
	Pos  lexer.Position
	Left *Equality   `@@`
	Rest []*BitAndOp `@@*`
}

type BitAndOp struct {
	Pos   lexer.Position
	Op    string    `@"&"`
	Right *Equality `@@`
}

type Equality struct {
	Pos  lexer.Position
	Left *Relational   `@@`
	Rest []*EqualityOp `@@*`
}

type EqualityOp struct {
	Pos   lexer.Position
	Op    string      `@("=="|"!=")`
	Right *Relational `@@`
}

type Relational struct {
	Pos  lexer.Position
	Left *Shift          `@@`
	Rest []*RelationalOp `@@*`
}

type RelationalOp struct {
	Pos   lexer.Position
	Op    string `@("<="|">="|"<"|">")`
	Right *Shift `@@`
}

type Shift struct {
	Pos  lexer.Position
	Left *Additive   `@@`
	Rest []*ShiftOp  `@@*`
}

type ShiftOp struct {
	Pos   lexer.Position
	Op    string    `@("<<"|">>")`
	Right *Additive `@@`
}

type Additive struct {
	Pos  lexer.Position
	Left *Multiplicative `@@`
	Rest []*AdditiveOp   `@@*`
}

type AdditiveOp struct {
	Pos   lexer.Position
	Op    string          `@("+"|"-")`
	Right *Multiplicative `@@`
}

type Multiplicative struct {
	Pos  lexer.Position
	Left *Unary               `@@`
	Rest []*MultiplicativeOp  `@@*`
}

type MultiplicativeOp struct {
	Pos   lexer.Position
	Op    string `@("*"|"/"|"%")`
	Right *Unary `@@`
}

// Unary is a prefix operator applied to another Unary, a prefix ++/--, a
// cast, or a fallthrough to Postfix (spec section 4.6 "Unary").
type Unary struct {
	Pos       lexer.Position
	Neg       *NegExpr       `  @@`
	PreIncDec *PreIncDecExpr `| @@`
	Cast      *CastExpr      `| @@`
	Post      *Postfix       `| @@`
}

// NegExpr is a sign/logical/bitwise prefix operator applied to an operand.
type NegExpr struct {
	Pos     lexer.Position
	Op      string `@("-"|"+"|"!"|"~")`
	Operand *Unary `@@`
}

// PreIncDecExpr is a prefix ++/-- applied to an operand.
type PreIncDecExpr struct {
	Pos     lexer.Position
	Op      string `@("++"|"--")`
	Operand *Unary `@@`
}

// CastExpr is `(TypeName) operand`, disambiguated from a parenthesized
// expression by requiring the parenthesized token be a classified
// TypeName (spec section 4.6 "Cast").
type CastExpr struct {
	Pos     lexer.Position
	Type    string `"(" @TypeName ")"`
	Operand *Unary `@@`
}

// Postfix is a Primary followed by any number of postfix operations:
// member/swizzle access, indexing, calls, and post-inc/dec (spec section
// 4.6 "Postfix", section 4.4 "Swizzle").
type Postfix struct {
	Pos     lexer.Position
	Base    *Primary     `@@`
	Postops []*PostfixOp `@@*`
}

// PostfixOp is one suffix in a Postfix chain.
type PostfixOp struct {
	Pos    lexer.Position
	Member *MemberOp `  @@`
	Index  *IndexOp  `| @@`
	Call   *CallOp   `| @@`
	IncDec string    `| @("++"|"--")`
}

// MemberOp is `.field` - a struct member or a vector swizzle,
// disambiguated during lowering rather than in the grammar (spec section
// 4.4 "Swizzle"). Lowering does not accept swizzles on matrix operands.
type MemberOp struct {
	Pos   lexer.Position
	Field string `"." @(TypeName|VarName|NewIdent)`
}

// IndexOp is `[expr]`.
type IndexOp struct {
	Pos   lexer.Position
	Index *Expr `"[" @@ "]"`
}

// CallOp is `(args...)` applied to a preceding Postfix chain, used for
// both user function calls and object-method calls (spec section 4.5).
type CallOp struct {
	Pos  lexer.Position
	Args []*Expr `"(" (@@ ("," @@)*)? ")"`
}

// Primary is a literal, a parenthesized expression, a constructor call
// T(args...), or an identifier reference (spec section 4.6 "Primary").
type Primary struct {
	Pos         lexer.Position
	Constructor *ConstructorExpr `  @@`
	Paren       *Expr            `| "(" @@ ")"`
	Float       *float64         `| @Float`
	Int         *string          `| @Int`
	True        bool             `| @"true"`
	False       bool             `| @"false"`
	Ident       string           `| @(TypeName|VarName|NewIdent)`
}

// ConstructorExpr is `TypeName(args...)`, e.g. float3(1, 0, 0) (spec
// section 4.4 "Constructor").
type ConstructorExpr struct {
	Pos  lexer.Position
	Type string  `@TypeName "("`
	Args []*Expr `(@@ ("," @@)*)? ")"`
}
