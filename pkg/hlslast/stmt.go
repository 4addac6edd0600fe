package hlslast

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Block is a brace-delimited statement list (spec section 4.7).
type Block struct {
	Pos   lexer.Position
	Stmts []*Stmt `"{" @@* "}"`
}

// Stmt is one statement. The LocalVarDecl alternative is tried first and
// keys on a leading classified TypeName token (spec section 4.1), which
// is what lets this ordered choice commit to a declaration or an
// expression-statement without backtracking over the rest of the line.
type Stmt struct {
	Pos      lexer.Position
	VarDecl  *LocalVarDecl `  @@`
	If       *IfStmt       `| @@`
	While    *WhileStmt    `| @@`
	DoWhile  *DoWhileStmt  `| @@`
	For      *ForStmt      `| @@`
	Return   *ReturnStmt   `| @@`
	Break    *BreakStmt    `| @@`
	Continue *ContinueStmt `| @@`
	Nested   *Block        `| @@`
	ExprStmt *ExprStmt     `| @@`
}

// LocalVarDecl is a block-local variable declaration (spec section 4.3).
type LocalVarDecl struct {
	Pos   lexer.Position
	Mods  *Modifiers    `@@`
	Type  string        `@TypeName`
	Names []*Declarator `@@ ("," @@)* ";"`
}

// LocalVarDeclNoSemi is the same production without the trailing ";",
// used inside a for-loop initializer where the ";" is supplied by the
// enclosing ForStmt field instead (spec section 4.7 "for").
type LocalVarDeclNoSemi struct {
	Pos   lexer.Position
	Mods  *Modifiers    `@@`
	Type  string        `@TypeName`
	Names []*Declarator `@@ ("," @@)*`
}

// ExprStmt is an expression evaluated for effect: an assignment or a bare
// call (spec section 4.7).
type ExprStmt struct {
	Pos  lexer.Position
	Expr *Expr `@@ ";"`
}

// IfStmt is `if (cond) then [else ...]` (spec section 4.7 "if").
type IfStmt struct {
	Pos  lexer.Position
	Cond *Expr       `"if" "(" @@ ")"`
	Then *Block      `@@`
	Else *ElseClause `("else" @@)?`
}

// ElseClause is either a nested if (an "else if" chain) or a plain block.
type ElseClause struct {
	Pos  lexer.Position
	If   *IfStmt `  @@`
	Body *Block  `| @@`
}

// WhileStmt is `while (cond) body` (spec section 4.7 "while").
type WhileStmt struct {
	Pos  lexer.Position
	Cond *Expr  `"while" "(" @@ ")"`
	Body *Block `@@`
}

// DoWhileStmt is `do body while (cond);` (spec section 4.7 "do-while").
type DoWhileStmt struct {
	Pos  lexer.Position
	Body *Block `"do" @@`
	Cond *Expr  `"while" "(" @@ ")" ";"`
}

// ForInit is the optional initializer clause of a for loop: either a
// declaration or a bare expression.
type ForInit struct {
	Pos  lexer.Position
	Decl *LocalVarDeclNoSemi `  @@`
	Expr *Expr               `| @@`
}

// ForStmt is `for (init; cond; post) body` with each clause optional
// (spec section 4.7 "for").
type ForStmt struct {
	Pos  lexer.Position
	Init *ForInit `"for" "(" @@?`
	Cond *Expr    `";" @@?`
	Post *Expr    `";" @@? ")"`
	Body *Block   `@@`
}

// ReturnStmt is `return [expr];` (spec section 4.7 "return").
type ReturnStmt struct {
	Pos   lexer.Position
	Value *Expr `"return" @@? ";"`
}

// BreakStmt is `break;`.
type BreakStmt struct {
	Pos     lexer.Position
	Matched bool `@"break" ";"`
}

// ContinueStmt is `continue;`.
type ContinueStmt struct {
	Pos     lexer.Position
	Matched bool `@"continue" ";"`
}
