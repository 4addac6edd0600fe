// Package hlsllex implements the HLSL front-end's lexer: a stateful
// participle lexer wrapped so that every bare identifier is reclassified,
// at lex time, into one of three token kinds by consulting live scope
// state (spec section 4.1, section 9 "Scope-sensitive lexing"). This
// resolves the declaration-vs-expression grammar ambiguity the same way
// a hand-written C-family compiler would (the classic "is this a
// typedef-name" lexer hack), without backtracking in the parser.
//
// #line directives are intercepted here too: they never reach the
// grammar as tokens, they instead update the shared token.Tracker so
// every token emitted afterward carries the renumbered position.
package hlsllex

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/hlslfe/compiler/pkg/token"
)

// Class is the lexical classification of an identifier (spec section 4.1).
type Class int

const (
	ClassNewIdent Class = iota
	ClassVarName
	ClassTypeName
)

// Classifier resolves a bare identifier to a Class by consulting whatever
// scope state is live at the current point in parsing. Implementations
// must not block or do I/O (spec section 5).
type Classifier interface {
	Classify(name string) Class
}

// baseRules tokenizes raw HLSL-subset source text. Reserved structural
// and modifier keywords are carved out of their own rule (matching the
// teacher's guixLexer "Keyword" rule) so they never reach Ident and so
// they are never handed to the Classifier - base numeric type names
// (float4, int, ...) deliberately are NOT keywords here: they are
// predefined types seeded into the global scope (spec section 4.2) and
// reach the grammar as classified TypeName tokens like any user type.
var baseRules = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"LineDirective", `#line[ \t]+[0-9]+[ \t]+"[^"]*"`, nil},
		{"Comment", `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
		{"Keyword", `\b(if|else|while|do|for|return|struct|typedef|true|false|break|continue|technique|pass|const|static|extern|uniform|shared|groupshared|volatile|inout|in|out|precise|row_major|column_major|nointerpolation|register)\b`, nil},
		{"Float", `[0-9]+\.[0-9]*([eE][+-]?[0-9]+)?[fFhH]?|\.[0-9]+([eE][+-]?[0-9]+)?[fFhH]?|[0-9]+[eE][+-]?[0-9]+[fFhH]?`, nil},
		{"Int", `0[xX][0-9a-fA-F]+|[0-9]+`, nil},
		{"String", `"(?:\\.|[^"\\])*"`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Op", `<<=|>>=|\+=|-=|\*=|/=|%=|&=|\|=|\^=|==|!=|<=|>=|&&|\|\||<<|>>|\+\+|--|[-+*/%=<>!&|^~.,:;(){}\[\]?]`, nil},
	},
})

var baseSymbols = baseRules.Symbols()

// Token types synthesized for the three identifier classes, numbered past
// every symbol baseRules already defines.
var (
	identType    = baseSymbols["Ident"]
	lineDirType  = baseSymbols["LineDirective"]
	commentType  = baseSymbols["Comment"]
	whitespace   = baseSymbols["Whitespace"]
	typeNameType = highestSymbol(baseSymbols) + 1
	varNameType  = highestSymbol(baseSymbols) + 2
	newIdentType = highestSymbol(baseSymbols) + 3
)

func highestSymbol(syms map[string]lexer.TokenType) lexer.TokenType {
	var max lexer.TokenType
	for _, t := range syms {
		if t > max {
			max = t
		}
	}
	return max
}

// Definition is a participle lexer.Definition that classifies identifiers
// via a Classifier and updates a token.Tracker on #line directives.
type Definition struct {
	classifier Classifier
	tracker    *token.Tracker
}

// New creates a classifying lexer Definition. tracker may be nil if the
// caller does not need #line-adjusted positions threaded through.
func New(classifier Classifier, tracker *token.Tracker) *Definition {
	return &Definition{classifier: classifier, tracker: tracker}
}

// Symbols implements lexer.Definition.
func (d *Definition) Symbols() map[string]lexer.TokenType {
	syms := make(map[string]lexer.TokenType, len(baseSymbols)+3)
	for k, v := range baseSymbols {
		syms[k] = v
	}
	syms["TypeName"] = typeNameType
	syms["VarName"] = varNameType
	syms["NewIdent"] = newIdentType
	return syms
}

// Lex implements lexer.Definition.
func (d *Definition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	inner, err := baseRules.Lex(filename, r)
	if err != nil {
		return nil, err
	}
	return &classifyingLexer{inner: inner, classifier: d.classifier, tracker: d.tracker}, nil
}

// classifyingLexer wraps the raw stateful lexer, eliding comments and
// whitespace, consuming #line directives, and reclassifying Ident tokens.
type classifyingLexer struct {
	inner      lexer.Lexer
	classifier Classifier
	tracker    *token.Tracker
	lineOffset int
	file       string
}

func (l *classifyingLexer) Next() (lexer.Token, error) {
	for {
		tok, err := l.inner.Next()
		if err != nil {
			return tok, err
		}
		if tok.EOF() {
			return tok, nil
		}

		switch tok.Type {
		case lineDirType:
			l.applyLineDirective(tok)
			continue
		case commentType, whitespace:
			continue
		case identType:
			switch l.classifier.Classify(tok.Value) {
			case ClassTypeName:
				tok.Type = typeNameType
			case ClassVarName:
				tok.Type = varNameType
			default:
				tok.Type = newIdentType
			}
		}

		if l.file != "" {
			tok.Pos.Filename = l.file
		}
		tok.Pos.Line += l.lineOffset
		return tok, nil
	}
}

// applyLineDirective parses `#line <num> "<file>"`, updates the shared
// Tracker (if any), and arranges for every subsequent token's reported
// line to be offset so it reflects num rather than the physical line
// count (spec section 4.1 "#line ... updates the current line").
func (l *classifyingLexer) applyLineDirective(tok lexer.Token) {
	rest := strings.TrimSpace(strings.TrimPrefix(tok.Value, "#line"))
	sp := strings.IndexAny(rest, " \t")
	numStr, file := rest, ""
	if sp >= 0 {
		numStr = rest[:sp]
		file = strings.Trim(strings.TrimSpace(rest[sp:]), `"`)
	}

	num, err := strconv.Atoi(numStr)
	if err != nil {
		return
	}
	if file != "" {
		l.file = file
	}
	if l.tracker != nil {
		l.tracker.SetLine(num, file)
	}
	// The directive itself occupies the current physical line; the line
	// immediately after it should read as num.
	l.lineOffset = num - (tok.Pos.Line + 1)
}
