package hlslast

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Parser parses the HLSL subset into a File. It is not safe for
// concurrent use: a single package-level ClassifierTable backs every
// Ident capture for the duration of one Parse* call (see classify.go).
type Parser struct {
	parser *participle.Parser[File]
	table  *ClassifierTable
}

// New builds a Parser whose lexer is lex (ordinarily an *hlsllex.Definition
// wrapping table as its Classifier). table is the same instance passed to
// the lexer, so declarations the grammar captures (via TypeIdent/VarIdent)
// become visible to classification of every later token.
func New(lex lexer.Definition, table *ClassifierTable) (*Parser, error) {
	p, err := participle.Build[File](
		participle.Lexer(lex),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("building hlsl parser: %w", err)
	}
	return &Parser{parser: p, table: table}, nil
}

// Parse parses a full translation unit from r.
func (p *Parser) Parse(filename string, r io.Reader) (*File, error) {
	activeTable = p.table
	defer func() { activeTable = nil }()

	file, err := p.parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return file, nil
}

// ParseString parses a full translation unit from source.
func (p *Parser) ParseString(filename, source string) (*File, error) {
	activeTable = p.table
	defer func() { activeTable = nil }()

	file, err := p.parser.ParseString(filename, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return file, nil
}
