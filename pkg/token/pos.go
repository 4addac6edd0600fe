// Package token provides source-location tracking: a de-duplicated file
// name pool and the immutable (file, line, column) triples that every
// diagnostic and IR node is anchored to.
package token

import "fmt"

// FileID is a handle into a Pool. The zero value denotes "no file" and is
// never returned by Pool.Intern.
type FileID int

// Pool de-duplicates file names referenced by #line directives and the
// initial compilation unit. All Pos values for a single compilation share
// one Pool, and the Pool outlives every Pos derived from it.
type Pool struct {
	names []string
	index map[string]FileID
}

// NewPool creates an empty file-name pool.
func NewPool() *Pool {
	return &Pool{index: make(map[string]FileID)}
}

// Intern returns the FileID for name, adding it to the pool if this is the
// first time name has been seen.
func (p *Pool) Intern(name string) FileID {
	if id, ok := p.index[name]; ok {
		return id
	}

	p.names = append(p.names, name)
	id := FileID(len(p.names))
	p.index[name] = id
	return id
}

// Name resolves a FileID back to its file name. Returns "" for the zero
// FileID or an ID this pool never issued.
func (p *Pool) Name(id FileID) string {
	if id <= 0 || int(id) > len(p.names) {
		return ""
	}
	return p.names[id-1]
}

// Pos is an immutable source location: a FileID (pointer into a Pool) plus
// a one-based line and column. Pos values are cheap to copy and compare.
type Pos struct {
	File FileID
	Line int
	Col  int
}

// String renders "file:line:col" by resolving File against pool. Passing a
// nil pool yields the bare numeric form, useful in tests.
func (p Pos) String(pool *Pool) string {
	name := ""
	if pool != nil {
		name = pool.Name(p.File)
	}
	return fmt.Sprintf("%s:%d:%d", name, p.Line, p.Col)
}

// Tracker holds the "current" source location and applies #line
// directives to it. The hlsllex lexer updates it only through SetLine and
// never calls Advance, so Pos reports the start of the file or the last
// #line target, not the position of the current token. One Tracker exists
// per compilation context.
type Tracker struct {
	pool *Pool
	file FileID
	line int
	col  int
}

// NewTracker creates a Tracker starting at line 1, column 1 of filename,
// interning filename into pool.
func NewTracker(pool *Pool, filename string) *Tracker {
	return &Tracker{
		pool: pool,
		file: pool.Intern(filename),
		line: 1,
		col:  1,
	}
}

// Pos returns the current location.
func (t *Tracker) Pos() Pos {
	return Pos{File: t.file, Line: t.line, Col: t.col}
}

// Advance moves the current location past text, counting newlines and
// columns. The hlsllex lexer does not call it.
func (t *Tracker) Advance(text string) {
	for _, r := range text {
		if r == '\n' {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
	}
}

// SetLine applies a `#line <num> "<file>"` directive: the next line of
// source is renumbered to num, and if file is non-empty and differs from
// the current file it is interned and becomes current.
func (t *Tracker) SetLine(num int, file string) {
	t.line = num
	t.col = 1
	if file != "" {
		t.file = t.pool.Intern(file)
	}
}

// Pool returns the Tracker's underlying file pool.
func (t *Tracker) Pool() *Pool {
	return t.pool
}
