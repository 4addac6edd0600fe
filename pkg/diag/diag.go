// Package diag implements the diagnostic sink: the growable, in-memory
// buffer of source-anchored compiler messages described in spec section 6
// and 7, plus the monotonic ok/warning/error compilation status.
//
// The shape mirrors the teacher's *SemanticError accumulation
// (pkg/visitors.SemanticAnalyzer.Errors/Warnings), generalized to four
// severities (note, warning, error, unimplemented) and a single ordered
// buffer instead of two parallel slices,
// since downstream consumers need the original interleaving to render
// notes immediately after the diagnostic they annotate.
package diag

import (
	"fmt"
	"strings"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/google/uuid"

	"github.com/hlslfe/compiler/pkg/token"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
	// SeverityUnimplemented marks a construct that was recognized and
	// consumed but not lowered (spec section 7's "unimplemented" error
	// kind). It is neither an error nor a warning and never moves Status.
	SeverityUnimplemented
)

func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityUnimplemented:
		return "unimplemented"
	default:
		return "unknown"
	}
}

// Status is the overall compilation outcome. It only ever moves forward:
// ok -> warning -> error, never back (spec section 5, "Shared-resource
// policy").
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported message, anchored to a source location and
// to the compilation context that produced it. ContextID lets a caller
// juggling several concurrent Contexts (spec section 5: each one
// single-threaded, but a process may hold many) correlate a diagnostic
// back to the Compile call it came from.
type Diagnostic struct {
	Pos       token.Pos `json:"pos"`
	Severity  Severity  `json:"-"`
	Message   string    `json:"message"`
	ContextID uuid.UUID `json:"-"`
}

// diagnosticJSON is the wire shape used by MarshalJSON: Severity needs its
// string form, and Pos needs to be resolved against the sink's pool before
// it means anything to an external tool.
type diagnosticJSON struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Col       int    `json:"col"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	ContextID string `json:"context_id,omitempty"`
}

// Sink accumulates Diagnostics for one compilation context and tracks the
// overall Status. Appends are the only mutation (spec section 5: "ordering
// ... diagnostic buffer appends are performed only by diagnostic-reporting
// routines").
type Sink struct {
	pool        *token.Pool
	diagnostics []Diagnostic
	status      Status
	contextID   uuid.UUID
}

// NewSink creates an empty sink whose positions resolve against pool.
func NewSink(pool *token.Pool) *Sink {
	return &Sink{pool: pool}
}

// SetContextID stamps the owning compiler.Context's ID onto every
// diagnostic reported afterward.
func (s *Sink) SetContextID(id uuid.UUID) {
	s.contextID = id
}

func (s *Sink) report(pos token.Pos, sev Severity, format string, args ...interface{}) {
	s.diagnostics = append(s.diagnostics, Diagnostic{
		Pos:       pos,
		Severity:  sev,
		Message:   fmt.Sprintf(format, args...),
		ContextID: s.contextID,
	})
	s.raise(sev)
}

// raise bumps Status forward, never backward.
func (s *Sink) raise(sev Severity) {
	switch sev {
	case SeverityError:
		s.status = StatusError
	case SeverityWarning:
		if s.status < StatusWarning {
			s.status = StatusWarning
		}
	}
}

// Errorf records an error diagnostic at pos.
func (s *Sink) Errorf(pos token.Pos, format string, args ...interface{}) {
	s.report(pos, SeverityError, format, args...)
}

// Warningf records a warning diagnostic at pos.
func (s *Sink) Warningf(pos token.Pos, format string, args ...interface{}) {
	s.report(pos, SeverityWarning, format, args...)
}

// Notef records a note, typically immediately following the diagnostic it
// explains (e.g. "previous declaration was here").
func (s *Sink) Notef(pos token.Pos, format string, args ...interface{}) {
	s.report(pos, SeverityNote, format, args...)
}

// Unimplementedf records that a construct was recognized but not lowered
// (spec section 7's "unimplemented" error kind: complex initializers,
// shifts, bitwise ops, etc.). It never raises Status.
func (s *Sink) Unimplementedf(pos token.Pos, format string, args ...interface{}) {
	s.report(pos, SeverityUnimplemented, format, args...)
}

// Status returns the current compilation status.
func (s *Sink) Status() Status {
	return s.status
}

// HasErrors reports whether any error diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	return s.status == StatusError
}

// Diagnostics returns all recorded diagnostics in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.diagnostics
}

// String renders every diagnostic as one "<file>:<line>:<col>: <level>:
// <message>\n" line, per spec section 6, concatenated in report order.
func (s *Sink) String() string {
	var b strings.Builder
	for _, d := range s.diagnostics {
		fmt.Fprintf(&b, "%s: %s: %s\n", d.Pos.String(s.pool), d.Severity, d.Message)
	}
	return b.String()
}

// MarshalJSON renders the sink's diagnostics as a machine-readable array,
// for IDE/CI tooling built on top of the core (the plain-text line format
// above remains the primary, spec-mandated format).
func (s *Sink) MarshalJSON() ([]byte, error) {
	out := make([]diagnosticJSON, len(s.diagnostics))
	for i, d := range s.diagnostics {
		var ctxID string
		if d.ContextID != uuid.Nil {
			ctxID = d.ContextID.String()
		}
		out[i] = diagnosticJSON{
			File:      s.pool.Name(d.Pos.File),
			Line:      d.Pos.Line,
			Col:       d.Pos.Col,
			Severity:  d.Severity.String(),
			Message:   d.Message,
			ContextID: ctxID,
		}
	}
	return jsonv2.Marshal(out)
}
