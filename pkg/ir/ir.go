// Package ir implements the IR node arena described in spec section 3
// ("IR node") and section 9 ("Cyclic graphs and back-references"): nodes
// are appended to a per-context Arena and referenced by stable NodeHandle
// indices rather than pointers, so the entire IR can be dropped with one
// arena reset and sub-node references never dangle across a slice resize.
//
// Node kinds are a closed, tagged-variant sum type (section 9 "Tagged
// variants vs. inheritance"): Node carries the fields common to every
// kind, plus a Payload holding one of the per-kind data structs below.
package ir

import (
	"fmt"
	"strings"

	"github.com/hlslfe/compiler/pkg/hlsltype"
	"github.com/hlslfe/compiler/pkg/scope"
	"github.com/hlslfe/compiler/pkg/token"
)

// NodeHandle is a stable reference to a Node within one Arena. The zero
// value is the reserved "unused/unassigned" handle (spec section 3: "a
// unique post-pass index (0 = unused/unassigned)" - the same sentinel
// doubles as the null handle, since index 0 is never a valid node).
type NodeHandle uint32

// Kind discriminates the payload carried by a Node.
type Kind int

const (
	KindConstant Kind = iota
	KindVarDeref
	KindRecordDeref
	KindArrayDeref
	KindSwizzle
	KindConstructor
	KindExpr
	KindAssignment
	KindIf
	KindLoop
	KindJump
)

func (k Kind) String() string {
	names := [...]string{
		"Constant", "VarDeref", "RecordDeref", "ArrayDeref", "Swizzle",
		"Constructor", "Expr", "Assignment", "If", "Loop", "Jump",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// Op is an operator tag for unary/binary/ternary Expr nodes and for casts.
type Op int

const (
	OpNone Op = iota
	OpNeg
	OpNot
	OpBitNot
	OpPreInc
	OpPreDec
	OpPostInc
	OpPostDec
	OpMul
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpShl
	OpShr
	OpLess
	OpGreater
	OpLessEq
	OpGreaterEq
	OpEqual
	OpNotEqual
	OpBitAnd
	OpBitXor
	OpBitOr
	OpLogicAnd
	OpLogicOr
	OpTernary
	OpCast
)

func (o Op) String() string {
	names := [...]string{
		"none", "neg", "not", "bitnot", "preinc", "predec", "postinc", "postdec",
		"mul", "div", "mod", "add", "sub", "shl", "shr",
		"less", "greater", "lesseq", "greatereq", "eq", "ne",
		"bitand", "bitxor", "bitor", "and", "or", "ternary", "cast",
	}
	if int(o) < len(names) {
		return names[o]
	}
	return "unknown"
}

// AssignOp is the operator of an Assignment node: plain "=" or one of the
// compound forms, which are lowered with the matching binary op applied
// before the store (spec section 4.6).
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
)

// BinaryOp returns the Op an AssignOp applies before storing, or OpNone
// for AssignPlain.
func (a AssignOp) BinaryOp() Op {
	switch a {
	case AssignAdd:
		return OpAdd
	case AssignSub:
		return OpSub
	case AssignMul:
		return OpMul
	case AssignDiv:
		return OpDiv
	case AssignMod:
		return OpMod
	default:
		return OpNone
	}
}

func (a AssignOp) String() string {
	names := [...]string{"=", "+=", "-=", "*=", "/=", "%="}
	if int(a) < len(names) {
		return names[a]
	}
	return "?="
}

// JumpKind distinguishes the three control-transfer statements.
type JumpKind int

const (
	JumpBreak JumpKind = iota
	JumpContinue
	JumpReturn
)

func (j JumpKind) String() string {
	switch j {
	case JumpBreak:
		return "break"
	case JumpContinue:
		return "continue"
	case JumpReturn:
		return "return"
	default:
		return "unknown"
	}
}

// InstrList is a program-order sequence of instruction handles. Every
// sub-expression operand of a node must appear earlier than the node
// itself within the list that contains both (spec invariant 2).
type InstrList []NodeHandle

// ConstantData is the payload for KindConstant: a scalar value in one of
// the numeric base types, stored as a small union of fields.
type ConstantData struct {
	Base  hlsltype.Base
	Float float64
	Int   int64
	Uint  uint64
	Bool  bool
}

// VarDerefData is the payload for KindVarDeref: a direct reference to a
// declared variable.
type VarDerefData struct {
	Var *scope.Variable
}

// RecordDerefData is the payload for KindRecordDeref: struct member
// access, base.Field.
type RecordDerefData struct {
	Base  NodeHandle
	Field *hlsltype.Field
}

// ArrayDerefData is the payload for KindArrayDeref: indexing into an
// array, matrix (producing a row vector), or vector (producing a scalar).
type ArrayDerefData struct {
	Array NodeHandle
	Index NodeHandle
}

// SwizzleData is the payload for KindSwizzle: a base expression, a packed
// component-index mask, and the resulting component count.
type SwizzleData struct {
	Base  NodeHandle
	Mask  [4]uint8
	Count int
}

// ConstructorData is the payload for KindConstructor: T(args...) where the
// total component count of args equals T's component count.
type ConstructorData struct {
	Args []NodeHandle
}

// ExprData is the payload for KindExpr: a unary, binary, or ternary
// operator applied to up to three operands (Operands[2] used only for
// OpTernary).
type ExprData struct {
	Op       Op
	Operands [3]NodeHandle
}

// AssignmentData is the payload for KindAssignment.
type AssignmentData struct {
	LValue NodeHandle
	Op     AssignOp
	RHS    NodeHandle
}

// IfData is the payload for KindIf.
type IfData struct {
	Cond NodeHandle
	Then InstrList
	Else InstrList // nil if no else branch
}

// LoopData is the payload for KindLoop: the lowered common shape for
// while/do-while/for (spec section 4.7). NextIndex is filled in by the
// post-pass indexer (spec section 4.8).
type LoopData struct {
	Body      InstrList
	NextIndex uint32
}

// JumpData is the payload for KindJump.
type JumpData struct {
	JumpKind    JumpKind
	ReturnValue NodeHandle // zero handle if the jump carries no value
}

// Node is one IR instruction or expression result.
type Node struct {
	Kind     Kind
	Pos      token.Pos
	Type     *hlsltype.Type
	Index    uint32 // post-pass program index; 0 until the indexer runs
	LastRead uint32

	Payload any
}

// Constant, VarDeref, RecordDeref, ArrayDeref, Swizzle, Constructor, Expr,
// Assignment, If, Loop, and Jump type-assert Payload to the matching data
// struct. They panic if Kind does not match, which is a builder bug, not
// a user-facing error - every caller here controls both Kind and Payload.

func (n *Node) Constant() *ConstantData       { return n.Payload.(*ConstantData) }
func (n *Node) VarDeref() *VarDerefData       { return n.Payload.(*VarDerefData) }
func (n *Node) RecordDeref() *RecordDerefData { return n.Payload.(*RecordDerefData) }
func (n *Node) ArrayDeref() *ArrayDerefData   { return n.Payload.(*ArrayDerefData) }
func (n *Node) Swizzle() *SwizzleData         { return n.Payload.(*SwizzleData) }
func (n *Node) Constructor() *ConstructorData { return n.Payload.(*ConstructorData) }
func (n *Node) Expr() *ExprData               { return n.Payload.(*ExprData) }
func (n *Node) Assignment() *AssignmentData   { return n.Payload.(*AssignmentData) }
func (n *Node) If() *IfData                   { return n.Payload.(*IfData) }
func (n *Node) Loop() *LoopData               { return n.Payload.(*LoopData) }
func (n *Node) Jump() *JumpData               { return n.Payload.(*JumpData) }

// Arena owns every Node for one compilation context. Index 0 is a
// permanent sentinel so the zero NodeHandle always means "no node".
type Arena struct {
	nodes []Node
}

// NewArena creates an arena with its index-0 sentinel in place.
func NewArena() *Arena {
	return &Arena{nodes: make([]Node, 1)}
}

// New appends n to the arena and returns its handle.
func (a *Arena) New(n Node) NodeHandle {
	a.nodes = append(a.nodes, n)
	return NodeHandle(len(a.nodes) - 1)
}

// Get dereferences a handle. Get(0) returns the sentinel node (Kind zero
// value, nil Payload); callers should check h != 0 before trusting it.
func (a *Arena) Get(h NodeHandle) *Node {
	return &a.nodes[h]
}

// Len returns the number of real nodes (excluding the sentinel).
func (a *Arena) Len() int {
	return len(a.nodes) - 1
}

// Reset drops every node, reverting the arena to its freshly-created
// state. Used on whole-compilation teardown (spec section 5).
func (a *Arena) Reset() {
	a.nodes = a.nodes[:1]
}

// dumper accumulates Dump's indented output, in the same
// indent-and-write-line style the teacher uses for its own AST printer.
type dumper struct {
	arena  *Arena
	out    strings.Builder
	indent int
}

func (d *dumper) line(format string, args ...interface{}) {
	d.out.WriteString(strings.Repeat("  ", d.indent))
	fmt.Fprintf(&d.out, format, args...)
	d.out.WriteString("\n")
}

// Dump renders body as an indented, human-readable instruction listing:
// one line per node (its index, Kind, and Op where relevant), with
// if-branches and loop bodies nested under their parent. This is debug
// tooling only, never parsed back in; it has no bearing on compilation.
func Dump(arena *Arena, body InstrList) string {
	d := &dumper{arena: arena}
	d.dumpList(body)
	return d.out.String()
}

func (d *dumper) dumpList(list InstrList) {
	for _, h := range list {
		n := d.arena.Get(h)
		switch n.Kind {
		case KindExpr:
			d.line("[%d] Expr %s", n.Index, n.Expr().Op)
		case KindAssignment:
			d.line("[%d] Assignment %s", n.Index, n.Assignment().Op)
		case KindIf:
			d.line("[%d] If", n.Index)
			d.indent++
			d.dumpList(n.If().Then)
			if n.If().Else != nil {
				d.line("else")
				d.dumpList(n.If().Else)
			}
			d.indent--
		case KindLoop:
			d.line("[%d] Loop -> next %d", n.Index, n.Loop().NextIndex)
			d.indent++
			d.dumpList(n.Loop().Body)
			d.indent--
		case KindJump:
			d.line("[%d] Jump %s", n.Index, n.Jump().JumpKind)
		default:
			d.line("[%d] %s", n.Index, n.Kind)
		}
	}
}
