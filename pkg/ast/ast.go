// Package ast defines the types used to represent the SystemVerilog
// Abstract Syntax Tree (AST) produced by the parser and annotated by the
// type checker
package ast

import (
	"fmt"
	"math/big"

	"github.com/xplshn/svimport/pkg/token"
	"github.com/xplshn/svimport/pkg/types"
)

// NodeKind defines the kind of a node in the AST
type NodeKind int

// Node kinds enum
const (
	// Expressions
	NamedValue NodeKind = iota
	Conversion
	Assignment
	UnaryOp
	BinaryOp
	IntegerLiteral
	Concatenation
	Replication
	Conditional
	ElementSelect
	StringLiteral
	RealLiteral
	Invalid

	// Items and statements
	VarDecl
	ContinuousAssign
	Procedure
	Block
	ExprStmt
	ProceduralAssign
	EmptyStmt
)

var kindNames = [...]string{
	NamedValue:       "named value",
	Conversion:       "conversion",
	Assignment:       "assignment",
	UnaryOp:          "unary operator",
	BinaryOp:         "binary operator",
	IntegerLiteral:   "integer literal",
	Concatenation:    "concatenation",
	Replication:      "replication",
	Conditional:      "conditional",
	ElementSelect:    "element select",
	StringLiteral:    "string literal",
	RealLiteral:      "real literal",
	Invalid:          "invalid",
	VarDecl:          "variable declaration",
	ContinuousAssign: "continuous assign",
	Procedure:        "procedure",
	Block:            "block",
	ExprStmt:         "expression statement",
	ProceduralAssign: "procedural assign",
	EmptyStmt:        "empty statement",
}

func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", int(k))
}

// Node represents a node in the Abstract Syntax Tree
type Node struct {
	Kind   NodeKind
	Tok    token.Token
	Parent *Node
	Data   interface{}
	Typ    types.Type // Set by the type checker
}

// SymbolID identifies a declared variable independently of its name, so
// shadowing declarations in nested scopes never alias.
type SymbolID int

type Symbol struct {
	ID   SymbolID
	Name string
	Type types.Type
	Tok  token.Token
}

// SyntaxKind is the immediate syntactic context of an assignment expression.
type SyntaxKind int

const (
	ExpressionStatement SyntaxKind = iota
	ContinuousAssignSyntax
	ProceduralAssignStatement
	ParenthesizedExpression
)

func (k SyntaxKind) String() string {
	switch k {
	case ExpressionStatement:
		return "expression statement"
	case ContinuousAssignSyntax:
		return "continuous assign"
	case ProceduralAssignStatement:
		return "procedural assign statement"
	case ParenthesizedExpression:
		return "parenthesized expression"
	}
	return fmt.Sprintf("SyntaxKind(%d)", int(k))
}

type ProcedureKind int

const (
	ProcInitial ProcedureKind = iota
	ProcFinal
	ProcAlways
	ProcAlwaysComb
)

func (k ProcedureKind) String() string {
	switch k {
	case ProcInitial:
		return "initial"
	case ProcFinal:
		return "final"
	case ProcAlways:
		return "always"
	case ProcAlwaysComb:
		return "always_comb"
	}
	return fmt.Sprintf("ProcedureKind(%d)", int(k))
}

// Range is a packed dimension [Msb:Lsb].
type Range struct{ Msb, Lsb int }

func (r Range) Size() int {
	if r.Msb >= r.Lsb {
		return r.Msb - r.Lsb + 1
	}
	return r.Lsb - r.Msb + 1
}

// TypeSpec is a data type as written in the source; the checker resolves
// it to a types.Type.
type TypeSpec struct {
	Keyword token.Type // Logic, Bit, Reg, Int, ..., Real, StringKeyword or Struct
	Signing token.Type // Signed, Unsigned, or EOF when not written
	Packed  []Range
	Fields  []FieldSpec // packed struct members
	Tok     token.Token
}

type FieldSpec struct {
	Name string
	Type *TypeSpec
	Tok  token.Token
}

// CastTarget is the part of a cast before the apostrophe: a type, a size
// or a signing keyword. Exactly one is set.
type CastTarget struct {
	Type    *TypeSpec
	Width   int
	Signing token.Type
}

// --- Node Data Structs ---
type NamedValueNode struct {
	Name   string
	Symbol *Symbol // Resolved by the type checker
}
type ConversionNode struct {
	Expr     *Node
	Target   CastTarget
	Implicit bool
}
type AssignmentNode struct {
	Left, Right *Node
	NonBlocking bool
	Parent      SyntaxKind
}
type UnaryOpNode struct {
	Op   UnaryOperator
	Expr *Node
}
type BinaryOpNode struct {
	Op          BinaryOperator
	Left, Right *Node
}
type IntegerLiteralNode struct {
	Value  *big.Int
	Width  int // 0 for unsized literals
	Signed bool
	Based  bool // written with a base, e.g. 'hFF
}
type ConcatenationNode struct{ Operands []*Node }
type ReplicationNode struct{ Count, Concat *Node }
type ConditionalNode struct{ Cond, Then, Else *Node }
type ElementSelectNode struct{ Value, Selector *Node }
type StringLiteralNode struct{ Value string }
type RealLiteralNode struct{ Value float64 }
type InvalidNode struct{ Child *Node }

type VarDeclNode struct {
	Name     string
	Spec     *TypeSpec
	Unpacked []int
	Init     *Node
	Symbol   *Symbol // Set by the type checker
}
type ContinuousAssignNode struct{ Assigns []*Node }
type ProcedureNode struct {
	Kind ProcedureKind
	Body *Node
}
type BlockNode struct {
	Label string
	Stmts []*Node
}
type ExprStmtNode struct{ Expr *Node }
type ProceduralAssignNode struct{ Assign *Node }
type EmptyStmtNode struct{}

// Module is one `module ... endmodule` unit.
type Module struct {
	Name  string
	Tok   token.Token
	Items []*Node
}

type Design struct {
	Modules []*Module
}

// --- Node Constructors ---

func newNode(tok token.Token, kind NodeKind, data interface{}, children ...*Node) *Node {
	node := &Node{Kind: kind, Tok: tok, Data: data}
	for _, child := range children {
		if child != nil {
			child.Parent = node
		}
	}
	return node
}

func NewNamedValue(tok token.Token, name string) *Node {
	return newNode(tok, NamedValue, NamedValueNode{Name: name})
}
func NewConversion(tok token.Token, expr *Node, target CastTarget) *Node {
	return newNode(tok, Conversion, ConversionNode{Expr: expr, Target: target}, expr)
}

// NewImplicitConversion wraps expr in a conversion to typ. The conversion
// takes over expr's place under its parent.
func NewImplicitConversion(expr *Node, typ types.Type) *Node {
	parent := expr.Parent
	node := newNode(expr.Tok, Conversion, ConversionNode{Expr: expr, Implicit: true}, expr)
	node.Parent = parent
	node.Typ = typ
	return node
}
func NewAssignment(tok token.Token, left, right *Node, nonBlocking bool, parent SyntaxKind) *Node {
	return newNode(tok, Assignment, AssignmentNode{Left: left, Right: right, NonBlocking: nonBlocking, Parent: parent}, left, right)
}
func NewUnaryOp(tok token.Token, op UnaryOperator, expr *Node) *Node {
	return newNode(tok, UnaryOp, UnaryOpNode{Op: op, Expr: expr}, expr)
}
func NewBinaryOp(tok token.Token, op BinaryOperator, left, right *Node) *Node {
	return newNode(tok, BinaryOp, BinaryOpNode{Op: op, Left: left, Right: right}, left, right)
}
func NewIntegerLiteral(tok token.Token, value *big.Int, width int, signed, based bool) *Node {
	return newNode(tok, IntegerLiteral, IntegerLiteralNode{Value: value, Width: width, Signed: signed, Based: based})
}
func NewConcatenation(tok token.Token, operands []*Node) *Node {
	return newNode(tok, Concatenation, ConcatenationNode{Operands: operands}, operands...)
}
func NewReplication(tok token.Token, count, concat *Node) *Node {
	return newNode(tok, Replication, ReplicationNode{Count: count, Concat: concat}, count, concat)
}
func NewConditional(tok token.Token, cond, then, els *Node) *Node {
	return newNode(tok, Conditional, ConditionalNode{Cond: cond, Then: then, Else: els}, cond, then, els)
}
func NewElementSelect(tok token.Token, value, selector *Node) *Node {
	return newNode(tok, ElementSelect, ElementSelectNode{Value: value, Selector: selector}, value, selector)
}
func NewStringLiteral(tok token.Token, value string) *Node {
	return newNode(tok, StringLiteral, StringLiteralNode{Value: value})
}
func NewRealLiteral(tok token.Token, value float64) *Node {
	return newNode(tok, RealLiteral, RealLiteralNode{Value: value})
}
func NewInvalid(tok token.Token, child *Node) *Node {
	return newNode(tok, Invalid, InvalidNode{Child: child}, child)
}

func NewVarDecl(tok token.Token, name string, spec *TypeSpec, unpacked []int, init *Node) *Node {
	return newNode(tok, VarDecl, VarDeclNode{Name: name, Spec: spec, Unpacked: unpacked, Init: init}, init)
}
func NewContinuousAssign(tok token.Token, assigns []*Node) *Node {
	return newNode(tok, ContinuousAssign, ContinuousAssignNode{Assigns: assigns}, assigns...)
}
func NewProcedure(tok token.Token, kind ProcedureKind, body *Node) *Node {
	return newNode(tok, Procedure, ProcedureNode{Kind: kind, Body: body}, body)
}
func NewBlock(tok token.Token, label string, stmts []*Node) *Node {
	return newNode(tok, Block, BlockNode{Label: label, Stmts: stmts}, stmts...)
}
func NewExprStmt(tok token.Token, expr *Node) *Node {
	return newNode(tok, ExprStmt, ExprStmtNode{Expr: expr}, expr)
}
func NewProceduralAssign(tok token.Token, assign *Node) *Node {
	return newNode(tok, ProceduralAssign, ProceduralAssignNode{Assign: assign}, assign)
}
func NewEmptyStmt(tok token.Token) *Node {
	return newNode(tok, EmptyStmt, EmptyStmtNode{})
}

// ConstInt evaluates an integral constant expression built from literals
// and the arithmetic operators. Used for replication counts.
func ConstInt(node *Node) (*big.Int, bool) {
	if node == nil {
		return nil, false
	}
	switch d := node.Data.(type) {
	case IntegerLiteralNode:
		return new(big.Int).Set(d.Value), true
	case ConversionNode:
		return ConstInt(d.Expr)
	case UnaryOpNode:
		v, ok := ConstInt(d.Expr)
		if !ok {
			return nil, false
		}
		switch d.Op {
		case UnaryPlus:
			return v, true
		case UnaryMinus:
			return v.Neg(v), true
		}
	case BinaryOpNode:
		l, ok := ConstInt(d.Left)
		if !ok {
			return nil, false
		}
		r, ok := ConstInt(d.Right)
		if !ok {
			return nil, false
		}
		switch d.Op {
		case Add:
			return l.Add(l, r), true
		case Subtract:
			return l.Sub(l, r), true
		case Multiply:
			return l.Mul(l, r), true
		case Divide:
			if r.Sign() == 0 {
				return nil, false
			}
			return l.Quo(l, r), true
		case Mod:
			if r.Sign() == 0 {
				return nil, false
			}
			return l.Rem(l, r), true
		}
	}
	return nil, false
}
