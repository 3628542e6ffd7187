package ir

import (
	"fmt"
	"math/big"

	"github.com/xplshn/svimport/pkg/token"
	"github.com/xplshn/svimport/pkg/types"
)

// Builder appends ops at an insertion point and infers their result types.
// It does not check operand types; callers coerce before building.
type Builder struct {
	mod   *Module
	block *Block
	loc   token.Pos
}

// NewBuilder returns a builder positioned at the end of mod's body.
func NewBuilder(mod *Module) *Builder {
	return &Builder{mod: mod, block: mod.Body}
}

func (b *Builder) Module() *Module { return b.mod }

func (b *Builder) Block() *Block { return b.block }

func (b *Builder) SetInsertionPoint(block *Block) { b.block = block }

// SetLoc sets the location attached to subsequently built ops.
func (b *Builder) SetLoc(pos token.Pos) { b.loc = pos }

func (b *Builder) Loc() token.Pos { return b.loc }

func (b *Builder) emit(code Opcode, result *Value, operands ...*Value) *Op {
	op := &Op{Code: code, Operands: operands, Result: result, Pos: b.loc}
	if result != nil {
		result.Def = op
	}
	b.block.Ops = append(b.block.Ops, op)
	return op
}

func (b *Builder) result(typ types.Type) *Value { return b.mod.newValue("", typ) }

// Variable declares a named variable, optionally initialized.
func (b *Builder) Variable(name string, typ types.Type, init *Value) *Value {
	v := b.mod.newValue(name, typ)
	if init != nil {
		b.emit(OpVariable, v, init)
	} else {
		b.emit(OpVariable, v)
	}
	return v
}

// Constant materializes value truncated to typ's width in two's complement.
func (b *Builder) Constant(typ *types.IntType, value *big.Int) *Value {
	v := b.result(typ)
	op := b.emit(OpConstant, v)
	op.Const = Truncate(value, typ.Width)
	return v
}

// Truncate returns value modulo 2^width as a non-negative integer.
func Truncate(value *big.Int, width int) *big.Int {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(width))
	mask.Sub(mask, big.NewInt(1))
	return new(big.Int).And(value, mask)
}

func (b *Builder) Conversion(typ types.Type, input *Value) *Value {
	v := b.result(typ)
	b.emit(OpConversion, v, input)
	return v
}

// BoolCast produces a single bit of input's domain. Real inputs give a
// two-valued bit.
func (b *Builder) BoolCast(input *Value) *Value {
	v := b.result(bitOf(input.Type))
	b.emit(OpBoolCast, v, input)
	return v
}

// Unary builds neg, not and the reductions.
func (b *Builder) Unary(code Opcode, input *Value) *Value {
	var typ types.Type
	switch code {
	case OpNeg, OpNot:
		typ = input.Type
	case OpReduceAnd, OpReduceOr, OpReduceXor:
		typ = bitOf(input.Type)
	default:
		panic(fmt.Sprintf("ir: %s is not a unary op", code))
	}
	v := b.result(typ)
	b.emit(code, v, input)
	return v
}

// Binary builds the arithmetic, bitwise and comparison ops.
func (b *Builder) Binary(code Opcode, lhs, rhs *Value) *Value {
	var typ types.Type
	switch {
	case code >= OpAdd && code <= OpXor:
		typ = lhs.Type
	case code == OpCaseEq || code == OpCaseNe:
		typ = types.Bit()
	case code.IsComparison():
		typ = bitOf(lhs.Type, rhs.Type)
	default:
		panic(fmt.Sprintf("ir: %s is not a binary op", code))
	}
	v := b.result(typ)
	b.emit(code, v, lhs, rhs)
	return v
}

func (b *Builder) Logical(kind LogicalKind, lhs, rhs *Value) *Value {
	v := b.result(bitOf(lhs.Type, rhs.Type))
	op := b.emit(OpLogical, v, lhs, rhs)
	op.Logical = kind
	return v
}

// Shift builds shl or shr. Arithmetic shifts carry the arithmetic marker.
func (b *Builder) Shift(code Opcode, value, amount *Value, arithmetic bool) *Value {
	if code != OpShl && code != OpShr {
		panic(fmt.Sprintf("ir: %s is not a shift", code))
	}
	v := b.result(value.Type)
	op := b.emit(code, v, value, amount)
	op.Arithmetic = arithmetic
	return v
}

// Concat joins values, first operand in the most significant position.
func (b *Builder) Concat(values []*Value) *Value {
	width := 0
	domain := types.TwoValued
	for _, val := range values {
		w, _ := types.BitWidth(val.Type)
		width += w
		if types.IsFourValued(val.Type) {
			domain = types.FourValued
		}
	}
	v := b.result(&types.IntType{Width: width, Domain: domain})
	b.emit(OpConcat, v, values...)
	return v
}

// Assign builds one of the four assignment ops. Assignments have no result.
func (b *Builder) Assign(code Opcode, dst, src *Value) *Op {
	if !code.IsAssign() {
		panic(fmt.Sprintf("ir: %s is not an assignment", code))
	}
	return b.emit(code, nil, dst, src)
}

// Procedure appends a procedure op and returns its empty body. The
// insertion point is left unchanged.
func (b *Builder) Procedure(kind string) *Block {
	op := b.emit(OpProcedure, nil)
	op.ProcKind = kind
	op.Body = &Block{}
	return op.Body
}

func bitOf(ts ...types.Type) *types.IntType {
	for _, t := range ts {
		if types.IsFourValued(t) {
			return types.Logic(1)
		}
	}
	return types.Bit()
}
