package ir

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/svimport/pkg/token"
	"github.com/xplshn/svimport/pkg/types"
)

func TestValueNames(t *testing.T) {
	m := NewModule("top")
	b := NewBuilder(m)
	x := b.Variable("x", types.Logic(8), nil)
	x1 := b.Variable("x", types.Logic(8), nil)
	x2 := b.Variable("x", types.Logic(8), nil)
	c := b.Constant(types.Logic(8), big.NewInt(1))
	d := b.Constant(types.Logic(8), big.NewInt(2))

	assert.Equal(t, "%x", x.String())
	assert.Equal(t, "%x_1", x1.String())
	assert.Equal(t, "%x_2", x2.String())
	assert.Equal(t, "%0", c.String())
	assert.Equal(t, "%1", d.String())
}

func TestConstantTruncates(t *testing.T) {
	b := NewBuilder(NewModule("top"))
	assert.Equal(t, big.NewInt(0x34), b.Constant(types.Bits(8), big.NewInt(0x1234)).Def.Const)
	assert.Equal(t, big.NewInt(0xff), b.Constant(types.Bits(8), big.NewInt(-1)).Def.Const)
}

func TestResultTypes(t *testing.T) {
	b := NewBuilder(NewModule("top"))
	l8 := b.Variable("l8", types.Logic(8), nil)
	i8 := b.Variable("i8", types.Bits(8), nil)
	r := b.Variable("r", types.Real(), nil)

	assert.Equal(t, types.Logic(8), b.Unary(OpNot, l8).Type)
	assert.Equal(t, types.Logic(1), b.Unary(OpReduceOr, l8).Type)
	assert.Equal(t, types.Bit(), b.Unary(OpReduceXor, i8).Type)
	assert.Equal(t, types.Bits(8), b.Binary(OpMul, i8, i8).Type)
	assert.Equal(t, types.Logic(1), b.Binary(OpLt, l8, i8).Type)
	assert.Equal(t, types.Bit(), b.Binary(OpLt, i8, i8).Type)
	assert.Equal(t, types.Bit(), b.Binary(OpCaseEq, l8, l8).Type)
	assert.Equal(t, types.Logic(1), b.Logical(LogicalOr, i8, l8).Type)
	assert.Equal(t, types.Logic(1), b.BoolCast(l8).Type)
	assert.Equal(t, types.Bit(), b.BoolCast(r).Type)
	assert.Equal(t, types.Bits(8), b.Shift(OpShl, i8, l8, false).Type)
	assert.Equal(t, types.Logic(16), b.Concat([]*Value{i8, l8}).Type)
	assert.Equal(t, types.Bits(16), b.Concat([]*Value{i8, i8}).Type)
}

func TestBuilderRejectsWrongOpcodes(t *testing.T) {
	b := NewBuilder(NewModule("top"))
	x := b.Variable("x", types.Bit(), nil)
	assert.Panics(t, func() { b.Unary(OpAdd, x) })
	assert.Panics(t, func() { b.Binary(OpNot, x, x) })
	assert.Panics(t, func() { b.Shift(OpAdd, x, x, false) })
	assert.Panics(t, func() { b.Assign(OpAdd, x, x) })
}

func TestProcedureInsertion(t *testing.T) {
	m := NewModule("top")
	b := NewBuilder(m)
	x := b.Variable("x", types.Logic(4), nil)
	body := b.Procedure("always_comb")
	assert.Same(t, m.Body, b.Block())

	b.SetInsertionPoint(body)
	b.Assign(OpBPAssign, x, b.Unary(OpNot, x))
	b.SetInsertionPoint(m.Body)

	assert.Len(t, m.Body.Ops, 2)
	assert.Equal(t, []Opcode{OpVariable, OpProcedure, OpNot, OpBPAssign}, m.Body.Opcodes())
}

func buildSample() *Module {
	m := NewModule("top")
	b := NewBuilder(m)
	b.SetLoc(token.Pos{Line: 2, Column: 3})
	x := b.Variable("x", types.Logic(8), nil)
	n := b.Variable("n", types.Bits(3), nil)
	body := b.Procedure("initial")
	b.SetInsertionPoint(body)
	b.SetLoc(token.Pos{Line: 4, Column: 5})
	one := b.Constant(types.Logic(8), big.NewInt(1))
	sum := b.Binary(OpAdd, x, one)
	sh := b.Shift(OpShr, sum, n, true)
	cmp := b.Binary(OpEq, sh, x)
	land := b.Logical(LogicalAnd, cmp, cmp)
	b.Assign(OpPAssign, x, b.Conversion(types.Logic(8), land))
	return m
}

func TestPrinter(t *testing.T) {
	want := `moore.module @top {
  %x = moore.variable : !moore.l8
  %n = moore.variable : !moore.i3
  moore.procedure initial {
    %0 = moore.constant 1 : !moore.l8
    %1 = moore.add %x, %0 : !moore.l8
    %2 = moore.shr arithmetic %1, %n : !moore.l8, !moore.i3 -> !moore.l8
    %3 = moore.eq %2, %x : !moore.l8 -> !moore.l1
    %4 = moore.logical and %3, %3 : !moore.l1
    %5 = moore.conversion %4 : !moore.l1 -> !moore.l8
    moore.passign %x, %5 : !moore.l8
  }
}
`
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, buildSample()))
	assert.Equal(t, want, buf.String())
}

func TestPrinterLocations(t *testing.T) {
	var buf bytes.Buffer
	p := &Printer{Locations: true}
	require.NoError(t, p.Print(&buf, buildSample()))
	out := buf.String()
	assert.Contains(t, out, "  %x = moore.variable : !moore.l8 loc(2:3)\n")
	assert.Contains(t, out, "  moore.procedure initial { loc(2:3)\n")
	assert.Contains(t, out, "    %0 = moore.constant 1 : !moore.l8 loc(4:5)\n")
}

func TestFingerprint(t *testing.T) {
	a, b := buildSample(), buildSample()
	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	c := buildSample()
	c.Name = "other"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}
