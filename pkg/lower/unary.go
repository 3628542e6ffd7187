package lower

import (
	"math/big"

	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/types"
)

var reductions = map[ast.UnaryOperator]struct {
	code   ir.Opcode
	invert bool
}{
	ast.BitwiseAnd:  {ir.OpReduceAnd, false},
	ast.BitwiseOr:   {ir.OpReduceOr, false},
	ast.BitwiseXor:  {ir.OpReduceXor, false},
	ast.BitwiseNand: {ir.OpReduceAnd, true},
	ast.BitwiseNor:  {ir.OpReduceOr, true},
	ast.BitwiseXnor: {ir.OpReduceXor, true},
}

func (ctx *Context) convertUnary(node *ast.Node) (*ir.Value, error) {
	d := node.Data.(ast.UnaryOpNode)
	arg, err := ctx.ConvertExpression(d.Expr)
	if err != nil {
		return nil, err
	}

	switch d.Op {
	// `+a` is `a` as a simple bit vector; the operator only makes the
	// operand arithmetic.
	case ast.UnaryPlus:
		return ctx.ToSimpleBitVector(arg)
	case ast.UnaryMinus, ast.BitwiseNot:
		arg, err = ctx.ToSimpleBitVector(arg)
		if err != nil {
			return nil, err
		}
		if d.Op == ast.UnaryMinus {
			return ctx.builder.Unary(ir.OpNeg, arg), nil
		}
		return ctx.builder.Unary(ir.OpNot, arg), nil
	case ast.BitwiseAnd, ast.BitwiseOr, ast.BitwiseXor, ast.BitwiseNand, ast.BitwiseNor, ast.BitwiseXnor:
		r := reductions[d.Op]
		return ctx.createReduction(r.code, arg, r.invert)
	case ast.LogicalNot:
		arg, err = ctx.ToBool(arg)
		if err != nil {
			return nil, err
		}
		return ctx.builder.Unary(ir.OpNot, arg), nil
	case ast.Preincrement, ast.Predecrement, ast.Postincrement, ast.Postdecrement:
		return ctx.createIncrement(node, arg, d.Op)
	}
	return nil, ctx.errorf(diag.UnsupportedOperator, "unsupported unary operator: %s", d.Op)
}

func (ctx *Context) createReduction(code ir.Opcode, arg *ir.Value, invert bool) (*ir.Value, error) {
	arg, err := ctx.ToSimpleBitVector(arg)
	if err != nil {
		return nil, err
	}
	result := ctx.builder.Unary(code, arg)
	if invert {
		result = ctx.builder.Unary(ir.OpNot, result)
	}
	return result, nil
}

// createIncrement adds or subtracts one and writes the result back to the
// operand with a blocking assignment, whatever the surrounding context.
// Prefix forms evaluate to the new value, postfix forms to the old one.
func (ctx *Context) createIncrement(node *ast.Node, arg *ir.Value, op ast.UnaryOperator) (*ir.Value, error) {
	preValue, err := ctx.ToSimpleBitVector(arg)
	if err != nil {
		return nil, err
	}
	sbvt := preValue.Type.(*types.IntType)
	one := ctx.builder.Constant(sbvt, big.NewInt(1))

	var postValue *ir.Value
	if op == ast.Preincrement || op == ast.Postincrement {
		postValue = ctx.builder.Binary(ir.OpAdd, preValue, one)
	} else {
		postValue = ctx.builder.Binary(ir.OpSub, preValue, one)
	}

	if insideNonBlocking(node) {
		ctx.warn(config.WarnIncDecWriteback, "%s inside a non-blocking assignment is written back immediately", op)
	}
	stored := postValue
	if !types.Equal(arg.Type, postValue.Type) {
		stored = ctx.builder.Conversion(arg.Type, postValue)
	}
	ctx.builder.Assign(ir.OpBPAssign, arg, stored)

	if op == ast.Postincrement || op == ast.Postdecrement {
		return preValue, nil
	}
	return postValue, nil
}

func insideNonBlocking(node *ast.Node) bool {
	for p := node.Parent; p != nil; p = p.Parent {
		if d, ok := p.Data.(ast.AssignmentNode); ok && d.NonBlocking {
			return true
		}
	}
	return false
}
