package lower

import (
	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
)

// Operators lowered to a single op over two simple bit vectors.
var bitVectorOps = map[ast.BinaryOperator]ir.Opcode{
	ast.Add:                ir.OpAdd,
	ast.Subtract:           ir.OpSub,
	ast.Multiply:           ir.OpMul,
	ast.Divide:             ir.OpDiv,
	ast.Mod:                ir.OpMod,
	ast.BinaryAnd:          ir.OpAnd,
	ast.BinaryOr:           ir.OpOr,
	ast.BinaryXor:          ir.OpXor,
	ast.Equality:           ir.OpEq,
	ast.Inequality:         ir.OpNe,
	ast.CaseEquality:       ir.OpCaseEq,
	ast.CaseInequality:     ir.OpCaseNe,
	ast.WildcardEquality:   ir.OpWildcardEq,
	ast.WildcardInequality: ir.OpWildcardNe,
	ast.GreaterThanEqual:   ir.OpGe,
	ast.GreaterThan:        ir.OpGt,
	ast.LessThanEqual:      ir.OpLe,
	ast.LessThan:           ir.OpLt,
}

var logicalOps = map[ast.BinaryOperator]ir.LogicalKind{
	ast.LogicalAnd:         ir.LogicalAnd,
	ast.LogicalOr:          ir.LogicalOr,
	ast.LogicalImplication: ir.LogicalImplication,
	ast.LogicalEquivalence: ir.LogicalEquivalence,
}

var shiftOps = map[ast.BinaryOperator]struct {
	code       ir.Opcode
	arithmetic bool
}{
	ast.LogicalShiftLeft:     {ir.OpShl, false},
	ast.LogicalShiftRight:    {ir.OpShr, false},
	ast.ArithmeticShiftLeft:  {ir.OpShl, true},
	ast.ArithmeticShiftRight: {ir.OpShr, true},
}

func (ctx *Context) convertBinary(node *ast.Node) (*ir.Value, error) {
	d := node.Data.(ast.BinaryOpNode)
	lhs, err := ctx.ConvertExpression(d.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := ctx.ConvertExpression(d.Right)
	if err != nil {
		return nil, err
	}

	if code, ok := bitVectorOps[d.Op]; ok {
		return ctx.createBinary(code, lhs, rhs)
	}
	if kind, ok := logicalOps[d.Op]; ok {
		return ctx.builder.Logical(kind, lhs, rhs), nil
	}
	if s, ok := shiftOps[d.Op]; ok {
		if lhs, rhs, err = ctx.bitVectorOperands(lhs, rhs); err != nil {
			return nil, err
		}
		return ctx.builder.Shift(s.code, lhs, rhs, s.arithmetic), nil
	}

	if d.Op == ast.BinaryXnor {
		result, err := ctx.createBinary(ir.OpXor, lhs, rhs)
		if err != nil {
			return nil, err
		}
		return ctx.builder.Unary(ir.OpNot, result), nil
	}
	// Power lands here too: "unsupported binary operator: power".
	return nil, ctx.errorf(diag.UnsupportedOperator, "unsupported binary operator: %s", d.Op)
}

func (ctx *Context) createBinary(code ir.Opcode, lhs, rhs *ir.Value) (*ir.Value, error) {
	lhs, rhs, err := ctx.bitVectorOperands(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return ctx.builder.Binary(code, lhs, rhs), nil
}

func (ctx *Context) bitVectorOperands(lhs, rhs *ir.Value) (*ir.Value, *ir.Value, error) {
	lhs, err := ctx.ToSimpleBitVector(lhs)
	if err != nil {
		return nil, nil, err
	}
	rhs, err = ctx.ToSimpleBitVector(rhs)
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}
