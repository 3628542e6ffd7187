package lower

import (
	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/types"
)

const narrowLiteralWidth = 32

func (ctx *Context) convertIntegerLiteral(node *ast.Node) (*ir.Value, error) {
	d := node.Data.(ast.IntegerLiteralNode)
	typ := types.SimpleBitVector(node.Typ)
	if typ == nil {
		return nil, ctx.errorf(diag.UnsupportedExpression, "integer literal of type %s", node.Typ)
	}
	if !ctx.cfg.IsFeatureEnabled(config.FeatWideLiterals) && typ.Width > narrowLiteralWidth {
		return nil, ctx.errorf(diag.UnsupportedExpression,
			"integer literal wider than %d bits (%d); enable -Fwide-literals", narrowLiteralWidth, typ.Width)
	}
	if d.Value.Sign() >= 0 && d.Value.BitLen() > typ.Width {
		ctx.warn(config.WarnLiteralTruncation, "literal %s truncated to %d bits", d.Value, typ.Width)
	}
	v := ctx.builder.Constant(typ, d.Value)
	if !types.Equal(typ, node.Typ) {
		v = ctx.builder.Conversion(node.Typ, v)
	}
	return v, nil
}

// convertConcatenation lowers the operands left to right and joins them in
// that order, the first operand ending up in the most significant bits.
func (ctx *Context) convertConcatenation(node *ast.Node) (*ir.Value, error) {
	d := node.Data.(ast.ConcatenationNode)
	if len(d.Operands) == 0 {
		return nil, ctx.errorf(diag.UnsupportedExpression, "empty concatenation")
	}
	operands := make([]*ir.Value, 0, len(d.Operands))
	for _, operand := range d.Operands {
		v, err := ctx.ConvertExpression(operand)
		if err != nil {
			return nil, err
		}
		v, err = ctx.ToSimpleBitVector(v)
		if err != nil {
			return nil, err
		}
		operands = append(operands, v)
	}
	return ctx.builder.Concat(operands), nil
}
