package lower

import (
	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
)

// ConvertExpression lowers node and returns the value it evaluates to. On
// failure the error has already been reported; it is a *diag.Diagnostic.
func (ctx *Context) ConvertExpression(node *ast.Node) (*ir.Value, error) {
	saved := ctx.loc
	ctx.setLoc(node.Tok.Pos)
	defer ctx.setLoc(saved)

	switch node.Kind {
	case ast.NamedValue:
		return ctx.convertNamedValue(node)
	case ast.Conversion:
		return ctx.convertConversion(node)
	case ast.Assignment:
		return ctx.EmitAssignment(node)
	case ast.UnaryOp:
		return ctx.convertUnary(node)
	case ast.BinaryOp:
		return ctx.convertBinary(node)
	case ast.IntegerLiteral:
		return ctx.convertIntegerLiteral(node)
	case ast.Concatenation:
		return ctx.convertConcatenation(node)
	case ast.Invalid:
		return nil, ctx.errorf(diag.UnsupportedExpression, "invalid expression")
	default:
		return nil, ctx.errorf(diag.UnsupportedExpression, "unsupported expression: %s", node.Kind)
	}
}

func (ctx *Context) convertNamedValue(node *ast.Node) (*ir.Value, error) {
	d := node.Data.(ast.NamedValueNode)
	if d.Symbol == nil {
		return nil, ctx.errorf(diag.UnboundReference, "unresolved reference to '%s'", d.Name)
	}
	v, ok := ctx.Lookup(d.Symbol.ID)
	if !ok {
		return nil, ctx.errorf(diag.UnboundReference, "no value bound to '%s'", d.Symbol.Name)
	}
	return v, nil
}

func (ctx *Context) convertConversion(node *ast.Node) (*ir.Value, error) {
	d := node.Data.(ast.ConversionNode)
	operand, err := ctx.ConvertExpression(d.Expr)
	if err != nil {
		return nil, err
	}
	return ctx.builder.Conversion(node.Typ, operand), nil
}
