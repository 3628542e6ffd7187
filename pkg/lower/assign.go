package lower

import (
	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/types"
)

// SelectAssignKind picks the assignment op. A non-blocking assignment is
// always a passign; otherwise the syntactic parent decides.
func SelectAssignKind(nonBlocking bool, parent ast.SyntaxKind) ir.Opcode {
	switch {
	case nonBlocking:
		return ir.OpPAssign
	case parent == ast.ContinuousAssignSyntax:
		return ir.OpCAssign
	case parent == ast.ProceduralAssignStatement:
		return ir.OpPCAssign
	default:
		return ir.OpBPAssign
	}
}

// EmitAssignment lowers both sides, converts the right side to the left
// side's type when they differ, and emits the assignment. The expression
// evaluates to the assigned destination.
func (ctx *Context) EmitAssignment(node *ast.Node) (*ir.Value, error) {
	d := node.Data.(ast.AssignmentNode)
	lhs, err := ctx.ConvertExpression(d.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := ctx.ConvertExpression(d.Right)
	if err != nil {
		return nil, err
	}

	if !types.Equal(lhs.Type, rhs.Type) {
		ctx.warn(config.WarnImplicitConversion, "implicit conversion from %s to %s", rhs.Type, lhs.Type)
		rhs = ctx.builder.Conversion(lhs.Type, rhs)
	}

	ctx.builder.Assign(SelectAssignKind(d.NonBlocking, d.Parent), lhs, rhs)
	return lhs, nil
}
