package typecheck

import (
	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/token"
	"github.com/xplshn/svimport/pkg/types"
)

// unsizedLiteralWidth is the width of unsized based literals like 'hFF.
const unsizedLiteralWidth = 32

func isIntegral(t types.Type) bool { return types.IsBitVectorRepresentable(t) }

func isReal(t types.Type) bool {
	_, ok := t.(*types.RealType)
	return ok
}

func isNumeric(t types.Type) bool { return isIntegral(t) || isReal(t) }

func bitOf(ts ...types.Type) *types.IntType {
	for _, t := range ts {
		if types.IsFourValued(t) {
			return types.Logic(1)
		}
	}
	return types.Bit()
}

// commonType is the type both operands of a context-determined integral
// operator are converted to: the wider width, four-valued if either
// operand is, signed only if both are.
func commonType(a, b types.Type) *types.IntType {
	sa, sb := types.SimpleBitVector(a), types.SimpleBitVector(b)
	res := &types.IntType{Width: max(sa.Width, sb.Width), Domain: types.TwoValued, Signed: sa.Signed && sb.Signed}
	if sa.Domain == types.FourValued || sb.Domain == types.FourValued {
		res.Domain = types.FourValued
	}
	return res
}

// castable reports whether a value of type from may be converted to type to.
func castable(from, to types.Type) bool {
	switch {
	case types.Equal(from, to):
		return true
	case isNumeric(from) && isNumeric(to):
		return true
	}
	return false
}

// convertTo wraps node in an implicit conversion to typ unless it already
// has that type.
func (tc *TypeChecker) convertTo(node *ast.Node, typ types.Type) *ast.Node {
	if node.Typ == nil || types.Equal(node.Typ, typ) {
		return node
	}
	if !castable(node.Typ, typ) {
		tc.errorf(node.Tok, "cannot convert %s to %s", node.Typ, typ)
		return node
	}
	return ast.NewImplicitConversion(node, typ)
}

// checkExpr annotates node and returns its type. A nil result means an
// error was already reported for node or one of its operands.
func (tc *TypeChecker) checkExpr(node *ast.Node) types.Type {
	if node == nil {
		return nil
	}
	var typ types.Type
	switch d := node.Data.(type) {
	case ast.NamedValueNode:
		sym := tc.findSymbol(d.Name)
		if sym == nil {
			tc.errorf(node.Tok, "use of undeclared identifier '%s'", d.Name)
			break
		}
		d.Symbol = sym
		node.Data = d
		typ = sym.Type
	case ast.IntegerLiteralNode:
		typ = literalType(d)
	case ast.RealLiteralNode:
		typ = types.Real()
	case ast.StringLiteralNode:
		typ = types.String()
	case ast.ConversionNode:
		typ = tc.checkConversion(node, d)
	case ast.AssignmentNode:
		typ = tc.checkAssignment(node, d)
	case ast.UnaryOpNode:
		typ = tc.checkUnary(node, d)
	case ast.BinaryOpNode:
		typ = tc.checkBinary(node, d)
	case ast.ConcatenationNode:
		typ = tc.checkConcatenation(node, d)
	case ast.ReplicationNode:
		typ = tc.checkReplication(node, d)
	case ast.ConditionalNode:
		typ = tc.checkConditional(node, d)
	case ast.ElementSelectNode:
		typ = tc.checkElementSelect(node, d)
	case ast.InvalidNode:
		tc.checkExpr(d.Child)
		typ = types.Void()
	default:
		tc.errorf(node.Tok, "unexpected %s in expression", node.Kind)
	}
	node.Typ = typ
	return typ
}

// literalType gives unsized decimal literals the type int and unsized
// based literals a 32-bit vector. Literals without X or Z digits are
// two-valued.
func literalType(d ast.IntegerLiteralNode) types.Type {
	switch {
	case d.Width > 0:
		return &types.IntType{Width: d.Width, Domain: types.TwoValued, Signed: d.Signed}
	case d.Based:
		return &types.IntType{Width: unsizedLiteralWidth, Domain: types.TwoValued, Signed: d.Signed}
	}
	return types.Int()
}

func (tc *TypeChecker) checkConversion(node *ast.Node, d ast.ConversionNode) types.Type {
	from := tc.checkExpr(d.Expr)
	if d.Implicit {
		return node.Typ
	}
	target := d.Target
	var to types.Type
	switch {
	case target.Type != nil:
		to = tc.resolveType(target.Type)
	case target.Width > 0 || target.Signing != token.EOF:
		if from == nil {
			return nil
		}
		sbv := types.SimpleBitVector(from)
		if sbv == nil {
			tc.errorf(node.Tok, "cannot cast %s: operand is not integral", from)
			return nil
		}
		res := *sbv
		if target.Width > 0 {
			res.Width = target.Width
		} else {
			res.Signed = target.Signing == token.Signed
		}
		to = &res
	}
	if from == nil || to == nil {
		return nil
	}
	if !castable(from, to) {
		tc.errorf(node.Tok, "cannot cast %s to %s", from, to)
		return nil
	}
	return to
}

func (tc *TypeChecker) checkAssignment(node *ast.Node, d ast.AssignmentNode) types.Type {
	lhs := tc.checkExpr(d.Left)
	rhs := tc.checkExpr(d.Right)
	if d.Left.Kind != ast.NamedValue {
		tc.errorf(d.Left.Tok, "assignment target must be a variable, found %s", d.Left.Kind)
		return nil
	}
	if lhs == nil || rhs == nil {
		return nil
	}
	d.Right = tc.convertTo(d.Right, lhs)
	node.Data = d
	return lhs
}

func (tc *TypeChecker) checkUnary(node *ast.Node, d ast.UnaryOpNode) types.Type {
	operand := tc.checkExpr(d.Expr)
	if operand == nil {
		return nil
	}
	switch {
	case d.Op == ast.LogicalNot:
		if !isNumeric(operand) {
			tc.errorf(node.Tok, "invalid operand of type %s to %s", operand, d.Op)
			return nil
		}
		return bitOf(operand)
	case d.Op.IsIncDec():
		if d.Expr.Kind != ast.NamedValue {
			tc.errorf(d.Expr.Tok, "operand of %s must be a variable", d.Op)
			return nil
		}
		if !isNumeric(operand) {
			tc.errorf(node.Tok, "invalid operand of type %s to %s", operand, d.Op)
			return nil
		}
		return operand
	case d.Op == ast.UnaryPlus || d.Op == ast.UnaryMinus:
		if isReal(operand) {
			return operand
		}
	}
	if !isIntegral(operand) {
		tc.errorf(node.Tok, "invalid operand of type %s to %s", operand, d.Op)
		return nil
	}
	switch d.Op {
	case ast.UnaryPlus, ast.UnaryMinus, ast.BitwiseNot:
		return types.SimpleBitVector(operand)
	}
	return bitOf(operand)
}

func (tc *TypeChecker) checkBinary(node *ast.Node, d ast.BinaryOpNode) types.Type {
	left, right := tc.checkExpr(d.Left), tc.checkExpr(d.Right)
	if left == nil || right == nil {
		return nil
	}
	invalid := func() types.Type {
		tc.errorf(node.Tok, "invalid operands of types %s and %s to %s", left, right, d.Op)
		return nil
	}

	switch {
	case d.Op.IsLogical():
		if !isNumeric(left) || !isNumeric(right) {
			return invalid()
		}
		return bitOf(left, right)
	case d.Op.IsShift():
		if !isIntegral(left) || !isIntegral(right) {
			return invalid()
		}
		return types.SimpleBitVector(left)
	case d.Op == ast.Power && isIntegral(left) && isIntegral(right):
		// the exponent is self-determined
		return types.SimpleBitVector(left)
	}

	if isReal(left) || isReal(right) {
		switch d.Op {
		case ast.Add, ast.Subtract, ast.Multiply, ast.Divide, ast.Power,
			ast.Equality, ast.Inequality, ast.LessThan, ast.LessThanEqual, ast.GreaterThan, ast.GreaterThanEqual:
		default:
			return invalid()
		}
		if !isNumeric(left) || !isNumeric(right) {
			return invalid()
		}
		d.Left = tc.convertTo(d.Left, types.Real())
		d.Right = tc.convertTo(d.Right, types.Real())
		node.Data = d
		if d.Op.IsComparison() {
			return types.Bit()
		}
		return types.Real()
	}

	if !isIntegral(left) || !isIntegral(right) {
		return invalid()
	}
	common := commonType(left, right)
	d.Left = tc.convertTo(d.Left, common)
	d.Right = tc.convertTo(d.Right, common)
	node.Data = d
	switch {
	case d.Op == ast.CaseEquality || d.Op == ast.CaseInequality:
		return types.Bit()
	case d.Op.IsComparison():
		return bitOf(common)
	}
	return common
}

func (tc *TypeChecker) checkConcatenation(node *ast.Node, d ast.ConcatenationNode) types.Type {
	width := 0
	domain := types.TwoValued
	ok := true
	for _, operand := range d.Operands {
		t := tc.checkExpr(operand)
		if t == nil {
			ok = false
			continue
		}
		if lit, isLit := operand.Data.(ast.IntegerLiteralNode); isLit && lit.Width == 0 {
			tc.errorf(operand.Tok, "unsized integer literal in concatenation")
			ok = false
			continue
		}
		w, integral := types.BitWidth(t)
		if !integral {
			tc.errorf(operand.Tok, "concatenation operand of type %s is not integral", t)
			ok = false
			continue
		}
		width += w
		if types.IsFourValued(t) {
			domain = types.FourValued
		}
	}
	if !ok {
		return nil
	}
	return &types.IntType{Width: width, Domain: domain}
}

func (tc *TypeChecker) checkReplication(node *ast.Node, d ast.ReplicationNode) types.Type {
	inner := tc.checkExpr(d.Concat)
	tc.checkExpr(d.Count)
	count, ok := ast.ConstInt(d.Count)
	if !ok || count.Sign() < 0 || !count.IsInt64() {
		tc.errorf(d.Count.Tok, "replication count must be a non-negative constant")
		return nil
	}
	sbv := types.SimpleBitVector(inner)
	if sbv == nil {
		return nil
	}
	return &types.IntType{Width: sbv.Width * int(count.Int64()), Domain: sbv.Domain}
}

func (tc *TypeChecker) checkConditional(node *ast.Node, d ast.ConditionalNode) types.Type {
	cond := tc.checkExpr(d.Cond)
	then, els := tc.checkExpr(d.Then), tc.checkExpr(d.Else)
	if cond == nil || then == nil || els == nil {
		return nil
	}
	if !isNumeric(cond) {
		tc.errorf(d.Cond.Tok, "condition of type %s is not numeric", cond)
		return nil
	}
	switch {
	case types.Equal(then, els):
		return then
	case isIntegral(then) && isIntegral(els):
		common := commonType(then, els)
		d.Then = tc.convertTo(d.Then, common)
		d.Else = tc.convertTo(d.Else, common)
		node.Data = d
		return common
	case isNumeric(then) && isNumeric(els):
		d.Then = tc.convertTo(d.Then, types.Real())
		d.Else = tc.convertTo(d.Else, types.Real())
		node.Data = d
		return types.Real()
	}
	tc.errorf(node.Tok, "incompatible operand types %s and %s in conditional", then, els)
	return nil
}

func (tc *TypeChecker) checkElementSelect(node *ast.Node, d ast.ElementSelectNode) types.Type {
	value, sel := tc.checkExpr(d.Value), tc.checkExpr(d.Selector)
	if value == nil || sel == nil {
		return nil
	}
	if !isIntegral(sel) {
		tc.errorf(d.Selector.Tok, "select index of type %s is not integral", sel)
		return nil
	}
	switch t := value.(type) {
	case *types.UnpackedArrayType:
		return t.Elem
	case *types.PackedArrayType:
		return t.Elem
	case *types.IntType:
		return bitOf(t)
	}
	tc.errorf(node.Tok, "cannot select from a value of type %s", value)
	return nil
}
