package typecheck

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/lexer"
	"github.com/xplshn/svimport/pkg/parser"
	"github.com/xplshn/svimport/pkg/types"
)

func check(t *testing.T, src string) (*ast.Design, *diag.Bag, error) {
	t.Helper()
	cfg := config.NewConfig()
	bag := diag.NewBag()
	content := []rune(src)
	index := bag.AddFile("test.sv", content)
	tokens := lexer.NewLexer(content, index, cfg, bag).Tokenize()
	design := parser.NewParser(tokens, cfg, bag).Parse()
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Diagnostics())
	err := NewTypeChecker(cfg, bag).Check(design)
	return design, bag, err
}

func mustCheck(t *testing.T, src string) *ast.Module {
	t.Helper()
	design, _, err := check(t, src)
	require.NoError(t, err)
	return design.Modules[0]
}

// procExpr returns the expression of a single-statement procedure.
func procExpr(item *ast.Node) *ast.Node {
	return item.Data.(ast.ProcedureNode).Body.Data.(ast.ExprStmtNode).Expr
}

func assignParts(n *ast.Node) (lhs, rhs *ast.Node) {
	d := n.Data.(ast.AssignmentNode)
	return d.Left, d.Right
}

func TestLiteralTypes(t *testing.T) {
	tests := []struct {
		lit  ast.IntegerLiteralNode
		want types.Type
	}{
		{ast.IntegerLiteralNode{Value: big.NewInt(3), Width: 8, Based: true}, types.Bits(8)},
		{ast.IntegerLiteralNode{Value: big.NewInt(3), Width: 8, Signed: true, Based: true}, &types.IntType{Width: 8, Signed: true}},
		{ast.IntegerLiteralNode{Value: big.NewInt(255), Based: true}, types.Bits(32)},
		{ast.IntegerLiteralNode{Value: big.NewInt(5), Signed: true}, types.Int()},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, literalType(tt.lit))
	}
}

func TestAssignmentConvertsRightSide(t *testing.T) {
	mod := mustCheck(t, `
module m;
  logic [7:0] x;
  initial x = 8'd3;
endmodule
`)
	assign := procExpr(mod.Items[1])
	assert.Equal(t, types.Logic(8), assign.Typ)

	lhs, rhs := assignParts(assign)
	require.NotNil(t, lhs.Data.(ast.NamedValueNode).Symbol)
	require.Equal(t, ast.Conversion, rhs.Kind)
	assert.True(t, rhs.Data.(ast.ConversionNode).Implicit)
	assert.Equal(t, types.Logic(8), rhs.Typ)
	assert.Same(t, assign, rhs.Parent)

	inner := rhs.Data.(ast.ConversionNode).Expr
	assert.Equal(t, types.Bits(8), inner.Typ)
	assert.Same(t, rhs, inner.Parent)
}

func TestBinaryOperandsShareType(t *testing.T) {
	mod := mustCheck(t, `
module m;
  logic [7:0] x;
  bit [3:0] y;
  initial x = x + y;
endmodule
`)
	_, rhs := assignParts(procExpr(mod.Items[2]))
	assert.Equal(t, types.Logic(8), rhs.Typ)

	d := rhs.Data.(ast.BinaryOpNode)
	assert.Equal(t, ast.NamedValue, d.Left.Kind)
	require.Equal(t, ast.Conversion, d.Right.Kind)
	assert.Equal(t, types.Logic(8), d.Right.Typ)
}

func TestComparisonIsOneBit(t *testing.T) {
	mod := mustCheck(t, `
module m;
  bit [3:0] a, b;
  logic c;
  initial c = a < b;
endmodule
`)
	_, rhs := assignParts(procExpr(mod.Items[3]))
	require.Equal(t, ast.Conversion, rhs.Kind)
	assert.Equal(t, types.Logic(1), rhs.Typ)
	assert.Equal(t, types.Bit(), rhs.Data.(ast.ConversionNode).Expr.Typ)
}

func TestPowerExponentIsSelfDetermined(t *testing.T) {
	mod := mustCheck(t, `
module m;
  int x;
  initial x = x ** 8'd2;
endmodule
`)
	_, rhs := assignParts(procExpr(mod.Items[1]))
	assert.Equal(t, types.Int(), rhs.Typ)
	d := rhs.Data.(ast.BinaryOpNode)
	assert.Equal(t, ast.IntegerLiteral, d.Right.Kind)
	assert.Equal(t, types.Bits(8), d.Right.Typ)
}

func TestConcatenationWidth(t *testing.T) {
	mod := mustCheck(t, `
module m;
  bit [3:0] a;
  logic [1:0] b;
  logic [5:0] c;
  assign c = {a, b};
endmodule
`)
	assign := mod.Items[3].Data.(ast.ContinuousAssignNode).Assigns[0]
	_, rhs := assignParts(assign)
	assert.Equal(t, types.Logic(6), rhs.Typ)
}

func TestRealArithmetic(t *testing.T) {
	mod := mustCheck(t, `
module m;
  real r;
  initial r = r + 1;
endmodule
`)
	_, rhs := assignParts(procExpr(mod.Items[1]))
	assert.Equal(t, types.Real(), rhs.Typ)
	d := rhs.Data.(ast.BinaryOpNode)
	require.Equal(t, ast.Conversion, d.Right.Kind)
	assert.Equal(t, types.Real(), d.Right.Typ)
}

func TestCasts(t *testing.T) {
	mod := mustCheck(t, `
module m;
  logic [3:0] x;
  real r;
  initial x = 8'(x);
  initial x = signed'(x);
  initial x = int'(r);
endmodule
`)
	want := []types.Type{
		types.Logic(8),
		&types.IntType{Width: 4, Domain: types.FourValued, Signed: true},
		types.Int(),
	}
	for i, w := range want {
		_, rhs := assignParts(procExpr(mod.Items[2+i]))
		// the assignment wraps the cast in a conversion back to x's type
		cast := rhs.Data.(ast.ConversionNode).Expr
		assert.Equal(t, w, cast.Typ)
	}
}

func TestStructTypes(t *testing.T) {
	mod := mustCheck(t, `
module m;
  struct packed signed { bit [3:0] hi; logic [3:0] lo; } s;
  logic [1:0][3:0] arr;
endmodule
`)
	st := mod.Items[0].Typ.(*types.PackedStructType)
	assert.True(t, st.Signed)
	assert.Equal(t, &types.IntType{Width: 8, Domain: types.FourValued, Signed: true}, types.SimpleBitVector(st))

	arr := mod.Items[1].Typ
	assert.Equal(t, &types.PackedArrayType{Elem: types.Logic(4), Size: 2}, arr)
}

func TestScopes(t *testing.T) {
	design, _, err := check(t, `
module a;
  logic x;
  initial begin
    int x;
    x = 1;
  end
endmodule
module b;
  logic x;
endmodule
`)
	require.NoError(t, err)

	outer := design.Modules[0].Items[0].Data.(ast.VarDeclNode).Symbol
	stmts := design.Modules[0].Items[1].Data.(ast.ProcedureNode).Body.Data.(ast.BlockNode).Stmts
	inner := stmts[0].Data.(ast.VarDeclNode).Symbol
	lhs, _ := assignParts(stmts[1].Data.(ast.ExprStmtNode).Expr)

	assert.NotEqual(t, outer.ID, inner.ID)
	assert.Same(t, inner, lhs.Data.(ast.NamedValueNode).Symbol)
	assert.Equal(t, types.Int(), lhs.Typ)
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"undeclared", "initial nope = 1;", "use of undeclared identifier 'nope'"},
		{"redefinition", "int a; int a;", "redefinition of 'a'"},
		{"target", "int a; initial 1 = a;", "assignment target must be a variable, found integer literal"},
		{"incdec target", "int a; initial (a + a)++;", "operand of postincrement must be a variable"},
		{"unsized in concat", "logic [7:0] a; assign a = {a, 1};", "unsized integer literal in concatenation"},
		{"real bitwise", "real r; initial r = r & 1;", "invalid operands of types !moore.real and !moore.si32 to binary and"},
		{"string arithmetic", "string s; initial s = -s;", "invalid operand of type !moore.string to minus"},
		{"duplicate member", "struct packed { bit a; bit a; } s;", "duplicate member 'a' in packed struct"},
		{"init sees no self", "int a = a;", "use of undeclared identifier 'a'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag, err := check(t, "module m;\n"+tt.body+"\nendmodule\n")
			require.Error(t, err)
			assert.Equal(t, diag.TypeError, diag.KindOf(err))
			diags := bag.Diagnostics()
			require.NotEmpty(t, diags)
			assert.Equal(t, tt.want, diags[0].Message)
			assert.Equal(t, 2, diags[0].Pos.Line)
		})
	}
}
