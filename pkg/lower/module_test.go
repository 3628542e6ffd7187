package lower

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
)

func TestConvertModule(t *testing.T) {
	cfg := config.NewConfig()
	mod := checkedModule(t, cfg, `
module top;
  logic [7:0] x;
  logic [7:0] y;
  initial begin
    x = 8'd3;
    y <= x++;
  end
endmodule
`)
	bag := diag.NewBag()
	m, err := ConvertModule(cfg, mod, bag)
	require.NoError(t, err)
	assert.Zero(t, bag.ErrorCount())

	want := `moore.module @top {
  %x = moore.variable : !moore.l8
  %y = moore.variable : !moore.l8
  moore.procedure initial {
    %0 = moore.constant 3 : !moore.i8
    %1 = moore.conversion %0 : !moore.i8 -> !moore.l8
    moore.bpassign %x, %1 : !moore.l8
    %2 = moore.constant 1 : !moore.l8
    %3 = moore.add %x, %2 : !moore.l8
    moore.bpassign %x, %3 : !moore.l8
    moore.passign %y, %x : !moore.l8
  }
}
`
	assert.Equal(t, want, m.String())
}

func TestAssignmentContexts(t *testing.T) {
	cfg := config.NewConfig()
	mod := checkedModule(t, cfg, `
module top;
  bit [3:0] a;
  bit [3:0] b;
  assign a = b;
  always_comb begin
    assign b = a;
  end
endmodule
`)
	m, err := ConvertModule(cfg, mod, diag.Discard)
	require.NoError(t, err)
	assert.Equal(t, []ir.Opcode{
		ir.OpVariable, ir.OpVariable,
		ir.OpCAssign,
		ir.OpProcedure, ir.OpPCAssign,
	}, m.Body.Opcodes())
}

func TestLocalDeclarationShadows(t *testing.T) {
	cfg := config.NewConfig()
	mod := checkedModule(t, cfg, `
module top;
  logic x;
  initial begin
    logic [3:0] x = 4'd1;
    x = x + 4'd2;
  end
endmodule
`)
	m, err := ConvertModule(cfg, mod, diag.Discard)
	require.NoError(t, err)

	out := m.String()
	assert.Contains(t, out, "  %x = moore.variable : !moore.l1\n")
	assert.Contains(t, out, "    %x_1 = moore.variable %1 : !moore.l4\n")
	assert.Contains(t, out, "    %4 = moore.add %x_1, %3 : !moore.l4\n")
	assert.Contains(t, out, "    moore.bpassign %x_1, %4 : !moore.l4\n")
}

const failingStatements = `
module top;
  int x;
  initial begin
    x = x ** 2;
    x = x ** 3;
    x = x + 1;
  end
endmodule
`

func TestConvertModuleKeepsGoing(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MaxErrors = 0
	mod := checkedModule(t, cfg, failingStatements)
	bag := diag.NewBag()

	m, err := ConvertModule(cfg, mod, bag)
	require.Error(t, err)
	assert.Equal(t, diag.UnsupportedOperator, diag.KindOf(err))
	assert.False(t, errors.Is(err, ErrTooManyErrors))
	assert.Equal(t, 2, bag.ErrorCount())
	assert.Contains(t, m.Body.Opcodes(), ir.OpAdd)
}

func TestConvertModuleStopsAtMaxErrors(t *testing.T) {
	cfg := config.NewConfig()
	cfg.MaxErrors = 1
	mod := checkedModule(t, cfg, failingStatements)
	bag := diag.NewBag()

	m, err := ConvertModule(cfg, mod, bag)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTooManyErrors)
	assert.Equal(t, 1, bag.ErrorCount())
	assert.NotContains(t, m.Body.Opcodes(), ir.OpAdd)
}

func TestFailedInitializerStillDeclares(t *testing.T) {
	cfg := config.NewConfig()
	mod := checkedModule(t, cfg, `
module top;
  int x = 2 ** 3;
  int y;
  initial y = x;
endmodule
`)
	m, err := ConvertModule(cfg, mod, diag.Discard)
	require.Error(t, err)
	assert.Equal(t, []ir.Opcode{
		ir.OpConstant, ir.OpConstant,
		ir.OpVariable, ir.OpVariable,
		ir.OpProcedure, ir.OpBPAssign,
	}, m.Body.Opcodes())
	assert.Empty(t, m.Body.Ops[2].Operands)
}

func TestUnsupportedModuleItem(t *testing.T) {
	mod := &ast.Module{Name: "top", Items: []*ast.Node{ast.NewEmptyStmt(at(4, 2))}}
	bag := diag.NewBag()
	_, err := ConvertModule(config.NewConfig(), mod, bag)
	require.Error(t, err)
	assert.Equal(t, "4:2: unsupported module item: empty statement", err.Error())
	assert.Equal(t, diag.UnsupportedExpression, diag.KindOf(err))
}

func TestConvertDesign(t *testing.T) {
	design := &ast.Design{Modules: []*ast.Module{
		{Name: "a", Items: []*ast.Node{ast.NewEmptyStmt(at(1, 1))}},
		{Name: "b"},
		{Name: "c", Items: []*ast.Node{ast.NewEmptyStmt(at(3, 1))}},
	}}

	t.Run("every module in order", func(t *testing.T) {
		cfg := config.NewConfig()
		mods, err := ConvertDesign(cfg, design, diag.Discard)
		require.Error(t, err)
		require.Len(t, mods, 3)
		assert.Equal(t, "a", mods[0].Name)
		assert.Equal(t, "b", mods[1].Name)
		assert.Equal(t, "c", mods[2].Name)
	})

	t.Run("error limit spans modules", func(t *testing.T) {
		cfg := config.NewConfig()
		cfg.MaxErrors = 1
		mods, err := ConvertDesign(cfg, design, diag.Discard)
		assert.ErrorIs(t, err, ErrTooManyErrors)
		assert.Len(t, mods, 1)
	})
}
