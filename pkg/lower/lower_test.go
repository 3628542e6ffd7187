package lower

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/lexer"
	"github.com/xplshn/svimport/pkg/parser"
	"github.com/xplshn/svimport/pkg/token"
	"github.com/xplshn/svimport/pkg/typecheck"
	"github.com/xplshn/svimport/pkg/types"
)

// fixture lowers hand-built, already typed expressions into a module
// named "top".
type fixture struct {
	cfg    *config.Config
	mod    *ir.Module
	bag    *diag.Bag
	ctx    *Context
	nextID ast.SymbolID
}

func newFixture() *fixture {
	cfg := config.NewConfig()
	mod := ir.NewModule("top")
	bag := diag.NewBag()
	return &fixture{cfg: cfg, mod: mod, bag: bag, ctx: NewContext(cfg, ir.NewBuilder(mod), bag)}
}

func at(line, col int) token.Token {
	return token.Token{Pos: token.Pos{Line: line, Column: col, Len: 1}}
}

// declare emits a variable and binds a fresh symbol to it.
func (f *fixture) declare(name string, typ types.Type) *ast.Symbol {
	f.nextID++
	sym := &ast.Symbol{ID: f.nextID, Name: name, Type: typ}
	f.ctx.Bind(sym, f.ctx.Builder().Variable(name, typ, nil))
	return sym
}

func ref(sym *ast.Symbol) *ast.Node {
	n := ast.NewNamedValue(at(1, 1), sym.Name)
	n.Data = ast.NamedValueNode{Name: sym.Name, Symbol: sym}
	n.Typ = sym.Type
	return n
}

func typed(n *ast.Node, typ types.Type) *ast.Node {
	n.Typ = typ
	return n
}

func lit(v int64, typ *types.IntType) *ast.Node {
	return typed(ast.NewIntegerLiteral(at(1, 1), big.NewInt(v), typ.Width, typ.Signed, true), typ)
}

// emitted returns the opcodes built after the first skip ops.
func (f *fixture) emitted(skip int) []ir.Opcode {
	return f.mod.Body.Opcodes()[skip:]
}

// checkedModule runs src through the front end and returns its only module.
func checkedModule(t *testing.T, cfg *config.Config, src string) *ast.Module {
	t.Helper()
	bag := diag.NewBag()
	content := []rune(src)
	index := bag.AddFile("test.sv", content)
	tokens := lexer.NewLexer(content, index, cfg, bag).Tokenize()
	design := parser.NewParser(tokens, cfg, bag).Parse()
	require.False(t, bag.HasErrors(), "parse errors: %v", bag.Diagnostics())
	require.NoError(t, typecheck.NewTypeChecker(cfg, bag).Check(design))
	require.Len(t, design.Modules, 1)
	return design.Modules[0]
}
