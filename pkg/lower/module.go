package lower

import (
	"errors"

	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/types"
)

// ErrTooManyErrors is joined into the result when lowering stopped at
// Config.MaxErrors.
var ErrTooManyErrors = errors.New("too many errors, lowering stopped")

// driver lowers statements around the expression core. A failing
// statement is recorded and skipped so later independent errors still
// surface, until the error limit is reached.
type driver struct {
	cfg      *config.Config
	reporter diag.Reporter
	errs     []error
}

// ConvertModule lowers one module. The module is returned even when some
// statements failed; the error joins every failure.
func ConvertModule(cfg *config.Config, mod *ast.Module, reporter diag.Reporter) (*ir.Module, error) {
	d := &driver{cfg: cfg, reporter: reporter}
	m := d.convertModule(mod)
	return m, d.err()
}

// ConvertDesign lowers every module in order. The error limit applies to
// the design as a whole.
func ConvertDesign(cfg *config.Config, design *ast.Design, reporter diag.Reporter) ([]*ir.Module, error) {
	d := &driver{cfg: cfg, reporter: reporter}
	var mods []*ir.Module
	for _, mod := range design.Modules {
		if d.stopped() {
			break
		}
		mods = append(mods, d.convertModule(mod))
	}
	return mods, d.err()
}

func (d *driver) stopped() bool {
	return d.cfg.MaxErrors > 0 && len(d.errs) >= d.cfg.MaxErrors
}

func (d *driver) err() error {
	if len(d.errs) == 0 {
		return nil
	}
	errs := d.errs
	if d.stopped() {
		errs = append(errs[:len(errs):len(errs)], ErrTooManyErrors)
	}
	return errors.Join(errs...)
}

func (d *driver) record(err error) {
	if err != nil {
		d.errs = append(d.errs, err)
	}
}

func (d *driver) convertModule(mod *ast.Module) *ir.Module {
	irMod := ir.NewModule(mod.Name)
	ctx := NewContext(d.cfg, ir.NewBuilder(irMod), d.reporter)

	for _, item := range mod.Items {
		if d.stopped() {
			break
		}
		switch item.Kind {
		case ast.VarDecl:
			d.declare(ctx, item)
		case ast.ContinuousAssign:
			for _, assign := range item.Data.(ast.ContinuousAssignNode).Assigns {
				if d.stopped() {
					break
				}
				d.expr(ctx, assign)
			}
		case ast.Procedure:
			d.procedure(ctx, item)
		default:
			ctx.setLoc(item.Tok.Pos)
			d.record(ctx.errorf(diag.UnsupportedExpression, "unsupported module item: %s", item.Kind))
		}
	}
	return irMod
}

// declare emits the variable and binds its symbol. A failing initializer
// is recorded and the variable is declared without it, so later uses
// still resolve.
func (d *driver) declare(ctx *Context, node *ast.Node) {
	vd := node.Data.(ast.VarDeclNode)
	var init *ir.Value
	if vd.Init != nil {
		v, err := ctx.ConvertExpression(vd.Init)
		d.record(err)
		init = v
	}
	ctx.setLoc(node.Tok.Pos)
	if init != nil && !types.Equal(init.Type, vd.Symbol.Type) {
		init = ctx.builder.Conversion(vd.Symbol.Type, init)
	}
	ctx.Bind(vd.Symbol, ctx.builder.Variable(vd.Name, vd.Symbol.Type, init))
}

func (d *driver) procedure(ctx *Context, node *ast.Node) {
	pd := node.Data.(ast.ProcedureNode)
	ctx.setLoc(node.Tok.Pos)
	body := ctx.builder.Procedure(pd.Kind.String())

	saved := ctx.builder.Block()
	ctx.builder.SetInsertionPoint(body)
	defer ctx.builder.SetInsertionPoint(saved)

	d.stmt(ctx, pd.Body)
}

func (d *driver) stmt(ctx *Context, node *ast.Node) {
	if node == nil || d.stopped() {
		return
	}
	switch data := node.Data.(type) {
	case ast.BlockNode:
		ctx.EnterScope()
		defer ctx.ExitScope()
		for _, s := range data.Stmts {
			d.stmt(ctx, s)
		}
	case ast.VarDeclNode:
		d.declare(ctx, node)
	case ast.ExprStmtNode:
		d.expr(ctx, data.Expr)
	case ast.ProceduralAssignNode:
		d.expr(ctx, data.Assign)
	case ast.EmptyStmtNode:
	default:
		ctx.setLoc(node.Tok.Pos)
		d.record(ctx.errorf(diag.UnsupportedExpression, "unsupported statement: %s", node.Kind))
	}
}

func (d *driver) expr(ctx *Context, node *ast.Node) {
	_, err := ctx.ConvertExpression(node)
	d.record(err)
}
