// Package lower translates the typed AST into Moore IR. The expression
// core (ConvertExpression and the helpers it dispatches to) lowers one
// already-checked expression at a time; the module driver walks
// declarations, continuous assigns and procedures around it.
package lower

import (
	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/token"
)

type scope struct {
	values map[ast.SymbolID]*ir.Value
	Parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{values: make(map[ast.SymbolID]*ir.Value), Parent: parent}
}

// Context is the state of one conversion unit: the symbol table, the
// builder's insertion point and the location of the node being lowered.
// It is not safe for concurrent use.
type Context struct {
	cfg          *config.Config
	builder      *ir.Builder
	reporter     diag.Reporter
	currentScope *scope
	loc          token.Pos
}

func NewContext(cfg *config.Config, builder *ir.Builder, reporter diag.Reporter) *Context {
	if reporter == nil {
		reporter = diag.Discard
	}
	return &Context{
		cfg:          cfg,
		builder:      builder,
		reporter:     reporter,
		currentScope: newScope(nil),
	}
}

func (ctx *Context) Builder() *ir.Builder { return ctx.builder }

func (ctx *Context) EnterScope() { ctx.currentScope = newScope(ctx.currentScope) }

func (ctx *Context) ExitScope() {
	if ctx.currentScope.Parent != nil {
		ctx.currentScope = ctx.currentScope.Parent
	}
}

// Bind makes sym resolve to v in the current scope.
func (ctx *Context) Bind(sym *ast.Symbol, v *ir.Value) {
	ctx.currentScope.values[sym.ID] = v
}

func (ctx *Context) Lookup(id ast.SymbolID) (*ir.Value, bool) {
	for s := ctx.currentScope; s != nil; s = s.Parent {
		if v, ok := s.values[id]; ok {
			return v, true
		}
	}
	return nil, false
}

// Loc is the location of the node currently being lowered.
func (ctx *Context) Loc() token.Pos { return ctx.loc }

func (ctx *Context) setLoc(pos token.Pos) {
	ctx.loc = pos
	ctx.builder.SetLoc(pos)
}

// errorf reports an error at the current location and returns it, so the
// caller can propagate it unchanged.
func (ctx *Context) errorf(kind diag.Kind, format string, args ...interface{}) error {
	d := diag.Errorf(kind, ctx.loc, format, args...)
	ctx.reporter.Report(d)
	return d
}

func (ctx *Context) warn(wt config.Warning, format string, args ...interface{}) {
	if !ctx.cfg.IsWarningEnabled(wt) {
		return
	}
	ctx.reporter.Report(diag.Warnf(ctx.cfg.WarningName(wt), ctx.loc, format, args...))
}
