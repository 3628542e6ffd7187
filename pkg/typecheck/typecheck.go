// Package typecheck resolves names and annotates every expression of a
// parsed design with its type, inserting implicit conversions where an
// operand's type differs from the type its context requires.
package typecheck

import (
	"errors"

	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/token"
	"github.com/xplshn/svimport/pkg/types"
)

type binding struct {
	sym  *ast.Symbol
	next *binding
}

type Scope struct {
	bindings *binding
	Parent   *Scope
}

type TypeChecker struct {
	currentScope *Scope
	cfg          *config.Config
	reporter     diag.Reporter
	nextID       ast.SymbolID
	errs         []error
}

func NewTypeChecker(cfg *config.Config, reporter diag.Reporter) *TypeChecker {
	if reporter == nil {
		reporter = diag.Discard
	}
	return &TypeChecker{cfg: cfg, reporter: reporter}
}

func newScope(parent *Scope) *Scope { return &Scope{Parent: parent} }
func (tc *TypeChecker) enterScope()  { tc.currentScope = newScope(tc.currentScope) }
func (tc *TypeChecker) exitScope() {
	if tc.currentScope.Parent != nil {
		tc.currentScope = tc.currentScope.Parent
	}
}

func (tc *TypeChecker) errorf(tok token.Token, format string, args ...interface{}) {
	d := diag.Errorf(diag.TypeError, tok.Pos, format, args...)
	tc.reporter.Report(d)
	tc.errs = append(tc.errs, d)
}

// addSymbol declares name in the current scope. Redeclaring a name in the
// same scope is an error; the new symbol still shadows the old one so uses
// after it resolve.
func (tc *TypeChecker) addSymbol(tok token.Token, name string, typ types.Type) *ast.Symbol {
	if tc.findSymbolInCurrentScope(name) != nil {
		tc.errorf(tok, "redefinition of '%s'", name)
	}
	tc.nextID++
	sym := &ast.Symbol{ID: tc.nextID, Name: name, Type: typ, Tok: tok}
	tc.currentScope.bindings = &binding{sym: sym, next: tc.currentScope.bindings}
	return sym
}

func (tc *TypeChecker) findSymbol(name string) *ast.Symbol {
	return tc.findSymbolInScopes(name, false)
}

func (tc *TypeChecker) findSymbolInCurrentScope(name string) *ast.Symbol {
	return tc.findSymbolInScopes(name, true)
}

func (tc *TypeChecker) findSymbolInScopes(name string, currentOnly bool) *ast.Symbol {
	for s := tc.currentScope; s != nil; s = s.Parent {
		for b := s.bindings; b != nil; b = b.next {
			if b.sym.Name == name {
				return b.sym
			}
		}
		if currentOnly {
			break
		}
	}
	return nil
}

// Check annotates every module of design. Modules do not share a scope.
// The returned error joins every type error; checking continues past
// errors so independent problems are all reported.
func (tc *TypeChecker) Check(design *ast.Design) error {
	for _, mod := range design.Modules {
		tc.CheckModule(mod)
	}
	return tc.Err()
}

func (tc *TypeChecker) CheckModule(mod *ast.Module) {
	tc.currentScope = newScope(nil)
	for _, item := range mod.Items {
		tc.checkItem(item)
	}
}

// Err joins the errors reported so far.
func (tc *TypeChecker) Err() error { return errors.Join(tc.errs...) }

func (tc *TypeChecker) checkItem(node *ast.Node) {
	switch d := node.Data.(type) {
	case ast.VarDeclNode:
		tc.checkVarDecl(node)
	case ast.ContinuousAssignNode:
		for i, assign := range d.Assigns {
			d.Assigns[i] = tc.checkAssignTarget(assign)
		}
	case ast.ProcedureNode:
		tc.checkStmt(d.Body)
	default:
		tc.errorf(node.Tok, "unexpected %s in module body", node.Kind)
	}
}

func (tc *TypeChecker) checkStmt(node *ast.Node) {
	if node == nil {
		return
	}
	switch d := node.Data.(type) {
	case ast.BlockNode:
		tc.enterScope()
		for _, s := range d.Stmts {
			tc.checkStmt(s)
		}
		tc.exitScope()
	case ast.VarDeclNode:
		tc.checkVarDecl(node)
	case ast.ExprStmtNode:
		tc.checkExpr(d.Expr)
	case ast.ProceduralAssignNode:
		d.Assign = tc.checkAssignTarget(d.Assign)
		node.Data = d
	case ast.EmptyStmtNode:
	default:
		tc.errorf(node.Tok, "unexpected %s in procedure", node.Kind)
	}
}

// checkAssignTarget checks an assignment that must not be used as a value.
func (tc *TypeChecker) checkAssignTarget(node *ast.Node) *ast.Node {
	if node.Kind != ast.Assignment {
		tc.errorf(node.Tok, "expected assignment, found %s", node.Kind)
		return node
	}
	tc.checkExpr(node)
	return node
}

func (tc *TypeChecker) checkVarDecl(node *ast.Node) {
	d := node.Data.(ast.VarDeclNode)
	typ := tc.resolveType(d.Spec)
	if typ != nil {
		for i := len(d.Unpacked) - 1; i >= 0; i-- {
			typ = &types.UnpackedArrayType{Elem: typ, Size: d.Unpacked[i]}
		}
	}
	if d.Init != nil {
		// The initializer is checked before the name is visible.
		if tc.checkExpr(d.Init) != nil && typ != nil {
			d.Init = tc.convertTo(d.Init, typ)
		}
	}
	if typ == nil {
		typ = types.Void()
	}
	d.Symbol = tc.addSymbol(node.Tok, d.Name, typ)
	node.Data = d
	node.Typ = typ
}

var integralKeywords = map[token.Type]func() *types.IntType{
	token.Byte:     types.Byte,
	token.Shortint: types.Shortint,
	token.Int:      types.Int,
	token.Longint:  types.Longint,
	token.Integer:  types.Integer,
	token.Time:     types.Time,
}

// resolveType maps a written type to its semantic type. A vector keyword
// with one packed dimension is a simple bit vector; further dimensions
// become packed arrays around it.
func (tc *TypeChecker) resolveType(spec *ast.TypeSpec) types.Type {
	if spec == nil {
		return nil
	}
	switch spec.Keyword {
	case token.Real:
		return types.Real()
	case token.StringKeyword:
		return types.String()
	case token.Struct:
		return tc.resolveStruct(spec)
	case token.Logic, token.Reg, token.Bit:
		domain := types.FourValued
		if spec.Keyword == token.Bit {
			domain = types.TwoValued
		}
		signed := spec.Signing == token.Signed
		if len(spec.Packed) == 0 {
			return &types.IntType{Width: 1, Domain: domain, Signed: signed}
		}
		last := len(spec.Packed) - 1
		var typ types.Type = &types.IntType{Width: spec.Packed[last].Size(), Domain: domain, Signed: signed}
		for i := last - 1; i >= 0; i-- {
			typ = &types.PackedArrayType{Elem: typ, Size: spec.Packed[i].Size()}
		}
		return typ
	}
	if ctor, ok := integralKeywords[spec.Keyword]; ok {
		it := ctor()
		switch spec.Signing {
		case token.Signed:
			it.Signed = true
		case token.Unsigned:
			it.Signed = false
		}
		return it
	}
	tc.errorf(spec.Tok, "unknown type '%s'", spec.Keyword)
	return nil
}

func (tc *TypeChecker) resolveStruct(spec *ast.TypeSpec) types.Type {
	st := &types.PackedStructType{Signed: spec.Signing == token.Signed}
	seen := make(map[string]bool)
	for _, f := range spec.Fields {
		if seen[f.Name] {
			tc.errorf(f.Tok, "duplicate member '%s' in packed struct", f.Name)
			return nil
		}
		seen[f.Name] = true
		ft := tc.resolveType(f.Type)
		if ft == nil {
			return nil
		}
		if !types.IsBitVectorRepresentable(ft) {
			tc.errorf(f.Tok, "packed struct member '%s' has unpacked type %s", f.Name, ft)
			return nil
		}
		st.Fields = append(st.Fields, types.StructField{Name: f.Name, Type: ft})
	}
	return st
}
