package parser

import (
	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/token"
)

// Parser holds the state for the parsing process
type Parser struct {
	tokens   []token.Token
	pos      int
	current  token.Token
	previous token.Token
	cfg      *config.Config
	reporter diag.Reporter
}

// bailout unwinds the parser to the nearest item or statement boundary
// after an error has been reported.
type bailout struct{}

// NewParser creates and initializes a new Parser from a token stream. The
// stream must end with an EOF token.
func NewParser(tokens []token.Token, cfg *config.Config, reporter diag.Reporter) *Parser {
	if reporter == nil {
		reporter = diag.Discard
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	return &Parser{tokens: tokens, current: tokens[0], cfg: cfg, reporter: reporter}
}

// Parser helpers
func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.previous = p.current
		p.pos++
		p.current = p.tokens[p.pos]
	}
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) check(tokType token.Type) bool {
	return p.current.Type == tokType
}

func (p *Parser) match(tokType token.Type) bool {
	if !p.check(tokType) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expect(tokType token.Type, message string) token.Token {
	if p.check(tokType) {
		p.advance()
		return p.previous
	}
	p.fail(p.current, "%s, found %s", message, describe(p.current))
	return token.Token{}
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.Ident:
		return "'" + tok.Value + "'"
	case token.EOF:
		return tok.Type.String()
	case token.Number, token.BasedNumber, token.RealNumber, token.String:
		return tok.Type.String()
	}
	return "'" + tok.Type.String() + "'"
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.reporter.Report(diag.Errorf(diag.ParseError, tok.Pos, format, args...))
}

func (p *Parser) fail(tok token.Token, format string, args ...interface{}) {
	p.errorf(tok, format, args...)
	panic(bailout{})
}

// recoverAt turns a bailout into a skip to the next statement boundary.
// Other panics propagate.
func (p *Parser) recoverAt(startPos int) {
	r := recover()
	if r == nil {
		return
	}
	if _, ok := r.(bailout); !ok {
		panic(r)
	}
	if p.pos == startPos {
		p.advance()
	}
	p.synchronize()
}

func (p *Parser) synchronize() {
	for !p.check(token.EOF) {
		if p.match(token.Semi) {
			return
		}
		switch p.current.Type {
		case token.End, token.Endmodule, token.Module, token.Initial, token.Final,
			token.Always, token.AlwaysComb, token.Assign:
			return
		}
		p.advance()
	}
}

// Parse parses every module in the token stream.
func (p *Parser) Parse() *ast.Design {
	design := &ast.Design{}
	for !p.check(token.EOF) {
		if mod := p.parseModule(); mod != nil {
			design.Modules = append(design.Modules, mod)
		}
	}
	return design
}

func (p *Parser) parseModule() (mod *ast.Module) {
	startPos := p.pos
	defer p.recoverAt(startPos)

	tok := p.expect(token.Module, "expected 'module'")
	name := p.expect(token.Ident, "expected module name")
	mod = &ast.Module{Name: name.Value, Tok: tok}
	if p.match(token.LParen) {
		if !p.match(token.RParen) {
			p.fail(p.current, "module ports are not supported")
		}
	}
	p.expect(token.Semi, "expected ';' after module header")

	for !p.check(token.Endmodule) && !p.check(token.EOF) {
		mod.Items = append(mod.Items, p.parseItem()...)
	}
	p.expect(token.Endmodule, "expected 'endmodule'")
	if p.match(token.Colon) {
		p.expect(token.Ident, "expected module name after ':'")
	}
	return mod
}

func (p *Parser) parseItem() (items []*ast.Node) {
	startPos := p.pos
	defer p.recoverAt(startPos)

	tok := p.current
	switch {
	case p.match(token.Assign):
		return []*ast.Node{p.parseContinuousAssign(tok)}
	case p.check(token.Initial), p.check(token.Final), p.check(token.Always), p.check(token.AlwaysComb):
		return []*ast.Node{p.parseProcedure()}
	case isTypeStart(p.current.Type):
		return p.parseVarDecls()
	}
	p.fail(tok, "unexpected %s in module body", describe(tok))
	return nil
}

func (p *Parser) parseContinuousAssign(tok token.Token) *ast.Node {
	var assigns []*ast.Node
	for {
		lhs := p.parseUnaryExpr()
		eq := p.expect(token.Eq, "expected '=' in continuous assignment")
		rhs := p.parseExpr()
		assigns = append(assigns, ast.NewAssignment(eq, lhs, rhs, false, ast.ContinuousAssignSyntax))
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.Semi, "expected ';' after continuous assignment")
	return ast.NewContinuousAssign(tok, assigns)
}

var procedureKinds = map[token.Type]ast.ProcedureKind{
	token.Initial:    ast.ProcInitial,
	token.Final:      ast.ProcFinal,
	token.Always:     ast.ProcAlways,
	token.AlwaysComb: ast.ProcAlwaysComb,
}

func (p *Parser) parseProcedure() *ast.Node {
	tok := p.current
	kind := procedureKinds[tok.Type]
	p.advance()
	return ast.NewProcedure(tok, kind, p.parseStmt())
}

func (p *Parser) parseStmt() (stmt *ast.Node) {
	startPos := p.pos
	defer p.recoverAt(startPos)

	tok := p.current
	switch {
	case p.match(token.Begin):
		return p.parseBlock(tok)
	case p.match(token.Semi):
		return ast.NewEmptyStmt(tok)
	case p.match(token.Assign):
		if !p.cfg.IsFeatureEnabled(config.FeatProceduralAssign) {
			p.errorf(tok, "procedural assign statements are disabled (-Fprocedural-assign)")
		}
		lhs := p.parseUnaryExpr()
		eq := p.expect(token.Eq, "expected '=' in procedural assignment")
		rhs := p.parseExpr()
		p.expect(token.Semi, "expected ';' after procedural assignment")
		return ast.NewProceduralAssign(tok, ast.NewAssignment(eq, lhs, rhs, false, ast.ProceduralAssignStatement))
	}

	// An assignment statement starts like any expression; `<=` after the
	// left-hand side is a non-blocking assignment, not a comparison.
	lhs := p.parseUnaryExpr()
	if p.check(token.Eq) || p.check(token.Lte) {
		opTok := p.current
		p.advance()
		rhs := p.parseExpr()
		p.expect(token.Semi, "expected ';' after assignment")
		assign := ast.NewAssignment(opTok, lhs, rhs, opTok.Type == token.Lte, ast.ExpressionStatement)
		return ast.NewExprStmt(tok, assign)
	}
	expr := p.parseExprFrom(lhs)
	p.expect(token.Semi, "expected ';' after expression")
	return ast.NewExprStmt(tok, expr)
}

func (p *Parser) parseBlock(tok token.Token) *ast.Node {
	label := ""
	if p.match(token.Colon) {
		label = p.expect(token.Ident, "expected block label").Value
	}
	var stmts []*ast.Node
	for !p.check(token.End) && !p.check(token.Endmodule) && !p.check(token.EOF) {
		if isTypeStart(p.current.Type) {
			if !p.cfg.IsFeatureEnabled(config.FeatLocalDecls) {
				p.errorf(p.current, "local declarations are disabled (-Flocal-decls)")
			}
			stmts = append(stmts, p.parseLocalDecls()...)
			continue
		}
		if stmt := p.parseStmt(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.End, "expected 'end'")
	if p.match(token.Colon) {
		p.expect(token.Ident, "expected block label after ':'")
	}
	return ast.NewBlock(tok, label, stmts)
}

func (p *Parser) parseLocalDecls() (decls []*ast.Node) {
	startPos := p.pos
	defer p.recoverAt(startPos)
	return p.parseVarDecls()
}
