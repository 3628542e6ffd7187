package parser

import (
	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/token"
)

func isTypeStart(t token.Type) bool {
	switch t {
	case token.Logic, token.Bit, token.Reg, token.Byte, token.Shortint, token.Int, token.Longint,
		token.Integer, token.Time, token.Real, token.StringKeyword, token.Struct:
		return true
	}
	return false
}

// isVectorKeyword reports whether the keyword accepts packed dimensions.
func isVectorKeyword(t token.Type) bool {
	return t == token.Logic || t == token.Bit || t == token.Reg
}

// parseVarDecls parses `type name [dims] [= init], ...;`
func (p *Parser) parseVarDecls() []*ast.Node {
	spec := p.parseTypeSpec()
	var decls []*ast.Node
	for {
		name := p.expect(token.Ident, "expected variable name")
		var unpacked []int
		for p.check(token.LBracket) {
			unpacked = append(unpacked, p.parseUnpackedDim())
		}
		var init *ast.Node
		if p.match(token.Eq) {
			init = p.parseExpr()
		}
		decls = append(decls, ast.NewVarDecl(name, name.Value, spec, unpacked, init))
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.Semi, "expected ';' after declaration")
	return decls
}

func (p *Parser) parseTypeSpec() *ast.TypeSpec {
	tok := p.current
	if p.match(token.Struct) {
		return p.parseStructSpec(tok)
	}
	if !isTypeStart(tok.Type) {
		p.fail(tok, "expected type, found %s", describe(tok))
	}
	p.advance()
	spec := &ast.TypeSpec{Keyword: tok.Type, Signing: token.EOF, Tok: tok}
	if p.check(token.Signed) || p.check(token.Unsigned) {
		if tok.Type == token.Real || tok.Type == token.StringKeyword {
			p.fail(p.current, "'%s' cannot be %s", tok.Type, p.current.Type)
		}
		spec.Signing = p.current.Type
		p.advance()
	}
	for p.check(token.LBracket) {
		if !isVectorKeyword(tok.Type) {
			p.fail(p.current, "packed dimensions are not allowed on '%s'", tok.Type)
		}
		spec.Packed = append(spec.Packed, p.parsePackedDim())
	}
	return spec
}

func (p *Parser) parseStructSpec(tok token.Token) *ast.TypeSpec {
	if !p.match(token.Packed) {
		p.fail(p.current, "only packed structs are supported")
	}
	spec := &ast.TypeSpec{Keyword: token.Struct, Signing: token.EOF, Tok: tok}
	if p.check(token.Signed) || p.check(token.Unsigned) {
		spec.Signing = p.current.Type
		p.advance()
	}
	p.expect(token.LBrace, "expected '{' after 'struct packed'")
	for !p.check(token.RBrace) && !p.check(token.EOF) {
		fieldType := p.parseTypeSpec()
		if fieldType.Keyword == token.Real || fieldType.Keyword == token.StringKeyword {
			p.fail(fieldType.Tok, "packed struct member cannot have type '%s'", fieldType.Keyword)
		}
		for {
			name := p.expect(token.Ident, "expected member name")
			spec.Fields = append(spec.Fields, ast.FieldSpec{Name: name.Value, Type: fieldType, Tok: name})
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.Semi, "expected ';' after struct member")
	}
	p.expect(token.RBrace, "expected '}' to close struct")
	if len(spec.Fields) == 0 {
		p.fail(tok, "packed struct has no members")
	}
	return spec
}

func (p *Parser) parsePackedDim() ast.Range {
	p.expect(token.LBracket, "expected '['")
	msb := p.constInt("packed dimension")
	p.expect(token.Colon, "expected ':' in packed dimension")
	lsb := p.constInt("packed dimension")
	p.expect(token.RBracket, "expected ']' after packed dimension")
	return ast.Range{Msb: msb, Lsb: lsb}
}

// parseUnpackedDim parses `[N]` or `[a:b]` and returns the element count.
func (p *Parser) parseUnpackedDim() int {
	tok := p.expect(token.LBracket, "expected '['")
	first := p.constInt("unpacked dimension")
	size := first
	if p.match(token.Colon) {
		size = ast.Range{Msb: first, Lsb: p.constInt("unpacked dimension")}.Size()
	} else if size <= 0 {
		p.fail(tok, "unpacked dimension must be positive, got %d", size)
	}
	p.expect(token.RBracket, "expected ']' after unpacked dimension")
	return size
}

func (p *Parser) constInt(what string) int {
	tok := p.current
	v, ok := ast.ConstInt(p.parseExpr())
	if !ok || !v.IsInt64() {
		p.fail(tok, "%s must be a constant integer", what)
	}
	n := v.Int64()
	if n < -(1<<31) || n >= 1<<31 {
		p.fail(tok, "%s %d out of range", what, n)
	}
	return int(n)
}
