package parser

import (
	"strconv"

	"github.com/xplshn/svimport/pkg/ast"
	"github.com/xplshn/svimport/pkg/lexer"
	"github.com/xplshn/svimport/pkg/token"
)

func getBinaryOpPrecedence(op token.Type) int {
	switch op {
	case token.Power:
		return 12
	case token.Star, token.Slash, token.Rem:
		return 11
	case token.Plus, token.Minus:
		return 10
	case token.Shl, token.Shr, token.AShl, token.AShr:
		return 9
	case token.Lt, token.Gt, token.Lte, token.Gte:
		return 8
	case token.EqEq, token.Neq, token.CaseEq, token.CaseNeq, token.WildcardEq, token.WildcardNeq:
		return 7
	case token.And:
		return 6
	case token.Xor, token.Xnor:
		return 5
	case token.Or:
		return 4
	case token.AndAnd:
		return 3
	case token.OrOr:
		return 2
	default:
		return -1
	}
}

func (p *Parser) parseExpr() *ast.Node {
	return p.parseExprFrom(p.parseUnaryExpr())
}

// parseExprFrom continues an expression whose leading operand has already
// been parsed. Implication and equivalence bind loosest and associate to
// the right.
func (p *Parser) parseExprFrom(lhs *ast.Node) *ast.Node {
	left := p.parseConditionalFrom(lhs)
	if p.check(token.Implies) || p.check(token.Equiv) {
		opTok := p.current
		p.advance()
		right := p.parseExpr()
		return ast.NewBinaryOp(opTok, ast.BinaryOperators[opTok.Type], left, right)
	}
	return left
}

func (p *Parser) parseConditionalFrom(lhs *ast.Node) *ast.Node {
	cond := p.parseBinaryRHS(1, lhs)
	if !p.check(token.Question) {
		return cond
	}
	tok := p.current
	p.advance()
	then := p.parseExpr()
	p.expect(token.Colon, "expected ':' in conditional expression")
	els := p.parseConditionalFrom(p.parseUnaryExpr())
	return ast.NewConditional(tok, cond, then, els)
}

func (p *Parser) parseBinaryRHS(minPrec int, left *ast.Node) *ast.Node {
	for {
		prec := getBinaryOpPrecedence(p.current.Type)
		if prec < minPrec {
			return left
		}
		opTok := p.current
		p.advance()

		// ** is right associative, everything else left
		nextMin := prec + 1
		if opTok.Type == token.Power {
			nextMin = prec
		}
		right := p.parseBinaryRHS(nextMin, p.parseUnaryExpr())
		left = ast.NewBinaryOp(opTok, ast.BinaryOperators[opTok.Type], left, right)
	}
}

func (p *Parser) parseUnaryExpr() *ast.Node {
	tok := p.current
	if op, ok := ast.UnaryOperators[tok.Type]; ok {
		p.advance()
		operand := p.parseUnaryExpr()
		return ast.NewUnaryOp(tok, op, operand)
	}
	return p.parsePostfixExpr()
}

func (p *Parser) parsePostfixExpr() *ast.Node {
	expr := p.parsePrimaryExpr()
	for {
		tok := p.current
		switch {
		case p.match(token.LBracket):
			sel := p.parseExpr()
			p.expect(token.RBracket, "expected ']' after select")
			expr = ast.NewElementSelect(tok, expr, sel)
		case p.match(token.Inc):
			expr = ast.NewUnaryOp(tok, ast.Postincrement, expr)
		case p.match(token.Dec):
			expr = ast.NewUnaryOp(tok, ast.Postdecrement, expr)
		default:
			return expr
		}
	}
}

func (p *Parser) parsePrimaryExpr() *ast.Node {
	tok := p.current
	switch {
	case p.match(token.Number):
		if p.check(token.Apostrophe) && p.peek().Type == token.LParen {
			width, err := strconv.Atoi(tok.Value)
			if err != nil || width <= 0 {
				p.fail(tok, "invalid cast width '%s'", tok.Value)
			}
			return p.parseCast(tok, ast.CastTarget{Width: width})
		}
		return p.integerLiteral(tok)
	case p.match(token.BasedNumber):
		return p.integerLiteral(tok)
	case p.match(token.RealNumber):
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.fail(tok, "invalid real literal '%s'", tok.Value)
		}
		return ast.NewRealLiteral(tok, v)
	case p.match(token.String):
		return ast.NewStringLiteral(tok, tok.Value)
	case p.match(token.Ident):
		return ast.NewNamedValue(tok, tok.Value)
	case p.match(token.LParen):
		return p.parseParenthesized(tok)
	case p.match(token.LBrace):
		return p.parseBraces(tok)
	case p.check(token.Signed), p.check(token.Unsigned):
		if p.peek().Type == token.Apostrophe {
			p.advance()
			return p.parseCast(tok, ast.CastTarget{Signing: tok.Type})
		}
	case isTypeStart(tok.Type) && tok.Type != token.Struct:
		spec := p.parseTypeSpec()
		if !p.check(token.Apostrophe) {
			p.fail(p.current, "expected ''' after type in cast, found %s", describe(p.current))
		}
		return p.parseCast(tok, ast.CastTarget{Type: spec})
	}
	p.fail(tok, "expected expression, found %s", describe(tok))
	return nil
}

func (p *Parser) integerLiteral(tok token.Token) *ast.Node {
	lit, err := lexer.ParseIntegerLiteral(tok.Value)
	if err != nil {
		p.fail(tok, "%v", err)
	}
	return ast.NewIntegerLiteral(tok, lit.Value, lit.Width, lit.Signed, lit.Based)
}

// parseCast parses `'(expr)`; the target has been consumed.
func (p *Parser) parseCast(tok token.Token, target ast.CastTarget) *ast.Node {
	p.expect(token.Apostrophe, "expected ''' in cast")
	p.expect(token.LParen, "expected '(' after ''' in cast")
	expr := p.parseExpr()
	p.expect(token.RParen, "expected ')' to close cast")
	return ast.NewConversion(tok, expr, target)
}

// parseParenthesized parses a parenthesized expression. `(a = b)` is an
// assignment used as a value.
func (p *Parser) parseParenthesized(tok token.Token) *ast.Node {
	lhs := p.parseUnaryExpr()
	var expr *ast.Node
	if p.check(token.Eq) {
		eq := p.current
		p.advance()
		rhs := p.parseExpr()
		expr = ast.NewAssignment(eq, lhs, rhs, false, ast.ParenthesizedExpression)
	} else {
		expr = p.parseExprFrom(lhs)
	}
	p.expect(token.RParen, "expected ')' after expression")
	return expr
}

// parseBraces parses `{}`, `{a, b}` and `{n{a, b}}`.
func (p *Parser) parseBraces(tok token.Token) *ast.Node {
	if p.match(token.RBrace) {
		return ast.NewConcatenation(tok, nil)
	}
	first := p.parseExpr()
	if p.check(token.LBrace) {
		inner := p.current
		p.advance()
		concat := p.parseConcatOperands(inner)
		p.expect(token.RBrace, "expected '}' to close replication")
		return ast.NewReplication(tok, first, concat)
	}
	operands := []*ast.Node{first}
	for p.match(token.Comma) {
		operands = append(operands, p.parseExpr())
	}
	p.expect(token.RBrace, "expected '}' to close concatenation")
	return ast.NewConcatenation(tok, operands)
}

func (p *Parser) parseConcatOperands(tok token.Token) *ast.Node {
	var operands []*ast.Node
	if !p.check(token.RBrace) {
		operands = append(operands, p.parseExpr())
		for p.match(token.Comma) {
			operands = append(operands, p.parseExpr())
		}
	}
	p.expect(token.RBrace, "expected '}' to close concatenation")
	return ast.NewConcatenation(tok, operands)
}
