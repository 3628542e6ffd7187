package lexer

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/xplshn/svimport/pkg/token"
)

// IntegerLiteral is the decoded form of a Number or BasedNumber token.
type IntegerLiteral struct {
	Value  *big.Int
	Width  int // 0 when unsized
	Signed bool
	Based  bool
}

func isBaseChar(r rune) bool { return strings.ContainsRune("sSbBoOdDhH", r) }

func isBasedDigit(r rune) bool {
	return unicode.Is(unicode.ASCII_Hex_Digit, r) || strings.ContainsRune("_xXzZ?", r)
}

func (l *Lexer) numberLiteral(startPos, startCol, startLine int) token.Token {
	for unicode.IsDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	if (l.peek() == '.' && unicode.IsDigit(l.peekNext())) || l.peek() == 'e' || l.peek() == 'E' {
		return l.realLiteral(startPos, startCol, startLine)
	}

	// A size may be separated from its base by blanks: 8 'hFF.
	savePos, saveCol := l.pos, l.column
	for l.peek() == ' ' || l.peek() == '\t' {
		l.advance()
	}
	if l.peek() == '\'' && isBaseChar(l.peekNext()) {
		l.advance()
		return l.basedLiteral(startPos, startCol, startLine)
	}
	l.pos, l.column = savePos, saveCol

	return l.makeToken(token.Number, strings.ReplaceAll(string(l.source[startPos:l.pos]), "_", ""), startPos, startCol, startLine)
}

func (l *Lexer) realLiteral(startPos, startCol, startLine int) token.Token {
	if l.match('.') {
		for unicode.IsDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if !unicode.IsDigit(l.peek()) {
			l.errorf(startPos, startCol, startLine, "malformed real literal exponent")
		}
		for unicode.IsDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}
	return l.makeToken(token.RealNumber, strings.ReplaceAll(string(l.source[startPos:l.pos]), "_", ""), startPos, startCol, startLine)
}

// basedLiteral continues after the apostrophe of 8'hFF or 'd5.
func (l *Lexer) basedLiteral(startPos, startCol, startLine int) token.Token {
	if l.peek() == 's' || l.peek() == 'S' {
		l.advance()
	}
	l.advance() // base
	for l.peek() == ' ' || l.peek() == '\t' {
		l.advance()
	}
	for isBasedDigit(l.peek()) {
		l.advance()
	}
	text := string(l.source[startPos:l.pos])
	if _, err := ParseIntegerLiteral(text); err != nil {
		l.errorf(startPos, startCol, startLine, "%v", err)
	}
	return l.makeToken(token.BasedNumber, text, startPos, startCol, startLine)
}

// ParseIntegerLiteral decodes the text of an integer literal token.
// Unsized decimal literals are signed; based literals are signed only
// with the s marker.
func ParseIntegerLiteral(text string) (IntegerLiteral, error) {
	clean := strings.Map(func(r rune) rune {
		if r == '_' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, text)

	apos := strings.IndexByte(clean, '\'')
	if apos < 0 {
		v, ok := new(big.Int).SetString(clean, 10)
		if !ok {
			return IntegerLiteral{}, fmt.Errorf("malformed decimal literal '%s'", text)
		}
		return IntegerLiteral{Value: v, Signed: true}, nil
	}

	lit := IntegerLiteral{Based: true}
	if apos > 0 {
		w, err := strconv.Atoi(clean[:apos])
		if err != nil || w <= 0 {
			return IntegerLiteral{}, fmt.Errorf("invalid literal size '%s'", clean[:apos])
		}
		lit.Width = w
	}

	rest := clean[apos+1:]
	if rest != "" && (rest[0] == 's' || rest[0] == 'S') {
		lit.Signed = true
		rest = rest[1:]
	}
	if rest == "" {
		return IntegerLiteral{}, fmt.Errorf("missing base in literal '%s'", text)
	}

	var base int
	switch rest[0] {
	case 'b', 'B':
		base = 2
	case 'o', 'O':
		base = 8
	case 'd', 'D':
		base = 10
	case 'h', 'H':
		base = 16
	default:
		return IntegerLiteral{}, fmt.Errorf("invalid base '%c' in literal '%s'", rest[0], text)
	}

	digits := rest[1:]
	if digits == "" {
		return IntegerLiteral{}, fmt.Errorf("missing digits in literal '%s'", text)
	}
	if strings.ContainsAny(digits, "xXzZ?") {
		return IntegerLiteral{}, fmt.Errorf("x and z digits are not supported in literal '%s'", text)
	}
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return IntegerLiteral{}, fmt.Errorf("invalid digit for base %d in literal '%s'", base, text)
	}
	lit.Value = v
	return lit, nil
}
