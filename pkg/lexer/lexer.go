package lexer

import (
	"strings"
	"unicode"

	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/token"
)

const directivePrefix = "svimport:"

type Lexer struct {
	source    []rune
	fileIndex int
	pos       int
	line      int
	column    int
	cfg       *config.Config
	reporter  diag.Reporter
}

func NewLexer(source []rune, fileIndex int, cfg *config.Config, reporter diag.Reporter) *Lexer {
	if reporter == nil {
		reporter = diag.Discard
	}
	return &Lexer{
		source: source, fileIndex: fileIndex, line: 1, column: 1, cfg: cfg, reporter: reporter,
	}
}

// Tokenize lexes the whole source, EOF token included.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func (l *Lexer) Next() token.Token {
	for {
		l.skipWhitespaceAndComments()
		startPos, startCol, startLine := l.pos, l.column, l.line

		if l.isAtEnd() {
			return l.makeToken(token.EOF, "", startPos, startCol, startLine)
		}

		if l.peek() == '/' && l.peekNext() == '/' {
			l.lineCommentOrDirective(startPos, startCol, startLine)
			continue
		}

		ch := l.peek()
		if unicode.IsLetter(ch) || ch == '_' {
			l.advance()
			return l.identifierOrKeyword(startPos, startCol, startLine)
		}
		if unicode.IsDigit(ch) {
			return l.numberLiteral(startPos, startCol, startLine)
		}

		l.advance()
		switch ch {
		case '(':
			return l.makeToken(token.LParen, "", startPos, startCol, startLine)
		case ')':
			return l.makeToken(token.RParen, "", startPos, startCol, startLine)
		case '{':
			return l.makeToken(token.LBrace, "", startPos, startCol, startLine)
		case '}':
			return l.makeToken(token.RBrace, "", startPos, startCol, startLine)
		case '[':
			return l.makeToken(token.LBracket, "", startPos, startCol, startLine)
		case ']':
			return l.makeToken(token.RBracket, "", startPos, startCol, startLine)
		case ';':
			return l.makeToken(token.Semi, "", startPos, startCol, startLine)
		case ',':
			return l.makeToken(token.Comma, "", startPos, startCol, startLine)
		case ':':
			return l.makeToken(token.Colon, "", startPos, startCol, startLine)
		case '?':
			return l.makeToken(token.Question, "", startPos, startCol, startLine)
		case '/':
			return l.makeToken(token.Slash, "", startPos, startCol, startLine)
		case '%':
			return l.makeToken(token.Rem, "", startPos, startCol, startLine)
		case '+':
			return l.matchThen('+', token.Inc, token.Plus, startPos, startCol, startLine)
		case '*':
			return l.matchThen('*', token.Power, token.Star, startPos, startCol, startLine)
		case '&':
			return l.matchThen('&', token.AndAnd, token.And, startPos, startCol, startLine)
		case '|':
			return l.matchThen('|', token.OrOr, token.Or, startPos, startCol, startLine)
		case '^':
			return l.matchThen('~', token.Xnor, token.Xor, startPos, startCol, startLine)
		case '-':
			return l.minus(startPos, startCol, startLine)
		case '~':
			return l.tilde(startPos, startCol, startLine)
		case '!':
			return l.bang(startPos, startCol, startLine)
		case '=':
			return l.equal(startPos, startCol, startLine)
		case '<':
			return l.less(startPos, startCol, startLine)
		case '>':
			return l.greater(startPos, startCol, startLine)
		case '\'':
			if isBaseChar(l.peek()) {
				return l.basedLiteral(startPos, startCol, startLine)
			}
			return l.makeToken(token.Apostrophe, "", startPos, startCol, startLine)
		case '"':
			return l.stringLiteral(startPos, startCol, startLine)
		case '\\':
			return l.escapedIdentifier(startPos, startCol, startLine)
		}

		l.errorf(startPos, startCol, startLine, "unexpected character: '%c'", ch)
	}
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekNext() rune {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.isAtEnd() {
		return 0
	}
	ch := l.source[l.pos]
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	return ch
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) isAtEnd() bool { return l.pos >= len(l.source) }

func (l *Lexer) makeToken(tokType token.Type, value string, startPos, startCol, startLine int) token.Token {
	return token.Token{
		Type: tokType, Value: value,
		Pos: token.Pos{FileIndex: l.fileIndex, Line: startLine, Column: startCol, Len: l.pos - startPos},
	}
}

func (l *Lexer) errorf(startPos, startCol, startLine int, format string, args ...interface{}) {
	pos := token.Pos{FileIndex: l.fileIndex, Line: startLine, Column: startCol, Len: l.pos - startPos}
	l.reporter.Report(diag.Errorf(diag.ParseError, pos, format, args...))
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch l.peek() {
		case ' ', '\t', '\n', '\r', '\f':
			l.advance()
		case '/':
			if l.peekNext() == '*' {
				l.blockComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) blockComment() {
	startPos, startCol, startLine := l.pos, l.column, l.line
	l.advance()
	l.advance()
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
	l.errorf(startPos, startCol, startLine, "unterminated block comment")
}

// lineCommentOrDirective skips a line comment. A comment of the form
// `// svimport: <flags>` applies its flags to the configuration.
func (l *Lexer) lineCommentOrDirective(startPos, startCol, startLine int) {
	l.advance()
	l.advance()
	commentStart := l.pos
	for !l.isAtEnd() && l.peek() != '\n' {
		l.advance()
	}
	content := strings.TrimSpace(string(l.source[commentStart:l.pos]))
	if !strings.HasPrefix(content, directivePrefix) {
		return
	}
	flags := strings.TrimSpace(strings.TrimPrefix(content, directivePrefix))
	if err := l.cfg.ProcessDirectiveFlags(flags); err != nil {
		l.errorf(startPos, startCol, startLine, "invalid directive: %v", err)
	}
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '$'
}

func (l *Lexer) identifierOrKeyword(startPos, startCol, startLine int) token.Token {
	for isIdentRune(l.peek()) {
		l.advance()
	}
	value := string(l.source[startPos:l.pos])
	if tokType, isKeyword := token.KeywordMap[value]; isKeyword {
		return l.makeToken(tokType, "", startPos, startCol, startLine)
	}
	return l.makeToken(token.Ident, value, startPos, startCol, startLine)
}

// escapedIdentifier lexes `\name` up to the next whitespace. The backslash
// is not part of the name.
func (l *Lexer) escapedIdentifier(startPos, startCol, startLine int) token.Token {
	nameStart := l.pos
	for !l.isAtEnd() && !unicode.IsSpace(l.peek()) {
		l.advance()
	}
	if l.pos == nameStart {
		l.errorf(startPos, startCol, startLine, "empty escaped identifier")
	}
	return l.makeToken(token.Ident, string(l.source[nameStart:l.pos]), startPos, startCol, startLine)
}

func (l *Lexer) stringLiteral(startPos, startCol, startLine int) token.Token {
	var sb strings.Builder
	for !l.isAtEnd() && l.peek() != '"' && l.peek() != '\n' {
		ch := l.advance()
		if ch != '\\' {
			sb.WriteRune(ch)
			continue
		}
		switch esc := l.advance(); esc {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '\\', '"':
			sb.WriteRune(esc)
		default:
			l.errorf(startPos, startCol, startLine, "unrecognized escape sequence '\\%c'", esc)
		}
	}
	if !l.match('"') {
		l.errorf(startPos, startCol, startLine, "unterminated string literal")
	}
	return l.makeToken(token.String, sb.String(), startPos, startCol, startLine)
}

func (l *Lexer) matchThen(expected rune, thenType, elseType token.Type, sPos, sCol, sLine int) token.Token {
	if l.match(expected) {
		return l.makeToken(thenType, "", sPos, sCol, sLine)
	}
	return l.makeToken(elseType, "", sPos, sCol, sLine)
}

func (l *Lexer) minus(sPos, sCol, sLine int) token.Token {
	if l.match('-') {
		return l.makeToken(token.Dec, "", sPos, sCol, sLine)
	}
	return l.matchThen('>', token.Implies, token.Minus, sPos, sCol, sLine)
}

func (l *Lexer) tilde(sPos, sCol, sLine int) token.Token {
	switch {
	case l.match('&'):
		return l.makeToken(token.Nand, "", sPos, sCol, sLine)
	case l.match('|'):
		return l.makeToken(token.Nor, "", sPos, sCol, sLine)
	case l.match('^'):
		return l.makeToken(token.Xnor, "", sPos, sCol, sLine)
	}
	return l.makeToken(token.Complement, "", sPos, sCol, sLine)
}

func (l *Lexer) bang(sPos, sCol, sLine int) token.Token {
	if !l.match('=') {
		return l.makeToken(token.Not, "", sPos, sCol, sLine)
	}
	switch {
	case l.match('='):
		return l.makeToken(token.CaseNeq, "", sPos, sCol, sLine)
	case l.match('?'):
		return l.makeToken(token.WildcardNeq, "", sPos, sCol, sLine)
	}
	return l.makeToken(token.Neq, "", sPos, sCol, sLine)
}

func (l *Lexer) equal(sPos, sCol, sLine int) token.Token {
	if !l.match('=') {
		return l.makeToken(token.Eq, "", sPos, sCol, sLine)
	}
	switch {
	case l.match('='):
		return l.makeToken(token.CaseEq, "", sPos, sCol, sLine)
	case l.match('?'):
		return l.makeToken(token.WildcardEq, "", sPos, sCol, sLine)
	}
	return l.makeToken(token.EqEq, "", sPos, sCol, sLine)
}

func (l *Lexer) less(sPos, sCol, sLine int) token.Token {
	if l.peek() == '-' && l.peekNext() == '>' {
		l.advance()
		l.advance()
		return l.makeToken(token.Equiv, "", sPos, sCol, sLine)
	}
	if l.match('<') {
		return l.matchThen('<', token.AShl, token.Shl, sPos, sCol, sLine)
	}
	return l.matchThen('=', token.Lte, token.Lt, sPos, sCol, sLine)
}

func (l *Lexer) greater(sPos, sCol, sLine int) token.Token {
	if l.match('>') {
		return l.matchThen('>', token.AShr, token.Shr, sPos, sCol, sLine)
	}
	return l.matchThen('=', token.Gte, token.Gt, sPos, sCol, sLine)
}
