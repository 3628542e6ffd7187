package lexer

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xplshn/svimport/pkg/config"
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/token"
)

func lex(src string, cfg *config.Config) ([]token.Token, *diag.Bag) {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	bag := diag.NewBag()
	content := []rune(src)
	index := bag.AddFile("test.sv", content)
	return NewLexer(content, index, cfg, bag).Tokenize(), bag
}

func tokenTypes(toks []token.Token) []token.Type {
	types := make([]token.Type, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestOperators(t *testing.T) {
	toks, bag := lex("<= < << <<< <-> -> -- - ** * === !== ==? !=? == != ~& ~| ~^ ^~ ~ ! && || >>> >> >= > ++", nil)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Type{
		token.Lte, token.Lt, token.Shl, token.AShl, token.Equiv, token.Implies, token.Dec, token.Minus,
		token.Power, token.Star, token.CaseEq, token.CaseNeq, token.WildcardEq, token.WildcardNeq,
		token.EqEq, token.Neq, token.Nand, token.Nor, token.Xnor, token.Xnor, token.Complement, token.Not,
		token.AndAnd, token.OrOr, token.AShr, token.Shr, token.Gte, token.Gt, token.Inc, token.EOF,
	}, tokenTypes(toks))
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks, _ := lex("module always_comb begin_x \\weird+name", nil)
	require.Len(t, toks, 5)
	assert.Equal(t, token.Module, toks[0].Type)
	assert.Equal(t, token.AlwaysComb, toks[1].Type)
	assert.Equal(t, token.Token{Type: token.Ident, Value: "begin_x", Pos: token.Pos{Line: 1, Column: 20, Len: 7}}, toks[2])
	assert.Equal(t, "weird+name", toks[3].Value)
	assert.Equal(t, token.Ident, toks[3].Type)
}

func TestPositions(t *testing.T) {
	toks, _ := lex("a\n  /* c\n */ b // tail\n c", nil)
	require.Len(t, toks, 4)
	assert.Equal(t, token.Pos{Line: 1, Column: 1, Len: 1}, toks[0].Pos)
	assert.Equal(t, token.Pos{Line: 3, Column: 5, Len: 1}, toks[1].Pos)
	assert.Equal(t, token.Pos{Line: 4, Column: 2, Len: 1}, toks[2].Pos)
}

func TestNumberTokens(t *testing.T) {
	toks, bag := lex("42 1_000 8'hFF 8 'b1010 'd5 4'sd3 1.5 2e3 8'(", nil)
	require.False(t, bag.HasErrors(), "%v", bag.Diagnostics())
	want := []struct {
		typ   token.Type
		value string
	}{
		{token.Number, "42"},
		{token.Number, "1000"},
		{token.BasedNumber, "8'hFF"},
		{token.BasedNumber, "8 'b1010"},
		{token.BasedNumber, "'d5"},
		{token.BasedNumber, "4'sd3"},
		{token.RealNumber, "1.5"},
		{token.RealNumber, "2e3"},
		{token.Number, "8"},
		{token.Apostrophe, ""},
		{token.LParen, ""},
	}
	require.Len(t, toks, len(want)+1)
	for i, w := range want {
		assert.Equal(t, w.typ, toks[i].Type, "token %d", i)
		assert.Equal(t, w.value, toks[i].Value, "token %d", i)
	}
}

func TestParseIntegerLiteral(t *testing.T) {
	tests := []struct {
		text string
		want IntegerLiteral
	}{
		{"42", IntegerLiteral{Value: big.NewInt(42), Signed: true}},
		{"8'hFF", IntegerLiteral{Value: big.NewInt(255), Width: 8, Based: true}},
		{"8 'b1010", IntegerLiteral{Value: big.NewInt(10), Width: 8, Based: true}},
		{"'o17", IntegerLiteral{Value: big.NewInt(15), Based: true}},
		{"4'sd3", IntegerLiteral{Value: big.NewInt(3), Width: 4, Signed: true, Based: true}},
		{"16'hdead_beef", IntegerLiteral{Value: big.NewInt(0xdeadbeef), Width: 16, Based: true}},
	}
	for _, tt := range tests {
		got, err := ParseIntegerLiteral(tt.text)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}

	wide, err := ParseIntegerLiteral("128'hffffffffffffffffffffffffffffffff")
	require.NoError(t, err)
	assert.Equal(t, 128, wide.Value.BitLen())

	for _, bad := range []string{"0'd1", "8'q1", "8'h", "8'bx1", "8'b2"} {
		_, err := ParseIntegerLiteral(bad)
		assert.Error(t, err, bad)
	}
}

func TestLexErrors(t *testing.T) {
	_, bag := lex("a @ \"open\n/* never closed", nil)
	diags := bag.Diagnostics()
	require.Len(t, diags, 3)
	assert.Equal(t, "unexpected character: '@'", diags[0].Message)
	assert.Equal(t, "unterminated string literal", diags[1].Message)
	assert.Equal(t, "unterminated block comment", diags[2].Message)
	assert.Equal(t, diag.ParseError, diags[0].Kind)
}

func TestDirectives(t *testing.T) {
	cfg := config.NewConfig()
	toks, bag := lex("// svimport: -Wimplicit-conversion -Fno-wide-literals\nmodule", cfg)
	require.False(t, bag.HasErrors())
	assert.Equal(t, []token.Type{token.Module, token.EOF}, tokenTypes(toks))
	assert.True(t, cfg.IsWarningEnabled(config.WarnImplicitConversion))
	assert.False(t, cfg.IsFeatureEnabled(config.FeatWideLiterals))

	_, bag = lex("// svimport: -Wbogus\n", nil)
	require.Equal(t, 1, bag.ErrorCount())
	assert.Contains(t, bag.Diagnostics()[0].Message, "unknown warning 'bogus'")

	// an ordinary comment mentioning the tool is not a directive
	_, bag = lex("// runs svimport: -Wbogus\n", nil)
	assert.False(t, bag.HasErrors())
}
