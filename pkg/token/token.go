package token

import "fmt"

type Type int

const (
	EOF Type = iota
	Ident
	Number      // unsized decimal literal
	BasedNumber // sized or unsized based literal, e.g. 8'hFF or 'd3
	RealNumber
	String

	// Keywords
	Module
	Endmodule
	Logic
	Bit
	Reg
	Byte
	Shortint
	Int
	Longint
	Integer
	Time
	Real
	StringKeyword
	Signed
	Unsigned
	Struct
	Packed
	Assign
	Initial
	Final
	Always
	AlwaysComb
	Begin
	End

	// Punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semi
	Comma
	Colon
	Question
	Apostrophe // cast apostrophe, as in int'(x)

	// Operators
	Eq           // =
	Plus         // +
	Minus        // -
	Star         // *
	Slash        // /
	Rem          // %
	Power        // **
	And          // &
	Or           // |
	Xor          // ^
	Xnor         // ~^ or ^~
	Complement   // ~
	Nand         // ~&
	Nor          // ~|
	Not          // !
	AndAnd       // &&
	OrOr         // ||
	Implies      // ->
	Equiv        // <->
	EqEq         // ==
	Neq          // !=
	CaseEq       // ===
	CaseNeq      // !==
	WildcardEq   // ==?
	WildcardNeq  // !=?
	Lt           // <
	Lte          // <= (also the non-blocking assignment operator)
	Gt           // >
	Gte          // >=
	Shl          // <<
	Shr          // >>
	AShl         // <<<
	AShr         // >>>
	Inc          // ++
	Dec          // --
)

var KeywordMap = map[string]Type{
	"module":      Module,
	"endmodule":   Endmodule,
	"logic":       Logic,
	"bit":         Bit,
	"reg":         Reg,
	"byte":        Byte,
	"shortint":    Shortint,
	"int":         Int,
	"longint":     Longint,
	"integer":     Integer,
	"time":        Time,
	"real":        Real,
	"string":      StringKeyword,
	"signed":      Signed,
	"unsigned":    Unsigned,
	"struct":      Struct,
	"packed":      Packed,
	"assign":      Assign,
	"initial":     Initial,
	"final":       Final,
	"always":      Always,
	"always_comb": AlwaysComb,
	"begin":       Begin,
	"end":         End,
}

var punctStrings = map[Type]string{
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Semi: ";", Comma: ",", Colon: ":", Question: "?", Apostrophe: "'",
	Eq: "=", Plus: "+", Minus: "-", Star: "*", Slash: "/", Rem: "%", Power: "**",
	And: "&", Or: "|", Xor: "^", Xnor: "~^", Complement: "~", Nand: "~&", Nor: "~|", Not: "!",
	AndAnd: "&&", OrOr: "||", Implies: "->", Equiv: "<->",
	EqEq: "==", Neq: "!=", CaseEq: "===", CaseNeq: "!==", WildcardEq: "==?", WildcardNeq: "!=?",
	Lt: "<", Lte: "<=", Gt: ">", Gte: ">=", Shl: "<<", Shr: ">>", AShl: "<<<", AShr: ">>>",
	Inc: "++", Dec: "--",
}

// Reverse mapping from Type to the keyword string
var TypeStrings = make(map[Type]string)

func init() {
	for str, typ := range KeywordMap {
		TypeStrings[typ] = str
	}
	for typ, str := range punctStrings {
		TypeStrings[typ] = str
	}
}

func (t Type) String() string {
	if s, ok := TypeStrings[t]; ok {
		return s
	}
	switch t {
	case EOF:
		return "end of file"
	case Ident:
		return "identifier"
	case Number, BasedNumber:
		return "integer literal"
	case RealNumber:
		return "real literal"
	case String:
		return "string literal"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Pos locates a token in one of the input files. FileIndex indexes the
// source records handed to the diagnostics renderer.
type Pos struct {
	FileIndex int
	Line      int
	Column    int
	Len       int
}

func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

type Token struct {
	Type  Type
	Value string
	Pos
}
