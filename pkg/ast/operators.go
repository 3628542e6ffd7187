package ast

import (
	"fmt"

	"github.com/xplshn/svimport/pkg/token"
)

type UnaryOperator int

const (
	UnaryPlus UnaryOperator = iota
	UnaryMinus
	BitwiseNot
	BitwiseAnd
	BitwiseOr
	BitwiseXor
	BitwiseNand
	BitwiseNor
	BitwiseXnor
	LogicalNot
	Preincrement
	Predecrement
	Postincrement
	Postdecrement
)

var unaryNames = [...]string{
	UnaryPlus:     "plus",
	UnaryMinus:    "minus",
	BitwiseNot:    "bitwise not",
	BitwiseAnd:    "reduction and",
	BitwiseOr:     "reduction or",
	BitwiseXor:    "reduction xor",
	BitwiseNand:   "reduction nand",
	BitwiseNor:    "reduction nor",
	BitwiseXnor:   "reduction xnor",
	LogicalNot:    "logical not",
	Preincrement:  "preincrement",
	Predecrement:  "predecrement",
	Postincrement: "postincrement",
	Postdecrement: "postdecrement",
}

func (op UnaryOperator) String() string {
	if op >= 0 && int(op) < len(unaryNames) {
		return unaryNames[op]
	}
	return fmt.Sprintf("UnaryOperator(%d)", int(op))
}

// IsIncDec reports whether op writes its operand back.
func (op UnaryOperator) IsIncDec() bool {
	return op >= Preincrement && op <= Postdecrement
}

type BinaryOperator int

const (
	Add BinaryOperator = iota
	Subtract
	Multiply
	Divide
	Mod
	BinaryAnd
	BinaryOr
	BinaryXor
	BinaryXnor
	Equality
	Inequality
	CaseEquality
	CaseInequality
	WildcardEquality
	WildcardInequality
	GreaterThanEqual
	GreaterThan
	LessThanEqual
	LessThan
	LogicalAnd
	LogicalOr
	LogicalImplication
	LogicalEquivalence
	LogicalShiftLeft
	LogicalShiftRight
	ArithmeticShiftLeft
	ArithmeticShiftRight
	Power
)

var binaryNames = [...]string{
	Add:                  "add",
	Subtract:             "subtract",
	Multiply:             "multiply",
	Divide:               "divide",
	Mod:                  "mod",
	BinaryAnd:            "binary and",
	BinaryOr:             "binary or",
	BinaryXor:            "binary xor",
	BinaryXnor:           "binary xnor",
	Equality:             "equality",
	Inequality:           "inequality",
	CaseEquality:         "case equality",
	CaseInequality:       "case inequality",
	WildcardEquality:     "wildcard equality",
	WildcardInequality:   "wildcard inequality",
	GreaterThanEqual:     "greater than or equal",
	GreaterThan:          "greater than",
	LessThanEqual:        "less than or equal",
	LessThan:             "less than",
	LogicalAnd:           "logical and",
	LogicalOr:            "logical or",
	LogicalImplication:   "logical implication",
	LogicalEquivalence:   "logical equivalence",
	LogicalShiftLeft:     "logical shift left",
	LogicalShiftRight:    "logical shift right",
	ArithmeticShiftLeft:  "arithmetic shift left",
	ArithmeticShiftRight: "arithmetic shift right",
	Power:                "power",
}

func (op BinaryOperator) String() string {
	if op >= 0 && int(op) < len(binaryNames) {
		return binaryNames[op]
	}
	return fmt.Sprintf("BinaryOperator(%d)", int(op))
}

func (op BinaryOperator) IsComparison() bool {
	return op >= Equality && op <= LessThan
}

func (op BinaryOperator) IsLogical() bool {
	return op >= LogicalAnd && op <= LogicalEquivalence
}

func (op BinaryOperator) IsShift() bool {
	return op >= LogicalShiftLeft && op <= ArithmeticShiftRight
}

// Prefix unary operators by token. Postfix ++/-- are mapped by the parser.
var UnaryOperators = map[token.Type]UnaryOperator{
	token.Plus:       UnaryPlus,
	token.Minus:      UnaryMinus,
	token.Complement: BitwiseNot,
	token.And:        BitwiseAnd,
	token.Or:         BitwiseOr,
	token.Xor:        BitwiseXor,
	token.Nand:       BitwiseNand,
	token.Nor:        BitwiseNor,
	token.Xnor:       BitwiseXnor,
	token.Not:        LogicalNot,
	token.Inc:        Preincrement,
	token.Dec:        Predecrement,
}

var BinaryOperators = map[token.Type]BinaryOperator{
	token.Plus:        Add,
	token.Minus:       Subtract,
	token.Star:        Multiply,
	token.Slash:       Divide,
	token.Rem:         Mod,
	token.And:         BinaryAnd,
	token.Or:          BinaryOr,
	token.Xor:         BinaryXor,
	token.Xnor:        BinaryXnor,
	token.EqEq:        Equality,
	token.Neq:         Inequality,
	token.CaseEq:      CaseEquality,
	token.CaseNeq:     CaseInequality,
	token.WildcardEq:  WildcardEquality,
	token.WildcardNeq: WildcardInequality,
	token.Gte:         GreaterThanEqual,
	token.Gt:          GreaterThan,
	token.Lte:         LessThanEqual,
	token.Lt:          LessThan,
	token.AndAnd:      LogicalAnd,
	token.OrOr:        LogicalOr,
	token.Implies:     LogicalImplication,
	token.Equiv:       LogicalEquivalence,
	token.Shl:         LogicalShiftLeft,
	token.Shr:         LogicalShiftRight,
	token.AShl:        ArithmeticShiftLeft,
	token.AShr:        ArithmeticShiftRight,
	token.Power:       Power,
}
