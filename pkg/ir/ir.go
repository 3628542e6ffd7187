// Package ir is an in-memory Moore-dialect hardware IR: modules holding
// variables, procedures and SSA operations over four-state bit vectors.
package ir

import (
	"fmt"
	"math/big"

	"github.com/xplshn/svimport/pkg/token"
	"github.com/xplshn/svimport/pkg/types"
)

type Opcode int

const (
	OpVariable Opcode = iota
	OpConstant
	OpConversion
	OpBoolCast
	OpNeg
	OpNot
	OpReduceAnd
	OpReduceOr
	OpReduceXor
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpEq
	OpNe
	OpCaseEq
	OpCaseNe
	OpWildcardEq
	OpWildcardNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpLogical
	OpShl
	OpShr
	OpConcat
	OpBPAssign
	OpPAssign
	OpCAssign
	OpPCAssign
	OpProcedure
)

var mnemonics = [...]string{
	OpVariable:   "variable",
	OpConstant:   "constant",
	OpConversion: "conversion",
	OpBoolCast:   "bool_cast",
	OpNeg:        "neg",
	OpNot:        "not",
	OpReduceAnd:  "reduce_and",
	OpReduceOr:   "reduce_or",
	OpReduceXor:  "reduce_xor",
	OpAdd:        "add",
	OpSub:        "sub",
	OpMul:        "mul",
	OpDiv:        "div",
	OpMod:        "mod",
	OpAnd:        "and",
	OpOr:         "or",
	OpXor:        "xor",
	OpEq:         "eq",
	OpNe:         "ne",
	OpCaseEq:     "case_eq",
	OpCaseNe:     "case_ne",
	OpWildcardEq: "wildcard_eq",
	OpWildcardNe: "wildcard_ne",
	OpLt:         "lt",
	OpLe:         "le",
	OpGt:         "gt",
	OpGe:         "ge",
	OpLogical:    "logical",
	OpShl:        "shl",
	OpShr:        "shr",
	OpConcat:     "concat",
	OpBPAssign:   "bpassign",
	OpPAssign:    "passign",
	OpCAssign:    "cassign",
	OpPCAssign:   "pcassign",
	OpProcedure:  "procedure",
}

func (o Opcode) String() string {
	if o >= 0 && int(o) < len(mnemonics) {
		return mnemonics[o]
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}

func (o Opcode) IsAssign() bool { return o >= OpBPAssign && o <= OpPCAssign }

func (o Opcode) IsComparison() bool { return o >= OpEq && o <= OpGe }

// LogicalKind parameterizes moore.logical.
type LogicalKind int

const (
	LogicalAnd LogicalKind = iota
	LogicalOr
	LogicalImplication
	LogicalEquivalence
)

func (k LogicalKind) String() string {
	switch k {
	case LogicalAnd:
		return "and"
	case LogicalOr:
		return "or"
	case LogicalImplication:
		return "implication"
	case LogicalEquivalence:
		return "equivalence"
	}
	return fmt.Sprintf("LogicalKind(%d)", int(k))
}

// Value is an SSA value. Variables carry the name they are printed with;
// every other value is numbered in creation order within its module.
type Value struct {
	ID   int
	Name string
	Type types.Type
	Def  *Op
}

func (v *Value) String() string {
	if v.Name != "" {
		return "%" + v.Name
	}
	return fmt.Sprintf("%%%d", v.ID)
}

type Op struct {
	Code     Opcode
	Operands []*Value
	Result   *Value
	Pos      token.Pos

	Const      *big.Int    // OpConstant
	Logical    LogicalKind // OpLogical
	Arithmetic bool        // OpShl, OpShr
	ProcKind   string      // OpProcedure
	Body       *Block      // OpProcedure
}

type Block struct {
	Ops []*Op
}

type Module struct {
	Name string
	Body *Block

	nextID    int
	usedNames map[string]struct{}
}

func NewModule(name string) *Module {
	return &Module{Name: name, Body: &Block{}, usedNames: make(map[string]struct{})}
}

// Walk calls fn for every op in b, descending into procedure bodies.
func (b *Block) Walk(fn func(op *Op)) {
	for _, op := range b.Ops {
		fn(op)
		if op.Body != nil {
			op.Body.Walk(fn)
		}
	}
}

// Opcodes returns the opcode sequence of b in program order.
func (b *Block) Opcodes() []Opcode {
	var codes []Opcode
	b.Walk(func(op *Op) { codes = append(codes, op.Code) })
	return codes
}

func (m *Module) newValue(name string, typ types.Type) *Value {
	v := &Value{Type: typ}
	if name != "" {
		v.Name = m.uniqueName(name)
		return v
	}
	v.ID = m.nextID
	m.nextID++
	return v
}

func (m *Module) uniqueName(name string) string {
	candidate := name
	for i := 1; ; i++ {
		if _, taken := m.usedNames[candidate]; !taken {
			m.usedNames[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
}
