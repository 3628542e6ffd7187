package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/xplshn/svimport/pkg/types"
)

// Printer renders modules in the textual Moore form, e.g.
//
//	%1 = moore.add %x, %0 : !moore.l8
type Printer struct {
	Locations bool // append loc(line:col) to every op
	indent    int
}

// Print writes mod to w with the default printer.
func Print(w io.Writer, mod *Module) error {
	p := &Printer{}
	return p.Print(w, mod)
}

func (p *Printer) Print(w io.Writer, mod *Module) error {
	var sb strings.Builder
	p.module(&sb, mod)
	_, err := io.WriteString(w, sb.String())
	return err
}

func (m *Module) String() string {
	var sb strings.Builder
	(&Printer{}).module(&sb, m)
	return sb.String()
}

// Fingerprint hashes the printed form of mod. Two modules with the same
// fingerprint print identically.
func Fingerprint(mod *Module) uint64 {
	return xxhash.Sum64String(mod.String())
}

func (p *Printer) module(sb *strings.Builder, mod *Module) {
	fmt.Fprintf(sb, "moore.module @%s {\n", mod.Name)
	p.indent++
	p.block(sb, mod.Body)
	p.indent--
	sb.WriteString("}\n")
}

func (p *Printer) block(sb *strings.Builder, b *Block) {
	for _, op := range b.Ops {
		p.op(sb, op)
	}
}

func (p *Printer) op(sb *strings.Builder, op *Op) {
	sb.WriteString(strings.Repeat("  ", p.indent))
	if op.Result != nil {
		fmt.Fprintf(sb, "%s = ", op.Result)
	}
	fmt.Fprintf(sb, "moore.%s", op.Code)

	switch op.Code {
	case OpConstant:
		fmt.Fprintf(sb, " %s", op.Const)
	case OpLogical:
		fmt.Fprintf(sb, " %s", op.Logical)
	case OpShl, OpShr:
		if op.Arithmetic {
			sb.WriteString(" arithmetic")
		}
	case OpProcedure:
		fmt.Fprintf(sb, " %s {", op.ProcKind)
		p.loc(sb, op)
		sb.WriteString("\n")
		p.indent++
		p.block(sb, op.Body)
		p.indent--
		fmt.Fprintf(sb, "%s}\n", strings.Repeat("  ", p.indent))
		return
	}

	for i, operand := range op.Operands {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(sb, " %s", operand)
	}
	sb.WriteString(typeSignature(op))
	p.loc(sb, op)
	sb.WriteString("\n")
}

func (p *Printer) loc(sb *strings.Builder, op *Op) {
	if p.Locations && op.Pos.IsValid() {
		fmt.Fprintf(sb, " loc(%d:%d)", op.Pos.Line, op.Pos.Column)
	}
}

// typeSignature prints operand types once when they agree, and the result
// type after -> whenever it is not implied by them.
func typeSignature(op *Op) string {
	if len(op.Operands) == 0 {
		if op.Result == nil {
			return ""
		}
		return " : " + op.Result.Type.String()
	}

	same := true
	for _, operand := range op.Operands[1:] {
		if !types.Equal(operand.Type, op.Operands[0].Type) {
			same = false
			break
		}
	}

	var sb strings.Builder
	sb.WriteString(" : ")
	if same {
		sb.WriteString(op.Operands[0].Type.String())
	} else {
		for i, operand := range op.Operands {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(operand.Type.String())
		}
	}
	if op.Result != nil && (!same || !types.Equal(op.Result.Type, op.Operands[0].Type)) {
		fmt.Fprintf(&sb, " -> %s", op.Result.Type)
	}
	return sb.String()
}
