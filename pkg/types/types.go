// Package types is the type system of the Moore IR: the integral bit
// vectors arithmetic works on, the packed aggregates that can be flattened
// into them, and the few non-integral types the front end accepts.
package types

import (
	"fmt"
	"strings"
)

// Domain is the value set of a bit: two-valued (0, 1) or four-valued (0, 1, X, Z).
type Domain int

const (
	TwoValued Domain = iota
	FourValued
)

func (d Domain) String() string {
	if d == FourValued {
		return "four-valued"
	}
	return "two-valued"
}

type Type interface {
	String() string
	isType()
}

// IntType is a simple bit vector: a flat run of Width bits.
type IntType struct {
	Width  int
	Domain Domain
	Signed bool
}

type PackedArrayType struct {
	Elem Type
	Size int
}

type StructField struct {
	Name string
	Type Type
}

type PackedStructType struct {
	Fields []StructField
	Signed bool
}

type UnpackedArrayType struct {
	Elem Type
	Size int
}

type RealType struct{}
type StringType struct{}
type VoidType struct{}

func (*IntType) isType()           {}
func (*PackedArrayType) isType()   {}
func (*PackedStructType) isType()  {}
func (*UnpackedArrayType) isType() {}
func (*RealType) isType()          {}
func (*StringType) isType()        {}
func (*VoidType) isType()          {}

func (t *IntType) String() string {
	var sb strings.Builder
	sb.WriteString("!moore.")
	if t.Signed {
		sb.WriteByte('s')
	}
	if t.Domain == FourValued {
		sb.WriteByte('l')
	} else {
		sb.WriteByte('i')
	}
	fmt.Fprintf(&sb, "%d", t.Width)
	return sb.String()
}

func (t *PackedArrayType) String() string {
	return fmt.Sprintf("!moore.array<%d x %s>", t.Size, t.Elem)
}

func (t *PackedStructType) String() string {
	var sb strings.Builder
	sb.WriteString("!moore.struct<{")
	for i, f := range t.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %s", f.Name, f.Type)
	}
	sb.WriteString("}>")
	return sb.String()
}

func (t *UnpackedArrayType) String() string {
	return fmt.Sprintf("!moore.uarray<%d x %s>", t.Size, t.Elem)
}

func (*RealType) String() string   { return "!moore.real" }
func (*StringType) String() string { return "!moore.string" }
func (*VoidType) String() string   { return "!moore.void" }

func Bit() *IntType             { return &IntType{Width: 1, Domain: TwoValued} }
func Logic(width int) *IntType  { return &IntType{Width: width, Domain: FourValued} }
func Bits(width int) *IntType   { return &IntType{Width: width, Domain: TwoValued} }
func Byte() *IntType            { return &IntType{Width: 8, Domain: TwoValued, Signed: true} }
func Shortint() *IntType        { return &IntType{Width: 16, Domain: TwoValued, Signed: true} }
func Int() *IntType             { return &IntType{Width: 32, Domain: TwoValued, Signed: true} }
func Longint() *IntType         { return &IntType{Width: 64, Domain: TwoValued, Signed: true} }
func Integer() *IntType         { return &IntType{Width: 32, Domain: FourValued, Signed: true} }
func Time() *IntType            { return &IntType{Width: 64, Domain: FourValued} }
func Real() *RealType           { return &RealType{} }
func String() *StringType       { return &StringType{} }
func Void() *VoidType           { return &VoidType{} }

// IsUnpacked reports whether values of t can be held in a variable. Every
// type except void qualifies.
func IsUnpacked(t Type) bool {
	if t == nil {
		return false
	}
	_, isVoid := t.(*VoidType)
	return !isVoid
}

func IsSimpleBitVector(t Type) bool {
	_, ok := t.(*IntType)
	return ok
}

// IsSingleBit reports whether t is a one-bit simple bit vector of either domain.
func IsSingleBit(t Type) bool {
	it, ok := t.(*IntType)
	return ok && it.Width == 1
}

// IsBitVectorRepresentable reports whether t can be flattened into a
// simple bit vector without losing information.
func IsBitVectorRepresentable(t Type) bool {
	switch t := t.(type) {
	case *IntType:
		return true
	case *PackedArrayType:
		return t.Size > 0 && IsBitVectorRepresentable(t.Elem)
	case *PackedStructType:
		if len(t.Fields) == 0 {
			return false
		}
		for _, f := range t.Fields {
			if !IsBitVectorRepresentable(f.Type) {
				return false
			}
		}
		return true
	}
	return false
}

// BitWidth returns the total number of bits of a bit-vector-representable type.
func BitWidth(t Type) (int, bool) {
	switch t := t.(type) {
	case *IntType:
		return t.Width, true
	case *PackedArrayType:
		w, ok := BitWidth(t.Elem)
		if !ok || t.Size <= 0 {
			return 0, false
		}
		return w * t.Size, true
	case *PackedStructType:
		if len(t.Fields) == 0 {
			return 0, false
		}
		total := 0
		for _, f := range t.Fields {
			w, ok := BitWidth(f.Type)
			if !ok {
				return 0, false
			}
			total += w
		}
		return total, true
	}
	return 0, false
}

// IsFourValued reports whether any bit of t can hold X or Z.
func IsFourValued(t Type) bool {
	switch t := t.(type) {
	case *IntType:
		return t.Domain == FourValued
	case *PackedArrayType:
		return IsFourValued(t.Elem)
	case *UnpackedArrayType:
		return IsFourValued(t.Elem)
	case *PackedStructType:
		for _, f := range t.Fields {
			if IsFourValued(f.Type) {
				return true
			}
		}
	}
	return false
}

// SimpleBitVector returns the simple bit vector equivalent of t, or nil if
// t is not bit-vector representable. Packed arrays flatten to an unsigned
// vector; packed structs keep their declared signedness.
func SimpleBitVector(t Type) *IntType {
	if it, ok := t.(*IntType); ok {
		return it
	}
	width, ok := BitWidth(t)
	if !ok {
		return nil
	}
	res := &IntType{Width: width, Domain: TwoValued}
	if IsFourValued(t) {
		res.Domain = FourValued
	}
	if st, ok := t.(*PackedStructType); ok {
		res.Signed = st.Signed
	}
	return res
}

func Equal(a, b Type) bool {
	switch a := a.(type) {
	case *IntType:
		b, ok := b.(*IntType)
		return ok && *a == *b
	case *PackedArrayType:
		b, ok := b.(*PackedArrayType)
		return ok && a.Size == b.Size && Equal(a.Elem, b.Elem)
	case *UnpackedArrayType:
		b, ok := b.(*UnpackedArrayType)
		return ok && a.Size == b.Size && Equal(a.Elem, b.Elem)
	case *PackedStructType:
		b, ok := b.(*PackedStructType)
		if !ok || a.Signed != b.Signed || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case *RealType:
		_, ok := b.(*RealType)
		return ok
	case *StringType:
		_, ok := b.(*StringType)
		return ok
	case *VoidType:
		_, ok := b.(*VoidType)
		return ok
	}
	return false
}
