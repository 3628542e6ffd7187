package lower

import (
	"github.com/xplshn/svimport/pkg/diag"
	"github.com/xplshn/svimport/pkg/ir"
	"github.com/xplshn/svimport/pkg/types"
)

// ToSimpleBitVector returns v as a simple bit vector, inserting one
// conversion when v's type is a packed aggregate.
func (ctx *Context) ToSimpleBitVector(v *ir.Value) (*ir.Value, error) {
	if types.IsSimpleBitVector(v.Type) {
		return v, nil
	}
	if sbv := types.SimpleBitVector(v.Type); sbv != nil {
		return ctx.builder.Conversion(sbv, v), nil
	}
	return nil, ctx.errorf(diag.InvalidCoercion, "expression of type %s cannot be cast to a simple bit vector", v.Type)
}

// ToBool returns v as a single bit, inserting a bool_cast unless it
// already is one. Any unpacked type can be cast.
func (ctx *Context) ToBool(v *ir.Value) (*ir.Value, error) {
	if types.IsSingleBit(v.Type) {
		return v, nil
	}
	if types.IsUnpacked(v.Type) {
		return ctx.builder.BoolCast(v), nil
	}
	return nil, ctx.errorf(diag.InvalidCoercion, "expression of type %s cannot be cast to a boolean", v.Type)
}
