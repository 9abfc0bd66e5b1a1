package build

import (
	"fmt"

	"minimir/internal/mir"
	"minimir/internal/types"
)

// Places

func Local(l mir.LocalName) mir.PlaceExpr {
	return mir.PlaceExpr{Kind: mir.PlaceLocal, Local: l}
}

// Deref views the value ptr points to as a place of type ty.
func Deref(ptr mir.ValueExpr, ty types.Type) mir.PlaceExpr {
	return mir.PlaceExpr{Kind: mir.PlaceDeref, Deref: mir.DerefPlace{Operand: &ptr, Type: ty}}
}

func Field(root mir.PlaceExpr, field int) mir.PlaceExpr {
	return mir.PlaceExpr{Kind: mir.PlaceField, Field: mir.FieldPlace{Root: &root, Field: field}}
}

func Index(root mir.PlaceExpr, idx mir.ValueExpr) mir.PlaceExpr {
	return mir.PlaceExpr{Kind: mir.PlaceIndex, Index: mir.IndexPlace{Root: &root, Index: &idx}}
}

func Downcast(root mir.PlaceExpr, discriminant int64) mir.PlaceExpr {
	return mir.PlaceExpr{Kind: mir.PlaceDowncast, Downcast: mir.DowncastPlace{Root: &root, Discriminant: discriminant}}
}

// unitAddr is a non-null, suitably aligned address for zero-sized places.
const unitAddr = 1

// UnitPlace is a place of unit type that needs no storage.
func UnitPlace() mir.PlaceExpr {
	return Deref(ConstPtr(unitAddr, types.RawVoidPtrTy()), types.Unit())
}

// UnitPtr is a thin raw pointer to UnitPlace.
func UnitPtr() mir.ValueExpr {
	return AddrOf(UnitPlace(), types.RawVoidPtrTy())
}

// Constants

func ConstInt(v int64, ty types.IntType) mir.ValueExpr {
	return constant(mir.ConstantExpr{Kind: mir.ConstInt, Int: v, Type: types.Int(ty)})
}

func ConstBool(b bool) mir.ValueExpr {
	return constant(mir.ConstantExpr{Kind: mir.ConstBool, Bool: b, Type: types.Bool()})
}

// FnPtr is a function pointer constant for fn.
func FnPtr(fn mir.FnName) mir.ValueExpr {
	return constant(mir.ConstantExpr{Kind: mir.ConstFnPointer, Fn: fn, Type: types.FnPtrTy()})
}

// ConstPtr is a pointer without provenance at addr, of pointer type ty.
func ConstPtr(addr int64, ty types.Type) mir.ValueExpr {
	return constant(mir.ConstantExpr{Kind: mir.ConstPointerWithoutProvenance, Int: addr, Type: ty})
}

func constant(c mir.ConstantExpr) mir.ValueExpr {
	return mir.ValueExpr{Kind: mir.ValueConstant, Constant: c}
}

// Compound values

// Unit is the empty tuple value.
func Unit() mir.ValueExpr {
	return Tuple(nil, types.Unit())
}

func Tuple(elems []mir.ValueExpr, ty types.Type) mir.ValueExpr {
	return mir.ValueExpr{Kind: mir.ValueTuple, Tuple: mir.TupleExpr{Elems: elems, Type: ty}}
}

// Array builds an array of elemTy from elems.
func Array(elems []mir.ValueExpr, elemTy types.Type) mir.ValueExpr {
	return Tuple(elems, types.ArrayTy(elemTy, int64(len(elems))))
}

func Union(field int, v mir.ValueExpr, ty types.Type) mir.ValueExpr {
	return mir.ValueExpr{Kind: mir.ValueUnion, Union: mir.UnionExpr{Field: field, Expr: &v, Type: ty}}
}

func Variant(discriminant int64, data mir.ValueExpr, ty types.Type) mir.ValueExpr {
	return mir.ValueExpr{Kind: mir.ValueVariant, Variant: mir.VariantExpr{Discriminant: discriminant, Data: &data, Type: ty}}
}

func GetDiscriminant(p mir.PlaceExpr) mir.ValueExpr {
	return mir.ValueExpr{Kind: mir.ValueGetDiscriminant, Place: &p}
}

func Load(p mir.PlaceExpr) mir.ValueExpr {
	return mir.ValueExpr{Kind: mir.ValueLoad, Place: &p}
}

// AddrOf takes the address of p as a pointer of type ptrTy.
func AddrOf(p mir.PlaceExpr, ptrTy types.Type) mir.ValueExpr {
	if ptrTy.Kind != types.KindPtr {
		panic(fmt.Sprintf("addr_of: %s is not a pointer type", ptrTy.Kind))
	}
	return mir.ValueExpr{Kind: mir.ValueAddrOf, AddrOf: mir.AddrOfExpr{Target: &p, Ptr: ptrTy.Ptr}}
}

// Unary operators

func unOp(op mir.UnOp, v mir.ValueExpr) mir.ValueExpr {
	return mir.ValueExpr{Kind: mir.ValueUnOp, UnOp: mir.UnOpExpr{Op: op, Operand: &v}}
}

func Neg(v mir.ValueExpr) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpInt, Int: mir.IntNeg}, v)
}

func BitNot(v mir.ValueExpr) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpInt, Int: mir.IntBitNot}, v)
}

func Not(v mir.ValueExpr) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpBool, Bool: mir.BoolNot}, v)
}

// IntCast converts an integer to ty.
func IntCast(v mir.ValueExpr, ty types.IntType) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpCast, Cast: mir.CastOp{Kind: mir.CastIntToInt, Int: ty}}, v)
}

func BoolToInt(v mir.ValueExpr, ty types.IntType) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpCast, Cast: mir.CastOp{Kind: mir.CastBoolToInt, Int: ty}}, v)
}

// Transmute reinterprets v as a value of type ty.
func Transmute(v mir.ValueExpr, ty types.Type) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpCast, Cast: mir.CastOp{Kind: mir.CastTransmute, Type: ty}}, v)
}

func GetThinPointer(v mir.ValueExpr) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpGetThinPointer}, v)
}

func GetMetadata(v mir.ValueExpr) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpGetMetadata}, v)
}

// ComputeSize computes the size of a value of type ty with metadata meta.
func ComputeSize(ty types.Type, meta mir.ValueExpr) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpComputeSize, Type: ty}, meta)
}

func ComputeAlign(ty types.Type, meta mir.ValueExpr) mir.ValueExpr {
	return unOp(mir.UnOp{Kind: mir.UnOpComputeAlign, Type: ty}, meta)
}

// Binary operators

func binOp(op mir.BinOp, l, r mir.ValueExpr) mir.ValueExpr {
	return mir.ValueExpr{Kind: mir.ValueBinOp, BinOp: mir.BinOpExpr{Op: op, Left: &l, Right: &r}}
}

// IntBin applies an integer operator.
func IntBin(op mir.IntBinOp, l, r mir.ValueExpr) mir.ValueExpr {
	return binOp(mir.BinOp{Kind: mir.BinOpInt, Int: op}, l, r)
}

func Add(l, r mir.ValueExpr) mir.ValueExpr { return IntBin(mir.IntAdd, l, r) }
func Sub(l, r mir.ValueExpr) mir.ValueExpr { return IntBin(mir.IntSub, l, r) }
func Mul(l, r mir.ValueExpr) mir.ValueExpr { return IntBin(mir.IntMul, l, r) }

// Rel compares two integers or two booleans.
func Rel(op mir.RelOp, l, r mir.ValueExpr) mir.ValueExpr {
	return binOp(mir.BinOp{Kind: mir.BinOpRel, Rel: op}, l, r)
}

func Eq(l, r mir.ValueExpr) mir.ValueExpr { return Rel(mir.RelEq, l, r) }
func Ne(l, r mir.ValueExpr) mir.ValueExpr { return Rel(mir.RelNe, l, r) }
func Lt(l, r mir.ValueExpr) mir.ValueExpr { return Rel(mir.RelLt, l, r) }
func Le(l, r mir.ValueExpr) mir.ValueExpr { return Rel(mir.RelLe, l, r) }
func Gt(l, r mir.ValueExpr) mir.ValueExpr { return Rel(mir.RelGt, l, r) }
func Ge(l, r mir.ValueExpr) mir.ValueExpr { return Rel(mir.RelGe, l, r) }

func BoolBin(op mir.BoolBinOp, l, r mir.ValueExpr) mir.ValueExpr {
	return binOp(mir.BinOp{Kind: mir.BinOpBool, Bool: op}, l, r)
}

func And(l, r mir.ValueExpr) mir.ValueExpr { return BoolBin(mir.BoolAnd, l, r) }
func Or(l, r mir.ValueExpr) mir.ValueExpr  { return BoolBin(mir.BoolOr, l, r) }

// PtrOffset offsets a thin pointer by a byte count.
func PtrOffset(ptr, bytes mir.ValueExpr, inBounds bool) mir.ValueExpr {
	return binOp(mir.BinOp{Kind: mir.BinOpPtrOffset, InBounds: inBounds}, ptr, bytes)
}

// ConstructWidePointer pairs a thin pointer with metadata as a pointer of type ptrTy.
func ConstructWidePointer(ptr, meta mir.ValueExpr, ptrTy types.Type) mir.ValueExpr {
	if ptrTy.Kind != types.KindPtr {
		panic(fmt.Sprintf("construct_wide_pointer: %s is not a pointer type", ptrTy.Kind))
	}
	return binOp(mir.BinOp{Kind: mir.BinOpConstructWidePointer, Ptr: ptrTy.Ptr}, ptr, meta)
}

// Arguments

func ByValue(v mir.ValueExpr) mir.ArgumentExpr {
	return mir.ArgumentExpr{Kind: mir.ArgByValue, Value: v}
}

func InPlace(p mir.PlaceExpr) mir.ArgumentExpr {
	return mir.ArgumentExpr{Kind: mir.ArgInPlace, Place: p}
}
