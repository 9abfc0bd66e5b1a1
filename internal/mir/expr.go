package mir

import "minimir/internal/types"

// ValueKind enumerates value expression kinds.
type ValueKind uint8

const (
	ValueInvalid ValueKind = iota
	ValueConstant
	ValueTuple
	ValueUnion
	ValueVariant
	ValueGetDiscriminant
	ValueLoad
	ValueAddrOf
	ValueUnOp
	ValueBinOp
)

// ValueExpr is an expression producing a value.
type ValueExpr struct {
	Kind ValueKind

	Constant ConstantExpr
	Tuple    TupleExpr
	Union    UnionExpr
	Variant  VariantExpr
	Place    *PlaceExpr // GetDiscriminant, Load
	AddrOf   AddrOfExpr
	UnOp     UnOpExpr
	BinOp    BinOpExpr
}

// ConstKind enumerates constant kinds.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstBool
	ConstFnPointer
	// ConstPointerWithoutProvenance is an address with no provenance attached.
	ConstPointerWithoutProvenance
)

// ConstantExpr is a constant of the given type.
type ConstantExpr struct {
	Kind ConstKind
	Int  int64 // ConstInt, ConstPointerWithoutProvenance
	Bool bool
	Fn   FnName
	Type types.Type
}

// TupleExpr builds a tuple or an array; Type says which.
type TupleExpr struct {
	Elems []ValueExpr
	Type  types.Type
}

// UnionExpr builds a union with one initialized field.
type UnionExpr struct {
	Field int
	Expr  *ValueExpr
	Type  types.Type
}

// VariantExpr builds an enum variant.
type VariantExpr struct {
	Discriminant int64
	Data         *ValueExpr
	Type         types.Type
}

// AddrOfExpr takes the address of a place as a pointer of type Ptr.
type AddrOfExpr struct {
	Target *PlaceExpr
	Ptr    types.PtrType
}

// UnOpKind enumerates unary operators.
type UnOpKind uint8

const (
	UnOpInt UnOpKind = iota
	UnOpBool
	UnOpCast
	UnOpGetThinPointer
	UnOpGetMetadata
	UnOpComputeSize
	UnOpComputeAlign
)

type IntUnOp uint8

const (
	IntNeg IntUnOp = iota
	IntBitNot
)

type BoolUnOp uint8

const (
	BoolNot BoolUnOp = iota
)

// CastKind enumerates casts.
type CastKind uint8

const (
	CastIntToInt CastKind = iota
	CastBoolToInt
	// CastTransmute reinterprets the bytes of a value at another type.
	CastTransmute
)

type CastOp struct {
	Kind CastKind
	Int  types.IntType // IntToInt, BoolToInt
	Type types.Type    // Transmute
}

// UnOp is a unary operator.
// Type is the type whose size or alignment ComputeSize/ComputeAlign compute.
type UnOp struct {
	Kind UnOpKind
	Int  IntUnOp
	Bool BoolUnOp
	Cast CastOp
	Type types.Type
}

type UnOpExpr struct {
	Op      UnOp
	Operand *ValueExpr
}

// BinOpKind enumerates binary operators.
type BinOpKind uint8

const (
	BinOpInt BinOpKind = iota
	BinOpRel
	BinOpBool
	BinOpPtrOffset
	BinOpConstructWidePointer
)

type IntBinOp uint8

const (
	IntAdd IntBinOp = iota
	IntSub
	IntMul
	IntDiv
	IntRem
	IntShl
	IntShr
	IntBitAnd
	IntBitOr
	IntBitXor
)

// IsShift reports whether the right operand is a shift amount.
func (op IntBinOp) IsShift() bool {
	return op == IntShl || op == IntShr
}

type RelOp uint8

const (
	RelLt RelOp = iota
	RelGt
	RelLe
	RelGe
	RelEq
	RelNe
)

type BoolBinOp uint8

const (
	BoolAnd BoolBinOp = iota
	BoolOr
	BoolXor
)

// BinOp is a binary operator.
// InBounds applies to PtrOffset, Ptr to ConstructWidePointer.
type BinOp struct {
	Kind     BinOpKind
	Int      IntBinOp
	Rel      RelOp
	Bool     BoolBinOp
	InBounds bool
	Ptr      types.PtrType
}

type BinOpExpr struct {
	Op    BinOp
	Left  *ValueExpr
	Right *ValueExpr
}

// PlaceKind enumerates place expression kinds.
type PlaceKind uint8

const (
	PlaceInvalid PlaceKind = iota
	PlaceLocal
	PlaceDeref
	PlaceField
	PlaceIndex
	PlaceDowncast
)

// PlaceExpr is an expression denoting a memory location.
type PlaceExpr struct {
	Kind PlaceKind

	Local    LocalName
	Deref    DerefPlace
	Field    FieldPlace
	Index    IndexPlace
	Downcast DowncastPlace
}

// DerefPlace is the place a pointer value points to, at Type.
type DerefPlace struct {
	Operand *ValueExpr
	Type    types.Type
}

type FieldPlace struct {
	Root  *PlaceExpr
	Field int
}

type IndexPlace struct {
	Root  *PlaceExpr
	Index *ValueExpr
}

// DowncastPlace views an enum place as one of its variants.
type DowncastPlace struct {
	Root         *PlaceExpr
	Discriminant int64
}

// ArgKind distinguishes how arguments are passed.
type ArgKind uint8

const (
	ArgByValue ArgKind = iota
	ArgInPlace
)

// ArgumentExpr is a call argument.
type ArgumentExpr struct {
	Kind  ArgKind
	Value ValueExpr
	Place PlaceExpr
}
