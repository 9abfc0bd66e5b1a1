package types

import "maps"

// Common integer types.
var (
	U8   = IntType{Size: 1}
	U16  = IntType{Size: 2}
	U32  = IntType{Size: 4}
	U64  = IntType{Size: 8}
	U128 = IntType{Size: 16}
	I8   = IntType{Signed: true, Size: 1}
	I16  = IntType{Signed: true, Size: 2}
	I32  = IntType{Signed: true, Size: 4}
	I64  = IntType{Signed: true, Size: 8}
	I128 = IntType{Signed: true, Size: 16}
)

// Int returns the integer type t.
func Int(t IntType) Type {
	return Type{Kind: KindInt, Int: t}
}

// Bool returns the boolean type.
func Bool() Type {
	return Type{Kind: KindBool}
}

// Unit returns the empty tuple.
func Unit() Type {
	return TupleTy(nil, 0, 1)
}

// Ptr wraps a pointer type.
func Ptr(p PtrType) Type {
	return Type{Kind: KindPtr, Ptr: p}
}

// RefTy returns a shared reference to a pointee described by info.
func RefTy(info PointeeInfo) Type {
	return Ptr(PtrType{Kind: PtrRef, Mutbl: Immutable, Pointee: info})
}

// RefMutTy returns a mutable reference to a pointee described by info.
func RefMutTy(info PointeeInfo) Type {
	return Ptr(PtrType{Kind: PtrRef, Mutbl: Mutable, Pointee: info})
}

// BoxTy returns an owning pointer to a pointee described by info.
func BoxTy(info PointeeInfo) Type {
	return Ptr(PtrType{Kind: PtrBox, Pointee: info})
}

// RawPtrTy returns a raw pointer carrying the given metadata.
func RawPtrTy(meta MetaKind) Type {
	return Ptr(PtrType{Kind: PtrRaw, Meta: meta})
}

// RawVoidPtrTy returns a thin raw pointer.
func RawVoidPtrTy() Type {
	return RawPtrTy(MetaNoneKind())
}

// FnPtrTy returns the function pointer type.
func FnPtrTy() Type {
	return Ptr(PtrType{Kind: PtrFn})
}

// VTablePtrTy returns a pointer to the vtable of trait.
func VTablePtrTy(trait TraitName) Type {
	return Ptr(PtrType{Kind: PtrVTable, Trait: trait})
}

// TupleTy returns a sized tuple with the given fields.
func TupleTy(fields []Field, size Size, align Align) Type {
	return Type{Kind: KindTuple, Tuple: TupleType{
		Fields: fields,
		Head:   TupleHeadLayout{End: size, Align: align},
	}}
}

// UnsizedTupleTy returns a tuple whose head ends at end and is followed by tail.
// packedAlign is zero for tuples that are not packed.
func UnsizedTupleTy(fields []Field, tail Type, end Size, align, packedAlign Align) Type {
	return Type{Kind: KindTuple, Tuple: TupleType{
		Fields: fields,
		Head:   TupleHeadLayout{End: end, Align: align, PackedAlign: packedAlign},
		Tail:   &tail,
	}}
}

// UnionTy returns a union whose single data chunk covers all of its bytes.
func UnionTy(fields []Field, size Size, align Align) Type {
	return Type{Kind: KindUnion, Union: UnionType{
		Fields: fields,
		Size:   size,
		Align:  align,
		Chunks: []Chunk{{Offset: 0, Size: size}},
	}}
}

// ArrayTy returns [elem; count].
func ArrayTy(elem Type, count int64) Type {
	return Type{Kind: KindArray, Array: ArrayType{Elem: &elem, Count: count}}
}

// SliceTy returns [elem].
func SliceTy(elem Type) Type {
	return Type{Kind: KindSlice, Slice: SliceType{Elem: &elem}}
}

// TraitObjectTy returns dyn trait.
func TraitObjectTy(trait TraitName) Type {
	return Type{Kind: KindTraitObject, Trait: trait}
}

// EnumVariant pairs a payload type with its tagger.
func EnumVariant(ty Type, tagger map[Size]Tag) Variant {
	return Variant{Type: ty, Tagger: tagger}
}

// EnumTy returns an enum with explicit size and alignment.
func EnumTy(variants map[int64]Variant, disc Discriminator, discTy IntType, size Size, align Align) Type {
	return Type{Kind: KindEnum, Enum: EnumType{
		Variants:       maps.Clone(variants),
		Discriminator:  disc,
		DiscriminantTy: discTy,
		Size:           size,
		Align:          align,
	}}
}

// DiscriminatorInvalid returns the discriminator of an uninhabited enum.
func DiscriminatorInvalid() Discriminator {
	return Discriminator{Kind: DiscInvalid}
}

// DiscriminatorKnown returns a discriminator that always yields value.
func DiscriminatorKnown(value int64) Discriminator {
	return Discriminator{Kind: DiscKnown, Value: value}
}

// BranchDiscriminator returns a discriminator that reads a valueType integer at offset.
func BranchDiscriminator(offset Size, valueType IntType, fallback Discriminator, children []DiscriminatorBranch) Discriminator {
	return Discriminator{
		Kind:      DiscBranch,
		Offset:    offset,
		ValueType: valueType,
		Fallback:  &fallback,
		Children:  children,
	}
}
