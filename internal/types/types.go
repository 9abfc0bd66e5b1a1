package types

import "fmt"

// Size is a number of bytes. Offsets use the same type.
type Size int64

// Align is an alignment in bytes; well-formed alignments are powers of two.
type Align int64

// TraitName identifies a trait for trait objects and vtable pointers.
type TraitName uint32

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindBool
	KindPtr
	KindTuple
	KindUnion
	KindEnum
	KindArray
	KindSlice
	KindTraitObject
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindPtr:
		return "ptr"
	case KindTuple:
		return "tuple"
	case KindUnion:
		return "union"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindTraitObject:
		return "trait object"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IntType describes a fixed-size integer.
type IntType struct {
	Signed bool
	Size   Size
}

// Bits returns the width of the integer in bits.
func (t IntType) Bits() int64 {
	return int64(t.Size) * 8
}

// CanRepresent reports whether v lies in the value range of t.
// Values are int64, so 8- and 16-byte types accept every non-negative
// (unsigned) or every (signed) int64.
func (t IntType) CanRepresent(v int64) bool {
	if !t.Signed && v < 0 {
		return false
	}
	if t.Size >= 8 {
		return true
	}
	bits := t.Bits()
	if t.Signed {
		limit := int64(1) << (bits - 1)
		return v >= -limit && v < limit
	}
	return v < int64(1)<<bits
}

func (t IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Bits())
	}
	return fmt.Sprintf("u%d", t.Bits())
}

// Field is a type placed at a fixed byte offset inside a tuple or union.
type Field struct {
	Offset Size
	Type   Type
}

// TupleHeadLayout describes the fixed-offset head of a tuple.
// PackedAlign is zero unless the tuple is packed.
type TupleHeadLayout struct {
	End         Size
	Align       Align
	PackedAlign Align
}

// TupleType is a tuple with sized head fields and an optional unsized tail.
type TupleType struct {
	Fields []Field
	Head   TupleHeadLayout
	Tail   *Type
}

// Chunk is a byte range of a union that carries data.
type Chunk struct {
	Offset Size
	Size   Size
}

// UnionType is a union with explicitly laid-out fields.
type UnionType struct {
	Fields []Field
	Size   Size
	Align  Align
	Chunks []Chunk
}

// EnumType is an enum; size and alignment are supplied by the builder.
type EnumType struct {
	Variants       map[int64]Variant
	Discriminator  Discriminator
	DiscriminantTy IntType
	Size           Size
	Align          Align
}

// ArrayType is a fixed-length array.
type ArrayType struct {
	Elem  *Type
	Count int64
}

// SliceType is a dynamically sized sequence of elements.
type SliceType struct {
	Elem *Type
}

// Type is a closed tagged union over every representable type.
// Exactly the payload matching Kind is meaningful.
type Type struct {
	Kind Kind

	Int   IntType
	Ptr   PtrType
	Tuple TupleType
	Union UnionType
	Enum  EnumType
	Array ArrayType
	Slice SliceType
	Trait TraitName
}

// IsInt reports whether t is an integer type.
func (t Type) IsInt() bool { return t.Kind == KindInt }

// IsPtr reports whether t is any pointer type.
func (t Type) IsPtr() bool { return t.Kind == KindPtr }

func (n TraitName) String() string {
	return fmt.Sprintf("Trait%d", uint32(n))
}
