package types

import "fmt"

// Mutability of a reference.
type Mutability uint8

const (
	Immutable Mutability = iota
	Mutable
)

// MetaKindTag distinguishes thin pointers from the two wide pointer flavours.
type MetaKindTag uint8

const (
	// MetaNone marks a thin pointer.
	MetaNone MetaKindTag = iota
	// MetaElementCount marks a pointer carrying a slice length.
	MetaElementCount
	// MetaVTablePointer marks a pointer carrying a vtable pointer.
	MetaVTablePointer
)

// MetaKind is the kind of metadata a pointer carries next to its address.
type MetaKind struct {
	Tag   MetaKindTag
	Trait TraitName // for MetaVTablePointer
}

// IsWide reports whether the pointer carries metadata.
func (m MetaKind) IsWide() bool { return m.Tag != MetaNone }

func (m MetaKind) String() string {
	switch m.Tag {
	case MetaNone:
		return "thin"
	case MetaElementCount:
		return "meta=len"
	case MetaVTablePointer:
		return fmt.Sprintf("meta=vtable<%s>", m.Trait)
	default:
		return fmt.Sprintf("MetaKind(%d)", m.Tag)
	}
}

// MetaNoneKind, MetaLenKind and MetaVTableKind build MetaKind values.
func MetaNoneKind() MetaKind { return MetaKind{Tag: MetaNone} }

func MetaLenKind() MetaKind { return MetaKind{Tag: MetaElementCount} }

func MetaVTableKind(trait TraitName) MetaKind {
	return MetaKind{Tag: MetaVTablePointer, Trait: trait}
}

// PtrKind enumerates pointer flavours.
type PtrKind uint8

const (
	// PtrRef is a borrowed, non-owning reference.
	PtrRef PtrKind = iota
	// PtrBox is an exclusive-owning pointer.
	PtrBox
	// PtrRaw is an unchecked raw pointer.
	PtrRaw
	// PtrFn is a function pointer.
	PtrFn
	// PtrVTable points to the vtable of a trait.
	PtrVTable
)

// PtrType describes a pointer. Pointee is meaningful for PtrRef and PtrBox,
// Meta for PtrRaw and Trait for PtrVTable.
type PtrType struct {
	Kind    PtrKind
	Mutbl   Mutability
	Pointee PointeeInfo
	Meta    MetaKind
	Trait   TraitName
}

// MetaKind returns the metadata this pointer carries.
func (p PtrType) MetaKind() MetaKind {
	switch p.Kind {
	case PtrRef, PtrBox:
		return p.Pointee.Layout.MetaKind()
	case PtrRaw:
		return p.Meta
	default:
		return MetaNoneKind()
	}
}

// IsSafe reports whether the pointer is subject to validity invariants on dereference.
func (p PtrType) IsSafe() bool {
	return p.Kind == PtrRef || p.Kind == PtrBox
}

// PointeeInfo carries what a safe pointer knows about its pointee.
type PointeeInfo struct {
	Layout    LayoutStrategy
	Inhabited bool
	Cells     CellStrategy
	// Unpin is the placement-stability marker: the pointee may be moved.
	Unpin bool
}
