package types

import "fmt"

// StrategyKind enumerates the ways a type can be laid out.
type StrategyKind uint8

const (
	// StrategySized is a statically known size and alignment.
	StrategySized StrategyKind = iota
	// StrategySlice is elemSize × runtime length, with a fixed alignment.
	StrategySlice
	// StrategyTraitObject has size and alignment known only from a vtable.
	StrategyTraitObject
	// StrategyTuple is a sized head followed by a tail with its own strategy.
	StrategyTuple
)

func (k StrategyKind) String() string {
	switch k {
	case StrategySized:
		return "sized"
	case StrategySlice:
		return "slice"
	case StrategyTraitObject:
		return "trait object"
	case StrategyTuple:
		return "tuple"
	default:
		return fmt.Sprintf("StrategyKind(%d)", k)
	}
}

// LayoutStrategy describes how the size and alignment of a type are determined.
//
//	StrategySized:       Size, Align
//	StrategySlice:       Size is the element size, Align the element alignment
//	StrategyTraitObject: Trait
//	StrategyTuple:       Head, Tail
type LayoutStrategy struct {
	Kind  StrategyKind
	Size  Size
	Align Align
	Trait TraitName
	Head  TupleHeadLayout
	Tail  *LayoutStrategy
}

// SizedStrategy returns a fixed layout.
func SizedStrategy(size Size, align Align) LayoutStrategy {
	return LayoutStrategy{Kind: StrategySized, Size: size, Align: align}
}

// SliceStrategy returns the layout of a slice with the given element layout.
func SliceStrategy(elemSize Size, align Align) LayoutStrategy {
	return LayoutStrategy{Kind: StrategySlice, Size: elemSize, Align: align}
}

// TraitObjectStrategy returns the layout of a trait object.
func TraitObjectStrategy(trait TraitName) LayoutStrategy {
	return LayoutStrategy{Kind: StrategyTraitObject, Trait: trait}
}

// TupleStrategy returns a composite layout.
func TupleStrategy(head TupleHeadLayout, tail LayoutStrategy) LayoutStrategy {
	return LayoutStrategy{Kind: StrategyTuple, Head: head, Tail: &tail}
}

// IsSized reports whether the strategy describes a statically sized type.
func (l LayoutStrategy) IsSized() bool {
	switch l.Kind {
	case StrategySized:
		return true
	case StrategyTuple:
		return l.Tail == nil || l.Tail.IsSized()
	default:
		return false
	}
}

// MetaKind returns the metadata a pointer to a value with this layout carries.
func (l LayoutStrategy) MetaKind() MetaKind {
	switch l.Kind {
	case StrategySlice:
		return MetaLenKind()
	case StrategyTraitObject:
		return MetaVTableKind(l.Trait)
	case StrategyTuple:
		if l.Tail == nil {
			return MetaNoneKind()
		}
		return l.Tail.MetaKind()
	default:
		return MetaNoneKind()
	}
}

// SizeAlign resolves the static size and alignment of a sized strategy.
// ok is false for unsized strategies.
func (l LayoutStrategy) SizeAlign() (size Size, align Align, ok bool) {
	switch l.Kind {
	case StrategySized:
		return l.Size, l.Align, true
	case StrategyTuple:
		tailSize, tailAlign := Size(0), Align(1)
		if l.Tail != nil {
			tailSize, tailAlign, ok = l.Tail.SizeAlign()
			if !ok {
				return 0, 0, false
			}
		}
		align = max(l.Head.Align, tailAlign, 1)
		if l.Head.PackedAlign > 0 {
			align = min(align, l.Head.PackedAlign)
			tailAlign = min(tailAlign, l.Head.PackedAlign)
		}
		end := RoundUp(l.Head.End, tailAlign) + tailSize
		return RoundUp(end, align), align, true
	default:
		return 0, 0, false
	}
}

// RoundUp rounds n up to a multiple of align.
func RoundUp(n Size, align Align) Size {
	if align <= 1 {
		return n
	}
	r := n % Size(align)
	if r == 0 {
		return n
	}
	return n + (Size(align) - r)
}

// IsPowerOfTwo reports whether a is a valid alignment.
func (a Align) IsPowerOfTwo() bool {
	return a > 0 && a&(a-1) == 0
}

// CellKind enumerates the shapes of an interior-mutability description.
type CellKind uint8

const (
	CellsSized CellKind = iota
	CellsSlice
	CellsTraitObject
	CellsTuple
)

// CellStrategy records which byte ranges of a pointee permit mutation through a
// shared reference. Its shape mirrors the pointee's LayoutStrategy.
//
//	CellsSized:       Bytes are ranges within the value
//	CellsSlice:       Bytes are ranges within each element
//	CellsTraitObject: Freeze is true when the trait object has no interior mutability
//	CellsTuple:       Bytes are ranges within the head, Tail describes the tail
type CellStrategy struct {
	Kind   CellKind
	Bytes  []Chunk
	Freeze bool
	Tail   *CellStrategy
}

// FrozenCells returns the description of a pointee without interior mutability
// for the given layout.
func FrozenCells(layout LayoutStrategy) CellStrategy {
	switch layout.Kind {
	case StrategySlice:
		return CellStrategy{Kind: CellsSlice}
	case StrategyTraitObject:
		return CellStrategy{Kind: CellsTraitObject, Freeze: true}
	case StrategyTuple:
		tail := CellStrategy{Kind: CellsSized}
		if layout.Tail != nil {
			tail = FrozenCells(*layout.Tail)
		}
		return CellStrategy{Kind: CellsTuple, Tail: &tail}
	default:
		return CellStrategy{Kind: CellsSized}
	}
}

// IsFreezeOutside reports whether no byte of the pointee may be mutated through a
// shared reference, not counting what is hidden behind a trait object's vtable.
func (c CellStrategy) IsFreezeOutside() bool {
	switch c.Kind {
	case CellsTraitObject:
		return c.Freeze
	case CellsTuple:
		if len(c.Bytes) > 0 {
			return false
		}
		return c.Tail == nil || c.Tail.IsFreezeOutside()
	default:
		return len(c.Bytes) == 0
	}
}
