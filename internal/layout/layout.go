package layout

import (
	"fortio.org/safecast"

	"minimir/internal/types"
)

// Engine computes layout strategies for a fixed Target.
// The zero Engine uses Default().
type Engine struct {
	Target Target
}

// New creates an Engine for target.
func New(target Target) *Engine {
	return &Engine{Target: target}
}

func (e *Engine) target() Target {
	if e == nil || e.Target.PtrSize == 0 {
		return Default()
	}
	return e.Target
}

// Of returns the layout strategy of t. It is total: malformed types (for
// instance arrays of unsized elements) get a best-effort layout and are
// expected to be rejected by the checker.
func (e *Engine) Of(t types.Type) types.LayoutStrategy {
	tgt := e.target()
	switch t.Kind {
	case types.KindInt:
		return types.SizedStrategy(t.Int.Size, types.Align(t.Int.Size))
	case types.KindBool:
		return types.SizedStrategy(1, 1)
	case types.KindPtr:
		if t.Ptr.MetaKind().IsWide() {
			return types.SizedStrategy(2*tgt.PtrSize, tgt.PtrAlign)
		}
		return types.SizedStrategy(tgt.PtrSize, tgt.PtrAlign)
	case types.KindTuple:
		tail := types.SizedStrategy(0, 1)
		if t.Tuple.Tail != nil {
			tail = e.Of(*t.Tuple.Tail)
		}
		return types.TupleStrategy(t.Tuple.Head, tail)
	case types.KindUnion:
		return types.SizedStrategy(t.Union.Size, t.Union.Align)
	case types.KindEnum:
		return types.SizedStrategy(t.Enum.Size, t.Enum.Align)
	case types.KindArray:
		elemSize, elemAlign := e.elemSizeAlign(t.Array.Elem)
		size, _ := e.ArraySize(elemSize, t.Array.Count)
		return types.SizedStrategy(size, elemAlign)
	case types.KindSlice:
		elemSize, elemAlign := e.elemSizeAlign(t.Slice.Elem)
		return types.SliceStrategy(elemSize, elemAlign)
	case types.KindTraitObject:
		return types.TraitObjectStrategy(t.Trait)
	default:
		return types.SizedStrategy(0, 1)
	}
}

// Usize is the pointer-sized unsigned integer type of the engine's target.
func (e *Engine) Usize() types.IntType {
	return e.target().Usize()
}

// IsSized reports whether t has a statically known size.
func (e *Engine) IsSized(t types.Type) bool {
	return e.Of(t).IsSized()
}

// SizeAlign returns the size and alignment of a sized type; ok is false otherwise.
func (e *Engine) SizeAlign(t types.Type) (size types.Size, align types.Align, ok bool) {
	return e.Of(t).SizeAlign()
}

// MetaKind is the metadata a pointer to a value of type t carries.
func (e *Engine) MetaKind(t types.Type) types.MetaKind {
	return e.Of(t).MetaKind()
}

// MetadataType is the type of the metadata half of a wide pointer.
func (e *Engine) MetadataType(m types.MetaKind) types.Type {
	switch m.Tag {
	case types.MetaElementCount:
		return types.Int(e.target().Usize())
	case types.MetaVTablePointer:
		return types.VTablePtrTy(m.Trait)
	default:
		return types.Unit()
	}
}

// WidePair returns the tuple representation of a wide pointer with metadata m:
// a thin raw pointer followed by the metadata. ok is false for thin pointers.
func (e *Engine) WidePair(m types.MetaKind) (types.Type, bool) {
	if !m.IsWide() {
		return types.Type{}, false
	}
	tgt := e.target()
	fields := []types.Field{
		{Offset: 0, Type: types.RawVoidPtrTy()},
		{Offset: tgt.PtrSize, Type: e.MetadataType(m)},
	}
	return types.TupleTy(fields, 2*tgt.PtrSize, tgt.PtrAlign), true
}

// DefaultPointee describes a pointee of type t that is inhabited, Freeze and Unpin.
func (e *Engine) DefaultPointee(t types.Type) types.PointeeInfo {
	l := e.Of(t)
	return types.PointeeInfo{
		Layout:    l,
		Inhabited: true,
		Cells:     types.FrozenCells(l),
		Unpin:     true,
	}
}

func (e *Engine) elemSizeAlign(elem *types.Type) (types.Size, types.Align) {
	if elem == nil {
		return 0, 1
	}
	size, align, ok := e.Of(*elem).SizeAlign()
	if !ok {
		return 0, 1
	}
	return size, align
}

// MaxObjectSize is the largest size an object may have on the engine's target.
func (e *Engine) MaxObjectSize() types.Size {
	return e.target().MaxObjectSize()
}

// ArraySize multiplies elemSize by count. ok is false when the result exceeds
// the maximal object size, in which case size saturates at that maximum.
func (e *Engine) ArraySize(elemSize types.Size, count int64) (size types.Size, ok bool) {
	limit := e.target().MaxObjectSize()
	n, err := safecast.Conv[uint64](count)
	if err != nil {
		return 0, false
	}
	per, err := safecast.Conv[uint64](elemSize)
	if err != nil {
		return 0, false
	}
	if n == 0 || per == 0 {
		return 0, true
	}
	if n > uint64(limit)/per {
		return limit, false
	}
	total, err := safecast.Conv[int64](n * per)
	if err != nil {
		return limit, false
	}
	return types.Size(total), true
}
