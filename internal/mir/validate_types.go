package mir

import (
	"slices"

	"minimir/internal/types"
)

func validIntSize(s types.Size) bool {
	switch s {
	case 1, 2, 4, 8, 16:
		return true
	default:
		return false
	}
}

// fitsIn reports whether [off, off+size) lies inside [0, end) without
// overflowing.
func fitsIn(off, size, end types.Size) bool {
	return off >= 0 && size >= 0 && size <= end && off <= end-size
}

// roundedFits reports whether n rounded up to align stays within limit.
func roundedFits(n types.Size, align types.Align, limit types.Size) bool {
	if n < 0 || n > limit {
		return false
	}
	a := types.Size(align)
	if a <= 1 {
		return true
	}
	r := n % a
	return r == 0 || n <= limit-(a-r)
}

// checkType checks t and every type nested in it.
func (c *checker) checkType(t types.Type) error {
	switch t.Kind {
	case types.KindInt:
		if !validIntSize(t.Int.Size) {
			return c.fail("Type::Int: invalid integer size")
		}
	case types.KindBool, types.KindTraitObject:
	case types.KindPtr:
		return c.checkPtrType(t.Ptr)
	case types.KindTuple:
		return c.checkTuple(&t.Tuple)
	case types.KindUnion:
		return c.checkUnion(&t.Union)
	case types.KindEnum:
		return c.checkEnum(&t.Enum)
	case types.KindArray:
		if t.Array.Elem == nil {
			return c.fail("Type: missing element type")
		}
		if t.Array.Count < 0 {
			return c.fail("Type::Array: negative number of elements")
		}
		if err := c.checkType(*t.Array.Elem); err != nil {
			return err
		}
		size, _, ok := c.layout.SizeAlign(*t.Array.Elem)
		if !ok {
			return c.fail("Type::Array: unsized element type")
		}
		if _, fits := c.layout.ArraySize(size, t.Array.Count); !fits {
			return c.fail("Type::Array: size exceeds the maximal object size")
		}
	case types.KindSlice:
		if t.Slice.Elem == nil {
			return c.fail("Type: missing element type")
		}
		if err := c.checkType(*t.Slice.Elem); err != nil {
			return err
		}
		if !c.layout.IsSized(*t.Slice.Elem) {
			return c.fail("Type::Slice: unsized element type")
		}
	default:
		return c.fail("Type: unknown type kind")
	}
	return nil
}

func (c *checker) checkPtrType(p types.PtrType) error {
	if p.IsSafe() {
		return c.checkStrategy(p.Pointee.Layout)
	}
	return nil
}

func (c *checker) checkStrategy(l types.LayoutStrategy) error {
	switch l.Kind {
	case types.StrategySized, types.StrategySlice:
		if !l.Align.IsPowerOfTwo() || l.Size < 0 {
			return c.fail("PointeeInfo: invalid alignment")
		}
	case types.StrategyTuple:
		if !l.Head.Align.IsPowerOfTwo() || (l.Head.PackedAlign != 0 && !l.Head.PackedAlign.IsPowerOfTwo()) {
			return c.fail("PointeeInfo: invalid alignment")
		}
		if l.Tail != nil {
			return c.checkStrategy(*l.Tail)
		}
	}
	return nil
}

func (c *checker) checkTuple(t *types.TupleType) error {
	head := t.Head
	if !head.Align.IsPowerOfTwo() || (head.PackedAlign != 0 && !head.PackedAlign.IsPowerOfTwo()) {
		return c.fail("Type::Tuple: invalid head alignment")
	}
	if head.End < 0 {
		return c.fail("Type::Tuple: negative head size")
	}
	align := head.Align
	if head.PackedAlign != 0 {
		align = min(align, head.PackedAlign)
	}
	if !roundedFits(head.End, align, c.layout.MaxObjectSize()) {
		return c.fail("Type::Tuple: size exceeds the maximal object size")
	}
	for _, f := range t.Fields {
		if err := c.checkType(f.Type); err != nil {
			return err
		}
		size, _, ok := c.layout.SizeAlign(f.Type)
		if !ok {
			return c.fail("Type::Tuple: unsized field in head")
		}
		if !fitsIn(f.Offset, size, head.End) {
			return c.fail("Type::Tuple: field does not fit in head")
		}
	}
	if t.Tail != nil {
		if err := c.checkType(*t.Tail); err != nil {
			return err
		}
		if c.layout.IsSized(*t.Tail) {
			return c.fail("Type::Tuple: sized tail field")
		}
	}
	return nil
}

func (c *checker) checkUnion(u *types.UnionType) error {
	if !u.Align.IsPowerOfTwo() {
		return c.fail("Type::Union: invalid alignment")
	}
	if u.Size < 0 || u.Size%types.Size(u.Align) != 0 {
		return c.fail("Type::Union: size not a multiple of alignment")
	}
	if u.Size > c.layout.MaxObjectSize() {
		return c.fail("Type::Union: size exceeds the maximal object size")
	}
	for _, f := range u.Fields {
		if err := c.checkType(f.Type); err != nil {
			return err
		}
		size, _, ok := c.layout.SizeAlign(f.Type)
		if !ok {
			return c.fail("Type::Union: unsized field")
		}
		if !fitsIn(f.Offset, size, u.Size) {
			return c.fail("Type::Union: field does not fit")
		}
	}
	// Chunks are sorted, non-empty, disjoint and inside the union.
	end := types.Size(0)
	for _, ch := range u.Chunks {
		if ch.Size <= 0 || ch.Offset < end || !fitsIn(ch.Offset, ch.Size, u.Size) {
			return c.fail("Type::Union: invalid chunk")
		}
		end = ch.Offset + ch.Size
	}
	return nil
}

func (c *checker) checkEnum(e *types.EnumType) error {
	if !e.Align.IsPowerOfTwo() {
		return c.fail("Type::Enum: invalid alignment")
	}
	if e.Size < 0 || e.Size%types.Size(e.Align) != 0 {
		return c.fail("Type::Enum: size not a multiple of alignment")
	}
	if e.Size > c.layout.MaxObjectSize() {
		return c.fail("Type::Enum: size exceeds the maximal object size")
	}
	if !validIntSize(e.DiscriminantTy.Size) {
		return c.fail("Type::Enum: invalid discriminant type")
	}
	discs := make([]int64, 0, len(e.Variants))
	for d := range e.Variants {
		discs = append(discs, d)
	}
	slices.Sort(discs)
	for _, d := range discs {
		if !e.DiscriminantTy.CanRepresent(d) {
			return c.fail("Type::Enum: invalid discriminant type")
		}
		v := e.Variants[d]
		if err := c.checkType(v.Type); err != nil {
			return err
		}
		size, _, ok := c.layout.SizeAlign(v.Type)
		if !ok {
			return c.fail("Type::Enum: unsized variant")
		}
		if size != e.Size {
			return c.fail("Type::Enum: variant size does not match enum size")
		}
		if err := c.checkTagger(v.Tagger, e.Size); err != nil {
			return err
		}
	}
	return c.checkDiscriminator(&e.Discriminator, e)
}

func (c *checker) checkTagger(tagger map[types.Size]types.Tag, size types.Size) error {
	offsets := make([]types.Size, 0, len(tagger))
	for off := range tagger {
		offsets = append(offsets, off)
	}
	slices.Sort(offsets)
	for _, off := range offsets {
		tag := tagger[off]
		if !validIntSize(tag.Type.Size) || !tag.Type.CanRepresent(tag.Value) {
			return c.fail("Type::Enum: tag does not fit")
		}
		if !fitsIn(off, tag.Type.Size, size) {
			return c.fail("Type::Enum: tag does not fit")
		}
	}
	return nil
}

func (c *checker) checkDiscriminator(d *types.Discriminator, e *types.EnumType) error {
	switch d.Kind {
	case types.DiscInvalid:
		return nil
	case types.DiscKnown:
		if _, ok := e.Variants[d.Value]; !ok {
			return c.fail("Discriminator::Known: invalid discriminant")
		}
		return nil
	case types.DiscBranch:
		vt := d.ValueType
		if !validIntSize(vt.Size) || !fitsIn(d.Offset, vt.Size, e.Size) {
			return c.fail("Discriminator::Branch: value does not fit")
		}
		for i := range d.Children {
			ch := &d.Children[i]
			if ch.Start >= ch.End {
				return c.fail("Discriminator::Branch: invalid value range")
			}
			if !vt.CanRepresent(ch.Start) || !vt.CanRepresent(ch.End-1) {
				return c.fail("Discriminator::Branch: value range does not fit")
			}
			if err := c.checkDiscriminator(&ch.Disc, e); err != nil {
				return err
			}
		}
		if d.Fallback != nil {
			return c.checkDiscriminator(d.Fallback, e)
		}
		return nil
	default:
		return c.fail("Discriminator: unknown discriminator kind")
	}
}
