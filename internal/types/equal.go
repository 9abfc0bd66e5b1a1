package types

import "slices"

// Equal reports whether a and b are structurally identical.
func Equal(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt:
		return a.Int == b.Int
	case KindBool, KindInvalid:
		return true
	case KindPtr:
		return a.Ptr.Equal(b.Ptr)
	case KindTuple:
		ta, tb := a.Tuple, b.Tuple
		if ta.Head != tb.Head || !fieldsEqual(ta.Fields, tb.Fields) {
			return false
		}
		return optEqual(ta.Tail, tb.Tail)
	case KindUnion:
		ua, ub := a.Union, b.Union
		return ua.Size == ub.Size && ua.Align == ub.Align &&
			slices.Equal(ua.Chunks, ub.Chunks) && fieldsEqual(ua.Fields, ub.Fields)
	case KindEnum:
		ea, eb := a.Enum, b.Enum
		if ea.Size != eb.Size || ea.Align != eb.Align || ea.DiscriminantTy != eb.DiscriminantTy {
			return false
		}
		if !ea.Discriminator.Equal(eb.Discriminator) || len(ea.Variants) != len(eb.Variants) {
			return false
		}
		for d, va := range ea.Variants {
			vb, ok := eb.Variants[d]
			if !ok || !Equal(va.Type, vb.Type) || len(va.Tagger) != len(vb.Tagger) {
				return false
			}
			for off, tag := range va.Tagger {
				if other, ok := vb.Tagger[off]; !ok || other != tag {
					return false
				}
			}
		}
		return true
	case KindArray:
		return a.Array.Count == b.Array.Count && optEqual(a.Array.Elem, b.Array.Elem)
	case KindSlice:
		return optEqual(a.Slice.Elem, b.Slice.Elem)
	case KindTraitObject:
		return a.Trait == b.Trait
	default:
		return false
	}
}

func optEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return Equal(*a, *b)
}

func fieldsEqual(a, b []Field) bool {
	return slices.EqualFunc(a, b, func(x, y Field) bool {
		return x.Offset == y.Offset && Equal(x.Type, y.Type)
	})
}

// Equal reports whether two pointer types are identical.
func (p PtrType) Equal(o PtrType) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case PtrRef:
		return p.Mutbl == o.Mutbl && p.Pointee.Equal(o.Pointee)
	case PtrBox:
		return p.Pointee.Equal(o.Pointee)
	case PtrRaw:
		return p.Meta == o.Meta
	case PtrVTable:
		return p.Trait == o.Trait
	default:
		return true
	}
}

// Equal reports whether two pointee descriptions are identical.
func (p PointeeInfo) Equal(o PointeeInfo) bool {
	return p.Inhabited == o.Inhabited && p.Unpin == o.Unpin &&
		p.Layout.Equal(o.Layout) && p.Cells.Equal(o.Cells)
}

// Equal reports whether two layout strategies are identical.
func (l LayoutStrategy) Equal(o LayoutStrategy) bool {
	if l.Kind != o.Kind {
		return false
	}
	switch l.Kind {
	case StrategySized, StrategySlice:
		return l.Size == o.Size && l.Align == o.Align
	case StrategyTraitObject:
		return l.Trait == o.Trait
	case StrategyTuple:
		if l.Head != o.Head {
			return false
		}
		if l.Tail == nil || o.Tail == nil {
			return l.Tail == o.Tail
		}
		return l.Tail.Equal(*o.Tail)
	default:
		return false
	}
}

// Equal reports whether two cell descriptions are identical.
func (c CellStrategy) Equal(o CellStrategy) bool {
	if c.Kind != o.Kind || c.Freeze != o.Freeze || !slices.Equal(c.Bytes, o.Bytes) {
		return false
	}
	if c.Tail == nil || o.Tail == nil {
		return c.Tail == o.Tail
	}
	return c.Tail.Equal(*o.Tail)
}

// Equal reports whether two discriminators are identical.
func (d Discriminator) Equal(o Discriminator) bool {
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case DiscKnown:
		return d.Value == o.Value
	case DiscBranch:
		if d.Offset != o.Offset || d.ValueType != o.ValueType {
			return false
		}
		if (d.Fallback == nil) != (o.Fallback == nil) {
			return false
		}
		if d.Fallback != nil && !d.Fallback.Equal(*o.Fallback) {
			return false
		}
		return slices.EqualFunc(d.Children, o.Children, func(x, y DiscriminatorBranch) bool {
			return x.Start == y.Start && x.End == y.End && x.Disc.Equal(y.Disc)
		})
	default:
		return true
	}
}
