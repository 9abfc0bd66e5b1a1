package mir

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"minimir/internal/layout"
	"minimir/internal/types"
)

// comptypes collects tuples, unions and enums met while printing. Each one is
// rendered once above the functions and referred to as Tn everywhere else.
type comptypes struct {
	list []types.Type
}

func (c *comptypes) index(t types.Type) int {
	for i, known := range c.list {
		if types.Equal(known, t) {
			return i
		}
	}
	c.list = append(c.list, t)
	return len(c.list) - 1
}

func formatType(t types.Type, ct *comptypes) string {
	switch t.Kind {
	case types.KindInt:
		return t.Int.String()
	case types.KindBool:
		return "bool"
	case types.KindPtr:
		return formatPtrType(t.Ptr)
	case types.KindTuple, types.KindUnion, types.KindEnum:
		return fmt.Sprintf("T%d", ct.index(t))
	case types.KindArray:
		return fmt.Sprintf("[%s; %d]", formatElem(t.Array.Elem, ct), t.Array.Count)
	case types.KindSlice:
		return fmt.Sprintf("[%s]", formatElem(t.Slice.Elem, ct))
	case types.KindTraitObject:
		return "dyn " + t.Trait.String()
	default:
		return "<invalid>"
	}
}

func formatElem(elem *types.Type, ct *comptypes) string {
	if elem == nil {
		return "<invalid>"
	}
	return formatType(*elem, ct)
}

func formatPtrType(p types.PtrType) string {
	switch p.Kind {
	case types.PtrRef:
		if p.Mutbl == types.Mutable {
			return "&mut " + formatPointee(p.Pointee)
		}
		return "&" + formatPointee(p.Pointee)
	case types.PtrBox:
		return "Box<" + formatPointee(p.Pointee) + ">"
	case types.PtrRaw:
		return "*raw(" + p.Meta.String() + ")"
	case types.PtrFn:
		return "fn()"
	case types.PtrVTable:
		return "{vtable}"
	default:
		return "<invalid pointer>"
	}
}

func formatStrategy(l types.LayoutStrategy) string {
	switch l.Kind {
	case types.StrategySized:
		return fmt.Sprintf("size=%d, align=%d", l.Size, l.Align)
	case types.StrategySlice:
		return fmt.Sprintf("size=%d*len, align=%d", l.Size, l.Align)
	case types.StrategyTraitObject:
		return "size,align={unknown}"
	case types.StrategyTuple:
		packed := ""
		if l.Head.PackedAlign != 0 {
			packed = fmt.Sprintf(", packed=%d", l.Head.PackedAlign)
		}
		tail := "size=0, align=1"
		if l.Tail != nil {
			tail = formatStrategy(*l.Tail)
		}
		return fmt.Sprintf("head=(end=%d, align=%d)%s, tail=(%s)", l.Head.End, l.Head.Align, packed, tail)
	default:
		return "<invalid layout>"
	}
}

func formatPointee(p types.PointeeInfo) string {
	var sb strings.Builder
	sb.WriteString("pointee_info(")
	sb.WriteString(p.Layout.MetaKind().String())
	sb.WriteString(", ")
	sb.WriteString(formatStrategy(p.Layout))
	if !p.Inhabited {
		sb.WriteString(", uninhabited")
	}
	if !p.Cells.IsFreezeOutside() {
		sb.WriteString(", !Freeze")
	}
	if !p.Unpin {
		sb.WriteString(", !Unpin")
	}
	sb.WriteString(")")
	return sb.String()
}

// formatComptypes renders every collected composite type. Rendering one may
// discover more, so the list is walked by index until it stops growing.
func formatComptypes(ct *comptypes, eng *layout.Engine) string {
	var sb strings.Builder
	for i := 0; i < len(ct.list); i++ {
		formatComptype(&sb, i, ct.list[i], ct, eng)
	}
	return sb.String()
}

func formatComptype(sb *strings.Builder, i int, t types.Type, ct *comptypes, eng *layout.Engine) {
	fmt.Fprintf(sb, "%s T%d (%s) {\n", t.Kind, i, formatStrategy(eng.Of(t)))
	switch t.Kind {
	case types.KindTuple:
		formatFields(sb, t.Tuple.Fields, ct)
		if t.Tuple.Tail != nil {
			fmt.Fprintf(sb, "  tail: %s,\n", formatType(*t.Tuple.Tail, ct))
		}
	case types.KindUnion:
		formatFields(sb, t.Union.Fields, ct)
		for _, c := range t.Union.Chunks {
			fmt.Fprintf(sb, "  chunk(at=%d, size=%d),\n", c.Offset, c.Size)
		}
	case types.KindEnum:
		fmt.Fprintf(sb, "  Discriminant: %s\n", t.Enum.DiscriminantTy)
		for _, d := range slices.Sorted(maps.Keys(t.Enum.Variants)) {
			fmt.Fprintf(sb, "  Variant %d: %s\n", d, formatType(t.Enum.Variants[d].Type, ct))
		}
	}
	sb.WriteString("}\n\n")
}

func formatFields(sb *strings.Builder, fields []types.Field, ct *comptypes) {
	for _, f := range fields {
		fmt.Fprintf(sb, "  at byte %d: %s,\n", f.Offset, formatType(f.Type, ct))
	}
}
