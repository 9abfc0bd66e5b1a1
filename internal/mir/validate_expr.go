package mir

import "minimir/internal/types"

// value checks v and returns its type.
func (c *checker) value(v *ValueExpr) (types.Type, error) {
	if v == nil {
		return types.Type{}, c.fail("ValueExpr: missing operand")
	}
	switch v.Kind {
	case ValueConstant:
		return c.constant(&v.Constant)
	case ValueTuple:
		return c.tupleValue(&v.Tuple)
	case ValueUnion:
		return c.unionValue(&v.Union)
	case ValueVariant:
		return c.variantValue(&v.Variant)
	case ValueGetDiscriminant:
		ty, err := c.placePtr(v.Place)
		if err != nil {
			return types.Type{}, err
		}
		if ty.Kind != types.KindEnum {
			return types.Type{}, c.fail("ValueExpr::GetDiscriminant: not an enum")
		}
		return types.Int(ty.Enum.DiscriminantTy), nil
	case ValueLoad:
		ty, err := c.placePtr(v.Place)
		if err != nil {
			return types.Type{}, err
		}
		if !c.layout.IsSized(ty) {
			return types.Type{}, c.fail("ValueExpr::Load: unsized value type")
		}
		return ty, nil
	case ValueAddrOf:
		ty, err := c.placePtr(v.AddrOf.Target)
		if err != nil {
			return types.Type{}, err
		}
		ptr := types.Ptr(v.AddrOf.Ptr)
		if err := c.checkType(ptr); err != nil {
			return types.Type{}, err
		}
		if v.AddrOf.Ptr.MetaKind() != c.layout.MetaKind(ty) {
			return types.Type{}, c.fail("ValueExpr::AddrOf: metadata kind mismatch")
		}
		return ptr, nil
	case ValueUnOp:
		return c.unOp(&v.UnOp)
	case ValueBinOp:
		return c.binOp(&v.BinOp)
	default:
		return types.Type{}, c.fail("ValueExpr: missing operand")
	}
}

func (c *checker) constant(k *ConstantExpr) (types.Type, error) {
	if err := c.checkType(k.Type); err != nil {
		return types.Type{}, err
	}
	ty := k.Type
	switch k.Kind {
	case ConstInt:
		if ty.Kind != types.KindInt {
			return types.Type{}, c.fail("Constant::Int: non-integer type")
		}
		if !ty.Int.CanRepresent(k.Int) {
			return types.Type{}, c.fail("Constant::Int: value does not fit in type")
		}
	case ConstBool:
		if ty.Kind != types.KindBool {
			return types.Type{}, c.fail("Constant::Bool: non-boolean type")
		}
	case ConstFnPointer:
		if ty.Kind != types.KindPtr || ty.Ptr.Kind != types.PtrFn {
			return types.Type{}, c.fail("Constant::FnPointer: non-function-pointer type")
		}
		if _, ok := c.prog.Functions[k.Fn]; !ok {
			return types.Type{}, c.fail("Constant::FnPointer: invalid function name")
		}
	case ConstPointerWithoutProvenance:
		if ty.Kind != types.KindPtr || ty.Ptr.MetaKind().IsWide() {
			return types.Type{}, c.fail("Constant::PointerWithoutProvenance: pointer type is not thin")
		}
	default:
		return types.Type{}, c.fail("ValueExpr: missing operand")
	}
	return ty, nil
}

func (c *checker) tupleValue(t *TupleExpr) (types.Type, error) {
	elems := make([]types.Type, len(t.Elems))
	for i := range t.Elems {
		ty, err := c.value(&t.Elems[i])
		if err != nil {
			return types.Type{}, err
		}
		elems[i] = ty
	}
	if err := c.checkType(t.Type); err != nil {
		return types.Type{}, err
	}
	switch t.Type.Kind {
	case types.KindTuple:
		tup := &t.Type.Tuple
		if tup.Tail != nil {
			return types.Type{}, c.fail("ValueExpr::Tuple: unsized tuple type")
		}
		if len(elems) != len(tup.Fields) {
			return types.Type{}, c.fail("ValueExpr::Tuple: invalid number of fields")
		}
		for i, f := range tup.Fields {
			if !types.Equal(elems[i], f.Type) {
				return types.Type{}, c.fail("ValueExpr::Tuple: invalid field type")
			}
		}
	case types.KindArray:
		arr := &t.Type.Array
		if int64(len(elems)) != arr.Count {
			return types.Type{}, c.fail("ValueExpr::Tuple: invalid number of fields")
		}
		for _, ty := range elems {
			if !types.Equal(ty, *arr.Elem) {
				return types.Type{}, c.fail("ValueExpr::Tuple: invalid field type")
			}
		}
	default:
		return types.Type{}, c.fail("ValueExpr::Tuple: not a tuple or array type")
	}
	return t.Type, nil
}

func (c *checker) unionValue(u *UnionExpr) (types.Type, error) {
	data, err := c.value(u.Expr)
	if err != nil {
		return types.Type{}, err
	}
	if err := c.checkType(u.Type); err != nil {
		return types.Type{}, err
	}
	if u.Type.Kind != types.KindUnion {
		return types.Type{}, c.fail("ValueExpr::Union: not a union type")
	}
	fields := u.Type.Union.Fields
	if u.Field < 0 || u.Field >= len(fields) {
		return types.Type{}, c.fail("ValueExpr::Union: invalid field")
	}
	if !types.Equal(data, fields[u.Field].Type) {
		return types.Type{}, c.fail("ValueExpr::Union: invalid field type")
	}
	return u.Type, nil
}

func (c *checker) variantValue(v *VariantExpr) (types.Type, error) {
	data, err := c.value(v.Data)
	if err != nil {
		return types.Type{}, err
	}
	if err := c.checkType(v.Type); err != nil {
		return types.Type{}, err
	}
	if v.Type.Kind != types.KindEnum {
		return types.Type{}, c.fail("ValueExpr::Variant: not an enum type")
	}
	variant, ok := v.Type.Enum.Variants[v.Discriminant]
	if !ok {
		return types.Type{}, c.fail("ValueExpr::Variant: invalid discriminant")
	}
	if !types.Equal(data, variant.Type) {
		return types.Type{}, c.fail("ValueExpr::Variant: invalid data type")
	}
	return v.Type, nil
}

func (c *checker) unOp(u *UnOpExpr) (types.Type, error) {
	operand, err := c.value(u.Operand)
	if err != nil {
		return types.Type{}, err
	}
	switch u.Op.Kind {
	case UnOpInt:
		if operand.Kind != types.KindInt {
			return types.Type{}, c.fail("UnOp::Int: invalid operand")
		}
		return operand, nil
	case UnOpBool:
		if operand.Kind != types.KindBool {
			return types.Type{}, c.fail("UnOp::Bool: invalid operand")
		}
		return operand, nil
	case UnOpCast:
		return c.cast(&u.Op.Cast, operand)
	case UnOpGetThinPointer:
		if operand.Kind != types.KindPtr {
			return types.Type{}, c.fail("UnOp::GetThinPointer: invalid operand")
		}
		return types.RawVoidPtrTy(), nil
	case UnOpGetMetadata:
		if operand.Kind != types.KindPtr {
			return types.Type{}, c.fail("UnOp::GetMetadata: invalid operand")
		}
		return c.layout.MetadataType(operand.Ptr.MetaKind()), nil
	case UnOpComputeSize, UnOpComputeAlign:
		if err := c.checkType(u.Op.Type); err != nil {
			return types.Type{}, err
		}
		meta := c.layout.MetadataType(c.layout.MetaKind(u.Op.Type))
		if !types.Equal(operand, meta) {
			if u.Op.Kind == UnOpComputeSize {
				return types.Type{}, c.fail("UnOp::ComputeSize: invalid operand")
			}
			return types.Type{}, c.fail("UnOp::ComputeAlign: invalid operand")
		}
		return types.Int(c.layout.Usize()), nil
	default:
		return types.Type{}, c.fail("ValueExpr: missing operand")
	}
}

func (c *checker) cast(op *CastOp, operand types.Type) (types.Type, error) {
	switch op.Kind {
	case CastIntToInt:
		if operand.Kind != types.KindInt {
			return types.Type{}, c.fail("Cast::IntToInt: invalid operand")
		}
		ty := types.Int(op.Int)
		return ty, c.checkType(ty)
	case CastBoolToInt:
		if operand.Kind != types.KindBool {
			return types.Type{}, c.fail("Cast::BoolToInt: invalid operand")
		}
		ty := types.Int(op.Int)
		return ty, c.checkType(ty)
	case CastTransmute:
		if err := c.checkType(op.Type); err != nil {
			return types.Type{}, err
		}
		if !c.layout.IsSized(op.Type) {
			return types.Type{}, c.fail("Cast::Transmute: unsized target type")
		}
		return op.Type, nil
	default:
		return types.Type{}, c.fail("ValueExpr: missing operand")
	}
}

func (c *checker) binOp(b *BinOpExpr) (types.Type, error) {
	left, err := c.value(b.Left)
	if err != nil {
		return types.Type{}, err
	}
	right, err := c.value(b.Right)
	if err != nil {
		return types.Type{}, err
	}
	switch b.Op.Kind {
	case BinOpInt:
		if left.Kind != types.KindInt {
			return types.Type{}, c.fail("BinOp::Int: invalid left type")
		}
		if b.Op.Int.IsShift() {
			if right.Kind != types.KindInt {
				return types.Type{}, c.fail("BinOp::Int: invalid right type")
			}
		} else if !types.Equal(left, right) {
			return types.Type{}, c.fail("BinOp::Int: invalid right type")
		}
		return left, nil
	case BinOpRel:
		if left.Kind != types.KindInt && left.Kind != types.KindBool {
			return types.Type{}, c.fail("BinOp::Rel: invalid left type")
		}
		if !types.Equal(left, right) {
			return types.Type{}, c.fail("BinOp::Rel: invalid right type")
		}
		return types.Bool(), nil
	case BinOpBool:
		if left.Kind != types.KindBool || right.Kind != types.KindBool {
			return types.Type{}, c.fail("BinOp::Bool: invalid operands")
		}
		return types.Bool(), nil
	case BinOpPtrOffset:
		if left.Kind != types.KindPtr || left.Ptr.MetaKind().IsWide() {
			return types.Type{}, c.fail("BinOp::PtrOffset: invalid left type")
		}
		if right.Kind != types.KindInt {
			return types.Type{}, c.fail("BinOp::PtrOffset: invalid right type")
		}
		return left, nil
	case BinOpConstructWidePointer:
		ptr := types.Ptr(b.Op.Ptr)
		if err := c.checkType(ptr); err != nil {
			return types.Type{}, err
		}
		if left.Kind != types.KindPtr || left.Ptr.MetaKind().IsWide() {
			return types.Type{}, c.fail("BinOp::ConstructWidePointer: invalid left type")
		}
		meta := b.Op.Ptr.MetaKind()
		if !meta.IsWide() {
			return types.Type{}, c.fail("BinOp::ConstructWidePointer: pointer type is not wide")
		}
		if !types.Equal(right, c.layout.MetadataType(meta)) {
			return types.Type{}, c.fail("BinOp::ConstructWidePointer: invalid right type")
		}
		return ptr, nil
	default:
		return types.Type{}, c.fail("ValueExpr: missing operand")
	}
}

func (c *checker) placePtr(p *PlaceExpr) (types.Type, error) {
	if p == nil {
		return types.Type{}, c.fail("PlaceExpr: missing operand")
	}
	return c.place(p)
}

// place checks p and returns the type of the value it denotes.
func (c *checker) place(p *PlaceExpr) (types.Type, error) {
	switch p.Kind {
	case PlaceLocal:
		if !c.cur.HasLocal(p.Local) {
			return types.Type{}, c.fail("PlaceExpr::Local: unknown local")
		}
		return c.cur.Locals[p.Local], nil
	case PlaceDeref:
		ptr, err := c.value(p.Deref.Operand)
		if err != nil {
			return types.Type{}, err
		}
		if err := c.checkType(p.Deref.Type); err != nil {
			return types.Type{}, err
		}
		if ptr.Kind != types.KindPtr {
			return types.Type{}, c.fail("PlaceExpr::Deref: invalid operand type")
		}
		if ptr.Ptr.MetaKind() != c.layout.MetaKind(p.Deref.Type) {
			return types.Type{}, c.fail("PlaceExpr::Deref: metadata kind mismatch")
		}
		return p.Deref.Type, nil
	case PlaceField:
		root, err := c.placePtr(p.Field.Root)
		if err != nil {
			return types.Type{}, err
		}
		idx := p.Field.Field
		switch root.Kind {
		case types.KindTuple:
			fields := root.Tuple.Fields
			if idx >= 0 && idx < len(fields) {
				return fields[idx].Type, nil
			}
			if idx == len(fields) && root.Tuple.Tail != nil {
				return *root.Tuple.Tail, nil
			}
		case types.KindUnion:
			if idx >= 0 && idx < len(root.Union.Fields) {
				return root.Union.Fields[idx].Type, nil
			}
		default:
			return types.Type{}, c.fail("PlaceExpr::Field: expression does not have fields")
		}
		return types.Type{}, c.fail("PlaceExpr::Field: invalid field")
	case PlaceIndex:
		root, err := c.placePtr(p.Index.Root)
		if err != nil {
			return types.Type{}, err
		}
		index, err := c.value(p.Index.Index)
		if err != nil {
			return types.Type{}, err
		}
		if index.Kind != types.KindInt {
			return types.Type{}, c.fail("PlaceExpr::Index: invalid index type")
		}
		switch root.Kind {
		case types.KindArray:
			return *root.Array.Elem, nil
		case types.KindSlice:
			return *root.Slice.Elem, nil
		default:
			return types.Type{}, c.fail("PlaceExpr::Index: expression is not an array or slice")
		}
	case PlaceDowncast:
		root, err := c.placePtr(p.Downcast.Root)
		if err != nil {
			return types.Type{}, err
		}
		if root.Kind != types.KindEnum {
			return types.Type{}, c.fail("PlaceExpr::Downcast: not an enum")
		}
		variant, ok := root.Enum.Variants[p.Downcast.Discriminant]
		if !ok {
			return types.Type{}, c.fail("PlaceExpr::Downcast: invalid discriminant")
		}
		return variant.Type, nil
	default:
		return types.Type{}, c.fail("PlaceExpr: missing operand")
	}
}

func (c *checker) argument(a *ArgumentExpr) error {
	switch a.Kind {
	case ArgByValue:
		_, err := c.value(&a.Value)
		return err
	case ArgInPlace:
		ty, err := c.place(&a.Place)
		if err != nil {
			return err
		}
		if !c.layout.IsSized(ty) {
			return c.fail("ArgumentExpr::InPlace: unsized argument")
		}
		return nil
	default:
		return c.fail("ValueExpr: missing operand")
	}
}
