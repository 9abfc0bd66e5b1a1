package mir_test

import (
	"context"
	"math"
	"testing"

	"minimir/internal/build"
	"minimir/internal/layout"
	"minimir/internal/mir"
	"minimir/internal/types"
)

// localProgram declares ty as the only local of the start function.
func localProgram(ty types.Type) *mir.Program {
	return build.Program(build.Function(build.RetNo, 0, []types.Type{ty}, []mir.BasicBlock{build.RegularBlock(build.Exit())}))
}

// printProgram prints v from the start function.
func printProgram(v mir.ValueExpr) *mir.Program {
	return build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{
		build.RegularBlock(build.Print(v, 1)),
		build.RegularBlock(build.Exit()),
	}))
}

func tinyTarget(t *testing.T) layout.Target {
	t.Helper()
	tgt, err := layout.ForPtrSize("tiny", 4)
	if err != nil {
		t.Fatalf("ForPtrSize: %v", err)
	}
	return tgt
}

// twoVariantEnum is a one-byte enum whose tag at offset 0 is the discriminant.
func twoVariantEnum(mod func(e *types.EnumType)) types.Type {
	payload := types.TupleTy(nil, 1, 1)
	variants := map[int64]types.Variant{
		0: types.EnumVariant(payload, map[types.Size]types.Tag{0: {Type: types.U8, Value: 0}}),
		1: types.EnumVariant(payload, map[types.Size]types.Tag{0: {Type: types.U8, Value: 1}}),
	}
	disc := types.BranchDiscriminator(0, types.U8, types.DiscriminatorInvalid(), []types.DiscriminatorBranch{
		{Start: 0, End: 1, Disc: types.DiscriminatorKnown(0)},
		{Start: 1, End: 2, Disc: types.DiscriminatorKnown(1)},
	})
	ty := types.EnumTy(variants, disc, types.U8, 1, 1)
	if mod != nil {
		mod(&ty.Enum)
	}
	return ty
}

func setTag(e *types.EnumType, variant int64, off types.Size, tag types.Tag) {
	v := e.Variants[variant]
	v.Tagger = map[types.Size]types.Tag{off: tag}
	e.Variants[variant] = v
}

func union(fields []types.Field, size types.Size, align types.Align, chunks []types.Chunk) types.Type {
	ty := types.UnionTy(fields, size, align)
	if chunks != nil {
		ty.Union.Chunks = chunks
	}
	return ty
}

func TestValidate_TypeRules(t *testing.T) {
	huge := types.Size(math.MaxInt64)
	field := func(off types.Size, ty types.Type) []types.Field { return []types.Field{{Offset: off, Type: ty}} }

	tests := []struct {
		name string
		ty   types.Type
		want string
	}{
		{"int size", types.Int(types.IntType{Size: 3}), "Type::Int: invalid integer size"},
		{"array negative", types.ArrayTy(u8, -1), "Type::Array: negative number of elements"},
		{"array unsized elem", types.ArrayTy(types.SliceTy(u8), 2), "Type::Array: unsized element type"},
		{"array too large", types.ArrayTy(u32, 1<<62), "Type::Array: size exceeds the maximal object size"},

		{"tuple alignment", types.TupleTy(nil, 0, 3), "Type::Tuple: invalid head alignment"},
		{"tuple negative end", types.TupleTy(nil, -16, 8), "Type::Tuple: negative head size"},
		{"tuple too large", types.TupleTy(nil, huge-3, 8), "Type::Tuple: size exceeds the maximal object size"},
		{"tuple unsized field", types.TupleTy(field(0, types.SliceTy(u8)), 8, 8), "Type::Tuple: unsized field in head"},
		{"tuple field past end", types.TupleTy(field(4, u32), 4, 4), "Type::Tuple: field does not fit in head"},
		{"tuple field offset wraps", types.TupleTy(field(huge-1, u32), 8, 4), "Type::Tuple: field does not fit in head"},
		{"tuple negative offset", types.TupleTy(field(-4, u32), 8, 4), "Type::Tuple: field does not fit in head"},
		{"tuple sized tail", types.UnsizedTupleTy(nil, u32, 0, 4, 0), "Type::Tuple: sized tail field"},

		{"union alignment", union(nil, 4, 3, nil), "Type::Union: invalid alignment"},
		{"union size", union(nil, 6, 4, nil), "Type::Union: size not a multiple of alignment"},
		{"union unsized field", union(field(0, types.SliceTy(u8)), 8, 8, nil), "Type::Union: unsized field"},
		{"union field past end", union(field(6, u32), 8, 4, nil), "Type::Union: field does not fit"},
		{"union field offset wraps", union(field(huge-1, u32), 8, 4, nil), "Type::Union: field does not fit"},
		{"union empty chunk", union(nil, 8, 4, []types.Chunk{{Offset: 0, Size: 0}}), "Type::Union: invalid chunk"},
		{"union overlapping chunks", union(nil, 8, 4, []types.Chunk{{Offset: 0, Size: 4}, {Offset: 2, Size: 4}}), "Type::Union: invalid chunk"},
		{"union chunk wraps", union(nil, 8, 4, []types.Chunk{{Offset: huge - 1, Size: 4}}), "Type::Union: invalid chunk"},

		{"enum alignment", twoVariantEnum(func(e *types.EnumType) { e.Align = 3 }), "Type::Enum: invalid alignment"},
		{"enum size", twoVariantEnum(func(e *types.EnumType) { e.Size, e.Align = 3, 2 }), "Type::Enum: size not a multiple of alignment"},
		{"enum discriminant size", twoVariantEnum(func(e *types.EnumType) { e.DiscriminantTy = types.IntType{Size: 3} }), "Type::Enum: invalid discriminant type"},
		{"enum discriminant range", twoVariantEnum(func(e *types.EnumType) {
			e.Variants[300] = e.Variants[1]
			delete(e.Variants, 1)
		}), "Type::Enum: invalid discriminant type"},
		{"enum unsized variant", twoVariantEnum(func(e *types.EnumType) {
			e.Variants[1] = types.EnumVariant(types.SliceTy(u8), nil)
		}), "Type::Enum: unsized variant"},
		{"enum variant size", twoVariantEnum(func(e *types.EnumType) {
			e.Variants[1] = types.EnumVariant(types.TupleTy(nil, 2, 1), nil)
		}), "Type::Enum: variant size does not match enum size"},
		{"enum tag past end", twoVariantEnum(func(e *types.EnumType) {
			setTag(e, 1, 1, types.Tag{Type: types.U8, Value: 1})
		}), "Type::Enum: tag does not fit"},
		{"enum tag offset wraps", twoVariantEnum(func(e *types.EnumType) {
			setTag(e, 1, huge, types.Tag{Type: types.U8, Value: 1})
		}), "Type::Enum: tag does not fit"},
		{"enum tag value", twoVariantEnum(func(e *types.EnumType) {
			setTag(e, 1, 0, types.Tag{Type: types.U8, Value: 300})
		}), "Type::Enum: tag does not fit"},

		{"known discriminant", twoVariantEnum(func(e *types.EnumType) {
			e.Discriminator = types.DiscriminatorKnown(5)
		}), "Discriminator::Known: invalid discriminant"},
		{"branch offset", twoVariantEnum(func(e *types.EnumType) { e.Discriminator.Offset = 1 }), "Discriminator::Branch: value does not fit"},
		{"branch offset wraps", twoVariantEnum(func(e *types.EnumType) { e.Discriminator.Offset = huge }), "Discriminator::Branch: value does not fit"},
		{"branch empty range", twoVariantEnum(func(e *types.EnumType) {
			e.Discriminator.Children[0].End = 0
		}), "Discriminator::Branch: invalid value range"},
		{"branch range type", twoVariantEnum(func(e *types.EnumType) {
			e.Discriminator.Children[1].End = 300
		}), "Discriminator::Branch: value range does not fit"},
		{"unknown discriminator", twoVariantEnum(func(e *types.EnumType) {
			e.Discriminator.Kind = 9
		}), "Discriminator: unknown discriminator kind"},

		{"pointee alignment", types.RefTy(types.PointeeInfo{Layout: types.SizedStrategy(4, 3), Inhabited: true}), "PointeeInfo: invalid alignment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectIllFormed(t, localProgram(tt.ty), tt.want)
		})
	}
}

func TestValidate_TypeBoundaries(t *testing.T) {
	huge := types.Size(math.MaxInt64)
	accepted := []struct {
		name string
		ty   types.Type
	}{
		{"tuple at the limit", types.TupleTy(nil, huge-7, 8)},
		{"array at the limit", types.ArrayTy(u8, math.MaxInt64)},
		{"field ending at the head end", types.TupleTy([]types.Field{{Offset: 4, Type: u32}}, 8, 4)},
		{"union at the limit", union(nil, huge, 1, nil)},
		{"two-variant enum", twoVariantEnum(nil)},
	}
	for _, tt := range accepted {
		t.Run(tt.name, func(t *testing.T) {
			expectWellFormed(t, localProgram(tt.ty))
		})
	}
}

func TestValidate_SizeLimitFollowsTarget(t *testing.T) {
	tiny := tinyTarget(t)
	limit := tiny.MaxObjectSize()
	tests := []struct {
		name string
		ty   types.Type
		want string
		// fitsDefault is set when the 64-bit default target accepts ty.
		fitsDefault bool
	}{
		{"tuple", types.TupleTy(nil, limit+1, 1), "Type::Tuple: size exceeds the maximal object size", true},
		{"union", union(nil, limit+1, 1, nil), "Type::Union: size exceeds the maximal object size", true},
		{"enum", twoVariantEnum(func(e *types.EnumType) { e.Size = limit + 1 }), "Type::Enum: size exceeds the maximal object size", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := localProgram(tt.ty)
			err := mir.Validate(context.Background(), p, tiny)
			ill, ok := mir.AsIllFormed(err)
			if !ok || ill.Msg != tt.want {
				t.Fatalf("tiny target: got %v, want %q", err, tt.want)
			}
			if tt.fitsDefault {
				expectWellFormed(t, p)
			}
		})
	}
}

func TestValidate_ValueRules(t *testing.T) {
	unionTy := types.UnionTy([]types.Field{{Offset: 0, Type: u8}}, 1, 1)
	enumTy := twoVariantEnum(nil)
	payload := build.Tuple(nil, types.TupleTy(nil, 1, 1))
	b := build.ConstBool(true)
	n := build.ConstInt(0, types.U8)

	tests := []struct {
		name string
		v    mir.ValueExpr
		want string
	}{
		{"neg bool", build.Neg(b), "UnOp::Int: invalid operand"},
		{"not int", build.Not(n), "UnOp::Bool: invalid operand"},
		{"int cast of bool", build.IntCast(b, types.U32), "Cast::IntToInt: invalid operand"},
		{"bool to int of int", build.BoolToInt(n, types.U32), "Cast::BoolToInt: invalid operand"},
		{"thin pointer of int", build.GetThinPointer(n), "UnOp::GetThinPointer: invalid operand"},
		{"metadata of int", build.GetMetadata(n), "UnOp::GetMetadata: invalid operand"},
		{"compute size", build.ComputeSize(types.SliceTy(u8), b), "UnOp::ComputeSize: invalid operand"},
		{"compute align", build.ComputeAlign(types.SliceTy(u8), b), "UnOp::ComputeAlign: invalid operand"},

		{"union of int type", build.Union(0, n, u32), "ValueExpr::Union: not a union type"},
		{"union field index", build.Union(1, n, unionTy), "ValueExpr::Union: invalid field"},
		{"union negative field", build.Union(-1, n, unionTy), "ValueExpr::Union: invalid field"},
		{"union field type", build.Union(0, b, unionTy), "ValueExpr::Union: invalid field type"},

		{"variant of int type", build.Variant(0, payload, u32), "ValueExpr::Variant: not an enum type"},
		{"variant discriminant", build.Variant(7, payload, enumTy), "ValueExpr::Variant: invalid discriminant"},
		{"variant data", build.Variant(0, build.Unit(), enumTy), "ValueExpr::Variant: invalid data type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectIllFormed(t, printProgram(tt.v), tt.want)
		})
	}

	for _, v := range []mir.ValueExpr{
		build.Neg(n),
		build.Not(b),
		build.Union(0, n, unionTy),
		build.Variant(1, payload, enumTy),
		build.ComputeSize(types.SliceTy(u8), build.ConstInt(3, build.Usize())),
	} {
		expectWellFormed(t, printProgram(v))
	}
}

func TestValidate_IntrinsicNext(t *testing.T) {
	exitWithNext := build.Exit()
	exitWithNext.Intrinsic.Next = 1
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{
		build.RegularBlock(exitWithNext),
		build.RegularBlock(build.Exit()),
	}))
	expectIllFormed(t, p, "Terminator::Intrinsic: Exit and Abort have no next block")

	p = build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{
		build.RegularBlock(build.Print(build.ConstInt(0, types.I32), mir.NoBbName)),
	}))
	expectIllFormed(t, p, "Terminator::Intrinsic: missing next block")
}

func TestValidate_ReturningCallInCleanup(t *testing.T) {
	bb0 := build.RegularBlock(build.StartUnwind(build.UnitPtr(), 1))
	bb1 := build.Block(nil, callTerm(2, mir.NoBbName), mir.BbCleanup)
	bb2 := build.Block(nil, build.ResumeUnwind(), mir.BbCleanup)
	f0 := build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1, bb2})
	f1 := build.Function(build.RetNo, 0, nil, []mir.BasicBlock{build.RegularBlock(build.Return())})

	ill := expectIllFormed(t, build.Program(f0, f1), "Terminator::Call: returning calls are only allowed in regular and catch blocks")
	if ill.Block != 1 {
		t.Fatalf("reported bb%d, want bb1", ill.Block)
	}
}

func TestValidate_UnknownBlockKind(t *testing.T) {
	bb0 := build.RegularBlock(build.Goto(1))
	bb1 := build.Block(nil, build.Goto(1), mir.BbKind(7))
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1}))
	expectIllFormed(t, p, "Terminator: next block has the wrong block kind")

	self := build.Block(nil, build.Goto(1), mir.BbKind(7))
	p = build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{build.RegularBlock(build.Exit()), self}))
	ill := expectIllFormed(t, p, "BasicBlock: unknown block kind")
	if ill.Block != 1 {
		t.Fatalf("reported bb%d, want bb1", ill.Block)
	}
}
