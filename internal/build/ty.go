package build

import (
	"minimir/internal/layout"
	"minimir/internal/types"
)

var defaultEngine = layout.New(layout.Default())

// RefFor is a shared reference to ty whose pointee is inhabited, frozen and
// movable, with its layout computed for the default target.
func RefFor(ty types.Type) types.Type {
	return types.RefTy(defaultEngine.DefaultPointee(ty))
}

// RefMutFor is the mutable counterpart of RefFor.
func RefMutFor(ty types.Type) types.Type {
	return types.RefMutTy(defaultEngine.DefaultPointee(ty))
}

func BoxFor(ty types.Type) types.Type {
	return types.BoxTy(defaultEngine.DefaultPointee(ty))
}

// RawFor is a raw pointer carrying the metadata ty needs.
func RawFor(ty types.Type) types.Type {
	return types.RawPtrTy(defaultEngine.MetaKind(ty))
}

// Usize is the pointer-sized unsigned integer of the default target.
func Usize() types.IntType { return defaultEngine.Usize() }

// Isize is the pointer-sized signed integer of the default target.
func Isize() types.IntType { return layout.Default().Isize() }
