package layout

import (
	"fmt"

	"minimir/internal/types"
)

// Target describes the pointer properties of the machine programs are checked for.
type Target struct {
	Name     string // informational, e.g. "basic64"
	PtrSize  types.Size
	PtrAlign types.Align
}

// Default returns the 64-bit target used when nothing else is configured.
func Default() Target {
	return Target{
		Name:     "basic64",
		PtrSize:  8,
		PtrAlign: 8,
	}
}

// ForPtrSize returns a target with the given pointer width in bytes.
func ForPtrSize(name string, ptrSize int) (Target, error) {
	switch ptrSize {
	case 2, 4, 8:
	default:
		return Target{}, fmt.Errorf("unsupported pointer size %d (want 2, 4 or 8)", ptrSize)
	}
	if name == "" {
		name = fmt.Sprintf("basic%d", ptrSize*8)
	}
	return Target{
		Name:     name,
		PtrSize:  types.Size(ptrSize),
		PtrAlign: types.Align(ptrSize),
	}, nil
}

// Usize returns the pointer-sized unsigned integer type.
func (t Target) Usize() types.IntType {
	return types.IntType{Size: t.PtrSize}
}

// Isize returns the pointer-sized signed integer type.
func (t Target) Isize() types.IntType {
	return types.IntType{Signed: true, Size: t.PtrSize}
}

// MaxObjectSize is the largest size any object may have: isize::MAX.
func (t Target) MaxObjectSize() types.Size {
	bits := 8*t.PtrSize - 1
	if bits >= 63 {
		return types.Size(1<<63 - 1)
	}
	return types.Size(1)<<bits - 1
}
