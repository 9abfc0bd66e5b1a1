package mir

import "fmt"

// FnName identifies a function within a Program.
type FnName int32

// BbName identifies a basic block within a Function.
type BbName int32

// LocalName identifies a local variable within a Function.
type LocalName int32

const (
	NoFnName    FnName    = -1
	NoBbName    BbName    = -1
	NoLocalName LocalName = -1
)

func (n FnName) String() string    { return fmt.Sprintf("f%d", int32(n)) }
func (n BbName) String() string    { return fmt.Sprintf("bb%d", int32(n)) }
func (n LocalName) String() string { return fmt.Sprintf("_%d", int32(n)) }

// BbKind describes the unwind state a basic block belongs to.
type BbKind uint8

const (
	// BbRegular blocks run during normal control flow.
	BbRegular BbKind = iota
	// BbCleanup blocks run while an unwind is in flight.
	BbCleanup
	// BbCatch blocks absorb an unwind raised by a nested call.
	BbCatch
	// BbTerminate blocks are reached when unwinding cannot continue.
	BbTerminate
)

// Valid reports whether k is one of the four block kinds.
func (k BbKind) Valid() bool { return k <= BbTerminate }

func (k BbKind) String() string {
	switch k {
	case BbRegular:
		return "regular"
	case BbCleanup:
		return "cleanup"
	case BbCatch:
		return "catch"
	case BbTerminate:
		return "terminate"
	default:
		return fmt.Sprintf("BbKind(%d)", k)
	}
}

// CallingConvention of a function.
type CallingConvention uint8

const (
	ConvRust CallingConvention = iota
	ConvC
)

func (c CallingConvention) String() string {
	if c == ConvC {
		return "C"
	}
	return "Rust"
}
