package mir

import (
	"slices"

	"minimir/internal/types"
)

// Function is a control-flow graph over typed locals.
// Ret is NoLocalName when the function does not return a value.
type Function struct {
	Locals []types.Type
	Args   []LocalName
	Ret    LocalName
	Conv   CallingConvention

	Blocks map[BbName]BasicBlock
	Start  BbName
}

// HasLocal reports whether l is declared in f.
func (f *Function) HasLocal(l LocalName) bool {
	return l >= 0 && int(l) < len(f.Locals)
}

// Block returns the block named bb.
func (f *Function) Block(bb BbName) (BasicBlock, bool) {
	b, ok := f.Blocks[bb]
	return b, ok
}

// BlockNames returns the names of all blocks in ascending order.
func (f *Function) BlockNames() []BbName {
	names := make([]BbName, 0, len(f.Blocks))
	for bb := range f.Blocks {
		names = append(names, bb)
	}
	slices.Sort(names)
	return names
}
