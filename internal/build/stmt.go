package build

import (
	"fmt"

	"fortio.org/safecast"

	"minimir/internal/mir"
	"minimir/internal/types"
)

func localOf(p mir.PlaceExpr) mir.LocalName {
	if p.Kind != mir.PlaceLocal {
		panic("storage statements need a local place")
	}
	return p.Local
}

func (f *FunctionBuilder) StorageLive(p mir.PlaceExpr) { f.push(StorageLive(localOf(p))) }

func (f *FunctionBuilder) StorageDead(p mir.PlaceExpr) { f.push(StorageDead(localOf(p))) }

func (f *FunctionBuilder) Assign(dst mir.PlaceExpr, src mir.ValueExpr) { f.push(Assign(dst, src)) }

// Validate asserts the validity invariant of p; fnEntry marks a retag at function entry.
func (f *FunctionBuilder) Validate(p mir.PlaceExpr, fnEntry bool) { f.push(Validate(p, fnEntry)) }

func (f *FunctionBuilder) Deinit(p mir.PlaceExpr) { f.push(Deinit(p)) }

func (f *FunctionBuilder) SetDiscriminant(p mir.PlaceExpr, discriminant int64) {
	f.push(SetDiscriminant(p, discriminant))
}

func (f *FunctionBuilder) PlaceMention(p mir.PlaceExpr) { f.push(PlaceMention(p)) }

// Raw statements, for assembling blocks by hand.

func StorageLive(l mir.LocalName) mir.Statement {
	return mir.Statement{Kind: mir.StmtStorageLive, Local: l}
}

func StorageDead(l mir.LocalName) mir.Statement {
	return mir.Statement{Kind: mir.StmtStorageDead, Local: l}
}

func Assign(dst mir.PlaceExpr, src mir.ValueExpr) mir.Statement {
	return mir.Statement{Kind: mir.StmtAssign, Assign: mir.AssignStmt{Dst: dst, Src: src}}
}

func Validate(p mir.PlaceExpr, fnEntry bool) mir.Statement {
	return mir.Statement{Kind: mir.StmtValidate, Place: p, FnEntry: fnEntry}
}

func Deinit(p mir.PlaceExpr) mir.Statement {
	return mir.Statement{Kind: mir.StmtDeinit, Place: p}
}

func SetDiscriminant(p mir.PlaceExpr, discriminant int64) mir.Statement {
	return mir.Statement{Kind: mir.StmtSetDiscriminant, SetDiscriminant: mir.SetDiscriminantStmt{Dst: p, Value: discriminant}}
}

func PlaceMention(p mir.PlaceExpr) mir.Statement {
	return mir.Statement{Kind: mir.StmtPlaceMention, Place: p}
}

// Ret says whether a raw function has a return local.
type Ret uint8

const (
	RetNo Ret = iota
	RetYes
)

// Block assembles a basic block.
func Block(stmts []mir.Statement, term mir.Terminator, kind mir.BbKind) mir.BasicBlock {
	return mir.BasicBlock{Statements: stmts, Term: term, Kind: kind}
}

// RegularBlock assembles a regular block from its statements and terminator.
func RegularBlock(term mir.Terminator, stmts ...mir.Statement) mir.BasicBlock {
	return Block(stmts, term, mir.BbRegular)
}

// Function assembles a function whose blocks are named bb0, bb1, ... in order,
// starting at bb0. With RetYes local 0 is the return local and the next
// numArgs locals are arguments; otherwise the arguments start at local 0.
func Function(ret Ret, numArgs int, locals []types.Type, blocks []mir.BasicBlock) mir.Function {
	f := mir.Function{
		Locals: locals,
		Ret:    mir.NoLocalName,
		Conv:   mir.ConvC,
		Blocks: make(map[mir.BbName]mir.BasicBlock, len(blocks)),
		Start:  0,
	}
	first := 0
	if ret == RetYes {
		f.Ret = 0
		first = 1
	}
	for i := first; i < first+numArgs; i++ {
		f.Args = append(f.Args, mir.LocalName(mustInt32(i)))
	}
	for i, b := range blocks {
		f.Blocks[mir.BbName(mustInt32(i))] = b
	}
	return f
}

// Program assembles a program whose functions are named f0, f1, ... in order,
// starting at f0.
func Program(fns ...mir.Function) *mir.Program {
	p := &mir.Program{Functions: make(map[mir.FnName]mir.Function, len(fns)), Start: 0}
	for i, f := range fns {
		p.Functions[mir.FnName(mustInt32(i))] = f
	}
	return p
}

func mustInt32(i int) int32 {
	n, err := safecast.Conv[int32](i)
	if err != nil {
		panic(fmt.Sprintf("name index %d: %v", i, err))
	}
	return n
}
