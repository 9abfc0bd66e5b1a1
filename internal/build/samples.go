package build

import (
	"slices"
	"strings"

	"minimir/internal/mir"
	"minimir/internal/types"
)

// Sample is a named program shipped with the tool.
type Sample struct {
	Name        string
	Description string
	// WellFormed is false for samples that demonstrate a rejection.
	WellFormed bool
	Build      func() *mir.Program
}

// Samples returns the built-in programs ordered by name.
func Samples() []Sample {
	out := []Sample{
		{Name: "exit", Description: "a start function that exits immediately", WellFormed: true, Build: sampleExit},
		{Name: "slice-index", Description: "an array coerced to a slice reference and indexed", WellFormed: true, Build: sampleSliceIndex},
		{Name: "loop", Description: "a counting while loop", WellFormed: true, Build: sampleLoop},
		{Name: "catch", Description: "a panicking call caught and resumed in a regular block", WellFormed: true, Build: sampleCatch},
		{Name: "goto-cleanup", Description: "a regular block jumping into a cleanup block", Build: sampleGotoCleanup},
		{Name: "return-in-cleanup", Description: "a return terminator inside a cleanup block", Build: sampleReturnInCleanup},
	}
	slices.SortFunc(out, func(a, b Sample) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// LookupSample finds a sample by name.
func LookupSample(name string) (Sample, bool) {
	for _, s := range Samples() {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}

func sampleExit() *mir.Program {
	p := NewProgram()
	f := p.DeclareFunction()
	f.Exit()
	return p.FinishProgram(p.FinishFunction(f))
}

func sampleSliceIndex() *mir.Program {
	p := NewProgram()
	f := p.DeclareFunction()
	u32 := types.Int(types.U32)
	arrTy := types.ArrayTy(u32, 3)
	sliceTy := types.SliceTy(u32)

	arr := f.DeclareLocal(arrTy)
	slice := f.DeclareLocal(RefFor(sliceTy))
	elem := f.DeclareLocal(u32)
	f.StorageLive(arr)
	f.StorageLive(slice)
	f.StorageLive(elem)
	f.Assign(arr, Array([]mir.ValueExpr{
		ConstInt(42, types.U32),
		ConstInt(43, types.U32),
		ConstInt(44, types.U32),
	}, u32))
	f.Assign(slice, ConstructWidePointer(
		AddrOf(arr, RefFor(arrTy)),
		ConstInt(3, Usize()),
		RefFor(sliceTy),
	))
	f.Assign(elem, Load(Index(Deref(Load(slice), sliceTy), ConstInt(1, Usize()))))
	f.Assume(Eq(Load(elem), ConstInt(43, types.U32)))
	f.Exit()
	return p.FinishProgram(p.FinishFunction(f))
}

func sampleLoop() *mir.Program {
	p := NewProgram()
	f := p.DeclareFunction()
	i := f.DeclareLocal(types.Int(types.U32))
	f.StorageLive(i)
	f.Assign(i, ConstInt(0, types.U32))
	f.While(Lt(Load(i), ConstInt(10, types.U32)), func(f *FunctionBuilder) {
		f.Print(Load(i))
		f.Assign(i, Add(Load(i), ConstInt(1, types.U32)))
	})
	f.StorageDead(i)
	f.Exit()
	return p.FinishProgram(p.FinishFunction(f))
}

func sampleCatch() *mir.Program {
	p := NewProgram()

	panicking := p.DeclareFunction()
	cleanup := panicking.CleanupBlock(func(f *FunctionBuilder) { f.ResumeUnwind() })
	panicking.StartUnwind(UnitPtr(), cleanup)
	panicFn := p.FinishFunction(panicking)

	main := p.DeclareFunction()
	cont := main.DeclareBlock()
	catch := main.CatchBlock(func(f *FunctionBuilder) { f.StopUnwind(cont) })
	main.Call(UnitPlace(), FnPtr(panicFn), nil, catch)
	main.Goto(cont)
	main.SetCurBlock(cont, mir.BbRegular)
	main.Exit()
	return p.FinishProgram(p.FinishFunction(main))
}

func sampleGotoCleanup() *mir.Program {
	bb0 := RegularBlock(Goto(1))
	bb1 := Block(nil, Exit(), mir.BbCleanup)
	return Program(Function(RetNo, 0, nil, []mir.BasicBlock{bb0, bb1}))
}

func sampleReturnInCleanup() *mir.Program {
	p := NewProgram()
	f := p.DeclareFunction()
	c := f.CleanupBlock(func(f *FunctionBuilder) { f.Return() })
	f.StartUnwind(UnitPtr(), c)
	fn := p.FinishFunction(f)

	main := p.DeclareFunction()
	mc := main.CleanupBlock(func(f *FunctionBuilder) { f.Abort() })
	main.Call(UnitPlace(), FnPtr(fn), nil, mc)
	main.Exit()
	return p.FinishProgram(p.FinishFunction(main))
}
