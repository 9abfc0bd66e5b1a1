package mir_test

import (
	"context"
	"errors"
	"testing"

	"minimir/internal/build"
	"minimir/internal/layout"
	"minimir/internal/mir"
	"minimir/internal/trace"
	"minimir/internal/types"
)

var (
	u8    = types.Int(types.U8)
	u32   = types.Int(types.U32)
	unitT = types.Unit()
)

func validate(p *mir.Program) error {
	return mir.Validate(context.Background(), p, layout.Default())
}

func expectWellFormed(t *testing.T, p *mir.Program) {
	t.Helper()
	if err := validate(p); err != nil {
		t.Fatalf("expected well-formed program, got %q", err)
	}
}

func expectIllFormed(t *testing.T, p *mir.Program, msg string) *mir.IllFormedError {
	t.Helper()
	err := validate(p)
	if err == nil {
		t.Fatalf("expected %q, program was accepted", msg)
	}
	ill, ok := mir.AsIllFormed(err)
	if !ok {
		t.Fatalf("expected *IllFormedError, got %T: %v", err, err)
	}
	if ill.Msg != msg {
		t.Fatalf("message = %q, want %q", ill.Msg, msg)
	}
	return ill
}

// otherFn returns a small function with a return local and one argument.
func otherFn() mir.Function {
	return build.Function(build.RetYes, 1, []types.Type{unitT, unitT}, []mir.BasicBlock{build.RegularBlock(build.Exit())})
}

func callTerm(next, unwind mir.BbName) mir.Terminator {
	return build.Call(1, nil, build.UnitPlace(), next, unwind)
}

func TestValidate_GotoIntoCleanup(t *testing.T) {
	bb0 := build.RegularBlock(build.Goto(1))
	bb1 := build.Block(nil, build.Exit(), mir.BbCleanup)
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1}))

	ill := expectIllFormed(t, p, "Terminator: next block has the wrong block kind")
	if ill.Fn != 0 || !ill.HasBlock || ill.Block != 0 {
		t.Fatalf("location = fn %d bb %d (has block %v)", ill.Fn, ill.Block, ill.HasBlock)
	}
}

func TestValidate_GotoRegularAccepted(t *testing.T) {
	bb0 := build.RegularBlock(build.Goto(1))
	bb1 := build.RegularBlock(build.Exit())
	expectWellFormed(t, build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1})))
}

func TestValidate_SwitchWrongKind(t *testing.T) {
	tests := []struct {
		name     string
		cases    map[int64]mir.BbName
		fallback mir.BbName
	}{
		{"case", map[int64]mir.BbName{0: 1, 1: 1, 7: 2}, 1},
		{"fallback", map[int64]mir.BbName{0: 1, 1: 1, 7: 1}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bb0 := build.RegularBlock(build.SwitchInt(build.ConstInt(0, types.U8), tt.cases, tt.fallback))
			bb1 := build.RegularBlock(build.Exit())
			bb2 := build.Block(nil, build.Exit(), mir.BbCleanup)
			p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1, bb2}))
			expectIllFormed(t, p, "Terminator: next block has the wrong block kind")
		})
	}
}

func TestValidate_SwitchCaseMustFit(t *testing.T) {
	bb0 := build.RegularBlock(build.SwitchInt(build.ConstInt(0, types.U8), map[int64]mir.BbName{256: 1}, 1))
	bb1 := build.RegularBlock(build.Exit())
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1}))
	expectIllFormed(t, p, "Terminator::Switch: case value does not fit in switch type")
}

func TestValidate_IntrinsicWrongKind(t *testing.T) {
	bb0 := build.RegularBlock(build.Print(build.ConstInt(0, types.I32), 1))
	bb1 := build.Block(nil, build.Exit(), mir.BbCleanup)
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1}))
	expectIllFormed(t, p, "Terminator: next block has the wrong block kind")
}

func TestValidate_CallNextIntoTerminate(t *testing.T) {
	bb0 := build.RegularBlock(callTerm(1, mir.NoBbName))
	bb1 := build.Block(nil, build.Exit(), mir.BbTerminate)
	f0 := build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1})
	f1 := build.Function(build.RetNo, 0, nil, []mir.BasicBlock{build.RegularBlock(build.Return())})
	expectIllFormed(t, build.Program(f0, f1), "Terminator: next block has the wrong block kind")
}

func TestValidate_CallUnwindIntoRegular(t *testing.T) {
	bb0 := build.RegularBlock(callTerm(mir.NoBbName, 1))
	bb1 := build.RegularBlock(build.Exit())
	f0 := build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1})
	f1 := build.Function(build.RetNo, 0, nil, []mir.BasicBlock{build.RegularBlock(build.Return())})
	expectIllFormed(t, build.Program(f0, f1), "Terminator: unwind block has the wrong block kind")
}

func TestValidate_StartUnwindIntoRegular(t *testing.T) {
	bb0 := build.RegularBlock(build.StartUnwind(build.UnitPtr(), 1))
	bb1 := build.RegularBlock(build.Exit())
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1}))
	expectIllFormed(t, p, "Terminator: unwind block has the wrong block kind")
}

func TestValidate_ReturnInCleanup(t *testing.T) {
	p := build.NewProgram()
	f := p.DeclareFunction()
	c := f.CleanupBlock(func(f *build.FunctionBuilder) { f.Return() })
	f.StartUnwind(build.UnitPtr(), c)
	fn := p.FinishFunction(f)

	main := p.DeclareFunction()
	mc := main.CleanupBlock(func(f *build.FunctionBuilder) { f.Abort() })
	main.Call(build.UnitPlace(), build.FnPtr(fn), nil, mc)
	main.Exit()

	expectIllFormed(t, p.FinishProgram(p.FinishFunction(main)), "Terminator::Return has to be called in a regular block")
}

func TestValidate_StartUnwindInCleanup(t *testing.T) {
	p := build.NewProgram()
	f := p.DeclareFunction()
	outer := f.CleanupBlock(func(f *build.FunctionBuilder) {
		inner := f.CleanupBlock(func(f *build.FunctionBuilder) { f.Exit() })
		f.StartUnwind(build.UnitPtr(), inner)
	})
	f.StartUnwind(build.UnitPtr(), outer)
	expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "Terminator::StartUnwind has to be called in a regular block")
}

func TestValidate_ResumeInRegular(t *testing.T) {
	p := build.NewProgram()
	f := p.DeclareFunction()
	f.ResumeUnwind()
	expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "Terminator::ResumeUnwind: has to be called in cleanup block")
}

func TestValidate_CallMissingBlocks(t *testing.T) {
	tests := []struct {
		name         string
		next, unwind mir.BbName
		want         string
	}{
		{"next", 2, 1, "Terminator: next block does not exist"},
		{"unwind", 1, 2, "Terminator: unwind block does not exist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := build.Call(1, []mir.ArgumentExpr{build.ByValue(build.Unit())}, build.Local(0), tt.next, tt.unwind)
			bb0 := build.RegularBlock(call, build.StorageLive(0))
			bb1 := build.RegularBlock(build.Exit())
			f := build.Function(build.RetNo, 0, []types.Type{unitT}, []mir.BasicBlock{bb0, bb1})
			expectIllFormed(t, build.Program(f, otherFn()), tt.want)
		})
	}
}

func TestValidate_UnwindInCatch(t *testing.T) {
	p := build.NewProgram()

	panicking := p.DeclareFunction()
	panicking.Print(build.ConstInt(2, types.I32))
	cleanup := panicking.CleanupBlock(func(f *build.FunctionBuilder) { f.ResumeUnwind() })
	panicking.StartUnwind(build.UnitPtr(), cleanup)
	panicFn := p.FinishFunction(panicking)

	main := p.DeclareFunction()
	cont := main.DeclareBlock()
	mainCleanup := main.CleanupBlock(func(f *build.FunctionBuilder) { f.Abort() })
	catch := main.CatchBlock(func(f *build.FunctionBuilder) {
		f.Call(build.UnitPlace(), build.FnPtr(panicFn), nil, mainCleanup)
		f.StopUnwind(cont)
	})
	main.Call(build.UnitPlace(), build.FnPtr(panicFn), nil, catch)
	main.Goto(cont)
	main.SetCurBlock(cont, mir.BbRegular)
	main.Exit()

	ill := expectIllFormed(t, p.FinishProgram(p.FinishFunction(main)), "Terminator: unwinding is not allowed in a catch block")
	if ill.Block != catch {
		t.Fatalf("reported block %s, want the catch block %s", ill.Block, catch)
	}
}

func TestValidate_GotoCleanupToCatch(t *testing.T) {
	bb0 := build.RegularBlock(build.StartUnwind(build.UnitPtr(), 1), build.StorageLive(0))
	bb1 := build.Block(nil, build.Goto(2), mir.BbCleanup)
	bb2 := build.Block(nil, build.Exit(), mir.BbCatch)
	f := build.Function(build.RetNo, 0, []types.Type{unitT}, []mir.BasicBlock{bb0, bb1, bb2})
	expectIllFormed(t, build.Program(f, otherFn()), "Terminator: next block has the wrong block kind")
}

func TestValidate_TerminateBlockHasNoSuccessors(t *testing.T) {
	bb0 := build.RegularBlock(build.Exit())
	bb1 := build.Block(nil, build.Goto(2), mir.BbTerminate)
	bb2 := build.Block(nil, build.Abort(), mir.BbTerminate)
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1, bb2}))
	expectIllFormed(t, p, "Terminator: terminate block cannot have successors")
}

func TestValidate_CleanupUnwindsIntoTerminate(t *testing.T) {
	p := build.NewProgram()
	callee := p.DeclareFunction()
	callee.Return()
	calleeName := p.FinishFunction(callee)

	f := p.DeclareFunction()
	term := f.TerminateBlock(func(f *build.FunctionBuilder) { f.Abort() })
	cleanup := f.CleanupBlock(func(f *build.FunctionBuilder) {
		f.CallNoRet(build.UnitPlace(), build.FnPtr(calleeName), nil)
	})
	f.StartUnwind(build.UnitPtr(), cleanup)
	prog := p.FinishProgram(p.FinishFunction(f))
	expectWellFormed(t, prog)

	// a cleanup call may unwind into a terminate block
	fn := prog.Functions[1]
	b := fn.Blocks[cleanup]
	b.Term.Call.Unwind = term
	fn.Blocks[cleanup] = b
	expectWellFormed(t, prog)
}

func TestValidate_ProgramLevel(t *testing.T) {
	if err := validate(nil); err == nil || err.Error() != "Program: start function does not exist" {
		t.Fatalf("nil program: %v", err)
	}

	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{build.RegularBlock(build.Exit())}))
	p.Start = 3
	ill := expectIllFormed(t, p, "Program: start function does not exist")
	if ill.Fn != mir.NoFnName {
		t.Fatalf("program-level error carries fn %s", ill.Fn)
	}

	withArg := build.Program(build.Function(build.RetNo, 1, []types.Type{u8}, []mir.BasicBlock{build.RegularBlock(build.Exit())}))
	expectIllFormed(t, withArg, "Program: start function has arguments")
}

func TestValidate_FunctionSignature(t *testing.T) {
	exit := []mir.BasicBlock{build.RegularBlock(build.Exit())}
	main := build.Function(build.RetNo, 0, nil, exit)

	dup := build.Function(build.RetYes, 0, []types.Type{u8}, exit)
	dup.Args = []mir.LocalName{0}
	expectIllFormed(t, build.Program(main, dup), "Function: local used twice in signature")

	missing := build.Function(build.RetNo, 0, nil, exit)
	missing.Args = []mir.LocalName{4}
	expectIllFormed(t, build.Program(main, missing), "Function: argument local does not exist")

	noStart := build.Function(build.RetNo, 0, nil, exit)
	noStart.Start = 9
	expectIllFormed(t, build.Program(main, noStart), "Function: start block does not exist")

	cleanupStart := build.Function(build.RetNo, 0, nil, []mir.BasicBlock{build.Block(nil, build.Exit(), mir.BbCleanup)})
	expectIllFormed(t, build.Program(main, cleanupStart), "Function: start block must be a regular block")
}

func TestValidate_Slices(t *testing.T) {
	sliceU32 := types.SliceTy(u32)

	t.Run("wf slice ref", func(t *testing.T) {
		p := build.NewProgram()
		f := p.DeclareFunction()
		f.DeclareLocal(build.RefFor(sliceU32))
		f.DeclareRet(build.RefMutFor(types.SliceTy(u8)))
		f.DeclareArg(build.RawFor(types.SliceTy(types.ArrayTy(types.ArrayTy(u8, 3), 2))))
		f.Exit()
		p.FinishFunction(f)

		main := p.DeclareFunction()
		main.Exit()
		expectWellFormed(t, p.FinishProgram(p.FinishFunction(main)))
	})

	t.Run("wf index", func(t *testing.T) {
		p := build.NewProgram()
		f := p.DeclareFunction()
		slice := f.DeclareArg(build.RefFor(sliceU32))
		v := f.DeclareLocal(u32)
		f.StorageLive(v)
		elem := build.Index(build.Deref(build.Load(slice), sliceU32), build.ConstInt(2, types.I32))
		f.Assign(elem, build.ConstInt(42, types.U32))
		f.Assign(v, build.Load(elem))
		f.Exit()
		p.FinishFunction(f)

		main := p.DeclareFunction()
		main.Exit()
		expectWellFormed(t, p.FinishProgram(p.FinishFunction(main)))
	})

	t.Run("unsized element", func(t *testing.T) {
		p := build.NewProgram()
		f := p.DeclareFunction()
		v := f.DeclareLocal(build.RefFor(sliceU32))
		f.StorageLive(v)
		f.Validate(build.Deref(build.Load(v), types.SliceTy(sliceU32)), false)
		f.Exit()
		expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "Type::Slice: unsized element type")
	})

	t.Run("unsized local", func(t *testing.T) {
		p := build.NewProgram()
		f := p.DeclareFunction()
		f.DeclareLocal(sliceU32)
		f.Exit()
		expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "Function: unsized local variable")
	})

	t.Run("unsized load", func(t *testing.T) {
		p := build.NewProgram()
		f := p.DeclareFunction()
		v := f.DeclareLocal(build.RefFor(sliceU32))
		f.StorageLive(v)
		f.Print(build.Load(build.Deref(build.Load(v), sliceU32)))
		f.Exit()
		expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "ValueExpr::Load: unsized value type")
	})

	t.Run("unsized transmute", func(t *testing.T) {
		p := build.NewProgram()
		f := p.DeclareFunction()
		arr := f.DeclareLocal(types.ArrayTy(u32, 1))
		f.StorageLive(arr)
		f.Assign(build.Index(arr, build.ConstInt(0, types.I32)), build.ConstInt(42, types.U32))
		f.Print(build.Transmute(build.Load(arr), sliceU32))
		f.Exit()
		expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "Cast::Transmute: unsized target type")
	})

	t.Run("wide pointer from array", func(t *testing.T) {
		p := build.NewProgram()
		f := p.DeclareFunction()
		arrTy := types.ArrayTy(u32, 3)
		arr := f.DeclareLocal(arrTy)
		f.StorageLive(arr)
		wide := build.ConstructWidePointer(build.AddrOf(arr, build.RefFor(arrTy)), build.ConstInt(3, build.Usize()), build.RefFor(sliceU32))
		f.Assume(build.Eq(build.GetMetadata(wide), build.ConstInt(3, build.Usize())))
		first := build.Load(build.Deref(build.GetThinPointer(wide), u32))
		f.Assume(build.Eq(first, build.ConstInt(42, types.U32)))
		f.Exit()
		expectWellFormed(t, p.FinishProgram(p.FinishFunction(f)))
	})

	t.Run("transmuted pair", func(t *testing.T) {
		p := build.NewProgram()
		f := p.DeclareFunction()
		arr := f.DeclareLocal(types.ArrayTy(u32, 3))
		f.StorageLive(arr)
		pairTy, ok := layout.New(layout.Default()).WidePair(types.MetaLenKind())
		if !ok {
			t.Fatal("len metadata has no wide pair")
		}
		pair := f.DeclareLocal(pairTy)
		f.StorageLive(pair)
		f.Assign(build.Field(pair, 0), build.AddrOf(arr, types.RawVoidPtrTy()))
		f.Assign(build.Field(pair, 1), build.ConstInt(3, build.Usize()))
		slice := f.DeclareLocal(build.RefFor(sliceU32))
		f.StorageLive(slice)
		f.Assign(slice, build.Transmute(build.Load(pair), build.RefFor(sliceU32)))
		f.Validate(slice, false)
		f.Exit()
		expectWellFormed(t, p.FinishProgram(p.FinishFunction(f)))
	})
}

func TestValidate_WideConstructionNeedsWidePointer(t *testing.T) {
	p := build.NewProgram()
	f := p.DeclareFunction()
	arr := f.DeclareLocal(types.ArrayTy(u32, 3))
	f.StorageLive(arr)
	thinRef := build.RefFor(types.ArrayTy(u32, 3))
	f.Print(build.ConstructWidePointer(build.AddrOf(arr, thinRef), build.ConstInt(3, build.Usize()), thinRef))
	f.Exit()
	expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "BinOp::ConstructWidePointer: pointer type is not wide")
}

func TestValidate_AssignTypeMismatch(t *testing.T) {
	p := build.NewProgram()
	f := p.DeclareFunction()
	x := f.DeclareLocal(u32)
	f.StorageLive(x)
	f.Assign(x, build.ConstBool(true))
	f.Exit()
	expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "Statement::Assign: destination and source type differ")
}

func TestValidate_ConstantChecks(t *testing.T) {
	p := build.NewProgram()
	f := p.DeclareFunction()
	f.Print(build.ConstInt(300, types.U8))
	f.Exit()
	expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "Constant::Int: value does not fit in type")

	p = build.NewProgram()
	f = p.DeclareFunction()
	f.Print(build.FnPtr(7))
	f.Exit()
	expectIllFormed(t, p.FinishProgram(p.FinishFunction(f)), "Constant::FnPointer: invalid function name")
}

func TestValidate_FirstErrorIsDeterministic(t *testing.T) {
	// f0 and f1 are both ill-formed; f0 must always be the one reported.
	bad0 := build.RegularBlock(build.ResumeUnwind())
	bad1 := build.RegularBlock(build.Goto(5))
	p := build.Program(
		build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bad0}),
		build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bad1}),
	)
	for range 20 {
		ill := expectIllFormed(t, p, "Terminator::ResumeUnwind: has to be called in cleanup block")
		if ill.Fn != 0 {
			t.Fatalf("reported fn %s, want f0", ill.Fn)
		}
	}
}

func TestValidate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{build.RegularBlock(build.Exit())}))
	err := mir.Validate(ctx, p, layout.Default())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, ok := mir.AsIllFormed(err); ok {
		t.Fatal("cancellation must not be reported as ill-formed")
	}
}

func TestValidate_TracesSpans(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	ctx, file := trace.Start(ctx, trace.ScopeDriver, "check_file", trace.FileSite("p.mmir"))
	bb0 := build.RegularBlock(build.Goto(1))
	bb1 := build.Block(nil, build.Exit(), mir.BbCleanup)
	p := build.Program(build.Function(build.RetNo, 0, nil, []mir.BasicBlock{bb0, bb1}))
	if err := mir.Validate(ctx, p, layout.Default()); err == nil {
		t.Fatal("expected rejection")
	}
	file.End("rejected")

	events := ring.Snapshot()
	if len(events) < 2 {
		t.Fatalf("expected events, got %d", len(events))
	}
	last := events[len(events)-2]
	if last.Kind != trace.KindSpanEnd || last.Name != "validate" {
		t.Fatalf("validate end event = %+v", last)
	}
	if last.Detail != "Terminator: next block has the wrong block kind" || last.Site.String() != "p.mmir:f0:bb0" {
		t.Fatalf("validate span end = %q at %q", last.Detail, last.Site)
	}
	var sawFn, sawBlock bool
	for _, ev := range events {
		sawFn = sawFn || (ev.Scope == trace.ScopeFunction && ev.Name == "fn:f0" && ev.Site.String() == "p.mmir:f0")
		sawBlock = sawBlock || (ev.Scope == trace.ScopeBlock && ev.Name == "bb0" && ev.Detail == "regular")
	}
	if !sawFn || !sawBlock {
		t.Fatalf("missing function or block events: fn=%v block=%v", sawFn, sawBlock)
	}
}

func TestIllFormedError_Family(t *testing.T) {
	tests := []struct{ msg, want string }{
		{"Terminator: next block does not exist", "Terminator"},
		{"Terminator::Return has to be called in a regular block", "Terminator::Return"},
		{"Type::Slice: unsized element type", "Type::Slice"},
		{"Program: start function has arguments", "Program"},
	}
	for _, tt := range tests {
		got := (&mir.IllFormedError{Msg: tt.msg}).Family()
		if got != tt.want {
			t.Errorf("Family(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}
