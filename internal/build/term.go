package build

import (
	"minimir/internal/mir"
	"minimir/internal/types"
)

// Terminators without a following block.

func (f *FunctionBuilder) Exit()         { f.finishBlock(Exit()) }
func (f *FunctionBuilder) Abort()        { f.finishBlock(Abort()) }
func (f *FunctionBuilder) Unreachable()  { f.finishBlock(Unreachable()) }
func (f *FunctionBuilder) Return()       { f.finishBlock(Return()) }
func (f *FunctionBuilder) ResumeUnwind() { f.finishBlock(ResumeUnwind()) }

func (f *FunctionBuilder) Goto(bb mir.BbName) { f.finishBlock(Goto(bb)) }

func (f *FunctionBuilder) StartUnwind(payload mir.ValueExpr, cleanup mir.BbName) {
	f.finishBlock(StartUnwind(payload, cleanup))
}

func (f *FunctionBuilder) StopUnwind(next mir.BbName) { f.finishBlock(StopUnwind(next)) }

// Calls. next is NoBbName for calls that never return.

func (f *FunctionBuilder) call(ret mir.PlaceExpr, callee mir.ValueExpr, args []mir.ArgumentExpr, conv mir.CallingConvention, next, unwind mir.BbName) {
	kind := f.current().kind
	f.finishBlock(mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
		Callee: callee,
		Conv:   conv,
		Args:   args,
		Ret:    ret,
		Next:   next,
		Unwind: unwind,
	}})
	if next != mir.NoBbName {
		f.SetCurBlock(next, kind)
	}
}

// Call calls callee with the Rust convention, unwinding into unwind.
func (f *FunctionBuilder) Call(ret mir.PlaceExpr, callee mir.ValueExpr, args []mir.ArgumentExpr, unwind mir.BbName) {
	f.call(ret, callee, args, mir.ConvRust, f.DeclareBlock(), unwind)
}

func (f *FunctionBuilder) CallWithConv(ret mir.PlaceExpr, callee mir.ValueExpr, args []mir.ArgumentExpr, conv mir.CallingConvention, unwind mir.BbName) {
	f.call(ret, callee, args, conv, f.DeclareBlock(), unwind)
}

// CallNoUnwind calls a function that does not unwind.
func (f *FunctionBuilder) CallNoUnwind(ret mir.PlaceExpr, callee mir.ValueExpr, args []mir.ArgumentExpr) {
	f.call(ret, callee, args, mir.ConvRust, f.DeclareBlock(), mir.NoBbName)
}

// CallIgnoreRet calls a unit-returning function that does not unwind.
func (f *FunctionBuilder) CallIgnoreRet(callee mir.ValueExpr, args []mir.ArgumentExpr) {
	f.CallNoUnwind(UnitPlace(), callee, args)
}

// CallNoRet calls a function that neither returns nor unwinds.
func (f *FunctionBuilder) CallNoRet(ret mir.PlaceExpr, callee mir.ValueExpr, args []mir.ArgumentExpr) {
	f.call(ret, callee, args, mir.ConvRust, mir.NoBbName, mir.NoBbName)
}

// Intrinsics with one following block.

func (f *FunctionBuilder) intrinsic(op mir.IntrinsicOp, ret mir.PlaceExpr, args ...mir.ValueExpr) {
	f.finishWithNext(func(next mir.BbName) mir.Terminator {
		return Intrinsic(op, args, ret, next)
	})
}

func opOf(k mir.IntrinsicKind) mir.IntrinsicOp { return mir.IntrinsicOp{Kind: k} }

func (f *FunctionBuilder) Assume(v mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicAssume), UnitPlace(), v)
}

func (f *FunctionBuilder) Print(v mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicPrintStdout), UnitPlace(), v)
}

func (f *FunctionBuilder) EPrint(v mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicPrintStderr), UnitPlace(), v)
}

func (f *FunctionBuilder) Allocate(size, align mir.ValueExpr, ret mir.PlaceExpr) {
	f.intrinsic(opOf(mir.IntrinsicAllocate), ret, size, align)
}

func (f *FunctionBuilder) Deallocate(ptr, size, align mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicDeallocate), UnitPlace(), ptr, size, align)
}

// Spawn starts fn on a new thread with dataPtr; ret receives the thread id.
func (f *FunctionBuilder) Spawn(fn mir.FnName, dataPtr mir.ValueExpr, ret mir.PlaceExpr) {
	f.intrinsic(opOf(mir.IntrinsicSpawn), ret, FnPtr(fn), dataPtr)
}

func (f *FunctionBuilder) Join(threadID mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicJoin), UnitPlace(), threadID)
}

func (f *FunctionBuilder) RawEq(dst mir.PlaceExpr, left, right mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicRawEq), dst, left, right)
}

func (f *FunctionBuilder) AtomicStore(ptr, src mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicAtomicStore), UnitPlace(), ptr, src)
}

func (f *FunctionBuilder) AtomicLoad(dst mir.PlaceExpr, ptr mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicAtomicLoad), dst, ptr)
}

// AtomicFetch applies binop atomically; only IntAdd and IntSub are meaningful.
func (f *FunctionBuilder) AtomicFetch(binop mir.IntBinOp, dst mir.PlaceExpr, ptr, other mir.ValueExpr) {
	f.intrinsic(mir.IntrinsicOp{Kind: mir.IntrinsicAtomicFetchAndOp, FetchOp: binop}, dst, ptr, other)
}

func (f *FunctionBuilder) CompareExchange(dst mir.PlaceExpr, ptr, current, next mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicAtomicCompareExchange), dst, ptr, current, next)
}

func (f *FunctionBuilder) ExposeProvenance(dst mir.PlaceExpr, ptr mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicPointerExposeProvenance), dst, ptr)
}

func (f *FunctionBuilder) WithExposedProvenance(dst mir.PlaceExpr, addr mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicPointerWithExposedProvenance), dst, addr)
}

func (f *FunctionBuilder) LockCreate(ret mir.PlaceExpr) {
	f.intrinsic(opOf(mir.IntrinsicLockCreate), ret)
}

func (f *FunctionBuilder) LockAcquire(lock mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicLockAcquire), UnitPlace(), lock)
}

func (f *FunctionBuilder) LockRelease(lock mir.ValueExpr) {
	f.intrinsic(opOf(mir.IntrinsicLockRelease), UnitPlace(), lock)
}

func (f *FunctionBuilder) GetUnwindPayload(ret mir.PlaceExpr) {
	f.intrinsic(opOf(mir.IntrinsicGetUnwindPayload), ret)
}

// Structured control flow.

// Case is one arm of SwitchInt.
type Case struct {
	Value int64
	Body  func(*FunctionBuilder)
}

// SwitchInt branches on value. Arms and fallback that leave their block open
// continue in a shared join block, which becomes current afterwards. When
// every arm finishes its own block there is no current block.
func (f *FunctionBuilder) SwitchInt(value mir.ValueExpr, cases []Case, fallback func(*FunctionBuilder)) {
	kind := f.current().kind

	type arm struct {
		body func(*FunctionBuilder)
		bb   mir.BbName
	}
	arms := make([]arm, 0, len(cases)+1)
	targets := make(map[int64]mir.BbName, len(cases))
	for _, c := range cases {
		if _, dup := targets[c.Value]; dup {
			panic("switch: duplicate case value")
		}
		bb := f.DeclareBlock()
		targets[c.Value] = bb
		arms = append(arms, arm{body: c.Body, bb: bb})
	}
	fb := f.DeclareBlock()
	arms = append(arms, arm{body: fallback, bb: fb})
	f.finishBlock(SwitchInt(value, targets, fb))

	join := mir.NoBbName
	for _, a := range arms {
		f.SetCurBlock(a.bb, kind)
		if a.body != nil {
			a.body(f)
		}
		if f.cur != nil {
			if join == mir.NoBbName {
				join = f.DeclareBlock()
			}
			f.Goto(join)
		}
	}
	if join != mir.NoBbName {
		f.SetCurBlock(join, kind)
	}
}

// If branches on a boolean condition.
func (f *FunctionBuilder) If(cond mir.ValueExpr, then, els func(*FunctionBuilder)) {
	f.SwitchInt(BoolToInt(cond, types.U8), []Case{{Value: 1, Body: then}}, els)
}

// While repeats body as long as cond holds. The condition gets its own block.
func (f *FunctionBuilder) While(cond mir.ValueExpr, body func(*FunctionBuilder)) {
	kind := f.current().kind
	head := f.DeclareBlock()
	f.Goto(head)
	f.SetCurBlock(head, kind)
	f.If(cond, func(f *FunctionBuilder) {
		body(f)
		if f.cur != nil {
			f.Goto(head)
		}
	}, nil)
}

// Raw terminators, for assembling blocks by hand.

func Goto(bb mir.BbName) mir.Terminator {
	return mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: bb}}
}

func SwitchInt(value mir.ValueExpr, cases map[int64]mir.BbName, fallback mir.BbName) mir.Terminator {
	return mir.Terminator{Kind: mir.TermSwitch, Switch: mir.SwitchTerm{Value: value, Cases: cases, Fallback: fallback}}
}

// If switches on cond as a u8: 1 goes to then, everything else to els.
func If(cond mir.ValueExpr, then, els mir.BbName) mir.Terminator {
	return SwitchInt(BoolToInt(cond, types.U8), map[int64]mir.BbName{1: then}, els)
}

func Unreachable() mir.Terminator  { return mir.Terminator{Kind: mir.TermUnreachable} }
func Return() mir.Terminator       { return mir.Terminator{Kind: mir.TermReturn} }
func ResumeUnwind() mir.Terminator { return mir.Terminator{Kind: mir.TermResumeUnwind} }

func Exit() mir.Terminator {
	return Intrinsic(opOf(mir.IntrinsicExit), nil, UnitPlace(), mir.NoBbName)
}

func Abort() mir.Terminator {
	return Intrinsic(opOf(mir.IntrinsicAbort), nil, UnitPlace(), mir.NoBbName)
}

func Intrinsic(op mir.IntrinsicOp, args []mir.ValueExpr, ret mir.PlaceExpr, next mir.BbName) mir.Terminator {
	return mir.Terminator{Kind: mir.TermIntrinsic, Intrinsic: mir.IntrinsicTerm{Op: op, Args: args, Ret: ret, Next: next}}
}

// Print prints v and continues at next.
func Print(v mir.ValueExpr, next mir.BbName) mir.Terminator {
	return Intrinsic(opOf(mir.IntrinsicPrintStdout), []mir.ValueExpr{v}, UnitPlace(), next)
}

// Call calls fn with the C convention. Pass NoBbName as next for a call
// that does not return; unwind is NoBbName for calls that do not unwind.
func Call(fn mir.FnName, args []mir.ArgumentExpr, ret mir.PlaceExpr, next, unwind mir.BbName) mir.Terminator {
	return mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
		Callee: FnPtr(fn),
		Conv:   mir.ConvC,
		Args:   args,
		Ret:    ret,
		Next:   next,
		Unwind: unwind,
	}}
}

func StartUnwind(payload mir.ValueExpr, cleanup mir.BbName) mir.Terminator {
	return mir.Terminator{Kind: mir.TermStartUnwind, StartUnwind: mir.StartUnwindTerm{Payload: payload, Cleanup: cleanup}}
}

func StopUnwind(next mir.BbName) mir.Terminator {
	return mir.Terminator{Kind: mir.TermStopUnwind, StopUnwind: mir.StopUnwindTerm{Next: next}}
}
