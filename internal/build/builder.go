// Package build constructs MIR programs for tests, samples and tooling.
//
// The builders keep track of name allocation and of the block currently being
// filled. Misuse, such as adding a statement with no current block, panics:
// builders are fixture tools and their callers are expected to be correct.
package build

import (
	"fmt"

	"fortio.org/safecast"

	"minimir/internal/mir"
	"minimir/internal/types"
)

// ProgramBuilder accumulates functions for a program.
type ProgramBuilder struct {
	functions map[mir.FnName]mir.Function
	next      mir.FnName
}

// NewProgram returns an empty program builder.
func NewProgram() *ProgramBuilder {
	return &ProgramBuilder{functions: make(map[mir.FnName]mir.Function)}
}

// DeclareFunction reserves a function name and returns a builder for its body.
// The start block is already current and regular.
func (p *ProgramBuilder) DeclareFunction() *FunctionBuilder {
	name := p.next
	p.next++
	f := &FunctionBuilder{
		name:   name,
		ret:    mir.NoLocalName,
		blocks: make(map[mir.BbName]mir.BasicBlock),
	}
	f.start = f.DeclareBlock()
	f.SetCurBlock(f.start, mir.BbRegular)
	return f
}

// FinishFunction adds the finished function to the program and returns its name.
func (p *ProgramBuilder) FinishFunction(f *FunctionBuilder) mir.FnName {
	if f.cur != nil {
		panic(fmt.Sprintf("finish function %s: block %s is not finished", f.name, f.cur.name))
	}
	if _, dup := p.functions[f.name]; dup {
		panic(fmt.Sprintf("finish function %s: already finished", f.name))
	}
	p.functions[f.name] = f.function()
	return f.name
}

// FinishProgram returns the program with start as its entry function.
func (p *ProgramBuilder) FinishProgram(start mir.FnName) *mir.Program {
	return &mir.Program{Functions: p.functions, Start: start}
}

// FunctionBuilder builds one function block by block.
type FunctionBuilder struct {
	name   mir.FnName
	locals []types.Type
	args   []mir.LocalName
	ret    mir.LocalName
	conv   mir.CallingConvention

	blocks    map[mir.BbName]mir.BasicBlock
	start     mir.BbName
	nextBlock mir.BbName
	cur       *openBlock
}

type openBlock struct {
	name  mir.BbName
	kind  mir.BbKind
	stmts []mir.Statement
}

// Name returns the function name reserved by DeclareFunction.
func (f *FunctionBuilder) Name() mir.FnName { return f.name }

// SetConvention sets the calling convention of the function.
func (f *FunctionBuilder) SetConvention(conv mir.CallingConvention) { f.conv = conv }

// DeclareLocal adds a local of type ty and returns a place referring to it.
func (f *FunctionBuilder) DeclareLocal(ty types.Type) mir.PlaceExpr {
	n, err := safecast.Conv[int32](len(f.locals))
	if err != nil {
		panic(fmt.Sprintf("declare local: %v", err))
	}
	f.locals = append(f.locals, ty)
	return Local(mir.LocalName(n))
}

// DeclareArg adds a parameter local.
func (f *FunctionBuilder) DeclareArg(ty types.Type) mir.PlaceExpr {
	p := f.DeclareLocal(ty)
	f.args = append(f.args, p.Local)
	return p
}

// DeclareRet adds the return local. A function has at most one.
func (f *FunctionBuilder) DeclareRet(ty types.Type) mir.PlaceExpr {
	if f.ret != mir.NoLocalName {
		panic(fmt.Sprintf("declare ret: function %s already has a return local", f.name))
	}
	p := f.DeclareLocal(ty)
	f.ret = p.Local
	return p
}

// DeclareBlock reserves a block name without making it current.
func (f *FunctionBuilder) DeclareBlock() mir.BbName {
	bb := f.nextBlock
	f.nextBlock++
	return bb
}

// SetCurBlock starts filling bb. The previous current block must be finished.
func (f *FunctionBuilder) SetCurBlock(bb mir.BbName, kind mir.BbKind) {
	if f.cur != nil {
		panic(fmt.Sprintf("set current block %s: block %s is not finished", bb, f.cur.name))
	}
	f.cur = &openBlock{name: bb, kind: kind}
}

// CleanupBlock builds a cleanup block with body and returns its name.
// The block that was current before stays current afterwards.
func (f *FunctionBuilder) CleanupBlock(body func(*FunctionBuilder)) mir.BbName {
	return f.sideBlock(mir.BbCleanup, body)
}

// CatchBlock builds a catch block with body and returns its name.
func (f *FunctionBuilder) CatchBlock(body func(*FunctionBuilder)) mir.BbName {
	return f.sideBlock(mir.BbCatch, body)
}

// TerminateBlock builds a terminate block with body and returns its name.
func (f *FunctionBuilder) TerminateBlock(body func(*FunctionBuilder)) mir.BbName {
	return f.sideBlock(mir.BbTerminate, body)
}

func (f *FunctionBuilder) sideBlock(kind mir.BbKind, body func(*FunctionBuilder)) mir.BbName {
	saved := f.cur
	f.cur = nil
	bb := f.DeclareBlock()
	f.SetCurBlock(bb, kind)
	body(f)
	if f.cur != nil {
		panic(fmt.Sprintf("%s block %s: body did not finish its block", kind, f.cur.name))
	}
	f.cur = saved
	return bb
}

func (f *FunctionBuilder) current() *openBlock {
	if f.cur == nil {
		panic(fmt.Sprintf("function %s: there is no current block", f.name))
	}
	return f.cur
}

func (f *FunctionBuilder) push(s mir.Statement) {
	cur := f.current()
	cur.stmts = append(cur.stmts, s)
}

func (f *FunctionBuilder) finishBlock(t mir.Terminator) {
	cur := f.current()
	f.cur = nil
	if _, dup := f.blocks[cur.name]; dup {
		panic(fmt.Sprintf("finish block %s: already finished", cur.name))
	}
	f.blocks[cur.name] = mir.BasicBlock{Statements: cur.stmts, Term: t, Kind: cur.kind}
}

// finishWithNext ends the current block with the terminator built by mk and
// continues in a fresh block of the same kind.
func (f *FunctionBuilder) finishWithNext(mk func(next mir.BbName) mir.Terminator) {
	kind := f.current().kind
	next := f.DeclareBlock()
	f.finishBlock(mk(next))
	f.SetCurBlock(next, kind)
}

func (f *FunctionBuilder) function() mir.Function {
	return mir.Function{
		Locals: f.locals,
		Args:   f.args,
		Ret:    f.ret,
		Conv:   f.conv,
		Blocks: f.blocks,
		Start:  f.start,
	}
}
