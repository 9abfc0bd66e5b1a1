package mir

import (
	"context"
	"fmt"

	"minimir/internal/layout"
	"minimir/internal/trace"
	"minimir/internal/types"
)

// Validate checks that p is well-formed for target.
//
// The check is a single deterministic pass: functions in ascending name
// order, blocks in ascending name order, statements before the terminator,
// sub-expressions before the rule of the enclosing construct. It stops at the
// first violation and returns it as an *IllFormedError. A non-nil error of any
// other type means ctx was cancelled.
func Validate(ctx context.Context, p *Program, target layout.Target) error {
	ctx, span := trace.Start(ctx, trace.ScopePass, "validate", trace.Site{})

	c := &checker{
		ctx:    ctx,
		prog:   p,
		layout: layout.New(target),
		fn:     NoFnName,
	}
	err := c.program()
	if ill, ok := AsIllFormed(err); ok {
		span.EndAt(ill.site(), ill.Msg)
	} else if err != nil {
		span.End(err.Error())
	} else {
		span.End("ok")
	}
	return err
}

// site is where the violation was found, for the end event of the pass.
func (e *IllFormedError) site() trace.Site {
	if e.Fn == NoFnName {
		return trace.Site{}
	}
	if e.HasBlock {
		return trace.BlockSite(int32(e.Fn), int32(e.Block))
	}
	return trace.FnSite(int32(e.Fn))
}

type checker struct {
	ctx    context.Context
	prog   *Program
	layout *layout.Engine

	fn       FnName
	cur      *Function
	bb       BbName
	hasBlock bool
}

func (c *checker) fail(msg string) error {
	return &IllFormedError{Msg: msg, Fn: c.fn, Block: c.bb, HasBlock: c.hasBlock}
}

func (c *checker) program() error {
	if c.prog == nil {
		return c.fail("Program: start function does not exist")
	}
	start, ok := c.prog.Function(c.prog.Start)
	if !ok {
		return c.fail("Program: start function does not exist")
	}
	if len(start.Args) != 0 {
		return c.fail("Program: start function has arguments")
	}
	for _, name := range c.prog.FunctionNames() {
		if err := c.ctx.Err(); err != nil {
			return fmt.Errorf("validation interrupted: %w", err)
		}
		f := c.prog.Functions[name]
		if err := c.function(name, &f); err != nil {
			return err
		}
	}
	return nil
}

func (c *checker) function(name FnName, f *Function) (err error) {
	c.fn, c.cur, c.hasBlock = name, f, false
	ctx, span := trace.Start(c.ctx, trace.ScopeFunction, "fn:"+name.String(), trace.FnSite(int32(name)))
	defer func() {
		if err != nil {
			span.End("ill-formed")
		} else {
			span.End("ok")
		}
	}()

	for _, ty := range f.Locals {
		if err := c.checkType(ty); err != nil {
			return err
		}
		if !c.layout.IsSized(ty) {
			return c.fail("Function: unsized local variable")
		}
	}

	seen := make(map[LocalName]struct{}, len(f.Args)+1)
	for _, arg := range f.Args {
		if !f.HasLocal(arg) {
			return c.fail("Function: argument local does not exist")
		}
		if _, dup := seen[arg]; dup {
			return c.fail("Function: local used twice in signature")
		}
		seen[arg] = struct{}{}
	}
	if f.Ret != NoLocalName {
		if !f.HasLocal(f.Ret) {
			return c.fail("Function: return local does not exist")
		}
		if _, dup := seen[f.Ret]; dup {
			return c.fail("Function: local used twice in signature")
		}
	}

	start, ok := f.Block(f.Start)
	if !ok {
		return c.fail("Function: start block does not exist")
	}
	if start.Kind != BbRegular {
		return c.fail("Function: start block must be a regular block")
	}

	for _, bb := range f.BlockNames() {
		c.bb, c.hasBlock = bb, true
		block := f.Blocks[bb]
		trace.Point(ctx, trace.ScopeBlock, bb.String(), block.Kind.String(), trace.BlockSite(int32(name), int32(bb)))
		if err := c.block(&block); err != nil {
			return err
		}
	}
	c.hasBlock = false
	return nil
}

func (c *checker) block(b *BasicBlock) error {
	if !b.Kind.Valid() {
		return c.fail("BasicBlock: unknown block kind")
	}
	for i := range b.Statements {
		if err := c.statement(&b.Statements[i]); err != nil {
			return err
		}
	}
	return c.terminator(&b.Term, b.Kind)
}

func (c *checker) statement(s *Statement) error {
	switch s.Kind {
	case StmtAssign:
		dst, err := c.place(&s.Assign.Dst)
		if err != nil {
			return err
		}
		src, err := c.value(&s.Assign.Src)
		if err != nil {
			return err
		}
		if !types.Equal(dst, src) {
			return c.fail("Statement::Assign: destination and source type differ")
		}
	case StmtPlaceMention, StmtValidate, StmtDeinit:
		if _, err := c.place(&s.Place); err != nil {
			return err
		}
	case StmtSetDiscriminant:
		ty, err := c.place(&s.SetDiscriminant.Dst)
		if err != nil {
			return err
		}
		if ty.Kind != types.KindEnum {
			return c.fail("Statement::SetDiscriminant: not an enum")
		}
		if _, ok := ty.Enum.Variants[s.SetDiscriminant.Value]; !ok {
			return c.fail("Statement::SetDiscriminant: invalid discriminant")
		}
	case StmtStorageLive:
		if !c.cur.HasLocal(s.Local) {
			return c.fail("Statement::StorageLive: local does not exist")
		}
	case StmtStorageDead:
		if !c.cur.HasLocal(s.Local) {
			return c.fail("Statement::StorageDead: local does not exist")
		}
	default:
		return c.fail("Statement: unknown statement kind")
	}
	return nil
}
