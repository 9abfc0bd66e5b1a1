package mir

import "minimir/internal/types"

func (c *checker) terminator(t *Terminator, kind BbKind) error {
	if t.Kind == TermNone {
		return c.fail("Terminator: block is not terminated")
	}
	if kind == BbTerminate && len(t.Successors()) > 0 {
		return c.fail("Terminator: terminate block cannot have successors")
	}

	switch t.Kind {
	case TermGoto:
		return c.next(t.Goto.Target, kind)

	case TermSwitch:
		ty, err := c.value(&t.Switch.Value)
		if err != nil {
			return err
		}
		if ty.Kind != types.KindInt {
			return c.fail("Terminator::Switch: switch is not Int")
		}
		cases := t.Switch.SortedCases()
		for _, v := range cases {
			if !ty.Int.CanRepresent(v) {
				return c.fail("Terminator::Switch: case value does not fit in switch type")
			}
		}
		for _, v := range cases {
			if err := c.next(t.Switch.Cases[v], kind); err != nil {
				return err
			}
		}
		return c.next(t.Switch.Fallback, kind)

	case TermUnreachable:
		return nil

	case TermIntrinsic:
		in := &t.Intrinsic
		for i := range in.Args {
			if _, err := c.value(&in.Args[i]); err != nil {
				return err
			}
		}
		if _, err := c.place(&in.Ret); err != nil {
			return err
		}
		if in.Op.Kind.Diverges() {
			if in.Next != NoBbName {
				return c.fail("Terminator::Intrinsic: Exit and Abort have no next block")
			}
			return nil
		}
		if in.Next == NoBbName {
			return c.fail("Terminator::Intrinsic: missing next block")
		}
		return c.next(in.Next, kind)

	case TermCall:
		call := &t.Call
		callee, err := c.value(&call.Callee)
		if err != nil {
			return err
		}
		if callee.Kind != types.KindPtr || callee.Ptr.Kind != types.PtrFn {
			return c.fail("Terminator::Call: invalid callee type")
		}
		for i := range call.Args {
			if err := c.argument(&call.Args[i]); err != nil {
				return err
			}
		}
		if _, err := c.place(&call.Ret); err != nil {
			return err
		}
		if call.Next != NoBbName {
			if kind != BbRegular && kind != BbCatch {
				return c.fail("Terminator::Call: returning calls are only allowed in regular and catch blocks")
			}
			if err := c.next(call.Next, kind); err != nil {
				return err
			}
		}
		if call.Unwind != NoBbName {
			return c.unwind(call.Unwind, kind)
		}
		return nil

	case TermReturn:
		if kind != BbRegular {
			return c.fail("Terminator::Return has to be called in a regular block")
		}
		return nil

	case TermStartUnwind:
		if kind == BbCatch {
			return c.fail("Terminator: unwinding is not allowed in a catch block")
		}
		if kind != BbRegular {
			return c.fail("Terminator::StartUnwind has to be called in a regular block")
		}
		payload, err := c.value(&t.StartUnwind.Payload)
		if err != nil {
			return err
		}
		if payload.Kind != types.KindPtr || payload.Ptr.MetaKind().IsWide() {
			return c.fail("Terminator::StartUnwind: payload must be a thin pointer")
		}
		return c.unwind(t.StartUnwind.Cleanup, kind)

	case TermStopUnwind:
		target, ok := c.cur.Block(t.StopUnwind.Next)
		if !ok {
			return c.fail("Terminator: next block does not exist")
		}
		if target.Kind != BbRegular {
			return c.fail("Terminator: next block has the wrong block kind")
		}
		return nil

	case TermResumeUnwind:
		if kind != BbCleanup {
			return c.fail("Terminator::ResumeUnwind: has to be called in cleanup block")
		}
		return nil

	default:
		return c.fail("Terminator: block is not terminated")
	}
}

// next checks a normal edge: the target exists and keeps the block kind.
func (c *checker) next(target BbName, kind BbKind) error {
	b, ok := c.cur.Block(target)
	if !ok {
		return c.fail("Terminator: next block does not exist")
	}
	if b.Kind != kind {
		return c.fail("Terminator: next block has the wrong block kind")
	}
	return nil
}

// unwind checks an unwind edge. Regular blocks unwind into cleanup or catch
// blocks; cleanup blocks unwind into cleanup or terminate blocks.
func (c *checker) unwind(target BbName, kind BbKind) error {
	if kind == BbCatch {
		return c.fail("Terminator: unwinding is not allowed in a catch block")
	}
	b, ok := c.cur.Block(target)
	if !ok {
		return c.fail("Terminator: unwind block does not exist")
	}
	switch {
	case b.Kind == BbCleanup:
		return nil
	case kind == BbRegular && b.Kind == BbCatch:
		return nil
	case kind == BbCleanup && b.Kind == BbTerminate:
		return nil
	default:
		return c.fail("Terminator: unwind block has the wrong block kind")
	}
}
