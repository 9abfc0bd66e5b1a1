package mir

import (
	"fmt"
	"maps"
	"slices"
)

type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermSwitch
	TermUnreachable
	TermIntrinsic
	TermCall
	TermReturn
	TermStartUnwind
	TermStopUnwind
	TermResumeUnwind
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermGoto:
		return "goto"
	case TermSwitch:
		return "switch"
	case TermUnreachable:
		return "unreachable"
	case TermIntrinsic:
		return "intrinsic"
	case TermCall:
		return "call"
	case TermReturn:
		return "return"
	case TermStartUnwind:
		return "start_unwind"
	case TermStopUnwind:
		return "stop_unwind"
	case TermResumeUnwind:
		return "resume_unwind"
	default:
		return fmt.Sprintf("TermKind(%d)", k)
	}
}

type Terminator struct {
	Kind TermKind

	Goto        GotoTerm
	Switch      SwitchTerm
	Intrinsic   IntrinsicTerm
	Call        CallTerm
	StartUnwind StartUnwindTerm
	StopUnwind  StopUnwindTerm
}

type GotoTerm struct {
	Target BbName
}

type SwitchTerm struct {
	Value    ValueExpr
	Cases    map[int64]BbName
	Fallback BbName
}

// SortedCases returns the case values in ascending order.
func (s *SwitchTerm) SortedCases() []int64 {
	return slices.Sorted(maps.Keys(s.Cases))
}

type IntrinsicKind uint8

const (
	IntrinsicExit IntrinsicKind = iota
	IntrinsicAbort
	IntrinsicAssume
	IntrinsicPrintStdout
	IntrinsicPrintStderr
	IntrinsicAllocate
	IntrinsicDeallocate
	IntrinsicSpawn
	IntrinsicJoin
	IntrinsicRawEq
	IntrinsicAtomicStore
	IntrinsicAtomicLoad
	IntrinsicAtomicCompareExchange
	IntrinsicAtomicFetchAndOp
	IntrinsicLockCreate
	IntrinsicLockAcquire
	IntrinsicLockRelease
	IntrinsicPointerExposeProvenance
	IntrinsicPointerWithExposedProvenance
	IntrinsicGetUnwindPayload
)

var intrinsicNames = [...]string{
	IntrinsicExit:                         "exit",
	IntrinsicAbort:                        "abort",
	IntrinsicAssume:                       "assume",
	IntrinsicPrintStdout:                  "print",
	IntrinsicPrintStderr:                  "eprint",
	IntrinsicAllocate:                     "allocate",
	IntrinsicDeallocate:                   "deallocate",
	IntrinsicSpawn:                        "spawn",
	IntrinsicJoin:                         "join",
	IntrinsicRawEq:                        "raw_eq",
	IntrinsicAtomicStore:                  "atomic_store",
	IntrinsicAtomicLoad:                   "atomic_load",
	IntrinsicAtomicCompareExchange:        "atomic_compare_exchange",
	IntrinsicAtomicFetchAndOp:             "atomic_fetch",
	IntrinsicLockCreate:                   "lock_create",
	IntrinsicLockAcquire:                  "lock_acquire",
	IntrinsicLockRelease:                  "lock_release",
	IntrinsicPointerExposeProvenance:      "expose_provenance",
	IntrinsicPointerWithExposedProvenance: "with_exposed_provenance",
	IntrinsicGetUnwindPayload:             "get_unwind_payload",
}

func (k IntrinsicKind) String() string {
	if int(k) < len(intrinsicNames) {
		return intrinsicNames[k]
	}
	return fmt.Sprintf("IntrinsicKind(%d)", k)
}

// Diverges reports whether the intrinsic never continues to a next block.
func (k IntrinsicKind) Diverges() bool {
	return k == IntrinsicExit || k == IntrinsicAbort
}

// IntrinsicOp is an intrinsic; FetchOp is the operation of AtomicFetchAndOp.
type IntrinsicOp struct {
	Kind    IntrinsicKind
	FetchOp IntBinOp
}

// IntrinsicTerm invokes an intrinsic. Next is NoBbName for Exit and Abort.
type IntrinsicTerm struct {
	Op   IntrinsicOp
	Args []ValueExpr
	Ret  PlaceExpr
	Next BbName
}

// CallTerm calls Callee. Next is NoBbName for calls that never return,
// Unwind is NoBbName for calls that do not unwind into this function.
type CallTerm struct {
	Callee ValueExpr
	Conv   CallingConvention
	Args   []ArgumentExpr
	Ret    PlaceExpr
	Next   BbName
	Unwind BbName
}

// StartUnwindTerm begins unwinding with Payload and jumps to Cleanup.
type StartUnwindTerm struct {
	Payload ValueExpr
	Cleanup BbName
}

// StopUnwindTerm ends the in-flight unwind and continues at Next.
type StopUnwindTerm struct {
	Next BbName
}

// Edge is a control-flow edge out of a block.
type Edge struct {
	Target BbName
	Unwind bool
}

// Successors lists the edges of t in a fixed order: switch cases by value,
// then the fallback; call next before call unwind.
func (t *Terminator) Successors() []Edge {
	switch t.Kind {
	case TermGoto:
		return []Edge{{Target: t.Goto.Target}}
	case TermSwitch:
		edges := make([]Edge, 0, len(t.Switch.Cases)+1)
		for _, v := range t.Switch.SortedCases() {
			edges = append(edges, Edge{Target: t.Switch.Cases[v]})
		}
		return append(edges, Edge{Target: t.Switch.Fallback})
	case TermIntrinsic:
		if t.Intrinsic.Next == NoBbName {
			return nil
		}
		return []Edge{{Target: t.Intrinsic.Next}}
	case TermCall:
		var edges []Edge
		if t.Call.Next != NoBbName {
			edges = append(edges, Edge{Target: t.Call.Next})
		}
		if t.Call.Unwind != NoBbName {
			edges = append(edges, Edge{Target: t.Call.Unwind, Unwind: true})
		}
		return edges
	case TermStartUnwind:
		return []Edge{{Target: t.StartUnwind.Cleanup, Unwind: true}}
	case TermStopUnwind:
		return []Edge{{Target: t.StopUnwind.Next}}
	default:
		return nil
	}
}
