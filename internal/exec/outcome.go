// Package exec defines what running a well-formed program can end in and
// the pipeline that only hands checked programs to an executor.
package exec

import (
	"context"
	"fmt"

	"minimir/internal/mir"
)

// OutcomeKind identifies how an execution ended.
type OutcomeKind uint8

// Stable outcome kinds - do not reorder.
const (
	// Stop is normal termination, for example through the exit intrinsic.
	Stop OutcomeKind = iota
	// UndefinedBehavior means the execution hit undefined behavior; Msg says which.
	UndefinedBehavior
	// Abort is termination through the abort intrinsic.
	Abort
	// IllFormed means the program was rejected before it ran; Msg is the rule.
	IllFormed
)

func (k OutcomeKind) String() string {
	switch k {
	case Stop:
		return "stop"
	case UndefinedBehavior:
		return "undefined behavior"
	case Abort:
		return "abort"
	case IllFormed:
		return "ill-formed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", k)
	}
}

// Outcome is the verdict for one program.
type Outcome struct {
	Kind OutcomeKind
	Msg  string
	// Fn and Block locate an IllFormed verdict; HasBlock as in mir.IllFormedError.
	Fn       mir.FnName
	Block    mir.BbName
	HasBlock bool
}

func (o Outcome) String() string {
	if o.Msg == "" {
		return o.Kind.String()
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Msg)
}

// Executor runs a program that has already been accepted by mir.Validate.
// A returned error is an infrastructure failure, not a verdict.
type Executor interface {
	Execute(ctx context.Context, p *mir.Program) (Outcome, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, p *mir.Program) (Outcome, error)

func (f ExecutorFunc) Execute(ctx context.Context, p *mir.Program) (Outcome, error) {
	return f(ctx, p)
}
