package exec

import (
	"context"
	"errors"
	"fmt"

	"minimir/internal/layout"
	"minimir/internal/mir"
	"minimir/internal/trace"
)

// ErrNoExecutor is returned by Run for accepted programs when ex is nil.
var ErrNoExecutor = errors.New("no executor configured")

// Run validates p for target and, if it is well-formed, executes it with ex.
// Rejected programs never reach the executor and yield an IllFormed outcome.
func Run(ctx context.Context, p *mir.Program, target layout.Target, ex Executor) (Outcome, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run", trace.Site{})

	out, err := run(ctx, p, target, ex)
	if err != nil {
		span.End(err.Error())
		return Outcome{}, err
	}
	span.End(out.String())
	return out, nil
}

func run(ctx context.Context, p *mir.Program, target layout.Target, ex Executor) (Outcome, error) {
	if err := mir.Validate(ctx, p, target); err != nil {
		ill, ok := mir.AsIllFormed(err)
		if !ok {
			return Outcome{}, err
		}
		return Outcome{Kind: IllFormed, Msg: ill.Msg, Fn: ill.Fn, Block: ill.Block, HasBlock: ill.HasBlock}, nil
	}
	if ex == nil {
		return Outcome{}, ErrNoExecutor
	}
	out, err := ex.Execute(ctx, p)
	if err != nil {
		return Outcome{}, fmt.Errorf("execute: %w", err)
	}
	if out.Kind == IllFormed {
		return Outcome{}, fmt.Errorf("execute: executor reported an ill-formed verdict for an accepted program: %s", out.Msg)
	}
	return out, nil
}
