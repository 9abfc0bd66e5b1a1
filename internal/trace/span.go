package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

type tracerKey struct{}

type spanKey struct{}

// openSpan is the innermost open span carried by a context.
type openSpan struct {
	id   uint64
	site Site
}

// WithTracer attaches t to ctx. A nil t detaches tracing.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

func current(ctx context.Context) openSpan {
	if ctx == nil {
		return openSpan{}
	}
	sp, _ := ctx.Value(spanKey{}).(openSpan)
	return sp
}

// Span is an operation opened by Start. A nil or disabled span ignores End.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	site    Site
	started time.Time
}

// Start opens a span below the one carried by ctx. site is completed from the
// enclosing span, so a function span inside a file span knows its file. The
// returned context carries the new span; nothing is recorded when the tracer's
// level excludes scope, but the site still propagates.
func Start(ctx context.Context, scope Scope, name string, site Site) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	t := FromContext(ctx)
	outer := current(ctx)
	site = site.within(outer.site)
	if !t.Level().ShouldEmit(scope) {
		if site != outer.site {
			ctx = context.WithValue(ctx, spanKey{}, openSpan{id: outer.id, site: site})
		}
		return ctx, nil
	}

	s := &Span{
		tracer:  t,
		id:      spanIDs.Add(1),
		parent:  outer.id,
		scope:   scope,
		name:    name,
		site:    site,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:     s.started,
		Seq:      seq.Add(1),
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     name,
		Site:     site,
	})
	return context.WithValue(ctx, spanKey{}, openSpan{id: s.id, site: site}), s
}

// End closes the span with outcome and returns its duration.
func (s *Span) End(outcome string) time.Duration {
	if s == nil {
		return 0
	}
	return s.EndAt(s.site, outcome)
}

// EndAt closes the span reporting outcome at site, which is completed from the
// span's own site. Checks use it to point the end event at the violation.
func (s *Span) EndAt(site Site, outcome string) time.Duration {
	if s == nil {
		return 0
	}
	now := time.Now()
	dur := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Time:     now,
		Seq:      seq.Add(1),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Site:     site.within(s.site),
		Detail:   outcome,
		Elapsed:  dur,
	})
	return dur
}

// ID returns the span ID, 0 for a span that records nothing.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point records an instant event below the span carried by ctx.
func Point(ctx context.Context, scope Scope, name, detail string, site Site) {
	t := FromContext(ctx)
	if !t.Level().ShouldEmit(scope) {
		return
	}
	outer := current(ctx)
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      seq.Add(1),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: outer.id,
		Name:     name,
		Site:     site.within(outer.site),
		Detail:   detail,
	})
}
