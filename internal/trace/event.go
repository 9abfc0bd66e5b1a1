package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind represents the type of trace event.
type Kind uint8

const (
	// KindSpanBegin marks the start of a logical operation.
	KindSpanBegin Kind = iota + 1
	// KindSpanEnd marks the end of a logical operation.
	KindSpanEnd
	// KindPoint represents an instant event.
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	// ScopeDriver covers CLI commands and per-file work.
	ScopeDriver Scope = iota + 1
	// ScopePass covers whole-program passes such as validation.
	ScopePass
	// ScopeFunction covers per-function processing.
	ScopeFunction
	// ScopeBlock covers per-block processing.
	ScopeBlock
)

func (s Scope) String() string {
	switch s {
	case ScopeDriver:
		return "driver"
	case ScopePass:
		return "pass"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Site places an event in the program being checked. The zero Site is not
// tied to any file, function or block.
type Site struct {
	File     string
	Fn       int32
	Block    int32
	HasFn    bool
	HasBlock bool
}

// FileSite is the site of a whole program file.
func FileSite(path string) Site { return Site{File: path} }

// FnSite is the site of function fn.
func FnSite(fn int32) Site { return Site{Fn: fn, HasFn: true} }

// BlockSite is the site of block bb in function fn.
func BlockSite(fn, bb int32) Site {
	return Site{Fn: fn, Block: bb, HasFn: true, HasBlock: true}
}

// IsZero reports whether s carries no location.
func (s Site) IsZero() bool {
	return s.File == "" && !s.HasFn && !s.HasBlock
}

// within fills the parts s leaves unknown from the enclosing site.
func (s Site) within(outer Site) Site {
	if s.File == "" {
		s.File = outer.File
	}
	if !s.HasFn && outer.HasFn {
		s.Fn, s.HasFn = outer.Fn, true
		if !s.HasBlock && outer.HasBlock {
			s.Block, s.HasBlock = outer.Block, true
		}
	}
	return s
}

// String renders s as file:fN:bbM, leaving out unknown parts.
func (s Site) String() string {
	parts := make([]string, 0, 3)
	if s.File != "" {
		parts = append(parts, s.File)
	}
	if s.HasFn {
		parts = append(parts, fmt.Sprintf("f%d", s.Fn))
	}
	if s.HasBlock {
		parts = append(parts, fmt.Sprintf("bb%d", s.Block))
	}
	return strings.Join(parts, ":")
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // global emission order
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // e.g. "check", "validate", "fn:f0"
	Site     Site
	Detail   string        // outcome of a span, or the note of a point
	Elapsed  time.Duration // set on span ends
}
