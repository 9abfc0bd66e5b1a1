package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

var processStart = time.Now()

// FormatEvent renders ev as one line.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time      string  `json:"time"`
	Seq       uint64  `json:"seq"`
	Kind      string  `json:"kind"`
	Scope     string  `json:"scope"`
	SpanID    uint64  `json:"span_id,omitempty"`
	ParentID  uint64  `json:"parent_id,omitempty"`
	Name      string  `json:"name"`
	File      string  `json:"file,omitempty"`
	Fn        *int32  `json:"fn,omitempty"`
	Block     *int32  `json:"block,omitempty"`
	Detail    string  `json:"detail,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	j := jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		File:     ev.Site.File,
		Detail:   ev.Detail,
	}
	if ev.Site.HasFn {
		fn := ev.Site.Fn
		j.Fn = &fn
	}
	if ev.Site.HasBlock {
		bb := ev.Site.Block
		j.Block = &bb
	}
	if ev.Kind == KindSpanEnd {
		j.ElapsedMS = millis(ev.Elapsed)
	}
	data, err := json.Marshal(j)
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// formatText renders: [elapsed] [indent]→/←/• name @site (detail) 1.234ms
func formatText(ev *Event) []byte {
	var sb strings.Builder

	since := ev.Time.Sub(processStart)
	if ev.Time.IsZero() || since < 0 {
		since = 0
	}
	fmt.Fprintf(&sb, "[%9.3fms] ", millis(since))
	sb.WriteString(strings.Repeat("  ", indentFor(ev.Scope)))

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("→ ")
	case KindSpanEnd:
		sb.WriteString("← ")
	case KindPoint:
		sb.WriteString("• ")
	}
	sb.WriteString(ev.Name)
	if !ev.Site.IsZero() {
		sb.WriteString(" @")
		sb.WriteString(ev.Site.String())
	}
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}
	if ev.Kind == KindSpanEnd {
		fmt.Fprintf(&sb, " %.3fms", millis(ev.Elapsed))
	}
	sb.WriteString("\n")
	return []byte(sb.String())
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func indentFor(s Scope) int {
	if s <= ScopeDriver {
		return 0
	}
	return int(s - ScopeDriver)
}
