package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"minimir/internal/layout"
	"minimir/internal/mir"
	"minimir/internal/progfile"
	"minimir/internal/types"
)

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <file.mmir>",
		Short: "Show the layout of every local, per function",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := startCommand(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cfg, err := resolveSettings(cmd)
			if err != nil {
				return err
			}
			p, err := progfile.ReadFile(args[0])
			if err != nil {
				return err
			}
			pal, err := newPalette(cmd)
			if err != nil {
				return err
			}
			return writeLayoutReport(cmd.OutOrStdout(), p, cfg.Target, pal.color)
		},
	}
}

type layoutRow struct {
	local, kind, size, align, meta string
}

var layoutColumns = layoutRow{local: "local", kind: "type", size: "size", align: "align", meta: "meta"}

// writeLayoutReport prints one table per function. Sizes use thousands separators.
func writeLayoutReport(w io.Writer, p *mir.Program, target layout.Target, styled bool) error {
	eng := layout.New(target)
	numbers := message.NewPrinter(language.English)
	header := lipgloss.NewStyle().Bold(true)
	if !styled {
		header = lipgloss.NewStyle()
	}

	fmt.Fprintf(w, "target %s (pointer size %d)\n", target.Name, target.PtrSize)
	for _, fn := range p.FunctionNames() {
		f, _ := p.Function(fn)
		title := fmt.Sprintf("fn %s", fn)
		if fn == p.Start {
			title += " [start]"
		}
		fmt.Fprintf(w, "\n%s\n", header.Render(title))

		rows := []layoutRow{layoutColumns}
		for i, ty := range f.Locals {
			rows = append(rows, describeLocal(eng, numbers, mir.LocalName(i), ty))
		}
		writeLayoutTable(w, rows)
	}
	return nil
}

func describeLocal(eng *layout.Engine, numbers *message.Printer, l mir.LocalName, ty types.Type) layoutRow {
	row := layoutRow{local: l.String(), kind: ty.Kind.String(), meta: eng.MetaKind(ty).String()}
	switch {
	case ty.IsInt():
		row.kind = ty.Int.String()
	case ty.IsPtr():
		// for pointers the interesting metadata is what the pointer carries
		row.meta = ty.Ptr.MetaKind().String()
	}
	strat := eng.Of(ty)
	switch strat.Kind {
	case types.StrategySlice:
		row.size = numbers.Sprintf("%d*len", strat.Size)
		row.align = numbers.Sprintf("%d", strat.Align)
	case types.StrategyTraitObject:
		row.size, row.align = "dynamic", "dynamic"
	default:
		size, align, ok := strat.SizeAlign()
		if !ok {
			row.size, row.align = "unsized", "unsized"
			break
		}
		row.size = numbers.Sprintf("%d", size)
		row.align = numbers.Sprintf("%d", align)
	}
	return row
}

func writeLayoutTable(w io.Writer, rows []layoutRow) {
	var widths [5]int
	for _, r := range rows {
		for i, cell := range r.cells() {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for _, r := range rows {
		cells := r.cells()
		parts := make([]string, len(cells))
		for i, cell := range cells {
			style := lipgloss.NewStyle().Width(widths[i])
			if i >= 2 && i <= 3 {
				style = style.Align(lipgloss.Right)
			}
			parts[i] = style.Render(cell)
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

func (r layoutRow) cells() [5]string {
	return [5]string{r.local, r.kind, r.size, r.align, r.meta}
}
