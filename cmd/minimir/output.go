package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type palette struct {
	ok    *color.Color
	bad   *color.Color
	dim   *color.Color
	code  *color.Color
	color bool
	width int // 0 means no truncation
}

// newPalette reads --color and prepares colours for the command's stdout.
func newPalette(cmd *cobra.Command) (palette, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return palette{}, fmt.Errorf("failed to get color flag: %w", err)
	}
	tty := cmd.OutOrStdout() == os.Stdout && isTerminal(os.Stdout)
	var useColor bool
	switch strings.ToLower(strings.TrimSpace(colorFlag)) {
	case "", "auto":
		useColor = tty
	case "on":
		useColor = true
	case "off":
		useColor = false
	default:
		return palette{}, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}

	p := palette{
		ok:    color.New(color.FgGreen, color.Bold),
		bad:   color.New(color.FgRed, color.Bold),
		dim:   color.New(color.Faint),
		code:  color.New(color.FgYellow),
		color: useColor,
	}
	for _, c := range []*color.Color{p.ok, p.bad, p.dim, p.code} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	if tty {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			p.width = w
		}
	}
	return p, nil
}

// fitPath shortens path so that a line of reserve extra cells still fits the terminal.
func (p palette) fitPath(path string, reserve int) string {
	if p.width <= 0 {
		return path
	}
	width := p.width - reserve
	if width < 8 {
		width = 8
	}
	return truncate(path, width)
}

func truncate(value string, width int) string {
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
