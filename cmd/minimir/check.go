package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"minimir/internal/diag"
	"minimir/internal/layout"
	"minimir/internal/mir"
	"minimir/internal/observ"
	"minimir/internal/progfile"
	"minimir/internal/trace"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] <file.mmir>...",
		Short: "Check program files for well-formedness",
		Long:  `Decode each program file and run the well-formedness checker on it. The exit status is 1 if any file is rejected or cannot be read.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=from config, then GOMAXPROCS)")
	cmd.Flags().Int("max-diagnostics", 100, "maximum number of diagnostics to collect")
	cmd.Flags().Bool("timings", false, "show per-file timing information")
	return cmd
}

// fileResult is the verdict for one input; exactly one of diag or ok is set.
type fileResult struct {
	path string
	ok   bool
	diag diag.Diagnostic
}

func runCheck(cmd *cobra.Command, args []string) error {
	cleanup, err := startCommand(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs < 0 {
		return fmt.Errorf("--jobs must not be negative")
	}
	if jobs == 0 {
		jobs = cfg.workers()
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	pal, err := newPalette(cmd)
	if err != nil {
		return err
	}
	var timer *observ.Timer
	if timings {
		timer = observ.NewTimer()
	}

	ctx, span := trace.Start(cmd.Context(), trace.ScopeDriver, "check", trace.Site{})

	bag := diag.NewBag(maxDiagnostics)
	results, err := checkFiles(ctx, args, cfg.Target, jobs, diag.BagReporter{Bag: bag}, timer)
	if err != nil {
		span.End(err.Error())
		return err
	}
	rejected := 0
	for _, r := range results {
		if !r.ok {
			rejected++
		}
	}
	span.End(fmt.Sprintf("target %s, %d checked, %d rejected", cfg.Target.Name, len(results), rejected))

	out := cmd.OutOrStdout()
	for _, r := range results {
		printResult(out, pal, r)
	}
	if !quiet {
		printCheckSummary(out, pal, len(results), rejected, bag)
	}
	if timer != nil {
		fmt.Fprint(out, timer.Summary())
	}
	if rejected > 0 {
		return errRejected
	}
	return nil
}

// checkFiles validates every file with at most jobs workers. Results keep the
// argument order; every rejection is also reported to rep. timer may be nil.
func checkFiles(ctx context.Context, paths []string, target layout.Target, jobs int, rep diag.Reporter, timer *observ.Timer) ([]fileResult, error) {
	results := make([]fileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(paths))))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			idx := timer.Begin(path)
			r, err := checkFile(gctx, path, target)
			if err != nil {
				timer.End(idx, "cancelled")
				return err
			}
			if r.ok {
				timer.End(idx, "ok")
			} else {
				timer.End(idx, r.diag.Code.ID())
				rep.Report(r.diag)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// checkFile returns an error only for cancellation; every other failure is a verdict.
func checkFile(ctx context.Context, path string, target layout.Target) (fileResult, error) {
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check_file", trace.FileSite(path))

	r := fileResult{path: path}
	p, err := progfile.ReadFile(path)
	if err != nil {
		r.diag = readDiagnostic(path, err)
		span.End(r.diag.Message)
		return r, nil
	}
	if err := mir.Validate(ctx, p, target); err != nil {
		ill, ok := mir.AsIllFormed(err)
		if !ok {
			span.End(err.Error())
			return r, err
		}
		r.diag = illFormedDiagnostic(path, ill)
		span.End(ill.Msg)
		return r, nil
	}
	r.ok = true
	span.End("ok")
	return r, nil
}

func readDiagnostic(path string, err error) diag.Diagnostic {
	code := diag.IOReadFailed
	switch {
	case errors.Is(err, progfile.ErrSchema):
		code = diag.IOSchemaVersion
	case errors.Is(err, progfile.ErrNotProgramFile):
		code = diag.IODecodeFailed
	case strings.Contains(err.Error(), "decode program"):
		code = diag.IODecodeFailed
	}
	d := diag.New(code, diag.FileLocation(path), err.Error())
	if code == diag.IOSchemaVersion {
		d = d.WithNote(fmt.Sprintf("this build reads schema %d; regenerate the file", progfile.SchemaVersion))
	}
	return d
}

func illFormedDiagnostic(path string, ill *mir.IllFormedError) diag.Diagnostic {
	loc := diag.FileLocation(path)
	if ill.Fn != mir.NoFnName {
		loc.Fn = int32(ill.Fn)
		if ill.HasBlock {
			loc.Block = int32(ill.Block)
		}
	}
	return diag.IllFormed(wfCode(ill), loc, ill.Msg)
}

// wfCode maps the rule family of a rejection to its diagnostic code.
func wfCode(ill *mir.IllFormedError) diag.Code {
	family := ill.Family()
	head, _, _ := strings.Cut(family, "::")
	switch head {
	case "Program":
		return diag.WFProgram
	case "Function":
		return diag.WFFunction
	case "Type", "Discriminator", "PointeeInfo":
		return diag.WFType
	case "Statement":
		return diag.WFStatement
	case "PlaceExpr":
		return diag.WFPlace
	case "ValueExpr", "Constant", "UnOp", "BinOp", "Cast", "ArgumentExpr":
		return diag.WFValue
	case "BasicBlock":
		return diag.WFBlockKind
	case "Terminator":
		if isBlockKindRule(ill.Msg) {
			return diag.WFBlockKind
		}
		return diag.WFTerminator
	}
	return diag.UnknownCode
}

func isBlockKindRule(msg string) bool {
	for _, marker := range []string{"block kind", "has to be called in", "catch block", "terminate block", "only allowed in"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func printResult(out io.Writer, pal palette, r fileResult) {
	if r.ok {
		fmt.Fprintf(out, "%s: %s\n", pal.fitPath(r.path, 4), pal.ok.Sprint("ok"))
		return
	}
	d := r.diag
	if d.Stage == diag.StageRead {
		fmt.Fprintf(out, "%s: %s %s\n", pal.fitPath(r.path, len(d.Message)+20), pal.bad.Sprint(d.Stage.Label()+":"), d.Message)
		printNotes(out, pal, d)
		return
	}
	fmt.Fprintf(out, "%s: %s %s%s %s\n",
		pal.fitPath(r.path, len(d.Message)+40),
		pal.bad.Sprint(d.Stage.Label()+":"), d.Message,
		locationSuffix(d.Primary),
		pal.code.Sprintf("[%s]", d.Code.ID()))
}

func printNotes(out io.Writer, pal palette, d diag.Diagnostic) {
	for _, n := range d.Notes {
		fmt.Fprintf(out, "  %s %s\n", pal.dim.Sprint("note:"), n.Msg)
	}
}

// locationSuffix renders " (fn N, bbM)", " (fn N)" or nothing.
func locationSuffix(loc diag.Location) string {
	switch {
	case loc.Fn < 0:
		return ""
	case loc.Block < 0:
		return fmt.Sprintf(" (fn %d)", loc.Fn)
	default:
		return fmt.Sprintf(" (fn %d, bb%d)", loc.Fn, loc.Block)
	}
}

// printCheckSummary counts rejections per code; only the first max-diagnostics
// rejections are broken down.
func printCheckSummary(out io.Writer, pal palette, total, rejected int, bag *diag.Bag) {
	if rejected == 0 {
		fmt.Fprintln(out, pal.dim.Sprintf("%d checked, all well-formed", total))
		return
	}
	bag.Sort()
	counts := make(map[diag.Code]int)
	var order []diag.Code
	for _, d := range bag.Items() {
		if counts[d.Code] == 0 {
			order = append(order, d.Code)
		}
		counts[d.Code]++
	}
	line := fmt.Sprintf("%d checked, %d rejected", total, rejected)
	if unreadable := bag.Count(diag.StageRead); unreadable > 0 {
		line += fmt.Sprintf(" (%d unreadable)", unreadable)
	}
	fmt.Fprintln(out, pal.dim.Sprint(line))
	for _, code := range order {
		fmt.Fprintln(out, pal.dim.Sprintf("  %dx %s", counts[code], code))
	}
}
