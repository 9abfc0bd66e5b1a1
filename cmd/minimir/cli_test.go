package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"minimir/internal/build"
	"minimir/internal/diag"
	"minimir/internal/mir"
	"minimir/internal/progfile"
)

// runCLI executes a fresh command tree inside dir with colours disabled.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	s, ok := build.LookupSample(name)
	require.True(t, ok, name)
	path := filepath.Join(dir, name+progfile.Extension)
	require.NoError(t, progfile.WriteFile(path, s.Build()))
	return path
}

func TestSampleList(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "sample", "--list")
	require.NoError(t, err)
	for _, s := range build.Samples() {
		require.Contains(t, out, s.Name)
	}
	require.Contains(t, out, "ill-formed")
}

func TestSampleWritesFile(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "sample", "loop", "-o", "prog.mmir")
	require.NoError(t, err)
	require.Equal(t, "wrote loop to prog.mmir\n", out)

	p, err := progfile.ReadFile(filepath.Join(dir, "prog.mmir"))
	require.NoError(t, err)
	require.Contains(t, p.Functions, p.Start)
}

func TestSampleErrors(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "sample", "no-such-sample")
	require.ErrorContains(t, err, "unknown sample")

	_, err = runCLI(t, t.TempDir(), "sample")
	require.ErrorContains(t, err, "sample name required")
}

func TestCheckAcceptsWellFormedSamples(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, s := range build.Samples() {
		if s.WellFormed {
			files = append(files, filepath.Base(writeSample(t, dir, s.Name)))
		}
	}

	out, err := runCLI(t, dir, append([]string{"check", "--jobs", "2"}, files...)...)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(files)+1)
	for i, f := range files {
		require.Equal(t, f+": ok", lines[i], "results keep argument order")
	}
	require.Contains(t, out, "all well-formed")
}

func TestCheckReportsRejection(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "exit")
	writeSample(t, dir, "goto-cleanup")

	out, err := runCLI(t, dir, "check", "exit.mmir", "goto-cleanup.mmir")
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, "exit.mmir: ok\n")
	require.Contains(t, out,
		"goto-cleanup.mmir: ill-formed: Terminator: next block has the wrong block kind (fn 0, bb0) [WF2008]\n")
	require.Contains(t, out, "2 checked, 1 rejected")
}

func TestCheckQuietAndUnreadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.mmir"), []byte("not msgpack at all"), 0o644))

	out, err := runCLI(t, dir, "--quiet", "check", "junk.mmir", "missing.mmir")
	require.ErrorIs(t, err, errRejected)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, "quiet drops the summary")
	require.True(t, strings.HasPrefix(lines[0], "junk.mmir: error: "), lines[0])
	require.True(t, strings.HasPrefix(lines[1], "missing.mmir: error: "), lines[1])
}

func TestCheckSummaryCountsUnreadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.mmir"), []byte("not msgpack at all"), 0o644))

	out, err := runCLI(t, dir, "check", "junk.mmir", "missing.mmir")
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, "2 checked, 2 rejected (2 unreadable)")
}

func TestDumpAndLayout(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "slice-index")

	out, err := runCLI(t, dir, "dump", "slice-index.mmir")
	require.NoError(t, err)
	require.Contains(t, out, "[start]\n")
	require.Contains(t, out, "fn f0(")

	out, err = runCLI(t, dir, "layout", "slice-index.mmir")
	require.NoError(t, err)
	require.Contains(t, out, "target basic64 (pointer size 8)")
	require.Contains(t, out, "fn f0 [start]")
	require.Contains(t, out, "local")
	require.Contains(t, out, "meta=len")
}

func TestConfigSelectsTarget(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "exit")
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName),
		[]byte("[target]\nname = \"tiny\"\nptr_size = 4\n\n[check]\njobs = 1\n"), 0o644))
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))

	out, err := runCLI(t, sub, "layout", filepath.Join("..", "exit.mmir"))
	require.NoError(t, err)
	require.Contains(t, out, "target tiny (pointer size 4)")
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "exit")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[target]\nptr_size = 3\n"), 0o644))
	_, err := runCLI(t, dir, "--config", bad, "check", "exit.mmir")
	require.ErrorContains(t, err, "ptr_size")

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[check]\nworkers = 2\n"), 0o644))
	_, err = runCLI(t, dir, "--config", unknown, "check", "exit.mmir")
	require.ErrorContains(t, err, "unknown key")
}

func TestTraceOutput(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "exit")
	tracePath := filepath.Join(dir, "trace.log")

	_, err := runCLI(t, dir, "--trace", tracePath, "--trace-level", "detail", "check", "exit.mmir")
	require.NoError(t, err)
	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	require.Contains(t, string(data), "check_file")
	require.Contains(t, string(data), "validate")
}

func TestVersionJSON(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "version", "--format", "json", "--full")
	require.NoError(t, err)
	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Equal(t, "minimir", payload.Tool)
	require.NotContains(t, payload.Version, "\x1b")
	require.Equal(t, "unknown", payload.GitCommit)

	_, err = runCLI(t, t.TempDir(), "version", "--format", "xml")
	require.Error(t, err)
}

func TestWFCodeFamilies(t *testing.T) {
	for msg, want := range map[string]diag.Code{
		"Program: start function does not exist":                 diag.WFProgram,
		"Function: unsized local variable":                       diag.WFFunction,
		"Type::Slice: unsized element type":                      diag.WFType,
		"Discriminator::Known: invalid discriminant":             diag.WFType,
		"Statement::Assign: destination and source type differ":  diag.WFStatement,
		"PlaceExpr::Index: invalid index type":                   diag.WFPlace,
		"Constant::Int: value does not fit in type":              diag.WFValue,
		"BinOp::Int: invalid left type":                          diag.WFValue,
		"Terminator: next block does not exist":                  diag.WFTerminator,
		"Terminator::Return has to be called in a regular block": diag.WFBlockKind,
		"Terminator: unwinding is not allowed in a catch block":  diag.WFBlockKind,
		"BasicBlock: unknown block kind":                         diag.WFBlockKind,
	} {
		ill := &mir.IllFormedError{Msg: msg, Fn: 0, Block: 0, HasBlock: true}
		require.Equal(t, want, wfCode(ill), msg)
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	got := truncate("a/very/long/path/to/program.mmir", 12)
	require.True(t, strings.HasSuffix(got, "..."), got)
	require.LessOrEqual(t, len(got), 12)
}

func TestCheckTimingsAndProfiles(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "exit")
	cpu := filepath.Join(dir, "cpu.pprof")

	out, err := runCLI(t, dir, "--cpu-profile", cpu, "check", "--timings", "exit.mmir")
	require.NoError(t, err)
	require.Contains(t, out, "timings:\n")
	require.Contains(t, out, "exit.mmir")
	require.Contains(t, out, "// ok")

	info, err := os.Stat(cpu)
	require.NoError(t, err)
	require.NotZero(t, info.Size())
}

func TestCheckSchemaMismatchHasNote(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "old.mmir"))
	require.NoError(t, err)
	require.NoError(t, msgpack.NewEncoder(f).Encode(map[string]any{"magic": "minimir", "schema": progfile.SchemaVersion + 1}))
	require.NoError(t, f.Close())

	out, err := runCLI(t, dir, "check", "old.mmir")
	require.ErrorIs(t, err, errRejected)
	require.Contains(t, out, "unsupported program file schema")
	require.Contains(t, out, "  note: this build reads schema 1; regenerate the file\n")
	require.Contains(t, out, diag.IOSchemaVersion.String())
}
