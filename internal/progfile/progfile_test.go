package progfile_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"minimir/internal/build"
	"minimir/internal/layout"
	"minimir/internal/mir"
	"minimir/internal/progfile"
)

func dump(t *testing.T, p *mir.Program) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, mir.DumpProgram(&sb, p, layout.Default()))
	return sb.String()
}

func verdict(p *mir.Program) string {
	err := mir.Validate(context.Background(), p, layout.Default())
	if err == nil {
		return "ok"
	}
	return err.Error()
}

func TestRoundTripPreservesSamples(t *testing.T) {
	for _, s := range build.Samples() {
		t.Run(s.Name, func(t *testing.T) {
			orig := s.Build()

			var buf bytes.Buffer
			require.NoError(t, progfile.Encode(&buf, orig))

			got, err := progfile.Decode(&buf)
			require.NoError(t, err)
			require.Equal(t, dump(t, orig), dump(t, got))
			require.Equal(t, verdict(orig), verdict(got))
		})
	}
}

func TestWriteAndReadFile(t *testing.T) {
	s, ok := build.LookupSample("loop")
	require.True(t, ok)
	path := filepath.Join(t.TempDir(), "nested", "loop"+progfile.Extension)

	require.NoError(t, progfile.WriteFile(path, s.Build()))
	got, err := progfile.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, dump(t, s.Build()), dump(t, got))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".mmir-*"))
	require.NoError(t, err)
	require.Empty(t, matches, "temporary files left behind")
}

func TestDecodeRejectsForeignData(t *testing.T) {
	_, err := progfile.Decode(strings.NewReader(""))
	require.ErrorIs(t, err, progfile.ErrNotProgramFile)

	var buf bytes.Buffer
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(map[string]any{"magic": "other", "schema": 1}))
	_, err = progfile.Decode(&buf)
	require.ErrorIs(t, err, progfile.ErrNotProgramFile)
}

func TestDecodeRejectsOtherSchema(t *testing.T) {
	var buf bytes.Buffer
	header := map[string]any{"magic": "minimir", "schema": progfile.SchemaVersion + 1}
	require.NoError(t, msgpack.NewEncoder(&buf).Encode(header))

	_, err := progfile.Decode(&buf)
	require.ErrorIs(t, err, progfile.ErrSchema)
}

func TestEncodeNil(t *testing.T) {
	require.Error(t, progfile.Encode(&bytes.Buffer{}, nil))
}

func TestReadFileMissing(t *testing.T) {
	_, err := progfile.ReadFile(filepath.Join(t.TempDir(), "absent.mmir"))
	require.Error(t, err)
}
