// Package progfile stores programs on disk as msgpack streams.
//
// A file is two consecutive msgpack values: a small header carrying the
// magic string and schema version, then the program itself. The header is
// decoded on its own so that a schema mismatch is reported before the body
// is interpreted.
package progfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"minimir/internal/mir"
)

// Extension is the conventional file extension for program files.
const Extension = ".mmir"

const magic = "minimir"

// SchemaVersion is incremented whenever the encoded shape of mir.Program changes.
const SchemaVersion uint16 = 1

var (
	// ErrNotProgramFile means the stream does not start with a program header.
	ErrNotProgramFile = errors.New("not a program file")
	// ErrSchema means the file was written with a different schema version.
	ErrSchema = errors.New("unsupported program file schema")
)

type header struct {
	Magic  string `msgpack:"magic"`
	Schema uint16 `msgpack:"schema"`
}

// Encode writes p to w.
func Encode(w io.Writer, p *mir.Program) error {
	if p == nil {
		return errors.New("encode program: nil program")
	}
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(header{Magic: magic, Schema: SchemaVersion}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	return nil
}

// Decode reads a program written by Encode.
func Decode(r io.Reader) (*mir.Program, error) {
	dec := msgpack.NewDecoder(r)
	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotProgramFile, err)
	}
	if h.Magic != magic {
		return nil, ErrNotProgramFile
	}
	if h.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: file has %d, this build reads %d", ErrSchema, h.Schema, SchemaVersion)
	}
	p := new(mir.Program)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return p, nil
}

// ReadFile decodes the program stored at path.
func ReadFile(path string) (*mir.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// WriteFile encodes p to path, replacing any existing file atomically.
func WriteFile(path string, p *mir.Program) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".mmir-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, p); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
