package fuzztests

import (
	"bytes"
	"testing"

	"minimir/internal/build"
	"minimir/internal/progfile"
)

const maxFuzzInput = 64 << 10

// addSampleSeeds seeds the corpus with every built-in sample, whole and with
// its tail cut off.
func addSampleSeeds(f *testing.F) {
	for _, s := range build.Samples() {
		var buf bytes.Buffer
		if err := progfile.Encode(&buf, s.Build()); err != nil {
			f.Fatalf("encode %s: %v", s.Name, err)
		}
		data := buf.Bytes()
		f.Add(data)
		f.Add(data[:len(data)/2])
	}
	f.Add([]byte{})
	f.Add([]byte("minimir"))
}
