// Package fuzztests houses Go fuzz harnesses for the program-file decoder and
// the well-formedness checker. The goal is to guard against panics and
// runaway work on arbitrary input: any byte string must either fail to decode
// or produce a program the checker gives a verdict on.
package fuzztests
