package diag

import "fmt"

// Location points into a program file. Fn and Block are -1 when unknown.
type Location struct {
	File  string
	Fn    int32
	Block int32
}

// FileLocation returns a location covering a whole file.
func FileLocation(file string) Location {
	return Location{File: file, Fn: -1, Block: -1}
}

func (l Location) String() string {
	switch {
	case l.Fn < 0:
		return l.File
	case l.Block < 0:
		return fmt.Sprintf("%s (fn f%d)", l.File, l.Fn)
	default:
		return fmt.Sprintf("%s (fn f%d, bb%d)", l.File, l.Fn, l.Block)
	}
}

type Note struct {
	Msg string
}

// Diagnostic is one rejected file. A file produces at most one.
type Diagnostic struct {
	Stage   Stage
	Code    Code
	Message string
	Primary Location
	Notes   []Note
}

// New builds a diagnostic whose stage follows from code.
func New(code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Stage:   StageOf(code),
		Code:    code,
		Primary: primary,
		Message: msg,
	}
}

// IllFormed reports a checker verdict at loc.
func IllFormed(code Code, loc Location, msg string) Diagnostic {
	d := New(code, loc, msg)
	d.Stage = StageCheck
	return d
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Msg: msg})
	return d
}
