package mir

import (
	"errors"
	"strings"
)

// IllFormedError reports the first well-formedness rule a program violates.
// Fn is NoFnName for program-level rules; Block is meaningful only when HasBlock.
type IllFormedError struct {
	Msg      string
	Fn       FnName
	Block    BbName
	HasBlock bool
}

// Error returns the rule message unchanged.
func (e *IllFormedError) Error() string {
	return e.Msg
}

// Family is the construct the violated rule belongs to, e.g. "Terminator"
// or "Type::Slice".
func (e *IllFormedError) Family() string {
	if i := strings.Index(e.Msg, ":"); i >= 0 {
		head := e.Msg[:i]
		if rest := e.Msg[i:]; strings.HasPrefix(rest, "::") {
			if j := strings.Index(rest[2:], ":"); j >= 0 {
				return head + rest[:2+j]
			}
			return head + strings.Fields(rest)[0]
		}
		return head
	}
	return e.Msg
}

// AsIllFormed unwraps err to an *IllFormedError.
func AsIllFormed(err error) (*IllFormedError, bool) {
	var ill *IllFormedError
	if errors.As(err, &ill) {
		return ill, true
	}
	return nil, false
}
