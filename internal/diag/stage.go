package diag

// Stage tells how far a program file got before it was rejected.
type Stage uint8

const (
	// StageRead rejections come from opening, decoding or configuring a file;
	// the checker never saw a program.
	StageRead Stage = iota + 1
	// StageCheck rejections are well-formedness verdicts at a function and
	// block of a decoded program.
	StageCheck
)

// Label is the word the check report prints before the message.
func (s Stage) Label() string {
	switch s {
	case StageRead:
		return "error"
	case StageCheck:
		return "ill-formed"
	}
	return "rejected"
}

func (s Stage) String() string { return s.Label() }

// StageOf infers the stage from the code family. Configuration failures count
// as read failures.
func StageOf(c Code) Stage {
	if ic := int(c); ic >= 2000 && ic < 3000 {
		return StageCheck
	}
	return StageRead
}
