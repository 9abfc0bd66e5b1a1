package mir

type BasicBlock struct {
	Statements []Statement
	Term       Terminator
	Kind       BbKind
}

func (b *BasicBlock) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
