package mir

import "slices"

// Program is a set of functions with a designated entry point.
type Program struct {
	Functions map[FnName]Function
	Start     FnName
}

// Function returns the function named fn.
func (p *Program) Function(fn FnName) (Function, bool) {
	if p == nil {
		return Function{}, false
	}
	f, ok := p.Functions[fn]
	return f, ok
}

// FunctionNames returns the names of all functions in ascending order.
func (p *Program) FunctionNames() []FnName {
	if p == nil {
		return nil
	}
	names := make([]FnName, 0, len(p.Functions))
	for fn := range p.Functions {
		names = append(names, fn)
	}
	slices.Sort(names)
	return names
}
