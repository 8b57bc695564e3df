package evaluator

// CallStack records the names of user functions that have been entered and
// not yet returned, outermost first.
type CallStack struct {
	frames []string
}

func (cs *CallStack) push(name string) {
	cs.frames = append(cs.frames, name)
}

func (cs *CallStack) pop() {
	if len(cs.frames) > 0 {
		cs.frames = cs.frames[:len(cs.frames)-1]
	}
}

// Names returns a copy of the active call names, outermost first.
func (cs *CallStack) Names() []string {
	names := make([]string, len(cs.frames))
	copy(names, cs.frames)
	return names
}

// Depth returns the number of active calls.
func (cs *CallStack) Depth() int {
	return len(cs.frames)
}
