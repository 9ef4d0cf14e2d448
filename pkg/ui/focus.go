package ui

// NoNode marks the absence of a node index in hit-test and focus results.
const NoNode = -1

// FocusState is the one piece of selection state in the viewer: either no
// node is focused (Idle) or exactly one is. The zero value is Idle. The
// interaction model owns the only instance and hands the resolved index to
// the render layer; nothing else mutates it.
type FocusState struct {
	index int
	set   bool
}

// Idle returns the no-focus state.
func Idle() FocusState {
	return FocusState{}
}

// FocusedOn returns the state focused on node i.
func FocusedOn(i int) FocusState {
	if i < 0 {
		return Idle()
	}
	return FocusState{index: i, set: true}
}

// IsFocused reports whether any node is focused.
func (f FocusState) IsFocused() bool {
	return f.set
}

// Index returns the focused node's index, or NoNode when idle.
func (f FocusState) Index() int {
	if !f.set {
		return NoNode
	}
	return f.index
}

// Is reports whether node i is the focused node.
func (f FocusState) Is(i int) bool {
	return f.set && f.index == i
}

// Click applies a click on node i and returns the next state.
// Single-focus invariant: clicking the focused node toggles back to Idle;
// clicking any other node while focused defocuses it first, so at most one
// node is ever focused. Clicks on empty space (i < 0) are ignored.
func (f FocusState) Click(i int) FocusState {
	if i < 0 {
		return f
	}
	if f.Is(i) {
		return Idle()
	}
	return FocusedOn(i)
}

// Clear returns to Idle regardless of current state. Used on document
// reload when the focused node no longer exists.
func (f FocusState) Clear() FocusState {
	return Idle()
}
