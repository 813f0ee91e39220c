package workflow

// State is a step in the life of a single quote generation request
type State string

const (
	StateIdle       State = "IDLE"
	StateValidating State = "VALIDATING"
	StateRejected   State = "REJECTED"
	StateComposing  State = "COMPOSING"
	StateFailed     State = "FAILED"
	StateRendered   State = "RENDERED"
	StatePreview    State = "PREVIEW"
	StateFinalized  State = "FINALIZED"
)

var validStates = map[State]bool{
	StateIdle:       true,
	StateValidating: true,
	StateRejected:   true,
	StateComposing:  true,
	StateFailed:     true,
	StateRendered:   true,
	StatePreview:    true,
	StateFinalized:  true,
}

var terminalStates = map[State]bool{
	StateRejected:  true,
	StateFailed:    true,
	StatePreview:   true,
	StateFinalized: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known generation state
func (s State) IsValid() bool {
	return validStates[s]
}
