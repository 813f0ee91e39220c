package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a transition may be taken
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder collects transition rules and builds independent machines
type StateMachineBuilder interface {
	// Configure returns the configuration of the given source state
	Configure(state State) StateConfiguration

	// Build creates a machine positioned at initialState
	Build(initialState State) StateMachine
}

// StateConfiguration declares the triggers accepted by one source state
type StateConfiguration interface {
	// Permit allows trigger to move the machine to toState
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows trigger to move the machine to toState when guard passes
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type transition struct {
	toState State
	guard   GuardFunc
}

type stateConfig struct {
	transitions map[Trigger][]transition
}

type stateMachineBuilder struct {
	configurations map[State]*stateConfig
}

type stateMachine struct {
	currentState   State
	path           []State
	configurations map[State]*stateConfig
}

// NewBuilder creates an empty builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		configurations: make(map[State]*stateConfig),
	}
}

// NewGenerationMachine returns a machine wired with the generation request lifecycle:
//
//	IDLE -> VALIDATING -> REJECTED
//	VALIDATING -> COMPOSING -> FAILED
//	COMPOSING -> RENDERED -> PREVIEW | FINALIZED
func NewGenerationMachine() StateMachine {
	return generationBuilder().Build(StateIdle)
}

func generationBuilder() StateMachineBuilder {
	b := NewBuilder()

	b.Configure(StateIdle).
		Permit(TriggerSubmit, StateValidating)

	b.Configure(StateValidating).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerAccept, StateComposing)

	b.Configure(StateComposing).
		Permit(TriggerRender, StateRendered).
		Permit(TriggerFail, StateFailed)

	b.Configure(StateRendered).
		Permit(TriggerPreview, StatePreview).
		Permit(TriggerFinalize, StateFinalized).
		Permit(TriggerFail, StateFailed)

	return b
}

// Configure returns the configuration of the given source state
func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	config, ok := b.configurations[state]
	if !ok {
		config = &stateConfig{transitions: make(map[Trigger][]transition)}
		b.configurations[state] = config
	}
	return config
}

// Build creates a machine positioned at initialState.
// Machines share no mutable state with the builder or with each other.
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	configs := make(map[State]*stateConfig, len(b.configurations))
	for state, config := range b.configurations {
		transitions := make(map[Trigger][]transition, len(config.transitions))
		for trigger, ts := range config.transitions {
			transitions[trigger] = append([]transition{}, ts...)
		}
		configs[state] = &stateConfig{transitions: transitions}
	}

	return &stateMachine{
		currentState:   initialState,
		path:           []State{initialState},
		configurations: configs,
	}
}

// Permit allows trigger to move the machine to toState
func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

// PermitIf allows trigger to move the machine to toState when guard passes
func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}

	c.transitions[trigger] = append(c.transitions[trigger], transition{
		toState: toState,
		guard:   guard,
	})
	return c
}

func (m *stateMachine) State() State {
	return m.currentState
}

func (m *stateMachine) Path() []State {
	return append([]State(nil), m.path...)
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	config, ok := m.configurations[m.currentState]
	if !ok {
		return false
	}
	return len(config.transitions[trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	if m.currentState.IsTerminal() {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrTerminalState, trigger, m.currentState)
	}

	config, ok := m.configurations[m.currentState]
	if !ok || len(config.transitions[trigger]) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.currentState)
	}

	// first transition whose guard passes wins
	for _, t := range config.transitions[trigger] {
		if t.guard == nil || t.guard(ctx) {
			m.currentState = t.toState
			m.path = append(m.path, t.toState)
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from %s", ErrGuardFailed, trigger, m.currentState)
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	config, ok := m.configurations[m.currentState]
	if !ok {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(config.transitions))
	for trigger := range config.transitions {
		triggers = append(triggers, trigger)
	}
	return triggers
}
