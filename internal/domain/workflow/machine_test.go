package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateIdle, false},
		{StateValidating, false},
		{StateComposing, false},
		{StateRendered, false},
		{StateRejected, true},
		{StateFailed, true},
		{StatePreview, true},
		{StateFinalized, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"idle", StateIdle, true},
		{"finalized", StateFinalized, true},
		{"unknown", State("DRAFT"), false},
		{"empty", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_PanicsOnInvalidStates(t *testing.T) {
	cases := map[string]func(){
		"configure": func() { NewBuilder().Configure(State("BOGUS")) },
		"build":     func() { NewBuilder().Build(State("BOGUS")) },
		"permit":    func() { NewBuilder().Configure(StateIdle).Permit(TriggerSubmit, State("BOGUS")) },
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s should panic on invalid state", name)
				}
			}()
			fn()
		})
	}
}

func TestGenerationMachine_PreviewPath(t *testing.T) {
	m := NewGenerationMachine()
	ctx := context.Background()

	steps := []struct {
		trigger Trigger
		want    State
	}{
		{TriggerSubmit, StateValidating},
		{TriggerAccept, StateComposing},
		{TriggerRender, StateRendered},
		{TriggerPreview, StatePreview},
	}

	for i, step := range steps {
		if err := m.Fire(ctx, step.trigger); err != nil {
			t.Fatalf("step %d: Fire(%s) failed: %v", i, step.trigger, err)
		}
		if m.State() != step.want {
			t.Fatalf("step %d: state = %s, want %s", i, m.State(), step.want)
		}
	}

	path := m.Path()
	if len(path) != 5 || path[0] != StateIdle || path[4] != StatePreview {
		t.Errorf("Path() = %v", path)
	}
}

func TestGenerationMachine_FinalizeIsTerminal(t *testing.T) {
	m := NewGenerationMachine()
	ctx := context.Background()

	for _, trig := range []Trigger{TriggerSubmit, TriggerAccept, TriggerRender, TriggerFinalize} {
		if err := m.Fire(ctx, trig); err != nil {
			t.Fatalf("Fire(%s) failed: %v", trig, err)
		}
	}

	err := m.Fire(ctx, TriggerFinalize)
	if !errors.Is(err, ErrTerminalState) {
		t.Errorf("second finalize error = %v, want %v", err, ErrTerminalState)
	}
	if m.State() != StateFinalized {
		t.Errorf("state = %s, want %s", m.State(), StateFinalized)
	}
}

func TestGenerationMachine_RejectionPath(t *testing.T) {
	m := NewGenerationMachine()
	ctx := context.Background()

	if err := m.Fire(ctx, TriggerSubmit); err != nil {
		t.Fatalf("Fire(SUBMIT) failed: %v", err)
	}
	if err := m.Fire(ctx, TriggerReject); err != nil {
		t.Fatalf("Fire(REJECT) failed: %v", err)
	}
	if !m.State().IsTerminal() {
		t.Error("rejected state should be terminal")
	}
}

func TestGenerationMachine_FinalizeOnlyFromRendered(t *testing.T) {
	m := NewGenerationMachine()
	ctx := context.Background()

	_ = m.Fire(ctx, TriggerSubmit)
	_ = m.Fire(ctx, TriggerAccept)

	err := m.Fire(ctx, TriggerFinalize)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire(FINALIZE) from COMPOSING error = %v, want %v", err, ErrInvalidTransition)
	}
	if m.State() != StateComposing {
		t.Errorf("state = %s, want %s", m.State(), StateComposing)
	}
}

func TestStateMachine_GuardSelection(t *testing.T) {
	type key struct{}
	b := NewBuilder()
	b.Configure(StateRendered).
		PermitIf(TriggerFinalize, StateFinalized, func(ctx context.Context) bool {
			return ctx.Value(key{}) == true
		}).
		PermitIf(TriggerFinalize, StateFailed, func(ctx context.Context) bool {
			return ctx.Value(key{}) != true
		})

	m1 := b.Build(StateRendered)
	if err := m1.Fire(context.WithValue(context.Background(), key{}, true), TriggerFinalize); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m1.State() != StateFinalized {
		t.Errorf("m1 state = %s, want %s", m1.State(), StateFinalized)
	}

	m2 := b.Build(StateRendered)
	if err := m2.Fire(context.Background(), TriggerFinalize); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}
	if m2.State() != StateFailed {
		t.Errorf("m2 state = %s, want %s", m2.State(), StateFailed)
	}
}

func TestStateMachine_GuardFails(t *testing.T) {
	b := NewBuilder()
	b.Configure(StateIdle).
		PermitIf(TriggerSubmit, StateValidating, func(ctx context.Context) bool { return false })

	m := b.Build(StateIdle)
	err := m.Fire(context.Background(), TriggerSubmit)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want %v", err, ErrGuardFailed)
	}
	if m.State() != StateIdle {
		t.Errorf("state = %s, want %s", m.State(), StateIdle)
	}
}

func TestStateMachine_MachinesAreIndependent(t *testing.T) {
	m1 := NewGenerationMachine()
	m2 := NewGenerationMachine()

	if err := m1.Fire(context.Background(), TriggerSubmit); err != nil {
		t.Fatalf("Fire() failed: %v", err)
	}

	if m2.State() != StateIdle {
		t.Errorf("m2 state = %s, want %s", m2.State(), StateIdle)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	m := NewGenerationMachine()
	_ = m.Fire(context.Background(), TriggerSubmit)

	triggers := m.PermittedTriggers()
	if len(triggers) != 2 {
		t.Fatalf("PermittedTriggers() returned %d triggers, want 2", len(triggers))
	}
	if !m.CanFire(TriggerAccept) || !m.CanFire(TriggerReject) {
		t.Errorf("VALIDATING should permit ACCEPT and REJECT, got %v", triggers)
	}
	if m.CanFire(TriggerPreview) {
		t.Error("VALIDATING should not permit PREVIEW")
	}
}
