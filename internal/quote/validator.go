package quote

import (
	"strings"
	"sync"

	"github.com/wmartinez/presupuestos/internal/domain/entity"
)

// Validate checks that every required field of the form is non-blank after trimming.
// It returns a *MissingFieldsError listing the blank fields, in form order.
func Validate(form entity.QuoteForm) error {
	required := []struct {
		name  string
		value string
	}{
		{"client_name", form.ClientName},
		{"date.day", form.Date.Day},
		{"date.month", form.Date.Month},
		{"date.year", form.Date.Year},
		{"price", form.Price},
		{"description", form.Description},
		{"includes", form.Includes},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}

	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// ErrorSlot is the single user-facing error message of the form
type ErrorSlot struct {
	mu      sync.RWMutex
	message string
}

// Set replaces the current message
func (s *ErrorSlot) Set(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Clear empties the slot
func (s *ErrorSlot) Clear() {
	s.Set("")
}

// Message returns the current message, empty when there is none
func (s *ErrorSlot) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// FieldValidator validates forms and keeps the error slot in sync with the outcome
type FieldValidator struct {
	slot *ErrorSlot
}

// NewFieldValidator creates a validator reporting into slot
func NewFieldValidator(slot *ErrorSlot) *FieldValidator {
	return &FieldValidator{slot: slot}
}

// Validate runs Validate and sets or clears the error slot
func (v *FieldValidator) Validate(form entity.QuoteForm) error {
	if err := Validate(form); err != nil {
		v.slot.Set(MissingFieldsMessage)
		return err
	}
	v.slot.Clear()
	return nil
}
