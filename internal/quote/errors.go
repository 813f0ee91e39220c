package quote

import (
	"errors"
	"fmt"
	"strings"
)

// MissingFieldsMessage is shown to the user whenever a required field is blank
const MissingFieldsMessage = "Por favor, complete todos los campos obligatorios: Cliente, Fecha, Precio, Descripción e Incluye."

var (
	// Input errors
	ErrMissingFields = errors.New("missing required fields")

	// Composition errors
	ErrAssetLoad     = errors.New("background image could not be loaded")
	ErrRenderFailed  = errors.New("document rendering failed")
	ErrInvalidNumber = errors.New("document number must be positive")
)

// MissingFieldsError carries the blank fields of a rejected form
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

// Is makes errors.Is(err, ErrMissingFields) hold
func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingFields
}

// UserMessage returns the fixed message for the error slot
func (e *MissingFieldsError) UserMessage() string {
	return MissingFieldsMessage
}
