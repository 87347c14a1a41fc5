package validators

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-vault/models"
)

const (
	// MinPINLength is the shortest PIN accepted by Set and Update.
	MinPINLength = 4
	// MaxPINLength is the longest PIN accepted by Set and Update.
	MaxPINLength = 16
)

// Field names accepted by PINValidator.
const (
	// FieldPINPresent requires a non-empty PIN.
	FieldPINPresent = "pin_present"

	// FieldPINDigits requires every character to be an ASCII digit.
	FieldPINDigits = "pin_digits"

	// FieldPINLength requires MinPINLength..MaxPINLength characters.
	FieldPINLength = "pin_length"

	// FieldPINChangeOld applies the default PIN checks to PINChange.Old.
	FieldPINChangeOld = "old_pin"

	// FieldPINChangeNew applies the default PIN checks to PINChange.New.
	FieldPINChangeNew = "new_pin"
)

// PINValidator validates models.PIN and models.PINChange values.
type PINValidator struct {
}

// NewPINValidator constructs a new PINValidator and returns it as the
// Validator interface.
func NewPINValidator() Validator {
	return &PINValidator{}
}

// Validate dispatches on the dynamic type of obj. Plain strings are treated
// as PINs.
//
// Supported types:
//   - models.PIN / *models.PIN / string
//   - models.PINChange / *models.PINChange
func (v *PINValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.PIN:
		return v.validatePIN(ctx, value, fields...)
	case *models.PIN:
		return v.validatePIN(ctx, *value, fields...)
	case string:
		return v.validatePIN(ctx, models.PIN(value), fields...)

	case models.PINChange:
		return v.validatePINChange(ctx, value, fields...)
	case *models.PINChange:
		return v.validatePINChange(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validatePIN checks a single PIN.
//
// Default validated fields (when none specified): presence, digits, length.
func (v *PINValidator) validatePIN(_ context.Context, pin models.PIN, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldPINPresent, FieldPINDigits, FieldPINLength}
	}

	for _, f := range fields {
		switch f {
		case FieldPINPresent:
			if pin == "" {
				return ErrEmptyPIN
			}
		case FieldPINDigits:
			for _, r := range string(pin) {
				if r < '0' || r > '9' {
					return ErrPINNotNumeric
				}
			}
		case FieldPINLength:
			if n := pin.Len(); n < MinPINLength || n > MaxPINLength {
				return fmt.Errorf("%w: got %d, want %d..%d", ErrPINLength, n, MinPINLength, MaxPINLength)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validatePINChange checks both sides of a PIN update. The old PIN only has
// to be present: it was accepted by an earlier build whose rules may have
// been looser.
func (v *PINValidator) validatePINChange(ctx context.Context, change models.PINChange, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldPINChangeOld, FieldPINChangeNew}
	}

	for _, f := range fields {
		switch f {
		case FieldPINChangeOld:
			if err := v.validatePIN(ctx, change.Old, FieldPINPresent); err != nil {
				return fmt.Errorf("old PIN: %w", err)
			}
		case FieldPINChangeNew:
			if err := v.validatePIN(ctx, change.New); err != nil {
				return fmt.Errorf("new PIN: %w", err)
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}
