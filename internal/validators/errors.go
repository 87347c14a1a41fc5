package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyPIN      = errors.New("PIN is required")
	ErrPINNotNumeric = errors.New("PIN must contain digits only")
	ErrPINLength     = errors.New("invalid PIN length")
)
