// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks user input before it reaches the vault
// services.
//
// A Validator receives the value to check and, optionally, the names of the
// fields to restrict the check to. Unknown value types return
// ErrUnsupportedType and unknown field names return ErrUnknownField, so a
// caller wiring the wrong validator fails loudly instead of passing silently.
package validators

import "context"

// Validator validates arbitrary input values.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
