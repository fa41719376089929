// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

// Package validators enforces structural rules on the synchronization wire
// models before the server applies them.
//
// The Validator interface is generic on purpose: implementations are injected
// into services, and Validate optionally restricts its checks to named fields
// so a caller can re-validate a single field after a partial update.
package validators

import "context"

// Validator validates arbitrary input values. Implementations may perform
// structural validation, semantic checks, cross-field rules.
type Validator interface {

	// Validate validates the provided input and optionally restricts
	// validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
