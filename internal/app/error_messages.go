// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

// Package app contains shared application-layer constants used across the
// Lockstep server handlers and middleware.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// Keeping them in one place ensures consistent wording throughout the API.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded as JSON.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidLoginPassword is returned when the supplied login/password
	// combination does not match the stored credentials.
	MsgInvalidLoginPassword = "invalid login/password"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgNoAccountProvided is returned when a handler requires an account
	// (extracted from the JWT claim) but none is present in the request
	// context.
	MsgNoAccountProvided = "no account provided"

	// MsgMissingIdempotencyKey is returned when a push batch arrives without
	// the per-batch idempotency key.
	MsgMissingIdempotencyKey = "push batch without idempotency key"

	// MsgInvalidChangeBatch is returned when a pushed change batch fails
	// validation before being applied.
	MsgInvalidChangeBatch = "invalid change batch"

	// MsgInvalidSyncToken is returned when the client's pull cursor cannot
	// be parsed.
	MsgInvalidSyncToken = "invalid sync token"
)
