// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashString computes an HMAC-SHA256 signature over the given string
// using the provided key and returns the result as a hex-encoded string.
//
// Used by the reference server to digest account passwords before storing
// and comparing them, so plaintext passwords never sit in memory longer
// than the request that carried them.
//
// Parameters:
//
//	data - string to be hashed
//	key  - secret key used for the HMAC operation
//
// Returns:
//
//	string - hex-encoded HMAC-SHA256 digest
//
// Example usage:
//
//	digest := utils.HashString("some data", "my-secret-key")
func HashString(data string, key string) string {
	hasher := hmac.New(sha256.New, []byte(key))
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}
