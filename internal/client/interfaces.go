// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

package client

// Client is the lifecycle contract of a runnable client application.
type Client interface {
	// Run starts the application and blocks until the process exits.
	Run() error
}
