// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

// Package client implements the headless client application runtime.
//
// It wires the login flow, the sync engine, and the background sync worker
// into a single process lifecycle.
package client
