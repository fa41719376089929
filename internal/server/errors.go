// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mikhail Levkov

package server

import "errors"

// errNoServersAreCreated is returned by NewServer when the configuration
// yields no transport server to run.
var errNoServersAreCreated = errors.New("no servers are created")
