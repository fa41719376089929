package client

import "errors"

// ErrNoAppDependencies is returned by NewApp when a required dependency is
// missing.
var ErrNoAppDependencies = errors.New("missing client app dependencies")
