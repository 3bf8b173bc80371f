package auth

import "errors"

// ErrSuperseded is returned by an operation whose result was discarded
// because a later operation (typically a logout) changed the session first.
var ErrSuperseded = errors.New("session changed while the operation was in flight")
