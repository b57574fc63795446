// Package guard decides whether authenticated screens and commands may run.
package guard

import "taskboard/internal/session"

// Status is the outcome of evaluating a session.
type Status int

const (
	// Loading means the session is still being resolved.
	Loading Status = iota
	// Unauthenticated means no usable token is present.
	Unauthenticated
	// Authenticated means a token is present and has not failed validation.
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Evaluate maps a session snapshot to a guard status. A present token is
// enough to render protected content; the profile is not awaited.
func Evaluate(s session.State) Status {
	if !s.Resolved {
		return Loading
	}
	if s.Token != "" {
		return Authenticated
	}
	if s.Loading {
		return Loading
	}
	return Unauthenticated
}

// Source is anything that exposes a session snapshot.
type Source interface {
	State() session.State
}

// Check evaluates the current state of src.
func Check(src Source) Status {
	return Evaluate(src.State())
}
