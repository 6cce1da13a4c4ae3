package services

import (
	"errors"
	"fmt"
)

// ConfigError reports a missing credential or URL. It is raised synchronously
// before any network I/O so misconfiguration is distinguishable from outages.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// UpstreamError reports a non-2xx response from a downstream dependency.
// It carries the remote status code and response body verbatim; callers do
// not retry automatically.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.Status, e.Body)
}

var (
	// ErrSessionNotFound is returned for unknown or closed session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionBusy is returned when a send or apply is already in flight
	// for the session. At most one of either may run at a time.
	ErrSessionBusy = errors.New("session has an operation in flight")
	// ErrSessionFailed is returned for sessions whose initial workflow fetch
	// failed; the session is terminal and must be closed and reopened.
	ErrSessionFailed = errors.New("session failed to load its workflow")
	// ErrNoPendingModification is returned by Apply when the assistant has
	// not proposed a replacement workflow yet.
	ErrNoPendingModification = errors.New("no pending workflow modification to apply")
)
