package types

import (
	"errors"
	"fmt"
)

// UnavailableError means the upstream source has no data for the requested
// identifier. This is an expected outcome (unknown fund code, ISIN not in the
// current list), distinct from an upstream failure, and is not logged as an
// error.
type UnavailableError struct {
	Source string // provider name, e.g. "tcmb", "canlidoviz"
	ID     string // requested identifier, e.g. "US900123DG28"
}

func (e *UnavailableError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: no data for %q", e.Source, e.ID)
	}

	return fmt.Sprintf("%s: no data", e.Source)
}

// UpstreamError means the upstream source could not be read: network failure,
// non-2xx status, or an unparseable payload. The cause is wrapped.
type UpstreamError struct {
	Source string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream failure: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ConfigurationError means a policy or config parameter is invalid. These are
// raised once at startup and are fatal; they never occur per-request.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Message)
}

// IsUnavailable reports whether err signals "no data for this identifier".
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

// IsUpstream reports whether err signals an upstream transport/parse failure.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
