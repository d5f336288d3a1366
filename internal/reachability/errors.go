package reachability

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is matched by the error Observable returns when Configure
// was never called.
var ErrNotConfigured = errors.New("reachability monitor not configured")

// ConfigurationError reports that the monitor was used before it was set up.
type ConfigurationError struct {
	Message            string
	RecoverySuggestion string
}

func (e *ConfigurationError) Error() string {
	if e.RecoverySuggestion == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.RecoverySuggestion)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNotConfigured
}

func errNotConfigured() error {
	return &ConfigurationError{
		Message:            "observe requested before configure",
		RecoverySuggestion: "call Configure with a ConnectivityProvider before requesting the observable",
	}
}

// RegistrationError wraps a failure from
// ConnectivityProvider.RegisterDefaultNetworkCallback.
type RegistrationError struct {
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registering default network callback: %v", e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }
