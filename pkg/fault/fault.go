// pkg/fault/fault.go
package fault

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a caller bug: a malformed request, an unknown
// locator strategy, a bad window size. It is returned at the call site that
// detected it and is never written to the error ledger.
type ConfigurationError struct {
	Op     string
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: invalid configuration: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Op, e.Param, e.Reason)
}

// Configuration builds a ConfigurationError.
func Configuration(op, param, reason string) *ConfigurationError {
	return &ConfigurationError{Op: op, Param: param, Reason: reason}
}

// EnvironmentFailure reports a recoverable runtime condition such as an
// element that never appeared, a click the browser rejected or a window that
// was closed underneath us. By the time a caller sees one it has already been
// recorded in the ledger.
type EnvironmentFailure struct {
	Op      string
	Message string
	Err     error
}

func (e *EnvironmentFailure) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Message == "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
}

func (e *EnvironmentFailure) Unwrap() error { return e.Err }

// Environment builds an EnvironmentFailure.
func Environment(op, message string, err error) *EnvironmentFailure {
	return &EnvironmentFailure{Op: op, Message: message, Err: err}
}

// IsConfiguration reports whether err carries a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsEnvironment reports whether err carries an EnvironmentFailure.
func IsEnvironment(err error) bool {
	var ef *EnvironmentFailure
	return errors.As(err, &ef)
}
