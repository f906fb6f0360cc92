package ecs

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid schedule configuration detected during
// a rebuild: an ordering constraint that references no registered system, or a
// cycle among ordered systems. The systems involved are named so the caller can
// find the offending registration.
type ConfigurationError struct {
	Reason  string
	Systems []string
}

func (e *ConfigurationError) Error() string {
	if len(e.Systems) == 0 {
		return "schedule configuration: " + e.Reason
	}
	return fmt.Sprintf("schedule configuration: %s (systems: %s)", e.Reason, strings.Join(e.Systems, ", "))
}

// ExecutionError wraps a failure raised inside a system during a tick.
// A panic in a system is recovered and surfaced as an ExecutionError.
type ExecutionError struct {
	System string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("system %q failed: %v", e.System, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
