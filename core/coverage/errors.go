package coverage

import (
	"errors"
	"fmt"

	"covlaunch/core/launch"
)

var (
	// ErrUnknownLaunchType matches *UnknownLaunchTypeError.
	ErrUnknownLaunchType = errors.New("unknown launch type")
	// ErrNoDelegate matches *NoDelegateRegisteredError.
	ErrNoDelegate = errors.New("no delegate registered")
	// ErrAgentUnavailable matches *AgentResourceUnavailableError.
	ErrAgentUnavailable = errors.New("coverage agent unavailable")
	// ErrNotInitialized is returned by every operation before Initialize.
	ErrNotInitialized = errors.New("coverage launcher not initialized")
)

// UnknownLaunchTypeError reports a launch type missing from the registry.
type UnknownLaunchTypeError struct {
	LaunchType string
}

func (e *UnknownLaunchTypeError) Error() string {
	return fmt.Sprintf("unknown launch type %q", e.LaunchType)
}

func (e *UnknownLaunchTypeError) Is(target error) bool {
	return target == ErrUnknownLaunchType
}

// NoDelegateRegisteredError reports a launch type without a delegate for the
// mode coverage launches are delegated in. The host registry is misconfigured.
type NoDelegateRegisteredError struct {
	LaunchType string
	Mode       launch.Mode
}

func (e *NoDelegateRegisteredError) Error() string {
	return fmt.Sprintf("launch type %q has no delegate for mode %q", e.LaunchType, e.Mode)
}

func (e *NoDelegateRegisteredError) Is(target error) bool {
	return target == ErrNoDelegate
}

// AgentResourceUnavailableError reports that the agent jar could not be
// materialized on disk. Only the current launch fails.
type AgentResourceUnavailableError struct {
	Cause error
}

func (e *AgentResourceUnavailableError) Error() string {
	if e.Cause == nil {
		return ErrAgentUnavailable.Error()
	}
	return fmt.Sprintf("%s: %v", ErrAgentUnavailable, e.Cause)
}

func (e *AgentResourceUnavailableError) Unwrap() error { return e.Cause }

func (e *AgentResourceUnavailableError) Is(target error) bool {
	return target == ErrAgentUnavailable
}
