package domain

import "fmt"

// AuthenticationError indicates a collaborator rejected the engine's
// credentials.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string { return e.Message }

// ConnectivityError indicates a collaborator was unreachable or answered
// with a non-success status.
type ConnectivityError struct {
	Message string
}

func (e *ConnectivityError) Error() string { return e.Message }

// MappingRuleError indicates a malformed rule definition.
type MappingRuleError struct {
	Message string
}

func (e *MappingRuleError) Error() string { return e.Message }

// ConflictError indicates a naming or schema collision that requires a
// resolution strategy.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// RetryExhaustedError indicates a job failed its final attempt.
type RetryExhaustedError struct {
	JobID    string
	Attempts int
	Message  string
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("job %s failed after %d attempts: %s", e.JobID, e.Attempts, e.Message)
}

// ConfigurationError indicates a malformed profile or engine configuration.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ErrAuthentication creates an AuthenticationError with a formatted message.
func ErrAuthentication(format string, args ...interface{}) *AuthenticationError {
	return &AuthenticationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConnectivity creates a ConnectivityError with a formatted message.
func ErrConnectivity(format string, args ...interface{}) *ConnectivityError {
	return &ConnectivityError{Message: fmt.Sprintf(format, args...)}
}

// ErrMappingRule creates a MappingRuleError with a formatted message.
func ErrMappingRule(format string, args ...interface{}) *MappingRuleError {
	return &MappingRuleError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrConfiguration creates a ConfigurationError with a formatted message.
func ErrConfiguration(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}
