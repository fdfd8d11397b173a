package crate

import (
	"fmt"
	"strings"

	"github.com/xraph/go-utils/errs"
)

// =============================================================================
// ERROR CODES
// =============================================================================

const (
	// CodeInvalidDefinition indicates a definition cannot be turned into a provider
	CodeInvalidDefinition = "INVALID_DEFINITION"

	// CodeServiceNotFound indicates a service was not found in the container
	CodeServiceNotFound = "SERVICE_NOT_FOUND"

	// CodeServiceError indicates a factory or constructor failed
	CodeServiceError = "SERVICE_ERROR"

	// CodeCircularDependency indicates a circular dependency was detected
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"

	// CodeTypeMismatch indicates a resolved value does not fit its target
	CodeTypeMismatch = "TYPE_MISMATCH"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// ErrServiceNotFoundSentinel is a sentinel error for service not found (for error checking).
var ErrServiceNotFoundSentinel = errs.NewError(CodeServiceNotFound, "service not found", nil)

// ErrCircularDependencySentinel is a sentinel error for circular dependency (for error checking).
var ErrCircularDependencySentinel = errs.NewError(CodeCircularDependency, "circular dependency", nil)

// ErrTypeMismatchSentinel is a sentinel error for type mismatch during resolution.
var ErrTypeMismatchSentinel = errs.NewError(CodeTypeMismatch, "type mismatch", nil)

// ErrServiceErrorSentinel is a sentinel error for failing factories.
var ErrServiceErrorSentinel = errs.NewError(CodeServiceError, "service error", nil)

// ErrInvalidDefinitionSentinel is a sentinel error for unusable definitions.
var ErrInvalidDefinitionSentinel = errs.NewError(CodeInvalidDefinition, "invalid definition", nil)

// =============================================================================
// ERROR CONSTRUCTORS
// =============================================================================

// ErrServiceNotFound creates an error for when a service is not found
func ErrServiceNotFound(serviceName string) *errs.Error {
	return errs.NewError(
		CodeServiceNotFound,
		fmt.Sprintf("%s service does not exist", serviceName),
		nil,
	).WithContext("service", serviceName).(*errs.Error)
}

// NewServiceError creates an error for service operations
func NewServiceError(serviceName, operation string, cause error) *errs.Error {
	return errs.NewError(
		CodeServiceError,
		fmt.Sprintf("service '%s' error during %s", serviceName, operation),
		cause,
	).WithContext("service", serviceName).
		WithContext("operation", operation).(*errs.Error)
}

// ErrCircularDependency creates an error for circular dependency detection
func ErrCircularDependency(cycle []string) *errs.Error {
	return errs.NewError(
		CodeCircularDependency,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(cycle, " -> ")),
		nil,
	).WithContext("cycle", cycle).(*errs.Error)
}

// ErrTypeMismatch creates an error for a value that cannot be passed as an argument
func ErrTypeMismatch(serviceName, argument string, want string, actual any) *errs.Error {
	return errs.NewError(
		CodeTypeMismatch,
		fmt.Sprintf("service '%s' argument '%s' type mismatch: want %s, got %T", serviceName, argument, want, actual),
		nil,
	).WithContext("service", serviceName).
		WithContext("argument", argument).
		WithContext("actual_type", fmt.Sprintf("%T", actual)).(*errs.Error)
}

// ErrInvalidDefinition creates an error for a definition that cannot be invoked
func ErrInvalidDefinition(serviceName, reason string) *errs.Error {
	return errs.NewError(
		CodeInvalidDefinition,
		fmt.Sprintf("service '%s' has an invalid definition: %s", serviceName, reason),
		nil,
	).WithContext("service", serviceName).(*errs.Error)
}
