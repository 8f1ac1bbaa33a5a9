package domain

import (
	"errors"
	"maps"
)

// ErrorCode is the stable, machine-readable identifier of a resolution failure.
type ErrorCode string

const (
	// CodeAPIError reports a caller misusing the resolution API.
	CodeAPIError ErrorCode = "API_ERROR"
	// CodeBlacklisted reports a path that must never be resolved directly.
	CodeBlacklisted ErrorCode = "BLACKLISTED"
	// CodeBuiltinNodeResolutionFailed reports a failure of the deferred native resolution.
	CodeBuiltinNodeResolutionFailed ErrorCode = "BUILTIN_NODE_RESOLUTION_FAILED"
	// CodeMissingDependency reports a declared dependency without an install location.
	CodeMissingDependency ErrorCode = "MISSING_DEPENDENCY"
	// CodeMissingPeerDependency reports a peer dependency that no ancestor provides.
	CodeMissingPeerDependency ErrorCode = "MISSING_PEER_DEPENDENCY"
	// CodeQualifiedPathResolutionFailed reports an unqualified path that matches no file.
	CodeQualifiedPathResolutionFailed ErrorCode = "QUALIFIED_PATH_RESOLUTION_FAILED"
	// CodeInternal reports an inconsistency of the hydrated state.
	CodeInternal ErrorCode = "INTERNAL"
	// CodeUndeclaredDependency reports a dependency the issuer never declared.
	CodeUndeclaredDependency ErrorCode = "UNDECLARED_DEPENDENCY"
	// CodeUnsupported reports a request form the runtime does not handle.
	CodeUnsupported ErrorCode = "UNSUPPORTED"
)

// IsModuleNotFound reports whether the code belongs to the "module not found" category.
func (c ErrorCode) IsModuleNotFound() bool {
	switch c {
	case CodeBlacklisted,
		CodeBuiltinNodeResolutionFailed,
		CodeMissingDependency,
		CodeMissingPeerDependency,
		CodeQualifiedPathResolutionFailed,
		CodeUndeclaredDependency:
		return true
	default:
		return false
	}
}

// ResolutionError is a structured resolution failure.
type ResolutionError struct {
	Code    ErrorCode
	Message string
	// Data carries the context of the message in machine-readable form
	// (request, issuer, dependencyName, issuerLocator, ...).
	Data map[string]any
}

// NewResolutionError creates a ResolutionError. data may be nil.
func NewResolutionError(code ErrorCode, message string, data map[string]any) *ResolutionError {
	bag := make(map[string]any, len(data)+2)
	maps.Copy(bag, data)
	return &ResolutionError{
		Code:    code,
		Message: message,
		Data:    bag,
	}
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrModuleNotFound) succeed for module-not-found codes,
// and matches another *ResolutionError carrying the same code.
func (e *ResolutionError) Is(target error) bool {
	if target == ErrModuleNotFound {
		return e.Code.IsModuleNotFound()
	}
	var other *ResolutionError
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// AsResolutionError returns the ResolutionError in err's chain, if any.
func AsResolutionError(err error) (*ResolutionError, bool) {
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr, true
	}
	return nil, false
}
