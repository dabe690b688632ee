// Package errors provides structured error handling for the rewriting bridge.
package errors

import (
	stderrors "errors"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Lookup errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeServerNotFound Code = "SERVER_NOT_FOUND"

	// Upstream errors
	CodeUpstreamStatus Code = "UPSTREAM_STATUS"
	CodeUpstreamDecode Code = "UPSTREAM_DECODE"

	// Configuration errors
	CodeRegistryConfigMissing Code = "REGISTRY_CONFIG_MISSING"

	// Bridge errors
	CodeBindingNotFound     Code = "BINDING_NOT_FOUND"
	CodeInvalidWorldContext Code = "INVALID_WORLD_CONTEXT"
	CodeInvalidRequest      Code = "INVALID_REQUEST"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidWorldContext, CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeNotFound, CodeServerNotFound:
		return http.StatusNotFound
	case CodeBindingNotFound:
		return http.StatusConflict
	case CodeUpstreamStatus, CodeUpstreamDecode:
		return http.StatusBadGateway
	case CodeRegistryConfigMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// GetCode extracts the error code from an error chain.
// Returns CodeUnknown if the error is not a domain error.
func GetCode(err error) Code {
	var domainErr *Error
	if stderrors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}
