// Package apperr defines the failure kinds a similar-news search can end with
// and how each one is presented to HTTP clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind labels an error for logs and metrics.
type Kind string

const (
	KindConfig     Kind = "config"
	KindValidation Kind = "validation"
	KindUpstream   Kind = "upstream"
	KindNetwork    Kind = "network"
	KindInternal   Kind = "internal"
)

const (
	networkMessage  = "Failed to fetch news articles. Please try again later."
	internalMessage = "Internal server error during news search"
)

// ConfigError reports missing service configuration. It repeats for every
// request until the environment is fixed.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// ValidationError reports unusable client input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UpstreamError reports a news API response that arrived but was not a success:
// either a non-200 status or a body whose status is not "ok". Detail carries
// the raw upstream code or body snippet and is only logged.
type UpstreamError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("NewsAPI error: %s", e.Message)
	}
	return fmt.Sprintf("NewsAPI request failed with status %d", e.StatusCode)
}

// NetworkError reports that the news API could not be reached at all.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "news api unreachable: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// InternalError wraps anything unexpected.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return "internal: " + e.Err.Error() }

func (e *InternalError) Unwrap() error { return e.Err }

// Validation is shorthand for a ValidationError with the given message.
func Validation(msg string) error { return &ValidationError{Message: msg} }

// Internal wraps err as an InternalError unless it already carries a kind.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindInternal {
		return err
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return err
	}
	return &InternalError{Err: err}
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	var (
		ce *ConfigError
		ve *ValidationError
		ue *UpstreamError
		ne *NetworkError
	)
	switch {
	case errors.As(err, &ce):
		return KindConfig
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &ue):
		return KindUpstream
	case errors.As(err, &ne):
		return KindNetwork
	default:
		return KindInternal
	}
}

// HTTPStatus maps err to the status code returned to the client.
func HTTPStatus(err error) int {
	if KindOf(err) == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text placed in the error body. Network and internal
// failures collapse to fixed messages; the detail only goes to the logs.
func PublicMessage(err error) string {
	switch KindOf(err) {
	case KindConfig, KindValidation, KindUpstream:
		return errorText(err)
	case KindNetwork:
		return networkMessage
	default:
		return internalMessage
	}
}

func errorText(err error) string {
	var (
		ce *ConfigError
		ve *ValidationError
		ue *UpstreamError
	)
	switch {
	case errors.As(err, &ce):
		return ce.Error()
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ue):
		return ue.Error()
	}
	return internalMessage
}
