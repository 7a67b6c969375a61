// ABOUTME: Error hierarchy for the completion client used by failure escalation.
// ABOUTME: Maps provider HTTP statuses, timeouts, and transport failures onto typed errors.

package llm

import (
	"context"
	"errors"
	"net"
)

// SDKError is the base error type for all errors raised by this package.
// All other error types embed SDKError either directly or transitively.
type SDKError struct {
	Message string
	Cause   error
}

func (e *SDKError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *SDKError) Unwrap() error {
	return e.Cause
}

// Transient reports whether the failure is likely to clear on its own. The
// escalation path never retries; the flag only feeds diagnostics logging.
func (e *SDKError) Transient() bool {
	return false
}

// ProviderError is an error response returned by a provider's API.
type ProviderError struct {
	SDKError
	Provider   string
	StatusCode int
	ErrorCode  string
}

func (e *ProviderError) Error() string   { return e.SDKError.Error() }
func (e *ProviderError) Unwrap() error   { return e.SDKError.Unwrap() }
func (e *ProviderError) Transient() bool { return e.StatusCode == 429 || e.StatusCode >= 500 }

// As enables errors.As to match SDKError from a ProviderError.
func (e *ProviderError) As(target any) bool {
	if t, ok := target.(**SDKError); ok {
		*t = &e.SDKError
		return true
	}
	return false
}

// asProvider resolves errors.As targets for the status-specific subtypes.
func asProvider(p *ProviderError, target any) bool {
	switch t := target.(type) {
	case **ProviderError:
		*t = p
		return true
	case **SDKError:
		*t = &p.SDKError
		return true
	default:
		return false
	}
}

// AuthenticationError is a 401 response: the token was rejected.
type AuthenticationError struct{ ProviderError }

func (e *AuthenticationError) Error() string      { return e.ProviderError.Error() }
func (e *AuthenticationError) Unwrap() error      { return e.ProviderError.Unwrap() }
func (e *AuthenticationError) Transient() bool    { return false }
func (e *AuthenticationError) As(target any) bool { return asProvider(&e.ProviderError, target) }

// AccessDeniedError is a 403 response: the token lacks the required scope.
type AccessDeniedError struct{ ProviderError }

func (e *AccessDeniedError) Error() string      { return e.ProviderError.Error() }
func (e *AccessDeniedError) Unwrap() error      { return e.ProviderError.Unwrap() }
func (e *AccessDeniedError) Transient() bool    { return false }
func (e *AccessDeniedError) As(target any) bool { return asProvider(&e.ProviderError, target) }

// NotFoundError is a 404 response, usually an unknown model name.
type NotFoundError struct{ ProviderError }

func (e *NotFoundError) Error() string      { return e.ProviderError.Error() }
func (e *NotFoundError) Unwrap() error      { return e.ProviderError.Unwrap() }
func (e *NotFoundError) Transient() bool    { return false }
func (e *NotFoundError) As(target any) bool { return asProvider(&e.ProviderError, target) }

// InvalidRequestError is a 400 or 422 response.
type InvalidRequestError struct{ ProviderError }

func (e *InvalidRequestError) Error() string      { return e.ProviderError.Error() }
func (e *InvalidRequestError) Unwrap() error      { return e.ProviderError.Unwrap() }
func (e *InvalidRequestError) Transient() bool    { return false }
func (e *InvalidRequestError) As(target any) bool { return asProvider(&e.ProviderError, target) }

// RateLimitError is a 429 response.
type RateLimitError struct{ ProviderError }

func (e *RateLimitError) Error() string      { return e.ProviderError.Error() }
func (e *RateLimitError) Unwrap() error      { return e.ProviderError.Unwrap() }
func (e *RateLimitError) Transient() bool    { return true }
func (e *RateLimitError) As(target any) bool { return asProvider(&e.ProviderError, target) }

// ServerError is a 5xx response.
type ServerError struct{ ProviderError }

func (e *ServerError) Error() string      { return e.ProviderError.Error() }
func (e *ServerError) Unwrap() error      { return e.ProviderError.Unwrap() }
func (e *ServerError) Transient() bool    { return true }
func (e *ServerError) As(target any) bool { return asProvider(&e.ProviderError, target) }

// RequestTimeoutError means the request did not finish before its deadline.
type RequestTimeoutError struct{ SDKError }

func (e *RequestTimeoutError) Error() string   { return e.SDKError.Error() }
func (e *RequestTimeoutError) Unwrap() error   { return e.SDKError.Unwrap() }
func (e *RequestTimeoutError) Transient() bool { return true }

func (e *RequestTimeoutError) As(target any) bool {
	if t, ok := target.(**SDKError); ok {
		*t = &e.SDKError
		return true
	}
	return false
}

// NetworkError is a transport-level failure before any response arrived.
type NetworkError struct{ SDKError }

func (e *NetworkError) Error() string   { return e.SDKError.Error() }
func (e *NetworkError) Unwrap() error   { return e.SDKError.Unwrap() }
func (e *NetworkError) Transient() bool { return true }

func (e *NetworkError) As(target any) bool {
	if t, ok := target.(**SDKError); ok {
		*t = &e.SDKError
		return true
	}
	return false
}

// ConfigurationError is a client configuration problem (missing token,
// unknown provider). Never transient.
type ConfigurationError struct{ SDKError }

func (e *ConfigurationError) Error() string   { return e.SDKError.Error() }
func (e *ConfigurationError) Unwrap() error   { return e.SDKError.Unwrap() }
func (e *ConfigurationError) Transient() bool { return false }

func (e *ConfigurationError) As(target any) bool {
	if t, ok := target.(**SDKError); ok {
		*t = &e.SDKError
		return true
	}
	return false
}

// ErrorFromStatusCode maps an HTTP status code to the matching error type.
// Unknown codes produce a plain ProviderError.
func ErrorFromStatusCode(statusCode int, message, provider, errorCode string) error {
	base := ProviderError{
		SDKError:   SDKError{Message: message},
		Provider:   provider,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}

	switch {
	case statusCode == 400 || statusCode == 422:
		return &InvalidRequestError{ProviderError: base}
	case statusCode == 401:
		return &AuthenticationError{ProviderError: base}
	case statusCode == 403:
		return &AccessDeniedError{ProviderError: base}
	case statusCode == 404:
		return &NotFoundError{ProviderError: base}
	case statusCode == 408:
		return &RequestTimeoutError{SDKError: SDKError{Message: message}}
	case statusCode == 429:
		return &RateLimitError{ProviderError: base}
	case statusCode >= 500 && statusCode <= 599:
		return &ServerError{ProviderError: base}
	default:
		return &base
	}
}

// ClassifyTransportError wraps errors that occurred before a provider
// responded. Deadline expiry becomes a RequestTimeoutError, dial and DNS
// failures a NetworkError; anything else is returned unchanged.
func ClassifyTransportError(message string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestTimeoutError{SDKError: SDKError{Message: message, Cause: err}}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &RequestTimeoutError{SDKError: SDKError{Message: message, Cause: err}}
		}
		return &NetworkError{SDKError: SDKError{Message: message, Cause: err}}
	}
	return err
}

// IsTransient reports whether err, or anything it wraps, is marked transient.
func IsTransient(err error) bool {
	type transient interface {
		Transient() bool
	}
	var t transient
	if errors.As(err, &t) {
		return t.Transient()
	}
	return false
}
