package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies API errors so callers can discriminate without matching
// on status codes at every call site.
type Kind int

const (
	// KindAuth covers a missing or rejected bearer token.
	KindAuth Kind = iota + 1
	// KindValidation covers malformed input rejected before or by the server.
	KindValidation
	// KindConflict covers HTTP 409 responses.
	KindConflict
	// KindServer covers any other non-2xx response.
	KindServer
	// KindNetwork covers requests that never produced a usable response.
	KindNetwork
	// KindDownload covers binary fetches that reached the server but did not
	// return 200.
	KindDownload
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindDownload:
		return "download"
	default:
		return "unknown"
	}
}

// Error is the uniform error value returned by every API operation. Expected
// HTTP failures are returned as *Error, never panicked; transport failures
// are converted into the same shape with KindNetwork.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

// ErrNoToken is returned for authenticated operations when no token is
// present; no network call is made in that case.
func errNoToken() *Error {
	return &Error{Kind: KindAuth, StatusCode: http.StatusUnauthorized, Message: "No token found"}
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: err.Error()}
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// httpError shapes a non-2xx response into an *Error, classifying by status.
func httpError(statusCode int, message string) *Error {
	kind := KindServer
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
	case http.StatusConflict:
		kind = KindConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = KindValidation
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &Error{Kind: kind, StatusCode: statusCode, Message: message}
}

// AsError unwraps err into an *Error when possible.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuthError reports whether err is an authentication failure. Consumers
// treat the session as invalid when this is true.
func IsAuthError(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == KindAuth
}
