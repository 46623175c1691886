package bullhorn

import (
	"errors"
	"fmt"
)

// AuthStage identifies which stage of the credential lifecycle failed.
type AuthStage string

// Credential lifecycle stages.
const (
	// StageAuthorize is the authorization-code retrieval stage
	StageAuthorize AuthStage = "authorize"

	// StageTokenExchange is the authorization-code-for-token exchange stage
	StageTokenExchange AuthStage = "token exchange"

	// StageTokenRefresh is the refresh-token stage
	StageTokenRefresh AuthStage = "token refresh"

	// StageLogin is the REST session login stage
	StageLogin AuthStage = "rest login"
)

// AuthError reports a failure in the Bullhorn credential lifecycle. Stage
// names the failing step so callers can branch without matching message text.
// Status is the upstream HTTP status when one was observed, zero otherwise.
type AuthError struct {
	Stage   AuthStage
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("bullhorn auth failed at %s: status %d: %s", e.Stage, e.Status, e.Message)
	}
	return fmt.Sprintf("bullhorn auth failed at %s: %s", e.Stage, e.Message)
}

// newAuthError creates an AuthError for the given stage.
func newAuthError(stage AuthStage, status int, format string, args ...any) *AuthError {
	return &AuthError{
		Stage:   stage,
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

// APIError reports a non-success response from a data-plane call after the
// single 401 retry has been exhausted.
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("bullhorn API request failed: status %d: %s", e.Status, e.Body)
}

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsAPIError reports whether err is (or wraps) an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
