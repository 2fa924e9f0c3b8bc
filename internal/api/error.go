package api

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"
)

// APIError represents a non-2xx response from the API.
type APIError struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
}

func (e *APIError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("[%d] %s: %s (details: %v)", e.StatusCode, e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

// ValidationError reports a request rejected locally before it was sent,
// e.g. an empty required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// parseError turns an error response body into an APIError. Bodies that are
// not the documented JSON error shape fall back to a generic error carrying
// the raw body.
func parseError(resp *resty.Response) error {
	statusCode := resp.StatusCode()

	var errResp errorResponse
	if err := jsoniter.Unmarshal(resp.Body(), &errResp); err == nil && errResp.Code != "" {
		return &APIError{
			Code:       errResp.Code,
			Message:    errResp.Message,
			StatusCode: statusCode,
			Details:    errResp.Details,
		}
	}

	return &APIError{
		Code:       "unknown_error",
		Message:    string(resp.Body()),
		StatusCode: statusCode,
	}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode == 401
	}
	return false
}

// IsServerError reports whether err is a 5xx from the API.
func IsServerError(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode >= 500
	}
	return false
}
