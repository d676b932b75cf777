package client

import (
	"errors"
	"fmt"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/model/bitwarden"
	"net/http"
)

var (
	// ErrConflict is returned when creating a resource whose name is already taken.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned when the requested resource does not exist or is not visible to the machine account.
	ErrNotFound = errors.New("not found")
)

// ApiError is a non-success response from the API or identity server.
type ApiError struct {
	Method     string
	Url        string
	StatusCode int
	Body       string
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Url, e.StatusCode, e.Body)
}

// Unwrap exposes ErrNotFound and ErrConflict so callers can use errors.Is on the status.
func (e *ApiError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return nil
	}
}

// Message returns the most useful message found in the response body.
func (e *ApiError) Message() string {
	response := bitwarden.ErrorResponse{}
	if err := unmarshalString(e.Body, &response); err != nil {
		return e.Body
	}

	for _, message := range []string{response.Message, response.ErrorDescription, response.Error} {
		if message != "" {
			return message
		}
	}

	return e.Body
}

func isAuthStatus(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}
