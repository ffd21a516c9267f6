// Package errs provides the error types returned by the web handlers.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted carries an error through the request along with the HTTP status
// the client should see. Its message is safe to return to the client.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. Handlers use
// this for expected errors such as a missing profile or an empty queue.
func NewTrusted(err error, status int) error {
	return &Trusted{Err: err, Status: status}
}

// NewTrustedf formats a message and wraps it with an HTTP status code.
func NewTrustedf(status int, format string, args ...any) error {
	return &Trusted{Err: fmt.Errorf(format, args...), Status: status}
}

// Error implements the error interface.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap returns the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// StatusText returns the response for a status when the underlying error
// must not reach the client.
func StatusText(status int) Response {
	return Response{Error: http.StatusText(status)}
}
