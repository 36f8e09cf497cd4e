package graceful

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigurationError reports invalid descriptor wiring, such as a required
// parameter that also carries a default, or a duplicate field name. It is
// returned from schema constructors so that bad configuration surfaces at
// process bootstrap, never during request handling.
type ConfigurationError struct {
	Reason string
}

// Error returns the configuration problem.
func (e *ConfigurationError) Error() string {
	return "graceful: " + e.Reason
}

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// Failure describes a single parameter or field that could not be processed.
type Failure struct {
	Name    string
	Message string
}

func (f Failure) String() string { return f.Name + ": " + f.Message }

// ParamError aggregates every problem found while resolving a query string.
// It is terminal for the request: the handler never runs.
type ParamError struct {
	Missing []string  // required parameters absent from the query
	Invalid []Failure // coercion or validator failures, in declaration order
}

// Error returns a description listing all missing and invalid parameters.
func (e *ParamError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required parameters: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		invalid := make([]string, len(e.Invalid))
		for i, f := range e.Invalid {
			invalid[i] = f.String()
		}
		parts = append(parts, "invalid: "+strings.Join(invalid, "; "))
	}
	return strings.Join(parts, ", ")
}

// StatusCode maps parameter errors to 400 Bad Request.
func (e *ParamError) StatusCode() int { return http.StatusBadRequest }

func (e *ParamError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// ValidationError aggregates every failure found while decoding a
// representation: structurally missing or forbidden fields, coercion
// failures, validator failures, and whole-object validation messages.
type ValidationError struct {
	Missing   []string  // fields absent from a non-partial representation
	Forbidden []string  // read-only fields present in the representation
	Failed    []Failure // coercion ("failed to parse") errors
	Invalid   []Failure // validator errors on successfully coerced values
	Object    []string  // whole-object validation messages
}

// Error returns a description that explains everything that went wrong
// with deserialization.
func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: ["+strings.Join(e.Missing, ", ")+"]")
	}
	if len(e.Forbidden) > 0 {
		parts = append(parts, "forbidden: ["+strings.Join(e.Forbidden, ", ")+"]")
	}
	if len(e.Invalid) > 0 {
		invalid := make([]string, len(e.Invalid))
		for i, f := range e.Invalid {
			invalid[i] = f.String()
		}
		parts = append(parts, "invalid: "+strings.Join(invalid, "; "))
	}
	if len(e.Failed) > 0 {
		failed := make([]string, len(e.Failed))
		for i, f := range e.Failed {
			failed[i] = f.String()
		}
		parts = append(parts, "failed to parse: "+strings.Join(failed, "; "))
	}
	if len(e.Object) > 0 {
		parts = append(parts, strings.Join(e.Object, "; "))
	}
	return strings.Join(parts, ", ")
}

// StatusCode maps validation errors to 400 Bad Request.
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Forbidden) == 0 &&
		len(e.Failed) == 0 && len(e.Invalid) == 0 && len(e.Object) == 0
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is a domain error with an explicit HTTP status code. Handlers
// return it (via Error or Errorf) for conditions like "not found"; the
// dispatcher propagates it untouched.
type HTTPError struct {
	Status  int
	Message string
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a 404 error with the given message.
func NotFound(message string) error {
	return &HTTPError{Status: http.StatusNotFound, Message: message}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// ErrorEnvelope is the wire shape of a failed request.
type ErrorEnvelope struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// envelopeError builds the structured error body and status for err.
func envelopeError(err error) (int, ErrorEnvelope) {
	status := ErrorStatus(err)

	var title string
	switch {
	case isError[*ParamError](err):
		title = "Invalid parameters"
	case isError[*ValidationError](err):
		title = "Representation deserialization failed"
	default:
		title = http.StatusText(status)
	}

	return status, ErrorEnvelope{Title: title, Description: err.Error()}
}

func isError[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
