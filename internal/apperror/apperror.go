// Package apperror defines the error taxonomy shared by the request
// handlers and the model host. Every failure that can reach a client is
// one of these kinds; the gin responder converts anything else into a
// generic internal error so no raw cause ever leaks over the wire.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInvalidInput  Kind = "invalid_input"
	KindUnavailable   Kind = "service_unavailable"
	KindInference     Kind = "inference_error"
	KindModelContract Kind = "model_contract_error"
	KindInternal      Kind = "internal_error"
)

// Error carries the failure kind, the HTTP status to render, a
// client-safe message and the underlying cause (server-side only).
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInput reports a user-correctable upload problem. The status is
// caller-chosen (400 for a missing field, 422 for a rejected payload).
func InvalidInput(status int, message string) *Error {
	return &Error{Kind: KindInvalidInput, Status: status, Message: message}
}

// Unavailable reports that the model host is not ready to serve.
// Clients may retry later.
func Unavailable(message string) *Error {
	return &Error{Kind: KindUnavailable, Status: http.StatusServiceUnavailable, Message: message}
}

// Inference wraps a failure raised by the inference call itself. The
// cause is kept for server-side logs; the client message stays generic.
func Inference(err error) *Error {
	return &Error{
		Kind:    KindInference,
		Status:  http.StatusInternalServerError,
		Message: "Model inference failed.",
		Err:     err,
	}
}

// ModelContract reports that the model's output vocabulary does not
// match the expected classes. This is a deployment defect (an
// incompatible MODEL_NAME), not a user error.
func ModelContract(label string) *Error {
	return &Error{
		Kind:    KindModelContract,
		Status:  http.StatusInternalServerError,
		Message: "Model returned an unexpected class.",
		Err:     fmt.Errorf("unrecognized model label %q", label),
	}
}

// Internal wraps any unclassified failure.
func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: "Internal server error.",
		Err:     err,
	}
}

// FromError extracts the *Error from err's chain, wrapping unknown
// errors as Internal so callers always get a renderable value.
func FromError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
