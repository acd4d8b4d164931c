package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
	apierr "github.com/musecrm/museflow/pkg/api/types/errors"
)

type ErrorMessageOption func(in *apierr.ErrorMessage)

func WithAdvice(advice string) ErrorMessageOption {
	return func(in *apierr.ErrorMessage) {
		if advice != "" {
			in.Advice = advice
		}
	}
}

func WithError(err error) ErrorMessageOption {
	return func(in *apierr.ErrorMessage) {
		if err != nil {
			in.Cause = err
		}
	}
}

// WithFields reports problems per request field.
func WithFields(fields map[string]string) ErrorMessageOption {
	return func(in *apierr.ErrorMessage) {
		if len(fields) != 0 {
			in.Fields = fields
		}
	}
}

// NewErrorMessage makes an error to be responded with code.
//
// The message is the body of the response, and its Cause is kept as the internal error for logging.
func NewErrorMessage(code int, reason string, opts ...ErrorMessageOption) *echo.HTTPError {
	msg := apierr.ErrorMessage{Reason: reason}
	for _, opt := range opts {
		opt(&msg)
	}
	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func NotFound() *echo.HTTPError {
	return NewErrorMessage(http.StatusNotFound, "not found")
}

func BadRequest(advice string, err error, opts ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusBadRequest,
		"bad request",
		append([]ErrorMessageOption{WithAdvice(advice), WithError(err)}, opts...)...,
	)
}

func Conflict(message string, options ...ErrorMessageOption) *echo.HTTPError {
	return NewErrorMessage(http.StatusConflict, message, options...)
}

func InternalServerError(err error) *echo.HTTPError {
	return NewErrorMessage(
		http.StatusInternalServerError,
		"unexpected error",
		WithAdvice("ask your system admin."),
		WithError(err),
	)
}
