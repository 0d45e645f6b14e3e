// Package apperror provides the error taxonomy shared by the gateway and the
// HTTP handlers, plus mapping of validator errors to stable messages.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a gateway failure so callers can branch uniformly.
type Kind string

const (
	// KindValidation marks a URL rejected before any network I/O happened.
	KindValidation Kind = "validation"
	// KindAuth marks an operation that required a token and got none.
	KindAuth Kind = "auth"
	// KindHTTP marks a non-2xx response from the remote system.
	KindHTTP Kind = "http"
	// KindNetwork marks a transport-level failure with no response.
	KindNetwork Kind = "network"
)

// Error is the single error shape surfaced by the gateway: a numeric status
// and a message, tagged with the failure kind.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
}

// Validation builds the pre-flight rejection error for a non-allow-listed URL.
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Kind: KindValidation}
}

// Auth builds the missing-credential error.
func Auth(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message, Kind: KindAuth}
}

// HTTP builds the error for a remote response that signaled failure.
func HTTP(status int, message string) *Error {
	return &Error{Status: status, Message: message, Kind: KindHTTP}
}

// Network builds the transport-failure error.
func Network(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Kind: KindNetwork}
}

// From normalizes any error into the taxonomy, so callers never see a raw
// transport or encoding error.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Network("request failed")
}

var (
	errRequired           = errors.New("is required")
	errMustBe2Chars       = errors.New("must be at least 2 characters long")
	errInvalidPhoneFormat = errors.New("must be a 10 digit phone number")
)

var customErrors = map[string]error{
	"VerifyRequest.PhoneNumber.required":      errRequired,
	"VerifyRequest.PhoneNumber.phoneformat":   errInvalidPhoneFormat,
	"RegisterRequest.Name.required":           errRequired,
	"RegisterRequest.Name.min":                errMustBe2Chars,
	"RegisterRequest.PhoneNumber.required":    errRequired,
	"RegisterRequest.PhoneNumber.phoneformat": errInvalidPhoneFormat,
	"PurchaseRequest.ProductID.required":      errRequired,
}

// CustomValidationError converts validator errors into a standardized
// per-field message list.
func CustomValidationError(err error) []map[string]string {
	errList := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		for _, e := range validationErr {
			field := e.StructNamespace()
			key := field + "." + e.Tag()

			errMsg := fmt.Sprintf("%s is invalid", field)
			if v, ok := customErrors[key]; ok {
				errMsg = v.Error()
			}

			errList = append(errList, map[string]string{e.Field(): errMsg})
		}
	}
	return errList
}
