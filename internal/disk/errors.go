// Package disk provides an HTTP client for the Yandex Disk REST API.
//
// Every method maps one logical remote operation onto one request and hands
// back the raw *Response: status codes are data, not errors. Callers that
// prefer errors can classify a response with Response.Err. The only failures
// this package raises itself are transport errors, missing credentials
// (config.ErrMissingToken), a provider that declines to issue a transfer
// link (*LinkError), and a download transfer that does not succeed
// (*TransferError).
package disk

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(resp.Err(), disk.ErrNotFound) to check.
var (
	ErrBadRequest          = errors.New("disk: bad request")
	ErrUnauthorized        = errors.New("disk: unauthorized")
	ErrForbidden           = errors.New("disk: forbidden")
	ErrNotFound            = errors.New("disk: not found")
	ErrConflict            = errors.New("disk: conflict")
	ErrPayloadTooLarge     = errors.New("disk: payload too large")
	ErrLocked              = errors.New("disk: resource locked")
	ErrThrottled           = errors.New("disk: throttled")
	ErrInsufficientStorage = errors.New("disk: insufficient storage")
	ErrServerError         = errors.New("disk: server error")
	ErrUnexpectedStatus    = errors.New("disk: unexpected status")
)

// ErrNoTransferLink is wrapped by every *LinkError.
var ErrNoTransferLink = errors.New("disk: provider did not issue a transfer link")

// APIError wraps a sentinel error with the HTTP status code and the
// provider's error document (error code, description, message).
type APIError struct {
	StatusCode  int
	Code        string // provider error class, e.g. "DiskNotFoundError"
	Description string
	Message     string
	Err         error // sentinel, for errors.Is()
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("disk: HTTP %d %s: %s", e.StatusCode, e.Code, e.detail())
	}

	return fmt.Sprintf("disk: HTTP %d: %s", e.StatusCode, e.detail())
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) detail() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Description
}

// LinkError reports that the provider declined to issue an upload or
// download link. No data has been transferred when it is returned.
type LinkError struct {
	Op         string // "upload" or "download"
	Path       string
	StatusCode int
	Body       string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("disk: no %s link for %s (HTTP %d): %s", e.Op, e.Path, e.StatusCode, e.Body)
}

func (e *LinkError) Unwrap() error {
	return ErrNoTransferLink
}

// TransferError reports a transfer against an issued link that did not
// succeed. It is distinct from LinkError: the link existed, the data
// movement failed.
type TransferError struct {
	Op         string
	Path       string
	StatusCode int
	Body       string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("disk: %s of %s failed (HTTP %d): %s", e.Op, e.Path, e.StatusCode, e.Body)
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for 2xx success codes.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusRequestEntityTooLarge:
		return ErrPayloadTooLarge
	case http.StatusLocked:
		return ErrLocked
	case http.StatusTooManyRequests:
		return ErrThrottled
	case http.StatusInsufficientStorage:
		return ErrInsufficientStorage
	default:
		if code >= http.StatusOK && code < http.StatusMultipleChoices {
			return nil
		}

		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return ErrUnexpectedStatus
	}
}
