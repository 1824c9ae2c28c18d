package clover

import "errors"

var (
	// ErrNotConfigured is returned by write operations when merchant
	// credentials are missing
	ErrNotConfigured = errors.New("clover integration is not configured")

	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnauthorized is returned when the API token is rejected
	ErrUnauthorized = errors.New("unauthorized: invalid API token")

	// ErrNotFound is returned when the remote record does not exist
	ErrNotFound = errors.New("record not found on clover")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")

	// ErrRequestFailed is returned for any other non-success response
	ErrRequestFailed = errors.New("clover request failed")

	// ErrChargeDeclined is returned when both charge endpoints reject
	// the payment token
	ErrChargeDeclined = errors.New("charge was declined")
)
