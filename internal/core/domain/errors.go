package domain

import "errors"

var (
	// ErrNotPendingDelete is returned when a delete is attempted on a record
	// whose status is not PendingDelete. No request is sent to the backend.
	ErrNotPendingDelete = errors.New("only records with status 'delete' can be deleted")

	// ErrRequestFailed marks a gateway call that came back absent.
	ErrRequestFailed = errors.New("backend request failed")

	ErrRecordNotFound = errors.New("record not found")
	ErrNotLoaded      = errors.New("record is not on the loaded page")

	ErrInvalidToken       = errors.New("invalid token")
	ErrLoginFailed        = errors.New("login failed")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrSessionNotFound    = errors.New("session not found")
)
