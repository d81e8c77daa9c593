package main

import (
	"errors"
	"fmt"
)

var (
	ErrSessionClosed  = errors.New("no edit session is open")
	ErrSessionBusy    = errors.New("edit session is already submitting")
	ErrUnknownScreen  = errors.New("screen does not exist")
	ErrEntityNotFound = errors.New("entity not found in the loaded list")

	ErrActivityNotFound = errors.New("activity not found")
)

// ValidationError reports a draft rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError reports a request which never got an http response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError reports a response body which is not the expected json.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: invalid response body: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ServerRejection reports a non-success http status. Message is what
// the console shows inline to the user.
type ServerRejection struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerRejection) Error() string {
	return e.Message
}

// InlineMessage returns the text to surface in the edit dialog for err.
// The fallback is used when err carries no message of its own.
func InlineMessage(err error, fallback string) string {
	var rejection *ServerRejection
	var validation *ValidationError
	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &rejection):
		if rejection.Message != "" {
			return rejection.Message
		}
		return fallback
	case err == nil:
		return ""
	default:
		return fallback
	}
}
