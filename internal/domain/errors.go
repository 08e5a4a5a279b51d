package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrSecretNotFound  = errors.New("secret not found")

	// ErrInvalidSession means the account credentials were revoked or deactivated.
	// It ends the run for that account.
	ErrInvalidSession = errors.New("invalid session")
	ErrLoginFailed    = errors.New("login failed")
	ErrNoGameID       = errors.New("game start returned no game id")
)

// RequestError reports a request that could not complete.
type RequestError struct {
	Op  string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// APIError reports a request the server answered with a refusal message.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// ServerMessage returns the refusal message carried by err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message, true
	}
	return "", false
}

func InvalidSession(account AccountID, cause error) error {
	if cause == nil {
		return fmt.Errorf("account %s: %w", account, ErrInvalidSession)
	}
	return fmt.Errorf("account %s: %w: %w", account, ErrInvalidSession, cause)
}
