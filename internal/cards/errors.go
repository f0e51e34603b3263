// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cards

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse is returned when the API answers without any choice or text.
	ErrEmptyResponse = errors.New("empty response from language model")

	// ErrContentBlocked is returned when the provider withholds output for safety reasons.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrUnknownProvider is returned by NewBackend for an unsupported provider.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidConfig is returned when a backend cannot be constructed from its settings.
	ErrInvalidConfig = errors.New("invalid backend configuration")
)

// BackendError describes a failed call to a completion API.
type BackendError struct {
	Op      string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cards.%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("cards.%s: %s", e.Op, e.Message)
}

func (e *BackendError) Unwrap() error { return e.Err }
