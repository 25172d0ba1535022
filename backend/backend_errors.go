package backend

import (
	"errors"
	"fmt"
)

// RemoteError is returned for any non-2xx answer of the booking API.
// Message holds the server supplied message and may be empty.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if len(e.Message) == 0 {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}

	return fmt.Sprintf("request failed with status %d: %v", e.Status, e.Message)
}

// Message returns the server supplied message carried by err, or fallback
// when there is none.
func Message(err error, fallback string) string {
	var remoteErr *RemoteError

	if errors.As(err, &remoteErr) && len(remoteErr.Message) != 0 {
		return remoteErr.Message
	}

	return fallback
}

// IsStatus reports whether err is a RemoteError with the given status.
func IsStatus(err error, status int) bool {
	var remoteErr *RemoteError

	return errors.As(err, &remoteErr) && remoteErr.Status == status
}
