package board

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions the dialogue controller recovers from
// locally. Anything else coming out of the store is a store failure.
var (
	// ErrNotFound means the listing vanished between listing and acting
	// on it (expired, or deleted concurrently).
	ErrNotFound = errors.New("board: listing not found")
	// ErrDuplicateID means the unique id index rejected an insert.
	ErrDuplicateID = errors.New("board: duplicate listing id")
	// ErrNotEditable means the owner edit window has expired.
	ErrNotEditable = errors.New("board: edit window expired")
)

// ValidationError reports user input that fails domain validation. It is
// recovered by re-rendering the same input screen with the reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "board: " + e.Reason
}

// AsValidation extracts a ValidationError if err carries one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// storeErr wraps a driver failure with the failed operation name.
func storeErr(op string, err error) error {
	return fmt.Errorf("board: %s: %w", op, err)
}
