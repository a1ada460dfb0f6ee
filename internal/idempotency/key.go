// Package idempotency reserves (user, key) pairs in Postgres and replays the
// stored HTTP response for repeated requests.
//
// TryProcessing either returns the saved response of a finished request or an
// open transaction holding the reservation. The caller performs its side
// effects and hands the same transaction to SaveResponse, which writes the
// response and commits. A crash before that leaves the reservation without a
// response, so the next retry redoes the work.
package idempotency

import (
	"errors"
	"fmt"
)

const maxKeyLength = 50

var (
	ErrInvalidKey       = errors.New("idempotency.invalid_key")
	ErrResponseNotSaved = errors.New("idempotency.response_not_saved")
	ErrStorage          = errors.New("idempotency.storage_failed")
)

// Key is a client supplied idempotency key of 1 to 49 bytes.
type Key struct {
	value string
}

func ParseKey(raw string) (Key, error) {
	if raw == "" {
		return Key{}, fmt.Errorf("%w: the idempotency key cannot be empty", ErrInvalidKey)
	}
	if len(raw) >= maxKeyLength {
		return Key{}, fmt.Errorf("%w: the idempotency key must be shorter than %d bytes", ErrInvalidKey, maxKeyLength)
	}
	return Key{value: raw}, nil
}

func (k Key) String() string { return k.value }
