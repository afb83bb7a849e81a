package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// BookingCodeLen is the length in characters of a booking code.
const BookingCodeLen = 12

// NewBookingCode returns a fresh random booking code: six bytes from
// crypto/rand rendered as twelve lowercase hex characters.  48 bits keeps
// codes short enough to write down while making collisions and guesses
// impractical over the lifetime of an event.
func NewBookingCode() (string, error) {
	b := make([]byte, BookingCodeLen/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
