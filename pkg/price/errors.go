package price

import "errors"

var (
	// ErrKeyLength is returned when a key is not exactly KeySize bytes.
	ErrKeyLength = errors.New("invalid key length")
	// ErrKeyEncoding is returned when a textual key can't be decoded.
	ErrKeyEncoding = errors.New("invalid key encoding")
	// ErrFormat is returned when a token or IV is structurally invalid.
	ErrFormat = errors.New("invalid token format")
	// ErrRange is returned when a price or time can't be represented in the wire format.
	ErrRange = errors.New("value out of range")
	// ErrAuthentication is returned when a token's signature doesn't match its contents.
	// This indicates tampering, corruption, or the wrong keys.
	ErrAuthentication = errors.New("token authentication failed")
)
