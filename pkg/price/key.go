package price

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	// KeySize is the required length of both the encryption and integrity keys.
	KeySize = 32
)

// Key is fixed length key material for either the encryption or integrity step.
type Key [KeySize]byte

// KeyFromBytes validates the length of raw and copies it into a Key.
func KeyFromBytes(raw []byte) (Key, error) {
	var key Key
	if len(raw) != KeySize {
		return key, fmt.Errorf("%w: got %d bytes, expected %d", ErrKeyLength, len(raw), KeySize)
	}
	copy(key[:], raw)
	return key, nil
}

// KeyFromHex decodes a hex string into a Key.
// Invalid hex returns ErrKeyEncoding, and a decoded length other than KeySize returns ErrKeyLength.
func KeyFromHex(s string) (Key, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %v", ErrKeyEncoding, err)
	}
	return KeyFromBytes(raw)
}

// GenKey will generate a Key with the OS entropy pool.
func GenKey() (Key, error) {
	var key Key
	n, err := rand.Read(key[:])
	if n < KeySize {
		return Key{}, fmt.Errorf("failed to read requested bytes: %v", err)
	}
	return key, nil
}

// Hex returns the key as a hex string.
func (k Key) Hex() string {
	return hex.EncodeToString(k[:])
}

// Wipe zeroes the key.
func (k *Key) Wipe() {
	for i := range k {
		k[i] = 0
	}
}
