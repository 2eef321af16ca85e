package price

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/saylorsolutions/pricecrypt/pkg/xor"
)

const (
	// TokenLen is the length of every valid token.
	TokenLen = 38

	priceLen     = 8
	signatureLen = 4
	payloadLen   = IVSize + priceLen + signatureLen
)

// Result is a successfully decoded and verified token.
type Result struct {
	// Price is the original price passed to Encode.
	Price int64
	// Time is the time embedded in the token's IV.
	Time time.Time
}

// Encoder encrypts and decrypts price tokens with a fixed key pair.
// It holds no mutable state, so a single Encoder may be used concurrently, as long as Wipe isn't called while in use.
type Encoder struct {
	encKey Key
	intKey Key
	clock  Clock
}

// EncoderOpt customizes an Encoder in NewEncoder.
type EncoderOpt = func(*Encoder) error

// WithClock sets the Clock used to generate IVs. SystemClock is used by default.
func WithClock(clock Clock) EncoderOpt {
	return func(e *Encoder) error {
		if clock == nil {
			return errors.New("cannot use a nil clock")
		}
		e.clock = clock
		return nil
	}
}

// NewEncoder creates an Encoder from raw key material.
// Both keys must be exactly KeySize bytes, otherwise ErrKeyLength is returned.
func NewEncoder(encKey, intKey []byte, opts ...EncoderOpt) (*Encoder, error) {
	eKey, err := KeyFromBytes(encKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	iKey, err := KeyFromBytes(intKey)
	if err != nil {
		return nil, fmt.Errorf("integrity key: %w", err)
	}
	return NewKeyEncoder(eKey, iKey, opts...)
}

// NewKeyEncoder creates an Encoder from already validated keys.
func NewKeyEncoder(encKey, intKey Key, opts ...EncoderOpt) (*Encoder, error) {
	e := &Encoder{
		encKey: encKey,
		intKey: intKey,
		clock:  SystemClock,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Encode creates a token for price, using the current time from the Encoder's Clock.
func (e *Encoder) Encode(price int64) (string, error) {
	iv, err := EncodeTime(e.clock.Now())
	if err != nil {
		return "", err
	}

	var plain [priceLen]byte
	binary.BigEndian.PutUint64(plain[:], uint64(price))

	var payload [payloadLen]byte
	copy(payload[:IVSize], iv[:])
	pad := e.pad(iv)
	if _, err := xor.Apply(payload[IVSize:IVSize+priceLen], plain[:], pad[:]); err != nil {
		return "", err
	}
	sig := e.sign(plain, iv)
	copy(payload[IVSize+priceLen:], sig[:])

	return strings.TrimRight(base64.URLEncoding.EncodeToString(payload[:]), "="), nil
}

// EncodeUint64 is like Encode, but returns ErrRange if price doesn't fit in an int64.
func (e *Encoder) EncodeUint64(price uint64) (string, error) {
	if price > math.MaxInt64 {
		return "", fmt.Errorf("%w: price %d exceeds the maximum of %d", ErrRange, price, int64(math.MaxInt64))
	}
	return e.Encode(int64(price))
}

// Decode recovers the price and time from token, and verifies its signature.
// Structural problems return ErrFormat before any cryptographic work is done.
// A signature mismatch returns ErrAuthentication, and the Result should be ignored.
func (e *Encoder) Decode(token string) (Result, error) {
	if len(token) != TokenLen {
		return Result{}, fmt.Errorf("%w: token has length %d, expected %d", ErrFormat, len(token), TokenLen)
	}
	if rem := len(token) % 4; rem != 0 {
		token += strings.Repeat("=", 4-rem)
	}
	payload, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(payload) != payloadLen {
		return Result{}, fmt.Errorf("%w: payload has length %d, expected %d", ErrFormat, len(payload), payloadLen)
	}

	var (
		iv        IV
		encrypted = payload[IVSize : IVSize+priceLen]
		sig       = payload[IVSize+priceLen:]
		plain     [priceLen]byte
	)
	copy(iv[:], payload[:IVSize])
	pad := e.pad(iv)
	if _, err := xor.Apply(plain[:], encrypted, pad[:]); err != nil {
		return Result{}, err
	}
	expected := e.sign(plain, iv)
	if !hmac.Equal(expected[:], sig) {
		return Result{}, ErrAuthentication
	}
	return Result{
		Price: int64(binary.BigEndian.Uint64(plain[:])),
		Time:  iv.Time(),
	}, nil
}

// Wipe zeroes the Encoder's copy of the keys. The Encoder must not be used afterward.
func (e *Encoder) Wipe() {
	e.encKey.Wipe()
	e.intKey.Wipe()
}

// pad returns the first 8 bytes of HMAC-SHA1(encKey, iv).
func (e *Encoder) pad(iv IV) [priceLen]byte {
	var pad [priceLen]byte
	h := hmac.New(sha1.New, e.encKey[:])
	h.Write(iv[:])
	copy(pad[:], h.Sum(nil))
	return pad
}

// sign returns the first 4 bytes of HMAC-SHA1(intKey, price || iv).
func (e *Encoder) sign(price [priceLen]byte, iv IV) [signatureLen]byte {
	var sig [signatureLen]byte
	h := hmac.New(sha1.New, e.intKey[:])
	h.Write(price[:])
	h.Write(iv[:])
	copy(sig[:], h.Sum(nil))
	return sig
}

// ParsePrice parses a base 10 price, returning ErrRange if it doesn't fit in an int64.
func ParsePrice(s string) (int64, error) {
	p, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: price %q doesn't fit in a signed 64-bit integer", ErrRange, s)
		}
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return p, nil
}
