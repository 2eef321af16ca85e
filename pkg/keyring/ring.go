package keyring

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	bin "github.com/saylorsolutions/binmap"
	"github.com/saylorsolutions/pricecrypt/pkg/price"
)

const (
	magicBytes    uint16 = 0x5052
	formatVersion uint8  = 1

	flagLocked uint8 = 1 << 0

	pairLen = 2 * price.KeySize
)

var (
	ErrInvalidData = errors.New("unable to use keyring data")
	ErrLocked      = errors.New("keyring is locked with a passphrase")
	ErrNotLocked   = errors.New("keyring is not locked")
)

var endian = binary.BigEndian

// Pair is the encryption and integrity key pair shared with a trading partner.
type Pair struct {
	Encryption price.Key
	Integrity  price.Key
}

// Generate creates a new Pair with secure random keys.
func Generate() (Pair, error) {
	var (
		p   Pair
		err error
	)
	if p.Encryption, err = price.GenKey(); err != nil {
		return Pair{}, err
	}
	if p.Integrity, err = price.GenKey(); err != nil {
		return Pair{}, err
	}
	return p, nil
}

// Encoder creates a price.Encoder from the Pair.
func (p Pair) Encoder(opts ...price.EncoderOpt) (*price.Encoder, error) {
	return price.NewKeyEncoder(p.Encryption, p.Integrity, opts...)
}

// Wipe zeroes both keys.
func (p *Pair) Wipe() {
	p.Encryption.Wipe()
	p.Integrity.Wipe()
}

func (p *Pair) bytes() []byte {
	buf := make([]byte, 0, pairLen)
	buf = append(buf, p.Encryption[:]...)
	return append(buf, p.Integrity[:]...)
}

func (p *Pair) setBytes(data []byte) error {
	if len(data) != pairLen {
		return fmt.Errorf("%w: key material has length %d, expected %d", ErrInvalidData, len(data), pairLen)
	}
	copy(p.Encryption[:], data[:price.KeySize])
	copy(p.Integrity[:], data[price.KeySize:])
	return nil
}

type header struct {
	magic   uint16
	version uint8
	flags   uint8
}

func (h *header) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Int(&h.magic),
		bin.Byte(&h.version),
		bin.Byte(&h.flags),
	)
}

func (h *header) locked() bool {
	return h.flags&flagLocked != 0
}

func readHeader(r io.Reader) (header, error) {
	var h header
	if err := h.mapper().Read(r, endian); err != nil {
		return h, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if h.magic != magicBytes {
		return h, fmt.Errorf("%w: not a keyring", ErrInvalidData)
	}
	if h.version != formatVersion {
		return h, fmt.Errorf("%w: unsupported keyring version %d", ErrInvalidData, h.version)
	}
	return h, nil
}

// MarshalBinary encodes the Pair as a plain, unlocked keyring.
func (p Pair) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	h := header{magic: magicBytes, version: formatVersion}
	if err := h.mapper().Write(&buf, endian); err != nil {
		return nil, err
	}
	buf.Write(p.bytes())
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a plain keyring. A locked keyring returns ErrLocked.
func (p *Pair) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return err
	}
	if h.locked() {
		return ErrLocked
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return p.setBytes(rest)
}

// IsLocked reports whether data is a keyring locked with a passphrase.
func IsLocked(data []byte) (bool, error) {
	h, err := readHeader(bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	return h.locked(), nil
}

// Lock encrypts the Pair with a key derived from pass.
func Lock(p Pair, pass []byte, opts ...GeneratorOpt) ([]byte, error) {
	gen, err := NewKeyGenerator(opts...)
	if err != nil {
		return nil, err
	}
	key, salt, err := gen.GenerateKey(pass)
	if err != nil {
		return nil, err
	}
	defer wipe(key)

	var buf bytes.Buffer
	h := header{magic: magicBytes, version: formatVersion, flags: flagLocked}
	if err := bin.MapSequence(h.mapper(), gen.mapper()).Write(&buf, endian); err != nil {
		return nil, err
	}
	additional := append([]byte(nil), buf.Bytes()...)
	buf.Write(salt)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	plain := p.bytes()
	defer wipe(plain)
	buf.Write(gcm.Seal(nonce, nonce, plain, additional))
	return buf.Bytes(), nil
}

// Unlock decrypts a keyring created with Lock.
// A wrong passphrase or altered data returns ErrInvalidData.
func Unlock(data []byte, pass []byte) (Pair, error) {
	if len(pass) == 0 {
		return Pair{}, ErrEmptyPassphrase
	}
	r := bytes.NewReader(data)
	h, err := readHeader(r)
	if err != nil {
		return Pair{}, err
	}
	if !h.locked() {
		return Pair{}, ErrNotLocked
	}
	gen := new(KeyGenerator)
	if err := gen.mapper().Read(r, endian); err != nil {
		return Pair{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if err := gen.validate(); err != nil {
		return Pair{}, err
	}
	additional := data[:len(data)-r.Len()]
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(r, salt); err != nil {
		return Pair{}, fmt.Errorf("%w: missing salt", ErrInvalidData)
	}
	sealed, err := io.ReadAll(r)
	if err != nil {
		return Pair{}, err
	}

	key, err := gen.DeriveKey(pass, salt)
	if err != nil {
		return Pair{}, err
	}
	defer wipe(key)
	gcm, err := newGCM(key)
	if err != nil {
		return Pair{}, err
	}
	if len(sealed) < gcm.NonceSize() {
		return Pair{}, fmt.Errorf("%w: missing nonce", ErrInvalidData)
	}
	nonce, cipherText := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, cipherText, additional)
	if err != nil {
		return Pair{}, fmt.Errorf("%w: wrong passphrase or corrupted keyring", ErrInvalidData)
	}
	defer wipe(plain)

	var p Pair
	if err := p.setBytes(plain); err != nil {
		return Pair{}, err
	}
	return p, nil
}

// WriteFile writes keyring data to path, readable only by the owner.
func WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0600)
}

// ReadFile reads a keyring from path, unlocking it with pass if it's locked.
// ErrLocked is returned if the keyring is locked and pass is empty.
func ReadFile(path string, pass []byte) (Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pair{}, err
	}
	locked, err := IsLocked(data)
	if err != nil {
		return Pair{}, err
	}
	if !locked {
		var p Pair
		if err := p.UnmarshalBinary(data); err != nil {
			return Pair{}, err
		}
		return p, nil
	}
	if len(pass) == 0 {
		return Pair{}, ErrLocked
	}
	return Unlock(data, pass)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
