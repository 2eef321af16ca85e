package keyring

import (
	"crypto/rand"
	"errors"
	"fmt"

	bin "github.com/saylorsolutions/binmap"
	"golang.org/x/crypto/scrypt"
)

const (
	DefaultLargeIterations       uint64 = 1 << 20
	DefaultInteractiveIterations uint64 = 1 << 15
	DefaultRelBlockSize          uint8  = 8
	DefaultCpuCost               uint8  = 1
	MaxCpuCost                   uint8  = 4
	AES256KeySize                       = 256 / 8
	SaltSize                            = 32

	// maxMemoryCost bounds r*N, which scales scrypt's memory use (128*r*N bytes).
	maxMemoryCost = uint64(DefaultRelBlockSize) * DefaultLargeIterations
)

var (
	ErrEmptyPassphrase = errors.New("cannot use an empty passphrase")
)

// KeyGenerator derives an AES-256 key from a passphrase with scrypt.
type KeyGenerator struct {
	iterations        uint64
	relativeBlockSize uint8
	cpuCost           uint8
}

// mapper maps the tuning values, which are persisted with a locked keyring.
func (g *KeyGenerator) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Int(&g.iterations),
		bin.Byte(&g.relativeBlockSize),
		bin.Byte(&g.cpuCost),
	)
}

type GeneratorOpt = func(*KeyGenerator) error

// SetLongDelayIterations sets a higher iteration count. This is the default.
func SetLongDelayIterations() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.iterations = DefaultLargeIterations
		return nil
	}
}

// SetShortDelayIterations sets a lower iteration count, appropriate for interactive use.
// It's recommended to use longer passphrases with this approach.
func SetShortDelayIterations() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.iterations = DefaultInteractiveIterations
		return nil
	}
}

// SetIterations allows the caller to customize the iteration count.
// Only use this option if you know what you're doing.
func SetIterations(iterations uint64) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if err := validIterations(iterations); err != nil {
			return err
		}
		gen.iterations = iterations
		return nil
	}
}

// SetCPUCost sets the parallelism factor for key generation from the default of 1, up to MaxCpuCost.
// Only use this option if you know what you're doing.
func SetCPUCost(cost uint8) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if cost < DefaultCpuCost || cost > MaxCpuCost {
			return fmt.Errorf("cpu cost must be between %d and %d", DefaultCpuCost, MaxCpuCost)
		}
		gen.cpuCost = cost
		return nil
	}
}

// SetRelativeBlockSize sets the relative block size.
// Larger sizes need fewer iterations, since r*N is capped to keep memory use bounded.
// Only use this option if you know what you're doing.
func SetRelativeBlockSize(size uint8) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if size < DefaultRelBlockSize {
			return errors.New("relative block size must be at least 8")
		}
		gen.relativeBlockSize = size
		return nil
	}
}

// NewKeyGenerator creates a new KeyGenerator using the options provided as zero or more GeneratorOpt.
// By default, DefaultLargeIterations is used.
func NewKeyGenerator(opts ...GeneratorOpt) (*KeyGenerator, error) {
	gen := &KeyGenerator{
		iterations:        DefaultLargeIterations,
		relativeBlockSize: DefaultRelBlockSize,
		cpuCost:           DefaultCpuCost,
	}
	for _, opt := range opts {
		if err := opt(gen); err != nil {
			return nil, err
		}
	}
	if err := gen.checkCost(); err != nil {
		return nil, err
	}
	return gen, nil
}

func validIterations(iterations uint64) error {
	if iterations <= 1 {
		return errors.New("iterations cannot be <= 1")
	}
	if iterations&(iterations-1) != 0 {
		return errors.New("iterations must be a power of 2")
	}
	return nil
}

// checkCost rejects tuning values that would make key derivation impractically expensive.
func (g *KeyGenerator) checkCost() error {
	if err := validIterations(g.iterations); err != nil {
		return err
	}
	if g.iterations > DefaultLargeIterations {
		return fmt.Errorf("iterations %d exceed the maximum of %d", g.iterations, DefaultLargeIterations)
	}
	if g.relativeBlockSize < DefaultRelBlockSize {
		return fmt.Errorf("relative block size %d is below the minimum of %d", g.relativeBlockSize, DefaultRelBlockSize)
	}
	if uint64(g.relativeBlockSize)*g.iterations > maxMemoryCost {
		return fmt.Errorf("relative block size %d with %d iterations exceeds the maximum memory cost", g.relativeBlockSize, g.iterations)
	}
	if g.cpuCost < DefaultCpuCost || g.cpuCost > MaxCpuCost {
		return fmt.Errorf("cpu cost %d must be between %d and %d", g.cpuCost, DefaultCpuCost, MaxCpuCost)
	}
	return nil
}

// validate checks tuning values read from untrusted input, before any scrypt work is done.
func (g *KeyGenerator) validate() error {
	if err := g.checkCost(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}

// GenerateKey will generate an AES-256 key and a random salt from the passphrase.
func (g *KeyGenerator) GenerateKey(pass []byte) (key []byte, salt []byte, err error) {
	if len(pass) == 0 {
		return nil, nil, ErrEmptyPassphrase
	}
	salt = make([]byte, SaltSize)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, err
	}
	key, err = g.DeriveKey(pass, salt)
	return key, salt, err
}

// DeriveKey will recover a key from the passphrase and a known salt.
// This doesn't ensure that the given passphrase is the *correct* passphrase.
func (g *KeyGenerator) DeriveKey(pass []byte, salt []byte) ([]byte, error) {
	if len(pass) == 0 {
		return nil, ErrEmptyPassphrase
	}
	return scrypt.Key(pass, salt, int(g.iterations), int(g.relativeBlockSize), int(g.cpuCost), AES256KeySize)
}
