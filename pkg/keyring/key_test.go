package keyring

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewKeyGenerator(t *testing.T) {
	gen, err := NewKeyGenerator()
	assert.NoError(t, err)
	assert.Equal(t, DefaultLargeIterations, gen.iterations)
	assert.Equal(t, DefaultCpuCost, gen.cpuCost)
	assert.Equal(t, DefaultRelBlockSize, gen.relativeBlockSize)

	gen, err = NewKeyGenerator(
		SetIterations(2),
		SetLongDelayIterations(),
		SetShortDelayIterations(),
		SetCPUCost(DefaultCpuCost),
		SetRelativeBlockSize(DefaultRelBlockSize),
	)
	assert.NoError(t, err)
	assert.Equal(t, DefaultInteractiveIterations, gen.iterations)
}

func TestNewKeyGenerator_Neg(t *testing.T) {
	_, err := NewKeyGenerator(SetIterations(1))
	assert.Error(t, err)
	_, err = NewKeyGenerator(SetIterations(6))
	assert.Error(t, err)
	_, err = NewKeyGenerator(SetCPUCost(0))
	assert.Error(t, err)
	_, err = NewKeyGenerator(SetRelativeBlockSize(4))
	assert.Error(t, err)
	_, err = NewKeyGenerator(SetCPUCost(MaxCpuCost + 1))
	assert.Error(t, err)
	// A larger block size only fits with fewer iterations.
	_, err = NewKeyGenerator(SetRelativeBlockSize(2 * DefaultRelBlockSize))
	assert.Error(t, err)
	_, err = NewKeyGenerator(SetRelativeBlockSize(2*DefaultRelBlockSize), SetIterations(DefaultLargeIterations/2))
	assert.NoError(t, err)
}

func TestKeyGenerator_validate_Neg(t *testing.T) {
	tests := map[string]KeyGenerator{
		"MaxBlockSize":      {iterations: DefaultLargeIterations, relativeBlockSize: 0xff, cpuCost: DefaultCpuCost},
		"MaxCpuCost":        {iterations: DefaultInteractiveIterations, relativeBlockSize: DefaultRelBlockSize, cpuCost: 0xff},
		"MaxBoth":           {iterations: DefaultLargeIterations, relativeBlockSize: 0xff, cpuCost: 0xff},
		"TooManyIterations": {iterations: DefaultLargeIterations << 1, relativeBlockSize: DefaultRelBlockSize, cpuCost: DefaultCpuCost},
		"ZeroCpuCost":       {iterations: DefaultInteractiveIterations, relativeBlockSize: DefaultRelBlockSize},
	}
	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, gen.validate(), ErrInvalidData)
		})
	}

	largest := KeyGenerator{iterations: DefaultLargeIterations, relativeBlockSize: DefaultRelBlockSize, cpuCost: MaxCpuCost}
	assert.NoError(t, largest.validate())
}

func TestKeyGenerator_GenerateKey(t *testing.T) {
	gen, err := NewKeyGenerator(fastIterations)
	assert.NoError(t, err)

	key, salt, err := gen.GenerateKey([]byte("a test password"))
	assert.NoError(t, err)
	assert.Len(t, key, AES256KeySize)
	assert.Len(t, salt, SaltSize)

	derived, err := gen.DeriveKey([]byte("a test password"), salt)
	assert.NoError(t, err)
	assert.Equal(t, key, derived)

	_, _, err = gen.GenerateKey(nil)
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestKeyGenerator_mapper(t *testing.T) {
	var buf bytes.Buffer
	gen, err := NewKeyGenerator(SetShortDelayIterations(), SetCPUCost(2))
	assert.NoError(t, err)
	assert.NoError(t, gen.mapper().Write(&buf, endian))
	assert.Equal(t, 10, buf.Len())

	read := new(KeyGenerator)
	assert.NoError(t, read.mapper().Read(&buf, endian))
	assert.Equal(t, gen, read)
	assert.NoError(t, read.validate())
}
