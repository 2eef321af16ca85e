package xor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPadScreenNeg(t *testing.T) {
	_, err := newPadScreen(nil, 0)
	assert.Error(t, err)
	_, err = newPadScreen([]byte{0}, 2)
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	var (
		payload = []byte{0x0, 0x1, 0xff, 0x10}
		pad     = []byte{0xde, 0xad, 0xbe, 0xef, 0x42}
		dst     = make([]byte, 4)
	)
	n, err := Apply(dst, payload, pad)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0xde, 0xac, 0x41, 0xff}, dst)

	n, err = Apply(dst, dst, pad)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, payload, dst)
}

func TestApply_Neg(t *testing.T) {
	_, err := Apply(make([]byte, 1), []byte{0x1, 0x2}, []byte{0x1, 0x2})
	assert.Error(t, err)
	_, err = Apply(make([]byte, 2), []byte{0x1, 0x2}, []byte{0x1})
	assert.Error(t, err)
	_, err = Apply(make([]byte, 2), []byte{0x1, 0x2}, nil)
	assert.Error(t, err)
}
