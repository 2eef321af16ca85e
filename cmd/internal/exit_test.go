package internal

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/saylorsolutions/pricecrypt/pkg/price"
	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		code int
	}{
		"Nil":      {nil, ExitOK},
		"Other":    {errors.New("boom"), ExitError},
		"Auth":     {fmt.Errorf("decoding: %w", price.ErrAuthentication), ExitAuthFailed},
		"Format":   {fmt.Errorf("%w: short", price.ErrFormat), ExitBadToken},
		"Range":    {price.ErrRange, ExitBadToken},
		"Length":   {fmt.Errorf("encryption key: %w", price.ErrKeyLength), ExitBadKey},
		"Encoding": {price.ErrKeyEncoding, ExitBadKey},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.code, ExitCode(tc.err))
		})
	}
}

func TestEcho(t *testing.T) {
	var buf bytes.Buffer
	Echo(&buf, "price: %d", 7)
	Echo(&buf, "done\n")
	assert.Equal(t, "price: 7\ndone\n", buf.String())
}
