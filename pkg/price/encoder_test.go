package price

import (
	"encoding/base64"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testEncKey = mustHexKey("b08c70cfbcb0eb6cab7e82c6b75da52072ae62b2bf4b990bb80a48d8141eec07")
	testIntKey = mustHexKey("bf77ec55c30130c1d8cd1862ed2a4cd2c76ac33bc0c4ce8a3d3bbd3ad5687792")
)

const knownToken = "SjpvRwAB4kB7jEpgW5IA8p73ew9ic6VZpFsPnA"

func mustHexKey(s string) Key {
	key, err := KeyFromHex(s)
	if err != nil {
		panic(err)
	}
	return key
}

func testEncoder(t *testing.T, opts ...EncoderOpt) *Encoder {
	t.Helper()
	enc, err := NewEncoder(testEncKey[:], testIntKey[:], opts...)
	require.NoError(t, err)
	return enc
}

func TestNewEncoder_Neg(t *testing.T) {
	_, err := NewEncoder(testEncKey[:31], testIntKey[:])
	assert.ErrorIs(t, err, ErrKeyLength)
	_, err = NewEncoder(testEncKey[:], append(testIntKey[:], 0))
	assert.ErrorIs(t, err, ErrKeyLength)
	_, err = NewEncoder(nil, nil)
	assert.ErrorIs(t, err, ErrKeyLength)
	_, err = NewEncoder(testEncKey[:], testIntKey[:], WithClock(nil))
	assert.Error(t, err)
}

func TestEncoder_KnownVector(t *testing.T) {
	enc := testEncoder(t)
	res, err := enc.Decode(knownToken)
	require.NoError(t, err)
	assert.Equal(t, int64(709959680), res.Price)
	assert.True(t, time.Unix(1245343559, 123456000).Equal(res.Time), "got %s", res.Time)
}

func TestEncoder_Encode(t *testing.T) {
	enc := testEncoder(t, WithClock(FixedClock(fixedTime)))
	tests := map[string]struct {
		price int64
		token string
	}{
		"Positive": {13532120, "ZVPxAAAJ-_FlU_EAAAn78a39Q2bDFbaEDYjuHA"},
		"Negative": {-1, "ZVPxAAAJ-_FlU_EAAAn78VICvJk8JDKjZqQ_qg"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			token, err := enc.Encode(tc.price)
			require.NoError(t, err)
			assert.Equal(t, tc.token, token)

			res, err := enc.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, tc.price, res.Price)
			assert.True(t, time.Unix(1700000000, 654321000).Equal(res.Time))
		})
	}
}

func TestEncoder_RoundTrip(t *testing.T) {
	enc := testEncoder(t)
	prices := []int64{0, 1, -1, 13532120, 709959680, math.MaxInt64, math.MinInt64}
	for _, p := range prices {
		before := time.Now()
		token, err := enc.Encode(p)
		require.NoError(t, err)
		assert.Len(t, token, TokenLen)
		assert.False(t, strings.ContainsAny(token, "=+/"), "token %q isn't URL safe", token)

		res, err := enc.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, p, res.Price)
		assert.WithinDuration(t, before, res.Time, time.Second)
	}
}

func TestEncoder_EncodeClockRange(t *testing.T) {
	enc := testEncoder(t, WithClock(FixedClock(time.Unix(math.MaxInt32+1, 0))))
	_, err := enc.Encode(1)
	assert.ErrorIs(t, err, ErrRange)
}

func TestEncoder_EncodeUint64(t *testing.T) {
	enc := testEncoder(t)
	token, err := enc.EncodeUint64(math.MaxInt64)
	require.NoError(t, err)
	res, err := enc.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), res.Price)

	_, err = enc.EncodeUint64(math.MaxInt64 + 1)
	assert.ErrorIs(t, err, ErrRange)
}

func TestEncoder_DecodeFormat(t *testing.T) {
	enc := testEncoder(t)
	tests := map[string]string{
		"Empty":        "",
		"Short":        knownToken[:37],
		"Long":         knownToken + "A",
		"Padded":       knownToken + "==",
		"BadAlphabet":  "SjpvRwAB4kB7jEpgW5IA8p73ew9ic6VZpFsP!A",
		"StdAlphabet":  "ZVPxAAAJ+/FlU/EAAAn78a39Q2bDFbaEDYjuHA",
		"EmbeddedLine": "SjpvRwAB4kB7jEpgW5IA8p73ew9ic6VZpFsP\nA",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := enc.Decode(token)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestEncoder_DecodeTampered(t *testing.T) {
	enc := testEncoder(t, WithClock(FixedClock(fixedTime)))
	token, err := enc.Encode(13532120)
	require.NoError(t, err)
	payload, err := base64.RawURLEncoding.DecodeString(token)
	require.NoError(t, err)
	require.Len(t, payload, payloadLen)

	for i := 0; i < len(payload)*8; i++ {
		tampered := make([]byte, len(payload))
		copy(tampered, payload)
		tampered[i/8] ^= 1 << (i % 8)
		_, err := enc.Decode(base64.RawURLEncoding.EncodeToString(tampered))
		assert.ErrorIs(t, err, ErrAuthentication, "bit %d flipped", i)
	}
}

func TestEncoder_WrongKeys(t *testing.T) {
	enc := testEncoder(t)
	token, err := enc.Encode(13532120)
	require.NoError(t, err)

	otherKey, err := GenKey()
	require.NoError(t, err)

	wrongEnc, err := NewKeyEncoder(otherKey, testIntKey)
	require.NoError(t, err)
	res, err := wrongEnc.Decode(token)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, Result{}, res)

	wrongInt, err := NewKeyEncoder(testEncKey, otherKey)
	require.NoError(t, err)
	_, err = wrongInt.Decode(token)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestEncoder_Concurrent(t *testing.T) {
	enc := testEncoder(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(p int64) {
			defer wg.Done()
			for j := int64(0); j < 100; j++ {
				token, err := enc.Encode(p*1000 + j)
				if !assert.NoError(t, err) {
					return
				}
				res, err := enc.Decode(token)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, p*1000+j, res.Price)
			}
		}(int64(i))
	}
	wg.Wait()
}

func TestEncoder_Wipe(t *testing.T) {
	enc := testEncoder(t)
	enc.Wipe()
	assert.Equal(t, Key{}, enc.encKey)
	assert.Equal(t, Key{}, enc.intKey)
	// The caller's key material is copied, not wiped.
	assert.NotEqual(t, Key{}, testEncKey)
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 13532120\n")
	assert.NoError(t, err)
	assert.Equal(t, int64(13532120), p)

	p, err = ParsePrice("-9223372036854775808")
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), p)

	_, err = ParsePrice("9223372036854775808")
	assert.ErrorIs(t, err, ErrRange)
	_, err = ParsePrice("12.5")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRange)
}
