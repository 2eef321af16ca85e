package price

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	bin "github.com/saylorsolutions/binmap"
)

const (
	// IVSize is the length of the initialization vector embedded in every token.
	IVSize = 16
	// timeFieldsLen is the length of the IV prefix that carries the time.
	timeFieldsLen = 8
)

// IV is the time derived initialization vector of a token.
type IV [IVSize]byte

// Clock provides the wall-clock time used to generate an IV.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the host's wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t, which is useful for reproducible tokens.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time {
		return t
	})
}

type timeFields struct {
	seconds int32
	micros  int32
}

func (f *timeFields) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Int(&f.seconds),
		bin.Int(&f.micros),
	)
}

// EncodeTime packs t into an IV as [seconds, microseconds, seconds, microseconds].
// Seconds are floored to the Unix second at or before t, so the microsecond field is always in 0..999999, even before 1970.
// Microseconds are truncated, not rounded.
// Times that don't fit in a signed 32-bit seconds field return ErrRange.
func EncodeTime(t time.Time) (IV, error) {
	var (
		iv  IV
		buf bytes.Buffer
	)
	secs := t.Unix()
	if secs > math.MaxInt32 || secs < math.MinInt32 {
		return iv, fmt.Errorf("%w: time %s can't be represented in an IV", ErrRange, t.UTC().Format(time.RFC3339))
	}
	f := &timeFields{
		seconds: int32(secs),
		micros:  int32(t.Nanosecond() / int(time.Microsecond)),
	}
	// The time only fills half of the IV, so it's written twice.
	m := bin.MapSequence(f.mapper(), f.mapper())
	if err := m.Write(&buf, binary.BigEndian); err != nil {
		return iv, err
	}
	copy(iv[:], buf.Bytes())
	return iv, nil
}

// DecodeTime reads the time from the first 8 bytes of an IV, ignoring the rest.
func DecodeTime(data []byte) (time.Time, error) {
	if len(data) < timeFieldsLen {
		return time.Time{}, fmt.Errorf("%w: need at least %d bytes to decode time, got %d", ErrFormat, timeFieldsLen, len(data))
	}
	var f timeFields
	if err := f.mapper().Read(bytes.NewReader(data[:timeFieldsLen]), binary.BigEndian); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return time.Unix(int64(f.seconds), int64(f.micros)*int64(time.Microsecond)), nil
}

// Time returns the time embedded in the IV.
func (iv IV) Time() time.Time {
	// Can't fail, an IV is always long enough.
	t, _ := DecodeTime(iv[:])
	return t
}
