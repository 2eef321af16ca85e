package xor

import (
	"errors"
	"fmt"
)

type padScreen struct {
	pad []byte
	cur int
}

func newPadScreen(pad []byte, payloadLen int) (*padScreen, error) {
	if len(pad) == 0 {
		return nil, errors.New("cannot use empty pad")
	}
	if len(pad) < payloadLen {
		return nil, fmt.Errorf("pad of len %d is too short for payload of len %d", len(pad), payloadLen)
	}
	return &padScreen{pad: pad}, nil
}

func (s *padScreen) screen(b byte) byte {
	b ^= s.pad[s.cur]
	s.cur++
	return b
}

// Apply writes payload XOR pad to dst, and returns the number of bytes written.
// Only the first len(payload) bytes of pad are used.
// dst and payload may be the same slice.
func Apply(dst, payload, pad []byte) (int, error) {
	if len(dst) < len(payload) {
		return 0, fmt.Errorf("destination of len %d is too short for payload of len %d", len(dst), len(payload))
	}
	scr, err := newPadScreen(pad, len(payload))
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(payload); i++ {
		dst[i] = scr.screen(payload[i])
	}
	return len(payload), nil
}
