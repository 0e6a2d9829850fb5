// Package bitbuf exposes a hex string as an MSB-first bit stream.
//
// Bit i of the stream is bit (3 - i%4) of the nibble at hex index i/4.
// Buffers are immutable after construction and safe for concurrent reads.
package bitbuf

import (
	"encoding/hex"
	"fmt"

	"github.com/funvibe/funbit/pkg/funbit"
)

// MaxExtractBits is the widest range Extract will return.
const MaxExtractBits = 31

// Buffer is a read-only view over a validated hex string.
// Odd-length input is stored with a zero low nibble in the last byte;
// Bits never reaches it.
type Buffer struct {
	hex  string
	data []byte
}

// New validates hex and returns a Buffer over it. Both cases of A-F are accepted.
func New(s string) (*Buffer, error) {
	if len(s) == 0 {
		return nil, ErrEmpty
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return nil, fmt.Errorf("%w %q at index %d", ErrInvalidHex, s[i], i)
		}
	}
	even := s
	if len(even)%2 == 1 {
		even += "0"
	}
	data, err := hex.DecodeString(even)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return &Buffer{hex: s, data: data}, nil
}

// Hex returns the source string.
func (b *Buffer) Hex() string {
	return b.hex
}

// Bits returns the stream length in bits.
func (b *Buffer) Bits() int {
	return len(b.hex) * 4
}

// Remaining returns the number of bits at and after pos.
func (b *Buffer) Remaining(pos int) int {
	if pos >= b.Bits() {
		return 0
	}
	if pos < 0 {
		return b.Bits()
	}
	return b.Bits() - pos
}

// Extract returns bits [start, end) as an unsigned big-endian integer.
func (b *Buffer) Extract(start, end int) (uint32, error) {
	width := end - start
	if start < 0 || end > b.Bits() || width < 1 || width > MaxExtractBits {
		return 0, &BitRangeError{Start: start, End: end, Bits: b.Bits()}
	}

	var v uint32
	for i := start; i < end; i++ {
		set, err := funbit.GetBitValue(b.data, uint(i))
		if err != nil {
			return 0, fmt.Errorf("%w: bit %d: %v", ErrBitRange, i, err)
		}
		v <<= 1
		if set {
			v |= 1
		}
	}
	return v, nil
}

// Bit reports whether bit i is set.
func (b *Buffer) Bit(i int) (bool, error) {
	v, err := b.Extract(i, i+1)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
