package bitbuf

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/funvibe/funbit/pkg/funbit"
)

// MaxWriteBits is the widest field WriteBits accepts.
const MaxWriteBits = 32

type field struct {
	value uint64
	width int
}

// Writer appends fields MSB-first and renders them as hex.
type Writer struct {
	fields []field
	bits   int
}

func NewWriter() *Writer {
	return &Writer{fields: make([]field, 0, 16)}
}

// Len returns the number of bits written.
func (w *Writer) Len() int {
	return w.bits
}

// WriteBits appends the low width bits of v, most significant first.
func (w *Writer) WriteBits(v uint64, width int) error {
	if width < 1 || width > MaxWriteBits {
		return fmt.Errorf("%w: %d bits", ErrWidth, width)
	}
	if v>>uint(width) != 0 {
		return fmt.Errorf("%w: %d does not fit in %d bits", ErrWidth, v, width)
	}
	w.fields = append(w.fields, field{value: v, width: width})
	w.bits += width
	return nil
}

// Align pads with zero bits until Len is a multiple of n.
func (w *Writer) Align(n int) {
	if n < 1 {
		return
	}
	if pad := (n - w.bits%n) % n; pad > 0 {
		w.fields = append(w.fields, field{width: pad})
		w.bits += pad
	}
}

// Hex renders the written bits as upper-case hex, zero-padding the last nibble.
func (w *Writer) Hex() (string, error) {
	if w.bits == 0 {
		return "", nil
	}
	b := funbit.NewBuilder()
	for _, f := range w.fields {
		funbit.AddInteger(b, int64(f.value), funbit.WithSize(uint(f.width)))
	}
	if pad := (8 - w.bits%8) % 8; pad > 0 {
		funbit.AddInteger(b, int64(0), funbit.WithSize(uint(pad)))
	}
	bs, err := funbit.Build(b)
	if err != nil {
		return "", fmt.Errorf("bitbuf: build %d bits: %w", w.bits, err)
	}
	out := strings.ToUpper(hex.EncodeToString(bs.ToBytes()))
	return out[:(w.bits+3)/4], nil
}
