package bitbuf

import (
	"errors"
	"fmt"
)

var (
	ErrBitRange   = errors.New("bitbuf: bit range out of bounds")
	ErrInvalidHex = errors.New("bitbuf: invalid hex digit")
	ErrEmpty      = errors.New("bitbuf: empty input")
	ErrWidth      = errors.New("bitbuf: invalid write width")
)

// BitRangeError reports an extraction outside the buffer or wider than
// MaxExtractBits.
type BitRangeError struct {
	Start int
	End   int
	Bits  int
}

func (e *BitRangeError) Error() string {
	width := e.End - e.Start
	if width > MaxExtractBits {
		return fmt.Sprintf("bitbuf: bit range [%d,%d) is %d bits wide, max %d", e.Start, e.End, width, MaxExtractBits)
	}
	return fmt.Sprintf("bitbuf: bit range [%d,%d) out of bounds for %d bits", e.Start, e.End, e.Bits)
}

func (e *BitRangeError) Is(target error) bool {
	return target == ErrBitRange
}
